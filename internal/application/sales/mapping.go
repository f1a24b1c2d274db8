package sales

import (
	"context"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

// nameCache resuelve nombres de producto/variante para las líneas sin repetir consultas.
type nameCache struct {
	products repository.ProductRepository
	byID     map[string]*entity.Product
}

func newNameCache(products repository.ProductRepository) *nameCache {
	return &nameCache{products: products, byID: map[string]*entity.Product{}}
}

func (c *nameCache) names(ctx context.Context, productID, variantID string) (string, string, error) {
	p, ok := c.byID[productID]
	if !ok {
		var err error
		if p, err = c.products.GetByID(ctx, productID); err != nil {
			return "", "", err
		}
		c.byID[productID] = p
	}
	if p == nil {
		return "", "", nil
	}
	for _, v := range p.Variants {
		if v.ID == variantID {
			return p.NameAr, v.Specification, nil
		}
	}
	return p.NameAr, "", nil
}

func toSaleResponse(ctx context.Context, s *entity.Sale, names *nameCache) (*dto.SaleResponse, error) {
	resp := &dto.SaleResponse{
		ID:            s.ID,
		InvoiceNumber: s.InvoiceNumber,
		Subtotal:      s.Subtotal,
		Tax:           s.Tax,
		Total:         s.Total,
		PaymentMethod: string(s.PaymentMethod),
		Status:        string(s.Status),
		Items:         make([]dto.SaleItemResponse, 0, len(s.Items)),
		CreatedBy:     s.CreatedBy,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
	if s.Customer != nil {
		resp.Customer = toCustomerResponse(s.Customer)
	}
	for _, it := range s.Items {
		pn, vn, err := names.names(ctx, it.ProductID, it.VariantID)
		if err != nil {
			return nil, err
		}
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			ProductName: pn,
			VariantName: vn,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TotalPrice:  it.TotalPrice,
		})
	}
	return resp, nil
}
