package purchasing

import (
	"context"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

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

func toPurchaseResponse(ctx context.Context, p *entity.Purchase, names *nameCache) (*dto.PurchaseResponse, error) {
	resp := &dto.PurchaseResponse{
		ID:             p.ID,
		PurchaseNumber: p.PurchaseNumber,
		Subtotal:       p.Subtotal,
		Tax:            p.Tax,
		Total:          p.Total,
		PaymentStatus:  string(p.PaymentStatus),
		DeliveryStatus: string(p.DeliveryStatus),
		Items:          make([]dto.PurchaseItemResponse, 0, len(p.Items)),
		CreatedBy:      p.CreatedBy,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
	if p.Supplier != nil {
		resp.Supplier = toSupplierResponse(p.Supplier)
	}
	for _, it := range p.Items {
		pn, vn, err := names.names(ctx, it.ProductID, it.VariantID)
		if err != nil {
			return nil, err
		}
		resp.Items = append(resp.Items, dto.PurchaseItemResponse{
			ID:          it.ID,
			ProductID:   it.ProductID,
			VariantID:   it.VariantID,
			ProductName: pn,
			VariantName: vn,
			Quantity:    it.Quantity,
			UnitCost:    it.UnitCost,
			TotalCost:   it.TotalCost,
		})
	}
	return resp, nil
}
