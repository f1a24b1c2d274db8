package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

type purchaseRepo struct{ with access }

var _ repository.PurchaseRepository = (*purchaseRepo)(nil)

func (r *purchaseRepo) Create(_ context.Context, p *entity.Purchase) error {
	return r.with(func(st *state) error {
		if _, ok := st.purchases[p.ID]; ok {
			return fmt.Errorf("compra %s: %w", p.ID, domain.ErrDuplicate)
		}
		for _, o := range st.purchases {
			if o.PurchaseNumber == p.PurchaseNumber {
				return fmt.Errorf("compra %s: %w", p.PurchaseNumber, domain.ErrDuplicate)
			}
		}
		if _, ok := st.suppliers[p.SupplierID]; !ok {
			return fmt.Errorf("proveedor %s: %w", p.SupplierID, domain.ErrNotFound)
		}
		for _, it := range p.Items {
			if _, ok := st.variants[it.VariantID]; !ok {
				return fmt.Errorf("línea de compra: %w", domain.ErrVariantNotFound)
			}
		}
		st.purchases[p.ID] = copyPurchase(p)
		st.purchaseIDs = append(st.purchaseIDs, p.ID)
		return nil
	})
}

func (r *purchaseRepo) GetByID(_ context.Context, id string) (*entity.Purchase, error) {
	var out *entity.Purchase
	err := r.with(func(st *state) error {
		if p, ok := st.purchases[id]; ok {
			out = purchaseView(st, p)
		}
		return nil
	})
	return out, err
}

func (r *purchaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.GetByID(ctx, id)
}

func (r *purchaseRepo) List(_ context.Context, f repository.PurchaseFilter) ([]*entity.Purchase, error) {
	var out []*entity.Purchase
	err := r.with(func(st *state) error {
		term := strings.ToLower(strings.TrimSpace(f.Search))
		for i := len(st.purchaseIDs) - 1; i >= 0; i-- {
			p := purchaseView(st, st.purchases[st.purchaseIDs[i]])
			if f.PaymentStatus != "" && p.PaymentStatus != f.PaymentStatus {
				continue
			}
			if f.DeliveryStatus != "" && p.DeliveryStatus != f.DeliveryStatus {
				continue
			}
			if !inRange(p.CreatedAt, f.From, f.To) {
				continue
			}
			if term != "" && !strings.Contains(strings.ToLower(p.PurchaseNumber), term) &&
				(p.Supplier == nil || !strings.Contains(strings.ToLower(p.Supplier.Name), term)) {
				continue
			}
			out = append(out, p)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, err
}

func (r *purchaseRepo) UpdateStatus(_ context.Context, id string, payment entity.PaymentStatus, delivery entity.DeliveryStatus, at time.Time) error {
	return r.with(func(st *state) error {
		p, ok := st.purchases[id]
		if !ok {
			return domain.ErrNotFound
		}
		p.PaymentStatus = payment
		p.DeliveryStatus = delivery
		p.UpdatedAt = at
		return nil
	})
}

func (r *purchaseRepo) Delete(_ context.Context, id string) error {
	return r.with(func(st *state) error {
		if _, ok := st.purchases[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.purchases, id)
		st.purchaseIDs = removeID(st.purchaseIDs, id)
		return nil
	})
}

func purchaseView(st *state, p *entity.Purchase) *entity.Purchase {
	c := copyPurchase(p)
	if s, ok := st.suppliers[p.SupplierID]; ok {
		sc := *s
		c.Supplier = &sc
	}
	return c
}

type supplierRepo struct{ with access }

var _ repository.SupplierRepository = (*supplierRepo)(nil)

func (r *supplierRepo) Create(_ context.Context, s *entity.Supplier) error {
	return r.with(func(st *state) error {
		if _, ok := st.suppliers[s.ID]; ok {
			return fmt.Errorf("proveedor %s: %w", s.ID, domain.ErrDuplicate)
		}
		sc := *s
		st.suppliers[s.ID] = &sc
		st.supplierIDs = append(st.supplierIDs, s.ID)
		return nil
	})
}

func (r *supplierRepo) GetByID(_ context.Context, id string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.with(func(st *state) error {
		if s, ok := st.suppliers[id]; ok {
			sc := *s
			out = &sc
		}
		return nil
	})
	return out, err
}

func (r *supplierRepo) FindByNameAndPhone(_ context.Context, name, phone string) (*entity.Supplier, error) {
	var out *entity.Supplier
	err := r.with(func(st *state) error {
		for _, id := range st.supplierIDs {
			s := st.suppliers[id]
			if strings.EqualFold(s.Name, name) && s.Phone == phone {
				sc := *s
				out = &sc
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *supplierRepo) Update(_ context.Context, s *entity.Supplier) error {
	return r.with(func(st *state) error {
		if _, ok := st.suppliers[s.ID]; !ok {
			return domain.ErrNotFound
		}
		sc := *s
		st.suppliers[s.ID] = &sc
		return nil
	})
}

func (r *supplierRepo) List(_ context.Context, search string, limit int) ([]*entity.Supplier, error) {
	var out []*entity.Supplier
	err := r.with(func(st *state) error {
		term := strings.ToLower(strings.TrimSpace(search))
		for i := len(st.supplierIDs) - 1; i >= 0; i-- {
			s := st.suppliers[st.supplierIDs[i]]
			if term != "" && !strings.Contains(strings.ToLower(s.Name), term) && !strings.Contains(strings.ToLower(s.Contact), term) {
				continue
			}
			sc := *s
			out = append(out, &sc)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}
