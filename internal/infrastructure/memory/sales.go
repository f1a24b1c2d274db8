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

type saleRepo struct{ with access }

var _ repository.SaleRepository = (*saleRepo)(nil)

func (r *saleRepo) Create(_ context.Context, s *entity.Sale) error {
	return r.with(func(st *state) error {
		if _, ok := st.sales[s.ID]; ok {
			return fmt.Errorf("venta %s: %w", s.ID, domain.ErrDuplicate)
		}
		for _, o := range st.sales {
			if o.InvoiceNumber == s.InvoiceNumber {
				return fmt.Errorf("factura %s: %w", s.InvoiceNumber, domain.ErrDuplicate)
			}
		}
		if _, ok := st.customers[s.CustomerID]; !ok {
			return fmt.Errorf("cliente %s: %w", s.CustomerID, domain.ErrNotFound)
		}
		for _, it := range s.Items {
			if _, ok := st.variants[it.VariantID]; !ok {
				return fmt.Errorf("línea de venta: %w", domain.ErrVariantNotFound)
			}
		}
		st.sales[s.ID] = copySale(s)
		st.saleIDs = append(st.saleIDs, s.ID)
		return nil
	})
}

func (r *saleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.with(func(st *state) error {
		if s, ok := st.sales[id]; ok {
			out = saleView(st, s)
		}
		return nil
	})
	return out, err
}

func (r *saleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *saleRepo) List(_ context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	var out []*entity.Sale
	err := r.with(func(st *state) error {
		term := strings.ToLower(strings.TrimSpace(f.Search))
		for i := len(st.saleIDs) - 1; i >= 0; i-- {
			s := saleView(st, st.sales[st.saleIDs[i]])
			if f.Status != "" && s.Status != f.Status {
				continue
			}
			if !inRange(s.CreatedAt, f.From, f.To) {
				continue
			}
			if term != "" && !strings.Contains(strings.ToLower(s.InvoiceNumber), term) &&
				(s.Customer == nil || !strings.Contains(strings.ToLower(s.Customer.Name), term)) {
				continue
			}
			out = append(out, s)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, err
}

func (r *saleRepo) UpdateStatus(_ context.Context, id string, status entity.SaleStatus, at time.Time) error {
	return r.with(func(st *state) error {
		s, ok := st.sales[id]
		if !ok {
			return domain.ErrNotFound
		}
		s.Status = status
		s.UpdatedAt = at
		return nil
	})
}

func (r *saleRepo) Delete(_ context.Context, id string) error {
	return r.with(func(st *state) error {
		if _, ok := st.sales[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.sales, id)
		st.saleIDs = removeID(st.saleIDs, id)
		return nil
	})
}

func saleView(st *state, s *entity.Sale) *entity.Sale {
	c := copySale(s)
	if cu, ok := st.customers[s.CustomerID]; ok {
		cc := *cu
		c.Customer = &cc
	}
	return c
}

// inRange from inclusivo, to exclusivo.
func inRange(t time.Time, from, to *time.Time) bool {
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && !t.Before(*to) {
		return false
	}
	return true
}

type customerRepo struct{ with access }

var _ repository.CustomerRepository = (*customerRepo)(nil)

func (r *customerRepo) Create(_ context.Context, c *entity.Customer) error {
	return r.with(func(st *state) error {
		if _, ok := st.customers[c.ID]; ok {
			return fmt.Errorf("cliente %s: %w", c.ID, domain.ErrDuplicate)
		}
		cc := *c
		st.customers[c.ID] = &cc
		st.customerIDs = append(st.customerIDs, c.ID)
		return nil
	})
}

func (r *customerRepo) GetByID(_ context.Context, id string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.with(func(st *state) error {
		if c, ok := st.customers[id]; ok {
			cc := *c
			out = &cc
		}
		return nil
	})
	return out, err
}

func (r *customerRepo) FindByNameAndPhone(_ context.Context, name, phone string) (*entity.Customer, error) {
	var out *entity.Customer
	err := r.with(func(st *state) error {
		for _, id := range st.customerIDs {
			c := st.customers[id]
			if strings.EqualFold(c.Name, name) && c.Phone == phone {
				cc := *c
				out = &cc
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *customerRepo) List(_ context.Context, search string, limit int) ([]*entity.Customer, error) {
	var out []*entity.Customer
	err := r.with(func(st *state) error {
		term := strings.ToLower(strings.TrimSpace(search))
		for i := len(st.customerIDs) - 1; i >= 0; i-- {
			c := st.customers[st.customerIDs[i]]
			if term != "" && !strings.Contains(strings.ToLower(c.Name), term) && !strings.Contains(c.Phone, term) {
				continue
			}
			cc := *c
			out = append(out, &cc)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}
