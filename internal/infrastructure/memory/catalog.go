package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

type productRepo struct{ with access }

var _ repository.ProductRepository = (*productRepo)(nil)

func (r *productRepo) Create(_ context.Context, p *entity.Product) error {
	return r.with(func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return fmt.Errorf("producto %s: %w", p.ID, domain.ErrDuplicate)
		}
		st.products[p.ID] = copyProduct(p)
		st.productIDs = append(st.productIDs, p.ID)
		return nil
	})
}

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.with(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return nil
		}
		out = withVariants(st, p)
		return nil
	})
	return out, err
}

func (r *productRepo) Update(_ context.Context, p *entity.Product) error {
	return r.with(func(st *state) error {
		if _, ok := st.products[p.ID]; !ok {
			return domain.ErrNotFound
		}
		st.products[p.ID] = copyProduct(p)
		return nil
	})
}

func (r *productRepo) Delete(_ context.Context, id string) error {
	return r.with(func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.ErrNotFound
		}
		for _, vid := range append([]string(nil), st.variantIDs...) {
			if st.variants[vid].ProductID == id {
				deleteVariant(st, vid)
			}
		}
		delete(st.products, id)
		st.productIDs = removeID(st.productIDs, id)
		return nil
	})
}

func (r *productRepo) List(_ context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.with(func(st *state) error {
		term := strings.ToLower(strings.TrimSpace(f.Search))
		for _, id := range st.productIDs {
			p := withVariants(st, st.products[id])
			if f.Category != "" && p.Category != f.Category {
				continue
			}
			if term != "" && !matchesProduct(p, term) {
				continue
			}
			if !p.MatchesStockStatus(strings.ToLower(f.StockStatus)) {
				continue
			}
			out = append(out, p)
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].NameAr < out[j].NameAr })
	return out, err
}

func (r *productRepo) Categories(_ context.Context) ([]string, error) {
	var out []string
	err := r.with(func(st *state) error {
		seen := map[string]bool{}
		for _, p := range st.products {
			if p.Category != "" && !seen[p.Category] {
				seen[p.Category] = true
				out = append(out, p.Category)
			}
		}
		return nil
	})
	sort.Strings(out)
	return out, err
}

func matchesProduct(p *entity.Product, term string) bool {
	for _, s := range []string{p.NameAr, p.NameFr, p.Category} {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	for _, v := range p.Variants {
		if strings.Contains(strings.ToLower(v.SKU), term) || strings.Contains(strings.ToLower(v.Specification), term) {
			return true
		}
	}
	return false
}

func withVariants(st *state, p *entity.Product) *entity.Product {
	c := copyProduct(p)
	for _, vid := range st.variantIDs {
		if v := st.variants[vid]; v.ProductID == p.ID {
			c.Variants = append(c.Variants, copyVariant(v))
		}
	}
	return c
}

func deleteVariant(st *state, id string) {
	kept := st.movements[:0]
	for _, m := range st.movements {
		if m.VariantID != id {
			kept = append(kept, m)
		}
	}
	st.movements = kept
	delete(st.variants, id)
	st.variantIDs = removeID(st.variantIDs, id)
}

type variantRepo struct{ with access }

var _ repository.VariantRepository = (*variantRepo)(nil)

func checkVariantUnique(st *state, v *entity.Variant) error {
	for _, o := range st.variants {
		if o.ID == v.ID {
			continue
		}
		if strings.EqualFold(o.SKU, v.SKU) {
			return fmt.Errorf("SKU %s: %w", v.SKU, domain.ErrDuplicate)
		}
		if o.ProductID == v.ProductID && o.Specification == v.Specification {
			return fmt.Errorf("especificación %q: %w", v.Specification, domain.ErrDuplicate)
		}
	}
	return nil
}

func (r *variantRepo) Create(_ context.Context, v *entity.Variant) error {
	return r.with(func(st *state) error {
		if _, ok := st.products[v.ProductID]; !ok {
			return fmt.Errorf("producto %s: %w", v.ProductID, domain.ErrNotFound)
		}
		if _, ok := st.variants[v.ID]; ok {
			return fmt.Errorf("variante %s: %w", v.ID, domain.ErrDuplicate)
		}
		if err := checkVariantUnique(st, v); err != nil {
			return err
		}
		st.variants[v.ID] = copyVariant(v)
		st.variantIDs = append(st.variantIDs, v.ID)
		return nil
	})
}

func (r *variantRepo) GetByID(_ context.Context, id string) (*entity.Variant, error) {
	var out *entity.Variant
	err := r.with(func(st *state) error {
		if v, ok := st.variants[id]; ok {
			out = copyVariant(v)
		}
		return nil
	})
	return out, err
}

// GetForUpdate no necesita bloqueo propio: la transacción ya tiene el mutex del almacén.
func (r *variantRepo) GetForUpdate(_ context.Context, productID, variantID string) (*entity.Variant, error) {
	var out *entity.Variant
	err := r.with(func(st *state) error {
		v, ok := st.variants[variantID]
		if !ok || (productID != "" && v.ProductID != productID) {
			return nil
		}
		out = copyVariant(v)
		return nil
	})
	return out, err
}

func (r *variantRepo) Update(_ context.Context, v *entity.Variant) error {
	return r.with(func(st *state) error {
		cur, ok := st.variants[v.ID]
		if !ok {
			return domain.ErrVariantNotFound
		}
		if err := checkVariantUnique(st, v); err != nil {
			return err
		}
		cur.Specification = v.Specification
		cur.SKU = v.SKU
		cur.Price = v.Price
		cur.Cost = v.Cost
		cur.MinStock = v.MinStock
		cur.MaxStock = v.MaxStock
		cur.UpdatedAt = v.UpdatedAt
		return nil
	})
}

func (r *variantRepo) UpdateStock(_ context.Context, id string, stock decimal.Decimal, expectedVersion int64) error {
	return r.with(func(st *state) error {
		cur, ok := st.variants[id]
		if !ok {
			return domain.ErrVariantNotFound
		}
		if cur.Version != expectedVersion {
			return fmt.Errorf("variante %s versión %d, esperada %d: %w", id, cur.Version, expectedVersion, domain.ErrConflict)
		}
		cur.Stock = stock
		cur.Version++
		cur.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (r *variantRepo) Delete(_ context.Context, id string) error {
	return r.with(func(st *state) error {
		if _, ok := st.variants[id]; !ok {
			return domain.ErrVariantNotFound
		}
		deleteVariant(st, id)
		return nil
	})
}

func (r *variantRepo) IsReferenced(_ context.Context, id string) (bool, error) {
	var found bool
	err := r.with(func(st *state) error {
		for _, s := range st.sales {
			for _, it := range s.Items {
				if it.VariantID == id {
					found = true
					return nil
				}
			}
		}
		for _, p := range st.purchases {
			for _, it := range p.Items {
				if it.VariantID == id {
					found = true
					return nil
				}
			}
		}
		return nil
	})
	return found, err
}

func (r *variantRepo) ListAll(_ context.Context) ([]*entity.Variant, error) {
	var out []*entity.Variant
	err := r.with(func(st *state) error {
		for _, id := range st.variantIDs {
			out = append(out, copyVariant(st.variants[id]))
		}
		return nil
	})
	return out, err
}
