package memory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

type movementRepo struct{ with access }

var _ repository.InventoryMovementRepository = (*movementRepo)(nil)

func (r *movementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	return r.with(func(st *state) error {
		if _, ok := st.variants[m.VariantID]; !ok {
			return fmt.Errorf("movimiento sobre variante %s: %w", m.VariantID, domain.ErrVariantNotFound)
		}
		for _, o := range st.movements {
			if o.ID == m.ID {
				return fmt.Errorf("movimiento %s: %w", m.ID, domain.ErrDuplicate)
			}
		}
		st.movements = append(st.movements, copyMovement(m))
		return nil
	})
}

func (r *movementRepo) GetByID(_ context.Context, id string) (*entity.InventoryMovement, error) {
	var out *entity.InventoryMovement
	err := r.with(func(st *state) error {
		for _, m := range st.movements {
			if m.ID == id {
				out = copyMovement(m)
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *movementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	err := r.with(func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if f.ProductID != "" && m.ProductID != f.ProductID {
				continue
			}
			if f.VariantID != "" && m.VariantID != f.VariantID {
				continue
			}
			out = append(out, copyMovement(m))
			if f.Limit > 0 && len(out) == f.Limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *movementRepo) ListByVariant(_ context.Context, variantID string) ([]*entity.InventoryMovement, error) {
	var out []*entity.InventoryMovement
	err := r.with(func(st *state) error {
		for _, m := range st.movements {
			if m.VariantID == variantID {
				out = append(out, copyMovement(m))
			}
		}
		return nil
	})
	return out, err
}

func (r *movementRepo) SumDelta(_ context.Context, variantID string) (decimal.Decimal, error) {
	sum := decimal.Zero
	err := r.with(func(st *state) error {
		for _, m := range st.movements {
			if m.VariantID == variantID {
				sum = sum.Add(m.Delta())
			}
		}
		return nil
	})
	return sum, err
}
