package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

const movementColumns = `id, product_id, variant_id, type, quantity, stock_before, stock_after, note, reference_type, reference_id, created_at, created_by`

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
// El libro es solo de inserción: no hay Update ni Delete.
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento de inventario.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	query := `
		INSERT INTO inventory_movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.VariantID, string(m.Type), m.Quantity, m.StockBefore, m.StockAfter,
		m.Note, m.ReferenceType, m.ReferenceID, m.CreatedAt, m.CreatedBy,
	)
	if err != nil {
		return mapWriteErr("create inventory movement", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *InventoryMovementRepo) GetByID(ctx context.Context, id string) (*entity.InventoryMovement, error) {
	m, err := scanMovement(r.q.QueryRow(ctx, `SELECT `+movementColumns+` FROM inventory_movements WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return m, err
}

// List movimientos más recientes primero.
func (r *InventoryMovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.InventoryMovement, error) {
	var a argList
	var where []string
	if f.ProductID != "" {
		where = append(where, "product_id = "+a.add(f.ProductID))
	}
	if f.VariantID != "" {
		where = append(where, "variant_id = "+a.add(f.VariantID))
	}
	query := `SELECT ` + movementColumns + ` FROM inventory_movements`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT " + a.add(f.Limit)
	}
	return r.query(ctx, query, a.args...)
}

// ListByVariant movimientos de la variante en orden cronológico.
func (r *InventoryMovementRepo) ListByVariant(ctx context.Context, variantID string) ([]*entity.InventoryMovement, error) {
	query := `SELECT ` + movementColumns + ` FROM inventory_movements WHERE variant_id = $1 ORDER BY created_at, id`
	return r.query(ctx, query, variantID)
}

// SumDelta suma de (stock_after - stock_before) de la variante.
func (r *InventoryMovementRepo) SumDelta(ctx context.Context, variantID string) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx,
		`SELECT COALESCE(SUM(stock_after - stock_before), 0) FROM inventory_movements WHERE variant_id = $1`,
		variantID,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum movements: %w", err)
	}
	return sum, nil
}

func (r *InventoryMovementRepo) query(ctx context.Context, query string, args ...any) ([]*entity.InventoryMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.InventoryMovement, error) {
	var m entity.InventoryMovement
	var typ string
	err := row.Scan(
		&m.ID, &m.ProductID, &m.VariantID, &typ, &m.Quantity, &m.StockBefore, &m.StockAfter,
		&m.Note, &m.ReferenceType, &m.ReferenceID, &m.CreatedAt, &m.CreatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan movement: %w", err)
	}
	m.Type = entity.MovementType(typ)
	return &m, nil
}
