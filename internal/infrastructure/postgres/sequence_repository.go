package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo contadores de numeración en document_sequences.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Next debe usarse con una tx.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa el contador; el UPSERT deja la fila bloqueada hasta el commit,
// así dos ventas concurrentes nunca obtienen el mismo número.
func (r *SequenceRepo) Next(ctx context.Context, kind string, year int) (int64, error) {
	query := `
		INSERT INTO document_sequences (kind, year, value) VALUES ($1, $2, 1)
		ON CONFLICT (kind, year) DO UPDATE SET value = document_sequences.value + 1
		RETURNING value`
	var n int64
	if err := r.q.QueryRow(ctx, query, kind, year).Scan(&n); err != nil {
		return 0, fmt.Errorf("next sequence %s-%d: %w", kind, year, err)
	}
	return n, nil
}

// Current último valor emitido.
func (r *SequenceRepo) Current(ctx context.Context, kind string, year int) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `SELECT value FROM document_sequences WHERE kind = $1 AND year = $2`, kind, year).Scan(&n)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("current sequence %s-%d: %w", kind, year, err)
	}
	return n, nil
}
