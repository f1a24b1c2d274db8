package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// NewRepos construye todos los repositorios sobre q (pool o tx).
func NewRepos(q Querier) repository.Repos {
	return repository.Repos{
		Products:  NewProductRepository(q),
		Variants:  NewVariantRepository(q),
		Movements: NewInventoryMovementRepository(q),
		Sales:     NewSaleRepository(q),
		Customers: NewCustomerRepository(q),
		Purchases: NewPurchaseRepository(q),
		Suppliers: NewSupplierRepository(q),
		Sequences: NewSequenceRepository(q),
		Settings:  NewSettingsRepository(q),
		Users:     NewUserRepository(q),
		Reports:   NewReportRepository(q),
	}
}

// Run inicia una transacción READ COMMITTED, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(r repository.Repos) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
