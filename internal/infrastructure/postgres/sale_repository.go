package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

var (
	_ repository.SaleRepository     = (*SaleRepo)(nil)
	_ repository.CustomerRepository = (*CustomerRepo)(nil)
)

const saleSelect = `
	SELECT s.id, s.invoice_number, s.customer_id, s.subtotal, s.tax, s.total, s.payment_method, s.status,
	       s.created_by, s.created_at, s.updated_at,
	       c.id, c.name, c.phone, c.address, c.created_at
	FROM sales s
	JOIN customers c ON c.id = s.customer_id`

// SaleRepo implementación de SaleRepository (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta cabecera y líneas. Las líneas guardan su posición para conservar el orden.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO sales (id, invoice_number, customer_id, subtotal, tax, total, payment_method, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.InvoiceNumber, s.CustomerID, s.Subtotal, s.Tax, s.Total,
		string(s.PaymentMethod), string(s.Status), s.CreatedBy, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("insert sale", err)
	}
	itemQuery := `
		INSERT INTO sale_items (id, sale_id, product_id, variant_id, quantity, unit_price, total_price, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for i, it := range s.Items {
		if _, err := r.q.Exec(ctx, itemQuery,
			it.ID, s.ID, it.ProductID, it.VariantID, it.Quantity, it.UnitPrice, it.TotalPrice, i,
		); err != nil {
			return mapWriteErr("insert sale item", err)
		}
	}
	return nil
}

// GetByID obtiene la venta con cliente y líneas.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, saleSelect+` WHERE s.id = $1`, id)
}

// GetForUpdate como GetByID bloqueando la cabecera de la venta.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.getOne(ctx, saleSelect+` WHERE s.id = $1 FOR UPDATE OF s`, id)
}

func (r *SaleRepo) getOne(ctx context.Context, query, id string) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	items, err := r.itemsOf(ctx, []string{s.ID})
	if err != nil {
		return nil, err
	}
	s.Items = items[s.ID]
	return s, nil
}

// List ventas más recientes primero.
func (r *SaleRepo) List(ctx context.Context, f repository.SaleFilter) ([]*entity.Sale, error) {
	var a argList
	var where []string
	if s := strings.TrimSpace(f.Search); s != "" {
		ph := a.add(likePattern(s))
		where = append(where, fmt.Sprintf("(s.invoice_number ILIKE %[1]s OR c.name ILIKE %[1]s)", ph))
	}
	if f.From != nil {
		where = append(where, "s.created_at >= "+a.add(*f.From))
	}
	if f.To != nil {
		where = append(where, "s.created_at < "+a.add(*f.To))
	}
	if f.Status != "" {
		where = append(where, "s.status = "+a.add(string(f.Status)))
	}
	query := saleSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY s.created_at DESC, s.id DESC"
	if f.Limit > 0 {
		query += " LIMIT " + a.add(f.Limit)
	}

	rows, err := r.q.Query(ctx, query, a.args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()
	var list []*entity.Sale
	var ids []string
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
		ids = append(ids, s.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}
	items, err := r.itemsOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, s := range list {
		s.Items = items[s.ID]
	}
	return list, nil
}

// UpdateStatus cambia el estado de la venta.
func (r *SaleRepo) UpdateStatus(ctx context.Context, id string, status entity.SaleStatus, at time.Time) error {
	tag, err := r.q.Exec(ctx, `UPDATE sales SET status = $2, updated_at = $3 WHERE id = $1`, id, string(status), at)
	if err != nil {
		return fmt.Errorf("update sale status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la venta; las líneas caen por ON DELETE CASCADE.
func (r *SaleRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return mapWriteErr("delete sale", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *SaleRepo) itemsOf(ctx context.Context, saleIDs []string) (map[string][]*entity.SaleItem, error) {
	query := `
		SELECT id, sale_id, product_id, variant_id, quantity, unit_price, total_price
		FROM sale_items WHERE sale_id = ANY($1) ORDER BY sale_id, position`
	rows, err := r.q.Query(ctx, query, saleIDs)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]*entity.SaleItem, len(saleIDs))
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.VariantID, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		out[it.SaleID] = append(out[it.SaleID], &it)
	}
	return out, rows.Err()
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	var c entity.Customer
	var method, status string
	err := row.Scan(
		&s.ID, &s.InvoiceNumber, &s.CustomerID, &s.Subtotal, &s.Tax, &s.Total, &method, &status,
		&s.CreatedBy, &s.CreatedAt, &s.UpdatedAt,
		&c.ID, &c.Name, &c.Phone, &c.Address, &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan sale: %w", err)
	}
	s.PaymentMethod = entity.PaymentMethod(method)
	s.Status = entity.SaleStatus(status)
	s.Customer = &c
	return &s, nil
}

// CustomerRepo implementación de CustomerRepository (usable con pool o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// Create persiste un nuevo cliente.
func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	query := `INSERT INTO customers (id, name, phone, address, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.q.Exec(ctx, query, c.ID, c.Name, c.Phone, c.Address, c.CreatedAt); err != nil {
		return mapWriteErr("insert customer", err)
	}
	return nil
}

// GetByID obtiene un cliente por ID.
func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	return r.findOne(ctx, `SELECT id, name, phone, address, created_at FROM customers WHERE id = $1`, id)
}

// FindByNameAndPhone busca por nombre (sin distinguir mayúsculas) y teléfono exacto.
func (r *CustomerRepo) FindByNameAndPhone(ctx context.Context, name, phone string) (*entity.Customer, error) {
	query := `
		SELECT id, name, phone, address, created_at FROM customers
		WHERE lower(name) = lower($1) AND phone = $2
		ORDER BY created_at LIMIT 1`
	return r.findOne(ctx, query, name, phone)
}

// List clientes más recientes primero.
func (r *CustomerRepo) List(ctx context.Context, search string, limit int) ([]*entity.Customer, error) {
	var a argList
	query := `SELECT id, name, phone, address, created_at FROM customers`
	if s := strings.TrimSpace(search); s != "" {
		ph := a.add(likePattern(s))
		query += fmt.Sprintf(" WHERE name ILIKE %[1]s OR phone ILIKE %[1]s", ph)
	}
	query += " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT " + a.add(limit)
	}
	rows, err := r.q.Query(ctx, query, a.args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		var c entity.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

func (r *CustomerRepo) findOne(ctx context.Context, query string, args ...any) (*entity.Customer, error) {
	var c entity.Customer
	err := r.q.QueryRow(ctx, query, args...).Scan(&c.ID, &c.Name, &c.Phone, &c.Address, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}
