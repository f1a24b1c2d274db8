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
	_ repository.PurchaseRepository = (*PurchaseRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
)

const purchaseSelect = `
	SELECT p.id, p.purchase_number, p.supplier_id, p.subtotal, p.tax, p.total, p.payment_status, p.delivery_status,
	       p.created_by, p.created_at, p.updated_at,
	       s.id, s.name, s.contact, s.phone, s.address, s.created_at
	FROM purchases p
	JOIN suppliers s ON s.id = p.supplier_id`

// PurchaseRepo implementación de PurchaseRepository (usable con pool o tx).
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

// Create inserta cabecera y líneas.
func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	query := `
		INSERT INTO purchases (id, purchase_number, supplier_id, subtotal, tax, total, payment_status, delivery_status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.PurchaseNumber, p.SupplierID, p.Subtotal, p.Tax, p.Total,
		string(p.PaymentStatus), string(p.DeliveryStatus), p.CreatedBy, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("insert purchase", err)
	}
	itemQuery := `
		INSERT INTO purchase_items (id, purchase_id, product_id, variant_id, quantity, unit_cost, total_cost, position)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for i, it := range p.Items {
		if _, err := r.q.Exec(ctx, itemQuery,
			it.ID, p.ID, it.ProductID, it.VariantID, it.Quantity, it.UnitCost, it.TotalCost, i,
		); err != nil {
			return mapWriteErr("insert purchase item", err)
		}
	}
	return nil
}

// GetByID obtiene la compra con proveedor y líneas.
func (r *PurchaseRepo) GetByID(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.getOne(ctx, purchaseSelect+` WHERE p.id = $1`, id)
}

// GetForUpdate como GetByID bloqueando la cabecera.
func (r *PurchaseRepo) GetForUpdate(ctx context.Context, id string) (*entity.Purchase, error) {
	return r.getOne(ctx, purchaseSelect+` WHERE p.id = $1 FOR UPDATE OF p`, id)
}

func (r *PurchaseRepo) getOne(ctx context.Context, query, id string) (*entity.Purchase, error) {
	p, err := scanPurchase(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	items, err := r.itemsOf(ctx, []string{p.ID})
	if err != nil {
		return nil, err
	}
	p.Items = items[p.ID]
	return p, nil
}

// List compras más recientes primero.
func (r *PurchaseRepo) List(ctx context.Context, f repository.PurchaseFilter) ([]*entity.Purchase, error) {
	var a argList
	var where []string
	if s := strings.TrimSpace(f.Search); s != "" {
		ph := a.add(likePattern(s))
		where = append(where, fmt.Sprintf("(p.purchase_number ILIKE %[1]s OR s.name ILIKE %[1]s)", ph))
	}
	if f.From != nil {
		where = append(where, "p.created_at >= "+a.add(*f.From))
	}
	if f.To != nil {
		where = append(where, "p.created_at < "+a.add(*f.To))
	}
	if f.PaymentStatus != "" {
		where = append(where, "p.payment_status = "+a.add(string(f.PaymentStatus)))
	}
	if f.DeliveryStatus != "" {
		where = append(where, "p.delivery_status = "+a.add(string(f.DeliveryStatus)))
	}
	query := purchaseSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.created_at DESC, p.id DESC"
	if f.Limit > 0 {
		query += " LIMIT " + a.add(f.Limit)
	}

	rows, err := r.q.Query(ctx, query, a.args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()
	var list []*entity.Purchase
	var ids []string
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
		ids = append(ids, p.ID)
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
	for _, p := range list {
		p.Items = items[p.ID]
	}
	return list, nil
}

// UpdateStatus cambia los estados de pago y entrega.
func (r *PurchaseRepo) UpdateStatus(ctx context.Context, id string, payment entity.PaymentStatus, delivery entity.DeliveryStatus, at time.Time) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE purchases SET payment_status = $2, delivery_status = $3, updated_at = $4 WHERE id = $1`,
		id, string(payment), string(delivery), at,
	)
	if err != nil {
		return fmt.Errorf("update purchase status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina la compra con sus líneas.
func (r *PurchaseRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM purchases WHERE id = $1`, id)
	if err != nil {
		return mapWriteErr("delete purchase", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PurchaseRepo) itemsOf(ctx context.Context, purchaseIDs []string) (map[string][]*entity.PurchaseItem, error) {
	query := `
		SELECT id, purchase_id, product_id, variant_id, quantity, unit_cost, total_cost
		FROM purchase_items WHERE purchase_id = ANY($1) ORDER BY purchase_id, position`
	rows, err := r.q.Query(ctx, query, purchaseIDs)
	if err != nil {
		return nil, fmt.Errorf("list purchase items: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]*entity.PurchaseItem, len(purchaseIDs))
	for rows.Next() {
		var it entity.PurchaseItem
		if err := rows.Scan(&it.ID, &it.PurchaseID, &it.ProductID, &it.VariantID, &it.Quantity, &it.UnitCost, &it.TotalCost); err != nil {
			return nil, fmt.Errorf("scan purchase item: %w", err)
		}
		out[it.PurchaseID] = append(out[it.PurchaseID], &it)
	}
	return out, rows.Err()
}

func scanPurchase(row pgx.Row) (*entity.Purchase, error) {
	var p entity.Purchase
	var s entity.Supplier
	var payment, delivery string
	err := row.Scan(
		&p.ID, &p.PurchaseNumber, &p.SupplierID, &p.Subtotal, &p.Tax, &p.Total, &payment, &delivery,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
		&s.ID, &s.Name, &s.Contact, &s.Phone, &s.Address, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan purchase: %w", err)
	}
	p.PaymentStatus = entity.PaymentStatus(payment)
	p.DeliveryStatus = entity.DeliveryStatus(delivery)
	p.Supplier = &s
	return &p, nil
}

// SupplierRepo implementación de SupplierRepository (usable con pool o tx).
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

const supplierColumns = `id, name, contact, phone, address, created_at`

// Create persiste un proveedor.
func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	query := `INSERT INTO suppliers (` + supplierColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.q.Exec(ctx, query, s.ID, s.Name, s.Contact, s.Phone, s.Address, s.CreatedAt); err != nil {
		return mapWriteErr("insert supplier", err)
	}
	return nil
}

// GetByID obtiene un proveedor por ID.
func (r *SupplierRepo) GetByID(ctx context.Context, id string) (*entity.Supplier, error) {
	return r.findOne(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id)
}

// FindByNameAndPhone busca por nombre (sin distinguir mayúsculas) y teléfono exacto.
func (r *SupplierRepo) FindByNameAndPhone(ctx context.Context, name, phone string) (*entity.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE lower(name) = lower($1) AND phone = $2 ORDER BY created_at LIMIT 1`
	return r.findOne(ctx, query, name, phone)
}

// Update actualiza los datos de contacto.
func (r *SupplierRepo) Update(ctx context.Context, s *entity.Supplier) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE suppliers SET name = $2, contact = $3, phone = $4, address = $5 WHERE id = $1`,
		s.ID, s.Name, s.Contact, s.Phone, s.Address,
	)
	if err != nil {
		return mapWriteErr("update supplier", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List proveedores más recientes primero.
func (r *SupplierRepo) List(ctx context.Context, search string, limit int) ([]*entity.Supplier, error) {
	var a argList
	query := `SELECT ` + supplierColumns + ` FROM suppliers`
	if s := strings.TrimSpace(search); s != "" {
		ph := a.add(likePattern(s))
		query += fmt.Sprintf(" WHERE name ILIKE %[1]s OR contact ILIKE %[1]s OR phone ILIKE %[1]s", ph)
	}
	query += " ORDER BY created_at DESC, id DESC"
	if limit > 0 {
		query += " LIMIT " + a.add(limit)
	}
	rows, err := r.q.Query(ctx, query, a.args...)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Supplier
	for rows.Next() {
		var s entity.Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Contact, &s.Phone, &s.Address, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

func (r *SupplierRepo) findOne(ctx context.Context, query string, args ...any) (*entity.Supplier, error) {
	var s entity.Supplier
	err := r.q.QueryRow(ctx, query, args...).Scan(&s.ID, &s.Name, &s.Contact, &s.Phone, &s.Address, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return &s, nil
}
