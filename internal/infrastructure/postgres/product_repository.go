package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
)

var (
	_ repository.ProductRepository = (*ProductRepo)(nil)
	_ repository.VariantRepository = (*VariantRepo)(nil)
)

const variantColumns = `id, product_id, specification, sku, price, cost, stock, min_stock, max_stock, version, created_at, updated_at`

// ProductRepo implementación de ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// Create persiste la cabecera del producto; las variantes se insertan con VariantRepo.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, name_ar, name_fr, category, description, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.NameAr, p.NameFr, p.Category, p.Description, p.Image, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("insert product", err)
	}
	return nil
}

// GetByID obtiene un producto con sus variantes.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `
		SELECT id, name_ar, name_fr, category, description, image, created_at, updated_at
		FROM products WHERE id = $1`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.NameAr, &p.NameFr, &p.Category, &p.Description, &p.Image, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	byProduct, err := r.variantsOf(ctx, []string{p.ID})
	if err != nil {
		return nil, err
	}
	p.Variants = byProduct[p.ID]
	return &p, nil
}

// Update actualiza los datos del producto.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products SET name_ar = $2, name_fr = $3, category = $4, description = $5, image = $6, updated_at = $7
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, p.ID, p.NameAr, p.NameFr, p.Category, p.Description, p.Image, p.UpdatedAt)
	if err != nil {
		return mapWriteErr("update product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el producto; variantes y movimientos caen por ON DELETE CASCADE.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return mapWriteErr("delete product", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List productos ordenados por nombre árabe con filtros de búsqueda, categoría y estado de stock.
func (r *ProductRepo) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var a argList
	var where []string
	if s := strings.TrimSpace(f.Search); s != "" {
		ph := a.add(likePattern(s))
		where = append(where, fmt.Sprintf(`(p.name_ar ILIKE %[1]s OR p.name_fr ILIKE %[1]s OR p.category ILIKE %[1]s
			OR EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = p.id AND (v.sku ILIKE %[1]s OR v.specification ILIKE %[1]s)))`, ph))
	}
	if f.Category != "" {
		where = append(where, "p.category = "+a.add(f.Category))
	}
	switch strings.ToLower(f.StockStatus) {
	case entity.StockStatusAvailable:
		where = append(where, `NOT EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = p.id AND v.stock <= v.min_stock)`)
	case entity.StockStatusLow:
		where = append(where, `EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = p.id AND v.stock > 0 AND v.stock <= v.min_stock)`)
	case entity.StockStatusOut:
		where = append(where, `EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = p.id AND v.stock <= 0)`)
	}

	query := `SELECT p.id, p.name_ar, p.name_fr, p.category, p.description, p.image, p.created_at, p.updated_at FROM products p`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.name_ar, p.id"

	rows, err := r.q.Query(ctx, query, a.args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var list []*entity.Product
	var ids []string
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.ID, &p.NameAr, &p.NameFr, &p.Category, &p.Description, &p.Image, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return list, nil
	}
	byProduct, err := r.variantsOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range list {
		p.Variants = byProduct[p.ID]
	}
	return list, nil
}

// Categories categorías distintas en orden alfabético.
func (r *ProductRepo) Categories(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `SELECT DISTINCT category FROM products WHERE category <> '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *ProductRepo) variantsOf(ctx context.Context, productIDs []string) (map[string][]*entity.Variant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE product_id = ANY($1) ORDER BY created_at, id`
	rows, err := r.q.Query(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()
	out := make(map[string][]*entity.Variant, len(productIDs))
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		out[v.ProductID] = append(out[v.ProductID], v)
	}
	return out, rows.Err()
}

// VariantRepo implementación de VariantRepository (usable con pool o tx).
type VariantRepo struct {
	q Querier
}

// NewVariantRepository construye el adaptador. Pasar pool o tx (Querier).
func NewVariantRepository(q Querier) *VariantRepo {
	return &VariantRepo{q: q}
}

// Create inserta la variante con stock 0; el stock inicial entra como movimiento IN.
func (r *VariantRepo) Create(ctx context.Context, v *entity.Variant) error {
	query := `
		INSERT INTO product_variants (id, product_id, specification, sku, price, cost, stock, min_stock, max_stock, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		v.ID, v.ProductID, v.Specification, v.SKU, v.Price, v.Cost, v.Stock,
		v.MinStock, v.MaxStock, v.Version, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return mapWriteErr("insert variant", err)
	}
	return nil
}

// GetByID obtiene una variante por ID.
func (r *VariantRepo) GetByID(ctx context.Context, id string) (*entity.Variant, error) {
	row := r.q.QueryRow(ctx, `SELECT `+variantColumns+` FROM product_variants WHERE id = $1`, id)
	v, err := scanVariant(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

// GetForUpdate obtiene la variante y bloquea la fila para update (SELECT FOR UPDATE).
func (r *VariantRepo) GetForUpdate(ctx context.Context, productID, variantID string) (*entity.Variant, error) {
	query := `SELECT ` + variantColumns + ` FROM product_variants WHERE id = $1 AND ($2 = '' OR product_id = $2) FOR UPDATE`
	v, err := scanVariant(r.q.QueryRow(ctx, query, variantID, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

// Update actualiza los datos de catálogo. El stock y la versión no se tocan.
func (r *VariantRepo) Update(ctx context.Context, v *entity.Variant) error {
	query := `
		UPDATE product_variants
		SET specification = $2, sku = $3, price = $4, cost = $5, min_stock = $6, max_stock = $7, updated_at = $8
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, v.ID, v.Specification, v.SKU, v.Price, v.Cost, v.MinStock, v.MaxStock, v.UpdatedAt)
	if err != nil {
		return mapWriteErr("update variant", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVariantNotFound
	}
	return nil
}

// UpdateStock escribe el stock solo si la versión no cambió desde la lectura.
func (r *VariantRepo) UpdateStock(ctx context.Context, id string, stock decimal.Decimal, expectedVersion int64) error {
	query := `
		UPDATE product_variants SET stock = $2, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $3`
	tag, err := r.q.Exec(ctx, query, id, stock, expectedVersion)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("variante %s versión %d: %w", id, expectedVersion, domain.ErrConflict)
	}
	return nil
}

// Delete elimina la variante con sus movimientos.
func (r *VariantRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM product_variants WHERE id = $1`, id)
	if err != nil {
		return mapWriteErr("delete variant", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVariantNotFound
	}
	return nil
}

// IsReferenced indica si existen líneas de venta o compra de la variante.
func (r *VariantRepo) IsReferenced(ctx context.Context, id string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM sale_items WHERE variant_id = $1)
		    OR EXISTS (SELECT 1 FROM purchase_items WHERE variant_id = $1)`
	var ok bool
	if err := r.q.QueryRow(ctx, query, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("variant referenced: %w", err)
	}
	return ok, nil
}

// ListAll todas las variantes.
func (r *VariantRepo) ListAll(ctx context.Context) ([]*entity.Variant, error) {
	rows, err := r.q.Query(ctx, `SELECT `+variantColumns+` FROM product_variants ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()
	var list []*entity.Variant
	for rows.Next() {
		v, err := scanVariant(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, v)
	}
	return list, rows.Err()
}

func scanVariant(row pgx.Row) (*entity.Variant, error) {
	var v entity.Variant
	err := row.Scan(
		&v.ID, &v.ProductID, &v.Specification, &v.SKU, &v.Price, &v.Cost, &v.Stock,
		&v.MinStock, &v.MaxStock, &v.Version, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan variant: %w", err)
	}
	return &v, nil
}
