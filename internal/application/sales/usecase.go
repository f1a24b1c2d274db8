// Package sales implementa el flujo de ventas: cliente, totales, numeración y salidas de stock
// en una sola transacción.
package sales

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/inventory"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/ports"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
	"github.com/MRD-HG/WilliamMetalAPI/pkg/telemetry"
)

var hundred = decimal.NewFromInt(100)

// Config parámetros del flujo de ventas.
type Config struct {
	DefaultTaxRate decimal.Decimal // porcentaje usado cuando la petición no trae tax_rate
	IdempotencyTTL time.Duration
}

// SaleUseCase crea, consulta, cambia de estado y elimina ventas.
// Una venta mantiene descontado su stock mientras su estado es PENDING o COMPLETED.
type SaleUseCase struct {
	tx     repository.TxRunner
	repos  repository.Repos
	engine *inventory.StockEngine
	pub    ports.EventPublisher
	idem   ports.IdempotencyStore
	cfg    Config
	now    func() time.Time
}

// NewSaleUseCase construye el caso de uso. pub e idem pueden ser nil.
func NewSaleUseCase(
	tx repository.TxRunner,
	repos repository.Repos,
	engine *inventory.StockEngine,
	pub ports.EventPublisher,
	idem ports.IdempotencyStore,
	cfg Config,
) *SaleUseCase {
	return &SaleUseCase{
		tx:     tx,
		repos:  repos,
		engine: engine,
		pub:    pub,
		idem:   idem,
		cfg:    cfg,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create registra la venta: resuelve el cliente, calcula totales, toma el siguiente número
// INV-{año}-{NNNN}, descuenta stock de cada línea en el orden recibido y persiste la venta
// como COMPLETED. Si alguna línea falla no queda nada escrito.
func (uc *SaleUseCase) Create(ctx context.Context, actorID, idempotencyKey string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "sales.Create")
	defer span.End()
	start := time.Now()
	defer func() { telemetry.WorkflowLatency.WithLabelValues("sale_create").Observe(time.Since(start).Seconds()) }()

	method, err := entity.ParsePaymentMethod(in.PaymentMethod)
	if err != nil {
		return nil, err
	}
	taxRate := uc.cfg.DefaultTaxRate
	if in.TaxRate != nil {
		taxRate = *in.TaxRate
	}
	if taxRate.IsNegative() {
		return nil, fmt.Errorf("tasa de impuesto %s: %w", taxRate, domain.ErrInvalidInput)
	}
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}
	if in.Customer.ID == "" && strings.TrimSpace(in.Customer.Name) == "" {
		return nil, fmt.Errorf("cliente requerido: %w", domain.ErrInvalidInput)
	}

	key := ""
	if idempotencyKey != "" {
		key = "sale:" + idempotencyKey
	}
	id, replayed, err := ports.Guard(ctx, uc.idem, key, uc.cfg.IdempotencyTTL, func() (string, error) {
		return uc.create(ctx, actorID, in, method, taxRate)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("sale.id", id), attribute.Bool("idempotent.replay", replayed))
	return uc.Get(ctx, id)
}

func (uc *SaleUseCase) create(ctx context.Context, actorID string, in dto.CreateSaleRequest, method entity.PaymentMethod, taxRate decimal.Decimal) (string, error) {
	now := uc.now()
	sale := &entity.Sale{
		ID:            uuid.New().String(),
		PaymentMethod: method,
		Status:        entity.SaleStatusCompleted,
		CreatedBy:     actorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	subtotal := decimal.Zero
	for _, it := range in.Items {
		line := it.UnitPrice.Mul(it.Quantity)
		subtotal = subtotal.Add(line)
		sale.Items = append(sale.Items, &entity.SaleItem{
			ID:         uuid.New().String(),
			SaleID:     sale.ID,
			ProductID:  it.ProductID,
			VariantID:  it.VariantID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: line,
		})
	}
	sale.Subtotal = subtotal
	sale.Tax = subtotal.Mul(taxRate).Div(hundred).Round(2)
	sale.Total = subtotal.Add(sale.Tax)

	var movs []*entity.InventoryMovement
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		movs = movs[:0]
		customer, err := resolveCustomer(ctx, r, in.Customer, now)
		if err != nil {
			return err
		}
		sale.CustomerID = customer.ID

		n, err := r.Sequences.Next(ctx, repository.SequenceInvoice, now.Year())
		if err != nil {
			return err
		}
		sale.InvoiceNumber = FormatInvoiceNumber(now.Year(), n)

		locked, err := uc.engine.LockVariants(ctx, r, saleKeys(sale))
		if err != nil {
			return err
		}
		for _, it := range sale.Items {
			it.ProductID = locked[it.VariantID].ProductID
		}
		for _, it := range sale.Items {
			mov, err := uc.engine.ApplyMovement(ctx, r, inventory.MovementRequest{
				ProductID:     it.ProductID,
				VariantID:     it.VariantID,
				Type:          entity.MovementTypeOUT,
				Quantity:      it.Quantity,
				Note:          "venta " + sale.InvoiceNumber,
				ReferenceType: entity.ReferenceSale,
				ReferenceID:   sale.ID,
				ActorID:       actorID,
			})
			if err != nil {
				return err
			}
			movs = append(movs, mov)
		}
		return r.Sales.Create(ctx, sale)
	})
	if err != nil {
		return "", err
	}
	telemetry.SalesCreatedTotal.Inc()
	inventory.Committed(ctx, uc.pub, movs...)
	return sale.ID, nil
}

// UpdateStatus cambia el estado de la venta. Pasar a CANCELLED devuelve el stock de cada
// línea; salir de CANCELLED lo vuelve a descontar (y puede fallar por stock insuficiente).
func (uc *SaleUseCase) UpdateStatus(ctx context.Context, actorID, id string, in dto.UpdateSaleStatusRequest) (*dto.SaleResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "sales.UpdateStatus")
	defer span.End()

	status, err := entity.ParseSaleStatus(in.Status)
	if err != nil {
		return nil, err
	}
	var movs []*entity.InventoryMovement
	err = uc.tx.Run(ctx, func(r repository.Repos) error {
		movs = movs[:0]
		sale, err := r.Sales.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if sale.Status == status {
			return nil
		}
		switch {
		case sale.Status.HoldsStock() && !status.HoldsStock():
			movs, err = uc.moveItems(ctx, r, sale, entity.MovementTypeIN, actorID, "venta anulada "+sale.InvoiceNumber)
		case !sale.Status.HoldsStock() && status.HoldsStock():
			movs, err = uc.moveItems(ctx, r, sale, entity.MovementTypeOUT, actorID, "venta reactivada "+sale.InvoiceNumber)
		}
		if err != nil {
			return err
		}
		return r.Sales.UpdateStatus(ctx, id, status, uc.now())
	})
	if err != nil {
		return nil, err
	}
	inventory.Committed(ctx, uc.pub, movs...)
	return uc.Get(ctx, id)
}

// Delete elimina la venta; si aún mantenía stock descontado lo devuelve con entradas compensatorias.
func (uc *SaleUseCase) Delete(ctx context.Context, actorID, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "sales.Delete")
	defer span.End()

	var movs []*entity.InventoryMovement
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		movs = movs[:0]
		sale, err := r.Sales.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if sale == nil {
			return domain.ErrNotFound
		}
		if sale.Status.HoldsStock() {
			movs, err = uc.moveItems(ctx, r, sale, entity.MovementTypeIN, actorID, "venta eliminada "+sale.InvoiceNumber)
			if err != nil {
				return err
			}
		}
		return r.Sales.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	inventory.Committed(ctx, uc.pub, movs...)
	return nil
}

func (uc *SaleUseCase) moveItems(ctx context.Context, r repository.Repos, sale *entity.Sale, typ entity.MovementType, actorID, note string) ([]*entity.InventoryMovement, error) {
	if _, err := uc.engine.LockVariants(ctx, r, saleKeys(sale)); err != nil {
		return nil, err
	}
	movs := make([]*entity.InventoryMovement, 0, len(sale.Items))
	for _, it := range sale.Items {
		mov, err := uc.engine.ApplyMovement(ctx, r, inventory.MovementRequest{
			ProductID:     it.ProductID,
			VariantID:     it.VariantID,
			Type:          typ,
			Quantity:      it.Quantity,
			Note:          note,
			ReferenceType: entity.ReferenceSale,
			ReferenceID:   sale.ID,
			ActorID:       actorID,
		})
		if err != nil {
			return nil, err
		}
		movs = append(movs, mov)
	}
	return movs, nil
}

// Get obtiene una venta con cliente y líneas.
func (uc *SaleUseCase) Get(ctx context.Context, id string) (*dto.SaleResponse, error) {
	sale, err := uc.repos.Sales.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, domain.ErrNotFound
	}
	names := newNameCache(uc.repos.Products)
	return toSaleResponse(ctx, sale, names)
}

// List ventas más recientes primero con filtros de búsqueda, fechas y estado.
func (uc *SaleUseCase) List(ctx context.Context, f dto.SaleFilter) ([]dto.SaleResponse, error) {
	from, to, err := dto.ParseDateRange(f.StartDate, f.EndDate)
	if err != nil {
		return nil, err
	}
	filter := repository.SaleFilter{Search: f.Search, From: from, To: to, Limit: dto.ClampLimit(f.Limit)}
	if f.Status != "" {
		if filter.Status, err = entity.ParseSaleStatus(f.Status); err != nil {
			return nil, err
		}
	}
	list, err := uc.repos.Sales.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	names := newNameCache(uc.repos.Products)
	out := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		resp, err := toSaleResponse(ctx, s, names)
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

// NextInvoiceNumber vista previa del próximo número; el definitivo se asigna al crear.
func (uc *SaleUseCase) NextInvoiceNumber(ctx context.Context) (*dto.NumberResponse, error) {
	year := uc.now().Year()
	n, err := uc.repos.Sequences.Current(ctx, repository.SequenceInvoice, year)
	if err != nil {
		return nil, err
	}
	return &dto.NumberResponse{Number: FormatInvoiceNumber(year, n+1)}, nil
}

// FormatInvoiceNumber INV-{año}-{secuencia con 4 dígitos mínimo}.
func FormatInvoiceNumber(year int, seq int64) string {
	return fmt.Sprintf("INV-%d-%04d", year, seq)
}

func validateItems(items []dto.SaleItemRequest) error {
	if len(items) == 0 {
		return fmt.Errorf("la venta no tiene líneas: %w", domain.ErrInvalidInput)
	}
	for i, it := range items {
		if strings.TrimSpace(it.VariantID) == "" {
			return fmt.Errorf("línea %d sin variante: %w", i+1, domain.ErrInvalidInput)
		}
		if !it.Quantity.IsPositive() {
			return fmt.Errorf("línea %d cantidad %s: %w", i+1, it.Quantity, domain.ErrInvalidQuantity)
		}
		if it.UnitPrice.IsNegative() {
			return fmt.Errorf("línea %d precio %s: %w", i+1, it.UnitPrice, domain.ErrInvalidInput)
		}
	}
	return nil
}

func saleKeys(s *entity.Sale) []inventory.VariantKey {
	keys := make([]inventory.VariantKey, 0, len(s.Items))
	for _, it := range s.Items {
		keys = append(keys, inventory.VariantKey{ProductID: it.ProductID, VariantID: it.VariantID})
	}
	return keys
}
