// Package purchasing implementa el flujo de compras a proveedores y la acreditación de
// stock al recibir la mercancía.
package purchasing

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

// PurchaseUseCase crea, consulta, cambia de estado y elimina compras.
// Una compra tiene su stock acreditado mientras la entrega está DELIVERED o PARTIAL.
type PurchaseUseCase struct {
	tx     repository.TxRunner
	repos  repository.Repos
	engine *inventory.StockEngine
	pub    ports.EventPublisher
	idem   ports.IdempotencyStore
	ttl    time.Duration
	now    func() time.Time
}

// NewPurchaseUseCase construye el caso de uso. pub e idem pueden ser nil.
func NewPurchaseUseCase(
	tx repository.TxRunner,
	repos repository.Repos,
	engine *inventory.StockEngine,
	pub ports.EventPublisher,
	idem ports.IdempotencyStore,
	idempotencyTTL time.Duration,
) *PurchaseUseCase {
	return &PurchaseUseCase{
		tx:     tx,
		repos:  repos,
		engine: engine,
		pub:    pub,
		idem:   idem,
		ttl:    idempotencyTTL,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Create registra la compra con número PO-{año}-{NNNN}. El impuesto usa la tasa de la
// configuración de la empresa. Si la entrega ya viene como DELIVERED o PARTIAL se acredita
// el stock de cada línea en la misma transacción.
func (uc *PurchaseUseCase) Create(ctx context.Context, actorID, idempotencyKey string, in dto.CreatePurchaseRequest) (*dto.PurchaseResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "purchasing.Create")
	defer span.End()
	start := time.Now()
	defer func() {
		telemetry.WorkflowLatency.WithLabelValues("purchase_create").Observe(time.Since(start).Seconds())
	}()

	payment, delivery, err := parseStatuses(in.PaymentStatus, in.DeliveryStatus)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Supplier.Name) == "" {
		return nil, fmt.Errorf("proveedor requerido: %w", domain.ErrInvalidInput)
	}
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}

	key := ""
	if idempotencyKey != "" {
		key = "purchase:" + idempotencyKey
	}
	id, replayed, err := ports.Guard(ctx, uc.idem, key, uc.ttl, func() (string, error) {
		return uc.create(ctx, actorID, in, payment, delivery)
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("purchase.id", id), attribute.Bool("idempotent.replay", replayed))
	return uc.Get(ctx, id)
}

func (uc *PurchaseUseCase) create(ctx context.Context, actorID string, in dto.CreatePurchaseRequest, payment entity.PaymentStatus, delivery entity.DeliveryStatus) (string, error) {
	now := uc.now()
	p := &entity.Purchase{
		ID:             uuid.New().String(),
		PaymentStatus:  payment,
		DeliveryStatus: delivery,
		CreatedBy:      actorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	subtotal := decimal.Zero
	for _, it := range in.Items {
		line := it.UnitCost.Mul(it.Quantity)
		subtotal = subtotal.Add(line)
		p.Items = append(p.Items, &entity.PurchaseItem{
			ID:         uuid.New().String(),
			PurchaseID: p.ID,
			ProductID:  it.ProductID,
			VariantID:  it.VariantID,
			Quantity:   it.Quantity,
			UnitCost:   it.UnitCost,
			TotalCost:  line,
		})
	}
	p.Subtotal = subtotal

	var movs []*entity.InventoryMovement
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		movs = movs[:0]
		rate, err := taxRate(ctx, r)
		if err != nil {
			return err
		}
		p.Tax = subtotal.Mul(rate).Div(hundred).Round(2)
		p.Total = subtotal.Add(p.Tax)

		supplier, err := resolveSupplier(ctx, r, in.Supplier, now)
		if err != nil {
			return err
		}
		p.SupplierID = supplier.ID

		n, err := r.Sequences.Next(ctx, repository.SequencePurchase, now.Year())
		if err != nil {
			return err
		}
		p.PurchaseNumber = FormatPurchaseNumber(now.Year(), n)

		locked, err := uc.engine.LockVariants(ctx, r, purchaseKeys(p))
		if err != nil {
			return err
		}
		for _, it := range p.Items {
			it.ProductID = locked[it.VariantID].ProductID
		}
		if delivery.CreditsStock() {
			if movs, err = uc.moveItems(ctx, r, p, entity.MovementTypeIN, actorID, "compra "+p.PurchaseNumber); err != nil {
				return err
			}
		}
		return r.Purchases.Create(ctx, p)
	})
	if err != nil {
		return "", err
	}
	telemetry.PurchasesCreatedTotal.Inc()
	inventory.Committed(ctx, uc.pub, movs...)
	return p.ID, nil
}

// UpdateStatus cambia estado de pago y/o entrega. Acredita el stock cuando la entrega pasa a
// DELIVERED o PARTIAL desde PENDING y lo retira cuando vuelve a PENDING. Entre DELIVERED y
// PARTIAL no hay movimiento.
func (uc *PurchaseUseCase) UpdateStatus(ctx context.Context, actorID, id string, in dto.UpdatePurchaseStatusRequest) (*dto.PurchaseResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "purchasing.UpdateStatus")
	defer span.End()

	if in.PaymentStatus == nil && in.DeliveryStatus == nil {
		return nil, fmt.Errorf("sin cambios de estado: %w", domain.ErrInvalidInput)
	}
	var movs []*entity.InventoryMovement
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		movs = movs[:0]
		p, err := r.Purchases.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		payment, delivery := p.PaymentStatus, p.DeliveryStatus
		if in.PaymentStatus != nil {
			if payment, err = entity.ParsePaymentStatus(*in.PaymentStatus); err != nil {
				return err
			}
		}
		if in.DeliveryStatus != nil {
			if delivery, err = entity.ParseDeliveryStatus(*in.DeliveryStatus); err != nil {
				return err
			}
		}
		switch {
		case !p.DeliveryStatus.CreditsStock() && delivery.CreditsStock():
			movs, err = uc.moveItems(ctx, r, p, entity.MovementTypeIN, actorID, "compra recibida "+p.PurchaseNumber)
		case p.DeliveryStatus.CreditsStock() && !delivery.CreditsStock():
			movs, err = uc.moveItems(ctx, r, p, entity.MovementTypeOUT, actorID, "recepción revertida "+p.PurchaseNumber)
		}
		if err != nil {
			return err
		}
		return r.Purchases.UpdateStatus(ctx, id, payment, delivery, uc.now())
	})
	if err != nil {
		return nil, err
	}
	inventory.Committed(ctx, uc.pub, movs...)
	return uc.Get(ctx, id)
}

// Delete elimina la compra. Si su stock estaba acreditado lo retira; falla con
// ErrInsufficientStock si ya se vendió y el retiro dejaría stock negativo.
func (uc *PurchaseUseCase) Delete(ctx context.Context, actorID, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "purchasing.Delete")
	defer span.End()

	var movs []*entity.InventoryMovement
	err := uc.tx.Run(ctx, func(r repository.Repos) error {
		movs = movs[:0]
		p, err := r.Purchases.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.ErrNotFound
		}
		if p.DeliveryStatus.CreditsStock() {
			if movs, err = uc.moveItems(ctx, r, p, entity.MovementTypeOUT, actorID, "compra eliminada "+p.PurchaseNumber); err != nil {
				return err
			}
		}
		return r.Purchases.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	inventory.Committed(ctx, uc.pub, movs...)
	return nil
}

func (uc *PurchaseUseCase) moveItems(ctx context.Context, r repository.Repos, p *entity.Purchase, typ entity.MovementType, actorID, note string) ([]*entity.InventoryMovement, error) {
	if _, err := uc.engine.LockVariants(ctx, r, purchaseKeys(p)); err != nil {
		return nil, err
	}
	movs := make([]*entity.InventoryMovement, 0, len(p.Items))
	for _, it := range p.Items {
		mov, err := uc.engine.ApplyMovement(ctx, r, inventory.MovementRequest{
			ProductID:     it.ProductID,
			VariantID:     it.VariantID,
			Type:          typ,
			Quantity:      it.Quantity,
			Note:          note,
			ReferenceType: entity.ReferencePurchase,
			ReferenceID:   p.ID,
			ActorID:       actorID,
		})
		if err != nil {
			return nil, err
		}
		movs = append(movs, mov)
	}
	return movs, nil
}

// Get obtiene una compra con proveedor y líneas.
func (uc *PurchaseUseCase) Get(ctx context.Context, id string) (*dto.PurchaseResponse, error) {
	p, err := uc.repos.Purchases.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return toPurchaseResponse(ctx, p, newNameCache(uc.repos.Products))
}

// List compras más recientes primero.
func (uc *PurchaseUseCase) List(ctx context.Context, f dto.PurchaseFilter) ([]dto.PurchaseResponse, error) {
	from, to, err := dto.ParseDateRange(f.StartDate, f.EndDate)
	if err != nil {
		return nil, err
	}
	filter := repository.PurchaseFilter{Search: f.Search, From: from, To: to, Limit: dto.ClampLimit(f.Limit)}
	if f.PaymentStatus != "" {
		if filter.PaymentStatus, err = entity.ParsePaymentStatus(f.PaymentStatus); err != nil {
			return nil, err
		}
	}
	if f.DeliveryStatus != "" {
		if filter.DeliveryStatus, err = entity.ParseDeliveryStatus(f.DeliveryStatus); err != nil {
			return nil, err
		}
	}
	list, err := uc.repos.Purchases.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	names := newNameCache(uc.repos.Products)
	out := make([]dto.PurchaseResponse, 0, len(list))
	for _, p := range list {
		resp, err := toPurchaseResponse(ctx, p, names)
		if err != nil {
			return nil, err
		}
		out = append(out, *resp)
	}
	return out, nil
}

// NextPurchaseNumber vista previa del próximo número de compra.
func (uc *PurchaseUseCase) NextPurchaseNumber(ctx context.Context) (*dto.NumberResponse, error) {
	year := uc.now().Year()
	n, err := uc.repos.Sequences.Current(ctx, repository.SequencePurchase, year)
	if err != nil {
		return nil, err
	}
	return &dto.NumberResponse{Number: FormatPurchaseNumber(year, n+1)}, nil
}

// FormatPurchaseNumber PO-{año}-{secuencia con 4 dígitos mínimo}.
func FormatPurchaseNumber(year int, seq int64) string {
	return fmt.Sprintf("PO-%d-%04d", year, seq)
}

func taxRate(ctx context.Context, r repository.Repos) (decimal.Decimal, error) {
	s, err := r.Settings.Get(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if s == nil {
		s = entity.DefaultCompanySettings()
	}
	return s.TaxRate, nil
}

func parseStatuses(payment, delivery string) (entity.PaymentStatus, entity.DeliveryStatus, error) {
	ps, ds := entity.PaymentStatusPending, entity.DeliveryStatusPending
	var err error
	if payment != "" {
		if ps, err = entity.ParsePaymentStatus(payment); err != nil {
			return "", "", err
		}
	}
	if delivery != "" {
		if ds, err = entity.ParseDeliveryStatus(delivery); err != nil {
			return "", "", err
		}
	}
	return ps, ds, nil
}

func validateItems(items []dto.PurchaseItemRequest) error {
	if len(items) == 0 {
		return fmt.Errorf("la compra no tiene líneas: %w", domain.ErrInvalidInput)
	}
	for i, it := range items {
		if strings.TrimSpace(it.VariantID) == "" {
			return fmt.Errorf("línea %d sin variante: %w", i+1, domain.ErrInvalidInput)
		}
		if !it.Quantity.IsPositive() {
			return fmt.Errorf("línea %d cantidad %s: %w", i+1, it.Quantity, domain.ErrInvalidQuantity)
		}
		if it.UnitCost.IsNegative() {
			return fmt.Errorf("línea %d costo %s: %w", i+1, it.UnitCost, domain.ErrInvalidInput)
		}
	}
	return nil
}

func purchaseKeys(p *entity.Purchase) []inventory.VariantKey {
	keys := make([]inventory.VariantKey, 0, len(p.Items))
	for _, it := range p.Items {
		keys = append(keys, inventory.VariantKey{ProductID: it.ProductID, VariantID: it.VariantID})
	}
	return keys
}
