package sales_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MRD-HG/WilliamMetalAPI/internal/application/catalog"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/inventory"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/sales"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain"
	"github.com/MRD-HG/WilliamMetalAPI/internal/infrastructure/memory"
)

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

type fixture struct {
	store     *memory.Store
	products  *catalog.ProductUseCase
	inventory *inventory.InventoryUseCase
	sales     *sales.SaleUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	repos := store.Repos()
	engine := inventory.NewStockEngine()
	return &fixture{
		store:     store,
		products:  catalog.NewProductUseCase(store, repos, engine, nil),
		inventory: inventory.NewInventoryUseCase(store, repos, engine, nil),
		sales: sales.NewSaleUseCase(store, repos, engine, nil, memory.NewIdempotencyStore(), sales.Config{
			DefaultTaxRate: dec(10),
			IdempotencyTTL: time.Hour,
		}),
	}
}

// variant crea un producto de una variante con el stock indicado.
func (f *fixture) variant(t *testing.T, spec string, stock int64) (productID, variantID string) {
	t.Helper()
	p, err := f.products.Create(context.Background(), "", dto.CreateProductRequest{
		NameAr:   "Fer " + spec,
		Category: "fers",
		Variants: []dto.CreateVariantRequest{{Specification: spec, Price: dec(50), Cost: dec(30), Stock: dec(stock)}},
	})
	require.NoError(t, err)
	return p.ID, p.Variants[0].ID
}

func (f *fixture) stock(t *testing.T, productID string) decimal.Decimal {
	t.Helper()
	p, err := f.products.Get(context.Background(), productID)
	require.NoError(t, err)
	return p.Variants[0].Stock
}

func saleOf(lines ...dto.SaleItemRequest) dto.CreateSaleRequest {
	return dto.CreateSaleRequest{
		Customer:      dto.CustomerInfo{Name: "Karim", Phone: "0611111111"},
		PaymentMethod: "cash",
		Items:         lines,
	}
}

func line(productID, variantID string, qty int64) dto.SaleItemRequest {
	return dto.SaleItemRequest{ProductID: productID, VariantID: variantID, Quantity: dec(qty), UnitPrice: dec(50)}
}

func TestSale_EscenarioCompleto(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pid, vid := f.variant(t, "12mm", 10)

	sale, err := f.sales.Create(ctx, "u1", "", saleOf(line(pid, vid, 3)))
	require.NoError(t, err)
	assert.True(t, f.stock(t, pid).Equal(dec(7)))
	assert.Equal(t, "COMPLETED", sale.Status)
	assert.Equal(t, "CASH", sale.PaymentMethod)
	assert.True(t, sale.Subtotal.Equal(dec(150)))
	assert.True(t, sale.Tax.Equal(dec(15)))
	assert.True(t, sale.Total.Equal(dec(165)))
	require.NotNil(t, sale.Customer)
	assert.Equal(t, "Karim", sale.Customer.Name)
	assert.Equal(t, "12mm", sale.Items[0].VariantName)

	_, err = f.sales.Create(ctx, "u1", "", saleOf(line(pid, vid, 10)))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.stock(t, pid).Equal(dec(7)))

	_, err = f.inventory.AdjustStock(ctx, "u1", dto.AdjustStockRequest{ProductID: pid, VariantID: vid, NewStock: dec(20), Reason: "conteo"})
	require.NoError(t, err)
	second, err := f.sales.Create(ctx, "u1", "", saleOf(line(pid, vid, 10)))
	require.NoError(t, err)
	assert.True(t, f.stock(t, pid).Equal(dec(10)))

	require.NoError(t, f.sales.Delete(ctx, "u1", second.ID))
	assert.True(t, f.stock(t, pid).Equal(dec(20)))
	_, err = f.sales.Get(ctx, second.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	rec, err := f.inventory.Reconcile(ctx, vid)
	require.NoError(t, err)
	assert.True(t, rec.Consistent)
}

func TestSale_FallaUnaLineaNoEscribeNada(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	p1, v1 := f.variant(t, "A", 10)
	p2, v2 := f.variant(t, "B", 1)

	_, err := f.sales.Create(ctx, "", "", saleOf(line(p1, v1, 4), line(p2, v2, 2)))
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, f.stock(t, p1).Equal(dec(10)))
	assert.True(t, f.stock(t, p2).Equal(dec(1)))
	list, err := f.sales.List(ctx, dto.SaleFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)

	next, err := f.sales.NextInvoiceNumber(ctx)
	require.NoError(t, err)
	assert.Equal(t, sales.FormatInvoiceNumber(time.Now().UTC().Year(), 1), next.Number, "el número no se consume")
}

func TestSale_Validaciones(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pid, vid := f.variant(t, "C", 5)
	neg := dec(-1)

	cases := map[string]struct {
		in   dto.CreateSaleRequest
		want error
	}{
		"sin líneas":         {saleOf(), domain.ErrInvalidInput},
		"cantidad cero":      {saleOf(line(pid, vid, 0)), domain.ErrInvalidQuantity},
		"método inválido":    {dto.CreateSaleRequest{Customer: dto.CustomerInfo{Name: "X"}, PaymentMethod: "BITCOIN", Items: []dto.SaleItemRequest{line(pid, vid, 1)}}, domain.ErrInvalidStatus},
		"sin cliente":        {dto.CreateSaleRequest{PaymentMethod: "CASH", Items: []dto.SaleItemRequest{line(pid, vid, 1)}}, domain.ErrInvalidInput},
		"impuesto negativo":  {dto.CreateSaleRequest{Customer: dto.CustomerInfo{Name: "X"}, PaymentMethod: "CASH", TaxRate: &neg, Items: []dto.SaleItemRequest{line(pid, vid, 1)}}, domain.ErrInvalidInput},
		"variante no existe": {saleOf(line(pid, "nope", 1)), domain.ErrNotFound},
		"cliente no existe":  {dto.CreateSaleRequest{Customer: dto.CustomerInfo{ID: "nope"}, PaymentMethod: "CASH", Items: []dto.SaleItemRequest{line(pid, vid, 1)}}, domain.ErrNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.sales.Create(ctx, "", "", tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.True(t, f.stock(t, pid).Equal(dec(5)))
}

func TestSale_TasaExplicitaYRedondeo(t *testing.T) {
	f := newFixture(t)
	pid, vid := f.variant(t, "D", 10)
	rate := decimal.RequireFromString("7.5")
	in := saleOf(dto.SaleItemRequest{ProductID: pid, VariantID: vid, Quantity: dec(1), UnitPrice: decimal.RequireFromString("10.33")})
	in.TaxRate = &rate

	sale, err := f.sales.Create(context.Background(), "", "", in)
	require.NoError(t, err)
	assert.Equal(t, "0.77", sale.Tax.StringFixed(2))
	assert.Equal(t, "11.10", sale.Total.StringFixed(2))
}

func TestSale_CambiosDeEstadoSimetricos(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pid, vid := f.variant(t, "E", 10)
	sale, err := f.sales.Create(ctx, "", "", saleOf(line(pid, vid, 4)))
	require.NoError(t, err)

	steps := []struct {
		status string
		stock  int64
	}{
		{"CANCELLED", 10},
		{"PENDING", 6},
		{"COMPLETED", 6},
		{"cancelled", 10},
		{"CANCELLED", 10},
	}
	for _, s := range steps {
		out, err := f.sales.UpdateStatus(ctx, "", sale.ID, dto.UpdateSaleStatusRequest{Status: s.status})
		require.NoError(t, err, s.status)
		assert.Equal(t, strings.ToUpper(s.status), out.Status)
		assert.True(t, f.stock(t, pid).Equal(dec(s.stock)), "%s: stock %s", s.status, f.stock(t, pid))
	}

	_, err = f.sales.UpdateStatus(ctx, "", sale.ID, dto.UpdateSaleStatusRequest{Status: "SHIPPED"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
	_, err = f.sales.UpdateStatus(ctx, "", "nope", dto.UpdateSaleStatusRequest{Status: "CANCELLED"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Eliminar una venta cancelada no mueve stock.
	require.NoError(t, f.sales.Delete(ctx, "", sale.ID))
	assert.True(t, f.stock(t, pid).Equal(dec(10)))
}

func TestSale_ReactivarSinStockFalla(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pid, vid := f.variant(t, "F", 5)
	sale, err := f.sales.Create(ctx, "", "", saleOf(line(pid, vid, 5)))
	require.NoError(t, err)
	_, err = f.sales.UpdateStatus(ctx, "", sale.ID, dto.UpdateSaleStatusRequest{Status: "CANCELLED"})
	require.NoError(t, err)
	_, err = f.sales.Create(ctx, "", "", saleOf(line(pid, vid, 3)))
	require.NoError(t, err)

	_, err = f.sales.UpdateStatus(ctx, "", sale.ID, dto.UpdateSaleStatusRequest{Status: "COMPLETED"})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	got, err := f.sales.Get(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "CANCELLED", got.Status)
	assert.True(t, f.stock(t, pid).Equal(dec(2)))
}

func TestSale_NumeracionConcurrenteSinHuecos(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pid, vid := f.variant(t, "G", 100)

	const n = 20
	var wg sync.WaitGroup
	numbers := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := f.sales.Create(ctx, "", "", saleOf(line(pid, vid, 1)))
			if assert.NoError(t, err) {
				numbers <- s.InvoiceNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := map[string]bool{}
	for num := range numbers {
		assert.False(t, seen[num], "número repetido %s", num)
		seen[num] = true
	}
	year := time.Now().UTC().Year()
	for i := 1; i <= n; i++ {
		assert.True(t, seen[sales.FormatInvoiceNumber(year, int64(i))], "falta %d", i)
	}
	assert.True(t, f.stock(t, pid).Equal(dec(100-n)))
}

func TestSale_IdempotencyKey(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pid, vid := f.variant(t, "H", 10)

	first, err := f.sales.Create(ctx, "", "abc", saleOf(line(pid, vid, 2)))
	require.NoError(t, err)
	again, err := f.sales.Create(ctx, "", "abc", saleOf(line(pid, vid, 2)))
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, f.stock(t, pid).Equal(dec(8)))

	// Una clave cuya creación falló queda libre para reintentar.
	_, err = f.sales.Create(ctx, "", "xyz", saleOf(line(pid, vid, 50)))
	require.Error(t, err)
	_, err = f.sales.Create(ctx, "", "xyz", saleOf(line(pid, vid, 1)))
	require.NoError(t, err)
	assert.True(t, f.stock(t, pid).Equal(dec(7)))
}

func TestSale_ClienteReutilizadoPorNombreYTelefono(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pid, vid := f.variant(t, "I", 10)

	a, err := f.sales.Create(ctx, "", "", saleOf(line(pid, vid, 1)))
	require.NoError(t, err)
	b, err := f.sales.Create(ctx, "", "", saleOf(line(pid, vid, 1)))
	require.NoError(t, err)
	assert.Equal(t, a.Customer.ID, b.Customer.ID)

	in := saleOf(line(pid, vid, 1))
	in.Customer = dto.CustomerInfo{ID: a.Customer.ID}
	c, err := f.sales.Create(ctx, "", "", in)
	require.NoError(t, err)
	assert.Equal(t, a.Customer.ID, c.Customer.ID)
}

func TestSale_ListFiltros(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pid, vid := f.variant(t, "J", 10)
	s1, err := f.sales.Create(ctx, "", "", saleOf(line(pid, vid, 1)))
	require.NoError(t, err)
	s2, err := f.sales.Create(ctx, "", "", saleOf(line(pid, vid, 1)))
	require.NoError(t, err)
	_, err = f.sales.UpdateStatus(ctx, "", s2.ID, dto.UpdateSaleStatusRequest{Status: "CANCELLED"})
	require.NoError(t, err)

	all, err := f.sales.List(ctx, dto.SaleFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, s2.ID, all[0].ID, "más recientes primero")

	completed, err := f.sales.List(ctx, dto.SaleFilter{Status: "completed"})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, s1.ID, completed[0].ID)

	byNumber, err := f.sales.List(ctx, dto.SaleFilter{Search: s1.InvoiceNumber})
	require.NoError(t, err)
	assert.Len(t, byNumber, 1)

	today := time.Now().UTC().Format(time.DateOnly)
	ranged, err := f.sales.List(ctx, dto.SaleFilter{StartDate: today, EndDate: today})
	require.NoError(t, err)
	assert.Len(t, ranged, 2)

	_, err = f.sales.List(ctx, dto.SaleFilter{StartDate: "15/01/2024"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput), fmt.Sprint(err))
}

func TestSale_LineaSinProductoTomaElDeLaVariante(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	pid, vid := f.variant(t, "16mm", 5)

	sale, err := f.sales.Create(ctx, "u1", "", saleOf(line("", vid, 2)))
	require.NoError(t, err)
	require.Len(t, sale.Items, 1)
	assert.Equal(t, pid, sale.Items[0].ProductID)
	assert.Equal(t, "Fer 16mm", sale.Items[0].ProductName)
	assert.Equal(t, "16mm", sale.Items[0].VariantName)
	assert.True(t, f.stock(t, pid).Equal(dec(3)))

	got, err := f.sales.Get(ctx, sale.ID)
	require.NoError(t, err)
	assert.Equal(t, pid, got.Items[0].ProductID)
}
