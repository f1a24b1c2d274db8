package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appanalytics "github.com/MRD-HG/WilliamMetalAPI/internal/application/analytics"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/auth"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/billing"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/catalog"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/dto"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/inventory"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/purchasing"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/sales"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/settings"
	"github.com/MRD-HG/WilliamMetalAPI/internal/infrastructure/memory"
	infrapdf "github.com/MRD-HG/WilliamMetalAPI/internal/infrastructure/pdf"
	apphttp "github.com/MRD-HG/WilliamMetalAPI/internal/interfaces/http"
)

// newAPI arma la API completa sobre el almacén en memoria.
func newAPI(t *testing.T, authRequired bool) *fiber.App {
	t.Helper()
	store := memory.New()
	repos := store.Repos()
	engine := inventory.NewStockEngine()
	idem := memory.NewIdempotencyStore()

	inventoryUC := inventory.NewInventoryUseCase(store, repos, engine, nil)
	saleUC := sales.NewSaleUseCase(store, repos, engine, nil, idem, sales.Config{DefaultTaxRate: decimal.NewFromInt(10)})
	settingsUC := settings.NewSettingsUseCase(repos.Settings)

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	app.Use(apphttp.Metrics())
	app.Get("/metrics", apphttp.MetricsHandler())
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:       catalog.NewProductUseCase(store, repos, engine, nil),
		InventoryUC:     inventoryUC,
		ReplenishmentUC: inventory.NewReplenishmentUseCase(repos),
		SaleUC:          saleUC,
		CustomerUC:      sales.NewCustomerUseCase(repos.Customers),
		PurchaseUC:      purchasing.NewPurchaseUseCase(store, repos, engine, nil, idem, 0),
		SupplierUC:      purchasing.NewSupplierUseCase(repos.Suppliers),
		InvoiceUC:       billing.NewInvoiceUseCase(saleUC, settingsUC, infrapdf.NewMarotoPDFGenerator()),
		DashboardUC:     appanalytics.NewDashboardUseCase(repos.Reports, inventoryUC),
		SettingsUC:      settingsUC,
		AuthUC:          auth.NewAuthUseCase(repos.Users, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}),
		JWTSecret:       testJWTSecret,
		AuthRequired:    authRequired,
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any, headers ...string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createProduct(t *testing.T, app *fiber.App, stock int64) dto.ProductResponse {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/products", dto.CreateProductRequest{
		NameAr:   "Tube acier",
		Category: "tubes",
		Variants: []dto.CreateVariantRequest{{
			Specification: "20x20",
			Price:         decimal.NewFromInt(50),
			Cost:          decimal.NewFromInt(30),
			Stock:         decimal.NewFromInt(stock),
		}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	p := decode[dto.ProductResponse](t, resp)
	require.Len(t, p.Variants, 1)
	return p
}

func saleRequest(p dto.ProductResponse, qty int64) dto.CreateSaleRequest {
	return dto.CreateSaleRequest{
		Customer:      dto.CustomerInfo{Name: "Ahmed", Phone: "0600000000"},
		PaymentMethod: "CASH",
		Items: []dto.SaleItemRequest{{
			ProductID: p.ID,
			VariantID: p.Variants[0].ID,
			Quantity:  decimal.NewFromInt(qty),
			UnitPrice: decimal.NewFromInt(50),
		}},
	}
}

func TestAPI_VentaDescuentaStockYRechazaSobreventa(t *testing.T) {
	app := newAPI(t, false)
	p := createProduct(t, app, 10)

	resp := doJSON(t, app, http.MethodPost, "/api/sales", saleRequest(p, 3))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	sale := decode[dto.SaleResponse](t, resp)
	assert.Equal(t, "COMPLETED", sale.Status)
	assert.Regexp(t, `^INV-\d{4}-0001$`, sale.InvoiceNumber)
	assert.True(t, sale.Subtotal.Equal(decimal.NewFromInt(150)))
	assert.True(t, sale.Tax.Equal(decimal.NewFromInt(15)))

	resp = doJSON(t, app, http.MethodPost, "/api/sales", saleRequest(p, 10))
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	errBody := decode[dto.ErrorResponse](t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", errBody.Code)

	resp = doJSON(t, app, http.MethodGet, "/api/products/"+p.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decode[dto.ProductResponse](t, resp)
	assert.True(t, got.Variants[0].Stock.Equal(decimal.NewFromInt(7)), "stock = %s", got.Variants[0].Stock)
}

func TestAPI_IdempotencyKeyNoDuplicaVenta(t *testing.T) {
	app := newAPI(t, false)
	p := createProduct(t, app, 10)

	first := decode[dto.SaleResponse](t, doJSON(t, app, http.MethodPost, "/api/sales", saleRequest(p, 2), apphttp.HeaderIdempotencyKey, "k-1"))
	second := decode[dto.SaleResponse](t, doJSON(t, app, http.MethodPost, "/api/sales", saleRequest(p, 2), apphttp.HeaderIdempotencyKey, "k-1"))
	assert.Equal(t, first.ID, second.ID)

	list := decode[[]dto.SaleResponse](t, doJSON(t, app, http.MethodGet, "/api/sales", nil))
	assert.Len(t, list, 1)
}

func TestAPI_RutasEstaticasAntesQueParametros(t *testing.T) {
	app := newAPI(t, false)

	resp := doJSON(t, app, http.MethodGet, "/api/sales/invoice-number", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	num := decode[dto.NumberResponse](t, resp)
	assert.Regexp(t, `^INV-\d{4}-0001$`, num.Number)

	resp = doJSON(t, app, http.MethodGet, "/api/purchases/purchase-number", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	num = decode[dto.NumberResponse](t, resp)
	assert.Regexp(t, `^PO-\d{4}-0001$`, num.Number)

	resp = doJSON(t, app, http.MethodGet, "/api/products/categories", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_ErroresDeDominio(t *testing.T) {
	app := newAPI(t, false)

	resp := doJSON(t, app, http.MethodGet, "/api/products/no-existe", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, resp).Code)

	resp = doJSON(t, app, http.MethodPut, "/api/sales/no-existe/status", dto.UpdateSaleStatusRequest{Status: "BOGUS"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_STATUS", decode[dto.ErrorResponse](t, resp).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/sales", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	raw, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
	assert.Equal(t, "INVALID_BODY", decode[dto.ErrorResponse](t, raw).Code)
}

func TestAPI_FacturaPDF(t *testing.T) {
	app := newAPI(t, false)
	p := createProduct(t, app, 5)
	sale := decode[dto.SaleResponse](t, doJSON(t, app, http.MethodPost, "/api/sales", saleRequest(p, 1)))

	resp := doJSON(t, app, http.MethodGet, "/api/invoices/"+sale.ID+"/pdf", nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), sale.InvoiceNumber)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestAPI_CompraEntregadaAcreditaStock(t *testing.T) {
	app := newAPI(t, false)
	p := createProduct(t, app, 0)

	resp := doJSON(t, app, http.MethodPost, "/api/purchases", dto.CreatePurchaseRequest{
		Supplier:       dto.SupplierInfo{Name: "Acier SA", Phone: "0522000000"},
		DeliveryStatus: "DELIVERED",
		Items: []dto.PurchaseItemRequest{{
			ProductID: p.ID, VariantID: p.Variants[0].ID,
			Quantity: decimal.NewFromInt(12), UnitCost: decimal.NewFromInt(30),
		}},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	got := decode[dto.ProductResponse](t, doJSON(t, app, http.MethodGet, "/api/products/"+p.ID, nil))
	assert.True(t, got.Variants[0].Stock.Equal(decimal.NewFromInt(12)))
}

func TestAPI_AuthObligatoria(t *testing.T) {
	app := newAPI(t, true)

	resp := doJSON(t, app, http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/auth/register", dto.RegisterRequest{Username: "admin", Password: "secret1", FullName: "Admin", Role: "ADMIN"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	login := decode[dto.LoginResponse](t, doJSON(t, app, http.MethodPost, "/api/auth/login", dto.LoginRequest{Username: "admin", Password: "secret1"}))
	require.NotEmpty(t, login.Token)

	bearer := "Bearer " + login.Token
	resp = doJSON(t, app, http.MethodGet, "/api/products", nil, "Authorization", bearer)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	me := decode[dto.UserResponse](t, doJSON(t, app, http.MethodGet, "/api/auth/me", nil, "Authorization", bearer))
	assert.Equal(t, "admin", me.Username)

	resp = doJSON(t, app, http.MethodPost, "/api/auth/login", dto.LoginRequest{Username: "admin", Password: "mala"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAPI_AjustesSoloAdminConAuth(t *testing.T) {
	app := newAPI(t, true)
	name := "WilliamMetal"
	resp := doJSON(t, app, http.MethodPut, "/api/settings/company", dto.UpdateCompanySettingsRequest{Name: &name}, "Authorization", tokenForRole(t, "EMPLOYEE"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPut, "/api/settings/company", dto.UpdateCompanySettingsRequest{Name: &name}, "Authorization", tokenForRole(t, "ADMIN"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, name, decode[dto.CompanySettingsResponse](t, resp).Name)
}

func TestAPI_Metrics(t *testing.T) {
	app := newAPI(t, false)
	// Varias rutas y métodos: las etiquetas no deben corromperse al reutilizar buffers.
	for i := 0; i < 3; i++ {
		_ = doJSON(t, app, http.MethodGet, "/api/inventory/stats", nil)
		_ = doJSON(t, app, http.MethodGet, "/api/sales/", nil)
		_ = doJSON(t, app, http.MethodPost, "/api/inventory/update-stock", dto.UpdateStockRequest{})
		_ = doJSON(t, app, http.MethodGet, "/api/products/categories", nil)
	}

	for i := 0; i < 2; i++ {
		resp := doJSON(t, app, http.MethodGet, "/metrics", nil)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
		assert.Contains(t, string(body), "http_requests_total")
		assert.Contains(t, string(body), `method="POST",path="/api/inventory/update-stock"`)
	}
}
