package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/MRD-HG/WilliamMetalAPI/internal/application/analytics"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/auth"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/billing"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/catalog"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/inventory"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/purchasing"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/sales"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/settings"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC       *catalog.ProductUseCase
	InventoryUC     *inventory.InventoryUseCase
	ReplenishmentUC *inventory.ReplenishmentUseCase
	SaleUC          *sales.SaleUseCase
	CustomerUC      *sales.CustomerUseCase
	PurchaseUC      *purchasing.PurchaseUseCase
	SupplierUC      *purchasing.SupplierUseCase
	InvoiceUC       *billing.InvoiceUseCase
	DashboardUC     *appanalytics.DashboardUseCase
	SettingsUC      *settings.SettingsUseCase
	AuthUC          *auth.AuthUseCase
	JWTSecret       string
	AuthRequired    bool
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)
	authGroup.Get("/me", AuthMiddleware(deps.JWTSecret, true), authHandler.Me)

	// Resto de rutas: token opcional salvo AUTH_REQUIRED.
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.AuthRequired))
	adminOnly := func(c *fiber.Ctx) error { return c.Next() }
	if deps.AuthRequired {
		adminOnly = RequireRole(string(entity.RoleAdmin))
	}

	productHandler := NewProductHandler(deps.ProductUC)
	products := protected.Group("/products")
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Get("/categories", productHandler.Categories)
	products.Get("/search", productHandler.Search)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", adminOnly, productHandler.Delete)
	products.Post("/:id/variants", productHandler.AddVariant)
	products.Put("/:id/variants/:variantId", productHandler.UpdateVariant)
	products.Delete("/:id/variants/:variantId", adminOnly, productHandler.DeleteVariant)

	inventoryHandler := NewInventoryHandler(deps.InventoryUC, deps.ReplenishmentUC)
	inv := protected.Group("/inventory")
	inv.Get("/stats", inventoryHandler.Stats)
	inv.Get("/alerts", inventoryHandler.Alerts)
	inv.Get("/replenishment", inventoryHandler.Replenishment)
	inv.Get("/movements", inventoryHandler.Movements)
	inv.Get("/movements/:id", inventoryHandler.Movement)
	inv.Post("/update-stock", inventoryHandler.UpdateStock)
	inv.Post("/adjust-stock", inventoryHandler.AdjustStock)
	inv.Get("/variants/:id/reconcile", inventoryHandler.Reconcile)

	saleHandler := NewSaleHandler(deps.SaleUC, deps.CustomerUC)
	salesGroup := protected.Group("/sales")
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Post("/", saleHandler.Create)
	salesGroup.Get("/invoice-number", saleHandler.NextInvoiceNumber)
	salesGroup.Get("/customers", saleHandler.ListCustomers)
	salesGroup.Post("/customers", saleHandler.CreateCustomer)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Put("/:id/status", saleHandler.UpdateStatus)
	salesGroup.Delete("/:id", adminOnly, saleHandler.Delete)

	purchaseHandler := NewPurchaseHandler(deps.PurchaseUC, deps.SupplierUC)
	purchases := protected.Group("/purchases")
	purchases.Get("/", purchaseHandler.List)
	purchases.Post("/", purchaseHandler.Create)
	purchases.Get("/purchase-number", purchaseHandler.NextPurchaseNumber)
	purchases.Get("/suppliers", purchaseHandler.ListSuppliers)
	purchases.Post("/suppliers", purchaseHandler.CreateSupplier)
	purchases.Get("/:id", purchaseHandler.GetByID)
	purchases.Put("/:id/status", purchaseHandler.UpdateStatus)
	purchases.Delete("/:id", adminOnly, purchaseHandler.Delete)

	invoiceHandler := NewInvoiceHandler(deps.InvoiceUC)
	invoices := protected.Group("/invoices")
	invoices.Get("/", invoiceHandler.List)
	invoices.Get("/:saleId", invoiceHandler.GetByID)
	invoices.Get("/:saleId/pdf", invoiceHandler.DownloadPDF)

	dashboardHandler := NewDashboardHandler(deps.DashboardUC)
	dashboard := protected.Group("/dashboard")
	dashboard.Get("/stats", dashboardHandler.Stats)
	dashboard.Get("/sales-chart", dashboardHandler.SalesChart)
	dashboard.Get("/top-products", dashboardHandler.TopProducts)
	dashboard.Get("/stock-alerts", dashboardHandler.StockAlerts)
	dashboard.Get("/data", dashboardHandler.Data)

	settingsHandler := NewSettingsHandler(deps.SettingsUC)
	settingsGroup := protected.Group("/settings")
	settingsGroup.Get("/company", settingsHandler.Get)
	settingsGroup.Put("/company", adminOnly, settingsHandler.Update)
}
