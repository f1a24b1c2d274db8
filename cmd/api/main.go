package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	appanalytics "github.com/MRD-HG/WilliamMetalAPI/internal/application/analytics"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/auth"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/billing"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/catalog"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/inventory"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/ports"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/purchasing"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/sales"
	"github.com/MRD-HG/WilliamMetalAPI/internal/application/settings"
	"github.com/MRD-HG/WilliamMetalAPI/internal/domain/repository"
	"github.com/MRD-HG/WilliamMetalAPI/internal/infrastructure/cache"
	"github.com/MRD-HG/WilliamMetalAPI/internal/infrastructure/events"
	"github.com/MRD-HG/WilliamMetalAPI/internal/infrastructure/memory"
	infrapdf "github.com/MRD-HG/WilliamMetalAPI/internal/infrastructure/pdf"
	"github.com/MRD-HG/WilliamMetalAPI/internal/infrastructure/postgres"
	httpRouter "github.com/MRD-HG/WilliamMetalAPI/internal/interfaces/http"
	"github.com/MRD-HG/WilliamMetalAPI/pkg/config"
	"github.com/MRD-HG/WilliamMetalAPI/pkg/logger"
	"github.com/MRD-HG/WilliamMetalAPI/pkg/telemetry"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.Log.Level,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.Storage).
		Msg("iniciando aplicación")

	ctx := context.Background()

	if cfg.Tracing.JaegerEndpoint != "" {
		tp, err := telemetry.InitTracer(cfg.App.Name, cfg.Tracing.JaegerEndpoint)
		if err != nil {
			log.Fatal().Err(err).Msg("inicializar tracer")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(shutdownCtx)
		}()
	}

	// Almacenamiento: PostgreSQL o memoria (desarrollo local).
	var (
		txRunner repository.TxRunner
		repos    repository.Repos
	)
	switch cfg.App.Storage {
	case "memory":
		store := memory.New()
		txRunner = store
		repos = store.Repos()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner = postgres.NewTxRunner(pool)
		repos = postgres.NewRepos(pool)
	}

	var idem ports.IdempotencyStore = memory.NewIdempotencyStore()
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer redisClient.Close()
		idem = redisClient
	}

	var publisher ports.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPub := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.MovementsTopic)
		defer kafkaPub.Close()
		publisher = kafkaPub
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.MovementsTopic).Msg("publicación de movimientos activa")
	}

	engine := inventory.NewStockEngine()
	productUC := catalog.NewProductUseCase(txRunner, repos, engine, publisher)
	inventoryUC := inventory.NewInventoryUseCase(txRunner, repos, engine, publisher)
	replenishmentUC := inventory.NewReplenishmentUseCase(repos)
	saleUC := sales.NewSaleUseCase(txRunner, repos, engine, publisher, idem, sales.Config{
		DefaultTaxRate: decimal.NewFromFloat(cfg.Sales.DefaultTaxRate),
		IdempotencyTTL: cfg.Sales.IdempotencyTTL(),
	})
	customerUC := sales.NewCustomerUseCase(repos.Customers)
	purchaseUC := purchasing.NewPurchaseUseCase(txRunner, repos, engine, publisher, idem, cfg.Sales.IdempotencyTTL())
	supplierUC := purchasing.NewSupplierUseCase(repos.Suppliers)
	settingsUC := settings.NewSettingsUseCase(repos.Settings)
	invoiceUC := billing.NewInvoiceUseCase(saleUC, settingsUC, infrapdf.NewMarotoPDFGenerator())
	dashboardUC := appanalytics.NewDashboardUseCase(repos.Reports, inventoryUC)
	authUC := auth.NewAuthUseCase(repos.Users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(httpRouter.Metrics())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "WilliamMetal API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", httpRouter.MetricsHandler())

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:       productUC,
		InventoryUC:     inventoryUC,
		ReplenishmentUC: replenishmentUC,
		SaleUC:          saleUC,
		CustomerUC:      customerUC,
		PurchaseUC:      purchaseUC,
		SupplierUC:      supplierUC,
		InvoiceUC:       invoiceUC,
		DashboardUC:     dashboardUC,
		SettingsUC:      settingsUC,
		AuthUC:          authUC,
		JWTSecret:       cfg.JWT.Secret,
		AuthRequired:    cfg.JWT.Required,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
