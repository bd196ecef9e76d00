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
	"github.com/swaggo/swag"

	"github.com/jhoicas/tienda-pos-api/docs"
	"github.com/jhoicas/tienda-pos-api/internal/application/inventory"
	"github.com/jhoicas/tienda-pos-api/internal/application/reporting"
	"github.com/jhoicas/tienda-pos-api/internal/application/sales"
	"github.com/jhoicas/tienda-pos-api/internal/infrastructure/csvexport"
	infrapdf "github.com/jhoicas/tienda-pos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/tienda-pos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/tienda-pos-api/internal/infrastructure/scheduler"
	httpRouter "github.com/jhoicas/tienda-pos-api/internal/interfaces/http"
	"github.com/jhoicas/tienda-pos-api/pkg/config"
	"github.com/jhoicas/tienda-pos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	loc := cfg.Store.Location()
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("timezone", loc.String()).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if cfg.DB.Migrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("aplicar esquema")
		}
		log.Info().Msg("esquema aplicado")
	}

	productRepo := postgres.NewProductRepository(pool)
	inventoryRepo := postgres.NewInventoryRepository(pool)
	transactionRepo := postgres.NewInventoryTransactionRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	reportRepo := postgres.NewReportRepository(pool, loc)
	txRunner := postgres.NewTxRunner(pool)

	ledgerUC := inventory.NewStockLedgerUseCase(txRunner, inventoryRepo, transactionRepo, cfg.Store.DefaultReorderPoint, log)
	saleUC := sales.NewSaleUseCase(txRunner, ledgerUC, productRepo, saleRepo, loc, log)

	csvWriter, err := csvexport.New(cfg.Store.CSVEncoding)
	if err != nil {
		log.Fatal().Err(err).Msg("configuración de exportación CSV")
	}
	// PDF: reporte de ventas por bloques de orden
	pdfGenerator := infrapdf.NewMarotoPDFGenerator(cfg.App.Name)
	reportUC := reporting.NewReportUseCase(reportRepo, inventoryRepo, pdfGenerator, csvWriter, cfg.Store.DefaultReorderPoint, loc, log)

	var alerts *scheduler.Scheduler
	if cfg.Store.LowStockAlertCron != "" {
		alerts, err = scheduler.New(cfg.Store.LowStockAlertCron, loc, ledgerUC, log)
		if err != nil {
			log.Fatal().Err(err).Msg("alerta de stock bajo")
		}
		if err := alerts.Start(); err != nil {
			log.Fatal().Err(err).Msg("iniciar alerta de stock bajo")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30, // exportaciones PDF
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.HTTP.Docs {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Tienda POS API",
		}))
		app.Get("/openapi.json", func(c *fiber.Ctx) error {
			doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
			if err != nil {
				return err
			}
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
			return c.SendString(doc)
		})
	}

	app.Get("/health", httpRouter.HealthHandler(cfg.App.Name, pool))

	httpRouter.Router(app, httpRouter.RouterDeps{
		SaleUC:    saleUC,
		LedgerUC:  ledgerUC,
		ReportUC:  reportUC,
		JWTSecret: cfg.JWT.Secret,
		Location:  loc,
		Log:       log,
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

	if alerts != nil {
		alerts.Stop(shutdownCtx)
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
