package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-pos-api/internal/application/inventory"
	"github.com/jhoicas/tienda-pos-api/internal/application/reporting"
	"github.com/jhoicas/tienda-pos-api/internal/application/sales"
	"github.com/jhoicas/tienda-pos-api/internal/domain/entity"
	"github.com/jhoicas/tienda-pos-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SaleUC    *sales.SaleUseCase
	LedgerUC  *inventory.StockLedgerUseCase
	ReportUC  *reporting.ReportUseCase
	JWTSecret string
	Location  *time.Location // zona de los filtros de fecha
	Log       *logger.Logger
}

// Router registra las rutas de la API. Todo /api exige Bearer Token.
//
// Roles:
//   - ventas: admin y cajero; eliminar solo admin.
//   - ajustes e ingresos de mercancía: admin y bodeguero.
//   - descuento por venta: cualquier rol de la tienda.
//   - reportes de ventas: admin.
//   - consultas de inventario: cualquier usuario autenticado.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	er := errorResponder{log: log.Component("http")}

	protected := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	allRoles := RequireRole(entity.RoleAdmin, entity.RoleCajero, entity.RoleBodeguero)
	adminOnly := RequireRole(entity.RoleAdmin)
	cashier := RequireRole(entity.RoleAdmin, entity.RoleCajero)
	warehouse := RequireRole(entity.RoleAdmin, entity.RoleBodeguero)

	// Sales
	saleHandler := NewSaleHandler(deps.SaleUC, loc, er)
	salesGroup := protected.Group("/sales")
	salesGroup.Post("/", cashier, saleHandler.Create)
	salesGroup.Get("/stats", cashier, saleHandler.Stats)
	salesGroup.Get("/:id", cashier, saleHandler.GetByID)
	salesGroup.Put("/:id", cashier, saleHandler.Update)
	salesGroup.Delete("/:id", adminOnly, saleHandler.Delete)

	// Inventory: rutas fijas antes de /:product_id
	invHandler := NewInventoryHandler(deps.LedgerUC, er)
	reportHandler := NewReportHandler(deps.ReportUC, loc, er)
	invGroup := protected.Group("/inventory")
	invGroup.Post("/stock-in", warehouse, invHandler.StockIn)
	invGroup.Get("/low-stock", invHandler.LowStock)
	invGroup.Get("/stats", invHandler.Stats)
	invGroup.Get("/status", reportHandler.StockStatus)
	invGroup.Get("/replenishment", warehouse, invHandler.Replenishment)
	invGroup.Post("/:product_id/adjust", warehouse, invHandler.Adjust)
	invGroup.Post("/:product_id/deduct", allRoles, invHandler.Deduct)
	invGroup.Get("/:product_id/transactions", invHandler.Transactions)
	invGroup.Get("/:product_id", invHandler.GetRecord)

	// Reports (admin)
	reports := protected.Group("/reports", adminOnly)
	reports.Get("/sales", reportHandler.Sales)
	reports.Get("/sales/trend", reportHandler.Trend)
	reports.Get("/sales/export.csv", reportHandler.ExportCSV)
	reports.Get("/sales/export.pdf", reportHandler.ExportPDF)
}
