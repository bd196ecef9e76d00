package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-pos-api/internal/application/dto"
	"github.com/jhoicas/tienda-pos-api/internal/application/inventory"
)

// InventoryHandler maneja el libro de stock (protegido).
type InventoryHandler struct {
	uc *inventory.StockLedgerUseCase
	errorResponder
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.StockLedgerUseCase, er errorResponder) *InventoryHandler {
	return &InventoryHandler{uc: uc, errorResponder: er}
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Description  quantity positivo repone, negativo descuenta. El stock nunca baja de cero.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        product_id  path      string                  true  "Código del producto"
// @Param        body        body      dto.AdjustStockRequest  true  "quantity, reorder_point, supplier_id, notes"
// @Success      200         {object}  dto.Envelope{data=dto.InventoryRecordResponse}
// @Failure      400         {object}  dto.Envelope
// @Failure      404         {object}  dto.Envelope
// @Router       /api/inventory/{product_id}/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.AdjustStockFromRequest(c.Context(), GetActor(c), c.Params("product_id"), in)
	if err != nil {
		return h.respond(c, err)
	}
	return success(c, fiber.StatusOK, out)
}

// Deduct godoc
// @Summary      Descontar stock por venta
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        product_id  path      string                  true  "Código del producto"
// @Param        body        body      dto.DeductStockRequest  true  "quantity"
// @Success      200         {object}  dto.Envelope{data=dto.InventoryRecordResponse}
// @Failure      400         {object}  dto.Envelope
// @Router       /api/inventory/{product_id}/deduct [post]
func (h *InventoryHandler) Deduct(c *fiber.Ctx) error {
	var in dto.DeductStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.DeductForSaleFromRequest(c.Context(), GetActor(c), c.Params("product_id"), in)
	if err != nil {
		return h.respond(c, err)
	}
	return success(c, fiber.StatusOK, out)
}

// StockIn godoc
// @Summary      Ingreso masivo de mercancía
// @Description  Todas las líneas o ninguna. received_by vacío usa el operador del token.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.BulkStockInRequest  true  "proveedor, remisión y líneas"
// @Success      201   {object}  dto.Envelope{data=[]dto.InventoryRecordResponse}
// @Failure      400   {object}  dto.Envelope
// @Router       /api/inventory/stock-in [post]
func (h *InventoryHandler) StockIn(c *fiber.Ctx) error {
	var in dto.BulkStockInRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if strings.TrimSpace(in.ReceivedBy) == "" {
		in.ReceivedBy = GetActor(c)
	}
	recs, err := h.uc.BulkStockIn(c.Context(), in)
	if err != nil {
		return h.respond(c, err)
	}
	out := make([]*dto.InventoryRecordResponse, 0, len(recs))
	for _, r := range recs {
		out = append(out, inventory.ToRecordResponse(r))
	}
	return success(c, fiber.StatusCreated, out)
}

// LowStock godoc
// @Summary      Productos con stock bajo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.Envelope{data=[]dto.StockLevelResponse}
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.uc.GetLowStock(c.Context())
	if err != nil {
		return h.respond(c, err)
	}
	return success(c, fiber.StatusOK, out)
}

// Stats godoc
// @Summary      Estadísticas de inventario
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.Envelope{data=dto.InventoryStatsResponse}
// @Router       /api/inventory/stats [get]
func (h *InventoryHandler) Stats(c *fiber.Ctx) error {
	out, err := h.uc.GetStats(c.Context())
	if err != nil {
		return h.respond(c, err)
	}
	return success(c, fiber.StatusOK, out)
}

// Replenishment godoc
// @Summary      Lista de reposición
// @Description  Agotados primero, luego mayor déficit frente al stock ideal (2 × punto de reorden).
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.Envelope
// @Router       /api/inventory/replenishment [get]
func (h *InventoryHandler) Replenishment(c *fiber.Ctx) error {
	list, err := h.uc.ReplenishmentList(c.Context())
	if err != nil {
		return h.respond(c, err)
	}
	return success(c, fiber.StatusOK, fiber.Map{"total": len(list), "replenishments": list})
}

// GetRecord godoc
// @Summary      Inventario de un producto
// @Description  Sin registro de inventario responde stock 0 con el punto de reorden por defecto.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  path      string  true  "Código del producto"
// @Success      200         {object}  dto.Envelope{data=dto.InventoryRecordResponse}
// @Router       /api/inventory/{product_id} [get]
func (h *InventoryHandler) GetRecord(c *fiber.Ctx) error {
	out, err := h.uc.GetRecord(c.Context(), c.Params("product_id"))
	if err != nil {
		return h.respond(c, err)
	}
	return success(c, fiber.StatusOK, out)
}

// Transactions godoc
// @Summary      Historial de movimientos de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  path      string  true   "Código del producto"
// @Param        page        query     int     false  "Página (desde 1)"
// @Param        limit       query     int     false  "Tamaño de página (máx 100)"
// @Success      200         {object}  dto.Envelope{data=dto.TransactionListResponse}
// @Router       /api/inventory/{product_id}/transactions [get]
func (h *InventoryHandler) Transactions(c *fiber.Ctx) error {
	out, err := h.uc.ListTransactions(c.Context(), c.Params("product_id"), parsePage(c))
	if err != nil {
		return h.respond(c, err)
	}
	return success(c, fiber.StatusOK, out)
}
