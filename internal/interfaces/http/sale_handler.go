package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-pos-api/internal/application/dto"
	"github.com/jhoicas/tienda-pos-api/internal/application/sales"
)

// SaleHandler maneja las peticiones HTTP de ventas (protegido).
type SaleHandler struct {
	uc  *sales.SaleUseCase
	loc *time.Location
	errorResponder
}

// NewSaleHandler construye el handler. loc interpreta los filtros de fecha.
func NewSaleHandler(uc *sales.SaleUseCase, loc *time.Location, er errorResponder) *SaleHandler {
	return &SaleHandler{uc: uc, loc: loc, errorResponder: er}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Valida stock, descuenta inventario y crea cabecera y líneas en una sola transacción.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateSaleRequest  true  "cliente, pago y líneas"
// @Success      201   {object}  dto.Envelope{data=dto.CreateSaleResponse}
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.CreateSale(c.Context(), GetActor(c), in)
	if err != nil {
		return h.respond(c, err)
	}
	return success(c, fiber.StatusCreated, out)
}

// GetByID godoc
// @Summary      Obtener venta con sus líneas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path      int  true  "ID de la venta"
// @Success      200  {object}  dto.Envelope{data=dto.SaleResponse}
// @Failure      404  {object}  dto.Envelope
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.respond(c, err)
	}
	out, err := h.uc.GetSale(c.Context(), id)
	if err != nil {
		return h.respond(c, err)
	}
	return success(c, fiber.StatusOK, out)
}

// Update godoc
// @Summary      Actualizar venta (parcial)
// @Description  Solo ventas Pending o Processing. No mueve inventario.
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path      int                    true  "ID de la venta"
// @Param        body  body      dto.UpdateSaleRequest  true  "campos a modificar"
// @Success      200   {object}  dto.Envelope
// @Failure      400   {object}  dto.Envelope
// @Failure      404   {object}  dto.Envelope
// @Router       /api/sales/{id} [put]
func (h *SaleHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.respond(c, err)
	}
	var in dto.UpdateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if _, err := h.uc.UpdateSale(c.Context(), id, in); err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.Envelope{Success: true, Message: "venta actualizada"})
}

// Delete godoc
// @Summary      Eliminar venta
// @Description  Restaura el stock de cada línea y elimina la venta. Todo o nada.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path      int  true  "ID de la venta"
// @Success      200  {object}  dto.Envelope
// @Failure      404  {object}  dto.Envelope
// @Router       /api/sales/{id} [delete]
func (h *SaleHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return h.respond(c, err)
	}
	if _, err := h.uc.DeleteSale(c.Context(), GetActor(c), id); err != nil {
		return h.respond(c, err)
	}
	return c.JSON(dto.Envelope{Success: true, Message: "venta eliminada y stock restaurado"})
}

// Stats godoc
// @Summary      Estadísticas de ventas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        date_from  query     string  false  "YYYY-MM-DD"
// @Param        date_to    query     string  false  "YYYY-MM-DD"
// @Success      200        {object}  dto.Envelope{data=dto.SalesStatsResponse}
// @Router       /api/sales/stats [get]
func (h *SaleHandler) Stats(c *fiber.Ctx) error {
	from, to, err := parseDateRange(c, h.loc)
	if err != nil {
		return h.respond(c, err)
	}
	out, err := h.uc.GetSalesStats(c.Context(), from, to)
	if err != nil {
		return h.respond(c, err)
	}
	return success(c, fiber.StatusOK, out)
}
