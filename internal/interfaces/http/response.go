package http

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-pos-api/internal/application/dto"
	"github.com/jhoicas/tienda-pos-api/internal/domain"
	"github.com/jhoicas/tienda-pos-api/pkg/logger"
)

// dateLayout formato de los filtros de fecha en query string.
const dateLayout = "2006-01-02"

func success(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(dto.Envelope{Success: true, Data: data})
}

func fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(dto.Envelope{Success: false, Code: code, Message: message})
}

// errorResponder traduce errores de dominio a HTTP. Los 500 se registran y no exponen detalle.
type errorResponder struct {
	log *logger.Logger
}

func (r errorResponder) respond(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		return fail(c, fiber.StatusBadRequest, "INSUFFICIENT_STOCK", err.Error())
	case errors.Is(err, domain.ErrOrderFinalized):
		return fail(c, fiber.StatusBadRequest, "ORDER_FINALIZED", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		return fail(c, fiber.StatusBadRequest, "VALIDATION", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		return fail(c, fiber.StatusUnauthorized, "UNAUTHORIZED", err.Error())
	default:
		r.log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("error interno")
		return fail(c, fiber.StatusInternalServerError, "INTERNAL", "error interno del servidor")
	}
}

func badBody(c *fiber.Ctx) error {
	return fail(c, fiber.StatusBadRequest, "INVALID_BODY", "cuerpo inválido")
}

// parseID lee un parámetro de ruta entero positivo.
func parseID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("%s debe ser un entero positivo", name)
	}
	return id, nil
}

// parseDate lee un query param YYYY-MM-DD en la zona de la tienda. Vacío = nil.
func parseDate(c *fiber.Ctx, name string, loc *time.Location) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return nil, domain.Invalid("%s debe tener formato %s", name, dateLayout)
	}
	return &t, nil
}

// parseDateRange lee date_from y date_to.
func parseDateRange(c *fiber.Ctx, loc *time.Location) (from, to *time.Time, err error) {
	if from, err = parseDate(c, "date_from", loc); err != nil {
		return nil, nil, err
	}
	if to, err = parseDate(c, "date_to", loc); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func parsePage(c *fiber.Ctx) dto.PageRequest {
	return dto.PageRequest{Page: c.QueryInt("page", 1), Limit: c.QueryInt("limit", 20)}
}
