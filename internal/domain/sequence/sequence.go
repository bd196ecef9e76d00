// Package sequence define los identificadores legibles de ventas y movimientos.
package sequence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SaleNumberPrefix prefijo fijo de los números de venta.
const SaleNumberPrefix = "SL"

// DayPrefix devuelve "SL" + YYMMDD del día indicado, p. ej. SL250101.
func DayPrefix(day time.Time) string {
	return SaleNumberPrefix + day.Format("060102")
}

// FormatSaleNumber arma SL{YYMMDD}{NNN}. Pasado 999 el sufijo crece a más dígitos sin colisionar.
func FormatSaleNumber(day time.Time, seq int) string {
	return fmt.Sprintf("%s%03d", DayPrefix(day), seq)
}

// ParseSuffix extrae el consecutivo de un número de venta con el prefijo dado.
func ParseSuffix(number, dayPrefix string) (int, bool) {
	if !strings.HasPrefix(number, dayPrefix) {
		return 0, false
	}
	n, err := strconv.Atoi(number[len(dayPrefix):])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// NextFromExisting consecutivo siguiente al mayor sufijo emitido para el prefijo del día (1 si no hay).
func NextFromExisting(numbers []string, dayPrefix string) int {
	max := 0
	for _, n := range numbers {
		if s, ok := ParseSuffix(n, dayPrefix); ok && s > max {
			max = s
		}
	}
	return max + 1
}

// NewTransactionID identificador opaco de movimiento: UUIDv7 (milisegundos + aleatorio).
func NewTransactionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return "TXN-" + id.String()
}
