package sales

import (
	"time"

	"github.com/jhoicas/tienda-pos-api/internal/domain"
	"github.com/jhoicas/tienda-pos-api/internal/domain/repository"
)

// StartOfDay medianoche del día de t en loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayRange convierte fechas inclusivas por día en el rango semiabierto [inicio(from), inicio(to)+1d).
func DayRange(from, to *time.Time, loc *time.Location) (repository.DateRange, error) {
	var r repository.DateRange
	if from != nil {
		start := StartOfDay(*from, loc)
		r.From = &start
	}
	if to != nil {
		end := StartOfDay(*to, loc).AddDate(0, 0, 1)
		r.To = &end
	}
	if r.From != nil && r.To != nil && !r.From.Before(*r.To) {
		return r, domain.Invalid("date_from posterior a date_to")
	}
	return r, nil
}
