package postgres

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isCheckViolation verifica si un error es una violación de CHECK (23514), p. ej. stock < 0.
func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// rangeArgs convierte límites opcionales en argumentos NULL-ables para $n::timestamptz.
func rangeArgs(from, to *time.Time) (any, any) {
	var f, t any
	if from != nil {
		f = *from
	}
	if to != nil {
		t = *to
	}
	return f, t
}
