package postgres

import (
	"errors"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/catalogo-api/internal/domain"
)

const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeNumericOutOfRange    = "22003"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// mapError traduce errores de PostgreSQL a errores de dominio; el resto se envuelve con op.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch pgCode(err) {
	case codeUniqueViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
	case codeForeignKeyViolation:
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case codeCheckViolation, codeNumericOutOfRange:
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidInput)
	case codeSerializationFailure, codeDeadlockDetected:
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// int4Param valida que v quepa en una columna INTEGER antes de enviarlo como parámetro;
// pgx rechazaría el encode con un error que no es *pgconn.PgError.
func int4Param(op string, v int) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%s: %d fuera de rango int4: %w", op, v, domain.ErrInvalidInput)
	}
	return int32(v), nil
}
