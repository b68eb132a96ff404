package postgres

import (
	"errors"
	"math"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/catalogo-api/internal/domain"
)

func TestMapError_CodigosSQLState(t *testing.T) {
	cases := []struct {
		code string
		want error
	}{
		{codeUniqueViolation, domain.ErrDuplicate},
		{codeForeignKeyViolation, domain.ErrNotFound},
		{codeCheckViolation, domain.ErrInvalidInput},
		{codeNumericOutOfRange, domain.ErrInvalidInput},
		{codeSerializationFailure, domain.ErrConflict},
		{codeDeadlockDetected, domain.ErrConflict},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			err := mapError("op", &pgconn.PgError{Code: tc.code})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestMapError_OtrosErroresSeEnvuelven(t *testing.T) {
	cause := errors.New("conexión cerrada")
	err := mapError("add quantity", cause)
	assert.ErrorIs(t, err, cause)
	assert.False(t, errors.Is(err, domain.ErrInvalidInput))
	assert.Contains(t, err.Error(), "add quantity")

	assert.NoError(t, mapError("op", nil))
}

func TestInt4Param_Rango(t *testing.T) {
	v, err := int4Param("op", math.MaxInt32)
	require.NoError(t, err)
	assert.Equal(t, int32(math.MaxInt32), v)

	v, err = int4Param("op", -3)
	require.NoError(t, err)
	assert.Equal(t, int32(-3), v)

	_, err = int4Param("op", math.MaxInt32+1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = int4Param("op", 1<<40)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
