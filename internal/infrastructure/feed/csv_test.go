package feed

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/catalogo-api/internal/domain"
)

func TestDecodeCSV_FilasValidas(t *testing.T) {
	in := "name,description,price,quantity,categories\n" +
		"Laptop,Portátil 14 pulgadas,1200.50,3,Electronics|Computers\n" +
		"Cable,,4.99,10,\n"

	recs, err := DecodeCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "Laptop", recs[0].Name)
	assert.True(t, decimal.RequireFromString("1200.50").Equal(recs[0].Price))
	assert.Equal(t, 3, recs[0].Quantity)
	assert.Equal(t, []string{"Electronics", "Computers"}, recs[0].Categories)

	assert.Equal(t, "Cable", recs[1].Name)
	assert.Empty(t, recs[1].Categories)
}

func TestDecodeCSV_ColumnasEnOtroOrden(t *testing.T) {
	in := "quantity,name,price\n2,Mouse,15\n"

	recs, err := DecodeCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Mouse", recs[0].Name)
	assert.Equal(t, 2, recs[0].Quantity)
}

func TestDecodeCSV_ArchivoVacio(t *testing.T) {
	recs, err := DecodeCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestDecodeCSV_NumeroInvalido(t *testing.T) {
	in := "name,price,quantity\nMouse,15,dos\n"

	_, err := DecodeCSV(strings.NewReader(in))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "línea 2")
}

func TestDecodeCSV_QuantityFueraDeInteger(t *testing.T) {
	in := "name,price,quantity\nMouse,15,2147483647\nBig,1,2147483648\n"

	_, err := DecodeCSV(strings.NewReader(in))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "línea 3")
}

func TestCharsetReader_Latin1(t *testing.T) {
	// "Periféricos" en ISO-8859-1: é = 0xE9
	in := "name,price,quantity,categories\nMouse,10,1,Perif\xe9ricos\n"

	r, err := CharsetReader("ISO-8859-1", strings.NewReader(in))
	require.NoError(t, err)
	recs, err := DecodeCSV(r)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, []string{"Periféricos"}, recs[0].Categories)
}

func TestCharsetReader_NoSoportado(t *testing.T) {
	_, err := CharsetReader("ebcdic", strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
