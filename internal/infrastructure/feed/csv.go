// Package feed decodifica los formatos de archivo del feed externo de stock.
package feed

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/domain"
)

// CategorySeparator separa los nombres de categoría dentro de la columna categories.
const CategorySeparator = "|"

// csvRow fila del CSV: name,description,price,quantity,categories.
type csvRow struct {
	Name        string `csv:"name"`
	Description string `csv:"description"`
	Price       string `csv:"price"`
	Quantity    string `csv:"quantity"`
	Categories  string `csv:"categories"`
}

// CharsetReader envuelve r para que entregue UTF-8. Los exportes de hojas de cálculo suelen venir
// en ISO-8859-1 o Windows-1252; charset vacío o utf-8 devuelve r tal cual.
func CharsetReader(charset string, r io.Reader) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	}
	return nil, fmt.Errorf("%w: charset %q no soportado", domain.ErrInvalidInput, charset)
}

// DecodeCSV lee un CSV con cabecera y devuelve las filas como registros de stock.
// Un archivo vacío produce un lote vacío; una celda numérica inválida -> domain.ErrInvalidInput con la línea.
func DecodeCSV(r io.Reader) ([]dto.StockRecordRequest, error) {
	var rows []*csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return []dto.StockRecordRequest{}, nil
		}
		return nil, fmt.Errorf("%w: csv: %v", domain.ErrInvalidInput, err)
	}

	out := make([]dto.StockRecordRequest, 0, len(rows))
	for i, row := range rows {
		line := i + 2 // la cabecera es la línea 1
		rec, err := row.toRequest()
		if err != nil {
			return nil, fmt.Errorf("%w: csv línea %d: %v", domain.ErrInvalidInput, line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (row *csvRow) toRequest() (dto.StockRecordRequest, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(row.Price))
	if err != nil {
		return dto.StockRecordRequest{}, fmt.Errorf("price %q inválido", row.Price)
	}
	// quantity se almacena como INTEGER: bitSize 32 rechaza lo que no cabe.
	qty, err := strconv.ParseInt(strings.TrimSpace(row.Quantity), 10, 32)
	if err != nil {
		return dto.StockRecordRequest{}, fmt.Errorf("quantity %q inválida", row.Quantity)
	}
	return dto.StockRecordRequest{
		Name:        row.Name,
		Description: row.Description,
		Price:       price,
		Quantity:    int(qty),
		Categories:  splitCategories(row.Categories),
	}, nil
}

// splitCategories separa por "|"; el recorte y descarte de vacíos lo hace el resolver de categorías.
func splitCategories(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, CategorySeparator)
}
