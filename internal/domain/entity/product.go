package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo con su stock.
// Quantity son unidades disponibles (nunca negativa); Categories puede estar vacío.
type Product struct {
	ID          int64
	Name        string          // llave natural en la reconciliación de stock
	Description string
	Price       decimal.Decimal // precio de venta, 2 decimales
	Quantity    int
	Categories  []*Category
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CategoryNames devuelve los nombres de las categorías del producto.
func (p *Product) CategoryNames() []string {
	names := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		names = append(names, c.Name)
	}
	return names
}
