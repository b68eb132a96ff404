package pricing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// UnknownCategory agrupa las líneas de productos sin categorías.
const UnknownCategory = "Unknown"

// VolumeDiscountMinItems es el mínimo de líneas en un grupo para aplicar el descuento.
const VolumeDiscountMinItems = 2

// VolumeDiscountRate factor aplicado a la primera línea de cada grupo con descuento (5% off).
var VolumeDiscountRate = decimal.RequireFromString("0.95")

// Request cantidad pedida de un producto (ids repetidos ya sumados).
type Request struct {
	ProductID int64
	Count     int
}

// Line una unidad de un producto dentro del pedido.
type Line struct {
	ProductID int64
	Name      string
	Group     string
	UnitPrice decimal.Decimal
}

// GroupQuote subtotal de un grupo de categoría.
type GroupQuote struct {
	Category string
	Items    int
	Subtotal decimal.Decimal
	Discount decimal.Decimal
}

// Quote resultado del cálculo: grupos en orden de aparición y total general.
type Quote struct {
	Groups []GroupQuote
	Total  decimal.Decimal
}

// Tally cuenta las unidades pedidas por producto, conservando el orden de primera aparición.
func Tally(ids []int64) []Request {
	index := make(map[int64]int, len(ids))
	out := make([]Request, 0, len(ids))
	for _, id := range ids {
		if i, ok := index[id]; ok {
			out[i].Count++
			continue
		}
		index[id] = len(out)
		out = append(out, Request{ProductID: id, Count: 1})
	}
	return out
}

// GroupKey elige la categoría de agrupación: el nombre lexicográficamente menor.
// Sin categorías (o solo nombres vacíos) devuelve UnknownCategory.
func GroupKey(categoryNames []string) string {
	names := make([]string, 0, len(categoryNames))
	for _, n := range categoryNames {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return UnknownCategory
	}
	sort.Strings(names)
	return names[0]
}

// Expand genera count líneas contiguas para un mismo producto.
func Expand(line Line, count int) []Line {
	out := make([]Line, count)
	for i := range out {
		out[i] = line
	}
	return out
}

// Price aplica el descuento por volumen: en cada grupo con al menos VolumeDiscountMinItems líneas,
// la primera línea (orden del pedido) se cobra al 95% exacto, sin redondear; el resto a precio lleno.
func Price(lines []Line) Quote {
	order := make([]string, 0)
	groups := make(map[string][]Line)
	for _, l := range lines {
		if _, ok := groups[l.Group]; !ok {
			order = append(order, l.Group)
		}
		groups[l.Group] = append(groups[l.Group], l)
	}

	quote := Quote{Groups: make([]GroupQuote, 0, len(order)), Total: decimal.Zero}
	for _, key := range order {
		items := groups[key]
		g := GroupQuote{Category: key, Items: len(items), Subtotal: decimal.Zero, Discount: decimal.Zero}
		for i, l := range items {
			price := l.UnitPrice
			if i == 0 && len(items) >= VolumeDiscountMinItems {
				price = l.UnitPrice.Mul(VolumeDiscountRate)
				g.Discount = l.UnitPrice.Sub(price)
			}
			g.Subtotal = g.Subtotal.Add(price)
		}
		quote.Groups = append(quote.Groups, g)
		quote.Total = quote.Total.Add(g.Subtotal)
	}
	return quote
}
