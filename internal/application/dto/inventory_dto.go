package dto

import "github.com/shopspring/decimal"

// StockRecordRequest fila del feed de stock para POST /api/products/import (JSON o CSV).
// Quantity es un delta que se suma al stock de un producto existente.
type StockRecordRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Categories  []string        `json:"categories"`
}

// ReconcileResponse resumen del lote aplicado.
type ReconcileResponse struct {
	BatchID string `json:"batch_id"`
	Records int    `json:"records"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
}

// DiscountGroupDTO subtotal de un grupo de categoría dentro del pedido.
type DiscountGroupDTO struct {
	Category string          `json:"category"`
	Items    int             `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
}

// DiscountResponse total del pedido con descuento por volumen.
type DiscountResponse struct {
	TotalPriceWithDiscount decimal.Decimal    `json:"total_price_with_discount"`
	Groups                 []DiscountGroupDTO `json:"groups"`
}
