package http

import (
	"bytes"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/application/inventory"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/feed"
)

// InventoryHandler expone la conciliación de stock y el cálculo de descuentos.
type InventoryHandler struct {
	reconcile *inventory.ReconcileStockUseCase
	discount  *inventory.DiscountUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(reconcile *inventory.ReconcileStockUseCase, discount *inventory.DiscountUseCase) *InventoryHandler {
	return &InventoryHandler{reconcile: reconcile, discount: discount}
}

// Import godoc
// @Summary      Importar lote de stock
// @Description  Crea los productos nuevos (por nombre exacto) y suma quantity a los existentes en una sola transacción.
// @Description  Acepta un arreglo JSON o un CSV (text/csv) con columnas name,description,price,quantity,categories (categorías separadas por "|").
// @Description  El CSV puede declarar charset=iso-8859-1 o windows-1252.
// @Tags         products
// @Accept       json
// @Accept       text/csv
// @Produce      json
// @Param        body  body  []dto.StockRecordRequest  true  "Registros de stock"
// @Success      200   {object}  dto.ReconcileResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/import [post]
func (h *InventoryHandler) Import(c *fiber.Ctx) error {
	var records []dto.StockRecordRequest
	if ctype := c.Get(fiber.HeaderContentType); strings.HasPrefix(ctype, "text/csv") {
		body, err := feed.CharsetReader(contentCharset(ctype), bytes.NewReader(c.Body()))
		if err != nil {
			return writeError(c, err, "")
		}
		decoded, err := feed.DecodeCSV(body)
		if err != nil {
			return writeError(c, err, "")
		}
		records = decoded
	} else if err := c.BodyParser(&records); err != nil {
		return badBody(c)
	}

	out, err := h.reconcile.ReconcileStockFromRequest(c.UserContext(), records)
	if err != nil {
		return writeError(c, err, "")
	}
	return c.JSON(out)
}

// Discount godoc
// @Summary      Total con descuento por volumen
// @Description  Recibe IDs de producto (repetidos = varias unidades). Por cada categoría con 2 o más unidades,
// @Description  la primera unidad pedida de ese grupo se cobra al 95%. IDs inexistentes se ignoran.
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        body  body  []int64  true  "IDs de producto"
// @Success      200   {object}  dto.DiscountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/products/discount [post]
func (h *InventoryHandler) Discount(c *fiber.Ctx) error {
	var ids []int64
	if err := c.BodyParser(&ids); err != nil {
		return badBody(c)
	}
	out, err := h.discount.ComputeQuoteForRequest(c.UserContext(), ids)
	if err != nil {
		return writeError(c, err, productNotFound)
	}
	return c.JSON(out)
}

// contentCharset extrae el parámetro charset de un Content-Type ("text/csv; charset=iso-8859-1").
func contentCharset(ctype string) string {
	for _, part := range strings.Split(ctype, ";")[1:] {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && strings.EqualFold(k, "charset") {
			return strings.Trim(v, `"`)
		}
	}
	return ""
}
