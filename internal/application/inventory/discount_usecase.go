package inventory

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/pricing"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// DiscountUseCase calcula el total de un pedido con descuento por volumen por categoría.
// Solo lee una instantánea del catálogo; nunca modifica el stock.
type DiscountUseCase struct {
	txRunner TxRunner
	log      *logger.Logger
}

// NewDiscountUseCase construye el caso de uso. log nil equivale a logger.Nop().
func NewDiscountUseCase(txRunner TxRunner, log *logger.Logger) *DiscountUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &DiscountUseCase{txRunner: txRunner, log: log}
}

// ComputeDiscountedTotal devuelve el total del pedido. productIDs puede repetir IDs (una unidad por aparición).
func (uc *DiscountUseCase) ComputeDiscountedTotal(ctx context.Context, productIDs []int64) (decimal.Decimal, error) {
	q, err := uc.ComputeQuote(ctx, productIDs)
	if err != nil {
		return decimal.Zero, err
	}
	return q.Total, nil
}

// ComputeQuote calcula el total con el desglose por grupo de categoría.
//  1. Cuenta unidades por producto (orden de primera aparición).
//  2. Los IDs inexistentes se omiten sin error.
//  3. Si se piden más unidades que Quantity falla con *domain.InsufficientStockError; no hay total parcial.
//  4. Agrupa por la categoría de menor nombre (o "Unknown") y aplica pricing.Price.
func (uc *DiscountUseCase) ComputeQuote(ctx context.Context, productIDs []int64) (*pricing.Quote, error) {
	if len(productIDs) == 0 {
		return &pricing.Quote{Groups: []pricing.GroupQuote{}, Total: decimal.Zero}, nil
	}
	requests := pricing.Tally(productIDs)
	ids := make([]int64, 0, len(requests))
	for _, r := range requests {
		ids = append(ids, r.ProductID)
	}

	var lines []pricing.Line
	err := uc.txRunner.RunReadOnly(ctx, func(
		_ repository.CategoryRepository,
		productRepo repository.ProductRepository,
	) error {
		products, err := productRepo.GetByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[int64]int, len(products))
		for i, p := range products {
			byID[p.ID] = i
		}

		for _, r := range requests {
			i, ok := byID[r.ProductID]
			if !ok {
				continue
			}
			p := products[i]
			if r.Count > p.Quantity {
				return &domain.InsufficientStockError{
					ProductID:   p.ID,
					ProductName: p.Name,
					Requested:   r.Count,
					Available:   p.Quantity,
				}
			}
			lines = append(lines, pricing.Expand(pricing.Line{
				ProductID: p.ID,
				Name:      p.Name,
				Group:     pricing.GroupKey(p.CategoryNames()),
				UnitPrice: p.Price,
			}, r.Count)...)
		}
		return nil
	})
	if err != nil {
		// Pedir más de lo disponible es un error del cliente, no del servicio.
		var stockErr *domain.InsufficientStockError
		if errors.As(err, &stockErr) {
			uc.log.Debug().
				Int64("product_id", stockErr.ProductID).
				Str("product", stockErr.ProductName).
				Int("requested", stockErr.Requested).
				Int("available", stockErr.Available).
				Msg("pedido rechazado por stock insuficiente")
		}
		return nil, err
	}

	q := pricing.Price(lines)
	return &q, nil
}
