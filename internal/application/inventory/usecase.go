package inventory

import (
	"context"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
)

// ReconcileStockFromRequest adapta el body HTTP (o un mensaje del feed) al caso de uso ReconcileStock.
func (uc *ReconcileStockUseCase) ReconcileStockFromRequest(ctx context.Context, in []dto.StockRecordRequest) (*dto.ReconcileResponse, error) {
	records := make([]StockRecord, 0, len(in))
	for _, r := range in {
		records = append(records, StockRecord{
			Name:        r.Name,
			Description: r.Description,
			Price:       r.Price,
			Quantity:    r.Quantity,
			Categories:  r.Categories,
		})
	}
	res, err := uc.ReconcileStock(ctx, records)
	if err != nil {
		return nil, err
	}
	return &dto.ReconcileResponse{
		BatchID: res.BatchID,
		Records: res.Records,
		Created: res.Created,
		Updated: res.Updated,
	}, nil
}

// ComputeQuoteForRequest adapta el resultado de ComputeQuote al DTO de respuesta.
func (uc *DiscountUseCase) ComputeQuoteForRequest(ctx context.Context, productIDs []int64) (*dto.DiscountResponse, error) {
	q, err := uc.ComputeQuote(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	groups := make([]dto.DiscountGroupDTO, 0, len(q.Groups))
	for _, g := range q.Groups {
		groups = append(groups, dto.DiscountGroupDTO{
			Category: g.Category,
			Items:    g.Items,
			Subtotal: g.Subtotal,
			Discount: g.Discount,
		})
	}
	return &dto.DiscountResponse{
		TotalPriceWithDiscount: q.Total,
		Groups:                 groups,
	}, nil
}
