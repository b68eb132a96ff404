package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// StockRecord fila del feed externo de stock. Quantity es un delta, no un reemplazo.
type StockRecord struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
	Categories  []string
}

// ReconcileResult resumen de un lote aplicado.
type ReconcileResult struct {
	BatchID string
	Records int
	Created int // productos insertados
	Updated int // productos existentes con stock incrementado
}

// ReconcileStockUseCase fusiona lotes de stock externo en el catálogo de forma transaccional:
// crea los productos que no existen (por nombre exacto) y suma la cantidad a los existentes.
type ReconcileStockUseCase struct {
	txRunner        TxRunner
	conflictRetries int
	log             *logger.Logger
}

// NewReconcileStockUseCase construye el caso de uso. conflictRetries es el número de reintentos
// del lote completo ante un conflicto de unicidad o serialización con otra transacción.
func NewReconcileStockUseCase(txRunner TxRunner, conflictRetries int, log *logger.Logger) *ReconcileStockUseCase {
	if conflictRetries < 0 {
		conflictRetries = 0
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ReconcileStockUseCase{
		txRunner:        txRunner,
		conflictRetries: conflictRetries,
		log:             log,
	}
}

// stagedProduct producto tocado por el lote: nuevo (se inserta en Flush) o existente (acumula delta).
type stagedProduct struct {
	product *entity.Product
	isNew   bool
	delta   int
}

// ReconcileStock valida el lote y lo aplica en una sola transacción. Los registros se procesan
// en orden: dos filas con el mismo nombre terminan en un único producto con la suma de cantidades.
// Cualquier error del store aborta el lote completo (Rollback).
func (uc *ReconcileStockUseCase) ReconcileStock(ctx context.Context, records []StockRecord) (*ReconcileResult, error) {
	if err := validateRecords(records); err != nil {
		return nil, err
	}
	batchID := uuid.New().String()
	if len(records) == 0 {
		return &ReconcileResult{BatchID: batchID}, nil
	}

	start := time.Now()
	var (
		res *ReconcileResult
		err error
	)
	for attempt := 0; ; attempt++ {
		res, err = uc.reconcileOnce(ctx, records)
		if err == nil {
			break
		}
		if attempt >= uc.conflictRetries || !isRetryable(err) {
			uc.log.Error().Err(err).
				Str("batch_id", batchID).
				Int("records", len(records)).
				Int("attempt", attempt+1).
				Msg("reconciliación de stock abortada")
			return nil, err
		}
		uc.log.Warn().Err(err).
			Str("batch_id", batchID).
			Int("attempt", attempt+1).
			Msg("conflicto en reconciliación, reintentando lote")
	}

	res.BatchID = batchID
	uc.log.Info().
		Str("batch_id", batchID).
		Int("records", res.Records).
		Int("created", res.Created).
		Int("updated", res.Updated).
		Dur("duration", time.Since(start)).
		Msg("lote de stock reconciliado")
	return res, nil
}

func (uc *ReconcileStockUseCase) reconcileOnce(ctx context.Context, records []StockRecord) (*ReconcileResult, error) {
	res := &ReconcileResult{Records: len(records)}

	err := uc.txRunner.Run(ctx, func(
		categoryRepo repository.CategoryRepository,
		productRepo repository.ProductRepository,
	) error {
		resolver := NewCategoryResolver()
		byName := make(map[string]*stagedProduct, len(records))
		order := make([]*stagedProduct, 0, len(records))

		for _, rec := range records {
			categories, err := resolver.Resolve(ctx, categoryRepo, rec.Categories)
			if err != nil {
				return err
			}

			if sp, ok := byName[rec.Name]; ok {
				if sp.isNew {
					sp.product.Quantity += rec.Quantity
				} else {
					sp.delta += rec.Quantity
				}
				continue
			}

			existing, err := productRepo.GetByName(ctx, rec.Name)
			if err != nil {
				return err
			}
			var sp *stagedProduct
			if existing != nil {
				sp = &stagedProduct{product: existing, delta: rec.Quantity}
			} else {
				sp = &stagedProduct{
					isNew: true,
					product: &entity.Product{
						Name:        rec.Name,
						Description: rec.Description,
						Price:       rec.Price,
						Quantity:    rec.Quantity,
						Categories:  categories,
					},
				}
			}
			byName[rec.Name] = sp
			order = append(order, sp)
		}

		// Categorías primero: los productos nuevos las vinculan por ID.
		if err := resolver.Flush(ctx, categoryRepo); err != nil {
			return err
		}
		for _, sp := range order {
			if sp.isNew {
				created, err := productRepo.MergeStock(ctx, sp.product)
				if err != nil {
					return err
				}
				if created {
					res.Created++
				} else {
					res.Updated++
				}
				continue
			}
			if sp.delta != 0 {
				if err := productRepo.AddQuantity(ctx, sp.product.ID, sp.delta); err != nil {
					return err
				}
			}
			res.Updated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// validateRecords rechaza nombres vacíos, precios negativos y deltas fuera de [0, MaxInt32]
// antes de abrir la tx. La columna quantity es INTEGER, así que también se acota la suma
// de los deltas que el lote aplica a un mismo nombre.
func validateRecords(records []StockRecord) error {
	totals := make(map[string]int64, len(records))
	for i, rec := range records {
		if strings.TrimSpace(rec.Name) == "" {
			return fmt.Errorf("registro %d: name requerido: %w", i, domain.ErrInvalidInput)
		}
		if rec.Price.IsNegative() {
			return fmt.Errorf("registro %d (%s): price negativo: %w", i, rec.Name, domain.ErrInvalidInput)
		}
		if rec.Quantity < 0 {
			return fmt.Errorf("registro %d (%s): quantity negativa: %w", i, rec.Name, domain.ErrInvalidInput)
		}
		if int64(rec.Quantity) > math.MaxInt32 {
			return fmt.Errorf("registro %d (%s): quantity excede %d: %w", i, rec.Name, math.MaxInt32, domain.ErrInvalidInput)
		}
		totals[rec.Name] += int64(rec.Quantity)
		if totals[rec.Name] > math.MaxInt32 {
			return fmt.Errorf("registro %d (%s): quantity acumulada excede %d: %w", i, rec.Name, math.MaxInt32, domain.ErrInvalidInput)
		}
	}
	return nil
}

func isRetryable(err error) bool {
	return errors.Is(err, domain.ErrConflict) || errors.Is(err, domain.ErrDuplicate)
}
