package inventory_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/catalogo-api/internal/application/inventory"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
	"github.com/jhoicas/catalogo-api/internal/infrastructure/memory"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// seedCatalog crea productos con sus categorías y devuelve los IDs por nombre.
func seedCatalog(t *testing.T, s *memory.Store, products ...*entity.Product) map[string]int64 {
	t.Helper()
	ctx := context.Background()
	ids := make(map[string]int64, len(products))
	err := s.Run(ctx, func(c repository.CategoryRepository, p repository.ProductRepository) error {
		for _, prod := range products {
			for _, cat := range prod.Categories {
				if err := c.GetOrCreate(ctx, cat); err != nil {
					return err
				}
			}
			if err := p.Create(ctx, prod); err != nil {
				return err
			}
			ids[prod.Name] = prod.ID
		}
		return nil
	})
	require.NoError(t, err)
	return ids
}

func product(name, price string, qty int, categories ...string) *entity.Product {
	p := &entity.Product{Name: name, Price: decimal.RequireFromString(price), Quantity: qty}
	for _, c := range categories {
		p.Categories = append(p.Categories, &entity.Category{Name: c})
	}
	return p
}

func TestComputeDiscountedTotal_PedidoVacioEsCero(t *testing.T) {
	uc := inventory.NewDiscountUseCase(memory.NewStore(), logger.Nop())

	total, err := uc.ComputeDiscountedTotal(context.Background(), []int64{})
	require.NoError(t, err)
	assert.True(t, total.IsZero())
}

func TestComputeDiscountedTotal_UnaUnidadPrecioExacto(t *testing.T) {
	s := memory.NewStore()
	ids := seedCatalog(t, s, product("Mouse", "19.99", 5, "Periféricos"))

	total, err := inventory.NewDiscountUseCase(s, logger.Nop()).ComputeDiscountedTotal(context.Background(), []int64{ids["Mouse"]})
	require.NoError(t, err)
	assert.Equal(t, "19.99", total.StringFixed(2), "un solo ítem nunca recibe descuento")
}

func TestComputeDiscountedTotal_PrimeroDelPedidoRecibeDescuento(t *testing.T) {
	s := memory.NewStore()
	ids := seedCatalog(t, s,
		product("A", "10.00", 5, "Componentes"),
		product("B", "20.00", 5, "Componentes"),
	)
	uc := inventory.NewDiscountUseCase(s, logger.Nop())
	ctx := context.Background()

	total, err := uc.ComputeDiscountedTotal(ctx, []int64{ids["A"], ids["B"]})
	require.NoError(t, err)
	assert.Equal(t, "29.50", total.StringFixed(2), "10.00*0.95 + 20.00")

	total, err = uc.ComputeDiscountedTotal(ctx, []int64{ids["B"], ids["A"]})
	require.NoError(t, err)
	assert.Equal(t, "29.00", total.StringFixed(2), "20.00*0.95 + 10.00")
}

func TestComputeDiscountedTotal_UnidadesRepetidasMismoProducto(t *testing.T) {
	s := memory.NewStore()
	ids := seedCatalog(t, s, product("RAM", "50.00", 3, "Memorias"))

	total, err := inventory.NewDiscountUseCase(s, logger.Nop()).ComputeDiscountedTotal(context.Background(), []int64{ids["RAM"], ids["RAM"], ids["RAM"]})
	require.NoError(t, err)
	assert.Equal(t, "147.50", total.StringFixed(2), "47.50 + 50 + 50")
}

func TestComputeDiscountedTotal_AgrupaPorCategoriaMenor(t *testing.T) {
	s := memory.NewStore()
	ids := seedCatalog(t, s,
		product("Laptop", "1000.00", 2, "Portátiles", "Equipos"),
		product("Desktop", "800.00", 2, "Equipos"),
		product("Cable", "5.00", 10),
	)

	q, err := inventory.NewDiscountUseCase(s, logger.Nop()).ComputeQuote(context.Background(), []int64{ids["Laptop"], ids["Desktop"], ids["Cable"]})
	require.NoError(t, err)

	// Equipos: 950 + 800; Unknown: 5
	assert.Equal(t, "1755.00", q.Total.StringFixed(2))
	require.Len(t, q.Groups, 2)
	assert.Equal(t, "Equipos", q.Groups[0].Category)
	assert.Equal(t, "Unknown", q.Groups[1].Category)
}

func TestComputeDiscountedTotal_StockInsuficiente(t *testing.T) {
	s := memory.NewStore()
	ids := seedCatalog(t, s, product("GPU", "700.00", 2, "Video"))
	id := ids["GPU"]

	total, err := inventory.NewDiscountUseCase(s, logger.Nop()).ComputeDiscountedTotal(context.Background(), []int64{id, id, id})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, total.IsZero(), "no debe devolverse total parcial")

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "GPU", stockErr.ProductName)
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)
}

func TestComputeQuote_StockInsuficienteSeRegistraEnDebug(t *testing.T) {
	s := memory.NewStore()
	ids := seedCatalog(t, s, product("GPU", "500.00", 1, "Video"))

	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "debug", Output: &buf})

	_, err := inventory.NewDiscountUseCase(s, log.Component("discount")).
		ComputeQuote(context.Background(), []int64{ids["GPU"], ids["GPU"]})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "discount", line["component"])
	assert.Equal(t, "GPU", line["product"])
	assert.EqualValues(t, 2, line["requested"])
	assert.EqualValues(t, 1, line["available"])
}

func TestComputeQuote_StockInsuficienteNoSeRegistraConNivelInfo(t *testing.T) {
	s := memory.NewStore()
	ids := seedCatalog(t, s, product("GPU", "500.00", 1, "Video"))

	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Output: &buf})

	_, err := inventory.NewDiscountUseCase(s, log).ComputeQuote(context.Background(), []int64{ids["GPU"], ids["GPU"]})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Zero(t, buf.Len())
}

func TestComputeDiscountedTotal_IDDesconocidoSeOmite(t *testing.T) {
	s := memory.NewStore()
	ids := seedCatalog(t, s, product("Hub USB", "25.00", 4, "Accesorios"))

	total, err := inventory.NewDiscountUseCase(s, logger.Nop()).ComputeDiscountedTotal(context.Background(), []int64{ids["Hub USB"], 9999})
	require.NoError(t, err)
	assert.Equal(t, "25.00", total.StringFixed(2))
}

func TestComputeDiscountedTotal_NoModificaStock(t *testing.T) {
	s := memory.NewStore()
	ids := seedCatalog(t, s, product("Fan", "8.00", 2, "Refrigeración"))

	_, err := inventory.NewDiscountUseCase(s, logger.Nop()).ComputeDiscountedTotal(context.Background(), []int64{ids["Fan"], ids["Fan"]})
	require.NoError(t, err)

	_, prods := snapshot(t, s)
	assert.Equal(t, 2, prods[0].Quantity)
}
