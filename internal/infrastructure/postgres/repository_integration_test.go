//go:build integration

package postgres

import (
	"context"
	"math"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
	"github.com/jhoicas/catalogo-api/pkg/config"
	"github.com/jhoicas/catalogo-api/pkg/logger"
)

// Ejecutar con: CATALOGO_TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/infrastructure/postgres/
const testDatabaseURLEnv = "CATALOGO_TEST_DATABASE_URL"

func newIntegrationRunner(t *testing.T) (*TxRunner, *pgxpool.Pool) {
	t.Helper()
	dsn := os.Getenv(testDatabaseURLEnv)
	if dsn == "" {
		t.Skipf("%s no definido", testDatabaseURLEnv)
	}
	ctx := context.Background()

	require.NoError(t, RunMigrations(dsn, logger.Nop()))
	pool, err := NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 4}, "catalogo-api-test")
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	truncate := func() {
		_, err := pool.Exec(ctx, `TRUNCATE product_categories, products, categories RESTART IDENTITY CASCADE`)
		require.NoError(t, err)
	}
	truncate()
	t.Cleanup(truncate)

	return NewTxRunner(pool), pool
}

func TestIntegration_MergeStockInsertaYLuegoSuma(t *testing.T) {
	runner, pool := newIntegrationRunner(t)
	ctx := context.Background()

	var first, second bool
	var firstID, secondID int64
	err := runner.Run(ctx, func(c repository.CategoryRepository, p repository.ProductRepository) error {
		cat := &entity.Category{Name: "Periféricos"}
		if err := c.GetOrCreate(ctx, cat); err != nil {
			return err
		}
		prod := &entity.Product{
			Name: "Mouse", Price: decimal.RequireFromString("10.00"), Quantity: 2,
			Categories: []*entity.Category{cat},
		}
		var err error
		if first, err = p.MergeStock(ctx, prod); err != nil {
			return err
		}
		firstID = prod.ID
		return nil
	})
	require.NoError(t, err)

	err = runner.Run(ctx, func(c repository.CategoryRepository, p repository.ProductRepository) error {
		other := &entity.Category{Name: "Oficina"}
		if err := c.GetOrCreate(ctx, other); err != nil {
			return err
		}
		prod := &entity.Product{
			Name: "Mouse", Price: decimal.RequireFromString("99.00"), Quantity: 3,
			Categories: []*entity.Category{other},
		}
		var err error
		if second, err = p.MergeStock(ctx, prod); err != nil {
			return err
		}
		secondID = prod.ID
		return nil
	})
	require.NoError(t, err)

	assert.True(t, first, "xmax = 0 en la fila recién insertada")
	assert.False(t, second, "la segunda vez es un UPDATE")
	assert.Equal(t, firstID, secondID)

	stored, err := NewProductRepository(pool).GetByName(ctx, "Mouse")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 5, stored.Quantity)
	assert.Equal(t, "10.00", stored.Price.StringFixed(2), "el precio existente no se sobrescribe")
	assert.Equal(t, []string{"Periféricos"}, stored.CategoryNames(), "las categorías solo se vinculan al insertar")
}

func TestIntegration_GetOrCreateDevuelveLaExistente(t *testing.T) {
	runner, _ := newIntegrationRunner(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 2; i++ {
		err := runner.Run(ctx, func(c repository.CategoryRepository, _ repository.ProductRepository) error {
			cat := &entity.Category{Name: "Audio"}
			if err := c.GetOrCreate(ctx, cat); err != nil {
				return err
			}
			ids = append(ids, cat.ID)
			return nil
		})
		require.NoError(t, err)
	}

	require.Len(t, ids, 2)
	assert.NotZero(t, ids[0])
	assert.Equal(t, ids[0], ids[1])

	var cats []*entity.Category
	err := runner.RunReadOnly(ctx, func(c repository.CategoryRepository, _ repository.ProductRepository) error {
		var err error
		cats, err = c.List(ctx)
		return err
	})
	require.NoError(t, err)
	assert.Len(t, cats, 1)
}

func TestIntegration_AddQuantityDesbordeEsInvalido(t *testing.T) {
	runner, _ := newIntegrationRunner(t)
	ctx := context.Background()

	var id int64
	err := runner.Run(ctx, func(_ repository.CategoryRepository, p repository.ProductRepository) error {
		prod := &entity.Product{Name: "Big", Price: decimal.NewFromInt(1), Quantity: math.MaxInt32}
		if _, err := p.MergeStock(ctx, prod); err != nil {
			return err
		}
		id = prod.ID
		return nil
	})
	require.NoError(t, err)

	// quantity + 1 supera INTEGER en el servidor (SQLSTATE 22003).
	err = runner.Run(ctx, func(_ repository.CategoryRepository, p repository.ProductRepository) error {
		return p.AddQuantity(ctx, id, 1)
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// El delta ni siquiera cabe en int4: se rechaza antes de enviarlo.
	err = runner.Run(ctx, func(_ repository.CategoryRepository, p repository.ProductRepository) error {
		return p.AddQuantity(ctx, id, 1<<40)
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
