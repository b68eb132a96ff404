package repository

import (
	"context"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// Los productos se devuelven con sus categorías cargadas.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []int64) ([]*entity.Product, error)
	GetByName(ctx context.Context, name string) (*entity.Product, error)
	List(ctx context.Context) ([]*entity.Product, error)
	// Update reemplaza datos y vínculos de categorías del producto.
	Update(ctx context.Context, product *entity.Product) error
	// MergeStock inserta el producto o, si ya existe uno con el mismo nombre, solo suma Quantity.
	// created indica si hubo inserción; product.ID queda asignado en ambos casos.
	MergeStock(ctx context.Context, product *entity.Product) (created bool, err error)
	AddQuantity(ctx context.Context, id int64, delta int) error
	Delete(ctx context.Context, id int64) error
}
