package repository

import (
	"context"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
// Los Get* devuelven (nil, nil) cuando el registro no existe.
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id int64) (*entity.Category, error)
	GetByName(ctx context.Context, name string) (*entity.Category, error)
	// GetByNames devuelve las categorías cuyo nombre coincide exactamente; los nombres sin coincidencia se ignoran.
	GetByNames(ctx context.Context, names []string) ([]*entity.Category, error)
	// GetOrCreate busca por nombre o inserta de forma atómica; asigna ID (y Description si ya existía).
	GetOrCreate(ctx context.Context, category *entity.Category) error
	List(ctx context.Context) ([]*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id int64) error
}
