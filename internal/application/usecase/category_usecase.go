package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/application/inventory"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

// CategoryUseCase casos de uso CRUD para categorías.
type CategoryUseCase struct {
	txRunner inventory.TxRunner
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(txRunner inventory.TxRunner) *CategoryUseCase {
	return &CategoryUseCase{txRunner: txRunner}
}

// Create crea una nueva categoría. El nombre se guarda sin espacios al inicio/fin.
func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	category := &entity.Category{
		Name:        name,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := uc.txRunner.Run(ctx, func(categoryRepo repository.CategoryRepository, _ repository.ProductRepository) error {
		return categoryRepo.Create(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// GetByID obtiene una categoría por ID.
func (uc *CategoryUseCase) GetByID(ctx context.Context, id int64) (*dto.CategoryResponse, error) {
	var category *entity.Category
	err := uc.txRunner.RunReadOnly(ctx, func(categoryRepo repository.CategoryRepository, _ repository.ProductRepository) error {
		var err error
		category, err = categoryRepo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrNotFound
	}
	return toCategoryResponse(category), nil
}

// List lista todas las categorías.
func (uc *CategoryUseCase) List(ctx context.Context) (*dto.CategoryListResponse, error) {
	var list []*entity.Category
	err := uc.txRunner.RunReadOnly(ctx, func(categoryRepo repository.CategoryRepository, _ repository.ProductRepository) error {
		var err error
		list, err = categoryRepo.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toCategoryResponse(c))
	}
	return &dto.CategoryListResponse{Items: items, Total: len(items)}, nil
}

// Update actualiza nombre y descripción.
func (uc *CategoryUseCase) Update(ctx context.Context, id int64, in dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	var category *entity.Category
	err := uc.txRunner.Run(ctx, func(categoryRepo repository.CategoryRepository, _ repository.ProductRepository) error {
		var err error
		category, err = categoryRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if category == nil {
			return domain.ErrNotFound
		}
		category.Name = name
		category.Description = in.Description
		category.UpdatedAt = time.Now()
		return categoryRepo.Update(ctx, category)
	})
	if err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// Delete elimina una categoría; los productos vinculados solo pierden el vínculo.
func (uc *CategoryUseCase) Delete(ctx context.Context, id int64) error {
	return uc.txRunner.Run(ctx, func(categoryRepo repository.CategoryRepository, _ repository.ProductRepository) error {
		return categoryRepo.Delete(ctx, id)
	})
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	if c == nil {
		return nil
	}
	return &dto.CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
