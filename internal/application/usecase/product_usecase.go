package usecase

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/catalogo-api/internal/application/dto"
	"github.com/jhoicas/catalogo-api/internal/application/inventory"
	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. Las categorías se vinculan por nombre exacto;
// los nombres sin coincidencia se ignoran (el producto puede quedar sin categorías).
type ProductUseCase struct {
	txRunner inventory.TxRunner
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(txRunner inventory.TxRunner) *ProductUseCase {
	return &ProductUseCase{txRunner: txRunner}
}

// Create crea un nuevo producto.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := validateProduct(in.Name, in.Price, in.Quantity); err != nil {
		return nil, err
	}
	now := time.Now()
	product := &entity.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := uc.txRunner.Run(ctx, func(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository) error {
		categories, err := categoryRepo.GetByNames(ctx, in.Categories)
		if err != nil {
			return err
		}
		product.Categories = categories
		return productRepo.Create(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto por ID.
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductResponse, error) {
	var product *entity.Product
	err := uc.txRunner.RunReadOnly(ctx, func(_ repository.CategoryRepository, productRepo repository.ProductRepository) error {
		var err error
		product, err = productRepo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// List lista todos los productos con sus categorías.
func (uc *ProductUseCase) List(ctx context.Context) (*dto.ProductListResponse, error) {
	var list []*entity.Product
	err := uc.txRunner.RunReadOnly(ctx, func(_ repository.CategoryRepository, productRepo repository.ProductRepository) error {
		var err error
		list, err = productRepo.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(p))
	}
	return &dto.ProductListResponse{Items: items, Total: len(items)}, nil
}

// Update reemplaza nombre, descripción, precio, cantidad y categorías del producto.
func (uc *ProductUseCase) Update(ctx context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := validateProduct(in.Name, in.Price, in.Quantity); err != nil {
		return nil, err
	}
	var product *entity.Product
	err := uc.txRunner.Run(ctx, func(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository) error {
		var err error
		product, err = productRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		categories, err := categoryRepo.GetByNames(ctx, in.Categories)
		if err != nil {
			return err
		}
		product.Name = strings.TrimSpace(in.Name)
		product.Description = in.Description
		product.Price = in.Price
		product.Quantity = in.Quantity
		product.Categories = categories
		product.UpdatedAt = time.Now()
		return productRepo.Update(ctx, product)
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// Delete elimina un producto por ID (los vínculos con categorías se eliminan en cascada).
func (uc *ProductUseCase) Delete(ctx context.Context, id int64) error {
	return uc.txRunner.Run(ctx, func(_ repository.CategoryRepository, productRepo repository.ProductRepository) error {
		return productRepo.Delete(ctx, id)
	})
}

func validateProduct(name string, price decimal.Decimal, quantity int) error {
	if strings.TrimSpace(name) == "" || price.IsNegative() || quantity < 0 || quantity > math.MaxInt32 {
		return domain.ErrInvalidInput
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	if p == nil {
		return nil
	}
	return &dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Categories:  p.CategoryNames(),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
