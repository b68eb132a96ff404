package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo ProductRepository sobre el estado de una transacción en memoria.
// Replica las restricciones del esquema SQL: nombre único y quantity >= 0.
type ProductRepo struct {
	st *state
}

func (r *ProductRepo) findByName(name string) *productRow {
	for _, row := range r.st.products {
		if row.product.Name == name {
			return row
		}
	}
	return nil
}

// hydrate arma la entidad con sus categorías (ordenadas por ID).
func (r *ProductRepo) hydrate(row *productRow) *entity.Product {
	p := row.product
	p.Categories = make([]*entity.Category, 0, len(row.categoryIDs))
	for _, cid := range row.categoryIDs {
		if c, ok := r.st.categories[cid]; ok {
			c := c
			p.Categories = append(p.Categories, &c)
		}
	}
	sort.Slice(p.Categories, func(i, j int) bool { return p.Categories[i].ID < p.Categories[j].ID })
	return &p
}

func (r *ProductRepo) categoryIDs(product *entity.Product) ([]int64, error) {
	ids := make([]int64, 0, len(product.Categories))
	seen := make(map[int64]bool, len(product.Categories))
	for _, c := range product.Categories {
		if _, ok := r.st.categories[c.ID]; !ok {
			return nil, fmt.Errorf("link category %d: %w", c.ID, domain.ErrNotFound)
		}
		if !seen[c.ID] {
			seen[c.ID] = true
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

// Create inserta un producto y sus vínculos con categorías.
func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	if r.findByName(product.Name) != nil {
		return domain.ErrDuplicate
	}
	if !validQuantity(int64(product.Quantity)) || product.Price.IsNegative() {
		return fmt.Errorf("insert product: %w", domain.ErrInvalidInput)
	}
	ids, err := r.categoryIDs(product)
	if err != nil {
		return err
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = now
	}
	r.st.nextProductID++
	product.ID = r.st.nextProductID
	row := &productRow{product: *product, categoryIDs: ids}
	row.product.Categories = nil
	r.st.products[product.ID] = row
	return nil
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	row, ok := r.st.products[id]
	if !ok {
		return nil, nil
	}
	return r.hydrate(row), nil
}

// GetByIDs devuelve los productos existentes de ids (los inexistentes se omiten).
func (r *ProductRepo) GetByIDs(_ context.Context, ids []int64) ([]*entity.Product, error) {
	list := make([]*entity.Product, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if row, ok := r.st.products[id]; ok {
			list = append(list, r.hydrate(row))
		}
	}
	return list, nil
}

// GetByName obtiene un producto por nombre exacto.
func (r *ProductRepo) GetByName(_ context.Context, name string) (*entity.Product, error) {
	row := r.findByName(name)
	if row == nil {
		return nil, nil
	}
	return r.hydrate(row), nil
}

// List lista los productos ordenados por ID.
func (r *ProductRepo) List(_ context.Context) ([]*entity.Product, error) {
	list := make([]*entity.Product, 0, len(r.st.products))
	for _, row := range r.st.products {
		list = append(list, r.hydrate(row))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// Update reemplaza los datos y los vínculos de categorías.
func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	row, ok := r.st.products[product.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if other := r.findByName(product.Name); other != nil && other.product.ID != product.ID {
		return domain.ErrDuplicate
	}
	if !validQuantity(int64(product.Quantity)) || product.Price.IsNegative() {
		return fmt.Errorf("update product: %w", domain.ErrInvalidInput)
	}
	ids, err := r.categoryIDs(product)
	if err != nil {
		return err
	}
	row.product = *product
	row.product.Categories = nil
	row.categoryIDs = ids
	return nil
}

// MergeStock inserta el producto o suma Quantity al existente con el mismo nombre.
func (r *ProductRepo) MergeStock(ctx context.Context, product *entity.Product) (bool, error) {
	if row := r.findByName(product.Name); row != nil {
		if err := r.AddQuantity(ctx, row.product.ID, product.Quantity); err != nil {
			return false, err
		}
		product.ID = row.product.ID
		return false, nil
	}
	if err := r.Create(ctx, product); err != nil {
		return false, err
	}
	return true, nil
}

// AddQuantity suma delta al stock; el resultado debe caber en la columna INTEGER y no ser negativo.
func (r *ProductRepo) AddQuantity(_ context.Context, id int64, delta int) error {
	row, ok := r.st.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	if !validQuantity(int64(row.product.Quantity) + int64(delta)) {
		return fmt.Errorf("add quantity: %w", domain.ErrInvalidInput)
	}
	row.product.Quantity += delta
	row.product.UpdatedAt = time.Now()
	return nil
}

// Delete elimina un producto por ID.
func (r *ProductRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.st.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.st.products, id)
	return nil
}

// validQuantity replica el rango de quantity en postgres: INTEGER con CHECK (quantity >= 0).
func validQuantity(q int64) bool {
	return q >= 0 && q <= math.MaxInt32
}
