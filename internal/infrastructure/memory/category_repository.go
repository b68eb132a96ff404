package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo CategoryRepository sobre el estado de una transacción en memoria.
type CategoryRepo struct {
	st *state
}

func (r *CategoryRepo) findByName(name string) (entity.Category, bool) {
	for _, c := range r.st.categories {
		if c.Name == name {
			return c, true
		}
	}
	return entity.Category{}, false
}

func (r *CategoryRepo) insert(category *entity.Category) {
	now := time.Now()
	if category.CreatedAt.IsZero() {
		category.CreatedAt = now
	}
	if category.UpdatedAt.IsZero() {
		category.UpdatedAt = now
	}
	r.st.nextCategoryID++
	category.ID = r.st.nextCategoryID
	r.st.categories[category.ID] = *category
}

// Create inserta una categoría; el nombre es único.
func (r *CategoryRepo) Create(_ context.Context, category *entity.Category) error {
	if _, ok := r.findByName(category.Name); ok {
		return domain.ErrDuplicate
	}
	r.insert(category)
	return nil
}

// GetByID obtiene una categoría por ID.
func (r *CategoryRepo) GetByID(_ context.Context, id int64) (*entity.Category, error) {
	c, ok := r.st.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// GetByName obtiene una categoría por nombre exacto.
func (r *CategoryRepo) GetByName(_ context.Context, name string) (*entity.Category, error) {
	c, ok := r.findByName(name)
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// GetByNames devuelve las categorías cuyo nombre está en names, ordenadas por ID.
func (r *CategoryRepo) GetByNames(_ context.Context, names []string) ([]*entity.Category, error) {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	list := make([]*entity.Category, 0, len(names))
	for _, c := range r.st.categories {
		if wanted[c.Name] {
			c := c
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// GetOrCreate devuelve la categoría existente con ese nombre o la inserta.
func (r *CategoryRepo) GetOrCreate(_ context.Context, category *entity.Category) error {
	if c, ok := r.findByName(category.Name); ok {
		*category = c
		return nil
	}
	r.insert(category)
	return nil
}

// List lista las categorías ordenadas por ID.
func (r *CategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	list := make([]*entity.Category, 0, len(r.st.categories))
	for _, c := range r.st.categories {
		c := c
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// Update actualiza una categoría existente.
func (r *CategoryRepo) Update(_ context.Context, category *entity.Category) error {
	if _, ok := r.st.categories[category.ID]; !ok {
		return domain.ErrNotFound
	}
	if other, ok := r.findByName(category.Name); ok && other.ID != category.ID {
		return domain.ErrDuplicate
	}
	r.st.categories[category.ID] = *category
	return nil
}

// Delete elimina la categoría y sus vínculos con productos.
func (r *CategoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.st.categories[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.st.categories, id)
	for _, row := range r.st.products {
		kept := row.categoryIDs[:0]
		for _, cid := range row.categoryIDs {
			if cid != id {
				kept = append(kept, cid)
			}
		}
		row.categoryIDs = kept
	}
	return nil
}
