package inventory

import (
	"context"
	"strings"

	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

// CategoryResolver resuelve nombres de categoría a entidades dentro de un mismo lote.
// Mantiene un conjunto de trabajo por nombre (sin espacios al inicio/fin) para que dos
// apariciones del mismo nombre devuelvan siempre la misma instancia, aunque aún no tenga ID.
type CategoryResolver struct {
	seen   map[string]*entity.Category
	staged []*entity.Category
}

// NewCategoryResolver crea un resolver con el conjunto de trabajo vacío.
func NewCategoryResolver() *CategoryResolver {
	return &CategoryResolver{seen: make(map[string]*entity.Category)}
}

// Resolve devuelve las categorías de names en orden. Busca primero en el conjunto de trabajo,
// luego en el repositorio; si no existe, deja una categoría nueva preparada (ID 0) para Flush.
// Los nombres vacíos se ignoran y los repetidos en la misma lista se devuelven una sola vez.
func (r *CategoryResolver) Resolve(ctx context.Context, repo repository.CategoryRepository, names []string) ([]*entity.Category, error) {
	out := make([]*entity.Category, 0, len(names))
	inRecord := make(map[string]bool, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" || inRecord[name] {
			continue
		}
		inRecord[name] = true

		if c, ok := r.seen[name]; ok {
			out = append(out, c)
			continue
		}
		c, err := repo.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if c == nil {
			c = &entity.Category{Name: name}
			r.staged = append(r.staged, c)
		}
		r.seen[name] = c
		out = append(out, c)
	}
	return out, nil
}

// Staged devuelve las categorías nuevas pendientes de persistir.
func (r *CategoryResolver) Staged() []*entity.Category {
	return r.staged
}

// Flush persiste las categorías preparadas con get-or-insert atómico; el ID queda asignado
// sobre la misma instancia que ya referencian los productos del lote.
func (r *CategoryResolver) Flush(ctx context.Context, repo repository.CategoryRepository) error {
	for _, c := range r.staged {
		if err := repo.GetOrCreate(ctx, c); err != nil {
			return err
		}
	}
	r.staged = nil
	return nil
}
