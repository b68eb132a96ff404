package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/catalogo-api/internal/domain"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

const categoryColumns = `id, name, description, created_at, updated_at`

// CategoryRepo implementación del puerto CategoryRepository sobre PostgreSQL (usable con pool o tx).
type CategoryRepo struct {
	q Querier
}

// NewCategoryRepository construye el adaptador de persistencia para categorías. Pasar pool o tx (Querier).
func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

func scanCategory(row pgx.Row) (*entity.Category, error) {
	var c entity.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CategoryRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.Category, error) {
	c, err := scanCategory(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (r *CategoryRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Category, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	list := make([]*entity.Category, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Create persiste una nueva categoría. Nombre duplicado -> domain.ErrDuplicate.
func (r *CategoryRepo) Create(ctx context.Context, category *entity.Category) error {
	query := `
		INSERT INTO categories (name, description, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query, category.Name, category.Description).
		Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetByID obtiene una categoría por ID.
func (r *CategoryRepo) GetByID(ctx context.Context, id int64) (*entity.Category, error) {
	return r.getOne(ctx, "get category", `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
}

// GetByName obtiene una categoría por nombre exacto.
func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*entity.Category, error) {
	return r.getOne(ctx, "get category by name", `SELECT `+categoryColumns+` FROM categories WHERE name = $1`, name)
}

// GetByNames devuelve las categorías cuyo nombre está en names (sin coincidencia = se ignora).
func (r *CategoryRepo) GetByNames(ctx context.Context, names []string) ([]*entity.Category, error) {
	if len(names) == 0 {
		return []*entity.Category{}, nil
	}
	return r.list(ctx, "get categories by names",
		`SELECT `+categoryColumns+` FROM categories WHERE name = ANY($1) ORDER BY id`, names)
}

// GetOrCreate inserta la categoría o devuelve la existente con el mismo nombre en una sola sentencia.
// El DO UPDATE bloquea la fila existente, así dos lotes concurrentes nunca crean duplicados.
func (r *CategoryRepo) GetOrCreate(ctx context.Context, category *entity.Category) error {
	query := `
		INSERT INTO categories (name, description, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING ` + categoryColumns
	c, err := scanCategory(r.q.QueryRow(ctx, query, category.Name, category.Description))
	if err != nil {
		return mapError("get or create category", err)
	}
	*category = *c
	return nil
}

// List lista todas las categorías.
func (r *CategoryRepo) List(ctx context.Context) ([]*entity.Category, error) {
	return r.list(ctx, "list categories", `SELECT `+categoryColumns+` FROM categories ORDER BY id`)
}

// Update actualiza nombre y descripción.
func (r *CategoryRepo) Update(ctx context.Context, category *entity.Category) error {
	cmd, err := r.q.Exec(ctx,
		`UPDATE categories SET name = $2, description = $3, updated_at = now() WHERE id = $1`,
		category.ID, category.Name, category.Description,
	)
	if err != nil {
		return mapError("update category", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina una categoría por ID (product_categories con ON DELETE CASCADE).
func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
