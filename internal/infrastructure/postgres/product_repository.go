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

var _ repository.ProductRepository = (*ProductRepo)(nil)

const productColumns = `id, name, description, price, quantity, created_at, updated_at`

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create persiste un nuevo producto con sus vínculos de categorías.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	query := `
		INSERT INTO products (name, description, price, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id, created_at, updated_at`
	qty, err := int4Param("insert product", product.Quantity)
	if err != nil {
		return err
	}
	err = r.q.QueryRow(ctx, query, product.Name, product.Description, product.Price, qty).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return mapError("insert product", err)
	}
	return r.linkCategories(ctx, product.ID, product.Categories)
}

// GetByID obtiene un producto por ID.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	return r.getOne(ctx, "get product", `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
}

// GetByName obtiene un producto por nombre exacto.
func (r *ProductRepo) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	return r.getOne(ctx, "get product by name", `SELECT `+productColumns+` FROM products WHERE name = $1`, name)
}

// GetByIDs devuelve los productos existentes de ids; los inexistentes se omiten.
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []int64) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return []*entity.Product{}, nil
	}
	return r.list(ctx, "get products by ids",
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY id`, ids)
}

// List lista todos los productos ordenados por ID.
func (r *ProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	return r.list(ctx, "list products", `SELECT `+productColumns+` FROM products ORDER BY id`)
}

// Update reemplaza los datos y los vínculos de categorías.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	query := `
		UPDATE products SET name = $2, description = $3, price = $4, quantity = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	qty, err := int4Param("update product", product.Quantity)
	if err != nil {
		return err
	}
	err = r.q.QueryRow(ctx, query,
		product.ID, product.Name, product.Description, product.Price, qty,
	).Scan(&product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return mapError("update product", err)
	}
	if _, err := r.q.Exec(ctx, `DELETE FROM product_categories WHERE product_id = $1`, product.ID); err != nil {
		return fmt.Errorf("unlink categories: %w", err)
	}
	return r.linkCategories(ctx, product.ID, product.Categories)
}

// MergeStock inserta el producto o suma Quantity al existente en una sola sentencia.
// xmax = 0 solo en filas recién insertadas; las categorías se vinculan únicamente en ese caso.
func (r *ProductRepo) MergeStock(ctx context.Context, product *entity.Product) (bool, error) {
	query := `
		INSERT INTO products (name, description, price, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (name) DO UPDATE
			SET quantity = products.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING id, (xmax = 0) AS inserted`
	qty, err := int4Param("merge product stock", product.Quantity)
	if err != nil {
		return false, err
	}
	var created bool
	err = r.q.QueryRow(ctx, query, product.Name, product.Description, product.Price, qty).
		Scan(&product.ID, &created)
	if err != nil {
		return false, mapError("merge product stock", err)
	}
	if !created {
		return false, nil
	}
	if err := r.linkCategories(ctx, product.ID, product.Categories); err != nil {
		return false, err
	}
	return true, nil
}

// AddQuantity suma delta al stock; el CHECK (quantity >= 0) rechaza resultados negativos
// y un desborde de INTEGER llega como 22003.
func (r *ProductRepo) AddQuantity(ctx context.Context, id int64, delta int) error {
	d, err := int4Param("add quantity", delta)
	if err != nil {
		return err
	}
	cmd, err := r.q.Exec(ctx,
		`UPDATE products SET quantity = quantity + $2, updated_at = now() WHERE id = $1`, id, d)
	if err != nil {
		return mapError("add quantity", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina un producto por ID.
func (r *ProductRepo) Delete(ctx context.Context, id int64) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) getOne(ctx context.Context, op, query string, arg any) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := r.loadCategories(ctx, []*entity.Product{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProductRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	list := make([]*entity.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := r.loadCategories(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// loadCategories carga en una sola consulta las categorías de todos los productos dados.
func (r *ProductRepo) loadCategories(ctx context.Context, products []*entity.Product) error {
	if len(products) == 0 {
		return nil
	}
	byID := make(map[int64]*entity.Product, len(products))
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		p.Categories = make([]*entity.Category, 0)
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}
	query := `
		SELECT pc.product_id, c.id, c.name, c.description, c.created_at, c.updated_at
		FROM product_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.product_id = ANY($1)
		ORDER BY pc.product_id, c.id`
	rows, err := r.q.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("load product categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var productID int64
		var c entity.Category
		if err := rows.Scan(&productID, &c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return fmt.Errorf("scan product category: %w", err)
		}
		if p, ok := byID[productID]; ok {
			p.Categories = append(p.Categories, &c)
		}
	}
	return rows.Err()
}

func (r *ProductRepo) linkCategories(ctx context.Context, productID int64, categories []*entity.Category) error {
	if len(categories) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}
	query := `
		INSERT INTO product_categories (product_id, category_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING`
	if _, err := r.q.Exec(ctx, query, productID, ids); err != nil {
		return mapError("link categories", err)
	}
	return nil
}
