package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/catalogo-api/internal/application/inventory"
	"github.com/jhoicas/catalogo-api/internal/domain/entity"
	"github.com/jhoicas/catalogo-api/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// Store catálogo en memoria para desarrollo y tests. Cada Run trabaja sobre una copia del estado
// y la publica solo si fn termina sin error, así que un lote fallido no deja rastro.
// Las transacciones de escritura se serializan con un mutex.
type Store struct {
	mu        sync.RWMutex
	state     *state
	commitErr error
}

type productRow struct {
	product     entity.Product // sin Categories
	categoryIDs []int64
}

type state struct {
	nextCategoryID int64
	nextProductID  int64
	categories     map[int64]entity.Category
	products       map[int64]*productRow
}

// NewStore crea un catálogo vacío.
func NewStore() *Store {
	return &Store{state: &state{
		categories: make(map[int64]entity.Category),
		products:   make(map[int64]*productRow),
	}}
}

// FailNextCommit hace que el próximo Commit falle con err (simula caída del store).
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commitErr = err
}

// Run ejecuta fn con repositorios sobre una copia del estado; Commit si fn devuelve nil.
func (s *Store) Run(ctx context.Context, fn func(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := s.state.clone()
	if err := fn(&CategoryRepo{st: tx}, &ProductRepo{st: tx}); err != nil {
		return err
	}
	if s.commitErr != nil {
		err := s.commitErr
		s.commitErr = nil
		return err
	}
	s.state = tx
	return nil
}

// RunReadOnly ejecuta fn sobre una instantánea; los cambios se descartan.
func (s *Store) RunReadOnly(ctx context.Context, fn func(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	snapshot := s.state.clone()
	s.mu.RUnlock()

	return fn(&CategoryRepo{st: snapshot}, &ProductRepo{st: snapshot})
}

func (st *state) clone() *state {
	out := &state{
		nextCategoryID: st.nextCategoryID,
		nextProductID:  st.nextProductID,
		categories:     make(map[int64]entity.Category, len(st.categories)),
		products:       make(map[int64]*productRow, len(st.products)),
	}
	for id, c := range st.categories {
		out.categories[id] = c
	}
	for id, row := range st.products {
		out.products[id] = &productRow{
			product:     row.product,
			categoryIDs: append([]int64(nil), row.categoryIDs...),
		}
	}
	return out
}
