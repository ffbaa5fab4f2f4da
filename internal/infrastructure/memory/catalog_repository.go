package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.CategoryRepository  = (*CategoryRepo)(nil)
	_ repository.UnitRepository      = (*UnitRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct{ store *Store }

// NewProductRepo construye el repositorio.
func NewProductRepo(store *Store) *ProductRepo { return &ProductRepo{store: store} }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.productsBySKU[p.SKU]; ok {
		return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, p.SKU)
	}
	c := *p
	s.products[p.ID] = &c
	s.productsBySKU[p.SKU] = p.ID
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if p, ok := r.store.products[id]; ok {
		c := *p
		return &c, nil
	}
	return nil, nil
}

func (r *ProductRepo) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	r.store.mu.RLock()
	id, ok := r.store.productsBySKU[sku]
	r.store.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// List ordenado por SKU.
func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	r.store.mu.RLock()
	out := make([]*entity.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		c := *p
		out = append(out, &c)
	}
	r.store.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return paginate(out, limit, offset), nil
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.products[p.ID]
	if !ok {
		return domain.NotFound("producto", p.ID)
	}
	c := *p
	c.SKU = cur.SKU
	c.CreatedAt = cur.CreatedAt
	s.products[p.ID] = &c
	return nil
}

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct{ store *Store }

// NewWarehouseRepo construye el repositorio.
func NewWarehouseRepo(store *Store) *WarehouseRepo { return &WarehouseRepo{store: store} }

func (r *WarehouseRepo) Create(_ context.Context, w *entity.Warehouse) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.whByCode[w.Code]; ok {
		return fmt.Errorf("%w: código de bodega %s", domain.ErrDuplicate, w.Code)
	}
	c := *w
	s.warehouses[w.ID] = &c
	s.whByCode[w.Code] = w.ID
	return nil
}

func (r *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if w, ok := r.store.warehouses[id]; ok {
		c := *w
		return &c, nil
	}
	return nil, nil
}

func (r *WarehouseRepo) GetByCode(ctx context.Context, code string) (*entity.Warehouse, error) {
	r.store.mu.RLock()
	id, ok := r.store.whByCode[code]
	r.store.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return r.GetByID(ctx, id)
}

// List ordenado por código.
func (r *WarehouseRepo) List(_ context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	r.store.mu.RLock()
	out := make([]*entity.Warehouse, 0, len(r.store.warehouses))
	for _, w := range r.store.warehouses {
		c := *w
		out = append(out, &c)
	}
	r.store.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return paginate(out, limit, offset), nil
}

func (r *WarehouseRepo) Update(_ context.Context, w *entity.Warehouse) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.warehouses[w.ID]
	if !ok {
		return domain.NotFound("bodega", w.ID)
	}
	c := *w
	c.Code = cur.Code
	c.CreatedAt = cur.CreatedAt
	s.warehouses[w.ID] = &c
	return nil
}

// CategoryRepo categorías en memoria; el nombre es único sin distinguir mayúsculas.
type CategoryRepo struct{ store *Store }

// NewCategoryRepo construye el repositorio.
func NewCategoryRepo(store *Store) *CategoryRepo { return &CategoryRepo{store: store} }

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	if existing, _ := r.GetByName(ctx, c.Name); existing != nil {
		return fmt.Errorf("%w: categoría %s", domain.ErrDuplicate, c.Name)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *c
	r.store.categories[c.ID] = &cp
	return nil
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if c, ok := r.store.categories[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *CategoryRepo) GetByName(_ context.Context, name string) (*entity.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, c := range r.store.categories {
		if sameName(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *CategoryRepo) List(context.Context) ([]*entity.Category, error) {
	r.store.mu.RLock()
	out := make([]*entity.Category, 0, len(r.store.categories))
	for _, c := range r.store.categories {
		cp := *c
		out = append(out, &cp)
	}
	r.store.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UnitRepo unidades en memoria.
type UnitRepo struct{ store *Store }

// NewUnitRepo construye el repositorio.
func NewUnitRepo(store *Store) *UnitRepo { return &UnitRepo{store: store} }

func (r *UnitRepo) Create(ctx context.Context, u *entity.Unit) error {
	if existing, _ := r.GetByName(ctx, u.Name); existing != nil {
		return fmt.Errorf("%w: unidad %s", domain.ErrDuplicate, u.Name)
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *u
	r.store.units[u.ID] = &cp
	return nil
}

func (r *UnitRepo) GetByID(_ context.Context, id string) (*entity.Unit, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if u, ok := r.store.units[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *UnitRepo) GetByName(_ context.Context, name string) (*entity.Unit, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, u := range r.store.units {
		if sameName(u.Name, name) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *UnitRepo) List(context.Context) ([]*entity.Unit, error) {
	r.store.mu.RLock()
	out := make([]*entity.Unit, 0, len(r.store.units))
	for _, u := range r.store.units {
		cp := *u
		out = append(out, &cp)
	}
	r.store.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func sameName(a, b string) bool {
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(a)) == fold.String(strings.TrimSpace(b))
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}
