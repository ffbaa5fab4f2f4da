package memory

import (
	"context"
	"math"
	"sort"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var (
	_ repository.StockRepository = (*StockRepo)(nil)
	_ repository.StockRepository = (*txStockRepo)(nil)
)

// StockRepo lecturas sobre el estado confirmado; cada escritura es su propia unidad de trabajo.
type StockRepo struct {
	store *Store
}

// NewStockRepo construye el repositorio.
func NewStockRepo(store *Store) *StockRepo {
	return &StockRepo{store: store}
}

// Get devuelve el registro confirmado o cantidad cero.
func (r *StockRepo) Get(_ context.Context, productID, warehouseID string) (*entity.StockRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if rec, ok := r.store.stock[entity.StockKey{ProductID: productID, WarehouseID: warehouseID}]; ok {
		c := *rec
		return &c, nil
	}
	return &entity.StockRecord{ProductID: productID, WarehouseID: warehouseID}, nil
}

// ListByProduct registros del producto ordenados por bodega.
func (r *StockRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*entity.StockRecord
	for k, rec := range r.store.stock {
		if k.ProductID == productID {
			c := *rec
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WarehouseID < out[j].WarehouseID })
	return out, nil
}

// LockKeys fuera de una transacción no tiene efecto.
func (r *StockRepo) LockKeys(context.Context, []entity.StockKey) error { return nil }

// Increase suma amount en una unidad de trabajo propia.
func (r *StockRepo) Increase(ctx context.Context, productID, warehouseID string, amount int64) (int64, error) {
	var q int64
	err := r.store.run(ctx, func(u *unitOfWork) error {
		var err error
		q, err = (&txStockRepo{u: u}).Increase(ctx, productID, warehouseID, amount)
		return err
	})
	return q, err
}

// Decrease resta amount en una unidad de trabajo propia.
func (r *StockRepo) Decrease(ctx context.Context, productID, warehouseID string, amount int64) (int64, error) {
	var q int64
	err := r.store.run(ctx, func(u *unitOfWork) error {
		var err error
		q, err = (&txStockRepo{u: u}).Decrease(ctx, productID, warehouseID, amount)
		return err
	})
	return q, err
}

// txStockRepo repositorio de stock atado a una unidad de trabajo.
type txStockRepo struct {
	u *unitOfWork
}

func (r *txStockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error) {
	k := entity.StockKey{ProductID: productID, WarehouseID: warehouseID}
	rec, _ := (&StockRepo{store: r.u.store}).Get(ctx, productID, warehouseID)
	rec.Quantity = r.u.quantity(k)
	return rec, nil
}

func (r *txStockRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockRecord, error) {
	recs, err := (&StockRepo{store: r.u.store}).ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		rec.Quantity = r.u.quantity(rec.Key())
	}
	return recs, nil
}

func (r *txStockRepo) LockKeys(ctx context.Context, keys []entity.StockKey) error {
	for _, k := range keys {
		if err := r.u.lockStock(ctx, k); err != nil {
			return err
		}
	}
	return nil
}

// Increase bloquea la llave si aún no está bloqueada (como un UPDATE en postgres) y suma.
func (r *txStockRepo) Increase(ctx context.Context, productID, warehouseID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.Invalid("la cantidad debe ser mayor que cero")
	}
	k := entity.StockKey{ProductID: productID, WarehouseID: warehouseID}
	if err := r.u.lockStock(ctx, k); err != nil {
		return 0, err
	}
	current := r.u.quantity(k)
	if amount > math.MaxInt64-current {
		return current, domain.Invalid("la cantidad excede el máximo representable para producto %s en bodega %s", productID, warehouseID)
	}
	q := current + amount
	r.u.stock[k] = q
	return q, nil
}

// Decrease verifica y resta bajo el bloqueo de la llave.
func (r *txStockRepo) Decrease(ctx context.Context, productID, warehouseID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.Invalid("la cantidad debe ser mayor que cero")
	}
	k := entity.StockKey{ProductID: productID, WarehouseID: warehouseID}
	if err := r.u.lockStock(ctx, k); err != nil {
		return 0, err
	}
	current := r.u.quantity(k)
	if current < amount {
		return current, &domain.InsufficientStockError{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Available:   current,
			Requested:   amount,
		}
	}
	q := current - amount
	r.u.stock[k] = q
	return q, nil
}
