package memory

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner implementa inventory.TxRunner sobre el Store: cada Run es una unidad de trabajo
// con escrituras en staging que se aplican al confirmar. Las llaves bloqueadas se liberan
// después del commit o del rollback.
type TxRunner struct {
	store *Store
}

// NewTxRunner construye el runner.
func NewTxRunner(store *Store) *TxRunner {
	return &TxRunner{store: store}
}

// Run ejecuta fn; si devuelve error se descarta todo lo escrito.
func (r *TxRunner) Run(ctx context.Context, fn func(
	txRepo repository.TransactionRepository,
	stockRepo repository.StockRepository,
) error) error {
	return r.store.run(ctx, func(u *unitOfWork) error {
		return fn(&txTransactionRepo{u: u}, &txStockRepo{u: u})
	})
}

func (s *Store) run(ctx context.Context, fn func(u *unitOfWork) error) error {
	u := newUnitOfWork(s)
	defer u.release()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTransient, err)
	}
	if err := fn(u); err != nil {
		return err
	}
	return u.commit()
}

// unitOfWork estado de una transacción en curso.
type unitOfWork struct {
	store *Store

	held     map[string]func()
	stock    map[entity.StockKey]int64
	created  []*entity.Transaction
	updated  map[string]*entity.Transaction
	refsSeen map[string]struct{}
}

func newUnitOfWork(s *Store) *unitOfWork {
	return &unitOfWork{
		store:    s,
		held:     make(map[string]func()),
		stock:    make(map[entity.StockKey]int64),
		updated:  make(map[string]*entity.Transaction),
		refsSeen: make(map[string]struct{}),
	}
}

func (u *unitOfWork) lock(ctx context.Context, table *lockTable, prefix, key string) error {
	id := prefix + key
	if _, ok := u.held[id]; ok {
		return nil
	}
	release, err := table.acquire(ctx, key)
	if err != nil {
		return fmt.Errorf("%w: esperando bloqueo: %v", domain.ErrTransient, err)
	}
	u.held[id] = release
	return nil
}

func (u *unitOfWork) lockStock(ctx context.Context, k entity.StockKey) error {
	return u.lock(ctx, u.store.stockLocks, "s:", stockLockKey(k))
}

func (u *unitOfWork) lockRow(ctx context.Context, id string) error {
	return u.lock(ctx, u.store.rowLocks, "t:", id)
}

func (u *unitOfWork) release() {
	for id, release := range u.held {
		release()
		delete(u.held, id)
	}
}

// quantity cantidad vista por la unidad de trabajo (staging o confirmada).
func (u *unitOfWork) quantity(k entity.StockKey) int64 {
	if q, ok := u.stock[k]; ok {
		return q
	}
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	if rec, ok := u.store.stock[k]; ok {
		return rec.Quantity
	}
	return 0
}

// transaction versión vista por la unidad de trabajo.
func (u *unitOfWork) transaction(id string) *entity.Transaction {
	if t, ok := u.updated[id]; ok {
		return t.Clone()
	}
	for _, t := range u.created {
		if t.ID == id {
			return t.Clone()
		}
	}
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	return u.store.transactions[id].Clone()
}

func (u *unitOfWork) commit() error {
	s := u.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range u.created {
		if _, dup := s.references[t.ReferenceNumber]; dup {
			return fmt.Errorf("%w: número de referencia %s ya existe", domain.ErrConflict, t.ReferenceNumber)
		}
	}

	now := s.now()
	for k, q := range u.stock {
		rec, ok := s.stock[k]
		if !ok {
			rec = &entity.StockRecord{ProductID: k.ProductID, WarehouseID: k.WarehouseID, CreatedAt: now}
			s.stock[k] = rec
		}
		rec.Quantity = q
		rec.UpdatedAt = now
	}
	for _, t := range u.created {
		s.transactions[t.ID] = t.Clone()
		s.references[t.ReferenceNumber] = t.ID
	}
	for id, t := range u.updated {
		s.transactions[id] = t.Clone()
	}
	return nil
}
