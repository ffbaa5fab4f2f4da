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
	_ repository.TransactionRepository = (*TransactionRepo)(nil)
	_ repository.TransactionRepository = (*txTransactionRepo)(nil)
)

// TransactionRepo log de transacciones confirmado.
type TransactionRepo struct {
	store *Store
}

// NewTransactionRepo construye el repositorio.
func NewTransactionRepo(store *Store) *TransactionRepo {
	return &TransactionRepo{store: store}
}

// Create persiste la transacción en una unidad de trabajo propia.
func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	return r.store.run(ctx, func(u *unitOfWork) error {
		return (&txTransactionRepo{u: u}).Create(ctx, t)
	})
}

// GetByID transacción confirmada o nil.
func (r *TransactionRepo) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return r.store.transactions[id].Clone(), nil
}

// GetForUpdate fuera de una transacción equivale a GetByID.
func (r *TransactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transaction, error) {
	return r.GetByID(ctx, id)
}

// UpdateStatus cambia el estado en una unidad de trabajo propia.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, id string, change repository.StatusChange) error {
	return r.store.run(ctx, func(u *unitOfWork) error {
		return (&txTransactionRepo{u: u}).UpdateStatus(ctx, id, change)
	})
}

// List página filtrada, más reciente primero.
func (r *TransactionRepo) List(_ context.Context, f repository.TransactionFilter) ([]*entity.Transaction, error) {
	all := r.filtered(f)
	if f.Offset < 0 || f.Offset >= len(all) {
		return []*entity.Transaction{}, nil
	}
	end := len(all)
	if f.Limit > 0 && f.Offset+f.Limit < end {
		end = f.Offset + f.Limit
	}
	return all[f.Offset:end], nil
}

// Count total que cumple el filtro.
func (r *TransactionRepo) Count(_ context.Context, f repository.TransactionFilter) (int, error) {
	return len(r.filtered(f)), nil
}

// ListByStockKey transacciones que tocan la llave como origen o destino.
func (r *TransactionRepo) ListByStockKey(_ context.Context, key entity.StockKey) ([]*entity.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []*entity.Transaction
	for _, t := range r.store.transactions {
		if t.WarehouseID != key.WarehouseID && t.TargetWarehouseID != key.WarehouseID {
			continue
		}
		for _, it := range t.Items {
			if it.ProductID == key.ProductID {
				out = append(out, t.Clone())
				break
			}
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *TransactionRepo) filtered(f repository.TransactionFilter) []*entity.Transaction {
	fold := cases.Fold()
	search := fold.String(strings.TrimSpace(f.Search))

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]*entity.Transaction, 0)
	for _, t := range r.store.transactions {
		if f.WarehouseID != "" && t.WarehouseID != f.WarehouseID && t.TargetWarehouseID != f.WarehouseID {
			continue
		}
		if f.TargetWarehouseID != "" && t.TargetWarehouseID != f.TargetWarehouseID {
			continue
		}
		if f.Type != "" && t.Type != f.Type {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.From != nil && t.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && t.CreatedAt.After(*f.To) {
			continue
		}
		if search != "" && !strings.Contains(fold.String(t.ReferenceNumber), search) {
			continue
		}
		out = append(out, t.Clone())
	}
	sortNewestFirst(out)
	return out
}

func sortNewestFirst(ts []*entity.Transaction) {
	sort.Slice(ts, func(i, j int) bool {
		if !ts[i].CreatedAt.Equal(ts[j].CreatedAt) {
			return ts[i].CreatedAt.After(ts[j].CreatedAt)
		}
		return ts[i].ID > ts[j].ID
	})
}

// txTransactionRepo repositorio del log atado a una unidad de trabajo.
type txTransactionRepo struct {
	u *unitOfWork
}

func (r *txTransactionRepo) Create(_ context.Context, t *entity.Transaction) error {
	if t == nil || t.ID == "" || t.ReferenceNumber == "" {
		return domain.Invalid("transacción sin id o referencia")
	}
	if _, dup := r.u.refsSeen[t.ReferenceNumber]; dup {
		return fmt.Errorf("%w: número de referencia %s ya existe", domain.ErrConflict, t.ReferenceNumber)
	}
	s := r.u.store
	s.mu.RLock()
	_, dupRef := s.references[t.ReferenceNumber]
	_, dupID := s.transactions[t.ID]
	s.mu.RUnlock()
	if dupRef || dupID {
		return fmt.Errorf("%w: número de referencia %s ya existe", domain.ErrConflict, t.ReferenceNumber)
	}
	r.u.refsSeen[t.ReferenceNumber] = struct{}{}
	r.u.created = append(r.u.created, t.Clone())
	return nil
}

func (r *txTransactionRepo) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	return r.u.transaction(id), nil
}

// GetForUpdate bloquea la fila hasta el fin de la unidad de trabajo y luego lee.
func (r *txTransactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transaction, error) {
	if err := r.u.lockRow(ctx, id); err != nil {
		return nil, err
	}
	return r.u.transaction(id), nil
}

func (r *txTransactionRepo) UpdateStatus(ctx context.Context, id string, change repository.StatusChange) error {
	if err := r.u.lockRow(ctx, id); err != nil {
		return err
	}
	t := r.u.transaction(id)
	if t == nil {
		return domain.NotFound("transacción", id)
	}
	if t.Status != change.From {
		return fmt.Errorf("%w: la transacción %s ya no está en %s", domain.ErrConflict, id, change.From)
	}
	t.Status = change.To
	t.ApprovedBy = change.ApprovedBy
	t.Notes = change.Notes
	t.UpdatedAt = change.UpdatedAt
	r.u.updated[id] = t
	return nil
}

func (r *txTransactionRepo) List(ctx context.Context, f repository.TransactionFilter) ([]*entity.Transaction, error) {
	return (&TransactionRepo{store: r.u.store}).List(ctx, f)
}

func (r *txTransactionRepo) Count(ctx context.Context, f repository.TransactionFilter) (int, error) {
	return (&TransactionRepo{store: r.u.store}).Count(ctx, f)
}

func (r *txTransactionRepo) ListByStockKey(ctx context.Context, key entity.StockKey) ([]*entity.Transaction, error) {
	return (&TransactionRepo{store: r.u.store}).ListByStockKey(ctx, key)
}
