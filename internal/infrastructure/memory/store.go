// Package memory implementa los repositorios en memoria, con la misma semántica transaccional
// que el backend postgres: bloqueo por llave de stock y por fila de transacción, y escrituras
// que solo se hacen visibles al confirmar la unidad de trabajo.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// Store estado confirmado del backend en memoria.
type Store struct {
	mu sync.RWMutex

	products      map[string]*entity.Product
	productsBySKU map[string]string
	warehouses    map[string]*entity.Warehouse
	whByCode      map[string]string
	categories    map[string]*entity.Category
	units         map[string]*entity.Unit

	stock        map[entity.StockKey]*entity.StockRecord
	transactions map[string]*entity.Transaction
	references   map[string]string // número de referencia -> id

	stockLocks *lockTable
	rowLocks   *lockTable

	now func() time.Time
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		products:      make(map[string]*entity.Product),
		productsBySKU: make(map[string]string),
		warehouses:    make(map[string]*entity.Warehouse),
		whByCode:      make(map[string]string),
		categories:    make(map[string]*entity.Category),
		units:         make(map[string]*entity.Unit),
		stock:         make(map[entity.StockKey]*entity.StockRecord),
		transactions:  make(map[string]*entity.Transaction),
		references:    make(map[string]string),
		stockLocks:    newLockTable(),
		rowLocks:      newLockTable(),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// lockTable mutex por llave, adquirible con cancelación de contexto. Una entrada vive
// mientras alguien la tenga o la espere.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	sem  chan struct{}
	refs int // dueño + en espera
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*lockEntry)}
}

func (t *lockTable) ref(key string) *lockEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.locks[key]
	if !ok {
		e = &lockEntry{sem: make(chan struct{}, 1)}
		t.locks[key] = e
	}
	e.refs++
	return e
}

func (t *lockTable) unref(key string, e *lockEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(t.locks, key)
	}
}

// acquire bloquea hasta obtener la llave o hasta que ctx termine.
func (t *lockTable) acquire(ctx context.Context, key string) (func(), error) {
	e := t.ref(key)
	select {
	case e.sem <- struct{}{}:
		return func() {
			<-e.sem
			t.unref(key, e)
		}, nil
	case <-ctx.Done():
		t.unref(key, e)
		return nil, ctx.Err()
	}
}

func (t *lockTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}

func stockLockKey(k entity.StockKey) string {
	return k.ProductID + "\x00" + k.WarehouseID
}
