package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// TransactionFilter filtros de consulta del log de transacciones.
// WarehouseID coincide con bodega origen O destino; TargetWarehouseID solo con destino.
type TransactionFilter struct {
	WarehouseID       string
	TargetWarehouseID string
	Type              entity.TransactionType
	Status            entity.TransactionStatus
	From              *time.Time
	To                *time.Time
	Search            string // subcadena del número de referencia, sin distinguir mayúsculas
	Limit             int
	Offset            int
}

// StatusChange cambio de estado condicionado al estado previo.
type StatusChange struct {
	From       entity.TransactionStatus
	To         entity.TransactionStatus
	ApprovedBy string
	Notes      string
	UpdatedAt  time.Time
}

// TransactionRepository define el puerto del Transaction Log (append-only).
type TransactionRepository interface {
	// Create persiste la transacción y sus ítems en una sola escritura.
	// Devuelve domain.ErrConflict si el número de referencia ya existe.
	Create(ctx context.Context, t *entity.Transaction) error
	// GetByID devuelve la transacción con sus ítems o nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
	// GetForUpdate igual que GetByID pero bloquea la fila hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Transaction, error)
	// UpdateStatus aplica el cambio solo si el estado actual es change.From; si no, domain.ErrConflict.
	UpdateStatus(ctx context.Context, id string, change StatusChange) error
	// List devuelve la página pedida, más reciente primero (created_at DESC, id DESC).
	List(ctx context.Context, filter TransactionFilter) ([]*entity.Transaction, error)
	// Count total de transacciones que cumplen el filtro (ignora Limit/Offset).
	Count(ctx context.Context, filter TransactionFilter) (int, error)
	// ListByStockKey transacciones (con todos sus ítems) que tocan la llave dada.
	ListByStockKey(ctx context.Context, key entity.StockKey) ([]*entity.Transaction, error)
}
