package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback completo; si no, Commit. Garantiza atomicidad del ledger.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		txRepo repository.TransactionRepository,
		stockRepo repository.StockRepository,
	) error) error
}

// Tipos de evento publicados tras cada commit del ledger.
const (
	EventTransactionCreated  = "transaction.created"
	EventTransactionApproved = "transaction.approved"
	EventTransactionRejected = "transaction.rejected"
)

// Event notificación de un cambio confirmado en el log de transacciones.
type Event struct {
	Event             string                   `json:"event"`
	TransactionID     string                   `json:"transaction_id"`
	ReferenceNumber   string                   `json:"reference_number"`
	Type              entity.TransactionType   `json:"type"`
	Status            entity.TransactionStatus `json:"status"`
	WarehouseID       string                   `json:"warehouse_id"`
	TargetWarehouseID string                   `json:"target_warehouse_id,omitempty"`
	Actor             string                   `json:"actor"`
	Items             []EventItem              `json:"items"`
	OccurredAt        time.Time                `json:"occurred_at"`
}

// EventItem línea del evento.
type EventItem struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// EventPublisher publica eventos del ledger. Se invoca fuera de la transacción de BD:
// un fallo al publicar no revierte la operación.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher descarta los eventos.
type NopPublisher struct{}

// Publish no hace nada.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

func newEvent(name, actor string, t *entity.Transaction, at time.Time) Event {
	items := make([]EventItem, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, EventItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return Event{
		Event:             name,
		TransactionID:     t.ID,
		ReferenceNumber:   t.ReferenceNumber,
		Type:              t.Type,
		Status:            t.Status,
		WarehouseID:       t.WarehouseID,
		TargetWarehouseID: t.TargetWarehouseID,
		Actor:             actor,
		Items:             items,
		OccurredAt:        at,
	}
}
