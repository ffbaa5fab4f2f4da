package entity

import "time"

// TransactionType tipo de transacción que afecta stock.
type TransactionType string

// Tipos de transacción.
const (
	TransactionTypeStockIn  TransactionType = "STOCK_IN"  // entrada a una bodega
	TransactionTypeStockOut TransactionType = "STOCK_OUT" // salida de una bodega
	TransactionTypeTransfer TransactionType = "TRANSFER"  // traslado entre bodegas, requiere aprobación
)

// Valid indica si el tipo es conocido.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeStockIn, TransactionTypeStockOut, TransactionTypeTransfer:
		return true
	}
	return false
}

// ReferencePrefix prefijo del número de referencia (IN, OUT, TRF).
func (t TransactionType) ReferencePrefix() string {
	switch t {
	case TransactionTypeStockIn:
		return "IN"
	case TransactionTypeStockOut:
		return "OUT"
	case TransactionTypeTransfer:
		return "TRF"
	}
	return "TRX"
}

// InitialStatus estado con el que nace una transacción de este tipo.
// Entradas y salidas no tienen paso de aprobación; los traslados nacen pendientes.
func (t TransactionType) InitialStatus() TransactionStatus {
	if t == TransactionTypeTransfer {
		return StatusPending
	}
	return StatusCompleted
}

// TransactionStatus estado del ciclo de vida de una transacción.
type TransactionStatus string

// Estados de transacción.
const (
	StatusPending   TransactionStatus = "PENDING"
	StatusApproved  TransactionStatus = "APPROVED"
	StatusRejected  TransactionStatus = "REJECTED"
	StatusCompleted TransactionStatus = "COMPLETED"
)

// Valid indica si el estado es conocido.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal true para APPROVED, REJECTED y COMPLETED.
func (s TransactionStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCompleted
}

// CanTransition valida la máquina de estados: solo PENDING -> {APPROVED, REJECTED}.
func CanTransition(from, to TransactionStatus) bool {
	return from == StatusPending && (to == StatusApproved || to == StatusRejected)
}

// Transaction registro del log de transacciones (append-only).
// WarehouseID es la bodega que actúa (origen en traslados); TargetWarehouseID solo aplica a TRANSFER.
type Transaction struct {
	ID                string
	ReferenceNumber   string
	Type              TransactionType
	Status            TransactionStatus
	WarehouseID       string
	TargetWarehouseID string // vacío salvo en TRANSFER
	Supplier          string
	Destination       string
	Notes             string
	CreatedBy         string
	ApprovedBy        string // vacío hasta aprobar/rechazar
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Items             []TransactionItem
}

// TransactionItem línea de una transacción. Inmutable una vez creada.
type TransactionItem struct {
	ID            string
	TransactionID string
	ProductID     string
	Quantity      int64
	CreatedAt     time.Time
}

// StockKeys llaves de stock que toca la transacción (origen y, en traslados, destino).
func (t *Transaction) StockKeys() []StockKey {
	keys := make([]StockKey, 0, len(t.Items)*2)
	for _, it := range t.Items {
		keys = append(keys, StockKey{ProductID: it.ProductID, WarehouseID: t.WarehouseID})
		if t.Type == TransactionTypeTransfer && t.TargetWarehouseID != "" {
			keys = append(keys, StockKey{ProductID: it.ProductID, WarehouseID: t.TargetWarehouseID})
		}
	}
	return SortedStockKeys(keys)
}

// Clone copia profunda (los ítems no se comparten).
func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	c := *t
	c.Items = append([]TransactionItem(nil), t.Items...)
	return &c
}
