package entity

import (
	"sort"
	"time"
)

// StockRecord representa el stock actual de un producto en una bodega (tabla materializada).
// Se crea en la primera entrada; la ausencia de registro equivale a cantidad cero.
type StockRecord struct {
	ProductID   string
	WarehouseID string
	Quantity    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Key devuelve la llave (producto, bodega) del registro.
func (s StockRecord) Key() StockKey {
	return StockKey{ProductID: s.ProductID, WarehouseID: s.WarehouseID}
}

// StockKey llave natural de un StockRecord.
type StockKey struct {
	ProductID   string
	WarehouseID string
}

// Less ordena por producto y luego por bodega.
func (k StockKey) Less(o StockKey) bool {
	if k.ProductID != o.ProductID {
		return k.ProductID < o.ProductID
	}
	return k.WarehouseID < o.WarehouseID
}

// SortedStockKeys elimina duplicados y ordena las llaves.
// Todas las operaciones multi-ítem bloquean sus llaves en este orden para evitar deadlocks.
func SortedStockKeys(keys []StockKey) []StockKey {
	seen := make(map[StockKey]struct{}, len(keys))
	out := make([]StockKey, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
