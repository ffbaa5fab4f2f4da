package ledger

import "github.com/jhoicas/stock-ledger/internal/domain/entity"

// Effect efecto neto de una transacción sobre una llave de stock.
type Effect struct {
	Key   entity.StockKey
	Delta int64
}

// Effects devuelve los efectos de stock que la transacción tiene en su estado actual.
// Solo STOCK_IN/STOCK_OUT COMPLETED y TRANSFER APPROVED afectan stock.
func Effects(t *entity.Transaction) []Effect {
	var out []Effect
	switch {
	case t.Type == entity.TransactionTypeStockIn && t.Status == entity.StatusCompleted:
		for _, it := range t.Items {
			out = append(out, Effect{Key: entity.StockKey{ProductID: it.ProductID, WarehouseID: t.WarehouseID}, Delta: it.Quantity})
		}
	case t.Type == entity.TransactionTypeStockOut && t.Status == entity.StatusCompleted:
		for _, it := range t.Items {
			out = append(out, Effect{Key: entity.StockKey{ProductID: it.ProductID, WarehouseID: t.WarehouseID}, Delta: -it.Quantity})
		}
	case t.Type == entity.TransactionTypeTransfer && t.Status == entity.StatusApproved:
		for _, it := range t.Items {
			out = append(out,
				Effect{Key: entity.StockKey{ProductID: it.ProductID, WarehouseID: t.WarehouseID}, Delta: -it.Quantity},
				Effect{Key: entity.StockKey{ProductID: it.ProductID, WarehouseID: t.TargetWarehouseID}, Delta: it.Quantity},
			)
		}
	}
	return out
}

// Replay reconstruye el stock sumando los efectos de todas las transacciones del log.
// El orden no importa: la suma es conmutativa.
func Replay(transactions []*entity.Transaction) map[entity.StockKey]int64 {
	stock := make(map[entity.StockKey]int64)
	for _, t := range transactions {
		for _, e := range Effects(t) {
			stock[e.Key] += e.Delta
		}
	}
	return stock
}
