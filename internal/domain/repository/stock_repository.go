package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockRepository define el puerto del Stock Store: cantidad por (producto, bodega).
// Las escrituras solo se hacen desde el motor de ledger, dentro de una transacción (TxRunner).
type StockRepository interface {
	// Get devuelve el registro; si no existe devuelve cantidad 0 (nunca nil sin error).
	Get(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error)
	// ListByProduct devuelve el stock del producto en cada bodega donde tenga registro.
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockRecord, error)
	// LockKeys bloquea las filas (SELECT FOR UPDATE) en el orden recibido.
	// El caller debe pasar las llaves ya ordenadas (entity.SortedStockKeys).
	LockKeys(ctx context.Context, keys []entity.StockKey) error
	// Increase suma amount; crea el registro si no existe. Devuelve la cantidad resultante.
	Increase(ctx context.Context, productID, warehouseID string, amount int64) (int64, error)
	// Decrease resta amount de forma atómica (verificación y resta indivisibles).
	// Devuelve *domain.InsufficientStockError si la cantidad actual es menor que amount.
	Decrease(ctx context.Context, productID, warehouseID string, amount int64) (int64, error)
}
