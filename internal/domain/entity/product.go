package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del inventario (multi-bodega).
// SKU es la llave natural externa e inmutable; el stock se maneja por bodega en StockRecord.
type Product struct {
	ID            string
	SKU           string // único global
	Name          string
	CategoryID    string           // vacío si no tiene categoría
	UnitID        string           // vacío si no tiene unidad
	PurchasePrice *decimal.Decimal // nil si no se ha definido precio de compra
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
