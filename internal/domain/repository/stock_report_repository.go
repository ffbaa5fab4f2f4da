package repository

import (
	"context"

	"github.com/shopspring/decimal"
)

// StockValuationRow resultado crudo de la consulta de stock valorizado.
// Lo produce la DB; el use case calcula valores y totales.
type StockValuationRow struct {
	ProductID     string
	SKU           string
	ProductName   string
	WarehouseID   string
	WarehouseName string
	Quantity      int64
	PurchasePrice *decimal.Decimal // nil si el producto no tiene precio de compra
}

// StockReportRepository consultas de lectura para reportes de stock.
// Las implementaciones son read-only (no modifican datos).
type StockReportRepository interface {
	// ListStockValuation devuelve las filas de stock con cantidad > 0, ordenadas por SKU y bodega.
	// warehouseID vacío = todas las bodegas; search filtra por SKU o nombre (sin distinguir mayúsculas).
	ListStockValuation(ctx context.Context, warehouseID, search string) ([]StockValuationRow, error)
}
