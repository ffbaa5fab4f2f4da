package dto

import "github.com/shopspring/decimal"

// WarehouseStockResponse cantidad en una bodega.
type WarehouseStockResponse struct {
	WarehouseID string `json:"warehouse_id"`
	Quantity    int64  `json:"quantity"`
}

// StockResponse stock de un producto; Warehouses solo cuando no se pide una bodega concreta.
type StockResponse struct {
	ProductID   string                   `json:"product_id"`
	WarehouseID string                   `json:"warehouse_id,omitempty"`
	Quantity    int64                    `json:"quantity"`
	Warehouses  []WarehouseStockResponse `json:"warehouses,omitempty"`
}

// StockVerificationResponse resultado de reconstruir el stock desde el log.
type StockVerificationResponse struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Stored      int64  `json:"stored"`
	Replayed    int64  `json:"replayed"`
	Consistent  bool   `json:"consistent"`
}

// StockReportItem fila del reporte de stock valorizado.
type StockReportItem struct {
	ProductID     string           `json:"product_id"`
	SKU           string           `json:"sku"`
	ProductName   string           `json:"product_name"`
	WarehouseID   string           `json:"warehouse_id"`
	WarehouseName string           `json:"warehouse_name"`
	Quantity      int64            `json:"quantity"`
	PurchasePrice *decimal.Decimal `json:"purchase_price" swaggertype:"string"`
	TotalValue    decimal.Decimal  `json:"total_value" swaggertype:"string"`
}

// StockReportResponse reporte de stock valorizado con totales.
type StockReportResponse struct {
	Items         []StockReportItem `json:"items"`
	TotalQuantity int64             `json:"total_quantity"`
	TotalValue    decimal.Decimal   `json:"total_value" swaggertype:"string"`
	Unpriced      int               `json:"unpriced"` // filas sin precio de compra (valor 0)
	// LowStockItems filas con cantidad por debajo de LowStockThreshold.
	LowStockItems     int   `json:"low_stock_items"`
	LowStockThreshold int64 `json:"low_stock_threshold"`
}
