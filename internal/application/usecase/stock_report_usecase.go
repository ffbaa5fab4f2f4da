package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// LowStockThreshold cantidad por debajo de la cual una fila cuenta como stock bajo.
const LowStockThreshold int64 = 10

// StockReportUseCase reporte de stock valorizado (cantidad × precio de compra).
// Solo lectura: nunca pasa por el ledger.
type StockReportUseCase struct {
	repo repository.StockReportRepository
}

// NewStockReportUseCase construye el caso de uso.
func NewStockReportUseCase(repo repository.StockReportRepository) *StockReportUseCase {
	return &StockReportUseCase{repo: repo}
}

// GetStockReport devuelve las filas con stock > 0 y los totales.
// Un producto sin precio de compra aporta su cantidad pero valor cero, y se cuenta en Unpriced.
func (uc *StockReportUseCase) GetStockReport(ctx context.Context, warehouseID, search string) (*dto.StockReportResponse, error) {
	rows, err := uc.repo.ListStockValuation(ctx, warehouseID, search)
	if err != nil {
		return nil, err
	}
	out := &dto.StockReportResponse{
		Items:             make([]dto.StockReportItem, 0, len(rows)),
		TotalValue:        decimal.Zero,
		LowStockThreshold: LowStockThreshold,
	}
	for _, r := range rows {
		value := decimal.Zero
		if r.PurchasePrice != nil {
			value = r.PurchasePrice.Mul(decimal.NewFromInt(r.Quantity))
		} else {
			out.Unpriced++
		}
		out.Items = append(out.Items, dto.StockReportItem{
			ProductID:     r.ProductID,
			SKU:           r.SKU,
			ProductName:   r.ProductName,
			WarehouseID:   r.WarehouseID,
			WarehouseName: r.WarehouseName,
			Quantity:      r.Quantity,
			PurchasePrice: r.PurchasePrice,
			TotalValue:    value,
		})
		if r.Quantity < LowStockThreshold {
			out.LowStockItems++
		}
		out.TotalQuantity += r.Quantity
		out.TotalValue = out.TotalValue.Add(value)
	}
	return out, nil
}
