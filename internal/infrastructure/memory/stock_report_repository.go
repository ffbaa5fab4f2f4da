package memory

import (
	"context"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockReportRepository = (*StockReportRepo)(nil)

// StockReportRepo consultas de reporte sobre el estado confirmado.
type StockReportRepo struct{ store *Store }

// NewStockReportRepo construye el repositorio.
func NewStockReportRepo(store *Store) *StockReportRepo { return &StockReportRepo{store: store} }

// ListStockValuation une stock, productos y bodegas; omite cantidades en cero.
func (r *StockReportRepo) ListStockValuation(_ context.Context, warehouseID, search string) ([]repository.StockValuationRow, error) {
	fold := cases.Fold()
	search = fold.String(strings.TrimSpace(search))

	r.store.mu.RLock()
	var rows []repository.StockValuationRow
	for k, rec := range r.store.stock {
		if rec.Quantity <= 0 || (warehouseID != "" && k.WarehouseID != warehouseID) {
			continue
		}
		p, ok := r.store.products[k.ProductID]
		if !ok {
			continue
		}
		if search != "" &&
			!strings.Contains(fold.String(p.SKU), search) &&
			!strings.Contains(fold.String(p.Name), search) {
			continue
		}
		row := repository.StockValuationRow{
			ProductID:     p.ID,
			SKU:           p.SKU,
			ProductName:   p.Name,
			WarehouseID:   k.WarehouseID,
			Quantity:      rec.Quantity,
			PurchasePrice: p.PurchasePrice,
		}
		if w, ok := r.store.warehouses[k.WarehouseID]; ok {
			row.WarehouseName = w.Name
		}
		rows = append(rows, row)
	}
	r.store.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].SKU != rows[j].SKU {
			return rows[i].SKU < rows[j].SKU
		}
		return rows[i].WarehouseName < rows[j].WarehouseName
	})
	return rows, nil
}
