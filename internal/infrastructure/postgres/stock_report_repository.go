package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockReportRepository = (*StockReportRepo)(nil)

// StockReportRepo consultas de solo lectura para el reporte de stock valorizado.
type StockReportRepo struct {
	q Querier
}

// NewStockReportRepository construye el adaptador de reportes.
func NewStockReportRepository(q Querier) *StockReportRepo {
	return &StockReportRepo{q: q}
}

// ListStockValuation une stock_records con products y warehouses.
// Los valores (cantidad × precio de compra) los calcula el use case.
func (r *StockReportRepo) ListStockValuation(ctx context.Context, warehouseID, search string) ([]repository.StockValuationRow, error) {
	const base = `
	SELECT
	    s.product_id,
	    p.sku,
	    p.name,
	    s.warehouse_id,
	    w.name,
	    s.quantity,
	    p.purchase_price
	FROM stock_records s
	JOIN products   p ON p.id = s.product_id
	JOIN warehouses w ON w.id = s.warehouse_id
	WHERE s.quantity > 0`

	query := base
	args := []any{}
	if warehouseID != "" {
		args = append(args, warehouseID)
		query += fmt.Sprintf(" AND s.warehouse_id = $%d", len(args))
	}
	if s := strings.TrimSpace(search); s != "" {
		args = append(args, "%"+escapeLike(s)+"%")
		query += fmt.Sprintf(" AND (p.sku ILIKE $%d OR p.name ILIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY p.sku, w.name"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("report.ListStockValuation: %w", err)
	}
	defer rows.Close()

	var results []repository.StockValuationRow
	for rows.Next() {
		var (
			row   repository.StockValuationRow
			price decimal.NullDecimal
		)
		if err := rows.Scan(
			&row.ProductID,
			&row.SKU,
			&row.ProductName,
			&row.WarehouseID,
			&row.WarehouseName,
			&row.Quantity,
			&price,
		); err != nil {
			return nil, fmt.Errorf("report.ListStockValuation scan: %w", err)
		}
		if price.Valid {
			v := price.Decimal
			row.PurchasePrice = &v
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
