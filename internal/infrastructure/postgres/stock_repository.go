package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación del Stock Store sobre la tabla stock_records.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el repositorio sobre el pool o sobre una tx.
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

// Get devuelve el registro o cantidad cero si no existe.
func (r *StockRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.StockRecord, error) {
	rec := entity.StockRecord{ProductID: productID, WarehouseID: warehouseID}
	err := r.q.QueryRow(ctx, `
		SELECT quantity, created_at, updated_at
		FROM stock_records WHERE product_id = $1 AND warehouse_id = $2`,
		productID, warehouseID,
	).Scan(&rec.Quantity, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &rec, nil
		}
		return nil, classify(fmt.Errorf("get stock: %w", err))
	}
	return &rec, nil
}

// ListByProduct registros del producto ordenados por bodega.
func (r *StockRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockRecord, error) {
	rows, err := r.q.Query(ctx, `
		SELECT product_id, warehouse_id, quantity, created_at, updated_at
		FROM stock_records WHERE product_id = $1 ORDER BY warehouse_id`, productID)
	if err != nil {
		return nil, classify(fmt.Errorf("list stock: %w", err))
	}
	defer rows.Close()
	var list []*entity.StockRecord
	for rows.Next() {
		var s entity.StockRecord
		if err := rows.Scan(&s.ProductID, &s.WarehouseID, &s.Quantity, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// LockKeys asegura que cada llave tenga fila (cantidad 0 si es nueva) y la bloquea con
// SELECT ... FOR UPDATE, en el orden recibido.
func (r *StockRepo) LockKeys(ctx context.Context, keys []entity.StockKey) error {
	for _, k := range keys {
		if _, err := r.q.Exec(ctx, `
			INSERT INTO stock_records (product_id, warehouse_id, quantity, created_at, updated_at)
			VALUES ($1, $2, 0, now(), now())
			ON CONFLICT (product_id, warehouse_id) DO NOTHING`,
			k.ProductID, k.WarehouseID,
		); err != nil {
			return classify(fmt.Errorf("ensure stock row: %w", err))
		}
		var qty int64
		if err := r.q.QueryRow(ctx, `
			SELECT quantity FROM stock_records
			WHERE product_id = $1 AND warehouse_id = $2
			FOR UPDATE`,
			k.ProductID, k.WarehouseID,
		).Scan(&qty); err != nil {
			return classify(fmt.Errorf("lock stock row: %w", err))
		}
	}
	return nil
}

// Increase upsert-suma: crea el registro si no existe.
func (r *StockRepo) Increase(ctx context.Context, productID, warehouseID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.Invalid("la cantidad debe ser mayor que cero")
	}
	var qty int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO stock_records (product_id, warehouse_id, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = stock_records.quantity + EXCLUDED.quantity, updated_at = now()
		RETURNING quantity`,
		productID, warehouseID, amount,
	).Scan(&qty)
	if err != nil {
		return 0, classify(fmt.Errorf("increase stock: %w", err))
	}
	return qty, nil
}

// Decrease resta con un UPDATE condicional (quantity >= amount): verificación y resta en una
// sola sentencia. Si no afecta filas, devuelve *domain.InsufficientStockError con lo disponible.
func (r *StockRepo) Decrease(ctx context.Context, productID, warehouseID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.Invalid("la cantidad debe ser mayor que cero")
	}
	var qty int64
	err := r.q.QueryRow(ctx, `
		UPDATE stock_records
		SET quantity = quantity - $3, updated_at = now()
		WHERE product_id = $1 AND warehouse_id = $2 AND quantity >= $3
		RETURNING quantity`,
		productID, warehouseID, amount,
	).Scan(&qty)
	switch {
	case err == nil:
		return qty, nil
	case isCheckViolation(err):
		// la tx quedó abortada: no se puede consultar lo disponible
		return 0, &domain.InsufficientStockError{ProductID: productID, WarehouseID: warehouseID, Requested: amount}
	case errors.Is(err, pgx.ErrNoRows):
		current, getErr := r.Get(ctx, productID, warehouseID)
		if getErr != nil {
			return 0, getErr
		}
		return current.Quantity, &domain.InsufficientStockError{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Available:   current.Quantity,
			Requested:   amount,
		}
	default:
		return 0, classify(fmt.Errorf("decrease stock: %w", err))
	}
}
