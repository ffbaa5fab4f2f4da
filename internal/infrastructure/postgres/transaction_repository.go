package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `id, reference_number, type, status, warehouse_id, target_warehouse_id,
	supplier, destination, notes, created_by, approved_by, created_at, updated_at`

// TransactionRepo log de transacciones sobre PostgreSQL (usable con pool o tx).
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

// Create inserta la transacción y sus ítems. Un número de referencia repetido devuelve domain.ErrConflict.
func (r *TransactionRepo) Create(ctx context.Context, t *entity.Transaction) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		t.ID, t.ReferenceNumber, string(t.Type), string(t.Status), t.WarehouseID, nullable(t.TargetWarehouseID),
		nullable(t.Supplier), nullable(t.Destination), nullable(t.Notes), t.CreatedBy, nullable(t.ApprovedBy),
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: número de referencia %s ya existe", domain.ErrConflict, t.ReferenceNumber)
		}
		return classify(fmt.Errorf("insert transaction: %w", err))
	}
	for i, it := range t.Items {
		if _, err := r.q.Exec(ctx, `
			INSERT INTO transaction_items (id, transaction_id, product_id, quantity, position, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			it.ID, t.ID, it.ProductID, it.Quantity, i, it.CreatedAt,
		); err != nil {
			return classify(fmt.Errorf("insert transaction item: %w", err))
		}
	}
	return nil
}

// GetByID obtiene la transacción con sus ítems; nil si no existe.
func (r *TransactionRepo) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	return r.get(ctx, id, "")
}

// GetForUpdate igual que GetByID pero con SELECT ... FOR UPDATE sobre la fila.
func (r *TransactionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Transaction, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

func (r *TransactionRepo) get(ctx context.Context, id, suffix string) (*entity.Transaction, error) {
	row := r.q.QueryRow(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`+suffix, id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, classify(fmt.Errorf("get transaction: %w", err))
	}
	if err := r.loadItems(ctx, []*entity.Transaction{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateStatus UPDATE condicionado al estado previo; si no coincide, domain.ErrConflict.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, id string, change repository.StatusChange) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE transactions
		SET status = $3, approved_by = $4, notes = $5, updated_at = $6
		WHERE id = $1 AND status = $2`,
		id, string(change.From), string(change.To), nullable(change.ApprovedBy), nullable(change.Notes), change.UpdatedAt,
	)
	if err != nil {
		return classify(fmt.Errorf("update transaction status: %w", err))
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: la transacción %s ya no está en %s", domain.ErrConflict, id, change.From)
	}
	return nil
}

// List página filtrada, más reciente primero (created_at DESC, id DESC).
func (r *TransactionRepo) List(ctx context.Context, f repository.TransactionFilter) ([]*entity.Transaction, error) {
	where, args := buildTransactionFilter(f)
	query := `SELECT ` + transactionColumns + ` FROM transactions` + where + ` ORDER BY created_at DESC, id DESC`
	pos := len(args) + 1
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", pos)
		args = append(args, f.Limit)
		pos++
	}
	if f.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", pos)
		args = append(args, f.Offset)
	}
	return r.query(ctx, query, args...)
}

// Count total que cumple el filtro.
func (r *TransactionRepo) Count(ctx context.Context, f repository.TransactionFilter) (int, error) {
	where, args := buildTransactionFilter(f)
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM transactions`+where, args...).Scan(&n); err != nil {
		return 0, classify(fmt.Errorf("count transactions: %w", err))
	}
	return n, nil
}

// ListByStockKey transacciones con algún ítem del producto en la bodega como origen o destino.
func (r *TransactionRepo) ListByStockKey(ctx context.Context, key entity.StockKey) ([]*entity.Transaction, error) {
	return r.query(ctx, `
		SELECT `+transactionColumns+` FROM transactions t
		WHERE (t.warehouse_id = $2 OR t.target_warehouse_id = $2)
		  AND EXISTS (SELECT 1 FROM transaction_items i WHERE i.transaction_id = t.id AND i.product_id = $1)
		ORDER BY t.created_at DESC, t.id DESC`,
		key.ProductID, key.WarehouseID,
	)
}

func (r *TransactionRepo) query(ctx context.Context, query string, args ...any) ([]*entity.Transaction, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(fmt.Errorf("list transactions: %w", err))
	}
	defer rows.Close()
	list := make([]*entity.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	rows.Close()
	if err := r.loadItems(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// loadItems carga los ítems de todas las transacciones en una sola consulta, en orden de posición.
func (r *TransactionRepo) loadItems(ctx context.Context, list []*entity.Transaction) error {
	if len(list) == 0 {
		return nil
	}
	byID := make(map[string]*entity.Transaction, len(list))
	ids := make([]string, 0, len(list))
	for _, t := range list {
		byID[t.ID] = t
		ids = append(ids, t.ID)
		t.Items = []entity.TransactionItem{}
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, transaction_id, product_id, quantity, created_at
		FROM transaction_items WHERE transaction_id = ANY($1)
		ORDER BY transaction_id, position`, ids)
	if err != nil {
		return classify(fmt.Errorf("list transaction items: %w", err))
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.TransactionItem
		if err := rows.Scan(&it.ID, &it.TransactionID, &it.ProductID, &it.Quantity, &it.CreatedAt); err != nil {
			return fmt.Errorf("scan transaction item: %w", err)
		}
		if t, ok := byID[it.TransactionID]; ok {
			t.Items = append(t.Items, it)
		}
	}
	return rows.Err()
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var (
		t                                                entity.Transaction
		typ, status                                      string
		target, supplier, destination, notes, approvedBy *string
	)
	if err := row.Scan(
		&t.ID, &t.ReferenceNumber, &typ, &status, &t.WarehouseID, &target,
		&supplier, &destination, &notes, &t.CreatedBy, &approvedBy, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	t.Type = entity.TransactionType(typ)
	t.Status = entity.TransactionStatus(status)
	t.TargetWarehouseID = deref(target)
	t.Supplier = deref(supplier)
	t.Destination = deref(destination)
	t.Notes = deref(notes)
	t.ApprovedBy = deref(approvedBy)
	return &t, nil
}

// buildTransactionFilter arma el WHERE con placeholders posicionales.
func buildTransactionFilter(f repository.TransactionFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.WarehouseID != "" {
		args = append(args, f.WarehouseID)
		conds = append(conds, fmt.Sprintf("(warehouse_id = $%d OR target_warehouse_id = $%d)", len(args), len(args)))
	}
	if f.TargetWarehouseID != "" {
		add("target_warehouse_id = $%d", f.TargetWarehouseID)
	}
	if f.Type != "" {
		add("type = $%d", string(f.Type))
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		add("reference_number ILIKE $%d", "%"+escapeLike(s)+"%")
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
