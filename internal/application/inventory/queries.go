package inventory

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
	maxPage          = 1_000_000
)

// ListInput filtros del historial de transacciones. Page empieza en 1.
type ListInput struct {
	WarehouseID string // origen o destino
	Type        string
	Status      string
	From        *time.Time
	To          *time.Time
	Search      string // subcadena del número de referencia
	Page        int
	Limit       int
}

// PendingInput filtros del listado de traslados pendientes. WarehouseID es la bodega destino.
type PendingInput struct {
	WarehouseID string
	Page        int
	Limit       int
}

// TransactionPage página de transacciones con el total que cumple el filtro.
type TransactionPage struct {
	Data       []*entity.Transaction
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// StockLevel cantidad en una bodega.
type StockLevel struct {
	WarehouseID string
	Quantity    int64
}

// StockResult stock de un producto: en una bodega concreta o el desglose por bodega.
type StockResult struct {
	ProductID   string
	WarehouseID string // vacío cuando se pide el desglose
	Quantity    int64  // cantidad en la bodega o total de todas
	Warehouses  []StockLevel
}

// StockVerification compara la cantidad almacenada con la reconstruida desde el log.
type StockVerification struct {
	ProductID   string
	WarehouseID string
	Stored      int64
	Replayed    int64
	Consistent  bool
}

// GetTransaction devuelve la transacción con sus ítems.
func (uc *LedgerUseCase) GetTransaction(ctx context.Context, id string) (*entity.Transaction, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.Invalid("id de transacción requerido")
	}
	t, err := uc.txRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.NotFound("transacción", id)
	}
	return t, nil
}

// ListTransactions historial filtrado y paginado, más reciente primero.
func (uc *LedgerUseCase) ListTransactions(ctx context.Context, in ListInput) (*TransactionPage, error) {
	filter := repository.TransactionFilter{
		WarehouseID: strings.TrimSpace(in.WarehouseID),
		Type:        entity.TransactionType(strings.ToUpper(strings.TrimSpace(in.Type))),
		Status:      entity.TransactionStatus(strings.ToUpper(strings.TrimSpace(in.Status))),
		From:        in.From,
		To:          in.To,
		Search:      strings.TrimSpace(in.Search),
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, domain.Invalid("tipo de transacción desconocido: %s", in.Type)
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.Invalid("estado de transacción desconocido: %s", in.Status)
	}
	if in.From != nil && in.To != nil && in.From.After(*in.To) {
		return nil, domain.Invalid("rango de fechas inválido")
	}
	return uc.page(ctx, filter, in.Page, in.Limit)
}

// ListPendingTransfers traslados PENDING cuya bodega destino es WarehouseID (todas si vacío).
func (uc *LedgerUseCase) ListPendingTransfers(ctx context.Context, in PendingInput) (*TransactionPage, error) {
	filter := repository.TransactionFilter{
		TargetWarehouseID: strings.TrimSpace(in.WarehouseID),
		Type:              entity.TransactionTypeTransfer,
		Status:            entity.StatusPending,
	}
	return uc.page(ctx, filter, in.Page, in.Limit)
}

// page consulta la página y el total en paralelo.
func (uc *LedgerUseCase) page(ctx context.Context, filter repository.TransactionFilter, page, limit int) (*TransactionPage, error) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		return nil, domain.Invalid("página fuera de rango (máximo %d)", maxPage)
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit

	var (
		data  []*entity.Transaction
		total int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		data, err = uc.txRepo.List(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = uc.txRepo.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if data == nil {
		data = []*entity.Transaction{}
	}
	return &TransactionPage{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: (total + limit - 1) / limit,
	}, nil
}

// GetStock cantidad del producto en warehouseID o, si está vacío, el desglose por bodega.
// Una llave sin registro equivale a cantidad cero.
func (uc *LedgerUseCase) GetStock(ctx context.Context, productID, warehouseID string) (*StockResult, error) {
	if err := uc.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	if warehouseID != "" {
		if err := uc.ensureWarehouse(ctx, warehouseID); err != nil {
			return nil, err
		}
		rec, err := uc.stockRepo.Get(ctx, productID, warehouseID)
		if err != nil {
			return nil, err
		}
		return &StockResult{ProductID: productID, WarehouseID: warehouseID, Quantity: rec.Quantity}, nil
	}

	records, err := uc.stockRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	res := &StockResult{ProductID: productID, Warehouses: make([]StockLevel, 0, len(records))}
	for _, r := range records {
		res.Warehouses = append(res.Warehouses, StockLevel{WarehouseID: r.WarehouseID, Quantity: r.Quantity})
		res.Quantity += r.Quantity
	}
	return res, nil
}

// VerifyStock reconstruye la cantidad de (producto, bodega) desde el log de transacciones
// y la compara con la almacenada.
func (uc *LedgerUseCase) VerifyStock(ctx context.Context, productID, warehouseID string) (*StockVerification, error) {
	if err := uc.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	if err := uc.ensureWarehouse(ctx, warehouseID); err != nil {
		return nil, err
	}
	key := entity.StockKey{ProductID: productID, WarehouseID: warehouseID}

	// Se bloquea la llave para que la lectura del stock y del log sea consistente.
	var (
		stored int64
		txs    []*entity.Transaction
	)
	err := uc.runTx(ctx, func(ctx context.Context, txRepo repository.TransactionRepository, stockRepo repository.StockRepository) error {
		if err := stockRepo.LockKeys(ctx, []entity.StockKey{key}); err != nil {
			return err
		}
		rec, err := stockRepo.Get(ctx, productID, warehouseID)
		if err != nil {
			return err
		}
		stored = rec.Quantity
		txs, err = txRepo.ListByStockKey(ctx, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	replayed := ledger.Replay(txs)[key]
	return &StockVerification{
		ProductID:   productID,
		WarehouseID: warehouseID,
		Stored:      stored,
		Replayed:    replayed,
		Consistent:  stored == replayed,
	}, nil
}

func (uc *LedgerUseCase) ensureProduct(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.Invalid("producto requerido")
	}
	p, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.NotFound("producto", id)
	}
	return nil
}

func (uc *LedgerUseCase) ensureWarehouse(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.Invalid("bodega requerida")
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if wh == nil {
		return domain.NotFound("bodega", id)
	}
	return nil
}
