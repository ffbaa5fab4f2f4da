package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/tracing"
)

// ItemInput línea solicitada: producto y cantidad (> 0).
type ItemInput struct {
	ProductID string
	Quantity  int64
}

// StockInInput entrada de mercancía a una bodega.
type StockInInput struct {
	WarehouseID string
	Items       []ItemInput
	Supplier    string
	Notes       string
	CreatedBy   string
}

// StockOutInput salida de mercancía de una bodega.
type StockOutInput struct {
	WarehouseID string
	Items       []ItemInput
	Destination string
	Notes       string
	CreatedBy   string
}

// TransferInput traslado entre bodegas; nace PENDING y no afecta stock hasta aprobarse.
type TransferInput struct {
	SourceWarehouseID string
	TargetWarehouseID string
	Items             []ItemInput
	Notes             string
	CreatedBy         string
}

// ApproveInput aprobación de un traslado pendiente.
type ApproveInput struct {
	TransactionID string
	ApprovedBy    string
	Notes         string
}

// RejectInput rechazo de un traslado pendiente; Reason es obligatorio.
type RejectInput struct {
	TransactionID string
	ApprovedBy    string
	Reason        string
}

// CreateStockIn registra una entrada COMPLETED y suma cada ítem al stock de la bodega.
func (uc *LedgerUseCase) CreateStockIn(ctx context.Context, in StockInInput) (*entity.Transaction, error) {
	return uc.create(ctx, &entity.Transaction{
		Type:        entity.TransactionTypeStockIn,
		WarehouseID: strings.TrimSpace(in.WarehouseID),
		Supplier:    strings.TrimSpace(in.Supplier),
		Notes:       strings.TrimSpace(in.Notes),
		CreatedBy:   in.CreatedBy,
		Items:       toItems(in.Items),
	})
}

// CreateStockOut registra una salida COMPLETED. Si algún ítem no alcanza, no se aplica ninguno
// y se devuelve *domain.InsufficientStockError.
func (uc *LedgerUseCase) CreateStockOut(ctx context.Context, in StockOutInput) (*entity.Transaction, error) {
	return uc.create(ctx, &entity.Transaction{
		Type:        entity.TransactionTypeStockOut,
		WarehouseID: strings.TrimSpace(in.WarehouseID),
		Destination: strings.TrimSpace(in.Destination),
		Notes:       strings.TrimSpace(in.Notes),
		CreatedBy:   in.CreatedBy,
		Items:       toItems(in.Items),
	})
}

// CreateTransfer registra un traslado PENDING sin efecto sobre el stock.
func (uc *LedgerUseCase) CreateTransfer(ctx context.Context, in TransferInput) (*entity.Transaction, error) {
	return uc.create(ctx, &entity.Transaction{
		Type:              entity.TransactionTypeTransfer,
		WarehouseID:       strings.TrimSpace(in.SourceWarehouseID),
		TargetWarehouseID: strings.TrimSpace(in.TargetWarehouseID),
		Notes:             strings.TrimSpace(in.Notes),
		CreatedBy:         in.CreatedBy,
		Items:             toItems(in.Items),
	})
}

// ApproveTransfer pasa un traslado de PENDING a APPROVED: debita origen y acredita destino
// en la misma transacción de BD que el cambio de estado.
func (uc *LedgerUseCase) ApproveTransfer(ctx context.Context, in ApproveInput) (*entity.Transaction, error) {
	if strings.TrimSpace(in.TransactionID) == "" {
		return nil, domain.Invalid("id de transacción requerido")
	}
	if in.ApprovedBy == "" {
		return nil, domain.Invalid("usuario aprobador requerido")
	}
	return uc.transition(ctx, "approve_transfer", in.TransactionID, entity.StatusApproved, in.ApprovedBy, in.Notes)
}

// RejectTransfer pasa un traslado de PENDING a REJECTED sin tocar stock.
// La razón queda en las notas como "Rechazado: <razón>".
func (uc *LedgerUseCase) RejectTransfer(ctx context.Context, in RejectInput) (*entity.Transaction, error) {
	if strings.TrimSpace(in.TransactionID) == "" {
		return nil, domain.Invalid("id de transacción requerido")
	}
	if in.ApprovedBy == "" {
		return nil, domain.Invalid("usuario aprobador requerido")
	}
	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		return nil, domain.Invalid("la razón del rechazo es obligatoria")
	}
	return uc.transition(ctx, "reject_transfer", in.TransactionID, entity.StatusRejected, in.ApprovedBy, "Rechazado: "+reason)
}

func (uc *LedgerUseCase) create(ctx context.Context, draft *entity.Transaction) (_ *entity.Transaction, err error) {
	op := "create_" + strings.ToLower(string(draft.Type))
	ctx, span := tracing.StartSpan(ctx, "ledger."+op,
		attribute.String("warehouse_id", draft.WarehouseID),
		attribute.Int("items", len(draft.Items)),
	)
	start := time.Now()
	defer func() {
		uc.observe(op, start, err)
		tracing.EndSpan(span, err)
	}()

	if err = uc.validateDraft(ctx, draft); err != nil {
		return nil, err
	}

	var created *entity.Transaction
	err = uc.withRetry(ctx, op, func() error {
		t := uc.materialize(draft)
		txErr := uc.runTx(ctx, func(ctx context.Context, txRepo repository.TransactionRepository, stockRepo repository.StockRepository) error {
			if t.Status != entity.StatusPending {
				if err := stockRepo.LockKeys(ctx, t.StockKeys()); err != nil {
					return err
				}
				if err := applyEffects(ctx, stockRepo, t); err != nil {
					return err
				}
			}
			return txRepo.Create(ctx, t)
		})
		if txErr == nil {
			created = t
		}
		return txErr
	})
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("reference", created.ReferenceNumber))
	uc.committed(ctx, EventTransactionCreated, created.CreatedBy, created)
	return created.Clone(), nil
}

// materialize asigna identidad, referencia, estado inicial y timestamps a una copia del borrador.
// Cada reintento produce un id y una referencia nuevos.
func (uc *LedgerUseCase) materialize(draft *entity.Transaction) *entity.Transaction {
	t := draft.Clone()
	now := uc.now()
	t.ID = uuid.New().String()
	t.ReferenceNumber = uc.refs.Next(t.Type)
	t.Status = t.Type.InitialStatus()
	t.CreatedAt = now
	t.UpdatedAt = now
	for i := range t.Items {
		t.Items[i].ID = uuid.New().String()
		t.Items[i].TransactionID = t.ID
		t.Items[i].CreatedAt = now
	}
	return t
}

func (uc *LedgerUseCase) transition(
	ctx context.Context,
	op, id string,
	to entity.TransactionStatus,
	actor, note string,
) (_ *entity.Transaction, err error) {
	ctx, span := tracing.StartSpan(ctx, "ledger."+op, attribute.String("transaction_id", id))
	start := time.Now()
	defer func() {
		uc.observe(op, start, err)
		tracing.EndSpan(span, err)
	}()

	var result *entity.Transaction
	err = uc.withRetry(ctx, op, func() error {
		return uc.runTx(ctx, func(ctx context.Context, txRepo repository.TransactionRepository, stockRepo repository.StockRepository) error {
			// La fila de la transacción se bloquea antes que cualquier llave de stock.
			t, err := txRepo.GetForUpdate(ctx, id)
			if err != nil {
				return err
			}
			if t == nil {
				return domain.NotFound("transacción", id)
			}
			if t.Type != entity.TransactionTypeTransfer {
				return domain.Invalid("la transacción %s no es un traslado", t.ReferenceNumber)
			}
			if !entity.CanTransition(t.Status, to) {
				return &domain.InvalidTransitionError{TransactionID: t.ID, From: string(t.Status), To: string(to)}
			}

			from := t.Status
			now := uc.now()
			t.Status = to
			t.ApprovedBy = actor
			t.Notes = appendNote(t.Notes, note)
			t.UpdatedAt = now

			if to == entity.StatusApproved {
				if err := stockRepo.LockKeys(ctx, t.StockKeys()); err != nil {
					return err
				}
				if err := applyEffects(ctx, stockRepo, t); err != nil {
					return err
				}
			}
			if err := txRepo.UpdateStatus(ctx, t.ID, repository.StatusChange{
				From:       from,
				To:         to,
				ApprovedBy: actor,
				Notes:      t.Notes,
				UpdatedAt:  now,
			}); err != nil {
				return err
			}
			result = t
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	event := EventTransactionApproved
	if to == entity.StatusRejected {
		event = EventTransactionRejected
	}
	uc.committed(ctx, event, actor, result)
	return result.Clone(), nil
}

// validateDraft valida forma e integridad referencial antes de abrir la transacción de BD.
func (uc *LedgerUseCase) validateDraft(ctx context.Context, t *entity.Transaction) error {
	if t.WarehouseID == "" {
		return domain.Invalid("bodega requerida")
	}
	if t.CreatedBy == "" {
		return domain.Invalid("usuario creador requerido")
	}
	if len(t.Items) == 0 {
		return domain.Invalid("la transacción debe tener al menos un ítem")
	}
	for i, it := range t.Items {
		if it.ProductID == "" {
			return domain.Invalid("ítem %d: producto requerido", i+1)
		}
		if it.Quantity <= 0 {
			return domain.Invalid("ítem %d: la cantidad debe ser mayor que cero", i+1)
		}
	}
	if t.Type == entity.TransactionTypeTransfer {
		if t.TargetWarehouseID == "" {
			return domain.Invalid("bodega destino requerida")
		}
		if t.TargetWarehouseID == t.WarehouseID {
			return domain.Invalid("la bodega origen y destino deben ser distintas")
		}
	}

	warehouses := []string{t.WarehouseID}
	if t.TargetWarehouseID != "" {
		warehouses = append(warehouses, t.TargetWarehouseID)
	}
	for _, id := range warehouses {
		wh, err := uc.warehouseRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if wh == nil {
			return domain.NotFound("bodega", id)
		}
		if !wh.IsActive {
			return domain.Invalid("la bodega %s está inactiva", wh.Code)
		}
	}

	seen := make(map[string]struct{}, len(t.Items))
	for _, it := range t.Items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		p, err := uc.productRepo.GetByID(ctx, it.ProductID)
		if err != nil {
			return err
		}
		if p == nil {
			return domain.NotFound("producto", it.ProductID)
		}
	}
	return nil
}

func toItems(in []ItemInput) []entity.TransactionItem {
	items := make([]entity.TransactionItem, 0, len(in))
	for _, it := range in {
		items = append(items, entity.TransactionItem{
			ProductID: strings.TrimSpace(it.ProductID),
			Quantity:  it.Quantity,
		})
	}
	return items
}
