package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
	"github.com/jhoicas/stock-ledger/pkg/metrics"
)

const (
	defaultMaxRetries = 3
	defaultTxTimeout  = 15 * time.Second
)

// Options parámetros opcionales del motor de ledger. Los valores cero toman el valor por defecto.
type Options struct {
	MaxRetries int
	TxTimeout  time.Duration
	Publisher  EventPublisher
	Logger     *logger.Logger
	References *ledger.ReferenceGenerator
	Now        func() time.Time
}

// LedgerUseCase motor transaccional de stock: único escritor del Stock Store.
// Cada creación o aprobación se ejecuta en una sola transacción de BD (TxRunner) que bloquea
// todas las llaves de stock en orden (producto, bodega) antes de mutarlas.
type LedgerUseCase struct {
	txRunner      TxRunner
	txRepo        repository.TransactionRepository
	stockRepo     repository.StockRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository

	publisher  EventPublisher
	log        *logger.Logger
	refs       *ledger.ReferenceGenerator
	now        func() time.Time
	maxRetries int
	txTimeout  time.Duration
}

// NewLedgerUseCase construye el motor. txRepo y stockRepo se usan solo para lecturas fuera de transacción.
func NewLedgerUseCase(
	txRunner TxRunner,
	txRepo repository.TransactionRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	opts Options,
) *LedgerUseCase {
	uc := &LedgerUseCase{
		txRunner:      txRunner,
		txRepo:        txRepo,
		stockRepo:     stockRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		publisher:     opts.Publisher,
		log:           opts.Logger,
		refs:          opts.References,
		now:           opts.Now,
		maxRetries:    opts.MaxRetries,
		txTimeout:     opts.TxTimeout,
	}
	if uc.publisher == nil {
		uc.publisher = NopPublisher{}
	}
	if uc.log == nil {
		uc.log = logger.Nop()
	}
	if uc.refs == nil {
		uc.refs = ledger.NewReferenceGenerator()
	}
	if uc.now == nil {
		uc.now = func() time.Time { return time.Now().UTC() }
	}
	if uc.maxRetries <= 0 {
		uc.maxRetries = defaultMaxRetries
	}
	if uc.txTimeout <= 0 {
		uc.txTimeout = defaultTxTimeout
	}
	return uc
}

// runTx ejecuta fn en una transacción desacoplada de la cancelación del request:
// una vez iniciada, la transacción termina en Commit o Rollback completo (acotada por txTimeout).
func (uc *LedgerUseCase) runTx(ctx context.Context, fn func(
	ctx context.Context,
	txRepo repository.TransactionRepository,
	stockRepo repository.StockRepository,
) error) error {
	txCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.txTimeout)
	defer cancel()
	return uc.txRunner.Run(txCtx, func(txRepo repository.TransactionRepository, stockRepo repository.StockRepository) error {
		return fn(txCtx, txRepo, stockRepo)
	})
}

// withRetry reintenta fn ante colisión de referencia o error transitorio de BD, hasta maxRetries intentos.
// Agotados los intentos, un error transitorio se entrega como ErrInternal y una colisión como ErrConflict.
func (uc *LedgerUseCase) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= uc.maxRetries; attempt++ {
		err = fn()
		if !domain.IsRetryable(err) {
			return err
		}
		uc.log.Warn().Err(err).Str("operation", op).Int("attempt", attempt).Msg("ledger: rollback, se reintenta")
		if attempt == uc.maxRetries || ctx.Err() != nil {
			break
		}
		metrics.RetriesTotal.WithLabelValues(op).Inc()
	}
	if errors.Is(err, domain.ErrTransient) {
		return fmt.Errorf("%w: %v", domain.ErrInternal, err)
	}
	return err
}

// applyEffects aplica al Stock Store los efectos de la transacción en su estado actual, ítem por ítem.
// En traslados aprobados cada ítem debita origen antes de acreditar destino.
func applyEffects(ctx context.Context, stockRepo repository.StockRepository, t *entity.Transaction) error {
	for _, e := range ledger.Effects(t) {
		var err error
		if e.Delta >= 0 {
			_, err = stockRepo.Increase(ctx, e.Key.ProductID, e.Key.WarehouseID, e.Delta)
		} else {
			_, err = stockRepo.Decrease(ctx, e.Key.ProductID, e.Key.WarehouseID, -e.Delta)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// observe registra latencia y, si hubo error, el motivo.
func (uc *LedgerUseCase) observe(op string, start time.Time, err error) {
	metrics.OperationLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.TransactionsFailedTotal.WithLabelValues(op, failureReason(err)).Inc()
	}
}

// committed registra y publica una transacción confirmada. Publicar es best-effort.
func (uc *LedgerUseCase) committed(ctx context.Context, event, actor string, t *entity.Transaction) {
	metrics.TransactionsTotal.WithLabelValues(string(t.Type), string(t.Status)).Inc()
	uc.log.Info().
		Str("event", event).
		Str("transaction_id", t.ID).
		Str("reference", t.ReferenceNumber).
		Str("type", string(t.Type)).
		Str("status", string(t.Status)).
		Int("items", len(t.Items)).
		Msg("ledger: transacción confirmada")

	if err := uc.publisher.Publish(ctx, newEvent(event, actor, t, t.UpdatedAt)); err != nil {
		metrics.EventsPublishFailedTotal.Inc()
		uc.log.Warn().Err(err).Str("transaction_id", t.ID).Str("event", event).Msg("ledger: no se pudo publicar el evento")
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "validation"
	case errors.Is(err, domain.ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}

// appendNote agrega una nota al final de las existentes, separadas por salto de línea.
func appendNote(notes, note string) string {
	note = strings.TrimSpace(note)
	switch {
	case note == "":
		return notes
	case notes == "":
		return note
	default:
		return notes + "\n" + note
	}
}
