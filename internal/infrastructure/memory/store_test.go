package memory_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
)

var errAbort = errors.New("abortar")

func newTx(id, ref string, typ entity.TransactionType, wh string, at time.Time) *entity.Transaction {
	return &entity.Transaction{
		ID:              id,
		ReferenceNumber: ref,
		Type:            typ,
		Status:          typ.InitialStatus(),
		WarehouseID:     wh,
		CreatedBy:       "u1",
		CreatedAt:       at,
		UpdatedAt:       at,
		Items:           []entity.TransactionItem{{ID: id + "-1", TransactionID: id, ProductID: "p1", Quantity: 1}},
	}
}

// ── Stock ─────────────────────────────────────────────────────────────────────

func TestStock_AusenciaEsCero(t *testing.T) {
	repo := memory.NewStockRepo(memory.NewStore())
	rec, err := repo.Get(context.Background(), "p1", "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.Quantity)
}

func TestStock_DecreaseInsuficienteDevuelveErrorTipado(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStockRepo(memory.NewStore())
	_, err := repo.Increase(ctx, "p1", "w1", 5)
	require.NoError(t, err)

	_, err = repo.Decrease(ctx, "p1", "w1", 6)
	var insuf *domain.InsufficientStockError
	require.ErrorAs(t, err, &insuf)
	assert.Equal(t, int64(5), insuf.Available)
	assert.Equal(t, int64(6), insuf.Requested)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	rec, _ := repo.Get(ctx, "p1", "w1")
	assert.Equal(t, int64(5), rec.Quantity)
}

func TestStock_IncreaseQueDesbordaSeRechaza(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStockRepo(memory.NewStore())
	_, err := repo.Increase(ctx, "p1", "w1", math.MaxInt64)
	require.NoError(t, err)

	_, err = repo.Increase(ctx, "p1", "w1", 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	rec, _ := repo.Get(ctx, "p1", "w1")
	assert.Equal(t, int64(math.MaxInt64), rec.Quantity)
}

func TestTxRunner_RollbackDescartaEscrituras(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)

	err := runner.Run(ctx, func(txRepo repository.TransactionRepository, stockRepo repository.StockRepository) error {
		_, err := stockRepo.Increase(ctx, "p1", "w1", 10)
		require.NoError(t, err)
		rec, _ := stockRepo.Get(ctx, "p1", "w1")
		assert.Equal(t, int64(10), rec.Quantity, "la tx ve sus propias escrituras")
		require.NoError(t, txRepo.Create(ctx, newTx("t1", "IN-20240101000000-001", entity.TransactionTypeStockIn, "w1", time.Now())))
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	rec, _ := memory.NewStockRepo(store).Get(ctx, "p1", "w1")
	assert.Equal(t, int64(0), rec.Quantity)
	got, _ := memory.NewTransactionRepo(store).GetByID(ctx, "t1")
	assert.Nil(t, got)
}

func TestTxRunner_LockKeysSerializaPorLlave(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)
	key := []entity.StockKey{{ProductID: "p1", WarehouseID: "w1"}}

	locked := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = runner.Run(ctx, func(_ repository.TransactionRepository, stockRepo repository.StockRepository) error {
			err := stockRepo.LockKeys(ctx, key)
			close(locked)
			if err != nil {
				return err
			}
			<-done
			return nil
		})
	}()
	<-locked

	waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err := runner.Run(waitCtx, func(_ repository.TransactionRepository, stockRepo repository.StockRepository) error {
		return stockRepo.LockKeys(waitCtx, key)
	})
	assert.ErrorIs(t, err, domain.ErrTransient, "la segunda tx espera el bloqueo hasta el timeout")
	close(done)
}

func TestTxRunner_LiberaEntradasDeBloqueo(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	runner := memory.NewTxRunner(store)

	for i := 0; i < 20; i++ {
		id := string(rune('a' + i))
		err := runner.Run(ctx, func(txRepo repository.TransactionRepository, stockRepo repository.StockRepository) error {
			if _, err := txRepo.GetForUpdate(ctx, id); err != nil {
				return err
			}
			return stockRepo.LockKeys(ctx, []entity.StockKey{{ProductID: id, WarehouseID: "w1"}})
		})
		require.NoError(t, err)
	}
	assert.Zero(t, store.HeldLocks())

	waitCtx, cancel := context.WithCancel(ctx)
	cancel()
	_ = runner.Run(ctx, func(_ repository.TransactionRepository, stockRepo repository.StockRepository) error {
		return stockRepo.LockKeys(waitCtx, []entity.StockKey{{ProductID: "p1", WarehouseID: "w1"}})
	})
	assert.Zero(t, store.HeldLocks(), "una espera cancelada tampoco deja la entrada")
}

// ── Transaction log ───────────────────────────────────────────────────────────

func TestTransactions_ReferenciaDuplicadaEsConflicto(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTransactionRepo(memory.NewStore())
	now := time.Now()

	require.NoError(t, repo.Create(ctx, newTx("t1", "IN-20240101000000-001", entity.TransactionTypeStockIn, "w1", now)))
	err := repo.Create(ctx, newTx("t2", "IN-20240101000000-001", entity.TransactionTypeStockIn, "w1", now))
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.True(t, domain.IsRetryable(err))
}

func TestTransactions_UpdateStatusRevalidaEstadoPrevio(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTransactionRepo(memory.NewStore())
	require.NoError(t, repo.Create(ctx, newTx("t1", "TRF-20240101000000-001", entity.TransactionTypeTransfer, "w1", time.Now())))

	change := repository.StatusChange{From: entity.StatusPending, To: entity.StatusApproved, ApprovedBy: "u2", UpdatedAt: time.Now()}
	require.NoError(t, repo.UpdateStatus(ctx, "t1", change))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, "t1", change), domain.ErrConflict)

	got, _ := repo.GetByID(ctx, "t1")
	assert.Equal(t, entity.StatusApproved, got.Status)
	assert.Equal(t, "u2", got.ApprovedBy)
}

func TestTransactions_ListFiltraYOrdena(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewTransactionRepo(memory.NewStore())
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newTx("a", "IN-20240101000000-001", entity.TransactionTypeStockIn, "w1", base)))
	require.NoError(t, repo.Create(ctx, newTx("b", "OUT-20240101000100-002", entity.TransactionTypeStockOut, "w1", base.Add(time.Minute))))
	trf := newTx("c", "TRF-20240101000200-003", entity.TransactionTypeTransfer, "w2", base.Add(2*time.Minute))
	trf.TargetWarehouseID = "w1"
	require.NoError(t, repo.Create(ctx, trf))
	require.NoError(t, repo.Create(ctx, newTx("d", "IN-20240101000300-004", entity.TransactionTypeStockIn, "w3", base.Add(3*time.Minute))))

	list, err := repo.List(ctx, repository.TransactionFilter{WarehouseID: "w1", Limit: 10})
	require.NoError(t, err)
	require.Len(t, list, 3, "origen o destino")
	assert.Equal(t, []string{"c", "b", "a"}, []string{list[0].ID, list[1].ID, list[2].ID})

	total, _ := repo.Count(ctx, repository.TransactionFilter{WarehouseID: "w1", Limit: 1})
	assert.Equal(t, 3, total, "Count ignora la paginación")

	negative, err := repo.List(ctx, repository.TransactionFilter{WarehouseID: "w1", Limit: 2, Offset: -4})
	require.NoError(t, err)
	assert.Empty(t, negative)

	page2, _ := repo.List(ctx, repository.TransactionFilter{WarehouseID: "w1", Limit: 2, Offset: 2})
	require.Len(t, page2, 1)
	assert.Equal(t, "a", page2[0].ID)

	found, _ := repo.List(ctx, repository.TransactionFilter{Search: "trf-2024"})
	require.Len(t, found, 1, "búsqueda sin distinguir mayúsculas")
	assert.Equal(t, "c", found[0].ID)

	from := base.Add(90 * time.Second)
	recent, _ := repo.List(ctx, repository.TransactionFilter{From: &from})
	assert.Len(t, recent, 2)

	pending, _ := repo.List(ctx, repository.TransactionFilter{TargetWarehouseID: "w1", Status: entity.StatusPending})
	require.Len(t, pending, 1)
	assert.Equal(t, "c", pending[0].ID)
}

// ── Datos de referencia ───────────────────────────────────────────────────────

func TestProductos_SKUUnico(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepo(memory.NewStore())
	require.NoError(t, repo.Create(ctx, &entity.Product{ID: "p1", SKU: "SKU-1", Name: "Tornillo"}))
	assert.ErrorIs(t, repo.Create(ctx, &entity.Product{ID: "p2", SKU: "SKU-1", Name: "Otro"}), domain.ErrDuplicate)

	got, err := repo.GetBySKU(ctx, "SKU-1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)

	missing, err := repo.GetByID(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCategorias_NombreUnicoSinMayusculas(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCategoryRepo(memory.NewStore())
	require.NoError(t, repo.Create(ctx, &entity.Category{ID: "c1", Name: "Ferretería"}))
	assert.ErrorIs(t, repo.Create(ctx, &entity.Category{ID: "c2", Name: "FERRETERÍA"}), domain.ErrDuplicate)
}
