package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/ledger"
)

func TestReferenceGenerator_Formato(t *testing.T) {
	fixed := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	gen := ledger.NewReferenceGeneratorWith(func() time.Time { return fixed }, func(int) int { return 7 })

	assert.Equal(t, "IN-20260314092653-007", gen.Next(entity.TransactionTypeStockIn))
	assert.Equal(t, "OUT-20260314092653-007", gen.Next(entity.TransactionTypeStockOut))
	assert.Equal(t, "TRF-20260314092653-007", gen.Next(entity.TransactionTypeTransfer))
}

func TestReferenceGenerator_PorDefectoEsValida(t *testing.T) {
	gen := ledger.NewReferenceGenerator()
	for range 50 {
		ref := gen.Next(entity.TransactionTypeTransfer)
		require.True(t, ledger.ValidReference(ref), "referencia con formato inválido: %s", ref)
	}
}

func TestValidReference(t *testing.T) {
	assert.True(t, ledger.ValidReference("OUT-20240101000000-999"))
	assert.False(t, ledger.ValidReference("TRX-20240101000000-001"))
	assert.False(t, ledger.ValidReference("IN-2024010100000-001"))
	assert.False(t, ledger.ValidReference("IN-20240101000000-01"))
}

func TestReplay_SoloEstadosConEfecto(t *testing.T) {
	in := &entity.Transaction{
		Type: entity.TransactionTypeStockIn, Status: entity.StatusCompleted, WarehouseID: "w1",
		Items: []entity.TransactionItem{{ProductID: "p1", Quantity: 10}, {ProductID: "p2", Quantity: 4}},
	}
	out := &entity.Transaction{
		Type: entity.TransactionTypeStockOut, Status: entity.StatusCompleted, WarehouseID: "w1",
		Items: []entity.TransactionItem{{ProductID: "p1", Quantity: 3}},
	}
	approved := &entity.Transaction{
		Type: entity.TransactionTypeTransfer, Status: entity.StatusApproved, WarehouseID: "w1", TargetWarehouseID: "w2",
		Items: []entity.TransactionItem{{ProductID: "p1", Quantity: 5}},
	}
	pending := &entity.Transaction{
		Type: entity.TransactionTypeTransfer, Status: entity.StatusPending, WarehouseID: "w1", TargetWarehouseID: "w2",
		Items: []entity.TransactionItem{{ProductID: "p2", Quantity: 4}},
	}
	rejected := &entity.Transaction{
		Type: entity.TransactionTypeTransfer, Status: entity.StatusRejected, WarehouseID: "w1", TargetWarehouseID: "w2",
		Items: []entity.TransactionItem{{ProductID: "p2", Quantity: 1}},
	}

	stock := ledger.Replay([]*entity.Transaction{in, out, approved, pending, rejected})

	assert.Equal(t, int64(2), stock[entity.StockKey{ProductID: "p1", WarehouseID: "w1"}])
	assert.Equal(t, int64(5), stock[entity.StockKey{ProductID: "p1", WarehouseID: "w2"}])
	assert.Equal(t, int64(4), stock[entity.StockKey{ProductID: "p2", WarehouseID: "w1"}])
	assert.Zero(t, stock[entity.StockKey{ProductID: "p2", WarehouseID: "w2"}], "traslados pendientes o rechazados no afectan stock")
}
