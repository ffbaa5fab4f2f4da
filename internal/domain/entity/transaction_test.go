package entity_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

func TestCanTransition(t *testing.T) {
	all := []entity.TransactionStatus{
		entity.StatusPending, entity.StatusApproved, entity.StatusRejected, entity.StatusCompleted,
	}
	for _, from := range all {
		for _, to := range all {
			want := from == entity.StatusPending && (to == entity.StatusApproved || to == entity.StatusRejected)
			assert.Equal(t, want, entity.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, entity.StatusCompleted, entity.TransactionTypeStockIn.InitialStatus())
	assert.Equal(t, entity.StatusCompleted, entity.TransactionTypeStockOut.InitialStatus())
	assert.Equal(t, entity.StatusPending, entity.TransactionTypeTransfer.InitialStatus())
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, entity.StatusPending.IsTerminal())
	assert.True(t, entity.StatusApproved.IsTerminal())
	assert.True(t, entity.StatusRejected.IsTerminal())
	assert.True(t, entity.StatusCompleted.IsTerminal())
}

func TestStockKeys_OrdenadasYSinDuplicados(t *testing.T) {
	trx := &entity.Transaction{
		Type:              entity.TransactionTypeTransfer,
		WarehouseID:       "w2",
		TargetWarehouseID: "w1",
		Items: []entity.TransactionItem{
			{ProductID: "p2", Quantity: 1},
			{ProductID: "p1", Quantity: 1},
			{ProductID: "p2", Quantity: 3},
		},
	}
	assert.Equal(t, []entity.StockKey{
		{ProductID: "p1", WarehouseID: "w1"},
		{ProductID: "p1", WarehouseID: "w2"},
		{ProductID: "p2", WarehouseID: "w1"},
		{ProductID: "p2", WarehouseID: "w2"},
	}, trx.StockKeys())
}
