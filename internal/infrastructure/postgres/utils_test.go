package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

func repositoryFilter(warehouseID, search string) repository.TransactionFilter {
	return repository.TransactionFilter{WarehouseID: warehouseID, Status: entity.StatusPending, Search: search}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		transient bool
	}{
		{"serialización", &pgconn.PgError{Code: "40001"}, true},
		{"deadlock", fmt.Errorf("wrap: %w", &pgconn.PgError{Code: "40P01"}), true},
		{"lock no disponible", &pgconn.PgError{Code: "55P03"}, true},
		{"timeout", context.DeadlineExceeded, true},
		{"unique", &pgconn.PgError{Code: "23505"}, false},
		{"otro", errors.New("x"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(tc.err)
			assert.Equal(t, tc.transient, errors.Is(got, domain.ErrTransient))
			assert.Equal(t, tc.transient, domain.IsRetryable(got))
		})
	}
	assert.NoError(t, classify(nil))
}

func TestClassify_DesbordamientoNumericoEsValidacion(t *testing.T) {
	err := classify(fmt.Errorf("increase stock: %w", &pgconn.PgError{Code: "22003"}))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.False(t, domain.IsRetryable(err))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23514"}))
	assert.True(t, isCheckViolation(&pgconn.PgError{Code: "23514"}))
}

func TestBuildTransactionFilter(t *testing.T) {
	where, args := buildTransactionFilter(repositoryFilter("w1", "50%_x"))
	assert.Equal(t, " WHERE (warehouse_id = $1 OR target_warehouse_id = $1) AND status = $2 AND reference_number ILIKE $3", where)
	assert.Equal(t, []any{"w1", "PENDING", `%50\%\_x%`}, args)

	where, args = buildTransactionFilter(repositoryFilter("", ""))
	assert.Equal(t, " WHERE status = $1", where)
	assert.Len(t, args, 1)
}
