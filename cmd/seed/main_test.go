package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/bootstrap"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func TestSeed_EsIdempotente(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{App: config.AppConfig{StorageDriver: config.StorageMemory}}
	app, err := bootstrap.New(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, seed(ctx, app, logger.Nop(), true))
	require.NoError(t, seed(ctx, app, logger.Nop(), true), "una segunda corrida no debe fallar")

	whs, err := app.Warehouse.List(ctx, dto.PageRequest{Limit: 10})
	require.NoError(t, err)
	require.Len(t, whs.Items, 1)
	assert.Equal(t, "Gudang Pusat Jakarta", whs.Items[0].Name)

	prods, err := app.Products.List(ctx, dto.PageRequest{Limit: 10})
	require.NoError(t, err)
	require.Len(t, prods.Items, len(products))

	page, err := app.Ledger.ListTransactions(ctx, inventory.ListInput{Type: "STOCK_IN"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total, "el stock de apertura se registra una sola vez")

	stock, err := app.Ledger.GetStock(ctx, prods.Items[0].ID, whs.Items[0].ID)
	require.NoError(t, err)
	assert.Positive(t, stock.Quantity)

	report, err := app.Report.GetStockReport(ctx, "", "")
	require.NoError(t, err)
	assert.Zero(t, report.Unpriced, "todos los productos del seed tienen precio")
}

func TestRunSeed_TokenSinSecretoFallaTrasSembrar(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{StorageDriver: config.StorageMemory}}
	err := runSeed(context.Background(), cfg, logger.Nop(), false, "u1")
	assert.ErrorContains(t, err, "generar token")
}

func TestRunSeed_DriverDesconocido(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{StorageDriver: "mongo"}}
	err := runSeed(context.Background(), cfg, logger.Nop(), false, "")
	assert.ErrorContains(t, err, "inicializar aplicación")
}
