package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// buildApp arma la API completa sobre el backend en memoria con dos bodegas y dos productos.
func buildApp(t *testing.T) *fiber.App {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	whRepo := memory.NewWarehouseRepo(store)
	require.NoError(t, whRepo.Create(ctx, &entity.Warehouse{ID: "w1", Code: "WH01", Name: "Gudang Pusat Jakarta", IsActive: true}))
	require.NoError(t, whRepo.Create(ctx, &entity.Warehouse{ID: "w2", Code: "WH02", Name: "Gudang Surabaya", IsActive: true}))
	prodRepo := memory.NewProductRepo(store)
	require.NoError(t, prodRepo.Create(ctx, &entity.Product{ID: "p1", SKU: "SKU-1", Name: "Beras"}))
	require.NoError(t, prodRepo.Create(ctx, &entity.Product{ID: "p2", SKU: "SKU-2", Name: "Gula"}))

	categories := memory.NewCategoryRepo(store)
	units := memory.NewUnitRepo(store)
	ledgerUC := inventory.NewLedgerUseCase(
		memory.NewTxRunner(store),
		memory.NewTransactionRepo(store),
		memory.NewStockRepo(store),
		prodRepo,
		whRepo,
		inventory.Options{},
	)

	app := fiber.New()
	app.Use(apphttp.RequestLogger(logger.Nop()))
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:      ledgerUC,
		ProductUC:   usecase.NewProductUseCase(prodRepo, categories, units),
		WarehouseUC: usecase.NewWarehouseUseCase(whRepo),
		CatalogUC:   usecase.NewCatalogUseCase(categories, units),
		ReportUC:    usecase.NewStockReportUseCase(memory.NewStockReportRepo(store)),
		JWTSecret:   testJWTSecret,
		ServiceName: "stock-ledger-test",
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path string, body any, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func item(productID string, qty int64) dto.TransactionItemRequest {
	return dto.TransactionItemRequest{ProductID: productID, Quantity: qty}
}

func stockOf(t *testing.T, app *fiber.App, productID, warehouseID string) int64 {
	t.Helper()
	var out dto.StockResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/stock/"+productID+"?warehouseId="+warehouseID, nil, &out))
	return out.Quantity
}

// ──────────────────────────────────────────────────────────────────────────────
// Entradas y salidas
// ──────────────────────────────────────────────────────────────────────────────

func TestHTTP_StockIn_Y_StockOut(t *testing.T) {
	app := buildApp(t)

	var created dto.TransactionResponse
	status := call(t, app, http.MethodPost, "/api/transactions/stock-in",
		dto.StockInRequest{WarehouseID: "w1", Items: []dto.TransactionItemRequest{item("p1", 10)}, Supplier: "PT Sumber"}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "COMPLETED", created.Status)
	assert.Equal(t, testUserID, created.CreatedBy, "createdBy sale del token")
	assert.Regexp(t, `^IN-\d{14}-\d{3}$`, created.ReferenceNumber)
	assert.Equal(t, int64(10), stockOf(t, app, "p1", "w1"))

	status = call(t, app, http.MethodPost, "/api/transactions/stock-out",
		dto.StockOutRequest{WarehouseID: "w1", Items: []dto.TransactionItemRequest{item("p1", 4)}}, &created)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, int64(6), stockOf(t, app, "p1", "w1"))
}

func TestHTTP_StockOut_Insuficiente_Retorna409SinCambios(t *testing.T) {
	app := buildApp(t)
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/transactions/stock-in",
		dto.StockInRequest{WarehouseID: "w1", Items: []dto.TransactionItemRequest{item("p1", 5), item("p2", 5)}}, nil))

	var errResp dto.ErrorResponse
	status := call(t, app, http.MethodPost, "/api/transactions/stock-out",
		dto.StockOutRequest{WarehouseID: "w1", Items: []dto.TransactionItemRequest{item("p1", 2), item("p2", 9)}}, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", errResp.Code)
	assert.Equal(t, int64(5), stockOf(t, app, "p1", "w1"), "la salida multi-ítem se revierte completa")
	assert.Equal(t, int64(5), stockOf(t, app, "p2", "w1"))
}

func TestHTTP_Validaciones_Retornan400(t *testing.T) {
	app := buildApp(t)

	cases := []struct {
		name string
		path string
		body any
	}{
		{"sin ítems", "/api/transactions/stock-in", dto.StockInRequest{WarehouseID: "w1"}},
		{"cantidad cero", "/api/transactions/stock-in", dto.StockInRequest{WarehouseID: "w1", Items: []dto.TransactionItemRequest{item("p1", 0)}}},
		{"cantidad negativa", "/api/transactions/stock-out", dto.StockOutRequest{WarehouseID: "w1", Items: []dto.TransactionItemRequest{item("p1", -3)}}},
		{"traslado misma bodega", "/api/transactions/transfer", dto.TransferRequest{SourceWarehouseID: "w1", TargetWarehouseID: "w1", Items: []dto.TransactionItemRequest{item("p1", 1)}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var errResp dto.ErrorResponse
			status := call(t, app, http.MethodPost, tc.path, tc.body, &errResp)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, "VALIDATION", errResp.Code)
		})
	}
}

func TestHTTP_ReferenciasInexistentes_Retornan404(t *testing.T) {
	app := buildApp(t)
	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodPost, "/api/transactions/stock-in",
		dto.StockInRequest{WarehouseID: "w1", Items: []dto.TransactionItemRequest{item("nope", 1)}}, nil))
	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodPost, "/api/transactions/stock-out",
		dto.StockOutRequest{WarehouseID: "w9", Items: []dto.TransactionItemRequest{item("p1", 1)}}, nil))
}

func TestHTTP_CuerpoMalformado_Retorna400(t *testing.T) {
	app := buildApp(t)
	req := httptest.NewRequest(http.MethodPost, "/api/transactions/stock-in", bytes.NewBufferString("{no-json"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", bearer(t))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTP_SinToken_Retorna401(t *testing.T) {
	app := buildApp(t)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/transactions/history", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	health, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode, "/health es público")
}

// ──────────────────────────────────────────────────────────────────────────────
// Traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestHTTP_Transfer_AprobarDosVeces(t *testing.T) {
	app := buildApp(t)
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/transactions/stock-in",
		dto.StockInRequest{WarehouseID: "w1", Items: []dto.TransactionItemRequest{item("p1", 10)}}, nil))

	var trf dto.TransactionResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/transactions/transfer",
		dto.TransferRequest{SourceWarehouseID: "w1", TargetWarehouseID: "w2", Items: []dto.TransactionItemRequest{item("p1", 4)}}, &trf))
	assert.Equal(t, "PENDING", trf.Status)
	assert.Equal(t, int64(10), stockOf(t, app, "p1", "w1"), "un traslado PENDING no mueve stock")

	var pending dto.TransactionListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/transactions/transfer/pending?warehouse_id=w2", nil, &pending))
	require.Equal(t, 1, pending.Total)
	assert.Equal(t, trf.ID, pending.Data[0].ID)

	var approved dto.TransactionResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPut, "/api/transactions/transfer/"+trf.ID+"/approve",
		dto.ApproveTransferRequest{Notes: "ok"}, &approved))
	assert.Equal(t, "APPROVED", approved.Status)
	assert.Equal(t, testUserID, approved.ApprovedBy)
	assert.Equal(t, int64(6), stockOf(t, app, "p1", "w1"))
	assert.Equal(t, int64(4), stockOf(t, app, "p1", "w2"))

	var errResp dto.ErrorResponse
	status := call(t, app, http.MethodPut, "/api/transactions/transfer/"+trf.ID+"/approve", nil, &errResp)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INVALID_TRANSITION", errResp.Code)
	assert.Equal(t, int64(6), stockOf(t, app, "p1", "w1"), "la segunda aprobación no aplica efectos")
}

func TestHTTP_Transfer_Rechazo(t *testing.T) {
	app := buildApp(t)
	var trf dto.TransactionResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/transactions/transfer",
		dto.TransferRequest{SourceWarehouseID: "w1", TargetWarehouseID: "w2", Items: []dto.TransactionItemRequest{item("p1", 4)}, Notes: "urgente"}, &trf))

	status := call(t, app, http.MethodPut, "/api/transactions/transfer/"+trf.ID+"/reject", dto.RejectTransferRequest{}, nil)
	assert.Equal(t, http.StatusBadRequest, status, "la razón es obligatoria")

	var rejected dto.TransactionResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPut, "/api/transactions/transfer/"+trf.ID+"/reject",
		dto.RejectTransferRequest{Reason: "sin transporte"}, &rejected))
	assert.Equal(t, "REJECTED", rejected.Status)
	assert.Equal(t, "urgente\nRechazado: sin transporte", rejected.Notes)
	assert.Equal(t, int64(0), stockOf(t, app, "p1", "w2"))

	status = call(t, app, http.MethodPut, "/api/transactions/transfer/"+trf.ID+"/approve", nil, nil)
	assert.Equal(t, http.StatusConflict, status, "un traslado rechazado no se puede aprobar")
}

func TestHTTP_Transfer_AprobacionesConcurrentes(t *testing.T) {
	app := buildApp(t)
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/transactions/stock-in",
		dto.StockInRequest{WarehouseID: "w1", Items: []dto.TransactionItemRequest{item("p1", 10)}}, nil))
	var trf dto.TransactionResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/transactions/transfer",
		dto.TransferRequest{SourceWarehouseID: "w1", TargetWarehouseID: "w2", Items: []dto.TransactionItemRequest{item("p1", 3)}}, &trf))

	const n = 5
	statuses := make([]int, n)
	tok := bearer(t)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPut, "/api/transactions/transfer/"+trf.ID+"/approve", nil)
			req.Header.Set("Authorization", tok)
			resp, err := app.Test(req, -1)
			if err != nil {
				return
			}
			resp.Body.Close()
			statuses[i] = resp.StatusCode
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, s := range statuses {
		if s == http.StatusOK {
			ok++
		} else {
			assert.Equal(t, http.StatusConflict, s)
		}
	}
	assert.Equal(t, 1, ok, "exactamente una aprobación gana")
	assert.Equal(t, int64(7), stockOf(t, app, "p1", "w1"))
	assert.Equal(t, int64(3), stockOf(t, app, "p1", "w2"))
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestHTTP_History_Filtros(t *testing.T) {
	app := buildApp(t)
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/transactions/stock-in",
		dto.StockInRequest{WarehouseID: "w1", Items: []dto.TransactionItemRequest{item("p1", 10)}}, nil))
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/transactions/stock-out",
		dto.StockOutRequest{WarehouseID: "w1", Items: []dto.TransactionItemRequest{item("p1", 1)}}, nil))
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/transactions/transfer",
		dto.TransferRequest{SourceWarehouseID: "w2", TargetWarehouseID: "w1", Items: []dto.TransactionItemRequest{item("p2", 1)}}, nil))

	var all dto.TransactionListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/transactions/history?warehouse_id=w1", nil, &all))
	assert.Equal(t, 3, all.Total, "w1 como origen o destino")

	var outs dto.TransactionListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/transactions/history?type=STOCK_OUT", nil, &outs))
	require.Equal(t, 1, outs.Total)
	assert.Equal(t, "STOCK_OUT", outs.Data[0].Type)

	var byRef dto.TransactionListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/transactions/history?search=trf-", nil, &byRef))
	assert.Equal(t, 1, byRef.Total, "búsqueda por referencia sin distinguir mayúsculas")

	var page dto.TransactionListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/transactions/history?limit=2&page=2", nil, &page))
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 2, page.TotalPages)

	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodGet, "/api/transactions/history?type=OTRO", nil, nil))
	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodGet, "/api/transactions/history?start_date=ayer", nil, nil))
	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodGet,
		"/api/transactions/history?start_date=2026-02-01&end_date=2026-01-01", nil, nil))
	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodGet, "/api/transactions/history?page=922337203685477582", nil, nil))
	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodGet, "/api/transactions/transfer/pending?page=922337203685477582", nil, nil))
}

func TestHTTP_GetTransaction_NoExiste_Retorna404(t *testing.T) {
	app := buildApp(t)
	var errResp dto.ErrorResponse
	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/api/transactions/no-existe", nil, &errResp))
	assert.Equal(t, "NOT_FOUND", errResp.Code)
}

func TestHTTP_Stock_DesgloseYVerificacion(t *testing.T) {
	app := buildApp(t)
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/transactions/stock-in",
		dto.StockInRequest{WarehouseID: "w1", Items: []dto.TransactionItemRequest{item("p1", 7)}}, nil))
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/transactions/stock-in",
		dto.StockInRequest{WarehouseID: "w2", Items: []dto.TransactionItemRequest{item("p1", 3)}}, nil))

	var all dto.StockResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/stock/p1", nil, &all))
	assert.Equal(t, int64(10), all.Quantity)
	assert.Len(t, all.Warehouses, 2)

	assert.Equal(t, int64(0), stockOf(t, app, "p2", "w1"), "sin registro equivale a cero")
	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/api/stock/nope", nil, nil))

	var v dto.StockVerificationResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/stock/p1/verify?warehouseId=w1", nil, &v))
	assert.True(t, v.Consistent)
	assert.Equal(t, int64(7), v.Replayed)
	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodGet, "/api/stock/p1/verify", nil, nil))
}

// ──────────────────────────────────────────────────────────────────────────────
// Datos de referencia y reporte
// ──────────────────────────────────────────────────────────────────────────────

func TestHTTP_Productos_Y_Reporte(t *testing.T) {
	app := buildApp(t)

	var cat dto.CategoryResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/categories", dto.CreateCategoryRequest{Name: "Sembako"}, &cat))

	var prod dto.ProductResponse
	status := call(t, app, http.MethodPost, "/api/products",
		map[string]any{"sku": "MNY-1", "name": "Minyak", "category_id": cat.ID, "purchase_price": "15000.25"}, &prod)
	require.Equal(t, http.StatusCreated, status)
	require.NotNil(t, prod.PurchasePrice)
	assert.Equal(t, "15000.25", prod.PurchasePrice.String())

	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodPost, "/api/products",
		dto.CreateProductRequest{SKU: "MNY-1", Name: "Otro"}, nil), "SKU duplicado")
	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPost, "/api/products",
		dto.CreateProductRequest{Name: "Sin SKU"}, nil))

	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/transactions/stock-in",
		dto.StockInRequest{WarehouseID: "w1", Items: []dto.TransactionItemRequest{item(prod.ID, 2)}}, nil))

	var report dto.StockReportResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/reports/stock?search=minyak", nil, &report))
	require.Len(t, report.Items, 1)
	assert.Equal(t, "30000.5", report.TotalValue.String())

	var list dto.ProductListResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/products?limit=10", nil, &list))
	assert.Len(t, list.Items, 3)
}

func TestHTTP_Bodegas(t *testing.T) {
	app := buildApp(t)

	var wh dto.WarehouseResponse
	require.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/warehouses",
		dto.CreateWarehouseRequest{Code: "WH03", Name: "Gudang Bandung"}, &wh))
	assert.True(t, wh.IsActive)

	assert.Equal(t, http.StatusConflict, call(t, app, http.MethodPost, "/api/warehouses",
		dto.CreateWarehouseRequest{Code: "WH01", Name: "Repetida"}, nil))

	var got dto.WarehouseResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodGet, "/api/warehouses/"+wh.ID, nil, &got))
	assert.Equal(t, "WH03", got.Code)
	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodGet, "/api/warehouses/nope", nil, nil))
}

func TestHTTP_BodegaDesactivadaRechazaMovimientos(t *testing.T) {
	app := buildApp(t)

	var wh dto.WarehouseResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPut, "/api/warehouses/w2/deactivate", nil, &wh))
	assert.False(t, wh.IsActive)

	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPost, "/api/transactions/stock-in",
		dto.StockInRequest{WarehouseID: "w2", Items: []dto.TransactionItemRequest{item("p1", 1)}}, nil))
	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPost, "/api/transactions/transfer",
		dto.TransferRequest{SourceWarehouseID: "w1", TargetWarehouseID: "w2", Items: []dto.TransactionItemRequest{item("p1", 1)}}, nil))

	require.Equal(t, http.StatusOK, call(t, app, http.MethodPut, "/api/warehouses/w2/activate", nil, &wh))
	assert.True(t, wh.IsActive)
	assert.Equal(t, http.StatusCreated, call(t, app, http.MethodPost, "/api/transactions/stock-in",
		dto.StockInRequest{WarehouseID: "w2", Items: []dto.TransactionItemRequest{item("p1", 1)}}, nil))

	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodPut, "/api/warehouses/nope/deactivate", nil, nil))
	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPatch, "/api/warehouses/w2",
		map[string]any{"code": "WH77"}, nil), "el código es inmutable")
}

func TestHTTP_ActualizarProducto_SKUInmutable(t *testing.T) {
	app := buildApp(t)

	var prod dto.ProductResponse
	require.Equal(t, http.StatusOK, call(t, app, http.MethodPatch, "/api/products/p1",
		map[string]any{"name": "Beras Premium", "purchase_price": "75000"}, &prod))
	assert.Equal(t, "Beras Premium", prod.Name)
	assert.Equal(t, "SKU-1", prod.SKU)
	require.NotNil(t, prod.PurchasePrice)
	assert.Equal(t, "75000", prod.PurchasePrice.String())

	assert.Equal(t, http.StatusBadRequest, call(t, app, http.MethodPatch, "/api/products/p1",
		map[string]any{"sku": "SKU-X"}, nil))
	assert.Equal(t, http.StatusOK, call(t, app, http.MethodPatch, "/api/products/p1",
		map[string]any{"sku": "SKU-1"}, nil), "el mismo SKU se acepta")
	assert.Equal(t, http.StatusNotFound, call(t, app, http.MethodPatch, "/api/products/nope",
		map[string]any{"name": "x"}, nil))
}
