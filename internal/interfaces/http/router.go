package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger      *inventory.LedgerUseCase
	ProductUC   *usecase.ProductUseCase
	WarehouseUC *usecase.WarehouseUseCase
	CatalogUC   *usecase.CatalogUseCase
	ReportUC    *usecase.StockReportUseCase
	JWTSecret   string
	ServiceName string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Todo /api requiere Bearer Token
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Ledger
	txHandler := NewTransactionHandler(deps.Ledger)
	tx := api.Group("/transactions")
	tx.Post("/stock-in", txHandler.StockIn)
	tx.Post("/stock-out", txHandler.StockOut)
	tx.Post("/transfer", txHandler.Transfer)
	tx.Get("/transfer/pending", txHandler.Pending)
	tx.Put("/transfer/:id/approve", txHandler.Approve)
	tx.Put("/transfer/:id/reject", txHandler.Reject)
	tx.Get("/history", txHandler.History)
	tx.Get("/:id", txHandler.GetByID)

	// Stock y reportes (solo lectura)
	stockHandler := NewStockHandler(deps.Ledger, deps.ReportUC)
	api.Get("/stock/:productId", stockHandler.GetStock)
	api.Get("/stock/:productId/verify", stockHandler.VerifyStock)
	api.Get("/reports/stock", stockHandler.Report)

	// Datos de referencia
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Patch("/:id", productHandler.Update)

	warehouses := api.Group("/warehouses")
	warehouseHandler := NewWarehouseHandler(deps.WarehouseUC)
	warehouses.Post("/", warehouseHandler.Create)
	warehouses.Get("/", warehouseHandler.List)
	warehouses.Get("/:id", warehouseHandler.GetByID)
	warehouses.Patch("/:id", warehouseHandler.Update)
	warehouses.Put("/:id/activate", warehouseHandler.Activate)
	warehouses.Put("/:id/deactivate", warehouseHandler.Deactivate)

	catalogHandler := NewCatalogHandler(deps.CatalogUC)
	api.Post("/categories", catalogHandler.CreateCategory)
	api.Get("/categories", catalogHandler.ListCategories)
	api.Post("/units", catalogHandler.CreateUnit)
	api.Get("/units", catalogHandler.ListUnits)
}
