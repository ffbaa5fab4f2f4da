package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/application/usecase"
)

// StockHandler consultas de stock y reportes (solo lectura).
type StockHandler struct {
	ledger *inventory.LedgerUseCase
	report *usecase.StockReportUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger *inventory.LedgerUseCase, report *usecase.StockReportUseCase) *StockHandler {
	return &StockHandler{ledger: ledger, report: report}
}

// GetStock godoc
// @Summary      Stock de un producto
// @Description  Con warehouseId devuelve la cantidad en esa bodega (0 si no hay registro);
//
//	sin él devuelve el total y el desglose por bodega.
//
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId    path   string  true   "ID del producto"
// @Param        warehouseId  query  string  false  "ID de la bodega"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId} [get]
func (h *StockHandler) GetStock(c *fiber.Ctx) error {
	res, err := h.ledger.GetStock(c.UserContext(), c.Params("productId"), c.Query("warehouseId"))
	if err != nil {
		return respondError(c, err)
	}
	out := dto.StockResponse{ProductID: res.ProductID, WarehouseID: res.WarehouseID, Quantity: res.Quantity}
	for _, w := range res.Warehouses {
		out.Warehouses = append(out.Warehouses, dto.WarehouseStockResponse{WarehouseID: w.WarehouseID, Quantity: w.Quantity})
	}
	return c.JSON(out)
}

// VerifyStock godoc
// @Summary      Verificar stock contra el log de transacciones
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId    path   string  true  "ID del producto"
// @Param        warehouseId  query  string  true  "ID de la bodega"
// @Success      200  {object}  dto.StockVerificationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId}/verify [get]
func (h *StockHandler) VerifyStock(c *fiber.Ctx) error {
	warehouseID := c.Query("warehouseId")
	if warehouseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "warehouseId es requerido"})
	}
	res, err := h.ledger.VerifyStock(c.UserContext(), c.Params("productId"), warehouseID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.StockVerificationResponse{
		ProductID:   res.ProductID,
		WarehouseID: res.WarehouseID,
		Stored:      res.Stored,
		Replayed:    res.Replayed,
		Consistent:  res.Consistent,
	})
}

// Report godoc
// @Summary      Reporte de stock valorizado
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        search        query  string  false  "SKU o nombre"
// @Success      200  {object}  dto.StockReportResponse
// @Router       /api/reports/stock [get]
func (h *StockHandler) Report(c *fiber.Ctx) error {
	out, err := h.report.GetStockReport(c.UserContext(), c.Query("warehouse_id"), c.Query("search"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}
