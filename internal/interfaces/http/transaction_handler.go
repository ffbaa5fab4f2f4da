package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
)

// TransactionHandler expone las operaciones del ledger (protegido).
type TransactionHandler struct {
	uc *inventory.LedgerUseCase
}

// NewTransactionHandler construye el handler.
func NewTransactionHandler(uc *inventory.LedgerUseCase) *TransactionHandler {
	return &TransactionHandler{uc: uc}
}

// StockIn godoc
// @Summary      Registrar entrada de stock
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockInRequest  true  "Bodega, ítems, proveedor"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transactions/stock-in [post]
func (h *TransactionHandler) StockIn(c *fiber.Ctx) error {
	var in dto.StockInRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	t, err := h.uc.CreateStockIn(c.UserContext(), inventory.StockInInput{
		WarehouseID: in.WarehouseID,
		Items:       toItemInputs(in.Items),
		Supplier:    in.Supplier,
		Notes:       in.Notes,
		CreatedBy:   GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromTransaction(t))
}

// StockOut godoc
// @Summary      Registrar salida de stock
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockOutRequest  true  "Bodega, ítems, destino"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "stock insuficiente"
// @Router       /api/transactions/stock-out [post]
func (h *TransactionHandler) StockOut(c *fiber.Ctx) error {
	var in dto.StockOutRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	t, err := h.uc.CreateStockOut(c.UserContext(), inventory.StockOutInput{
		WarehouseID: in.WarehouseID,
		Items:       toItemInputs(in.Items),
		Destination: in.Destination,
		Notes:       in.Notes,
		CreatedBy:   GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromTransaction(t))
}

// Transfer godoc
// @Summary      Crear traslado entre bodegas (queda PENDING)
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "Origen, destino, ítems"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/transactions/transfer [post]
func (h *TransactionHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	t, err := h.uc.CreateTransfer(c.UserContext(), inventory.TransferInput{
		SourceWarehouseID: in.SourceWarehouseID,
		TargetWarehouseID: in.TargetWarehouseID,
		Items:             toItemInputs(in.Items),
		Notes:             in.Notes,
		CreatedBy:         GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromTransaction(t))
}

// Approve godoc
// @Summary      Aprobar traslado
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true   "ID de la transacción"
// @Param        body  body  dto.ApproveTransferRequest  false  "Notas"
// @Success      200   {object}  dto.TransactionResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transactions/transfer/{id}/approve [put]
func (h *TransactionHandler) Approve(c *fiber.Ctx) error {
	var in dto.ApproveTransferRequest
	if len(c.Body()) > 0 {
		if ok, err := parseBody(c, &in); !ok {
			return err
		}
	}
	t, err := h.uc.ApproveTransfer(c.UserContext(), inventory.ApproveInput{
		TransactionID: c.Params("id"),
		ApprovedBy:    GetUserID(c),
		Notes:         in.Notes,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromTransaction(t))
}

// Reject godoc
// @Summary      Rechazar traslado
// @Tags         transactions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la transacción"
// @Param        body  body  dto.RejectTransferRequest  true  "Razón del rechazo"
// @Success      200   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/transactions/transfer/{id}/reject [put]
func (h *TransactionHandler) Reject(c *fiber.Ctx) error {
	var in dto.RejectTransferRequest
	if ok, err := parseBody(c, &in); !ok {
		return err
	}
	t, err := h.uc.RejectTransfer(c.UserContext(), inventory.RejectInput{
		TransactionID: c.Params("id"),
		ApprovedBy:    GetUserID(c),
		Reason:        in.Reason,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromTransaction(t))
}

// Pending godoc
// @Summary      Traslados pendientes hacia una bodega
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega destino"
// @Param        page          query  int     false  "Página"  default(1)
// @Param        limit         query  int     false  "Límite"  default(10)
// @Success      200  {object}  dto.TransactionListResponse
// @Router       /api/transactions/transfer/pending [get]
func (h *TransactionHandler) Pending(c *fiber.Ctx) error {
	out, err := h.uc.ListPendingTransfers(c.UserContext(), inventory.PendingInput{
		WarehouseID: c.Query("warehouse_id"),
		Page:        c.QueryInt("page", 1),
		Limit:       c.QueryInt("limit", 10),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toListResponse(out))
}

// History godoc
// @Summary      Historial de transacciones
// @Description  Filtra por bodega (origen o destino), tipo, estado, rango de fechas y número de referencia.
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        type          query  string  false  "STOCK_IN | STOCK_OUT | TRANSFER"
// @Param        status        query  string  false  "PENDING | APPROVED | REJECTED | COMPLETED"
// @Param        start_date    query  string  false  "YYYY-MM-DD o RFC3339"
// @Param        end_date      query  string  false  "YYYY-MM-DD (inclusive) o RFC3339"
// @Param        search        query  string  false  "Número de referencia"
// @Param        page          query  int     false  "Página"  default(1)
// @Param        limit         query  int     false  "Límite"  default(10)
// @Success      200  {object}  dto.TransactionListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transactions/history [get]
func (h *TransactionHandler) History(c *fiber.Ctx) error {
	var q dto.TransactionHistoryQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	if err := validate.Struct(q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validationMessage(err)})
	}
	from, err := parseDate(q.StartDate, false)
	if err != nil {
		return respondError(c, err)
	}
	to, err := parseDate(q.EndDate, true)
	if err != nil {
		return respondError(c, err)
	}
	out, err := h.uc.ListTransactions(c.UserContext(), inventory.ListInput{
		WarehouseID: q.WarehouseID,
		Type:        q.Type,
		Status:      q.Status,
		From:        from,
		To:          to,
		Search:      q.Search,
		Page:        q.Page,
		Limit:       q.Limit,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toListResponse(out))
}

// GetByID godoc
// @Summary      Obtener transacción con sus ítems
// @Tags         transactions
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la transacción"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *fiber.Ctx) error {
	t, err := h.uc.GetTransaction(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.FromTransaction(t))
}

func toItemInputs(items []dto.TransactionItemRequest) []inventory.ItemInput {
	out := make([]inventory.ItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, inventory.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return out
}

func toListResponse(p *inventory.TransactionPage) dto.TransactionListResponse {
	data := make([]dto.TransactionResponse, 0, len(p.Data))
	for _, t := range p.Data {
		data = append(data, dto.FromTransaction(t))
	}
	return dto.TransactionListResponse{
		Data:       data,
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
}

// parseDate acepta YYYY-MM-DD o RFC3339. Con endOfDay una fecha sin hora cubre el día completo.
func parseDate(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, domain.Invalid("fecha inválida: %s", s)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
