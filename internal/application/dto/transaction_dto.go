package dto

import (
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// TransactionItemRequest línea de una transacción.
type TransactionItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int64  `json:"quantity" validate:"required,gt=0"`
}

// StockInRequest entrada de mercancía.
type StockInRequest struct {
	WarehouseID string                   `json:"warehouse_id" validate:"required"`
	Items       []TransactionItemRequest `json:"items" validate:"required,min=1,dive"`
	Supplier    string                   `json:"supplier" validate:"max=200"`
	Notes       string                   `json:"notes" validate:"max=2000"`
}

// StockOutRequest salida de mercancía.
type StockOutRequest struct {
	WarehouseID string                   `json:"warehouse_id" validate:"required"`
	Items       []TransactionItemRequest `json:"items" validate:"required,min=1,dive"`
	Destination string                   `json:"destination" validate:"max=200"`
	Notes       string                   `json:"notes" validate:"max=2000"`
}

// TransferRequest traslado entre bodegas.
type TransferRequest struct {
	SourceWarehouseID string                   `json:"source_warehouse_id" validate:"required"`
	TargetWarehouseID string                   `json:"target_warehouse_id" validate:"required,nefield=SourceWarehouseID"`
	Items             []TransactionItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes             string                   `json:"notes" validate:"max=2000"`
}

// ApproveTransferRequest cuerpo opcional de la aprobación.
type ApproveTransferRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

// RejectTransferRequest cuerpo del rechazo; la razón es obligatoria.
type RejectTransferRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

// TransactionHistoryQuery filtros del historial (query string).
type TransactionHistoryQuery struct {
	WarehouseID string `query:"warehouse_id"`
	Type        string `query:"type" validate:"omitempty,oneof=STOCK_IN STOCK_OUT TRANSFER"`
	Status      string `query:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED COMPLETED"`
	StartDate   string `query:"start_date"`
	EndDate     string `query:"end_date"`
	Search      string `query:"search"`
	Page        int    `query:"page" validate:"min=0,max=1000000"`
	Limit       int    `query:"limit" validate:"min=0,max=100"`
}

// TransactionItemResponse línea de la transacción.
type TransactionItemResponse struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

// TransactionResponse salida de una transacción.
type TransactionResponse struct {
	ID                string                    `json:"id"`
	ReferenceNumber   string                    `json:"reference_number"`
	Type              string                    `json:"type"`
	Status            string                    `json:"status"`
	WarehouseID       string                    `json:"warehouse_id"`
	TargetWarehouseID string                    `json:"target_warehouse_id,omitempty"`
	Supplier          string                    `json:"supplier,omitempty"`
	Destination       string                    `json:"destination,omitempty"`
	Notes             string                    `json:"notes,omitempty"`
	CreatedBy         string                    `json:"created_by"`
	ApprovedBy        string                    `json:"approved_by,omitempty"`
	CreatedAt         time.Time                 `json:"created_at"`
	UpdatedAt         time.Time                 `json:"updated_at"`
	Items             []TransactionItemResponse `json:"items"`
}

// TransactionListResponse página de transacciones.
type TransactionListResponse struct {
	Data       []TransactionResponse `json:"data"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	TotalPages int                   `json:"total_pages"`
}

// FromTransaction mapea la entidad a la respuesta HTTP.
func FromTransaction(t *entity.Transaction) TransactionResponse {
	items := make([]TransactionItemResponse, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, TransactionItemResponse{ID: it.ID, ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return TransactionResponse{
		ID:                t.ID,
		ReferenceNumber:   t.ReferenceNumber,
		Type:              string(t.Type),
		Status:            string(t.Status),
		WarehouseID:       t.WarehouseID,
		TargetWarehouseID: t.TargetWarehouseID,
		Supplier:          t.Supplier,
		Destination:       t.Destination,
		Notes:             t.Notes,
		CreatedBy:         t.CreatedBy,
		ApprovedBy:        t.ApprovedBy,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
		Items:             items,
	}
}
