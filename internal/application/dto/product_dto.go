package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. El SKU es inmutable una vez creado.
type CreateProductRequest struct {
	SKU           string           `json:"sku" validate:"required,min=1,max=100"`
	Name          string           `json:"name" validate:"required,min=1,max=200"`
	CategoryID    string           `json:"category_id" validate:"omitempty,max=64"`
	UnitID        string           `json:"unit_id" validate:"omitempty,max=64"`
	PurchasePrice *decimal.Decimal `json:"purchase_price" swaggertype:"string"`
}

// UpdateProductRequest cambios parciales de un producto; los campos nil no se tocan.
// CategoryID/UnitID vacíos quitan la referencia. SKU solo se acepta si coincide con el actual.
type UpdateProductRequest struct {
	SKU           *string          `json:"sku,omitempty" validate:"omitempty,max=100"`
	Name          *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	CategoryID    *string          `json:"category_id,omitempty" validate:"omitempty,max=64"`
	UnitID        *string          `json:"unit_id,omitempty" validate:"omitempty,max=64"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty" swaggertype:"string"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string           `json:"id"`
	SKU           string           `json:"sku"`
	Name          string           `json:"name"`
	CategoryID    string           `json:"category_id,omitempty"`
	UnitID        string           `json:"unit_id,omitempty"`
	PurchasePrice *decimal.Decimal `json:"purchase_price" swaggertype:"string"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
