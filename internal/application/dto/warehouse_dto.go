package dto

import "time"

// CreateWarehouseRequest entrada para crear una bodega. IsActive por defecto true.
type CreateWarehouseRequest struct {
	Code     string `json:"code" validate:"required,min=1,max=50"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Address  string `json:"address" validate:"max=500"`
	IsActive *bool  `json:"is_active"`
}

// UpdateWarehouseRequest cambios parciales de una bodega. El código es inmutable.
type UpdateWarehouseRequest struct {
	Code     *string `json:"code,omitempty" validate:"omitempty,max=50"`
	Name     *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Address  *string `json:"address,omitempty" validate:"omitempty,max=500"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// WarehouseResponse salida de una bodega.
type WarehouseResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// WarehouseListResponse lista paginada de bodegas.
type WarehouseListResponse struct {
	Items []WarehouseResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}
