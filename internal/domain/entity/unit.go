package entity

import "time"

// Unit unidad de medida de un producto (pcs, kg, caja...).
type Unit struct {
	ID           string
	Name         string
	Abbreviation string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
