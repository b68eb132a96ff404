package entity

import "time"

// Category representa una categoría de productos. Name es la llave de negocio en importaciones.
type Category struct {
	ID          int64
	Name        string
	Description string // opcional
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
