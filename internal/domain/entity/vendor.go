package entity

import "time"

// Vendor proveedor al que se emiten órdenes de compra.
type Vendor struct {
	ID        string
	Name      string
	TaxID     string
	Email     string
	Phone     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
