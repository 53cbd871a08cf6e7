package dto

import "time"

// CreateVehicleRequest entrada para registrar un vehículo.
type CreateVehicleRequest struct {
	PlateNumber string `json:"plate_number" validate:"required,min=1,max=20"`
	Model       string `json:"model" validate:"required,max=200"`
	Year        int    `json:"year" validate:"omitempty,min=1950,max=2100"`
}

// UpdateVehicleRequest entrada para actualizar un vehículo.
type UpdateVehicleRequest struct {
	Model  *string `json:"model" validate:"omitempty,min=1,max=200"`
	Year   *int    `json:"year" validate:"omitempty,min=1950,max=2100"`
	Status *string `json:"status" validate:"omitempty,oneof=available in_service maintenance retired"`
}

// VehicleResponse salida de un vehículo.
type VehicleResponse struct {
	ID          string    `json:"id"`
	PlateNumber string    `json:"plate_number"`
	Model       string    `json:"model"`
	Year        int       `json:"year,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateVendorRequest entrada para registrar un proveedor.
type CreateVendorRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	TaxID   string `json:"tax_id" validate:"omitempty,max=30"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
}

// VendorResponse salida de un proveedor.
type VendorResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id,omitempty"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
