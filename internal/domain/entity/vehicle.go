package entity

import "time"

// Estados de un vehículo de la flota.
const (
	VehicleAvailable   = "available"
	VehicleInService   = "in_service"
	VehicleMaintenance = "maintenance"
	VehicleRetired     = "retired"
)

// Vehicle vehículo de la flota asignable a proyectos.
type Vehicle struct {
	ID          string
	PlateNumber string
	Model       string
	Year        int
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
