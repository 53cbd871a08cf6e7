package entity

import "time"

// Roles válidos para User; la matriz de permisos se configura por rol.
const (
	RoleAdmin      = "admin"
	RoleAccountant = "accountant"
	RoleSales      = "sales"
	RoleOperations = "operations"
	RoleViewer     = "viewer"
)

// User usuario del sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt
	Name         string
	Role         string
	Status       string // active, inactive
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
