package repository

import (
	"context"

	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	Create(ctx context.Context, c *entity.Customer) error
	GetByID(ctx context.Context, id string) (*entity.Customer, error)
	GetByTaxID(ctx context.Context, taxID string) (*entity.Customer, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Customer, error)
	Update(ctx context.Context, c *entity.Customer) error
}

// VendorRepository define el puerto de persistencia para Vendor.
type VendorRepository interface {
	Create(ctx context.Context, v *entity.Vendor) error
	GetByID(ctx context.Context, id string) (*entity.Vendor, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Vendor, error)
	Update(ctx context.Context, v *entity.Vendor) error
}

// VehicleRepository define el puerto de persistencia para Vehicle.
type VehicleRepository interface {
	Create(ctx context.Context, v *entity.Vehicle) error
	GetByID(ctx context.Context, id string) (*entity.Vehicle, error)
	GetByPlate(ctx context.Context, plate string) (*entity.Vehicle, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Vehicle, error)
	Update(ctx context.Context, v *entity.Vehicle) error
}
