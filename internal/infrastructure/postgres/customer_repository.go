package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
)

var (
	_ repository.CustomerRepository = (*CustomerRepo)(nil)
	_ repository.VendorRepository   = (*VendorRepo)(nil)
	_ repository.VehicleRepository  = (*VehicleRepo)(nil)
)

const partyColumns = `id, name, tax_id, email, phone, address, created_at, updated_at`

// CustomerRepo implementación de CustomerRepository para PostgreSQL.
type CustomerRepo struct {
	q Querier
}

func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

func (r *CustomerRepo) Create(ctx context.Context, c *entity.Customer) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO customers (`+partyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.Name, c.TaxID, c.Email, c.Phone, c.Address, c.CreatedAt, c.UpdatedAt)
	return insertErr(entity.KindCustomer, err)
}

func (r *CustomerRepo) GetByID(ctx context.Context, id string) (*entity.Customer, error) {
	return one(r.q.QueryRow(ctx, `SELECT `+partyColumns+` FROM customers WHERE id = $1`, id), scanCustomer)
}

func (r *CustomerRepo) GetByTaxID(ctx context.Context, taxID string) (*entity.Customer, error) {
	return one(r.q.QueryRow(ctx, `SELECT `+partyColumns+` FROM customers WHERE tax_id = $1`, taxID), scanCustomer)
}

func (r *CustomerRepo) List(ctx context.Context, limit, offset int) ([]*entity.Customer, error) {
	var w where
	q := `SELECT ` + partyColumns + ` FROM customers` + w.page(repository.Filter{Limit: limit, Offset: offset})
	rows, err := r.q.Query(ctx, q, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return collect(rows, scanCustomer)
}

func (r *CustomerRepo) Update(ctx context.Context, c *entity.Customer) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE customers SET name = $2, tax_id = $3, email = $4, phone = $5, address = $6, updated_at = $7
		WHERE id = $1`,
		c.ID, c.Name, c.TaxID, c.Email, c.Phone, c.Address, c.UpdatedAt)
	return casErr(entity.KindCustomer, c.ID, tag, err)
}

func scanCustomer(row pgx.Row) (*entity.Customer, error) {
	var c entity.Customer
	if err := row.Scan(&c.ID, &c.Name, &c.TaxID, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// VendorRepo proveedores; misma forma que clientes pero sin tax_id único.
type VendorRepo struct {
	q Querier
}

func NewVendorRepository(q Querier) *VendorRepo {
	return &VendorRepo{q: q}
}

func (r *VendorRepo) Create(ctx context.Context, v *entity.Vendor) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO vendors (`+partyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		v.ID, v.Name, v.TaxID, v.Email, v.Phone, v.Address, v.CreatedAt, v.UpdatedAt)
	return insertErr(entity.KindVendor, err)
}

func (r *VendorRepo) GetByID(ctx context.Context, id string) (*entity.Vendor, error) {
	return one(r.q.QueryRow(ctx, `SELECT `+partyColumns+` FROM vendors WHERE id = $1`, id), scanVendor)
}

func (r *VendorRepo) List(ctx context.Context, limit, offset int) ([]*entity.Vendor, error) {
	var w where
	q := `SELECT ` + partyColumns + ` FROM vendors` + w.page(repository.Filter{Limit: limit, Offset: offset})
	rows, err := r.q.Query(ctx, q, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	return collect(rows, scanVendor)
}

func (r *VendorRepo) Update(ctx context.Context, v *entity.Vendor) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE vendors SET name = $2, tax_id = $3, email = $4, phone = $5, address = $6, updated_at = $7
		WHERE id = $1`,
		v.ID, v.Name, v.TaxID, v.Email, v.Phone, v.Address, v.UpdatedAt)
	return casErr(entity.KindVendor, v.ID, tag, err)
}

func scanVendor(row pgx.Row) (*entity.Vendor, error) {
	var v entity.Vendor
	if err := row.Scan(&v.ID, &v.Name, &v.TaxID, &v.Email, &v.Phone, &v.Address, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

const vehicleColumns = `id, plate_number, model, year, status, created_at, updated_at`

// VehicleRepo flota.
type VehicleRepo struct {
	q Querier
}

func NewVehicleRepository(q Querier) *VehicleRepo {
	return &VehicleRepo{q: q}
}

func (r *VehicleRepo) Create(ctx context.Context, v *entity.Vehicle) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO vehicles (`+vehicleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		v.ID, v.PlateNumber, v.Model, v.Year, v.Status, v.CreatedAt, v.UpdatedAt)
	return insertErr(entity.KindVehicle, err)
}

func (r *VehicleRepo) GetByID(ctx context.Context, id string) (*entity.Vehicle, error) {
	return one(r.q.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE id = $1`, id), scanVehicle)
}

func (r *VehicleRepo) GetByPlate(ctx context.Context, plate string) (*entity.Vehicle, error) {
	return one(r.q.QueryRow(ctx, `SELECT `+vehicleColumns+` FROM vehicles WHERE plate_number = $1`, plate), scanVehicle)
}

func (r *VehicleRepo) List(ctx context.Context, limit, offset int) ([]*entity.Vehicle, error) {
	var w where
	q := `SELECT ` + vehicleColumns + ` FROM vehicles` + w.page(repository.Filter{Limit: limit, Offset: offset})
	rows, err := r.q.Query(ctx, q, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return collect(rows, scanVehicle)
}

func (r *VehicleRepo) Update(ctx context.Context, v *entity.Vehicle) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE vehicles SET plate_number = $2, model = $3, year = $4, status = $5, updated_at = $6
		WHERE id = $1`,
		v.ID, v.PlateNumber, v.Model, v.Year, v.Status, v.UpdatedAt)
	return casErr(entity.KindVehicle, v.ID, tag, err)
}

func scanVehicle(row pgx.Row) (*entity.Vehicle, error) {
	var v entity.Vehicle
	if err := row.Scan(&v.ID, &v.PlateNumber, &v.Model, &v.Year, &v.Status, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}
