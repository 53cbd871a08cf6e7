package memory

import (
	"context"

	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
)

type customerRepo struct{ s *Store }

func (r *customerRepo) Create(_ context.Context, c *entity.Customer) error {
	return r.s.write(func() error { return r.s.customers.insert(c) })
}

func (r *customerRepo) GetByID(_ context.Context, id string) (c *entity.Customer, err error) {
	r.s.read(func() { c, _ = r.s.customers.get(id) })
	return c, nil
}

func (r *customerRepo) GetByTaxID(_ context.Context, taxID string) (c *entity.Customer, err error) {
	r.s.read(func() {
		c, _ = r.s.customers.find(func(v *entity.Customer) bool { return v.TaxID == taxID })
	})
	return c, nil
}

func (r *customerRepo) List(_ context.Context, limit, offset int) (out []*entity.Customer, err error) {
	r.s.read(func() { out = r.s.customers.list(nil, limit, offset) })
	return out, nil
}

func (r *customerRepo) Update(_ context.Context, c *entity.Customer) error {
	return r.s.write(func() error { return r.s.customers.replace(c, nil) })
}

type vendorRepo struct{ s *Store }

func (r *vendorRepo) Create(_ context.Context, v *entity.Vendor) error {
	return r.s.write(func() error { return r.s.vendors.insert(v) })
}

func (r *vendorRepo) GetByID(_ context.Context, id string) (v *entity.Vendor, err error) {
	r.s.read(func() { v, _ = r.s.vendors.get(id) })
	return v, nil
}

func (r *vendorRepo) List(_ context.Context, limit, offset int) (out []*entity.Vendor, err error) {
	r.s.read(func() { out = r.s.vendors.list(nil, limit, offset) })
	return out, nil
}

func (r *vendorRepo) Update(_ context.Context, v *entity.Vendor) error {
	return r.s.write(func() error { return r.s.vendors.replace(v, nil) })
}

type vehicleRepo struct{ s *Store }

func (r *vehicleRepo) Create(_ context.Context, v *entity.Vehicle) error {
	return r.s.write(func() error { return r.s.vehicles.insert(v) })
}

func (r *vehicleRepo) GetByID(_ context.Context, id string) (v *entity.Vehicle, err error) {
	r.s.read(func() { v, _ = r.s.vehicles.get(id) })
	return v, nil
}

func (r *vehicleRepo) GetByPlate(_ context.Context, plate string) (v *entity.Vehicle, err error) {
	r.s.read(func() {
		v, _ = r.s.vehicles.find(func(x *entity.Vehicle) bool { return x.PlateNumber == plate })
	})
	return v, nil
}

func (r *vehicleRepo) List(_ context.Context, limit, offset int) (out []*entity.Vehicle, err error) {
	r.s.read(func() { out = r.s.vehicles.list(nil, limit, offset) })
	return out, nil
}

func (r *vehicleRepo) Update(_ context.Context, v *entity.Vehicle) error {
	return r.s.write(func() error { return r.s.vehicles.replace(v, nil) })
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, u *entity.User) error {
	return r.s.write(func() error { return r.s.users.insert(u) })
}

func (r *userRepo) GetByID(_ context.Context, id string) (u *entity.User, err error) {
	r.s.read(func() { u, _ = r.s.users.get(id) })
	return u, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (u *entity.User, err error) {
	r.s.read(func() {
		u, _ = r.s.users.find(func(x *entity.User) bool { return x.Email == email })
	})
	return u, nil
}
