// Package memory adaptador de persistencia en memoria.
// Sirve para tests y para levantar la API sin PostgreSQL (STORAGE_DRIVER=memory).
// No tiene transacciones multi-fila: TxRunner solo serializa y los casos de uso compensan.
package memory

import (
	"sync"
	"time"

	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
)

// Store guarda todas las entidades detrás de un único RWMutex.
type Store struct {
	mu sync.RWMutex

	quotations      *table[*entity.Quotation]
	purchaseOrders  *table[*entity.PurchaseOrder]
	invoices        *table[*entity.Invoice]
	receipts        *table[*entity.Receipt]
	projects        *table[*entity.Project]
	usageEntries    *table[*entity.UsageEntry]
	monthlyInvoices *table[*entity.MonthlyInvoice]
	customers       *table[*entity.Customer]
	vendors         *table[*entity.Vendor]
	vehicles        *table[*entity.Vehicle]
	users           *table[*entity.User]
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		quotations: newTable(entity.KindQuotation,
			func(q *entity.Quotation) string { return q.ID },
			func(q *entity.Quotation) string { return q.Number },
			func(q *entity.Quotation) time.Time { return q.UpdatedAt },
			cloneQuotation),
		purchaseOrders: newTable(entity.KindPurchaseOrder,
			func(o *entity.PurchaseOrder) string { return o.ID },
			func(o *entity.PurchaseOrder) string { return o.Number },
			func(o *entity.PurchaseOrder) time.Time { return o.UpdatedAt },
			clonePurchaseOrder),
		invoices: newTable(entity.KindInvoice,
			func(i *entity.Invoice) string { return i.ID },
			func(i *entity.Invoice) string { return i.Number },
			func(i *entity.Invoice) time.Time { return i.UpdatedAt },
			cloneInvoice),
		receipts: newTable(entity.KindReceipt,
			func(r *entity.Receipt) string { return r.ID },
			func(r *entity.Receipt) string { return r.Number },
			func(r *entity.Receipt) time.Time { return r.UpdatedAt },
			func(r *entity.Receipt) *entity.Receipt { c := *r; return &c }),
		projects: newTable(entity.KindProject,
			func(p *entity.Project) string { return p.ID },
			func(p *entity.Project) string { return p.Number },
			func(p *entity.Project) time.Time { return p.UpdatedAt },
			cloneProject),
		usageEntries: newTable(entity.KindUsageEntry,
			func(e *entity.UsageEntry) string { return e.ID },
			nil,
			func(e *entity.UsageEntry) time.Time { return e.UpdatedAt },
			cloneUsageEntry),
		monthlyInvoices: newTable(entity.KindMonthlyInvoice,
			func(m *entity.MonthlyInvoice) string { return m.ID },
			func(m *entity.MonthlyInvoice) string { return m.Number },
			func(m *entity.MonthlyInvoice) time.Time { return m.UpdatedAt },
			cloneMonthlyInvoice),
		customers: newTable(entity.KindCustomer,
			func(c *entity.Customer) string { return c.ID },
			func(c *entity.Customer) string { return c.TaxID },
			func(c *entity.Customer) time.Time { return c.UpdatedAt },
			func(c *entity.Customer) *entity.Customer { v := *c; return &v }),
		vendors: newTable(entity.KindVendor,
			func(v *entity.Vendor) string { return v.ID },
			nil,
			func(v *entity.Vendor) time.Time { return v.UpdatedAt },
			func(v *entity.Vendor) *entity.Vendor { c := *v; return &c }),
		vehicles: newTable(entity.KindVehicle,
			func(v *entity.Vehicle) string { return v.ID },
			func(v *entity.Vehicle) string { return v.PlateNumber },
			func(v *entity.Vehicle) time.Time { return v.UpdatedAt },
			func(v *entity.Vehicle) *entity.Vehicle { c := *v; return &c }),
		users: newTable[*entity.User]("user",
			func(u *entity.User) string { return u.ID },
			func(u *entity.User) string { return u.Email },
			func(u *entity.User) time.Time { return u.UpdatedAt },
			func(u *entity.User) *entity.User { c := *u; return &c }),
	}
}

// Repositories devuelve el juego de repositorios sobre este almacén.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Quotations:      &quotationRepo{s},
		PurchaseOrders:  &purchaseOrderRepo{s},
		Invoices:        &invoiceRepo{s},
		Receipts:        &receiptRepo{s},
		Projects:        &projectRepo{s},
		UsageEntries:    &usageEntryRepo{s},
		MonthlyInvoices: &monthlyInvoiceRepo{s},
		Customers:       &customerRepo{s},
		Vendors:         &vendorRepo{s},
		Vehicles:        &vehicleRepo{s},
		Users:           &userRepo{s},
	}
}

func (s *Store) read(fn func()) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn()
}

func (s *Store) write(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}

func cloneQuotation(q *entity.Quotation) *entity.Quotation {
	c := *q
	c.Items = entity.CloneItems(q.Items)
	c.TaxRate = entity.CloneRate(q.TaxRate)
	return &c
}

func clonePurchaseOrder(o *entity.PurchaseOrder) *entity.PurchaseOrder {
	c := *o
	c.Items = entity.CloneItems(o.Items)
	c.TaxRate = entity.CloneRate(o.TaxRate)
	if o.ExpectedDelivery != nil {
		d := *o.ExpectedDelivery
		c.ExpectedDelivery = &d
	}
	return &c
}

func cloneInvoice(i *entity.Invoice) *entity.Invoice {
	c := *i
	c.Items = entity.CloneItems(i.Items)
	c.TaxRate = entity.CloneRate(i.TaxRate)
	return &c
}

func cloneProject(p *entity.Project) *entity.Project {
	c := *p
	c.AssignedVehicleIDs = append([]string(nil), p.AssignedVehicleIDs...)
	if p.EndDate != nil {
		d := *p.EndDate
		c.EndDate = &d
	}
	return &c
}

func cloneUsageEntry(e *entity.UsageEntry) *entity.UsageEntry {
	c := *e
	c.Hours = entity.CloneRate(e.Hours)
	c.Days = entity.CloneRate(e.Days)
	return &c
}

func cloneMonthlyInvoice(m *entity.MonthlyInvoice) *entity.MonthlyInvoice {
	c := *m
	c.UsageEntryIDs = append([]string(nil), m.UsageEntryIDs...)
	c.TotalHours = entity.CloneRate(m.TotalHours)
	c.TotalDays = entity.CloneRate(m.TotalDays)
	return &c
}
