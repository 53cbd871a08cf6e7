package memory

import (
	"context"
	"time"

	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
)

type quotationRepo struct{ s *Store }

func (r *quotationRepo) Create(_ context.Context, q *entity.Quotation) error {
	return r.s.write(func() error { return r.s.quotations.insert(q) })
}

func (r *quotationRepo) GetByID(_ context.Context, id string) (q *entity.Quotation, err error) {
	r.s.read(func() { q, _ = r.s.quotations.get(id) })
	return q, nil
}

func (r *quotationRepo) List(_ context.Context, f repository.Filter) (out []*entity.Quotation, err error) {
	limit, offset := f.Page()
	r.s.read(func() {
		out = r.s.quotations.list(func(q *entity.Quotation) bool {
			if f.CustomerID != "" && q.CustomerID != f.CustomerID {
				return false
			}
			return f.Status == "" || string(effectiveQuotation(q, f.AsOf)) == f.Status
		}, limit, offset)
	})
	return out, nil
}

func (r *quotationRepo) Update(_ context.Context, q *entity.Quotation, expected time.Time) error {
	return r.s.write(func() error {
		q.UpdatedAt = repository.NextVersion(q.UpdatedAt, expected)
		return r.s.quotations.replace(q, &expected)
	})
}

func (r *quotationRepo) Delete(_ context.Context, id string) error {
	return r.s.write(func() error { return r.s.quotations.remove(id) })
}

type purchaseOrderRepo struct{ s *Store }

func (r *purchaseOrderRepo) Create(_ context.Context, o *entity.PurchaseOrder) error {
	return r.s.write(func() error { return r.s.purchaseOrders.insert(o) })
}

func (r *purchaseOrderRepo) GetByID(_ context.Context, id string) (o *entity.PurchaseOrder, err error) {
	r.s.read(func() { o, _ = r.s.purchaseOrders.get(id) })
	return o, nil
}

func (r *purchaseOrderRepo) List(_ context.Context, f repository.Filter) (out []*entity.PurchaseOrder, err error) {
	limit, offset := f.Page()
	r.s.read(func() {
		out = r.s.purchaseOrders.list(func(o *entity.PurchaseOrder) bool {
			return match(f.Status, string(o.Status)) &&
				match(f.CustomerID, o.CustomerID) &&
				match(f.QuotationID, o.QuotationID)
		}, limit, offset)
	})
	return out, nil
}

func (r *purchaseOrderRepo) Update(_ context.Context, o *entity.PurchaseOrder, expected time.Time) error {
	return r.s.write(func() error {
		o.UpdatedAt = repository.NextVersion(o.UpdatedAt, expected)
		return r.s.purchaseOrders.replace(o, &expected)
	})
}

func (r *purchaseOrderRepo) Delete(_ context.Context, id string) error {
	return r.s.write(func() error { return r.s.purchaseOrders.remove(id) })
}

type invoiceRepo struct{ s *Store }

func (r *invoiceRepo) Create(_ context.Context, i *entity.Invoice) error {
	return r.s.write(func() error { return r.s.invoices.insert(i) })
}

func (r *invoiceRepo) GetByID(_ context.Context, id string) (i *entity.Invoice, err error) {
	r.s.read(func() { i, _ = r.s.invoices.get(id) })
	return i, nil
}

func (r *invoiceRepo) List(_ context.Context, f repository.Filter) (out []*entity.Invoice, err error) {
	limit, offset := f.Page()
	r.s.read(func() {
		out = r.s.invoices.list(func(i *entity.Invoice) bool {
			status := i.Status
			if f.AsOf != nil {
				c := *i
				c.RefreshStatus(*f.AsOf)
				status = c.Status
			}
			return match(f.Status, string(status)) &&
				match(f.CustomerID, i.CustomerID) &&
				match(f.QuotationID, i.QuotationID) &&
				match(f.PurchaseOrderID, i.PurchaseOrderID)
		}, limit, offset)
	})
	return out, nil
}

func (r *invoiceRepo) Update(_ context.Context, i *entity.Invoice, expected time.Time) error {
	return r.s.write(func() error {
		i.UpdatedAt = repository.NextVersion(i.UpdatedAt, expected)
		return r.s.invoices.replace(i, &expected)
	})
}

func (r *invoiceRepo) Delete(_ context.Context, id string) error {
	return r.s.write(func() error { return r.s.invoices.remove(id) })
}

type receiptRepo struct{ s *Store }

func (r *receiptRepo) Create(_ context.Context, rc *entity.Receipt) error {
	return r.s.write(func() error { return r.s.receipts.insert(rc) })
}

func (r *receiptRepo) GetByID(_ context.Context, id string) (rc *entity.Receipt, err error) {
	r.s.read(func() { rc, _ = r.s.receipts.get(id) })
	return rc, nil
}

func (r *receiptRepo) List(_ context.Context, f repository.Filter) (out []*entity.Receipt, err error) {
	limit, offset := f.Page()
	r.s.read(func() {
		out = r.s.receipts.list(func(rc *entity.Receipt) bool {
			return match(f.Status, string(rc.Status)) &&
				match(f.CustomerID, rc.CustomerID) &&
				match(f.InvoiceID, rc.InvoiceID)
		}, limit, offset)
	})
	return out, nil
}

func (r *receiptRepo) Update(_ context.Context, rc *entity.Receipt, expected time.Time) error {
	return r.s.write(func() error {
		rc.UpdatedAt = repository.NextVersion(rc.UpdatedAt, expected)
		return r.s.receipts.replace(rc, &expected)
	})
}

func (r *receiptRepo) Delete(_ context.Context, id string) error {
	return r.s.write(func() error { return r.s.receipts.remove(id) })
}

type monthlyInvoiceRepo struct{ s *Store }

func (r *monthlyInvoiceRepo) Create(_ context.Context, m *entity.MonthlyInvoice) error {
	return r.s.write(func() error { return r.s.monthlyInvoices.insert(m) })
}

func (r *monthlyInvoiceRepo) GetByID(_ context.Context, id string) (m *entity.MonthlyInvoice, err error) {
	r.s.read(func() { m, _ = r.s.monthlyInvoices.get(id) })
	return m, nil
}

func (r *monthlyInvoiceRepo) List(_ context.Context, f repository.Filter) (out []*entity.MonthlyInvoice, err error) {
	limit, offset := f.Page()
	r.s.read(func() {
		out = r.s.monthlyInvoices.list(func(m *entity.MonthlyInvoice) bool {
			status := m.Status
			if f.AsOf != nil {
				c := *m
				c.RefreshStatus(*f.AsOf)
				status = c.Status
			}
			return match(f.Status, string(status)) &&
				match(f.CustomerID, m.CustomerID) &&
				match(f.ProjectID, m.ProjectID)
		}, limit, offset)
	})
	return out, nil
}

func (r *monthlyInvoiceRepo) Update(_ context.Context, m *entity.MonthlyInvoice, expected time.Time) error {
	return r.s.write(func() error {
		m.UpdatedAt = repository.NextVersion(m.UpdatedAt, expected)
		return r.s.monthlyInvoices.replace(m, &expected)
	})
}

func (r *monthlyInvoiceRepo) Delete(_ context.Context, id string) error {
	return r.s.write(func() error { return r.s.monthlyInvoices.remove(id) })
}

func match(want, got string) bool { return want == "" || want == got }

func effectiveQuotation(q *entity.Quotation, asOf *time.Time) entity.QuotationStatus {
	if asOf == nil {
		return q.Status
	}
	c := *q
	c.RefreshStatus(*asOf)
	return c.Status
}
