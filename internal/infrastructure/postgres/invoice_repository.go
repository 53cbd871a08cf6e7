package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

const invoiceColumns = `id, number, customer_id, quotation_id, purchase_order_id, date, due_date, items,
	subtotal, tax_rate, tax_amount, total, paid_amount, status, terms, notes, created_at, updated_at`

// InvoiceRepo implementación de InvoiceRepository para PostgreSQL.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository crea el repositorio de facturas.
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create inserta la factura con sus líneas en una sola fila.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	items, err := encodeItems(inv.Items)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		inv.ID, inv.Number, inv.CustomerID, nullIfEmpty(inv.QuotationID), nullIfEmpty(inv.PurchaseOrderID),
		inv.Date, nullTime(inv.DueDate), items, inv.Subtotal, inv.TaxRate, inv.TaxAmount, inv.Total,
		inv.PaidAmount, string(inv.Status), inv.Terms, inv.Notes, inv.CreatedAt, inv.UpdatedAt)
	return insertErr(entity.KindInvoice, err)
}

// GetByID devuelve (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(ctx context.Context, id string) (*entity.Invoice, error) {
	return one(r.q.QueryRow(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id), scanInvoice)
}

// List con AsOf una factura sent con due_date pasado y saldo pendiente cuenta como overdue.
func (r *InvoiceRepo) List(ctx context.Context, f repository.Filter) ([]*entity.Invoice, error) {
	var w where
	w.eq("customer_id", f.CustomerID)
	w.eq("quotation_id", f.QuotationID)
	w.eq("purchase_order_id", f.PurchaseOrderID)
	statusFilter(&w, f)
	q := `SELECT ` + invoiceColumns + ` FROM invoices` + w.sql()
	q += w.page(f)
	rows, err := r.q.Query(ctx, q, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return collect(rows, scanInvoice)
}

// Update compare-and-swap sobre updated_at.
func (r *InvoiceRepo) Update(ctx context.Context, inv *entity.Invoice, expected time.Time) error {
	inv.UpdatedAt = repository.NextVersion(inv.UpdatedAt, expected)
	items, err := encodeItems(inv.Items)
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE invoices SET number = $2, customer_id = $3, quotation_id = $4, purchase_order_id = $5,
			date = $6, due_date = $7, items = $8, subtotal = $9, tax_rate = $10, tax_amount = $11,
			total = $12, paid_amount = $13, status = $14, terms = $15, notes = $16, updated_at = $17
		WHERE id = $1 AND updated_at = $18`,
		inv.ID, inv.Number, inv.CustomerID, nullIfEmpty(inv.QuotationID), nullIfEmpty(inv.PurchaseOrderID),
		inv.Date, nullTime(inv.DueDate), items, inv.Subtotal, inv.TaxRate, inv.TaxAmount,
		inv.Total, inv.PaidAmount, string(inv.Status), inv.Terms, inv.Notes, inv.UpdatedAt, expected)
	return casErr(entity.KindInvoice, inv.ID, tag, err)
}

func (r *InvoiceRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	return deleteErr(entity.KindInvoice, id, tag, err)
}

// statusFilter compartido por facturas y facturas mensuales (mismas columnas de vencimiento).
func statusFilter(w *where, f repository.Filter) {
	if f.Status == "" {
		return
	}
	if f.AsOf == nil {
		w.eq("status", f.Status)
		return
	}
	asOf := w.arg(*f.AsOf)
	w.add(`(CASE WHEN status = 'sent' AND due_date IS NOT NULL AND due_date < ` + asOf +
		` AND paid_amount < total THEN 'overdue' ELSE status END) = ` + w.arg(f.Status))
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var (
		inv                     entity.Invoice
		quotationID, purchaseID *string
		dueDate                 *time.Time
		items                   []byte
		status                  string
	)
	if err := row.Scan(&inv.ID, &inv.Number, &inv.CustomerID, &quotationID, &purchaseID, &inv.Date, &dueDate,
		&items, &inv.Subtotal, &inv.TaxRate, &inv.TaxAmount, &inv.Total, &inv.PaidAmount,
		&status, &inv.Terms, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if inv.Items, err = decodeItems(items); err != nil {
		return nil, err
	}
	inv.QuotationID, inv.PurchaseOrderID = deref(quotationID), deref(purchaseID)
	inv.DueDate = derefTime(dueDate)
	inv.Status = entity.InvoiceStatus(status)
	return &inv, nil
}
