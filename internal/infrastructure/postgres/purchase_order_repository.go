package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
)

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const purchaseOrderColumns = `id, number, customer_id, vendor_id, quotation_id, date, expected_delivery, items,
	subtotal, tax_rate, tax_amount, total, status, terms, notes, created_at, updated_at`

type PurchaseOrderRepo struct {
	q Querier
}

func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

func (r *PurchaseOrderRepo) Create(ctx context.Context, o *entity.PurchaseOrder) error {
	items, err := encodeItems(o.Items)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO purchase_orders (`+purchaseOrderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		o.ID, o.Number, nullIfEmpty(o.CustomerID), nullIfEmpty(o.VendorID), nullIfEmpty(o.QuotationID),
		o.Date, o.ExpectedDelivery, items, o.Subtotal, o.TaxRate, o.TaxAmount, o.Total,
		string(o.Status), o.Terms, o.Notes, o.CreatedAt, o.UpdatedAt)
	return insertErr(entity.KindPurchaseOrder, err)
}

func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return one(r.q.QueryRow(ctx, `SELECT `+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1`, id), scanPurchaseOrder)
}

func (r *PurchaseOrderRepo) List(ctx context.Context, f repository.Filter) ([]*entity.PurchaseOrder, error) {
	var w where
	w.eq("status", f.Status)
	w.eq("customer_id", f.CustomerID)
	w.eq("quotation_id", f.QuotationID)
	q := `SELECT ` + purchaseOrderColumns + ` FROM purchase_orders` + w.sql()
	q += w.page(f)
	rows, err := r.q.Query(ctx, q, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list purchase orders: %w", err)
	}
	return collect(rows, scanPurchaseOrder)
}

func (r *PurchaseOrderRepo) Update(ctx context.Context, o *entity.PurchaseOrder, expected time.Time) error {
	o.UpdatedAt = repository.NextVersion(o.UpdatedAt, expected)
	items, err := encodeItems(o.Items)
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_orders SET number = $2, customer_id = $3, vendor_id = $4, quotation_id = $5,
			date = $6, expected_delivery = $7, items = $8, subtotal = $9, tax_rate = $10,
			tax_amount = $11, total = $12, status = $13, terms = $14, notes = $15, updated_at = $16
		WHERE id = $1 AND updated_at = $17`,
		o.ID, o.Number, nullIfEmpty(o.CustomerID), nullIfEmpty(o.VendorID), nullIfEmpty(o.QuotationID),
		o.Date, o.ExpectedDelivery, items, o.Subtotal, o.TaxRate,
		o.TaxAmount, o.Total, string(o.Status), o.Terms, o.Notes, o.UpdatedAt, expected)
	return casErr(entity.KindPurchaseOrder, o.ID, tag, err)
}

func (r *PurchaseOrderRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM purchase_orders WHERE id = $1`, id)
	return deleteErr(entity.KindPurchaseOrder, id, tag, err)
}

func scanPurchaseOrder(row pgx.Row) (*entity.PurchaseOrder, error) {
	var (
		o                                 entity.PurchaseOrder
		customerID, vendorID, quotationID *string
		items                             []byte
		status                            string
	)
	if err := row.Scan(&o.ID, &o.Number, &customerID, &vendorID, &quotationID, &o.Date, &o.ExpectedDelivery,
		&items, &o.Subtotal, &o.TaxRate, &o.TaxAmount, &o.Total,
		&status, &o.Terms, &o.Notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if o.Items, err = decodeItems(items); err != nil {
		return nil, err
	}
	o.CustomerID, o.VendorID, o.QuotationID = deref(customerID), deref(vendorID), deref(quotationID)
	o.Status = entity.PurchaseOrderStatus(status)
	return &o, nil
}
