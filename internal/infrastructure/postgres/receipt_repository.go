package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
)

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

const receiptColumns = `id, number, invoice_id, invoice_kind, customer_id, date, payment_date, amount,
	payment_method, reference_number, status, created_at, updated_at`

// ReceiptRepo recibos. invoice_id apunta a invoices o monthly_invoices según invoice_kind.
type ReceiptRepo struct {
	q Querier
}

func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

func (r *ReceiptRepo) Create(ctx context.Context, rc *entity.Receipt) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO receipts (`+receiptColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rc.ID, rc.Number, rc.InvoiceID, string(rc.InvoiceKind), rc.CustomerID, rc.Date, rc.PaymentDate,
		rc.Amount, rc.PaymentMethod, rc.ReferenceNumber, string(rc.Status), rc.CreatedAt, rc.UpdatedAt)
	return insertErr(entity.KindReceipt, err)
}

func (r *ReceiptRepo) GetByID(ctx context.Context, id string) (*entity.Receipt, error) {
	return one(r.q.QueryRow(ctx, `SELECT `+receiptColumns+` FROM receipts WHERE id = $1`, id), scanReceipt)
}

func (r *ReceiptRepo) List(ctx context.Context, f repository.Filter) ([]*entity.Receipt, error) {
	var w where
	w.eq("status", f.Status)
	w.eq("customer_id", f.CustomerID)
	w.eq("invoice_id", f.InvoiceID)
	q := `SELECT ` + receiptColumns + ` FROM receipts` + w.sql()
	q += w.page(f)
	rows, err := r.q.Query(ctx, q, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	return collect(rows, scanReceipt)
}

func (r *ReceiptRepo) Update(ctx context.Context, rc *entity.Receipt, expected time.Time) error {
	rc.UpdatedAt = repository.NextVersion(rc.UpdatedAt, expected)
	tag, err := r.q.Exec(ctx, `
		UPDATE receipts SET number = $2, date = $3, payment_date = $4, amount = $5, payment_method = $6,
			reference_number = $7, status = $8, updated_at = $9
		WHERE id = $1 AND updated_at = $10`,
		rc.ID, rc.Number, rc.Date, rc.PaymentDate, rc.Amount, rc.PaymentMethod,
		rc.ReferenceNumber, string(rc.Status), rc.UpdatedAt, expected)
	return casErr(entity.KindReceipt, rc.ID, tag, err)
}

func (r *ReceiptRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM receipts WHERE id = $1`, id)
	return deleteErr(entity.KindReceipt, id, tag, err)
}

func scanReceipt(row pgx.Row) (*entity.Receipt, error) {
	var (
		rc           entity.Receipt
		kind, status string
	)
	if err := row.Scan(&rc.ID, &rc.Number, &rc.InvoiceID, &kind, &rc.CustomerID, &rc.Date, &rc.PaymentDate,
		&rc.Amount, &rc.PaymentMethod, &rc.ReferenceNumber, &status, &rc.CreatedAt, &rc.UpdatedAt); err != nil {
		return nil, err
	}
	rc.InvoiceKind = entity.Kind(kind)
	rc.Status = entity.ReceiptStatus(status)
	return &rc, nil
}
