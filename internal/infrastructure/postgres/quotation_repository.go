package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
)

var _ repository.QuotationRepository = (*QuotationRepo)(nil)

const quotationColumns = `id, number, customer_id, date, valid_until, items, subtotal, tax_rate, tax_amount, total,
	status, terms, notes, created_at, updated_at`

// QuotationRepo cotizaciones. Las líneas se guardan como JSONB.
type QuotationRepo struct {
	q Querier
}

func NewQuotationRepository(q Querier) *QuotationRepo {
	return &QuotationRepo{q: q}
}

func (r *QuotationRepo) Create(ctx context.Context, qt *entity.Quotation) error {
	items, err := encodeItems(qt.Items)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO quotations (`+quotationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		qt.ID, qt.Number, qt.CustomerID, qt.Date, nullTime(qt.ValidUntil), items,
		qt.Subtotal, qt.TaxRate, qt.TaxAmount, qt.Total,
		string(qt.Status), qt.Terms, qt.Notes, qt.CreatedAt, qt.UpdatedAt)
	return insertErr(entity.KindQuotation, err)
}

func (r *QuotationRepo) GetByID(ctx context.Context, id string) (*entity.Quotation, error) {
	return one(r.q.QueryRow(ctx, `SELECT `+quotationColumns+` FROM quotations WHERE id = $1`, id), scanQuotation)
}

// List con AsOf el filtro de estado compara contra el estado efectivo (sent vencida = expired).
func (r *QuotationRepo) List(ctx context.Context, f repository.Filter) ([]*entity.Quotation, error) {
	var w where
	w.eq("customer_id", f.CustomerID)
	if f.Status != "" {
		if f.AsOf != nil {
			w.add(effectiveQuotationStatus(w.arg(*f.AsOf)) + " = " + w.arg(f.Status))
		} else {
			w.eq("status", f.Status)
		}
	}
	q := `SELECT ` + quotationColumns + ` FROM quotations` + w.sql()
	q += w.page(f)
	rows, err := r.q.Query(ctx, q, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list quotations: %w", err)
	}
	return collect(rows, scanQuotation)
}

func (r *QuotationRepo) Update(ctx context.Context, qt *entity.Quotation, expected time.Time) error {
	qt.UpdatedAt = repository.NextVersion(qt.UpdatedAt, expected)
	items, err := encodeItems(qt.Items)
	if err != nil {
		return err
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE quotations SET number = $2, customer_id = $3, date = $4, valid_until = $5, items = $6,
			subtotal = $7, tax_rate = $8, tax_amount = $9, total = $10, status = $11, terms = $12,
			notes = $13, updated_at = $14
		WHERE id = $1 AND updated_at = $15`,
		qt.ID, qt.Number, qt.CustomerID, qt.Date, nullTime(qt.ValidUntil), items,
		qt.Subtotal, qt.TaxRate, qt.TaxAmount, qt.Total, string(qt.Status), qt.Terms,
		qt.Notes, qt.UpdatedAt, expected)
	return casErr(entity.KindQuotation, qt.ID, tag, err)
}

func (r *QuotationRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM quotations WHERE id = $1`, id)
	return deleteErr(entity.KindQuotation, id, tag, err)
}

func effectiveQuotationStatus(asOf string) string {
	return `(CASE WHEN status = 'sent' AND valid_until IS NOT NULL AND valid_until < ` + asOf +
		` THEN 'expired' ELSE status END)`
}

func scanQuotation(row pgx.Row) (*entity.Quotation, error) {
	var (
		qt         entity.Quotation
		validUntil *time.Time
		items      []byte
		status     string
	)
	if err := row.Scan(&qt.ID, &qt.Number, &qt.CustomerID, &qt.Date, &validUntil, &items,
		&qt.Subtotal, &qt.TaxRate, &qt.TaxAmount, &qt.Total,
		&status, &qt.Terms, &qt.Notes, &qt.CreatedAt, &qt.UpdatedAt); err != nil {
		return nil, err
	}
	var err error
	if qt.Items, err = decodeItems(items); err != nil {
		return nil, err
	}
	qt.ValidUntil = derefTime(validUntil)
	qt.Status = entity.QuotationStatus(status)
	return &qt, nil
}
