package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
)

var (
	_ repository.ProjectRepository        = (*ProjectRepo)(nil)
	_ repository.UsageEntryRepository     = (*UsageEntryRepo)(nil)
	_ repository.MonthlyInvoiceRepository = (*MonthlyInvoiceRepo)(nil)
)

const projectColumns = `id, number, quotation_id, customer_id, title, start_date, end_date, billing_type,
	hourly_rate, daily_rate, fixed_amount, po_received, assigned_vehicle_ids, status, terms, notes,
	created_at, updated_at`

type ProjectRepo struct {
	q Querier
}

func NewProjectRepository(q Querier) *ProjectRepo {
	return &ProjectRepo{q: q}
}

func (r *ProjectRepo) Create(ctx context.Context, p *entity.Project) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		p.ID, p.Number, p.QuotationID, p.CustomerID, p.Title, p.StartDate, p.EndDate, string(p.BillingType),
		p.HourlyRate, p.DailyRate, p.FixedAmount, p.POReceived, vehicleIDs(p.AssignedVehicleIDs),
		string(p.Status), p.Terms, p.Notes, p.CreatedAt, p.UpdatedAt)
	return insertErr(entity.KindProject, err)
}

func (r *ProjectRepo) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	return one(r.q.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id), scanProject)
}

func (r *ProjectRepo) List(ctx context.Context, f repository.Filter) ([]*entity.Project, error) {
	var w where
	w.eq("status", f.Status)
	w.eq("customer_id", f.CustomerID)
	w.eq("quotation_id", f.QuotationID)
	q := `SELECT ` + projectColumns + ` FROM projects` + w.sql()
	q += w.page(f)
	rows, err := r.q.Query(ctx, q, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return collect(rows, scanProject)
}

func (r *ProjectRepo) Update(ctx context.Context, p *entity.Project, expected time.Time) error {
	p.UpdatedAt = repository.NextVersion(p.UpdatedAt, expected)
	tag, err := r.q.Exec(ctx, `
		UPDATE projects SET title = $2, start_date = $3, end_date = $4, billing_type = $5, hourly_rate = $6,
			daily_rate = $7, fixed_amount = $8, po_received = $9, assigned_vehicle_ids = $10, status = $11,
			terms = $12, notes = $13, updated_at = $14
		WHERE id = $1 AND updated_at = $15`,
		p.ID, p.Title, p.StartDate, p.EndDate, string(p.BillingType), p.HourlyRate,
		p.DailyRate, p.FixedAmount, p.POReceived, vehicleIDs(p.AssignedVehicleIDs), string(p.Status),
		p.Terms, p.Notes, p.UpdatedAt, expected)
	return casErr(entity.KindProject, p.ID, tag, err)
}

func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return deleteErr(entity.KindProject, id, tag, err)
}

// text[] NOT NULL: nil se guarda como arreglo vacío.
func vehicleIDs(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}

func scanProject(row pgx.Row) (*entity.Project, error) {
	var (
		p                   entity.Project
		billingType, status string
	)
	if err := row.Scan(&p.ID, &p.Number, &p.QuotationID, &p.CustomerID, &p.Title, &p.StartDate, &p.EndDate,
		&billingType, &p.HourlyRate, &p.DailyRate, &p.FixedAmount, &p.POReceived, &p.AssignedVehicleIDs,
		&status, &p.Terms, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.BillingType = entity.BillingType(billingType)
	p.Status = entity.ProjectStatus(status)
	return &p, nil
}

const usageColumns = `id, project_id, vehicle_id, date, hours, days, description, location, rate, total,
	invoiced, invoice_id, created_at, updated_at`

// UsageEntryRepo registros de uso. invoice_id es la factura mensual que los consumió.
type UsageEntryRepo struct {
	q Querier
}

func NewUsageEntryRepository(q Querier) *UsageEntryRepo {
	return &UsageEntryRepo{q: q}
}

func (r *UsageEntryRepo) Create(ctx context.Context, e *entity.UsageEntry) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO usage_entries (`+usageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		e.ID, e.ProjectID, e.VehicleID, e.Date, e.Hours, e.Days, e.Description, e.Location, e.Rate, e.Total,
		e.Invoiced, nullIfEmpty(e.InvoiceID), e.CreatedAt, e.UpdatedAt)
	return insertErr(entity.KindUsageEntry, err)
}

func (r *UsageEntryRepo) GetByID(ctx context.Context, id string) (*entity.UsageEntry, error) {
	return one(r.q.QueryRow(ctx, `SELECT `+usageColumns+` FROM usage_entries WHERE id = $1`, id), scanUsageEntry)
}

func (r *UsageEntryRepo) List(ctx context.Context, f repository.Filter) ([]*entity.UsageEntry, error) {
	var w where
	w.eq("project_id", f.ProjectID)
	w.eq("invoice_id", f.InvoiceID)
	switch f.Status {
	case repository.UsageInvoiced:
		w.add("invoiced")
	case repository.UsagePending:
		w.add("NOT invoiced")
	}
	q := `SELECT ` + usageColumns + ` FROM usage_entries` + w.sql()
	q += w.page(f)
	rows, err := r.q.Query(ctx, q, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list usage entries: %w", err)
	}
	return collect(rows, scanUsageEntry)
}

func (r *UsageEntryRepo) Update(ctx context.Context, e *entity.UsageEntry, expected time.Time) error {
	e.UpdatedAt = repository.NextVersion(e.UpdatedAt, expected)
	tag, err := r.q.Exec(ctx, `
		UPDATE usage_entries SET vehicle_id = $2, date = $3, hours = $4, days = $5, description = $6,
			location = $7, rate = $8, total = $9, invoiced = $10, invoice_id = $11, updated_at = $12
		WHERE id = $1 AND updated_at = $13`,
		e.ID, e.VehicleID, e.Date, e.Hours, e.Days, e.Description,
		e.Location, e.Rate, e.Total, e.Invoiced, nullIfEmpty(e.InvoiceID), e.UpdatedAt, expected)
	return casErr(entity.KindUsageEntry, e.ID, tag, err)
}

// Delete solo borra consumos no facturados; uno facturado es conflicto.
func (r *UsageEntryRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM usage_entries WHERE id = $1 AND NOT invoiced`, id)
	if err != nil {
		return fmt.Errorf("delete usage entry: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	var invoiced bool
	if err := r.q.QueryRow(ctx, `SELECT invoiced FROM usage_entries WHERE id = $1`, id).Scan(&invoiced); err != nil {
		return repository.NotFound(entity.KindUsageEntry, id)
	}
	return fmt.Errorf("%w: el consumo %s ya fue facturado", domain.ErrConflict, id)
}

// ListUninvoiced bloquea las filas devueltas hasta el fin de la transacción.
func (r *UsageEntryRepo) ListUninvoiced(ctx context.Context, projectID string, from, to time.Time) ([]*entity.UsageEntry, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+usageColumns+` FROM usage_entries
		WHERE project_id = $1 AND NOT invoiced AND date >= $2 AND date < $3
		ORDER BY date, created_at
		FOR UPDATE`, projectID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list uninvoiced usage: %w", err)
	}
	return collect(rows, scanUsageEntry)
}

// MarkInvoiced devuelve cuántas filas marcó; el caso de uso aborta la transacción si no son todas.
func (r *UsageEntryRepo) MarkInvoiced(ctx context.Context, ids []string, monthlyInvoiceID string, now time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE usage_entries SET invoiced = TRUE, invoice_id = $2, updated_at = $3
		WHERE id = ANY($1) AND NOT invoiced`, ids, monthlyInvoiceID, now)
	if err != nil {
		return 0, fmt.Errorf("mark usage invoiced: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanUsageEntry(row pgx.Row) (*entity.UsageEntry, error) {
	var (
		e         entity.UsageEntry
		invoiceID *string
	)
	if err := row.Scan(&e.ID, &e.ProjectID, &e.VehicleID, &e.Date, &e.Hours, &e.Days, &e.Description,
		&e.Location, &e.Rate, &e.Total, &e.Invoiced, &invoiceID, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Date = e.Date.UTC()
	e.InvoiceID = deref(invoiceID)
	return &e, nil
}

const monthlyColumns = `id, number, project_id, customer_id, month, year, usage_entry_ids, total_hours, total_days,
	subtotal, tax_rate, tax_amount, total, status, date, due_date, paid_amount, notes, created_at, updated_at`

type MonthlyInvoiceRepo struct {
	q Querier
}

func NewMonthlyInvoiceRepository(q Querier) *MonthlyInvoiceRepo {
	return &MonthlyInvoiceRepo{q: q}
}

func (r *MonthlyInvoiceRepo) Create(ctx context.Context, m *entity.MonthlyInvoice) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO monthly_invoices (`+monthlyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		m.ID, m.Number, m.ProjectID, m.CustomerID, m.Month, m.Year, m.UsageEntryIDs, m.TotalHours, m.TotalDays,
		m.Subtotal, m.TaxRate, m.TaxAmount, m.Total, string(m.Status), m.Date, nullTime(m.DueDate),
		m.PaidAmount, m.Notes, m.CreatedAt, m.UpdatedAt)
	return insertErr(entity.KindMonthlyInvoice, err)
}

func (r *MonthlyInvoiceRepo) GetByID(ctx context.Context, id string) (*entity.MonthlyInvoice, error) {
	return one(r.q.QueryRow(ctx, `SELECT `+monthlyColumns+` FROM monthly_invoices WHERE id = $1`, id), scanMonthlyInvoice)
}

func (r *MonthlyInvoiceRepo) List(ctx context.Context, f repository.Filter) ([]*entity.MonthlyInvoice, error) {
	var w where
	w.eq("customer_id", f.CustomerID)
	w.eq("project_id", f.ProjectID)
	statusFilter(&w, f)
	q := `SELECT ` + monthlyColumns + ` FROM monthly_invoices` + w.sql()
	q += w.page(f)
	rows, err := r.q.Query(ctx, q, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list monthly invoices: %w", err)
	}
	return collect(rows, scanMonthlyInvoice)
}

// Update el periodo y los consumos agregados no cambian tras la creación.
func (r *MonthlyInvoiceRepo) Update(ctx context.Context, m *entity.MonthlyInvoice, expected time.Time) error {
	m.UpdatedAt = repository.NextVersion(m.UpdatedAt, expected)
	tag, err := r.q.Exec(ctx, `
		UPDATE monthly_invoices SET status = $2, due_date = $3, paid_amount = $4, notes = $5, updated_at = $6
		WHERE id = $1 AND updated_at = $7`,
		m.ID, string(m.Status), nullTime(m.DueDate), m.PaidAmount, m.Notes, m.UpdatedAt, expected)
	return casErr(entity.KindMonthlyInvoice, m.ID, tag, err)
}

func (r *MonthlyInvoiceRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM monthly_invoices WHERE id = $1`, id)
	return deleteErr(entity.KindMonthlyInvoice, id, tag, err)
}

func scanMonthlyInvoice(row pgx.Row) (*entity.MonthlyInvoice, error) {
	var (
		m       entity.MonthlyInvoice
		dueDate *time.Time
		status  string
	)
	if err := row.Scan(&m.ID, &m.Number, &m.ProjectID, &m.CustomerID, &m.Month, &m.Year, &m.UsageEntryIDs,
		&m.TotalHours, &m.TotalDays, &m.Subtotal, &m.TaxRate, &m.TaxAmount, &m.Total, &status,
		&m.Date, &dueDate, &m.PaidAmount, &m.Notes, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.DueDate = derefTime(dueDate)
	m.Status = entity.InvoiceStatus(status)
	return &m, nil
}
