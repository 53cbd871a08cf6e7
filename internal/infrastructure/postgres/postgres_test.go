package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
	"github.com/jhoicas/flota-crm-api/internal/infrastructure/postgres"
	"github.com/jhoicas/flota-crm-api/pkg/config"
	"github.com/jhoicas/flota-crm-api/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requiere una base desechable: TEST_DATABASE_URL=postgres://... go test ./internal/infrastructure/postgres/
func setup(t *testing.T) (*postgres.TxRunner, repository.Repositories) {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL no definido")
	}
	m, err := postgres.NewMigrator(url, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: url})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return postgres.NewTxRunner(pool), postgres.NewRepositories(pool)
}

func now() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

func seedCustomer(t *testing.T, repos repository.Repositories) *entity.Customer {
	t.Helper()
	ts := now()
	c := &entity.Customer{ID: uuid.NewString(), Name: "Transportes Andinos", TaxID: uuid.NewString(), CreatedAt: ts, UpdatedAt: ts}
	require.NoError(t, repos.Customers.Create(context.Background(), c))
	return c
}

func TestInvoiceRoundTripAndCompareAndSwap(t *testing.T) {
	_, repos := setup(t)
	ctx := context.Background()
	c := seedCustomer(t, repos)
	ts := now()

	inv := &entity.Invoice{
		ID: uuid.NewString(), Number: "INV-" + uuid.NewString()[:8], CustomerID: c.ID,
		Date: ts, DueDate: ts.Add(-time.Hour),
		Items: []entity.LineItem{{
			Description: "Grúa 30t", Quantity: decimal.NewFromInt(2),
			UnitPrice: decimal.NewFromInt(350), TaxPercent: decimal.Zero,
		}},
		Status: entity.InvoiceSent, CreatedAt: ts, UpdatedAt: ts,
	}
	require.NoError(t, inv.Recalculate())
	require.NoError(t, repos.Invoices.Create(ctx, inv))

	got, err := repos.Invoices.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(700)))
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Grúa 30t", got.Items[0].Description)

	overdue, err := repos.Invoices.List(ctx, repository.Filter{CustomerID: c.ID, Status: "overdue", AsOf: &ts})
	require.NoError(t, err)
	assert.Len(t, overdue, 1)

	stale := got.UpdatedAt
	got.PaidAmount = decimal.NewFromInt(100)
	got.UpdatedAt = ts.Add(time.Second)
	require.NoError(t, repos.Invoices.Update(ctx, got, stale))
	err = repos.Invoices.Update(ctx, got, stale)
	assert.ErrorIs(t, err, domain.ErrConflict)

	dup := *inv
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, repos.Invoices.Create(ctx, &dup), domain.ErrDuplicate)

	missing, err := repos.Invoices.GetByID(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMarkInvoicedInsideExclusiveTransaction(t *testing.T) {
	tx, repos := setup(t)
	ctx := context.Background()
	c := seedCustomer(t, repos)
	ts := now()

	q := &entity.Quotation{
		ID: uuid.NewString(), Number: "Q-" + uuid.NewString()[:8], CustomerID: c.ID, Date: ts,
		Items:  []entity.LineItem{{Description: "x", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)}},
		Status: entity.QuotationAccepted, CreatedAt: ts, UpdatedAt: ts,
	}
	require.NoError(t, q.Recalculate())
	require.NoError(t, repos.Quotations.Create(ctx, q))
	v := &entity.Vehicle{ID: uuid.NewString(), PlateNumber: uuid.NewString()[:10], Status: entity.VehicleAvailable, CreatedAt: ts, UpdatedAt: ts}
	require.NoError(t, repos.Vehicles.Create(ctx, v))
	p := &entity.Project{
		ID: uuid.NewString(), Number: "P-" + uuid.NewString()[:8], QuotationID: q.ID, CustomerID: c.ID,
		Title: "Obra", StartDate: ts, BillingType: entity.BillingHours, HourlyRate: decimal.NewFromInt(50),
		Status: entity.ProjectActive, CreatedAt: ts, UpdatedAt: ts,
	}
	require.NoError(t, repos.Projects.Create(ctx, p))

	hours := decimal.NewFromInt(3)
	e := &entity.UsageEntry{
		ID: uuid.NewString(), ProjectID: p.ID, VehicleID: v.ID, Date: ts, Hours: &hours,
		Rate: decimal.NewFromInt(50), Total: decimal.NewFromInt(150), CreatedAt: ts, UpdatedAt: ts,
	}
	require.NoError(t, repos.UsageEntries.Create(ctx, e))

	m := &entity.MonthlyInvoice{
		ID: uuid.NewString(), Number: "MI-" + uuid.NewString()[:8], ProjectID: p.ID, CustomerID: c.ID,
		Month: int(ts.Month()), Year: ts.Year(), UsageEntryIDs: []string{e.ID}, TotalHours: &hours,
		Subtotal: decimal.NewFromInt(150), TaxAmount: decimal.Zero, Total: decimal.NewFromInt(150),
		Status: entity.InvoiceDraft, Date: ts, CreatedAt: ts, UpdatedAt: ts,
	}
	err := tx.RunExclusive(ctx, "monthly:"+p.ID, func(r repository.Repositories) error {
		pending, err := r.UsageEntries.ListUninvoiced(ctx, p.ID, ts.Add(-time.Hour), ts.Add(time.Hour))
		if err != nil {
			return err
		}
		require.Len(t, pending, 1)
		if err := r.MonthlyInvoices.Create(ctx, m); err != nil {
			return err
		}
		n, err := r.UsageEntries.MarkInvoiced(ctx, []string{e.ID}, m.ID, ts)
		if err != nil {
			return err
		}
		assert.EqualValues(t, 1, n)
		return nil
	})
	require.NoError(t, err)

	got, err := repos.UsageEntries.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.True(t, got.Invoiced)
	assert.Equal(t, m.ID, got.InvoiceID)
	assert.ErrorIs(t, repos.UsageEntries.Delete(ctx, e.ID), domain.ErrConflict)

	n, err := repos.UsageEntries.MarkInvoiced(ctx, []string{e.ID}, m.ID, ts)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReferenciaRotaEsConflicto(t *testing.T) {
	_, repos := setup(t)
	ctx := context.Background()
	c := seedCustomer(t, repos)
	ts := now()

	orphan := &entity.Invoice{
		ID: uuid.NewString(), Number: "INV-" + uuid.NewString()[:8], CustomerID: uuid.NewString(),
		Date: ts, Status: entity.InvoiceDraft, CreatedAt: ts, UpdatedAt: ts,
	}
	assert.ErrorIs(t, repos.Invoices.Create(ctx, orphan), domain.ErrConflict)

	q := &entity.Quotation{
		ID: uuid.NewString(), Number: "Q-" + uuid.NewString()[:8], CustomerID: c.ID, Date: ts,
		Items:  []entity.LineItem{{Description: "x", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)}},
		Status: entity.QuotationAccepted, CreatedAt: ts, UpdatedAt: ts,
	}
	require.NoError(t, q.Recalculate())
	require.NoError(t, repos.Quotations.Create(ctx, q))
	inv := &entity.Invoice{
		ID: uuid.NewString(), Number: "INV-" + uuid.NewString()[:8], CustomerID: c.ID, QuotationID: q.ID,
		Date: ts, Status: entity.InvoiceDraft, CreatedAt: ts, UpdatedAt: ts,
	}
	require.NoError(t, repos.Invoices.Create(ctx, inv))

	assert.ErrorIs(t, repos.Quotations.Delete(ctx, q.ID), domain.ErrConflict)

	inv.QuotationID = uuid.NewString()
	assert.ErrorIs(t, repos.Invoices.Update(ctx, inv, inv.UpdatedAt), domain.ErrConflict)
}

func TestUpdate_VersionAvanzaSinRelojNuevo(t *testing.T) {
	_, repos := setup(t)
	ctx := context.Background()
	c := seedCustomer(t, repos)
	ts := now()

	inv := &entity.Invoice{
		ID: uuid.NewString(), Number: "INV-" + uuid.NewString()[:8], CustomerID: c.ID,
		Date: ts, Status: entity.InvoiceSent, Total: decimal.NewFromInt(500), CreatedAt: ts, UpdatedAt: ts,
	}
	require.NoError(t, repos.Invoices.Create(ctx, inv))
	a, err := repos.Invoices.GetByID(ctx, inv.ID)
	require.NoError(t, err)
	b, err := repos.Invoices.GetByID(ctx, inv.ID)
	require.NoError(t, err)

	a.PaidAmount = decimal.NewFromInt(100)
	require.NoError(t, repos.Invoices.Update(ctx, a, ts))
	b.PaidAmount = decimal.NewFromInt(200)
	assert.ErrorIs(t, repos.Invoices.Update(ctx, b, ts), domain.ErrConflict)
}
