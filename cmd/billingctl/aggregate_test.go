package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/flota-crm-api/internal/application/dto"
	"github.com/jhoicas/flota-crm-api/internal/application/ports"
	"github.com/jhoicas/flota-crm-api/internal/bootstrap"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
	"github.com/jhoicas/flota-crm-api/pkg/config"
	"github.com/jhoicas/flota-crm-api/pkg/logger"
)

var fixed = time.Date(2024, 4, 2, 8, 0, 0, 0, time.UTC)

func newApp(t *testing.T) (context.Context, *bootstrap.App, *dto.ProjectResponse) {
	t.Helper()
	cfg := &config.Config{
		App:     config.AppConfig{Name: "Flota CRM"},
		JWT:     config.JWTConfig{Secret: "test", Expiration: 60},
		Billing: config.BillingConfig{PaidStatusPolicy: "derived", PaymentTermDays: 15},
		Storage: config.StorageConfig{Driver: "memory"},
	}
	ctx := ports.WithActor(context.Background(), ports.Actor{UserID: "billingctl", Role: entity.RoleAdmin})
	app, err := bootstrap.New(ctx, cfg, logger.Nop(), bootstrap.Options{Clock: func() time.Time { return fixed }})
	require.NoError(t, err)
	t.Cleanup(app.Close)

	r := app.Repos
	require.NoError(t, r.Customers.Create(ctx, &entity.Customer{ID: "c1", Name: "Minera Sur", TaxID: "800"}))
	require.NoError(t, r.Vehicles.Create(ctx, &entity.Vehicle{ID: "veh1", PlateNumber: "ABC123", Status: entity.VehicleAvailable}))
	q := &entity.Quotation{
		ID: "q1", Number: "QUO-1", CustomerID: "c1", Date: fixed,
		Items:  []entity.LineItem{{Description: "Alquiler", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(50)}},
		Status: entity.QuotationAccepted, CreatedAt: fixed, UpdatedAt: fixed,
	}
	require.NoError(t, q.Recalculate())
	require.NoError(t, r.Quotations.Create(ctx, q))

	p, err := app.Deps.ProjectUC.Create(ctx, dto.CreateProjectRequest{
		QuotationID: "q1", Number: "PRJ-1", Title: "Obra norte",
		BillingType: "hours", HourlyRate: decimal.NewFromInt(50), AssignedVehicleIDs: []string{"veh1"},
	})
	require.NoError(t, err)
	return ctx, app, p
}

func recordHours(t *testing.T, ctx context.Context, app *bootstrap.App, projectID string, day int, hours int64) {
	t.Helper()
	h := decimal.NewFromInt(hours)
	_, err := app.Deps.UsageUC.Record(ctx, projectID, dto.RecordUsageRequest{
		VehicleID: "veh1", Date: time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC), Hours: &h,
	})
	require.NoError(t, err)
}

func TestAggregate_ConsumoTardioNoRepiteNumero(t *testing.T) {
	ctx, app, p := newApp(t)
	opts := aggregateOptions{Month: 3, Year: 2024, Prefix: "FM"}
	recordHours(t, ctx, app, p.ID, 3, 2)
	recordHours(t, ctx, app, p.ID, 10, 3)

	var out bytes.Buffer
	created, skipped, err := aggregateProjects(ctx, app, opts, &out, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Zero(t, skipped)
	assert.Contains(t, out.String(), "PRJ-1\tFM-202403-PRJ-1\t250.00")

	recordHours(t, ctx, app, p.ID, 28, 4)

	out.Reset()
	created, _, err = aggregateProjects(ctx, app, opts, &out, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Contains(t, out.String(), "PRJ-1\tFM-202403-PRJ-1-2\t")

	created, skipped, err = aggregateProjects(ctx, app, opts, &out, logger.Nop())
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Equal(t, 1, skipped)

	monthly, err := app.Repos.MonthlyInvoices.List(ctx, repository.Filter{ProjectID: p.ID})
	require.NoError(t, err)
	require.Len(t, monthly, 2)
	assert.NotEqual(t, monthly[0].Number, monthly[1].Number)

	pending, err := app.Deps.UsageUC.List(ctx, p.ID, repository.UsagePending, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, pending.Items)
}

func TestAggregate_NumeroOcupadoSeSalta(t *testing.T) {
	ctx, app, p := newApp(t)
	require.NoError(t, app.Repos.MonthlyInvoices.Create(ctx, &entity.MonthlyInvoice{
		ID: "manual", Number: "FM-202403-PRJ-1", ProjectID: "otro", CustomerID: "c1",
		Month: 2, Year: 2024, Status: entity.InvoiceDraft, Date: fixed, CreatedAt: fixed, UpdatedAt: fixed,
	}))
	recordHours(t, ctx, app, p.ID, 5, 1)

	var out bytes.Buffer
	created, _, err := aggregateProjects(ctx, app, aggregateOptions{Month: 3, Year: 2024, ProjectID: p.ID, Prefix: "FM"}, &out, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	assert.Contains(t, out.String(), "FM-202403-PRJ-1-2")
}

func TestMonthlyNumber(t *testing.T) {
	assert.Equal(t, "FM-202403-PRJ-1", monthlyNumber("FM", 2024, 3, "PRJ-1", 1))
	assert.Equal(t, "FM-202412-PRJ-1-3", monthlyNumber("FM", 2024, 12, "PRJ-1", 3))
}
