package projects_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/flota-crm-api/internal/application/billing"
	"github.com/jhoicas/flota-crm-api/internal/application/dto"
	"github.com/jhoicas/flota-crm-api/internal/application/ports"
	"github.com/jhoicas/flota-crm-api/internal/application/projects"
	"github.com/jhoicas/flota-crm-api/internal/application/usecase"
	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
	"github.com/jhoicas/flota-crm-api/internal/infrastructure/memory"
	"github.com/jhoicas/flota-crm-api/pkg/logger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

var fixed = time.Date(2024, 4, 2, 8, 0, 0, 0, time.UTC)

type env struct {
	ctx      context.Context
	repos    repository.Repositories
	projects *projects.ProjectUseCase
	usage    *projects.UsageUseCase
	monthly  *projects.MonthlyInvoiceUseCase
	receipts *billing.ReceiptUseCase
}

func newEnv(t *testing.T, tx func(*memory.Store) ports.TxRunner) *env {
	t.Helper()
	store := memory.NewStore()
	runner := tx(store)
	repos := store.Repositories()
	clock := ports.Clock(func() time.Time { return fixed })
	perms := usecase.NewPermissionService(nil, nil)
	settings := projects.Settings{DefaultTaxRate: d("5"), PaymentTermDays: 15, PaidStatusPolicy: entity.PaidStatusDerived}
	return &env{
		ctx:      ports.WithActor(context.Background(), ports.Actor{UserID: "u1", Role: entity.RoleAdmin}),
		repos:    repos,
		projects: projects.NewProjectUseCase(repos, perms, clock),
		usage:    projects.NewUsageUseCase(repos, perms, clock),
		monthly:  projects.NewMonthlyInvoiceUseCase(repos, runner, perms, clock, settings, logger.Nop()),
		receipts: billing.NewReceiptUseCase(repos, runner, perms, clock,
			billing.Settings{PaidStatusPolicy: entity.PaidStatusDerived}, logger.Nop()),
	}
}

func memoryTx(s *memory.Store) ports.TxRunner { return memory.NewTxRunner(s) }

// seed deja una cotización aceptada, un vehículo y un proyecto por horas a 50.
func (e *env) seed(t *testing.T) *dto.ProjectResponse {
	t.Helper()
	ctx := e.ctx
	require.NoError(t, e.repos.Customers.Create(ctx, &entity.Customer{ID: "c1", Name: "Minera Sur", TaxID: "800"}))
	require.NoError(t, e.repos.Vehicles.Create(ctx, &entity.Vehicle{ID: "veh1", PlateNumber: "ABC123", Status: entity.VehicleAvailable}))
	q := &entity.Quotation{
		ID: "q1", Number: "QUO-1", CustomerID: "c1", Date: fixed,
		Items:  []entity.LineItem{{Description: "Alquiler", Quantity: d("10"), UnitPrice: d("50")}},
		Status: entity.QuotationAccepted, CreatedAt: fixed, UpdatedAt: fixed,
	}
	require.NoError(t, q.Recalculate())
	require.NoError(t, e.repos.Quotations.Create(ctx, q))

	p, err := e.projects.Create(ctx, dto.CreateProjectRequest{
		QuotationID: "q1", Number: "PRJ-1", Title: "Obra norte",
		BillingType: "hours", HourlyRate: d("50"), AssignedVehicleIDs: []string{"veh1"},
	})
	require.NoError(t, err)
	return p
}

func (e *env) record(t *testing.T, projectID string, day int, hours string) *dto.UsageEntryResponse {
	t.Helper()
	u, err := e.usage.Record(e.ctx, projectID, dto.RecordUsageRequest{
		VehicleID: "veh1", Date: time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC), Hours: dp(hours),
	})
	require.NoError(t, err)
	return u
}

func TestAgregacionMensual_Escenario(t *testing.T) {
	e := newEnv(t, memoryTx)
	p := e.seed(t)
	assert.Equal(t, "c1", p.CustomerID)
	assert.Equal(t, "active", p.Status)

	e.record(t, p.ID, 3, "2")
	e.record(t, p.ID, 15, "3")
	last := e.record(t, p.ID, 31, "5")
	assert.True(t, d("250").Equal(last.Total))

	m, err := e.monthly.Aggregate(e.ctx, p.ID, dto.AggregateMonthRequest{Month: 3, Year: 2024, Number: "MINV-2024-03"})
	require.NoError(t, err)
	require.NotNil(t, m.TotalHours)
	assert.True(t, d("10").Equal(*m.TotalHours))
	assert.True(t, d("500").Equal(m.Subtotal))
	assert.True(t, d("25").Equal(m.TaxAmount))
	assert.True(t, d("525").Equal(m.Total))
	assert.Equal(t, "draft", m.Status)
	assert.Len(t, m.UsageEntryIDs, 3)
	assert.Equal(t, fixed.AddDate(0, 0, 15), m.DueDate)

	invoiced, err := e.usage.List(e.ctx, p.ID, repository.UsageInvoiced, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, invoiced.Items, 3)
	for _, u := range invoiced.Items {
		assert.Equal(t, m.ID, u.InvoiceID)
	}

	_, err = e.monthly.Aggregate(e.ctx, p.ID, dto.AggregateMonthRequest{Month: 3, Year: 2024, Number: "MINV-2024-03b"})
	assert.ErrorIs(t, err, domain.ErrNothingToInvoice)

	_, err = e.usage.Update(e.ctx, last.ID, dto.RecordUsageRequest{VehicleID: "veh1", Date: last.Date, Hours: dp("1")})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, e.usage.Delete(e.ctx, last.ID), domain.ErrConflict)
	assert.ErrorIs(t, e.projects.Delete(e.ctx, p.ID), domain.ErrConflict)
	assert.ErrorIs(t, e.monthly.Delete(e.ctx, m.ID), domain.ErrConflict)
}

func TestAgregacionMensual_PagoDeFacturaMensual(t *testing.T) {
	e := newEnv(t, memoryTx)
	p := e.seed(t)
	e.record(t, p.ID, 3, "2")
	m, err := e.monthly.Aggregate(e.ctx, p.ID, dto.AggregateMonthRequest{Month: 3, Year: 2024, Number: "MINV-1", TaxRate: dp("0")})
	require.NoError(t, err)
	assert.True(t, d("100").Equal(m.Total))

	_, err = e.monthly.Transition(e.ctx, m.ID, dto.TransitionRequest{Status: "cancelled"})
	assert.ErrorIs(t, err, domain.ErrInvalidState, "la factura mensual no se anula")
	_, err = e.monthly.Transition(e.ctx, m.ID, dto.TransitionRequest{Status: "sent"})
	require.NoError(t, err)

	r, err := e.receipts.Create(e.ctx, dto.CreateReceiptRequest{
		Number: "REC-1", InvoiceID: m.ID, InvoiceKind: string(entity.KindMonthlyInvoice),
		Amount: d("100"), PaymentMethod: entity.PaymentCash,
	})
	require.NoError(t, err)
	assert.Equal(t, "paid", r.InvoiceStatus)
	assert.Equal(t, string(entity.KindMonthlyInvoice), r.InvoiceKind)
}

func TestAgregacionMensual_Concurrente(t *testing.T) {
	e := newEnv(t, memoryTx)
	p := e.seed(t)
	for day := 1; day <= 10; day++ {
		e.record(t, p.ID, day, "1")
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.monthly.Aggregate(e.ctx, p.ID, dto.AggregateMonthRequest{
				Month: 3, Year: 2024, Number: "MINV-" + string(rune('A'+i)),
			})
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrNothingToInvoice)
	}
	assert.Equal(t, 1, ok)

	list, err := e.monthly.List(e.ctx, repository.Filter{ProjectID: p.ID}, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Len(t, list.Items[0].UsageEntryIDs, 10)
}

// racingUsage simula que otro proceso facturó los consumos entre la selección y el marcado.
type racingUsage struct {
	repository.UsageEntryRepository
}

func (racingUsage) MarkInvoiced(context.Context, []string, string, time.Time) (int64, error) {
	return 0, nil
}

type racingTx struct{ inner ports.TxRunner }

func (r racingTx) Run(ctx context.Context, fn func(repository.Repositories) error) error {
	return r.inner.Run(ctx, fn)
}

func (r racingTx) RunExclusive(ctx context.Context, key string, fn func(repository.Repositories) error) error {
	return r.inner.RunExclusive(ctx, key, func(repos repository.Repositories) error {
		repos.UsageEntries = racingUsage{repos.UsageEntries}
		return fn(repos)
	})
}

func TestAgregacionMensual_CompensaSiElMarcadoNoCoincide(t *testing.T) {
	e := newEnv(t, func(s *memory.Store) ports.TxRunner { return racingTx{memory.NewTxRunner(s)} })
	p := e.seed(t)
	e.record(t, p.ID, 3, "2")

	_, err := e.monthly.Aggregate(e.ctx, p.ID, dto.AggregateMonthRequest{Month: 3, Year: 2024, Number: "MINV-1"})
	assert.ErrorIs(t, err, domain.ErrConflict)

	list, err := e.monthly.List(e.ctx, repository.Filter{ProjectID: p.ID}, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items, "la factura mensual creada se elimina")

	pending, err := e.usage.List(e.ctx, p.ID, repository.UsagePending, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, pending.Items, 1)
}

func TestProyecto_Reglas(t *testing.T) {
	e := newEnv(t, memoryTx)
	p := e.seed(t)

	_, err := e.projects.Create(e.ctx, dto.CreateProjectRequest{
		QuotationID: "q1", Number: "PRJ-2", Title: "x", BillingType: "hours", HourlyRate: d("10"),
		AssignedVehicleIDs: []string{"no-existe"},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = e.usage.Record(e.ctx, p.ID, dto.RecordUsageRequest{VehicleID: "veh1", Date: fixed, Days: dp("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument, "un proyecto por horas no admite días")

	done, err := e.projects.Transition(e.ctx, p.ID, dto.TransitionRequest{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, "completed", done.Status)

	_, err = e.usage.Record(e.ctx, p.ID, dto.RecordUsageRequest{VehicleID: "veh1", Date: fixed, Hours: dp("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = e.projects.Update(e.ctx, p.ID, dto.UpdateProjectRequest{Notes: new(string)})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = e.projects.Transition(e.ctx, p.ID, dto.TransitionRequest{Status: "active"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestProyecto_RequiereCotizacionAceptada(t *testing.T) {
	e := newEnv(t, memoryTx)
	e.seed(t)
	q, err := e.repos.Quotations.GetByID(e.ctx, "q1")
	require.NoError(t, err)
	q.Status = entity.QuotationSent
	require.NoError(t, e.repos.Quotations.Update(e.ctx, q, q.UpdatedAt))

	_, err = e.projects.Create(e.ctx, dto.CreateProjectRequest{
		QuotationID: "q1", Number: "PRJ-3", Title: "x", BillingType: "days", DailyRate: d("300"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestConsumo_EdicionYBorrado(t *testing.T) {
	e := newEnv(t, memoryTx)
	p := e.seed(t)
	u := e.record(t, p.ID, 4, "2")

	u2, err := e.usage.Update(e.ctx, u.ID, dto.RecordUsageRequest{
		VehicleID: "veh1", Date: u.Date, Hours: dp("4"), UpdatedAt: u.UpdatedAt,
	})
	require.NoError(t, err)
	assert.True(t, d("200").Equal(u2.Total))

	require.NoError(t, e.usage.Delete(e.ctx, u.ID))
	_, err = e.usage.GetByID(e.ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	require.NoError(t, e.projects.Delete(e.ctx, p.ID))
}
