package usage_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/usage"
)

var now = time.Date(2024, 4, 1, 8, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func p1() *entity.Project {
	return &entity.Project{
		ID: "p1", Number: "PRJ-1", CustomerID: "c1", Title: "Obra norte",
		BillingType: entity.BillingHours, HourlyRate: d("50"), Status: entity.ProjectActive,
	}
}

func record(t *testing.T, p *entity.Project, id, hours string, day int) *entity.UsageEntry {
	t.Helper()
	e, err := usage.RecordUsage(p, entity.UsageEntry{
		ID: id, VehicleID: "veh1", Hours: ptr(hours),
		Date: time.Date(2024, 3, day, 10, 0, 0, 0, time.UTC),
	}, now)
	require.NoError(t, err)
	return e
}

func TestRecordUsage_CalculaTotal(t *testing.T) {
	e := record(t, p1(), "u1", "2.5", 4)
	assert.True(t, d("50").Equal(e.Rate))
	assert.True(t, d("125").Equal(e.Total))
	assert.Equal(t, "p1", e.ProjectID)
	assert.False(t, e.Invoiced)
}

func TestRecordUsage_UnidadIncorrecta(t *testing.T) {
	p := p1()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := usage.RecordUsage(p, entity.UsageEntry{VehicleID: "v", Date: date, Days: ptr("1")}, now)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = usage.RecordUsage(p, entity.UsageEntry{VehicleID: "v", Date: date, Hours: ptr("0")}, now)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	p.BillingType, p.DailyRate = entity.BillingDays, d("400")
	_, err = usage.RecordUsage(p, entity.UsageEntry{VehicleID: "v", Date: date, Hours: ptr("3")}, now)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	e, err := usage.RecordUsage(p, entity.UsageEntry{VehicleID: "v", Date: date, Days: ptr("2")}, now)
	require.NoError(t, err)
	assert.True(t, d("800").Equal(e.Total))
}

func TestRecordUsage_MontoFijo(t *testing.T) {
	p := &entity.Project{ID: "p", BillingType: entity.BillingFixed, FixedAmount: d("1200"), Status: entity.ProjectActive}
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	e, err := usage.RecordUsage(p, entity.UsageEntry{VehicleID: "v", Date: date}, now)
	require.NoError(t, err)
	assert.True(t, d("1200").Equal(e.Total))

	_, err = usage.RecordUsage(p, entity.UsageEntry{VehicleID: "v", Date: date, Hours: ptr("1")}, now)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestRecordUsage_ProyectoTerminal(t *testing.T) {
	for _, s := range []entity.ProjectStatus{entity.ProjectCompleted, entity.ProjectCancelled} {
		p := p1()
		p.Status = s
		_, err := usage.RecordUsage(p, entity.UsageEntry{VehicleID: "v", Date: now, Hours: ptr("1")}, now)
		assert.ErrorIs(t, err, domain.ErrInvalidState, "estado %s", s)
	}
}

func TestRecordUsage_VehiculoNoAsignado(t *testing.T) {
	p := p1()
	p.AssignedVehicleIDs = []string{"veh9"}
	_, err := usage.RecordUsage(p, entity.UsageEntry{VehicleID: "veh1", Date: now, Hours: ptr("1")}, now)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestMarkInvoiced_SegundaVezConflicto(t *testing.T) {
	e := record(t, p1(), "u1", "1", 2)
	require.NoError(t, usage.MarkInvoiced([]*entity.UsageEntry{e}, "m1", now))
	assert.True(t, e.Invoiced)
	assert.Equal(t, "m1", e.InvoiceID)

	assert.ErrorIs(t, usage.MarkInvoiced([]*entity.UsageEntry{e}, "m1", now), domain.ErrConflict)
	assert.ErrorIs(t, usage.MarkInvoiced([]*entity.UsageEntry{e}, "m2", now), domain.ErrConflict)
	assert.Equal(t, "m1", e.InvoiceID)
}

func TestMarkInvoiced_TodoONada(t *testing.T) {
	p := p1()
	a, b := record(t, p, "a", "1", 2), record(t, p, "b", "1", 3)
	b.Invoiced, b.InvoiceID = true, "old"
	assert.ErrorIs(t, usage.MarkInvoiced([]*entity.UsageEntry{a, b}, "m1", now), domain.ErrConflict)
	assert.False(t, a.Invoiced, "ningún consumo queda marcado a medias")
}

func TestReviseUsage_Facturado(t *testing.T) {
	p := p1()
	e := record(t, p, "u1", "1", 2)
	e.Invoiced, e.InvoiceID = true, "m1"
	_, err := usage.ReviseUsage(p, e, entity.UsageEntry{VehicleID: "veh1", Date: e.Date, Hours: ptr("4")}, now)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, usage.CheckDeletable(e), domain.ErrConflict)
}

// P1 a 50/h con 2+3+5 horas en marzo 2024, tasa 5 → 10h, 500, 25, 525.
func TestAggregateMonth_Escenario(t *testing.T) {
	p := p1()
	entries := []*entity.UsageEntry{
		record(t, p, "u1", "2", 3),
		record(t, p, "u2", "3", 15),
		record(t, p, "u3", "5", 31),
		record(t, p, "u4", "8", 1),
	}
	entries[3].Date = time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	m, selected, err := usage.AggregateMonth(p, 3, 2024, entries,
		usage.MonthlyDraft{ID: "m1", Number: "MINV-2024-03", TaxRate: d("5")}, now)
	require.NoError(t, err)
	require.NotNil(t, m.TotalHours)
	assert.Nil(t, m.TotalDays)
	assert.True(t, d("10").Equal(*m.TotalHours))
	assert.True(t, d("500").Equal(m.Subtotal))
	assert.True(t, d("25").Equal(m.TaxAmount))
	assert.True(t, d("525").Equal(m.Total))
	assert.Equal(t, entity.InvoiceDraft, m.Status)
	assert.ElementsMatch(t, []string{"u1", "u2", "u3"}, m.UsageEntryIDs)
	assert.Len(t, selected, 3)
	for _, e := range entries[:3] {
		assert.True(t, e.Invoiced)
		assert.Equal(t, "m1", e.InvoiceID)
	}
	assert.False(t, entries[3].Invoiced, "abril no entra en marzo")

	_, _, err = usage.AggregateMonth(p, 3, 2024, entries,
		usage.MonthlyDraft{ID: "m2", Number: "MINV-2024-03b", TaxRate: d("5")}, now)
	assert.ErrorIs(t, err, domain.ErrNothingToInvoice)
}

func TestAggregateMonth_OtroProyectoNoCuenta(t *testing.T) {
	p := p1()
	e := record(t, p, "u1", "2", 3)
	e.ProjectID = "otro"
	_, _, err := usage.AggregateMonth(p, 3, 2024, []*entity.UsageEntry{e},
		usage.MonthlyDraft{ID: "m1", Number: "M"}, now)
	assert.ErrorIs(t, err, domain.ErrNothingToInvoice)
}

func TestAggregateMonth_PeriodoInvalido(t *testing.T) {
	_, _, err := usage.AggregateMonth(p1(), 13, 2024, nil, usage.MonthlyDraft{ID: "m", Number: "M"}, now)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestPeriodBounds(t *testing.T) {
	from, to, err := usage.PeriodBounds(12, 2024)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), to)
}

func TestRecordUsage_RedondeaUnidadesAntesDelTotal(t *testing.T) {
	p := p1()
	p.HourlyRate = d("33.333")
	e := record(t, p, "u1", "1.23456", 4)

	assert.True(t, d("1.2346").Equal(*e.Hours), "se guarda con la escala de la columna")
	assert.True(t, d("33.33").Equal(e.Rate))
	assert.True(t, e.Total.Equal(e.Rate.Mul(*e.Hours).Round(2)), "total se deriva de los valores guardados")

	_, err := usage.RecordUsage(p1(), entity.UsageEntry{
		ID: "u2", VehicleID: "veh1", Hours: ptr("0.00001"),
		Date: time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC),
	}, now)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument, "por debajo de la escala queda en cero")
}
