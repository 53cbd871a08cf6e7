// Package usage calcula el costo de los consumos de un proyecto y los agrega en facturas mensuales.
// Es dominio puro: la persistencia y la atomicidad las resuelve la capa de aplicación.
package usage

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/money"
)

// RecordUsage valida el consumo contra el proyecto y calcula rate y total.
// Devuelve una copia; entry no se modifica.
func RecordUsage(p *entity.Project, entry entity.UsageEntry, now time.Time) (*entity.UsageEntry, error) {
	if p.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: el proyecto %s está %q y no admite consumos", domain.ErrInvalidState, p.Number, p.Status)
	}
	if entry.VehicleID == "" {
		return nil, fmt.Errorf("%w: vehicle_id es obligatorio", domain.ErrInvalidArgument)
	}
	if !p.HasVehicle(entry.VehicleID) {
		return nil, fmt.Errorf("%w: el vehículo %s no está asignado al proyecto", domain.ErrInvalidArgument, entry.VehicleID)
	}
	if entry.Date.IsZero() {
		return nil, fmt.Errorf("%w: date es obligatoria", domain.ErrInvalidArgument)
	}
	e := entry
	e.Hours, e.Days = roundUnits(entry.Hours), roundUnits(entry.Days)
	if err := checkUnits(p.BillingType, e.Hours, e.Days); err != nil {
		return nil, err
	}
	rate, err := p.Rate()
	if err != nil {
		return nil, err
	}
	e.ProjectID = p.ID
	e.Rate = money.Round2(rate)
	e.Total = money.Round2(rate.Mul(e.Units()))
	e.Invoiced = false
	e.InvoiceID = ""
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	return &e, nil
}

// ReviseUsage recalcula un consumo editado; un consumo facturado es inmutable.
func ReviseUsage(p *entity.Project, current *entity.UsageEntry, revised entity.UsageEntry, now time.Time) (*entity.UsageEntry, error) {
	if current.Invoiced {
		return nil, fmt.Errorf("%w: el consumo ya fue facturado en %s", domain.ErrConflict, current.InvoiceID)
	}
	revised.ID = current.ID
	revised.CreatedAt = current.CreatedAt
	return RecordUsage(p, revised, now)
}

// CheckDeletable un consumo facturado no se elimina.
func CheckDeletable(e *entity.UsageEntry) error {
	if e.Invoiced {
		return fmt.Errorf("%w: el consumo ya fue facturado en %s", domain.ErrConflict, e.InvoiceID)
	}
	return nil
}

// UnitScale decimales que se conservan en horas y días (la columna es NUMERIC(18,4)).
const UnitScale = 4

func roundUnits(v *decimal.Decimal) *decimal.Decimal {
	if v == nil {
		return nil
	}
	r := v.Round(UnitScale)
	return &r
}

func checkUnits(bt entity.BillingType, hours, days *decimal.Decimal) error {
	switch bt {
	case entity.BillingHours:
		if hours == nil || !hours.IsPositive() || days != nil {
			return fmt.Errorf("%w: un proyecto por horas requiere hours > 0 y no admite days", domain.ErrInvalidArgument)
		}
	case entity.BillingDays:
		if days == nil || !days.IsPositive() || hours != nil {
			return fmt.Errorf("%w: un proyecto por días requiere days > 0 y no admite hours", domain.ErrInvalidArgument)
		}
	case entity.BillingFixed:
		if hours != nil || days != nil {
			return fmt.Errorf("%w: un proyecto de monto fijo no admite hours ni days", domain.ErrInvalidArgument)
		}
	default:
		return fmt.Errorf("%w: modalidad de cobro %q desconocida", domain.ErrInvalidArgument, bt)
	}
	return nil
}

// MarkInvoiced marca todos los consumos como facturados por monthlyInvoiceID.
// Si alguno ya estaba facturado no marca ninguno y devuelve domain.ErrConflict.
func MarkInvoiced(entries []*entity.UsageEntry, monthlyInvoiceID string, now time.Time) error {
	if monthlyInvoiceID == "" {
		return fmt.Errorf("%w: monthly_invoice_id es obligatorio", domain.ErrInvalidArgument)
	}
	for _, e := range entries {
		if e.Invoiced {
			return fmt.Errorf("%w: el consumo %s ya fue facturado en %s", domain.ErrConflict, e.ID, e.InvoiceID)
		}
	}
	for _, e := range entries {
		e.Invoiced = true
		e.InvoiceID = monthlyInvoiceID
		e.UpdatedAt = now
	}
	return nil
}

// PeriodBounds devuelve [inicio, fin) del mes en calendario UTC.
func PeriodBounds(month, year int) (time.Time, time.Time, error) {
	if err := entity.ValidatePeriod(month, year); err != nil {
		return time.Time{}, time.Time{}, err
	}
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0), nil
}

// SelectForMonth filtra los consumos no facturados del proyecto en el mes indicado.
func SelectForMonth(projectID string, month, year int, entries []*entity.UsageEntry) []*entity.UsageEntry {
	var out []*entity.UsageEntry
	for _, e := range entries {
		if e.ProjectID == projectID && !e.Invoiced && e.InPeriod(month, year) {
			out = append(out, e)
		}
	}
	return out
}

// MonthlyDraft datos de la factura mensual que aporta el llamador.
type MonthlyDraft struct {
	ID      string
	Number  string
	Date    time.Time
	DueDate time.Time
	TaxRate decimal.Decimal
	Notes   string
}

// AggregateMonth agrega los consumos pendientes del proyecto en el mes y los marca facturados.
// Devuelve la factura mensual en borrador y los consumos seleccionados (ya marcados).
// Sin consumos pendientes devuelve domain.ErrNothingToInvoice.
func AggregateMonth(p *entity.Project, month, year int, entries []*entity.UsageEntry, draft MonthlyDraft, now time.Time) (*entity.MonthlyInvoice, []*entity.UsageEntry, error) {
	if err := entity.ValidatePeriod(month, year); err != nil {
		return nil, nil, err
	}
	if draft.ID == "" || draft.Number == "" {
		return nil, nil, fmt.Errorf("%w: id y number de la factura mensual son obligatorios", domain.ErrInvalidArgument)
	}
	selected := SelectForMonth(p.ID, month, year, entries)
	if len(selected) == 0 {
		return nil, nil, fmt.Errorf("%w: proyecto %s, %02d/%d", domain.ErrNothingToInvoice, p.Number, month, year)
	}

	subtotal := decimal.Zero
	var hours, days decimal.Decimal
	ids := make([]string, 0, len(selected))
	for _, e := range selected {
		subtotal = subtotal.Add(e.Total)
		if e.Hours != nil {
			hours = hours.Add(*e.Hours)
		}
		if e.Days != nil {
			days = days.Add(*e.Days)
		}
		ids = append(ids, e.ID)
	}
	totals, err := money.ApplyTax(subtotal, draft.TaxRate)
	if err != nil {
		return nil, nil, err
	}

	m := &entity.MonthlyInvoice{
		ID:            draft.ID,
		Number:        draft.Number,
		ProjectID:     p.ID,
		CustomerID:    p.CustomerID,
		Month:         month,
		Year:          year,
		UsageEntryIDs: ids,
		Subtotal:      totals.Subtotal,
		TaxRate:       draft.TaxRate,
		TaxAmount:     totals.TaxAmount,
		Total:         totals.Total,
		Status:        entity.InvoiceDraft,
		Date:          draft.Date,
		DueDate:       draft.DueDate,
		PaidAmount:    decimal.Zero,
		Notes:         draft.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if m.Date.IsZero() {
		m.Date = now
	}
	switch p.BillingType {
	case entity.BillingHours:
		m.TotalHours = &hours
	case entity.BillingDays:
		m.TotalDays = &days
	}
	if err := MarkInvoiced(selected, m.ID, now); err != nil {
		return nil, nil, err
	}
	return m, selected, nil
}
