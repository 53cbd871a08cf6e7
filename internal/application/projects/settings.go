// Package projects casos de uso de proyectos, consumos de vehículos y facturación mensual.
package projects

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
)

// Settings reglas de facturación que aplican a las facturas mensuales.
type Settings struct {
	DefaultTaxRate   decimal.Decimal
	PaymentTermDays  int
	PaidStatusPolicy entity.PaidStatusPolicy
}

func (s Settings) taxRate(requested *decimal.Decimal) decimal.Decimal {
	if requested != nil {
		return *requested
	}
	return s.DefaultTaxRate
}

func (s Settings) dueDate(requested *time.Time, date time.Time) time.Time {
	if requested != nil {
		return *requested
	}
	return date.AddDate(0, 0, s.PaymentTermDays)
}

func dateOr(d, now time.Time) time.Time {
	if d.IsZero() {
		return now
	}
	return d
}
