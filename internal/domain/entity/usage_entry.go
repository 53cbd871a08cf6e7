package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// UsageEntry registro de uso de un vehículo dentro de un proyecto.
// Una vez Invoiced, InvoiceID apunta a la factura mensual y el registro es inmutable.
type UsageEntry struct {
	ID          string
	ProjectID   string
	VehicleID   string
	Date        time.Time
	Hours       *decimal.Decimal
	Days        *decimal.Decimal
	Description string
	Location    string
	Rate        decimal.Decimal
	Total       decimal.Decimal
	Invoiced    bool
	InvoiceID   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Units cantidad facturable: horas, días o 1 para monto fijo.
func (e *UsageEntry) Units() decimal.Decimal {
	switch {
	case e.Hours != nil:
		return *e.Hours
	case e.Days != nil:
		return *e.Days
	}
	return decimal.NewFromInt(1)
}

// InPeriod informa si la fecha del consumo cae en el mes/año indicados (calendario UTC).
func (e *UsageEntry) InPeriod(month, year int) bool {
	d := e.Date.UTC()
	return int(d.Month()) == month && d.Year() == year
}
