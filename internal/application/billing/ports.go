package billing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
)

// Settings reglas de facturación configurables.
type Settings struct {
	PaidStatusPolicy entity.PaidStatusPolicy
	// PaymentTermDays plazo para due_date cuando la petición no lo trae.
	PaymentTermDays int
}

// dueDate aplica el plazo de pago por defecto.
func (s Settings) dueDate(requested *time.Time, date time.Time) time.Time {
	if requested != nil {
		return *requested
	}
	return date.AddDate(0, 0, s.PaymentTermDays)
}

// PDFGenerator genera la representación gráfica de una factura (o factura mensual).
type PDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, doc PDFDocument) ([]byte, error)
}

// PDFDocument vista de impresión común a Invoice y MonthlyInvoice.
type PDFDocument struct {
	Title      string
	Number     string
	Date       time.Time
	DueDate    time.Time
	Period     string // solo facturas mensuales, "03/2024"
	Customer   *entity.Customer
	Lines      []PDFLine
	Subtotal   decimal.Decimal
	TaxRate    *decimal.Decimal
	TaxAmount  decimal.Decimal
	Total      decimal.Decimal
	PaidAmount decimal.Decimal
	Balance    decimal.Decimal
	Status     string
	Terms      string
	Notes      string
}

// PDFLine fila de la tabla de detalle.
type PDFLine struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	TaxPercent  decimal.Decimal
	Total       decimal.Decimal
}
