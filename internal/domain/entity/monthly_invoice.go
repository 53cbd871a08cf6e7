package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/shopspring/decimal"
)

var monthlyInvoiceFlow = transitions[InvoiceStatus]{
	InvoiceDraft:   {InvoiceSent},
	InvoiceSent:    {InvoicePaid, InvoiceOverdue},
	InvoiceOverdue: {InvoicePaid},
}

// MonthlyInvoice factura que agrega los consumos no facturados de un proyecto en un mes.
type MonthlyInvoice struct {
	ID            string
	Number        string
	ProjectID     string
	CustomerID    string
	Month         int
	Year          int
	UsageEntryIDs []string
	TotalHours    *decimal.Decimal
	TotalDays     *decimal.Decimal
	Subtotal      decimal.Decimal
	TaxRate       decimal.Decimal
	TaxAmount     decimal.Decimal
	Total         decimal.Decimal
	Status        InvoiceStatus
	Date          time.Time
	DueDate       time.Time
	PaidAmount    decimal.Decimal
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ValidatePeriod comprueba mes (1-12) y año.
func ValidatePeriod(month, year int) error {
	if month < 1 || month > 12 || year < 1900 || year > 9999 {
		return fmt.Errorf("%w: periodo %d/%d inválido", domain.ErrInvalidArgument, month, year)
	}
	return nil
}

// Balance saldo pendiente.
func (m *MonthlyInvoice) Balance() decimal.Decimal { return m.Total.Sub(m.PaidAmount) }

// RefreshStatus evaluación perezosa del vencimiento.
func (m *MonthlyInvoice) RefreshStatus(now time.Time) bool {
	if isOverdue(m.Status, m.DueDate, m.PaidAmount, m.Total, now) {
		m.Status = InvoiceOverdue
		return true
	}
	return false
}

// TransitionTo aplica una transición solicitada por el usuario; no existe cancelación.
func (m *MonthlyInvoice) TransitionTo(target InvoiceStatus, policy PaidStatusPolicy, now time.Time) error {
	if err := checkRequestedTransition(monthlyInvoiceFlow, KindMonthlyInvoice, m.Status, target, policy); err != nil {
		return err
	}
	m.Status = target
	m.UpdatedAt = now
	return nil
}

// RegisterPayment suma un abono; con la política derivada marca "paid" al saldar.
func (m *MonthlyInvoice) RegisterPayment(amount decimal.Decimal, policy PaidStatusPolicy, now time.Time) error {
	if err := checkPayment(m.Total, m.PaidAmount, amount); err != nil {
		return err
	}
	if !acceptsPayments(m.Status, policy) {
		return fmt.Errorf("%w: la factura mensual en estado %q no admite pagos", domain.ErrInvalidState, m.Status)
	}
	m.PaidAmount = m.PaidAmount.Add(amount)
	if policy != PaidStatusManual && m.PaidAmount.Equal(m.Total) {
		m.Status = InvoicePaid
	}
	m.UpdatedAt = now
	return nil
}
