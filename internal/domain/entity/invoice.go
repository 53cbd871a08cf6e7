package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/shopspring/decimal"
)

// InvoiceStatus estado de una factura (también usado por la factura mensual).
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

var invoiceFlow = transitions[InvoiceStatus]{
	InvoiceDraft:   {InvoiceSent},
	InvoiceSent:    {InvoicePaid, InvoiceOverdue, InvoiceCancelled},
	InvoiceOverdue: {InvoicePaid, InvoiceCancelled},
}

// IsValid informa si s es un estado de factura conocido.
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceDraft, InvoiceSent, InvoicePaid, InvoiceOverdue, InvoiceCancelled:
		return true
	}
	return false
}

// IsTerminal paid y cancelled.
func (s InvoiceStatus) IsTerminal() bool { return invoiceFlow.isTerminal(s) }

// CanTransitionTo informa si la transición está permitida.
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	return invoiceFlow.allows(s, target)
}

// Invoice factura de venta. PaidAmount se incrementa únicamente mediante recibos.
type Invoice struct {
	ID              string
	Number          string
	CustomerID      string
	QuotationID     string
	PurchaseOrderID string
	Date            time.Time
	DueDate         time.Time
	Items           []LineItem
	Subtotal        decimal.Decimal
	TaxRate         *decimal.Decimal
	TaxAmount       decimal.Decimal
	Total           decimal.Decimal
	PaidAmount      decimal.Decimal
	Status          InvoiceStatus
	Terms           string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Recalculate deriva los totales; una factura siempre requiere líneas.
func (i *Invoice) Recalculate() error {
	items, totals, err := priceItems(i.Items, i.TaxRate, false)
	if err != nil {
		return err
	}
	i.Items = items
	i.Subtotal, i.TaxAmount, i.Total = totals.Subtotal, totals.TaxAmount, totals.Total
	return checkPaidAmount(i.Total, i.PaidAmount)
}

// Validate comprueba los campos obligatorios.
func (i *Invoice) Validate() error {
	if i.Number == "" || i.CustomerID == "" {
		return fmt.Errorf("%w: number y customer_id son obligatorios", domain.ErrInvalidArgument)
	}
	if !i.DueDate.IsZero() && i.DueDate.Before(i.Date) {
		return fmt.Errorf("%w: due_date es anterior a la fecha", domain.ErrInvalidArgument)
	}
	if !i.Status.IsValid() {
		return fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidArgument, i.Status)
	}
	return checkPaidAmount(i.Total, i.PaidAmount)
}

// Balance saldo pendiente.
func (i *Invoice) Balance() decimal.Decimal { return i.Total.Sub(i.PaidAmount) }

// RefreshStatus evaluación perezosa del vencimiento. Devuelve true si el estado cambió.
func (i *Invoice) RefreshStatus(now time.Time) bool {
	if isOverdue(i.Status, i.DueDate, i.PaidAmount, i.Total, now) {
		i.Status = InvoiceOverdue
		return true
	}
	return false
}

// TransitionTo aplica una transición solicitada por el usuario.
func (i *Invoice) TransitionTo(target InvoiceStatus, policy PaidStatusPolicy, now time.Time) error {
	if err := checkRequestedTransition(invoiceFlow, KindInvoice, i.Status, target, policy); err != nil {
		return err
	}
	i.Status = target
	i.UpdatedAt = now
	return nil
}

// RegisterPayment suma un abono a PaidAmount; con la política derivada marca "paid" al saldar.
// Un abono fuera de (0, saldo] es ErrInvalidArgument en cualquier estado.
func (i *Invoice) RegisterPayment(amount decimal.Decimal, policy PaidStatusPolicy, now time.Time) error {
	if err := checkPayment(i.Total, i.PaidAmount, amount); err != nil {
		return err
	}
	if !acceptsPayments(i.Status, policy) {
		return fmt.Errorf("%w: la factura en estado %q no admite pagos", domain.ErrInvalidState, i.Status)
	}
	i.PaidAmount = i.PaidAmount.Add(amount)
	if policy != PaidStatusManual && i.PaidAmount.Equal(i.Total) {
		i.Status = InvoicePaid
	}
	i.UpdatedAt = now
	return nil
}

func isOverdue(status InvoiceStatus, due time.Time, paid, total decimal.Decimal, now time.Time) bool {
	return status == InvoiceSent && !due.IsZero() && due.Before(now) && paid.LessThan(total)
}

func acceptsPayments(status InvoiceStatus, policy PaidStatusPolicy) bool {
	switch status {
	case InvoiceSent, InvoiceOverdue:
		return true
	case InvoicePaid:
		return policy == PaidStatusManual
	}
	return false
}

// checkRequestedTransition las transiciones a overdue son perezosas y las de paid dependen de la política.
func checkRequestedTransition(flow transitions[InvoiceStatus], kind Kind, from, to InvoiceStatus, policy PaidStatusPolicy) error {
	if !flow.allows(from, to) {
		return invalidTransition(kind, from, to)
	}
	if to == InvoiceOverdue {
		return fmt.Errorf("%w: overdue se evalúa automáticamente por fecha de vencimiento", domain.ErrInvalidState)
	}
	if to == InvoicePaid && policy != PaidStatusManual {
		return fmt.Errorf("%w: paid se alcanza registrando recibos por el total", domain.ErrInvalidState)
	}
	return nil
}
