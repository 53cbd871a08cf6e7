package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/shopspring/decimal"
)

// ReceiptStatus estado de un recibo de pago.
type ReceiptStatus string

const (
	ReceiptDraft     ReceiptStatus = "draft"
	ReceiptIssued    ReceiptStatus = "issued"
	ReceiptCancelled ReceiptStatus = "cancelled"
)

var receiptFlow = transitions[ReceiptStatus]{
	ReceiptDraft: {ReceiptIssued, ReceiptCancelled},
}

// IsValid informa si s es un estado conocido.
func (s ReceiptStatus) IsValid() bool {
	return s == ReceiptDraft || s == ReceiptIssued || s == ReceiptCancelled
}

// CanTransitionTo informa si la transición está permitida.
func (s ReceiptStatus) CanTransitionTo(target ReceiptStatus) bool {
	return receiptFlow.allows(s, target)
}

// Métodos de pago aceptados.
const (
	PaymentCash         = "cash"
	PaymentBankTransfer = "bank_transfer"
	PaymentCard         = "card"
	PaymentCheque       = "cheque"
)

// IsValidPaymentMethod informa si m es un método de pago aceptado.
func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentBankTransfer, PaymentCard, PaymentCheque:
		return true
	}
	return false
}

// Receipt recibo de pago. InvoiceKind indica si InvoiceID es una factura o una factura mensual.
type Receipt struct {
	ID              string
	Number          string
	InvoiceID       string
	InvoiceKind     Kind
	CustomerID      string
	Date            time.Time
	PaymentDate     time.Time
	Amount          decimal.Decimal
	PaymentMethod   string
	ReferenceNumber string
	Status          ReceiptStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Validate comprueba los campos obligatorios.
func (r *Receipt) Validate() error {
	if r.Number == "" || r.InvoiceID == "" {
		return fmt.Errorf("%w: number e invoice_id son obligatorios", domain.ErrInvalidArgument)
	}
	if r.InvoiceKind != KindInvoice && r.InvoiceKind != KindMonthlyInvoice {
		return fmt.Errorf("%w: el recibo debe referenciar una factura", domain.ErrInvalidArgument)
	}
	if !IsValidPaymentMethod(r.PaymentMethod) {
		return fmt.Errorf("%w: método de pago %q no soportado", domain.ErrInvalidArgument, r.PaymentMethod)
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("%w: el monto debe ser mayor que cero", domain.ErrInvalidArgument)
	}
	return nil
}

// TransitionTo aplica una transición de estado.
func (r *Receipt) TransitionTo(target ReceiptStatus, now time.Time) error {
	if !r.Status.CanTransitionTo(target) {
		return invalidTransition(KindReceipt, r.Status, target)
	}
	r.Status = target
	r.UpdatedAt = now
	return nil
}
