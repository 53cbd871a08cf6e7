package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/shopspring/decimal"
)

// QuotationStatus estado de una cotización.
type QuotationStatus string

const (
	QuotationDraft    QuotationStatus = "draft"
	QuotationSent     QuotationStatus = "sent"
	QuotationAccepted QuotationStatus = "accepted"
	QuotationRejected QuotationStatus = "rejected"
	QuotationExpired  QuotationStatus = "expired"
)

var quotationFlow = transitions[QuotationStatus]{
	QuotationDraft: {QuotationSent},
	QuotationSent:  {QuotationAccepted, QuotationRejected, QuotationExpired},
}

// IsValid informa si s es un estado conocido.
func (s QuotationStatus) IsValid() bool {
	switch s {
	case QuotationDraft, QuotationSent, QuotationAccepted, QuotationRejected, QuotationExpired:
		return true
	}
	return false
}

// IsTerminal accepted, rejected y expired no admiten más transiciones.
func (s QuotationStatus) IsTerminal() bool { return quotationFlow.isTerminal(s) }

// CanTransitionTo informa si la transición está permitida.
func (s QuotationStatus) CanTransitionTo(target QuotationStatus) bool {
	return quotationFlow.allows(s, target)
}

// Quotation cotización enviada a un cliente; origen de la cadena documental.
type Quotation struct {
	ID         string
	Number     string
	CustomerID string
	Date       time.Time
	ValidUntil time.Time
	Items      []LineItem
	Subtotal   decimal.Decimal
	TaxRate    *decimal.Decimal // nil = impuesto por línea
	TaxAmount  decimal.Decimal
	Total      decimal.Decimal
	Status     QuotationStatus
	Terms      string
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Recalculate normaliza las líneas y deriva subtotal, impuesto y total.
func (q *Quotation) Recalculate() error {
	items, totals, err := priceItems(q.Items, q.TaxRate, false)
	if err != nil {
		return err
	}
	q.Items = items
	q.Subtotal, q.TaxAmount, q.Total = totals.Subtotal, totals.TaxAmount, totals.Total
	return nil
}

// Validate comprueba los campos obligatorios.
func (q *Quotation) Validate() error {
	if q.Number == "" || q.CustomerID == "" {
		return fmt.Errorf("%w: number y customer_id son obligatorios", domain.ErrInvalidArgument)
	}
	if !q.ValidUntil.IsZero() && q.ValidUntil.Before(q.Date) {
		return fmt.Errorf("%w: valid_until es anterior a la fecha", domain.ErrInvalidArgument)
	}
	if !q.Status.IsValid() {
		return fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidArgument, q.Status)
	}
	return nil
}

// IsEditable el contenido solo se modifica mientras no hay decisión del cliente.
func (q *Quotation) IsEditable() bool {
	return q.Status == QuotationDraft || q.Status == QuotationSent
}

// TransitionTo aplica una transición de estado.
func (q *Quotation) TransitionTo(target QuotationStatus, now time.Time) error {
	if !q.Status.CanTransitionTo(target) {
		return invalidTransition(KindQuotation, q.Status, target)
	}
	q.Status = target
	q.UpdatedAt = now
	return nil
}

// RefreshStatus evaluación perezosa: una cotización enviada vence al pasar valid_until.
// Devuelve true si el estado cambió.
func (q *Quotation) RefreshStatus(now time.Time) bool {
	if q.Status == QuotationSent && !q.ValidUntil.IsZero() && q.ValidUntil.Before(now) {
		q.Status = QuotationExpired
		return true
	}
	return false
}
