// Package chain deriva documentos a partir de otros (cotización → orden de compra → factura → recibo).
//
// Toda derivación copia por valor: las líneas y la tasa se duplican y el documento de origen
// nunca se modifica. Ediciones posteriores del origen no se propagan.
package chain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
)

// PurchaseOrderOverrides campos propios de la orden que no provienen de la cotización.
type PurchaseOrderOverrides struct {
	ID               string
	Number           string
	Date             time.Time
	ExpectedDelivery *time.Time
	Terms            *string
	Notes            *string
}

// InvoiceOverrides campos propios de la factura derivada.
type InvoiceOverrides struct {
	ID      string
	Number  string
	Date    time.Time
	DueDate time.Time
	Terms   *string
	Notes   *string
}

// ProjectOverrides datos del proyecto que la cotización no contiene.
type ProjectOverrides struct {
	ID                 string
	Number             string
	Title              string
	StartDate          time.Time
	EndDate            *time.Time
	BillingType        entity.BillingType
	HourlyRate         decimal.Decimal
	DailyRate          decimal.Decimal
	FixedAmount        decimal.Decimal
	POReceived         bool
	AssignedVehicleIDs []string
	Notes              string
}

// Payment abono que origina un recibo.
type Payment struct {
	ID              string
	Number          string
	Amount          decimal.Decimal
	PaymentMethod   string
	PaymentDate     time.Time
	ReferenceNumber string
}

func requireNumber(number string) error {
	if strings.TrimSpace(number) == "" {
		return fmt.Errorf("%w: el número del documento es obligatorio", domain.ErrInvalidArgument)
	}
	return nil
}

func pick(override *string, fallback string) string {
	if override != nil {
		return *override
	}
	return fallback
}

func dateOr(d, now time.Time) time.Time {
	if d.IsZero() {
		return now
	}
	return d
}

func requireAccepted(q *entity.Quotation, target entity.Kind) error {
	if q.Status != entity.QuotationAccepted {
		return fmt.Errorf("%w: solo una cotización aceptada genera %s (estado %q)",
			domain.ErrInvalidState, target, q.Status)
	}
	return nil
}

// QuotationToPurchaseOrder crea una orden en borrador a partir de una cotización aceptada.
func QuotationToPurchaseOrder(q *entity.Quotation, o PurchaseOrderOverrides, now time.Time) (*entity.PurchaseOrder, error) {
	if err := requireAccepted(q, entity.KindPurchaseOrder); err != nil {
		return nil, err
	}
	if err := requireNumber(o.Number); err != nil {
		return nil, err
	}
	po := &entity.PurchaseOrder{
		ID:               o.ID,
		Number:           o.Number,
		CustomerID:       q.CustomerID,
		QuotationID:      q.ID,
		Date:             dateOr(o.Date, now),
		ExpectedDelivery: o.ExpectedDelivery,
		Items:            entity.CloneItems(q.Items),
		TaxRate:          entity.CloneRate(q.TaxRate),
		Status:           entity.PurchaseOrderDraft,
		Terms:            pick(o.Terms, q.Terms),
		Notes:            pick(o.Notes, q.Notes),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := po.Recalculate(); err != nil {
		return nil, err
	}
	return po, po.Validate()
}

// QuotationToInvoice factura directamente una cotización aceptada (sin orden de compra).
func QuotationToInvoice(q *entity.Quotation, o InvoiceOverrides, now time.Time) (*entity.Invoice, error) {
	if err := requireAccepted(q, entity.KindInvoice); err != nil {
		return nil, err
	}
	return newInvoice(o, q.CustomerID, q.ID, "", q.Items, q.TaxRate, q.Terms, q.Notes, now)
}

// PurchaseOrderToInvoice factura una orden aprobada, recibida o completada.
// quotation_id se hereda de la orden.
func PurchaseOrderToInvoice(po *entity.PurchaseOrder, o InvoiceOverrides, now time.Time) (*entity.Invoice, error) {
	if !po.Status.CanInvoice() {
		return nil, fmt.Errorf("%w: la orden en estado %q no se puede facturar", domain.ErrInvalidState, po.Status)
	}
	if po.CustomerID == "" {
		return nil, fmt.Errorf("%w: una orden a proveedor no se factura a cliente", domain.ErrInvalidArgument)
	}
	return newInvoice(o, po.CustomerID, po.QuotationID, po.ID, po.Items, po.TaxRate, po.Terms, po.Notes, now)
}

func newInvoice(o InvoiceOverrides, customerID, quotationID, poID string, items []entity.LineItem,
	rate *decimal.Decimal, terms, notes string, now time.Time) (*entity.Invoice, error) {
	if err := requireNumber(o.Number); err != nil {
		return nil, err
	}
	inv := &entity.Invoice{
		ID:              o.ID,
		Number:          o.Number,
		CustomerID:      customerID,
		QuotationID:     quotationID,
		PurchaseOrderID: poID,
		Date:            dateOr(o.Date, now),
		DueDate:         o.DueDate,
		Items:           entity.CloneItems(items),
		TaxRate:         entity.CloneRate(rate),
		PaidAmount:      decimal.Zero,
		Status:          entity.InvoiceDraft,
		Terms:           pick(o.Terms, terms),
		Notes:           pick(o.Notes, notes),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := inv.Recalculate(); err != nil {
		return nil, err
	}
	return inv, inv.Validate()
}

// QuotationToProject abre un proyecto de uso de vehículos sobre una cotización aceptada.
func QuotationToProject(q *entity.Quotation, o ProjectOverrides, now time.Time) (*entity.Project, error) {
	if err := requireAccepted(q, entity.KindProject); err != nil {
		return nil, err
	}
	if err := requireNumber(o.Number); err != nil {
		return nil, err
	}
	p := &entity.Project{
		ID:                 o.ID,
		Number:             o.Number,
		QuotationID:        q.ID,
		CustomerID:         q.CustomerID,
		Title:              o.Title,
		StartDate:          dateOr(o.StartDate, now),
		EndDate:            o.EndDate,
		BillingType:        o.BillingType,
		HourlyRate:         o.HourlyRate,
		DailyRate:          o.DailyRate,
		FixedAmount:        o.FixedAmount,
		POReceived:         o.POReceived,
		AssignedVehicleIDs: append([]string(nil), o.AssignedVehicleIDs...),
		Status:             entity.ProjectActive,
		Terms:              q.Terms,
		Notes:              o.Notes,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// InvoiceToReceipt registra un abono: devuelve el recibo emitido y una copia de la factura con
// paid_amount incrementado. La factura recibida no se modifica.
func InvoiceToReceipt(inv *entity.Invoice, p Payment, policy entity.PaidStatusPolicy, now time.Time) (*entity.Receipt, *entity.Invoice, error) {
	updated := *inv
	updated.Items = entity.CloneItems(inv.Items)
	updated.TaxRate = entity.CloneRate(inv.TaxRate)
	if err := updated.RegisterPayment(p.Amount, policy, now); err != nil {
		return nil, nil, err
	}
	r, err := newReceipt(p, inv.ID, entity.KindInvoice, inv.CustomerID, now)
	if err != nil {
		return nil, nil, err
	}
	return r, &updated, nil
}

// MonthlyInvoiceToReceipt igual que InvoiceToReceipt para una factura mensual.
func MonthlyInvoiceToReceipt(m *entity.MonthlyInvoice, p Payment, policy entity.PaidStatusPolicy, now time.Time) (*entity.Receipt, *entity.MonthlyInvoice, error) {
	updated := *m
	updated.UsageEntryIDs = append([]string(nil), m.UsageEntryIDs...)
	if err := updated.RegisterPayment(p.Amount, policy, now); err != nil {
		return nil, nil, err
	}
	r, err := newReceipt(p, m.ID, entity.KindMonthlyInvoice, m.CustomerID, now)
	if err != nil {
		return nil, nil, err
	}
	return r, &updated, nil
}

func newReceipt(p Payment, invoiceID string, kind entity.Kind, customerID string, now time.Time) (*entity.Receipt, error) {
	r := &entity.Receipt{
		ID:              p.ID,
		Number:          p.Number,
		InvoiceID:       invoiceID,
		InvoiceKind:     kind,
		CustomerID:      customerID,
		Date:            now,
		PaymentDate:     dateOr(p.PaymentDate, now),
		Amount:          p.Amount,
		PaymentMethod:   p.PaymentMethod,
		ReferenceNumber: p.ReferenceNumber,
		Status:          entity.ReceiptIssued,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}
