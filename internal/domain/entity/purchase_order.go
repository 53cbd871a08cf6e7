package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus estado de una orden de compra.
type PurchaseOrderStatus string

const (
	PurchaseOrderDraft     PurchaseOrderStatus = "draft"
	PurchaseOrderPending   PurchaseOrderStatus = "pending"
	PurchaseOrderApproved  PurchaseOrderStatus = "approved"
	PurchaseOrderRejected  PurchaseOrderStatus = "rejected"
	PurchaseOrderReceived  PurchaseOrderStatus = "received"
	PurchaseOrderCompleted PurchaseOrderStatus = "completed"
	PurchaseOrderCancelled PurchaseOrderStatus = "cancelled"
)

var purchaseOrderFlow = transitions[PurchaseOrderStatus]{
	PurchaseOrderDraft:    {PurchaseOrderPending, PurchaseOrderCancelled},
	PurchaseOrderPending:  {PurchaseOrderApproved, PurchaseOrderRejected, PurchaseOrderCancelled},
	PurchaseOrderApproved: {PurchaseOrderReceived, PurchaseOrderCancelled},
	PurchaseOrderReceived: {PurchaseOrderCompleted, PurchaseOrderCancelled},
}

// IsValid informa si s es un estado conocido.
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderDraft, PurchaseOrderPending, PurchaseOrderApproved, PurchaseOrderRejected,
		PurchaseOrderReceived, PurchaseOrderCompleted, PurchaseOrderCancelled:
		return true
	}
	return false
}

// IsTerminal rejected, completed y cancelled.
func (s PurchaseOrderStatus) IsTerminal() bool { return purchaseOrderFlow.isTerminal(s) }

// CanTransitionTo informa si la transición está permitida.
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	return purchaseOrderFlow.allows(s, target)
}

// CanInvoice solo se factura una orden aprobada, recibida o completada.
func (s PurchaseOrderStatus) CanInvoice() bool {
	return s == PurchaseOrderApproved || s == PurchaseOrderReceived || s == PurchaseOrderCompleted
}

// PurchaseOrder orden de compra de un cliente (o a un proveedor).
// Exactamente uno de CustomerID / VendorID está informado.
type PurchaseOrder struct {
	ID               string
	Number           string
	CustomerID       string
	VendorID         string
	QuotationID      string
	Date             time.Time
	ExpectedDelivery *time.Time
	Items            []LineItem
	Subtotal         decimal.Decimal
	TaxRate          *decimal.Decimal
	TaxAmount        decimal.Decimal
	Total            decimal.Decimal
	Status           PurchaseOrderStatus
	Terms            string
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Recalculate deriva los totales; una orden en borrador puede no tener líneas.
func (o *PurchaseOrder) Recalculate() error {
	items, totals, err := priceItems(o.Items, o.TaxRate, o.Status == PurchaseOrderDraft)
	if err != nil {
		return err
	}
	o.Items = items
	o.Subtotal, o.TaxAmount, o.Total = totals.Subtotal, totals.TaxAmount, totals.Total
	return nil
}

// Validate comprueba los campos obligatorios y la contraparte.
func (o *PurchaseOrder) Validate() error {
	if o.Number == "" {
		return fmt.Errorf("%w: number es obligatorio", domain.ErrInvalidArgument)
	}
	if (o.CustomerID == "") == (o.VendorID == "") {
		return fmt.Errorf("%w: se requiere exactamente uno de customer_id o vendor_id", domain.ErrInvalidArgument)
	}
	if !o.Status.IsValid() {
		return fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidArgument, o.Status)
	}
	return nil
}

// TransitionTo aplica una transición; salir de draft exige al menos una línea.
func (o *PurchaseOrder) TransitionTo(target PurchaseOrderStatus, now time.Time) error {
	if !o.Status.CanTransitionTo(target) {
		return invalidTransition(KindPurchaseOrder, o.Status, target)
	}
	if o.Status == PurchaseOrderDraft && target != PurchaseOrderCancelled && len(o.Items) == 0 {
		return fmt.Errorf("%w: la orden requiere al menos una línea para salir de borrador", domain.ErrInvalidArgument)
	}
	o.Status = target
	o.UpdatedAt = now
	return nil
}
