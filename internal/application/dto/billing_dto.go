package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItemDTO línea de documento en peticiones y respuestas. Total se ignora en la entrada.
type LineItemDTO struct {
	Description string           `json:"description" validate:"required,max=500"`
	Quantity    decimal.Decimal  `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	TaxPercent  decimal.Decimal  `json:"tax_percent"`
	Total       decimal.Decimal  `json:"total"`
	BillingMode string           `json:"billing_mode,omitempty" validate:"omitempty,oneof=quantity hours days"`
	Hours       *decimal.Decimal `json:"hours,omitempty"`
	Days        *decimal.Decimal `json:"days,omitempty"`
}

// CreateQuotationRequest body para POST /api/quotations.
type CreateQuotationRequest struct {
	Number     string           `json:"number" validate:"required,max=50"`
	CustomerID string           `json:"customer_id" validate:"required"`
	Date       time.Time        `json:"date"`
	ValidUntil time.Time        `json:"valid_until"`
	Items      []LineItemDTO    `json:"items" validate:"required,min=1,dive"`
	TaxRate    *decimal.Decimal `json:"tax_rate,omitempty"`
	Terms      string           `json:"terms"`
	Notes      string           `json:"notes"`
}

// UpdateQuotationRequest edición de contenido (solo draft/sent). Campos nil no cambian.
type UpdateQuotationRequest struct {
	ValidUntil *time.Time       `json:"valid_until,omitempty"`
	Items      []LineItemDTO    `json:"items,omitempty" validate:"omitempty,min=1,dive"`
	TaxRate    *decimal.Decimal `json:"tax_rate,omitempty"`
	Terms      *string          `json:"terms,omitempty"`
	Notes      *string          `json:"notes,omitempty"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// QuotationResponse cotización en respuestas.
type QuotationResponse struct {
	ID         string           `json:"id"`
	Number     string           `json:"number"`
	CustomerID string           `json:"customer_id"`
	Date       time.Time        `json:"date"`
	ValidUntil time.Time        `json:"valid_until"`
	Items      []LineItemDTO    `json:"items"`
	Subtotal   decimal.Decimal  `json:"subtotal"`
	TaxRate    *decimal.Decimal `json:"tax_rate,omitempty"`
	TaxAmount  decimal.Decimal  `json:"tax_amount"`
	Total      decimal.Decimal  `json:"total"`
	Status     string           `json:"status"`
	Terms      string           `json:"terms"`
	Notes      string           `json:"notes"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// DerivePurchaseOrderRequest body para POST /api/quotations/:id/purchase-order.
type DerivePurchaseOrderRequest struct {
	Number           string     `json:"number" validate:"required,max=50"`
	Date             time.Time  `json:"date"`
	ExpectedDelivery *time.Time `json:"expected_delivery,omitempty"`
	Terms            *string    `json:"terms,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
}

// DeriveInvoiceRequest body para convertir una cotización u orden en factura.
// Sin due_date se aplica el plazo de pago configurado.
type DeriveInvoiceRequest struct {
	Number  string     `json:"number" validate:"required,max=50"`
	Date    time.Time  `json:"date"`
	DueDate *time.Time `json:"due_date,omitempty"`
	Terms   *string    `json:"terms,omitempty"`
	Notes   *string    `json:"notes,omitempty"`
}

// CreatePurchaseOrderRequest orden directa (a cliente o a proveedor).
type CreatePurchaseOrderRequest struct {
	Number           string           `json:"number" validate:"required,max=50"`
	CustomerID       string           `json:"customer_id" validate:"required_without=VendorID,excluded_with=VendorID"`
	VendorID         string           `json:"vendor_id" validate:"required_without=CustomerID"`
	Date             time.Time        `json:"date"`
	ExpectedDelivery *time.Time       `json:"expected_delivery,omitempty"`
	Items            []LineItemDTO    `json:"items" validate:"omitempty,dive"`
	TaxRate          *decimal.Decimal `json:"tax_rate,omitempty"`
	Terms            string           `json:"terms"`
	Notes            string           `json:"notes"`
}

// UpdatePurchaseOrderRequest edición de una orden en draft o pending.
type UpdatePurchaseOrderRequest struct {
	ExpectedDelivery *time.Time       `json:"expected_delivery,omitempty"`
	Items            []LineItemDTO    `json:"items,omitempty" validate:"omitempty,dive"`
	TaxRate          *decimal.Decimal `json:"tax_rate,omitempty"`
	Terms            *string          `json:"terms,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// PurchaseOrderResponse orden de compra en respuestas.
type PurchaseOrderResponse struct {
	ID               string           `json:"id"`
	Number           string           `json:"number"`
	CustomerID       string           `json:"customer_id,omitempty"`
	VendorID         string           `json:"vendor_id,omitempty"`
	QuotationID      string           `json:"quotation_id,omitempty"`
	Date             time.Time        `json:"date"`
	ExpectedDelivery *time.Time       `json:"expected_delivery,omitempty"`
	Items            []LineItemDTO    `json:"items"`
	Subtotal         decimal.Decimal  `json:"subtotal"`
	TaxRate          *decimal.Decimal `json:"tax_rate,omitempty"`
	TaxAmount        decimal.Decimal  `json:"tax_amount"`
	Total            decimal.Decimal  `json:"total"`
	Status           string           `json:"status"`
	Terms            string           `json:"terms"`
	Notes            string           `json:"notes"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// CreateInvoiceRequest factura directa (sin cotización ni orden).
type CreateInvoiceRequest struct {
	Number     string           `json:"number" validate:"required,max=50"`
	CustomerID string           `json:"customer_id" validate:"required"`
	Date       time.Time        `json:"date"`
	DueDate    *time.Time       `json:"due_date,omitempty"`
	Items      []LineItemDTO    `json:"items" validate:"required,min=1,dive"`
	TaxRate    *decimal.Decimal `json:"tax_rate,omitempty"`
	Terms      string           `json:"terms"`
	Notes      string           `json:"notes"`
}

// InvoiceResponse factura en respuestas; Status es el estado efectivo (vencida incluida).
type InvoiceResponse struct {
	ID              string           `json:"id"`
	Number          string           `json:"number"`
	CustomerID      string           `json:"customer_id"`
	QuotationID     string           `json:"quotation_id,omitempty"`
	PurchaseOrderID string           `json:"purchase_order_id,omitempty"`
	Date            time.Time        `json:"date"`
	DueDate         time.Time        `json:"due_date"`
	Items           []LineItemDTO    `json:"items"`
	Subtotal        decimal.Decimal  `json:"subtotal"`
	TaxRate         *decimal.Decimal `json:"tax_rate,omitempty"`
	TaxAmount       decimal.Decimal  `json:"tax_amount"`
	Total           decimal.Decimal  `json:"total"`
	PaidAmount      decimal.Decimal  `json:"paid_amount"`
	Balance         decimal.Decimal  `json:"balance"`
	Status          string           `json:"status"`
	Terms           string           `json:"terms"`
	Notes           string           `json:"notes"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// CreateReceiptRequest body para POST /api/receipts.
// InvoiceKind "invoice" (por defecto) o "monthlyInvoice".
// InvoiceUpdatedAt es el updated_at de la factura leído por el cliente (compare-and-swap).
type CreateReceiptRequest struct {
	Number           string          `json:"number" validate:"required,max=50"`
	InvoiceID        string          `json:"invoice_id" validate:"required"`
	InvoiceKind      string          `json:"invoice_kind" validate:"omitempty,oneof=invoice monthlyInvoice"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentMethod    string          `json:"payment_method" validate:"required,oneof=cash bank_transfer card cheque"`
	PaymentDate      time.Time       `json:"payment_date"`
	ReferenceNumber  string          `json:"reference_number,omitempty" validate:"max=100"`
	InvoiceUpdatedAt time.Time       `json:"invoice_updated_at"`
}

// ReceiptResponse recibo en respuestas, con el saldo resultante de la factura.
type ReceiptResponse struct {
	ID                string           `json:"id"`
	Number            string           `json:"number"`
	InvoiceID         string           `json:"invoice_id"`
	InvoiceKind       string           `json:"invoice_kind"`
	CustomerID        string           `json:"customer_id"`
	Date              time.Time        `json:"date"`
	PaymentDate       time.Time        `json:"payment_date"`
	Amount            decimal.Decimal  `json:"amount"`
	PaymentMethod     string           `json:"payment_method"`
	ReferenceNumber   string           `json:"reference_number,omitempty"`
	Status            string           `json:"status"`
	InvoicePaidAmount *decimal.Decimal `json:"invoice_paid_amount,omitempty"`
	InvoiceStatus     string           `json:"invoice_status,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// CreateCustomerRequest body para POST /api/customers.
type CreateCustomerRequest struct {
	Name    string `json:"name" validate:"required,min=1,max=200"`
	TaxID   string `json:"tax_id" validate:"required,max=30"`
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// CustomerResponse cliente en respuestas.
type CustomerResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"tax_id"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
