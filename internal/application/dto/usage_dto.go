package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProjectRequest abre un proyecto sobre una cotización aceptada.
type CreateProjectRequest struct {
	QuotationID        string          `json:"quotation_id" validate:"required"`
	Number             string          `json:"number" validate:"required,max=50"`
	Title              string          `json:"title" validate:"required,max=200"`
	StartDate          time.Time       `json:"start_date"`
	EndDate            *time.Time      `json:"end_date,omitempty"`
	BillingType        string          `json:"billing_type" validate:"required,oneof=hours days fixed"`
	HourlyRate         decimal.Decimal `json:"hourly_rate"`
	DailyRate          decimal.Decimal `json:"daily_rate"`
	FixedAmount        decimal.Decimal `json:"fixed_amount"`
	POReceived         bool            `json:"po_received"`
	AssignedVehicleIDs []string        `json:"assigned_vehicle_ids"`
	Notes              string          `json:"notes"`
}

// UpdateProjectRequest campos editables de un proyecto. Campos nil no cambian.
type UpdateProjectRequest struct {
	Title              *string          `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	EndDate            *time.Time       `json:"end_date,omitempty"`
	HourlyRate         *decimal.Decimal `json:"hourly_rate,omitempty"`
	DailyRate          *decimal.Decimal `json:"daily_rate,omitempty"`
	FixedAmount        *decimal.Decimal `json:"fixed_amount,omitempty"`
	POReceived         *bool            `json:"po_received,omitempty"`
	AssignedVehicleIDs []string         `json:"assigned_vehicle_ids,omitempty"`
	Notes              *string          `json:"notes,omitempty"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// ProjectResponse proyecto en respuestas.
type ProjectResponse struct {
	ID                 string          `json:"id"`
	Number             string          `json:"number"`
	QuotationID        string          `json:"quotation_id"`
	CustomerID         string          `json:"customer_id"`
	Title              string          `json:"title"`
	StartDate          time.Time       `json:"start_date"`
	EndDate            *time.Time      `json:"end_date,omitempty"`
	BillingType        string          `json:"billing_type"`
	HourlyRate         decimal.Decimal `json:"hourly_rate"`
	DailyRate          decimal.Decimal `json:"daily_rate"`
	FixedAmount        decimal.Decimal `json:"fixed_amount"`
	POReceived         bool            `json:"po_received"`
	AssignedVehicleIDs []string        `json:"assigned_vehicle_ids"`
	Status             string          `json:"status"`
	Terms              string          `json:"terms"`
	Notes              string          `json:"notes"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// RecordUsageRequest registro (o edición) de un consumo.
type RecordUsageRequest struct {
	VehicleID   string           `json:"vehicle_id" validate:"required"`
	Date        time.Time        `json:"date" validate:"required"`
	Hours       *decimal.Decimal `json:"hours,omitempty"`
	Days        *decimal.Decimal `json:"days,omitempty"`
	Description string           `json:"description" validate:"max=500"`
	Location    string           `json:"location,omitempty" validate:"max=200"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// UsageEntryResponse consumo en respuestas.
type UsageEntryResponse struct {
	ID          string           `json:"id"`
	ProjectID   string           `json:"project_id"`
	VehicleID   string           `json:"vehicle_id"`
	Date        time.Time        `json:"date"`
	Hours       *decimal.Decimal `json:"hours,omitempty"`
	Days        *decimal.Decimal `json:"days,omitempty"`
	Description string           `json:"description"`
	Location    string           `json:"location,omitempty"`
	Rate        decimal.Decimal  `json:"rate"`
	Total       decimal.Decimal  `json:"total"`
	Invoiced    bool             `json:"invoiced"`
	InvoiceID   string           `json:"invoice_id,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// AggregateMonthRequest body para POST /api/projects/:id/monthly-invoices.
// Sin tax_rate se usa la tasa por defecto configurada.
type AggregateMonthRequest struct {
	Month   int              `json:"month" validate:"required,min=1,max=12"`
	Year    int              `json:"year" validate:"required,min=1900,max=9999"`
	Number  string           `json:"number" validate:"required,max=50"`
	TaxRate *decimal.Decimal `json:"tax_rate,omitempty"`
	Date    time.Time        `json:"date"`
	DueDate *time.Time       `json:"due_date,omitempty"`
	Notes   string           `json:"notes"`
}

// MonthlyInvoiceResponse factura mensual en respuestas; Status es el estado efectivo.
type MonthlyInvoiceResponse struct {
	ID            string           `json:"id"`
	Number        string           `json:"number"`
	ProjectID     string           `json:"project_id"`
	CustomerID    string           `json:"customer_id"`
	Month         int              `json:"month"`
	Year          int              `json:"year"`
	UsageEntryIDs []string         `json:"usage_entry_ids"`
	TotalHours    *decimal.Decimal `json:"total_hours,omitempty"`
	TotalDays     *decimal.Decimal `json:"total_days,omitempty"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	TaxRate       decimal.Decimal  `json:"tax_rate"`
	TaxAmount     decimal.Decimal  `json:"tax_amount"`
	Total         decimal.Decimal  `json:"total"`
	PaidAmount    decimal.Decimal  `json:"paid_amount"`
	Balance       decimal.Decimal  `json:"balance"`
	Status        string           `json:"status"`
	Date          time.Time        `json:"date"`
	DueDate       time.Time        `json:"due_date"`
	Notes         string           `json:"notes"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
