package repository

import "time"

// DefaultLimit tamaño de página cuando el llamador no indica uno.
const DefaultLimit = 50

// Filter criterios de listado comunes a los documentos.
// Los campos vacíos no filtran; cada adaptador ignora los que no aplican a su tabla.
type Filter struct {
	Status          string
	CustomerID      string
	QuotationID     string
	PurchaseOrderID string
	InvoiceID       string
	ProjectID       string
	// AsOf instante para evaluar el estado efectivo al filtrar por Status: una factura "sent"
	// vencida cuenta como "overdue" y una cotización "sent" con valid_until pasado como "expired".
	AsOf   *time.Time
	Limit  int
	Offset int
}

// Page devuelve limit/offset saneados.
func (f Filter) Page() (limit, offset int) {
	limit, offset = f.Limit, f.Offset
	if limit <= 0 {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Valores de Filter.Status para consumos.
const (
	UsageInvoiced = "invoiced"
	UsagePending  = "pending"
)
