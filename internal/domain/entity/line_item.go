package entity

import (
	"fmt"

	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/money"
	"github.com/shopspring/decimal"
)

// BillingMode cómo se expresa la cantidad de una línea.
type BillingMode string

const (
	BillingModeQuantity BillingMode = "quantity"
	BillingModeHours    BillingMode = "hours"
	BillingModeDays     BillingMode = "days"
)

// LineItem línea facturable de una cotización, orden de compra o factura.
// Se persiste como JSONB dentro del documento.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxPercent  decimal.Decimal `json:"tax_percent"`
	Total       decimal.Decimal `json:"total"`
	BillingMode BillingMode     `json:"billing_mode,omitempty"`
	// Hours/Days solo cuando BillingMode es hours/days; Quantity se deriva de ellos.
	Hours *decimal.Decimal `json:"hours,omitempty"`
	Days  *decimal.Decimal `json:"days,omitempty"`
}

// Line vista aritmética de la línea.
func (li LineItem) Line() money.Line {
	return money.Line{Quantity: li.Quantity, UnitPrice: li.UnitPrice, TaxPercent: li.TaxPercent}
}

// Normalize deriva Quantity desde Hours/Days según el modo y recalcula Total.
func (li LineItem) Normalize() (LineItem, error) {
	switch li.BillingMode {
	case "", BillingModeQuantity:
		li.BillingMode = BillingModeQuantity
		li.Hours, li.Days = nil, nil
	case BillingModeHours:
		if li.Hours == nil || li.Days != nil {
			return li, fmt.Errorf("%w: una línea por horas requiere hours y no admite days", domain.ErrInvalidArgument)
		}
		li.Quantity = *li.Hours
	case BillingModeDays:
		if li.Days == nil || li.Hours != nil {
			return li, fmt.Errorf("%w: una línea por días requiere days y no admite hours", domain.ErrInvalidArgument)
		}
		li.Quantity = *li.Days
	default:
		return li, fmt.Errorf("%w: modo de cobro %q desconocido", domain.ErrInvalidArgument, li.BillingMode)
	}
	total, err := money.LineItemTotal(li.Quantity, li.UnitPrice, li.TaxPercent)
	if err != nil {
		return li, err
	}
	li.Total = total
	return li, nil
}

// CloneItems copia profunda de las líneas (copy-on-derive).
func CloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	for i, it := range items {
		out[i] = it
		if it.Hours != nil {
			h := *it.Hours
			out[i].Hours = &h
		}
		if it.Days != nil {
			dd := *it.Days
			out[i].Days = &dd
		}
	}
	return out
}

// CloneRate copia una tasa opcional.
func CloneRate(rate *decimal.Decimal) *decimal.Decimal {
	if rate == nil {
		return nil
	}
	r := *rate
	return &r
}

// priceItems normaliza las líneas y calcula los totales del documento.
func priceItems(items []LineItem, taxRate *decimal.Decimal, allowEmpty bool) ([]LineItem, money.Totals, error) {
	normalized := make([]LineItem, 0, len(items))
	lines := make([]money.Line, 0, len(items))
	for i, it := range items {
		n, err := it.Normalize()
		if err != nil {
			return nil, money.Totals{}, fmt.Errorf("línea %d: %w", i+1, err)
		}
		normalized = append(normalized, n)
		lines = append(lines, n.Line())
	}
	if err := money.RequireLines(lines, allowEmpty); err != nil {
		return nil, money.Totals{}, err
	}
	totals, err := money.AggregateTotals(lines, taxRate)
	if err != nil {
		return nil, money.Totals{}, err
	}
	return normalized, totals, nil
}
