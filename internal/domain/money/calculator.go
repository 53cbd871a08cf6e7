// Package money contiene la aritmética monetaria del motor de facturación (servicio de dominio puro).
//
// Todos los montos son decimal.Decimal y se redondean a 2 decimales con redondeo half-up.
// Política de impuestos: si el documento trae una tasa global, se aplica sobre el subtotal
// acumulado; solo cuando no hay tasa global se usa el TaxPercent de cada línea.
package money

import (
	"fmt"

	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Line es la vista mínima de una línea facturable que necesita la aritmética.
type Line struct {
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	TaxPercent decimal.Decimal
}

// Totals totales derivados de un documento.
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// Round2 redondea a 2 decimales (half-up para montos no negativos).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineItemTotal = quantity * unitPrice * (1 + taxPercent/100), redondeado a 2 decimales.
func LineItemTotal(quantity, unitPrice, taxPercent decimal.Decimal) (decimal.Decimal, error) {
	if err := checkLine(Line{Quantity: quantity, UnitPrice: unitPrice, TaxPercent: taxPercent}); err != nil {
		return decimal.Zero, err
	}
	gross := quantity.Mul(unitPrice)
	return Round2(gross.Mul(hundred.Add(taxPercent)).Div(hundred)), nil
}

// AggregateTotals calcula subtotal, impuesto y total de un conjunto de líneas.
// taxRate nil significa "sin tasa global": el impuesto es la suma del impuesto por línea.
func AggregateTotals(lines []Line, taxRate *decimal.Decimal) (Totals, error) {
	subtotal := decimal.Zero
	perLineTax := decimal.Zero
	for i, l := range lines {
		if err := checkLine(l); err != nil {
			return Totals{}, fmt.Errorf("línea %d: %w", i+1, err)
		}
		gross := l.Quantity.Mul(l.UnitPrice)
		subtotal = subtotal.Add(gross)
		perLineTax = perLineTax.Add(Round2(gross.Mul(l.TaxPercent).Div(hundred)))
	}
	subtotal = Round2(subtotal)
	if taxRate == nil {
		return Totals{Subtotal: subtotal, TaxAmount: perLineTax, Total: subtotal.Add(perLineTax)}, nil
	}
	return ApplyTax(subtotal, *taxRate)
}

// ApplyTax aplica una tasa global (porcentaje) a un subtotal ya calculado.
func ApplyTax(subtotal, taxRate decimal.Decimal) (Totals, error) {
	if taxRate.IsNegative() {
		return Totals{}, fmt.Errorf("%w: la tasa de impuesto no puede ser negativa", domain.ErrInvalidArgument)
	}
	if subtotal.IsNegative() {
		return Totals{}, fmt.Errorf("%w: el subtotal no puede ser negativo", domain.ErrInvalidArgument)
	}
	subtotal = Round2(subtotal)
	tax := Round2(subtotal.Mul(taxRate).Div(hundred))
	return Totals{Subtotal: subtotal, TaxAmount: tax, Total: subtotal.Add(tax)}, nil
}

// RequireLines falla si el documento no tiene líneas y su estado no lo permite.
func RequireLines(lines []Line, allowEmpty bool) error {
	if len(lines) == 0 && !allowEmpty {
		return fmt.Errorf("%w: el documento requiere al menos una línea", domain.ErrInvalidArgument)
	}
	return nil
}

func checkLine(l Line) error {
	if l.Quantity.IsNegative() || l.UnitPrice.IsNegative() || l.TaxPercent.IsNegative() {
		return fmt.Errorf("%w: cantidad, precio unitario e impuesto no pueden ser negativos", domain.ErrInvalidArgument)
	}
	return nil
}
