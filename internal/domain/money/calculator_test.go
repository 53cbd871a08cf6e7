package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/money"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLineItemTotal_ConImpuesto(t *testing.T) {
	total, err := money.LineItemTotal(d("3"), d("19.99"), d("5"))
	require.NoError(t, err)
	// 3 * 19.99 = 59.97 ; * 1.05 = 62.9685 → 62.97
	assert.True(t, d("62.97").Equal(total), "got %s", total)
}

func TestLineItemTotal_RedondeoHalfUp(t *testing.T) {
	// 1 * 0.125 * 1 = 0.125 → 0.13
	total, err := money.LineItemTotal(d("1"), d("0.125"), decimal.Zero)
	require.NoError(t, err)
	assert.True(t, d("0.13").Equal(total), "got %s", total)
}

func TestLineItemTotal_SinImpuestoEsRedondeoDelProducto(t *testing.T) {
	cases := [][2]string{{"2.5", "10.333"}, {"7", "1.005"}, {"0", "99"}, {"1.333", "3"}}
	for _, c := range cases {
		q, p := d(c[0]), d(c[1])
		total, err := money.LineItemTotal(q, p, decimal.Zero)
		require.NoError(t, err)
		assert.True(t, q.Mul(p).Round(2).Equal(total), "q=%s p=%s got %s", q, p, total)
	}
}

func TestLineItemTotal_Monotonia(t *testing.T) {
	prev := decimal.Zero
	for q := int64(0); q <= 20; q++ {
		total, err := money.LineItemTotal(decimal.NewFromInt(q), d("12.49"), d("19"))
		require.NoError(t, err)
		assert.True(t, total.GreaterThanOrEqual(prev), "no monótono en cantidad q=%d", q)
		prev = total
	}
	prev = decimal.Zero
	for p := int64(0); p <= 20; p++ {
		price := decimal.NewFromInt(p).Div(decimal.NewFromInt(3))
		total, err := money.LineItemTotal(d("4"), price, d("5"))
		require.NoError(t, err)
		assert.True(t, total.GreaterThanOrEqual(prev), "no monótono en precio p=%s", price)
		prev = total
	}
}

func TestLineItemTotal_RechazaNegativos(t *testing.T) {
	_, err := money.LineItemTotal(d("-1"), d("10"), d("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = money.LineItemTotal(d("1"), d("-10"), d("0"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	_, err = money.LineItemTotal(d("1"), d("10"), d("-5"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

// La tasa global se aplica sobre el subtotal; el TaxPercent de las líneas se ignora.
func TestAggregateTotals_TasaGlobalPrevaleceSobreLinea(t *testing.T) {
	rate := d("5")
	lines := []money.Line{
		{Quantity: d("2"), UnitPrice: d("300"), TaxPercent: d("19")},
		{Quantity: d("1"), UnitPrice: d("400"), TaxPercent: d("19")},
	}
	tot, err := money.AggregateTotals(lines, &rate)
	require.NoError(t, err)
	assert.True(t, d("1000").Equal(tot.Subtotal))
	assert.True(t, d("50").Equal(tot.TaxAmount))
	assert.True(t, d("1050").Equal(tot.Total))
}

// Sin tasa global se suma el impuesto de cada línea.
func TestAggregateTotals_SinTasaGlobalUsaImpuestoPorLinea(t *testing.T) {
	lines := []money.Line{
		{Quantity: d("1"), UnitPrice: d("100"), TaxPercent: d("19")},
		{Quantity: d("2"), UnitPrice: d("50"), TaxPercent: d("5")},
	}
	tot, err := money.AggregateTotals(lines, nil)
	require.NoError(t, err)
	assert.True(t, d("200").Equal(tot.Subtotal))
	assert.True(t, d("24").Equal(tot.TaxAmount))
	assert.True(t, d("224").Equal(tot.Total))
}

func TestAggregateTotals_Idempotente(t *testing.T) {
	rate := d("7.5")
	lines := []money.Line{
		{Quantity: d("1.5"), UnitPrice: d("33.33")},
		{Quantity: d("3"), UnitPrice: d("0.99")},
	}
	first, err := money.AggregateTotals(lines, &rate)
	require.NoError(t, err)
	second, err := money.AggregateTotals(lines, &rate)
	require.NoError(t, err)
	assert.True(t, first.Subtotal.Equal(second.Subtotal))
	assert.True(t, first.TaxAmount.Equal(second.TaxAmount))
	assert.True(t, first.Total.Equal(second.Total))
	assert.True(t, first.Total.Equal(first.Subtotal.Add(first.TaxAmount)))
}

func TestAggregateTotals_LineaNegativa(t *testing.T) {
	_, err := money.AggregateTotals([]money.Line{{Quantity: d("-1"), UnitPrice: d("1")}}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestApplyTax_TasaNegativa(t *testing.T) {
	_, err := money.ApplyTax(d("100"), d("-1"))
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestRequireLines(t *testing.T) {
	assert.ErrorIs(t, money.RequireLines(nil, false), domain.ErrInvalidArgument)
	assert.NoError(t, money.RequireLines(nil, true))
	assert.NoError(t, money.RequireLines([]money.Line{{}}, false))
}
