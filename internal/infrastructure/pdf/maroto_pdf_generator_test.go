package pdf_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/flota-crm-api/internal/application/billing"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/infrastructure/pdf"
)

func TestGenerateInvoicePDF(t *testing.T) {
	rate := decimal.NewFromInt(19)
	doc := billing.PDFDocument{
		Title:    "FACTURA MENSUAL",
		Number:   "MI-2024-03",
		Date:     time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		DueDate:  time.Date(2024, 4, 16, 0, 0, 0, 0, time.UTC),
		Period:   "03/2024",
		Customer: &entity.Customer{Name: "Constructora Norte", TaxID: "900123456"},
		Lines: []billing.PDFLine{{
			Description: "Grúa ABC123 - 5 h",
			Quantity:    decimal.NewFromInt(5),
			UnitPrice:   decimal.NewFromInt(50),
			Total:       decimal.NewFromInt(250),
		}},
		Subtotal:  decimal.NewFromInt(250),
		TaxRate:   &rate,
		TaxAmount: decimal.RequireFromString("47.50"),
		Total:     decimal.RequireFromString("297.50"),
		Balance:   decimal.RequireFromString("297.50"),
		Status:    "draft",
	}

	out, err := pdf.NewMarotoPDFGenerator("Flota CRM").GenerateInvoicePDF(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateInvoicePDFCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pdf.NewMarotoPDFGenerator("Flota CRM").GenerateInvoicePDF(ctx, billing.PDFDocument{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMoneySinFlotantes(t *testing.T) {
	g := pdf.NewMarotoPDFGenerator("Flota CRM")
	cases := map[string]string{
		"1234567.505":          "$1.234.567,51",
		"0":                    "$0,00",
		"99999999999999.99":    "$99.999.999.999.999,99",
		"-25000.1":             "-$25.000,10",
		"12345678901234567.89": "$12.345.678.901.234.567,89",
	}
	for in, want := range cases {
		assert.Equal(t, want, pdf.Money(g, decimal.RequireFromString(in)), in)
	}
}
