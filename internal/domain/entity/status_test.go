package entity_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
)

var now = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestQuotationStatus_Transiciones(t *testing.T) {
	allowed := map[[2]entity.QuotationStatus]bool{
		{entity.QuotationDraft, entity.QuotationSent}:     true,
		{entity.QuotationSent, entity.QuotationAccepted}:  true,
		{entity.QuotationSent, entity.QuotationRejected}:  true,
		{entity.QuotationSent, entity.QuotationExpired}:   true,
		{entity.QuotationDraft, entity.QuotationAccepted}: false,
		{entity.QuotationAccepted, entity.QuotationSent}:  false,
		{entity.QuotationRejected, entity.QuotationDraft}: false,
		{entity.QuotationExpired, entity.QuotationSent}:   false,
	}
	for pair, want := range allowed {
		assert.Equal(t, want, pair[0].CanTransitionTo(pair[1]), "%s → %s", pair[0], pair[1])
	}
	assert.True(t, entity.QuotationAccepted.IsTerminal())
	assert.False(t, entity.QuotationSent.IsTerminal())
}

func TestPurchaseOrderStatus_CaminoFeliz(t *testing.T) {
	po := &entity.PurchaseOrder{
		Number: "PO-1", CustomerID: "c1", Status: entity.PurchaseOrderDraft,
		Items: []entity.LineItem{{Description: "x", Quantity: dec("1"), UnitPrice: dec("1")}},
	}
	for _, s := range []entity.PurchaseOrderStatus{
		entity.PurchaseOrderPending, entity.PurchaseOrderApproved,
		entity.PurchaseOrderReceived, entity.PurchaseOrderCompleted,
	} {
		require.NoError(t, po.TransitionTo(s, now), "→ %s", s)
	}
	err := po.TransitionTo(entity.PurchaseOrderCancelled, now)
	assert.ErrorIs(t, err, domain.ErrInvalidState, "completed es terminal")
}

func TestPurchaseOrder_BorradorVacioNoAvanza(t *testing.T) {
	po := &entity.PurchaseOrder{Number: "PO-2", VendorID: "v1", Status: entity.PurchaseOrderDraft}
	require.NoError(t, po.Recalculate(), "un borrador puede no tener líneas")
	assert.ErrorIs(t, po.TransitionTo(entity.PurchaseOrderPending, now), domain.ErrInvalidArgument)
	assert.NoError(t, po.TransitionTo(entity.PurchaseOrderCancelled, now))
}

func TestPurchaseOrder_Contraparte(t *testing.T) {
	po := &entity.PurchaseOrder{Number: "PO-3", CustomerID: "c", VendorID: "v", Status: entity.PurchaseOrderDraft}
	assert.ErrorIs(t, po.Validate(), domain.ErrInvalidArgument)
	po.VendorID = ""
	assert.NoError(t, po.Validate())
}

func TestInvoice_VencimientoPerezoso(t *testing.T) {
	inv := &entity.Invoice{
		Status: entity.InvoiceSent, Total: dec("100"), PaidAmount: dec("20"),
		DueDate: now.Add(-time.Hour),
	}
	assert.True(t, inv.RefreshStatus(now))
	assert.Equal(t, entity.InvoiceOverdue, inv.Status)

	paid := &entity.Invoice{Status: entity.InvoiceSent, Total: dec("100"), PaidAmount: dec("100"), DueDate: now.Add(-time.Hour)}
	assert.False(t, paid.RefreshStatus(now), "saldada no vence")

	notDue := &entity.Invoice{Status: entity.InvoiceSent, Total: dec("100"), DueDate: now.Add(time.Hour)}
	assert.False(t, notDue.RefreshStatus(now))
}

func TestInvoice_TransicionOverdueNoSeSolicita(t *testing.T) {
	inv := &entity.Invoice{Status: entity.InvoiceSent}
	assert.ErrorIs(t, inv.TransitionTo(entity.InvoiceOverdue, entity.PaidStatusDerived, now), domain.ErrInvalidState)
}

func TestInvoice_PoliticaDerivadaNoPermiteMarcarPaid(t *testing.T) {
	inv := &entity.Invoice{Status: entity.InvoiceSent, Total: dec("100")}
	assert.ErrorIs(t, inv.TransitionTo(entity.InvoicePaid, entity.PaidStatusDerived, now), domain.ErrInvalidState)
}

// Con la política manual "paid" se fija sin saldar, y paid_amount sigue su propio curso.
func TestInvoice_PoliticaManual(t *testing.T) {
	inv := &entity.Invoice{Status: entity.InvoiceSent, Total: dec("100")}
	require.NoError(t, inv.TransitionTo(entity.InvoicePaid, entity.PaidStatusManual, now))
	assert.True(t, inv.PaidAmount.IsZero())

	require.NoError(t, inv.RegisterPayment(dec("100"), entity.PaidStatusManual, now))
	assert.Equal(t, entity.InvoicePaid, inv.Status)
	assert.True(t, dec("100").Equal(inv.PaidAmount))

	sent := &entity.Invoice{Status: entity.InvoiceSent, Total: dec("100")}
	require.NoError(t, sent.RegisterPayment(dec("100"), entity.PaidStatusManual, now))
	assert.Equal(t, entity.InvoiceSent, sent.Status, "la política manual no deriva el estado")
}

func TestInvoice_RegisterPayment(t *testing.T) {
	inv := &entity.Invoice{Status: entity.InvoiceOverdue, Total: dec("1050")}
	require.NoError(t, inv.RegisterPayment(dec("700"), entity.PaidStatusDerived, now))
	assert.Equal(t, entity.InvoiceOverdue, inv.Status)

	assert.ErrorIs(t, inv.RegisterPayment(dec("351"), entity.PaidStatusDerived, now), domain.ErrInvalidArgument)
	assert.ErrorIs(t, inv.RegisterPayment(dec("0"), entity.PaidStatusDerived, now), domain.ErrInvalidArgument)
	assert.True(t, dec("700").Equal(inv.PaidAmount), "un pago rechazado no altera paid_amount")

	require.NoError(t, inv.RegisterPayment(dec("350"), entity.PaidStatusDerived, now))
	assert.Equal(t, entity.InvoicePaid, inv.Status)

	draft := &entity.Invoice{Status: entity.InvoiceDraft, Total: dec("10")}
	assert.ErrorIs(t, draft.RegisterPayment(dec("1"), entity.PaidStatusDerived, now), domain.ErrInvalidState)
}

func TestMonthlyInvoice_SinCancelacion(t *testing.T) {
	m := &entity.MonthlyInvoice{Status: entity.InvoiceSent}
	assert.ErrorIs(t, m.TransitionTo(entity.InvoiceCancelled, entity.PaidStatusDerived, now), domain.ErrInvalidState)
	draft := &entity.MonthlyInvoice{Status: entity.InvoiceDraft}
	assert.NoError(t, draft.TransitionTo(entity.InvoiceSent, entity.PaidStatusDerived, now))
}

func TestReceiptStatus(t *testing.T) {
	r := &entity.Receipt{Status: entity.ReceiptDraft}
	require.NoError(t, r.TransitionTo(entity.ReceiptIssued, now))
	assert.ErrorIs(t, r.TransitionTo(entity.ReceiptCancelled, now), domain.ErrInvalidState)
}

func TestQuotation_VencePorValidUntil(t *testing.T) {
	q := &entity.Quotation{Status: entity.QuotationSent, ValidUntil: now.Add(-24 * time.Hour)}
	assert.True(t, q.RefreshStatus(now))
	assert.Equal(t, entity.QuotationExpired, q.Status)

	draft := &entity.Quotation{Status: entity.QuotationDraft, ValidUntil: now.Add(-24 * time.Hour)}
	assert.False(t, draft.RefreshStatus(now), "solo vencen las enviadas")
}

func TestLineItem_ModoHorasDerivaCantidad(t *testing.T) {
	h := dec("7.5")
	li, err := entity.LineItem{BillingMode: entity.BillingModeHours, Hours: &h, UnitPrice: dec("40"), TaxPercent: dec("10")}.Normalize()
	require.NoError(t, err)
	assert.True(t, dec("7.5").Equal(li.Quantity))
	assert.True(t, dec("330").Equal(li.Total))

	_, err = entity.LineItem{BillingMode: entity.BillingModeDays, Hours: &h}.Normalize()
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestQuotation_RecalculateRequiereLineas(t *testing.T) {
	q := &entity.Quotation{Status: entity.QuotationDraft}
	assert.ErrorIs(t, q.Recalculate(), domain.ErrInvalidArgument)
}

func TestCloneItems_CopiaProfunda(t *testing.T) {
	h := dec("2")
	src := []entity.LineItem{{Description: "a", Hours: &h}}
	cp := entity.CloneItems(src)
	*src[0].Hours = dec("9")
	src[0].Description = "b"
	assert.True(t, dec("2").Equal(*cp[0].Hours))
	assert.Equal(t, "a", cp[0].Description)
}

func TestProject_Rate(t *testing.T) {
	p := &entity.Project{BillingType: entity.BillingHours, HourlyRate: dec("50")}
	rate, err := p.Rate()
	require.NoError(t, err)
	assert.True(t, dec("50").Equal(rate))

	p.BillingType = entity.BillingDays
	_, err = p.Rate()
	assert.ErrorIs(t, err, domain.ErrInvalidArgument, "sin tarifa diaria")
}
