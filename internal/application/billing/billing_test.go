package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/flota-crm-api/internal/application/billing"
	"github.com/jhoicas/flota-crm-api/internal/application/dto"
	"github.com/jhoicas/flota-crm-api/internal/application/ports"
	"github.com/jhoicas/flota-crm-api/internal/application/usecase"
	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
	"github.com/jhoicas/flota-crm-api/internal/infrastructure/memory"
	"github.com/jhoicas/flota-crm-api/pkg/logger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// fakeClock avanza un minuto por lectura para que cada escritura tenga una versión distinta.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

type env struct {
	ctx       context.Context
	clock     *fakeClock
	store     *memory.Store
	repos     repository.Repositories
	customers *billing.CustomerUseCase
	quotes    *billing.QuotationUseCase
	orders    *billing.PurchaseOrderUseCase
	invoices  *billing.InvoiceUseCase
	receipts  *billing.ReceiptUseCase
}

func newEnv(t *testing.T, policy entity.PaidStatusPolicy) *env {
	t.Helper()
	store := memory.NewStore()
	return newEnvWith(t, store, memory.NewTxRunner(store), policy)
}

func newEnvWith(t *testing.T, store *memory.Store, tx ports.TxRunner, policy entity.PaidStatusPolicy) *env {
	t.Helper()
	clk := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	clock := ports.Clock(clk.now)
	perms := usecase.NewPermissionService(nil, nil)
	settings := billing.Settings{PaidStatusPolicy: policy, PaymentTermDays: 30}
	repos := store.Repositories()
	return &env{
		ctx:       ports.WithActor(context.Background(), ports.Actor{UserID: "u1", Role: entity.RoleAdmin}),
		clock:     clk,
		store:     store,
		repos:     repos,
		customers: billing.NewCustomerUseCase(repos.Customers, perms, clock),
		quotes:    billing.NewQuotationUseCase(repos, perms, clock, settings),
		orders:    billing.NewPurchaseOrderUseCase(repos, perms, clock, settings),
		invoices:  billing.NewInvoiceUseCase(repos, perms, clock, settings),
		receipts:  billing.NewReceiptUseCase(repos, tx, perms, clock, settings, logger.Nop()),
	}
}

func (e *env) customer(t *testing.T) string {
	t.Helper()
	c, err := e.customers.Create(e.ctx, dto.CreateCustomerRequest{Name: "Constructora Andes", TaxID: "900123456"})
	require.NoError(t, err)
	return c.ID
}

// acceptedQuotation subtotal 1000 con tasa 5 → total 1050.
func (e *env) acceptedQuotation(t *testing.T) *dto.QuotationResponse {
	t.Helper()
	rate := d("5")
	q, err := e.quotes.Create(e.ctx, dto.CreateQuotationRequest{
		Number:     "QUO-001",
		CustomerID: e.customer(t),
		ValidUntil: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Items: []dto.LineItemDTO{
			{Description: "Camioneta 4x4", Quantity: d("2"), UnitPrice: d("300")},
			{Description: "Conductor", Quantity: d("1"), UnitPrice: d("400")},
		},
		TaxRate: &rate,
	})
	require.NoError(t, err)
	assert.True(t, d("1050").Equal(q.Total))
	_, err = e.quotes.Transition(e.ctx, q.ID, dto.TransitionRequest{Status: "sent"})
	require.NoError(t, err)
	q, err = e.quotes.Transition(e.ctx, q.ID, dto.TransitionRequest{Status: "accepted"})
	require.NoError(t, err)
	return q
}

func (e *env) sentInvoice(t *testing.T) *dto.InvoiceResponse {
	t.Helper()
	q := e.acceptedQuotation(t)
	inv, err := e.quotes.ToInvoice(e.ctx, q.ID, dto.DeriveInvoiceRequest{Number: "INV-001"})
	require.NoError(t, err)
	inv, err = e.invoices.Transition(e.ctx, inv.ID, dto.TransitionRequest{Status: "sent", UpdatedAt: inv.UpdatedAt})
	require.NoError(t, err)
	return inv
}

func (e *env) pay(inv, amount string) (*dto.ReceiptResponse, error) {
	return e.receipts.Create(e.ctx, dto.CreateReceiptRequest{
		Number:        "REC-" + amount,
		InvoiceID:     inv,
		Amount:        d(amount),
		PaymentMethod: entity.PaymentBankTransfer,
	})
}

func TestCadenaCompleta_CotizacionOrdenFacturaRecibos(t *testing.T) {
	e := newEnv(t, entity.PaidStatusDerived)
	q := e.acceptedQuotation(t)

	po, err := e.quotes.ToPurchaseOrder(e.ctx, q.ID, dto.DerivePurchaseOrderRequest{Number: "PO-001"})
	require.NoError(t, err)
	assert.Equal(t, q.ID, po.QuotationID)
	assert.Equal(t, "draft", po.Status)
	for _, s := range []string{"pending", "approved"} {
		po, err = e.orders.Transition(e.ctx, po.ID, dto.TransitionRequest{Status: s})
		require.NoError(t, err)
	}

	inv, err := e.orders.ToInvoice(e.ctx, po.ID, dto.DeriveInvoiceRequest{Number: "INV-001"})
	require.NoError(t, err)
	assert.Equal(t, po.ID, inv.PurchaseOrderID)
	assert.Equal(t, q.ID, inv.QuotationID)
	assert.True(t, d("1050").Equal(inv.Total))
	assert.Equal(t, inv.Date.AddDate(0, 0, 30), inv.DueDate)

	_, err = e.pay(inv.ID, "100")
	assert.ErrorIs(t, err, domain.ErrInvalidState, "una factura en borrador no admite pagos")

	_, err = e.invoices.Transition(e.ctx, inv.ID, dto.TransitionRequest{Status: "sent"})
	require.NoError(t, err)

	r1, err := e.pay(inv.ID, "700")
	require.NoError(t, err)
	assert.Equal(t, "issued", r1.Status)
	assert.Equal(t, "sent", r1.InvoiceStatus)
	require.NotNil(t, r1.InvoicePaidAmount)
	assert.True(t, d("700").Equal(*r1.InvoicePaidAmount))

	_, err = e.pay(inv.ID, "351")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument, "sobrepago")

	r2, err := e.pay(inv.ID, "350")
	require.NoError(t, err)
	assert.Equal(t, "paid", r2.InvoiceStatus)

	got, err := e.invoices.GetByID(e.ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
	assert.Equal(t, "paid", got.Status)

	list, err := e.receipts.List(e.ctx, inv.ID, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 2)

	assert.ErrorIs(t, e.invoices.Delete(e.ctx, inv.ID), domain.ErrConflict)
	assert.ErrorIs(t, e.orders.Delete(e.ctx, po.ID), domain.ErrConflict)
	assert.ErrorIs(t, e.quotes.Delete(e.ctx, q.ID), domain.ErrConflict)
}

func TestCotizacion_EdicionCopiaPorValor(t *testing.T) {
	e := newEnv(t, entity.PaidStatusDerived)
	customerID := e.customer(t)
	q, err := e.quotes.Create(e.ctx, dto.CreateQuotationRequest{
		Number: "QUO-9", CustomerID: customerID,
		Items: []dto.LineItemDTO{{Description: "Grúa", Quantity: d("1"), UnitPrice: d("100"), TaxPercent: d("10")}},
	})
	require.NoError(t, err)
	assert.True(t, d("110").Equal(q.Total))

	q, err = e.quotes.Update(e.ctx, q.ID, dto.UpdateQuotationRequest{
		Items:     []dto.LineItemDTO{{Description: "Grúa", Quantity: d("2"), UnitPrice: d("100"), TaxPercent: d("10")}},
		UpdatedAt: q.UpdatedAt,
	})
	require.NoError(t, err)
	assert.True(t, d("220").Equal(q.Total))

	_, err = e.quotes.Transition(e.ctx, q.ID, dto.TransitionRequest{Status: "sent"})
	require.NoError(t, err)
	q, err = e.quotes.Transition(e.ctx, q.ID, dto.TransitionRequest{Status: "accepted"})
	require.NoError(t, err)
	inv, err := e.quotes.ToInvoice(e.ctx, q.ID, dto.DeriveInvoiceRequest{Number: "INV-9"})
	require.NoError(t, err)

	_, err = e.quotes.Update(e.ctx, q.ID, dto.UpdateQuotationRequest{Notes: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrInvalidState, "aceptada no se edita")

	got, err := e.invoices.GetByID(e.ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, d("220").Equal(got.Total))
}

func ptr(s string) *string { return &s }

func TestTransicion_VersionVieja(t *testing.T) {
	e := newEnv(t, entity.PaidStatusDerived)
	inv := e.sentInvoice(t)
	stale := inv.UpdatedAt

	_, err := e.pay(inv.ID, "100")
	require.NoError(t, err)

	_, err = e.invoices.Transition(e.ctx, inv.ID, dto.TransitionRequest{Status: "cancelled", UpdatedAt: stale})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = e.receipts.Create(e.ctx, dto.CreateReceiptRequest{
		Number: "REC-X", InvoiceID: inv.ID, Amount: d("10"),
		PaymentMethod: entity.PaymentCash, InvoiceUpdatedAt: stale,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestFactura_VencidaPerezosa(t *testing.T) {
	e := newEnv(t, entity.PaidStatusDerived)
	customerID := e.customer(t)
	due := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	inv, err := e.invoices.Create(e.ctx, dto.CreateInvoiceRequest{
		Number: "INV-7", CustomerID: customerID, Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), DueDate: &due,
		Items: []dto.LineItemDTO{{Description: "Traslado", Quantity: d("1"), UnitPrice: d("500")}},
	})
	require.NoError(t, err)
	_, err = e.invoices.Transition(e.ctx, inv.ID, dto.TransitionRequest{Status: "sent"})
	require.NoError(t, err)

	e.clock.t = time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	got, err := e.invoices.GetByID(e.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "overdue", got.Status)

	stored, err := e.repos.Invoices.GetByID(e.ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.InvoiceSent, stored.Status, "la lectura no persiste el vencimiento")

	overdue, err := e.invoices.List(e.ctx, repository.Filter{Status: "overdue"}, dto.PageRequest{})
	require.NoError(t, err)
	require.Len(t, overdue.Items, 1)
	sent, err := e.invoices.List(e.ctx, repository.Filter{Status: "sent"}, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, sent.Items)

	r, err := e.pay(inv.ID, "500")
	require.NoError(t, err)
	assert.Equal(t, "paid", r.InvoiceStatus)
}

func TestFactura_PoliticaDerivadaNoAceptaPaid(t *testing.T) {
	e := newEnv(t, entity.PaidStatusDerived)
	inv := e.sentInvoice(t)
	_, err := e.invoices.Transition(e.ctx, inv.ID, dto.TransitionRequest{Status: "paid"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestFactura_PoliticaManual(t *testing.T) {
	e := newEnv(t, entity.PaidStatusManual)
	inv := e.sentInvoice(t)

	r, err := e.pay(inv.ID, "1050")
	require.NoError(t, err)
	assert.Equal(t, "sent", r.InvoiceStatus, "con política manual el recibo no cambia el estado")

	got, err := e.invoices.Transition(e.ctx, inv.ID, dto.TransitionRequest{Status: "paid"})
	require.NoError(t, err)
	assert.Equal(t, "paid", got.Status)
}

func TestPermisos_RolSinAcceso(t *testing.T) {
	e := newEnv(t, entity.PaidStatusDerived)
	viewer := ports.WithActor(context.Background(), ports.Actor{UserID: "v", Role: entity.RoleViewer})
	_, err := e.customers.Create(viewer, dto.CreateCustomerRequest{Name: "X", TaxID: "1"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	q := e.acceptedQuotation(t)
	assert.ErrorIs(t, e.quotes.Delete(viewer, q.ID), domain.ErrForbidden)
	_, err = e.quotes.Create(context.Background(), dto.CreateQuotationRequest{Number: "Q", CustomerID: q.CustomerID})
	assert.ErrorIs(t, err, domain.ErrForbidden, "sin actor no hay permisos")
}

func TestOrdenDeCompra_Proveedor(t *testing.T) {
	e := newEnv(t, entity.PaidStatusDerived)
	_, err := e.orders.Create(e.ctx, dto.CreatePurchaseOrderRequest{Number: "PO-V", VendorID: "no-existe"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	v := &entity.Vendor{ID: "v1", Name: "Repuestos SAS"}
	require.NoError(t, e.repos.Vendors.Create(e.ctx, v))
	po, err := e.orders.Create(e.ctx, dto.CreatePurchaseOrderRequest{Number: "PO-V", VendorID: "v1"})
	require.NoError(t, err)

	_, err = e.orders.Transition(e.ctx, po.ID, dto.TransitionRequest{Status: "pending"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument, "sin líneas no sale de borrador")

	po, err = e.orders.Update(e.ctx, po.ID, dto.UpdatePurchaseOrderRequest{
		Items: []dto.LineItemDTO{{Description: "Llantas", Quantity: d("4"), UnitPrice: d("150")}},
	})
	require.NoError(t, err)
	for _, s := range []string{"pending", "approved"} {
		po, err = e.orders.Transition(e.ctx, po.ID, dto.TransitionRequest{Status: s})
		require.NoError(t, err)
	}
	_, err = e.orders.ToInvoice(e.ctx, po.ID, dto.DeriveInvoiceRequest{Number: "INV-V"})
	assert.ErrorIs(t, err, domain.ErrInvalidArgument, "una orden a proveedor no se factura al cliente")
}

func TestCliente_TaxIDDuplicado(t *testing.T) {
	e := newEnv(t, entity.PaidStatusDerived)
	e.customer(t)
	_, err := e.customers.Create(e.ctx, dto.CreateCustomerRequest{Name: "Otro", TaxID: "900123456"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	list, err := e.customers.List(e.ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
}

// conflictingInvoices simula una escritura concurrente: el compare-and-swap siempre falla.
type conflictingInvoices struct{ repository.InvoiceRepository }

func (conflictingInvoices) Update(context.Context, *entity.Invoice, time.Time) error {
	return domain.ErrConflict
}

type conflictTx struct{ inner ports.TxRunner }

func (c conflictTx) Run(ctx context.Context, fn func(repository.Repositories) error) error {
	return c.inner.Run(ctx, func(r repository.Repositories) error {
		r.Invoices = conflictingInvoices{r.Invoices}
		return fn(r)
	})
}

func (c conflictTx) RunExclusive(ctx context.Context, key string, fn func(repository.Repositories) error) error {
	return c.Run(ctx, fn)
}

func TestRecibo_CompensaSiFallaLaFactura(t *testing.T) {
	store := memory.NewStore()
	e := newEnvWith(t, store, conflictTx{memory.NewTxRunner(store)}, entity.PaidStatusDerived)
	inv := e.sentInvoice(t)

	_, err := e.pay(inv.ID, "100")
	assert.ErrorIs(t, err, domain.ErrConflict)

	list, err := e.receipts.List(e.ctx, inv.ID, dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items, "el recibo creado se elimina")

	got, err := e.invoices.GetByID(e.ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, got.PaidAmount.IsZero())
}
