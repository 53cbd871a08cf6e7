package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/flota-crm-api/internal/application/auth"
	"github.com/jhoicas/flota-crm-api/internal/application/billing"
	"github.com/jhoicas/flota-crm-api/internal/application/ports"
	"github.com/jhoicas/flota-crm-api/internal/application/projects"
	"github.com/jhoicas/flota-crm-api/internal/application/usecase"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/infrastructure/memory"
	"github.com/jhoicas/flota-crm-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/flota-crm-api/internal/interfaces/http"
	"github.com/jhoicas/flota-crm-api/pkg/logger"
)

// newAPI levanta la API completa sobre el almacén en memoria.
func newAPI(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repositories()
	tx := memory.NewTxRunner(store)
	base := time.Date(2024, 4, 2, 9, 0, 0, 0, time.UTC)
	var ticks int
	clock := ports.Clock(func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * time.Second)
	})
	perms := usecase.NewPermissionService(nil, nil)
	bs := billing.Settings{PaidStatusPolicy: entity.PaidStatusDerived, PaymentTermDays: 30}
	ps := projects.Settings{DefaultTaxRate: decimal.NewFromInt(19), PaymentTermDays: 15, PaidStatusPolicy: entity.PaidStatusDerived}
	log := logger.Nop()

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		AuthUC:           auth.NewAuthUseCase(repos.Users, auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: 60, Issuer: testIssuer}, clock),
		UserUC:           usecase.NewUserUseCase(repos.Users),
		CustomerUC:       billing.NewCustomerUseCase(repos.Customers, perms, clock),
		VendorUC:         usecase.NewVendorUseCase(repos.Vendors, perms, clock),
		VehicleUC:        usecase.NewVehicleUseCase(repos.Vehicles, perms, clock),
		QuotationUC:      billing.NewQuotationUseCase(repos, perms, clock, bs),
		PurchaseOrderUC:  billing.NewPurchaseOrderUseCase(repos, perms, clock, bs),
		InvoiceUC:        billing.NewInvoiceUseCase(repos, perms, clock, bs),
		ReceiptUC:        billing.NewReceiptUseCase(repos, tx, perms, clock, bs, log),
		PDFUC:            billing.NewPDFUseCase(repos, clock, pdf.NewMarotoPDFGenerator("Flota CRM")),
		ProjectUC:        projects.NewProjectUseCase(repos, perms, clock),
		UsageUC:          projects.NewUsageUseCase(repos, perms, clock),
		MonthlyInvoiceUC: projects.NewMonthlyInvoiceUseCase(repos, tx, perms, clock, ps, log),
		JWTSecret:        testJWTSecret,
		Logger:           log,
	})
	return app
}

// call envía body como JSON y decodifica la respuesta en out (si no es nil).
func call(t *testing.T, app *fiber.App, role, method, path string, body any, out any) int {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}

type idResp struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Total     string    `json:"total"`
	UpdatedAt time.Time `json:"updated_at"`
}

type errResp struct {
	Code string `json:"code"`
}

func TestDocumentChainOverHTTP(t *testing.T) {
	app := newAPI(t)

	var cust idResp
	require.Equal(t, http.StatusCreated, call(t, app, "admin", "POST", "/api/customers",
		map[string]any{"name": "Constructora Andes", "tax_id": "900123456"}, &cust))

	var q idResp
	require.Equal(t, http.StatusCreated, call(t, app, "sales", "POST", "/api/quotations", map[string]any{
		"number": "COT-1", "customer_id": cust.ID, "tax_rate": "5",
		"items": []map[string]any{{"description": "Grúa 30t", "quantity": "2", "unit_price": "500"}},
	}, &q))
	assert.Equal(t, "1050", q.Total)

	for _, st := range []string{"sent", "accepted"} {
		require.Equal(t, http.StatusOK, call(t, app, "sales", "POST", "/api/quotations/"+q.ID+"/transition",
			map[string]any{"status": st}, &q))
	}

	var inv idResp
	require.Equal(t, http.StatusCreated, call(t, app, "admin", "POST", "/api/quotations/"+q.ID+"/invoices",
		map[string]any{"number": "FAC-1"}, &inv))
	require.Equal(t, http.StatusOK, call(t, app, "accountant", "POST", "/api/invoices/"+inv.ID+"/transition",
		map[string]any{"status": "sent"}, &inv))

	var e errResp
	assert.Equal(t, http.StatusBadRequest, call(t, app, "accountant", "POST", "/api/receipts", map[string]any{
		"number": "REC-0", "invoice_id": inv.ID, "amount": "2000", "payment_method": "cash",
	}, &e))
	assert.Equal(t, "VALIDATION", e.Code)

	var rc struct {
		InvoiceStatus string `json:"invoice_status"`
	}
	require.Equal(t, http.StatusCreated, call(t, app, "accountant", "POST", "/api/receipts", map[string]any{
		"number": "REC-1", "invoice_id": inv.ID, "amount": "1050", "payment_method": "bank_transfer",
	}, &rc))
	assert.Equal(t, "paid", rc.InvoiceStatus)

	assert.Equal(t, http.StatusConflict, call(t, app, "admin", "DELETE", "/api/invoices/"+inv.ID, nil, &e))
	assert.Equal(t, http.StatusForbidden, call(t, app, "viewer", "POST", "/api/customers",
		map[string]any{"name": "X", "tax_id": "1"}, &e))
	assert.Equal(t, http.StatusUnauthorized, call(t, app, "", "GET", "/api/invoices", nil, nil))
	assert.Equal(t, http.StatusNotFound, call(t, app, "admin", "GET", "/api/invoices/nope", nil, &e))
}

func TestMonthlyAggregationOverHTTP(t *testing.T) {
	app := newAPI(t)

	var cust, q, v, p idResp
	require.Equal(t, http.StatusCreated, call(t, app, "admin", "POST", "/api/customers",
		map[string]any{"name": "Minera Sur", "tax_id": "800111222"}, &cust))
	require.Equal(t, http.StatusCreated, call(t, app, "admin", "POST", "/api/quotations", map[string]any{
		"number": "COT-9", "customer_id": cust.ID,
		"items": []map[string]any{{"description": "Alquiler por horas", "billing_mode": "hours", "hours": "10", "unit_price": "50"}},
	}, &q))
	for _, st := range []string{"sent", "accepted"} {
		require.Equal(t, http.StatusOK, call(t, app, "admin", "POST", "/api/quotations/"+q.ID+"/transition",
			map[string]any{"status": st}, &q))
	}
	require.Equal(t, http.StatusCreated, call(t, app, "operations", "POST", "/api/vehicles",
		map[string]any{"plate_number": "abc123", "model": "Liebherr LTM"}, &v))
	require.Equal(t, http.StatusCreated, call(t, app, "sales", "POST", "/api/projects", map[string]any{
		"quotation_id": q.ID, "number": "PRJ-1", "title": "Montaje planta",
		"billing_type": "hours", "hourly_rate": "50", "assigned_vehicle_ids": []string{v.ID},
	}, &p))

	for i, h := range []string{"2", "3"} {
		require.Equal(t, http.StatusCreated, call(t, app, "operations", "POST", "/api/projects/"+p.ID+"/usage", map[string]any{
			"vehicle_id": v.ID, "date": time.Date(2024, 3, 5+i, 8, 0, 0, 0, time.UTC), "hours": h,
		}, nil))
	}

	var m struct {
		ID       string `json:"id"`
		Subtotal string `json:"subtotal"`
		Total    string `json:"total"`
	}
	body := map[string]any{"month": 3, "year": 2024, "number": "FM-2024-03", "tax_rate": "0"}
	require.Equal(t, http.StatusCreated, call(t, app, "accountant", "POST", "/api/projects/"+p.ID+"/monthly-invoices", body, &m))
	assert.Equal(t, "250", m.Subtotal)

	var e errResp
	body["number"] = "FM-2024-03-B"
	assert.Equal(t, http.StatusUnprocessableEntity, call(t, app, "accountant", "POST", "/api/projects/"+p.ID+"/monthly-invoices", body, &e))
	assert.Equal(t, "NOTHING_TO_INVOICE", e.Code)

	var usage struct {
		Items []struct {
			Invoiced  bool   `json:"invoiced"`
			InvoiceID string `json:"invoice_id"`
		} `json:"items"`
	}
	require.Equal(t, http.StatusOK, call(t, app, "admin", "GET", "/api/projects/"+p.ID+"/usage?status=invoiced", nil, &usage))
	require.Len(t, usage.Items, 2)
	assert.Equal(t, m.ID, usage.Items[0].InvoiceID)

	req := httptest.NewRequest("GET", "/api/monthly-invoices/"+m.ID+"/pdf", nil)
	req.Header.Set("Authorization", tokenForRole(t, "admin"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
}
