package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/flota-crm-api/internal/application/billing"
	"github.com/jhoicas/flota-crm-api/internal/application/dto"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
)

// InvoiceHandler facturas, recibos de pago y representación PDF.
type InvoiceHandler struct {
	invoices *billing.InvoiceUseCase
	receipts *billing.ReceiptUseCase
	pdf      *billing.PDFUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(invoices *billing.InvoiceUseCase, receipts *billing.ReceiptUseCase, pdf *billing.PDFUseCase) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, receipts: receipts, pdf: pdf}
}

// Create godoc
// @Summary      Crear factura directa
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "factura"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.invoices.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID GET /api/invoices/:id (estado efectivo: sent vencida se informa overdue).
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.invoices.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	page, err := bindPage(c)
	if err != nil {
		return fail(c, err)
	}
	f := repository.Filter{
		Status:          c.Query("status"),
		CustomerID:      c.Query("customer_id"),
		QuotationID:     c.Query("quotation_id"),
		PurchaseOrderID: c.Query("purchase_order_id"),
	}
	out, err := h.invoices.List(c.UserContext(), f, page)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *InvoiceHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.invoices.Transition(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.invoices.Delete(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// PDF GET /api/invoices/:id/pdf
func (h *InvoiceHandler) PDF(c *fiber.Ctx) error {
	body, filename, err := h.pdf.InvoicePDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return sendPDF(c, body, filename)
}

// MonthlyPDF GET /api/monthly-invoices/:id/pdf
func (h *InvoiceHandler) MonthlyPDF(c *fiber.Ctx) error {
	body, filename, err := h.pdf.MonthlyInvoicePDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return sendPDF(c, body, filename)
}

// CreateReceipt godoc
// @Summary      Registrar pago
// @Description  Crea el recibo y suma el monto a paid_amount de la factura (o factura mensual) en una sola operación.
// @Tags         receipts
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateReceiptRequest  true  "recibo"
// @Success      201   {object}  dto.ReceiptResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/receipts [post]
func (h *InvoiceHandler) CreateReceipt(c *fiber.Ctx) error {
	var in dto.CreateReceiptRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.receipts.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *InvoiceHandler) GetReceipt(c *fiber.Ctx) error {
	out, err := h.receipts.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// ListReceipts GET /api/receipts?invoice_id=...
func (h *InvoiceHandler) ListReceipts(c *fiber.Ctx) error {
	page, err := bindPage(c)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.receipts.List(c.UserContext(), c.Query("invoice_id"), page)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func sendPDF(c *fiber.Ctx, body []byte, filename string) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="`+filename+`"`)
	return c.Send(body)
}
