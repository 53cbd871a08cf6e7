package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/flota-crm-api/internal/application/billing"
	"github.com/jhoicas/flota-crm-api/internal/application/dto"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
)

// QuotationHandler cotizaciones y su derivación a orden de compra o factura.
type QuotationHandler struct {
	uc *billing.QuotationUseCase
}

func NewQuotationHandler(uc *billing.QuotationUseCase) *QuotationHandler {
	return &QuotationHandler{uc: uc}
}

// Create godoc
// @Summary      Crear cotización
// @Tags         quotations
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateQuotationRequest  true  "cotización"
// @Success      201   {object}  dto.QuotationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/quotations [post]
func (h *QuotationHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateQuotationRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *QuotationHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// List GET /api/quotations?status=expired&customer_id=...
// El filtro status usa el estado efectivo (una enviada vencida cuenta como expired).
func (h *QuotationHandler) List(c *fiber.Ctx) error {
	page, err := bindPage(c)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.uc.List(c.UserContext(), c.Query("status"), c.Query("customer_id"), page)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *QuotationHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateQuotationRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// Transition POST /api/quotations/:id/transition
func (h *QuotationHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Transition(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *QuotationHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToPurchaseOrder POST /api/quotations/:id/purchase-orders
func (h *QuotationHandler) ToPurchaseOrder(c *fiber.Ctx) error {
	var in dto.DerivePurchaseOrderRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.ToPurchaseOrder(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ToInvoice POST /api/quotations/:id/invoices
func (h *QuotationHandler) ToInvoice(c *fiber.Ctx) error {
	var in dto.DeriveInvoiceRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.ToInvoice(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// PurchaseOrderHandler órdenes de compra (de cliente o a proveedor).
type PurchaseOrderHandler struct {
	uc *billing.PurchaseOrderUseCase
}

func NewPurchaseOrderHandler(uc *billing.PurchaseOrderUseCase) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{uc: uc}
}

func (h *PurchaseOrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreatePurchaseOrderRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *PurchaseOrderHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *PurchaseOrderHandler) List(c *fiber.Ctx) error {
	page, err := bindPage(c)
	if err != nil {
		return fail(c, err)
	}
	f := repository.Filter{
		Status:      c.Query("status"),
		CustomerID:  c.Query("customer_id"),
		QuotationID: c.Query("quotation_id"),
	}
	out, err := h.uc.List(c.UserContext(), f, page)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *PurchaseOrderHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdatePurchaseOrderRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *PurchaseOrderHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.Transition(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *PurchaseOrderHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToInvoice POST /api/purchase-orders/:id/invoices. Solo órdenes de cliente aprobadas.
func (h *PurchaseOrderHandler) ToInvoice(c *fiber.Ctx) error {
	var in dto.DeriveInvoiceRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.uc.ToInvoice(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}
