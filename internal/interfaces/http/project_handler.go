package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/flota-crm-api/internal/application/dto"
	"github.com/jhoicas/flota-crm-api/internal/application/projects"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
)

// ProjectHandler proyectos de alquiler, sus consumos y la facturación mensual.
type ProjectHandler struct {
	projects *projects.ProjectUseCase
	usage    *projects.UsageUseCase
	monthly  *projects.MonthlyInvoiceUseCase
}

func NewProjectHandler(p *projects.ProjectUseCase, u *projects.UsageUseCase, m *projects.MonthlyInvoiceUseCase) *ProjectHandler {
	return &ProjectHandler{projects: p, usage: u, monthly: m}
}

// Create POST /api/projects (desde una cotización aceptada).
func (h *ProjectHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProjectRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.projects.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *ProjectHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.projects.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *ProjectHandler) List(c *fiber.Ctx) error {
	page, err := bindPage(c)
	if err != nil {
		return fail(c, err)
	}
	f := repository.Filter{
		Status:      c.Query("status"),
		CustomerID:  c.Query("customer_id"),
		QuotationID: c.Query("quotation_id"),
	}
	out, err := h.projects.List(c.UserContext(), f, page)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *ProjectHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProjectRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.projects.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *ProjectHandler) Transition(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.projects.Transition(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *ProjectHandler) Delete(c *fiber.Ctx) error {
	if err := h.projects.Delete(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RecordUsage POST /api/projects/:id/usage
func (h *ProjectHandler) RecordUsage(c *fiber.Ctx) error {
	var in dto.RecordUsageRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.usage.Record(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListUsage GET /api/projects/:id/usage?status=pending|invoiced
func (h *ProjectHandler) ListUsage(c *fiber.Ctx) error {
	page, err := bindPage(c)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.usage.List(c.UserContext(), c.Params("id"), c.Query("status"), page)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *ProjectHandler) GetUsage(c *fiber.Ctx) error {
	out, err := h.usage.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *ProjectHandler) UpdateUsage(c *fiber.Ctx) error {
	var in dto.RecordUsageRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.usage.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *ProjectHandler) DeleteUsage(c *fiber.Ctx) error {
	if err := h.usage.Delete(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Aggregate godoc
// @Summary      Facturar un mes de consumos
// @Description  Agrupa los consumos pendientes del periodo en una factura mensual y los marca facturados.
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "proyecto"
// @Param        body  body  dto.AggregateMonthRequest  true  "periodo"
// @Success      201   {object}  dto.MonthlyInvoiceResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse  "NOTHING_TO_INVOICE"
// @Router       /api/projects/{id}/monthly-invoices [post]
func (h *ProjectHandler) Aggregate(c *fiber.Ctx) error {
	var in dto.AggregateMonthRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.monthly.Aggregate(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *ProjectHandler) GetMonthly(c *fiber.Ctx) error {
	out, err := h.monthly.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *ProjectHandler) ListMonthly(c *fiber.Ctx) error {
	page, err := bindPage(c)
	if err != nil {
		return fail(c, err)
	}
	f := repository.Filter{
		Status:     c.Query("status"),
		CustomerID: c.Query("customer_id"),
		ProjectID:  c.Query("project_id"),
	}
	out, err := h.monthly.List(c.UserContext(), f, page)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *ProjectHandler) TransitionMonthly(c *fiber.Ctx) error {
	var in dto.TransitionRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.monthly.Transition(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *ProjectHandler) DeleteMonthly(c *fiber.Ctx) error {
	if err := h.monthly.Delete(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
