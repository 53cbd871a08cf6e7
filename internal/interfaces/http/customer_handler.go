package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/flota-crm-api/internal/application/billing"
	"github.com/jhoicas/flota-crm-api/internal/application/dto"
	"github.com/jhoicas/flota-crm-api/internal/application/usecase"
)

// PartyHandler clientes, proveedores y vehículos: catálogos sin cadena documental.
type PartyHandler struct {
	customers *billing.CustomerUseCase
	vendors   *usecase.VendorUseCase
	vehicles  *usecase.VehicleUseCase
}

func NewPartyHandler(customers *billing.CustomerUseCase, vendors *usecase.VendorUseCase, vehicles *usecase.VehicleUseCase) *PartyHandler {
	return &PartyHandler{customers: customers, vendors: vendors, vehicles: vehicles}
}

// CreateCustomer POST /api/customers
func (h *PartyHandler) CreateCustomer(c *fiber.Ctx) error {
	var in dto.CreateCustomerRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.customers.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetCustomer GET /api/customers/:id
func (h *PartyHandler) GetCustomer(c *fiber.Ctx) error {
	out, err := h.customers.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// ListCustomers GET /api/customers?limit=20&offset=0
func (h *PartyHandler) ListCustomers(c *fiber.Ctx) error {
	page, err := bindPage(c)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.customers.List(c.UserContext(), page)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *PartyHandler) CreateVendor(c *fiber.Ctx) error {
	var in dto.CreateVendorRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.vendors.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *PartyHandler) GetVendor(c *fiber.Ctx) error {
	out, err := h.vendors.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *PartyHandler) ListVendors(c *fiber.Ctx) error {
	page, err := bindPage(c)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.vendors.List(c.UserContext(), page)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

// CreateVehicle POST /api/vehicles. La placa se normaliza a mayúsculas y es única.
func (h *PartyHandler) CreateVehicle(c *fiber.Ctx) error {
	var in dto.CreateVehicleRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.vehicles.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

func (h *PartyHandler) GetVehicle(c *fiber.Ctx) error {
	out, err := h.vehicles.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *PartyHandler) UpdateVehicle(c *fiber.Ctx) error {
	var in dto.UpdateVehicleRequest
	if err := bindJSON(c, &in); err != nil {
		return fail(c, err)
	}
	out, err := h.vehicles.Update(c.UserContext(), c.Params("id"), in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}

func (h *PartyHandler) ListVehicles(c *fiber.Ctx) error {
	page, err := bindPage(c)
	if err != nil {
		return fail(c, err)
	}
	out, err := h.vehicles.List(c.UserContext(), page)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(out)
}
