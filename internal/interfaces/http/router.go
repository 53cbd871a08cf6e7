package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/flota-crm-api/internal/application/auth"
	"github.com/jhoicas/flota-crm-api/internal/application/billing"
	"github.com/jhoicas/flota-crm-api/internal/application/projects"
	"github.com/jhoicas/flota-crm-api/internal/application/usecase"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.AuthUseCase
	UserUC     *usecase.UserUseCase
	CustomerUC *billing.CustomerUseCase
	VendorUC   *usecase.VendorUseCase
	VehicleUC  *usecase.VehicleUseCase

	QuotationUC     *billing.QuotationUseCase
	PurchaseOrderUC *billing.PurchaseOrderUseCase
	InvoiceUC       *billing.InvoiceUseCase
	ReceiptUC       *billing.ReceiptUseCase
	PDFUC           *billing.PDFUseCase

	ProjectUC        *projects.ProjectUseCase
	UsageUC          *projects.UsageUseCase
	MonthlyInvoiceUC *projects.MonthlyInvoiceUseCase

	JWTSecret string
	Logger    *logger.Logger
}

// Router registra las rutas de la API. Los permisos finos por tipo de entidad los
// decide cada caso de uso; aquí solo se exige un token válido.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	for _, h := range RequestLogger(log) {
		app.Use(h)
	}

	api := app.Group("/api")

	// Auth (login público; registro solo admin)
	authHandler := NewAuthHandler(deps.AuthUC, deps.UserUC)
	api.Post("/auth/login", authHandler.Login)

	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Post("/auth/register", RequireRole(entity.RoleAdmin), authHandler.Register)
	protected.Get("/auth/me", authHandler.Me)

	parties := NewPartyHandler(deps.CustomerUC, deps.VendorUC, deps.VehicleUC)
	customers := protected.Group("/customers")
	customers.Post("/", parties.CreateCustomer)
	customers.Get("/", parties.ListCustomers)
	customers.Get("/:id", parties.GetCustomer)

	vendors := protected.Group("/vendors")
	vendors.Post("/", parties.CreateVendor)
	vendors.Get("/", parties.ListVendors)
	vendors.Get("/:id", parties.GetVendor)

	vehicles := protected.Group("/vehicles")
	vehicles.Post("/", parties.CreateVehicle)
	vehicles.Get("/", parties.ListVehicles)
	vehicles.Get("/:id", parties.GetVehicle)
	vehicles.Put("/:id", parties.UpdateVehicle)

	qh := NewQuotationHandler(deps.QuotationUC)
	quotations := protected.Group("/quotations")
	quotations.Post("/", qh.Create)
	quotations.Get("/", qh.List)
	quotations.Get("/:id", qh.GetByID)
	quotations.Put("/:id", qh.Update)
	quotations.Delete("/:id", qh.Delete)
	quotations.Post("/:id/transition", qh.Transition)
	quotations.Post("/:id/purchase-orders", qh.ToPurchaseOrder)
	quotations.Post("/:id/invoices", qh.ToInvoice)

	poh := NewPurchaseOrderHandler(deps.PurchaseOrderUC)
	orders := protected.Group("/purchase-orders")
	orders.Post("/", poh.Create)
	orders.Get("/", poh.List)
	orders.Get("/:id", poh.GetByID)
	orders.Put("/:id", poh.Update)
	orders.Delete("/:id", poh.Delete)
	orders.Post("/:id/transition", poh.Transition)
	orders.Post("/:id/invoices", poh.ToInvoice)

	ih := NewInvoiceHandler(deps.InvoiceUC, deps.ReceiptUC, deps.PDFUC)
	invoices := protected.Group("/invoices")
	invoices.Post("/", ih.Create)
	invoices.Get("/", ih.List)
	invoices.Get("/:id", ih.GetByID)
	invoices.Get("/:id/pdf", ih.PDF)
	invoices.Delete("/:id", ih.Delete)
	invoices.Post("/:id/transition", ih.Transition)

	receipts := protected.Group("/receipts")
	receipts.Post("/", ih.CreateReceipt)
	receipts.Get("/", ih.ListReceipts)
	receipts.Get("/:id", ih.GetReceipt)

	ph := NewProjectHandler(deps.ProjectUC, deps.UsageUC, deps.MonthlyInvoiceUC)
	projectsGroup := protected.Group("/projects")
	projectsGroup.Post("/", ph.Create)
	projectsGroup.Get("/", ph.List)
	projectsGroup.Get("/:id", ph.GetByID)
	projectsGroup.Put("/:id", ph.Update)
	projectsGroup.Delete("/:id", ph.Delete)
	projectsGroup.Post("/:id/transition", ph.Transition)
	projectsGroup.Post("/:id/usage", ph.RecordUsage)
	projectsGroup.Get("/:id/usage", ph.ListUsage)
	projectsGroup.Post("/:id/monthly-invoices", ph.Aggregate)

	usage := protected.Group("/usage-entries")
	usage.Get("/:id", ph.GetUsage)
	usage.Put("/:id", ph.UpdateUsage)
	usage.Delete("/:id", ph.DeleteUsage)

	monthly := protected.Group("/monthly-invoices")
	monthly.Get("/", ph.ListMonthly)
	monthly.Get("/:id", ph.GetMonthly)
	monthly.Get("/:id/pdf", ih.MonthlyPDF)
	monthly.Delete("/:id", ph.DeleteMonthly)
	monthly.Post("/:id/transition", ph.TransitionMonthly)
}
