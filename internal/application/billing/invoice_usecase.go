package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/flota-crm-api/internal/application/dto"
	"github.com/jhoicas/flota-crm-api/internal/application/ports"
	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
)

// InvoiceUseCase facturas de venta: alta directa, consulta con vencimiento perezoso y estados.
// Los pagos se registran con ReceiptUseCase.
type InvoiceUseCase struct {
	repos    repository.Repositories
	perms    ports.PermissionChecker
	clock    ports.Clock
	settings Settings
}

// NewInvoiceUseCase construye el caso de uso.
func NewInvoiceUseCase(repos repository.Repositories, perms ports.PermissionChecker, clock ports.Clock, settings Settings) *InvoiceUseCase {
	return &InvoiceUseCase{repos: repos, perms: perms, clock: clock, settings: settings}
}

// Create crea una factura en borrador sin documento de origen.
func (uc *InvoiceUseCase) Create(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindInvoice); err != nil {
		return nil, err
	}
	if err := requireCustomer(ctx, uc.repos.Customers, in.CustomerID); err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	date := dateOr(in.Date, now)
	inv := &entity.Invoice{
		ID:         uuid.New().String(),
		Number:     in.Number,
		CustomerID: in.CustomerID,
		Date:       date,
		DueDate:    uc.settings.dueDate(in.DueDate, date),
		Items:      toItems(in.Items),
		TaxRate:    entity.CloneRate(in.TaxRate),
		PaidAmount: decimal.Zero,
		Status:     entity.InvoiceDraft,
		Terms:      in.Terms,
		Notes:      in.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := inv.Recalculate(); err != nil {
		return nil, err
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	if err := uc.repos.Invoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// GetByID devuelve la factura con su estado efectivo (overdue se evalúa al leer, sin persistir).
func (uc *InvoiceUseCase) GetByID(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := loadInvoice(ctx, uc.repos.Invoices, id)
	if err != nil {
		return nil, err
	}
	inv.RefreshStatus(uc.clock.Now())
	return toInvoiceResponse(inv), nil
}

// List lista facturas; el filtro de estado usa el estado efectivo.
func (uc *InvoiceUseCase) List(ctx context.Context, f repository.Filter, page dto.PageRequest) (*dto.ListResponse[dto.InvoiceResponse], error) {
	page.DefaultPage()
	now := uc.clock.Now()
	f.AsOf, f.Limit, f.Offset = &now, page.Limit, page.Offset
	list, err := uc.repos.Invoices.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		inv.RefreshStatus(now)
		items = append(items, *toInvoiceResponse(inv))
	}
	return dto.NewList(items, page.Limit, page.Offset), nil
}

// Transition aplica un cambio de estado solicitado (sent, cancelled y, con la política manual, paid).
func (uc *InvoiceUseCase) Transition(ctx context.Context, id string, in dto.TransitionRequest) (*dto.InvoiceResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindInvoice); err != nil {
		return nil, err
	}
	target := entity.InvoiceStatus(in.Status)
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidArgument, in.Status)
	}
	inv, err := loadInvoice(ctx, uc.repos.Invoices, id)
	if err != nil {
		return nil, err
	}
	expected, err := repository.ExpectedVersion(entity.KindInvoice, inv.UpdatedAt, in.UpdatedAt)
	if err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	inv.RefreshStatus(now)
	if err := inv.TransitionTo(target, uc.settings.PaidStatusPolicy, now); err != nil {
		return nil, err
	}
	if err := uc.repos.Invoices.Update(ctx, inv, expected); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// Delete elimina una factura sin recibos.
func (uc *InvoiceUseCase) Delete(ctx context.Context, id string) error {
	if err := ports.RequireDelete(ctx, uc.perms, entity.KindInvoice); err != nil {
		return err
	}
	if _, err := loadInvoice(ctx, uc.repos.Invoices, id); err != nil {
		return err
	}
	found, err := repository.Referenced(uc.repos.Receipts.List(ctx, repository.Filter{InvoiceID: id, Limit: 1}))
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: la factura tiene recibos registrados", domain.ErrConflict)
	}
	return uc.repos.Invoices.Delete(ctx, id)
}

func loadInvoice(ctx context.Context, repo repository.InvoiceRepository, id string) (*entity.Invoice, error) {
	inv, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, repository.NotFound(entity.KindInvoice, id)
	}
	return inv, nil
}
