package billing

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/flota-crm-api/internal/application/dto"
	"github.com/jhoicas/flota-crm-api/internal/application/ports"
	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/chain"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
)

// QuotationUseCase ciclo de vida de cotizaciones y su conversión en orden de compra o factura.
type QuotationUseCase struct {
	repos    repository.Repositories
	perms    ports.PermissionChecker
	clock    ports.Clock
	settings Settings
}

// NewQuotationUseCase construye el caso de uso.
func NewQuotationUseCase(repos repository.Repositories, perms ports.PermissionChecker, clock ports.Clock, settings Settings) *QuotationUseCase {
	return &QuotationUseCase{repos: repos, perms: perms, clock: clock, settings: settings}
}

// Create crea una cotización en borrador.
func (uc *QuotationUseCase) Create(ctx context.Context, in dto.CreateQuotationRequest) (*dto.QuotationResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindQuotation); err != nil {
		return nil, err
	}
	if err := requireCustomer(ctx, uc.repos.Customers, in.CustomerID); err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	q := &entity.Quotation{
		ID:         uuid.New().String(),
		Number:     in.Number,
		CustomerID: in.CustomerID,
		Date:       dateOr(in.Date, now),
		ValidUntil: in.ValidUntil,
		Items:      toItems(in.Items),
		TaxRate:    entity.CloneRate(in.TaxRate),
		Status:     entity.QuotationDraft,
		Terms:      in.Terms,
		Notes:      in.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := q.Recalculate(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := uc.repos.Quotations.Create(ctx, q); err != nil {
		return nil, err
	}
	return toQuotationResponse(q), nil
}

// GetByID devuelve la cotización con su estado efectivo (una enviada vencida se informa como expired).
func (uc *QuotationUseCase) GetByID(ctx context.Context, id string) (*dto.QuotationResponse, error) {
	q, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	q.RefreshStatus(uc.clock.Now())
	return toQuotationResponse(q), nil
}

// List lista cotizaciones filtrando por estado efectivo y cliente.
func (uc *QuotationUseCase) List(ctx context.Context, status, customerID string, page dto.PageRequest) (*dto.ListResponse[dto.QuotationResponse], error) {
	page.DefaultPage()
	now := uc.clock.Now()
	list, err := uc.repos.Quotations.List(ctx, repository.Filter{
		Status: status, CustomerID: customerID, AsOf: &now, Limit: page.Limit, Offset: page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.QuotationResponse, 0, len(list))
	for _, q := range list {
		q.RefreshStatus(now)
		items = append(items, *toQuotationResponse(q))
	}
	return dto.NewList(items, page.Limit, page.Offset), nil
}

// Update edita el contenido; solo mientras la cotización está en draft o sent.
func (uc *QuotationUseCase) Update(ctx context.Context, id string, in dto.UpdateQuotationRequest) (*dto.QuotationResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindQuotation); err != nil {
		return nil, err
	}
	q, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	expected, err := repository.ExpectedVersion(entity.KindQuotation, q.UpdatedAt, in.UpdatedAt)
	if err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	q.RefreshStatus(now)
	if !q.IsEditable() {
		return nil, fmt.Errorf("%w: la cotización en estado %q no admite cambios", domain.ErrInvalidState, q.Status)
	}
	if in.ValidUntil != nil {
		q.ValidUntil = *in.ValidUntil
	}
	if in.Items != nil {
		q.Items = toItems(in.Items)
	}
	if in.TaxRate != nil {
		q.TaxRate = entity.CloneRate(in.TaxRate)
	}
	if in.Terms != nil {
		q.Terms = *in.Terms
	}
	if in.Notes != nil {
		q.Notes = *in.Notes
	}
	if err := q.Recalculate(); err != nil {
		return nil, err
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}
	q.UpdatedAt = now
	if err := uc.repos.Quotations.Update(ctx, q, expected); err != nil {
		return nil, err
	}
	return toQuotationResponse(q), nil
}

// Transition aplica un cambio de estado (sent, accepted, rejected, expired).
func (uc *QuotationUseCase) Transition(ctx context.Context, id string, in dto.TransitionRequest) (*dto.QuotationResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindQuotation); err != nil {
		return nil, err
	}
	target := entity.QuotationStatus(in.Status)
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidArgument, in.Status)
	}
	q, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	expected, err := repository.ExpectedVersion(entity.KindQuotation, q.UpdatedAt, in.UpdatedAt)
	if err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	q.RefreshStatus(now)
	if err := q.TransitionTo(target, now); err != nil {
		return nil, err
	}
	if err := uc.repos.Quotations.Update(ctx, q, expected); err != nil {
		return nil, err
	}
	return toQuotationResponse(q), nil
}

// Delete elimina una cotización sin documentos derivados.
func (uc *QuotationUseCase) Delete(ctx context.Context, id string) error {
	if err := ports.RequireDelete(ctx, uc.perms, entity.KindQuotation); err != nil {
		return err
	}
	if _, err := uc.load(ctx, id); err != nil {
		return err
	}
	ref := repository.Filter{QuotationID: id, Limit: 1}
	checks := []struct {
		kind entity.Kind
		fn   func() (bool, error)
	}{
		{entity.KindPurchaseOrder, func() (bool, error) { return repository.Referenced(uc.repos.PurchaseOrders.List(ctx, ref)) }},
		{entity.KindInvoice, func() (bool, error) { return repository.Referenced(uc.repos.Invoices.List(ctx, ref)) }},
		{entity.KindProject, func() (bool, error) { return repository.Referenced(uc.repos.Projects.List(ctx, ref)) }},
	}
	for _, c := range checks {
		found, err := c.fn()
		if err != nil {
			return err
		}
		if found {
			return fmt.Errorf("%w: la cotización está referenciada por un(a) %s", domain.ErrConflict, c.kind)
		}
	}
	return uc.repos.Quotations.Delete(ctx, id)
}

// ToPurchaseOrder deriva una orden de compra en borrador desde una cotización aceptada.
func (uc *QuotationUseCase) ToPurchaseOrder(ctx context.Context, id string, in dto.DerivePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindPurchaseOrder); err != nil {
		return nil, err
	}
	q, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	q.RefreshStatus(now)
	po, err := chain.QuotationToPurchaseOrder(q, chain.PurchaseOrderOverrides{
		ID:               uuid.New().String(),
		Number:           in.Number,
		Date:             in.Date,
		ExpectedDelivery: in.ExpectedDelivery,
		Terms:            in.Terms,
		Notes:            in.Notes,
	}, now)
	if err != nil {
		return nil, err
	}
	if err := uc.repos.PurchaseOrders.Create(ctx, po); err != nil {
		return nil, err
	}
	return toPurchaseOrderResponse(po), nil
}

// ToInvoice factura directamente una cotización aceptada.
func (uc *QuotationUseCase) ToInvoice(ctx context.Context, id string, in dto.DeriveInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindInvoice); err != nil {
		return nil, err
	}
	q, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	q.RefreshStatus(now)
	date := dateOr(in.Date, now)
	inv, err := chain.QuotationToInvoice(q, chain.InvoiceOverrides{
		ID:      uuid.New().String(),
		Number:  in.Number,
		Date:    date,
		DueDate: uc.settings.dueDate(in.DueDate, date),
		Terms:   in.Terms,
		Notes:   in.Notes,
	}, now)
	if err != nil {
		return nil, err
	}
	if err := uc.repos.Invoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

func (uc *QuotationUseCase) load(ctx context.Context, id string) (*entity.Quotation, error) {
	q, err := uc.repos.Quotations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, repository.NotFound(entity.KindQuotation, id)
	}
	return q, nil
}

func requireCustomer(ctx context.Context, repo repository.CustomerRepository, id string) error {
	c, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return repository.NotFound(entity.KindCustomer, id)
	}
	return nil
}
