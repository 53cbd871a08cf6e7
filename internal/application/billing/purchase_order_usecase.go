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

// PurchaseOrderUseCase órdenes de compra: alta directa, edición, estados y facturación.
type PurchaseOrderUseCase struct {
	repos    repository.Repositories
	perms    ports.PermissionChecker
	clock    ports.Clock
	settings Settings
}

// NewPurchaseOrderUseCase construye el caso de uso.
func NewPurchaseOrderUseCase(repos repository.Repositories, perms ports.PermissionChecker, clock ports.Clock, settings Settings) *PurchaseOrderUseCase {
	return &PurchaseOrderUseCase{repos: repos, perms: perms, clock: clock, settings: settings}
}

// Create crea una orden en borrador para un cliente o un proveedor.
func (uc *PurchaseOrderUseCase) Create(ctx context.Context, in dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindPurchaseOrder); err != nil {
		return nil, err
	}
	switch {
	case in.CustomerID != "" && in.VendorID != "":
		return nil, fmt.Errorf("%w: se requiere exactamente uno de customer_id o vendor_id", domain.ErrInvalidArgument)
	case in.CustomerID != "":
		if err := requireCustomer(ctx, uc.repos.Customers, in.CustomerID); err != nil {
			return nil, err
		}
	case in.VendorID != "":
		v, err := uc.repos.Vendors.GetByID(ctx, in.VendorID)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, repository.NotFound(entity.KindVendor, in.VendorID)
		}
	}
	now := uc.clock.Now()
	po := &entity.PurchaseOrder{
		ID:               uuid.New().String(),
		Number:           in.Number,
		CustomerID:       in.CustomerID,
		VendorID:         in.VendorID,
		Date:             dateOr(in.Date, now),
		ExpectedDelivery: in.ExpectedDelivery,
		Items:            toItems(in.Items),
		TaxRate:          entity.CloneRate(in.TaxRate),
		Status:           entity.PurchaseOrderDraft,
		Terms:            in.Terms,
		Notes:            in.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := po.Recalculate(); err != nil {
		return nil, err
	}
	if err := po.Validate(); err != nil {
		return nil, err
	}
	if err := uc.repos.PurchaseOrders.Create(ctx, po); err != nil {
		return nil, err
	}
	return toPurchaseOrderResponse(po), nil
}

// GetByID obtiene una orden.
func (uc *PurchaseOrderUseCase) GetByID(ctx context.Context, id string) (*dto.PurchaseOrderResponse, error) {
	po, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPurchaseOrderResponse(po), nil
}

// List lista órdenes por estado, cliente o cotización de origen.
func (uc *PurchaseOrderUseCase) List(ctx context.Context, f repository.Filter, page dto.PageRequest) (*dto.ListResponse[dto.PurchaseOrderResponse], error) {
	page.DefaultPage()
	f.Limit, f.Offset = page.Limit, page.Offset
	list, err := uc.repos.PurchaseOrders.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PurchaseOrderResponse, 0, len(list))
	for _, po := range list {
		items = append(items, *toPurchaseOrderResponse(po))
	}
	return dto.NewList(items, page.Limit, page.Offset), nil
}

// Update edita una orden en draft o pending.
func (uc *PurchaseOrderUseCase) Update(ctx context.Context, id string, in dto.UpdatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindPurchaseOrder); err != nil {
		return nil, err
	}
	po, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	expected, err := repository.ExpectedVersion(entity.KindPurchaseOrder, po.UpdatedAt, in.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if po.Status != entity.PurchaseOrderDraft && po.Status != entity.PurchaseOrderPending {
		return nil, fmt.Errorf("%w: la orden en estado %q no admite cambios", domain.ErrInvalidState, po.Status)
	}
	if in.ExpectedDelivery != nil {
		po.ExpectedDelivery = in.ExpectedDelivery
	}
	if in.Items != nil {
		po.Items = toItems(in.Items)
	}
	if in.TaxRate != nil {
		po.TaxRate = entity.CloneRate(in.TaxRate)
	}
	if in.Terms != nil {
		po.Terms = *in.Terms
	}
	if in.Notes != nil {
		po.Notes = *in.Notes
	}
	if err := po.Recalculate(); err != nil {
		return nil, err
	}
	po.UpdatedAt = uc.clock.Now()
	if err := uc.repos.PurchaseOrders.Update(ctx, po, expected); err != nil {
		return nil, err
	}
	return toPurchaseOrderResponse(po), nil
}

// Transition aplica un cambio de estado.
func (uc *PurchaseOrderUseCase) Transition(ctx context.Context, id string, in dto.TransitionRequest) (*dto.PurchaseOrderResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindPurchaseOrder); err != nil {
		return nil, err
	}
	target := entity.PurchaseOrderStatus(in.Status)
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidArgument, in.Status)
	}
	po, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	expected, err := repository.ExpectedVersion(entity.KindPurchaseOrder, po.UpdatedAt, in.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := po.TransitionTo(target, uc.clock.Now()); err != nil {
		return nil, err
	}
	if err := uc.repos.PurchaseOrders.Update(ctx, po, expected); err != nil {
		return nil, err
	}
	return toPurchaseOrderResponse(po), nil
}

// Delete elimina una orden que ninguna factura referencia.
func (uc *PurchaseOrderUseCase) Delete(ctx context.Context, id string) error {
	if err := ports.RequireDelete(ctx, uc.perms, entity.KindPurchaseOrder); err != nil {
		return err
	}
	if _, err := uc.load(ctx, id); err != nil {
		return err
	}
	found, err := repository.Referenced(uc.repos.Invoices.List(ctx, repository.Filter{PurchaseOrderID: id, Limit: 1}))
	if err != nil {
		return err
	}
	if found {
		return fmt.Errorf("%w: la orden está referenciada por una factura", domain.ErrConflict)
	}
	return uc.repos.PurchaseOrders.Delete(ctx, id)
}

// ToInvoice factura una orden aprobada, recibida o completada.
func (uc *PurchaseOrderUseCase) ToInvoice(ctx context.Context, id string, in dto.DeriveInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindInvoice); err != nil {
		return nil, err
	}
	po, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	date := dateOr(in.Date, now)
	inv, err := chain.PurchaseOrderToInvoice(po, chain.InvoiceOverrides{
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

func (uc *PurchaseOrderUseCase) load(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	po, err := uc.repos.PurchaseOrders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, repository.NotFound(entity.KindPurchaseOrder, id)
	}
	return po, nil
}
