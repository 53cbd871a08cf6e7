package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/flota-crm-api/internal/application/dto"
	"github.com/jhoicas/flota-crm-api/internal/application/ports"
	"github.com/jhoicas/flota-crm-api/internal/domain/chain"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
	"github.com/jhoicas/flota-crm-api/pkg/logger"
)

// ReceiptUseCase registra pagos. Crear un recibo es la única vía para incrementar paid_amount
// de una factura o factura mensual.
type ReceiptUseCase struct {
	repos    repository.Repositories
	tx       ports.TxRunner
	perms    ports.PermissionChecker
	clock    ports.Clock
	settings Settings
	log      *logger.Logger
}

// NewReceiptUseCase construye el caso de uso.
func NewReceiptUseCase(
	repos repository.Repositories,
	tx ports.TxRunner,
	perms ports.PermissionChecker,
	clock ports.Clock,
	settings Settings,
	log *logger.Logger,
) *ReceiptUseCase {
	return &ReceiptUseCase{repos: repos, tx: tx, perms: perms, clock: clock, settings: settings, log: log.Component("receipts")}
}

// Create emite un recibo contra una factura (o factura mensual) y actualiza su saldo.
// El recibo y la factura se escriben en una transacción; si el compare-and-swap de la factura
// falla se borra el recibo recién creado y se devuelve domain.ErrConflict.
func (uc *ReceiptUseCase) Create(ctx context.Context, in dto.CreateReceiptRequest) (*dto.ReceiptResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindReceipt); err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	payment := chain.Payment{
		ID:              uuid.New().String(),
		Number:          in.Number,
		Amount:          in.Amount,
		PaymentMethod:   in.PaymentMethod,
		PaymentDate:     in.PaymentDate,
		ReferenceNumber: in.ReferenceNumber,
	}
	kind := entity.Kind(in.InvoiceKind)
	if kind == "" {
		kind = entity.KindInvoice
	}

	var resp *dto.ReceiptResponse
	err := uc.tx.Run(ctx, func(r repository.Repositories) error {
		var err error
		if kind == entity.KindMonthlyInvoice {
			resp, err = uc.payMonthly(ctx, r, in, payment, now)
		} else {
			resp, err = uc.payInvoice(ctx, r, in, payment, now)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().
		Str("receipt_id", resp.ID).
		Str("invoice_id", resp.InvoiceID).
		Str("amount", resp.Amount.StringFixed(2)).
		Str("invoice_status", resp.InvoiceStatus).
		Msg("recibo emitido")
	return resp, nil
}

func (uc *ReceiptUseCase) payInvoice(ctx context.Context, r repository.Repositories, in dto.CreateReceiptRequest, p chain.Payment, now time.Time) (*dto.ReceiptResponse, error) {
	inv, err := loadInvoice(ctx, r.Invoices, in.InvoiceID)
	if err != nil {
		return nil, err
	}
	expected, err := repository.ExpectedVersion(entity.KindInvoice, inv.UpdatedAt, in.InvoiceUpdatedAt)
	if err != nil {
		return nil, err
	}
	inv.RefreshStatus(now)
	receipt, updated, err := chain.InvoiceToReceipt(inv, p, uc.settings.PaidStatusPolicy, now)
	if err != nil {
		return nil, err
	}
	if err := r.Receipts.Create(ctx, receipt); err != nil {
		return nil, err
	}
	if err := r.Invoices.Update(ctx, updated, expected); err != nil {
		uc.compensate(ctx, r, receipt.ID, err)
		return nil, err
	}
	resp := toReceiptResponse(receipt)
	paid := updated.PaidAmount
	resp.InvoicePaidAmount, resp.InvoiceStatus = &paid, string(updated.Status)
	return resp, nil
}

func (uc *ReceiptUseCase) payMonthly(ctx context.Context, r repository.Repositories, in dto.CreateReceiptRequest, p chain.Payment, now time.Time) (*dto.ReceiptResponse, error) {
	m, err := loadMonthly(ctx, r.MonthlyInvoices, in.InvoiceID)
	if err != nil {
		return nil, err
	}
	expected, err := repository.ExpectedVersion(entity.KindMonthlyInvoice, m.UpdatedAt, in.InvoiceUpdatedAt)
	if err != nil {
		return nil, err
	}
	m.RefreshStatus(now)
	receipt, updated, err := chain.MonthlyInvoiceToReceipt(m, p, uc.settings.PaidStatusPolicy, now)
	if err != nil {
		return nil, err
	}
	if err := r.Receipts.Create(ctx, receipt); err != nil {
		return nil, err
	}
	if err := r.MonthlyInvoices.Update(ctx, updated, expected); err != nil {
		uc.compensate(ctx, r, receipt.ID, err)
		return nil, err
	}
	resp := toReceiptResponse(receipt)
	paid := updated.PaidAmount
	resp.InvoicePaidAmount, resp.InvoiceStatus = &paid, string(updated.Status)
	return resp, nil
}

// compensate borra el recibo cuando la factura no pudo actualizarse. En PostgreSQL el rollback
// ya lo descarta; el almacén en memoria no tiene rollback.
func (uc *ReceiptUseCase) compensate(ctx context.Context, r repository.Repositories, receiptID string, cause error) {
	if err := r.Receipts.Delete(ctx, receiptID); err != nil {
		uc.log.Error().Err(err).AnErr("cause", cause).Str("receipt_id", receiptID).Msg("no se pudo compensar el recibo")
		return
	}
	uc.log.Warn().AnErr("cause", cause).Str("receipt_id", receiptID).Msg("recibo compensado")
}

// GetByID obtiene un recibo.
func (uc *ReceiptUseCase) GetByID(ctx context.Context, id string) (*dto.ReceiptResponse, error) {
	r, err := uc.repos.Receipts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, repository.NotFound(entity.KindReceipt, id)
	}
	return toReceiptResponse(r), nil
}

// List lista recibos, opcionalmente de una factura.
func (uc *ReceiptUseCase) List(ctx context.Context, invoiceID string, page dto.PageRequest) (*dto.ListResponse[dto.ReceiptResponse], error) {
	page.DefaultPage()
	list, err := uc.repos.Receipts.List(ctx, repository.Filter{InvoiceID: invoiceID, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ReceiptResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *toReceiptResponse(r))
	}
	return dto.NewList(items, page.Limit, page.Offset), nil
}

func loadMonthly(ctx context.Context, repo repository.MonthlyInvoiceRepository, id string) (*entity.MonthlyInvoice, error) {
	m, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, repository.NotFound(entity.KindMonthlyInvoice, id)
	}
	return m, nil
}
