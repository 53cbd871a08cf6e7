package projects

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/flota-crm-api/internal/application/dto"
	"github.com/jhoicas/flota-crm-api/internal/application/ports"
	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
	"github.com/jhoicas/flota-crm-api/internal/domain/usage"
	"github.com/jhoicas/flota-crm-api/pkg/logger"
)

// MonthlyInvoiceUseCase agregación mensual de consumos y ciclo de vida de la factura mensual.
type MonthlyInvoiceUseCase struct {
	repos    repository.Repositories
	tx       ports.TxRunner
	perms    ports.PermissionChecker
	clock    ports.Clock
	settings Settings
	log      *logger.Logger
}

// NewMonthlyInvoiceUseCase construye el caso de uso.
func NewMonthlyInvoiceUseCase(
	repos repository.Repositories,
	tx ports.TxRunner,
	perms ports.PermissionChecker,
	clock ports.Clock,
	settings Settings,
	log *logger.Logger,
) *MonthlyInvoiceUseCase {
	return &MonthlyInvoiceUseCase{
		repos: repos, tx: tx, perms: perms, clock: clock, settings: settings,
		log: log.Component("monthly_invoices"),
	}
}

// Aggregate factura los consumos pendientes del proyecto en el mes indicado.
//
// Selección, alta y marcado ocurren en una sola ejecución exclusiva por (proyecto, mes, año):
// con PostgreSQL es una transacción con advisory lock y FOR UPDATE; si el marcado no toca
// exactamente los consumos seleccionados se devuelve domain.ErrConflict y, en adaptadores sin
// rollback, se borra la factura mensual creada.
func (uc *MonthlyInvoiceUseCase) Aggregate(ctx context.Context, projectID string, in dto.AggregateMonthRequest) (*dto.MonthlyInvoiceResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindMonthlyInvoice); err != nil {
		return nil, err
	}
	from, to, err := usage.PeriodBounds(in.Month, in.Year)
	if err != nil {
		return nil, err
	}
	p, err := loadProject(ctx, uc.repos.Projects, projectID)
	if err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	date := dateOr(in.Date, now)
	draft := usage.MonthlyDraft{
		ID:      uuid.New().String(),
		Number:  in.Number,
		Date:    date,
		DueDate: uc.settings.dueDate(in.DueDate, date),
		TaxRate: uc.settings.taxRate(in.TaxRate),
		Notes:   in.Notes,
	}
	log := uc.log.With().
		Str("project_id", projectID).
		Int("month", in.Month).
		Int("year", in.Year).
		Logger()

	var m *entity.MonthlyInvoice
	err = uc.tx.RunExclusive(ctx, ports.AggregationKey(projectID, in.Month, in.Year), func(r repository.Repositories) error {
		entries, err := r.UsageEntries.ListUninvoiced(ctx, projectID, from, to)
		if err != nil {
			return err
		}
		created, selected, err := usage.AggregateMonth(p, in.Month, in.Year, entries, draft, now)
		if err != nil {
			return err
		}
		if err := r.MonthlyInvoices.Create(ctx, created); err != nil {
			return err
		}
		ids := make([]string, 0, len(selected))
		for _, e := range selected {
			ids = append(ids, e.ID)
		}
		n, err := r.UsageEntries.MarkInvoiced(ctx, ids, created.ID, now)
		if err == nil && n != int64(len(ids)) {
			err = fmt.Errorf("%w: se marcaron %d de %d consumos", domain.ErrConflict, n, len(ids))
		}
		if err != nil {
			if derr := r.MonthlyInvoices.Delete(ctx, created.ID); derr != nil {
				log.Error().Err(derr).AnErr("cause", err).Str("monthly_invoice_id", created.ID).Msg("no se pudo compensar la factura mensual")
			}
			return err
		}
		m = created
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNothingToInvoice) {
			log.Debug().Msg("sin consumos pendientes")
		} else {
			log.Warn().Err(err).Msg("agregación mensual fallida")
		}
		return nil, err
	}
	log.Info().
		Str("monthly_invoice_id", m.ID).
		Int("entries", len(m.UsageEntryIDs)).
		Str("total", m.Total.StringFixed(2)).
		Msg("factura mensual generada")
	return toMonthlyInvoiceResponse(m), nil
}

// GetByID devuelve la factura mensual con su estado efectivo.
func (uc *MonthlyInvoiceUseCase) GetByID(ctx context.Context, id string) (*dto.MonthlyInvoiceResponse, error) {
	m, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	m.RefreshStatus(uc.clock.Now())
	return toMonthlyInvoiceResponse(m), nil
}

// List lista facturas mensuales por proyecto, cliente o estado efectivo.
func (uc *MonthlyInvoiceUseCase) List(ctx context.Context, f repository.Filter, page dto.PageRequest) (*dto.ListResponse[dto.MonthlyInvoiceResponse], error) {
	page.DefaultPage()
	now := uc.clock.Now()
	f.AsOf, f.Limit, f.Offset = &now, page.Limit, page.Offset
	list, err := uc.repos.MonthlyInvoices.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MonthlyInvoiceResponse, 0, len(list))
	for _, m := range list {
		m.RefreshStatus(now)
		items = append(items, *toMonthlyInvoiceResponse(m))
	}
	return dto.NewList(items, page.Limit, page.Offset), nil
}

// Transition aplica un cambio de estado (sent y, con la política manual, paid).
func (uc *MonthlyInvoiceUseCase) Transition(ctx context.Context, id string, in dto.TransitionRequest) (*dto.MonthlyInvoiceResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindMonthlyInvoice); err != nil {
		return nil, err
	}
	target := entity.InvoiceStatus(in.Status)
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidArgument, in.Status)
	}
	m, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	expected, err := repository.ExpectedVersion(entity.KindMonthlyInvoice, m.UpdatedAt, in.UpdatedAt)
	if err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	m.RefreshStatus(now)
	if err := m.TransitionTo(target, uc.settings.PaidStatusPolicy, now); err != nil {
		return nil, err
	}
	if err := uc.repos.MonthlyInvoices.Update(ctx, m, expected); err != nil {
		return nil, err
	}
	return toMonthlyInvoiceResponse(m), nil
}

// Delete una factura mensual siempre agrupa consumos, por lo que no se elimina.
func (uc *MonthlyInvoiceUseCase) Delete(ctx context.Context, id string) error {
	if err := ports.RequireDelete(ctx, uc.perms, entity.KindMonthlyInvoice); err != nil {
		return err
	}
	m, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if len(m.UsageEntryIDs) > 0 {
		return fmt.Errorf("%w: la factura mensual agrupa %d consumos", domain.ErrConflict, len(m.UsageEntryIDs))
	}
	return uc.repos.MonthlyInvoices.Delete(ctx, id)
}

func (uc *MonthlyInvoiceUseCase) load(ctx context.Context, id string) (*entity.MonthlyInvoice, error) {
	m, err := uc.repos.MonthlyInvoices.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, repository.NotFound(entity.KindMonthlyInvoice, id)
	}
	return m, nil
}
