package projects

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

// ProjectUseCase proyectos de uso de vehículos abiertos sobre cotizaciones aceptadas.
type ProjectUseCase struct {
	repos repository.Repositories
	perms ports.PermissionChecker
	clock ports.Clock
}

// NewProjectUseCase construye el caso de uso.
func NewProjectUseCase(repos repository.Repositories, perms ports.PermissionChecker, clock ports.Clock) *ProjectUseCase {
	return &ProjectUseCase{repos: repos, perms: perms, clock: clock}
}

// Create abre un proyecto desde una cotización aceptada. Los vehículos asignados deben existir.
func (uc *ProjectUseCase) Create(ctx context.Context, in dto.CreateProjectRequest) (*dto.ProjectResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindProject); err != nil {
		return nil, err
	}
	q, err := uc.repos.Quotations.GetByID(ctx, in.QuotationID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, repository.NotFound(entity.KindQuotation, in.QuotationID)
	}
	if err := uc.requireVehicles(ctx, in.AssignedVehicleIDs); err != nil {
		return nil, err
	}
	now := uc.clock.Now()
	q.RefreshStatus(now)
	p, err := chain.QuotationToProject(q, chain.ProjectOverrides{
		ID:                 uuid.New().String(),
		Number:             in.Number,
		Title:              in.Title,
		StartDate:          in.StartDate,
		EndDate:            in.EndDate,
		BillingType:        entity.BillingType(in.BillingType),
		HourlyRate:         in.HourlyRate,
		DailyRate:          in.DailyRate,
		FixedAmount:        in.FixedAmount,
		POReceived:         in.POReceived,
		AssignedVehicleIDs: in.AssignedVehicleIDs,
		Notes:              in.Notes,
	}, now)
	if err != nil {
		return nil, err
	}
	if err := uc.repos.Projects.Create(ctx, p); err != nil {
		return nil, err
	}
	return toProjectResponse(p), nil
}

// GetByID obtiene un proyecto.
func (uc *ProjectUseCase) GetByID(ctx context.Context, id string) (*dto.ProjectResponse, error) {
	p, err := loadProject(ctx, uc.repos.Projects, id)
	if err != nil {
		return nil, err
	}
	return toProjectResponse(p), nil
}

// List lista proyectos por estado, cliente o cotización.
func (uc *ProjectUseCase) List(ctx context.Context, f repository.Filter, page dto.PageRequest) (*dto.ListResponse[dto.ProjectResponse], error) {
	page.DefaultPage()
	f.Limit, f.Offset = page.Limit, page.Offset
	list, err := uc.repos.Projects.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProjectResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProjectResponse(p))
	}
	return dto.NewList(items, page.Limit, page.Offset), nil
}

// Update edita un proyecto no terminal. Cambiar la tarifa no recalcula consumos ya registrados.
func (uc *ProjectUseCase) Update(ctx context.Context, id string, in dto.UpdateProjectRequest) (*dto.ProjectResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindProject); err != nil {
		return nil, err
	}
	p, err := loadProject(ctx, uc.repos.Projects, id)
	if err != nil {
		return nil, err
	}
	expected, err := repository.ExpectedVersion(entity.KindProject, p.UpdatedAt, in.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: el proyecto en estado %q no admite cambios", domain.ErrInvalidState, p.Status)
	}
	if in.AssignedVehicleIDs != nil {
		if err := uc.requireVehicles(ctx, in.AssignedVehicleIDs); err != nil {
			return nil, err
		}
		p.AssignedVehicleIDs = append([]string(nil), in.AssignedVehicleIDs...)
	}
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.EndDate != nil {
		p.EndDate = in.EndDate
	}
	if in.HourlyRate != nil {
		p.HourlyRate = *in.HourlyRate
	}
	if in.DailyRate != nil {
		p.DailyRate = *in.DailyRate
	}
	if in.FixedAmount != nil {
		p.FixedAmount = *in.FixedAmount
	}
	if in.POReceived != nil {
		p.POReceived = *in.POReceived
	}
	if in.Notes != nil {
		p.Notes = *in.Notes
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.UpdatedAt = uc.clock.Now()
	if err := uc.repos.Projects.Update(ctx, p, expected); err != nil {
		return nil, err
	}
	return toProjectResponse(p), nil
}

// Transition aplica un cambio de estado (on_hold, active, completed, cancelled).
func (uc *ProjectUseCase) Transition(ctx context.Context, id string, in dto.TransitionRequest) (*dto.ProjectResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindProject); err != nil {
		return nil, err
	}
	target := entity.ProjectStatus(in.Status)
	if !target.IsValid() {
		return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidArgument, in.Status)
	}
	p, err := loadProject(ctx, uc.repos.Projects, id)
	if err != nil {
		return nil, err
	}
	expected, err := repository.ExpectedVersion(entity.KindProject, p.UpdatedAt, in.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := p.TransitionTo(target, uc.clock.Now()); err != nil {
		return nil, err
	}
	if err := uc.repos.Projects.Update(ctx, p, expected); err != nil {
		return nil, err
	}
	return toProjectResponse(p), nil
}

// Delete elimina un proyecto sin consumos ni facturas mensuales.
func (uc *ProjectUseCase) Delete(ctx context.Context, id string) error {
	if err := ports.RequireDelete(ctx, uc.perms, entity.KindProject); err != nil {
		return err
	}
	if _, err := loadProject(ctx, uc.repos.Projects, id); err != nil {
		return err
	}
	ref := repository.Filter{ProjectID: id, Limit: 1}
	found, err := repository.Referenced(uc.repos.UsageEntries.List(ctx, ref))
	if err != nil {
		return err
	}
	if !found {
		found, err = repository.Referenced(uc.repos.MonthlyInvoices.List(ctx, ref))
		if err != nil {
			return err
		}
	}
	if found {
		return fmt.Errorf("%w: el proyecto tiene consumos o facturas mensuales", domain.ErrConflict)
	}
	return uc.repos.Projects.Delete(ctx, id)
}

func (uc *ProjectUseCase) requireVehicles(ctx context.Context, ids []string) error {
	for _, id := range ids {
		v, err := uc.repos.Vehicles.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if v == nil {
			return fmt.Errorf("%w: vehículo %s", domain.ErrInvalidArgument, id)
		}
	}
	return nil
}

func loadProject(ctx context.Context, repo repository.ProjectRepository, id string) (*entity.Project, error) {
	p, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, repository.NotFound(entity.KindProject, id)
	}
	return p, nil
}
