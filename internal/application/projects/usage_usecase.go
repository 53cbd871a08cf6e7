package projects

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/flota-crm-api/internal/application/dto"
	"github.com/jhoicas/flota-crm-api/internal/application/ports"
	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
	"github.com/jhoicas/flota-crm-api/internal/domain/usage"
)

// UsageUseCase registro de consumos de vehículos en un proyecto.
type UsageUseCase struct {
	repos repository.Repositories
	perms ports.PermissionChecker
	clock ports.Clock
}

// NewUsageUseCase construye el caso de uso.
func NewUsageUseCase(repos repository.Repositories, perms ports.PermissionChecker, clock ports.Clock) *UsageUseCase {
	return &UsageUseCase{repos: repos, perms: perms, clock: clock}
}

// Record registra un consumo; rate y total salen de la tarifa vigente del proyecto.
func (uc *UsageUseCase) Record(ctx context.Context, projectID string, in dto.RecordUsageRequest) (*dto.UsageEntryResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindUsageEntry); err != nil {
		return nil, err
	}
	p, err := loadProject(ctx, uc.repos.Projects, projectID)
	if err != nil {
		return nil, err
	}
	if err := uc.requireVehicle(ctx, in.VehicleID); err != nil {
		return nil, err
	}
	e, err := usage.RecordUsage(p, entryFrom(uuid.New().String(), in), uc.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := uc.repos.UsageEntries.Create(ctx, e); err != nil {
		return nil, err
	}
	return toUsageEntryResponse(e), nil
}

// Update recalcula un consumo no facturado.
func (uc *UsageUseCase) Update(ctx context.Context, id string, in dto.RecordUsageRequest) (*dto.UsageEntryResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindUsageEntry); err != nil {
		return nil, err
	}
	current, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	expected, err := repository.ExpectedVersion(entity.KindUsageEntry, current.UpdatedAt, in.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p, err := loadProject(ctx, uc.repos.Projects, current.ProjectID)
	if err != nil {
		return nil, err
	}
	if in.VehicleID != current.VehicleID {
		if err := uc.requireVehicle(ctx, in.VehicleID); err != nil {
			return nil, err
		}
	}
	e, err := usage.ReviseUsage(p, current, entryFrom(current.ID, in), uc.clock.Now())
	if err != nil {
		return nil, err
	}
	if err := uc.repos.UsageEntries.Update(ctx, e, expected); err != nil {
		return nil, err
	}
	return toUsageEntryResponse(e), nil
}

// Delete elimina un consumo no facturado.
func (uc *UsageUseCase) Delete(ctx context.Context, id string) error {
	if err := ports.RequireDelete(ctx, uc.perms, entity.KindUsageEntry); err != nil {
		return err
	}
	e, err := uc.load(ctx, id)
	if err != nil {
		return err
	}
	if err := usage.CheckDeletable(e); err != nil {
		return err
	}
	return uc.repos.UsageEntries.Delete(ctx, id)
}

// GetByID obtiene un consumo.
func (uc *UsageUseCase) GetByID(ctx context.Context, id string) (*dto.UsageEntryResponse, error) {
	e, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toUsageEntryResponse(e), nil
}

// List lista los consumos de un proyecto; status "invoiced" o "pending" filtra por facturación.
func (uc *UsageUseCase) List(ctx context.Context, projectID, status string, page dto.PageRequest) (*dto.ListResponse[dto.UsageEntryResponse], error) {
	if status != "" && status != repository.UsageInvoiced && status != repository.UsagePending {
		return nil, fmt.Errorf("%w: filtro de estado %q desconocido", domain.ErrInvalidArgument, status)
	}
	page.DefaultPage()
	list, err := uc.repos.UsageEntries.List(ctx, repository.Filter{
		ProjectID: projectID, Status: status, Limit: page.Limit, Offset: page.Offset,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.UsageEntryResponse, 0, len(list))
	for _, e := range list {
		items = append(items, *toUsageEntryResponse(e))
	}
	return dto.NewList(items, page.Limit, page.Offset), nil
}

func (uc *UsageUseCase) load(ctx context.Context, id string) (*entity.UsageEntry, error) {
	e, err := uc.repos.UsageEntries.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, repository.NotFound(entity.KindUsageEntry, id)
	}
	return e, nil
}

func (uc *UsageUseCase) requireVehicle(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: vehicle_id es obligatorio", domain.ErrInvalidArgument)
	}
	v, err := uc.repos.Vehicles.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if v == nil {
		return repository.NotFound(entity.KindVehicle, id)
	}
	return nil
}

func entryFrom(id string, in dto.RecordUsageRequest) entity.UsageEntry {
	return entity.UsageEntry{
		ID:          id,
		VehicleID:   in.VehicleID,
		Date:        in.Date,
		Hours:       entity.CloneRate(in.Hours),
		Days:        entity.CloneRate(in.Days),
		Description: in.Description,
		Location:    in.Location,
	}
}
