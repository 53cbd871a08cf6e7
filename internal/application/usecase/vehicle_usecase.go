package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jhoicas/flota-crm-api/internal/application/dto"
	"github.com/jhoicas/flota-crm-api/internal/application/ports"
	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
)

// VehicleUseCase casos de uso CRUD para vehículos de la flota.
type VehicleUseCase struct {
	repo  repository.VehicleRepository
	perms ports.PermissionChecker
	clock ports.Clock
}

// NewVehicleUseCase construye el caso de uso.
func NewVehicleUseCase(repo repository.VehicleRepository, perms ports.PermissionChecker, clock ports.Clock) *VehicleUseCase {
	return &VehicleUseCase{repo: repo, perms: perms, clock: clock}
}

// Create registra un vehículo; la placa es única.
func (uc *VehicleUseCase) Create(ctx context.Context, in dto.CreateVehicleRequest) (*dto.VehicleResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindVehicle); err != nil {
		return nil, err
	}
	plate := strings.ToUpper(strings.TrimSpace(in.PlateNumber))
	if plate == "" {
		return nil, fmt.Errorf("%w: plate_number es obligatorio", domain.ErrInvalidArgument)
	}
	existing, err := uc.repo.GetByPlate(ctx, plate)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := uc.clock.Now()
	vehicle := &entity.Vehicle{
		ID:          uuid.New().String(),
		PlateNumber: plate,
		Model:       in.Model,
		Year:        in.Year,
		Status:      entity.VehicleAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, vehicle); err != nil {
		return nil, err
	}
	return toVehicleResponse(vehicle), nil
}

// GetByID obtiene un vehículo por ID.
func (uc *VehicleUseCase) GetByID(ctx context.Context, id string) (*dto.VehicleResponse, error) {
	vehicle, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, repository.NotFound(entity.KindVehicle, id)
	}
	return toVehicleResponse(vehicle), nil
}

// Update actualiza un vehículo.
func (uc *VehicleUseCase) Update(ctx context.Context, id string, in dto.UpdateVehicleRequest) (*dto.VehicleResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindVehicle); err != nil {
		return nil, err
	}
	vehicle, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, repository.NotFound(entity.KindVehicle, id)
	}
	if in.Model != nil {
		vehicle.Model = *in.Model
	}
	if in.Year != nil {
		vehicle.Year = *in.Year
	}
	if in.Status != nil {
		vehicle.Status = *in.Status
	}
	vehicle.UpdatedAt = uc.clock.Now()
	if err := uc.repo.Update(ctx, vehicle); err != nil {
		return nil, err
	}
	return toVehicleResponse(vehicle), nil
}

// List lista vehículos con paginación.
func (uc *VehicleUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ListResponse[dto.VehicleResponse], error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VehicleResponse, 0, len(list))
	for _, v := range list {
		items = append(items, *toVehicleResponse(v))
	}
	return dto.NewList(items, page.Limit, page.Offset), nil
}

func toVehicleResponse(v *entity.Vehicle) *dto.VehicleResponse {
	return &dto.VehicleResponse{
		ID:          v.ID,
		PlateNumber: v.PlateNumber,
		Model:       v.Model,
		Year:        v.Year,
		Status:      v.Status,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}
