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

// VendorUseCase proveedores a los que se emiten órdenes de compra.
type VendorUseCase struct {
	repo  repository.VendorRepository
	perms ports.PermissionChecker
	clock ports.Clock
}

// NewVendorUseCase construye el caso de uso.
func NewVendorUseCase(repo repository.VendorRepository, perms ports.PermissionChecker, clock ports.Clock) *VendorUseCase {
	return &VendorUseCase{repo: repo, perms: perms, clock: clock}
}

// Create registra un proveedor.
func (uc *VendorUseCase) Create(ctx context.Context, in dto.CreateVendorRequest) (*dto.VendorResponse, error) {
	if err := ports.RequireEdit(ctx, uc.perms, entity.KindVendor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("%w: name es obligatorio", domain.ErrInvalidArgument)
	}
	now := uc.clock.Now()
	v := &entity.Vendor{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		TaxID:     in.TaxID,
		Email:     in.Email,
		Phone:     in.Phone,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return toVendorResponse(v), nil
}

// GetByID obtiene un proveedor.
func (uc *VendorUseCase) GetByID(ctx context.Context, id string) (*dto.VendorResponse, error) {
	v, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, repository.NotFound(entity.KindVendor, id)
	}
	return toVendorResponse(v), nil
}

// List lista proveedores.
func (uc *VendorUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ListResponse[dto.VendorResponse], error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VendorResponse, 0, len(list))
	for _, v := range list {
		items = append(items, *toVendorResponse(v))
	}
	return dto.NewList(items, page.Limit, page.Offset), nil
}

func toVendorResponse(v *entity.Vendor) *dto.VendorResponse {
	return &dto.VendorResponse{
		ID:        v.ID,
		Name:      v.Name,
		TaxID:     v.TaxID,
		Address:   v.Address,
		Phone:     v.Phone,
		Email:     v.Email,
		CreatedAt: v.CreatedAt,
		UpdatedAt: v.UpdatedAt,
	}
}
