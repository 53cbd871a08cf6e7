package usecase

import (
	"context"

	"github.com/jhoicas/flota-crm-api/internal/application/ports"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
)

// Wildcard en la matriz concede todos los tipos.
const Wildcard = "*"

// DefaultEditMatrix tipos que cada rol puede crear, editar y cambiar de estado.
var DefaultEditMatrix = map[string][]string{
	entity.RoleAdmin: {Wildcard},
	entity.RoleAccountant: {
		string(entity.KindInvoice), string(entity.KindReceipt), string(entity.KindMonthlyInvoice),
		string(entity.KindPurchaseOrder), string(entity.KindCustomer), string(entity.KindVendor),
	},
	entity.RoleSales: {
		string(entity.KindQuotation), string(entity.KindPurchaseOrder), string(entity.KindProject),
		string(entity.KindCustomer),
	},
	entity.RoleOperations: {
		string(entity.KindProject), string(entity.KindUsageEntry), string(entity.KindVehicle),
		string(entity.KindVendor),
	},
}

// DefaultDeleteMatrix tipos que cada rol puede eliminar.
var DefaultDeleteMatrix = map[string][]string{
	entity.RoleAdmin:      {Wildcard},
	entity.RoleAccountant: {string(entity.KindInvoice), string(entity.KindPurchaseOrder)},
	entity.RoleSales:      {string(entity.KindQuotation)},
	entity.RoleOperations: {string(entity.KindUsageEntry)},
}

// PermissionService resuelve permisos con una matriz rol → tipos sobre el actor del contexto.
// Es el único punto de la aplicación que conoce la matriz.
type PermissionService struct {
	edit   map[string]map[entity.Kind]bool
	delete map[string]map[entity.Kind]bool
}

var _ ports.PermissionChecker = (*PermissionService)(nil)

// NewPermissionService construye el servicio; una matriz nil usa la de por defecto.
func NewPermissionService(edit, del map[string][]string) *PermissionService {
	if edit == nil {
		edit = DefaultEditMatrix
	}
	if del == nil {
		del = DefaultDeleteMatrix
	}
	return &PermissionService{edit: index(edit), delete: index(del)}
}

// CanEdit informa si el actor del contexto puede crear o modificar documentos del tipo.
// Sin actor devuelve false, sin error.
func (s *PermissionService) CanEdit(ctx context.Context, kind entity.Kind) (bool, error) {
	return allowed(ctx, s.edit, kind), nil
}

// CanDelete igual que CanEdit para eliminaciones.
func (s *PermissionService) CanDelete(ctx context.Context, kind entity.Kind) (bool, error) {
	return allowed(ctx, s.delete, kind), nil
}

func allowed(ctx context.Context, m map[string]map[entity.Kind]bool, kind entity.Kind) bool {
	actor, ok := ports.ActorFromContext(ctx)
	if !ok || actor.Role == "" {
		return false
	}
	kinds := m[actor.Role]
	return kinds[Wildcard] || kinds[kind]
}

func index(matrix map[string][]string) map[string]map[entity.Kind]bool {
	out := make(map[string]map[entity.Kind]bool, len(matrix))
	for role, kinds := range matrix {
		set := make(map[entity.Kind]bool, len(kinds))
		for _, k := range kinds {
			set[entity.Kind(k)] = true
		}
		out[role] = set
	}
	return out
}
