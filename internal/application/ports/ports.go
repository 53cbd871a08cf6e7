// Package ports define los puertos que la capa de aplicación consume (permisos, reloj, transacciones).
package ports

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
)

// PermissionChecker puerto de permisos por tipo de entidad.
// El actor se toma del contexto (ver WithActor).
type PermissionChecker interface {
	CanEdit(ctx context.Context, kind entity.Kind) (bool, error)
	CanDelete(ctx context.Context, kind entity.Kind) (bool, error)
}

// RequireEdit traduce una respuesta negativa o un fallo del puerto en domain.ErrForbidden.
func RequireEdit(ctx context.Context, p PermissionChecker, kind entity.Kind) error {
	ok, err := p.CanEdit(ctx, kind)
	return forbidden(ok, err, "editar", kind)
}

// RequireDelete igual que RequireEdit para eliminaciones.
func RequireDelete(ctx context.Context, p PermissionChecker, kind entity.Kind) error {
	ok, err := p.CanDelete(ctx, kind)
	return forbidden(ok, err, "eliminar", kind)
}

func forbidden(ok bool, err error, action string, kind entity.Kind) error {
	if err != nil {
		return fmt.Errorf("%w: no se pudo verificar el permiso para %s %s: %v", domain.ErrForbidden, action, kind, err)
	}
	if !ok {
		return fmt.Errorf("%w: sin permiso para %s %s", domain.ErrForbidden, action, kind)
	}
	return nil
}

// Clock fuente de tiempo. En producción time.Now; en tests un instante fijo.
type Clock func() time.Time

// Now instante actual en UTC truncado a microsegundos (precisión de timestamptz),
// para que el updated_at devuelto al cliente sirva tal cual en el compare-and-swap.
func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now().UTC().Truncate(time.Microsecond)
	}
	return c().UTC().Truncate(time.Microsecond)
}

// TxRunner ejecuta fn con repositorios atados a una misma transacción.
// Un adaptador sin transacciones multi-fila solo serializa; los casos de uso compensan.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos repository.Repositories) error) error
	// RunExclusive además serializa todas las ejecuciones con la misma clave.
	RunExclusive(ctx context.Context, key string, fn func(repos repository.Repositories) error) error
}

// AggregationKey clave de exclusión de la agregación mensual de un proyecto.
func AggregationKey(projectID string, month, year int) string {
	return fmt.Sprintf("monthly:%s:%04d-%02d", projectID, year, month)
}
