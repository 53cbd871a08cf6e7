package repository

import (
	"fmt"
	"time"

	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
)

// NotFound error estándar cuando un id no resuelve.
func NotFound(kind entity.Kind, id string) error {
	return fmt.Errorf("%w: %s %s", domain.ErrNotFound, kind, id)
}

// ExpectedVersion devuelve el updated_at contra el que se hará el compare-and-swap.
// requested vacío usa el valor recién leído; uno distinto indica que el cliente leyó una versión vieja.
func ExpectedVersion(kind entity.Kind, current, requested time.Time) (time.Time, error) {
	if requested.IsZero() {
		return current, nil
	}
	if !requested.Equal(current) {
		return time.Time{}, fmt.Errorf("%w: %s modificado desde %s", domain.ErrConflict, kind, requested.Format(time.RFC3339Nano))
	}
	return current, nil
}

// NextVersion el updated_at que escribe un compare-and-swap. Siempre avanza sobre expected,
// aun si el reloj repite el mismo microsegundo o retrocede.
func NextVersion(updated, expected time.Time) time.Time {
	if updated.After(expected) {
		return updated
	}
	return expected.Add(time.Microsecond)
}

// Referenced informa si un listado filtrado devuelve al menos un registro.
func Referenced[T any](items []T, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	return len(items) > 0, nil
}
