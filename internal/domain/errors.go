package domain

import "errors"

// Errores de dominio (sin dependencias externas).
// Los casos de uso los envuelven con fmt.Errorf("%w: ...") y la capa HTTP los compara con errors.Is.
var (
	ErrInvalidArgument = errors.New("argumento inválido")
	ErrInvalidState    = errors.New("operación no permitida en el estado actual")
	ErrConflict        = errors.New("conflicto con el estado actual")
	ErrNotFound        = errors.New("recurso no encontrado")
	ErrForbidden       = errors.New("acceso denegado")

	// ErrNothingToInvoice no siempre es un error para el llamador: la agregación mensual
	// no encontró consumos pendientes de facturar.
	ErrNothingToInvoice = errors.New("no hay consumos pendientes de facturar")

	ErrUnauthorized = errors.New("no autorizado")
	ErrDuplicate    = errors.New("recurso duplicado")
)
