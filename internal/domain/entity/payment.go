package entity

import (
	"fmt"

	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/shopspring/decimal"
)

// PaidStatusPolicy define si el estado "paid" se deriva de los pagos o lo fija el usuario.
type PaidStatusPolicy string

const (
	// PaidStatusDerived "paid" solo lo produce un recibo que salda la factura.
	PaidStatusDerived PaidStatusPolicy = "derived"
	// PaidStatusManual "paid" se fija por transición; paid_amount se lleva aparte.
	PaidStatusManual PaidStatusPolicy = "manual"
)

// IsValid informa si p es una política conocida.
func (p PaidStatusPolicy) IsValid() bool {
	return p == PaidStatusDerived || p == PaidStatusManual
}

// checkPayment valida un abono contra el saldo pendiente (no se admite sobrepago).
func checkPayment(total, paid, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: el monto del pago debe ser mayor que cero", domain.ErrInvalidArgument)
	}
	balance := total.Sub(paid)
	if amount.GreaterThan(balance) {
		return fmt.Errorf("%w: el pago %s excede el saldo pendiente %s", domain.ErrInvalidArgument,
			amount.StringFixed(2), balance.StringFixed(2))
	}
	return nil
}

func checkPaidAmount(total, paid decimal.Decimal) error {
	if paid.IsNegative() || paid.GreaterThan(total) {
		return fmt.Errorf("%w: paid_amount fuera de rango [0, total]", domain.ErrInvalidArgument)
	}
	return nil
}
