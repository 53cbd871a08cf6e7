package entity

import (
	"fmt"

	"github.com/jhoicas/flota-crm-api/internal/domain"
)

// transitions tabla de transiciones permitidas de una máquina de estados.
type transitions[S ~string] map[S][]S

func (t transitions[S]) allows(from, to S) bool {
	for _, s := range t[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (t transitions[S]) isTerminal(s S) bool {
	_, ok := t[s]
	return !ok
}

func invalidTransition[S ~string](kind Kind, from, to S) error {
	return fmt.Errorf("%w: %s no puede pasar de %q a %q", domain.ErrInvalidState, kind, from, to)
}
