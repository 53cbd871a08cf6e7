package repository

import (
	"context"
	"time"

	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
)

// QuotationRepository define el puerto de persistencia para Quotation.
// Update es un compare-and-swap sobre updated_at: si la fila cambió desde expectedUpdatedAt
// devuelve domain.ErrConflict.
type QuotationRepository interface {
	Create(ctx context.Context, q *entity.Quotation) error
	GetByID(ctx context.Context, id string) (*entity.Quotation, error)
	List(ctx context.Context, f Filter) ([]*entity.Quotation, error)
	Update(ctx context.Context, q *entity.Quotation, expectedUpdatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}
