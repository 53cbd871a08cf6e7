package repository

import (
	"context"
	"time"

	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
)

// ReceiptRepository define el puerto de persistencia para Receipt.
type ReceiptRepository interface {
	Create(ctx context.Context, r *entity.Receipt) error
	GetByID(ctx context.Context, id string) (*entity.Receipt, error)
	List(ctx context.Context, f Filter) ([]*entity.Receipt, error)
	Update(ctx context.Context, r *entity.Receipt, expectedUpdatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}
