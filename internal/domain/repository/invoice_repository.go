package repository

import (
	"context"
	"time"

	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
)

// InvoiceRepository define el puerto de persistencia para Invoice.
// Update es un compare-and-swap sobre updated_at (ver QuotationRepository).
type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice) error
	GetByID(ctx context.Context, id string) (*entity.Invoice, error)
	List(ctx context.Context, f Filter) ([]*entity.Invoice, error)
	Update(ctx context.Context, inv *entity.Invoice, expectedUpdatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// MonthlyInvoiceRepository define el puerto de persistencia para MonthlyInvoice.
type MonthlyInvoiceRepository interface {
	Create(ctx context.Context, m *entity.MonthlyInvoice) error
	GetByID(ctx context.Context, id string) (*entity.MonthlyInvoice, error)
	List(ctx context.Context, f Filter) ([]*entity.MonthlyInvoice, error)
	Update(ctx context.Context, m *entity.MonthlyInvoice, expectedUpdatedAt time.Time) error
	// Delete solo lo usa la compensación de la agregación mensual.
	Delete(ctx context.Context, id string) error
}
