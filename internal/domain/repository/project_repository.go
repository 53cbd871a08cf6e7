package repository

import (
	"context"
	"time"

	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
)

// ProjectRepository define el puerto de persistencia para Project.
type ProjectRepository interface {
	Create(ctx context.Context, p *entity.Project) error
	GetByID(ctx context.Context, id string) (*entity.Project, error)
	List(ctx context.Context, f Filter) ([]*entity.Project, error)
	Update(ctx context.Context, p *entity.Project, expectedUpdatedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// UsageEntryRepository define el puerto de persistencia para UsageEntry.
type UsageEntryRepository interface {
	Create(ctx context.Context, e *entity.UsageEntry) error
	GetByID(ctx context.Context, id string) (*entity.UsageEntry, error)
	// List admite Status UsageInvoiced o UsagePending e InvoiceID (factura mensual).
	List(ctx context.Context, f Filter) ([]*entity.UsageEntry, error)
	Update(ctx context.Context, e *entity.UsageEntry, expectedUpdatedAt time.Time) error
	// Delete solo borra consumos no facturados; uno facturado devuelve domain.ErrConflict.
	Delete(ctx context.Context, id string) error
	// ListUninvoiced devuelve los consumos no facturados del proyecto con fecha en [from, to).
	// Dentro de una transacción bloquea las filas (SELECT ... FOR UPDATE).
	ListUninvoiced(ctx context.Context, projectID string, from, to time.Time) ([]*entity.UsageEntry, error)
	// MarkInvoiced marca como facturados los ids indicados que aún no lo estén y devuelve
	// cuántas filas cambió; el llamador compara contra len(ids).
	MarkInvoiced(ctx context.Context, ids []string, monthlyInvoiceID string, now time.Time) (int64, error)
}
