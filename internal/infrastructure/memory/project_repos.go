package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
)

type projectRepo struct{ s *Store }

func (r *projectRepo) Create(_ context.Context, p *entity.Project) error {
	return r.s.write(func() error { return r.s.projects.insert(p) })
}

func (r *projectRepo) GetByID(_ context.Context, id string) (p *entity.Project, err error) {
	r.s.read(func() { p, _ = r.s.projects.get(id) })
	return p, nil
}

func (r *projectRepo) List(_ context.Context, f repository.Filter) (out []*entity.Project, err error) {
	limit, offset := f.Page()
	r.s.read(func() {
		out = r.s.projects.list(func(p *entity.Project) bool {
			return match(f.Status, string(p.Status)) &&
				match(f.CustomerID, p.CustomerID) &&
				match(f.QuotationID, p.QuotationID)
		}, limit, offset)
	})
	return out, nil
}

func (r *projectRepo) Update(_ context.Context, p *entity.Project, expected time.Time) error {
	return r.s.write(func() error {
		p.UpdatedAt = repository.NextVersion(p.UpdatedAt, expected)
		return r.s.projects.replace(p, &expected)
	})
}

func (r *projectRepo) Delete(_ context.Context, id string) error {
	return r.s.write(func() error { return r.s.projects.remove(id) })
}

type usageEntryRepo struct{ s *Store }

func (r *usageEntryRepo) Create(_ context.Context, e *entity.UsageEntry) error {
	return r.s.write(func() error { return r.s.usageEntries.insert(e) })
}

func (r *usageEntryRepo) GetByID(_ context.Context, id string) (e *entity.UsageEntry, err error) {
	r.s.read(func() { e, _ = r.s.usageEntries.get(id) })
	return e, nil
}

func (r *usageEntryRepo) List(_ context.Context, f repository.Filter) (out []*entity.UsageEntry, err error) {
	limit, offset := f.Page()
	r.s.read(func() {
		out = r.s.usageEntries.list(func(e *entity.UsageEntry) bool {
			switch f.Status {
			case repository.UsageInvoiced:
				if !e.Invoiced {
					return false
				}
			case repository.UsagePending:
				if e.Invoiced {
					return false
				}
			}
			return match(f.ProjectID, e.ProjectID) && match(f.InvoiceID, e.InvoiceID)
		}, limit, offset)
	})
	return out, nil
}

func (r *usageEntryRepo) Update(_ context.Context, e *entity.UsageEntry, expected time.Time) error {
	return r.s.write(func() error {
		e.UpdatedAt = repository.NextVersion(e.UpdatedAt, expected)
		return r.s.usageEntries.replace(e, &expected)
	})
}

func (r *usageEntryRepo) Delete(_ context.Context, id string) error {
	return r.s.write(func() error {
		e, ok := r.s.usageEntries.get(id)
		if !ok {
			return repository.NotFound(entity.KindUsageEntry, id)
		}
		if e.Invoiced {
			return fmt.Errorf("%w: el consumo %s ya fue facturado", domain.ErrConflict, id)
		}
		return r.s.usageEntries.remove(id)
	})
}

func (r *usageEntryRepo) ListUninvoiced(_ context.Context, projectID string, from, to time.Time) (out []*entity.UsageEntry, err error) {
	r.s.read(func() {
		out = r.s.usageEntries.list(func(e *entity.UsageEntry) bool {
			return e.ProjectID == projectID && !e.Invoiced && !e.Date.Before(from) && e.Date.Before(to)
		}, 0, 0)
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// MarkInvoiced marca todos los ids o ninguno: si alguno falta o ya está facturado devuelve 0.
func (r *usageEntryRepo) MarkInvoiced(_ context.Context, ids []string, monthlyInvoiceID string, now time.Time) (n int64, err error) {
	err = r.s.write(func() error {
		entries := make([]*entity.UsageEntry, 0, len(ids))
		for _, id := range ids {
			e, ok := r.s.usageEntries.get(id)
			if !ok || e.Invoiced {
				return nil
			}
			entries = append(entries, e)
		}
		for _, e := range entries {
			e.Invoiced, e.InvoiceID, e.UpdatedAt = true, monthlyInvoiceID, now
			if err := r.s.usageEntries.replace(e, nil); err != nil {
				return err
			}
		}
		n = int64(len(entries))
		return nil
	})
	return n, err
}
