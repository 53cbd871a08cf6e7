package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/flota-crm-api/internal/application/ports"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
)

// TxRunner ejecuta los callbacks dentro de una transacción de PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

var _ ports.TxRunner = (*TxRunner)(nil)

// NewTxRunner crea un TxRunner sobre el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// NewRepositories devuelve los repositorios atados a q (el pool o una transacción).
func NewRepositories(q Querier) repository.Repositories {
	return repository.Repositories{
		Quotations:      NewQuotationRepository(q),
		PurchaseOrders:  NewPurchaseOrderRepository(q),
		Invoices:        NewInvoiceRepository(q),
		Receipts:        NewReceiptRepository(q),
		Projects:        NewProjectRepository(q),
		UsageEntries:    NewUsageEntryRepository(q),
		MonthlyInvoices: NewMonthlyInvoiceRepository(q),
		Customers:       NewCustomerRepository(q),
		Vendors:         NewVendorRepository(q),
		Vehicles:        NewVehicleRepository(q),
		Users:           NewUserRepository(q),
	}
}

// Run abre una transacción, ejecuta fn y hace commit; cualquier error hace rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(repos repository.Repositories) error) error {
	return r.run(ctx, func(pgx.Tx) error { return nil }, fn)
}

// RunExclusive toma un advisory lock de transacción sobre key antes de ejecutar fn,
// de modo que dos llamadas con la misma clave se serializan entre procesos.
func (r *TxRunner) RunExclusive(ctx context.Context, key string, fn func(repos repository.Repositories) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
			return fmt.Errorf("advisory lock %s: %w", key, err)
		}
		return nil
	}, fn)
}

func (r *TxRunner) run(ctx context.Context, prepare func(pgx.Tx) error, fn func(repos repository.Repositories) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := prepare(tx); err != nil {
		return err
	}
	if err := fn(NewRepositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
