// Package bootstrap arma las dependencias de la aplicación (persistencia, casos de uso)
// a partir de la configuración. Lo comparten el servidor HTTP y billingctl.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jhoicas/flota-crm-api/internal/application/auth"
	"github.com/jhoicas/flota-crm-api/internal/application/billing"
	"github.com/jhoicas/flota-crm-api/internal/application/ports"
	"github.com/jhoicas/flota-crm-api/internal/application/projects"
	"github.com/jhoicas/flota-crm-api/internal/application/usecase"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
	"github.com/jhoicas/flota-crm-api/internal/infrastructure/memory"
	"github.com/jhoicas/flota-crm-api/internal/infrastructure/pdf"
	"github.com/jhoicas/flota-crm-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/flota-crm-api/internal/interfaces/http"
	"github.com/jhoicas/flota-crm-api/pkg/config"
	"github.com/jhoicas/flota-crm-api/pkg/logger"
)

// App dependencias construidas. Close libera la persistencia.
type App struct {
	Repos repository.Repositories
	Tx    ports.TxRunner
	Deps  httpRouter.RouterDeps
	Close func()
}

// Options ajustes de arranque que no vienen de la configuración.
type Options struct {
	// Migrate aplica las migraciones pendientes al abrir PostgreSQL.
	Migrate bool
	// Clock nil usa el reloj del sistema.
	Clock ports.Clock
}

// New abre la persistencia indicada por cfg.Storage.Driver y construye los casos de uso.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, opts Options) (*App, error) {
	app := &App{Close: func() {}}

	switch cfg.Storage.Driver {
	case "memory":
		store := memory.NewStore()
		app.Repos = store.Repositories()
		app.Tx = memory.NewTxRunner(store)
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		if opts.Migrate {
			if err := Migrate(cfg, log, true); err != nil {
				return nil, err
			}
		}
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		app.Repos = postgres.NewRepositories(pool)
		app.Tx = postgres.NewTxRunner(pool)
		app.Close = pool.Close
	}

	clock := opts.Clock
	perms := usecase.NewPermissionService(cfg.Permissions.Edit, cfg.Permissions.Delete)
	policy := entity.PaidStatusPolicy(cfg.Billing.PaidStatusPolicy)
	bs := billing.Settings{PaidStatusPolicy: policy, PaymentTermDays: cfg.Billing.PaymentTermDays}
	ps := projects.Settings{
		DefaultTaxRate:   cfg.Billing.DefaultTaxRate,
		PaymentTermDays:  cfg.Billing.PaymentTermDays,
		PaidStatusPolicy: policy,
	}
	r := app.Repos

	app.Deps = httpRouter.RouterDeps{
		AuthUC: auth.NewAuthUseCase(r.Users, auth.JWTConfig{
			Secret:     cfg.JWT.Secret,
			ExpMinutes: cfg.JWT.Expiration,
			Issuer:     cfg.JWT.Issuer,
		}, clock),
		UserUC:     usecase.NewUserUseCase(r.Users),
		CustomerUC: billing.NewCustomerUseCase(r.Customers, perms, clock),
		VendorUC:   usecase.NewVendorUseCase(r.Vendors, perms, clock),
		VehicleUC:  usecase.NewVehicleUseCase(r.Vehicles, perms, clock),

		QuotationUC:     billing.NewQuotationUseCase(r, perms, clock, bs),
		PurchaseOrderUC: billing.NewPurchaseOrderUseCase(r, perms, clock, bs),
		InvoiceUC:       billing.NewInvoiceUseCase(r, perms, clock, bs),
		ReceiptUC:       billing.NewReceiptUseCase(r, app.Tx, perms, clock, bs, log),
		PDFUC:           billing.NewPDFUseCase(r, clock, pdf.NewMarotoPDFGenerator(cfg.App.Name)),

		ProjectUC:        projects.NewProjectUseCase(r, perms, clock),
		UsageUC:          projects.NewUsageUseCase(r, perms, clock),
		MonthlyInvoiceUC: projects.NewMonthlyInvoiceUseCase(r, app.Tx, perms, clock, ps, log),

		JWTSecret: cfg.JWT.Secret,
		Logger:    log,
	}
	return app, nil
}

// Migrate aplica (up=true) o revierte todas las migraciones embebidas.
func Migrate(cfg *config.Config, log *logger.Logger, up bool) error {
	m, err := postgres.NewMigrator(cfg.DB.ConnectionString(), log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn().Err(err).Msg("cerrar migrador")
		}
	}()
	if up {
		return m.Up()
	}
	return m.Down()
}
