package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/jhoicas/flota-crm-api/internal/application/dto"
	"github.com/jhoicas/flota-crm-api/internal/application/ports"
	"github.com/jhoicas/flota-crm-api/internal/bootstrap"
	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
	"github.com/jhoicas/flota-crm-api/pkg/logger"
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate-month",
	Short: "Genera las facturas mensuales de consumos pendientes",
	Long: `Recorre los proyectos activos (o solo --project) y factura los consumos
pendientes del mes indicado. Los proyectos sin consumos se omiten.

El número de cada factura mensual es <prefijo>-<año><mes>-<número de proyecto>.
Si el proyecto ya tiene facturas de ese mes (consumos tardíos) se añade -2, -3...`,
	Example: `  # Marzo de 2024 para todos los proyectos activos
  billingctl aggregate-month --month 3 --year 2024

  # Un solo proyecto con IVA del 19%
  billingctl aggregate-month --month 3 --year 2024 --project <id> --tax-rate 19`,
	RunE: runAggregate,
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
	now := time.Now()
	aggregateCmd.Flags().Int("month", int(now.Month()), "Mes a facturar (1-12)")
	aggregateCmd.Flags().Int("year", now.Year(), "Año a facturar")
	aggregateCmd.Flags().String("project", "", "ID de proyecto (vacío: todos los activos)")
	aggregateCmd.Flags().String("prefix", "FM", "Prefijo del número de factura")
	aggregateCmd.Flags().String("tax-rate", "", "Tasa de impuesto en porcentaje (vacío: la configurada)")
}

// aggregateOptions parámetros de una corrida de aggregate-month.
type aggregateOptions struct {
	Month, Year int
	ProjectID   string
	Prefix      string
	TaxRate     *decimal.Decimal
}

// numberAttempts reintentos ante un número ya usado por una factura creada fuera de billingctl.
const numberAttempts = 5

func runAggregate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	var opts aggregateOptions
	opts.Month, _ = cmd.Flags().GetInt("month")
	opts.Year, _ = cmd.Flags().GetInt("year")
	opts.ProjectID, _ = cmd.Flags().GetString("project")
	opts.Prefix, _ = cmd.Flags().GetString("prefix")
	taxFlag, _ := cmd.Flags().GetString("tax-rate")

	if taxFlag != "" {
		t, err := decimal.NewFromString(taxFlag)
		if err != nil {
			return fmt.Errorf("tax-rate inválido: %w", err)
		}
		opts.TaxRate = &t
	}

	ctx := ports.WithActor(cmd.Context(), ports.Actor{UserID: "billingctl", Role: entity.RoleAdmin})
	app, err := bootstrap.New(ctx, cfg, log, bootstrap.Options{})
	if err != nil {
		return err
	}
	defer app.Close()

	created, skipped, err := aggregateProjects(ctx, app, opts, os.Stdout, log)
	log.Info().Int("created", created).Int("skipped", skipped).Msg("facturación mensual terminada")
	return err
}

// aggregateProjects factura el mes para cada proyecto objetivo y escribe una línea por factura creada.
// Los errores por proyecto se acumulan sin detener el lote.
func aggregateProjects(ctx context.Context, app *bootstrap.App, opts aggregateOptions, out io.Writer, log *logger.Logger) (created, skipped int, failed error) {
	targets, err := aggregateTargets(ctx, app.Repos, opts.ProjectID)
	if err != nil {
		return 0, 0, err
	}
	for _, p := range targets {
		m, err := aggregateProject(ctx, app, p, opts)
		switch {
		case errors.Is(err, domain.ErrNothingToInvoice):
			skipped++
		case err != nil:
			log.Error().Err(err).Str("project", p.Number).Msg("no se pudo facturar el proyecto")
			failed = errors.Join(failed, fmt.Errorf("%s: %w", p.Number, err))
		default:
			created++
			fmt.Fprintf(out, "%s\t%s\t%s\n", p.Number, m.Number, m.Total.StringFixed(2))
		}
	}
	return created, skipped, failed
}

func aggregateTargets(ctx context.Context, repos repository.Repositories, projectID string) ([]*entity.Project, error) {
	if projectID == "" {
		return repos.Projects.List(ctx, repository.Filter{Status: string(entity.ProjectActive), Limit: 10000})
	}
	p, err := repos.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, repository.NotFound(entity.KindProject, projectID)
	}
	return []*entity.Project{p}, nil
}

// aggregateProject numera a partir de las facturas del mes que el proyecto ya tiene.
func aggregateProject(ctx context.Context, app *bootstrap.App, p *entity.Project, opts aggregateOptions) (*dto.MonthlyInvoiceResponse, error) {
	existing, err := app.Repos.MonthlyInvoices.List(ctx, repository.Filter{ProjectID: p.ID, Limit: 10000})
	if err != nil {
		return nil, err
	}
	seq := 1
	for _, m := range existing {
		if m.Month == opts.Month && m.Year == opts.Year {
			seq++
		}
	}
	for attempt := 0; ; attempt++ {
		m, err := app.Deps.MonthlyInvoiceUC.Aggregate(ctx, p.ID, dto.AggregateMonthRequest{
			Month:   opts.Month,
			Year:    opts.Year,
			Number:  monthlyNumber(opts.Prefix, opts.Year, opts.Month, p.Number, seq+attempt),
			TaxRate: opts.TaxRate,
		})
		if errors.Is(err, domain.ErrDuplicate) && attempt+1 < numberAttempts {
			continue
		}
		return m, err
	}
}

// monthlyNumber FM-202403-PRJ-1 para la primera factura del mes, FM-202403-PRJ-1-2 para la segunda.
func monthlyNumber(prefix string, year, month int, project string, seq int) string {
	n := fmt.Sprintf("%s-%04d%02d-%s", prefix, year, month, project)
	if seq > 1 {
		n += fmt.Sprintf("-%d", seq)
	}
	return n
}
