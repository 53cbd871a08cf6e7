package entity

import (
	"fmt"
	"time"

	"github.com/jhoicas/flota-crm-api/internal/domain"
	"github.com/shopspring/decimal"
)

// BillingType modalidad de cobro de un proyecto.
type BillingType string

const (
	BillingHours BillingType = "hours"
	BillingDays  BillingType = "days"
	BillingFixed BillingType = "fixed"
)

// ProjectStatus estado de un proyecto.
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

var projectFlow = transitions[ProjectStatus]{
	ProjectActive: {ProjectOnHold, ProjectCompleted, ProjectCancelled},
	ProjectOnHold: {ProjectActive, ProjectCancelled},
}

// IsValid informa si s es un estado conocido.
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

// IsTerminal completed y cancelled no admiten nuevos consumos.
func (s ProjectStatus) IsTerminal() bool { return projectFlow.isTerminal(s) }

// Project contrato de uso de vehículos (por horas, días o monto fijo) nacido de una cotización.
type Project struct {
	ID                 string
	Number             string
	QuotationID        string
	CustomerID         string
	Title              string
	StartDate          time.Time
	EndDate            *time.Time
	BillingType        BillingType
	HourlyRate         decimal.Decimal
	DailyRate          decimal.Decimal
	FixedAmount        decimal.Decimal
	POReceived         bool
	AssignedVehicleIDs []string
	Status             ProjectStatus
	Terms              string
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Rate tarifa aplicable según la modalidad de cobro.
func (p *Project) Rate() (decimal.Decimal, error) {
	var rate decimal.Decimal
	switch p.BillingType {
	case BillingHours:
		rate = p.HourlyRate
	case BillingDays:
		rate = p.DailyRate
	case BillingFixed:
		rate = p.FixedAmount
	default:
		return decimal.Zero, fmt.Errorf("%w: modalidad de cobro %q desconocida", domain.ErrInvalidArgument, p.BillingType)
	}
	if !rate.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: el proyecto no tiene tarifa para %q", domain.ErrInvalidArgument, p.BillingType)
	}
	return rate, nil
}

// Validate comprueba los campos obligatorios y la tarifa.
func (p *Project) Validate() error {
	if p.Number == "" || p.CustomerID == "" || p.Title == "" {
		return fmt.Errorf("%w: number, customer_id y title son obligatorios", domain.ErrInvalidArgument)
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return fmt.Errorf("%w: end_date es anterior a start_date", domain.ErrInvalidArgument)
	}
	if !p.Status.IsValid() {
		return fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidArgument, p.Status)
	}
	_, err := p.Rate()
	return err
}

// HasVehicle informa si el vehículo está asignado; sin asignaciones se acepta cualquiera.
func (p *Project) HasVehicle(vehicleID string) bool {
	if len(p.AssignedVehicleIDs) == 0 {
		return true
	}
	for _, id := range p.AssignedVehicleIDs {
		if id == vehicleID {
			return true
		}
	}
	return false
}

// TransitionTo aplica una transición de estado.
func (p *Project) TransitionTo(target ProjectStatus, now time.Time) error {
	if !projectFlow.allows(p.Status, target) {
		return invalidTransition(KindProject, p.Status, target)
	}
	p.Status = target
	p.UpdatedAt = now
	return nil
}
