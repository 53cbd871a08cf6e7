package projects

import (
	"github.com/jhoicas/flota-crm-api/internal/application/dto"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
)

func toProjectResponse(p *entity.Project) *dto.ProjectResponse {
	vehicles := append([]string{}, p.AssignedVehicleIDs...)
	return &dto.ProjectResponse{
		ID:                 p.ID,
		Number:             p.Number,
		QuotationID:        p.QuotationID,
		CustomerID:         p.CustomerID,
		Title:              p.Title,
		StartDate:          p.StartDate,
		EndDate:            p.EndDate,
		BillingType:        string(p.BillingType),
		HourlyRate:         p.HourlyRate,
		DailyRate:          p.DailyRate,
		FixedAmount:        p.FixedAmount,
		POReceived:         p.POReceived,
		AssignedVehicleIDs: vehicles,
		Status:             string(p.Status),
		Terms:              p.Terms,
		Notes:              p.Notes,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}

func toUsageEntryResponse(e *entity.UsageEntry) *dto.UsageEntryResponse {
	return &dto.UsageEntryResponse{
		ID:          e.ID,
		ProjectID:   e.ProjectID,
		VehicleID:   e.VehicleID,
		Date:        e.Date,
		Hours:       entity.CloneRate(e.Hours),
		Days:        entity.CloneRate(e.Days),
		Description: e.Description,
		Location:    e.Location,
		Rate:        e.Rate,
		Total:       e.Total,
		Invoiced:    e.Invoiced,
		InvoiceID:   e.InvoiceID,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toMonthlyInvoiceResponse(m *entity.MonthlyInvoice) *dto.MonthlyInvoiceResponse {
	return &dto.MonthlyInvoiceResponse{
		ID:            m.ID,
		Number:        m.Number,
		ProjectID:     m.ProjectID,
		CustomerID:    m.CustomerID,
		Month:         m.Month,
		Year:          m.Year,
		UsageEntryIDs: append([]string{}, m.UsageEntryIDs...),
		TotalHours:    entity.CloneRate(m.TotalHours),
		TotalDays:     entity.CloneRate(m.TotalDays),
		Subtotal:      m.Subtotal,
		TaxRate:       m.TaxRate,
		TaxAmount:     m.TaxAmount,
		Total:         m.Total,
		PaidAmount:    m.PaidAmount,
		Balance:       m.Balance(),
		Status:        string(m.Status),
		Date:          m.Date,
		DueDate:       m.DueDate,
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
