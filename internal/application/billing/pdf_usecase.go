package billing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/flota-crm-api/internal/application/ports"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
	"github.com/jhoicas/flota-crm-api/internal/domain/repository"
)

// PDFUseCase genera la representación gráfica (PDF) de facturas y facturas mensuales.
type PDFUseCase struct {
	repos     repository.Repositories
	clock     ports.Clock
	generator PDFGenerator
}

// NewPDFUseCase construye el caso de uso inyectando todas sus dependencias.
func NewPDFUseCase(repos repository.Repositories, clock ports.Clock, generator PDFGenerator) *PDFUseCase {
	return &PDFUseCase{repos: repos, clock: clock, generator: generator}
}

// InvoicePDF devuelve el PDF de una factura y el nombre de archivo sugerido.
func (uc *PDFUseCase) InvoicePDF(ctx context.Context, id string) (pdfBytes []byte, filename string, err error) {
	inv, err := loadInvoice(ctx, uc.repos.Invoices, id)
	if err != nil {
		return nil, "", err
	}
	inv.RefreshStatus(uc.clock.Now())
	customer, err := uc.customer(ctx, inv.CustomerID)
	if err != nil {
		return nil, "", err
	}

	lines := make([]PDFLine, 0, len(inv.Items))
	for _, li := range inv.Items {
		lines = append(lines, PDFLine{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			TaxPercent:  li.TaxPercent,
			Total:       li.Total,
		})
	}
	doc := PDFDocument{
		Title:      "FACTURA DE VENTA",
		Number:     inv.Number,
		Date:       inv.Date,
		DueDate:    inv.DueDate,
		Customer:   customer,
		Lines:      lines,
		Subtotal:   inv.Subtotal,
		TaxRate:    entity.CloneRate(inv.TaxRate),
		TaxAmount:  inv.TaxAmount,
		Total:      inv.Total,
		PaidAmount: inv.PaidAmount,
		Balance:    inv.Balance(),
		Status:     string(inv.Status),
		Terms:      inv.Terms,
		Notes:      inv.Notes,
	}
	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("factura_%s.pdf", inv.Number), nil
}

// MonthlyInvoicePDF devuelve el PDF de una factura mensual con una fila por consumo agregado.
func (uc *PDFUseCase) MonthlyInvoicePDF(ctx context.Context, id string) (pdfBytes []byte, filename string, err error) {
	m, err := loadMonthly(ctx, uc.repos.MonthlyInvoices, id)
	if err != nil {
		return nil, "", err
	}
	m.RefreshStatus(uc.clock.Now())
	customer, err := uc.customer(ctx, m.CustomerID)
	if err != nil {
		return nil, "", err
	}
	entries, err := uc.repos.UsageEntries.List(ctx, repository.Filter{
		ProjectID: m.ProjectID, InvoiceID: m.ID, Limit: len(m.UsageEntryIDs) + 1,
	})
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener consumos: %w", err)
	}

	lines := make([]PDFLine, 0, len(entries))
	for _, e := range entries {
		qty := decimal.NewFromInt(1)
		switch {
		case e.Hours != nil:
			qty = *e.Hours
		case e.Days != nil:
			qty = *e.Days
		}
		desc := e.Date.Format("2006-01-02")
		if e.Description != "" {
			desc += " " + e.Description
		}
		lines = append(lines, PDFLine{
			Description: desc,
			Quantity:    qty,
			UnitPrice:   e.Rate,
			TaxPercent:  decimal.Zero,
			Total:       e.Total,
		})
	}
	rate := m.TaxRate
	doc := PDFDocument{
		Title:      "FACTURA MENSUAL",
		Number:     m.Number,
		Date:       m.Date,
		DueDate:    m.DueDate,
		Period:     fmt.Sprintf("%02d/%04d", m.Month, m.Year),
		Customer:   customer,
		Lines:      lines,
		Subtotal:   m.Subtotal,
		TaxRate:    &rate,
		TaxAmount:  m.TaxAmount,
		Total:      m.Total,
		PaidAmount: m.PaidAmount,
		Balance:    m.Balance(),
		Status:     string(m.Status),
		Notes:      m.Notes,
	}
	pdfBytes, err = uc.generator.GenerateInvoicePDF(ctx, doc)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("factura_mensual_%s.pdf", m.Number), nil
}

func (uc *PDFUseCase) customer(ctx context.Context, id string) (*entity.Customer, error) {
	c, err := uc.repos.Customers.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("pdf: obtener cliente: %w", err)
	}
	if c == nil {
		return nil, repository.NotFound(entity.KindCustomer, id)
	}
	return c, nil
}
