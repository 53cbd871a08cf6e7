package billing

import (
	"time"

	"github.com/jhoicas/flota-crm-api/internal/application/dto"
	"github.com/jhoicas/flota-crm-api/internal/domain/entity"
)

func toItems(in []dto.LineItemDTO) []entity.LineItem {
	out := make([]entity.LineItem, 0, len(in))
	for _, li := range in {
		out = append(out, entity.LineItem{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			TaxPercent:  li.TaxPercent,
			BillingMode: entity.BillingMode(li.BillingMode),
			Hours:       li.Hours,
			Days:        li.Days,
		})
	}
	return entity.CloneItems(out)
}

func toItemDTOs(items []entity.LineItem) []dto.LineItemDTO {
	out := make([]dto.LineItemDTO, 0, len(items))
	for _, li := range entity.CloneItems(items) {
		out = append(out, dto.LineItemDTO{
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			TaxPercent:  li.TaxPercent,
			Total:       li.Total,
			BillingMode: string(li.BillingMode),
			Hours:       li.Hours,
			Days:        li.Days,
		})
	}
	return out
}

func dateOr(d, now time.Time) time.Time {
	if d.IsZero() {
		return now
	}
	return d
}

func toQuotationResponse(q *entity.Quotation) *dto.QuotationResponse {
	return &dto.QuotationResponse{
		ID:         q.ID,
		Number:     q.Number,
		CustomerID: q.CustomerID,
		Date:       q.Date,
		ValidUntil: q.ValidUntil,
		Items:      toItemDTOs(q.Items),
		Subtotal:   q.Subtotal,
		TaxRate:    entity.CloneRate(q.TaxRate),
		TaxAmount:  q.TaxAmount,
		Total:      q.Total,
		Status:     string(q.Status),
		Terms:      q.Terms,
		Notes:      q.Notes,
		CreatedAt:  q.CreatedAt,
		UpdatedAt:  q.UpdatedAt,
	}
}

func toPurchaseOrderResponse(po *entity.PurchaseOrder) *dto.PurchaseOrderResponse {
	return &dto.PurchaseOrderResponse{
		ID:               po.ID,
		Number:           po.Number,
		CustomerID:       po.CustomerID,
		VendorID:         po.VendorID,
		QuotationID:      po.QuotationID,
		Date:             po.Date,
		ExpectedDelivery: po.ExpectedDelivery,
		Items:            toItemDTOs(po.Items),
		Subtotal:         po.Subtotal,
		TaxRate:          entity.CloneRate(po.TaxRate),
		TaxAmount:        po.TaxAmount,
		Total:            po.Total,
		Status:           string(po.Status),
		Terms:            po.Terms,
		Notes:            po.Notes,
		CreatedAt:        po.CreatedAt,
		UpdatedAt:        po.UpdatedAt,
	}
}

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	return &dto.InvoiceResponse{
		ID:              inv.ID,
		Number:          inv.Number,
		CustomerID:      inv.CustomerID,
		QuotationID:     inv.QuotationID,
		PurchaseOrderID: inv.PurchaseOrderID,
		Date:            inv.Date,
		DueDate:         inv.DueDate,
		Items:           toItemDTOs(inv.Items),
		Subtotal:        inv.Subtotal,
		TaxRate:         entity.CloneRate(inv.TaxRate),
		TaxAmount:       inv.TaxAmount,
		Total:           inv.Total,
		PaidAmount:      inv.PaidAmount,
		Balance:         inv.Balance(),
		Status:          string(inv.Status),
		Terms:           inv.Terms,
		Notes:           inv.Notes,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}
}

func toReceiptResponse(r *entity.Receipt) *dto.ReceiptResponse {
	return &dto.ReceiptResponse{
		ID:              r.ID,
		Number:          r.Number,
		InvoiceID:       r.InvoiceID,
		InvoiceKind:     string(r.InvoiceKind),
		CustomerID:      r.CustomerID,
		Date:            r.Date,
		PaymentDate:     r.PaymentDate,
		Amount:          r.Amount,
		PaymentMethod:   r.PaymentMethod,
		ReferenceNumber: r.ReferenceNumber,
		Status:          string(r.Status),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func toCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
	}
}
