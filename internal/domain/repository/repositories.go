package repository

// Repositories agrupa los puertos que una transacción entrega a su callback.
// Todos los campos quedan atados a la misma transacción (o al mismo almacén).
type Repositories struct {
	Quotations      QuotationRepository
	PurchaseOrders  PurchaseOrderRepository
	Invoices        InvoiceRepository
	Receipts        ReceiptRepository
	Projects        ProjectRepository
	UsageEntries    UsageEntryRepository
	MonthlyInvoices MonthlyInvoiceRepository
	Customers       CustomerRepository
	Vendors         VendorRepository
	Vehicles        VehicleRepository
	Users           UserRepository
}
