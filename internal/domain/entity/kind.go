package entity

// Kind identifica el tipo de entidad frente a los puertos de persistencia y permisos.
type Kind string

const (
	KindQuotation      Kind = "quotation"
	KindPurchaseOrder  Kind = "purchaseOrder"
	KindInvoice        Kind = "invoice"
	KindReceipt        Kind = "receipt"
	KindProject        Kind = "project"
	KindUsageEntry     Kind = "usageEntry"
	KindMonthlyInvoice Kind = "monthlyInvoice"
	KindCustomer       Kind = "customer"
	KindVendor         Kind = "vendor"
	KindVehicle        Kind = "vehicle"
)

// DocumentKinds tipos que participan en la cadena documental y en la facturación por uso.
var DocumentKinds = []Kind{
	KindQuotation, KindPurchaseOrder, KindInvoice, KindReceipt,
	KindProject, KindUsageEntry, KindMonthlyInvoice,
}

// IsValid informa si k es un tipo conocido.
func (k Kind) IsValid() bool {
	switch k {
	case KindQuotation, KindPurchaseOrder, KindInvoice, KindReceipt, KindProject,
		KindUsageEntry, KindMonthlyInvoice, KindCustomer, KindVendor, KindVehicle:
		return true
	}
	return false
}
