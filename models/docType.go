package models

type DocType string

const (
	DocTypeQuotation     DocType = "QUOTATION"
	DocTypeInvoice       DocType = "INVOICE"
	DocTypeTaxInvoice    DocType = "TAX_INVOICE"
	DocTypeReceipt       DocType = "RECEIPT"
	DocTypePurchaseOrder DocType = "PO"
	DocTypeVendorPayment DocType = "VENDOR_PAYMENT"
	DocTypeAdvance       DocType = "ADVANCE"
	DocTypeClearance     DocType = "CLEARANCE"
)

type DocCategory string

const (
	DocCategoryIncome  DocCategory = "Income"
	DocCategoryExpense DocCategory = "Expense"
)

type DocumentStatus string

const (
	DocumentStatusDraft     DocumentStatus = "DRAFT"
	DocumentStatusSent      DocumentStatus = "SENT"
	DocumentStatusApproved  DocumentStatus = "APPROVED"
	DocumentStatusPaid      DocumentStatus = "PAID"
	DocumentStatusCancelled DocumentStatus = "CANCELLED"
)

// FallbackPrefix numbers document types outside the known enumeration.
// Unknown types share one counter per year; the API layer rejects them
// before they ever reach the allocator.
const FallbackPrefix = "DOC"

var docTypePrefixes = map[DocType]string{
	DocTypeQuotation:     "QT",
	DocTypeInvoice:       "INV",
	DocTypeTaxInvoice:    "TIV",
	DocTypeReceipt:       "RCT",
	DocTypePurchaseOrder: "PO",
	DocTypeVendorPayment: "VP",
	DocTypeAdvance:       "ADV",
	DocTypeClearance:     "CLR",
}

var incomeDocTypes = map[DocType]bool{
	DocTypeQuotation:  true,
	DocTypeInvoice:    true,
	DocTypeTaxInvoice: true,
	DocTypeReceipt:    true,
}

// Prefix returns the numbering prefix for the document type, or
// FallbackPrefix for unrecognized types. Total: never fails.
func (t DocType) Prefix() string {
	if prefix, ok := docTypePrefixes[t]; ok {
		return prefix
	}
	return FallbackPrefix
}

// Category classifies a document as income or expense. Income documents
// subtract withholding tax from their net total; expense documents track it
// for withholding-certificate reporting without subtracting it.
func (t DocType) Category() DocCategory {
	if incomeDocTypes[t] {
		return DocCategoryIncome
	}
	return DocCategoryExpense
}

// IsKnown reports whether the type belongs to the closed enumeration.
func (t DocType) IsKnown() bool {
	_, ok := docTypePrefixes[t]
	return ok
}

func AllDocTypes() []DocType {
	return []DocType{
		DocTypeQuotation, DocTypeInvoice, DocTypeTaxInvoice, DocTypeReceipt,
		DocTypePurchaseOrder, DocTypeVendorPayment, DocTypeAdvance, DocTypeClearance,
	}
}

// IncomeReportTypes are the doc types counted as realized income in reports.
// Quotations carry the income formula but are excluded from revenue rollups.
func IncomeReportTypes() []DocType {
	return []DocType{DocTypeInvoice, DocTypeTaxInvoice, DocTypeReceipt}
}

// ExpenseReportTypes are the doc types counted as spend in reports.
func ExpenseReportTypes() []DocType {
	return []DocType{DocTypePurchaseOrder, DocTypeVendorPayment}
}
