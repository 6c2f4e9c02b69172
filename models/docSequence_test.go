package models_test

import (
	"testing"

	"github.com/ncon2559/construction_backend/models"
)

func TestDocTypePrefixes(t *testing.T) {
	cases := map[models.DocType]string{
		models.DocTypeQuotation:     "QT",
		models.DocTypeInvoice:       "INV",
		models.DocTypeTaxInvoice:    "TIV",
		models.DocTypeReceipt:       "RCT",
		models.DocTypePurchaseOrder: "PO",
		models.DocTypeVendorPayment: "VP",
		models.DocTypeAdvance:       "ADV",
		models.DocTypeClearance:     "CLR",
	}
	for docType, want := range cases {
		if got := docType.Prefix(); got != want {
			t.Errorf("%s prefix = %q, want %q", docType, got, want)
		}
	}

	if got := models.DocType("SOMETHING_ELSE").Prefix(); got != models.FallbackPrefix {
		t.Errorf("unknown prefix = %q, want %q", got, models.FallbackPrefix)
	}
	if models.DocType("SOMETHING_ELSE").IsKnown() {
		t.Error("unknown doc type reported as known")
	}
}

func TestDocTypeCategories(t *testing.T) {
	income := []models.DocType{
		models.DocTypeQuotation, models.DocTypeInvoice,
		models.DocTypeTaxInvoice, models.DocTypeReceipt,
	}
	for _, docType := range income {
		if docType.Category() != models.DocCategoryIncome {
			t.Errorf("%s category = %s, want income", docType, docType.Category())
		}
	}
	expense := []models.DocType{
		models.DocTypePurchaseOrder, models.DocTypeVendorPayment,
		models.DocTypeAdvance, models.DocTypeClearance,
	}
	for _, docType := range expense {
		if docType.Category() != models.DocCategoryExpense {
			t.Errorf("%s category = %s, want expense", docType, docType.Category())
		}
	}
}

func TestFormatDocumentNumber(t *testing.T) {
	if got := models.FormatDocumentNumber("INV", 2025, 7); got != "INV-2025-0007" {
		t.Errorf("got %q, want INV-2025-0007", got)
	}
	// Past 9999 the numeric part grows without truncation or wraparound.
	if got := models.FormatDocumentNumber("INV", 2025, 10000); got != "INV-2025-10000" {
		t.Errorf("got %q, want INV-2025-10000", got)
	}
	if got := models.FormatDocumentNumber("QT", 2026, 1); got != "QT-2026-0001" {
		t.Errorf("got %q, want QT-2026-0001", got)
	}
}
