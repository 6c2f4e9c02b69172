package models_test

import (
	"testing"

	"github.com/ncon2559/construction_backend/models"
	"github.com/shopspring/decimal"
)

func d(value string) decimal.Decimal {
	out, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return out
}

// Golden case: a 2.5M THB invoice with 7% VAT and 3% WHT. Income documents
// subtract the withholding from the net total.
func TestCalculateFinancials_IncomeWithVatAndWht(t *testing.T) {
	fin := models.CalculateFinancials([]models.NewLineItem{
		{Description: "งวดที่ 1 - งานโครงสร้าง 30%", Quantity: d("1"), UnitPrice: d("2500000")},
	}, d("0.07"), d("0.03"), models.DocTypeInvoice)

	if !fin.Subtotal.Equal(d("2500000")) {
		t.Fatalf("subtotal = %s, want 2500000", fin.Subtotal)
	}
	if !fin.VatAmount.Equal(d("175000")) {
		t.Fatalf("vat = %s, want 175000", fin.VatAmount)
	}
	if !fin.WhtAmount.Equal(d("75000")) {
		t.Fatalf("wht = %s, want 75000", fin.WhtAmount)
	}
	if !fin.NetTotal.Equal(d("2600000")) {
		t.Fatalf("net = %s, want 2600000", fin.NetTotal)
	}
}

// Expense documents keep the withholding amount for certificate reporting
// but never subtract it from the net total.
func TestCalculateFinancials_ExpenseKeepsWhtOutOfNet(t *testing.T) {
	fin := models.CalculateFinancials([]models.NewLineItem{
		{Description: "ปูนซีเมนต์ปอร์ตแลนด์", Quantity: d("200"), UnitPrice: d("165")},
		{Description: "เหล็กเส้น DB16", Quantity: d("500"), UnitPrice: d("280")},
	}, d("0.07"), d("0.03"), models.DocTypePurchaseOrder)

	if !fin.Subtotal.Equal(d("173000")) {
		t.Fatalf("subtotal = %s, want 173000", fin.Subtotal)
	}
	if !fin.VatAmount.Equal(d("12110")) {
		t.Fatalf("vat = %s, want 12110", fin.VatAmount)
	}
	if !fin.WhtAmount.Equal(d("5190")) {
		t.Fatalf("wht = %s, want 5190", fin.WhtAmount)
	}
	if !fin.NetTotal.Equal(d("185110")) {
		t.Fatalf("net = %s, want 185110 (wht must not be subtracted)", fin.NetTotal)
	}
}

func TestCalculateFinancials_EmptyLineItems(t *testing.T) {
	fin := models.CalculateFinancials(nil, d("0.07"), d("0.03"), models.DocTypeInvoice)

	for name, got := range map[string]decimal.Decimal{
		"subtotal": fin.Subtotal,
		"vat":      fin.VatAmount,
		"wht":      fin.WhtAmount,
		"net":      fin.NetTotal,
	} {
		if !got.IsZero() {
			t.Fatalf("%s = %s, want 0", name, got)
		}
	}
	if len(fin.LineTotals) != 0 {
		t.Fatalf("line totals = %v, want empty", fin.LineTotals)
	}
}

// 3 x 33.335 = 100.005, which must round half-up to 100.01, not truncate
// to 100.00. Exact decimal arithmetic keeps the .005 visible to Round.
func TestCalculateFinancials_PerLineRounding(t *testing.T) {
	fin := models.CalculateFinancials([]models.NewLineItem{
		{Description: "a", Quantity: d("3"), UnitPrice: d("33.335")},
	}, decimal.Zero, decimal.Zero, models.DocTypeInvoice)

	if len(fin.LineTotals) != 1 || !fin.LineTotals[0].Equal(d("100.01")) {
		t.Fatalf("line total = %v, want 100.01", fin.LineTotals)
	}
	if !fin.Subtotal.Equal(d("100.01")) {
		t.Fatalf("subtotal = %s, want 100.01", fin.Subtotal)
	}
}

// Half-up rounding on derived amounts: 0.07 * 150.05 = 10.5035 -> 10.50,
// 0.03 * 150.05 = 4.5015 -> 4.50.
func TestCalculateFinancials_HalfUpRounding(t *testing.T) {
	fin := models.CalculateFinancials([]models.NewLineItem{
		{Description: "a", Quantity: d("1"), UnitPrice: d("150.05")},
	}, d("0.07"), d("0.03"), models.DocTypeInvoice)

	if !fin.VatAmount.Equal(d("10.50")) {
		t.Fatalf("vat = %s, want 10.50", fin.VatAmount)
	}
	if !fin.WhtAmount.Equal(d("4.50")) {
		t.Fatalf("wht = %s, want 4.50", fin.WhtAmount)
	}

	// 2.345 * 1 -> 2.35 with half-away-from-zero rounding.
	fin = models.CalculateFinancials([]models.NewLineItem{
		{Description: "b", Quantity: d("1"), UnitPrice: d("2.345")},
	}, decimal.Zero, decimal.Zero, models.DocTypeInvoice)
	if !fin.Subtotal.Equal(d("2.35")) {
		t.Fatalf("subtotal = %s, want 2.35", fin.Subtotal)
	}
}

// Recomputing over the same inputs must yield identical outputs; update paths
// rely on this to reconcile stored totals.
func TestCalculateFinancials_Deterministic(t *testing.T) {
	items := []models.NewLineItem{
		{Description: "a", Quantity: d("3.5"), UnitPrice: d("1234.56")},
		{Description: "b", Quantity: d("0.25"), UnitPrice: d("99999.99")},
	}

	first := models.CalculateFinancials(items, d("0.07"), d("0.03"), models.DocTypeReceipt)
	second := models.CalculateFinancials(items, d("0.07"), d("0.03"), models.DocTypeReceipt)

	if !first.Subtotal.Equal(second.Subtotal) ||
		!first.VatAmount.Equal(second.VatAmount) ||
		!first.WhtAmount.Equal(second.WhtAmount) ||
		!first.NetTotal.Equal(second.NetTotal) {
		t.Fatalf("recomputation diverged: %+v vs %+v", first, second)
	}
}

func TestCalculateFinancials_QuotationUsesIncomeFormula(t *testing.T) {
	fin := models.CalculateFinancials([]models.NewLineItem{
		{Description: "a", Quantity: d("1"), UnitPrice: d("1000")},
	}, d("0.07"), d("0.03"), models.DocTypeQuotation)

	// 1000 + 70 - 30
	if !fin.NetTotal.Equal(d("1040")) {
		t.Fatalf("net = %s, want 1040", fin.NetTotal)
	}
}
