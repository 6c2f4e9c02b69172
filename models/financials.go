package models

import (
	"github.com/shopspring/decimal"
)

// NewLineItem is one line of a document-create/update request.
type NewLineItem struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// Financials holds the derived monetary fields of a document, all rounded to
// 2 decimal places.
type Financials struct {
	Subtotal   decimal.Decimal
	VatAmount  decimal.Decimal
	WhtAmount  decimal.Decimal
	NetTotal   decimal.Decimal
	LineTotals []decimal.Decimal
}

// CalculateFinancials derives subtotal, VAT, WHT and net total from a line
// item set. Pure: no DB access, safe to re-run on every edit.
//
// line_total = round(qty x unit_price, 2) per line; subtotal is the plain sum
// (each addend is already 2-decimal exact). VAT and WHT are rates against the
// subtotal. Income documents subtract WHT from the net total; expense
// documents keep WHT for withholding-certificate reporting but do not
// subtract it.
func CalculateFinancials(lineItems []NewLineItem, vatRate decimal.Decimal, whtRate decimal.Decimal, docType DocType) Financials {

	subtotal := decimal.Zero
	lineTotals := make([]decimal.Decimal, 0, len(lineItems))
	for _, item := range lineItems {
		lineTotal := item.Quantity.Mul(item.UnitPrice).Round(2)
		lineTotals = append(lineTotals, lineTotal)
		subtotal = subtotal.Add(lineTotal)
	}

	vatAmount := subtotal.Mul(vatRate).Round(2)
	whtAmount := subtotal.Mul(whtRate).Round(2)

	var netTotal decimal.Decimal
	if docType.Category() == DocCategoryIncome {
		netTotal = subtotal.Add(vatAmount).Sub(whtAmount).Round(2)
	} else {
		netTotal = subtotal.Add(vatAmount).Round(2)
	}

	return Financials{
		Subtotal:   subtotal,
		VatAmount:  vatAmount,
		WhtAmount:  whtAmount,
		NetTotal:   netTotal,
		LineTotals: lineTotals,
	}
}
