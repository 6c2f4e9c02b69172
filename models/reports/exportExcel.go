package reports

import (
	"context"
	"fmt"

	"github.com/ncon2559/construction_backend/models"
	"github.com/ncon2559/construction_backend/utils"
	"github.com/xuri/excelize/v2"
)

const (
	ExportTypeVatSales      = "vat-sales"
	ExportTypeVatPurchase   = "vat-purchase"
	ExportTypeWht           = "wht"
	ExportTypeIncomeExpense = "income-expense"
)

const exportDateLayout = "2006-01-02"

func addHeaderRow(f *excelize.File, sheet string, headings ...string) {
	col := 'A'
	for _, heading := range headings {
		f.SetCellValue(sheet, string(col)+"1", heading)
		col++
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		f.SetRowStyle(sheet, 1, 1, style)
	}
}

func addVatSalesSheet(f *excelize.File, rows []TaxDocumentRow) error {
	sheet := "VAT Sales"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	addHeaderRow(f, sheet, "Date", "Doc No.", "Project", "Subtotal", "VAT", "Net Total")

	for i, d := range rows {
		rowNo := fmt.Sprint(i + 2)
		f.SetCellValue(sheet, "A"+rowNo, d.CreatedAt.Format(exportDateLayout))
		f.SetCellValue(sheet, "B"+rowNo, d.DocNumber)
		f.SetCellValue(sheet, "C"+rowNo, d.ProjectName)
		f.SetCellValue(sheet, "D"+rowNo, d.Subtotal.InexactFloat64())
		f.SetCellValue(sheet, "E"+rowNo, d.VatAmount.InexactFloat64())
		f.SetCellValue(sheet, "F"+rowNo, d.NetTotal.InexactFloat64())
	}
	return nil
}

func addVatPurchaseSheet(f *excelize.File, rows []TaxDocumentRow) error {
	sheet := "VAT Purchase"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	addHeaderRow(f, sheet, "Date", "Doc No.", "Vendor", "Project", "Subtotal", "VAT", "Net Total")

	for i, d := range rows {
		rowNo := fmt.Sprint(i + 2)
		f.SetCellValue(sheet, "A"+rowNo, d.CreatedAt.Format(exportDateLayout))
		f.SetCellValue(sheet, "B"+rowNo, d.DocNumber)
		f.SetCellValue(sheet, "C"+rowNo, d.VendorName)
		f.SetCellValue(sheet, "D"+rowNo, d.ProjectName)
		f.SetCellValue(sheet, "E"+rowNo, d.Subtotal.InexactFloat64())
		f.SetCellValue(sheet, "F"+rowNo, d.VatAmount.InexactFloat64())
		f.SetCellValue(sheet, "G"+rowNo, d.NetTotal.InexactFloat64())
	}
	return nil
}

func addWhtSheet(f *excelize.File, rows []TaxDocumentRow) error {
	sheet := "WHT Report"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	addHeaderRow(f, sheet, "Date", "Doc No.", "Vendor", "Tax ID", "Subtotal", "WHT")

	for i, d := range rows {
		rowNo := fmt.Sprint(i + 2)
		f.SetCellValue(sheet, "A"+rowNo, d.CreatedAt.Format(exportDateLayout))
		f.SetCellValue(sheet, "B"+rowNo, d.DocNumber)
		f.SetCellValue(sheet, "C"+rowNo, d.VendorName)
		f.SetCellValue(sheet, "D"+rowNo, d.VendorTaxId)
		f.SetCellValue(sheet, "E"+rowNo, d.Subtotal.InexactFloat64())
		f.SetCellValue(sheet, "F"+rowNo, d.WhtAmount.InexactFloat64())
	}
	return nil
}

func addIncomeExpenseSheet(f *excelize.File, rows []TaxDocumentRow) error {
	sheet := "Income vs Expense"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	addHeaderRow(f, sheet, "Date", "Doc No.", "Type", "Project", "Category", "Amount")

	for i, d := range rows {
		rowNo := fmt.Sprint(i + 2)
		f.SetCellValue(sheet, "A"+rowNo, d.CreatedAt.Format(exportDateLayout))
		f.SetCellValue(sheet, "B"+rowNo, d.DocNumber)
		f.SetCellValue(sheet, "C"+rowNo, string(d.DocType))
		f.SetCellValue(sheet, "D"+rowNo, d.ProjectName)
		f.SetCellValue(sheet, "E"+rowNo, string(d.DocType.Category()))
		f.SetCellValue(sheet, "F"+rowNo, d.NetTotal.InexactFloat64())
	}
	return nil
}

// ExportExcel builds the xlsx workbook for one report type, or all four
// when exportType is empty.
func ExportExcel(ctx context.Context, exportType string, period string) (*excelize.File, error) {
	switch exportType {
	case "", ExportTypeVatSales, ExportTypeVatPurchase, ExportTypeWht, ExportTypeIncomeExpense:
	default:
		return nil, utils.ErrorInvalidInput
	}

	allRows, err := taxDocuments(ctx, models.AllDocTypes(), period)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()

	if exportType == ExportTypeVatSales || exportType == "" {
		salesRows := filterByDocTypes(allRows, models.IncomeReportTypes())
		if err := addVatSalesSheet(f, salesRows); err != nil {
			return nil, err
		}
	}
	if exportType == ExportTypeVatPurchase || exportType == "" {
		purchaseRows := filterByDocTypes(allRows, models.ExpenseReportTypes())
		if err := addVatPurchaseSheet(f, purchaseRows); err != nil {
			return nil, err
		}
	}
	if exportType == ExportTypeWht || exportType == "" {
		whtRows := make([]TaxDocumentRow, 0, len(allRows))
		for _, row := range allRows {
			if row.WhtAmount.IsPositive() {
				whtRows = append(whtRows, row)
			}
		}
		if err := addWhtSheet(f, whtRows); err != nil {
			return nil, err
		}
	}
	if exportType == ExportTypeIncomeExpense || exportType == "" {
		if err := addIncomeExpenseSheet(f, allRows); err != nil {
			return nil, err
		}
	}

	f.DeleteSheet("Sheet1")
	return f, nil
}

func filterByDocTypes(rows []TaxDocumentRow, docTypes []models.DocType) []TaxDocumentRow {
	wanted := make(map[models.DocType]bool, len(docTypes))
	for _, docType := range docTypes {
		wanted[docType] = true
	}
	filtered := make([]TaxDocumentRow, 0, len(rows))
	for _, row := range rows {
		if wanted[row.DocType] {
			filtered = append(filtered, row)
		}
	}
	return filtered
}
