package reports

import (
	"context"

	"github.com/ncon2559/construction_backend/config"
	"github.com/ncon2559/construction_backend/models"
	"github.com/ncon2559/construction_backend/utils"
	"github.com/shopspring/decimal"
)

type TaxDocumentRow struct {
	models.Document
	ProjectName string `json:"project_name"`
	ProjectCode string `json:"project_code"`
}

type VatReport struct {
	Documents     []TaxDocumentRow `json:"documents"`
	TotalSubtotal decimal.Decimal  `json:"total_subtotal"`
	TotalVat      decimal.Decimal  `json:"total_vat"`
}

// taxDocuments lists non-cancelled documents of the given types joined with
// their project, optionally restricted to a "YYYY-MM" period.
func taxDocuments(ctx context.Context, docTypes []models.DocType, period string) ([]TaxDocumentRow, error) {
	db := config.GetDB()

	query := db.WithContext(ctx).
		Table("documents d").
		Select("d.*, p.name AS project_name, p.project_code").
		Joins("LEFT JOIN projects p ON p.id = d.project_id").
		Where("d.status <> ?", models.DocumentStatusCancelled).
		Where("d.doc_type IN ?", docTypes)
	if period != "" {
		query = query.Where("DATE_FORMAT(d.created_at, '%Y-%m') = ?", period)
	}

	var rows []TaxDocumentRow
	if err := query.Order("d.created_at").Scan(&rows).Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if rows == nil {
		rows = []TaxDocumentRow{}
	}
	return rows, nil
}

func buildVatReport(rows []TaxDocumentRow) *VatReport {
	totalSubtotal := decimal.Zero
	totalVat := decimal.Zero
	for _, row := range rows {
		totalSubtotal = totalSubtotal.Add(row.Subtotal)
		totalVat = totalVat.Add(row.VatAmount)
	}
	return &VatReport{Documents: rows, TotalSubtotal: totalSubtotal, TotalVat: totalVat}
}

// GetVatSalesReport covers output VAT on realized income documents.
func GetVatSalesReport(ctx context.Context, period string) (*VatReport, error) {
	rows, err := taxDocuments(ctx, models.IncomeReportTypes(), period)
	if err != nil {
		return nil, err
	}
	return buildVatReport(rows), nil
}

// GetVatPurchaseReport covers input VAT on expense documents.
func GetVatPurchaseReport(ctx context.Context, period string) (*VatReport, error) {
	rows, err := taxDocuments(ctx, models.ExpenseReportTypes(), period)
	if err != nil {
		return nil, err
	}
	return buildVatReport(rows), nil
}
