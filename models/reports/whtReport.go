package reports

import (
	"context"

	"github.com/ncon2559/construction_backend/config"
	"github.com/ncon2559/construction_backend/models"
	"github.com/ncon2559/construction_backend/utils"
	"github.com/shopspring/decimal"
)

type WhtReport struct {
	Documents     []TaxDocumentRow `json:"documents"`
	TotalWht      decimal.Decimal  `json:"total_wht"`
	TotalSubtotal decimal.Decimal  `json:"total_subtotal"`
	ReportType    string           `json:"report_type"`
}

// GetWhtReport lists every document carrying withholding tax for a filing
// period. reportType is the Thai revenue form (PND3, PND53 or 50BIS) and is
// echoed back for the client; the underlying data set is the same.
func GetWhtReport(ctx context.Context, period string, reportType string) (*WhtReport, error) {
	db := config.GetDB()

	query := db.WithContext(ctx).
		Table("documents d").
		Select("d.*, p.name AS project_name, p.project_code").
		Joins("LEFT JOIN projects p ON p.id = d.project_id").
		Where("d.status <> ?", models.DocumentStatusCancelled).
		Where("d.wht_amount > 0")
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

	totalWht := decimal.Zero
	totalSubtotal := decimal.Zero
	for _, row := range rows {
		totalWht = totalWht.Add(row.WhtAmount)
		totalSubtotal = totalSubtotal.Add(row.Subtotal)
	}

	if reportType == "" {
		reportType = "PND3"
	}
	return &WhtReport{
		Documents:     rows,
		TotalWht:      totalWht,
		TotalSubtotal: totalSubtotal,
		ReportType:    reportType,
	}, nil
}
