package reports

import (
	"context"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/ncon2559/construction_backend/config"
	"github.com/ncon2559/construction_backend/models"
	"github.com/ncon2559/construction_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CashFlowDetail struct {
	Month   string          `json:"month"`
	CashIn  decimal.Decimal `json:"cash_in"`
	CashOut decimal.Decimal `json:"cash_out"`
}

type ExpenseByCategory struct {
	Category models.DocType  `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

type RecentActivityRow struct {
	ID            int             `json:"id"`
	DocType       models.DocType  `json:"doc_type"`
	DocNumber     string          `json:"doc_number"`
	NetTotal      decimal.Decimal `json:"net_total"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	ProjectName   string          `json:"project_name"`
	CreatedByName string          `json:"created_by_name"`
}

type DashboardSummary struct {
	OutstandingReceivables decimal.Decimal     `json:"outstanding_receivables"`
	OutstandingPayables    decimal.Decimal     `json:"outstanding_payables"`
	MonthlyIncome          decimal.Decimal     `json:"monthly_income"`
	MonthlyExpense         decimal.Decimal     `json:"monthly_expense"`
	MonthlyProfit          decimal.Decimal     `json:"monthly_profit"`
	VatPayable             decimal.Decimal     `json:"vat_payable"`
	WhtPayable             decimal.Decimal     `json:"wht_payable"`
	OverdueCount           int                 `json:"overdue_count"`
	CashFlow               []CashFlowDetail    `json:"cash_flow"`
	ExpenseByCategory      []ExpenseByCategory `json:"expense_by_category"`
	RecentActivity         []RecentActivityRow `json:"recent_activity"`
}

// dashboardScope narrows dashboard queries to one project when requested,
// or to the caller's assigned projects for non-admin users.
func dashboardScope(ctx context.Context, query *gorm.DB, projectId int) *gorm.DB {
	if projectId != 0 {
		return query.Where("d.project_id = ?", projectId)
	}
	role, _ := utils.GetUserRoleFromContext(ctx)
	if role != string(models.UserRoleAdmin) {
		userId, _ := utils.GetUserIdFromContext(ctx)
		return query.Where(
			"d.project_id IN (SELECT project_id FROM project_users WHERE user_id = ?)",
			userId,
		)
	}
	return query
}

func scopedDocuments(ctx context.Context, projectId int) *gorm.DB {
	db := config.GetDB()
	return dashboardScope(ctx, db.WithContext(ctx).Table("documents d"), projectId)
}

func sumScoped(ctx context.Context, projectId int, column string, apply func(*gorm.DB) *gorm.DB) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := apply(scopedDocuments(ctx, projectId)).
		Select("COALESCE(SUM(" + column + "), 0)")
	if err := query.Scan(&total).Error; err != nil {
		return decimal.Zero, utils.ErrorStorageUnavailable
	}
	return total, nil
}

// GetDashboardSummary builds the landing-page figures. All monetary sums
// come straight from the persisted document totals; nothing is recomputed
// from line items here.
func GetDashboardSummary(ctx context.Context, projectId int) (*DashboardSummary, error) {
	receivables, err := sumScoped(ctx, projectId, "d.net_total", func(q *gorm.DB) *gorm.DB {
		return q.Where("d.doc_type IN ?", []models.DocType{models.DocTypeInvoice, models.DocTypeTaxInvoice}).
			Where("d.status NOT IN ?", []models.DocumentStatus{models.DocumentStatusPaid, models.DocumentStatusCancelled})
	})
	if err != nil {
		return nil, err
	}

	payables, err := sumScoped(ctx, projectId, "d.net_total", func(q *gorm.DB) *gorm.DB {
		return q.Where("d.doc_type IN ?", models.ExpenseReportTypes()).
			Where("d.status NOT IN ?", []models.DocumentStatus{models.DocumentStatusPaid, models.DocumentStatusCancelled})
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0)

	monthlyIncome, err := sumScoped(ctx, projectId, "d.net_total", func(q *gorm.DB) *gorm.DB {
		return q.Where("d.doc_type IN ?", models.IncomeReportTypes()).
			Where("d.status = ?", models.DocumentStatusPaid).
			Where("d.created_at >= ? AND d.created_at < ?", monthStart, monthEnd)
	})
	if err != nil {
		return nil, err
	}

	monthlyExpense, err := sumScoped(ctx, projectId, "d.net_total", func(q *gorm.DB) *gorm.DB {
		return q.Where("d.doc_type IN ?", models.ExpenseReportTypes()).
			Where("d.status = ?", models.DocumentStatusPaid).
			Where("d.created_at >= ? AND d.created_at < ?", monthStart, monthEnd)
	})
	if err != nil {
		return nil, err
	}

	vatSales, err := sumScoped(ctx, projectId, "d.vat_amount", func(q *gorm.DB) *gorm.DB {
		return q.Where("d.doc_type IN ?", models.IncomeReportTypes()).
			Where("d.status <> ?", models.DocumentStatusCancelled)
	})
	if err != nil {
		return nil, err
	}

	vatPurchase, err := sumScoped(ctx, projectId, "d.vat_amount", func(q *gorm.DB) *gorm.DB {
		return q.Where("d.doc_type IN ?", models.ExpenseReportTypes()).
			Where("d.status <> ?", models.DocumentStatusCancelled)
	})
	if err != nil {
		return nil, err
	}

	whtPayable, err := sumScoped(ctx, projectId, "d.wht_amount", func(q *gorm.DB) *gorm.DB {
		return q.Where("d.status <> ?", models.DocumentStatusCancelled)
	})
	if err != nil {
		return nil, err
	}

	var overdueCount int64
	err = scopedDocuments(ctx, projectId).
		Where("d.due_date < ?", now).
		Where("d.status NOT IN ?", []models.DocumentStatus{models.DocumentStatusPaid, models.DocumentStatusCancelled}).
		Count(&overdueCount).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}

	var cashFlow []CashFlowDetail
	err = scopedDocuments(ctx, projectId).
		Select(`DATE_FORMAT(d.created_at, '%Y-%m') AS month,
			SUM(CASE WHEN d.doc_type IN ? THEN d.net_total ELSE 0 END) AS cash_in,
			SUM(CASE WHEN d.doc_type IN ? THEN d.net_total ELSE 0 END) AS cash_out`,
			models.IncomeReportTypes(), models.ExpenseReportTypes()).
		Where("d.status <> ?", models.DocumentStatusCancelled).
		Where("d.created_at >= ?", now.AddDate(0, -12, 0)).
		Group("DATE_FORMAT(d.created_at, '%Y-%m')").
		Order("month").
		Scan(&cashFlow).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if cashFlow == nil {
		cashFlow = []CashFlowDetail{}
	}

	var expenseByCategory []ExpenseByCategory
	err = scopedDocuments(ctx, projectId).
		Select("d.doc_type AS category, COALESCE(SUM(d.net_total), 0) AS total").
		Where("d.doc_type IN ?", []models.DocType{
			models.DocTypePurchaseOrder, models.DocTypeVendorPayment, models.DocTypeAdvance,
		}).
		Where("d.status <> ?", models.DocumentStatusCancelled).
		Group("d.doc_type").
		Scan(&expenseByCategory).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if expenseByCategory == nil {
		expenseByCategory = []ExpenseByCategory{}
	}

	var recentActivity []RecentActivityRow
	err = scopedDocuments(ctx, projectId).
		Select(`d.id, d.doc_type, d.doc_number, d.net_total, d.status, d.created_at,
			p.name AS project_name, u.name AS created_by_name`).
		Joins("LEFT JOIN projects p ON p.id = d.project_id").
		Joins("LEFT JOIN users u ON u.id = d.created_by").
		Order("d.created_at DESC").
		Limit(10).
		Scan(&recentActivity).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if recentActivity == nil {
		recentActivity = []RecentActivityRow{}
	}

	return &DashboardSummary{
		OutstandingReceivables: receivables,
		OutstandingPayables:    payables,
		MonthlyIncome:          monthlyIncome,
		MonthlyExpense:         monthlyExpense,
		MonthlyProfit:          monthlyIncome.Sub(monthlyExpense),
		VatPayable:             vatSales.Sub(vatPurchase),
		WhtPayable:             whtPayable,
		OverdueCount:           int(overdueCount),
		CashFlow:               cashFlow,
		ExpenseByCategory:      expenseByCategory,
		RecentActivity:         recentActivity,
	}, nil
}
