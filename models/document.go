package models

import (
	"context"
	"errors"
	"time"

	"github.com/ncon2559/construction_backend/config"
	"github.com/ncon2559/construction_backend/utils"
	"github.com/shopspring/decimal"
)

type Document struct {
	ID          int             `gorm:"primary_key" json:"id"`
	DocType     DocType         `gorm:"type:enum('QUOTATION','INVOICE','TAX_INVOICE','RECEIPT','PO','VENDOR_PAYMENT','ADVANCE','CLEARANCE');not null;index" json:"doc_type"`
	DocNumber   string          `gorm:"size:50;not null;uniqueIndex" json:"doc_number"`
	SequenceNo  int64           `gorm:"not null" json:"sequence_no"`
	ProjectId   int             `gorm:"index;not null" json:"project_id"`
	ReferenceId int             `gorm:"index;default:null" json:"reference_id"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"subtotal"`
	VatRate     decimal.Decimal `gorm:"type:decimal(6,4);default:0" json:"vat_rate"`
	VatAmount   decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"vat_amount"`
	WhtRate     decimal.Decimal `gorm:"type:decimal(6,4);default:0" json:"wht_rate"`
	WhtAmount   decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"wht_amount"`
	NetTotal    decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"net_total"`
	Status      DocumentStatus  `gorm:"type:enum('DRAFT','SENT','APPROVED','PAID','CANCELLED');not null;default:'DRAFT'" json:"status"`
	DueDate     *time.Time      `gorm:"default:null" json:"due_date"`
	Notes       string          `gorm:"type:text;default:null" json:"notes"`
	VendorName  string          `gorm:"size:255;default:null" json:"vendor_name"`
	VendorTaxId string          `gorm:"size:50;default:null" json:"vendor_tax_id"`
	CreatedBy   int             `gorm:"index;default:null" json:"created_by"`
	LineItems   []LineItem      `gorm:"foreignKey:DocumentId" json:"line_items"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type LineItem struct {
	ID          int             `gorm:"primary_key" json:"id"`
	DocumentId  int             `gorm:"index;not null" json:"document_id"`
	Description string          `gorm:"size:255;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	Unit        string          `gorm:"size:50;default:'unit'" json:"unit"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(20,2);default:0" json:"line_total"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewDocument struct {
	DocType     DocType          `json:"doc_type" binding:"required,doctype"`
	ProjectId   int              `json:"project_id" binding:"required"`
	ReferenceId int              `json:"reference_id"`
	VatRate     *decimal.Decimal `json:"vat_rate"`
	WhtRate     *decimal.Decimal `json:"wht_rate"`
	DueDate     *time.Time       `json:"due_date"`
	Notes       string           `json:"notes"`
	VendorName  string           `json:"vendor_name"`
	VendorTaxId string           `json:"vendor_tax_id"`
	LineItems   []NewLineItem    `json:"line_items"`
}

type UpdateDocumentInput struct {
	VatRate     *decimal.Decimal `json:"vat_rate"`
	WhtRate     *decimal.Decimal `json:"wht_rate"`
	Status      *DocumentStatus  `json:"status"`
	DueDate     *time.Time       `json:"due_date"`
	Notes       *string          `json:"notes"`
	VendorName  *string          `json:"vendor_name"`
	VendorTaxId *string          `json:"vendor_tax_id"`
	LineItems   *[]NewLineItem   `json:"line_items"`
}

// DefaultVatRate is the Thai VAT rate applied when a create request omits one.
var DefaultVatRate = decimal.NewFromFloat(0.07)

// CheckProjectAccess returns ErrorNoProjectAccess unless the caller is an
// ADMIN or is assigned to the project.
func CheckProjectAccess(ctx context.Context, projectId int) error {
	role, _ := utils.GetUserRoleFromContext(ctx)
	if role == string(UserRoleAdmin) {
		return nil
	}
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return utils.ErrorNoProjectAccess
	}
	count, err := utils.ResourceCountWhere[ProjectUser](ctx, "user_id = ? AND project_id = ?", userId, projectId)
	if err != nil {
		return err
	}
	if count <= 0 {
		return utils.ErrorNoProjectAccess
	}
	return nil
}

func newLineItems(documentId int, items []NewLineItem, lineTotals []decimal.Decimal) []LineItem {
	rows := make([]LineItem, 0, len(items))
	for i, item := range items {
		unit := item.Unit
		if unit == "" {
			unit = "unit"
		}
		rows = append(rows, LineItem{
			DocumentId:  documentId,
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        unit,
			UnitPrice:   item.UnitPrice,
			LineTotal:   lineTotals[i],
		})
	}
	return rows
}

// CreateDocument allocates the document number, computes the financial fields
// and persists the document with its line items in one transaction. Any
// failure rolls everything back, including the counter increment.
func CreateDocument(ctx context.Context, input *NewDocument) (*Document, error) {

	if err := utils.ValidateResourceId[Project](ctx, input.ProjectId); err != nil {
		return nil, err
	}
	if err := CheckProjectAccess(ctx, input.ProjectId); err != nil {
		return nil, err
	}

	vatRate := utils.DereferencePtr(input.VatRate, DefaultVatRate)
	whtRate := utils.DereferencePtr(input.WhtRate, decimal.Zero)

	fin := CalculateFinancials(input.LineItems, vatRate, whtRate, input.DocType)

	userId, _ := utils.GetUserIdFromContext(ctx)

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, utils.ErrorStorageUnavailable
	}

	// Number allocation must share the document's transaction so a rollback
	// releases the counter increment too (no burned numbers).
	seqNo, docNumber, err := NextDocumentNumber(tx, input.DocType, time.Now().Year())
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	document := Document{
		DocType:     input.DocType,
		DocNumber:   docNumber,
		SequenceNo:  seqNo,
		ProjectId:   input.ProjectId,
		ReferenceId: input.ReferenceId,
		Subtotal:    fin.Subtotal,
		VatRate:     vatRate,
		VatAmount:   fin.VatAmount,
		WhtRate:     whtRate,
		WhtAmount:   fin.WhtAmount,
		NetTotal:    fin.NetTotal,
		Status:      DocumentStatusDraft,
		DueDate:     input.DueDate,
		Notes:       input.Notes,
		VendorName:  input.VendorName,
		VendorTaxId: input.VendorTaxId,
		CreatedBy:   userId,
		LineItems:   newLineItems(0, input.LineItems, fin.LineTotals),
	}

	if err := tx.Create(&document).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorStorageUnavailable
	}

	if err := tx.Commit().Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}

	return &document, nil
}

// UpdateDocument recomputes the financial fields from the replacement line
// item set and/or changed rates. The document number is immutable and never
// reissued. Line items, when supplied, replace the prior set atomically with
// the updated totals; a failure rolls the whole update back so stored totals
// always reconcile with stored line items.
func UpdateDocument(ctx context.Context, documentId int, input *UpdateDocumentInput) (*Document, error) {

	existing, err := utils.FetchModel[Document](ctx, documentId, "LineItems")
	if err != nil {
		return nil, err
	}
	if err := CheckProjectAccess(ctx, existing.ProjectId); err != nil {
		return nil, err
	}

	vatRate := utils.DereferencePtr(input.VatRate, existing.VatRate)
	whtRate := utils.DereferencePtr(input.WhtRate, existing.WhtRate)

	// Without a replacement set, recompute over the stored lines so a pure
	// rate change still reconciles.
	items := make([]NewLineItem, 0)
	if input.LineItems != nil {
		items = *input.LineItems
	} else {
		for _, li := range existing.LineItems {
			items = append(items, NewLineItem{
				Description: li.Description,
				Quantity:    li.Quantity,
				Unit:        li.Unit,
				UnitPrice:   li.UnitPrice,
			})
		}
	}

	fin := CalculateFinancials(items, vatRate, whtRate, existing.DocType)

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, utils.ErrorStorageUnavailable
	}

	if input.LineItems != nil {
		if err := tx.Where("document_id = ?", documentId).Delete(&LineItem{}).Error; err != nil {
			tx.Rollback()
			return nil, utils.ErrorStorageUnavailable
		}
		rows := newLineItems(documentId, items, fin.LineTotals)
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				tx.Rollback()
				return nil, utils.ErrorStorageUnavailable
			}
		}
		existing.LineItems = rows
	}

	existing.Subtotal = fin.Subtotal
	existing.VatRate = vatRate
	existing.VatAmount = fin.VatAmount
	existing.WhtRate = whtRate
	existing.WhtAmount = fin.WhtAmount
	existing.NetTotal = fin.NetTotal
	existing.Status = utils.DereferencePtr(input.Status, existing.Status)
	if input.DueDate != nil {
		existing.DueDate = input.DueDate
	}
	existing.Notes = utils.DereferencePtr(input.Notes, existing.Notes)
	existing.VendorName = utils.DereferencePtr(input.VendorName, existing.VendorName)
	existing.VendorTaxId = utils.DereferencePtr(input.VendorTaxId, existing.VendorTaxId)

	if err := tx.Omit("LineItems").Save(existing).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorStorageUnavailable
	}

	if err := tx.Commit().Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}

	return existing, nil
}

func DeleteDocument(ctx context.Context, documentId int) error {
	existing, err := utils.FetchModel[Document](ctx, documentId)
	if err != nil {
		return err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return utils.ErrorStorageUnavailable
	}
	if err := tx.Where("document_id = ?", documentId).Delete(&LineItem{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorStorageUnavailable
	}
	if err := tx.Delete(existing).Error; err != nil {
		tx.Rollback()
		return utils.ErrorStorageUnavailable
	}
	if err := tx.Commit().Error; err != nil {
		return utils.ErrorStorageUnavailable
	}
	return nil
}

// GetDocument fetches one document with its line items plus the project and
// creator names, enforcing project access for non-admin callers.
func GetDocument(ctx context.Context, documentId int) (*DocumentListRow, error) {
	db := config.GetDB()

	var row DocumentListRow
	result := db.WithContext(ctx).Model(&Document{}).
		Select("documents.*, projects.name AS project_name, projects.project_code AS project_code, users.name AS created_by_name").
		Joins("LEFT JOIN projects ON projects.id = documents.project_id").
		Joins("LEFT JOIN users ON users.id = documents.created_by").
		Where("documents.id = ?", documentId).
		Scan(&row)
	if result.Error != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if result.RowsAffected == 0 {
		return nil, utils.ErrorRecordNotFound
	}
	if err := CheckProjectAccess(ctx, row.ProjectId); err != nil {
		return nil, err
	}

	err := db.WithContext(ctx).
		Where("document_id = ?", documentId).
		Order("id").
		Find(&row.LineItems).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	return &row, nil
}

type DocumentFilter struct {
	DocType   DocType
	ProjectId int
	Status    DocumentStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	Limit     int
}

type DocumentListRow struct {
	Document
	ProjectName   string `json:"project_name"`
	ProjectCode   string `json:"project_code"`
	CreatedByName string `json:"created_by_name"`
}

type Pagination struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Pages int64 `json:"pages"`
}

// ListDocuments returns a filtered, paginated page of documents. Non-admin
// callers only see documents of projects they are assigned to.
func ListDocuments(ctx context.Context, filter DocumentFilter) ([]DocumentListRow, Pagination, error) {

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = config.SearchLimit
	}

	db := config.GetDB()
	query := db.WithContext(ctx).Model(&Document{})

	if filter.DocType != "" {
		query = query.Where("documents.doc_type = ?", filter.DocType)
	}
	if filter.ProjectId > 0 {
		query = query.Where("documents.project_id = ?", filter.ProjectId)
	}
	if filter.Status != "" {
		query = query.Where("documents.status = ?", filter.Status)
	}
	if filter.DateFrom != nil {
		query = query.Where("documents.created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("documents.created_at <= ?", *filter.DateTo)
	}

	role, _ := utils.GetUserRoleFromContext(ctx)
	if role != string(UserRoleAdmin) {
		userId, ok := utils.GetUserIdFromContext(ctx)
		if !ok {
			return nil, Pagination{}, errors.New("user id is required")
		}
		query = query.Where("documents.project_id IN (?)",
			db.Model(&ProjectUser{}).Select("project_id").Where("user_id = ?", userId))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, Pagination{}, utils.ErrorStorageUnavailable
	}

	var rows []DocumentListRow
	err := query.
		Select("documents.*, projects.name AS project_name, projects.project_code AS project_code, users.name AS created_by_name").
		Joins("LEFT JOIN projects ON projects.id = documents.project_id").
		Joins("LEFT JOIN users ON users.id = documents.created_by").
		Order("documents.created_at DESC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Scan(&rows).Error
	if err != nil {
		return nil, Pagination{}, utils.ErrorStorageUnavailable
	}

	pages := (total + int64(filter.Limit) - 1) / int64(filter.Limit)
	return rows, Pagination{Total: total, Page: filter.Page, Limit: filter.Limit, Pages: pages}, nil
}
