package models

import (
	"context"
	"time"

	"github.com/ncon2559/construction_backend/config"
	"github.com/ncon2559/construction_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "PLANNING"
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusOnHold    ProjectStatus = "ON_HOLD"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
	ProjectStatusCancelled ProjectStatus = "CANCELLED"
)

type Project struct {
	ID            int             `gorm:"primary_key" json:"id"`
	ProjectCode   string          `gorm:"size:50;not null;uniqueIndex" json:"project_code"`
	Name          string          `gorm:"size:255;not null" json:"name"`
	Client        string          `gorm:"size:255" json:"client"`
	Location      string          `gorm:"size:255" json:"location"`
	StartDate     *time.Time      `gorm:"type:date" json:"start_date"`
	EndDate       *time.Time      `gorm:"type:date" json:"end_date"`
	Status        ProjectStatus   `gorm:"type:enum('PLANNING','ACTIVE','ON_HOLD','COMPLETED','CANCELLED');not null;default:'PLANNING'" json:"status"`
	ContractValue decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"contract_value"`
	VatRate       decimal.Decimal `gorm:"type:decimal(6,4);not null;default:0.07" json:"vat_rate"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// ProjectUser links a user to a project for access scoping. Admins bypass
// this table entirely.
type ProjectUser struct {
	ID        int `gorm:"primary_key" json:"id"`
	UserId    int `gorm:"not null;uniqueIndex:idx_project_users_user_project" json:"user_id"`
	ProjectId int `gorm:"not null;uniqueIndex:idx_project_users_user_project" json:"project_id"`
}

type NewProject struct {
	ProjectCode   string           `json:"project_code" binding:"required"`
	Name          string           `json:"name" binding:"required"`
	Client        string           `json:"client"`
	Location      string           `json:"location"`
	StartDate     *time.Time       `json:"start_date"`
	EndDate       *time.Time       `json:"end_date"`
	Status        ProjectStatus    `json:"status"`
	ContractValue *decimal.Decimal `json:"contract_value"`
	VatRate       *decimal.Decimal `json:"vat_rate"`
}

type UpdateProjectInput struct {
	Name          string           `json:"name" binding:"required"`
	Client        string           `json:"client"`
	Location      string           `json:"location"`
	StartDate     *time.Time       `json:"start_date"`
	EndDate       *time.Time       `json:"end_date"`
	Status        ProjectStatus    `json:"status" binding:"required"`
	ContractValue *decimal.Decimal `json:"contract_value"`
	VatRate       *decimal.Decimal `json:"vat_rate"`
}

// ProjectListRow is a project plus its document rollups. Income counts only
// realized income types; quotations stay out of the revenue column.
type ProjectListRow struct {
	Project
	DocCount     int             `json:"doc_count"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
}

func projectRollupQuery(ctx context.Context) *gorm.DB {
	db := config.GetDB()
	return db.WithContext(ctx).
		Table("projects p").
		Select(`p.*,
			(SELECT COUNT(*) FROM documents d WHERE d.project_id = p.id) AS doc_count,
			(SELECT COALESCE(SUM(d.net_total), 0) FROM documents d WHERE d.project_id = p.id AND d.doc_type IN ?) AS total_income,
			(SELECT COALESCE(SUM(d.net_total), 0) FROM documents d WHERE d.project_id = p.id AND d.doc_type IN ?) AS total_expense`,
			IncomeReportTypes(), ExpenseReportTypes())
}

// ListProjects returns projects with rollups, restricted to assigned
// projects for non-admin callers.
func ListProjects(ctx context.Context) ([]ProjectListRow, error) {
	query := projectRollupQuery(ctx)

	role, _ := utils.GetUserRoleFromContext(ctx)
	if role != string(UserRoleAdmin) {
		userId, _ := utils.GetUserIdFromContext(ctx)
		query = query.
			Joins("JOIN project_users pu ON pu.project_id = p.id").
			Where("pu.user_id = ?", userId)
	}

	var rows []ProjectListRow
	if err := query.Order("p.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if rows == nil {
		rows = []ProjectListRow{}
	}
	return rows, nil
}

type ProjectUserRow struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

type RecentDocumentRow struct {
	ID        int             `json:"id"`
	DocType   DocType         `json:"doc_type"`
	DocNumber string          `json:"doc_number"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	NetTotal  decimal.Decimal `json:"net_total"`
	Status    DocumentStatus  `json:"status"`
	DueDate   *time.Time      `json:"due_date"`
	CreatedAt time.Time       `json:"created_at"`
}

type ProjectDetail struct {
	ProjectListRow
	Users           []ProjectUserRow    `json:"users"`
	RecentDocuments []RecentDocumentRow `json:"recent_documents"`
}

func GetProject(ctx context.Context, projectId int) (*ProjectDetail, error) {
	if err := CheckProjectAccess(ctx, projectId); err != nil {
		return nil, err
	}

	var row ProjectListRow
	result := projectRollupQuery(ctx).Where("p.id = ?", projectId).Scan(&row)
	if result.Error != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if result.RowsAffected == 0 {
		return nil, utils.ErrorRecordNotFound
	}

	db := config.GetDB()

	var users []ProjectUserRow
	err := db.WithContext(ctx).
		Table("users u").
		Select("u.id, u.name, u.email, u.role").
		Joins("JOIN project_users pu ON pu.user_id = u.id").
		Where("pu.project_id = ?", projectId).
		Scan(&users).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if users == nil {
		users = []ProjectUserRow{}
	}

	var docs []RecentDocumentRow
	err = db.WithContext(ctx).
		Table("documents").
		Select("id, doc_type, doc_number, subtotal, net_total, status, due_date, created_at").
		Where("project_id = ?", projectId).
		Order("created_at DESC").
		Limit(10).
		Scan(&docs).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if docs == nil {
		docs = []RecentDocumentRow{}
	}

	return &ProjectDetail{ProjectListRow: row, Users: users, RecentDocuments: docs}, nil
}

func CreateProject(ctx context.Context, input *NewProject) (*Project, error) {
	if err := utils.ValidateUnique[Project](ctx, "project_code", input.ProjectCode, 0); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = ProjectStatusPlanning
	}

	project := Project{
		ProjectCode:   input.ProjectCode,
		Name:          input.Name,
		Client:        input.Client,
		Location:      input.Location,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		Status:        status,
		ContractValue: utils.DereferencePtr(input.ContractValue, decimal.Zero),
		VatRate:       utils.DereferencePtr(input.VatRate, DefaultVatRate),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	return &project, nil
}

func UpdateProject(ctx context.Context, projectId int, input *UpdateProjectInput) (*Project, error) {
	if err := CheckProjectAccess(ctx, projectId); err != nil {
		return nil, err
	}
	project, err := utils.FetchModel[Project](ctx, projectId)
	if err != nil {
		return nil, err
	}

	project.Name = input.Name
	project.Client = input.Client
	project.Location = input.Location
	project.StartDate = input.StartDate
	project.EndDate = input.EndDate
	project.Status = input.Status
	if input.ContractValue != nil {
		project.ContractValue = *input.ContractValue
	}
	if input.VatRate != nil {
		project.VatRate = *input.VatRate
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(project).Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	return project, nil
}

// DeleteProject removes a project with its documents and assignments in one
// transaction. Sequence counters are untouched so deleted document numbers
// are never reissued.
func DeleteProject(ctx context.Context, projectId int) error {
	project, err := utils.FetchModel[Project](ctx, projectId)
	if err != nil {
		return err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return utils.ErrorStorageUnavailable
	}
	err = tx.Where("document_id IN (?)",
		tx.Session(&gorm.Session{NewDB: true}).Model(&Document{}).Select("id").Where("project_id = ?", projectId),
	).Delete(&LineItem{}).Error
	if err != nil {
		tx.Rollback()
		return utils.ErrorStorageUnavailable
	}
	if err := tx.Where("project_id = ?", projectId).Delete(&Document{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorStorageUnavailable
	}
	if err := tx.Where("project_id = ?", projectId).Delete(&ProjectUser{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorStorageUnavailable
	}
	if err := tx.Where("project_id = ?", projectId).Delete(&EmployeeProject{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorStorageUnavailable
	}
	if err := tx.Delete(project).Error; err != nil {
		tx.Rollback()
		return utils.ErrorStorageUnavailable
	}
	if err := tx.Commit().Error; err != nil {
		return utils.ErrorStorageUnavailable
	}
	return nil
}

// AssignUserToProject grants a user access to a project. Idempotent.
func AssignUserToProject(ctx context.Context, projectId int, userId int) error {
	if err := utils.ValidateResourceId[Project](ctx, projectId); err != nil {
		return err
	}
	if err := utils.ValidateResourceId[User](ctx, userId); err != nil {
		return err
	}

	db := config.GetDB()
	count, err := utils.ResourceCountWhere[ProjectUser](ctx, "user_id = ? AND project_id = ?", userId, projectId)
	if err != nil {
		return utils.ErrorStorageUnavailable
	}
	if count > 0 {
		return nil
	}
	link := ProjectUser{UserId: userId, ProjectId: projectId}
	if err := db.WithContext(ctx).Create(&link).Error; err != nil {
		return utils.ErrorStorageUnavailable
	}
	return nil
}

// RemoveUserFromProject revokes a user's project access.
func RemoveUserFromProject(ctx context.Context, projectId int, userId int) error {
	db := config.GetDB()
	err := db.WithContext(ctx).
		Where("user_id = ? AND project_id = ?", userId, projectId).
		Delete(&ProjectUser{}).Error
	if err != nil {
		return utils.ErrorStorageUnavailable
	}
	return nil
}
