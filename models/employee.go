package models

import (
	"context"
	"time"

	"github.com/ncon2559/construction_backend/config"
	"github.com/ncon2559/construction_backend/utils"
	"github.com/shopspring/decimal"
)

type EmployeeStatus string

const (
	EmployeeStatusActive   EmployeeStatus = "ACTIVE"
	EmployeeStatusInactive EmployeeStatus = "INACTIVE"
	EmployeeStatusResigned EmployeeStatus = "RESIGNED"
)

type Employee struct {
	ID            int             `gorm:"primary_key" json:"id"`
	EmployeeCode  string          `gorm:"size:50;not null;uniqueIndex" json:"employee_code"`
	FirstName     string          `gorm:"size:255;not null" json:"first_name"`
	LastName      string          `gorm:"size:255;not null" json:"last_name"`
	Nickname      string          `gorm:"size:100" json:"nickname"`
	Position      string          `gorm:"size:255" json:"position"`
	Department    string          `gorm:"size:255" json:"department"`
	Phone         string          `gorm:"size:50" json:"phone"`
	Email         string          `gorm:"size:255" json:"email"`
	IdCard        string          `gorm:"size:50" json:"id_card"`
	BankAccount   string          `gorm:"size:50" json:"bank_account"`
	BankName      string          `gorm:"size:255" json:"bank_name"`
	DailyWage     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"daily_wage"`
	MonthlySalary decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"monthly_salary"`
	StartDate     *time.Time      `gorm:"type:date" json:"start_date"`
	EndDate       *time.Time      `gorm:"type:date" json:"end_date"`
	Status        EmployeeStatus  `gorm:"type:enum('ACTIVE','INACTIVE','RESIGNED');not null;default:'ACTIVE'" json:"status"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedBy     int             `gorm:"default:null" json:"created_by"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type EmployeeProject struct {
	ID         int    `gorm:"primary_key" json:"id"`
	EmployeeId int    `gorm:"not null;uniqueIndex:idx_employee_projects_emp_project" json:"employee_id"`
	ProjectId  int    `gorm:"not null;uniqueIndex:idx_employee_projects_emp_project" json:"project_id"`
	Role       string `gorm:"size:255" json:"role"`
}

type EmployeeInput struct {
	EmployeeCode  string           `json:"employee_code" binding:"required"`
	FirstName     string           `json:"first_name" binding:"required"`
	LastName      string           `json:"last_name" binding:"required"`
	Nickname      string           `json:"nickname"`
	Position      string           `json:"position"`
	Department    string           `json:"department"`
	Phone         string           `json:"phone"`
	Email         string           `json:"email" binding:"omitempty,email"`
	IdCard        string           `json:"id_card"`
	BankAccount   string           `json:"bank_account"`
	BankName      string           `json:"bank_name"`
	DailyWage     *decimal.Decimal `json:"daily_wage"`
	MonthlySalary *decimal.Decimal `json:"monthly_salary"`
	StartDate     *time.Time       `json:"start_date"`
	EndDate       *time.Time       `json:"end_date"`
	Status        EmployeeStatus   `json:"status"`
	Notes         string           `json:"notes"`
	ProjectIds    *[]int           `json:"project_ids"`
}

type EmployeeProjectRef struct {
	ProjectId   int    `json:"project_id"`
	ProjectName string `json:"project_name"`
	ProjectCode string `json:"project_code"`
	Role        string `json:"role"`
}

type EmployeeDetail struct {
	Employee
	Projects []EmployeeProjectRef `json:"projects"`
}

type EmployeeFilter struct {
	Status    string `form:"status"`
	Search    string `form:"search"`
	ProjectId int    `form:"project_id"`
}

func employeeProjects(ctx context.Context, employeeId int) ([]EmployeeProjectRef, error) {
	db := config.GetDB()
	var refs []EmployeeProjectRef
	err := db.WithContext(ctx).
		Table("employee_projects ep").
		Select("ep.project_id, p.name AS project_name, p.project_code, ep.role").
		Joins("JOIN projects p ON p.id = ep.project_id").
		Where("ep.employee_id = ?", employeeId).
		Scan(&refs).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if refs == nil {
		refs = []EmployeeProjectRef{}
	}
	return refs, nil
}

func ListEmployees(ctx context.Context, filter *EmployeeFilter) ([]EmployeeDetail, error) {
	db := config.GetDB()

	query := db.WithContext(ctx).Model(&Employee{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(
			"first_name LIKE ? OR last_name LIKE ? OR employee_code LIKE ? OR nickname LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if filter.ProjectId != 0 {
		query = query.Where(
			"id IN (SELECT employee_id FROM employee_projects WHERE project_id = ?)",
			filter.ProjectId,
		)
	}

	var employees []Employee
	if err := query.Order("created_at DESC").Find(&employees).Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}

	details := make([]EmployeeDetail, 0, len(employees))
	for _, employee := range employees {
		refs, err := employeeProjects(ctx, employee.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, EmployeeDetail{Employee: employee, Projects: refs})
	}
	return details, nil
}

func GetEmployee(ctx context.Context, employeeId int) (*EmployeeDetail, error) {
	employee, err := utils.FetchModel[Employee](ctx, employeeId)
	if err != nil {
		return nil, err
	}
	refs, err := employeeProjects(ctx, employeeId)
	if err != nil {
		return nil, err
	}
	return &EmployeeDetail{Employee: *employee, Projects: refs}, nil
}

func applyEmployeeInput(employee *Employee, input *EmployeeInput) error {
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, utils.CountryCode); err != nil {
			return utils.ErrorInvalidInput
		}
	}

	employee.EmployeeCode = input.EmployeeCode
	employee.FirstName = input.FirstName
	employee.LastName = input.LastName
	employee.Nickname = input.Nickname
	employee.Position = input.Position
	employee.Department = input.Department
	employee.Phone = input.Phone
	employee.Email = input.Email
	employee.IdCard = input.IdCard
	employee.BankAccount = input.BankAccount
	employee.BankName = input.BankName
	employee.DailyWage = utils.DereferencePtr(input.DailyWage, decimal.Zero)
	employee.MonthlySalary = utils.DereferencePtr(input.MonthlySalary, decimal.Zero)
	employee.StartDate = input.StartDate
	employee.EndDate = input.EndDate
	employee.Status = input.Status
	if employee.Status == "" {
		employee.Status = EmployeeStatusActive
	}
	employee.Notes = input.Notes
	return nil
}

func CreateEmployee(ctx context.Context, input *EmployeeInput) (*EmployeeDetail, error) {
	if err := utils.ValidateUnique[Employee](ctx, "employee_code", input.EmployeeCode, 0); err != nil {
		return nil, err
	}

	var employee Employee
	if err := applyEmployeeInput(&employee, input); err != nil {
		return nil, err
	}
	userId, _ := utils.GetUserIdFromContext(ctx)
	employee.CreatedBy = userId

	projectIds := utils.UniqueSlice(utils.DereferencePtr(input.ProjectIds))
	if err := utils.ValidateResourcesId[Project](ctx, projectIds); err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if err := tx.Create(&employee).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorStorageUnavailable
	}
	for _, projectId := range projectIds {
		link := EmployeeProject{EmployeeId: employee.ID, ProjectId: projectId}
		if err := tx.Create(&link).Error; err != nil {
			tx.Rollback()
			return nil, utils.ErrorStorageUnavailable
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}

	return GetEmployee(ctx, employee.ID)
}

// UpdateEmployee replaces the employee record and, when project_ids is
// present, its full project assignment set.
func UpdateEmployee(ctx context.Context, employeeId int, input *EmployeeInput) (*EmployeeDetail, error) {
	employee, err := utils.FetchModel[Employee](ctx, employeeId)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[Employee](ctx, "employee_code", input.EmployeeCode, employeeId); err != nil {
		return nil, err
	}
	if err := applyEmployeeInput(employee, input); err != nil {
		return nil, err
	}

	var projectIds []int
	if input.ProjectIds != nil {
		projectIds = utils.UniqueSlice(*input.ProjectIds)
		if err := utils.ValidateResourcesId[Project](ctx, projectIds); err != nil {
			return nil, err
		}
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if err := tx.Save(employee).Error; err != nil {
		tx.Rollback()
		return nil, utils.ErrorStorageUnavailable
	}
	if input.ProjectIds != nil {
		if err := tx.Where("employee_id = ?", employeeId).Delete(&EmployeeProject{}).Error; err != nil {
			tx.Rollback()
			return nil, utils.ErrorStorageUnavailable
		}
		for _, projectId := range projectIds {
			link := EmployeeProject{EmployeeId: employeeId, ProjectId: projectId}
			if err := tx.Create(&link).Error; err != nil {
				tx.Rollback()
				return nil, utils.ErrorStorageUnavailable
			}
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}

	return GetEmployee(ctx, employeeId)
}

func DeleteEmployee(ctx context.Context, employeeId int) error {
	employee, err := utils.FetchModel[Employee](ctx, employeeId)
	if err != nil {
		return err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return utils.ErrorStorageUnavailable
	}
	if err := tx.Where("employee_id = ?", employeeId).Delete(&EmployeeProject{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorStorageUnavailable
	}
	if err := tx.Delete(employee).Error; err != nil {
		tx.Rollback()
		return utils.ErrorStorageUnavailable
	}
	if err := tx.Commit().Error; err != nil {
		return utils.ErrorStorageUnavailable
	}
	return nil
}

type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

type EmployeeStats struct {
	ActiveCount        int               `json:"active_count"`
	ByDepartment       []DepartmentCount `json:"by_department"`
	DailyWageTotal     decimal.Decimal   `json:"daily_wage_total"`
	MonthlySalaryTotal decimal.Decimal   `json:"monthly_salary_total"`
}

func GetEmployeeStats(ctx context.Context) (*EmployeeStats, error) {
	db := config.GetDB()

	activeCount, err := utils.ResourceCountWhere[Employee](ctx, "status = ?", EmployeeStatusActive)
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}

	var byDepartment []DepartmentCount
	err = db.WithContext(ctx).
		Model(&Employee{}).
		Select("department, COUNT(*) AS count").
		Where("status = ? AND department <> ''", EmployeeStatusActive).
		Group("department").
		Order("count DESC").
		Scan(&byDepartment).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if byDepartment == nil {
		byDepartment = []DepartmentCount{}
	}

	var totals struct {
		DailyTotal   decimal.Decimal
		MonthlyTotal decimal.Decimal
	}
	err = db.WithContext(ctx).
		Model(&Employee{}).
		Select("COALESCE(SUM(daily_wage), 0) AS daily_total, COALESCE(SUM(monthly_salary), 0) AS monthly_total").
		Where("status = ?", EmployeeStatusActive).
		Scan(&totals).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}

	return &EmployeeStats{
		ActiveCount:        int(activeCount),
		ByDepartment:       byDepartment,
		DailyWageTotal:     totals.DailyTotal,
		MonthlySalaryTotal: totals.MonthlyTotal,
	}, nil
}
