package models

import (
	"context"
	"errors"
	"time"

	"github.com/ncon2559/construction_backend/config"
	"github.com/ncon2559/construction_backend/utils"
)

type UserRole string

const (
	UserRoleAdmin  UserRole = "ADMIN"
	UserRoleEditor UserRole = "EDITOR"
	UserRoleViewer UserRole = "VIEWER"
)

type User struct {
	ID           int       `gorm:"primary_key" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         UserRole  `gorm:"type:enum('ADMIN','EDITOR','VIEWER');not null;default:'VIEWER'" json:"role"`
	RefreshToken string    `gorm:"size:512;default:null" json:"-"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required,min=6"`
	Role     UserRole `json:"role"`
}

type UpdateUserInput struct {
	Name     string   `json:"name" binding:"required"`
	Email    string   `json:"email" binding:"required,email"`
	Role     UserRole `json:"role" binding:"required"`
	Password string   `json:"password"`
}

type AuthPayload struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

var ErrorInvalidCredentials = errors.New("invalid credentials")
var ErrorEmailTaken = errors.New("email already registered")

func issueTokens(ctx context.Context, user *User) (*AuthPayload, error) {
	accessToken, err := utils.JwtGenerate(user.ID, string(user.Role), user.Name)
	if err != nil {
		return nil, err
	}
	refreshToken, err := utils.JwtGenerateRefresh(user.ID)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(user).Update("refresh_token", refreshToken).Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	user.RefreshToken = refreshToken

	return &AuthPayload{User: user, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func RegisterUser(ctx context.Context, input *NewUser) (*AuthPayload, error) {
	if err := utils.ValidateUnique[User](ctx, "email", input.Email, 0); err != nil {
		return nil, ErrorEmailTaken
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = UserRoleViewer
	}

	user := User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         role,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}

	return issueTokens(ctx, &user)
}

func LoginUser(ctx context.Context, email string, password string) (*AuthPayload, error) {
	db := config.GetDB()

	var user User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, ErrorInvalidCredentials
	}
	if err := utils.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, ErrorInvalidCredentials
	}

	return issueTokens(ctx, &user)
}

// RefreshUserToken rotates the token pair. The presented refresh token must
// match the one stored on the user row (logout invalidates it).
func RefreshUserToken(ctx context.Context, refreshToken string) (*AuthPayload, error) {
	token, err := utils.JwtValidateRefresh(refreshToken)
	if err != nil || !token.Valid {
		return nil, ErrorInvalidCredentials
	}
	claim, ok := token.Claims.(*utils.JwtRefreshClaim)
	if !ok {
		return nil, ErrorInvalidCredentials
	}

	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).First(&user, claim.ID).Error; err != nil {
		return nil, ErrorInvalidCredentials
	}
	if user.RefreshToken == "" || user.RefreshToken != refreshToken {
		return nil, ErrorInvalidCredentials
	}

	return issueTokens(ctx, &user)
}

func LogoutUser(ctx context.Context, userId int) error {
	db := config.GetDB()
	err := db.WithContext(ctx).Model(&User{}).Where("id = ?", userId).Update("refresh_token", nil).Error
	if err != nil {
		return utils.ErrorStorageUnavailable
	}
	return nil
}

type MeResponse struct {
	User
	Projects []ProjectRef `json:"projects"`
}

type ProjectRef struct {
	ID          int    `json:"id"`
	ProjectCode string `json:"project_code"`
	Name        string `json:"name"`
}

// GetMe returns the caller's profile with assigned projects.
func GetMe(ctx context.Context) (*MeResponse, error) {
	userId, ok := utils.GetUserIdFromContext(ctx)
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}

	user, err := utils.FetchModel[User](ctx, userId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var projects []ProjectRef
	err = db.WithContext(ctx).
		Table("projects").
		Select("projects.id, projects.project_code, projects.name").
		Joins("JOIN project_users ON project_users.project_id = projects.id").
		Where("project_users.user_id = ?", userId).
		Scan(&projects).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	if projects == nil {
		projects = []ProjectRef{}
	}

	return &MeResponse{User: *user, Projects: projects}, nil
}

type UserListRow struct {
	User
	ProjectNames string `json:"project_names"`
}

func ListUsers(ctx context.Context) ([]UserListRow, error) {
	db := config.GetDB()

	var rows []UserListRow
	err := db.WithContext(ctx).
		Table("users").
		Select("users.*, GROUP_CONCAT(DISTINCT projects.name) AS project_names").
		Joins("LEFT JOIN project_users ON project_users.user_id = users.id").
		Joins("LEFT JOIN projects ON projects.id = project_users.project_id").
		Group("users.id").
		Order("users.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	return rows, nil
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	if err := utils.ValidateUnique[User](ctx, "email", input.Email, 0); err != nil {
		return nil, ErrorEmailTaken
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = UserRoleViewer
	}

	user := User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         role,
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	return &user, nil
}

func UpdateUser(ctx context.Context, userId int, input *UpdateUserInput) (*User, error) {
	user, err := utils.FetchModel[User](ctx, userId)
	if err != nil {
		return nil, err
	}
	if err := utils.ValidateUnique[User](ctx, "email", input.Email, userId); err != nil {
		return nil, ErrorEmailTaken
	}

	user.Name = input.Name
	user.Email = input.Email
	user.Role = input.Role
	if input.Password != "" {
		hash, err := utils.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, utils.ErrorStorageUnavailable
	}
	return user, nil
}

func DeleteUser(ctx context.Context, userId int) error {
	user, err := utils.FetchModel[User](ctx, userId)
	if err != nil {
		return err
	}

	db := config.GetDB()
	tx := db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return utils.ErrorStorageUnavailable
	}
	if err := tx.Where("user_id = ?", userId).Delete(&ProjectUser{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorStorageUnavailable
	}
	if err := tx.Delete(user).Error; err != nil {
		tx.Rollback()
		return utils.ErrorStorageUnavailable
	}
	if err := tx.Commit().Error; err != nil {
		return utils.ErrorStorageUnavailable
	}
	return nil
}
