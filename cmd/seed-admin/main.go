// seed-admin creates or updates the bootstrap admin user.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-admin
//
// Override the defaults with ADMIN_EMAIL / ADMIN_PASSWORD / ADMIN_NAME.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ncon2559/construction_backend/config"
	"github.com/ncon2559/construction_backend/models"
	"github.com/ncon2559/construction_backend/utils"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail    = "admin@ncon2559.com"
	defaultAdminPassword = "123456"
	defaultAdminName     = "Admin User"
)

func envOr(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	email := envOr("ADMIN_EMAIL", defaultAdminEmail)
	password := envOr("ADMIN_PASSWORD", defaultAdminPassword)
	name := envOr("ADMIN_NAME", defaultAdminName)

	hashed, err := utils.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to hash password: %v\n", err)
		os.Exit(1)
	}

	var existing models.User
	err = db.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			fmt.Fprintf(os.Stderr, "failed to lookup user: %v\n", err)
			os.Exit(1)
		}
		u := models.User{
			Name:         name,
			Email:        email,
			PasswordHash: string(hashed),
			Role:         models.UserRoleAdmin,
		}
		if err := db.WithContext(ctx).Create(&u).Error; err != nil {
			fmt.Fprintf(os.Stderr, "failed to create admin user: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Created admin user: email=%q\n", email)
		return
	}

	if err := db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Updates(map[string]any{
		"password_hash": string(hashed),
		"name":          name,
		"role":          models.UserRoleAdmin,
	}).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to update admin user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Updated admin user: email=%q\n", email)
}
