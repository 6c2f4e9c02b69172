package models

import (
	"log"

	"github.com/ncon2559/construction_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
		&Project{}, &ProjectUser{},
		&Document{}, &LineItem{}, &DocSequence{},
		&Employee{}, &EmployeeProject{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
