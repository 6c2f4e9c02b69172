// migrate runs schema migrations as a standalone job, for deployments that
// start the API server with SKIP_MIGRATIONS=true.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/migrate
package main

import (
	"fmt"
	"os"

	"github.com/ncon2559/construction_backend/config"
	"github.com/ncon2559/construction_backend/models"
)

func main() {
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	models.MigrateTable()
	fmt.Println("Migrations completed")
}
