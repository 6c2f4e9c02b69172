package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ncon2559/construction_backend/config"
	"github.com/ncon2559/construction_backend/middlewares"
	"github.com/ncon2559/construction_backend/models"
	"github.com/sirupsen/logrus"
)

const defaultPort = "8080"

// registerValidators wires custom binding rules into gin's validator.
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("doctype", func(fl validator.FieldLevel) bool {
			return models.DocType(fl.Field().String()).IsKnown()
		})
	}
}

func registerRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Format(time.RFC3339)})
	})

	auth := api.Group("/auth")
	auth.POST("/register", registerHandler())
	auth.POST("/login", loginHandler())
	auth.POST("/refresh", refreshHandler())
	auth.POST("/logout", middlewares.AuthMiddleware(), logoutHandler())
	auth.GET("/me", middlewares.AuthMiddleware(), meHandler())

	adminOnly := middlewares.RequireRoles(string(models.UserRoleAdmin))
	editors := middlewares.RequireRoles(string(models.UserRoleAdmin), string(models.UserRoleEditor))

	users := api.Group("/users", middlewares.AuthMiddleware(), adminOnly)
	users.GET("", listUsersHandler())
	users.POST("", createUserHandler())
	users.PUT("/:id", updateUserHandler())
	users.DELETE("/:id", deleteUserHandler())

	projects := api.Group("/projects", middlewares.AuthMiddleware())
	projects.GET("", listProjectsHandler())
	projects.GET("/:id", getProjectHandler())
	projects.POST("", adminOnly, createProjectHandler())
	projects.PUT("/:id", editors, updateProjectHandler())
	projects.DELETE("/:id", adminOnly, deleteProjectHandler())
	projects.POST("/:id/users", adminOnly, assignProjectUserHandler())
	projects.DELETE("/:id/users/:userId", adminOnly, removeProjectUserHandler())

	documents := api.Group("/documents", middlewares.AuthMiddleware())
	documents.GET("", listDocumentsHandler())
	documents.GET("/:id", getDocumentHandler())
	documents.POST("", editors, createDocumentHandler())
	documents.PUT("/:id", editors, updateDocumentHandler())
	documents.DELETE("/:id", adminOnly, deleteDocumentHandler())

	employees := api.Group("/employees", middlewares.AuthMiddleware())
	employees.GET("", listEmployeesHandler())
	employees.GET("/stats/summary", employeeStatsHandler())
	employees.GET("/:id", getEmployeeHandler())
	employees.POST("", editors, createEmployeeHandler())
	employees.PUT("/:id", editors, updateEmployeeHandler())
	employees.DELETE("/:id", adminOnly, deleteEmployeeHandler())

	reportRoutes := api.Group("/reports", middlewares.AuthMiddleware())
	reportRoutes.GET("/summary", dashboardSummaryHandler())
	reportRoutes.GET("/vat-sales", vatSalesHandler())
	reportRoutes.GET("/vat-purchase", vatPurchaseHandler())
	reportRoutes.GET("/wht", whtReportHandler())
	reportRoutes.GET("/export", exportReportHandler())
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func main() {
	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	registerValidators()

	// Start the HTTP server ASAP so the platform considers the revision
	// healthy. Until the DB is ready, app endpoints return 503.
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(func(c *gin.Context) {
		// Always allow the startup probe.
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	// In production, require an explicit allowlist via CORS_ALLOWED_ORIGINS
	// (comma-separated). Outside production, allow all for developer
	// convenience.
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			corsConfig.AllowOrigins = []string{}
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", "X-Correlation-Id")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", "X-Correlation-Id")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	r.Use(customErrorLogger(logger))
	r.Use(gin.Recovery())
	registerRoutes(r)
	r.NoRoute(customNotFoundHandler)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		// ListenAndServe returns http.ErrServerClosed on graceful shutdown.
		serverErrCh <- srv.ListenAndServe()
	}()

	// Connect dependencies after the port is open.
	config.ConnectDatabaseWithRetry()

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()
	// AutoMigrate can run DDL that blocks tables. Allow disabling migrations
	// on startup and running them as a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port, "/api")
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
		// graceful shutdown below
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownTimeout := 30 * time.Second
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}
}

// customErrorLogger is a custom Gin middleware that logs only errors
func customErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only log when there are errors
		if len(c.Errors) > 0 {
			logger.Error(c.Errors.String())
		}
	}
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
