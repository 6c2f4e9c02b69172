package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ncon2559/construction_backend/config"
	"github.com/ncon2559/construction_backend/models/reports"
)

func dashboardSummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectId, _ := strconv.Atoi(c.Query("project"))

		summary, err := reports.GetDashboardSummary(c.Request.Context(), projectId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

func vatSalesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := reports.GetVatSalesReport(c.Request.Context(), c.Query("period"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func vatPurchaseHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := reports.GetVatPurchaseReport(c.Request.Context(), c.Query("period"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func whtReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := reports.GetWhtReport(c.Request.Context(), c.Query("period"), c.Query("type"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, report)
	}
}

func exportReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		format := c.Query("format")
		if format != "excel" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "format must be excel"})
			return
		}
		exportType := c.Query("type")
		period := c.Query("period")

		f, err := reports.ExportExcel(c.Request.Context(), exportType, period)
		if err != nil {
			config.LogError(logger, "reportHandlers.go", "exportReportHandler", "ExportExcel", exportType, err)
			respondError(c, err)
			return
		}

		filename := "NCON2559_report_" + time.Now().Format("2006-01-02") + ".xlsx"
		if exportType != "" {
			filename = "NCON2559_" + exportType + "_" + time.Now().Format("2006-01-02") + ".xlsx"
		}
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Disposition", "attachment; filename="+filename)
		if err := f.Write(c.Writer); err != nil {
			config.LogError(logger, "reportHandlers.go", "exportReportHandler", "Write workbook", filename, err)
		}
	}
}
