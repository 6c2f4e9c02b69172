package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ncon2559/construction_backend/config"
	"github.com/ncon2559/construction_backend/models"
)

func parseDocumentFilter(c *gin.Context) models.DocumentFilter {
	filter := models.DocumentFilter{
		DocType: models.DocType(c.Query("doc_type")),
		Status:  models.DocumentStatus(c.Query("status")),
	}
	if projectId, err := strconv.Atoi(c.Query("project_id")); err == nil {
		filter.ProjectId = projectId
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filter.Limit = limit
	}
	if from, err := time.Parse("2006-01-02", c.Query("date_from")); err == nil {
		filter.DateFrom = &from
	}
	if to, err := time.Parse("2006-01-02", c.Query("date_to")); err == nil {
		// Inclusive end of day.
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.DateTo = &to
	}
	return filter
}

func listDocumentsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, pagination, err := models.ListDocuments(c.Request.Context(), parseDocumentFilter(c))
		if err != nil {
			respondError(c, err)
			return
		}
		if rows == nil {
			rows = []models.DocumentListRow{}
		}
		c.JSON(http.StatusOK, gin.H{"documents": rows, "pagination": pagination})
	}
}

func getDocumentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		documentId, ok := pathId(c, "id")
		if !ok {
			return
		}
		document, err := models.GetDocument(c.Request.Context(), documentId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, document)
	}
}

func createDocumentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		var input models.NewDocument
		if !bindJSON(c, &input) {
			return
		}

		document, err := models.CreateDocument(c.Request.Context(), &input)
		if err != nil {
			config.LogError(logger, "documents.go", "createDocumentHandler", "CreateDocument", input.DocType, err)
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, document)
	}
}

func updateDocumentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		documentId, ok := pathId(c, "id")
		if !ok {
			return
		}
		var input models.UpdateDocumentInput
		if !bindJSON(c, &input) {
			return
		}

		document, err := models.UpdateDocument(c.Request.Context(), documentId, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, document)
	}
}

func deleteDocumentHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		documentId, ok := pathId(c, "id")
		if !ok {
			return
		}
		if err := models.DeleteDocument(c.Request.Context(), documentId); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "document deleted"})
	}
}
