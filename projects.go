package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ncon2559/construction_backend/models"
)

type assignUserRequest struct {
	UserId int `json:"user_id" binding:"required"`
}

func listProjectsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		projects, err := models.ListProjects(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, projects)
	}
}

func getProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectId, ok := pathId(c, "id")
		if !ok {
			return
		}
		project, err := models.GetProject(c.Request.Context(), projectId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, project)
	}
}

func createProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewProject
		if !bindJSON(c, &input) {
			return
		}
		project, err := models.CreateProject(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, project)
	}
}

func updateProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectId, ok := pathId(c, "id")
		if !ok {
			return
		}
		var input models.UpdateProjectInput
		if !bindJSON(c, &input) {
			return
		}
		project, err := models.UpdateProject(c.Request.Context(), projectId, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, project)
	}
}

func deleteProjectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectId, ok := pathId(c, "id")
		if !ok {
			return
		}
		if err := models.DeleteProject(c.Request.Context(), projectId); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
	}
}

func assignProjectUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectId, ok := pathId(c, "id")
		if !ok {
			return
		}
		var req assignUserRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := models.AssignUserToProject(c.Request.Context(), projectId, req.UserId); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "user assigned to project"})
	}
}

func removeProjectUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		projectId, ok := pathId(c, "id")
		if !ok {
			return
		}
		userId, ok := pathId(c, "userId")
		if !ok {
			return
		}
		if err := models.RemoveUserFromProject(c.Request.Context(), projectId, userId); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "user removed from project"})
	}
}
