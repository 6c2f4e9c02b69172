package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ncon2559/construction_backend/config"
	"github.com/ncon2559/construction_backend/models"
	"github.com/ncon2559/construction_backend/utils"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func registerHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewUser
		if !bindJSON(c, &input) {
			return
		}
		// Self-registration never grants elevated roles.
		input.Role = models.UserRoleViewer

		payload, err := models.RegisterUser(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, payload)
	}
}

func loginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := config.GetLogger()

		var req loginRequest
		if !bindJSON(c, &req) {
			return
		}

		payload, err := models.LoginUser(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			config.LogError(logger, "auth.go", "loginHandler", "LoginUser", req.Email, err)
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, payload)
	}
}

func refreshHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req refreshRequest
		if !bindJSON(c, &req) {
			return
		}

		payload, err := models.RefreshUserToken(c.Request.Context(), req.RefreshToken)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, payload)
	}
}

func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, ok := utils.GetUserIdFromContext(c.Request.Context())
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if err := models.LogoutUser(c.Request.Context(), userId); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "logged out"})
	}
}

func meHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		me, err := models.GetMe(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, me)
	}
}

func listUsersHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := models.ListUsers(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func createUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewUser
		if !bindJSON(c, &input) {
			return
		}
		user, err := models.CreateUser(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

func updateUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, ok := pathId(c, "id")
		if !ok {
			return
		}
		var input models.UpdateUserInput
		if !bindJSON(c, &input) {
			return
		}
		user, err := models.UpdateUser(c.Request.Context(), userId, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

func deleteUserHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, ok := pathId(c, "id")
		if !ok {
			return
		}
		if callerId, ok := utils.GetUserIdFromContext(c.Request.Context()); ok && callerId == userId {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete yourself"})
			return
		}
		if err := models.DeleteUser(c.Request.Context(), userId); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
	}
}
