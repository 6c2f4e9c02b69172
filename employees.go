package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ncon2559/construction_backend/models"
)

func listEmployeesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.EmployeeFilter
		if err := c.ShouldBindQuery(&filter); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
			return
		}
		employees, err := models.ListEmployees(c.Request.Context(), &filter)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, employees)
	}
}

func getEmployeeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		employeeId, ok := pathId(c, "id")
		if !ok {
			return
		}
		employee, err := models.GetEmployee(c.Request.Context(), employeeId)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, employee)
	}
}

func createEmployeeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.EmployeeInput
		if !bindJSON(c, &input) {
			return
		}
		employee, err := models.CreateEmployee(c.Request.Context(), &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, employee)
	}
}

func updateEmployeeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		employeeId, ok := pathId(c, "id")
		if !ok {
			return
		}
		var input models.EmployeeInput
		if !bindJSON(c, &input) {
			return
		}
		employee, err := models.UpdateEmployee(c.Request.Context(), employeeId, &input)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, employee)
	}
}

func deleteEmployeeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		employeeId, ok := pathId(c, "id")
		if !ok {
			return
		}
		if err := models.DeleteEmployee(c.Request.Context(), employeeId); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "employee deleted"})
	}
}

func employeeStatsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := models.GetEmployeeStats(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}
