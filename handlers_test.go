package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ncon2559/construction_backend/models"
	"github.com/ncon2559/construction_backend/utils"
)

func TestRespondErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", utils.ErrorRecordNotFound, http.StatusNotFound},
		{"no project access", utils.ErrorNoProjectAccess, http.StatusForbidden},
		{"invalid input", utils.ErrorInvalidInput, http.StatusBadRequest},
		{"bad credentials", models.ErrorInvalidCredentials, http.StatusUnauthorized},
		{"email taken", models.ErrorEmailTaken, http.StatusConflict},
		{"duplicate column", fmt.Errorf("%w project_code", utils.ErrorDuplicate), http.StatusConflict},
		{"storage down", utils.ErrorStorageUnavailable, http.StatusInternalServerError},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		respondError(c, tc.err)
		if w.Code != tc.want {
			t.Errorf("%s: status = %d, want %d", tc.name, w.Code, tc.want)
		}
	}
}
