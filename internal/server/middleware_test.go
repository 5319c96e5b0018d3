package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(corsMiddleware())
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	t.Run("sets headers on normal requests", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("short-circuits preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(MetricsMiddleware())
	router.GET("/classes/:classID", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	t.Run("matched route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/classes/1", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unmatched route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/nope", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRequestLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestLoggingMiddleware())
	router.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestValidateStruct(t *testing.T) {
	type form struct {
		Name  string `validate:"required"`
		Email string `validate:"required,email"`
		Size  int    `validate:"min=1"`
	}

	t.Run("valid struct", func(t *testing.T) {
		errs := ValidateStruct(form{Name: "Downtown", Email: "ops@fitify.io", Size: 3})
		assert.Empty(t, errs)
	})

	t.Run("collects all failures", func(t *testing.T) {
		errs := ValidateStruct(form{})
		assert.Len(t, errs, 3)
	})

	t.Run("formats messages", func(t *testing.T) {
		errs := ValidateStruct(form{Name: "x", Email: "not-an-email", Size: 2})
		assert.Len(t, errs, 1)
		assert.Equal(t, "email", errs[0].Tag)
		assert.Equal(t, "Email must be a valid email address", errs[0].Message)
	})
}
