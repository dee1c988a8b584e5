package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fub-assistant/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouter_Setup_HealthRoutes(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, Handlers{System: handler.NewSystemHandler("test")})
	r.Setup()

	for _, path := range []string{"/health", "/api/v1/health"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestRouter_CustomAPIVersion(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, Handlers{System: handler.NewSystemHandler("test")}, WithAPIVersion("v2"))
	r.Setup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v2/health", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_NilHandlersSkipped(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine, Handlers{})
	r.Setup()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
