package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedOrigin(t *testing.T) {
	allowed := []string{"https://example.com", "http://localhost:5173"}

	assert.True(t, isAllowedOrigin("https://example.com", allowed))
	assert.True(t, isAllowedOrigin("http://localhost:5173", allowed))
	assert.False(t, isAllowedOrigin("https://evil.com", allowed))
	assert.False(t, isAllowedOrigin("", allowed))
}

func TestGetAllowedOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://test1.com,https://test2.com")
	origins := getAllowedOrigins()
	assert.Equal(t, []string{"https://test1.com", "https://test2.com"}, origins)

	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	origins = getAllowedOrigins()
	assert.Contains(t, origins, "http://localhost:5173")
}

func TestIsDevelopmentMode(t *testing.T) {
	t.Setenv("ENV", "")
	assert.True(t, isDevelopmentMode())

	t.Setenv("ENV", "development")
	assert.True(t, isDevelopmentMode())

	t.Setenv("ENV", "production")
	assert.False(t, isDevelopmentMode())
}

func TestEnableCORS(t *testing.T) {
	handler := EnableCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/summary", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Methods"))
	assert.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Headers"))
}

func TestEnableCORSPreflight(t *testing.T) {
	called := false
	handler := EnableCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("OPTIONS", "/api/summary", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, called, "preflight requests stop at the middleware")
}

func TestEnableCORSRejectsUnknownOriginInProduction(t *testing.T) {
	prev := os.Getenv("ENV")
	os.Setenv("ENV", "production")
	defer os.Setenv("ENV", prev)

	handler := EnableCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/summary", nil)
	req.Header.Set("Origin", "https://evil.com")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	allowOrigin := rr.Header().Get("Access-Control-Allow-Origin")
	assert.NotEqual(t, "https://evil.com", allowOrigin)
	assert.NotEmpty(t, allowOrigin)
}
