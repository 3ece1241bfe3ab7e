package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCORSMiddleware(t *testing.T) {
	logger := discardLogger()

	tests := []struct {
		name    string
		enabled bool
		origins string
		wantNil bool
	}{
		{"Disabled", false, "https://example.com", true},
		{"EnabledWithoutOrigins", true, "", true},
		{"EnabledWithOnlyInvalidOrigins", true, "ftp://example.com, not an origin", true},
		{"EnabledWithOrigins", true, "https://app.example.com, http://localhost:3000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			middleware := createCORSMiddleware(tt.enabled, tt.origins, logger)
			if tt.wantNil {
				assert.Nil(t, middleware)
			} else {
				assert.NotNil(t, middleware)
			}
		})
	}
}

func TestParseOrigins(t *testing.T) {
	logger := discardLogger()

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"Empty", "", nil},
		{"TrimsWhitespaceAndTrailingSlash", " https://app.example.com/ , https://admin.example.com ", []string{
			"https://app.example.com",
			"https://admin.example.com",
		}},
		{"DropsWildcard", "*", nil},
		{"DropsPaths", "https://app.example.com/upload", nil},
		{"DropsOtherSchemes", "ftp://files.example.com,http://localhost:8080", []string{"http://localhost:8080"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseOrigins(tt.input, logger))
		})
	}
}

func TestCORSMiddleware_Requests(t *testing.T) {
	middleware := createCORSMiddleware(true, "https://app.example.com", discardLogger())
	require.NotNil(t, middleware)

	router := gin.New()
	router.Use(middleware)
	router.POST("/upload", func(c *gin.Context) {
		c.Status(http.StatusAccepted)
	})

	t.Run("PreflightFromAllowedOrigin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/upload", nil)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("UploadFromAllowedOrigin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("UploadFromOtherOrigin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/upload", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}
