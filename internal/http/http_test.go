package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	accountDomain "github.com/allisson/docrelay/internal/account/domain"
	accountHTTP "github.com/allisson/docrelay/internal/account/http"
	accountMocks "github.com/allisson/docrelay/internal/account/usecase/mocks"
	"github.com/allisson/docrelay/internal/config"
	documentHTTP "github.com/allisson/docrelay/internal/document/http"
	documentMocks "github.com/allisson/docrelay/internal/document/usecase/mocks"
	jobDomain "github.com/allisson/docrelay/internal/job/domain"
	jobHTTP "github.com/allisson/docrelay/internal/job/http"
	jobMocks "github.com/allisson/docrelay/internal/job/usecase/mocks"
	"github.com/allisson/docrelay/internal/metrics"
)

// TestMain sets Gin to test mode for all tests in this package.
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestServer creates a test server with a discarding logger and no database.
func createTestServer() *Server {
	return NewServer(nil, "localhost", 8080, discardLogger())
}

type routerFixture struct {
	server    *Server
	accounts  *accountMocks.MockAccountUseCase
	documents *documentMocks.MockDocumentUseCase
	jobs      *jobMocks.MockUseCase
}

// newRouterFixture builds the full router over mocked use cases.
func newRouterFixture(t *testing.T, cfg *config.Config) *routerFixture {
	t.Helper()

	f := &routerFixture{
		server:    createTestServer(),
		accounts:  accountMocks.NewMockAccountUseCase(t),
		documents: documentMocks.NewMockDocumentUseCase(t),
		jobs:      jobMocks.NewMockUseCase(t),
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := discardLogger()
	f.server.SetupRouter(
		ctx,
		cfg,
		accountHTTP.NewAccountHandler(f.accounts, cfg.SignupEnabled, logger),
		documentHTTP.NewDocumentHandler(f.documents, cfg.MaxUploadBytes, logger),
		jobHTTP.NewJobHandler(f.jobs, logger),
		nil,
		"",
	)
	return f
}

func (f *routerFixture) do(method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	f.server.GetHandler().ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	server := createTestServer()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	server.healthHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
}

func TestReadinessHandler(t *testing.T) {
	t.Run("NotReady_NilDB", func(t *testing.T) {
		server := createTestServer()

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

		server.readinessHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "not_ready", response["status"])

		components, ok := response["components"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "error", components["database"])
	})

	t.Run("Ready_DatabasePings", func(t *testing.T) {
		db, sqlMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		require.NoError(t, err)
		defer func() { _ = db.Close() }()
		sqlMock.ExpectPing()

		server := NewServer(db, "localhost", 8080, discardLogger())

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/ready", nil)

		server.readinessHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"ready","components":{"database":"ok"}}`, w.Body.String())
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})
}

func TestCustomLoggerMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(discardLogger()))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "test"})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test?x=1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestRecoveryMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CustomLoggerMiddleware(discardLogger()))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRouter(t *testing.T) {
	cfg := &config.Config{SignupEnabled: true, MaxUploadBytes: 1 << 20}

	t.Run("IndexPage", func(t *testing.T) {
		f := newRouterFixture(t, cfg)

		w := f.do(http.MethodGet, "/", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
		assert.Contains(t, w.Body.String(), "<title>docrelay</title>")
	})

	t.Run("SignupEnabled", func(t *testing.T) {
		f := newRouterFixture(t, cfg)

		w := f.do(http.MethodGet, "/signup-enabled", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"signupEnabled":true}`, w.Body.String())
	})

	t.Run("Register", func(t *testing.T) {
		f := newRouterFixture(t, cfg)
		f.accounts.On("Register", mock.Anything, "ABC123").
			Return(&accountDomain.RegisterResult{AccountID: "acct-1", DeviceID: "dev-1"}, nil).Once()

		w := f.do(http.MethodPost, "/register", strings.NewReader(`{"linkCode":"ABC123"}`))

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.JSONEq(t, `{"success":true,"authId":"acct-1","deviceId":"dev-1"}`, w.Body.String())
	})

	t.Run("AccountStatus", func(t *testing.T) {
		f := newRouterFixture(t, cfg)
		accountID := uuid.Must(uuid.NewV7()).String()
		f.accounts.On("Status", mock.Anything, accountID).
			Return(&accountDomain.Status{Registered: false}, nil).Once()

		w := f.do(http.MethodGet, "/auth/"+accountID+"/status", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"registered":false}`, w.Body.String())
	})

	t.Run("DestroyAccount", func(t *testing.T) {
		f := newRouterFixture(t, cfg)
		accountID := uuid.Must(uuid.NewV7()).String()
		f.accounts.On("Destroy", mock.Anything, accountID).Return(nil).Once()

		w := f.do(http.MethodDelete, "/auth/"+accountID, nil)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("JobNotFound", func(t *testing.T) {
		f := newRouterFixture(t, cfg)
		jobID := uuid.Must(uuid.NewV7())
		f.jobs.On("Get", mock.Anything, jobID).Return(nil, jobDomain.ErrJobNotFound).Once()

		w := f.do(http.MethodGet, "/jobs/"+jobID.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("InboundEmailIsNotRateLimited", func(t *testing.T) {
		limited := &config.Config{RateLimitEnabled: true, RateLimitRequestsPerSec: 0.001, RateLimitBurst: 1}
		f := newRouterFixture(t, limited)
		f.documents.On("IngestEmail", mock.Anything, mock.Anything).
			Return(nil, accountDomain.ErrNotRegistered).Times(3)

		for range 3 {
			w := f.do(http.MethodPost, "/inbound/email", strings.NewReader("raw"))
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		}
	})

	t.Run("RegisterIsRateLimited", func(t *testing.T) {
		limited := &config.Config{
			SignupEnabled:           true,
			RateLimitEnabled:        true,
			RateLimitRequestsPerSec: 0.001,
			RateLimitBurst:          1,
		}
		f := newRouterFixture(t, limited)
		f.accounts.On("Register", mock.Anything, "ABC123").
			Return(&accountDomain.RegisterResult{AccountID: "acct-1", DeviceID: "dev-1"}, nil).Once()

		first := f.do(http.MethodPost, "/register", strings.NewReader(`{"linkCode":"ABC123"}`))
		second := f.do(http.MethodPost, "/register", strings.NewReader(`{"linkCode":"ABC123"}`))

		assert.Equal(t, http.StatusCreated, first.Code)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
		assert.NotEmpty(t, second.Header().Get("Retry-After"))
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newRouterFixture(t, cfg)

		w := f.do(http.MethodGet, "/nonexistent", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("NoMetricsEndpoint", func(t *testing.T) {
		f := newRouterFixture(t, cfg)

		w := f.do(http.MethodGet, "/metrics", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestServer_StartWithoutRouter(t *testing.T) {
	server := createTestServer()

	assert.Error(t, server.Start(context.Background()))
}

func TestServer_ShutdownGracefully(t *testing.T) {
	server := NewServer(nil, "127.0.0.1", 0, discardLogger())
	server.router = gin.New()

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(context.Background())
	}()

	// Give server time to start
	time.Sleep(100 * time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.NoError(t, server.Shutdown(shutdownCtx))
	assert.NoError(t, <-errChan)
}

func TestMetricsServer_Endpoints(t *testing.T) {
	provider, err := metrics.NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	metricsServer := NewMetricsServer("localhost", 8081, discardLogger(), provider)
	require.NotNil(t, metricsServer)

	w := httptest.NewRecorder()
	metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")

	w = httptest.NewRecorder()
	metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
