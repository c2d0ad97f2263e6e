package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/invoice-drafts/config"
	"github.com/yourusername/invoice-drafts/middleware"
	"github.com/yourusername/invoice-drafts/models"
	"github.com/yourusername/invoice-drafts/repository"
	"github.com/yourusername/invoice-drafts/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type stubOCR struct{}

func (stubOCR) Extract(ctx context.Context, path string) (*models.ExtractionResult, error) {
	return &models.ExtractionResult{
		Supplier: "Acme",
		Date:     "2025-06-12",
		Total:    decimal.NewNullDecimal(decimal.NewFromInt(10)),
		Items:    []models.ExtractedItem{{Name: "Bolt", Qty: decimal.NewFromInt(1), Price: decimal.NewFromInt(10), Total: decimal.NewFromInt(10)}},
	}, nil
}

func (stubOCR) Provider() string { return "stub" }

func testRouter(t *testing.T, kv store.KV) (*gin.Engine, *config.Config) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	require.NoError(t, repository.Migrate(db))

	cfg := &config.Config{JWTSecret: "secret", JWTRefreshSecret: "refresh", StorePrefix: "test", UploadDir: t.TempDir(), MaxUploadMB: 1}
	return setupRouter(Dependencies{Config: cfg, DB: db, KV: kv, OCRClient: stubOCR{}}), cfg
}

func TestHealthEndpoint(t *testing.T) {
	router, _ := testRouter(t, store.NewMemoryKV())

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestSecuredRoutesRequireToken(t *testing.T) {
	router, _ := testRouter(t, store.NewMemoryKV())

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/drafts"},
		{http.MethodPost, "/api/v1/drafts/commands"},
		{http.MethodPost, "/api/v1/drafts/save"},
		{http.MethodGet, "/api/v1/invoices?from=2025-01-01&to=2025-12-31"},
	} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(route.method, route.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, route.path)
	}
}

func TestCommandsOverRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	router, cfg := testRouter(t, store.NewRedisKV(client, time.Hour))
	token, err := middleware.GenerateToken(9001, "user", cfg.JWTSecret, time.Hour)
	require.NoError(t, err)

	send := func(payload map[string]any) *httptest.ResponseRecorder {
		body, _ := json.Marshal(payload)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/drafts/commands", bytes.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	w := send(map[string]any{"command": "begin_comment"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	// Seed a draft straight into Redis, then drive the comment dialog.
	drafts := store.NewDraftStore(store.NewRedisKV(client, time.Hour), "test")
	require.NoError(t, drafts.Set(context.Background(), 9001, &models.InvoiceDraft{Comments: []string{}}))

	w = send(map[string]any{"command": "begin_comment"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, mr.Exists("test:session:9001"))

	w = send(map[string]any{"command": "submit_comment", "text": "paid in cash"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.False(t, mr.Exists("test:session:9001"))

	d, err := drafts.Get(context.Background(), 9001)
	require.NoError(t, err)
	assert.Equal(t, []string{"paid in cash"}, d.Comments)
	assert.Equal(t, time.Hour, mr.TTL("test:draft:9001"))
}

func TestExportRequiresRole(t *testing.T) {
	router, cfg := testRouter(t, store.NewMemoryKV())

	for _, tc := range []struct {
		role   string
		status int
	}{
		{"user", http.StatusForbidden},
		{"accountant", http.StatusOK},
	} {
		token, err := middleware.GenerateToken(1, tc.role, cfg.JWTSecret, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/invoices/export?from=2025-06-01&to=2025-06-30", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, tc.status, w.Code, tc.role)
	}
}
