package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/invoice-drafts/config"
	"github.com/yourusername/invoice-drafts/editor"
	"github.com/yourusername/invoice-drafts/handlers"
	"github.com/yourusername/invoice-drafts/logger"
	"github.com/yourusername/invoice-drafts/middleware"
	"github.com/yourusername/invoice-drafts/repository"
	"github.com/yourusername/invoice-drafts/storage"
	"github.com/yourusername/invoice-drafts/store"
	"github.com/yourusername/invoice-drafts/utils"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the router is built from.
type Dependencies struct {
	Config    *config.Config
	DB        *gorm.DB
	KV        store.KV
	OCRClient utils.OCRClientInterface
	Archive   storage.Archive
}

func setupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "invoice-drafts-api",
		})
	})

	repo := repository.NewGormRepository(deps.DB)
	processor := editor.NewProcessor(store.NewDraftStore(deps.KV, cfg.StorePrefix), repo)
	sessions := store.NewSessionStore(deps.KV, cfg.StorePrefix)

	api := router.Group("/api/v1")
	{
		authHandler := handlers.NewAuthHandler(deps.DB, cfg)
		api.POST("/auth/refresh", authHandler.Refresh)

		secured := api.Group("", middleware.JwtAuthMiddleware(cfg))

		// Draft endpoints
		draftHandler := handlers.NewDraftHandler(processor, sessions, deps.OCRClient, deps.Archive, cfg)
		secured.POST("/drafts", draftHandler.Upload)
		secured.GET("/drafts", draftHandler.Current)
		secured.DELETE("/drafts", draftHandler.Abandon)
		secured.POST("/drafts/commands", draftHandler.Command)
		secured.POST("/drafts/messages", draftHandler.Message)
		secured.POST("/drafts/save", draftHandler.Save)
		secured.POST("/periods", draftHandler.BeginPeriod)

		// Invoice endpoints
		invoiceHandler := handlers.NewInvoiceHandler(repo)
		secured.GET("/invoices", invoiceHandler.List)
		secured.GET("/invoices/export", middleware.RequireRole("admin", "accountant"), invoiceHandler.Export)
		secured.GET("/invoices/:id", invoiceHandler.Get)
	}

	return router
}

func newKV(ctx context.Context, cfg *config.Config) store.KV {
	client := config.InitRedis(cfg)
	if client == nil {
		slog.Info("Using in-memory draft store")
		return store.NewMemoryKV()
	}
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Error("Failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}
	slog.Info("Using redis draft store", "addr", cfg.RedisAddr, "ttl", cfg.DraftTTL)
	return store.NewRedisKV(client, cfg.DraftTTL)
}

func newOCRClient(ctx context.Context, cfg *config.Config) (utils.OCRClientInterface, func()) {
	if cfg.OCRProvider == "gemini" {
		extractor, err := utils.NewGeminiExtractor(ctx, cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			slog.Error("Failed to create Gemini extractor", "error", err)
			os.Exit(1)
		}
		return extractor, func() { extractor.Close() }
	}
	return utils.NewOCRClient(cfg.OCRAPIURL, cfg.OCRAPIToken, cfg.OCRTimeout), func() {}
}

func newArchive(ctx context.Context, cfg *config.Config) storage.Archive {
	if !cfg.Minio.Enabled() {
		return nil
	}
	svc, err := storage.NewMinioService(cfg.Minio)
	if err != nil {
		slog.Error("Failed to create MinIO client", "error", err)
		os.Exit(1)
	}
	if err := svc.EnsureBucket(ctx); err != nil {
		slog.Error("Failed to prepare MinIO bucket", "bucket", cfg.Minio.Bucket, "error", err)
		os.Exit(1)
	}
	return svc
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	ocrClient, closeOCR := newOCRClient(ctx, cfg)
	defer closeOCR()

	router := setupRouter(Dependencies{
		Config:    cfg,
		DB:        db,
		KV:        newKV(ctx, cfg),
		OCRClient: ocrClient,
		Archive:   newArchive(ctx, cfg),
	})

	slog.Info("Starting invoice drafts API server", "port", cfg.Port, "ocr_provider", ocrClient.Provider())
	if err := router.Run(":" + cfg.Port); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}
