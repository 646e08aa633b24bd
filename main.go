package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Aashish23092/tax-form-engine/config"
	"github.com/Aashish23092/tax-form-engine/handler"
	"github.com/Aashish23092/tax-form-engine/logger"
	"github.com/Aashish23092/tax-form-engine/service"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	// Initialize service layer
	taxService, loader, err := service.NewFromConfig(cfg, zl)
	if err != nil {
		zl.Fatal("failed to initialize tax service", zap.Error(err))
	}

	// Initialize handler layer
	taxHandler := handler.NewTaxHandler(taxService, loader, cfg.MaxFileSize, zl)

	// Setup Gin router
	router := gin.Default()

	// Configure max multipart memory (32 MB)
	router.MaxMultipartMemory = 32 << 20

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":   "healthy",
			"service":  "Tax Form Engine",
			"tax_year": cfg.TaxYear,
		})
	})

	// API routes
	api := router.Group("/api/v1")
	taxHandler.RegisterRoutes(api)

	// Start server
	zl.Info("starting tax form engine", zap.String("port", cfg.ServerPort), zap.Int("workers", cfg.Workers))
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		zl.Fatal("failed to start server", zap.Error(err))
	}
}
