package main

import (
	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/saakshipatel/moments/config"
	"github.com/saakshipatel/moments/handlers"
	"github.com/saakshipatel/moments/metrics"
	"github.com/saakshipatel/moments/vision"
)

const (
	EndPointHealth   = "/health"
	EndPointMetrics  = "/metrics"
	EndPointAltText  = "/api/v1/images/alt-text"
	EndPointTags     = "/api/v1/images/tags"
	EndPointAnalysis = "/api/v1/images/analysis"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Warn(".env file not found, using system environment variables")
	}

	// Load configuration
	cfg := config.Load()
	metrics.Register()

	log.Info("Starting the moments ml service...")

	// Initialize the vision service. Construction never fails: without
	// usable credentials the service runs degraded and every operation
	// returns its safe default.
	visionService := vision.New(cfg)
	if !visionService.Enabled() {
		log.Warn("Vision analysis disabled, all operations will return defaults")
	}

	// Initialize handlers
	analysisHandler := handlers.NewAnalysisHandler(visionService, cfg.MaxUploadMB)

	// Setup router
	router := gin.Default()

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", cfg.AllowedOrigins)
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET(EndPointHealth, func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":         "healthy",
			"service":        "ml-service",
			"vision_enabled": visionService.Enabled(),
		})
	})

	// Prometheus metrics
	router.GET(EndPointMetrics, gin.WrapH(promhttp.Handler()))

	// Image analysis endpoints
	router.POST(EndPointAltText, analysisHandler.GenerateAltText)
	router.POST(EndPointTags, analysisHandler.DetectObjects)
	router.POST(EndPointAnalysis, analysisHandler.GetDetailedAnalysis)

	// Start server
	log.Infof("ML service starting on port %s", cfg.Port)
	log.Infof("Max upload size: %d MB", cfg.MaxUploadMB)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
