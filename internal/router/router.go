package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"docsight/internal/handler"
	"docsight/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	parseH *handler.ParseHandler,
	documentH *handler.DocumentHandler,
	agentH *handler.AgentHandler,
	healthH *handler.HealthHandler,
	corsOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	// API documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Document upload and parsing
	documents := v1.Group("/documents")
	documents.POST("", parseH.Upload)
	documents.POST("/batch", parseH.UploadBatch)
	documents.GET("", documentH.List)
	documents.GET("/:id", documentH.Get)
	documents.DELETE("/:id", documentH.Delete)

	// Parsed views
	documents.GET("/:id/structured", documentH.Structured)
	documents.GET("/:id/pages", documentH.Pages)
	documents.GET("/:id/text", documentH.Text)
	documents.GET("/:id/raw", documentH.Raw)
	documents.GET("/:id/summary", documentH.Summary)

	// Downloads
	documents.GET("/:id/download/text", documentH.DownloadText)
	documents.GET("/:id/download/json", documentH.DownloadJSON)
	documents.GET("/:id/download/tables", documentH.DownloadTables)
	documents.GET("/:id/download/pdf", documentH.DownloadPDF)
	documents.GET("/:id/file", documentH.OriginalFile)

	// Agent queries over parsed tables
	agent := v1.Group("/agent")
	agent.POST("/query", agentH.Run)
	agent.POST("/query/export", agentH.Export)

	return r
}
