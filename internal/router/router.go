package router

import (
	"github.com/gin-gonic/gin"

	"dealscout/internal/handler"
	"dealscout/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	allowedOrigins []string,
	ingestH *handler.IngestHandler,
	filingH *handler.FilingHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Ingestion
	v1.POST("/ingest", ingestH.Run)

	// Filing read access for downstream consumers
	filings := v1.Group("/filings")
	filings.GET("", filingH.List)
	filings.GET("/:accession", filingH.GetByAccession)

	return r
}
