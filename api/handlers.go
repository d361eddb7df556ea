package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/card-catalog/services"
)

// Engine is everything the HTTP API drives.
type Engine interface {
	services.CatalogManager
	services.DeckManager
	services.JobManager
}

// API holds dependencies for API handlers, primarily the catalog engine.
type API struct {
	engine Engine
}

// NewAPI creates a new API handler structure.
func NewAPI(engine Engine) *API {
	return &API{engine: engine}
}

// SetupRoutes defines all the API routes of the card catalog. A nil
// metricsHandler leaves /metrics unrouted.
func SetupRoutes(router *gin.Engine, engine Engine, metricsHandler http.Handler) {
	apiHandler := NewAPI(engine)

	router.GET("/health", apiHandler.HealthCheckHandler)
	if metricsHandler != nil {
		router.GET("/metrics", gin.WrapH(metricsHandler))
	}

	// Card routes
	cardRoutes := router.Group("/cards")
	{
		cardRoutes.POST("/_search", apiHandler.SearchHandler)
		cardRoutes.POST("/_multi_search", apiHandler.MultiSearchHandler)
		cardRoutes.POST("/_lookup", apiHandler.LookupCardsHandler)
		cardRoutes.GET("/:cardNo", apiHandler.GetCardHandler)
		cardRoutes.PUT("", apiHandler.ImportCardsHandler) // async upsert
	}

	router.POST("/sync", apiHandler.SyncHandler)
	router.POST("/snapshot", apiHandler.SnapshotHandler)

	// Facet routes
	facetRoutes := router.Group("/facets")
	{
		facetRoutes.GET("", apiHandler.ListFacetsHandler)
		facetRoutes.GET("/ranges", apiHandler.ListRangesHandler)
	}

	// Deck routes
	deckRoutes := router.Group("/decks")
	{
		deckRoutes.GET("", apiHandler.ListDecksHandler)
		deckRoutes.POST("", apiHandler.CreateDeckHandler)
		deckRoutes.POST("/_import", apiHandler.ImportDeckHandler) // TOML body
		deckRoutes.GET("/:deckId", apiHandler.GetDeckHandler)
		deckRoutes.PUT("/:deckId", apiHandler.UpdateDeckHandler)
		deckRoutes.DELETE("/:deckId", apiHandler.DeleteDeckHandler)
		deckRoutes.GET("/:deckId/export", apiHandler.ExportDeckHandler)
	}

	// Job management routes
	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("", apiHandler.ListJobsHandler)
		jobRoutes.GET("/metrics", apiHandler.GetJobMetricsHandler)
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler)
		jobRoutes.DELETE("/:jobId", apiHandler.CancelJobHandler)
	}
}

// HealthCheckHandler reports whether the record store answers.
func (api *API) HealthCheckHandler(c *gin.Context) {
	count, err := api.engine.CountCards(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"error":     err.Error(),
			"timestamp": time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"cards":     count,
		"timestamp": time.Now().Unix(),
	})
}

// sendAccepted answers a request that started a background job.
func sendAccepted(c *gin.Context, jobID, message string) {
	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": message,
		"job_id":  jobID,
	})
}
