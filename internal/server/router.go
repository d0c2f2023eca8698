package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/docuflow/docuflow-backend/internal/server/handler"
	"github.com/docuflow/docuflow-backend/internal/server/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	jobHandler *handler.JobHandler,
	entryHandler *handler.EntryHandler,
	exportHandler *handler.ExportHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CorrelationID())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization")
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition")
	r.Use(cors.New(corsConfig))

	api := r.Group("/docuflow")
	{
		// Job operations
		jobs := api.Group("/jobs")
		{
			jobs.POST("", jobHandler.Ingest)
			jobs.GET("", jobHandler.List)
			jobs.POST("/upload", jobHandler.Upload)
			jobs.POST("/update", jobHandler.Update)
			jobs.POST("/update-job-agreement", jobHandler.MergeAgreement)
			jobs.GET("/stats", jobHandler.Stats)
			jobs.GET("/check-job-agreement", jobHandler.CheckAgreement)
			jobs.GET("/check-match", jobHandler.CheckMatch)
			jobs.GET("/count-agreements", jobHandler.CountAgreements)
			jobs.GET("/count-matched", jobHandler.CountMatched)
			jobs.GET("/count-citi", entryHandler.CountCiti)
			jobs.GET("/fetch-job-details", jobHandler.FetchJobDetails)
			jobs.GET("/export", exportHandler.ExportJobs)
			jobs.POST("/export", exportHandler.ExportJobs)
		}

		// Reference ledger operations
		citi := api.Group("/citi_data")
		{
			citi.POST("", entryHandler.SaveCiti)
			citi.GET("", entryHandler.ListCiti)
			citi.GET("/get-citi-entry", entryHandler.GetCitiEntry)
			citi.GET("/fetch-job-by-agreement", jobHandler.FetchJobByAgreement)
		}

		// Quarantine operations
		api.POST("/quarantine_data", entryHandler.SaveQuarantine)

		// Ledger/quarantine export
		api.GET("/citi-data/export", exportHandler.ExportCitiData)
		api.POST("/citi-data/export", exportHandler.ExportCitiData)
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
