// Package server exposes the tool pipelines as an HTTP job API.
package server

import (
	"github.com/gin-gonic/gin"

	"github.com/Fr0z3nRebel/video-toolbox/internal/config"
	"github.com/Fr0z3nRebel/video-toolbox/internal/task"
)

// SetupRouter builds the gin engine with all routes registered.
func SetupRouter(tm *task.Manager, cfg *config.Config, outDir string) *gin.Engine {
	r := gin.Default()
	h := NewHandler(tm, cfg, outDir)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	v1.Use(AuthMiddleware(cfg))
	{
		v1.POST("/jobs", h.handleCreateJob)
		v1.GET("/jobs", h.handleListJobs)
		v1.GET("/jobs/:jobId", h.handleGetJob)
		v1.PATCH("/jobs/:jobId/cancel", h.handleCancelJob)
		v1.GET("/jobs/:jobId/archive", h.handleGetArchive)
		v1.GET("/files/:filename", h.handleGetFile)
	}
	return r
}
