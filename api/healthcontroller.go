package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Status is the runtime configuration reported by the health endpoint.
type Status struct {
	// Cache names the active backend, "memory" or "redis".
	Cache     string
	AIEnabled bool
	AIModel   string
}

// RegisterHealthRoutes registers the health check, which reports the cache
// backend, whether AI cleaning is on, and how many categories are served.
func RegisterHealthRoutes(r *gin.Engine, svc FeedService, status Status) {
	r.GET("/api/health", func(c *gin.Context) {
		body := gin.H{
			"status":     "ok",
			"cache":      status.Cache,
			"aiEnabled":  status.AIEnabled,
			"categories": len(svc.Categories()),
		}
		if status.AIEnabled {
			body["aiModel"] = status.AIModel
		}
		c.JSON(http.StatusOK, body)
	})
}
