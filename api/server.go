package api

import (
	"context"
	"time"

	"clearfeed/types"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// FeedService is the article source behind the HTTP handlers.
type FeedService interface {
	AllArticles(ctx context.Context) ([]*types.Article, error)
	CategoryArticles(ctx context.Context, category string) ([]*types.Article, error)
	Refresh(ctx context.Context) ([]*types.Article, error)
	Categories() []types.CategoryInfo
}

// NewRouter constructs a Gin engine with registered routes.
func NewRouter(svc FeedService, status Status) *gin.Engine {
	r := gin.New()
	// Minimal middleware: recovery; logger optional to reduce verbosity
	r.Use(gin.Recovery())
	// The browser client is served separately, so any origin may call the API.
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))

	// Register resource routers
	RegisterFeedRoutes(r, svc)
	RegisterHealthRoutes(r, svc, status)
	return r
}
