package api

import (
	"errors"
	"log"
	"net/http"

	"clearfeed/orchestrator"
	"clearfeed/types"

	"github.com/gin-gonic/gin"
)

// RegisterFeedRoutes registers the article, category and refresh endpoints.
func RegisterFeedRoutes(r *gin.Engine, svc FeedService) {
	g := r.Group("/api")
	g.GET("/feeds", handleGetFeeds(svc))
	g.GET("/feeds/:category", handleGetCategory(svc))
	g.GET("/categories", handleGetCategories(svc))
	g.POST("/refresh", handleRefresh(svc))
}

func articlesResponse(articles []*types.Article) gin.H {
	if articles == nil {
		articles = []*types.Article{}
	}
	return gin.H{
		"success":  true,
		"count":    len(articles),
		"articles": articles,
	}
}

func errorResponse(msg string) gin.H {
	return gin.H{"success": false, "error": msg}
}

// handleGetFeeds returns every category merged, newest first.
func handleGetFeeds(svc FeedService) gin.HandlerFunc {
	return func(c *gin.Context) {
		articles, err := svc.AllArticles(c.Request.Context())
		if err != nil {
			log.Printf("❌ Error fetching feeds: %v", err)
			c.JSON(http.StatusInternalServerError, errorResponse("Failed to fetch feeds"))
			return
		}
		c.JSON(http.StatusOK, articlesResponse(articles))
	}
}

func handleGetCategory(svc FeedService) gin.HandlerFunc {
	return func(c *gin.Context) {
		category := c.Param("category")
		articles, err := svc.CategoryArticles(c.Request.Context(), category)
		if errors.Is(err, orchestrator.ErrUnknownCategory) {
			c.JSON(http.StatusNotFound, errorResponse("Category not found"))
			return
		}
		if err != nil {
			log.Printf("❌ Error fetching category %s: %v", category, err)
			c.JSON(http.StatusInternalServerError, errorResponse("Failed to fetch category"))
			return
		}
		c.JSON(http.StatusOK, articlesResponse(articles))
	}
}

func handleGetCategories(svc FeedService) gin.HandlerFunc {
	return func(c *gin.Context) {
		categories := svc.Categories()
		if categories == nil {
			categories = []types.CategoryInfo{}
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "categories": categories})
	}
}

// handleRefresh flushes the cache and rebuilds the global aggregate before responding.
func handleRefresh(svc FeedService) gin.HandlerFunc {
	return func(c *gin.Context) {
		articles, err := svc.Refresh(c.Request.Context())
		if err != nil {
			log.Printf("❌ Error refreshing feeds: %v", err)
			c.JSON(http.StatusInternalServerError, errorResponse("Failed to refresh"))
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Cache refreshed",
			"count":   len(articles),
		})
	}
}
