// Package server exposes the search proxy over HTTP. Handlers translate the
// service's sentinel errors into status codes and keep every response a
// structured JSON envelope; stack traces never reach the client.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/searchproxy/internal/app"
)

type searchRequest struct {
	Query *string `json:"query"`
}

// New builds the router for svc.
func New(svc *app.Service) *gin.Engine {
	r := gin.New()
	r.Use(recovery(), cors())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.POST("/api/search", handleSearch(svc))
	r.GET("/api/content/:id", handleContent(svc))

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "Endpoint not found")
	})
	return r
}

func handleSearch(svc *app.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req searchRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Query == nil {
			fail(c, http.StatusBadRequest, "Missing 'query' parameter in request body")
			return
		}

		results, err := svc.Search(c.Request.Context(), *req.Query)
		switch {
		case errors.Is(err, app.ErrEmptyQuery):
			fail(c, http.StatusBadRequest, "Query cannot be empty")
		case errors.Is(err, app.ErrProviderUnavailable):
			fail(c, http.StatusServiceUnavailable, err.Error())
		case err != nil:
			log.Error().Err(err).Msg("search endpoint error")
			fail(c, http.StatusInternalServerError, "Internal server error occurred during search")
		case len(results) == 0:
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"results": []app.ClientResult{},
				"message": fmt.Sprintf("No results found for '%s'. Try different search terms.", *req.Query),
			})
		default:
			c.JSON(http.StatusOK, gin.H{"success": true, "results": results})
		}
	}
}

func handleContent(svc *app.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		content, err := svc.FetchContent(c.Request.Context(), c.Param("id"))
		switch {
		case errors.Is(err, app.ErrNotFound):
			fail(c, http.StatusNotFound, "Content not found")
		case err != nil:
			log.Error().Err(err).Msg("content endpoint error")
			fail(c, http.StatusInternalServerError, "Internal server error occurred while fetching content")
		default:
			c.JSON(http.StatusOK, gin.H{"success": true, "content": content})
		}
	}
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

// recovery converts panics into the generic error envelope.
func recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).
			Msg("handler panicked")
		fail(c, http.StatusInternalServerError, "Internal server error")
		c.Abort()
	})
}

// cors allows any origin; the proxy serves browser frontends on other hosts.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
