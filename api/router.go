package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seo-optimizer/competitor/competitor"
	"github.com/seo-optimizer/competitor/config"
	"github.com/seo-optimizer/competitor/middleware"
	"github.com/seo-optimizer/competitor/render"
	"github.com/seo-optimizer/competitor/stats"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
func NewRouter(svc *competitor.Service, storage *stats.Storage, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.SetHTMLTemplate(render.Templates())

	// Web form
	r.GET("/", Index())
	r.POST("/", Submit(svc))

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
				"uptime": time.Since(startTime).Round(time.Second).String(),
			})
		})

		api.POST("/compare", Compare(svc))
		api.GET("/statistics", Statistics(storage, cfg.DevMode))
	}

	return r
}
