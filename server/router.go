package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpHandler "tab-sweeper/interfaces/http"
)

func InitiateRouter(sweepHandler httpHandler.ISweepHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"http://localhost:4200", "http://127.0.0.1:4200"},
		AllowMethods:  []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("api")
	{
		sweep := api.Group("/sweep")
		{
			sweep.POST("/domain", sweepHandler.SweepDomain)
			sweep.POST("/channel", sweepHandler.SweepChannel)
		}

		cache := api.Group("/cache")
		{
			cache.GET("/videos", sweepHandler.GetCachedVideos)
			cache.DELETE("/videos", sweepHandler.ClearCache)
		}
	}

	return router
}
