package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/opensourcetutor/internal/config"
	"github.com/opensourcetutor/internal/handler"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(cfg *config.AppConfig, api *handler.API) *gin.Engine {
	r := gin.Default()

	// 前端运行在独立域名，放开指定来源的跨域访问
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", handler.UserUIDHeader},
		AllowCredentials: true,
	}))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	apiGroup := r.Group("/api")
	{
		// 用户同步发生在身份建立之前，不要求用户标识头
		apiGroup.POST("/auth/sync-user", api.SyncUser)

		// 需要用户标识的业务路由
		auth := apiGroup.Group("")
		auth.Use(api.RequireUser())
		{
			auth.GET("/practice/sessions", api.ListSessions)
			auth.POST("/practice/sessions", api.CreateSession)
			auth.PATCH("/practice/sessions/:sessionId", api.PatchSession)
			auth.POST("/practice/sessions/:sessionId/exercises", api.CreateExercise)
			auth.PATCH("/exercises/:id", api.PatchExercise)

			auth.POST("/practice/analyze", api.AnalyzeHarmony)

			auth.GET("/progress", api.GetProgress)
			auth.POST("/progress/update", api.UpdateProgress)
			auth.PUT("/progress", api.InitProgress)

			auth.GET("/dashboard", api.GetDashboard)
			auth.GET("/achievements", api.ListAchievements)
		}
	}

	return r
}
