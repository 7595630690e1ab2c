package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/opensourcetutor/internal/config"
	"github.com/opensourcetutor/internal/db"
	"github.com/opensourcetutor/internal/handler"
	"github.com/opensourcetutor/internal/router"
	"github.com/opensourcetutor/internal/service"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// AI 客户端进程内共享，未配置密钥时分析接口会返回明确错误
	harmony := service.NewAIHarmonyService(cfg.GeminiAPIKey, cfg.GeminiModel)
	if cfg.GeminiAPIKey == "" {
		log.Println("GEMINI_API_KEY 未配置，和声分析接口将不可用")
	}

	api := handler.NewAPI(db.DB, harmony)

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(&cfg, api)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
