package router

import (
	"github.com/gin-gonic/gin"

	"webgen-ai-api/internal/interfaces/http/handler"
)

// RegisterSiteRoutes 注册落地页、生成站点与对话接口
func RegisterSiteRoutes(e *gin.Engine, staticDir string, site *handler.SiteHandler, chat *handler.ChatHandler) {
	// 落地页与其资源
	e.GET("/", site.Landing)
	e.Static("/static", staticDir)

	// 已生成的站点
	e.GET("/examples/*subdir", site.Example)

	// 对话生成
	e.POST("/chat", chat.Chat)
}

// RegisterSystemRoutes 注册健康检查路由
func RegisterSystemRoutes(e *gin.Engine, health *handler.HealthHandler) {
	e.GET("/health", health.Health)
	e.GET("/ready", health.Ready)
	e.GET("/live", health.Live)
}
