// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"webgen-ai-api/internal/config"
	"webgen-ai-api/internal/interfaces/http/handler"
	"webgen-ai-api/internal/interfaces/http/middleware"
)

// Router HTTP 路由器
type Router struct {
	engine *gin.Engine
	cfg    *config.Config
}

// RouterHandlers 路由依赖的处理器集合
type RouterHandlers struct {
	Health *handler.HealthHandler
	Chat   *handler.ChatHandler
	Site   *handler.SiteHandler
}

// NewWithDeps 创建路由器并注册全部路由
func NewWithDeps(cfg *config.Config, h *RouterHandlers) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine: gin.New(),
		cfg:    cfg,
	}

	r.setupMiddleware()

	RegisterSystemRoutes(r.engine, h.Health)
	if cfg.Observability.Metrics.Enabled {
		r.engine.GET(cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}
	RegisterSiteRoutes(r.engine, cfg.Static.Dir, h.Site, h.Chat)

	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics())
	}
	r.engine.Use(middleware.AccessLog())
}
