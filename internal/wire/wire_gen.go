//go:build !wireinject
// +build !wireinject

// 与 wire.go 中注入器声明一一对应的手工实现，修改 ProviderSet 时需同步更新
package wire

import (
	"context"

	"webgen-ai-api/internal/application/chat"
	"webgen-ai-api/internal/application/completion"
	"webgen-ai-api/internal/config"
	"webgen-ai-api/internal/interfaces/http/handler"
	"webgen-ai-api/internal/interfaces/http/router"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	healthHandler := handler.NewHealthHandler(cfg)
	einoFactory, cleanup, err := ProvideChatModelFactory(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	completionConfig := ProvideRequesterConfig(cfg)
	requester := completion.NewRequester(einoFactory, completionConfig)
	materializer := ProvideMaterializer()
	options := ProvideChatOptions(cfg)
	service := chat.NewService(requester, materializer, options)
	chatHandler := handler.NewChatHandler(service, cfg)
	siteHandler := handler.NewSiteHandler(cfg)
	routerHandlers := &router.RouterHandlers{
		Health: healthHandler,
		Chat:   chatHandler,
		Site:   siteHandler,
	}
	routerRouter := router.NewWithDeps(cfg, routerHandlers)
	return routerRouter, func() {
		cleanup()
	}, nil
}

// InitializeChatService 仅初始化会话轮次服务（用于命令行）
func InitializeChatService(ctx context.Context, cfg *config.Config) (*chat.Service, func(), error) {
	einoFactory, cleanup, err := ProvideChatModelFactory(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	completionConfig := ProvideRequesterConfig(cfg)
	requester := completion.NewRequester(einoFactory, completionConfig)
	materializer := ProvideMaterializer()
	options := ProvideChatOptions(cfg)
	service := chat.NewService(requester, materializer, options)
	return service, func() {
		cleanup()
	}, nil
}
