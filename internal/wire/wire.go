//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"webgen-ai-api/internal/application/chat"
	"webgen-ai-api/internal/config"
	"webgen-ai-api/internal/interfaces/http/router"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		LLMSet,
		ChatSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeChatService 仅初始化会话轮次服务（用于命令行）
func InitializeChatService(ctx context.Context, cfg *config.Config) (*chat.Service, func(), error) {
	wire.Build(
		LLMSet,
		ChatSet,
	)
	return nil, nil, nil
}
