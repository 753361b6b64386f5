package wire

import (
	"context"
	"strings"

	"github.com/google/wire"

	"webgen-ai-api/internal/application/chat"
	"webgen-ai-api/internal/application/completion"
	"webgen-ai-api/internal/application/materialize"
	"webgen-ai-api/internal/config"
	"webgen-ai-api/internal/domain/service"
	"webgen-ai-api/internal/infrastructure/llm"
	"webgen-ai-api/internal/interfaces/http/handler"
	"webgen-ai-api/internal/interfaces/http/router"
	"webgen-ai-api/pkg/logger"
)

// LLMSet 大模型访问提供者集合
var LLMSet = wire.NewSet(
	ProvideChatModelFactory,
	wire.Bind(new(completion.ChatModelFactory), new(*llm.EinoFactory)),
	ProvideRequesterConfig,
	completion.NewRequester,
)

// ChatSet 会话轮次提供者集合
var ChatSet = wire.NewSet(
	ProvideMaterializer,
	ProvideChatOptions,
	chat.NewService,
	wire.Bind(new(chat.Completer), new(*completion.Requester)),
	wire.Bind(new(chat.Materializer), new(*materialize.Materializer)),
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewSiteHandler,
	handler.NewChatHandler,
	wire.Bind(new(handler.ChatService), new(*chat.Service)),
	wire.Struct(new(router.RouterHandlers), "*"),
	router.NewWithDeps,
)

// ProvideChatModelFactory 创建模型工厂并预先构建默认提供商的客户端，配置错误在启动时暴露
func ProvideChatModelFactory(ctx context.Context, cfg *config.Config) (*llm.EinoFactory, func(), error) {
	factory := llm.NewEinoFactory(cfg)
	if _, err := factory.Default(ctx); err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		logger.Debug(ctx, "llm factory released", "provider", cfg.LLM.DefaultProvider)
	}
	return factory, cleanup, nil
}

// ProvideRequesterConfig 从生成配置构造补全请求参数
func ProvideRequesterConfig(cfg *config.Config) completion.Config {
	maxTokens := cfg.Generation.MaxTokens
	if p, ok := cfg.DefaultProviderConfig(); ok && maxTokens <= 0 {
		maxTokens = p.MaxTokens
	}
	return completion.Config{
		Provider:     strings.TrimSpace(cfg.LLM.DefaultProvider),
		MaxTokens:    maxTokens,
		SystemPrompt: cfg.Generation.SystemPrompt,
		Workflow:     service.WorkflowChat,
	}
}

// ProvideMaterializer 创建文件落盘器
func ProvideMaterializer() *materialize.Materializer {
	return materialize.New()
}

// ProvideChatOptions 会话轮次默认落盘选项（CLI 使用；HTTP 处理器始终隔离）
func ProvideChatOptions(cfg *config.Config) chat.Options {
	return chat.Options{
		BaseDir: cfg.Generation.BaseDir,
		Isolate: cfg.Generation.Isolate,
	}
}
