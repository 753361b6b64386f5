// Package completion 负责把会话发送给上游补全接口并取回原始文本
package completion

import (
	"context"
	"strconv"
	"strings"

	openaiopts "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"webgen-ai-api/internal/domain/entity"
	"webgen-ai-api/internal/domain/service"
	apperrors "webgen-ai-api/pkg/errors"
)

const defaultMaxTokens = 4096

// Config 补全请求配置，进程启动时构造一次，之后只读
type Config struct {
	// Provider 使用的提供商名称，空值表示默认提供商
	Provider string
	// Model 覆盖提供商配置中的模型，空值表示不覆盖
	Model string
	// MaxTokens 输出长度上限
	MaxTokens int
	// SystemPrompt 会话中没有 system 消息时注入
	SystemPrompt string
	// Workflow 指标与追踪中的工作流标签
	Workflow string
}

// Requester 补全请求器：不解析、不校验、不重试，只返回模型原文
type Requester struct {
	factory ChatModelFactory
	cfg     Config
}

// NewRequester 创建补全请求器
func NewRequester(factory ChatModelFactory, cfg Config) *Requester {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaultMaxTokens
	}
	if strings.TrimSpace(cfg.Workflow) == "" {
		cfg.Workflow = service.WorkflowChat
	}
	return &Requester{factory: factory, cfg: cfg}
}

// Complete 发送会话并返回 assistant 回复的原始文本。
// 会话必须至少包含一条 user 消息；上游错误原样返回给调用方。
func (r *Requester) Complete(ctx context.Context, conv entity.Conversation) (string, error) {
	if err := validateConversation(conv); err != nil {
		return "", err
	}

	chatModel, err := r.factory.Get(ctx, r.cfg.Provider)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeLLMProviderError, "llm provider unavailable")
	}

	ctx = service.WithWorkflowProvider(ctx, r.cfg.Workflow, r.cfg.Provider)
	// 不经过 compose 图直接调用时，需要手动挂上全局 callbacks
	ctx = callbacks.InitCallbacks(ctx, &callbacks.RunInfo{
		Name:      r.cfg.Workflow,
		Type:      r.cfg.Provider,
		Component: components.ComponentOfChatModel,
	})
	msgs := toSchemaMessages(conv.WithLeadingSystem(r.cfg.SystemPrompt))

	out, err := chatModel.Generate(ctx, msgs, r.options()...)
	if err != nil {
		return "", err
	}
	if out == nil {
		return "", apperrors.ErrLLMCallFailed.WithDetail("empty completion")
	}
	return out.Content, nil
}

// options 温度固定为 0，要求 JSON 对象输出，限制输出长度
func (r *Requester) options() []model.Option {
	opts := make([]model.Option, 0, 4)
	opts = append(opts,
		model.WithTemperature(0),
		model.WithMaxTokens(r.cfg.MaxTokens),
	)
	if m := strings.TrimSpace(r.cfg.Model); m != "" {
		opts = append(opts, model.WithModel(m))
	}
	opts = append(opts, openaiopts.WithExtraFields(map[string]any{
		"response_format": map[string]any{"type": "json_object"},
	}))
	return opts
}

func validateConversation(conv entity.Conversation) error {
	if len(conv) == 0 {
		return apperrors.ErrInvalidConversation.WithDetail("conversation is empty")
	}
	for i, m := range conv {
		if !m.Role.Valid() {
			return apperrors.ErrInvalidConversation.WithDetail("unknown role at message " + strconv.Itoa(i) + ": " + string(m.Role))
		}
		// 只允许一条 system 消息，且必须位于最前
		if m.Role == entity.RoleSystem && i > 0 {
			return apperrors.ErrInvalidConversation.WithDetail("system message must be the first message, found at " + strconv.Itoa(i))
		}
	}
	if !conv.Has(entity.RoleUser) {
		return apperrors.ErrInvalidConversation.WithDetail("conversation must contain at least one user message")
	}
	return nil
}

func toSchemaMessages(conv entity.Conversation) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(conv))
	for _, m := range conv {
		msgs = append(msgs, &schema.Message{
			Role:    schema.RoleType(m.Role),
			Content: m.Content,
		})
	}
	return msgs
}
