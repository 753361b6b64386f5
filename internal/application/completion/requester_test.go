package completion

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webgen-ai-api/internal/domain/entity"
	apperrors "webgen-ai-api/pkg/errors"
)

type fakeChatModel struct {
	reply   string
	err     error
	gotMsgs []*schema.Message
	gotOpts *model.Options
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.gotMsgs = input
	f.gotOpts = model.GetCommonOptions(&model.Options{}, opts...)
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("stream not supported")
}

type fakeFactory struct {
	model   model.BaseChatModel
	err     error
	gotName string
}

func (f *fakeFactory) Get(_ context.Context, name string) (model.BaseChatModel, error) {
	f.gotName = name
	if f.err != nil {
		return nil, f.err
	}
	return f.model, nil
}

// TestRequester_InjectsSystemPrompt 验证缺少 system 消息时注入固定指令
func TestRequester_InjectsSystemPrompt(t *testing.T) {
	cm := &fakeChatModel{reply: `{"index.html":"<html></html>"}`}
	r := NewRequester(&fakeFactory{model: cm}, Config{Provider: "deepseek", SystemPrompt: "json only", MaxTokens: 1024})

	out, err := r.Complete(context.Background(), entity.Conversation{
		entity.NewMessage(entity.RoleUser, "make a hello world page"),
	})
	require.NoError(t, err)
	assert.Equal(t, `{"index.html":"<html></html>"}`, out)

	require.Len(t, cm.gotMsgs, 2)
	assert.Equal(t, schema.System, cm.gotMsgs[0].Role)
	assert.Equal(t, "json only", cm.gotMsgs[0].Content)
	assert.Equal(t, schema.User, cm.gotMsgs[1].Role)
	assert.Equal(t, "make a hello world page", cm.gotMsgs[1].Content)
}

// TestRequester_KeepsExistingSystemPrompt 验证已有 system 消息时不重复注入
func TestRequester_KeepsExistingSystemPrompt(t *testing.T) {
	cm := &fakeChatModel{reply: "{}"}
	r := NewRequester(&fakeFactory{model: cm}, Config{SystemPrompt: "json only"})

	_, err := r.Complete(context.Background(), entity.Conversation{
		entity.NewMessage(entity.RoleSystem, "custom system"),
		entity.NewMessage(entity.RoleUser, "hi"),
		entity.NewMessage(entity.RoleAssistant, "{}"),
		entity.NewMessage(entity.RoleUser, "again"),
	})
	require.NoError(t, err)

	require.Len(t, cm.gotMsgs, 4)
	assert.Equal(t, "custom system", cm.gotMsgs[0].Content)
	assert.Equal(t, schema.Assistant, cm.gotMsgs[2].Role)
}

// TestRequester_DeterministicOptions 验证温度为 0 且带输出上限
func TestRequester_DeterministicOptions(t *testing.T) {
	cm := &fakeChatModel{reply: "{}"}
	factory := &fakeFactory{model: cm}
	r := NewRequester(factory, Config{Provider: "deepseek", Model: "deepseek-coder", MaxTokens: 2048})

	_, err := r.Complete(context.Background(), entity.Conversation{entity.NewMessage(entity.RoleUser, "x")})
	require.NoError(t, err)

	assert.Equal(t, "deepseek", factory.gotName)
	require.NotNil(t, cm.gotOpts.Temperature)
	assert.Equal(t, float32(0), *cm.gotOpts.Temperature)
	require.NotNil(t, cm.gotOpts.MaxTokens)
	assert.Equal(t, 2048, *cm.gotOpts.MaxTokens)
	require.NotNil(t, cm.gotOpts.Model)
	assert.Equal(t, "deepseek-coder", *cm.gotOpts.Model)
}

// TestRequester_DefaultMaxTokens 验证未配置时使用默认输出上限
func TestRequester_DefaultMaxTokens(t *testing.T) {
	cm := &fakeChatModel{reply: "{}"}
	r := NewRequester(&fakeFactory{model: cm}, Config{})

	_, err := r.Complete(context.Background(), entity.Conversation{entity.NewMessage(entity.RoleUser, "x")})
	require.NoError(t, err)
	require.NotNil(t, cm.gotOpts.MaxTokens)
	assert.Equal(t, defaultMaxTokens, *cm.gotOpts.MaxTokens)
	assert.Nil(t, cm.gotOpts.Model)
}

// TestRequester_RequiresUserMessage 验证没有 user 消息时拒绝请求且不调用上游
func TestRequester_RequiresUserMessage(t *testing.T) {
	factory := &fakeFactory{model: &fakeChatModel{}}
	r := NewRequester(factory, Config{})

	for _, conv := range []entity.Conversation{
		nil,
		{entity.NewMessage(entity.RoleSystem, "only system")},
		{entity.NewMessage(entity.Role("tool"), "x"), entity.NewMessage(entity.RoleUser, "y")},
	} {
		_, err := r.Complete(context.Background(), conv)
		require.Error(t, err)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidConversation))
	}
	assert.Empty(t, factory.gotName)
}

// TestRequester_PropagatesUpstreamError 验证上游错误原样返回
func TestRequester_PropagatesUpstreamError(t *testing.T) {
	upstream := errors.New("429 rate limited")
	r := NewRequester(&fakeFactory{model: &fakeChatModel{err: upstream}}, Config{})

	_, err := r.Complete(context.Background(), entity.Conversation{entity.NewMessage(entity.RoleUser, "x")})
	assert.Same(t, upstream, err)
}

// TestRequester_FactoryError 验证提供商不可用时返回 LLM 提供商错误
func TestRequester_FactoryError(t *testing.T) {
	r := NewRequester(&fakeFactory{err: errors.New("provider x not found")}, Config{Provider: "x"})

	_, err := r.Complete(context.Background(), entity.Conversation{entity.NewMessage(entity.RoleUser, "x")})
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeLLMProviderError))
}

// TestRequester_RejectsNonLeadingSystem 验证 system 消息不在首位或出现多条时拒绝请求
func TestRequester_RejectsNonLeadingSystem(t *testing.T) {
	model := &fakeChatModel{reply: "{}"}
	factory := &fakeFactory{model: model}
	r := NewRequester(factory, Config{SystemPrompt: "sys"})

	cases := map[string]entity.Conversation{
		"system after user": {
			entity.NewMessage(entity.RoleUser, "hi"),
			entity.NewMessage(entity.RoleSystem, "late"),
			entity.NewMessage(entity.RoleSystem, "later"),
		},
		"second system": {
			entity.NewMessage(entity.RoleSystem, "first"),
			entity.NewMessage(entity.RoleUser, "hi"),
			entity.NewMessage(entity.RoleSystem, "again"),
		},
	}
	for name, conv := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := r.Complete(context.Background(), conv)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidConversation))
		})
	}
	assert.Empty(t, factory.gotName)
	assert.Nil(t, model.gotMsgs)
}
