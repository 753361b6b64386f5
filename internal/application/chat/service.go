// Package chat 编排一次会话轮次：补全 -> 落盘 -> 返回更新后的会话
package chat

import (
	"context"
	"path/filepath"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"webgen-ai-api/internal/application/materialize"
	"webgen-ai-api/internal/domain/entity"
	"webgen-ai-api/pkg/logger"
	"webgen-ai-api/pkg/tracer"
)

// Completer 补全请求器（completion.Requester 实现）
type Completer interface {
	Complete(ctx context.Context, conv entity.Conversation) (string, error)
}

// Materializer 文件落盘器（materialize.Materializer 实现）
type Materializer interface {
	Materialize(ctx context.Context, payload, baseDir string, opts materialize.Options) (*materialize.Result, error)
}

// Options 轮次默认选项
type Options struct {
	BaseDir string
	Isolate bool
}

// TurnResult 一次轮次的结果
type TurnResult struct {
	// Path 实际写入的目录，统一使用 / 分隔
	Path string
	// Conversation 调用方会话追加 assistant 回复后的结果
	Conversation entity.Conversation
	// Files 落盘明细
	Files *materialize.Result
}

// Service 会话轮次服务。服务本身不保存会话，历史由调用方持有。
type Service struct {
	completer    Completer
	materializer Materializer
	opts         Options
}

// NewService 创建会话轮次服务
func NewService(completer Completer, materializer Materializer, opts Options) *Service {
	return &Service{
		completer:    completer,
		materializer: materializer,
		opts:         opts,
	}
}

// Options 返回服务的默认选项
func (s *Service) Options() Options {
	return s.opts
}

// Turn 以服务默认选项执行一次轮次
func (s *Service) Turn(ctx context.Context, conv entity.Conversation) (*TurnResult, error) {
	return s.TurnWith(ctx, conv, s.opts)
}

// TurnWith 执行一次轮次：请求补全，把原文交给落盘器，成功后把 assistant 回复追加到会话。
// 补全或落盘失败时会话不变，错误原样返回。
func (s *Service) TurnWith(ctx context.Context, conv entity.Conversation, opts Options) (*TurnResult, error) {
	ctx, span := tracer.Start(ctx, "chat.turn")
	defer span.End()
	span.SetAttributes(
		attribute.Int("chat.messages", len(conv)),
		attribute.Bool("chat.isolate", opts.Isolate),
	)

	reply, err := s.completer.Complete(ctx, conv)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return nil, err
	}

	files, err := s.materializer.Materialize(ctx, reply, opts.BaseDir, materialize.Options{Isolate: opts.Isolate})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "materialize failed")
		return nil, err
	}

	path := filepath.ToSlash(files.Dir)
	span.SetAttributes(attribute.String("chat.path", path))
	logger.Info(ctx, "chat turn completed", "path", path, "files", len(files.Written))

	return &TurnResult{
		Path:         path,
		Conversation: conv.Append(entity.NewMessage(entity.RoleAssistant, reply)),
		Files:        files,
	}, nil
}
