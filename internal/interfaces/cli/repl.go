// Package cli 提供交互式命令行会话
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"webgen-ai-api/internal/application/chat"
	"webgen-ai-api/internal/domain/entity"
	apperrors "webgen-ai-api/pkg/errors"
	"webgen-ai-api/pkg/logger"
)

const (
	prompt = "You: "

	// 单行输入上限，粘贴大段需求时够用
	maxLineBytes = 1 << 20
)

// Turner 会话轮次执行器（chat.Service 实现）
type Turner interface {
	TurnWith(ctx context.Context, conv entity.Conversation, opts chat.Options) (*chat.TurnResult, error)
}

// REPL 交互式会话：会话历史保存在内存中，每轮生成的文件写入 opts 指定的目录
type REPL struct {
	svc  Turner
	opts chat.Options
	conv entity.Conversation
}

// NewREPL 创建交互式会话
func NewREPL(svc Turner, opts chat.Options) *REPL {
	return &REPL{svc: svc, opts: opts}
}

// Conversation 返回当前会话历史的副本
func (r *REPL) Conversation() entity.Conversation {
	return r.conv.Append()
}

// Run 从 in 逐行读取用户输入直到 exit/quit、EOF 或 ctx 取消。
// 单轮失败只报告错误，失败的用户消息不进入历史，会话继续。
func (r *REPL) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(out, "Bye.")
			return nil
		}

		r.turn(ctx, line, out)
	}
}

func (r *REPL) turn(ctx context.Context, line string, out io.Writer) {
	conv := r.conv.Append(entity.NewMessage(entity.RoleUser, line))

	res, err := r.svc.TurnWith(ctx, conv, r.opts)
	if err != nil {
		logger.Warn(ctx, "cli turn failed", "error", err.Error())
		fmt.Fprintln(out, describeError(err))
		return
	}

	r.conv = res.Conversation
	fmt.Fprintf(out, "Files written to %s\n", res.Path)
	if res.Files == nil {
		return
	}
	for _, name := range res.Files.Written {
		fmt.Fprintf(out, "  %s\n", name)
	}
	for _, b := range res.Files.Backups {
		fmt.Fprintf(out, "  (previous version kept as %s)\n", b.Path)
	}
}

// describeError 生成面向用户的错误说明
func describeError(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrMalformedPayload):
		return "Invalid response format from assistant: " + err.Error()
	case apperrors.HasCode(err, apperrors.CodeInvalidConversation):
		return "Invalid conversation: " + err.Error()
	case apperrors.HasCode(err, apperrors.CodeFilesystem):
		return "Failed to write files: " + err.Error()
	default:
		return "Request failed: " + err.Error()
	}
}
