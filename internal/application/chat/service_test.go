package chat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webgen-ai-api/internal/application/materialize"
	"webgen-ai-api/internal/domain/entity"
	apperrors "webgen-ai-api/pkg/errors"
)

type stubCompleter struct {
	reply string
	err   error
	got   entity.Conversation
}

func (s *stubCompleter) Complete(_ context.Context, conv entity.Conversation) (string, error) {
	s.got = conv
	return s.reply, s.err
}

// TestService_Turn 验证一次完整轮次：写入文件并追加 assistant 消息
func TestService_Turn(t *testing.T) {
	base := filepath.Join(t.TempDir(), "examples")
	reply := `{"index.html":"<html>hello</html>"}`
	svc := NewService(&stubCompleter{reply: reply}, materialize.New(), Options{BaseDir: base, Isolate: true})

	conv := entity.Conversation{entity.NewMessage(entity.RoleUser, "make a hello world page")}
	res, err := svc.Turn(context.Background(), conv)
	require.NoError(t, err)

	assert.Equal(t, filepath.ToSlash(base), filepath.ToSlash(filepath.Dir(filepath.FromSlash(res.Path))))
	require.Len(t, res.Conversation, 2)
	assert.Equal(t, conv[0], res.Conversation[0])
	assert.Equal(t, entity.NewMessage(entity.RoleAssistant, reply), res.Conversation[1])
	assert.Len(t, conv, 1, "caller conversation must not be mutated")

	b, err := os.ReadFile(filepath.Join(filepath.FromSlash(res.Path), "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<html>hello</html>", string(b))
}

// TestService_MalformedReply 验证非法回复时返回错误且会话不追加
func TestService_MalformedReply(t *testing.T) {
	base := filepath.Join(t.TempDir(), "examples")
	svc := NewService(&stubCompleter{reply: "[1,2,3]"}, materialize.New(), Options{BaseDir: base, Isolate: true})

	res, err := svc.Turn(context.Background(), entity.Conversation{entity.NewMessage(entity.RoleUser, "x")})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.Is(err, apperrors.ErrMalformedPayload))
}

// TestService_CompletionError 验证补全错误原样返回
func TestService_CompletionError(t *testing.T) {
	upstream := errors.New("connection refused")
	svc := NewService(&stubCompleter{err: upstream}, materialize.New(), Options{BaseDir: t.TempDir()})

	_, err := svc.Turn(context.Background(), entity.Conversation{entity.NewMessage(entity.RoleUser, "x")})
	assert.Equal(t, upstream, err)
}

// TestService_TurnWithOverridesOptions 验证单次轮次可覆盖目录与隔离选项
func TestService_TurnWithOverridesOptions(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(&stubCompleter{reply: `{"a.txt":"1"}`}, materialize.New(), Options{BaseDir: "unused", Isolate: true})

	res, err := svc.TurnWith(context.Background(), entity.Conversation{entity.NewMessage(entity.RoleUser, "x")}, Options{BaseDir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.ToSlash(dir), res.Path)
	assert.FileExists(t, filepath.Join(dir, "a.txt"))
}
