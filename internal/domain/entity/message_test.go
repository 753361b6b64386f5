package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRole_Valid 验证角色枚举
func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleSystem.Valid())
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAssistant.Valid())
	assert.False(t, Role("tool").Valid())
	assert.False(t, Role("").Valid())
}

// TestConversation_Append 验证追加不修改原会话
func TestConversation_Append(t *testing.T) {
	base := make(Conversation, 1, 4)
	base[0] = NewMessage(RoleUser, "hi")

	next := base.Append(NewMessage(RoleAssistant, "{}"))
	other := base.Append(NewMessage(RoleAssistant, "[]"))

	assert.Len(t, base, 1)
	assert.Equal(t, "{}", next[1].Content)
	assert.Equal(t, "[]", other[1].Content)
}

// TestConversation_WithLeadingSystem 验证 system 消息注入
func TestConversation_WithLeadingSystem(t *testing.T) {
	conv := Conversation{NewMessage(RoleUser, "make a page")}

	injected := conv.WithLeadingSystem("only json")
	assert.Len(t, injected, 2)
	assert.Equal(t, RoleSystem, injected[0].Role)
	assert.Equal(t, "only json", injected[0].Content)
	assert.Equal(t, conv[0], injected[1])

	withSystem := Conversation{NewMessage(RoleSystem, "custom"), NewMessage(RoleUser, "x")}
	assert.Equal(t, withSystem, withSystem.WithLeadingSystem("only json"))

	assert.Equal(t, conv, conv.WithLeadingSystem(""))
}
