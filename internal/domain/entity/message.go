package entity

// Message 会话中的一条消息
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation 有序的消息序列，由调用方（HTTP 客户端或交互式 CLI）持有
type Conversation []Message

// NewMessage 创建消息
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// Has 判断会话中是否存在指定角色的消息
func (c Conversation) Has(role Role) bool {
	for _, m := range c {
		if m.Role == role {
			return true
		}
	}
	return false
}

// Append 返回追加消息后的新会话，不修改原切片的底层数组
func (c Conversation) Append(msgs ...Message) Conversation {
	out := make(Conversation, 0, len(c)+len(msgs))
	out = append(out, c...)
	return append(out, msgs...)
}

// WithLeadingSystem 会话中没有 system 消息时，在最前面插入一条
func (c Conversation) WithLeadingSystem(prompt string) Conversation {
	if c.Has(RoleSystem) || prompt == "" {
		return c
	}
	return Conversation{NewMessage(RoleSystem, prompt)}.Append(c...)
}
