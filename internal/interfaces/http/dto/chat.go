package dto

import (
	"webgen-ai-api/internal/domain/entity"
)

// MessageDTO 对话消息
type MessageDTO struct {
	Role    string `json:"role" binding:"required,oneof=system user assistant"`
	Content string `json:"content"`
}

// ChatRequest POST /chat 请求体
type ChatRequest struct {
	Messages []MessageDTO `json:"messages" binding:"required,min=1,dive"`
}

// ChatResponse POST /chat 响应体
type ChatResponse struct {
	// Path 本轮文件实际写入的目录
	Path string `json:"path"`
	// Response 原始对话加上助手回复
	Response []MessageDTO `json:"response"`
}

// ToConversation 转换为领域对话
func (r *ChatRequest) ToConversation() entity.Conversation {
	conv := make(entity.Conversation, 0, len(r.Messages))
	for _, m := range r.Messages {
		conv = append(conv, entity.NewMessage(entity.Role(m.Role), m.Content))
	}
	return conv
}

// FromConversation 将领域对话转换为 DTO 列表
func FromConversation(conv entity.Conversation) []MessageDTO {
	out := make([]MessageDTO, 0, len(conv))
	for _, m := range conv {
		out = append(out, MessageDTO{Role: string(m.Role), Content: m.Content})
	}
	return out
}
