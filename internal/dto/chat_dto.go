package dto

import "time"

// CreateConversationRequest представляет тело запроса создания диалога с поддержкой
type CreateConversationRequest struct {
	Subject string `json:"subject" validate:"required,min=3,max=200"`
	Message string `json:"message" validate:"required,min=1,max=4000"`
}

// SendChatMessageRequest - отправка сообщения в существующий диалог
type SendChatMessageRequest struct {
	Message string `json:"message" validate:"required,min=1,max=4000"`
}

// ConversationResponse - диалог пользователя с поддержкой
type ConversationResponse struct {
	ID          string                `json:"id"`
	UserID      string                `json:"user_id"`
	AdminUserID *string               `json:"admin_user_id,omitempty"`
	Subject     string                `json:"subject"`
	CreatedAt   time.Time             `json:"created_at"`
	Messages    []ChatMessageResponse `json:"messages,omitempty"`
}

// ChatMessageResponse - одно сообщение диалога
type ChatMessageResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Message        string    `json:"message"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}
