package models

// Conversation - диалог пользователя со службой поддержки
type Conversation struct {
	BaseModel
	UserID      string  `gorm:"not null;index" json:"user_id"`
	AdminUserID *string `gorm:"index" json:"admin_user_id,omitempty"`
	Subject     string  `gorm:"size:255" json:"subject"`

	// Relations
	Messages []ChatMessage `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

type ChatMessage struct {
	BaseModel
	ConversationID string `gorm:"not null;index" json:"conversation_id"`
	SenderID       string `gorm:"not null;index" json:"sender_id"`
	Message        string `gorm:"type:text;not null" json:"message"`
	IsRead         bool   `gorm:"default:false" json:"is_read"`
}
