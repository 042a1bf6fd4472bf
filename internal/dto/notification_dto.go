package dto

import "time"

// NotificationResponse - уведомление пользователя
type NotificationResponse struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	IsRead    bool        `json:"is_read"`
	ReadAt    *time.Time  `json:"read_at,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// UnreadCountResponse - количество непрочитанных уведомлений
type UnreadCountResponse struct {
	Count int64 `json:"count"`
}
