package models

// Document - метаданные загруженного файла пользователя
type Document struct {
	BaseModel
	UserID      string `gorm:"not null;index" json:"user_id"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Path        string `gorm:"size:512;not null" json:"path"`
	Size        int64  `json:"size"`
	ContentType string `gorm:"size:100" json:"content_type"`
}
