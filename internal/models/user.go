package models

import "time"

type User struct {
	BaseModel
	Username       string   `gorm:"uniqueIndex;not null" json:"username"`
	Email          string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string   `gorm:"not null" json:"-"`
	PassportNumber string   `gorm:"size:20;uniqueIndex;not null" json:"passport_number"`
	PhoneNumber    string   `gorm:"size:15" json:"phone_number"`
	Region         string   `gorm:"size:100" json:"region"`
	Role           UserRole `gorm:"type:varchar(20);default:'user'" json:"role"`

	// Relations
	Subscription  *UserSubscription `gorm:"foreignKey:UserID" json:"subscription,omitempty"`
	RefreshTokens []RefreshToken    `gorm:"foreignKey:UserID" json:"-"`
}

type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"not null;index" json:"user_id"`
	Token     string    `gorm:"not null;uniqueIndex" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}
