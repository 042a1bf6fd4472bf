package dto

import "time"

// UserResponse - публичное представление пользователя (без хеша пароля)
type UserResponse struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	PassportNumber string    `json:"passport_number"`
	PhoneNumber    string    `json:"phone_number,omitempty"`
	Region         string    `json:"region,omitempty"`
	Role           string    `json:"role"`
	IsPremium      bool      `json:"is_premium"`
	CreatedAt      time.Time `json:"created_at"`
}

// UpdateProfileRequest - частичное обновление профиля
type UpdateProfileRequest struct {
	Username    *string `json:"username" validate:"omitempty,min=2,max=100"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=20"`
	Region      *string `json:"region" validate:"omitempty,max=100"`
}

// ChangePasswordRequest - смена пароля текущего пользователя
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}
