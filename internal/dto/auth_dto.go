package dto

// RegisterRequest представляет тело запроса регистрации
// @Description Пароль должен быть не короче 8 символов
type RegisterRequest struct {
	Username       string `json:"username" validate:"required,min=2,max=100"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8"`
	PassportNumber string `json:"passport_number" validate:"required,min=6,max=20"`
	PhoneNumber    string `json:"phone_number" validate:"omitempty,max=20"`
	Region         string `json:"region" validate:"omitempty,max=100"`
}

// LoginRequest представляет тело запроса входа
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest - обновление пары токенов по refresh-токену
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// TokenResponse - пара токенов, выдаваемая при входе и обновлении
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}
