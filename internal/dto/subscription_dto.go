package dto

import "time"

// SubscriptionPlanResponse — DTO для плана подписки
type SubscriptionPlanResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	Price        float64 `json:"price"`
	DurationDays int     `json:"duration_days"`
	IsActive     bool    `json:"is_active"`
}

// CreatePlanRequest - создание плана подписки (только админ)
type CreatePlanRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=100"`
	Description  string  `json:"description" validate:"omitempty,max=1000"`
	Price        float64 `json:"price" validate:"min=0"`
	DurationDays int     `json:"duration_days" validate:"required,min=1"`
	IsActive     *bool   `json:"is_active"`
}

// UpdatePlanRequest - частичное обновление плана (только админ)
type UpdatePlanRequest struct {
	Name         *string  `json:"name" validate:"omitempty,min=2,max=100"`
	Description  *string  `json:"description" validate:"omitempty,max=1000"`
	Price        *float64 `json:"price" validate:"omitempty,min=0"`
	DurationDays *int     `json:"duration_days" validate:"omitempty,min=1"`
	IsActive     *bool    `json:"is_active"`
}

// RequestSubscriptionRequest представляет заявку пользователя на подписку
// @Description Пользователь может иметь не больше одной живой (pending или approved) подписки
type RequestSubscriptionRequest struct {
	PlanID    string `json:"plan_id" validate:"required,uuid"`
	AutoRenew bool   `json:"auto_renew"`
}

// ProcessSubscriptionRequest - решение админа по заявке (approve/reject)
type ProcessSubscriptionRequest struct {
	AdminNotes string `json:"admin_notes" validate:"omitempty,max=2000"`
}

// UserSubscriptionResponse — DTO для подписки пользователя
type UserSubscriptionResponse struct {
	ID            string                    `json:"id"`
	UserID        string                    `json:"user_id"`
	Plan          *SubscriptionPlanResponse `json:"plan,omitempty"`
	Status        string                    `json:"status"`
	IsActive      bool                      `json:"is_active"`
	PaymentStatus string                    `json:"payment_status"`
	AutoRenew     bool                      `json:"auto_renew"`
	StartDate     *time.Time                `json:"start_date,omitempty"`
	EndDate       *time.Time                `json:"end_date,omitempty"`
	AppliedAt     time.Time                 `json:"applied_at"`
	ProcessedAt   *time.Time                `json:"processed_at,omitempty"`
	AdminNotes    string                    `json:"admin_notes,omitempty"`
}

// PaymentResponse - платеж по подписке
type PaymentResponse struct {
	ID                 string     `json:"id"`
	UserSubscriptionID string     `json:"user_subscription_id"`
	Amount             float64    `json:"amount"`
	Currency           string     `json:"currency"`
	Status             string     `json:"status"`
	PaidAt             *time.Time `json:"paid_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// EntitlementResponse - текущий премиум-статус пользователя
type EntitlementResponse struct {
	IsPremium    bool                      `json:"is_premium"`
	Subscription *UserSubscriptionResponse `json:"subscription,omitempty"`
}
