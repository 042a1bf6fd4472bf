package models

import (
	"time"
)

// SubscriptionPlan - неизменяемая запись каталога. Создается и правится
// только админом; подписки ссылаются на план, но никогда его не мутируют.
type SubscriptionPlan struct {
	BaseModel
	Name         string  `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description  string  `gorm:"type:text" json:"description"`
	Price        float64 `gorm:"not null" json:"price"`
	DurationDays int     `gorm:"not null" json:"duration_days"`
	IsActive     bool    `gorm:"default:true" json:"is_active"`
}

// UserSubscription - единственный подписочный слот пользователя.
// Гонку двух параллельных заявок закрывает частичный уникальный индекс
// uniq_live_subscription (создается сырым SQL при миграции, предикат с IN
// не выражается через тег): не больше одной живой записи (pending либо
// approved + is_active) на пользователя.
type UserSubscription struct {
	BaseModel
	UserID        string             `gorm:"not null;index" json:"user_id"`
	PlanID        string             `gorm:"not null;index" json:"plan_id"`
	Status        SubscriptionStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	IsActive      bool               `gorm:"default:false" json:"is_active"`
	PaymentStatus PaymentStatus      `gorm:"type:varchar(20);default:'pending'" json:"payment_status"`
	AutoRenew     bool               `gorm:"default:false" json:"auto_renew"`
	StartDate     *time.Time         `json:"start_date,omitempty"`
	EndDate       *time.Time         `json:"end_date,omitempty"`
	AdminNotes    string             `gorm:"type:text" json:"admin_notes"`
	AppliedAt     time.Time          `gorm:"autoCreateTime" json:"applied_at"`
	ProcessedAt   *time.Time         `json:"processed_at,omitempty"`

	// Relations
	Plan SubscriptionPlan `gorm:"foreignKey:PlanID" json:"plan,omitempty"`
}

// IsCurrentlyEntitled - чистая проверка права доступа на момент now.
// Безопасна для записи без дат: обе даты обязаны быть установлены.
func (s *UserSubscription) IsCurrentlyEntitled(now time.Time) bool {
	if s.Status != SubscriptionStatusApproved || !s.IsActive {
		return false
	}
	if s.StartDate == nil || s.EndDate == nil {
		return false
	}
	return !now.Before(*s.StartDate) && !now.After(*s.EndDate)
}

// Payment - платеж моделируется только полем статуса, без интеграции с шлюзом
type Payment struct {
	BaseModel
	UserID             string        `gorm:"not null;index" json:"user_id"`
	UserSubscriptionID string        `gorm:"index" json:"user_subscription_id"`
	Amount             float64       `gorm:"not null" json:"amount"`
	Currency           string        `gorm:"size:3;default:'USD'" json:"currency"`
	Status             PaymentStatus `gorm:"type:varchar(20);default:'pending'" json:"status"`
	PaidAt             *time.Time    `json:"paid_at,omitempty"`
}
