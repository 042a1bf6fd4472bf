package repositories

import (
	"github.com/Znbmels/visa/internal/models"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(db *gorm.DB, payment *models.Payment) error
	FindByUser(db *gorm.DB, userID string) ([]models.Payment, error)
	FindBySubscription(db *gorm.DB, subscriptionID string) ([]models.Payment, error)
}

type PaymentRepositoryImpl struct{}

func NewPaymentRepository() PaymentRepository {
	return &PaymentRepositoryImpl{}
}

func (r *PaymentRepositoryImpl) Create(db *gorm.DB, payment *models.Payment) error {
	return db.Create(payment).Error
}

func (r *PaymentRepositoryImpl) FindByUser(db *gorm.DB, userID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&payments).Error
	return payments, err
}

func (r *PaymentRepositoryImpl) FindBySubscription(db *gorm.DB, subscriptionID string) ([]models.Payment, error) {
	var payments []models.Payment
	err := db.Where("user_subscription_id = ?", subscriptionID).Order("created_at DESC").Find(&payments).Error
	return payments, err
}
