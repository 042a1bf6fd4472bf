package repositories

import (
	"github.com/Znbmels/visa/internal/models"

	"gorm.io/gorm"
)

type AnalyticsRepository interface {
	Create(db *gorm.DB, record *models.UserAnalytics) error
	FindByUser(db *gorm.DB, userID string, limit, offset int) ([]models.UserAnalytics, int64, error)
	CountByModelVersion(db *gorm.DB, version string) (int64, error)
}

type AnalyticsRepositoryImpl struct{}

func NewAnalyticsRepository() AnalyticsRepository {
	return &AnalyticsRepositoryImpl{}
}

func (r *AnalyticsRepositoryImpl) Create(db *gorm.DB, record *models.UserAnalytics) error {
	return db.Create(record).Error
}

func (r *AnalyticsRepositoryImpl) FindByUser(db *gorm.DB, userID string, limit, offset int) ([]models.UserAnalytics, int64, error) {
	var records []models.UserAnalytics
	var total int64

	query := db.Model(&models.UserAnalytics{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&records).Error
	return records, total, err
}

func (r *AnalyticsRepositoryImpl) CountByModelVersion(db *gorm.DB, version string) (int64, error) {
	var count int64
	err := db.Model(&models.UserAnalytics{}).
		Where("prediction_model_version = ?", version).
		Count(&count).Error
	return count, err
}
