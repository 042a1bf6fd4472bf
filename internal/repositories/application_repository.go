package repositories

import (
	"errors"
	"time"

	"github.com/Znbmels/visa/internal/models"

	"gorm.io/gorm"
)

var ErrApplicationNotFound = errors.New("visa application not found")

type ApplicationFilter struct {
	UserID    string
	CountryID string
	Status    models.ApplicationStatus
	VisaType  models.VisaType
	Page      int
	PageSize  int
}

type ApplicationRepository interface {
	Create(db *gorm.DB, app *models.VisaApplication) error
	FindByID(db *gorm.DB, id string) (*models.VisaApplication, error)
	FindByUser(db *gorm.DB, userID string, limit, offset int) ([]models.VisaApplication, int64, error)
	FindWithFilter(db *gorm.DB, filter ApplicationFilter) ([]models.VisaApplication, int64, error)
	Update(db *gorm.DB, app *models.VisaApplication) error
	UpdateStatus(db *gorm.DB, id string, status models.ApplicationStatus, adminComments string, decisionDate *time.Time) error
	Delete(db *gorm.DB, id string) error
	GetStats(db *gorm.DB) (*models.ApplicationStats, error)
}

type ApplicationRepositoryImpl struct{}

func NewApplicationRepository() ApplicationRepository {
	return &ApplicationRepositoryImpl{}
}

func (r *ApplicationRepositoryImpl) Create(db *gorm.DB, app *models.VisaApplication) error {
	return db.Create(app).Error
}

func (r *ApplicationRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.VisaApplication, error) {
	var app models.VisaApplication
	err := db.Preload("Country").First(&app, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) FindByUser(db *gorm.DB, userID string, limit, offset int) ([]models.VisaApplication, int64, error) {
	var apps []models.VisaApplication
	var total int64

	query := db.Model(&models.VisaApplication{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Country").
		Order("submission_date DESC").
		Limit(limit).Offset(offset).
		Find(&apps).Error
	return apps, total, err
}

func (r *ApplicationRepositoryImpl) FindWithFilter(db *gorm.DB, filter ApplicationFilter) ([]models.VisaApplication, int64, error) {
	var apps []models.VisaApplication
	var total int64

	query := db.Model(&models.VisaApplication{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.CountryID != "" {
		query = query.Where("country_id = ?", filter.CountryID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.VisaType != "" {
		query = query.Where("visa_type = ?", filter.VisaType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.PageSize
	err := query.Preload("Country").
		Order("submission_date DESC").
		Limit(filter.PageSize).Offset(offset).
		Find(&apps).Error
	return apps, total, err
}

func (r *ApplicationRepositoryImpl) Update(db *gorm.DB, app *models.VisaApplication) error {
	result := db.Model(app).Updates(map[string]interface{}{
		"purpose_of_travel":    app.PurposeOfTravel,
		"travel_start_date":    app.TravelStartDate,
		"travel_end_date":      app.TravelEndDate,
		"number_of_applicants": app.NumberOfApplicants,
		"documents":            app.Documents,
		"updated_at":           time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationRepositoryImpl) UpdateStatus(db *gorm.DB, id string, status models.ApplicationStatus, adminComments string, decisionDate *time.Time) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if adminComments != "" {
		updates["admin_comments"] = adminComments
	}
	if decisionDate != nil {
		updates["decision_date"] = *decisionDate
	}

	result := db.Model(&models.VisaApplication{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.VisaApplication{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationRepositoryImpl) GetStats(db *gorm.DB) (*models.ApplicationStats, error) {
	stats := &models.ApplicationStats{}

	if err := db.Model(&models.VisaApplication{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	type statusCount struct {
		Status models.ApplicationStatus
		Count  int64
	}
	var counts []statusCount
	err := db.Model(&models.VisaApplication{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	for _, c := range counts {
		switch c.Status {
		case models.ApplicationStatusPending:
			stats.Pending = c.Count
		case models.ApplicationStatusInReview:
			stats.InReview = c.Count
		case models.ApplicationStatusApproved:
			stats.Approved = c.Count
		case models.ApplicationStatusRejected:
			stats.Rejected = c.Count
		}
	}

	return stats, nil
}
