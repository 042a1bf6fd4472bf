package repositories

import (
	"errors"
	"time"

	"github.com/Znbmels/visa/internal/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

var (
	ErrPlanNotFound           = errors.New("subscription plan not found")
	ErrSubscriptionNotFound   = errors.New("subscription not found")
	ErrLiveSubscriptionExists = errors.New("user already has a live subscription")
	ErrSubscriptionStateStale = errors.New("subscription is not in the expected state")
)

type SubscriptionRepository interface {
	// Plan operations
	FindPlans(db *gorm.DB, onlyActive bool) ([]models.SubscriptionPlan, error)
	FindPlanByID(db *gorm.DB, id string) (*models.SubscriptionPlan, error)
	FindPlanByName(db *gorm.DB, name string) (*models.SubscriptionPlan, error)
	CreatePlan(db *gorm.DB, plan *models.SubscriptionPlan) error
	UpdatePlan(db *gorm.DB, plan *models.SubscriptionPlan) error
	DeactivatePlan(db *gorm.DB, id string) error

	// User subscription operations
	CreateSubscription(db *gorm.DB, sub *models.UserSubscription) error
	FindSubscriptionByID(db *gorm.DB, id string) (*models.UserSubscription, error)
	FindLatestByUser(db *gorm.DB, userID string) (*models.UserSubscription, error)
	FindLiveByUser(db *gorm.DB, userID string) (*models.UserSubscription, error)
	FindByStatus(db *gorm.DB, status models.SubscriptionStatus, limit, offset int) ([]models.UserSubscription, int64, error)

	// Переходы статусов. Каждый UPDATE ключуется на текущий статус,
	// RowsAffected == 0 означает, что запись уже в другом состоянии.
	ApproveSubscription(db *gorm.DB, id string, startDate, endDate, processedAt time.Time, adminNotes string) error
	RejectSubscription(db *gorm.DB, id string, processedAt time.Time, adminNotes string) error
	DeactivateSubscription(db *gorm.DB, id string) error
	MarkExpired(db *gorm.DB, id string) error
	FindExpiredActive(db *gorm.DB, now time.Time) ([]models.UserSubscription, error)

	CountByStatus(db *gorm.DB, status models.SubscriptionStatus) (int64, error)
	CountActivePlanUsers(db *gorm.DB, planID string) (int64, error)
}

type SubscriptionRepositoryImpl struct{}

func NewSubscriptionRepository() SubscriptionRepository {
	return &SubscriptionRepositoryImpl{}
}

// Plan operations

func (r *SubscriptionRepositoryImpl) FindPlans(db *gorm.DB, onlyActive bool) ([]models.SubscriptionPlan, error) {
	var plans []models.SubscriptionPlan
	query := db.Order("price ASC")
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&plans).Error
	return plans, err
}

func (r *SubscriptionRepositoryImpl) FindPlanByID(db *gorm.DB, id string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := db.First(&plan, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *SubscriptionRepositoryImpl) FindPlanByName(db *gorm.DB, name string) (*models.SubscriptionPlan, error) {
	var plan models.SubscriptionPlan
	err := db.First(&plan, "name = ?", name).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

func (r *SubscriptionRepositoryImpl) CreatePlan(db *gorm.DB, plan *models.SubscriptionPlan) error {
	return db.Create(plan).Error
}

func (r *SubscriptionRepositoryImpl) UpdatePlan(db *gorm.DB, plan *models.SubscriptionPlan) error {
	result := db.Model(plan).Updates(map[string]interface{}{
		"name":          plan.Name,
		"description":   plan.Description,
		"price":         plan.Price,
		"duration_days": plan.DurationDays,
		"is_active":     plan.IsActive,
		"updated_at":    time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) DeactivatePlan(db *gorm.DB, id string) error {
	result := db.Model(&models.SubscriptionPlan{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_active":  false,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}

// User subscription operations

// CreateSubscription вставляет заявку на подписку. Частичный уникальный индекс
// uniq_live_subscription гарантирует не больше одной живой (pending либо
// approved+is_active) подписки на пользователя даже при конкурентных запросах.
func (r *SubscriptionRepositoryImpl) CreateSubscription(db *gorm.DB, sub *models.UserSubscription) error {
	if err := db.Create(sub).Error; err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrLiveSubscriptionExists
		}
		return err
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) FindSubscriptionByID(db *gorm.DB, id string) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := db.Preload("Plan").First(&sub, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) FindLatestByUser(db *gorm.DB, userID string) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := db.Preload("Plan").
		Where("user_id = ?", userID).
		Order("applied_at DESC").
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

// FindLiveByUser возвращает живую подписку пользователя: pending-заявку либо
// approved с is_active. По индексу uniq_live_subscription такая максимум одна.
func (r *SubscriptionRepositoryImpl) FindLiveByUser(db *gorm.DB, userID string) (*models.UserSubscription, error) {
	var sub models.UserSubscription
	err := db.Preload("Plan").
		Where("user_id = ? AND (status = ? OR (status = ? AND is_active = ?))",
			userID,
			models.SubscriptionStatusPending,
			models.SubscriptionStatusApproved,
			true).
		First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepositoryImpl) FindByStatus(db *gorm.DB, status models.SubscriptionStatus, limit, offset int) ([]models.UserSubscription, int64, error) {
	var subs []models.UserSubscription
	var total int64

	query := db.Model(&models.UserSubscription{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Plan").
		Order("applied_at DESC").
		Limit(limit).Offset(offset).
		Find(&subs).Error
	return subs, total, err
}

// Переходы статусов

func (r *SubscriptionRepositoryImpl) ApproveSubscription(db *gorm.DB, id string, startDate, endDate, processedAt time.Time, adminNotes string) error {
	result := db.Model(&models.UserSubscription{}).
		Where("id = ? AND status = ?", id, models.SubscriptionStatusPending).
		Updates(map[string]interface{}{
			"status":       models.SubscriptionStatusApproved,
			"is_active":    true,
			"start_date":   startDate,
			"end_date":     endDate,
			"processed_at": processedAt,
			"admin_notes":  adminNotes,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionStateStale
	}
	return nil
}

func (r *SubscriptionRepositoryImpl) RejectSubscription(db *gorm.DB, id string, processedAt time.Time, adminNotes string) error {
	result := db.Model(&models.UserSubscription{}).
		Where("id = ? AND status = ?", id, models.SubscriptionStatusPending).
		Updates(map[string]interface{}{
			"status":       models.SubscriptionStatusRejected,
			"is_active":    false,
			"processed_at": processedAt,
			"admin_notes":  adminNotes,
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionStateStale
	}
	return nil
}

// DeactivateSubscription - отмена пользователем: статус остается approved,
// гаснут только is_active и auto_renew.
func (r *SubscriptionRepositoryImpl) DeactivateSubscription(db *gorm.DB, id string) error {
	result := db.Model(&models.UserSubscription{}).
		Where("id = ? AND status = ? AND is_active = ?", id, models.SubscriptionStatusApproved, true).
		Updates(map[string]interface{}{
			"is_active":  false,
			"auto_renew": false,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionStateStale
	}
	return nil
}

// MarkExpired переводит approved-подписку в expired. Условие на is_active
// сериализует воркер с параллельной отменой: отмененную запись уже не трогаем.
func (r *SubscriptionRepositoryImpl) MarkExpired(db *gorm.DB, id string) error {
	result := db.Model(&models.UserSubscription{}).
		Where("id = ? AND status = ? AND is_active = ?", id, models.SubscriptionStatusApproved, true).
		Updates(map[string]interface{}{
			"status":     models.SubscriptionStatusExpired,
			"is_active":  false,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionStateStale
	}
	return nil
}

// FindExpiredActive возвращает одобренные активные подписки, чей срок уже вышел.
func (r *SubscriptionRepositoryImpl) FindExpiredActive(db *gorm.DB, now time.Time) ([]models.UserSubscription, error) {
	var subs []models.UserSubscription
	err := db.Preload("Plan").
		Where("status = ? AND is_active = ? AND end_date IS NOT NULL AND end_date < ?",
			models.SubscriptionStatusApproved, true, now).
		Find(&subs).Error
	return subs, err
}

func (r *SubscriptionRepositoryImpl) CountByStatus(db *gorm.DB, status models.SubscriptionStatus) (int64, error) {
	var count int64
	err := db.Model(&models.UserSubscription{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *SubscriptionRepositoryImpl) CountActivePlanUsers(db *gorm.DB, planID string) (int64, error) {
	var count int64
	err := db.Model(&models.UserSubscription{}).
		Where("plan_id = ? AND status = ? AND is_active = ?", planID, models.SubscriptionStatusApproved, true).
		Count(&count).Error
	return count, err
}
