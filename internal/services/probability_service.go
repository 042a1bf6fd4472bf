package services

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/Znbmels/visa/internal/dto"
	"github.com/Znbmels/visa/internal/logger"
	"github.com/Znbmels/visa/internal/models"
	"github.com/Znbmels/visa/internal/repositories"
	"github.com/Znbmels/visa/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Версия заглушки модели. Меняется при замене на реальную ML-модель.
const probabilityModelVersion = "dummy_v1.0"

// Базовая вероятность и поправки по направлениям. Значения подобраны
// заглушкой до подключения обученной модели.
const defaultProbability = 0.75

var countryProbabilityOverrides = map[string]float64{
	"США":            0.55,
	"Великобритания": 0.60,
	"Канада":         0.62,
	"Германия":       0.80,
	"Казахстан":      0.95,
}

type ProbabilityService interface {
	// Estimate доступен только пользователям с действующей подпиской.
	Estimate(db *gorm.DB, userID string, req *dto.ProbabilityRequest) (*dto.ProbabilityResponse, error)
	GetHistory(db *gorm.DB, userID string, page, pageSize int) ([]models.UserAnalytics, int64, error)
}

type probabilityService struct {
	subscriptionRepo repositories.SubscriptionRepository
	countryRepo      repositories.CountryRepository
	analyticsRepo    repositories.AnalyticsRepository

	now func() time.Time
}

func NewProbabilityService(
	subscriptionRepo repositories.SubscriptionRepository,
	countryRepo repositories.CountryRepository,
	analyticsRepo repositories.AnalyticsRepository,
) ProbabilityService {
	return &probabilityService{
		subscriptionRepo: subscriptionRepo,
		countryRepo:      countryRepo,
		analyticsRepo:    analyticsRepo,
		now:              time.Now,
	}
}

func (s *probabilityService) Estimate(db *gorm.DB, userID string, req *dto.ProbabilityRequest) (*dto.ProbabilityResponse, error) {
	if err := s.requireEntitlement(db, userID); err != nil {
		return nil, err
	}

	country, err := s.countryRepo.FindByID(db, req.CountryID)
	if err != nil {
		if errors.Is(err, repositories.ErrCountryNotFound) {
			return nil, apperrors.ErrCountryNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	probability := defaultProbability
	if override, ok := countryProbabilityOverrides[country.Name]; ok {
		probability = override
	}

	// Предыдущий отказ заметно снижает оценку
	if req.PreviousRefusal {
		probability -= 0.15
		if probability < 0.05 {
			probability = 0.05
		}
	}

	now := s.now()
	s.persistResult(db, userID, req, probability)

	return &dto.ProbabilityResponse{
		Probability:  probability,
		ModelVersion: probabilityModelVersion,
		EvaluatedAt:  now,
	}, nil
}

func (s *probabilityService) GetHistory(db *gorm.DB, userID string, page, pageSize int) ([]models.UserAnalytics, int64, error) {
	offset := (page - 1) * pageSize
	records, total, err := s.analyticsRepo.FindByUser(db, userID, pageSize, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}
	return records, total, nil
}

func (s *probabilityService) requireEntitlement(db *gorm.DB, userID string) error {
	sub, err := s.subscriptionRepo.FindLatestByUser(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return apperrors.ErrSubscriptionRequired
		}
		return apperrors.InternalError(err)
	}

	if !sub.IsCurrentlyEntitled(s.now()) {
		return apperrors.ErrSubscriptionRequired
	}
	return nil
}

// persistResult сохраняет вход и результат оценки. Сбой записи не должен
// ломать ответ пользователю.
func (s *probabilityService) persistResult(db *gorm.DB, userID string, req *dto.ProbabilityRequest, probability float64) {
	raw, err := json.Marshal(req)
	if err != nil {
		logger.WithError(err).Warn("Failed to marshal probability input", "user_id", userID)
		return
	}

	record := &models.UserAnalytics{
		UserID:                 userID,
		InputData:              datatypes.JSON(raw),
		PredictedProbability:   probability,
		PredictionModelVersion: probabilityModelVersion,
	}

	if err := s.analyticsRepo.Create(db, record); err != nil {
		logger.WithError(err).Warn("Failed to persist probability result", "user_id", userID)
	}
}
