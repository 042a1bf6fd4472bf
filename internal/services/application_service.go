package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/Znbmels/visa/internal/dto"
	"github.com/Znbmels/visa/internal/email"
	"github.com/Znbmels/visa/internal/logger"
	"github.com/Znbmels/visa/internal/models"
	"github.com/Znbmels/visa/internal/repositories"
	"github.com/Znbmels/visa/pkg/apperrors"

	"gorm.io/gorm"
)

type ApplicationService interface {
	CreateApplication(db *gorm.DB, userID string, req *dto.CreateApplicationRequest) (*dto.ApplicationResponse, error)
	GetApplication(db *gorm.DB, userID, applicationID string, isAdmin bool) (*dto.ApplicationResponse, error)
	GetUserApplications(db *gorm.DB, userID string, page, pageSize int) ([]dto.ApplicationResponse, int64, error)
	UpdateApplication(db *gorm.DB, userID, applicationID string, req *dto.UpdateApplicationRequest) (*dto.ApplicationResponse, error)
	DeleteApplication(db *gorm.DB, userID, applicationID string) error

	// Admin operations
	ListApplications(db *gorm.DB, filter repositories.ApplicationFilter) ([]dto.ApplicationResponse, int64, error)
	ChangeStatus(db *gorm.DB, applicationID string, req *dto.ChangeApplicationStatusRequest) (*dto.ApplicationResponse, error)
	GetStats(db *gorm.DB) (*dto.ApplicationStatsResponse, error)
}

type applicationService struct {
	applicationRepo     repositories.ApplicationRepository
	countryRepo         repositories.CountryRepository
	userRepo            repositories.UserRepository
	notificationService NotificationService

	now func() time.Time
}

func NewApplicationService(
	applicationRepo repositories.ApplicationRepository,
	countryRepo repositories.CountryRepository,
	userRepo repositories.UserRepository,
	notificationService NotificationService,
) ApplicationService {
	return &applicationService{
		applicationRepo:     applicationRepo,
		countryRepo:         countryRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
		now:                 time.Now,
	}
}

func (s *applicationService) CreateApplication(db *gorm.DB, userID string, req *dto.CreateApplicationRequest) (*dto.ApplicationResponse, error) {
	if req.TravelEndDate.Before(req.TravelStartDate) {
		return nil, apperrors.ErrTravelDatesInvalid
	}

	country, err := s.countryRepo.FindByID(db, req.CountryID)
	if err != nil {
		if errors.Is(err, repositories.ErrCountryNotFound) {
			return nil, apperrors.ErrCountryNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	app := &models.VisaApplication{
		UserID:             userID,
		CountryID:          country.ID,
		VisaType:           models.VisaType(req.VisaType),
		PurposeOfTravel:    req.PurposeOfTravel,
		TravelStartDate:    req.TravelStartDate,
		TravelEndDate:      req.TravelEndDate,
		NumberOfApplicants: req.NumberOfApplicants,
		Status:             models.ApplicationStatusPending,
		Documents:          req.Documents,
	}

	if err := s.applicationRepo.Create(db, app); err != nil {
		return nil, apperrors.InternalError(err)
	}

	app.Country = *country
	resp := toApplicationResponse(app)
	return &resp, nil
}

func (s *applicationService) GetApplication(db *gorm.DB, userID, applicationID string, isAdmin bool) (*dto.ApplicationResponse, error) {
	app, err := s.findOwned(db, userID, applicationID, isAdmin)
	if err != nil {
		return nil, err
	}

	resp := toApplicationResponse(app)
	return &resp, nil
}

func (s *applicationService) GetUserApplications(db *gorm.DB, userID string, page, pageSize int) ([]dto.ApplicationResponse, int64, error) {
	offset := (page - 1) * pageSize
	apps, total, err := s.applicationRepo.FindByUser(db, userID, pageSize, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	result := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		result = append(result, toApplicationResponse(&apps[i]))
	}
	return result, total, nil
}

func (s *applicationService) UpdateApplication(db *gorm.DB, userID, applicationID string, req *dto.UpdateApplicationRequest) (*dto.ApplicationResponse, error) {
	app, err := s.findOwned(db, userID, applicationID, false)
	if err != nil {
		return nil, err
	}

	// Редактировать можно только пока заявка не взята в работу
	if app.Status != models.ApplicationStatusPending {
		return nil, apperrors.ErrInvalidStatus("application", "Only pending applications can be edited")
	}

	if req.PurposeOfTravel != nil {
		app.PurposeOfTravel = *req.PurposeOfTravel
	}
	if req.TravelStartDate != nil {
		app.TravelStartDate = *req.TravelStartDate
	}
	if req.TravelEndDate != nil {
		app.TravelEndDate = *req.TravelEndDate
	}
	if req.NumberOfApplicants != nil {
		app.NumberOfApplicants = *req.NumberOfApplicants
	}
	if req.Documents != nil {
		app.Documents = req.Documents
	}

	if app.TravelEndDate.Before(app.TravelStartDate) {
		return nil, apperrors.ErrTravelDatesInvalid
	}

	if err := s.applicationRepo.Update(db, app); err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := toApplicationResponse(app)
	return &resp, nil
}

func (s *applicationService) DeleteApplication(db *gorm.DB, userID, applicationID string) error {
	app, err := s.findOwned(db, userID, applicationID, false)
	if err != nil {
		return err
	}

	if app.Status != models.ApplicationStatusPending {
		return apperrors.ErrInvalidStatus("application", "Only pending applications can be deleted")
	}

	if err := s.applicationRepo.Delete(db, applicationID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *applicationService) ListApplications(db *gorm.DB, filter repositories.ApplicationFilter) ([]dto.ApplicationResponse, int64, error) {
	apps, total, err := s.applicationRepo.FindWithFilter(db, filter)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	result := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		result = append(result, toApplicationResponse(&apps[i]))
	}
	return result, total, nil
}

// ChangeStatus переводит заявку в новый статус. Уведомления (запись в БД,
// WebSocket, письмо) отправляются после успешного обновления; их сбои
// логируются и не откатывают смену статуса.
func (s *applicationService) ChangeStatus(db *gorm.DB, applicationID string, req *dto.ChangeApplicationStatusRequest) (*dto.ApplicationResponse, error) {
	newStatus := models.ApplicationStatus(req.Status)
	if !models.IsValidApplicationStatus(newStatus) {
		return nil, apperrors.ErrInvalidApplicationStatus
	}

	app, err := s.applicationRepo.FindByID(db, applicationID)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	var decisionDate *time.Time
	if newStatus == models.ApplicationStatusApproved || newStatus == models.ApplicationStatusRejected {
		now := s.now()
		decisionDate = &now
	}

	if err := s.applicationRepo.UpdateStatus(db, applicationID, newStatus, req.AdminComments, decisionDate); err != nil {
		return nil, apperrors.InternalError(err)
	}

	app.Status = newStatus
	if req.AdminComments != "" {
		app.AdminComments = req.AdminComments
	}
	app.DecisionDate = decisionDate

	s.notifyStatusChange(db, app)

	resp := toApplicationResponse(app)
	return &resp, nil
}

func (s *applicationService) GetStats(db *gorm.DB) (*dto.ApplicationStatsResponse, error) {
	stats, err := s.applicationRepo.GetStats(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.ApplicationStatsResponse{
		Total:    stats.Total,
		Pending:  stats.Pending,
		InReview: stats.InReview,
		Approved: stats.Approved,
		Rejected: stats.Rejected,
	}, nil
}

func (s *applicationService) findOwned(db *gorm.DB, userID, applicationID string, isAdmin bool) (*models.VisaApplication, error) {
	app, err := s.applicationRepo.FindByID(db, applicationID)
	if err != nil {
		if errors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	// Чужая заявка для пользователя неотличима от несуществующей
	if !isAdmin && app.UserID != userID {
		return nil, apperrors.ErrApplicationNotFound
	}

	return app, nil
}

func (s *applicationService) notifyStatusChange(db *gorm.DB, app *models.VisaApplication) {
	message := fmt.Sprintf("Статус вашей заявки на визу (%s) изменен на: %s", app.Country.Name, app.Status)

	err := s.notificationService.Notify(db, app.UserID, NotificationApplicationStatus, message, map[string]interface{}{
		"application_id": app.ID,
		"status":         string(app.Status),
	})
	if err != nil {
		logger.WithError(err).Warn("Failed to create status change notification", "application_id", app.ID)
	}

	user, err := s.userRepo.FindByID(db, app.UserID)
	if err != nil {
		logger.WithError(err).Warn("Failed to load user for status change email", "application_id", app.ID)
		return
	}

	s.notificationService.SendEmail(user.Email, "Статус визовой заявки изменен", email.TemplateApplicationStatus, email.TemplateData{
		"Country":  app.Country.Name,
		"VisaType": string(app.VisaType),
		"Status":   string(app.Status),
		"Comments": app.AdminComments,
	})
}

func toApplicationResponse(app *models.VisaApplication) dto.ApplicationResponse {
	resp := dto.ApplicationResponse{
		ID:                 app.ID,
		UserID:             app.UserID,
		VisaType:           string(app.VisaType),
		PurposeOfTravel:    app.PurposeOfTravel,
		TravelStartDate:    app.TravelStartDate,
		TravelEndDate:      app.TravelEndDate,
		NumberOfApplicants: app.NumberOfApplicants,
		Status:             string(app.Status),
		Documents:          app.Documents,
		SubmissionDate:     app.SubmissionDate,
		DecisionDate:       app.DecisionDate,
		AdminComments:      app.AdminComments,
	}

	if app.Country.ID != "" {
		country := toCountryResponse(&app.Country)
		resp.Country = &country
	}

	return resp
}
