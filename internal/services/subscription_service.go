package services

import (
	"errors"
	"time"

	"github.com/Znbmels/visa/internal/dto"
	"github.com/Znbmels/visa/internal/email"
	"github.com/Znbmels/visa/internal/logger"
	"github.com/Znbmels/visa/internal/models"
	"github.com/Znbmels/visa/internal/repositories"
	"github.com/Znbmels/visa/pkg/apperrors"

	"gorm.io/gorm"
)

type SubscriptionService interface {
	// Plan operations
	ListPlans(db *gorm.DB, includeInactive bool) ([]dto.SubscriptionPlanResponse, error)
	GetPlan(db *gorm.DB, planID string) (*dto.SubscriptionPlanResponse, error)
	CreatePlan(db *gorm.DB, req *dto.CreatePlanRequest) (*dto.SubscriptionPlanResponse, error)
	UpdatePlan(db *gorm.DB, planID string, req *dto.UpdatePlanRequest) (*dto.SubscriptionPlanResponse, error)
	DeactivatePlan(db *gorm.DB, planID string) error

	// User subscription lifecycle
	RequestSubscription(db *gorm.DB, userID string, req *dto.RequestSubscriptionRequest) (*dto.UserSubscriptionResponse, error)
	GetMySubscription(db *gorm.DB, userID string) (*dto.UserSubscriptionResponse, error)
	GetEntitlement(db *gorm.DB, userID string) (*dto.EntitlementResponse, error)
	CancelSubscription(db *gorm.DB, userID string) (*dto.UserSubscriptionResponse, error)
	ListPayments(db *gorm.DB, userID string) ([]dto.PaymentResponse, error)

	// Admin operations
	ListRequests(db *gorm.DB, status models.SubscriptionStatus, page, pageSize int) ([]dto.UserSubscriptionResponse, int64, error)
	ApproveSubscription(db *gorm.DB, subscriptionID, adminNotes string) (*dto.UserSubscriptionResponse, error)
	RejectSubscription(db *gorm.DB, subscriptionID, adminNotes string) (*dto.UserSubscriptionResponse, error)

	// EvaluateExpiry переводит просроченные approved-подписки в expired.
	// Вызывается фоновым воркером; безопасна для повторного запуска.
	EvaluateExpiry(db *gorm.DB) (int, error)
}

type subscriptionService struct {
	subscriptionRepo    repositories.SubscriptionRepository
	paymentRepo         repositories.PaymentRepository
	userRepo            repositories.UserRepository
	notificationService NotificationService

	// now подменяется в тестах фиксированными часами
	now func() time.Time
}

func NewSubscriptionService(
	subscriptionRepo repositories.SubscriptionRepository,
	paymentRepo repositories.PaymentRepository,
	userRepo repositories.UserRepository,
	notificationService NotificationService,
) SubscriptionService {
	return &subscriptionService{
		subscriptionRepo:    subscriptionRepo,
		paymentRepo:         paymentRepo,
		userRepo:            userRepo,
		notificationService: notificationService,
		now:                 time.Now,
	}
}

// Plan operations

func (s *subscriptionService) ListPlans(db *gorm.DB, includeInactive bool) ([]dto.SubscriptionPlanResponse, error) {
	plans, err := s.subscriptionRepo.FindPlans(db, !includeInactive)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.SubscriptionPlanResponse, 0, len(plans))
	for i := range plans {
		result = append(result, toPlanResponse(&plans[i]))
	}
	return result, nil
}

func (s *subscriptionService) GetPlan(db *gorm.DB, planID string) (*dto.SubscriptionPlanResponse, error) {
	plan, err := s.subscriptionRepo.FindPlanByID(db, planID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlanNotFound) {
			return nil, apperrors.ErrPlanNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	resp := toPlanResponse(plan)
	return &resp, nil
}

func (s *subscriptionService) CreatePlan(db *gorm.DB, req *dto.CreatePlanRequest) (*dto.SubscriptionPlanResponse, error) {
	if _, err := s.subscriptionRepo.FindPlanByName(db, req.Name); err == nil {
		return nil, apperrors.ErrAlreadyExists(errors.New("plan name already in use"))
	} else if !errors.Is(err, repositories.ErrPlanNotFound) {
		return nil, apperrors.InternalError(err)
	}

	plan := &models.SubscriptionPlan{
		Name:         req.Name,
		Description:  req.Description,
		Price:        req.Price,
		DurationDays: req.DurationDays,
		IsActive:     true,
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := s.subscriptionRepo.CreatePlan(db, plan); err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := toPlanResponse(plan)
	return &resp, nil
}

func (s *subscriptionService) UpdatePlan(db *gorm.DB, planID string, req *dto.UpdatePlanRequest) (*dto.SubscriptionPlanResponse, error) {
	plan, err := s.subscriptionRepo.FindPlanByID(db, planID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlanNotFound) {
			return nil, apperrors.ErrPlanNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.Price != nil {
		plan.Price = *req.Price
	}
	if req.DurationDays != nil {
		plan.DurationDays = *req.DurationDays
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := s.subscriptionRepo.UpdatePlan(db, plan); err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := toPlanResponse(plan)
	return &resp, nil
}

func (s *subscriptionService) DeactivatePlan(db *gorm.DB, planID string) error {
	err := s.subscriptionRepo.DeactivatePlan(db, planID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlanNotFound) {
			return apperrors.ErrPlanNotFound
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// User subscription lifecycle

// RequestSubscription создает заявку на подписку в статусе pending.
// Проверка "не больше одной живой подписки" делается дважды: быстрый
// предикат здесь и частичный уникальный индекс в БД, который закрывает
// гонку двух параллельных запросов.
func (s *subscriptionService) RequestSubscription(db *gorm.DB, userID string, req *dto.RequestSubscriptionRequest) (*dto.UserSubscriptionResponse, error) {
	plan, err := s.subscriptionRepo.FindPlanByID(db, req.PlanID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlanNotFound) {
			return nil, apperrors.ErrPlanNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if !plan.IsActive {
		return nil, apperrors.ErrPlanInactive
	}

	existing, err := s.subscriptionRepo.FindLiveByUser(db, userID)
	if err != nil && !errors.Is(err, repositories.ErrSubscriptionNotFound) {
		return nil, apperrors.InternalError(err)
	}
	if existing != nil {
		if existing.Status == models.SubscriptionStatusPending {
			return nil, apperrors.ErrDuplicateRequest
		}
		if existing.IsCurrentlyEntitled(s.now()) {
			return nil, apperrors.ErrAlreadyEntitled
		}
		// Approved-запись с истекшим сроком, которую воркер еще не погасил:
		// освобождаем слот под новую заявку. Stale означает, что запись
		// уже погасили параллельно - слот и так свободен.
		if err := s.subscriptionRepo.DeactivateSubscription(db, existing.ID); err != nil &&
			!errors.Is(err, repositories.ErrSubscriptionStateStale) {
			return nil, apperrors.InternalError(err)
		}
	}

	// Активной заявка станет только после одобрения админом
	sub := &models.UserSubscription{
		UserID:        userID,
		PlanID:        plan.ID,
		Status:        models.SubscriptionStatusPending,
		IsActive:      false,
		PaymentStatus: models.PaymentStatusPending,
		AutoRenew:     req.AutoRenew,
		AppliedAt:     s.now(),
	}

	if err := s.subscriptionRepo.CreateSubscription(db, sub); err != nil {
		if errors.Is(err, repositories.ErrLiveSubscriptionExists) {
			return nil, apperrors.ErrDuplicateRequest
		}
		return nil, apperrors.InternalError(err)
	}

	sub.Plan = *plan
	resp := toSubscriptionResponse(sub)
	return &resp, nil
}

func (s *subscriptionService) GetMySubscription(db *gorm.DB, userID string) (*dto.UserSubscriptionResponse, error) {
	sub, err := s.subscriptionRepo.FindLatestByUser(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	resp := toSubscriptionResponse(sub)
	return &resp, nil
}

// GetEntitlement отвечает на вопрос "премиум ли пользователь сейчас".
// Право дает только approved активная подписка в пределах дат действия.
func (s *subscriptionService) GetEntitlement(db *gorm.DB, userID string) (*dto.EntitlementResponse, error) {
	sub, err := s.subscriptionRepo.FindLatestByUser(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return &dto.EntitlementResponse{IsPremium: false}, nil
		}
		return nil, apperrors.InternalError(err)
	}

	resp := toSubscriptionResponse(sub)
	return &dto.EntitlementResponse{
		IsPremium:    sub.IsCurrentlyEntitled(s.now()),
		Subscription: &resp,
	}, nil
}

// CancelSubscription гасит действующую подписку: is_active и auto_renew
// сбрасываются, статус остается approved. История заявки сохраняется.
func (s *subscriptionService) CancelSubscription(db *gorm.DB, userID string) (*dto.UserSubscriptionResponse, error) {
	sub, err := s.subscriptionRepo.FindLiveByUser(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, apperrors.ErrSubscriptionNotActive
		}
		return nil, apperrors.InternalError(err)
	}

	if sub.Status != models.SubscriptionStatusApproved {
		return nil, apperrors.ErrSubscriptionNotActive
	}

	if err := s.subscriptionRepo.DeactivateSubscription(db, sub.ID); err != nil {
		if errors.Is(err, repositories.ErrSubscriptionStateStale) {
			return nil, apperrors.ErrSubscriptionNotActive
		}
		return nil, apperrors.InternalError(err)
	}

	sub.IsActive = false
	sub.AutoRenew = false
	resp := toSubscriptionResponse(sub)
	return &resp, nil
}

func (s *subscriptionService) ListPayments(db *gorm.DB, userID string) ([]dto.PaymentResponse, error) {
	payments, err := s.paymentRepo.FindByUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		p := &payments[i]
		result = append(result, dto.PaymentResponse{
			ID:                 p.ID,
			UserSubscriptionID: p.UserSubscriptionID,
			Amount:             p.Amount,
			Currency:           p.Currency,
			Status:             string(p.Status),
			PaidAt:             p.PaidAt,
			CreatedAt:          p.CreatedAt,
		})
	}
	return result, nil
}

// Admin operations

func (s *subscriptionService) ListRequests(db *gorm.DB, status models.SubscriptionStatus, page, pageSize int) ([]dto.UserSubscriptionResponse, int64, error) {
	offset := (page - 1) * pageSize
	subs, total, err := s.subscriptionRepo.FindByStatus(db, status, pageSize, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	result := make([]dto.UserSubscriptionResponse, 0, len(subs))
	for i := range subs {
		result = append(result, toSubscriptionResponse(&subs[i]))
	}
	return result, total, nil
}

// ApproveSubscription переводит pending-заявку в approved и один раз
// фиксирует даты действия: start = момент одобрения, end = start + срок плана.
// Повторное одобрение или одобрение не-pending заявки отклоняется.
func (s *subscriptionService) ApproveSubscription(db *gorm.DB, subscriptionID, adminNotes string) (*dto.UserSubscriptionResponse, error) {
	sub, err := s.subscriptionRepo.FindSubscriptionByID(db, subscriptionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if sub.Status != models.SubscriptionStatusPending {
		return nil, apperrors.ErrInvalidTransition
	}

	now := s.now()
	startDate := now
	if sub.StartDate != nil {
		startDate = *sub.StartDate
	}
	endDate := startDate.AddDate(0, 0, sub.Plan.DurationDays)
	if sub.EndDate != nil {
		endDate = *sub.EndDate
	}

	err = s.subscriptionRepo.ApproveSubscription(db, sub.ID, startDate, endDate, now, adminNotes)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionStateStale) {
			return nil, apperrors.ErrInvalidTransition
		}
		return nil, apperrors.InternalError(err)
	}

	// Платеж моделируется записью без интеграции с платежным шлюзом
	payment := &models.Payment{
		UserID:             sub.UserID,
		UserSubscriptionID: sub.ID,
		Amount:             sub.Plan.Price,
		Currency:           "USD",
		Status:             models.PaymentStatusPaid,
		PaidAt:             &now,
	}
	if err := s.paymentRepo.Create(db, payment); err != nil {
		logger.WithError(err).Warn("Failed to record subscription payment", "subscription_id", sub.ID)
	}

	sub.Status = models.SubscriptionStatusApproved
	sub.IsActive = true
	sub.StartDate = &startDate
	sub.EndDate = &endDate
	sub.ProcessedAt = &now
	sub.AdminNotes = adminNotes

	s.notifyDecision(db, sub, true)

	resp := toSubscriptionResponse(sub)
	return &resp, nil
}

// RejectSubscription отклоняет pending-заявку. Даты действия не назначаются.
func (s *subscriptionService) RejectSubscription(db *gorm.DB, subscriptionID, adminNotes string) (*dto.UserSubscriptionResponse, error) {
	sub, err := s.subscriptionRepo.FindSubscriptionByID(db, subscriptionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if sub.Status != models.SubscriptionStatusPending {
		return nil, apperrors.ErrInvalidTransition
	}

	now := s.now()
	err = s.subscriptionRepo.RejectSubscription(db, sub.ID, now, adminNotes)
	if err != nil {
		if errors.Is(err, repositories.ErrSubscriptionStateStale) {
			return nil, apperrors.ErrInvalidTransition
		}
		return nil, apperrors.InternalError(err)
	}

	sub.Status = models.SubscriptionStatusRejected
	sub.IsActive = false
	sub.ProcessedAt = &now
	sub.AdminNotes = adminNotes

	s.notifyDecision(db, sub, false)

	resp := toSubscriptionResponse(sub)
	return &resp, nil
}

func (s *subscriptionService) EvaluateExpiry(db *gorm.DB) (int, error) {
	expired, err := s.subscriptionRepo.FindExpiredActive(db, s.now())
	if err != nil {
		return 0, apperrors.InternalError(err)
	}

	processed := 0
	for i := range expired {
		sub := &expired[i]

		err := s.subscriptionRepo.MarkExpired(db, sub.ID)
		if errors.Is(err, repositories.ErrSubscriptionStateStale) {
			// Запись уже погашена параллельной отменой или другим запуском
			continue
		}
		if err != nil {
			logger.WithError(err).Error("Failed to expire subscription", "subscription_id", sub.ID)
			continue
		}
		processed++

		s.notifyExpiry(db, sub)
	}

	return processed, nil
}

func (s *subscriptionService) notifyDecision(db *gorm.DB, sub *models.UserSubscription, approved bool) {
	var message string
	if approved {
		message = "Ваша заявка на подписку «" + sub.Plan.Name + "» одобрена"
	} else {
		message = "Ваша заявка на подписку «" + sub.Plan.Name + "» отклонена"
	}

	err := s.notificationService.Notify(db, sub.UserID, NotificationSubscriptionDecision, message, map[string]interface{}{
		"subscription_id": sub.ID,
		"status":          string(sub.Status),
	})
	if err != nil {
		logger.WithError(err).Warn("Failed to create subscription decision notification", "subscription_id", sub.ID)
	}

	user, err := s.userRepo.FindByID(db, sub.UserID)
	if err != nil {
		logger.WithError(err).Warn("Failed to load user for subscription email", "subscription_id", sub.ID)
		return
	}

	if approved {
		s.notificationService.SendEmail(user.Email, "Подписка одобрена", email.TemplateSubscriptionApproved, email.TemplateData{
			"PlanName":  sub.Plan.Name,
			"StartDate": sub.StartDate.Format("02.01.2006"),
			"EndDate":   sub.EndDate.Format("02.01.2006"),
		})
	} else {
		s.notificationService.SendEmail(user.Email, "Заявка на подписку отклонена", email.TemplateSubscriptionRejected, email.TemplateData{
			"PlanName": sub.Plan.Name,
			"Notes":    sub.AdminNotes,
		})
	}
}

func (s *subscriptionService) notifyExpiry(db *gorm.DB, sub *models.UserSubscription) {
	message := "Срок действия вашей подписки «" + sub.Plan.Name + "» истек"

	err := s.notificationService.Notify(db, sub.UserID, NotificationSubscriptionExpired, message, map[string]interface{}{
		"subscription_id": sub.ID,
	})
	if err != nil {
		logger.WithError(err).Warn("Failed to create expiry notification", "subscription_id", sub.ID)
	}

	user, err := s.userRepo.FindByID(db, sub.UserID)
	if err != nil {
		return
	}

	endDate := ""
	if sub.EndDate != nil {
		endDate = sub.EndDate.Format("02.01.2006")
	}
	s.notificationService.SendEmail(user.Email, "Срок подписки истек", email.TemplateSubscriptionExpired, email.TemplateData{
		"PlanName": sub.Plan.Name,
		"EndDate":  endDate,
	})
}

func toPlanResponse(p *models.SubscriptionPlan) dto.SubscriptionPlanResponse {
	return dto.SubscriptionPlanResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		DurationDays: p.DurationDays,
		IsActive:     p.IsActive,
	}
}

func toSubscriptionResponse(s *models.UserSubscription) dto.UserSubscriptionResponse {
	resp := dto.UserSubscriptionResponse{
		ID:            s.ID,
		UserID:        s.UserID,
		Status:        string(s.Status),
		IsActive:      s.IsActive,
		PaymentStatus: string(s.PaymentStatus),
		AutoRenew:     s.AutoRenew,
		StartDate:     s.StartDate,
		EndDate:       s.EndDate,
		AppliedAt:     s.AppliedAt,
		ProcessedAt:   s.ProcessedAt,
		AdminNotes:    s.AdminNotes,
	}

	if s.Plan.ID != "" {
		plan := toPlanResponse(&s.Plan)
		resp.Plan = &plan
	}

	return resp
}
