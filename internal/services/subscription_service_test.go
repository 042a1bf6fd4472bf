package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/Znbmels/visa/internal/dto"
	"github.com/Znbmels/visa/internal/email"
	"github.com/Znbmels/visa/internal/models"
	"github.com/Znbmels/visa/internal/repositories"
	"github.com/Znbmels/visa/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeSubscriptionRepo - in-memory репозиторий, повторяющий семантику SQL-версии:
// уникальность живой подписки и условные переходы статусов.
type fakeSubscriptionRepo struct {
	plans  map[string]*models.SubscriptionPlan
	subs   map[string]*models.UserSubscription
	nextID int

	// liveConflict эмулирует гонку: вставка падает с ошибкой уникального
	// индекса, даже если предикат живой подписки ничего не нашел
	liveConflict bool
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{
		plans: make(map[string]*models.SubscriptionPlan),
		subs:  make(map[string]*models.UserSubscription),
	}
}

func (f *fakeSubscriptionRepo) genID() string {
	f.nextID++
	return fmt.Sprintf("id-%d", f.nextID)
}

func (f *fakeSubscriptionRepo) addPlan(name string, price float64, durationDays int, active bool) *models.SubscriptionPlan {
	plan := &models.SubscriptionPlan{
		Name:         name,
		Price:        price,
		DurationDays: durationDays,
		IsActive:     active,
	}
	plan.ID = f.genID()
	f.plans[plan.ID] = plan
	return plan
}

func (f *fakeSubscriptionRepo) FindPlans(db *gorm.DB, onlyActive bool) ([]models.SubscriptionPlan, error) {
	var result []models.SubscriptionPlan
	for _, p := range f.plans {
		if onlyActive && !p.IsActive {
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}

func (f *fakeSubscriptionRepo) FindPlanByID(db *gorm.DB, id string) (*models.SubscriptionPlan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, repositories.ErrPlanNotFound
	}
	cp := *plan
	return &cp, nil
}

func (f *fakeSubscriptionRepo) FindPlanByName(db *gorm.DB, name string) (*models.SubscriptionPlan, error) {
	for _, p := range f.plans {
		if p.Name == name {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repositories.ErrPlanNotFound
}

func (f *fakeSubscriptionRepo) CreatePlan(db *gorm.DB, plan *models.SubscriptionPlan) error {
	plan.ID = f.genID()
	cp := *plan
	f.plans[plan.ID] = &cp
	return nil
}

func (f *fakeSubscriptionRepo) UpdatePlan(db *gorm.DB, plan *models.SubscriptionPlan) error {
	if _, ok := f.plans[plan.ID]; !ok {
		return repositories.ErrPlanNotFound
	}
	cp := *plan
	f.plans[plan.ID] = &cp
	return nil
}

func (f *fakeSubscriptionRepo) DeactivatePlan(db *gorm.DB, id string) error {
	plan, ok := f.plans[id]
	if !ok {
		return repositories.ErrPlanNotFound
	}
	plan.IsActive = false
	return nil
}

func (f *fakeSubscriptionRepo) isLive(s *models.UserSubscription) bool {
	return s.Status == models.SubscriptionStatusPending ||
		(s.Status == models.SubscriptionStatusApproved && s.IsActive)
}

func (f *fakeSubscriptionRepo) CreateSubscription(db *gorm.DB, sub *models.UserSubscription) error {
	if f.liveConflict {
		return repositories.ErrLiveSubscriptionExists
	}
	for _, existing := range f.subs {
		if existing.UserID == sub.UserID && f.isLive(existing) {
			return repositories.ErrLiveSubscriptionExists
		}
	}
	sub.ID = f.genID()
	cp := *sub
	f.subs[sub.ID] = &cp
	return nil
}

func (f *fakeSubscriptionRepo) FindSubscriptionByID(db *gorm.DB, id string) (*models.UserSubscription, error) {
	sub, ok := f.subs[id]
	if !ok {
		return nil, repositories.ErrSubscriptionNotFound
	}
	cp := *sub
	if plan, ok := f.plans[sub.PlanID]; ok {
		cp.Plan = *plan
	}
	return &cp, nil
}

func (f *fakeSubscriptionRepo) FindLatestByUser(db *gorm.DB, userID string) (*models.UserSubscription, error) {
	var latest *models.UserSubscription
	for _, s := range f.subs {
		if s.UserID != userID {
			continue
		}
		if latest == nil || s.AppliedAt.After(latest.AppliedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, repositories.ErrSubscriptionNotFound
	}
	cp := *latest
	if plan, ok := f.plans[latest.PlanID]; ok {
		cp.Plan = *plan
	}
	return &cp, nil
}

func (f *fakeSubscriptionRepo) FindLiveByUser(db *gorm.DB, userID string) (*models.UserSubscription, error) {
	for _, s := range f.subs {
		if s.UserID == userID && f.isLive(s) {
			cp := *s
			if plan, ok := f.plans[s.PlanID]; ok {
				cp.Plan = *plan
			}
			return &cp, nil
		}
	}
	return nil, repositories.ErrSubscriptionNotFound
}

func (f *fakeSubscriptionRepo) FindByStatus(db *gorm.DB, status models.SubscriptionStatus, limit, offset int) ([]models.UserSubscription, int64, error) {
	var result []models.UserSubscription
	for _, s := range f.subs {
		if status == "" || s.Status == status {
			result = append(result, *s)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeSubscriptionRepo) ApproveSubscription(db *gorm.DB, id string, startDate, endDate, processedAt time.Time, adminNotes string) error {
	sub, ok := f.subs[id]
	if !ok || sub.Status != models.SubscriptionStatusPending {
		return repositories.ErrSubscriptionStateStale
	}
	sub.Status = models.SubscriptionStatusApproved
	sub.IsActive = true
	sub.StartDate = &startDate
	sub.EndDate = &endDate
	sub.ProcessedAt = &processedAt
	sub.AdminNotes = adminNotes
	return nil
}

func (f *fakeSubscriptionRepo) RejectSubscription(db *gorm.DB, id string, processedAt time.Time, adminNotes string) error {
	sub, ok := f.subs[id]
	if !ok || sub.Status != models.SubscriptionStatusPending {
		return repositories.ErrSubscriptionStateStale
	}
	sub.Status = models.SubscriptionStatusRejected
	sub.IsActive = false
	sub.ProcessedAt = &processedAt
	sub.AdminNotes = adminNotes
	return nil
}

func (f *fakeSubscriptionRepo) DeactivateSubscription(db *gorm.DB, id string) error {
	sub, ok := f.subs[id]
	if !ok || sub.Status != models.SubscriptionStatusApproved || !sub.IsActive {
		return repositories.ErrSubscriptionStateStale
	}
	sub.IsActive = false
	sub.AutoRenew = false
	return nil
}

func (f *fakeSubscriptionRepo) MarkExpired(db *gorm.DB, id string) error {
	sub, ok := f.subs[id]
	if !ok || sub.Status != models.SubscriptionStatusApproved || !sub.IsActive {
		return repositories.ErrSubscriptionStateStale
	}
	sub.Status = models.SubscriptionStatusExpired
	sub.IsActive = false
	return nil
}

func (f *fakeSubscriptionRepo) FindExpiredActive(db *gorm.DB, now time.Time) ([]models.UserSubscription, error) {
	var result []models.UserSubscription
	for _, s := range f.subs {
		if s.Status == models.SubscriptionStatusApproved && s.IsActive &&
			s.EndDate != nil && s.EndDate.Before(now) {
			cp := *s
			if plan, ok := f.plans[s.PlanID]; ok {
				cp.Plan = *plan
			}
			result = append(result, cp)
		}
	}
	return result, nil
}

func (f *fakeSubscriptionRepo) CountByStatus(db *gorm.DB, status models.SubscriptionStatus) (int64, error) {
	var count int64
	for _, s := range f.subs {
		if s.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakeSubscriptionRepo) CountActivePlanUsers(db *gorm.DB, planID string) (int64, error) {
	var count int64
	for _, s := range f.subs {
		if s.PlanID == planID && s.Status == models.SubscriptionStatusApproved && s.IsActive {
			count++
		}
	}
	return count, nil
}

// fakePaymentRepo запоминает записанные платежи
type fakePaymentRepo struct {
	payments []models.Payment
}

func (f *fakePaymentRepo) Create(db *gorm.DB, payment *models.Payment) error {
	f.payments = append(f.payments, *payment)
	return nil
}

func (f *fakePaymentRepo) FindByUser(db *gorm.DB, userID string) ([]models.Payment, error) {
	return f.payments, nil
}

func (f *fakePaymentRepo) FindBySubscription(db *gorm.DB, subscriptionID string) ([]models.Payment, error) {
	return f.payments, nil
}

// fakeUserRepo отдает одного и того же пользователя для любого ID
type fakeUserRepo struct {
	repositories.UserRepository
}

func (f *fakeUserRepo) FindByID(db *gorm.DB, id string) (*models.User, error) {
	user := &models.User{Username: "tester", Email: "tester@test.com"}
	user.ID = id
	return user, nil
}

// fakeNotificationService считает отправленные уведомления и письма
type fakeNotificationService struct {
	notifications []string
	emails        []string
}

func (f *fakeNotificationService) Notify(db *gorm.DB, userID, notifType, message string, data map[string]interface{}) error {
	f.notifications = append(f.notifications, notifType)
	return nil
}

func (f *fakeNotificationService) SendEmail(to, subject, templateName string, data email.TemplateData) {
	f.emails = append(f.emails, templateName)
}

func (f *fakeNotificationService) GetUserNotifications(db *gorm.DB, userID string, page, pageSize int) ([]dto.NotificationResponse, int64, error) {
	return nil, 0, nil
}

func (f *fakeNotificationService) MarkAsRead(db *gorm.DB, userID, notificationID string) error {
	return nil
}

func (f *fakeNotificationService) MarkAllAsRead(db *gorm.DB, userID string) error { return nil }

func (f *fakeNotificationService) CountUnread(db *gorm.DB, userID string) (int64, error) {
	return 0, nil
}

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo *fakeSubscriptionRepo) (*subscriptionService, *fakePaymentRepo, *fakeNotificationService) {
	payments := &fakePaymentRepo{}
	notifications := &fakeNotificationService{}
	svc := &subscriptionService{
		subscriptionRepo:    repo,
		paymentRepo:         payments,
		userRepo:            &fakeUserRepo{},
		notificationService: notifications,
		now:                 func() time.Time { return testNow },
	}
	return svc, payments, notifications
}

func TestRequestSubscription_CreatesPendingRequest(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	plan := repo.addPlan("Премиум", 19.99, 30, true)
	svc, _, _ := newTestService(repo)

	resp, err := svc.RequestSubscription(nil, "user-1", &dto.RequestSubscriptionRequest{
		PlanID:    plan.ID,
		AutoRenew: true,
	})

	require.NoError(t, err)
	assert.Equal(t, string(models.SubscriptionStatusPending), resp.Status)
	assert.False(t, resp.IsActive, "Заявка активируется только при одобрении")
	assert.True(t, resp.AutoRenew)
	assert.Equal(t, string(models.PaymentStatusPending), resp.PaymentStatus)
	assert.Equal(t, testNow, resp.AppliedAt)
	assert.Nil(t, resp.StartDate, "Даты назначаются только при одобрении")
	assert.Nil(t, resp.EndDate)
}

func TestRequestSubscription_PlanNotFound(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	svc, _, _ := newTestService(repo)

	_, err := svc.RequestSubscription(nil, "user-1", &dto.RequestSubscriptionRequest{PlanID: "missing"})

	assert.ErrorIs(t, err, apperrors.ErrPlanNotFound)
}

func TestRequestSubscription_PlanInactive(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	plan := repo.addPlan("Архивный", 9.99, 30, false)
	svc, _, _ := newTestService(repo)

	_, err := svc.RequestSubscription(nil, "user-1", &dto.RequestSubscriptionRequest{PlanID: plan.ID})

	assert.ErrorIs(t, err, apperrors.ErrPlanInactive)
}

func TestRequestSubscription_DuplicatePending(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	plan := repo.addPlan("Премиум", 19.99, 30, true)
	svc, _, _ := newTestService(repo)

	_, err := svc.RequestSubscription(nil, "user-1", &dto.RequestSubscriptionRequest{PlanID: plan.ID})
	require.NoError(t, err)

	_, err = svc.RequestSubscription(nil, "user-1", &dto.RequestSubscriptionRequest{PlanID: plan.ID})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateRequest)
}

func TestRequestSubscription_AlreadyEntitled(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	plan := repo.addPlan("Премиум", 19.99, 30, true)
	svc, _, _ := newTestService(repo)

	resp, err := svc.RequestSubscription(nil, "user-1", &dto.RequestSubscriptionRequest{PlanID: plan.ID})
	require.NoError(t, err)
	_, err = svc.ApproveSubscription(nil, resp.ID, "")
	require.NoError(t, err)

	_, err = svc.RequestSubscription(nil, "user-1", &dto.RequestSubscriptionRequest{PlanID: plan.ID})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyEntitled)
}

// Срок одобренной подписки вышел, но воркер ее еще не погасил. Новая заявка
// должна погасить мертвую запись и занять освободившийся слот.
func TestRequestSubscription_ReplacesExpiredApproved(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	plan := repo.addPlan("Премиум", 19.99, 30, true)
	svc, _, _ := newTestService(repo)

	first, err := svc.RequestSubscription(nil, "user-1", &dto.RequestSubscriptionRequest{PlanID: plan.ID})
	require.NoError(t, err)
	_, err = svc.ApproveSubscription(nil, first.ID, "")
	require.NoError(t, err)

	// 45 дней спустя 30-дневная подписка давно истекла
	svc.now = func() time.Time { return testNow.AddDate(0, 0, 45) }

	second, err := svc.RequestSubscription(nil, "user-1", &dto.RequestSubscriptionRequest{PlanID: plan.ID})
	require.NoError(t, err)
	assert.Equal(t, string(models.SubscriptionStatusPending), second.Status)
	assert.NotEqual(t, first.ID, second.ID)

	// Старая запись погашена, но история сохранена
	old, err := repo.FindSubscriptionByID(nil, first.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusApproved, old.Status)
	assert.False(t, old.IsActive)
}

// Отмененную подписку (approved, is_active=false) воркер трогать не должен:
// переход в expired ключуется и на is_active.
func TestMarkExpired_SkipsCancelled(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	plan := repo.addPlan("Премиум", 19.99, 30, true)
	svc, _, _ := newTestService(repo)

	pending, err := svc.RequestSubscription(nil, "user-1", &dto.RequestSubscriptionRequest{PlanID: plan.ID})
	require.NoError(t, err)
	_, err = svc.ApproveSubscription(nil, pending.ID, "")
	require.NoError(t, err)
	_, err = svc.CancelSubscription(nil, "user-1")
	require.NoError(t, err)

	err = repo.MarkExpired(nil, pending.ID)
	assert.ErrorIs(t, err, repositories.ErrSubscriptionStateStale)

	sub, err := repo.FindSubscriptionByID(nil, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusApproved, sub.Status, "Отмена не должна перетираться на expired")
}

// Гонка двух параллельных заявок: предикат никого не нашел, но вставка
// уперлась в уникальный индекс. Клиент получает тот же DuplicateRequest.
func TestRequestSubscription_ConcurrentInsertConflict(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	plan := repo.addPlan("Премиум", 19.99, 30, true)
	repo.liveConflict = true
	svc, _, _ := newTestService(repo)

	_, err := svc.RequestSubscription(nil, "user-1", &dto.RequestSubscriptionRequest{PlanID: plan.ID})

	assert.ErrorIs(t, err, apperrors.ErrDuplicateRequest)
}

func TestApproveSubscription_SetsDatesAndRecordsPayment(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	plan := repo.addPlan("Премиум", 19.99, 30, true)
	svc, payments, notifications := newTestService(repo)

	pending, err := svc.RequestSubscription(nil, "user-1", &dto.RequestSubscriptionRequest{PlanID: plan.ID})
	require.NoError(t, err)

	approved, err := svc.ApproveSubscription(nil, pending.ID, "выглядит нормально")
	require.NoError(t, err)

	assert.Equal(t, string(models.SubscriptionStatusApproved), approved.Status)
	assert.True(t, approved.IsActive)
	require.NotNil(t, approved.StartDate)
	require.NotNil(t, approved.EndDate)
	assert.Equal(t, testNow, *approved.StartDate)
	assert.Equal(t, testNow.AddDate(0, 0, 30), *approved.EndDate)
	assert.Equal(t, "выглядит нормально", approved.AdminNotes)

	require.Len(t, payments.payments, 1)
	assert.Equal(t, plan.Price, payments.payments[0].Amount)
	assert.Equal(t, models.PaymentStatusPaid, payments.payments[0].Status)

	assert.Contains(t, notifications.notifications, NotificationSubscriptionDecision)
	assert.Contains(t, notifications.emails, email.TemplateSubscriptionApproved)
}

func TestApproveSubscription_SecondApproveRejected(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	plan := repo.addPlan("Премиум", 19.99, 30, true)
	svc, _, _ := newTestService(repo)

	pending, err := svc.RequestSubscription(nil, "user-1", &dto.RequestSubscriptionRequest{PlanID: plan.ID})
	require.NoError(t, err)

	first, err := svc.ApproveSubscription(nil, pending.ID, "")
	require.NoError(t, err)

	_, err = svc.ApproveSubscription(nil, pending.ID, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	// Даты не переписаны повторной попыткой
	stored, err := repo.FindSubscriptionByID(nil, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, *first.StartDate, *stored.StartDate)
	assert.Equal(t, *first.EndDate, *stored.EndDate)
}

func TestRejectSubscription_NoDatesAssigned(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	plan := repo.addPlan("Премиум", 19.99, 30, true)
	svc, payments, notifications := newTestService(repo)

	pending, err := svc.RequestSubscription(nil, "user-1", &dto.RequestSubscriptionRequest{PlanID: plan.ID})
	require.NoError(t, err)

	rejected, err := svc.RejectSubscription(nil, pending.ID, "нет оплаты")
	require.NoError(t, err)

	assert.Equal(t, string(models.SubscriptionStatusRejected), rejected.Status)
	assert.False(t, rejected.IsActive)
	assert.Nil(t, rejected.StartDate)
	assert.Nil(t, rejected.EndDate)
	assert.Equal(t, "нет оплаты", rejected.AdminNotes)

	assert.Empty(t, payments.payments, "Платеж при отказе не создается")
	assert.Contains(t, notifications.emails, email.TemplateSubscriptionRejected)

	// После отказа пользователь может подать заявку заново
	_, err = svc.RequestSubscription(nil, "user-1", &dto.RequestSubscriptionRequest{PlanID: plan.ID})
	assert.NoError(t, err)
}

func TestCancelSubscription_KeepsApprovedStatus(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	plan := repo.addPlan("Премиум", 19.99, 30, true)
	svc, _, _ := newTestService(repo)

	pending, err := svc.RequestSubscription(nil, "user-1", &dto.RequestSubscriptionRequest{PlanID: plan.ID, AutoRenew: true})
	require.NoError(t, err)
	_, err = svc.ApproveSubscription(nil, pending.ID, "")
	require.NoError(t, err)

	cancelled, err := svc.CancelSubscription(nil, "user-1")
	require.NoError(t, err)

	assert.Equal(t, string(models.SubscriptionStatusApproved), cancelled.Status, "Отмена не меняет статус")
	assert.False(t, cancelled.IsActive)
	assert.False(t, cancelled.AutoRenew)

	// Повторная отмена: живой подписки больше нет
	_, err = svc.CancelSubscription(nil, "user-1")
	assert.ErrorIs(t, err, apperrors.ErrSubscriptionNotActive)
}

func TestCancelSubscription_PendingNotCancellable(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	plan := repo.addPlan("Премиум", 19.99, 30, true)
	svc, _, _ := newTestService(repo)

	_, err := svc.RequestSubscription(nil, "user-1", &dto.RequestSubscriptionRequest{PlanID: plan.ID})
	require.NoError(t, err)

	_, err = svc.CancelSubscription(nil, "user-1")
	assert.ErrorIs(t, err, apperrors.ErrSubscriptionNotActive)
}

func TestEvaluateExpiry_Idempotent(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	plan := repo.addPlan("Премиум", 19.99, 30, true)
	svc, _, notifications := newTestService(repo)

	// Подписка, одобренная 40 дней назад: срок уже вышел
	start := testNow.AddDate(0, 0, -40)
	end := start.AddDate(0, 0, 30)
	sub := &models.UserSubscription{
		UserID:    "user-1",
		PlanID:    plan.ID,
		Status:    models.SubscriptionStatusApproved,
		IsActive:  true,
		StartDate: &start,
		EndDate:   &end,
		AppliedAt: start,
	}
	require.NoError(t, repo.CreateSubscription(nil, sub))

	processed, err := svc.EvaluateExpiry(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)
	assert.Contains(t, notifications.emails, email.TemplateSubscriptionExpired)

	stored, err := repo.FindSubscriptionByID(nil, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusExpired, stored.Status)
	assert.False(t, stored.IsActive)

	// Повторный запуск ничего не трогает
	processed, err = svc.EvaluateExpiry(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)
}

func TestEvaluateExpiry_ActiveWithinWindowUntouched(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	plan := repo.addPlan("Премиум", 19.99, 30, true)
	svc, _, _ := newTestService(repo)

	start := testNow.AddDate(0, 0, -5)
	end := start.AddDate(0, 0, 30)
	sub := &models.UserSubscription{
		UserID:    "user-1",
		PlanID:    plan.ID,
		Status:    models.SubscriptionStatusApproved,
		IsActive:  true,
		StartDate: &start,
		EndDate:   &end,
		AppliedAt: start,
	}
	require.NoError(t, repo.CreateSubscription(nil, sub))

	processed, err := svc.EvaluateExpiry(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, processed)

	stored, err := repo.FindSubscriptionByID(nil, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusApproved, stored.Status)
	assert.True(t, stored.IsActive)
}

func TestGetEntitlement(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	plan := repo.addPlan("Премиум", 19.99, 30, true)
	svc, _, _ := newTestService(repo)

	// Без подписки премиума нет
	ent, err := svc.GetEntitlement(nil, "user-1")
	require.NoError(t, err)
	assert.False(t, ent.IsPremium)
	assert.Nil(t, ent.Subscription)

	// Pending еще не дает премиум
	pending, err := svc.RequestSubscription(nil, "user-1", &dto.RequestSubscriptionRequest{PlanID: plan.ID})
	require.NoError(t, err)

	ent, err = svc.GetEntitlement(nil, "user-1")
	require.NoError(t, err)
	assert.False(t, ent.IsPremium)
	require.NotNil(t, ent.Subscription)

	// Approved в пределах дат - премиум
	_, err = svc.ApproveSubscription(nil, pending.ID, "")
	require.NoError(t, err)

	ent, err = svc.GetEntitlement(nil, "user-1")
	require.NoError(t, err)
	assert.True(t, ent.IsPremium)

	// После отмены право пропадает сразу
	_, err = svc.CancelSubscription(nil, "user-1")
	require.NoError(t, err)

	ent, err = svc.GetEntitlement(nil, "user-1")
	require.NoError(t, err)
	assert.False(t, ent.IsPremium)
}

func TestGetEntitlement_OutsideDateWindow(t *testing.T) {
	repo := newFakeSubscriptionRepo()
	plan := repo.addPlan("Премиум", 19.99, 30, true)
	svc, _, _ := newTestService(repo)

	// Срок вышел, но воркер еще не пометил подписку как expired
	start := testNow.AddDate(0, 0, -40)
	end := start.AddDate(0, 0, 30)
	sub := &models.UserSubscription{
		UserID:    "user-1",
		PlanID:    plan.ID,
		Status:    models.SubscriptionStatusApproved,
		IsActive:  true,
		StartDate: &start,
		EndDate:   &end,
		AppliedAt: start,
	}
	require.NoError(t, repo.CreateSubscription(nil, sub))

	ent, err := svc.GetEntitlement(nil, "user-1")
	require.NoError(t, err)
	assert.False(t, ent.IsPremium, "Право проверяется по датам, а не только по статусу")
}
