package services

import (
	"encoding/json"

	"github.com/Znbmels/visa/internal/dto"
	"github.com/Znbmels/visa/internal/email"
	"github.com/Znbmels/visa/internal/logger"
	"github.com/Znbmels/visa/internal/models"
	"github.com/Znbmels/visa/internal/repositories"
	"github.com/Znbmels/visa/pkg/apperrors"
	"github.com/Znbmels/visa/ws"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Типы уведомлений
const (
	NotificationApplicationStatus    = "application_status"
	NotificationSubscriptionDecision = "subscription_decision"
	NotificationSubscriptionExpired  = "subscription_expired"
	NotificationChatMessage          = "chat_message"
)

type NotificationService interface {
	// Notify сохраняет уведомление и пушит его в WebSocket, если
	// пользователь подключен. Ошибка пуша не считается ошибкой операции.
	Notify(db *gorm.DB, userID, notifType, message string, data map[string]interface{}) error

	// SendEmail рендерит шаблон и отправляет письмо. Ошибки логируются,
	// но никогда не прерывают вызвавшую операцию.
	SendEmail(to, subject, templateName string, data email.TemplateData)

	GetUserNotifications(db *gorm.DB, userID string, page, pageSize int) ([]dto.NotificationResponse, int64, error)
	MarkAsRead(db *gorm.DB, userID, notificationID string) error
	MarkAllAsRead(db *gorm.DB, userID string) error
	CountUnread(db *gorm.DB, userID string) (int64, error)
}

type notificationService struct {
	notificationRepo repositories.NotificationRepository
	wsManager        *ws.WebSocketManager
	emailSender      email.Sender
	templates        *email.TemplateManager
	emailEnabled     bool
}

func NewNotificationService(
	notificationRepo repositories.NotificationRepository,
	wsManager *ws.WebSocketManager,
	emailSender email.Sender,
	templates *email.TemplateManager,
	emailEnabled bool,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		wsManager:        wsManager,
		emailSender:      emailSender,
		templates:        templates,
		emailEnabled:     emailEnabled,
	}
}

func (s *notificationService) Notify(db *gorm.DB, userID, notifType, message string, data map[string]interface{}) error {
	notification := &models.Notification{
		UserID:  userID,
		Type:    notifType,
		Message: message,
	}

	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return apperrors.InternalError(err)
		}
		notification.Data = datatypes.JSON(raw)
	}

	if err := s.notificationRepo.Create(db, notification); err != nil {
		return apperrors.InternalError(err)
	}

	if s.wsManager != nil {
		s.wsManager.SendToUser(userID, ws.Event{
			Type: "notification",
			Data: toNotificationResponse(notification),
		})
	}

	return nil
}

func (s *notificationService) SendEmail(to, subject, templateName string, data email.TemplateData) {
	if !s.emailEnabled || to == "" {
		return
	}

	body, err := s.templates.Render(templateName, data)
	if err != nil {
		logger.WithError(err).Warn("Failed to render email template", "template", templateName)
		return
	}

	// Отправка не должна блокировать запрос
	go func() {
		if err := s.emailSender.Send(to, subject, body); err != nil {
			logger.WithError(err).Warn("Failed to send email", "to", to, "template", templateName)
		}
	}()
}

func (s *notificationService) GetUserNotifications(db *gorm.DB, userID string, page, pageSize int) ([]dto.NotificationResponse, int64, error) {
	offset := (page - 1) * pageSize
	notifications, total, err := s.notificationRepo.FindByUser(db, userID, pageSize, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	result := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		result = append(result, *toNotificationResponse(&notifications[i]))
	}
	return result, total, nil
}

func (s *notificationService) MarkAsRead(db *gorm.DB, userID, notificationID string) error {
	err := s.notificationRepo.MarkAsRead(db, notificationID, userID)
	if err == repositories.ErrNotificationNotFound {
		return apperrors.ErrNotFound(err)
	}
	if err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(db *gorm.DB, userID string) error {
	if err := s.notificationRepo.MarkAllAsRead(db, userID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *notificationService) CountUnread(db *gorm.DB, userID string) (int64, error) {
	count, err := s.notificationRepo.CountUnread(db, userID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

func toNotificationResponse(n *models.Notification) *dto.NotificationResponse {
	resp := &dto.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Message:   n.Message,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}

	if len(n.Data) > 0 {
		var data map[string]interface{}
		if err := json.Unmarshal(n.Data, &data); err == nil {
			resp.Data = data
		}
	}

	return resp
}
