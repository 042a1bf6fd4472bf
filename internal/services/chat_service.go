package services

import (
	"errors"

	"github.com/Znbmels/visa/internal/dto"
	"github.com/Znbmels/visa/internal/logger"
	"github.com/Znbmels/visa/internal/models"
	"github.com/Znbmels/visa/internal/repositories"
	"github.com/Znbmels/visa/pkg/apperrors"
	"github.com/Znbmels/visa/ws"

	"gorm.io/gorm"
)

type ChatService interface {
	CreateConversation(db *gorm.DB, userID string, req *dto.CreateConversationRequest) (*dto.ConversationResponse, error)
	GetConversation(db *gorm.DB, userID, conversationID string, isAdmin bool) (*dto.ConversationResponse, error)
	GetUserConversations(db *gorm.DB, userID string) ([]dto.ConversationResponse, error)
	SendMessage(db *gorm.DB, senderID, conversationID string, req *dto.SendChatMessageRequest, isAdmin bool) (*dto.ChatMessageResponse, error)
	MarkAsRead(db *gorm.DB, userID, conversationID string, isAdmin bool) error

	// Admin operations
	ListConversations(db *gorm.DB, page, pageSize int) ([]dto.ConversationResponse, int64, error)
	AssignAdmin(db *gorm.DB, conversationID, adminID string) error
}

type chatService struct {
	chatRepo  repositories.ChatRepository
	wsManager *ws.WebSocketManager
}

func NewChatService(chatRepo repositories.ChatRepository, wsManager *ws.WebSocketManager) ChatService {
	return &chatService{
		chatRepo:  chatRepo,
		wsManager: wsManager,
	}
}

func (s *chatService) CreateConversation(db *gorm.DB, userID string, req *dto.CreateConversationRequest) (*dto.ConversationResponse, error) {
	conv := &models.Conversation{
		UserID:  userID,
		Subject: req.Subject,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := s.chatRepo.CreateConversation(tx, conv); err != nil {
			return err
		}

		msg := &models.ChatMessage{
			ConversationID: conv.ID,
			SenderID:       userID,
			Message:        req.Message,
		}
		return s.chatRepo.CreateMessage(tx, msg)
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	created, err := s.chatRepo.FindConversationByID(db, conv.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := toConversationResponse(created)
	return &resp, nil
}

func (s *chatService) GetConversation(db *gorm.DB, userID, conversationID string, isAdmin bool) (*dto.ConversationResponse, error) {
	conv, err := s.findAccessible(db, userID, conversationID, isAdmin)
	if err != nil {
		return nil, err
	}

	resp := toConversationResponse(conv)
	return &resp, nil
}

func (s *chatService) GetUserConversations(db *gorm.DB, userID string) ([]dto.ConversationResponse, error) {
	convs, err := s.chatRepo.FindConversationsByUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.ConversationResponse, 0, len(convs))
	for i := range convs {
		result = append(result, toConversationResponse(&convs[i]))
	}
	return result, nil
}

func (s *chatService) SendMessage(db *gorm.DB, senderID, conversationID string, req *dto.SendChatMessageRequest, isAdmin bool) (*dto.ChatMessageResponse, error) {
	conv, err := s.findAccessible(db, senderID, conversationID, isAdmin)
	if err != nil {
		return nil, err
	}

	msg := &models.ChatMessage{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Message:        req.Message,
	}

	if err := s.chatRepo.CreateMessage(db, msg); err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := toChatMessageResponse(msg)

	// Пуш второй стороне диалога
	recipientID := conv.UserID
	if senderID == conv.UserID && conv.AdminUserID != nil {
		recipientID = *conv.AdminUserID
	}
	if recipientID != senderID && s.wsManager != nil {
		s.wsManager.SendToUser(recipientID, ws.Event{Type: "chat_message", Data: resp})
	}

	return &resp, nil
}

func (s *chatService) MarkAsRead(db *gorm.DB, userID, conversationID string, isAdmin bool) error {
	if _, err := s.findAccessible(db, userID, conversationID, isAdmin); err != nil {
		return err
	}

	if err := s.chatRepo.MarkMessagesAsRead(db, conversationID, userID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *chatService) ListConversations(db *gorm.DB, page, pageSize int) ([]dto.ConversationResponse, int64, error) {
	offset := (page - 1) * pageSize
	convs, total, err := s.chatRepo.FindAllConversations(db, pageSize, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	result := make([]dto.ConversationResponse, 0, len(convs))
	for i := range convs {
		result = append(result, toConversationResponse(&convs[i]))
	}
	return result, total, nil
}

func (s *chatService) AssignAdmin(db *gorm.DB, conversationID, adminID string) error {
	err := s.chatRepo.AssignAdmin(db, conversationID, adminID)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			return apperrors.ErrConversationNotFound
		}
		return apperrors.InternalError(err)
	}

	logger.Debug("Conversation assigned to admin", "conversation_id", conversationID, "admin_id", adminID)
	return nil
}

func (s *chatService) findAccessible(db *gorm.DB, userID, conversationID string, isAdmin bool) (*models.Conversation, error) {
	conv, err := s.chatRepo.FindConversationByID(db, conversationID)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			return nil, apperrors.ErrConversationNotFound
		}
		return nil, apperrors.InternalError(err)
	}

	if !isAdmin && conv.UserID != userID {
		return nil, apperrors.ErrConversationAccessDenied
	}

	return conv, nil
}

func toConversationResponse(c *models.Conversation) dto.ConversationResponse {
	resp := dto.ConversationResponse{
		ID:          c.ID,
		UserID:      c.UserID,
		AdminUserID: c.AdminUserID,
		Subject:     c.Subject,
		CreatedAt:   c.CreatedAt,
	}

	for i := range c.Messages {
		resp.Messages = append(resp.Messages, toChatMessageResponse(&c.Messages[i]))
	}

	return resp
}

func toChatMessageResponse(m *models.ChatMessage) dto.ChatMessageResponse {
	return dto.ChatMessageResponse{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Message:        m.Message,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt,
	}
}
