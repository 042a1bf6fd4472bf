package repositories

import (
	"errors"
	"time"

	"github.com/Znbmels/visa/internal/models"

	"gorm.io/gorm"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("chat message not found")
)

type ChatRepository interface {
	CreateConversation(db *gorm.DB, conv *models.Conversation) error
	FindConversationByID(db *gorm.DB, id string) (*models.Conversation, error)
	FindConversationsByUser(db *gorm.DB, userID string) ([]models.Conversation, error)
	FindAllConversations(db *gorm.DB, limit, offset int) ([]models.Conversation, int64, error)
	AssignAdmin(db *gorm.DB, conversationID, adminID string) error

	CreateMessage(db *gorm.DB, msg *models.ChatMessage) error
	FindMessages(db *gorm.DB, conversationID string, limit, offset int) ([]models.ChatMessage, error)
	MarkMessagesAsRead(db *gorm.DB, conversationID, readerID string) error
	CountUnreadMessages(db *gorm.DB, conversationID, readerID string) (int64, error)
}

type ChatRepositoryImpl struct{}

func NewChatRepository() ChatRepository {
	return &ChatRepositoryImpl{}
}

func (r *ChatRepositoryImpl) CreateConversation(db *gorm.DB, conv *models.Conversation) error {
	return db.Create(conv).Error
}

func (r *ChatRepositoryImpl) FindConversationByID(db *gorm.DB, id string) (*models.Conversation, error) {
	var conv models.Conversation
	err := db.Preload("Messages", func(db *gorm.DB) *gorm.DB {
		return db.Order("chat_messages.created_at ASC")
	}).First(&conv, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

func (r *ChatRepositoryImpl) FindConversationsByUser(db *gorm.DB, userID string) ([]models.Conversation, error) {
	var convs []models.Conversation
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&convs).Error
	return convs, err
}

func (r *ChatRepositoryImpl) FindAllConversations(db *gorm.DB, limit, offset int) ([]models.Conversation, int64, error) {
	var convs []models.Conversation
	var total int64

	if err := db.Model(&models.Conversation{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&convs).Error
	return convs, total, err
}

func (r *ChatRepositoryImpl) AssignAdmin(db *gorm.DB, conversationID, adminID string) error {
	result := db.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"admin_user_id": adminID,
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

func (r *ChatRepositoryImpl) CreateMessage(db *gorm.DB, msg *models.ChatMessage) error {
	return db.Create(msg).Error
}

func (r *ChatRepositoryImpl) FindMessages(db *gorm.DB, conversationID string, limit, offset int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Limit(limit).Offset(offset).
		Find(&messages).Error
	return messages, err
}

// MarkMessagesAsRead помечает прочитанными чужие сообщения в диалоге.
func (r *ChatRepositoryImpl) MarkMessagesAsRead(db *gorm.DB, conversationID, readerID string) error {
	return db.Model(&models.ChatMessage{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false).
		Update("is_read", true).Error
}

func (r *ChatRepositoryImpl) CountUnreadMessages(db *gorm.DB, conversationID, readerID string) (int64, error) {
	var count int64
	err := db.Model(&models.ChatMessage{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false).
		Count(&count).Error
	return count, err
}
