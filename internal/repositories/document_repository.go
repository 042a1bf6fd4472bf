package repositories

import (
	"errors"

	"github.com/Znbmels/visa/internal/models"

	"gorm.io/gorm"
)

var ErrDocumentNotFound = errors.New("document not found")

type DocumentRepository interface {
	Create(db *gorm.DB, doc *models.Document) error
	FindByID(db *gorm.DB, id string) (*models.Document, error)
	FindByUser(db *gorm.DB, userID string) ([]models.Document, error)
	Delete(db *gorm.DB, id string) error
}

type DocumentRepositoryImpl struct{}

func NewDocumentRepository() DocumentRepository {
	return &DocumentRepositoryImpl{}
}

func (r *DocumentRepositoryImpl) Create(db *gorm.DB, doc *models.Document) error {
	return db.Create(doc).Error
}

func (r *DocumentRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Document, error) {
	var doc models.Document
	err := db.First(&doc, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepositoryImpl) FindByUser(db *gorm.DB, userID string) ([]models.Document, error) {
	var docs []models.Document
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&docs).Error
	return docs, err
}

func (r *DocumentRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Document{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
