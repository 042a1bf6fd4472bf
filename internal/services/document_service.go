package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/Znbmels/visa/internal/config"
	"github.com/Znbmels/visa/internal/dto"
	"github.com/Znbmels/visa/internal/logger"
	"github.com/Znbmels/visa/internal/models"
	"github.com/Znbmels/visa/internal/repositories"
	"github.com/Znbmels/visa/internal/storage"
	"github.com/Znbmels/visa/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentService interface {
	Upload(db *gorm.DB, ctx context.Context, userID string, file *multipart.FileHeader) (*dto.DocumentResponse, error)
	GetUserDocuments(db *gorm.DB, ctx context.Context, userID string) ([]dto.DocumentResponse, error)
	Delete(db *gorm.DB, ctx context.Context, userID, documentID string) error
}

type documentService struct {
	documentRepo repositories.DocumentRepository
	store        storage.Storage
	cfg          *config.Config
}

func NewDocumentService(documentRepo repositories.DocumentRepository, store storage.Storage, cfg *config.Config) DocumentService {
	return &documentService{
		documentRepo: documentRepo,
		store:        store,
		cfg:          cfg,
	}
}

func (s *documentService) Upload(db *gorm.DB, ctx context.Context, userID string, file *multipart.FileHeader) (*dto.DocumentResponse, error) {
	if file.Size > s.cfg.Upload.MaxSize {
		return nil, apperrors.ErrFileTooLarge
	}

	contentType := file.Header.Get("Content-Type")
	if !s.isAllowedType(contentType) {
		return nil, apperrors.ErrInvalidFileType
	}

	src, err := file.Open()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(file.Filename))
	path := fmt.Sprintf("documents/%s/%s%s", userID, uuid.NewString(), ext)

	if err := s.store.Save(ctx, path, src, contentType); err != nil {
		return nil, apperrors.InternalError(err)
	}

	doc := &models.Document{
		UserID:      userID,
		Name:        file.Filename,
		Path:        path,
		Size:        file.Size,
		ContentType: contentType,
	}

	if err := s.documentRepo.Create(db, doc); err != nil {
		// Файл уже записан, чистим чтобы не копить мусор
		if delErr := s.store.Delete(ctx, path); delErr != nil {
			logger.WithError(delErr).Warn("Failed to clean up orphaned file", "path", path)
		}
		return nil, apperrors.InternalError(err)
	}

	resp, err := s.toDocumentResponse(ctx, doc)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return resp, nil
}

func (s *documentService) GetUserDocuments(db *gorm.DB, ctx context.Context, userID string) ([]dto.DocumentResponse, error) {
	docs, err := s.documentRepo.FindByUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	result := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		resp, err := s.toDocumentResponse(ctx, &docs[i])
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		result = append(result, *resp)
	}
	return result, nil
}

func (s *documentService) Delete(db *gorm.DB, ctx context.Context, userID, documentID string) error {
	doc, err := s.documentRepo.FindByID(db, documentID)
	if err != nil {
		if errors.Is(err, repositories.ErrDocumentNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}

	if doc.UserID != userID {
		return apperrors.ErrNotFound(repositories.ErrDocumentNotFound)
	}

	if err := s.documentRepo.Delete(db, documentID); err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.store.Delete(ctx, doc.Path); err != nil {
		logger.WithError(err).Warn("Failed to delete stored file", "path", doc.Path)
	}

	return nil
}

func (s *documentService) isAllowedType(contentType string) bool {
	for _, allowed := range s.cfg.Upload.AllowedTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}

func (s *documentService) toDocumentResponse(ctx context.Context, doc *models.Document) (*dto.DocumentResponse, error) {
	url, err := s.store.GetURL(ctx, doc.Path)
	if err != nil {
		return nil, err
	}

	return &dto.DocumentResponse{
		ID:          doc.ID,
		Name:        doc.Name,
		URL:         url,
		Size:        doc.Size,
		ContentType: doc.ContentType,
		CreatedAt:   doc.CreatedAt,
	}, nil
}
