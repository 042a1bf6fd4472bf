package services

import (
	"errors"
	"time"

	"github.com/Znbmels/visa/internal/auth"
	"github.com/Znbmels/visa/internal/config"
	"github.com/Znbmels/visa/internal/dto"
	"github.com/Znbmels/visa/internal/email"
	"github.com/Znbmels/visa/internal/models"
	"github.com/Znbmels/visa/internal/repositories"
	"github.com/Znbmels/visa/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(db *gorm.DB, refreshToken string) (*dto.TokenResponse, error)
	Logout(db *gorm.DB, refreshToken string) error
}

type authService struct {
	userRepo            repositories.UserRepository
	notificationService NotificationService
}

func NewAuthService(userRepo repositories.UserRepository, notificationService NotificationService) AuthService {
	return &authService{
		userRepo:            userRepo,
		notificationService: notificationService,
	}
}

func (s *authService) Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ErrWeakPassword
	}

	if _, err := s.userRepo.FindByEmail(db, req.Email); err == nil {
		return nil, apperrors.ErrEmailAlreadyExists
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.InternalError(err)
	}

	if _, err := s.userRepo.FindByPassportNumber(db, req.PassportNumber); err == nil {
		return nil, apperrors.ErrPassportAlreadyExists
	} else if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.InternalError(err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Username:       req.Username,
		Email:          req.Email,
		PasswordHash:   hash,
		PassportNumber: req.PassportNumber,
		PhoneNumber:    req.PhoneNumber,
		Region:         req.Region,
		Role:           models.UserRoleUser,
	}

	if err := s.userRepo.Create(db, user); err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.notificationService.SendEmail(user.Email, "Добро пожаловать", email.TemplateWelcome, email.TemplateData{
		"Username": user.Username,
	})

	return s.issueTokens(db, user)
}

func (s *authService) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.issueTokens(db, user)
}

func (s *authService) Refresh(db *gorm.DB, refreshToken string) (*dto.TokenResponse, error) {
	stored, err := s.userRepo.FindRefreshToken(db, refreshToken)
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}

	if time.Now().After(stored.ExpiresAt) {
		_ = s.userRepo.DeleteRefreshToken(db, refreshToken)
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(db, stored.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	// Ротация: старый refresh-токен гасится
	if err := s.userRepo.DeleteRefreshToken(db, refreshToken); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return s.issueTokens(db, user)
}

func (s *authService) Logout(db *gorm.DB, refreshToken string) error {
	if err := s.userRepo.DeleteRefreshToken(db, refreshToken); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *authService) issueTokens(db *gorm.DB, user *models.User) (*dto.TokenResponse, error) {
	accessToken, err := auth.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	cfg := config.GetConfig()
	refreshToken := &models.RefreshToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(time.Duration(cfg.JWT.RefreshTTL) * time.Hour),
	}

	if err := s.userRepo.CreateRefreshToken(db, refreshToken); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken.Token,
		User:         toUserResponse(user, time.Now()),
	}, nil
}
