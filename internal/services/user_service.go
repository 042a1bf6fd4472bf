package services

import (
	"errors"
	"time"

	"github.com/Znbmels/visa/internal/auth"
	"github.com/Znbmels/visa/internal/dto"
	"github.com/Znbmels/visa/internal/models"
	"github.com/Znbmels/visa/internal/repositories"
	"github.com/Znbmels/visa/pkg/apperrors"

	"gorm.io/gorm"
)

type UserService interface {
	GetProfile(db *gorm.DB, userID string) (*dto.UserResponse, error)
	UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ChangePassword(db *gorm.DB, userID string, req *dto.ChangePasswordRequest) error

	// Admin operations
	ListUsers(db *gorm.DB, page, pageSize int) ([]dto.UserResponse, int64, error)
	DeleteUser(db *gorm.DB, userID string) error
}

type userService struct {
	userRepo repositories.UserRepository

	now func() time.Time
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{
		userRepo: userRepo,
		now:      time.Now,
	}
}

func (s *userService) GetProfile(db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	resp := toUserResponse(user, s.now())
	return &resp, nil
}

func (s *userService) UpdateProfile(db *gorm.DB, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.Region != nil {
		user.Region = *req.Region
	}

	if err := s.userRepo.Update(db, user); err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := toUserResponse(user, s.now())
	return &resp, nil
}

func (s *userService) ChangePassword(db *gorm.DB, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.OldPassword, user.PasswordHash) {
		return apperrors.ErrInvalidCredentials
	}

	if err := auth.ValidatePassword(req.NewPassword); err != nil {
		return apperrors.ErrWeakPassword
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.userRepo.UpdatePassword(db, userID, hash); err != nil {
		return apperrors.InternalError(err)
	}

	// Смена пароля гасит все refresh-токены
	if err := s.userRepo.DeleteUserRefreshTokens(db, userID); err != nil {
		return apperrors.InternalError(err)
	}

	return nil
}

func (s *userService) ListUsers(db *gorm.DB, page, pageSize int) ([]dto.UserResponse, int64, error) {
	total, err := s.userRepo.CountAll(db)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	offset := (page - 1) * pageSize
	users, err := s.userRepo.FindAll(db, pageSize, offset)
	if err != nil {
		return nil, 0, apperrors.InternalError(err)
	}

	now := s.now()
	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, toUserResponse(&users[i], now))
	}
	return result, total, nil
}

func (s *userService) DeleteUser(db *gorm.DB, userID string) error {
	err := s.userRepo.Delete(db, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// toUserResponse собирает публичное представление пользователя.
// IsPremium вычисляется из предзагруженной подписки на момент now.
func toUserResponse(user *models.User, now time.Time) dto.UserResponse {
	isPremium := false
	if user.Subscription != nil {
		isPremium = user.Subscription.IsCurrentlyEntitled(now)
	}

	return dto.UserResponse{
		ID:             user.ID,
		Username:       user.Username,
		Email:          user.Email,
		PassportNumber: user.PassportNumber,
		PhoneNumber:    user.PhoneNumber,
		Region:         user.Region,
		Role:           string(user.Role),
		IsPremium:      isPremium,
		CreatedAt:      user.CreatedAt,
	}
}
