package services

import (
	"time"

	"rapidmandados_backend/internal/auth"
	"rapidmandados_backend/internal/config"
	"rapidmandados_backend/internal/logger"
	"rapidmandados_backend/internal/models"
	"rapidmandados_backend/internal/repositories"
	"rapidmandados_backend/internal/services/dto"
	"rapidmandados_backend/pkg/apperrors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	Me(db *gorm.DB, userID string) (*dto.UserResponse, error)
}

type AuthServiceImpl struct {
	userRepo repositories.UserRepository
}

func NewAuthService(userRepo repositories.UserRepository) AuthService {
	return &AuthServiceImpl{userRepo: userRepo}
}

// Register - регистрация клиента или водителя.
// Текущая политика: аккаунт сразу approved, флаги верификации взведены.
// Водителя это не освобождает от верификации перед приемом заказов:
// гейт на accept пересчитывается отдельно (почта + документы).
func (s *AuthServiceImpl) Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidateRole(req.Role); err != nil {
		return nil, err
	}
	if len(req.Password) < 6 {
		return nil, apperrors.ErrWeakPassword
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:        req.Email,
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         req.Role,
		PasswordHash: string(hashedPassword),
		Address:      req.Address,

		Status:            models.UserStatusApproved,
		IsPhoneVerified:   true,
		IsEmailVerified:   true,
		AdminApproved:     true,
		DocumentsUploaded: true,
		IsActive:          true,
	}

	if err := s.userRepo.Create(db, user); err != nil {
		if err == repositories.ErrUserAlreadyExists {
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	logger.Info("✅ User registered",
		"user_id", user.ID,
		"role", string(user.Role),
	)

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        dto.NewUserResponse(user),
		Message:     "Registration successful",
	}, nil
}

func (s *AuthServiceImpl) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive || user.Status == models.UserStatusSuspended {
		return nil, apperrors.ErrUserSuspended
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        dto.NewUserResponse(user),
	}, nil
}

func (s *AuthServiceImpl) Me(db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *AuthServiceImpl) issueToken(user *models.User) (string, error) {
	cfg := config.AppConfig
	ttl := time.Duration(cfg.JWT.TTL) * time.Minute

	token, err := auth.GenerateToken(user, cfg.JWT.Secret, ttl)
	if err != nil {
		return "", apperrors.InternalError(err)
	}
	return token, nil
}
