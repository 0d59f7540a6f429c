package dto

import (
	"time"

	"rapidmandados_backend/internal/models"
)

// RegisterRequest - запрос регистрации
type RegisterRequest struct {
	Email    string          `json:"email" binding:"required,email"`
	Name     string          `json:"name" binding:"required"`
	Phone    string          `json:"phone" binding:"required"`
	Password string          `json:"password" binding:"required,min=6"`
	Role     models.UserRole `json:"user_type" binding:"required,oneof=client driver" validate:"is-user-role"`
	Address  string          `json:"address"`
}

// LoginRequest - запрос входа
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse - ответ с токеном
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        UserResponse `json:"user"`
	Message     string       `json:"message,omitempty"`
}

// UserResponse - публичное представление пользователя, без хеша пароля.
type UserResponse struct {
	ID      string            `json:"id"`
	Email   string            `json:"email"`
	Name    string            `json:"name"`
	Phone   string            `json:"phone"`
	Role    models.UserRole   `json:"user_type"`
	Address string            `json:"address,omitempty"`
	Status  models.UserStatus `json:"status"`

	IsPhoneVerified   bool    `json:"is_phone_verified"`
	IsEmailVerified   bool    `json:"is_email_verified"`
	DocumentsUploaded bool    `json:"documents_uploaded"`
	AdminApproved     bool    `json:"admin_approved"`
	AdminComments     string  `json:"admin_comments,omitempty"`
	IsActive          bool    `json:"is_active"`
	TotalOrders       int     `json:"total_orders"`
	TotalEarnings     float64 `json:"total_earnings"`

	CreatedAt time.Time `json:"created_at"`
}

// NewUserResponse конвертирует модель в DTO, округляя деньги до сентаво.
func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		Email:             u.Email,
		Name:              u.Name,
		Phone:             u.Phone,
		Role:              u.Role,
		Address:           u.Address,
		Status:            u.Status,
		IsPhoneVerified:   u.IsPhoneVerified,
		IsEmailVerified:   u.IsEmailVerified,
		DocumentsUploaded: u.DocumentsUploaded,
		AdminApproved:     u.AdminApproved,
		AdminComments:     u.AdminComments,
		IsActive:          u.IsActive,
		TotalOrders:       u.TotalOrders,
		TotalEarnings:     round2(u.TotalEarnings),
		CreatedAt:         u.CreatedAt,
	}
}
