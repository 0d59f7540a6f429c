package auth

import (
	"errors"

	"rapidmandados_backend/internal/models"
)

// ValidateRole проверяет, что роль допустима при регистрации.
// Админы создаются только сидером, не через публичный API.
func ValidateRole(role models.UserRole) error {
	switch role {
	case models.UserRoleClient, models.UserRoleDriver:
		return nil
	case models.UserRoleAdmin:
		return errors.New("admin accounts cannot be self-registered")
	default:
		return errors.New("invalid role")
	}
}
