package services

import (
	"rapidmandados_backend/internal/email"
)

// ServiceContainer содержит все сервисы приложения.
type ServiceContainer struct {
	AuthService         AuthService
	VerificationService VerificationService
	OrderService        OrderService
	PaymentService      PaymentService
	AdminService        AdminService
	EmailService        email.Provider
}
