package validator

import (
	"log"

	"rapidmandados_backend/internal/models"

	"github.com/go-playground/validator/v10"
)

// registerCustomRules регистрирует все кастомные функции валидации в
// переданном экземпляре валидатора.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Если правило не удалось зарегистрировать, приложение
			// не должно запускаться, так как это критическая ошибка.
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	// 'is-user-role': Проверяет, что роль пользователя валидна
	mustRegister("is-user-role", validateUserRole)

	// 'is-order-status': Проверяет, что статус заказа валиден
	mustRegister("is-order-status", validateOrderStatus)

	// 'is-payment-status': Проверяет, что статус платежа валиден
	mustRegister("is-payment-status", validatePaymentStatus)

	// 'is-document-type': Проверяет тип документа водителя
	mustRegister("is-document-type", validateDocumentType)
}

// --- Функции валидации ---

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // Не проверяем пустые значения, для этого есть 'required'
	}

	switch models.UserRole(value) {
	case models.UserRoleClient, models.UserRoleDriver, models.UserRoleAdmin:
		return true
	default:
		return false
	}
}

func validateOrderStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // 'required' обрабатывает пустые
	}
	switch models.OrderStatus(value) {
	case models.OrderStatusPending, models.OrderStatusAccepted, models.OrderStatusInProgress,
		models.OrderStatusDelivered, models.OrderStatusCancelled:
		return true
	default:
		return false
	}
}

func validatePaymentStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.PaymentStatus(value) {
	case models.PaymentStatusPending, models.PaymentStatusPaid, models.PaymentStatusCompleted,
		models.PaymentStatusCancelled, models.PaymentStatusExpired:
		return true
	default:
		return false
	}
}

func validateDocumentType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.DocumentType(value) {
	case models.DocumentTypeINE, models.DocumentTypeDriversLicense,
		models.DocumentTypeVehicleRegistration, models.DocumentTypeProofOfAddress:
		return true
	default:
		return false
	}
}
