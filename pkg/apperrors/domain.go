package apperrors

import (
	"net/http"
)

/*
Этот файл содержит фабрики и предопределенные переменные
для общих ошибок бизнес-логики и домена.
*/

// =========================================================================
// Фабричные ФУНКЦИИ (Используются для оборачивания ошибок, напр. из репозитория)
// =========================================================================

// ErrNotFound - фабрика для ошибки "не найдено" (404)
// Используется, когда ошибка репозитория (типа gorm.ErrRecordNotFound)
// должна быть преобразована в AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - фабрика для ошибки "уже существует" (409)
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// ErrInvalidStatus - фабрика для невалидных статусов (400)
func ErrInvalidStatus(domain, message string) *AppError {
	return New(CodeInvalidStatus, domain, message, http.StatusBadRequest)
}

// =========================================================================
// Предопределенные ПЕРЕМЕННЫЕ (Для частых, статичных ошибок)
// =========================================================================

// --- Auth & User Status ---

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// ErrUserSuspended - аккаунт временно заблокирован админом.
var ErrUserSuspended = New(
	CodeForbidden,
	"auth",
	"Your account has been suspended",
	http.StatusForbidden,
)

var ErrWeakPassword = New(
	CodeValidationFailed,
	"validation",
	"Password is too weak. Minimum 6 characters required.",
	http.StatusBadRequest,
)

// --- Orders ---

// ErrOrderAlreadyTaken - заказ уже принят другим водителем (гонка на accept).
var ErrOrderAlreadyTaken = New(
	CodeConflict,
	"orders",
	"Order is no longer available",
	http.StatusConflict,
)

// ErrInvalidOrderTransition - переход статуса заказа не разрешен.
var ErrInvalidOrderTransition = New(
	CodeInvalidStatus,
	"orders",
	"Order status transition is not allowed",
	http.StatusConflict,
)

// ErrNotOrderDriver - заказ назначен другому водителю.
var ErrNotOrderDriver = New(
	CodeForbidden,
	"orders",
	"Order is assigned to another driver",
	http.StatusForbidden,
)

// --- Verification ---

// ErrDriverNotVerified - водитель не прошел верификацию и не может брать заказы.
var ErrDriverNotVerified = New(
	CodeForbidden,
	"verification",
	"Driver verification is not complete",
	http.StatusForbidden,
)

// ErrVerificationCodeExpired - код подтверждения почты просрочен.
var ErrVerificationCodeExpired = New(
	CodeInvalidToken,
	"verification",
	"Código expirado. Solicita uno nuevo.",
	http.StatusBadRequest,
)

// ErrVerificationAttemptsExceeded - исчерпан лимит попыток ввода кода.
var ErrVerificationAttemptsExceeded = New(
	CodeLimitExceeded,
	"verification",
	"Demasiados intentos. Solicita un nuevo código.",
	http.StatusBadRequest,
)

// ErrVerificationCodeMismatch - введен неверный код.
var ErrVerificationCodeMismatch = New(
	CodeValidationFailed,
	"verification",
	"Código incorrecto",
	http.StatusBadRequest,
)

// ErrDocumentAlreadyApproved - нельзя перезаливать одобренный документ.
var ErrDocumentAlreadyApproved = New(
	CodeInvalidOperation,
	"verification",
	"Este documento ya fue aprobado y no puede ser reemplazado",
	http.StatusBadRequest,
)

// --- Payments & Settlement ---

// ErrPaymentAlreadySettled - по заказу уже созданы записи выплаты/инкассации.
var ErrPaymentAlreadySettled = New(
	CodeConflict,
	"payments",
	"Payment for this order is already settled",
	http.StatusConflict,
)

// ErrOrderNotDelivered - расчет возможен только по доставленному заказу.
var ErrOrderNotDelivered = New(
	CodeInvalidStatus,
	"payments",
	"Order is not delivered yet",
	http.StatusBadRequest,
)

var ErrInvalidPaymentAmount = New(
	CodeConflict,
	"payments",
	"Invalid payment amount",
	http.StatusConflict,
)

// --- Admin ---

// ErrCannotModifySelf - админ пытается изменить собственный аккаунт.
var ErrCannotModifySelf = New(
	CodeForbidden,
	"business_logic",
	"Operation on self is not allowed",
	http.StatusForbidden,
)

// ErrInvalidCommissionRate - ставка комиссии вне диапазона [0, 1].
var ErrInvalidCommissionRate = New(
	CodeValidationFailed,
	"validation",
	"Commission rate must be between 0 and 1",
	http.StatusBadRequest,
)
