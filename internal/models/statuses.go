package models

type UserRole string
type UserStatus string
type OrderStatus string
type PaymentStatus string
type PaymentMethod string
type VerificationStatus string
type DocumentStatus string
type DocumentType string
type TransferStatus string

const (
	UserRoleClient UserRole = "client"
	UserRoleDriver UserRole = "driver"
	UserRoleAdmin  UserRole = "admin"

	UserStatusPending   UserStatus = "pending"
	UserStatusApproved  UserStatus = "approved"
	UserStatusRejected  UserStatus = "rejected"
	UserStatusSuspended UserStatus = "suspended"

	OrderStatusPending    OrderStatus = "pending"
	OrderStatusAccepted   OrderStatus = "accepted"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusExpired   PaymentStatus = "expired"

	// Наличные - единственный активный способ оплаты.
	PaymentMethodCash PaymentMethod = "cash"

	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusVerified VerificationStatus = "verified"
	VerificationStatusFailed   VerificationStatus = "failed"
	VerificationStatusExpired  VerificationStatus = "expired"

	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusRejected DocumentStatus = "rejected"

	DocumentTypeINE                 DocumentType = "ine"
	DocumentTypeDriversLicense      DocumentType = "drivers_license"
	DocumentTypeVehicleRegistration DocumentType = "vehicle_registration"
	DocumentTypeProofOfAddress      DocumentType = "proof_of_address"

	TransferStatusPending   TransferStatus = "pending"
	TransferStatusCompleted TransferStatus = "completed"
	TransferStatusFailed    TransferStatus = "failed"
)

// RequiredDocumentTypes - документы, без одобрения которых водитель
// не допускается к заказам. Остальные типы информационные.
var RequiredDocumentTypes = []DocumentType{
	DocumentTypeINE,
	DocumentTypeDriversLicense,
}
