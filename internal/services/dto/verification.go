package dto

import (
	"time"

	"rapidmandados_backend/internal/models"
)

// VerifyEmailCodeRequest - проверка кода из письма
type VerifyEmailCodeRequest struct {
	Code string `json:"email_code" binding:"required,len=6,numeric"`
}

// UploadDocumentRequest - загрузка документа водителем.
// FileData - содержимое файла в base64.
type UploadDocumentRequest struct {
	DocumentType models.DocumentType `json:"document_type" binding:"required" validate:"is-document-type"`
	FileName     string              `json:"file_name" binding:"required"`
	FileData     string              `json:"file_data" binding:"required"`
}

// SendCodeResponse - подтверждение отправки кода
type SendCodeResponse struct {
	Message   string `json:"message"`
	ExpiresIn string `json:"expires_in"`
}

// DriverVerificationStatusResponse - сводка готовности водителя.
type DriverVerificationStatusResponse struct {
	EmailVerified               bool                             `json:"email_verified"`
	DocumentsStatus             map[string]models.DocumentStatus `json:"documents_status"`
	OverallVerificationComplete bool                             `json:"overall_verification_complete"`
	CanAcceptOrders             bool                             `json:"can_accept_orders"`
	PendingActions              []string                         `json:"pending_actions"`
}

// DocumentResponse - документ без содержимого файла
type DocumentResponse struct {
	ID                     string                `json:"id"`
	DocumentType           models.DocumentType   `json:"document_type"`
	FileName               string                `json:"file_name"`
	UploadDate             time.Time             `json:"upload_date"`
	Status                 models.DocumentStatus `json:"status"`
	AdminComments          *string               `json:"admin_comments,omitempty"`
	AutoVerified           bool                  `json:"auto_verified"`
	VerificationConfidence *float64              `json:"verification_confidence,omitempty"`
}

// UploadDocumentResponse - итог загрузки с вердиктом автопроверки
type UploadDocumentResponse struct {
	Message        string                `json:"message"`
	DocumentStatus models.DocumentStatus `json:"document_status"`
}

func NewDocumentResponse(d *models.Document) DocumentResponse {
	return DocumentResponse{
		ID:                     d.ID,
		DocumentType:           d.DocumentType,
		FileName:               d.FileName,
		UploadDate:             d.UploadDate,
		Status:                 d.Status,
		AdminComments:          d.AdminComments,
		AutoVerified:           d.AutoVerified,
		VerificationConfidence: d.VerificationConfidence,
	}
}
