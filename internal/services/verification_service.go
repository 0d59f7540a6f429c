package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"rapidmandados_backend/internal/config"
	"rapidmandados_backend/internal/docjudge"
	"rapidmandados_backend/internal/email"
	"rapidmandados_backend/internal/logger"
	"rapidmandados_backend/internal/models"
	"rapidmandados_backend/internal/repositories"
	"rapidmandados_backend/internal/services/dto"
	"rapidmandados_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type VerificationService interface {
	SendEmailCode(db *gorm.DB, userID string) (*dto.SendCodeResponse, error)
	VerifyEmailCode(db *gorm.DB, userID, code string) error
	Status(db *gorm.DB, userID string) (*dto.DriverVerificationStatusResponse, error)
	UploadDocument(db *gorm.DB, userID string, req *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error)
	Documents(db *gorm.DB, userID string) ([]dto.DocumentResponse, error)
	CanAcceptOrders(db *gorm.DB, user *models.User) (bool, error)
}

type VerificationServiceImpl struct {
	userRepo         repositories.UserRepository
	verificationRepo repositories.VerificationRepository
	documentRepo     repositories.DocumentRepository
	emailProvider    email.Provider
	judge            docjudge.Judge
}

func NewVerificationService(
	userRepo repositories.UserRepository,
	verificationRepo repositories.VerificationRepository,
	documentRepo repositories.DocumentRepository,
	emailProvider email.Provider,
	judge docjudge.Judge,
) VerificationService {
	return &VerificationServiceImpl{
		userRepo:         userRepo,
		verificationRepo: verificationRepo,
		documentRepo:     documentRepo,
		emailProvider:    emailProvider,
		judge:            judge,
	}
}

// SendEmailCode генерирует 6-значный код и отправляет его на почту водителя.
// На пользователя активна максимум одна pending-запись: повторная отправка
// переиспользует её, сбрасывая код, попытки и срок жизни.
func (s *VerificationServiceImpl) SendEmailCode(db *gorm.DB, userID string) (*dto.SendCodeResponse, error) {
	user, err := s.requireDriver(db, userID)
	if err != nil {
		return nil, err
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	ttl := time.Duration(config.AppConfig.Verification.CodeTTLHours) * time.Hour
	expiresAt := time.Now().Add(ttl)

	existing, err := s.verificationRepo.FindPendingByUser(db, userID)
	switch err {
	case nil:
		existing.VerificationCode = code
		existing.ExpiresAt = expiresAt
		existing.Attempts = 0
		existing.Status = models.VerificationStatusPending
		if err := s.verificationRepo.Save(db, existing); err != nil {
			return nil, apperrors.InternalError(err)
		}
	case repositories.ErrVerificationNotFound:
		record := &models.EmailVerification{
			UserID:           userID,
			Email:            user.Email,
			VerificationCode: code,
			Status:           models.VerificationStatusPending,
			ExpiresAt:        expiresAt,
			MaxAttempts:      config.AppConfig.Verification.MaxAttempts,
		}
		if err := s.verificationRepo.Create(db, record); err != nil {
			return nil, apperrors.InternalError(err)
		}
	default:
		return nil, apperrors.InternalError(err)
	}

	// Письмо уходит после коммита записи. Неудача отправки
	// не откатывает код: водитель может запросить повторную отправку.
	go func(to, code, name string) {
		if err := s.emailProvider.SendVerification(to, code, name); err != nil {
			logger.WithError(err).Warn("📧 Failed to send verification email", "email", to)
		}
	}(user.Email, code, user.Name)

	return &dto.SendCodeResponse{
		Message:   "Verification code sent to email",
		ExpiresIn: fmt.Sprintf("%d hours", config.AppConfig.Verification.CodeTTLHours),
	}, nil
}

// VerifyEmailCode сверяет присланный код с pending-записью.
// Просрочка и исчерпание попыток переводят запись в терминальный статус,
// несовпадение атомарно увеличивает счетчик попыток.
func (s *VerificationServiceImpl) VerifyEmailCode(db *gorm.DB, userID, code string) error {
	if _, err := s.requireDriver(db, userID); err != nil {
		return err
	}

	record, err := s.verificationRepo.FindPendingByUser(db, userID)
	if err != nil {
		if err == repositories.ErrVerificationNotFound {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}

	if record.IsExpired(time.Now()) {
		if err := s.verificationRepo.SetStatus(db, record.ID, models.VerificationStatusExpired); err != nil {
			return apperrors.InternalError(err)
		}
		return apperrors.ErrVerificationCodeExpired
	}

	if record.AttemptsExhausted() {
		if err := s.verificationRepo.SetStatus(db, record.ID, models.VerificationStatusFailed); err != nil {
			return apperrors.InternalError(err)
		}
		return apperrors.ErrVerificationAttemptsExceeded
	}

	if record.VerificationCode != code {
		if _, err := s.verificationRepo.IncrementAttempts(db, record.ID); err != nil {
			return apperrors.InternalError(err)
		}
		return apperrors.ErrVerificationCodeMismatch
	}

	if err := s.verificationRepo.MarkVerified(db, record.ID); err != nil {
		return apperrors.InternalError(err)
	}
	if err := s.userRepo.SetEmailVerified(db, userID); err != nil {
		return apperrors.InternalError(err)
	}

	logger.Info("✅ Driver email verified", "user_id", userID)
	return nil
}

// Status возвращает сводку готовности водителя к приему заказов.
func (s *VerificationServiceImpl) Status(db *gorm.DB, userID string) (*dto.DriverVerificationStatusResponse, error) {
	user, err := s.requireDriver(db, userID)
	if err != nil {
		return nil, err
	}

	docs, err := s.documentRepo.FindByUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	status := deriveVerificationStatus(user, docs)
	return &status, nil
}

// UploadDocument принимает документ водителя и сразу прогоняет его
// через автоматическую проверку. Одобренный слот перезаливать нельзя.
func (s *VerificationServiceImpl) UploadDocument(db *gorm.DB, userID string, req *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error) {
	user, err := s.requireDriver(db, userID)
	if err != nil {
		return nil, err
	}

	if !user.IsPhoneVerified || !user.IsEmailVerified {
		return nil, apperrors.ErrInvalidOperation("verification", "Please verify phone and email first")
	}

	existing, err := s.documentRepo.FindByUserAndType(db, userID, req.DocumentType)
	if err != nil && err != repositories.ErrDocumentNotFound {
		return nil, apperrors.InternalError(err)
	}
	if existing != nil && existing.Status == models.DocumentStatusApproved {
		return nil, apperrors.ErrDocumentAlreadyApproved
	}

	verdict := s.judge.Validate(req.DocumentType, req.FileData)

	docStatus := models.DocumentStatusRejected
	if verdict.IsValid {
		docStatus = models.DocumentStatusApproved
	}

	confidence := verdict.Confidence
	doc := &models.Document{
		UserID:                 userID,
		DocumentType:           req.DocumentType,
		FileName:               req.FileName,
		FileData:               req.FileData,
		UploadDate:             time.Now(),
		Status:                 docStatus,
		AutoVerified:           true,
		VerificationConfidence: &confidence,
	}

	if err := s.documentRepo.ReplaceForSlot(db, doc); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.recomputeDocumentsUploaded(db, userID); err != nil {
		return nil, err
	}

	logger.Info("📄 Driver document uploaded",
		"user_id", userID,
		"document_type", string(req.DocumentType),
		"status", string(docStatus),
	)

	return &dto.UploadDocumentResponse{
		Message:        "Document uploaded and validated",
		DocumentStatus: docStatus,
	}, nil
}

func (s *VerificationServiceImpl) Documents(db *gorm.DB, userID string) ([]dto.DocumentResponse, error) {
	if _, err := s.requireDriver(db, userID); err != nil {
		return nil, err
	}

	docs, err := s.documentRepo.FindByUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		resp = append(resp, dto.NewDocumentResponse(&docs[i]))
	}
	return resp, nil
}

// CanAcceptOrders - гейт на прием заказов. Пересчитывается по живым данным,
// а не по кешированным флагам пользователя.
func (s *VerificationServiceImpl) CanAcceptOrders(db *gorm.DB, user *models.User) (bool, error) {
	docs, err := s.documentRepo.FindByUser(db, user.ID)
	if err != nil {
		return false, apperrors.InternalError(err)
	}

	status := deriveVerificationStatus(user, docs)
	return status.CanAcceptOrders, nil
}

func (s *VerificationServiceImpl) requireDriver(db *gorm.DB, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	if !user.IsDriver() {
		return nil, apperrors.ErrInsufficientPermissions
	}
	return user, nil
}

// recomputeDocumentsUploaded взводит флаг, когда по каждому обязательному
// типу есть хоть какая-то запись (независимо от её статуса).
func (s *VerificationServiceImpl) recomputeDocumentsUploaded(db *gorm.DB, userID string) error {
	docs, err := s.documentRepo.FindByUser(db, userID)
	if err != nil {
		return apperrors.InternalError(err)
	}

	uploaded := make(map[models.DocumentType]bool, len(docs))
	for i := range docs {
		uploaded[docs[i].DocumentType] = true
	}

	all := true
	for _, rt := range models.RequiredDocumentTypes {
		if !uploaded[rt] {
			all = false
			break
		}
	}

	if all {
		if err := s.userRepo.UpdateFields(db, userID, map[string]interface{}{
			"documents_uploaded": true,
		}); err != nil {
			return apperrors.InternalError(err)
		}
	}
	return nil
}

// deriveVerificationStatus собирает сводку по почте и обязательным документам.
// Порядок pending_actions фиксирован: сначала почта, потом документы
// в порядке объявления RequiredDocumentTypes.
func deriveVerificationStatus(user *models.User, docs []models.Document) dto.DriverVerificationStatusResponse {
	latestBySlot := make(map[models.DocumentType]*models.Document, len(docs))
	for i := range docs {
		d := &docs[i]
		if cur, ok := latestBySlot[d.DocumentType]; !ok || d.UploadDate.After(cur.UploadDate) {
			latestBySlot[d.DocumentType] = d
		}
	}

	documentsStatus := make(map[string]models.DocumentStatus, len(models.RequiredDocumentTypes))
	allApproved := true
	for _, rt := range models.RequiredDocumentTypes {
		st := models.DocumentStatusPending
		if d, ok := latestBySlot[rt]; ok {
			st = d.Status
		}
		documentsStatus[string(rt)] = st
		if st != models.DocumentStatusApproved {
			allApproved = false
		}
	}

	overall := user.IsEmailVerified && allApproved
	canAccept := overall && user.Status == models.UserStatusApproved

	var pending []string
	if !user.IsEmailVerified {
		pending = append(pending, "Verificar correo electrónico")
	}
	for _, rt := range models.RequiredDocumentTypes {
		switch documentsStatus[string(rt)] {
		case models.DocumentStatusPending:
			pending = append(pending, fmt.Sprintf("Subir documento: %s", rt))
		case models.DocumentStatusRejected:
			pending = append(pending, fmt.Sprintf("Volver a subir documento: %s", rt))
		}
	}

	return dto.DriverVerificationStatusResponse{
		EmailVerified:               user.IsEmailVerified,
		DocumentsStatus:             documentsStatus,
		OverallVerificationComplete: overall,
		CanAcceptOrders:             canAccept,
		PendingActions:              pending,
	}
}

// generateVerificationCode - криптостойкий 6-значный числовой код.
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
