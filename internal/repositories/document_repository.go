package repositories

import (
	"errors"

	"gorm.io/gorm"

	"rapidmandados_backend/internal/models"
)

var ErrDocumentNotFound = errors.New("document not found")

type DocumentRepository interface {
	Create(db *gorm.DB, doc *models.Document) error
	FindByID(db *gorm.DB, id string) (*models.Document, error)
	FindByUser(db *gorm.DB, userID string) ([]models.Document, error)
	FindByUserAndType(db *gorm.DB, userID string, docType models.DocumentType) (*models.Document, error)
	FindPending(db *gorm.DB) ([]models.Document, error)

	// ReplaceForSlot удаляет старые документы слота и пишет новый.
	ReplaceForSlot(db *gorm.DB, doc *models.Document) error
	Review(db *gorm.DB, docID string, status models.DocumentStatus, comments *string) error
}

type DocumentRepositoryImpl struct{}

func NewDocumentRepository() DocumentRepository {
	return &DocumentRepositoryImpl{}
}

func (r *DocumentRepositoryImpl) Create(db *gorm.DB, doc *models.Document) error {
	return db.Create(doc).Error
}

func (r *DocumentRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Document, error) {
	var doc models.Document
	err := db.First(&doc, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepositoryImpl) FindByUser(db *gorm.DB, userID string) ([]models.Document, error) {
	var docs []models.Document
	err := db.Where("user_id = ?", userID).Order("upload_date DESC").Find(&docs).Error
	return docs, err
}

func (r *DocumentRepositoryImpl) FindByUserAndType(db *gorm.DB, userID string, docType models.DocumentType) (*models.Document, error) {
	var doc models.Document
	err := db.Where("user_id = ? AND document_type = ?", userID, docType).
		Order("upload_date DESC").First(&doc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepositoryImpl) FindPending(db *gorm.DB) ([]models.Document, error) {
	var docs []models.Document
	err := db.Preload("User").
		Where("status = ?", models.DocumentStatusPending).
		Order("upload_date ASC").Find(&docs).Error
	return docs, err
}

// ReplaceForSlot атомарно заменяет документ в слоте user+type.
// Одобренные документы слот не освобождают, это проверяет сервис.
func (r *DocumentRepositoryImpl) ReplaceForSlot(db *gorm.DB, doc *models.Document) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(
			"user_id = ? AND document_type = ? AND status <> ?",
			doc.UserID, doc.DocumentType, models.DocumentStatusApproved,
		).Delete(&models.Document{}).Error; err != nil {
			return err
		}
		return tx.Create(doc).Error
	})
}

func (r *DocumentRepositoryImpl) Review(db *gorm.DB, docID string, status models.DocumentStatus, comments *string) error {
	fields := map[string]interface{}{
		"status": status,
	}
	if comments != nil {
		fields["admin_comments"] = *comments
	}

	result := db.Model(&models.Document{}).Where("id = ?", docID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
