package models

import "time"

// Document - загруженный водителем документ для верификации.
// FileData хранит содержимое файла в base64.
type Document struct {
	BaseModel
	UserID       string         `gorm:"not null;index"`
	DocumentType DocumentType   `gorm:"type:varchar(30);not null"`
	FileName     string         `gorm:"not null"`
	FileData     string         `gorm:"type:text;not null" json:"-"`
	UploadDate   time.Time      `gorm:"default:now()"`
	Status       DocumentStatus `gorm:"type:varchar(20);default:'pending'"`

	AdminComments *string

	// Результат автоматической проверки, если она проводилась.
	AutoVerified           bool `gorm:"default:false"`
	VerificationConfidence *float64

	User *User `gorm:"foreignKey:UserID"`
}

// IsRequired reports whether the document type blocks driver verification.
func (t DocumentType) IsRequired() bool {
	for _, rt := range RequiredDocumentTypes {
		if rt == t {
			return true
		}
	}
	return false
}
