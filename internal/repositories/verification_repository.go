package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"rapidmandados_backend/internal/models"
)

var ErrVerificationNotFound = errors.New("verification record not found")

type VerificationRepository interface {
	FindPendingByUser(db *gorm.DB, userID string) (*models.EmailVerification, error)
	Create(db *gorm.DB, v *models.EmailVerification) error
	Save(db *gorm.DB, v *models.EmailVerification) error

	// IncrementAttempts атомарно засчитывает неудачную попытку
	// и возвращает новое значение счетчика.
	IncrementAttempts(db *gorm.DB, id string) (int, error)
	SetStatus(db *gorm.DB, id string, status models.VerificationStatus) error
	MarkVerified(db *gorm.DB, id string) error

	// ExpireStale помечает протухшие pending-коды, возвращает число строк.
	ExpireStale(db *gorm.DB, now time.Time) (int64, error)
}

type VerificationRepositoryImpl struct{}

func NewVerificationRepository() VerificationRepository {
	return &VerificationRepositoryImpl{}
}

func (r *VerificationRepositoryImpl) FindPendingByUser(db *gorm.DB, userID string) (*models.EmailVerification, error) {
	var v models.EmailVerification
	err := db.Where("user_id = ? AND status = ?", userID, models.VerificationStatusPending).
		Order("created_at DESC").First(&v).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVerificationNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *VerificationRepositoryImpl) Create(db *gorm.DB, v *models.EmailVerification) error {
	return db.Create(v).Error
}

func (r *VerificationRepositoryImpl) Save(db *gorm.DB, v *models.EmailVerification) error {
	return db.Save(v).Error
}

func (r *VerificationRepositoryImpl) IncrementAttempts(db *gorm.DB, id string) (int, error) {
	result := db.Model(&models.EmailVerification{}).
		Where("id = ? AND status = ?", id, models.VerificationStatusPending).
		Update("attempts", gorm.Expr("attempts + 1"))
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrVerificationNotFound
	}

	var v models.EmailVerification
	if err := db.Select("attempts").First(&v, "id = ?", id).Error; err != nil {
		return 0, err
	}
	return v.Attempts, nil
}

func (r *VerificationRepositoryImpl) SetStatus(db *gorm.DB, id string, status models.VerificationStatus) error {
	result := db.Model(&models.EmailVerification{}).
		Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVerificationNotFound
	}
	return nil
}

func (r *VerificationRepositoryImpl) MarkVerified(db *gorm.DB, id string) error {
	result := db.Model(&models.EmailVerification{}).
		Where("id = ? AND status = ?", id, models.VerificationStatusPending).
		Updates(map[string]interface{}{
			"status":      models.VerificationStatusVerified,
			"verified_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVerificationNotFound
	}
	return nil
}

func (r *VerificationRepositoryImpl) ExpireStale(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Model(&models.EmailVerification{}).
		Where("status = ? AND expires_at < ?", models.VerificationStatusPending, now).
		Update("status", models.VerificationStatusExpired)
	return result.RowsAffected, result.Error
}
