package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"rapidmandados_backend/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type UserRepository interface {
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	Create(db *gorm.DB, user *models.User) error
	Save(db *gorm.DB, user *models.User) error
	UpdateFields(db *gorm.DB, userID string, fields map[string]interface{}) error
	UpdateStatus(db *gorm.DB, userID string, status models.UserStatus) error
	SetEmailVerified(db *gorm.DB, userID string) error
	SetActive(db *gorm.DB, userID string, active bool) error

	FindByRole(db *gorm.DB, role models.UserRole, limit, offset int) ([]models.User, error)
	FindAllNonAdmin(db *gorm.DB) ([]models.User, error)
	FindPendingDrivers(db *gorm.DB) ([]models.User, error)
	CountActiveNonAdmin(db *gorm.DB) (int64, error)
	CountActiveDrivers(db *gorm.DB) (int64, error)
	CountAll(db *gorm.DB) (int64, error)
}

type UserRepositoryImpl struct{}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

func (r *UserRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := db.First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) Create(db *gorm.DB, user *models.User) error {
	var existing models.User
	if err := db.Where("email = ?", user.Email).First(&existing).Error; err == nil {
		return ErrUserAlreadyExists
	}

	return db.Create(user).Error
}

func (r *UserRepositoryImpl) Save(db *gorm.DB, user *models.User) error {
	return db.Save(user).Error
}

func (r *UserRepositoryImpl) UpdateFields(db *gorm.DB, userID string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()

	result := db.Model(&models.User{}).Where("id = ?", userID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) UpdateStatus(db *gorm.DB, userID string, status models.UserStatus) error {
	return r.UpdateFields(db, userID, map[string]interface{}{"status": status})
}

func (r *UserRepositoryImpl) SetEmailVerified(db *gorm.DB, userID string) error {
	return r.UpdateFields(db, userID, map[string]interface{}{"is_email_verified": true})
}

func (r *UserRepositoryImpl) SetActive(db *gorm.DB, userID string, active bool) error {
	return r.UpdateFields(db, userID, map[string]interface{}{"is_active": active})
}

// CreditEarnings атомарно начисляет водителю заработок по доставленному
// заказу и инкрементирует счетчик заказов. Вызывается из транзакции
// MarkDelivered, поэтому живет на конкретном типе, а не в интерфейсе.
func (r *UserRepositoryImpl) CreditEarnings(db *gorm.DB, userID string, amount float64) error {
	result := db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"total_earnings": gorm.Expr("total_earnings + ?", amount),
		"total_orders":   gorm.Expr("total_orders + 1"),
		"updated_at":     time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) FindByRole(db *gorm.DB, role models.UserRole, limit, offset int) ([]models.User, error) {
	var users []models.User
	err := db.Where("role = ?", role).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error
	return users, err
}

// FindPendingDrivers возвращает водителей, ожидающих одобрения админом.
func (r *UserRepositoryImpl) FindPendingDrivers(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	err := db.Preload("Documents").
		Where("role = ? AND status = ?", models.UserRoleDriver, models.UserStatusPending).
		Order("created_at ASC").Find(&users).Error
	return users, err
}

// FindAllNonAdmin - список пользователей для админ-панели, без админов.
func (r *UserRepositoryImpl) FindAllNonAdmin(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	err := db.Where("role <> ?", models.UserRoleAdmin).
		Order("created_at DESC").Find(&users).Error
	return users, err
}

func (r *UserRepositoryImpl) CountActiveNonAdmin(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.User{}).
		Where("is_active = ? AND role <> ?", true, models.UserRoleAdmin).
		Count(&count).Error
	return count, err
}

func (r *UserRepositoryImpl) CountActiveDrivers(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.User{}).
		Where("is_active = ? AND role = ?", true, models.UserRoleDriver).
		Count(&count).Error
	return count, err
}

func (r *UserRepositoryImpl) CountAll(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.User{}).Count(&count).Error
	return count, err
}
