package repositories

import (
	"errors"

	"gorm.io/gorm"

	"rapidmandados_backend/internal/models"
)

var ErrCommissionConfigNotFound = errors.New("commission config not found")

type CommissionRepository interface {
	// Get возвращает единственную строку конфигурации.
	Get(db *gorm.DB) (*models.CommissionConfig, error)
	// GetOrCreate создает строку с дефолтами при первом запуске.
	GetOrCreate(db *gorm.DB, defaults models.CommissionConfig) (*models.CommissionConfig, error)
	Update(db *gorm.DB, cfg *models.CommissionConfig) error
}

type CommissionRepositoryImpl struct{}

func NewCommissionRepository() CommissionRepository {
	return &CommissionRepositoryImpl{}
}

func (r *CommissionRepositoryImpl) Get(db *gorm.DB) (*models.CommissionConfig, error) {
	var cfg models.CommissionConfig
	err := db.Order("id ASC").First(&cfg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommissionConfigNotFound
		}
		return nil, err
	}
	return &cfg, nil
}

func (r *CommissionRepositoryImpl) GetOrCreate(db *gorm.DB, defaults models.CommissionConfig) (*models.CommissionConfig, error) {
	cfg, err := r.Get(db)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, ErrCommissionConfigNotFound) {
		return nil, err
	}

	if err := db.Create(&defaults).Error; err != nil {
		return nil, err
	}
	return &defaults, nil
}

func (r *CommissionRepositoryImpl) Update(db *gorm.DB, cfg *models.CommissionConfig) error {
	return db.Save(cfg).Error
}
