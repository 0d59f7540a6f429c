package models

import "time"

// CommissionConfig - глобальные финансовые параметры площадки.
// Единственная строка, автоинкрементный ID для простоты.
type CommissionConfig struct {
	ID             uint    `gorm:"primaryKey;autoIncrement"`
	CommissionRate float64 `gorm:"not null"`
	ServiceFee     float64 `gorm:"not null"`

	PremiumSubscriptionMonthly float64 `gorm:"not null"`

	UpdatedAt time.Time `gorm:"autoUpdateTime"`
	UpdatedBy *string   // ID админа, который менял последним
}
