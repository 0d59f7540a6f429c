package models

import "time"

type User struct {
	BaseModel
	Email        string     `gorm:"uniqueIndex;not null"`
	Name         string     `gorm:"not null"`
	Phone        string     `gorm:"not null"`
	Role         UserRole   `gorm:"type:varchar(20);not null"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Address      string
	Status       UserStatus `gorm:"type:varchar(20);default:'pending'"`

	IsPhoneVerified bool `gorm:"default:false"`
	IsEmailVerified bool `gorm:"default:false"`

	// Водители: выставляется админом после проверки документов.
	DocumentsUploaded bool `gorm:"default:false"`
	AdminApproved     bool `gorm:"default:false"`
	AdminComments     string
	CommissionRate    *float64 // персональная ставка, nil = глобальная

	IsActive      bool    `gorm:"default:true"`
	TotalOrders   int     `gorm:"default:0"`
	TotalEarnings float64 `gorm:"default:0"`

	IsPremium        bool `gorm:"default:false"`
	PremiumExpiresAt *time.Time

	// Relations
	Documents          []Document          `gorm:"foreignKey:UserID"`
	EmailVerifications []EmailVerification `gorm:"foreignKey:UserID"`
	Payouts            []DriverPayout      `gorm:"foreignKey:DriverID"`
	CashCollections    []CashCollection    `gorm:"foreignKey:DriverID"`
}

// EffectiveCommissionRate возвращает персональную ставку водителя,
// если она задана, иначе fallback.
func (u *User) EffectiveCommissionRate(fallback float64) float64 {
	if u.CommissionRate != nil {
		return *u.CommissionRate
	}
	return fallback
}

// IsDriver reports whether the user acts as a courier.
func (u *User) IsDriver() bool {
	return u.Role == UserRoleDriver
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
