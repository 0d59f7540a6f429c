package models

import "time"

// EmailVerification - одноразовый код подтверждения почты.
// На пользователя активна максимум одна pending-запись:
// повторная отправка переиспользует её со сбросом кода и попыток.
type EmailVerification struct {
	BaseModel
	UserID           string             `gorm:"not null;index"`
	Email            string             `gorm:"not null"`
	VerificationCode string             `gorm:"type:varchar(10);not null"`
	Status           VerificationStatus `gorm:"type:varchar(20);default:'pending'"`
	ExpiresAt        time.Time          `gorm:"not null"`
	VerifiedAt       *time.Time
	Attempts         int `gorm:"default:0"`
	MaxAttempts      int `gorm:"default:3"`

	User *User `gorm:"foreignKey:UserID"`
}

// IsExpired reports whether the code lifetime has passed.
func (v *EmailVerification) IsExpired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// AttemptsExhausted - лимит попыток ввода кода исчерпан.
func (v *EmailVerification) AttemptsExhausted() bool {
	return v.Attempts >= v.MaxAttempts
}
