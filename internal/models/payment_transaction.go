package models

import (
	"time"

	"gorm.io/datatypes"
)

// PaymentTransaction - журнальная запись о платеже по заказу.
// OrderID без внешнего ключа: запись переживает удаление заказа.
type PaymentTransaction struct {
	BaseModel
	UserID        *string        `gorm:"index"`
	OrderID       *string        `gorm:"index"`
	SessionID     *string        // для карточных провайдеров, сейчас не используется
	Amount        float64        `gorm:"not null"`
	Currency      string         `gorm:"type:varchar(5);default:'mxn'"`
	PaymentMethod PaymentMethod  `gorm:"type:varchar(20);not null"`
	PaymentStatus PaymentStatus  `gorm:"type:varchar(20);default:'pending'"`
	Metadata      datatypes.JSON `gorm:"type:jsonb"`
}

// DriverPayout - сколько владелец должен перевести водителю за заказ.
// Уникальный индекс по order_id защищает от двойного начисления.
type DriverPayout struct {
	BaseModel
	DriverID       string         `gorm:"not null;index"`
	OrderID        string         `gorm:"not null;uniqueIndex"`
	Amount         float64        `gorm:"not null"`
	Currency       string         `gorm:"type:varchar(5);default:'mxn'"`
	PaymentMethod  PaymentMethod  `gorm:"type:varchar(20);not null"`
	TransferStatus TransferStatus `gorm:"type:varchar(20);default:'pending'"`
	BankAccount    *string

	Driver *User  `gorm:"foreignKey:DriverID"`
	Order  *Order `gorm:"foreignKey:OrderID"`
}

// CashCollection - наличные, которые водитель собрал с клиента,
// и комиссия, которую он должен вернуть владельцу.
type CashCollection struct {
	BaseModel
	DriverID        string        `gorm:"not null;index"`
	OrderID         string        `gorm:"not null;uniqueIndex"`
	AmountCollected float64       `gorm:"not null"`
	CommissionOwed  float64       `gorm:"not null"`
	Currency        string        `gorm:"type:varchar(5);default:'mxn'"`
	CollectionDate  time.Time     `gorm:"default:now()"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(20);default:'pending'"`

	Driver *User  `gorm:"foreignKey:DriverID"`
	Order  *Order `gorm:"foreignKey:OrderID"`
}
