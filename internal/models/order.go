package models

import "time"

// OrderFinancials - развернутый расчет стоимости заказа.
// Хранится встроенным в строку заказа, чтобы исторические заказы
// не менялись при смене комиссии.
type OrderFinancials struct {
	Subtotal       float64 `gorm:"column:fin_subtotal" json:"subtotal"`
	ServiceFee     float64 `gorm:"column:fin_service_fee" json:"service_fee"`
	IVA            float64 `gorm:"column:fin_iva" json:"iva"`
	Total          float64 `gorm:"column:fin_total" json:"total"`
	CommissionRate float64 `gorm:"column:fin_commission_rate" json:"commission_rate"`
	Commission     float64 `gorm:"column:fin_commission" json:"commission"`
	DriverEarnings float64 `gorm:"column:fin_driver_earnings" json:"driver_earnings"`
	OwnerEarnings  float64 `gorm:"column:fin_owner_earnings" json:"owner_earnings"`
}

type Order struct {
	BaseModel
	ClientID string  `gorm:"not null;index"`
	DriverID *string `gorm:"index"`

	Title           string `gorm:"not null"`
	Description     string `gorm:"type:text;not null"`
	PickupAddress   string `gorm:"not null"`
	DeliveryAddress string `gorm:"not null"`

	// Базовая цена товара/услуги, её назначает клиент.
	Price float64 `gorm:"not null"`

	Status        OrderStatus    `gorm:"type:varchar(20);default:'pending';index"`
	PaymentStatus PaymentStatus  `gorm:"type:varchar(20);default:'pending'"`
	PaymentMethod *PaymentMethod `gorm:"type:varchar(20)"`

	Financials OrderFinancials `gorm:"embedded"`

	AcceptedAt  *time.Time
	DeliveredAt *time.Time

	Client *User `gorm:"foreignKey:ClientID"`
	Driver *User `gorm:"foreignKey:DriverID"`
}

// orderTransitions - допустимые переходы статуса заказа.
// delivered и cancelled терминальные.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusAccepted, OrderStatusCancelled},
	OrderStatusAccepted:   {OrderStatusInProgress, OrderStatusCancelled},
	OrderStatusInProgress: {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

// CanTransitionOrder проверяет, разрешен ли переход from -> to.
func CanTransitionOrder(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions exist for the status.
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}
