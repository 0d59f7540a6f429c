package dto

import (
	"math"
	"time"

	"rapidmandados_backend/internal/models"
)

// round2 - округление денег до сентаво на границе API.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CreateOrderRequest - заявка клиента на доставку
type CreateOrderRequest struct {
	Title           string  `json:"title" binding:"required"`
	Description     string  `json:"description" binding:"required"`
	PickupAddress   string  `json:"pickup_address" binding:"required"`
	DeliveryAddress string  `json:"delivery_address" binding:"required"`
	Price           float64 `json:"price" binding:"required,gt=0"`
}

// UpdateOrderStatusRequest - перевод заказа водителем по жизненному циклу
type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required,oneof=in_progress delivered cancelled" validate:"is-order-status"`
}

// FinancialsResponse - расклад заказа наружу, в сентаво.
type FinancialsResponse struct {
	Subtotal       float64 `json:"subtotal"`
	ServiceFee     float64 `json:"service_fee"`
	IVA            float64 `json:"iva_amount"`
	Total          float64 `json:"total_amount"`
	CommissionRate float64 `json:"commission_rate"`
	Commission     float64 `json:"commission_amount"`
	DriverEarnings float64 `json:"driver_earnings"`
	OwnerEarnings  float64 `json:"owner_earnings"`
}

// OrderResponse - заказ с именами участников
type OrderResponse struct {
	ID              string               `json:"id"`
	ClientID        string               `json:"client_id"`
	DriverID        *string              `json:"driver_id,omitempty"`
	ClientName      string               `json:"client_name"`
	DriverName      *string              `json:"driver_name,omitempty"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	PickupAddress   string               `json:"pickup_address"`
	DeliveryAddress string               `json:"delivery_address"`
	Price           float64              `json:"price"`
	Status          models.OrderStatus   `json:"status"`
	PaymentStatus   models.PaymentStatus `json:"payment_status"`
	PaymentMethod   models.PaymentMethod `json:"payment_method"`
	Financials      FinancialsResponse   `json:"financials"`
	CreatedAt       time.Time            `json:"created_at"`
	AcceptedAt      *time.Time           `json:"accepted_at,omitempty"`
	DeliveredAt     *time.Time           `json:"delivered_at,omitempty"`
}

func NewFinancialsResponse(f models.OrderFinancials) FinancialsResponse {
	return FinancialsResponse{
		Subtotal:       round2(f.Subtotal),
		ServiceFee:     round2(f.ServiceFee),
		IVA:            round2(f.IVA),
		Total:          round2(f.Total),
		CommissionRate: f.CommissionRate,
		Commission:     round2(f.Commission),
		DriverEarnings: round2(f.DriverEarnings),
		OwnerEarnings:  round2(f.OwnerEarnings),
	}
}

// NewOrderResponse собирает ответ; имена участников подставляет вызывающий,
// если связи не загружены.
func NewOrderResponse(o *models.Order) OrderResponse {
	resp := OrderResponse{
		ID:              o.ID,
		ClientID:        o.ClientID,
		DriverID:        o.DriverID,
		Title:           o.Title,
		Description:     o.Description,
		PickupAddress:   o.PickupAddress,
		DeliveryAddress: o.DeliveryAddress,
		Price:           o.Price,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		Financials:      NewFinancialsResponse(o.Financials),
		CreatedAt:       o.CreatedAt,
		AcceptedAt:      o.AcceptedAt,
		DeliveredAt:     o.DeliveredAt,
	}

	// Старые заказы без способа оплаты считаются наличными.
	if o.PaymentMethod != nil {
		resp.PaymentMethod = *o.PaymentMethod
	} else {
		resp.PaymentMethod = models.PaymentMethodCash
	}

	if o.Client != nil {
		resp.ClientName = o.Client.Name
	}
	if o.Driver != nil {
		resp.DriverName = &o.Driver.Name
	}
	return resp
}
