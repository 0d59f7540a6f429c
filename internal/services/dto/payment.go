package dto

import (
	"time"

	"rapidmandados_backend/internal/models"
)

// CashPaymentRequest - клиент фиксирует оплату наличными
type CashPaymentRequest struct {
	OrderID string `json:"order_id" binding:"required,uuid"`
}

// CashPaymentResponse - подтверждение с суммой к оплате курьеру
type CashPaymentResponse struct {
	Message     string  `json:"message"`
	TotalAmount float64 `json:"total_amount"`
}

// PayoutResponse - выплата водителю
type PayoutResponse struct {
	ID             string                `json:"id"`
	DriverID       string                `json:"driver_id"`
	DriverName     string                `json:"driver_name,omitempty"`
	OrderID        string                `json:"order_id"`
	Amount         float64               `json:"amount"`
	Currency       string                `json:"currency"`
	PaymentMethod  models.PaymentMethod  `json:"payment_method"`
	TransferStatus models.TransferStatus `json:"transfer_status"`
	CreatedAt      time.Time             `json:"created_at"`
}

// CollectionResponse - инкассация наличных
type CollectionResponse struct {
	ID              string               `json:"id"`
	DriverID        string               `json:"driver_id"`
	DriverName      string               `json:"driver_name,omitempty"`
	OrderID         string               `json:"order_id"`
	AmountCollected float64              `json:"amount_collected"`
	CommissionOwed  float64              `json:"commission_owed"`
	Currency        string               `json:"currency"`
	CollectionDate  time.Time            `json:"collection_date"`
	PaymentStatus   models.PaymentStatus `json:"payment_status"`
}

// TransactionResponse - запись журнала платежей
type TransactionResponse struct {
	ID            string               `json:"id"`
	OrderID       *string              `json:"order_id,omitempty"`
	Amount        float64              `json:"amount"`
	Currency      string               `json:"currency"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	CreatedAt     time.Time            `json:"created_at"`
}

func NewPayoutResponse(p *models.DriverPayout) PayoutResponse {
	resp := PayoutResponse{
		ID:             p.ID,
		DriverID:       p.DriverID,
		OrderID:        p.OrderID,
		Amount:         round2(p.Amount),
		Currency:       p.Currency,
		PaymentMethod:  p.PaymentMethod,
		TransferStatus: p.TransferStatus,
		CreatedAt:      p.CreatedAt,
	}
	if p.Driver != nil {
		resp.DriverName = p.Driver.Name
	}
	return resp
}

func NewCollectionResponse(c *models.CashCollection) CollectionResponse {
	resp := CollectionResponse{
		ID:              c.ID,
		DriverID:        c.DriverID,
		OrderID:         c.OrderID,
		AmountCollected: round2(c.AmountCollected),
		CommissionOwed:  round2(c.CommissionOwed),
		Currency:        c.Currency,
		CollectionDate:  c.CollectionDate,
		PaymentStatus:   c.PaymentStatus,
	}
	if c.Driver != nil {
		resp.DriverName = c.Driver.Name
	}
	return resp
}

func NewTransactionResponse(t *models.PaymentTransaction) TransactionResponse {
	return TransactionResponse{
		ID:            t.ID,
		OrderID:       t.OrderID,
		Amount:        round2(t.Amount),
		Currency:      t.Currency,
		PaymentMethod: t.PaymentMethod,
		PaymentStatus: t.PaymentStatus,
		CreatedAt:     t.CreatedAt,
	}
}
