package services

import (
	"encoding/json"
	"fmt"
	"time"

	"rapidmandados_backend/internal/config"
	"rapidmandados_backend/internal/finance"
	"rapidmandados_backend/internal/logger"
	"rapidmandados_backend/internal/models"
	"rapidmandados_backend/internal/repositories"
	"rapidmandados_backend/internal/services/dto"
	"rapidmandados_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PaymentService interface {
	SetCashPayment(db *gorm.DB, userID, orderID string) (*dto.CashPaymentResponse, error)
	CompleteCashPayment(db *gorm.DB, userID, orderID string) error
	Transactions(db *gorm.DB, userID string) ([]dto.TransactionResponse, error)
}

type PaymentServiceImpl struct {
	orderRepo      repositories.OrderRepository
	userRepo       repositories.UserRepository
	paymentRepo    repositories.PaymentRepository
	commissionRepo repositories.CommissionRepository
}

func NewPaymentService(
	orderRepo repositories.OrderRepository,
	userRepo repositories.UserRepository,
	paymentRepo repositories.PaymentRepository,
	commissionRepo repositories.CommissionRepository,
) PaymentService {
	return &PaymentServiceImpl{
		orderRepo:      orderRepo,
		userRepo:       userRepo,
		paymentRepo:    paymentRepo,
		commissionRepo: commissionRepo,
	}
}

// SetCashPayment закрепляет за заказом оплату наличными.
// Повторный вызов по уже оформленному cash/pending заказу идемпотентен:
// возвращается сохраненная сумма без изменений в БД.
func (s *PaymentServiceImpl) SetCashPayment(db *gorm.DB, userID, orderID string) (*dto.CashPaymentResponse, error) {
	order, err := s.orderRepo.FindByID(db, orderID)
	if err != nil {
		if err == repositories.ErrOrderNotFound {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if order.ClientID != userID {
		return nil, apperrors.ErrInsufficientPermissions
	}

	isCash := order.PaymentMethod != nil && *order.PaymentMethod == models.PaymentMethodCash
	if isCash && order.PaymentStatus == models.PaymentStatusPaid {
		return nil, apperrors.ErrInvalidOperation("payment", "Order already set for cash payment and paid")
	}
	if isCash && order.PaymentStatus == models.PaymentStatusPending {
		return &dto.CashPaymentResponse{
			Message:     "Order already set for cash payment",
			TotalAmount: finance.Round2(order.Financials.Total),
		}, nil
	}

	// Расклад пересчитывается по актуальной конфигурации комиссии:
	// клиент фиксирует способ оплаты по текущим условиям площадки.
	rate, fee, err := s.commissionSnapshot(db)
	if err != nil {
		return nil, err
	}
	// Персональная ставка назначенного водителя имеет приоритет над глобальной.
	if order.DriverID != nil {
		driver, derr := s.userRepo.FindByID(db, *order.DriverID)
		if derr != nil {
			return nil, apperrors.InternalError(derr)
		}
		rate = driver.EffectiveCommissionRate(rate)
	}
	financials := finance.Calculate(order.Price, rate, fee)

	if err := s.orderRepo.SetCashPending(db, orderID, financials); err != nil {
		return nil, apperrors.InternalError(err)
	}

	metadata, err := json.Marshal(map[string]string{
		"base_price":   fmt.Sprintf("%v", financials.Subtotal),
		"commission":   fmt.Sprintf("%v", financials.Commission),
		"service_fee":  fmt.Sprintf("%v", financials.ServiceFee),
		"iva_amount":   fmt.Sprintf("%v", financials.IVA),
		"total_amount": fmt.Sprintf("%v", financials.Total),
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	tx := &models.PaymentTransaction{
		UserID:        &userID,
		OrderID:       &orderID,
		Amount:        financials.Total,
		Currency:      "mxn",
		PaymentMethod: models.PaymentMethodCash,
		PaymentStatus: models.PaymentStatusPending,
		Metadata:      datatypes.JSON(metadata),
	}
	if err := s.paymentRepo.CreateTransaction(db, tx); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.Info("💵 Order set to cash payment",
		"order_id", orderID,
		"total", financials.Total,
	)

	return &dto.CashPaymentResponse{
		Message:     "Order set to cash payment",
		TotalAmount: finance.Round2(financials.Total),
	}, nil
}

// CompleteCashPayment закрывает наличный расчет после доставки.
// Все записи ложатся одной транзакцией репозитория: заказ становится
// оплаченным, pending-транзакция гасится, в леджеры попадают ровно
// одна выплата водителю и одна запись инкассации. При сбое расчет
// откатывается целиком и повтор вызова доводит его до конца.
func (s *PaymentServiceImpl) CompleteCashPayment(db *gorm.DB, userID, orderID string) error {
	order, err := s.orderRepo.FindByID(db, orderID)
	if err != nil {
		if err == repositories.ErrOrderNotFound {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}

	if order.DriverID == nil || *order.DriverID != userID {
		return apperrors.ErrNotOrderDriver
	}
	if order.PaymentMethod == nil || *order.PaymentMethod != models.PaymentMethodCash {
		return apperrors.ErrInvalidOperation("payment", "Order is not a cash payment")
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return apperrors.ErrPaymentAlreadySettled
	}

	payout := &models.DriverPayout{
		DriverID:       userID,
		OrderID:        orderID,
		Amount:         order.Financials.DriverEarnings,
		Currency:       "mxn",
		PaymentMethod:  models.PaymentMethodCash,
		TransferStatus: models.TransferStatusPending,
	}
	collection := &models.CashCollection{
		DriverID:        userID,
		OrderID:         orderID,
		AmountCollected: order.Financials.Total,
		CommissionOwed:  order.Financials.OwnerEarnings,
		Currency:        "mxn",
		CollectionDate:  time.Now(),
		PaymentStatus:   models.PaymentStatusPending,
	}

	if err := s.paymentRepo.SettleCashOrder(db, orderID, payout, collection); err != nil {
		if err == repositories.ErrAlreadySettled {
			return apperrors.ErrPaymentAlreadySettled
		}
		return apperrors.InternalError(err)
	}

	logger.Info("✅ Cash payment completed",
		"order_id", orderID,
		"driver_id", userID,
		"amount_collected", order.Financials.Total,
		"commission_owed", order.Financials.OwnerEarnings,
	)
	return nil
}

// Transactions: админ видит все платежи, остальные - только свои.
func (s *PaymentServiceImpl) Transactions(db *gorm.DB, userID string) ([]dto.TransactionResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	var txs []models.PaymentTransaction
	if user.IsAdmin() {
		txs, err = s.paymentRepo.FindAllTransactions(db)
	} else {
		txs, err = s.paymentRepo.FindTransactionsByUser(db, userID)
	}
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := make([]dto.TransactionResponse, 0, len(txs))
	for i := range txs {
		resp = append(resp, dto.NewTransactionResponse(&txs[i]))
	}
	return resp, nil
}

func (s *PaymentServiceImpl) commissionSnapshot(db *gorm.DB) (rate, fee float64, err error) {
	cfg, err := s.commissionRepo.Get(db)
	if err != nil {
		if err == repositories.ErrCommissionConfigNotFound {
			return config.AppConfig.Commission.Rate, config.AppConfig.Commission.ServiceFee, nil
		}
		return 0, 0, apperrors.InternalError(err)
	}
	return cfg.CommissionRate, cfg.ServiceFee, nil
}
