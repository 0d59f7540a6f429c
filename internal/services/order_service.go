package services

import (
	"fmt"

	"rapidmandados_backend/internal/config"
	"rapidmandados_backend/internal/finance"
	"rapidmandados_backend/internal/logger"
	"rapidmandados_backend/internal/models"
	"rapidmandados_backend/internal/repositories"
	"rapidmandados_backend/internal/services/dto"
	"rapidmandados_backend/internal/sms"
	"rapidmandados_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type OrderService interface {
	Create(db *gorm.DB, userID string, req *dto.CreateOrderRequest) (*dto.OrderResponse, error)
	ListForUser(db *gorm.DB, userID string, limit, offset int) ([]dto.OrderResponse, error)
	ListForDriver(db *gorm.DB, userID string) ([]dto.OrderResponse, error)
	Accept(db *gorm.DB, userID, orderID string) error
	UpdateStatus(db *gorm.DB, userID, orderID string, next models.OrderStatus) error
}

type OrderServiceImpl struct {
	orderRepo       repositories.OrderRepository
	userRepo        repositories.UserRepository
	commissionRepo  repositories.CommissionRepository
	verificationSvc VerificationService
	smsProvider     sms.Provider
}

func NewOrderService(
	orderRepo repositories.OrderRepository,
	userRepo repositories.UserRepository,
	commissionRepo repositories.CommissionRepository,
	verificationSvc VerificationService,
	smsProvider sms.Provider,
) OrderService {
	return &OrderServiceImpl{
		orderRepo:       orderRepo,
		userRepo:        userRepo,
		commissionRepo:  commissionRepo,
		verificationSvc: verificationSvc,
		smsProvider:     smsProvider,
	}
}

// Create кладет новый заказ с рассчитанным раскладом.
// Расклад фиксируется в строке заказа, последующая смена комиссии
// на исторические заказы не влияет.
func (s *OrderServiceImpl) Create(db *gorm.DB, userID string, req *dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	user, err := s.findUser(db, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != models.UserRoleClient {
		return nil, apperrors.ErrInsufficientPermissions
	}

	minPrice := config.AppConfig.Orders.MinPrice
	maxPrice := config.AppConfig.Orders.MaxPrice
	if req.Price < minPrice || req.Price > maxPrice {
		return nil, apperrors.ErrInvalidOperation("order",
			fmt.Sprintf("Order price must be between $%.2f and $%.2f MXN", minPrice, maxPrice))
	}

	rate, fee, err := s.commissionSnapshot(db)
	if err != nil {
		return nil, err
	}

	method := models.PaymentMethodCash
	order := &models.Order{
		ClientID:        userID,
		Title:           req.Title,
		Description:     req.Description,
		PickupAddress:   req.PickupAddress,
		DeliveryAddress: req.DeliveryAddress,
		Price:           req.Price,
		Status:          models.OrderStatusPending,
		PaymentStatus:   models.PaymentStatusPending,
		PaymentMethod:   &method,
		Financials:      finance.Calculate(req.Price, rate, fee),
	}

	if err := s.orderRepo.Create(db, order); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if err := s.userRepo.UpdateFields(db, userID, map[string]interface{}{
		"total_orders": gorm.Expr("total_orders + 1"),
	}); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.Info("📦 Order created",
		"order_id", order.ID,
		"client_id", userID,
		"price", req.Price,
	)

	resp := dto.NewOrderResponse(order)
	resp.ClientName = user.Name
	return &resp, nil
}

// ListForUser возвращает заказы по роли:
// клиент видит свои, водитель - свободный пул, админ - все.
func (s *OrderServiceImpl) ListForUser(db *gorm.DB, userID string, limit, offset int) ([]dto.OrderResponse, error) {
	user, err := s.findUser(db, userID)
	if err != nil {
		return nil, err
	}

	var orders []models.Order
	switch user.Role {
	case models.UserRoleClient:
		orders, err = s.orderRepo.FindByClient(db, userID)
	case models.UserRoleDriver:
		orders, err = s.orderRepo.FindPending(db, limit, offset)
	default:
		orders, err = s.orderRepo.FindAll(db, limit, offset)
	}
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return toOrderResponses(orders), nil
}

// ListForDriver - заказы, закрепленные за водителем.
func (s *OrderServiceImpl) ListForDriver(db *gorm.DB, userID string) ([]dto.OrderResponse, error) {
	user, err := s.findUser(db, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsDriver() {
		return nil, apperrors.ErrInsufficientPermissions
	}

	orders, err := s.orderRepo.FindByDriver(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toOrderResponses(orders), nil
}

// Accept закрепляет свободный заказ за водителем.
// Гейт верификации пересчитывается по живым данным на каждый вызов.
// Гонку двух водителей решает условный апдейт в репозитории.
func (s *OrderServiceImpl) Accept(db *gorm.DB, userID, orderID string) error {
	user, err := s.findUser(db, userID)
	if err != nil {
		return err
	}
	if !user.IsDriver() {
		return apperrors.ErrInsufficientPermissions
	}

	canAccept, err := s.verificationSvc.CanAcceptOrders(db, user)
	if err != nil {
		return err
	}
	if !canAccept {
		return apperrors.ErrDriverNotVerified
	}

	if err := s.orderRepo.Accept(db, orderID, userID); err != nil {
		switch err {
		case repositories.ErrOrderNotFound:
			return apperrors.ErrNotFound(err)
		case repositories.ErrOrderTaken:
			return apperrors.ErrOrderAlreadyTaken
		default:
			return apperrors.InternalError(err)
		}
	}

	logger.Info("🚚 Order accepted", "order_id", orderID, "driver_id", userID)

	// Уведомление уходит после закрепления заказа, его неудача не откатывает accept.
	go s.notifyClientOrderAccepted(db, orderID)
	return nil
}

func (s *OrderServiceImpl) notifyClientOrderAccepted(db *gorm.DB, orderID string) {
	order, err := s.orderRepo.FindByIDWithUsers(db, orderID)
	if err != nil || order.Client == nil {
		return
	}
	body := fmt.Sprintf("Tu pedido \"%s\" fue aceptado por un repartidor", order.Title)
	if err := s.smsProvider.Send(order.Client.Phone, body); err != nil {
		logger.WithError(err).Warn("📱 Failed to send order SMS", "order_id", orderID)
	}
}

// UpdateStatus двигает заказ по жизненному циклу.
// Статус меняет только назначенный водитель; клиенту доступна
// единственная операция - отмена собственного pending-заказа.
// Доставка закрывается транзакцией с начислением заработка.
func (s *OrderServiceImpl) UpdateStatus(db *gorm.DB, userID, orderID string, next models.OrderStatus) error {
	user, err := s.findUser(db, userID)
	if err != nil {
		return err
	}

	order, err := s.orderRepo.FindByID(db, orderID)
	if err != nil {
		if err == repositories.ErrOrderNotFound {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}

	switch user.Role {
	case models.UserRoleClient:
		if order.ClientID != userID {
			return apperrors.ErrInsufficientPermissions
		}
		if next != models.OrderStatusCancelled || order.Status != models.OrderStatusPending {
			return apperrors.ErrInvalidOrderTransition
		}
	case models.UserRoleDriver:
		if order.DriverID == nil || *order.DriverID != userID {
			return apperrors.ErrNotOrderDriver
		}
	}

	if !models.CanTransitionOrder(order.Status, next) {
		return apperrors.ErrInvalidOrderTransition
	}

	if next == models.OrderStatusDelivered {
		delivered, err := s.orderRepo.MarkDelivered(db, orderID)
		if err != nil {
			if err == repositories.ErrOrderNotUpdatable {
				return apperrors.ErrInvalidOrderTransition
			}
			return apperrors.InternalError(err)
		}

		// Безналичные способы считаются оплаченными в момент доставки.
		// Наличные закрывает водитель отдельным вызовом.
		if delivered.PaymentMethod != nil && *delivered.PaymentMethod != models.PaymentMethodCash {
			if err := s.orderRepo.UpdatePaymentStatus(db, orderID, delivered.PaymentStatus, models.PaymentStatusCompleted); err != nil {
				logger.WithError(err).Warn("Failed to complete non-cash payment", "order_id", orderID)
			}
		}

		logger.Info("✅ Order delivered",
			"order_id", orderID,
			"driver_id", userID,
			"driver_earnings", delivered.Financials.DriverEarnings,
		)
		return nil
	}

	if err := s.orderRepo.UpdateStatus(db, orderID, order.Status, next); err != nil {
		if err == repositories.ErrOrderNotFound {
			return apperrors.ErrInvalidOrderTransition
		}
		return apperrors.InternalError(err)
	}

	logger.Info("📦 Order status updated",
		"order_id", orderID,
		"from", string(order.Status),
		"to", string(next),
	)
	return nil
}

func (s *OrderServiceImpl) findUser(db *gorm.DB, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}

// commissionSnapshot - актуальные ставка и сбор: строка из БД,
// при её отсутствии конфигурационные значения по умолчанию.
func (s *OrderServiceImpl) commissionSnapshot(db *gorm.DB) (rate, fee float64, err error) {
	cfg, err := s.commissionRepo.Get(db)
	if err != nil {
		if err == repositories.ErrCommissionConfigNotFound {
			return config.AppConfig.Commission.Rate, config.AppConfig.Commission.ServiceFee, nil
		}
		return 0, 0, apperrors.InternalError(err)
	}
	return cfg.CommissionRate, cfg.ServiceFee, nil
}

func toOrderResponses(orders []models.Order) []dto.OrderResponse {
	resp := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, dto.NewOrderResponse(&orders[i]))
	}
	return resp
}
