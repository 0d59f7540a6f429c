package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"rapidmandados_backend/internal/models"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderTaken        = errors.New("order already taken")
	ErrOrderNotUpdatable = errors.New("order not in updatable state")
)

type OrderRepository interface {
	Create(db *gorm.DB, order *models.Order) error
	FindByID(db *gorm.DB, id string) (*models.Order, error)
	FindByIDWithUsers(db *gorm.DB, id string) (*models.Order, error)

	FindPending(db *gorm.DB, limit, offset int) ([]models.Order, error)
	FindByClient(db *gorm.DB, clientID string) ([]models.Order, error)
	FindByDriver(db *gorm.DB, driverID string) ([]models.Order, error)
	FindAll(db *gorm.DB, limit, offset int) ([]models.Order, error)

	Accept(db *gorm.DB, orderID, driverID string) error
	UpdateStatus(db *gorm.DB, orderID string, from, to models.OrderStatus) error
	SetCashPending(db *gorm.DB, orderID string, fin models.OrderFinancials) error
	UpdatePaymentStatus(db *gorm.DB, orderID string, from, to models.PaymentStatus) error
	MarkDelivered(db *gorm.DB, orderID string) (*models.Order, error)

	CountByStatus(db *gorm.DB, status models.OrderStatus) (int64, error)
	CountAll(db *gorm.DB) (int64, error)
	SumDeliveredFinancials(db *gorm.DB, since *time.Time) (*DeliveredTotals, error)
}

// DeliveredTotals - агрегаты по доставленным заказам для админ-панели.
type DeliveredTotals struct {
	Count          int64
	Revenue        float64
	OwnerEarnings  float64
	ServiceFees    float64
	DriverEarnings float64
}

type OrderRepositoryImpl struct{}

func NewOrderRepository() OrderRepository {
	return &OrderRepositoryImpl{}
}

func (r *OrderRepositoryImpl) Create(db *gorm.DB, order *models.Order) error {
	return db.Create(order).Error
}

func (r *OrderRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Order, error) {
	var order models.Order
	err := db.First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepositoryImpl) FindByIDWithUsers(db *gorm.DB, id string) (*models.Order, error) {
	var order models.Order
	err := db.Preload("Client").Preload("Driver").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepositoryImpl) FindPending(db *gorm.DB, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := db.Preload("Client").
		Where("status = ? AND driver_id IS NULL", models.OrderStatusPending).
		Order("created_at ASC").Limit(limit).Offset(offset).Find(&orders).Error
	return orders, err
}

func (r *OrderRepositoryImpl) FindByClient(db *gorm.DB, clientID string) ([]models.Order, error) {
	var orders []models.Order
	err := db.Preload("Client").Preload("Driver").
		Where("client_id = ?", clientID).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *OrderRepositoryImpl) FindByDriver(db *gorm.DB, driverID string) ([]models.Order, error) {
	var orders []models.Order
	err := db.Preload("Client").Preload("Driver").
		Where("driver_id = ?", driverID).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *OrderRepositoryImpl) FindAll(db *gorm.DB, limit, offset int) ([]models.Order, error) {
	var orders []models.Order
	err := db.Preload("Client").Preload("Driver").
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&orders).Error
	return orders, err
}

// Accept назначает водителя условным апдейтом: заказ достается ровно
// одному из гонящихся водителей, остальные получают ErrOrderTaken.
func (r *OrderRepositoryImpl) Accept(db *gorm.DB, orderID, driverID string) error {
	now := time.Now()
	result := db.Model(&models.Order{}).
		Where("id = ? AND status = ? AND driver_id IS NULL", orderID, models.OrderStatusPending).
		Updates(map[string]interface{}{
			"driver_id":   driverID,
			"status":      models.OrderStatusAccepted,
			"accepted_at": now,
			"updated_at":  now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Либо заказа нет, либо его успели забрать.
		var order models.Order
		if err := db.First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		return ErrOrderTaken
	}
	return nil
}

// UpdateStatus переводит заказ из from в to, гарантируя что переход
// выполняется над актуальным статусом.
func (r *OrderRepositoryImpl) UpdateStatus(db *gorm.DB, orderID string, from, to models.OrderStatus) error {
	result := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotUpdatable
	}
	return nil
}

// SetCashPending фиксирует наличную оплату и перезаписывает расклад
// по актуальным условиям площадки.
func (r *OrderRepositoryImpl) SetCashPending(db *gorm.DB, orderID string, fin models.OrderFinancials) error {
	result := db.Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"payment_method":      models.PaymentMethodCash,
			"payment_status":      models.PaymentStatusPending,
			"fin_subtotal":        fin.Subtotal,
			"fin_service_fee":     fin.ServiceFee,
			"fin_iva":             fin.IVA,
			"fin_total":           fin.Total,
			"fin_commission_rate": fin.CommissionRate,
			"fin_commission":      fin.Commission,
			"fin_driver_earnings": fin.DriverEarnings,
			"fin_owner_earnings":  fin.OwnerEarnings,
			"updated_at":          time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// UpdatePaymentStatus переводит статус оплаты условным апдейтом.
// Нулевой результат означает, что заказ исчез или статус уже сменился.
func (r *OrderRepositoryImpl) UpdatePaymentStatus(db *gorm.DB, orderID string, from, to models.PaymentStatus) error {
	result := db.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, from).
		Updates(map[string]interface{}{
			"payment_status": to,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotUpdatable
	}
	return nil
}

// MarkDelivered закрывает доставку и начисляет водителю заработок
// одной транзакцией. Повторный вызов по уже доставленному заказу
// не проходит условие и возвращает ErrOrderNotUpdatable.
func (r *OrderRepositoryImpl) MarkDelivered(db *gorm.DB, orderID string) (*models.Order, error) {
	var order models.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", orderID, models.OrderStatusInProgress).
			Updates(map[string]interface{}{
				"status":       models.OrderStatusDelivered,
				"delivered_at": now,
				"updated_at":   now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrOrderNotUpdatable
		}

		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			return err
		}

		if order.DriverID == nil {
			return ErrOrderNotUpdatable
		}

		return (&UserRepositoryImpl{}).CreditEarnings(tx, *order.DriverID, order.Financials.DriverEarnings)
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepositoryImpl) CountByStatus(db *gorm.DB, status models.OrderStatus) (int64, error) {
	var count int64
	err := db.Model(&models.Order{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *OrderRepositoryImpl) CountAll(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&models.Order{}).Count(&count).Error
	return count, err
}

// SumDeliveredFinancials собирает выручку площадки по доставленным
// заказам, опционально от заданной даты доставки (месячные метрики).
func (r *OrderRepositoryImpl) SumDeliveredFinancials(db *gorm.DB, since *time.Time) (*DeliveredTotals, error) {
	var totals DeliveredTotals
	query := db.Model(&models.Order{}).
		Select(
			"COUNT(*) AS count, " +
				"COALESCE(SUM(fin_total), 0) AS revenue, " +
				"COALESCE(SUM(fin_owner_earnings), 0) AS owner_earnings, " +
				"COALESCE(SUM(fin_service_fee), 0) AS service_fees, " +
				"COALESCE(SUM(fin_driver_earnings), 0) AS driver_earnings",
		).
		Where("status = ?", models.OrderStatusDelivered)
	if since != nil {
		query = query.Where("delivered_at >= ?", *since)
	}
	if err := query.Scan(&totals).Error; err != nil {
		return nil, err
	}
	return &totals, nil
}
