package repositories

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"rapidmandados_backend/internal/models"
)

var (
	ErrPayoutNotFound     = errors.New("payout not found")
	ErrCollectionNotFound = errors.New("cash collection not found")
	ErrAlreadySettled     = errors.New("order already settled")
)

type PaymentRepository interface {
	CreateTransaction(db *gorm.DB, tx *models.PaymentTransaction) error
	FindTransactionsByUser(db *gorm.DB, userID string) ([]models.PaymentTransaction, error)
	FindAllTransactions(db *gorm.DB) ([]models.PaymentTransaction, error)

	// SettleCashOrder закрывает наличный расчет по заказу одной
	// транзакцией: статус оплаты, pending-транзакция и пара записей
	// леджера пишутся все вместе либо никак.
	SettleCashOrder(db *gorm.DB, orderID string, payout *models.DriverPayout, collection *models.CashCollection) error

	FindPayouts(db *gorm.DB, status *models.TransferStatus) ([]models.DriverPayout, error)
	FindPayoutsByDriver(db *gorm.DB, driverID string) ([]models.DriverPayout, error)
	CompletePayout(db *gorm.DB, payoutID string) error

	FindCollections(db *gorm.DB, status *models.PaymentStatus) ([]models.CashCollection, error)
	FindCollectionsByDriver(db *gorm.DB, driverID string) ([]models.CashCollection, error)
	MarkCommissionPaid(db *gorm.DB, collectionID string) error

	SumPendingPayouts(db *gorm.DB) (float64, error)
	SumPendingCommission(db *gorm.DB) (float64, error)
}

type PaymentRepositoryImpl struct{}

func NewPaymentRepository() PaymentRepository {
	return &PaymentRepositoryImpl{}
}

func (r *PaymentRepositoryImpl) CreateTransaction(db *gorm.DB, tx *models.PaymentTransaction) error {
	return db.Create(tx).Error
}

func (r *PaymentRepositoryImpl) FindTransactionsByUser(db *gorm.DB, userID string) ([]models.PaymentTransaction, error) {
	var txs []models.PaymentTransaction
	err := db.Where("user_id = ?", userID).Order("created_at DESC").Find(&txs).Error
	return txs, err
}

func (r *PaymentRepositoryImpl) FindAllTransactions(db *gorm.DB) ([]models.PaymentTransaction, error) {
	var txs []models.PaymentTransaction
	err := db.Order("created_at DESC").Find(&txs).Error
	return txs, err
}

// SettleCashOrder закрывает наличный расчет по заказу одной транзакцией:
// условный перевод оплаты в paid, погашение pending-транзакции и пара
// записей леджера. Нулевой результат условного апдейта и уникальные
// индексы по order_id отсекают двойной расчет при повторе или гонке;
// при любой ошибке транзакция откатывается целиком, частичных записей
// не остается.
func (r *PaymentRepositoryImpl) SettleCashOrder(db *gorm.DB, orderID string, payout *models.DriverPayout, collection *models.CashCollection) error {
	return db.Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		result := tx.Model(&models.Order{}).
			Where("id = ? AND payment_status <> ?", orderID, models.PaymentStatusPaid).
			Updates(map[string]interface{}{
				"payment_status": models.PaymentStatusPaid,
				"updated_at":     now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrAlreadySettled
		}

		// Pending-транзакции может не быть у старых заказов,
		// нулевой результат не блокирует расчет.
		if err := tx.Model(&models.PaymentTransaction{}).
			Where("order_id = ? AND payment_method = ? AND payment_status = ?",
				orderID, models.PaymentMethodCash, models.PaymentStatusPending).
			Updates(map[string]interface{}{
				"payment_status": models.PaymentStatusPaid,
				"updated_at":     now,
			}).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.DriverPayout{}).
			Where("order_id = ?", orderID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadySettled
		}

		if err := tx.Create(payout).Error; err != nil {
			return err
		}
		return tx.Create(collection).Error
	})
}

func (r *PaymentRepositoryImpl) FindPayouts(db *gorm.DB, status *models.TransferStatus) ([]models.DriverPayout, error) {
	var payouts []models.DriverPayout
	query := db.Preload("Driver").Order("created_at DESC")
	if status != nil {
		query = query.Where("transfer_status = ?", *status)
	}
	err := query.Find(&payouts).Error
	return payouts, err
}

func (r *PaymentRepositoryImpl) FindPayoutsByDriver(db *gorm.DB, driverID string) ([]models.DriverPayout, error) {
	var payouts []models.DriverPayout
	err := db.Where("driver_id = ?", driverID).Order("created_at DESC").Find(&payouts).Error
	return payouts, err
}

// CompletePayout переводит выплату pending -> completed.
// Нулевой результат разбирается повторным чтением: выплаты нет
// вовсе либо она уже обработана.
func (r *PaymentRepositoryImpl) CompletePayout(db *gorm.DB, payoutID string) error {
	result := db.Model(&models.DriverPayout{}).
		Where("id = ? AND transfer_status = ?", payoutID, models.TransferStatusPending).
		Updates(map[string]interface{}{
			"transfer_status": models.TransferStatusCompleted,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.DriverPayout{}).Where("id = ?", payoutID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadySettled
		}
		return ErrPayoutNotFound
	}
	return nil
}

func (r *PaymentRepositoryImpl) FindCollections(db *gorm.DB, status *models.PaymentStatus) ([]models.CashCollection, error) {
	var collections []models.CashCollection
	query := db.Preload("Driver").Order("created_at DESC")
	if status != nil {
		query = query.Where("payment_status = ?", *status)
	}
	err := query.Find(&collections).Error
	return collections, err
}

func (r *PaymentRepositoryImpl) FindCollectionsByDriver(db *gorm.DB, driverID string) ([]models.CashCollection, error) {
	var collections []models.CashCollection
	err := db.Where("driver_id = ?", driverID).Order("created_at DESC").Find(&collections).Error
	return collections, err
}

func (r *PaymentRepositoryImpl) MarkCommissionPaid(db *gorm.DB, collectionID string) error {
	result := db.Model(&models.CashCollection{}).
		Where("id = ? AND payment_status <> ?", collectionID, models.PaymentStatusPaid).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusPaid,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := db.Model(&models.CashCollection{}).Where("id = ?", collectionID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadySettled
		}
		return ErrCollectionNotFound
	}
	return nil
}

func (r *PaymentRepositoryImpl) SumPendingPayouts(db *gorm.DB) (float64, error) {
	var total float64
	err := db.Model(&models.DriverPayout{}).
		Where("transfer_status = ?", models.TransferStatusPending).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}

func (r *PaymentRepositoryImpl) SumPendingCommission(db *gorm.DB) (float64, error) {
	var total float64
	err := db.Model(&models.CashCollection{}).
		Where("payment_status = ?", models.PaymentStatusPending).
		Select("COALESCE(SUM(commission_owed), 0)").Scan(&total).Error
	return total, err
}
