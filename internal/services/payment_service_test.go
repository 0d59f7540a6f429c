package services

import (
	"encoding/json"
	"errors"
	"testing"

	"rapidmandados_backend/internal/finance"
	"rapidmandados_backend/internal/models"
	"rapidmandados_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func cashOrder(id, clientID string, status models.PaymentStatus) *models.Order {
	method := models.PaymentMethodCash
	return &models.Order{
		BaseModel:     models.BaseModel{ID: id},
		ClientID:      clientID,
		Price:         1000,
		Status:        models.OrderStatusPending,
		PaymentStatus: status,
		PaymentMethod: &method,
		Financials:    finance.Calculate(1000, 0.15, 15.0),
	}
}

func TestSetCashPayment_ForeignClientRejected(t *testing.T) {
	setTestConfig(t)

	client := newTestClient("c1")
	order := cashOrder("o1", "c2", models.PaymentStatusPending)
	svc := NewPaymentService(newFakeOrderRepo(order), newFakeUserRepo(client), newFakePaymentRepo(), &fakeCommissionRepo{})

	_, err := svc.SetCashPayment(nil, "c1", "o1")
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)
}

func TestSetCashPayment_IdempotentForPendingCashOrder(t *testing.T) {
	setTestConfig(t)

	client := newTestClient("c1")
	order := cashOrder("o1", "c1", models.PaymentStatusPending)
	paymentRepo := newFakePaymentRepo()
	svc := NewPaymentService(newFakeOrderRepo(order), newFakeUserRepo(client), paymentRepo, &fakeCommissionRepo{})

	resp, err := svc.SetCashPayment(nil, "c1", "o1")
	require.NoError(t, err)
	assert.Equal(t, "Order already set for cash payment", resp.Message)
	assert.Equal(t, 1017.4, resp.TotalAmount)
	// Повторный вызов не плодит транзакции
	assert.Empty(t, paymentRepo.transactions)
}

func TestSetCashPayment_PaidOrderRejected(t *testing.T) {
	setTestConfig(t)

	client := newTestClient("c1")
	order := cashOrder("o1", "c1", models.PaymentStatusPaid)
	svc := NewPaymentService(newFakeOrderRepo(order), newFakeUserRepo(client), newFakePaymentRepo(), &fakeCommissionRepo{})

	_, err := svc.SetCashPayment(nil, "c1", "o1")
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)
}

func TestSetCashPayment_CreatesTransactionWithMetadata(t *testing.T) {
	setTestConfig(t)

	client := newTestClient("c1")
	order := &models.Order{
		BaseModel:     models.BaseModel{ID: "o1"},
		ClientID:      "c1",
		Price:         1000,
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusPending,
	}
	paymentRepo := newFakePaymentRepo()
	svc := NewPaymentService(newFakeOrderRepo(order), newFakeUserRepo(client), paymentRepo, &fakeCommissionRepo{})

	resp, err := svc.SetCashPayment(nil, "c1", "o1")
	require.NoError(t, err)
	assert.Equal(t, 1017.4, resp.TotalAmount)

	require.NotNil(t, order.PaymentMethod)
	assert.Equal(t, models.PaymentMethodCash, *order.PaymentMethod)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)

	require.Len(t, paymentRepo.transactions, 1)
	tx := paymentRepo.transactions[0]
	assert.Equal(t, "mxn", tx.Currency)
	assert.Equal(t, models.PaymentMethodCash, tx.PaymentMethod)
	assert.Equal(t, models.PaymentStatusPending, tx.PaymentStatus)

	var metadata map[string]string
	require.NoError(t, json.Unmarshal(tx.Metadata, &metadata))
	assert.Equal(t, "1000", metadata["base_price"])
	assert.Contains(t, metadata, "commission")
	assert.Contains(t, metadata, "iva_amount")
	assert.Contains(t, metadata, "total_amount")
}

func TestCompleteCashPayment_ForeignDriverRejected(t *testing.T) {
	setTestConfig(t)

	driver := newTestDriver("d1")
	otherID := "d2"
	order := cashOrder("o1", "c1", models.PaymentStatusPending)
	order.DriverID = &otherID
	svc := NewPaymentService(newFakeOrderRepo(order), newFakeUserRepo(driver), newFakePaymentRepo(), &fakeCommissionRepo{})

	err := svc.CompleteCashPayment(nil, "d1", "o1")
	assert.ErrorIs(t, err, apperrors.ErrNotOrderDriver)
}

func TestCompleteCashPayment_AlreadyPaid(t *testing.T) {
	setTestConfig(t)

	driver := newTestDriver("d1")
	driverID := "d1"
	order := cashOrder("o1", "c1", models.PaymentStatusPaid)
	order.DriverID = &driverID
	svc := NewPaymentService(newFakeOrderRepo(order), newFakeUserRepo(driver), newFakePaymentRepo(), &fakeCommissionRepo{})

	err := svc.CompleteCashPayment(nil, "d1", "o1")
	assert.ErrorIs(t, err, apperrors.ErrPaymentAlreadySettled)
}

func TestCompleteCashPayment_SettlesLedgers(t *testing.T) {
	setTestConfig(t)

	driver := newTestDriver("d1")
	driverID := "d1"
	order := cashOrder("o1", "c1", models.PaymentStatusPending)
	order.DriverID = &driverID

	paymentRepo := newFakePaymentRepo()
	userID := "c1"
	orderID := "o1"
	require.NoError(t, paymentRepo.CreateTransaction(nil, &models.PaymentTransaction{
		UserID:        &userID,
		OrderID:       &orderID,
		Amount:        order.Financials.Total,
		Currency:      "mxn",
		PaymentMethod: models.PaymentMethodCash,
		PaymentStatus: models.PaymentStatusPending,
	}))

	orderRepo := newFakeOrderRepo(order)
	paymentRepo.orders = orderRepo
	svc := NewPaymentService(orderRepo, newFakeUserRepo(driver), paymentRepo, &fakeCommissionRepo{})

	err := svc.CompleteCashPayment(nil, "d1", "o1")
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, models.PaymentStatusPaid, paymentRepo.transactions[0].PaymentStatus)

	require.Len(t, paymentRepo.payouts, 1)
	payout := paymentRepo.payouts[0]
	assert.Equal(t, "d1", payout.DriverID)
	assert.Equal(t, order.Financials.DriverEarnings, payout.Amount)
	assert.Equal(t, models.TransferStatusPending, payout.TransferStatus)

	require.Len(t, paymentRepo.collections, 1)
	collection := paymentRepo.collections[0]
	assert.Equal(t, order.Financials.Total, collection.AmountCollected)
	assert.Equal(t, order.Financials.OwnerEarnings, collection.CommissionOwed)
	assert.Equal(t, models.PaymentStatusPending, collection.PaymentStatus)
}

func TestCompleteCashPayment_SecondSettlementRejected(t *testing.T) {
	setTestConfig(t)

	driver := newTestDriver("d1")
	driverID := "d1"
	order := cashOrder("o1", "c1", models.PaymentStatusPending)
	order.DriverID = &driverID

	orderRepo := newFakeOrderRepo(order)
	paymentRepo := newFakePaymentRepo()
	paymentRepo.orders = orderRepo
	paymentRepo.settled["o1"] = true

	svc := NewPaymentService(orderRepo, newFakeUserRepo(driver), paymentRepo, &fakeCommissionRepo{})

	err := svc.CompleteCashPayment(nil, "d1", "o1")
	assert.ErrorIs(t, err, apperrors.ErrPaymentAlreadySettled)
}

// flakySettleRepo роняет первый расчет без каких-либо побочных записей,
// имитируя откат транзакции при сбое БД.
type flakySettleRepo struct {
	*fakePaymentRepo
	failuresLeft int
}

func (r *flakySettleRepo) SettleCashOrder(db *gorm.DB, orderID string, payout *models.DriverPayout, collection *models.CashCollection) error {
	if r.failuresLeft > 0 {
		r.failuresLeft--
		return errors.New("db connection reset")
	}
	return r.fakePaymentRepo.SettleCashOrder(db, orderID, payout, collection)
}

func TestCompleteCashPayment_RetryAfterTransientFailure(t *testing.T) {
	setTestConfig(t)

	driver := newTestDriver("d1")
	driverID := "d1"
	order := cashOrder("o1", "c1", models.PaymentStatusPending)
	order.DriverID = &driverID

	orderRepo := newFakeOrderRepo(order)
	paymentRepo := newFakePaymentRepo()
	paymentRepo.orders = orderRepo
	flaky := &flakySettleRepo{fakePaymentRepo: paymentRepo, failuresLeft: 1}

	svc := NewPaymentService(orderRepo, newFakeUserRepo(driver), flaky, &fakeCommissionRepo{})

	// Сбой транзакции не оставляет заказ оплаченным без записей леджера.
	err := svc.CompleteCashPayment(nil, "d1", "o1")
	require.Error(t, err)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Empty(t, paymentRepo.payouts)
	assert.Empty(t, paymentRepo.collections)

	// Повтор доводит расчет до конца.
	require.NoError(t, svc.CompleteCashPayment(nil, "d1", "o1"))
	assert.Equal(t, models.PaymentStatusPaid, order.PaymentStatus)
	assert.Len(t, paymentRepo.payouts, 1)
	assert.Len(t, paymentRepo.collections, 1)
}

func TestSetCashPayment_DriverPersonalRateOverridesGlobal(t *testing.T) {
	setTestConfig(t)

	client := newTestClient("c1")
	driver := newTestDriver("d1")
	personal := 0.25
	driver.CommissionRate = &personal

	driverID := "d1"
	order := &models.Order{
		BaseModel:     models.BaseModel{ID: "o1"},
		ClientID:      "c1",
		DriverID:      &driverID,
		Price:         1000,
		Status:        models.OrderStatusAccepted,
		PaymentStatus: models.PaymentStatusPending,
	}
	orderRepo := newFakeOrderRepo(order)
	svc := NewPaymentService(orderRepo, newFakeUserRepo(client, driver), newFakePaymentRepo(), &fakeCommissionRepo{})

	resp, err := svc.SetCashPayment(nil, "c1", "o1")
	require.NoError(t, err)
	assert.Equal(t, 1017.4, resp.TotalAmount)

	assert.Equal(t, 0.25, order.Financials.CommissionRate)
	assert.Equal(t, 250.0, order.Financials.Commission)
	assert.Equal(t, 750.0, order.Financials.DriverEarnings)
	assert.Equal(t, 265.0, order.Financials.OwnerEarnings)
}

func TestTransactions_AdminSeesAll(t *testing.T) {
	setTestConfig(t)

	admin := newTestClient("a1")
	admin.Role = models.UserRoleAdmin
	client := newTestClient("c1")

	paymentRepo := newFakePaymentRepo()
	for _, uid := range []string{"c1", "c2"} {
		userID := uid
		require.NoError(t, paymentRepo.CreateTransaction(nil, &models.PaymentTransaction{
			UserID:        &userID,
			Amount:        100,
			Currency:      "mxn",
			PaymentMethod: models.PaymentMethodCash,
			PaymentStatus: models.PaymentStatusPending,
		}))
	}

	svc := NewPaymentService(newFakeOrderRepo(), newFakeUserRepo(admin, client), paymentRepo, &fakeCommissionRepo{})

	all, err := svc.Transactions(nil, "a1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := svc.Transactions(nil, "c1")
	require.NoError(t, err)
	assert.Len(t, own, 1)
}
