package services

import (
	"testing"

	"rapidmandados_backend/internal/models"
	"rapidmandados_backend/internal/services/dto"
	"rapidmandados_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(id string) *models.User {
	return &models.User{
		BaseModel: models.BaseModel{ID: id},
		Email:     id + "@example.com",
		Name:      "Client " + id,
		Role:      models.UserRoleClient,
		Status:    models.UserStatusApproved,
		IsActive:  true,
	}
}

// водитель, полностью прошедший верификацию
func newVerifiedDriverSetup(driverID string) (*models.User, *fakeDocumentRepo) {
	driver := newTestDriver(driverID)
	driver.IsEmailVerified = true
	documentRepo := newFakeDocumentRepo(
		&models.Document{BaseModel: models.BaseModel{ID: "doc-ine"}, UserID: driverID, DocumentType: models.DocumentTypeINE, Status: models.DocumentStatusApproved},
		&models.Document{BaseModel: models.BaseModel{ID: "doc-lic"}, UserID: driverID, DocumentType: models.DocumentTypeDriversLicense, Status: models.DocumentStatusApproved},
	)
	return driver, documentRepo
}

func newOrderService(userRepo *fakeUserRepo, orderRepo *fakeOrderRepo, documentRepo *fakeDocumentRepo, commissionRepo *fakeCommissionRepo) OrderService {
	verificationSvc := newVerificationService(userRepo, newFakeVerificationRepo(), documentRepo)
	return NewOrderService(orderRepo, userRepo, commissionRepo, verificationSvc, &fakeSMSProvider{})
}

func newCreateOrderRequest(price float64) *dto.CreateOrderRequest {
	return &dto.CreateOrderRequest{
		Title:           "Compra de despensa",
		Description:     "Recoger despensa del supermercado",
		PickupAddress:   "Av. Juárez 100",
		DeliveryAddress: "Calle Reforma 5",
		Price:           price,
	}
}

func TestCreateOrder_DriverForbidden(t *testing.T) {
	setTestConfig(t)

	driver := newTestDriver("d1")
	svc := newOrderService(newFakeUserRepo(driver), newFakeOrderRepo(), newFakeDocumentRepo(), &fakeCommissionRepo{})

	_, err := svc.Create(nil, "d1", newCreateOrderRequest(500))
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)
}

func TestCreateOrder_PriceBounds(t *testing.T) {
	setTestConfig(t)

	client := newTestClient("c1")
	svc := newOrderService(newFakeUserRepo(client), newFakeOrderRepo(), newFakeDocumentRepo(), &fakeCommissionRepo{})

	for _, price := range []float64{49.99, 10000.01} {
		_, err := svc.Create(nil, "c1", newCreateOrderRequest(price))
		var appErr *apperrors.AppError
		require.True(t, apperrors.As(err, &appErr), "price %v", price)
		assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)
	}
}

func TestCreateOrder_SnapshotsFinancials(t *testing.T) {
	setTestConfig(t)

	client := newTestClient("c1")
	userRepo := newFakeUserRepo(client)
	orderRepo := newFakeOrderRepo()
	commissionRepo := &fakeCommissionRepo{cfg: &models.CommissionConfig{
		CommissionRate: 0.15,
		ServiceFee:     15.0,
	}}
	svc := newOrderService(userRepo, orderRepo, newFakeDocumentRepo(), commissionRepo)

	resp, err := svc.Create(nil, "c1", newCreateOrderRequest(1000))
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, resp.Status)
	assert.Equal(t, models.PaymentMethodCash, resp.PaymentMethod)
	assert.Equal(t, "Client c1", resp.ClientName)

	assert.Equal(t, 150.0, resp.Financials.Commission)
	assert.Equal(t, 850.0, resp.Financials.DriverEarnings)
	assert.Equal(t, 2.4, resp.Financials.IVA)
	assert.Equal(t, 165.0, resp.Financials.OwnerEarnings)
	assert.Equal(t, 1017.4, resp.Financials.Total)

	assert.Equal(t, 1, client.TotalOrders)
}

func TestCreateOrder_FallsBackToConfigCommission(t *testing.T) {
	setTestConfig(t)

	client := newTestClient("c1")
	svc := newOrderService(newFakeUserRepo(client), newFakeOrderRepo(), newFakeDocumentRepo(), &fakeCommissionRepo{})

	resp, err := svc.Create(nil, "c1", newCreateOrderRequest(1000))
	require.NoError(t, err)
	assert.Equal(t, 0.15, resp.Financials.CommissionRate)
	assert.Equal(t, 1017.4, resp.Financials.Total)
}

func TestListForUser_ByRole(t *testing.T) {
	setTestConfig(t)

	client := newTestClient("c1")
	driver, documentRepo := newVerifiedDriverSetup("d1")
	admin := newTestClient("a1")
	admin.Role = models.UserRoleAdmin

	driverID := "d9"
	orderRepo := newFakeOrderRepo(
		&models.Order{BaseModel: models.BaseModel{ID: "o1"}, ClientID: "c1", Status: models.OrderStatusPending},
		&models.Order{BaseModel: models.BaseModel{ID: "o2"}, ClientID: "c2", Status: models.OrderStatusPending},
		&models.Order{BaseModel: models.BaseModel{ID: "o3"}, ClientID: "c2", DriverID: &driverID, Status: models.OrderStatusAccepted},
	)
	svc := newOrderService(newFakeUserRepo(client, driver, admin), orderRepo, documentRepo, &fakeCommissionRepo{})

	own, err := svc.ListForUser(nil, "c1", 20, 0)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	pool, err := svc.ListForUser(nil, "d1", 20, 0)
	require.NoError(t, err)
	assert.Len(t, pool, 2)

	all, err := svc.ListForUser(nil, "a1", 20, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAcceptOrder_UnverifiedDriverBlocked(t *testing.T) {
	setTestConfig(t)

	driver := newTestDriver("d1")
	orderRepo := newFakeOrderRepo(
		&models.Order{BaseModel: models.BaseModel{ID: "o1"}, ClientID: "c1", Status: models.OrderStatusPending},
	)
	svc := newOrderService(newFakeUserRepo(driver), orderRepo, newFakeDocumentRepo(), &fakeCommissionRepo{})

	err := svc.Accept(nil, "d1", "o1")
	assert.ErrorIs(t, err, apperrors.ErrDriverNotVerified)
}

func TestAcceptOrder_TakenOrder(t *testing.T) {
	setTestConfig(t)

	driver, documentRepo := newVerifiedDriverSetup("d1")
	otherID := "d2"
	orderRepo := newFakeOrderRepo(
		&models.Order{BaseModel: models.BaseModel{ID: "o1"}, ClientID: "c1", DriverID: &otherID, Status: models.OrderStatusAccepted},
	)
	svc := newOrderService(newFakeUserRepo(driver), orderRepo, documentRepo, &fakeCommissionRepo{})

	err := svc.Accept(nil, "d1", "o1")
	assert.ErrorIs(t, err, apperrors.ErrOrderAlreadyTaken)
}

func TestAcceptOrder_Success(t *testing.T) {
	setTestConfig(t)

	driver, documentRepo := newVerifiedDriverSetup("d1")
	order := &models.Order{BaseModel: models.BaseModel{ID: "o1"}, ClientID: "c1", Status: models.OrderStatusPending}
	orderRepo := newFakeOrderRepo(order)
	svc := newOrderService(newFakeUserRepo(driver), orderRepo, documentRepo, &fakeCommissionRepo{})

	err := svc.Accept(nil, "d1", "o1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusAccepted, order.Status)
	require.NotNil(t, order.DriverID)
	assert.Equal(t, "d1", *order.DriverID)
	assert.NotNil(t, order.AcceptedAt)
}

func TestUpdateStatus_ClientCancelsOwnPendingOrder(t *testing.T) {
	setTestConfig(t)

	client := newTestClient("c1")
	order := &models.Order{BaseModel: models.BaseModel{ID: "o1"}, ClientID: "c1", Status: models.OrderStatusPending}
	orderRepo := newFakeOrderRepo(order)
	svc := newOrderService(newFakeUserRepo(client), orderRepo, newFakeDocumentRepo(), &fakeCommissionRepo{})

	err := svc.UpdateStatus(nil, "c1", "o1", models.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)
}

func TestUpdateStatus_ClientCannotCancelAcceptedOrder(t *testing.T) {
	setTestConfig(t)

	client := newTestClient("c1")
	driverID := "d1"
	order := &models.Order{BaseModel: models.BaseModel{ID: "o1"}, ClientID: "c1", DriverID: &driverID, Status: models.OrderStatusAccepted}
	svc := newOrderService(newFakeUserRepo(client), newFakeOrderRepo(order), newFakeDocumentRepo(), &fakeCommissionRepo{})

	err := svc.UpdateStatus(nil, "c1", "o1", models.OrderStatusCancelled)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrderTransition)
}

func TestUpdateStatus_ForeignDriverRejected(t *testing.T) {
	setTestConfig(t)

	driver := newTestDriver("d1")
	otherID := "d2"
	order := &models.Order{BaseModel: models.BaseModel{ID: "o1"}, ClientID: "c1", DriverID: &otherID, Status: models.OrderStatusAccepted}
	svc := newOrderService(newFakeUserRepo(driver), newFakeOrderRepo(order), newFakeDocumentRepo(), &fakeCommissionRepo{})

	err := svc.UpdateStatus(nil, "d1", "o1", models.OrderStatusInProgress)
	assert.ErrorIs(t, err, apperrors.ErrNotOrderDriver)
}

func TestUpdateStatus_InvalidTransition(t *testing.T) {
	setTestConfig(t)

	driver := newTestDriver("d1")
	driverID := "d1"
	order := &models.Order{BaseModel: models.BaseModel{ID: "o1"}, ClientID: "c1", DriverID: &driverID, Status: models.OrderStatusAccepted}
	svc := newOrderService(newFakeUserRepo(driver), newFakeOrderRepo(order), newFakeDocumentRepo(), &fakeCommissionRepo{})

	err := svc.UpdateStatus(nil, "d1", "o1", models.OrderStatusDelivered)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOrderTransition)
}

func TestUpdateStatus_Delivered(t *testing.T) {
	setTestConfig(t)

	driver := newTestDriver("d1")
	driverID := "d1"
	method := models.PaymentMethodCash
	order := &models.Order{
		BaseModel:     models.BaseModel{ID: "o1"},
		ClientID:      "c1",
		DriverID:      &driverID,
		Status:        models.OrderStatusInProgress,
		PaymentStatus: models.PaymentStatusPending,
		PaymentMethod: &method,
	}
	svc := newOrderService(newFakeUserRepo(driver), newFakeOrderRepo(order), newFakeDocumentRepo(), &fakeCommissionRepo{})

	err := svc.UpdateStatus(nil, "d1", "o1", models.OrderStatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, order.Status)
	assert.NotNil(t, order.DeliveredAt)
	// Наличный заказ остается неоплаченным до инкассации водителем
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
}
