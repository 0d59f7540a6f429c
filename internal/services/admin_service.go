package services

import (
	"fmt"
	"time"

	"rapidmandados_backend/internal/config"
	"rapidmandados_backend/internal/finance"
	"rapidmandados_backend/internal/logger"
	"rapidmandados_backend/internal/models"
	"rapidmandados_backend/internal/repositories"
	"rapidmandados_backend/internal/services/dto"
	"rapidmandados_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AdminService interface {
	Stats(db *gorm.DB) (*dto.AdminStatsResponse, error)
	Users(db *gorm.DB) ([]dto.UserResponse, error)
	ToggleUserStatus(db *gorm.DB, adminID, userID string) (*dto.ToggleStatusResponse, error)

	PendingDrivers(db *gorm.DB) ([]dto.UserResponse, error)
	ApproveDriver(db *gorm.DB, driverID string, approved bool, comments *string) error
	DriversVerification(db *gorm.DB) (*dto.DriverVerificationOverviewResponse, error)

	PendingDocuments(db *gorm.DB) ([]dto.DocumentResponse, error)
	ReviewDocument(db *gorm.DB, docID string, status models.DocumentStatus, comments *string) error

	Payouts(db *gorm.DB) ([]dto.PayoutResponse, error)
	Collections(db *gorm.DB) ([]dto.CollectionResponse, error)
	ProcessPayout(db *gorm.DB, payoutID string) error
	MarkCommissionPaid(db *gorm.DB, collectionID string) error

	CommissionConfig(db *gorm.DB) (*dto.CommissionConfigResponse, error)
	UpdateCommissionConfig(db *gorm.DB, adminID string, req *dto.CommissionConfigRequest) (*dto.CommissionConfigResponse, error)
}

type AdminServiceImpl struct {
	userRepo       repositories.UserRepository
	orderRepo      repositories.OrderRepository
	paymentRepo    repositories.PaymentRepository
	documentRepo   repositories.DocumentRepository
	commissionRepo repositories.CommissionRepository
}

func NewAdminService(
	userRepo repositories.UserRepository,
	orderRepo repositories.OrderRepository,
	paymentRepo repositories.PaymentRepository,
	documentRepo repositories.DocumentRepository,
	commissionRepo repositories.CommissionRepository,
) AdminService {
	return &AdminServiceImpl{
		userRepo:       userRepo,
		orderRepo:      orderRepo,
		paymentRepo:    paymentRepo,
		documentRepo:   documentRepo,
		commissionRepo: commissionRepo,
	}
}

// Stats собирает сводку площадки типизированными SQL-агрегатами
// по встроенным финансовым колонкам доставленных заказов.
func (s *AdminServiceImpl) Stats(db *gorm.DB) (*dto.AdminStatsResponse, error) {
	totalOrders, err := s.orderRepo.CountAll(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	pendingOrders, err := s.orderRepo.CountByStatus(db, models.OrderStatusPending)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	activeUsers, err := s.userRepo.CountActiveNonAdmin(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	activeDrivers, err := s.userRepo.CountActiveDrivers(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	allTime, err := s.orderRepo.SumDeliveredFinancials(db, nil)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	now := time.Now()
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthly, err := s.orderRepo.SumDeliveredFinancials(db, &startOfMonth)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	pendingPayouts, err := s.paymentRepo.SumPendingPayouts(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	pendingCommission, err := s.paymentRepo.SumPendingCommission(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	avgOrderValue := 0.0
	if allTime.Count > 0 {
		avgOrderValue = allTime.Revenue / float64(allTime.Count)
	}

	return &dto.AdminStatsResponse{
		TotalOrders:           totalOrders,
		TotalRevenue:          finance.Round2(allTime.Revenue),
		TotalCommissionEarned: finance.Round2(allTime.OwnerEarnings),
		ActiveUsers:           activeUsers,
		ActiveDrivers:         activeDrivers,
		PendingOrders:         pendingOrders,
		CompletedOrders:       allTime.Count,
		MonthlyRevenue:        finance.Round2(monthly.Revenue),
		MonthlyCommission:     finance.Round2(monthly.OwnerEarnings),
		AverageOrderValue:     finance.Round2(avgOrderValue),
		PendingPayoutsTotal:   finance.Round2(pendingPayouts),
		PendingCommissionOwed: finance.Round2(pendingCommission),
	}, nil
}

// Users - все аккаунты кроме админских.
func (s *AdminServiceImpl) Users(db *gorm.DB) ([]dto.UserResponse, error) {
	users, err := s.userRepo.FindAllNonAdmin(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toUserResponses(users), nil
}

// ToggleUserStatus включает/выключает аккаунт. Собственный аккаунт
// админа и удаление не поддерживаются: только деактивация.
func (s *AdminServiceImpl) ToggleUserStatus(db *gorm.DB, adminID, userID string) (*dto.ToggleStatusResponse, error) {
	if adminID == userID {
		return nil, apperrors.ErrCannotModifySelf
	}

	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	newState := !user.IsActive
	if err := s.userRepo.SetActive(db, userID, newState); err != nil {
		return nil, apperrors.InternalError(err)
	}

	action := "deactivated"
	if newState {
		action = "activated"
	}

	logger.Info("👤 User status toggled",
		"user_id", userID,
		"is_active", newState,
	)

	return &dto.ToggleStatusResponse{
		Message:  fmt.Sprintf("User %s successfully", action),
		IsActive: newState,
	}, nil
}

// PendingDrivers - водители, ожидающие одобрения, с документами.
func (s *AdminServiceImpl) PendingDrivers(db *gorm.DB) ([]dto.UserResponse, error) {
	drivers, err := s.userRepo.FindPendingDrivers(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return toUserResponses(drivers), nil
}

// ApproveDriver выносит ручной вердикт по водителю.
func (s *AdminServiceImpl) ApproveDriver(db *gorm.DB, driverID string, approved bool, comments *string) error {
	driver, err := s.userRepo.FindByID(db, driverID)
	if err != nil {
		if err == repositories.ErrUserNotFound {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}
	if !driver.IsDriver() {
		return apperrors.ErrInvalidOperation("admin", "User is not a driver")
	}

	fields := map[string]interface{}{
		"status":         models.UserStatusApproved,
		"admin_approved": true,
	}
	if !approved {
		fields["status"] = models.UserStatusRejected
		fields["admin_approved"] = false
	}
	if comments != nil {
		fields["admin_comments"] = *comments
	}

	if err := s.userRepo.UpdateFields(db, driverID, fields); err != nil {
		return apperrors.InternalError(err)
	}

	logger.Info("🚦 Driver verification reviewed",
		"driver_id", driverID,
		"approved", approved,
	)
	return nil
}

// DriversVerification - сводка верификации по каждому водителю.
func (s *AdminServiceImpl) DriversVerification(db *gorm.DB) (*dto.DriverVerificationOverviewResponse, error) {
	drivers, err := s.userRepo.FindByRole(db, models.UserRoleDriver, 500, 0)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]dto.DriverVerificationOverviewItem, 0, len(drivers))
	for i := range drivers {
		driver := &drivers[i]
		docs, err := s.documentRepo.FindByUser(db, driver.ID)
		if err != nil {
			return nil, apperrors.InternalError(err)
		}
		items = append(items, dto.DriverVerificationOverviewItem{
			DriverID:           driver.ID,
			DriverName:         driver.Name,
			DriverEmail:        driver.Email,
			VerificationStatus: deriveVerificationStatus(driver, docs),
		})
	}

	return &dto.DriverVerificationOverviewResponse{Drivers: items}, nil
}

// PendingDocuments - очередь документов на ручное ревью.
func (s *AdminServiceImpl) PendingDocuments(db *gorm.DB) ([]dto.DocumentResponse, error) {
	docs, err := s.documentRepo.FindPending(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		resp = append(resp, dto.NewDocumentResponse(&docs[i]))
	}
	return resp, nil
}

// ReviewDocument - ручной вердикт админа поверх автопроверки.
func (s *AdminServiceImpl) ReviewDocument(db *gorm.DB, docID string, status models.DocumentStatus, comments *string) error {
	if err := s.documentRepo.Review(db, docID, status, comments); err != nil {
		if err == repositories.ErrDocumentNotFound {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}

	logger.Info("📋 Document reviewed",
		"document_id", docID,
		"status", string(status),
	)
	return nil
}

func (s *AdminServiceImpl) Payouts(db *gorm.DB) ([]dto.PayoutResponse, error) {
	payouts, err := s.paymentRepo.FindPayouts(db, nil)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := make([]dto.PayoutResponse, 0, len(payouts))
	for i := range payouts {
		resp = append(resp, dto.NewPayoutResponse(&payouts[i]))
	}
	return resp, nil
}

func (s *AdminServiceImpl) Collections(db *gorm.DB) ([]dto.CollectionResponse, error) {
	collections, err := s.paymentRepo.FindCollections(db, nil)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp := make([]dto.CollectionResponse, 0, len(collections))
	for i := range collections {
		resp = append(resp, dto.NewCollectionResponse(&collections[i]))
	}
	return resp, nil
}

// ProcessPayout закрывает выплату водителю. Денег сервис не двигает:
// запись фиксирует банковский перевод, выполненный вне системы.
func (s *AdminServiceImpl) ProcessPayout(db *gorm.DB, payoutID string) error {
	if err := s.paymentRepo.CompletePayout(db, payoutID); err != nil {
		switch err {
		case repositories.ErrPayoutNotFound:
			return apperrors.ErrNotFound(err)
		case repositories.ErrAlreadySettled:
			return apperrors.ErrPaymentAlreadySettled
		default:
			return apperrors.InternalError(err)
		}
	}

	logger.Info("💸 Driver payout processed", "payout_id", payoutID)
	return nil
}

// MarkCommissionPaid отмечает, что водитель вернул комиссию владельцу.
func (s *AdminServiceImpl) MarkCommissionPaid(db *gorm.DB, collectionID string) error {
	if err := s.paymentRepo.MarkCommissionPaid(db, collectionID); err != nil {
		switch err {
		case repositories.ErrCollectionNotFound:
			return apperrors.ErrNotFound(err)
		case repositories.ErrAlreadySettled:
			return apperrors.ErrPaymentAlreadySettled
		default:
			return apperrors.InternalError(err)
		}
	}

	logger.Info("💰 Commission marked as paid", "collection_id", collectionID)
	return nil
}

// CommissionConfig возвращает строку из БД, а при её отсутствии
// конфигурационные значения по умолчанию.
func (s *AdminServiceImpl) CommissionConfig(db *gorm.DB) (*dto.CommissionConfigResponse, error) {
	cfg, err := s.commissionRepo.Get(db)
	if err != nil {
		if err == repositories.ErrCommissionConfigNotFound {
			return &dto.CommissionConfigResponse{
				CommissionRate:             config.AppConfig.Commission.Rate,
				ServiceFee:                 config.AppConfig.Commission.ServiceFee,
				PremiumSubscriptionMonthly: config.AppConfig.Commission.PremiumSubscriptionMonthly,
			}, nil
		}
		return nil, apperrors.InternalError(err)
	}

	resp := dto.NewCommissionConfigResponse(cfg)
	return &resp, nil
}

// UpdateCommissionConfig создает или обновляет единственную строку
// конфигурации с аудитом, кто её менял.
func (s *AdminServiceImpl) UpdateCommissionConfig(db *gorm.DB, adminID string, req *dto.CommissionConfigRequest) (*dto.CommissionConfigResponse, error) {
	if req.CommissionRate < 0 || req.CommissionRate > 1 {
		return nil, apperrors.ErrInvalidCommissionRate
	}

	cfg, err := s.commissionRepo.Get(db)
	if err != nil {
		if err != repositories.ErrCommissionConfigNotFound {
			return nil, apperrors.InternalError(err)
		}
		cfg = &models.CommissionConfig{}
	}

	cfg.CommissionRate = req.CommissionRate
	cfg.ServiceFee = req.ServiceFee
	cfg.PremiumSubscriptionMonthly = req.PremiumSubscriptionMonthly
	cfg.UpdatedBy = &adminID

	if err := s.commissionRepo.Update(db, cfg); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.Info("⚙️ Commission config updated",
		"commission_rate", cfg.CommissionRate,
		"service_fee", cfg.ServiceFee,
		"updated_by", adminID,
	)

	resp := dto.NewCommissionConfigResponse(cfg)
	return &resp, nil
}

func toUserResponses(users []models.User) []dto.UserResponse {
	resp := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, dto.NewUserResponse(&users[i]))
	}
	return resp
}
