package dto

import (
	"time"

	"rapidmandados_backend/internal/models"
)

// AdminStatsResponse - сводка по площадке для дашборда владельца
type AdminStatsResponse struct {
	TotalOrders           int64   `json:"total_orders"`
	TotalRevenue          float64 `json:"total_revenue"`
	TotalCommissionEarned float64 `json:"total_commission_earned"`
	ActiveUsers           int64   `json:"active_users"`
	ActiveDrivers         int64   `json:"active_drivers"`
	PendingOrders         int64   `json:"pending_orders"`
	CompletedOrders       int64   `json:"completed_orders"`
	MonthlyRevenue        float64 `json:"monthly_revenue"`
	MonthlyCommission     float64 `json:"monthly_commission"`
	AverageOrderValue     float64 `json:"average_order_value"`
	PendingPayoutsTotal   float64 `json:"pending_payouts_total"`
	PendingCommissionOwed float64 `json:"pending_commission_owed"`
}

// ApproveDriverRequest - вердикт админа по водителю
type ApproveDriverRequest struct {
	Approved bool    `json:"approved"`
	Comments *string `json:"comments"`
}

// ReviewDocumentRequest - ручное ревью документа админом
type ReviewDocumentRequest struct {
	Status   models.DocumentStatus `json:"status" binding:"required,oneof=approved rejected"`
	Comments *string               `json:"comments"`
}

// CommissionConfigRequest - обновление финансовых параметров
type CommissionConfigRequest struct {
	CommissionRate             float64 `json:"commission_rate" binding:"required,gte=0,lte=1"`
	ServiceFee                 float64 `json:"service_fee" binding:"gte=0"`
	PremiumSubscriptionMonthly float64 `json:"premium_subscription_monthly" binding:"gte=0"`
}

// CommissionConfigResponse - текущие финансовые параметры
type CommissionConfigResponse struct {
	CommissionRate             float64   `json:"commission_rate"`
	ServiceFee                 float64   `json:"service_fee"`
	PremiumSubscriptionMonthly float64   `json:"premium_subscription_monthly"`
	UpdatedAt                  time.Time `json:"updated_at"`
	UpdatedBy                  *string   `json:"updated_by,omitempty"`
}

// ToggleStatusResponse - результат включения/выключения аккаунта
type ToggleStatusResponse struct {
	Message  string `json:"message"`
	IsActive bool   `json:"is_active"`
}

// DriverVerificationOverviewItem - строка сводки верификации по водителю
type DriverVerificationOverviewItem struct {
	DriverID           string                           `json:"driver_id"`
	DriverName         string                           `json:"driver_name"`
	DriverEmail        string                           `json:"driver_email"`
	VerificationStatus DriverVerificationStatusResponse `json:"verification_status"`
}

// DriverVerificationOverviewResponse - сводка по всем водителям
type DriverVerificationOverviewResponse struct {
	Drivers []DriverVerificationOverviewItem `json:"drivers"`
}

func NewCommissionConfigResponse(cfg *models.CommissionConfig) CommissionConfigResponse {
	return CommissionConfigResponse{
		CommissionRate:             cfg.CommissionRate,
		ServiceFee:                 cfg.ServiceFee,
		PremiumSubscriptionMonthly: cfg.PremiumSubscriptionMonthly,
		UpdatedAt:                  cfg.UpdatedAt,
		UpdatedBy:                  cfg.UpdatedBy,
	}
}
