package routes

import (
	"rapidmandados_backend/internal/handlers"
	"rapidmandados_backend/internal/middleware"
	"rapidmandados_backend/internal/models"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все HTTP маршруты.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	jwtSecret string,
) {
	api := ginRouter.Group("/api/v1")

	// Публичные маршруты
	auth := api.Group("/auth")
	{
		auth.POST("/register", appHandlers.AuthHandler.Register)
		auth.POST("/login", appHandlers.AuthHandler.Login)
	}

	// Маршруты с аутентификацией
	authed := api.Group("")
	authed.Use(middleware.AuthMiddleware(jwtSecret))
	{
		authed.GET("/auth/me", appHandlers.AuthHandler.Me)

		orders := authed.Group("/orders")
		{
			orders.POST("", appHandlers.OrderHandler.Create)
			orders.GET("", appHandlers.OrderHandler.List)
			orders.GET("/driver", middleware.RequireRoles(models.UserRoleDriver), appHandlers.OrderHandler.DriverOrders)
			orders.PUT("/:id/accept", middleware.RequireRoles(models.UserRoleDriver), appHandlers.OrderHandler.Accept)
			orders.PUT("/:id/status", appHandlers.OrderHandler.UpdateStatus)
		}

		verification := authed.Group("/verification")
		{
			verification.POST("/send-email", appHandlers.VerificationHandler.SendEmailCode)
			verification.POST("/verify-email", appHandlers.VerificationHandler.VerifyEmailCode)
			verification.GET("/status", appHandlers.VerificationHandler.Status)
			verification.POST("/upload-document", appHandlers.VerificationHandler.UploadDocument)
			verification.GET("/documents", appHandlers.VerificationHandler.Documents)
		}

		payment := authed.Group("/payment")
		{
			payment.POST("/cash", appHandlers.PaymentHandler.SetCashPayment)
			payment.POST("/cash/complete/:order_id", middleware.RequireRoles(models.UserRoleDriver), appHandlers.PaymentHandler.CompleteCashPayment)
		}
		authed.GET("/payments/transactions", appHandlers.PaymentHandler.Transactions)
	}

	// Админские маршруты
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(jwtSecret))
	admin.Use(middleware.RoleMiddleware(models.UserRoleAdmin))
	{
		admin.GET("/stats", appHandlers.AdminHandler.Stats)
		admin.GET("/users", appHandlers.AdminHandler.Users)
		admin.PUT("/users/:user_id/toggle-status", appHandlers.AdminHandler.ToggleUserStatus)

		admin.GET("/drivers/pending", appHandlers.AdminHandler.PendingDrivers)
		admin.POST("/drivers/:driver_id/approve", appHandlers.AdminHandler.ApproveDriver)
		admin.GET("/drivers/verification", appHandlers.AdminHandler.DriversVerification)

		admin.GET("/documents/pending", appHandlers.AdminHandler.PendingDocuments)
		admin.PUT("/documents/:document_id/review", appHandlers.AdminHandler.ReviewDocument)

		admin.GET("/driver-payouts", appHandlers.AdminHandler.Payouts)
		admin.GET("/cash-collections", appHandlers.AdminHandler.Collections)
		admin.POST("/process-driver-payout/:payout_id", appHandlers.AdminHandler.ProcessPayout)
		admin.POST("/mark-commission-paid/:collection_id", appHandlers.AdminHandler.MarkCommissionPaid)

		admin.GET("/commission-config", appHandlers.AdminHandler.CommissionConfig)
		admin.PUT("/commission-config", appHandlers.AdminHandler.UpdateCommissionConfig)
	}
}
