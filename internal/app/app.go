package app

import (
	"context"
	"errors"
	"fmt"

	"rapidmandados_backend/database"
	"rapidmandados_backend/internal/auth"
	"rapidmandados_backend/internal/config"
	"rapidmandados_backend/internal/docjudge"
	"rapidmandados_backend/internal/email"
	"rapidmandados_backend/internal/handlers"
	"rapidmandados_backend/internal/logger"
	"rapidmandados_backend/internal/middleware"
	"rapidmandados_backend/internal/models"
	"rapidmandados_backend/internal/repositories"
	"rapidmandados_backend/internal/routes"
	"rapidmandados_backend/internal/services"
	"rapidmandados_backend/internal/sms"
	"rapidmandados_backend/internal/validator"
	"rapidmandados_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func Run() {
	// .env не обязателен, в проде переменные приходят из окружения
	_ = godotenv.Load()

	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := database.ConnectGorm()
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	if err := seedOwnerAccount(gormDB, cfg); err != nil {
		// Без канонического аккаунта владельца сервер не запускаем
		logger.Fatal("Failed to seed owner account", "error", err)
	}
	if err := seedCommissionConfig(gormDB, cfg); err != nil {
		logger.Fatal("Failed to seed commission config", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB)

	verificationWorker := workers.NewVerificationWorker(gormDB, repositories.NewVerificationRepository())
	verificationWorker.Start(context.Background())

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	// 1. Инициализируем сервисы
	serviceContainer := initializeServices(cfg)

	// 2. Инициализируем хэндлеры
	appHandlers := initializeHandlers(serviceContainer)

	// 3. Инициализируем Gin
	ginRouter := initializeGinRouter(gormDB)

	// 4. Делегируем регистрацию маршрутов пакету 'routes'
	routes.RegisterRoutes(ginRouter, appHandlers, cfg.JWT.Secret)

	return ginRouter
}

func initializeServices(cfg *config.Config) *services.ServiceContainer {
	emailService := newEmailProvider(cfg)

	// --- Инициализация репозиториев ---
	userRepo := repositories.NewUserRepository()
	orderRepo := repositories.NewOrderRepository()
	paymentRepo := repositories.NewPaymentRepository()
	documentRepo := repositories.NewDocumentRepository()
	verificationRepo := repositories.NewVerificationRepository()
	commissionRepo := repositories.NewCommissionRepository()

	// --- Инициализация сервисов ---
	authService := services.NewAuthService(userRepo)
	verificationService := services.NewVerificationService(userRepo, verificationRepo, documentRepo, emailService, docjudge.NewAutoJudge())
	orderService := services.NewOrderService(orderRepo, userRepo, commissionRepo, verificationService, sms.NewLogProvider())
	paymentService := services.NewPaymentService(orderRepo, userRepo, paymentRepo, commissionRepo)
	adminService := services.NewAdminService(userRepo, orderRepo, paymentRepo, documentRepo, commissionRepo)

	return &services.ServiceContainer{
		AuthService:         authService,
		VerificationService: verificationService,
		OrderService:        orderService,
		PaymentService:      paymentService,
		AdminService:        adminService,
		EmailService:        emailService,
	}
}

// newEmailProvider собирает SMTP провайдер из конфига.
// Без настроенного SMTP хоста письма не отправляются, используется заглушка.
func newEmailProvider(cfg *config.Config) email.Provider {
	if cfg.Email.SMTPHost == "" {
		logger.Warn("--- SMTP не настроен. Используется MOCK email-провайдер. ---")
		return &MockEmailProvider{}
	}

	renderer := email.NewTemplateManager()
	if cfg.Email.TemplatesDir != "" {
		if err := renderer.LoadTemplates(cfg.Email.TemplatesDir); err != nil {
			logger.Warn("Failed to load email templates, using built-ins", "error", err)
		}
	}

	return email.NewGomailProvider(&email.SMTPConfig{
		Host:      cfg.Email.SMTPHost,
		Port:      cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
		UseTLS:    cfg.Email.UseTLS,
	}, renderer)
}

func initializeHandlers(services *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(baseHandler, services.AuthService),
		OrderHandler:        handlers.NewOrderHandler(baseHandler, services.OrderService),
		VerificationHandler: handlers.NewVerificationHandler(baseHandler, services.VerificationService),
		PaymentHandler:      handlers.NewPaymentHandler(baseHandler, services.PaymentService),
		AdminHandler:        handlers.NewAdminHandler(baseHandler, services.AdminService),
	}
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}

// seedOwnerAccount создает или приводит к каноническому виду аккаунт владельца.
// Владелец всегда admin, approved и активен, даже если его поменяли руками в БД.
func seedOwnerAccount(db *gorm.DB, cfg *config.Config) error {
	ownerEmail := cfg.Owner.Email
	ownerPassword := cfg.Owner.Password

	if ownerEmail == "" || ownerPassword == "" {
		logger.Warn("owner.email or owner.password is not set. Skipping owner seeding.")
		return nil
	}

	var owner models.User
	result := db.Where("email = ?", ownerEmail).First(&owner)

	if result.Error == nil {
		updates := map[string]interface{}{
			"role":               models.UserRoleAdmin,
			"status":             models.UserStatusApproved,
			"is_active":          true,
			"is_email_verified":  true,
			"is_phone_verified":  true,
			"documents_uploaded": true,
			"admin_approved":     true,
		}
		if err := db.Model(&owner).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to refresh owner account: %w", err)
		}
		logger.Info("Owner account refreshed", "email", ownerEmail)
		return nil
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for owner account: %w", result.Error)
	}

	logger.Warn("No owner account found. Creating...", "email", ownerEmail)

	hashedPassword, err := auth.HashPassword(ownerPassword)
	if err != nil {
		return fmt.Errorf("failed to hash owner password: %w", err)
	}

	newOwner := &models.User{
		Email:             ownerEmail,
		Name:              cfg.Owner.Name,
		Phone:             cfg.Owner.Phone,
		PasswordHash:      hashedPassword,
		Role:              models.UserRoleAdmin,
		Status:            models.UserStatusApproved,
		IsPhoneVerified:   true,
		IsEmailVerified:   true,
		DocumentsUploaded: true,
		AdminApproved:     true,
		IsActive:          true,
	}

	if err := db.Create(newOwner).Error; err != nil {
		return fmt.Errorf("failed to create owner account: %w", err)
	}

	logger.Info("✅ Successfully created owner account", "email", ownerEmail)
	return nil
}

// seedCommissionConfig гарантирует наличие строки финансовых параметров.
func seedCommissionConfig(db *gorm.DB, cfg *config.Config) error {
	commissionRepo := repositories.NewCommissionRepository()
	_, err := commissionRepo.GetOrCreate(db, models.CommissionConfig{
		CommissionRate:             cfg.Commission.Rate,
		ServiceFee:                 cfg.Commission.ServiceFee,
		PremiumSubscriptionMonthly: cfg.Commission.PremiumSubscriptionMonthly,
	})
	return err
}
