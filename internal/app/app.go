package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Znbmels/visa/internal/auth"
	"github.com/Znbmels/visa/internal/config"
	"github.com/Znbmels/visa/internal/email"
	"github.com/Znbmels/visa/internal/handlers"
	"github.com/Znbmels/visa/internal/logger"
	"github.com/Znbmels/visa/internal/middleware"
	"github.com/Znbmels/visa/internal/models"
	"github.com/Znbmels/visa/internal/repositories"
	"github.com/Znbmels/visa/internal/routes"
	"github.com/Znbmels/visa/internal/services"
	"github.com/Znbmels/visa/internal/storage"
	"github.com/Znbmels/visa/internal/validator"
	"github.com/Znbmels/visa/internal/workers"
	"github.com/Znbmels/visa/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
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

	if err := Migrate(gormDB); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		// Без админа некому одобрять подписки - не запускаем сервер
		logger.Fatal("Failed to seed first admin user", "error", err)
	}
	if err := seedDefaultPlan(gormDB); err != nil {
		logger.Fatal("Failed to seed default subscription plan", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB, sqlDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info(fmt.Sprintf("🚀 Server starting on %s", address))
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB, sqlDB *sql.DB) *gin.Engine {
	storageInstance, err := storage.NewStorage(storage.Config{
		BasePath: cfg.Storage.BasePath,
		BaseURL:  cfg.Storage.BaseURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "base_path", cfg.Storage.BasePath)

	// WebSocket-менеджер создается до сервисов: уведомления пушат в него
	wsManager := ws.NewWebSocketManager()
	go wsManager.Run()
	wsHandler := ws.NewWebSocketHandler(wsManager)

	serviceContainer := initializeServices(cfg, storageInstance, wsManager)

	appHandlers := initializeHandlers(serviceContainer)

	ginRouter := initializeGinRouter(gormDB)

	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler)

	// Фоновый воркер переводит просроченные подписки в expired
	expiryInterval := time.Duration(cfg.Worker.ExpiryInterval) * time.Minute
	subscriptionWorker := workers.NewSubscriptionWorker(gormDB, serviceContainer.SubscriptionService, expiryInterval)
	subscriptionWorker.Start(context.Background())

	return ginRouter
}

// Migrate создает расширение для uuid и схему всех таблиц.
func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid extension: %w", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Country{},
		&models.VisaFee{},
		&models.VisaApplication{},
		&models.SubscriptionPlan{},
		&models.UserSubscription{},
		&models.Payment{},
		&models.Notification{},
		&models.Conversation{},
		&models.ChatMessage{},
		&models.Document{},
		&models.UserAnalytics{},
	); err != nil {
		return err
	}

	// Частичный уникальный индекс: не больше одной живой подписки на
	// пользователя. Предикат с IN/OR через тег gorm не выражается, поэтому
	// индекс создается сырым SQL.
	if err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uniq_live_subscription
		ON user_subscriptions (user_id)
		WHERE status = 'pending' OR (status = 'approved' AND is_active)`).Error; err != nil {
		return fmt.Errorf("failed to create live subscription index: %w", err)
	}

	return nil
}

func initializeServices(cfg *config.Config, storageInstance storage.Storage, wsManager *ws.WebSocketManager) *services.ServiceContainer {
	var emailSender email.Sender
	if cfg.Email.Enabled {
		emailSender = email.NewEmailSender(cfg)
	} else {
		logger.Warn("Email-рассылка отключена, письма не отправляются")
		emailSender = email.NoopSender{}
	}
	templates := email.NewTemplateManager()

	userRepo := repositories.NewUserRepository()
	countryRepo := repositories.NewCountryRepository()
	applicationRepo := repositories.NewApplicationRepository()
	subscriptionRepo := repositories.NewSubscriptionRepository()
	paymentRepo := repositories.NewPaymentRepository()
	notificationRepo := repositories.NewNotificationRepository()
	chatRepo := repositories.NewChatRepository()
	documentRepo := repositories.NewDocumentRepository()
	analyticsRepo := repositories.NewAnalyticsRepository()

	// Сервис уведомлений первым: от него зависят заявки и подписки
	notificationService := services.NewNotificationService(notificationRepo, wsManager, emailSender, templates, cfg.Email.Enabled)
	authService := services.NewAuthService(userRepo, notificationService)
	userService := services.NewUserService(userRepo)
	countryService := services.NewCountryService(countryRepo)
	applicationService := services.NewApplicationService(applicationRepo, countryRepo, userRepo, notificationService)
	subscriptionService := services.NewSubscriptionService(subscriptionRepo, paymentRepo, userRepo, notificationService)
	probabilityService := services.NewProbabilityService(subscriptionRepo, countryRepo, analyticsRepo)
	chatService := services.NewChatService(chatRepo, wsManager)
	documentService := services.NewDocumentService(documentRepo, storageInstance, cfg)

	return &services.ServiceContainer{
		AuthService:         authService,
		UserService:         userService,
		CountryService:      countryService,
		ApplicationService:  applicationService,
		SubscriptionService: subscriptionService,
		ProbabilityService:  probabilityService,
		NotificationService: notificationService,
		ChatService:         chatService,
		DocumentService:     documentService,
	}
}

func initializeHandlers(services *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(baseHandler, services.AuthService),
		UserHandler:         handlers.NewUserHandler(baseHandler, services.UserService),
		CountryHandler:      handlers.NewCountryHandler(baseHandler, services.CountryService),
		ApplicationHandler:  handlers.NewApplicationHandler(baseHandler, services.ApplicationService),
		SubscriptionHandler: handlers.NewSubscriptionHandler(baseHandler, services.SubscriptionService),
		ProbabilityHandler:  handlers.NewProbabilityHandler(baseHandler, services.ProbabilityService),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, services.NotificationService),
		ChatHandler:         handlers.NewChatHandler(baseHandler, services.ChatService),
		DocumentHandler:     handlers.NewDocumentHandler(baseHandler, services.DocumentService),
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

func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	adminEmail := cfg.FirstAdminEmail
	adminPassword := cfg.FirstAdminPassword

	if adminEmail == "" || adminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD is not set. Skipping admin seeding.")
		return nil
	}

	var adminUser models.User
	result := db.Where("email = ?", adminEmail).First(&adminUser)

	if result.Error == nil {
		logger.Info("Admin user already exists. Skipping creation.", "email", adminEmail)
		return nil
	}

	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return fmt.Errorf("failed to check for admin user: %w", result.Error)
	}

	logger.Warn("No admin user found. Creating first admin...", "email", adminEmail)

	hashedPassword, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	newAdmin := &models.User{
		Username:       "admin",
		Email:          adminEmail,
		PasswordHash:   hashedPassword,
		PassportNumber: "ADMIN-SEED",
		Role:           models.UserRoleAdmin,
	}

	if err := db.Create(newAdmin).Error; err != nil {
		return fmt.Errorf("failed to create admin user in database: %w", err)
	}

	logger.Info("✅ Successfully created first admin user", "email", adminEmail)
	return nil
}

// seedDefaultPlan гарантирует наличие хотя бы одного тарифа в каталоге.
func seedDefaultPlan(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.SubscriptionPlan{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count subscription plans: %w", err)
	}
	if count > 0 {
		return nil
	}

	plan := &models.SubscriptionPlan{
		Name:         "Премиум подписка",
		Description:  "Доступ к оценке вероятности одобрения визы и приоритетной поддержке",
		Price:        19.99,
		DurationDays: 30,
		IsActive:     true,
	}
	if err := db.Create(plan).Error; err != nil {
		return fmt.Errorf("failed to seed default plan: %w", err)
	}

	logger.Info("Default subscription plan created", "name", plan.Name)
	return nil
}
