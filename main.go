// Package main provides the main entry point for the Shirahama Clinic management system
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirphl/Shirahama-Clinic/app/handlers"
	"github.com/amirphl/Shirahama-Clinic/app/middleware"
	"github.com/amirphl/Shirahama-Clinic/app/router"
	"github.com/amirphl/Shirahama-Clinic/app/services"
	businessflow "github.com/amirphl/Shirahama-Clinic/business_flow"
	"github.com/amirphl/Shirahama-Clinic/config"
	"github.com/amirphl/Shirahama-Clinic/models"
	"github.com/amirphl/Shirahama-Clinic/repository"
	"github.com/amirphl/Shirahama-Clinic/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting Shirahama Clinic application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging routes the standard logger to a rotating file when configured
func setupLogging(cfg config.LoggingConfig) {
	if cfg.Output == "stdout" || cfg.FilePath == "" {
		return
	}

	rotating := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	if cfg.Output == "both" {
		log.SetOutput(io.MultiWriter(os.Stdout, rotating))
		return
	}
	log.SetOutput(rotating)
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// migrateSchema applies the schema for all domain entities
func migrateSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Clinic{},
		&models.User{},
		&models.UserSession{},
		&models.StaffMember{},
		&models.Patient{},
		&models.Procedure{},
		&models.Appointment{},
		&models.CommissionRule{},
		&models.CommissionCalculation{},
		&models.Transaction{},
		&models.AuditLog{},
	); err != nil {
		return err
	}

	// The pre-flight duplicate check in the completion flow reads under READ
	// COMMITTED, so this index is what rejects the second of two concurrent
	// completions. One completion writes one row per beneficiary, and
	// cancelled rows never block a redo.
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS uk_commission_calculations_live_beneficiary
		ON commission_calculations (appointment_id, beneficiary_type, beneficiary_id)
		WHERE status <> 'cancelled'`).Error
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// startSessionCleanup periodically expires stale sessions so the sessions
// table does not grow unbounded. The returned cancel function stops it.
func startSessionCleanup(parent context.Context, sessionRepo repository.UserSessionRepository, interval time.Duration) func() {
	cleanupCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = time.Hour
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 30*time.Second)
				if err := sessionRepo.CleanupExpiredSessions(ctx); err != nil {
					log.Printf("Session cleanup failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := migrateSchema(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.CleanupInterval)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Seed the initial clinic and owner account when configured
	if err := ensureBootstrapEntities(db, cfg); err != nil {
		return nil, err
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewUserSessionRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	staffRepo := repository.NewStaffMemberRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	procedureRepo := repository.NewProcedureRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	ruleRepo := repository.NewCommissionRuleRepository(db)
	calcRepo := repository.NewCommissionCalculationRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	// Initialize token service
	tokenService, err := services.NewTokenService(
		cfg.JWT.AccessTokenTTL,
		cfg.JWT.RefreshTokenTTL,
		cfg.JWT.Issuer,
		cfg.JWT.Audience,
		cfg.JWT.UseRSAKeys,
		cfg.JWT.PrivateKey,
		cfg.JWT.PublicKey,
		cfg.JWT.SecretKey,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}

	log.Printf("Token service initialized with issuer: %s, audience: %s", cfg.JWT.Issuer, cfg.JWT.Audience)

	reportService := services.NewReportService()

	// Initialize flows
	authFlow := businessflow.NewAuthFlow(
		userRepo,
		sessionRepo,
		auditRepo,
		tokenService,
		db,
	)

	appointmentFlow := businessflow.NewAppointmentFlow(
		appointmentRepo,
		patientRepo,
		staffRepo,
		procedureRepo,
		ruleRepo,
		calcRepo,
		transactionRepo,
		auditRepo,
		rc,
		&cfg.Cache,
		db,
	)

	commissionFlow := businessflow.NewCommissionFlow(
		ruleRepo,
		calcRepo,
		staffRepo,
		userRepo,
		auditRepo,
		reportService,
		rc,
		&cfg.Cache,
		db,
	)

	financeFlow := businessflow.NewFinanceFlow(
		transactionRepo,
		auditRepo,
		db,
	)

	clinicFlow := businessflow.NewClinicFlow(
		staffRepo,
		patientRepo,
		procedureRepo,
		db,
	)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authFlow)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentFlow)
	commissionHandler := handlers.NewCommissionHandler(commissionFlow)
	financeHandler := handlers.NewFinanceHandler(financeFlow)
	clinicHandler := handlers.NewClinicHandler(clinicFlow)

	// Initialize auth middleware
	authMiddleware := middleware.NewAuthMiddleware(tokenService, userRepo)

	// Initialize router
	appRouter := router.NewFiberRouter(
		cfg,
		authMiddleware,
		authHandler,
		appointmentHandler,
		commissionHandler,
		financeHandler,
		clinicHandler,
	)

	stopCleanup := startSessionCleanup(context.Background(), sessionRepo, cfg.Security.SessionCleanupInterval)
	stopFuncs = append(stopFuncs, stopCleanup)

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}

// ensureBootstrapEntities creates the initial clinic and owner user on first
// start, so a fresh deployment has an account to sign in with
func ensureBootstrapEntities(db *gorm.DB, cfg *config.ProductionConfig) error {
	if cfg.Bootstrap.ClinicUUID == "" {
		return nil
	}

	clinicRepo := repository.NewClinicRepository(db)
	userRepo := repository.NewUserRepository(db)

	clinic, err := ensureClinicByUUID(clinicRepo, cfg.Bootstrap.ClinicUUID, cfg.Bootstrap.ClinicName)
	if err != nil {
		return err
	}

	if cfg.Bootstrap.OwnerUUID == "" || cfg.Bootstrap.OwnerEmail == "" {
		return nil
	}
	return ensureOwnerByUUID(userRepo, clinic, cfg.Bootstrap, cfg.Security.BcryptCost)
}

func ensureClinicByUUID(clinicRepo repository.ClinicRepository, uuidStr, name string) (*models.Clinic, error) {
	parsed, err := uuid.Parse(uuidStr)
	if err != nil {
		return nil, fmt.Errorf("invalid bootstrap clinic uuid: %w", err)
	}

	existing, err := clinicRepo.ByUUID(context.Background(), uuidStr)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	clinic := &models.Clinic{
		UUID:      parsed,
		Name:      name,
		IsActive:  utils.ToPtr(true),
		CreatedAt: utils.UTCNow(),
		UpdatedAt: utils.UTCNow(),
	}
	if err := clinicRepo.Save(context.Background(), clinic); err != nil {
		return nil, err
	}
	log.Printf("Bootstrap clinic created: %s", name)
	return clinic, nil
}

func ensureOwnerByUUID(userRepo repository.UserRepository, clinic *models.Clinic, cfg config.BootstrapConfig, bcryptCost int) error {
	parsed, err := uuid.Parse(cfg.OwnerUUID)
	if err != nil {
		return fmt.Errorf("invalid bootstrap owner uuid: %w", err)
	}

	existing, err := userRepo.ByUUID(context.Background(), cfg.OwnerUUID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	if cfg.OwnerPassword == "" {
		return fmt.Errorf("BOOTSTRAP_OWNER_PASSWORD is required to create the bootstrap owner")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.OwnerPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash bootstrap owner password: %w", err)
	}

	owner := &models.User{
		UUID:         parsed,
		ClinicID:     clinic.ID,
		FullName:     cfg.OwnerName,
		Email:        cfg.OwnerEmail,
		PasswordHash: string(hash),
		Role:         models.UserRoleOwner,
		IsActive:     utils.ToPtr(true),
		CreatedAt:    utils.UTCNow(),
		UpdatedAt:    utils.UTCNow(),
	}
	if err := userRepo.Save(context.Background(), owner); err != nil {
		return err
	}
	log.Printf("Bootstrap owner created: %s", cfg.OwnerEmail)
	return nil
}
