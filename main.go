package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/chlachla/chlachla-backend/database"
	"github.com/chlachla/chlachla-backend/internal/handlers"
	"github.com/chlachla/chlachla-backend/internal/jobs"
	"github.com/chlachla/chlachla-backend/internal/models"
	"github.com/chlachla/chlachla-backend/internal/routes"
	"github.com/chlachla/chlachla-backend/internal/services"
	"github.com/chlachla/chlachla-backend/internal/storage"
)

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("⚠️  No .env file found - checking environment variables")
		}
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Initialize ride/booking storage
	var store storage.Store
	var db *gorm.DB

	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()
		db = database.DB

		log.Println("🔄 Running database migrations...")
		if err := db.AutoMigrate(&models.Ride{}, &models.Booking{}); err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(db)
		log.Println("✅ Using PostgreSQL database storage")
	}

	// OTP challenge store: Redis when configured, in-memory otherwise
	var otpStore storage.OTPStore
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" && os.Getenv("REDIS_HOST") != "" {
		port := os.Getenv("REDIS_PORT")
		if port == "" {
			port = "6379"
		}
		redisAddr = os.Getenv("REDIS_HOST") + ":" + port
	}
	if redisAddr != "" {
		redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
		client, err := storage.NewRedisClient(redisAddr, os.Getenv("REDIS_PASSWORD"), redisDB)
		if err != nil {
			log.Printf("⚠️  Redis unavailable (%v) - falling back to in-memory OTP store", err)
			otpStore = storage.NewMemoryOTPStore()
		} else {
			otpStore = storage.NewRedisOTPStore(client)
			log.Println("✅ Using Redis OTP store")
		}
	} else {
		otpStore = storage.NewMemoryOTPStore()
		log.Println("⚠️  Using in-memory OTP store")
	}

	// SMS delivery: Twilio when configured, log-only otherwise
	var notifier services.Notifier
	smsEnabled := false
	twilioNotifier, err := services.NewTwilioNotifier(
		os.Getenv("TWILIO_ACCOUNT_SID"),
		os.Getenv("TWILIO_AUTH_TOKEN"),
		os.Getenv("TWILIO_PHONE_NUMBER"),
	)
	if err != nil {
		log.Println("⚠️  Twilio credentials not found - OTP codes will be logged only")
		notifier = services.LogNotifier{}
	} else {
		notifier = twilioNotifier
		smsEnabled = true
		log.Println("✅ Twilio SMS delivery initialized")
	}

	// Core services
	issuer := services.NewJWTIssuer(jwtSecret)
	otpService := services.NewOTPService(otpStore, issuer)
	bookingService := services.NewBookingService(store)

	// Background OTP expiry sweep
	sweeper := jobs.NewSweeperJob(otpService, time.Minute)
	sweeper.Start()

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "Chla Chla Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	routes.SetupRoutes(app, &routes.Handlers{
		Auth:    handlers.NewAuthHandler(otpService, notifier),
		Ride:    handlers.NewRideHandler(store),
		Booking: handlers.NewBookingHandler(bookingService, store),
		Health:  handlers.NewHealthHandler(db, getStorageType(), smsEnabled),
		Issuer:  issuer,
	})

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		log.Println("⏹️  Stopping OTP sweeper...")
		sweeper.Stop()
		log.Println("⏹️  Shutting down server...")
		_ = app.Shutdown()
	}()

	log.Println("========================================")
	log.Printf("🚀 Chla Chla Backend starting on port %s", port)
	log.Printf("📊 Storage: %s", getStorageType())
	log.Printf("📱 SMS: %s", getSMSStatus(smsEnabled))
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

func getSMSStatus(enabled bool) string {
	if enabled {
		return "Configured"
	}
	return "Log only"
}
