package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/linapure/salon-api/internal/cache"
	"github.com/linapure/salon-api/internal/http/handlers"
	"github.com/linapure/salon-api/internal/mailer"
	"github.com/linapure/salon-api/internal/notify"
	"github.com/linapure/salon-api/internal/repo/postgres"
	"github.com/linapure/salon-api/internal/service"
	"github.com/linapure/salon-api/pkg/config"
	"github.com/linapure/salon-api/pkg/database"
	"github.com/linapure/salon-api/pkg/events"
	"github.com/linapure/salon-api/pkg/logger"
	mw "github.com/linapure/salon-api/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Connect to database
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Connect to Redis for the client-list cache
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		logger.Error("Invalid Redis URL", "error", err)
		os.Exit(1)
	}
	if cfg.Redis.Password != "" {
		redisOpts.Password = cfg.Redis.Password
	}
	redisOpts.DB = cfg.Redis.DB
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	// Connect to event bus
	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	apptRepo := postgres.NewAppointmentRepository(pool)
	userCache := cache.NewUserCache(redisClient, cfg.Salon.UserCacheTTL)

	// Outbound channels
	whatsapp := notify.NewWhatsAppSender(cfg.WhatsApp)
	var mail mailer.Service
	if cfg.Email.DevMode {
		mail = mailer.NewDevMailer()
	} else {
		mail = mailer.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}

	// Initialize services
	userService := service.NewUserService(userRepo, userCache)
	appointmentService := service.NewAppointmentService(apptRepo, userRepo, userCache, eventBus, cfg.Salon)
	reminderService := service.NewReminderService(apptRepo, whatsapp, mail, eventBus, cfg.Salon, cfg.Email.OwnerEmail)

	// Initialize handlers
	h := handlers.New(appointmentService, userService, reminderService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("api"))
	r.Use(mw.Logging)
	r.Use(mw.Recover)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Cache-Control"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.Health)

	h.Routes(r)

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down API...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("API shutdown error", "error", err)
		}
	}()

	logger.Info("Starting salon API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("API server error", "error", err)
		os.Exit(1)
	}
}
