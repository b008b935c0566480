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

	"github.com/jumparoo/bounce-bookings/internal/availability"
	"github.com/jumparoo/bounce-bookings/internal/catalog"
	"github.com/jumparoo/bounce-bookings/internal/flow"
	"github.com/jumparoo/bounce-bookings/internal/http/handlers"
	"github.com/jumparoo/bounce-bookings/internal/notify"
	"github.com/jumparoo/bounce-bookings/internal/payment"
	"github.com/jumparoo/bounce-bookings/internal/platform/mailer"
	"github.com/jumparoo/bounce-bookings/internal/repo/postgres"
	"github.com/jumparoo/bounce-bookings/internal/session"
	"github.com/jumparoo/bounce-bookings/pkg/config"
	"github.com/jumparoo/bounce-bookings/pkg/database"
	"github.com/jumparoo/bounce-bookings/pkg/events"
	"github.com/jumparoo/bounce-bookings/pkg/logger"
	mw "github.com/jumparoo/bounce-bookings/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Repositories
	bookingRepo := postgres.NewBookingRepo(pool)
	productRepo := postgres.NewProductRepo(pool)

	// Catalog backend: local Postgres or the legacy remote products API
	var store catalog.Store = productRepo
	if cfg.Catalog.Backend == "remote" && cfg.Catalog.BaseURL != "" {
		store = catalog.NewRemoteStore(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)
		logger.Info("Using remote catalog", "base_url", cfg.Catalog.BaseURL)
	}

	// Event bus (optional; toasts fall back to the log)
	var bus events.Publisher
	notifier := notify.Multi{notify.LogNotifier{}}
	if cfg.NATS.Enabled {
		eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			logger.Warn("NATS unavailable, notifications will only be logged", "error", err)
		} else {
			defer eventBus.Close()
			bus = eventBus
			notifier = append(notifier, notify.NewBusNotifier(eventBus))
		}
	}

	// Payment gateway
	var gateway payment.Gateway = payment.NewSandboxGateway()
	if cfg.Payment.StripeKey != "" {
		gateway = payment.NewStripeGateway(cfg.Payment.StripeKey, cfg.Payment.Environment)
	} else {
		logger.Warn("No Stripe key configured, using sandbox payment gateway")
	}

	// Mailer
	var mail mailer.Service
	switch {
	case cfg.Email.DevMode:
		mail = mailer.NewDevMailer()
	case cfg.Email.MailerSendKey != "":
		mail = mailer.NewMailer(cfg.Email.MailerSendKey, "Jumparoo Party Rentals", cfg.Email.SMTPFrom)
	default:
		mail = mailer.NewSMTPMailer(cfg.Email.SMTPHost, cfg.Email.SMTPPort, cfg.Email.SMTPFrom, cfg.Email.SMTPUser, cfg.Email.SMTPPass)
	}

	// Wizard sessions
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	var sessionStore session.Store = session.NewRedisStore(redisClient, cfg.Flow.SessionTTL)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, sessions will not survive restarts", "error", err)
		sessionStore = session.NewMemoryStore()
	}

	sessions := session.NewManager(sessionStore, flow.Deps{
		Catalog:        store,
		Payments:       gateway,
		Sink:           bookingRepo,
		Notifier:       notifier,
		SubmitTimeout:  cfg.Flow.SubmitTimeout,
		PaymentTimeout: cfg.Flow.PaymentTimeout,
	})

	checker := availability.NewRepoChecker(bookingRepo)

	h := handlers.New(sessions, bookingRepo, store, checker, mail, bus, cfg.Admin.APIKey)

	// Router
	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("bookings"))
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		// Wizard flow
		r.Route("/booking-flow", func(r chi.Router) {
			r.Post("/", h.StartFlow)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", h.GetFlow)
				r.Patch("/", h.UpdateDraft)
				r.Post("/next", h.NextStep)
				r.Post("/back", h.PrevStep)
				r.Post("/checkout", h.Checkout)
			})
		})

		// Catalog
		r.Get("/products", h.ListProducts)
		r.Get("/products/{ref}", h.GetProduct)
		r.Get("/durations", h.ListDurations)
		r.Get("/availability", h.CheckAvailability)

		// Bookings
		r.Post("/bookings", h.CreateBooking)
		r.Get("/bookings/{bookingID}", h.GetBooking)
		r.With(h.RequireAdminKey).Get("/bookings", h.ListBookings)
		r.With(h.RequireAdminKey).Delete("/bookings/{bookingID}", h.CancelBooking)
	})

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

		logger.Info("Shutting down bookings service...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Bookings service shutdown error", "error", err)
		}
	}()

	logger.Info("Starting bookings service", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Bookings service error", "error", err)
		os.Exit(1)
	}
}
