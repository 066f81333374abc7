package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/printcraft/printcraft-backend/api/routes"
	authsvc "github.com/printcraft/printcraft-backend/internal/auth"
	"github.com/printcraft/printcraft-backend/internal/inquiries"
	"github.com/printcraft/printcraft-backend/internal/mailer"
	"github.com/printcraft/printcraft-backend/internal/notifications"
	"github.com/printcraft/printcraft-backend/internal/orders"
	"github.com/printcraft/printcraft-backend/internal/otp"
	"github.com/printcraft/printcraft-backend/internal/payments"
	"github.com/printcraft/printcraft-backend/internal/users"
	"github.com/printcraft/printcraft-backend/pkg/config"
	"github.com/printcraft/printcraft-backend/pkg/db"
	"github.com/printcraft/printcraft-backend/pkg/logger"
	"github.com/printcraft/printcraft-backend/pkg/metrics"
	"github.com/printcraft/printcraft-backend/pkg/migrate"
	"github.com/printcraft/printcraft-backend/pkg/razorpay"
	"github.com/printcraft/printcraft-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	paymentMetrics := metrics.NewPaymentMetrics(registry)

	var mail mailer.Mailer
	smtpMailer, err := mailer.NewSMTPMailer(cfg.SMTP, logg)
	switch {
	case err == nil:
		mail = smtpMailer
	case cfg.App.IsProd():
		logg.Error(context.Background(), "failed to create smtp mailer", err)
		os.Exit(1)
	default:
		logg.Warn(context.Background(), "smtp not configured, using in-memory mailer")
		mail = &mailer.Recorder{}
	}

	otpService, err := otp.NewService(otp.ServiceParams{
		Store:  redisClient,
		Mailer: mail,
		Config: cfg.OTP,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create otp service", err)
		os.Exit(1)
	}

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		Users:    users.NewRepository(dbClient.DB()),
		OTP:      otpService,
		JWT:      cfg.JWT,
		Password: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notifications.ServiceParams{
		Repo:   notifications.NewRepository(dbClient.DB()),
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	inquiryRepo := inquiries.NewRepository(dbClient.DB())
	inquiryService, err := inquiries.NewService(inquiries.ServiceParams{
		Repo:     inquiryRepo,
		Notifier: notificationService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create inquiry service", err)
		os.Exit(1)
	}

	orderRepo := orders.NewRepository(dbClient.DB())
	orderService, err := orders.NewService(orders.ServiceParams{
		Tx:        dbClient,
		Repo:      orderRepo,
		Inquiries: inquiryRepo,
		Notifier:  notificationService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	var gateway payments.Gateway
	if cfg.Razorpay.KeyID != "" && cfg.Razorpay.KeySecret != "" {
		gatewayClient, err := razorpay.NewClient(context.Background(), cfg.Razorpay, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create razorpay client", err)
			os.Exit(1)
		}
		gateway = gatewayClient
	} else {
		logg.Warn(context.Background(), "razorpay credentials not set, online payments disabled")
	}

	paymentService, err := payments.NewService(payments.ServiceParams{
		Tx:       dbClient,
		Orders:   orderRepo,
		Gateway:  gateway,
		Metrics:  paymentMetrics,
		Notifier: notificationService,
		Currency: cfg.Razorpay.Currency,
		KeyID:    cfg.Razorpay.KeyID,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			authService,
			inquiryService,
			orderService,
			paymentService,
			notificationService,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
