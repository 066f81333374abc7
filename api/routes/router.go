package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/printcraft/printcraft-backend/api/controllers"
	"github.com/printcraft/printcraft-backend/api/middleware"
	"github.com/printcraft/printcraft-backend/internal/auth"
	"github.com/printcraft/printcraft-backend/internal/inquiries"
	"github.com/printcraft/printcraft-backend/internal/notifications"
	"github.com/printcraft/printcraft-backend/internal/orders"
	"github.com/printcraft/printcraft-backend/internal/payments"
	"github.com/printcraft/printcraft-backend/pkg/config"
	"github.com/printcraft/printcraft-backend/pkg/db"
	"github.com/printcraft/printcraft-backend/pkg/logger"
	"github.com/printcraft/printcraft-backend/pkg/redis"
)

// NewRouter wires every HTTP surface: public health/auth, the customer API,
// and the admin API.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	authService *auth.Service,
	inquiryService *inquiries.Service,
	orderService *orders.Service,
	paymentService *payments.Service,
	notificationService *notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy("login", time.Minute, 10)
	otpPolicy := middleware.NewAuthRateLimitPolicy("otp", time.Minute, 5)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbClient, redisClient, logg))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.Login(authService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/register", controllers.Register(authService, logg))
		r.Route("/otp", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(otpPolicy, redisClient, logg)).Post("/request", controllers.RequestOTP(authService, logg))
			r.With(middleware.AuthRateLimit(otpPolicy, redisClient, logg)).Post("/verify", controllers.VerifyOTP(authService, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/inquiries", func(r chi.Router) {
			r.Post("/", controllers.CreateInquiry(inquiryService, logg))
			r.Get("/", controllers.ListMyInquiries(inquiryService, logg))
			r.Get("/{inquiryId}", controllers.GetMyInquiry(inquiryService, logg))
			r.Post("/{inquiryId}/respond", controllers.RespondToQuote(inquiryService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListMyOrders(orderService, logg))
			r.Get("/{orderId}", controllers.GetMyOrder(orderService, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/create-order", controllers.CreateGatewayOrder(paymentService, logg))
			r.Post("/verify", controllers.VerifyPayment(paymentService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationService, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireRole("admin", logg))

		r.Route("/inquiries", func(r chi.Router) {
			r.Get("/", controllers.AdminListInquiries(inquiryService, logg))
			r.Post("/{inquiryId}/quote", controllers.AdminQuoteInquiry(inquiryService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.AdminConvertOrder(orderService, logg))
			r.Get("/", controllers.AdminListOrders(orderService, logg))
			r.Get("/{orderId}", controllers.AdminGetOrder(orderService, logg))
			r.Post("/{orderId}/payment", controllers.AdminRecordPayment(paymentService, logg))
			r.Patch("/{orderId}/status", controllers.AdminUpdateOrderStatus(orderService, logg))
			r.Delete("/{orderId}", controllers.AdminDeleteOrder(orderService, logg))
		})
	})

	return r
}
