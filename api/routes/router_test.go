package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	authsvc "github.com/printcraft/printcraft-backend/internal/auth"
	"github.com/printcraft/printcraft-backend/internal/inquiries"
	"github.com/printcraft/printcraft-backend/internal/notifications"
	"github.com/printcraft/printcraft-backend/internal/orders"
	"github.com/printcraft/printcraft-backend/internal/payments"
	"github.com/printcraft/printcraft-backend/internal/users"
	pkgAuth "github.com/printcraft/printcraft-backend/pkg/auth"
	"github.com/printcraft/printcraft-backend/pkg/config"
	"github.com/printcraft/printcraft-backend/pkg/db/models"
	"github.com/printcraft/printcraft-backend/pkg/enums"
	"github.com/printcraft/printcraft-backend/pkg/logger"
	"github.com/printcraft/printcraft-backend/pkg/pagination"
	"github.com/printcraft/printcraft-backend/pkg/redis"
)

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubUsersRepo struct{}

func (s stubUsersRepo) WithTx(tx *gorm.DB) users.Repository { return s }

func (stubUsersRepo) Create(ctx context.Context, user *models.User) error { return nil }

func (stubUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, nil
}

func (stubUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, nil
}

type stubInquiriesRepo struct{}

func (s stubInquiriesRepo) WithTx(tx *gorm.DB) inquiries.Repository { return s }

func (stubInquiriesRepo) CreateGroup(ctx context.Context, group *models.InquiryGroup) error {
	return nil
}

func (stubInquiriesRepo) UpdateGroup(ctx context.Context, group *models.InquiryGroup) error {
	return nil
}

func (stubInquiriesRepo) FindGroupByID(ctx context.Context, id uuid.UUID) (*models.InquiryGroup, error) {
	return nil, nil
}

func (stubInquiriesRepo) ListGroupsByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.InquiryGroup, error) {
	return []models.InquiryGroup{}, nil
}

func (stubInquiriesRepo) ListGroups(ctx context.Context, query inquiries.ListQuery, params pagination.Params) ([]models.InquiryGroup, error) {
	return []models.InquiryGroup{}, nil
}

type stubOrdersRepo struct{}

func (s stubOrdersRepo) WithTx(tx *gorm.DB) orders.Repository { return s }

func (stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) error { return nil }

func (stubOrdersRepo) UpdateOrder(ctx context.Context, order *models.Order) error { return nil }

func (stubOrdersRepo) UpdateGatewayOrderID(ctx context.Context, orderID uuid.UUID, gatewayOrderID string) error {
	return nil
}

func (stubOrdersRepo) ApplyPayment(ctx context.Context, orderID uuid.UUID, expectedPaid, newPaid decimal.Decimal, status enums.PaymentStatus) (bool, error) {
	return false, nil
}

func (stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return nil, nil
}

func (stubOrdersRepo) FindByInquiryID(ctx context.Context, inquiryID uuid.UUID) (*models.Order, error) {
	return nil, nil
}

func (stubOrdersRepo) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	return []models.Order{}, nil
}

func (stubOrdersRepo) List(ctx context.Context, query orders.ListOrdersQuery, params pagination.Params) ([]models.Order, error) {
	return []models.Order{}, nil
}

func (stubOrdersRepo) DeleteOrder(ctx context.Context, id uuid.UUID) error { return nil }

func (stubOrdersRepo) CreateMilestones(ctx context.Context, milestones []models.OrderMilestone) error {
	return nil
}

func (stubOrdersRepo) FindMilestone(ctx context.Context, orderID, milestoneID uuid.UUID) (*models.OrderMilestone, error) {
	return nil, nil
}

func (stubOrdersRepo) MarkMilestonePaid(ctx context.Context, milestoneID uuid.UUID, paidAt time.Time) (bool, error) {
	return false, nil
}

func (stubOrdersRepo) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	return nil
}

type stubNotificationsRepo struct{}

func (s stubNotificationsRepo) WithTx(tx *gorm.DB) notifications.Repository { return s }

func (stubNotificationsRepo) Create(ctx context.Context, notification *models.Notification) error {
	return nil
}

func (stubNotificationsRepo) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Notification, error) {
	return []models.Notification{}, nil
}

func (stubNotificationsRepo) MarkRead(ctx context.Context, userID, id uuid.UUID, readAt time.Time) (bool, error) {
	return true, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		Users:    stubUsersRepo{},
		JWT:      cfg.JWT,
		Password: cfg.Password,
	})
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}

	notificationService, err := notifications.NewService(notifications.ServiceParams{
		Repo: stubNotificationsRepo{},
	})
	if err != nil {
		t.Fatalf("notification service: %v", err)
	}

	inquiryService, err := inquiries.NewService(inquiries.ServiceParams{
		Repo: stubInquiriesRepo{},
	})
	if err != nil {
		t.Fatalf("inquiry service: %v", err)
	}

	orderService, err := orders.NewService(orders.ServiceParams{
		Tx:        passthroughTx{},
		Repo:      stubOrdersRepo{},
		Inquiries: stubInquiriesRepo{},
	})
	if err != nil {
		t.Fatalf("order service: %v", err)
	}

	paymentService, err := payments.NewService(payments.ServiceParams{
		Tx:     passthroughTx{},
		Orders: stubOrdersRepo{},
	})
	if err != nil {
		t.Fatalf("payment service: %v", err)
	}

	return NewRouter(
		cfg,
		logg,
		nil,
		(*redis.Client)(nil),
		prometheus.NewRegistry(),
		authService,
		inquiryService,
		orderService,
		paymentService,
		notificationService,
	)
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for live probe got %d", resp.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}

func TestCustomerGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(t, testConfig())
	for _, path := range []string{"/api/v1/inquiries", "/api/v1/orders", "/api/v1/notifications"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 for %s without token got %d", path, resp.Code)
		}
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	customer := httptest.NewRequest(http.MethodGet, "/api/admin/v1/inquiries", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer on admin route got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/inquiries", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin inquiry list got %d", resp.Code)
	}
}

func TestCustomerCanListOwnOrders(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for order list got %d", resp.Code)
	}
}

func TestRegisterRejectsBadJSON(t *testing.T) {
	router := newTestRouter(t, testConfig())
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid payload got %d", resp.Code)
	}
}

func TestAdminOrderConversionRejectsUnknownSplit(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg)

	body := `{"inquiry_id":"` + uuid.NewString() + `","split_type":"THIRDS"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/orders", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown split type got %d", resp.Code)
	}
}
