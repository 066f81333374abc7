package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printcraft/printcraft-backend/pkg/db/models"
	"github.com/printcraft/printcraft-backend/pkg/enums"
	pkgerrors "github.com/printcraft/printcraft-backend/pkg/errors"
	"github.com/printcraft/printcraft-backend/pkg/logger"
	"github.com/printcraft/printcraft-backend/pkg/pagination"
)

// ServiceParams groups dependencies for the notification service.
type ServiceParams struct {
	Repo   Repository
	Logger *logger.Logger
	Now    func() time.Time
}

// Service writes user-facing event rows and serves the notification feed.
// Event writes run after the owning commit and are best-effort: a failed
// notification never fails the business operation that triggered it.
type Service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds a notification service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{repo: params.Repo, logg: params.Logger, now: now}, nil
}

func (s *Service) emit(ctx context.Context, userID uuid.UUID, kind enums.NotificationType, title, body string) {
	notification := &models.Notification{
		UserID: userID,
		Type:   kind,
		Title:  title,
		Body:   body,
	}
	if err := s.repo.Create(ctx, notification); err != nil && s.logg != nil {
		s.logg.Error(ctx, "writing notification", err)
	}
}

// InquiryQuoted records that an admin priced the user's inquiry.
func (s *Service) InquiryQuoted(ctx context.Context, userID, inquiryID uuid.UUID, total decimal.Decimal) {
	s.emit(ctx, userID, enums.NotificationTypeInquiryQuoted,
		"Your inquiry has been quoted",
		fmt.Sprintf("Inquiry %s was quoted at %s. Review and respond to proceed.", inquiryID, total.StringFixed(2)))
}

// OrderCreated records the conversion of the user's inquiry into an order.
func (s *Service) OrderCreated(ctx context.Context, userID, orderID uuid.UUID, total decimal.Decimal) {
	s.emit(ctx, userID, enums.NotificationTypeOrderCreated,
		"Your order has been created",
		fmt.Sprintf("Order %s was created with a total of %s.", orderID, total.StringFixed(2)))
}

// OrderStatusChanged records a fulfillment transition on the user's order.
func (s *Service) OrderStatusChanged(ctx context.Context, userID, orderID uuid.UUID, status enums.FulfillmentStatus) {
	s.emit(ctx, userID, enums.NotificationTypeOrderStatus,
		"Order status updated",
		fmt.Sprintf("Order %s is now %s.", orderID, status))
}

// PaymentRecorded records a settled payment against the user's order.
func (s *Service) PaymentRecorded(ctx context.Context, userID, orderID uuid.UUID, amount decimal.Decimal) {
	s.emit(ctx, userID, enums.NotificationTypePaymentRecorded,
		"Payment received",
		fmt.Sprintf("A payment of %s was recorded on order %s.", amount.StringFixed(2), orderID))
}

// ListForUser returns the caller's notification feed, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Notification, error) {
	return s.repo.ListByUser(ctx, userID, params)
}

// MarkRead stamps one notification as read, enforcing ownership.
func (s *Service) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	updated, err := s.repo.MarkRead(ctx, userID, id, s.now())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking notification read")
	}
	if !updated {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}
