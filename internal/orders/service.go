package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/printcraft/printcraft-backend/internal/planner"
	"github.com/printcraft/printcraft-backend/pkg/db"
	"github.com/printcraft/printcraft-backend/pkg/db/models"
	"github.com/printcraft/printcraft-backend/pkg/enums"
	pkgerrors "github.com/printcraft/printcraft-backend/pkg/errors"
	"github.com/printcraft/printcraft-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type inquiryLoader interface {
	FindGroupByID(ctx context.Context, id uuid.UUID) (*models.InquiryGroup, error)
}

// Notifier receives order lifecycle events after a successful commit.
type Notifier interface {
	OrderCreated(ctx context.Context, userID, orderID uuid.UUID, total decimal.Decimal)
	OrderStatusChanged(ctx context.Context, userID, orderID uuid.UUID, status enums.FulfillmentStatus)
}

// ServiceParams groups dependencies for the order service.
type ServiceParams struct {
	Tx        txRunner
	Repo      Repository
	Inquiries inquiryLoader
	Notifier  Notifier
	Now       func() time.Time
}

// Service converts accepted inquiries into orders and manages order queries
// and the fulfillment axis.
type Service struct {
	tx        txRunner
	repo      Repository
	inquiries inquiryLoader
	notifier  Notifier
	now       func() time.Time
}

// NewService builds an order service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Tx == nil {
		return nil, errors.New("tx runner is required")
	}
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	if params.Inquiries == nil {
		return nil, errors.New("inquiry loader is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		tx:        params.Tx,
		repo:      params.Repo,
		inquiries: params.Inquiries,
		notifier:  params.Notifier,
		now:       now,
	}, nil
}

// Convert creates the order and its milestone schedule for an accepted
// inquiry. The order total is frozen from the quoted price at this instant;
// the order and all milestones commit in one transaction.
func (s *Service) Convert(ctx context.Context, input ConvertInput) (*models.Order, error) {
	if input.InquiryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "inquiry id required")
	}
	if !input.SplitType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid split type")
	}

	group, err := s.inquiries.FindGroupByID(ctx, input.InquiryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading inquiry group")
	}
	if group == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inquiry not found")
	}
	if group.Status != enums.InquiryStatusAccepted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "inquiry is not accepted")
	}
	if group.TotalQuotedPrice == nil || group.TotalQuotedPrice.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "inquiry has no usable quoted price")
	}

	existing, err := s.repo.FindByInquiryID(ctx, input.InquiryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking for existing order")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already exists for this inquiry")
	}

	specs, err := planner.Plan(*group.TotalQuotedPrice, input.SplitType)
	if err != nil {
		if errors.Is(err, planner.ErrInvalidTotal) || errors.Is(err, planner.ErrTotalTooSmall) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "planning milestones")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "planning milestones")
	}

	order := &models.Order{
		InquiryID:         group.ID,
		UserID:            group.UserID,
		TotalAmount:       *group.TotalQuotedPrice,
		AmountPaid:        decimal.Zero,
		PaymentStatus:     enums.PaymentStatusWaiting,
		FulfillmentStatus: enums.FulfillmentStatusNew,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}
		milestones := make([]models.OrderMilestone, 0, len(specs))
		for _, spec := range specs {
			milestones = append(milestones, models.OrderMilestone{
				OrderID:            order.ID,
				Label:              spec.Label,
				Amount:             spec.Amount,
				Percentage:         spec.Percentage,
				OrderIndex:         spec.OrderIndex,
				VerificationStatus: enums.VerificationStatusPending,
			})
		}
		return repo.CreateMilestones(ctx, milestones)
	})
	if err != nil {
		// Two conversions can pass the FindByInquiryID pre-check; the unique
		// index on inquiry_id decides the loser at commit.
		if db.IsUniqueViolation(err, "uq_orders_inquiry_id") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already exists for this inquiry")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting order")
	}

	if s.notifier != nil {
		s.notifier.OrderCreated(ctx, order.UserID, order.ID, order.TotalAmount)
	}

	created, err := s.repo.FindByID(ctx, order.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading order")
	}
	if created == nil {
		return order, nil
	}
	return created, nil
}

// Get returns one order with milestones and transactions.
func (s *Service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// GetForUser returns one order, enforcing ownership.
func (s *Service) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order == nil || order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

// ListForUser returns the caller's orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	return s.repo.ListByUser(ctx, userID, params)
}

// ListAdmin returns orders across users with optional status filters.
func (s *Service) ListAdmin(ctx context.Context, query ListOrdersQuery, params pagination.Params) ([]models.Order, error) {
	return s.repo.List(ctx, query, params)
}

// UpdateFulfillment moves the fulfillment axis. Payment status is untouched;
// the two fields evolve independently.
func (s *Service) UpdateFulfillment(ctx context.Context, orderID uuid.UUID, input UpdateFulfillmentInput) (*models.Order, error) {
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid fulfillment status")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	order.FulfillmentStatus = input.Status
	if err := s.repo.UpdateOrder(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving order")
	}

	if s.notifier != nil {
		s.notifier.OrderStatusChanged(ctx, order.UserID, order.ID, order.FulfillmentStatus)
	}
	return order, nil
}

// Delete removes the order with its milestones and transactions in one
// transaction. Admin-only escape hatch; the ledger is otherwise append-only.
func (s *Service) Delete(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).DeleteOrder(ctx, orderID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting order")
	}
	return nil
}
