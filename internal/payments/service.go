package payments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/printcraft/printcraft-backend/internal/orders"
	"github.com/printcraft/printcraft-backend/pkg/db"
	"github.com/printcraft/printcraft-backend/pkg/db/models"
	"github.com/printcraft/printcraft-backend/pkg/enums"
	pkgerrors "github.com/printcraft/printcraft-backend/pkg/errors"
	"github.com/printcraft/printcraft-backend/pkg/metrics"
	"github.com/printcraft/printcraft-backend/pkg/razorpay"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Gateway is the payment-gateway surface the service depends on. The
// production implementation is pkg/razorpay.Client.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string, notes map[string]string) (*razorpay.OrderResult, error)
	VerifyPaymentSignature(gatewayOrderID, gatewayPaymentID, gatewaySignature string) bool
}

// Notifier receives payment events after a successful commit.
type Notifier interface {
	PaymentRecorded(ctx context.Context, userID, orderID uuid.UUID, amount decimal.Decimal)
}

// ServiceParams groups dependencies for the payment service.
type ServiceParams struct {
	Tx       txRunner
	Orders   orders.Repository
	Gateway  Gateway
	Metrics  *metrics.PaymentMetrics
	Notifier Notifier
	Currency string
	KeyID    string
	Now      func() time.Time
}

// Service is the financial mutation boundary: manual milestone settlement and
// the gateway lump-sum path both run here, each inside one transaction.
type Service struct {
	tx       txRunner
	orders   orders.Repository
	gateway  Gateway
	metrics  *metrics.PaymentMetrics
	notifier Notifier
	currency string
	keyID    string
	now      func() time.Time
}

// NewService builds a payment service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Tx == nil {
		return nil, errors.New("tx runner is required")
	}
	if params.Orders == nil {
		return nil, errors.New("orders repo is required")
	}
	currency := params.Currency
	if currency == "" {
		currency = "INR"
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		tx:       params.Tx,
		orders:   params.Orders,
		gateway:  params.Gateway,
		metrics:  params.Metrics,
		notifier: params.Notifier,
		currency: currency,
		keyID:    params.KeyID,
		now:      now,
	}, nil
}

// derivePaymentStatus is a pure function of the running paid total, so
// re-deriving it for the same amounts always yields the same status.
func derivePaymentStatus(amountPaid, totalAmount decimal.Decimal) enums.PaymentStatus {
	switch {
	case amountPaid.GreaterThanOrEqual(totalAmount):
		return enums.PaymentStatusPaid
	case amountPaid.GreaterThan(decimal.Zero):
		return enums.PaymentStatusPartiallyPaid
	default:
		return enums.PaymentStatusWaiting
	}
}

// RecordManualPayment settles one milestone with an offline payment. The
// amount must match the milestone's planned amount exactly; a milestone can
// win the paid flip only once.
func (s *Service) RecordManualPayment(ctx context.Context, orderID uuid.UUID, input RecordManualPaymentInput) (*models.Transaction, error) {
	if orderID == uuid.Nil || input.MilestoneID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id and milestone id required")
	}
	if !input.PaymentMode.IsValid() || input.PaymentMode == enums.PaymentModeOnline {
		s.metrics.IncFailed("invalid_mode")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment mode for manual recording")
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		s.metrics.IncFailed("invalid_amount")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}

	var txn *models.Transaction
	var order *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)

		var err error
		order, err = repo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}

		milestone, err := repo.FindMilestone(ctx, orderID, input.MilestoneID)
		if err != nil {
			return err
		}
		if milestone == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "milestone not found for this order")
		}
		if milestone.IsPaid {
			return pkgerrors.New(pkgerrors.CodeConflict, "milestone is already paid")
		}
		if !input.Amount.Equal(milestone.Amount) {
			return pkgerrors.New(pkgerrors.CodeValidation, "amount must match the milestone amount exactly")
		}

		won, err := repo.MarkMilestonePaid(ctx, milestone.ID, s.now())
		if err != nil {
			return err
		}
		if !won {
			return pkgerrors.New(pkgerrors.CodeConflict, "milestone is already paid")
		}

		milestoneID := milestone.ID
		txn = &models.Transaction{
			OrderID:     order.ID,
			MilestoneID: &milestoneID,
			Amount:      input.Amount,
			PaymentMode: input.PaymentMode,
			Notes:       input.Notes,
		}
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			return err
		}

		newPaid := order.AmountPaid.Add(input.Amount)
		status := derivePaymentStatus(newPaid, order.TotalAmount)
		applied, err := repo.ApplyPayment(ctx, order.ID, order.AmountPaid, newPaid, status)
		if err != nil {
			return err
		}
		if !applied {
			// Another settlement moved the paid total since we read it.
			return pkgerrors.New(pkgerrors.CodeConflict, "order balance changed, retry the payment")
		}
		order.AmountPaid = newPaid
		order.PaymentStatus = status
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			s.metrics.IncFailed(string(typed.Code()))
			return nil, typed
		}
		s.metrics.IncFailed("internal")
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording payment")
	}

	s.metrics.IncRecorded(string(input.PaymentMode))
	if s.notifier != nil {
		s.notifier.PaymentRecorded(ctx, order.UserID, order.ID, input.Amount)
	}
	return txn, nil
}

// CreateGatewayOrder opens a hosted-checkout order for the remaining balance.
// No money moves here; the returned id drives the client checkout.
func (s *Service) CreateGatewayOrder(ctx context.Context, userID uuid.UUID, input CreateGatewayOrderInput) (*GatewayOrderResult, error) {
	if s.gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway is not configured")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order == nil || (userID != uuid.Nil && order.UserID != userID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	remaining := order.TotalAmount.Sub(order.AmountPaid)
	if remaining.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already fully paid")
	}

	// Gateway amounts are integers in the smallest currency unit.
	amount := remaining.Shift(2).IntPart()

	result, err := s.gateway.CreateOrder(ctx, amount, s.currency, order.ID.String(), map[string]string{
		"order_id": order.ID.String(),
	})
	if err != nil {
		s.metrics.IncGateway("create_order", "error")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating gateway order")
	}
	s.metrics.IncGateway("create_order", "ok")

	// Only the gateway order id is written: the order row may have taken a
	// payment while the gateway call was in flight.
	if err := s.orders.UpdateGatewayOrderID(ctx, order.ID, result.GatewayOrderID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving gateway order id")
	}

	return &GatewayOrderResult{
		GatewayOrderID: result.GatewayOrderID,
		Amount:         amount,
		Currency:       s.currency,
		KeyID:          s.keyID,
	}, nil
}

// Verify checks the checkout callback signature and settles the entire
// remaining balance in one lump-sum transaction. The unique gateway payment
// id makes a replayed callback fail as a duplicate.
func (s *Service) Verify(ctx context.Context, userID uuid.UUID, input VerifyInput) (*models.Order, error) {
	if s.gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway is not configured")
	}
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	order, err := s.orders.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order == nil || (userID != uuid.Nil && order.UserID != userID) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if order.GatewayOrderID == nil || *order.GatewayOrderID != input.GatewayOrderID {
		s.metrics.IncFailed("gateway_order_mismatch")
		return nil, pkgerrors.New(pkgerrors.CodePaymentVerification, "gateway order does not belong to this order")
	}

	if !s.gateway.VerifyPaymentSignature(input.GatewayOrderID, input.GatewayPaymentID, input.GatewaySignature) {
		s.metrics.IncFailed("bad_signature")
		return nil, pkgerrors.New(pkgerrors.CodePaymentVerification, "payment signature verification failed")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)

		current, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if current == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}

		// Remaining balance is computed at verify time, not checkout time.
		remaining := current.TotalAmount.Sub(current.AmountPaid)
		if remaining.LessThanOrEqual(decimal.Zero) {
			return pkgerrors.New(pkgerrors.CodeConflict, "order is already fully paid")
		}

		paymentID := input.GatewayPaymentID
		signature := input.GatewaySignature
		txn := &models.Transaction{
			OrderID:          current.ID,
			Amount:           remaining,
			PaymentMode:      enums.PaymentModeOnline,
			GatewayPaymentID: &paymentID,
			GatewaySignature: &signature,
		}
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			if db.IsUniqueViolation(err, "uq_transactions_gateway_payment_id") {
				return pkgerrors.New(pkgerrors.CodeConflict, "gateway payment already recorded")
			}
			return err
		}

		newPaid := current.AmountPaid.Add(remaining)
		status := derivePaymentStatus(newPaid, current.TotalAmount)
		applied, err := repo.ApplyPayment(ctx, current.ID, current.AmountPaid, newPaid, status)
		if err != nil {
			return err
		}
		if !applied {
			return pkgerrors.New(pkgerrors.CodeConflict, "order balance changed, retry the payment")
		}
		current.AmountPaid = newPaid
		current.PaymentStatus = status
		order = current
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			s.metrics.IncFailed(string(typed.Code()))
			return nil, typed
		}
		s.metrics.IncFailed("internal")
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "settling gateway payment")
	}

	s.metrics.IncRecorded(string(enums.PaymentModeOnline))
	if s.notifier != nil {
		s.notifier.PaymentRecorded(ctx, order.UserID, order.ID, order.AmountPaid)
	}
	return order, nil
}
