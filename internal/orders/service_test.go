package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/printcraft/printcraft-backend/pkg/db/models"
	"github.com/printcraft/printcraft-backend/pkg/enums"
	pkgerrors "github.com/printcraft/printcraft-backend/pkg/errors"
	"github.com/printcraft/printcraft-backend/pkg/pagination"
)

type passthroughTx struct {
	calls int
}

func (p *passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	p.calls++
	return fn(nil)
}

type stubInquiries struct {
	groups map[uuid.UUID]*models.InquiryGroup
}

func (s *stubInquiries) FindGroupByID(ctx context.Context, id uuid.UUID) (*models.InquiryGroup, error) {
	return s.groups[id], nil
}

type stubOrdersRepo struct {
	orders       map[uuid.UUID]*models.Order
	byInquiry    map[uuid.UUID]*models.Order
	milestones   map[uuid.UUID][]models.OrderMilestone
	transactions []models.Transaction
	deleted      []uuid.UUID
	createErr    error
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{
		orders:     map[uuid.UUID]*models.Order{},
		byInquiry:  map[uuid.UUID]*models.Order{},
		milestones: map[uuid.UUID][]models.OrderMilestone{},
	}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOrdersRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	if s.createErr != nil {
		return s.createErr
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	s.orders[order.ID] = order
	s.byInquiry[order.InquiryID] = order
	return nil
}

func (s *stubOrdersRepo) UpdateOrder(ctx context.Context, order *models.Order) error {
	s.orders[order.ID] = order
	return nil
}

func (s *stubOrdersRepo) UpdateGatewayOrderID(ctx context.Context, orderID uuid.UUID, gatewayOrderID string) error {
	if order, ok := s.orders[orderID]; ok {
		order.GatewayOrderID = &gatewayOrderID
	}
	return nil
}

func (s *stubOrdersRepo) ApplyPayment(ctx context.Context, orderID uuid.UUID, expectedPaid, newPaid decimal.Decimal, status enums.PaymentStatus) (bool, error) {
	order, ok := s.orders[orderID]
	if !ok || !order.AmountPaid.Equal(expectedPaid) {
		return false, nil
	}
	order.AmountPaid = newPaid
	order.PaymentStatus = status
	return true, nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	copied := *order
	copied.Milestones = s.milestones[id]
	return &copied, nil
}

func (s *stubOrdersRepo) FindByInquiryID(ctx context.Context, inquiryID uuid.UUID) (*models.Order, error) {
	return s.byInquiry[inquiryID], nil
}

func (s *stubOrdersRepo) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	var out []models.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubOrdersRepo) List(ctx context.Context, query ListOrdersQuery, params pagination.Params) ([]models.Order, error) {
	var out []models.Order
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (s *stubOrdersRepo) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	delete(s.orders, id)
	return nil
}

func (s *stubOrdersRepo) CreateMilestones(ctx context.Context, milestones []models.OrderMilestone) error {
	for i := range milestones {
		if milestones[i].ID == uuid.Nil {
			milestones[i].ID = uuid.New()
		}
		s.milestones[milestones[i].OrderID] = append(s.milestones[milestones[i].OrderID], milestones[i])
	}
	return nil
}

func (s *stubOrdersRepo) FindMilestone(ctx context.Context, orderID, milestoneID uuid.UUID) (*models.OrderMilestone, error) {
	for _, m := range s.milestones[orderID] {
		if m.ID == milestoneID {
			copied := m
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *stubOrdersRepo) MarkMilestonePaid(ctx context.Context, milestoneID uuid.UUID, paidAt time.Time) (bool, error) {
	for orderID, list := range s.milestones {
		for i, m := range list {
			if m.ID == milestoneID {
				if m.IsPaid {
					return false, nil
				}
				list[i].IsPaid = true
				list[i].PaidAt = &paidAt
				list[i].VerificationStatus = enums.VerificationStatusApproved
				s.milestones[orderID] = list
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *stubOrdersRepo) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	s.transactions = append(s.transactions, *txn)
	return nil
}

type recordingNotifier struct {
	created       []uuid.UUID
	statusChanges []enums.FulfillmentStatus
}

func (r *recordingNotifier) OrderCreated(ctx context.Context, userID, orderID uuid.UUID, total decimal.Decimal) {
	r.created = append(r.created, orderID)
}

func (r *recordingNotifier) OrderStatusChanged(ctx context.Context, userID, orderID uuid.UUID, status enums.FulfillmentStatus) {
	r.statusChanges = append(r.statusChanges, status)
}

func acceptedGroup(price string) *models.InquiryGroup {
	total := decimal.RequireFromString(price)
	return &models.InquiryGroup{
		ID:               uuid.New(),
		UserID:           uuid.New(),
		Status:           enums.InquiryStatusAccepted,
		TotalQuotedPrice: &total,
	}
}

func newTestService(t *testing.T, repo *stubOrdersRepo, inquiries *stubInquiries, notifier Notifier) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Tx:        &passthroughTx{},
		Repo:      repo,
		Inquiries: inquiries,
		Notifier:  notifier,
	})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func TestConvertCreatesOrderWithMilestones(t *testing.T) {
	group := acceptedGroup("10000.00")
	repo := newStubOrdersRepo()
	notifier := &recordingNotifier{}
	svc := newTestService(t, repo, &stubInquiries{groups: map[uuid.UUID]*models.InquiryGroup{group.ID: group}}, notifier)

	order, err := svc.Convert(context.Background(), ConvertInput{InquiryID: group.ID, SplitType: enums.SplitPolicyHalf})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !order.TotalAmount.Equal(decimal.RequireFromString("10000.00")) {
		t.Fatalf("total not frozen from quote: %s", order.TotalAmount)
	}
	if order.PaymentStatus != enums.PaymentStatusWaiting {
		t.Fatalf("expected WAITING_PAYMENT, got %s", order.PaymentStatus)
	}
	if order.FulfillmentStatus != enums.FulfillmentStatusNew {
		t.Fatalf("expected NEW, got %s", order.FulfillmentStatus)
	}
	if len(order.Milestones) != 2 {
		t.Fatalf("expected 2 milestones, got %d", len(order.Milestones))
	}

	sum := decimal.Zero
	for _, m := range order.Milestones {
		sum = sum.Add(m.Amount)
		if m.IsPaid {
			t.Fatal("new milestone must be unpaid")
		}
	}
	if !sum.Equal(order.TotalAmount) {
		t.Fatalf("milestone sum %s != total %s", sum, order.TotalAmount)
	}

	if len(notifier.created) != 1 || notifier.created[0] != order.ID {
		t.Fatalf("expected one order-created notification, got %+v", notifier.created)
	}
}

func TestConvertCustom30AbsorbsRemainder(t *testing.T) {
	group := acceptedGroup("10000.01")
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo, &stubInquiries{groups: map[uuid.UUID]*models.InquiryGroup{group.ID: group}}, nil)

	order, err := svc.Convert(context.Background(), ConvertInput{InquiryID: group.ID, SplitType: enums.SplitPolicyCustom30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order.Milestones) != 3 {
		t.Fatalf("expected 3 milestones, got %d", len(order.Milestones))
	}
	last := order.Milestones[2]
	if !last.Amount.Equal(decimal.RequireFromString("4000.01")) {
		t.Fatalf("expected last milestone 4000.01, got %s", last.Amount)
	}
}

func TestConvertRejectsUnacceptedInquiry(t *testing.T) {
	group := acceptedGroup("5000")
	group.Status = enums.InquiryStatusQuoted
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo, &stubInquiries{groups: map[uuid.UUID]*models.InquiryGroup{group.ID: group}}, nil)

	_, err := svc.Convert(context.Background(), ConvertInput{InquiryID: group.ID, SplitType: enums.SplitPolicyFull})
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestConvertRejectsDuplicateOrder(t *testing.T) {
	group := acceptedGroup("5000")
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo, &stubInquiries{groups: map[uuid.UUID]*models.InquiryGroup{group.ID: group}}, nil)

	if _, err := svc.Convert(context.Background(), ConvertInput{InquiryID: group.ID, SplitType: enums.SplitPolicyFull}); err != nil {
		t.Fatalf("first conversion failed: %v", err)
	}
	_, err := svc.Convert(context.Background(), ConvertInput{InquiryID: group.ID, SplitType: enums.SplitPolicyFull})
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestConvertMapsCommitTimeDuplicateToConflict(t *testing.T) {
	group := acceptedGroup("5000")
	repo := newStubOrdersRepo()
	// A racing conversion can slip past the pre-check; the unique index on
	// inquiry_id then rejects the insert at commit.
	repo.createErr = errors.New(`ERROR: duplicate key value violates unique constraint "uq_orders_inquiry_id" (SQLSTATE 23505)`)
	svc := newTestService(t, repo, &stubInquiries{groups: map[uuid.UUID]*models.InquiryGroup{group.ID: group}}, nil)

	_, err := svc.Convert(context.Background(), ConvertInput{InquiryID: group.ID, SplitType: enums.SplitPolicyFull})
	if pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for commit-time duplicate, got %v", err)
	}
}

func TestConvertRejectsTotalTooSmallForSplit(t *testing.T) {
	group := acceptedGroup("0.01")
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo, &stubInquiries{groups: map[uuid.UUID]*models.InquiryGroup{group.ID: group}}, nil)

	_, err := svc.Convert(context.Background(), ConvertInput{InquiryID: group.ID, SplitType: enums.SplitPolicyHalf})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unsplittable total, got %v", err)
	}
	if len(repo.orders) != 0 {
		t.Fatal("no order may be created for an unsplittable total")
	}
}

func TestConvertRejectsUnknownInquiry(t *testing.T) {
	svc := newTestService(t, newStubOrdersRepo(), &stubInquiries{groups: map[uuid.UUID]*models.InquiryGroup{}}, nil)
	_, err := svc.Convert(context.Background(), ConvertInput{InquiryID: uuid.New(), SplitType: enums.SplitPolicyFull})
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConvertRejectsInvalidSplit(t *testing.T) {
	svc := newTestService(t, newStubOrdersRepo(), &stubInquiries{groups: map[uuid.UUID]*models.InquiryGroup{}}, nil)
	_, err := svc.Convert(context.Background(), ConvertInput{InquiryID: uuid.New(), SplitType: enums.SplitPolicy("WEEKLY")})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateFulfillmentLeavesPaymentStatusAlone(t *testing.T) {
	repo := newStubOrdersRepo()
	notifier := &recordingNotifier{}
	svc := newTestService(t, repo, &stubInquiries{groups: map[uuid.UUID]*models.InquiryGroup{}}, notifier)

	order := &models.Order{
		ID:                uuid.New(),
		UserID:            uuid.New(),
		TotalAmount:       decimal.NewFromInt(1000),
		AmountPaid:        decimal.NewFromInt(500),
		PaymentStatus:     enums.PaymentStatusPartiallyPaid,
		FulfillmentStatus: enums.FulfillmentStatusNew,
	}
	repo.orders[order.ID] = order

	updated, err := svc.UpdateFulfillment(context.Background(), order.ID, UpdateFulfillmentInput{Status: enums.FulfillmentStatusProcessing})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.FulfillmentStatus != enums.FulfillmentStatusProcessing {
		t.Fatalf("expected PROCESSING, got %s", updated.FulfillmentStatus)
	}
	if updated.PaymentStatus != enums.PaymentStatusPartiallyPaid {
		t.Fatalf("payment status must be untouched, got %s", updated.PaymentStatus)
	}
	if len(notifier.statusChanges) != 1 {
		t.Fatalf("expected one status notification, got %d", len(notifier.statusChanges))
	}
}

func TestUpdateFulfillmentRejectsInvalidStatus(t *testing.T) {
	svc := newTestService(t, newStubOrdersRepo(), &stubInquiries{groups: map[uuid.UUID]*models.InquiryGroup{}}, nil)
	_, err := svc.UpdateFulfillment(context.Background(), uuid.New(), UpdateFulfillmentInput{Status: enums.FulfillmentStatus("SHIPPED")})
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetForUserHidesForeignOrders(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo, &stubInquiries{groups: map[uuid.UUID]*models.InquiryGroup{}}, nil)

	order := &models.Order{ID: uuid.New(), UserID: uuid.New()}
	repo.orders[order.ID] = order

	_, err := svc.GetForUser(context.Background(), uuid.New(), order.ID)
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteRemovesOrder(t *testing.T) {
	repo := newStubOrdersRepo()
	svc := newTestService(t, repo, &stubInquiries{groups: map[uuid.UUID]*models.InquiryGroup{}}, nil)

	order := &models.Order{ID: uuid.New(), UserID: uuid.New()}
	repo.orders[order.ID] = order

	if err := svc.Delete(context.Background(), order.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != order.ID {
		t.Fatalf("expected delete call for %s, got %+v", order.ID, repo.deleted)
	}

	err := svc.Delete(context.Background(), order.ID)
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
