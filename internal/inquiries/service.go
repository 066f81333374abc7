package inquiries

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printcraft/printcraft-backend/pkg/db/models"
	"github.com/printcraft/printcraft-backend/pkg/enums"
	pkgerrors "github.com/printcraft/printcraft-backend/pkg/errors"
	"github.com/printcraft/printcraft-backend/pkg/pagination"
)

// Notifier receives inquiry lifecycle events after a successful write.
type Notifier interface {
	InquiryQuoted(ctx context.Context, userID, inquiryID uuid.UUID, total decimal.Decimal)
}

// ServiceParams groups dependencies for the inquiry service.
type ServiceParams struct {
	Repo     Repository
	Notifier Notifier
	Now      func() time.Time
}

// Service orchestrates the RFQ lifecycle: create, quote, respond.
type Service struct {
	repo     Repository
	notifier Notifier
	now      func() time.Time
}

// NewService builds an inquiry service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, errors.New("repo is required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{repo: params.Repo, notifier: params.Notifier, now: now}, nil
}

// Create opens a new PENDING inquiry group with its items.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, input CreateInquiryInput) (*models.InquiryGroup, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	group := &models.InquiryGroup{
		UserID: userID,
		Status: enums.InquiryStatusPending,
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		group.Items = append(group.Items, models.InquiryItem{
			Description:     item.Description,
			Quantity:        item.Quantity,
			SelectedOptions: item.SelectedOptions,
			Notes:           item.Notes,
		})
	}

	if err := s.repo.CreateGroup(ctx, group); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating inquiry group")
	}
	return group, nil
}

// ListForUser returns the caller's inquiry groups, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.InquiryGroup, error) {
	return s.repo.ListGroupsByUser(ctx, userID, params)
}

// GetForUser returns one group, enforcing ownership.
func (s *Service) GetForUser(ctx context.Context, userID, inquiryID uuid.UUID) (*models.InquiryGroup, error) {
	group, err := s.repo.FindGroupByID(ctx, inquiryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading inquiry group")
	}
	if group == nil || group.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inquiry not found")
	}
	return group, nil
}

// ListAdmin returns inquiry groups across users with an optional status filter.
func (s *Service) ListAdmin(ctx context.Context, query ListQuery, params pagination.Params) ([]models.InquiryGroup, error) {
	return s.repo.ListGroups(ctx, query, params)
}

// Quote records the admin's price on a pending or previously quoted group and
// moves it to QUOTED. Terminal groups cannot be re-quoted.
func (s *Service) Quote(ctx context.Context, inquiryID uuid.UUID, input QuoteInput) (*models.InquiryGroup, error) {
	if input.TotalQuotedPrice.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quoted price must be positive")
	}

	group, err := s.repo.FindGroupByID(ctx, inquiryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading inquiry group")
	}
	if group == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inquiry not found")
	}
	if group.Status != enums.InquiryStatusPending && group.Status != enums.InquiryStatusQuoted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "inquiry cannot be quoted in its current state")
	}

	now := s.now()
	price := input.TotalQuotedPrice
	group.Status = enums.InquiryStatusQuoted
	group.TotalQuotedPrice = &price
	group.AdminNotes = input.AdminNotes
	group.QuotedAt = &now
	group.QuoteValidUntil = input.QuoteValidUntil

	if err := s.repo.UpdateGroup(ctx, group); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving quotation")
	}

	if s.notifier != nil {
		s.notifier.InquiryQuoted(ctx, group.UserID, group.ID, price)
	}
	return group, nil
}

// Respond applies the customer's accept/reject decision to a QUOTED group.
// A lapsed quote validity window flips the group to EXPIRED instead.
func (s *Service) Respond(ctx context.Context, userID, inquiryID uuid.UUID, input RespondInput) (*models.InquiryGroup, error) {
	group, err := s.repo.FindGroupByID(ctx, inquiryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading inquiry group")
	}
	if group == nil || group.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inquiry not found")
	}
	if group.Status != enums.InquiryStatusQuoted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "inquiry is not awaiting a response")
	}

	if group.QuoteValidUntil != nil && s.now().After(*group.QuoteValidUntil) {
		group.Status = enums.InquiryStatusExpired
		if err := s.repo.UpdateGroup(ctx, group); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "expiring quotation")
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "quotation has expired")
	}

	if input.Accept {
		group.Status = enums.InquiryStatusAccepted
	} else {
		group.Status = enums.InquiryStatusRejected
	}

	if err := s.repo.UpdateGroup(ctx, group); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving response")
	}
	return group, nil
}
