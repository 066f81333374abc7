package inquiries

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/printcraft/printcraft-backend/pkg/enums"
)

// CreateItemInput is one requested line inside a new inquiry group.
type CreateItemInput struct {
	Description     string          `json:"description" validate:"required,max=500"`
	Quantity        int             `json:"quantity" validate:"required,gt=0"`
	SelectedOptions json.RawMessage `json:"selected_options,omitempty"`
	Notes           *string         `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// CreateInquiryInput is the payload for opening a new RFQ group.
type CreateInquiryInput struct {
	Items []CreateItemInput `json:"items" validate:"required,min=1,max=50,dive"`
}

// QuoteInput is the admin's quotation for a pending group.
type QuoteInput struct {
	TotalQuotedPrice decimal.Decimal `json:"total_quoted_price" validate:"required"`
	AdminNotes       *string         `json:"admin_notes,omitempty" validate:"omitempty,max=2000"`
	QuoteValidUntil  *time.Time      `json:"quote_valid_until,omitempty"`
}

// RespondInput carries the customer's decision on a quoted group.
type RespondInput struct {
	Accept bool `json:"accept"`
}

// ListQuery filters admin inquiry listings.
type ListQuery struct {
	Status *enums.InquiryStatus
}
