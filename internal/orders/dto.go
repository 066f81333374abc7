package orders

import (
	"github.com/google/uuid"

	"github.com/printcraft/printcraft-backend/pkg/enums"
)

// ConvertInput is the admin payload for turning an accepted inquiry into an
// order with a milestone schedule.
type ConvertInput struct {
	InquiryID uuid.UUID         `json:"inquiry_id" validate:"required"`
	SplitType enums.SplitPolicy `json:"split_type" validate:"required"`
}

// UpdateFulfillmentInput moves the fulfillment axis of an order.
type UpdateFulfillmentInput struct {
	Status enums.FulfillmentStatus `json:"status" validate:"required"`
}

// ListOrdersQuery filters admin order listings.
type ListOrdersQuery struct {
	PaymentStatus     *enums.PaymentStatus
	FulfillmentStatus *enums.FulfillmentStatus
	UserID            *uuid.UUID
}
