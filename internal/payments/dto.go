package payments

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printcraft/printcraft-backend/pkg/enums"
)

// RecordManualPaymentInput is the admin payload for settling one milestone
// with an offline payment.
type RecordManualPaymentInput struct {
	MilestoneID uuid.UUID         `json:"milestone_id" validate:"required"`
	Amount      decimal.Decimal   `json:"amount" validate:"required"`
	PaymentMode enums.PaymentMode `json:"payment_mode" validate:"required"`
	Notes       *string           `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// CreateGatewayOrderInput requests a hosted-checkout order for the remaining
// balance of an order.
type CreateGatewayOrderInput struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
}

// GatewayOrderResult is returned to the client to drive the hosted checkout.
type GatewayOrderResult struct {
	GatewayOrderID string `json:"gateway_order_id"`
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	KeyID          string `json:"key_id"`
}

// VerifyInput carries the checkout callback fields for settlement.
type VerifyInput struct {
	OrderID          uuid.UUID `json:"order_id" validate:"required"`
	GatewayOrderID   string    `json:"gateway_order_id" validate:"required"`
	GatewayPaymentID string    `json:"gateway_payment_id" validate:"required"`
	GatewaySignature string    `json:"gateway_signature" validate:"required"`
}
