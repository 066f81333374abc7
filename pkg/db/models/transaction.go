package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printcraft/printcraft-backend/pkg/enums"
)

// Transaction is one append-only money-movement record. MilestoneID is set for
// the manual per-installment path and nil for online lump-sum settlements.
// GatewayPaymentID carries a unique index so a gateway payment can credit an
// order at most once.
type Transaction struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID          uuid.UUID         `gorm:"column:order_id;type:uuid;not null;index"`
	MilestoneID      *uuid.UUID        `gorm:"column:milestone_id;type:uuid"`
	Amount           decimal.Decimal   `gorm:"column:amount;type:numeric(12,2);not null"`
	PaymentMode      enums.PaymentMode `gorm:"column:payment_mode;type:text;not null"`
	Notes            *string           `gorm:"column:notes"`
	GatewayPaymentID *string           `gorm:"column:gateway_payment_id;uniqueIndex:uq_transactions_gateway_payment_id"`
	GatewaySignature *string           `gorm:"column:gateway_signature"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime"`
}
