package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printcraft/printcraft-backend/pkg/enums"
)

// Order is created once from an accepted inquiry (1:1). TotalAmount is frozen
// at conversion time; AmountPaid only ever grows and PaymentStatus is derived
// from it. FulfillmentStatus is an independent, admin-driven axis.
type Order struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InquiryID         uuid.UUID               `gorm:"column:inquiry_id;type:uuid;not null;uniqueIndex:uq_orders_inquiry_id"`
	UserID            uuid.UUID               `gorm:"column:user_id;type:uuid;not null"`
	TotalAmount       decimal.Decimal         `gorm:"column:total_amount;type:numeric(12,2);not null"`
	AmountPaid        decimal.Decimal         `gorm:"column:amount_paid;type:numeric(12,2);not null;default:0"`
	PaymentStatus     enums.PaymentStatus     `gorm:"column:payment_status;type:text;not null;default:'WAITING_PAYMENT'"`
	FulfillmentStatus enums.FulfillmentStatus `gorm:"column:fulfillment_status;type:text;not null;default:'NEW'"`
	GatewayOrderID    *string                 `gorm:"column:gateway_order_id"`
	Milestones        []OrderMilestone        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Transactions      []Transaction           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
