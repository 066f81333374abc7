package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printcraft/printcraft-backend/pkg/enums"
)

// OrderMilestone is one scheduled installment of an order's total. Milestones
// are created in bulk with the order and never added or removed afterwards.
// OrderIndex defines presentation order only; installments may be settled out
// of sequence.
type OrderMilestone struct {
	ID                 uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID            uuid.UUID                `gorm:"column:order_id;type:uuid;not null;index"`
	Label              string                   `gorm:"column:label;not null"`
	Amount             decimal.Decimal          `gorm:"column:amount;type:numeric(12,2);not null"`
	Percentage         decimal.Decimal          `gorm:"column:percentage;type:numeric(5,2);not null"`
	OrderIndex         int                      `gorm:"column:order_index;not null"`
	IsPaid             bool                     `gorm:"column:is_paid;not null;default:false"`
	PaidAt             *time.Time               `gorm:"column:paid_at"`
	VerificationStatus enums.VerificationStatus `gorm:"column:verification_status;type:text;not null;default:'PENDING'"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
