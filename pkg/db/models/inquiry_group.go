package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/printcraft/printcraft-backend/pkg/enums"
)

// InquiryGroup is the RFQ cart: the user's bundle of requests awaiting an
// admin quotation. The quoted total lives here until conversion freezes it
// onto an order.
type InquiryGroup struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID           uuid.UUID           `gorm:"column:user_id;type:uuid;not null"`
	Status           enums.InquiryStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	TotalQuotedPrice *decimal.Decimal    `gorm:"column:total_quoted_price;type:numeric(12,2)"`
	AdminNotes       *string             `gorm:"column:admin_notes"`
	QuotedAt         *time.Time          `gorm:"column:quoted_at"`
	QuoteValidUntil  *time.Time          `gorm:"column:quote_valid_until"`
	Items            []InquiryItem       `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
