package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InquiryItem is a single requested product/service line inside an inquiry
// group. SelectedOptions carries the user's configuration (binding, paper
// stock, finish) as free-form JSON.
type InquiryItem struct {
	ID              uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID         uuid.UUID        `gorm:"column:group_id;type:uuid;not null"`
	Description     string           `gorm:"column:description;not null"`
	Quantity        int              `gorm:"column:quantity;not null"`
	SelectedOptions json.RawMessage  `gorm:"column:selected_options;type:jsonb"`
	Notes           *string          `gorm:"column:notes"`
	LineItemPrice   *decimal.Decimal `gorm:"column:line_item_price;type:numeric(12,2)"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
}
