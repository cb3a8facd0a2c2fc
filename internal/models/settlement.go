package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settlement is a proposed or completed payment from Payer to Payee.
type Settlement struct {
	Base
	GroupID     string          `gorm:"type:uuid;not null;index" json:"group_id"`
	PayerID     string          `gorm:"type:uuid;not null" json:"payer_id"`
	PayeeID     string          `gorm:"type:uuid;not null" json:"payee_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	IsCompleted bool            `gorm:"not null;default:false;index" json:"is_completed"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}
