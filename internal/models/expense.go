package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// SplitType determines how an expense amount is divided among participants.
type SplitType string

const (
	SplitTypeEqual      SplitType = "equal"
	SplitTypeExact      SplitType = "exact"
	SplitTypePercentage SplitType = "percentage"
)

// Expense is an amount paid by one member on behalf of some members of a group.
type Expense struct {
	Base
	GroupID      string               `gorm:"type:uuid;not null;index" json:"group_id"`
	PayerID      string               `gorm:"type:uuid;not null;index" json:"payer_id"`
	Amount       decimal.Decimal      `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description  string               `gorm:"not null;size:255" json:"description"`
	Date         time.Time            `gorm:"not null;index" json:"date"`
	CategoryID   *string              `gorm:"type:uuid" json:"category_id,omitempty"`
	SplitType    SplitType            `gorm:"size:10;not null;default:equal" json:"split_type"`
	Participants []ExpenseParticipant `gorm:"foreignKey:ExpenseID;constraint:OnDelete:CASCADE" json:"participants,omitempty"`
	Category     *Category            `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// ExpenseParticipant is one user's share of an expense.
type ExpenseParticipant struct {
	Base
	ExpenseID       string           `gorm:"type:uuid;not null;uniqueIndex:idx_expense_participant" json:"expense_id"`
	UserID          string           `gorm:"type:uuid;not null;uniqueIndex:idx_expense_participant" json:"user_id"`
	ShareAmount     decimal.Decimal  `gorm:"type:decimal(12,2);not null" json:"share_amount"`
	SharePercentage *decimal.Decimal `gorm:"type:decimal(5,2)" json:"share_percentage,omitempty"`
}
