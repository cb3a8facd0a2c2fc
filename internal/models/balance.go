package models

import "github.com/shopspring/decimal"

// Balance records that Debtor owes Creditor Amount within a group.
// Rows are derived from expenses and rebuilt wholesale on every recompute.
type Balance struct {
	Base
	GroupID    string          `gorm:"type:uuid;not null;uniqueIndex:idx_balance_pair" json:"group_id"`
	DebtorID   string          `gorm:"type:uuid;not null;uniqueIndex:idx_balance_pair" json:"debtor_id"`
	CreditorID string          `gorm:"type:uuid;not null;uniqueIndex:idx_balance_pair" json:"creditor_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
}
