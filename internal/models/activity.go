package models

// ActivityType identifies what happened in a group.
type ActivityType string

const (
	ActivityExpenseAdded        ActivityType = "expense_added"
	ActivityExpenseUpdated      ActivityType = "expense_updated"
	ActivityExpenseDeleted      ActivityType = "expense_deleted"
	ActivitySettlementCreated   ActivityType = "settlement_created"
	ActivitySettlementCompleted ActivityType = "settlement_completed"
	ActivityMemberJoined        ActivityType = "member_joined"
	ActivityMemberLeft          ActivityType = "member_left"
)

// Activity is an entry in a group's feed.
type Activity struct {
	Base
	GroupID          string       `gorm:"type:uuid;not null;index" json:"group_id"`
	UserID           string       `gorm:"type:uuid;not null;index" json:"user_id"`
	Type             ActivityType `gorm:"size:50;not null" json:"type"`
	Description      string       `gorm:"not null" json:"description"`
	RelatedExpenseID *string      `gorm:"type:uuid" json:"related_expense_id,omitempty"`
	Details          string       `json:"details,omitempty"`
}
