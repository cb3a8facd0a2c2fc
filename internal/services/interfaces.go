package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"splitease/internal/ledger"
	"splitease/internal/models"
	"splitease/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, name string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
}

// GroupServicer defines the contract for group and membership management.
type GroupServicer interface {
	CreateGroup(ownerID, name, description, currency string) (*models.Group, error)
	ListUserGroups(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Group], error)
	GetGroup(groupID, userID string) (*models.Group, error)
	UpdateGroup(groupID, userID string, name, description *string) (*models.Group, error)
	DeleteGroup(groupID, userID string) error
	AddMember(groupID, actorID, email string, isAdmin bool) (*models.GroupMember, error)
	RemoveMember(groupID, actorID, memberUserID string) error
	ListMembers(groupID, userID string) ([]models.GroupMember, error)
	IsMember(groupID, userID string) (bool, error)
}

// ParticipantInput names one participant of an expense. Amount is read for
// exact splits and Percentage for percentage splits.
type ParticipantInput struct {
	UserID     string
	Amount     *decimal.Decimal
	Percentage *decimal.Decimal
}

// ExpenseInput carries the fields of a new or edited expense. An empty
// Participants list means every member of the group.
type ExpenseInput struct {
	GroupID      string
	Amount       decimal.Decimal
	Description  string
	Date         time.Time
	CategoryID   *string
	SplitType    models.SplitType
	Participants []ParticipantInput
}

// ExpenseFilter holds optional filter parameters for listing expenses.
type ExpenseFilter struct {
	DateFrom *time.Time
	// DateTo is an inclusive upper bound; DateBefore an exclusive one.
	DateTo     *time.Time
	DateBefore *time.Time
	CategoryID *string
	PayerID    *string
	MinAmount  *decimal.Decimal
	MaxAmount  *decimal.Decimal
	Search     string
}

// ExpenseServicer defines the contract for expense-related business logic.
type ExpenseServicer interface {
	CreateExpense(userID string, input ExpenseInput) (*models.Expense, error)
	GetExpense(expenseID, userID string) (*models.Expense, error)
	ListGroupExpenses(groupID, userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	UpdateExpense(expenseID, userID string, input ExpenseInput) (*models.Expense, error)
	DeleteExpense(expenseID, userID string) error
}

// CategoryServicer defines the contract for expense categories.
type CategoryServicer interface {
	CreateCategory(name, description, color string) (*models.Category, error)
	ListCategories(page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategory(categoryID string) (*models.Category, error)
}

// NetBalance is one user's position in a group, derived from Balance rows.
type NetBalance struct {
	TotalOwedToUser decimal.Decimal `json:"total_owed_to_user"`
	TotalUserOwes   decimal.Decimal `json:"total_user_owes"`
	Net             decimal.Decimal `json:"net"`
}

// MemberNet is a member's net position within a group.
type MemberNet struct {
	UserID string          `json:"user_id"`
	Name   string          `json:"name"`
	Net    decimal.Decimal `json:"net"`
}

// GroupBalances is the persisted pairwise view of a group.
type GroupBalances struct {
	GroupID  string           `json:"group_id"`
	Currency string           `json:"currency"`
	Balances []models.Balance `json:"balances"`
	Members  []MemberNet      `json:"members"`
}

// GroupNet is a user's position in one group of a cross-group summary.
type GroupNet struct {
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name"`
	Currency  string `json:"currency"`
	NetBalance
}

// UserBalanceSummary aggregates a user's position across all their groups.
type UserBalanceSummary struct {
	Groups          []GroupNet      `json:"groups"`
	TotalOwedToUser decimal.Decimal `json:"total_owed_to_user"`
	TotalUserOwes   decimal.Decimal `json:"total_user_owes"`
	Net             decimal.Decimal `json:"net"`
}

// BalanceServicer defines the contract for the balance aggregator.
type BalanceServicer interface {
	RecomputeBalances(groupID string) ([]models.Balance, error)
	RecomputeGroupBalances(groupID, userID string) ([]models.Balance, error)
	GetNetBalance(groupID, userID string) (*NetBalance, error)
	GetGroupBalances(groupID, userID string) (*GroupBalances, error)
	GetUserBalanceSummary(userID string) (*UserBalanceSummary, error)
}

// SettlementServicer defines the contract for settlement planning and the
// settlement ledger.
type SettlementServicer interface {
	PlanSettlements(groupID string) ([]ledger.Transfer, error)
	PreviewSettlements(groupID, userID string) ([]ledger.Transfer, error)
	ConfirmSettlements(groupID, userID string) ([]models.Settlement, error)
	CreateSettlement(groupID, userID, payerID, payeeID string, amount decimal.Decimal) (*models.Settlement, error)
	MarkSettlementComplete(settlementID, userID string) (*models.Settlement, error)
	ListSettlements(groupID, userID string, completed bool, page pagination.PageRequest) (*pagination.PageResponse[models.Settlement], error)
	GetSettlement(settlementID, userID string) (*models.Settlement, error)
}

// ActivityEntry describes one feed item. Details is stored as JSON.
type ActivityEntry struct {
	GroupID          string
	UserID           string
	Type             models.ActivityType
	Description      string
	RelatedExpenseID *string
	Details          map[string]any
}

// ActivityServicer defines the contract for the group activity feed.
type ActivityServicer interface {
	Record(tx *gorm.DB, entry ActivityEntry) error
	ListGroupActivities(groupID, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Activity], error)
	ListUserActivities(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Activity], error)
}
