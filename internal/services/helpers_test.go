package services

import (
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"splitease/internal/logger"
	"splitease/internal/models"
)

func init() {
	logger.Init("test")
}

type testServices struct {
	groups      GroupServicer
	expenses    ExpenseServicer
	balances    BalanceServicer
	settlements SettlementServicer
	activities  ActivityServicer
}

func newTestServices(db *gorm.DB) testServices {
	activities := NewActivityService(db)
	return testServices{
		groups:      NewGroupService(db, activities),
		expenses:    NewExpenseService(db, activities),
		balances:    NewBalanceService(db),
		settlements: NewSettlementService(db, activities),
		activities:  activities,
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// equalExpense builds an equal-split input over the given participants, or
// over all members when none are given.
func equalExpense(groupID, amount string, participantIDs ...string) ExpenseInput {
	input := ExpenseInput{
		GroupID:     groupID,
		Amount:      dec(amount),
		Description: "Dinner",
		SplitType:   models.SplitTypeEqual,
	}
	for _, id := range participantIDs {
		input.Participants = append(input.Participants, ParticipantInput{UserID: id})
	}
	return input
}

// exactExpense builds an exact-split input from alternating user ID / amount pairs.
func exactExpense(groupID, amount string, pairs ...string) ExpenseInput {
	input := ExpenseInput{
		GroupID:     groupID,
		Amount:      dec(amount),
		Description: "Exact split",
		SplitType:   models.SplitTypeExact,
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		input.Participants = append(input.Participants, ParticipantInput{UserID: pairs[i], Amount: decPtr(pairs[i+1])})
	}
	return input
}

func sortedIDs(ids ...string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}

func shareOf(t *testing.T, expense *models.Expense, userID string) decimal.Decimal {
	t.Helper()
	for _, p := range expense.Participants {
		if p.UserID == userID {
			return p.ShareAmount
		}
	}
	t.Fatalf("user %s is not a participant", userID)
	return decimal.Zero
}

func countRows(t *testing.T, db *gorm.DB, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Where(query, args...).Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}
