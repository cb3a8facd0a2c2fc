package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"splitease/internal/models"
	"splitease/internal/money"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Name:     fmt.Sprintf("Test User %d", nextID()),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestGroup creates a USD group owned by owner. The owner joins as an
// admin and every user in members joins as a regular member.
func CreateTestGroup(t *testing.T, db *gorm.DB, owner *models.User, members ...*models.User) *models.Group {
	t.Helper()

	group := &models.Group{
		Name:     fmt.Sprintf("Test Group %d", nextID()),
		Currency: "USD",
		OwnerID:  owner.ID,
	}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("failed to create test group: %v", err)
	}

	AddTestMember(t, db, group, owner, true)
	for _, m := range members {
		AddTestMember(t, db, group, m, false)
	}
	return group
}

// AddTestMember adds user to group.
func AddTestMember(t *testing.T, db *gorm.DB, group *models.Group, user *models.User, isAdmin bool) *models.GroupMember {
	t.Helper()

	member := &models.GroupMember{
		GroupID:  group.ID,
		UserID:   user.ID,
		IsAdmin:  isAdmin,
		JoinedAt: time.Now().UTC(),
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to add test member: %v", err)
	}
	return member
}

// CreateTestCategory creates a category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()

	category := &models.Category{
		Name:  fmt.Sprintf("Test Category %d", nextID()),
		Color: "#336699",
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestExpense inserts an equal-split expense directly, bypassing the
// service layer. Leftover cents go to participants in the order given.
func CreateTestExpense(t *testing.T, db *gorm.DB, groupID, payerID, amount string, participantIDs ...string) *models.Expense {
	t.Helper()

	total := decimal.RequireFromString(amount)
	shares := money.SplitEqual(total, len(participantIDs))

	expense := &models.Expense{
		GroupID:     groupID,
		PayerID:     payerID,
		Amount:      total,
		Description: fmt.Sprintf("Test Expense %d", nextID()),
		Date:        time.Now().UTC(),
		SplitType:   models.SplitTypeEqual,
	}
	for i, id := range participantIDs {
		expense.Participants = append(expense.Participants, models.ExpenseParticipant{
			UserID:      id,
			ShareAmount: shares[i],
		})
	}
	if err := db.Create(expense).Error; err != nil {
		t.Fatalf("failed to create test expense: %v", err)
	}
	return expense
}
