package services

import (
	"encoding/json"
	"testing"

	"splitease/internal/models"
	"splitease/internal/pagination"
	"splitease/internal/testutil"
)

func TestRecordActivity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestServices(db)
	alice := testutil.CreateTestUser(t, db)
	group := testutil.CreateTestGroup(t, db, alice)

	err := svc.activities.Record(nil, ActivityEntry{
		GroupID:     group.ID,
		UserID:      alice.ID,
		Type:        models.ActivityMemberJoined,
		Description: "Alice joined",
		Details:     map[string]any{"is_admin": true},
	})
	testutil.AssertNoError(t, err)

	var activity models.Activity
	testutil.AssertNoError(t, db.Where("group_id = ?", group.ID).First(&activity).Error)

	var details map[string]any
	if err := json.Unmarshal([]byte(activity.Details), &details); err != nil {
		t.Fatalf("details should be JSON: %v", err)
	}
	if details["is_admin"] != true {
		t.Errorf("expected is_admin detail, got %v", details)
	}
}

func TestListActivities(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestServices(db)
	alice := testutil.CreateTestUser(t, db)
	bob := testutil.CreateTestUser(t, db)
	stranger := testutil.CreateTestUser(t, db)
	trip := testutil.CreateTestGroup(t, db, alice, bob)
	flat := testutil.CreateTestGroup(t, db, alice)

	_, err := svc.expenses.CreateExpense(alice.ID, equalExpense(trip.ID, "10.00"))
	testutil.AssertNoError(t, err)
	_, err = svc.expenses.CreateExpense(alice.ID, equalExpense(flat.ID, "20.00"))
	testutil.AssertNoError(t, err)

	t.Run("group_feed", func(t *testing.T) {
		result, err := svc.activities.ListGroupActivities(trip.ID, bob.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 activity, got %d", result.TotalItems)
		}
	})

	t.Run("group_feed_non_member", func(t *testing.T) {
		_, err := svc.activities.ListGroupActivities(trip.ID, stranger.ID, pagination.PageRequest{})
		testutil.AssertAppError(t, err, "NOT_GROUP_MEMBER")
	})

	t.Run("user_feed_spans_groups", func(t *testing.T) {
		result, err := svc.activities.ListUserActivities(alice.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 2 {
			t.Errorf("expected 2 activities, got %d", result.TotalItems)
		}

		result, err = svc.activities.ListUserActivities(bob.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 1 {
			t.Errorf("expected 1 activity for bob, got %d", result.TotalItems)
		}
	})
}
