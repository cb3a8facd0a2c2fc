package services

import (
	"testing"

	"splitease/internal/models"
	"splitease/internal/testutil"
)

func TestRecomputeBalances(t *testing.T) {
	t.Run("two_users", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestServices(db)
		u1 := testutil.CreateTestUser(t, db)
		u2 := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, u1, u2)
		testutil.CreateTestExpense(t, db, group.ID, u1.ID, "100.00", u1.ID, u2.ID)

		balances, err := svc.balances.RecomputeBalances(group.ID)
		testutil.AssertNoError(t, err)

		if len(balances) != 1 {
			t.Fatalf("expected 1 balance row, got %d", len(balances))
		}
		if balances[0].DebtorID != u2.ID || balances[0].CreditorID != u1.ID {
			t.Errorf("expected u2 to owe u1, got %+v", balances[0])
		}
		testutil.AssertAmount(t, balances[0].Amount, "50.00")
	})

	t.Run("one_payer_three_ways", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestServices(db)
		u1 := testutil.CreateTestUser(t, db)
		u2 := testutil.CreateTestUser(t, db)
		u3 := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, u1, u2, u3)
		testutil.CreateTestExpense(t, db, group.ID, u1.ID, "90.00", u1.ID, u2.ID, u3.ID)

		_, err := svc.balances.RecomputeBalances(group.ID)
		testutil.AssertNoError(t, err)

		for user, want := range map[string]string{u1.ID: "60.00", u2.ID: "-30.00", u3.ID: "-30.00"} {
			net, err := svc.balances.GetNetBalance(group.ID, user)
			testutil.AssertNoError(t, err)
			testutil.AssertAmount(t, net.Net, want)
		}
	})

	t.Run("zero_expenses_clears_rows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestServices(db)
		u1 := testutil.CreateTestUser(t, db)
		u2 := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, u1, u2)

		stale := &models.Balance{GroupID: group.ID, DebtorID: u2.ID, CreditorID: u1.ID, Amount: dec("12.34")}
		testutil.AssertNoError(t, db.Create(stale).Error)

		balances, err := svc.balances.RecomputeBalances(group.ID)
		testutil.AssertNoError(t, err)

		if len(balances) != 0 {
			t.Errorf("expected no balances, got %d", len(balances))
		}
		if n := countRows(t, db, &models.Balance{}, "group_id = ?", group.ID); n != 0 {
			t.Errorf("expected stale rows to be deleted, found %d", n)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestServices(db)
		u1 := testutil.CreateTestUser(t, db)
		u2 := testutil.CreateTestUser(t, db)
		u3 := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, u1, u2, u3)
		testutil.CreateTestExpense(t, db, group.ID, u1.ID, "100.00", u1.ID, u2.ID, u3.ID)
		testutil.CreateTestExpense(t, db, group.ID, u2.ID, "45.50", u1.ID, u2.ID)

		first, err := svc.balances.RecomputeBalances(group.ID)
		testutil.AssertNoError(t, err)
		second, err := svc.balances.RecomputeBalances(group.ID)
		testutil.AssertNoError(t, err)

		if len(first) != len(second) {
			t.Fatalf("expected the same row count, got %d then %d", len(first), len(second))
		}
		for i := range first {
			if first[i].DebtorID != second[i].DebtorID || first[i].CreditorID != second[i].CreditorID || !first[i].Amount.Equal(second[i].Amount) {
				t.Errorf("row %d differs: %+v vs %+v", i, first[i], second[i])
			}
		}
		if n := countRows(t, db, &models.Balance{}, "group_id = ?", group.ID); n != int64(len(second)) {
			t.Errorf("expected %d stored rows, found %d", len(second), n)
		}
	})

	t.Run("other_groups_untouched", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestServices(db)
		u1 := testutil.CreateTestUser(t, db)
		u2 := testutil.CreateTestUser(t, db)
		first := testutil.CreateTestGroup(t, db, u1, u2)
		second := testutil.CreateTestGroup(t, db, u1, u2)
		testutil.CreateTestExpense(t, db, second.ID, u1.ID, "10.00", u1.ID, u2.ID)

		_, err := svc.balances.RecomputeBalances(second.ID)
		testutil.AssertNoError(t, err)
		_, err = svc.balances.RecomputeBalances(first.ID)
		testutil.AssertNoError(t, err)

		if n := countRows(t, db, &models.Balance{}, "group_id = ?", second.ID); n != 1 {
			t.Errorf("expected second group to keep its row, found %d", n)
		}
	})

	t.Run("group_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestServices(db)

		_, err := svc.balances.RecomputeBalances("00000000-0000-0000-0000-000000000000")
		testutil.AssertAppError(t, err, "GROUP_NOT_FOUND")
	})

	t.Run("member_only_variant", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := newTestServices(db)
		u1 := testutil.CreateTestUser(t, db)
		stranger := testutil.CreateTestUser(t, db)
		group := testutil.CreateTestGroup(t, db, u1)

		_, err := svc.balances.RecomputeGroupBalances(group.ID, stranger.ID)
		testutil.AssertAppError(t, err, "NOT_GROUP_MEMBER")
	})
}

func TestGetNetBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestServices(db)
	u1 := testutil.CreateTestUser(t, db)
	u2 := testutil.CreateTestUser(t, db)
	u3 := testutil.CreateTestUser(t, db)
	group := testutil.CreateTestGroup(t, db, u1, u2, u3)

	_, err := svc.expenses.CreateExpense(u1.ID, equalExpense(group.ID, "90.00"))
	testutil.AssertNoError(t, err)
	_, err = svc.expenses.CreateExpense(u2.ID, equalExpense(group.ID, "30.00", u2.ID, u3.ID))
	testutil.AssertNoError(t, err)

	// u1 +60, u2 -30+15 = -15, u3 -30-15 = -45
	net, err := svc.balances.GetNetBalance(group.ID, u3.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertAmount(t, net.TotalOwedToUser, "0")
	testutil.AssertAmount(t, net.TotalUserOwes, "45.00")
	testutil.AssertAmount(t, net.Net, "-45.00")

	net, err = svc.balances.GetNetBalance(group.ID, u1.ID)
	testutil.AssertNoError(t, err)
	testutil.AssertAmount(t, net.Net, "60.00")
}

func TestGetGroupBalances(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestServices(db)
	u1 := testutil.CreateTestUser(t, db)
	u2 := testutil.CreateTestUser(t, db)
	u3 := testutil.CreateTestUser(t, db)
	group := testutil.CreateTestGroup(t, db, u1, u2, u3)

	_, err := svc.expenses.CreateExpense(u1.ID, equalExpense(group.ID, "100.00"))
	testutil.AssertNoError(t, err)

	result, err := svc.balances.GetGroupBalances(group.ID, u2.ID)
	testutil.AssertNoError(t, err)

	if len(result.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(result.Members))
	}
	total := dec("0")
	for _, m := range result.Members {
		total = total.Add(m.Net)
		if m.Name == "" {
			t.Errorf("expected member name for %s", m.UserID)
		}
	}
	testutil.AssertAmount(t, total, "0")

	owedToU1 := dec("0")
	for _, b := range result.Balances {
		if b.CreditorID == u1.ID {
			owedToU1 = owedToU1.Add(b.Amount)
		}
	}
	testutil.AssertAmount(t, owedToU1, "66.66")
}

func TestGetUserBalanceSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := newTestServices(db)
	alice := testutil.CreateTestUser(t, db)
	bob := testutil.CreateTestUser(t, db)
	carol := testutil.CreateTestUser(t, db)

	trip := testutil.CreateTestGroup(t, db, alice, bob)
	flat := testutil.CreateTestGroup(t, db, carol, alice)
	testutil.CreateTestGroup(t, db, alice, carol)

	_, err := svc.expenses.CreateExpense(alice.ID, equalExpense(trip.ID, "40.00"))
	testutil.AssertNoError(t, err)
	_, err = svc.expenses.CreateExpense(carol.ID, equalExpense(flat.ID, "30.00"))
	testutil.AssertNoError(t, err)

	summary, err := svc.balances.GetUserBalanceSummary(alice.ID)
	testutil.AssertNoError(t, err)

	if len(summary.Groups) != 2 {
		t.Fatalf("expected 2 groups with balances, got %d", len(summary.Groups))
	}
	testutil.AssertAmount(t, summary.TotalOwedToUser, "20.00")
	testutil.AssertAmount(t, summary.TotalUserOwes, "15.00")
	testutil.AssertAmount(t, summary.Net, "5.00")
}
