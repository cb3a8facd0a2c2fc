package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "splitease/internal/errors"
	"splitease/internal/models"
	"splitease/internal/pagination"
	"splitease/internal/services"
)

// --- mock expense service ---

type mockExpenseService struct {
	createExpenseFn     func(userID string, input services.ExpenseInput) (*models.Expense, error)
	getExpenseFn        func(expenseID, userID string) (*models.Expense, error)
	listGroupExpensesFn func(groupID, userID string, page pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error)
	updateExpenseFn     func(expenseID, userID string, input services.ExpenseInput) (*models.Expense, error)
	deleteExpenseFn     func(expenseID, userID string) error
}

var _ services.ExpenseServicer = (*mockExpenseService)(nil)

func (m *mockExpenseService) CreateExpense(userID string, input services.ExpenseInput) (*models.Expense, error) {
	if m.createExpenseFn != nil {
		return m.createExpenseFn(userID, input)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) GetExpense(expenseID, userID string) (*models.Expense, error) {
	if m.getExpenseFn != nil {
		return m.getExpenseFn(expenseID, userID)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) ListGroupExpenses(groupID, userID string, page pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	if m.listGroupExpensesFn != nil {
		return m.listGroupExpensesFn(groupID, userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Expense{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockExpenseService) UpdateExpense(expenseID, userID string, input services.ExpenseInput) (*models.Expense, error) {
	if m.updateExpenseFn != nil {
		return m.updateExpenseFn(expenseID, userID, input)
	}
	return &models.Expense{}, nil
}

func (m *mockExpenseService) DeleteExpense(expenseID, userID string) error {
	if m.deleteExpenseFn != nil {
		return m.deleteExpenseFn(expenseID, userID)
	}
	return nil
}

func setupExpenseRouter(handler *ExpenseHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/groups/:id/expenses", handler.CreateExpense)
	auth.GET("/groups/:id/expenses", handler.ListGroupExpenses)
	auth.GET("/expenses/:id", handler.GetExpense)
	auth.PUT("/expenses/:id", handler.UpdateExpense)
	auth.DELETE("/expenses/:id", handler.DeleteExpense)
	return r
}

func TestExpenseHandler_CreateExpense(t *testing.T) {
	t.Run("returns 201 and maps the request", func(t *testing.T) {
		var got services.ExpenseInput
		svc := &mockExpenseService{
			createExpenseFn: func(userID string, input services.ExpenseInput) (*models.Expense, error) {
				got = input
				return &models.Expense{
					Base:        models.Base{ID: testItemID},
					GroupID:     input.GroupID,
					PayerID:     userID,
					Amount:      input.Amount,
					Description: input.Description,
				}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		body := `{"amount":"90.00","description":"Dinner","date":"2024-03-01","split_type":"exact",
			"participants":[{"user_id":"` + testUserID + `","amount":"30"},{"user_id":"` + otherUserID + `","amount":"60"}]}`
		rec := doRequest(r, "POST", "/groups/"+testGroupID+"/expenses", body)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.GroupID != testGroupID {
			t.Errorf("expected group %s, got %s", testGroupID, got.GroupID)
		}
		if !got.Amount.Equal(decimal.RequireFromString("90")) {
			t.Errorf("expected amount 90, got %s", got.Amount)
		}
		if got.SplitType != models.SplitTypeExact {
			t.Errorf("expected exact split, got %s", got.SplitType)
		}
		if !got.Date.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected date %v", got.Date)
		}
		if len(got.Participants) != 2 || got.Participants[1].Amount == nil ||
			!got.Participants[1].Amount.Equal(decimal.NewFromInt(60)) {
			t.Errorf("participants not mapped: %+v", got.Participants)
		}
		expense := parseJSON(t, rec)["expense"].(map[string]interface{})
		if expense["amount"] != "90" {
			t.Errorf("expected amount \"90\", got %v", expense["amount"])
		}
	})

	t.Run("returns 400 on missing description", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, "POST", "/groups/"+testGroupID+"/expenses", `{"amount":"10"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on unknown split type", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, "POST", "/groups/"+testGroupID+"/expenses",
			`{"amount":"10","description":"x","split_type":"shares"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on malformed participant id", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, "POST", "/groups/"+testGroupID+"/expenses",
			`{"amount":"10","description":"x","participants":[{"user_id":"bob"}]}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on bad date", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, "POST", "/groups/"+testGroupID+"/expenses",
			`{"amount":"10","description":"x","date":"yesterday"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("surfaces split mismatch", func(t *testing.T) {
		svc := &mockExpenseService{
			createExpenseFn: func(_ string, _ services.ExpenseInput) (*models.Expense, error) {
				return nil, apperrors.ErrSplitMismatch
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, "POST", "/groups/"+testGroupID+"/expenses", `{"amount":"10","description":"x"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "SPLIT_MISMATCH")
	})
}

func TestExpenseHandler_ListGroupExpenses(t *testing.T) {
	t.Run("parses filters", func(t *testing.T) {
		var got services.ExpenseFilter
		svc := &mockExpenseService{
			listGroupExpensesFn: func(_, _ string, _ pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
				got = filter
				resp := pagination.NewPageResponse([]models.Expense{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, "GET", "/groups/"+testGroupID+"/expenses?date_from=2024-01-01&date_to=2024-01-31"+
			"&payer_id="+otherUserID+"&min_amount=5&max_amount=50.5&search=taxi", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.DateFrom == nil || got.DateBefore == nil {
			t.Fatal("expected both date bounds")
		}
		if got.DateTo != nil {
			t.Error("expected a plain date_to to become an exclusive bound")
		}
		if want := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC); !got.DateBefore.Equal(want) {
			t.Errorf("expected date_to 2024-01-31 to end before %v, got %v", want, got.DateBefore)
		}
		if got.PayerID == nil || *got.PayerID != otherUserID {
			t.Errorf("expected payer filter %s, got %v", otherUserID, got.PayerID)
		}
		if got.MinAmount == nil || !got.MinAmount.Equal(decimal.NewFromInt(5)) {
			t.Errorf("unexpected min amount %v", got.MinAmount)
		}
		if got.MaxAmount == nil || !got.MaxAmount.Equal(decimal.RequireFromString("50.5")) {
			t.Errorf("unexpected max amount %v", got.MaxAmount)
		}
		if got.Search != "taxi" {
			t.Errorf("expected search taxi, got %q", got.Search)
		}
		if got.CategoryID != nil {
			t.Error("expected no category filter")
		}
	})

	t.Run("keeps an RFC3339 date_to inclusive", func(t *testing.T) {
		var got services.ExpenseFilter
		svc := &mockExpenseService{
			listGroupExpensesFn: func(_, _ string, _ pagination.PageRequest, filter services.ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
				got = filter
				resp := pagination.NewPageResponse([]models.Expense{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, "GET", "/groups/"+testGroupID+"/expenses?date_to=2024-01-31T18:00:00Z", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		want := time.Date(2024, time.January, 31, 18, 0, 0, 0, time.UTC)
		if got.DateTo == nil || !got.DateTo.Equal(want) {
			t.Errorf("expected inclusive bound %v, got %v", want, got.DateTo)
		}
		if got.DateBefore != nil {
			t.Error("expected no exclusive bound")
		}
	})

	t.Run("rejects a malformed amount", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, "GET", "/groups/"+testGroupID+"/expenses?min_amount=lots", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("rejects a malformed category id", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, "GET", "/groups/"+testGroupID+"/expenses?category_id=7", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestExpenseHandler_GetUpdateDelete(t *testing.T) {
	t.Run("gets an expense", func(t *testing.T) {
		svc := &mockExpenseService{
			getExpenseFn: func(expenseID, _ string) (*models.Expense, error) {
				return &models.Expense{Base: models.Base{ID: expenseID}, Description: "Taxi"}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, "GET", "/expenses/"+testItemID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		expense := parseJSON(t, rec)["expense"].(map[string]interface{})
		if expense["description"] != "Taxi" {
			t.Errorf("expected Taxi, got %v", expense["description"])
		}
	})

	t.Run("returns 404 for a missing expense", func(t *testing.T) {
		svc := &mockExpenseService{
			getExpenseFn: func(_, _ string) (*models.Expense, error) { return nil, apperrors.ErrExpenseNotFound },
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, "GET", "/expenses/"+testItemID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("updates an expense", func(t *testing.T) {
		svc := &mockExpenseService{
			updateExpenseFn: func(expenseID, _ string, input services.ExpenseInput) (*models.Expense, error) {
				if input.Description != "Taxi home" {
					t.Errorf("expected new description, got %q", input.Description)
				}
				return &models.Expense{Base: models.Base{ID: expenseID}, Description: input.Description}, nil
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, "PUT", "/expenses/"+testItemID, `{"amount":"12","description":"Taxi home"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 403 when a non-payer edits", func(t *testing.T) {
		svc := &mockExpenseService{
			updateExpenseFn: func(_, _ string, _ services.ExpenseInput) (*models.Expense, error) {
				return nil, apperrors.ErrNotExpensePayer
			},
		}
		r := setupExpenseRouter(NewExpenseHandler(svc))

		rec := doRequest(r, "PUT", "/expenses/"+testItemID, `{"amount":"12","description":"Taxi"}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "NOT_EXPENSE_PAYER")
	})

	t.Run("deletes an expense", func(t *testing.T) {
		r := setupExpenseRouter(NewExpenseHandler(&mockExpenseService{}))

		rec := doRequest(r, "DELETE", "/expenses/"+testItemID, "")

		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
	})
}
