package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "splitease/internal/errors"
	"splitease/internal/models"
	"splitease/internal/money"
	"splitease/internal/services"
	"splitease/internal/uuid"
)

// ExpenseHandler handles expense-related requests
type ExpenseHandler struct {
	expenseService services.ExpenseServicer
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenseService services.ExpenseServicer) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

// ParticipantRequest names one participant of an expense
type ParticipantRequest struct {
	UserID     string           `json:"user_id" binding:"required,uuid"`
	Amount     *decimal.Decimal `json:"amount"`
	Percentage *decimal.Decimal `json:"percentage"`
}

// ExpenseRequest represents the request payload for creating or editing an expense
type ExpenseRequest struct {
	Amount       decimal.Decimal      `json:"amount" swaggertype:"string" example:"42.50"`
	Description  string               `json:"description" binding:"required,max=255"`
	Date         *string              `json:"date" example:"2024-03-01"`
	CategoryID   *string              `json:"category_id" binding:"omitempty,uuid"`
	SplitType    string               `json:"split_type" binding:"omitempty,split_type"`
	Participants []ParticipantRequest `json:"participants" binding:"omitempty,dive"`
}

func (r ExpenseRequest) toInput(groupID string) (services.ExpenseInput, error) {
	input := services.ExpenseInput{
		GroupID:     groupID,
		Amount:      r.Amount,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		SplitType:   models.SplitType(r.SplitType),
	}

	if r.Date != nil && *r.Date != "" {
		t, err := parseFlexibleTime(*r.Date)
		if err != nil {
			return input, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date format, use RFC3339 or YYYY-MM-DD")
		}
		input.Date = t
	}

	for _, p := range r.Participants {
		input.Participants = append(input.Participants, services.ParticipantInput{
			UserID:     p.UserID,
			Amount:     p.Amount,
			Percentage: p.Percentage,
		})
	}
	return input, nil
}

// CreateExpense handles recording a new expense
// @Summary     Create an expense
// @Description Record an expense paid by the caller and split it among participants. Balances are recomputed in the same transaction.
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Group ID"
// @Param       request body ExpenseRequest true "Expense details"
// @Success     201 {object} models.Expense "Expense created"
// @Failure     400 {object} ErrorResponse "Invalid input or split mismatch"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Router      /groups/{id}/expenses [post]
func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input, err := req.toInput(groupID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.CreateExpense(userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"expense": expense})
}

// ListGroupExpenses handles listing a group's expenses
// @Summary     List expenses
// @Description Get a paginated list of a group's expenses with optional filters
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id          path  string true  "Group ID"
// @Param       page        query int    false "Page number (default 1)"
// @Param       page_size   query int    false "Items per page (default 20, max 100)"
// @Param       date_from   query string false "Start date (RFC3339 or YYYY-MM-DD)"
// @Param       date_to     query string false "End date, inclusive (RFC3339, or YYYY-MM-DD for the whole day)"
// @Param       category_id query string false "Filter by category ID"
// @Param       payer_id    query string false "Filter by payer ID"
// @Param       min_amount  query string false "Minimum amount"
// @Param       max_amount  query string false "Maximum amount"
// @Param       search      query string false "Search in description"
// @Success     200 {object} pagination.PageResponse[models.Expense] "Paginated expenses"
// @Failure     400 {object} ErrorResponse "Invalid filter"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Router      /groups/{id}/expenses [get]
func (h *ExpenseHandler) ListGroupExpenses(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	groupID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	page, err := bindPage(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	filter, err := parseExpenseFilter(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.expenseService.ListGroupExpenses(groupID, userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseExpenseFilter(c *gin.Context) (services.ExpenseFilter, error) {
	var filter services.ExpenseFilter

	if v := c.Query("date_from"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date_from format, use RFC3339 or YYYY-MM-DD")
		}
		filter.DateFrom = &t
	}

	if v := c.Query("date_to"); v != "" {
		t, err := parseFlexibleTime(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid date_to format, use RFC3339 or YYYY-MM-DD")
		}
		if isDateOnly(v) {
			// a plain date covers the whole day
			next := t.AddDate(0, 0, 1)
			filter.DateBefore = &next
		} else {
			filter.DateTo = &t
		}
	}

	if v := c.Query("category_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid category_id")
		}
		filter.CategoryID = &id
	}

	if v := c.Query("payer_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid payer_id")
		}
		filter.PayerID = &id
	}

	if v := c.Query("min_amount"); v != "" {
		amt, err := money.Parse(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid min_amount")
		}
		filter.MinAmount = &amt
	}

	if v := c.Query("max_amount"); v != "" {
		amt, err := money.Parse(v)
		if err != nil {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid max_amount")
		}
		filter.MaxAmount = &amt
	}

	filter.Search = c.Query("search")
	return filter, nil
}

// GetExpense handles retrieving a single expense
// @Summary     Get expense by ID
// @Tags        expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     200 {object} models.Expense "Expense with participants"
// @Failure     403 {object} ErrorResponse "Not a member"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.GetExpense(expenseID, userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// UpdateExpense handles editing an expense
// @Summary     Update expense
// @Description Replace an expense's fields and participants (payer only)
// @Tags        expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string         true "Expense ID"
// @Param       request body ExpenseRequest true "Expense details"
// @Success     200 {object} models.Expense "Expense updated"
// @Failure     400 {object} ErrorResponse "Invalid input or split mismatch"
// @Failure     403 {object} ErrorResponse "Not the payer"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [put]
func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	input, err := req.toInput("")
	if err != nil {
		respondWithError(c, err)
		return
	}

	expense, err := h.expenseService.UpdateExpense(expenseID, userID, input)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"expense": expense})
}

// DeleteExpense handles deleting an expense
// @Summary     Delete expense
// @Description Delete an expense and recompute balances (payer only)
// @Tags        expenses
// @Security    BearerAuth
// @Param       id path string true "Expense ID"
// @Success     204 "Expense deleted"
// @Failure     403 {object} ErrorResponse "Not the payer"
// @Failure     404 {object} ErrorResponse "Expense not found"
// @Router      /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.expenseService.DeleteExpense(expenseID, userID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
