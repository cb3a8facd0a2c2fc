package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "splitease/internal/errors"
	"splitease/internal/logger"
	"splitease/internal/metrics"
	"splitease/internal/models"
	"splitease/internal/money"
	"splitease/internal/pagination"
)

const maxDescriptionLength = 255

var hundredPercent = decimal.NewFromInt(100)

// expenseService handles expenses and keeps balances in step with them.
type expenseService struct {
	db         *gorm.DB
	activities ActivityServicer
}

// NewExpenseService creates a new ExpenseServicer.
func NewExpenseService(db *gorm.DB, activities ActivityServicer) ExpenseServicer {
	return &expenseService{db: db, activities: activities}
}

// CreateExpense records an expense paid by userID, splits it among the
// participants and rebuilds the group's balances in the same transaction.
func (s *expenseService) CreateExpense(userID string, input ExpenseInput) (*models.Expense, error) {
	group, _, err := requireMember(s.db, input.GroupID, userID)
	if err != nil {
		return nil, err
	}

	input, err = s.normalize(input)
	if err != nil {
		return nil, err
	}

	participants, err := s.buildParticipants(group.ID, userID, input)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		GroupID:      group.ID,
		PayerID:      userID,
		Amount:       input.Amount,
		Description:  input.Description,
		Date:         input.Date,
		CategoryID:   input.CategoryID,
		SplitType:    input.SplitType,
		Participants: participants,
	}

	var rows int
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(expense).Error; err != nil {
			return err
		}
		balances, err := recomputeTx(tx, group.ID)
		if err != nil {
			return err
		}
		rows = len(balances)

		return s.activities.Record(tx, ActivityEntry{
			GroupID:          group.ID,
			UserID:           userID,
			Type:             models.ActivityExpenseAdded,
			Description:      fmt.Sprintf("Added %q for %s", expense.Description, money.Format(expense.Amount, group.Currency)),
			RelatedExpenseID: &expense.ID,
			Details: map[string]any{
				"amount":       expense.Amount.StringFixed(money.Scale),
				"split_type":   expense.SplitType,
				"participants": len(participants),
			},
		})
	})
	metrics.ObserveRecompute(rows, err)
	if err != nil {
		logger.Named("expenses").Errorw("create expense failed", "group_id", group.ID, "error", err)
		return nil, toAppError(err)
	}

	return s.load(expense.ID)
}

// GetExpense retrieves an expense with its participants. Members only.
func (s *expenseService) GetExpense(expenseID, userID string) (*models.Expense, error) {
	expense, err := s.load(expenseID)
	if err != nil {
		return nil, err
	}
	if _, _, err := requireMember(s.db, expense.GroupID, userID); err != nil {
		return nil, err
	}
	return expense, nil
}

// ListGroupExpenses retrieves a paginated, filtered list of a group's
// expenses, most recent date first.
func (s *expenseService) ListGroupExpenses(groupID, userID string, page pagination.PageRequest, filter ExpenseFilter) (*pagination.PageResponse[models.Expense], error) {
	if _, _, err := requireMember(s.db, groupID, userID); err != nil {
		return nil, err
	}

	query := s.db.Model(&models.Expense{}).Where("group_id = ?", groupID)
	if filter.DateFrom != nil {
		query = query.Where("date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("date <= ?", *filter.DateTo)
	}
	if filter.DateBefore != nil {
		query = query.Where("date < ?", *filter.DateBefore)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.PayerID != nil {
		query = query.Where("payer_id = ?", *filter.PayerID)
	}
	if filter.MinAmount != nil {
		query = query.Where("amount >= ?", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		query = query.Where("amount <= ?", *filter.MaxAmount)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(description) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	result, err := pagination.Fetch[models.Expense](query, page, "date DESC, created_at DESC", "Participants", "Category")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// UpdateExpense replaces an expense's fields and all of its shares. Only the
// payer may edit it.
func (s *expenseService) UpdateExpense(expenseID, userID string, input ExpenseInput) (*models.Expense, error) {
	expense, err := s.load(expenseID)
	if err != nil {
		return nil, err
	}
	group, _, err := requireMember(s.db, expense.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if expense.PayerID != userID {
		return nil, apperrors.ErrNotExpensePayer
	}

	input.GroupID = expense.GroupID
	input, err = s.normalize(input)
	if err != nil {
		return nil, err
	}

	participants, err := s.buildParticipants(group.ID, expense.PayerID, input)
	if err != nil {
		return nil, err
	}
	for i := range participants {
		participants[i].ExpenseID = expense.ID
	}

	var rows int
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expense_id = ?", expense.ID).Delete(&models.ExpenseParticipant{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Expense{}).Where("id = ?", expense.ID).Updates(map[string]interface{}{
			"amount":      input.Amount,
			"description": input.Description,
			"date":        input.Date,
			"category_id": input.CategoryID,
			"split_type":  input.SplitType,
			"updated_at":  time.Now().UTC(),
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(&participants).Error; err != nil {
			return err
		}
		balances, err := recomputeTx(tx, group.ID)
		if err != nil {
			return err
		}
		rows = len(balances)

		return s.activities.Record(tx, ActivityEntry{
			GroupID:          group.ID,
			UserID:           userID,
			Type:             models.ActivityExpenseUpdated,
			Description:      fmt.Sprintf("Updated %q to %s", input.Description, money.Format(input.Amount, group.Currency)),
			RelatedExpenseID: &expense.ID,
			Details: map[string]any{
				"previous_amount": expense.Amount.StringFixed(money.Scale),
				"amount":          input.Amount.StringFixed(money.Scale),
				"split_type":      input.SplitType,
			},
		})
	})
	metrics.ObserveRecompute(rows, err)
	if err != nil {
		logger.Named("expenses").Errorw("update expense failed", "expense_id", expense.ID, "error", err)
		return nil, toAppError(err)
	}

	return s.load(expense.ID)
}

// DeleteExpense removes an expense and its shares. Only the payer may
// delete it.
func (s *expenseService) DeleteExpense(expenseID, userID string) error {
	expense, err := s.load(expenseID)
	if err != nil {
		return err
	}
	group, _, err := requireMember(s.db, expense.GroupID, userID)
	if err != nil {
		return err
	}
	if expense.PayerID != userID {
		return apperrors.ErrNotExpensePayer
	}

	var rows int
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("expense_id = ?", expense.ID).Delete(&models.ExpenseParticipant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", expense.ID).Delete(&models.Expense{}).Error; err != nil {
			return err
		}
		balances, err := recomputeTx(tx, group.ID)
		if err != nil {
			return err
		}
		rows = len(balances)

		return s.activities.Record(tx, ActivityEntry{
			GroupID:          group.ID,
			UserID:           userID,
			Type:             models.ActivityExpenseDeleted,
			Description:      fmt.Sprintf("Deleted %q (%s)", expense.Description, money.Format(expense.Amount, group.Currency)),
			RelatedExpenseID: &expense.ID,
		})
	})
	metrics.ObserveRecompute(rows, err)
	if err != nil {
		logger.Named("expenses").Errorw("delete expense failed", "expense_id", expense.ID, "error", err)
		return toAppError(err)
	}
	return nil
}

func (s *expenseService) load(expenseID string) (*models.Expense, error) {
	var expense models.Expense
	if err := s.db.Preload("Participants", func(db *gorm.DB) *gorm.DB {
		return db.Order("user_id ASC")
	}).Preload("Category").Where("id = ?", expenseID).First(&expense).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &expense, nil
}

// normalize validates the scalar fields of input and fills defaults.
func (s *expenseService) normalize(input ExpenseInput) (ExpenseInput, error) {
	if !money.IsValidAmount(input.Amount) {
		return input, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive with at most two decimal places")
	}

	input.Description = strings.TrimSpace(input.Description)
	if input.Description == "" {
		return input, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is required")
	}
	if utf8.RuneCountInString(input.Description) > maxDescriptionLength {
		return input, apperrors.WithMessage(apperrors.ErrInvalidInput, "description is too long")
	}

	if input.Date.IsZero() {
		input.Date = time.Now().UTC()
	}

	switch input.SplitType {
	case "":
		input.SplitType = models.SplitTypeEqual
	case models.SplitTypeEqual, models.SplitTypeExact, models.SplitTypePercentage:
	default:
		return input, apperrors.WithMessage(apperrors.ErrInvalidInput, "split type must be equal, exact or percentage")
	}

	if input.CategoryID != nil {
		var count int64
		if err := s.db.Model(&models.Category{}).Where("id = ?", *input.CategoryID).Count(&count).Error; err != nil {
			return input, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count == 0 {
			return input, apperrors.ErrCategoryNotFound
		}
	}
	return input, nil
}

// buildParticipants resolves who shares the expense and computes each share.
// Participants are ordered payer first, then by user ID; that order decides
// who absorbs leftover cents.
func (s *expenseService) buildParticipants(groupID, payerID string, input ExpenseInput) ([]models.ExpenseParticipant, error) {
	members, err := memberIDs(s.db, groupID)
	if err != nil {
		return nil, err
	}
	isMember := make(map[string]bool, len(members))
	for _, id := range members {
		isMember[id] = true
	}

	specs := input.Participants
	if len(specs) == 0 {
		if input.SplitType != models.SplitTypeEqual {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "participants are required for exact and percentage splits")
		}
		for _, id := range members {
			specs = append(specs, ParticipantInput{UserID: id})
		}
	}

	seen := make(map[string]bool, len(specs))
	for _, p := range specs {
		if seen[p.UserID] {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "participants must be unique")
		}
		seen[p.UserID] = true
		if !isMember[p.UserID] {
			return nil, apperrors.WithMessage(apperrors.ErrNotGroupMember, "every participant must be a member of the group")
		}
	}

	ordered := make([]ParticipantInput, len(specs))
	copy(ordered, specs)
	sort.SliceStable(ordered, func(i, j int) bool {
		if (ordered[i].UserID == payerID) != (ordered[j].UserID == payerID) {
			return ordered[i].UserID == payerID
		}
		return ordered[i].UserID < ordered[j].UserID
	})

	shares, percents, err := computeShares(input.Amount, input.SplitType, ordered)
	if err != nil {
		return nil, err
	}

	participants := make([]models.ExpenseParticipant, len(ordered))
	for i, p := range ordered {
		participants[i] = models.ExpenseParticipant{
			UserID:      p.UserID,
			ShareAmount: shares[i],
		}
		if percents != nil {
			pct := percents[i]
			participants[i].SharePercentage = &pct
		}
	}
	return participants, nil
}

// computeShares applies the split type to ordered participants.
func computeShares(total decimal.Decimal, splitType models.SplitType, ordered []ParticipantInput) ([]decimal.Decimal, []decimal.Decimal, error) {
	switch splitType {
	case models.SplitTypeExact:
		shares := make([]decimal.Decimal, len(ordered))
		for i, p := range ordered {
			if p.Amount == nil || p.Amount.IsNegative() || !money.HasValidScale(*p.Amount) {
				return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "each participant needs a non-negative amount with at most two decimal places")
			}
			shares[i] = *p.Amount
		}
		if !money.Sum(shares...).Equal(total) {
			return nil, nil, apperrors.ErrSplitMismatch
		}
		return shares, nil, nil

	case models.SplitTypePercentage:
		percents := make([]decimal.Decimal, len(ordered))
		for i, p := range ordered {
			if p.Percentage == nil || p.Percentage.IsNegative() || !money.HasValidScale(*p.Percentage) {
				return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "each participant needs a non-negative percentage with at most two decimal places")
			}
			percents[i] = *p.Percentage
		}
		if !money.Sum(percents...).Equal(hundredPercent) {
			return nil, nil, apperrors.WithMessage(apperrors.ErrSplitMismatch, "percentages must add up to 100")
		}
		return money.SplitPercent(total, percents), percents, nil

	default:
		return money.SplitEqual(total, len(ordered)), nil, nil
	}
}
