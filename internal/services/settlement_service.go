package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "splitease/internal/errors"
	"splitease/internal/ledger"
	"splitease/internal/logger"
	"splitease/internal/metrics"
	"splitease/internal/models"
	"splitease/internal/money"
	"splitease/internal/pagination"
)

const (
	planModePreview = "preview"
	planModeConfirm = "confirm"
)

// settlementService plans settlements and tracks their completion.
type settlementService struct {
	db         *gorm.DB
	activities ActivityServicer
}

// NewSettlementService creates a new SettlementServicer.
func NewSettlementService(db *gorm.DB, activities ActivityServicer) SettlementServicer {
	return &settlementService{db: db, activities: activities}
}

// PlanSettlements computes the minimal transfer plan for a group from its
// expenses without writing anything.
func (s *settlementService) PlanSettlements(groupID string) ([]ledger.Transfer, error) {
	if _, err := loadGroup(s.db, groupID); err != nil {
		return nil, err
	}

	net, err := groupNet(s.db, groupID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	transfers := ledger.MinimalSettlements(net)
	metrics.ObserveSettlementPlan(planModePreview, len(transfers))
	return transfers, nil
}

// PreviewSettlements refreshes the group's balances, then returns the
// proposed transfers. Members only.
func (s *settlementService) PreviewSettlements(groupID, userID string) ([]ledger.Transfer, error) {
	if _, _, err := requireMember(s.db, groupID, userID); err != nil {
		return nil, err
	}

	var rows int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		balances, err := recomputeTx(tx, groupID)
		rows = len(balances)
		return err
	})
	metrics.ObserveRecompute(rows, err)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.PlanSettlements(groupID)
}

// ConfirmSettlements replaces the group's pending settlements with a fresh
// plan. Completed settlements are kept. Members only.
func (s *settlementService) ConfirmSettlements(groupID, userID string) ([]models.Settlement, error) {
	group, _, err := requireMember(s.db, groupID, userID)
	if err != nil {
		return nil, err
	}

	settlements := []models.Settlement{}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := recomputeTx(tx, groupID); err != nil {
			return err
		}
		net, err := groupNet(tx, groupID)
		if err != nil {
			return err
		}
		transfers := ledger.MinimalSettlements(net)

		if err := tx.Where("group_id = ? AND is_completed = ?", groupID, false).
			Delete(&models.Settlement{}).Error; err != nil {
			return err
		}

		for _, t := range transfers {
			settlements = append(settlements, models.Settlement{
				GroupID: groupID,
				PayerID: t.PayerID,
				PayeeID: t.PayeeID,
				Amount:  t.Amount,
			})
		}
		if len(settlements) > 0 {
			if err := tx.Create(&settlements).Error; err != nil {
				return err
			}
		}

		total := decimal.Zero
		for _, t := range transfers {
			total = total.Add(t.Amount)
		}
		return s.activities.Record(tx, ActivityEntry{
			GroupID:     groupID,
			UserID:      userID,
			Type:        models.ActivitySettlementCreated,
			Description: fmt.Sprintf("Proposed %d settlement(s) totalling %s", len(transfers), money.Format(total, group.Currency)),
			Details:     map[string]any{"transfers": transfers},
		})
	})
	if err != nil {
		logger.Named("settlements").Errorw("confirm settlements failed", "group_id", groupID, "error", err)
		return nil, toAppError(err)
	}

	metrics.ObserveSettlementPlan(planModeConfirm, len(settlements))
	logger.Named("settlements").Infow("settlements confirmed", "group_id", groupID, "count", len(settlements))
	return settlements, nil
}

// CreateSettlement records a single payment between two members.
func (s *settlementService) CreateSettlement(groupID, userID, payerID, payeeID string, amount decimal.Decimal) (*models.Settlement, error) {
	group, _, err := requireMember(s.db, groupID, userID)
	if err != nil {
		return nil, err
	}
	if payerID == payeeID {
		return nil, apperrors.ErrSelfSettlement
	}
	if !money.IsValidAmount(amount) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive with at most two decimal places")
	}

	var parties []models.GroupMember
	if err := s.db.Preload("User").
		Where("group_id = ? AND user_id IN ?", groupID, []string{payerID, payeeID}).
		Find(&parties).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(parties) != 2 {
		return nil, apperrors.WithMessage(apperrors.ErrNotGroupMember, "payer and payee must both be members of the group")
	}
	names := make(map[string]string, 2)
	for _, p := range parties {
		if p.User != nil {
			names[p.UserID] = p.User.Name
		}
	}

	settlement := &models.Settlement{
		GroupID: groupID,
		PayerID: payerID,
		PayeeID: payeeID,
		Amount:  amount,
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(settlement).Error; err != nil {
			return err
		}
		return s.activities.Record(tx, ActivityEntry{
			GroupID:     groupID,
			UserID:      userID,
			Type:        models.ActivitySettlementCreated,
			Description: fmt.Sprintf("%s pays %s %s", names[payerID], names[payeeID], money.Format(amount, group.Currency)),
			Details:     map[string]any{"settlement_id": settlement.ID, "amount": amount.StringFixed(money.Scale)},
		})
	})
	if err != nil {
		return nil, toAppError(err)
	}
	return settlement, nil
}

// MarkSettlementComplete marks a settlement as paid. Only its payer or
// payee may do so, and only once.
func (s *settlementService) MarkSettlementComplete(settlementID, userID string) (*models.Settlement, error) {
	settlement, err := s.load(settlementID)
	if err != nil {
		return nil, err
	}
	if userID != settlement.PayerID && userID != settlement.PayeeID {
		return nil, apperrors.ErrNotSettlementParty
	}
	if settlement.IsCompleted {
		return nil, apperrors.ErrSettlementAlreadyCompleted
	}
	group, err := loadGroup(s.db, settlement.GroupID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Settlement{}).
			Where("id = ? AND is_completed = ?", settlement.ID, false).
			Updates(map[string]interface{}{"is_completed": true, "completed_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperrors.ErrSettlementAlreadyCompleted
		}
		return s.activities.Record(tx, ActivityEntry{
			GroupID:     settlement.GroupID,
			UserID:      userID,
			Type:        models.ActivitySettlementCompleted,
			Description: fmt.Sprintf("Settlement of %s completed", money.Format(settlement.Amount, group.Currency)),
			Details:     map[string]any{"settlement_id": settlement.ID},
		})
	})
	if err != nil {
		return nil, toAppError(err)
	}

	return s.load(settlement.ID)
}

// ListSettlements returns either the pending or the completed settlements of
// a group, newest first.
func (s *settlementService) ListSettlements(groupID, userID string, completed bool, page pagination.PageRequest) (*pagination.PageResponse[models.Settlement], error) {
	if _, _, err := requireMember(s.db, groupID, userID); err != nil {
		return nil, err
	}

	query := s.db.Model(&models.Settlement{}).Where("group_id = ? AND is_completed = ?", groupID, completed)
	result, err := pagination.Fetch[models.Settlement](query, page, "created_at DESC, id DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetSettlement retrieves a settlement. Members only.
func (s *settlementService) GetSettlement(settlementID, userID string) (*models.Settlement, error) {
	settlement, err := s.load(settlementID)
	if err != nil {
		return nil, err
	}
	if _, _, err := requireMember(s.db, settlement.GroupID, userID); err != nil {
		return nil, err
	}
	return settlement, nil
}

func (s *settlementService) load(settlementID string) (*models.Settlement, error) {
	var settlement models.Settlement
	if err := s.db.Where("id = ?", settlementID).First(&settlement).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrSettlementNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &settlement, nil
}
