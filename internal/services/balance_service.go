package services

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "splitease/internal/errors"
	"splitease/internal/ledger"
	"splitease/internal/logger"
	"splitease/internal/metrics"
	"splitease/internal/models"
)

// balanceService maintains the derived Balance rows of each group.
type balanceService struct {
	db *gorm.DB
}

// NewBalanceService creates a new BalanceServicer.
func NewBalanceService(db *gorm.DB) BalanceServicer {
	return &balanceService{db: db}
}

// RecomputeBalances rebuilds a group's Balance rows from its expenses in a
// single transaction. Running it twice yields the same rows.
func (s *balanceService) RecomputeBalances(groupID string) ([]models.Balance, error) {
	if _, err := loadGroup(s.db, groupID); err != nil {
		return nil, err
	}

	var balances []models.Balance
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		balances, err = recomputeTx(tx, groupID)
		return err
	})
	metrics.ObserveRecompute(len(balances), err)
	if err != nil {
		logger.Named("balances").Errorw("recompute failed", "group_id", groupID, "error", err)
		return nil, toAppError(err)
	}

	logger.Named("balances").Debugw("recomputed balances", "group_id", groupID, "rows", len(balances))
	return balances, nil
}

// RecomputeGroupBalances is RecomputeBalances on behalf of a member.
func (s *balanceService) RecomputeGroupBalances(groupID, userID string) ([]models.Balance, error) {
	if _, _, err := requireMember(s.db, groupID, userID); err != nil {
		return nil, err
	}
	return s.RecomputeBalances(groupID)
}

// GetNetBalance sums the Balance rows naming the user as creditor or debtor.
func (s *balanceService) GetNetBalance(groupID, userID string) (*NetBalance, error) {
	if _, _, err := requireMember(s.db, groupID, userID); err != nil {
		return nil, err
	}

	var rows []models.Balance
	if err := s.db.Where("group_id = ? AND (creditor_id = ? OR debtor_id = ?)", groupID, userID, userID).
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	nb := netFromRows(rows, userID)
	return &nb, nil
}

// GetGroupBalances returns the persisted pairwise rows and every member's
// net position derived from them.
func (s *balanceService) GetGroupBalances(groupID, userID string) (*GroupBalances, error) {
	group, _, err := requireMember(s.db, groupID, userID)
	if err != nil {
		return nil, err
	}

	var rows []models.Balance
	if err := s.db.Where("group_id = ?", groupID).
		Order("debtor_id ASC, creditor_id ASC").
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var members []models.GroupMember
	if err := s.db.Preload("User").
		Where("group_id = ?", groupID).
		Order("user_id ASC").
		Find(&members).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := &GroupBalances{
		GroupID:  groupID,
		Currency: group.Currency,
		Balances: rows,
		Members:  make([]MemberNet, 0, len(members)),
	}
	if result.Balances == nil {
		result.Balances = []models.Balance{}
	}
	for _, m := range members {
		mn := MemberNet{UserID: m.UserID, Net: netFromRows(rows, m.UserID).Net}
		if m.User != nil {
			mn.Name = m.User.Name
		}
		result.Members = append(result.Members, mn)
	}
	return result, nil
}

// GetUserBalanceSummary aggregates the user's position over all their
// groups. Groups where the user is settled are left out of Groups.
func (s *balanceService) GetUserBalanceSummary(userID string) (*UserBalanceSummary, error) {
	var groups []models.Group
	groupIDs := s.db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", userID)
	if err := s.db.Where("id IN (?)", groupIDs).Order("name ASC").Find(&groups).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var rows []models.Balance
	if err := s.db.Where("group_id IN (?) AND (creditor_id = ? OR debtor_id = ?)", groupIDs, userID, userID).
		Find(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	byGroup := make(map[string][]models.Balance)
	for _, r := range rows {
		byGroup[r.GroupID] = append(byGroup[r.GroupID], r)
	}

	summary := &UserBalanceSummary{
		Groups:          []GroupNet{},
		TotalOwedToUser: decimal.Zero,
		TotalUserOwes:   decimal.Zero,
		Net:             decimal.Zero,
	}
	for _, g := range groups {
		nb := netFromRows(byGroup[g.ID], userID)
		summary.TotalOwedToUser = summary.TotalOwedToUser.Add(nb.TotalOwedToUser)
		summary.TotalUserOwes = summary.TotalUserOwes.Add(nb.TotalUserOwes)
		if nb.TotalOwedToUser.IsZero() && nb.TotalUserOwes.IsZero() {
			continue
		}
		summary.Groups = append(summary.Groups, GroupNet{
			GroupID:    g.ID,
			GroupName:  g.Name,
			Currency:   g.Currency,
			NetBalance: nb,
		})
	}
	summary.Net = summary.TotalOwedToUser.Sub(summary.TotalUserOwes)
	return summary, nil
}

// recomputeTx replaces the group's Balance rows using tx. Callers own the
// transaction so the rebuild can share it with the write that triggered it.
func recomputeTx(tx *gorm.DB, groupID string) ([]models.Balance, error) {
	if err := tx.Where("group_id = ?", groupID).Delete(&models.Balance{}).Error; err != nil {
		return nil, err
	}

	net, err := groupNet(tx, groupID)
	if err != nil {
		return nil, err
	}

	debts := ledger.PairwiseBalances(net)
	balances := make([]models.Balance, 0, len(debts))
	for _, d := range debts {
		balances = append(balances, models.Balance{
			GroupID:    groupID,
			DebtorID:   d.DebtorID,
			CreditorID: d.CreditorID,
			Amount:     d.Amount,
		})
	}
	if len(balances) > 0 {
		if err := tx.Create(&balances).Error; err != nil {
			return nil, err
		}
	}
	return balances, nil
}

// groupNet computes every participant's net balance from the group's expenses.
func groupNet(db *gorm.DB, groupID string) (ledger.Net, error) {
	var expenses []models.Expense
	if err := db.Preload("Participants").Where("group_id = ?", groupID).Find(&expenses).Error; err != nil {
		return nil, err
	}

	input := make([]ledger.Expense, 0, len(expenses))
	for _, e := range expenses {
		le := ledger.Expense{PayerID: e.PayerID, Amount: e.Amount}
		for _, p := range e.Participants {
			le.Shares = append(le.Shares, ledger.Share{UserID: p.UserID, Amount: p.ShareAmount})
		}
		input = append(input, le)
	}
	return ledger.NetBalances(input), nil
}

// netFromRows folds Balance rows into one user's position.
func netFromRows(rows []models.Balance, userID string) NetBalance {
	nb := NetBalance{TotalOwedToUser: decimal.Zero, TotalUserOwes: decimal.Zero}
	for _, r := range rows {
		if r.CreditorID == userID {
			nb.TotalOwedToUser = nb.TotalOwedToUser.Add(r.Amount)
		}
		if r.DebtorID == userID {
			nb.TotalUserOwes = nb.TotalUserOwes.Add(r.Amount)
		}
	}
	nb.Net = nb.TotalOwedToUser.Sub(nb.TotalUserOwes)
	return nb
}
