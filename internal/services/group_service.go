package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "splitease/internal/errors"
	"splitease/internal/models"
	"splitease/internal/money"
	"splitease/internal/pagination"
)

const defaultCurrency = "USD"

// groupService handles groups and their membership.
type groupService struct {
	db         *gorm.DB
	activities ActivityServicer
}

// NewGroupService creates a new GroupServicer.
func NewGroupService(db *gorm.DB, activities ActivityServicer) GroupServicer {
	return &groupService{db: db, activities: activities}
}

// CreateGroup creates a group and enrolls the owner as its first admin.
func (s *groupService) CreateGroup(ownerID, name, description, currency string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "group name is required")
	}

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = defaultCurrency
	}
	if !money.IsCurrency(currency) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "unsupported currency")
	}

	group := &models.Group{
		Name:        name,
		Description: description,
		Currency:    currency,
		OwnerID:     ownerID,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		owner := &models.GroupMember{
			GroupID:  group.ID,
			UserID:   ownerID,
			IsAdmin:  true,
			JoinedAt: time.Now().UTC(),
		}
		if err := tx.Create(owner).Error; err != nil {
			return err
		}
		group.Members = []models.GroupMember{*owner}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return group, nil
}

// ListUserGroups retrieves a paginated list of groups the user belongs to.
func (s *groupService) ListUserGroups(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Group], error) {
	groupIDs := s.db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", userID)
	query := s.db.Model(&models.Group{}).Where("id IN (?)", groupIDs)

	result, err := pagination.Fetch[models.Group](query, page, "created_at DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetGroup retrieves a group with its members. Only members may see it.
func (s *groupService) GetGroup(groupID, userID string) (*models.Group, error) {
	if _, _, err := requireMember(s.db, groupID, userID); err != nil {
		return nil, err
	}

	var group models.Group
	if err := s.db.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("joined_at ASC")
	}).Preload("Members.User").Where("id = ?", groupID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &group, nil
}

// UpdateGroup changes a group's name and/or description. Admins only.
func (s *groupService) UpdateGroup(groupID, userID string, name, description *string) (*models.Group, error) {
	group, _, err := requireAdmin(s.db, groupID, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "group name cannot be empty")
		}
		updates["name"] = trimmed
	}
	if description != nil {
		updates["description"] = *description
	}

	if len(updates) > 0 {
		if err := s.db.Model(group).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	return loadGroup(s.db, groupID)
}

// DeleteGroup removes a group and everything recorded in it. Owner only.
func (s *groupService) DeleteGroup(groupID, userID string) error {
	group, _, err := requireMember(s.db, groupID, userID)
	if err != nil {
		return err
	}
	if group.OwnerID != userID {
		return apperrors.ErrNotGroupOwner
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		expenseIDs := tx.Model(&models.Expense{}).Select("id").Where("group_id = ?", groupID)
		if err := tx.Where("expense_id IN (?)", expenseIDs).Delete(&models.ExpenseParticipant{}).Error; err != nil {
			return err
		}
		for _, model := range []interface{}{
			&models.Expense{},
			&models.Balance{},
			&models.Settlement{},
			&models.Activity{},
			&models.GroupMember{},
		} {
			if err := tx.Where("group_id = ?", groupID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(group).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AddMember enrolls the user registered under email. Admins only.
func (s *groupService) AddMember(groupID, actorID, email string, isAdmin bool) (*models.GroupMember, error) {
	if _, _, err := requireAdmin(s.db, groupID, actorID); err != nil {
		return nil, err
	}

	var user models.User
	if err := s.db.Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(email)), true).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var count int64
	if err := s.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, user.ID).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateMember
	}

	member := &models.GroupMember{
		GroupID:  groupID,
		UserID:   user.ID,
		IsAdmin:  isAdmin,
		JoinedAt: time.Now().UTC(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(member).Error; err != nil {
			return err
		}
		return s.activities.Record(tx, ActivityEntry{
			GroupID:     groupID,
			UserID:      actorID,
			Type:        models.ActivityMemberJoined,
			Description: fmt.Sprintf("%s joined the group", user.Name),
			Details:     map[string]any{"member_id": user.ID, "is_admin": isAdmin},
		})
	})
	if err != nil {
		return nil, toAppError(err)
	}

	member.User = &user
	return member, nil
}

// RemoveMember removes a member. Admins only; the owner and the acting user
// cannot be removed this way.
func (s *groupService) RemoveMember(groupID, actorID, memberUserID string) error {
	group, _, err := requireAdmin(s.db, groupID, actorID)
	if err != nil {
		return err
	}
	if memberUserID == group.OwnerID {
		return apperrors.ErrCannotRemoveOwner
	}
	if memberUserID == actorID {
		return apperrors.ErrCannotRemoveSelf
	}

	var member models.GroupMember
	if err := s.db.Preload("User").
		Where("group_id = ? AND user_id = ?", groupID, memberUserID).
		First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotGroupMember
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	name := memberUserID
	if member.User != nil {
		name = member.User.Name
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&member).Error; err != nil {
			return err
		}
		return s.activities.Record(tx, ActivityEntry{
			GroupID:     groupID,
			UserID:      actorID,
			Type:        models.ActivityMemberLeft,
			Description: fmt.Sprintf("%s left the group", name),
			Details:     map[string]any{"member_id": memberUserID},
		})
	})
	if err != nil {
		return toAppError(err)
	}
	return nil
}

// ListMembers returns the group's members in join order.
func (s *groupService) ListMembers(groupID, userID string) ([]models.GroupMember, error) {
	if _, _, err := requireMember(s.db, groupID, userID); err != nil {
		return nil, err
	}

	var members []models.GroupMember
	if err := s.db.Preload("User").
		Where("group_id = ?", groupID).
		Order("joined_at ASC").
		Find(&members).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return members, nil
}

// IsMember reports whether the user belongs to the group.
func (s *groupService) IsMember(groupID, userID string) (bool, error) {
	var count int64
	if err := s.db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}
