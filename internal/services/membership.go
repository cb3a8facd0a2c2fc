package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "splitease/internal/errors"
	"splitease/internal/models"
)

// loadGroup fetches a group or reports GROUP_NOT_FOUND.
func loadGroup(db *gorm.DB, groupID string) (*models.Group, error) {
	var group models.Group
	if err := db.Where("id = ?", groupID).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGroupNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &group, nil
}

// requireMember returns the group and the caller's membership, failing with
// GROUP_NOT_FOUND or NOT_GROUP_MEMBER.
func requireMember(db *gorm.DB, groupID, userID string) (*models.Group, *models.GroupMember, error) {
	group, err := loadGroup(db, groupID)
	if err != nil {
		return nil, nil, err
	}

	var member models.GroupMember
	if err := db.Where("group_id = ? AND user_id = ?", groupID, userID).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrNotGroupMember
		}
		return nil, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return group, &member, nil
}

// requireAdmin is requireMember plus the admin flag. The owner is always
// treated as an admin.
func requireAdmin(db *gorm.DB, groupID, userID string) (*models.Group, *models.GroupMember, error) {
	group, member, err := requireMember(db, groupID, userID)
	if err != nil {
		return nil, nil, err
	}
	if !member.IsAdmin && group.OwnerID != userID {
		return nil, nil, apperrors.ErrNotGroupAdmin
	}
	return group, member, nil
}

// memberIDs lists the user IDs of a group's members in ascending order.
func memberIDs(db *gorm.DB, groupID string) ([]string, error) {
	var ids []string
	if err := db.Model(&models.GroupMember{}).
		Where("group_id = ?", groupID).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return ids, nil
}

// toAppError passes AppErrors through and wraps anything else as internal.
func toAppError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
