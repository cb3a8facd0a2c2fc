package services

import (
	"encoding/json"

	"gorm.io/gorm"

	apperrors "splitease/internal/errors"
	"splitease/internal/logger"
	"splitease/internal/models"
	"splitease/internal/pagination"
)

// activityService handles the group activity feed.
type activityService struct {
	db *gorm.DB
}

// NewActivityService creates a new ActivityServicer.
func NewActivityService(db *gorm.DB) ActivityServicer {
	return &activityService{db: db}
}

// Record writes an activity entry using tx, so the entry commits or rolls
// back together with the change it describes. A nil tx writes directly.
func (s *activityService) Record(tx *gorm.DB, entry ActivityEntry) error {
	if tx == nil {
		tx = s.db
	}

	var details string
	if entry.Details != nil {
		data, err := json.Marshal(entry.Details)
		if err != nil {
			logger.Named("activity").Errorw("failed to marshal activity details", "error", err, "type", entry.Type)
			data = []byte("{}")
		}
		details = string(data)
	}

	activity := &models.Activity{
		GroupID:          entry.GroupID,
		UserID:           entry.UserID,
		Type:             entry.Type,
		Description:      entry.Description,
		RelatedExpenseID: entry.RelatedExpenseID,
		Details:          details,
	}
	if err := tx.Create(activity).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListGroupActivities returns a group's feed, newest first.
func (s *activityService) ListGroupActivities(groupID, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Activity], error) {
	if _, _, err := requireMember(s.db, groupID, userID); err != nil {
		return nil, err
	}

	query := s.db.Model(&models.Activity{}).Where("group_id = ?", groupID)
	result, err := pagination.Fetch[models.Activity](query, page, "created_at DESC, id DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// ListUserActivities returns the feed of every group the user belongs to.
func (s *activityService) ListUserActivities(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Activity], error) {
	groupIDs := s.db.Model(&models.GroupMember{}).Select("group_id").Where("user_id = ?", userID)
	query := s.db.Model(&models.Activity{}).Where("group_id IN (?)", groupIDs)

	result, err := pagination.Fetch[models.Activity](query, page, "created_at DESC, id DESC")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}
