package models

import "time"

// Group is a set of users sharing expenses in a single currency.
type Group struct {
	Base
	Name        string        `gorm:"not null;size:100" json:"name"`
	Description string        `json:"description"`
	Currency    string        `gorm:"size:3;not null;default:USD" json:"currency"`
	OwnerID     string        `gorm:"type:uuid;not null;index" json:"owner_id"`
	Members     []GroupMember `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"members,omitempty"`
}

// GroupMember links a user to a group.
type GroupMember struct {
	Base
	GroupID  string    `gorm:"type:uuid;not null;uniqueIndex:idx_group_member" json:"group_id"`
	UserID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_group_member" json:"user_id"`
	IsAdmin  bool      `gorm:"default:false" json:"is_admin"`
	JoinedAt time.Time `gorm:"not null" json:"joined_at"`
	User     *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
