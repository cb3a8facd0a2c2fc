package models

// Category labels expenses. Categories are shared by every group.
type Category struct {
	Base
	Name        string `gorm:"uniqueIndex;not null;size:50" json:"name"`
	Description string `json:"description"`
	Color       string `gorm:"size:7" json:"color,omitempty"`
}
