package models

// User represents the user model in the database
type User struct {
	Base
	Email       string        `gorm:"uniqueIndex;not null" json:"email"`
	Password    string        `gorm:"not null" json:"-"`
	Name        string        `gorm:"not null" json:"name"`
	IsActive    bool          `gorm:"default:true" json:"is_active"`
	Memberships []GroupMember `gorm:"foreignKey:UserID" json:"-"`
}
