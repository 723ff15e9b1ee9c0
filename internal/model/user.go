package model

import "time"

// User is a person who signed in through the identity provider.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	GoogleID  string    `gorm:"uniqueIndex;size:128;not null" json:"googleId"`
	Email     string    `gorm:"size:256;not null" json:"email"`
	Name      string    `gorm:"size:256" json:"nombre"`
	Avatar    string    `gorm:"size:1024" json:"avatar,omitempty"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Session binds a browser cookie to a user until it expires or is revoked.
type Session struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"index;size:36;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time `gorm:"not null"`
}
