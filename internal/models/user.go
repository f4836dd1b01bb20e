package models

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	FirstName    string    `json:"first_name"`
	Email        string    `json:"email"`
	OIDCSubject  *string   `gorm:"column:oidc_subject;uniqueIndex" json:"-"` // OpenID Connect identifier
	IsStaff      bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt    time.Time `json:"-"`
}

type UserAddress struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"-"`
	User      *User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Address   string    `gorm:"size:255;not null" json:"address"`
	IsDefault bool      `gorm:"not null;default:false" json:"is_default"`
	CreatedAt time.Time `json:"-"`
}
