package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Invite represents a pending member invitation. The raw token is returned
// once at creation time; only its bcrypt hash is stored.
type Invite struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	ChurchID   uint           `json:"church_id" gorm:"index;not null"`
	Email      string         `json:"email" gorm:"type:varchar(100);index;not null"`
	Role       string         `json:"role" gorm:"type:varchar(50);default:'member'"`
	TokenHash  string         `json:"-" gorm:"type:varchar(255);not null"`
	ExpiresAt  time.Time      `json:"expires_at" gorm:"not null"`
	AcceptedAt *time.Time     `json:"accepted_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// SetToken hashes and stores the raw invite token
func (i *Invite) SetToken(raw string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	i.TokenHash = string(hash)
	return nil
}

// MatchToken reports whether the raw token matches the stored hash
func (i *Invite) MatchToken(raw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(i.TokenHash), []byte(raw)) == nil
}

// Expired reports whether the invite is past its expiry
func (i *Invite) Expired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

// Accepted reports whether the invite was already used
func (i *Invite) Accepted() bool {
	return i.AcceptedAt != nil
}
