// Package models contains data structures for the governance engine's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Role is a user's privilege level.
type Role string

const (
	RoleMember    Role = "member"
	RoleTrusted   Role = "trusted"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// roleRanks orders roles from least to most privileged.
var roleRanks = map[Role]int{
	RoleMember:    0,
	RoleTrusted:   1,
	RoleModerator: 2,
	RoleAdmin:     3,
}

// Rank returns the ordering of the role, or -1 for an unknown role.
func (r Role) Rank() int {
	rank, ok := roleRanks[r]
	if !ok {
		return -1
	}
	return rank
}

// Valid reports whether the role is one of the known privilege levels.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// User represents a SyriaHub account.
type User struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Username   string         `gorm:"unique;not null" json:"username"`
	Email      string         `gorm:"unique;not null" json:"email"`
	Password   string         `gorm:"not null" json:"-"`
	Role       Role           `gorm:"type:varchar(20);not null;default:'member';index" json:"role"`
	TrustScore float64        `gorm:"not null;default:0" json:"trust_score"`
	IsBanned   bool           `gorm:"not null;default:false" json:"is_banned"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsModerator reports whether the user holds moderator privileges or higher.
func (u *User) IsModerator() bool {
	return u.Role.Rank() >= RoleModerator.Rank()
}

// IsAdmin reports whether the user holds admin privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
