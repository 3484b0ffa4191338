package model

import (
	"time"

	"gorm.io/gorm"
)

// Roles. Exactly one per user; defaults to RoleEmployee at registration.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// ValidRole reports whether role is a member of the fixed role enumeration.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}

// User represents an account in the system.
//
// Password is a transient plaintext field: it is set on registration or on a
// password change and consumed (hashed into PasswordHash) by the store before
// persisting. It is never written to the database or serialized.
type User struct {
	gorm.Model
	Username     string   `gorm:"uniqueIndex;not null" json:"username"`
	Email        string   `gorm:"uniqueIndex;not null" json:"email"` // stored lowercased, matched case-insensitively
	Password     string   `gorm:"-" json:"-"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         string   `gorm:"default:'employee'" json:"role"`
	Permissions  []string `gorm:"serializer:json" json:"permissions"` // explicit grants on top of role defaults
	IsActive     bool     `gorm:"default:true" json:"is_active"`

	// Lockout state. LoginAttempts counts consecutive failures since the
	// last success or lock expiry; LockUntil is set when the threshold is hit.
	LoginAttempts int        `gorm:"default:0" json:"-"`
	LockUntil     *time.Time `json:"-"`
	LastLogin     *time.Time `json:"last_login"`
}

// IsLocked reports whether the account is currently under a lockout window.
func (u *User) IsLocked() bool {
	return u.LockUntil != nil && u.LockUntil.After(time.Now())
}

// Profile is the sanitized projection returned by auth endpoints.
// It never includes the password hash or lockout counters.
type Profile struct {
	ID          uint       `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Permissions []string   `json:"permissions"`
	IsActive    bool       `json:"is_active"`
	LastLogin   *time.Time `json:"last_login,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToProfile builds the sanitized projection of the user.
func (u *User) ToProfile() Profile {
	perms := u.Permissions
	if perms == nil {
		perms = []string{}
	}
	return Profile{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		Permissions: perms,
		IsActive:    u.IsActive,
		LastLogin:   u.LastLogin,
		CreatedAt:   u.CreatedAt,
	}
}
