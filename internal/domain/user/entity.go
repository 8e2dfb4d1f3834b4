package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Role represents user role in the system (matches user_role enum)
type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
	RoleAgent Role = "agent"
	RoleAdmin Role = "admin"
)

// Status represents user status (matches user_status enum)
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusBanned    Status = "banned"
)

// User represents a user account (matches users table)
type User struct {
	ID           uuid.UUID      `db:"id"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	FirstName    string         `db:"first_name"`
	LastName     string         `db:"last_name"`
	Phone        sql.NullString `db:"phone"`
	Role         Role           `db:"role"`
	Status       Status         `db:"status"`
	IsBanned     bool           `db:"is_banned"`
	AvatarURL    sql.NullString `db:"avatar_url"`

	// Login tracking
	LastLoginAt sql.NullTime   `db:"last_login_at"`
	LastLoginIP sql.NullString `db:"last_login_ip"`

	// Timestamps
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsGuest returns true if user is a guest
func (u *User) IsGuest() bool {
	return u.Role == RoleGuest
}

// IsHost returns true if user is a host
func (u *User) IsHost() bool {
	return u.Role == RoleHost
}

// IsAgent returns true if user is an agent
func (u *User) IsAgent() bool {
	return u.Role == RoleAgent
}

// IsAdmin returns true if user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanManageProperties returns true if user can create and manage listings
func (u *User) CanManageProperties() bool {
	return u.Role == RoleHost || u.Role == RoleAgent || u.Role == RoleAdmin
}

// FullName returns the display name
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
