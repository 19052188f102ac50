package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role codes as constants
const (
	RoleAdmin  = "admin"
	RoleTeller = "teller"
)

// ValidRole reports whether code is a role the system knows.
func ValidRole(code string) bool {
	return code == RoleAdmin || code == RoleTeller
}

// User represents an authenticated user in the system. Tellers can check out
// carts; only admins may mutate the catalog, users and settings.
type User struct {
	BaseModel
	Username     string     `gorm:"type:varchar(80);uniqueIndex;not null" json:"username" validate:"required"`
	Password     string     `gorm:"type:varchar(255);not null" json:"-"` // Hidden from JSON
	Role         string     `gorm:"type:varchar(20);not null;default:'teller'" json:"role" validate:"required,oneof=admin teller"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	TokenVersion string     `gorm:"type:varchar(255);default:''" json:"-"` // For single session enforcement
	LastSeenAt   *time.Time `json:"last_seen_at,omitempty"`
}

// SetPassword hashes and sets the user's password
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserResponse is used for API responses (without sensitive data)
type UserResponse struct {
	ID         uint       `json:"id"`
	Username   string     `json:"username"`
	Role       string     `json:"role"`
	IsActive   bool       `json:"is_active"`
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Role:       u.Role,
		IsActive:   u.IsActive,
		LastSeenAt: u.LastSeenAt,
	}
}
