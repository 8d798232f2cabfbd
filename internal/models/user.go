package models

// UserRole grants access to admin-only operations.
type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// User represents an account that can authenticate against the API.
type User struct {
	Base
	Name     string   `gorm:"not null" json:"name"`
	Email    string   `gorm:"uniqueIndex;not null" json:"email"`
	Password string   `gorm:"not null" json:"-"`
	Role     UserRole `gorm:"type:varchar(16);not null" json:"role"`
	IsActive bool     `gorm:"default:true" json:"isActive"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
