package models

import (
	"time"
)

type User struct {
	UserID     int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	Email      string     `gorm:"column:email;unique" json:"email"`
	Password   string     `gorm:"column:password" json:"-"`
	FullName   string     `gorm:"column:full_name" json:"full_name"`
	Phone      *string    `gorm:"column:phone" json:"phone,omitempty"`
	Role       string     `gorm:"column:role" json:"role"` // admin|user
	IsActive   bool       `gorm:"column:is_active" json:"is_active"`
	OTPEnabled bool       `gorm:"column:otp_enabled" json:"otp_enabled"`
	LastLogin  *time.Time `gorm:"column:last_login" json:"last_login,omitempty"`
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt   *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt   *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Roles []Role `gorm:"many2many:user_roles;joinForeignKey:user_id;joinReferences:role_id" json:"roles,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}

// Role is an approval-chain role. Users are linked through user_roles; the
// primary admin/user distinction lives on User.Role instead.
type Role struct {
	RoleID      int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	Name        string     `gorm:"column:name" json:"name"`
	NameHebrew  string     `gorm:"column:name_hebrew" json:"name_hebrew"`
	Description *string    `gorm:"column:description" json:"description,omitempty"`
	Permissions JSONMap    `gorm:"column:permissions;type:json" json:"permissions"`
	CreateAt    *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt    *time.Time `gorm:"column:update_at" json:"update_at"`
}

type UserRole struct {
	UserRoleID int        `gorm:"primaryKey;column:user_role_id" json:"user_role_id"`
	UserID     int        `gorm:"column:user_id" json:"user_id"`
	RoleID     int        `gorm:"column:role_id" json:"role_id"`
	AssignedBy *int       `gorm:"column:assigned_by" json:"assigned_by,omitempty"`
	CreateAt   *time.Time `gorm:"column:create_at" json:"create_at"`
}

// OTPCode is a single-use second-factor code for admin logins.
type OTPCode struct {
	OTPCodeID int       `gorm:"primaryKey;column:otp_code_id" json:"otp_code_id"`
	UserID    int       `gorm:"column:user_id" json:"user_id"`
	Code      string    `gorm:"column:code" json:"-"`
	ExpiresAt time.Time `gorm:"column:expires_at" json:"expires_at"`
	Used      bool      `gorm:"column:used" json:"used"`
	CreateAt  time.Time `gorm:"column:create_at" json:"create_at"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}

func (UserRole) TableName() string {
	return "user_roles"
}

func (OTPCode) TableName() string {
	return "otp_codes"
}
