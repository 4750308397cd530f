package model

import (
	"time"
)

type UserRole string

const (
	RoleRootAdmin  UserRole = "ROOTADMIN"
	RoleSuperAdmin UserRole = "SUPERADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleUser       UserRole = "USER"
)

// CreatableRole returns the single role a creator of the given role is
// allowed to provision: ROOTADMIN -> SUPERADMIN -> ADMIN -> USER.
func (r UserRole) CreatableRole() (UserRole, bool) {
	switch r {
	case RoleRootAdmin:
		return RoleSuperAdmin, true
	case RoleSuperAdmin:
		return RoleAdmin, true
	case RoleAdmin:
		return RoleUser, true
	}
	return "", false
}

// IsStaff reports whether the role may access the admin surface.
func (r UserRole) IsStaff() bool {
	return r == RoleRootAdmin || r == RoleSuperAdmin || r == RoleAdmin
}

// swagger:model User
type User struct {
	BaseModel
	Name     string    `gorm:"size:100;not null" json:"name"`
	Email    string    `gorm:"size:100;unique;not null" json:"email"`
	Password string    `gorm:"size:100;not null" json:"-"`
	Role     UserRole  `gorm:"size:20;default:'USER';index" json:"role"`
	Disabled bool      `gorm:"default:false" json:"disabled"`
	LastSeen time.Time `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
