package models

import (
	"time"

	"gorm.io/gorm"
)

// Role values used by the access-control middleware.
const (
	RoleAdmin    = "ADMIN"
	RoleOperator = "OPERATOR"
	RolePetani   = "PETANI"
)

// UserAuth represents a user account in the system
// Standardized: Go (PascalCase) -> DB (snake_case) -> JSON (camelCase)
type UserAuth struct {
	ID                  string     `gorm:"primaryKey;type:uuid" json:"id"`
	Username            string     `gorm:"unique;not null" json:"username"`
	Password            string     `gorm:"not null" json:"-"`
	Email               string     `gorm:"unique;not null" json:"email"`
	Name                string     `json:"name,omitempty"`
	Role                string     `gorm:"default:'OPERATOR'" json:"role"`
	KoperasiID          *uint      `gorm:"index" json:"koperasiId,omitempty"`
	IsActive            bool       `gorm:"default:true" json:"isActive"`
	LastLogin           *time.Time `json:"lastLogin,omitempty"`
	FailedLoginAttempts int        `gorm:"default:0" json:"-"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Koperasi *Koperasi `gorm:"foreignKey:KoperasiID" json:"koperasi,omitempty"`
}

// TableName specifies the table name for UserAuth model
func (UserAuth) TableName() string {
	return "user_auths"
}

// CanWrite reports whether the role may mutate cooperative data.
func (u *UserAuth) CanWrite() bool {
	return u.Role == RoleAdmin || u.Role == RoleOperator
}
