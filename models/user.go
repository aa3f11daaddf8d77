package models

import (
	"time"

	"gorm.io/gorm"
)

// Agent roles. Technical agents get read access to dossiers; the other
// three roles carry the edit capability used by the workflow endpoints.
const (
	RoleAdmin      = "admin"
	RoleCommercial = "commercial"
	RoleTechnical  = "technical"
	RoleSupervisor = "supervisor"
)

// User represents an agent handling dossiers
type User struct {
	ID        string         `gorm:"primaryKey;size:36" json:"id"`
	Auth0ID   string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // Auth0 user ID (from 'sub' claim)
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Role      string         `gorm:"not null;default:'commercial'" json:"role"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID primary key when none was provided
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	return nil
}

// CanEditDossiers reports whether the agent holds the edit capability.
// Controllers trust this flag; it is not an authorization system.
func (u *User) CanEditDossiers() bool {
	switch u.Role {
	case RoleAdmin, RoleCommercial, RoleSupervisor:
		return true
	}
	return false
}
