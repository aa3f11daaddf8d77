package models

import (
	"time"

	"gorm.io/gorm"
)

// Customer is the applicant behind a dossier. Customers are created once,
// together with their dossier, and not edited by the application flows.
type Customer struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	FirstName  string    `gorm:"not null" json:"first_name"`
	LastName   string    `gorm:"not null" json:"last_name"`
	Email      string    `gorm:"not null" json:"email"`
	Phone      string    `gorm:"not null" json:"phone"`
	NationalID string    `gorm:"not null" json:"national_id"`
	Street     string    `gorm:"not null" json:"street"`
	City       string    `gorm:"not null" json:"city"`
	PostalCode string    `gorm:"not null" json:"postal_code"`
	Region     string    `gorm:"not null" json:"region"`
	CreatedBy  string    `gorm:"size:36;not null" json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// BeforeCreate assigns a UUID primary key when none was provided
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}
