package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/utilink-app/dossier-api/workflow"
)

// Subscription types a dossier can request
const (
	SubscriptionWater       = "water"
	SubscriptionElectricity = "electricity"
	SubscriptionBoth        = "both"
)

// Dossier is a case file tracking one customer's utility-subscription
// request. The subscription type is fixed at creation; the status moves
// through the workflow lifecycle.
type Dossier struct {
	ID               string           `gorm:"primaryKey;size:36" json:"id"`
	Reference        string           `gorm:"uniqueIndex;not null" json:"reference"`
	CustomerID       string           `gorm:"size:36;not null;index" json:"customer_id"`
	Customer         *Customer        `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	SubscriptionType string           `gorm:"not null" json:"subscription_type"` // water, electricity, both
	Status           workflow.Status  `gorm:"not null;default:'DRAFT';index" json:"status"`
	AssignedTo       *string          `gorm:"size:36" json:"assigned_to"`
	WorksRequired    bool             `gorm:"not null;default:false" json:"works_required"`
	QuotationAmount  *decimal.Decimal `gorm:"type:decimal(12,2)" json:"quotation_amount"`
	InstallationDate *time.Time       `json:"installation_date"`
	MeterNumber      *string          `json:"meter_number"`
	Notes            *string          `gorm:"type:text" json:"notes"`
	CreatedBy        string           `gorm:"size:36;not null" json:"created_by"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// TableName specifies the table name for the Dossier model
func (Dossier) TableName() string {
	return "dossiers"
}

// BeforeCreate assigns a UUID primary key when none was provided
func (d *Dossier) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = NewID()
	}
	return nil
}

// IsValidSubscriptionType checks the fixed subscription-type taxonomy
func IsValidSubscriptionType(t string) bool {
	switch t {
	case SubscriptionWater, SubscriptionElectricity, SubscriptionBoth:
		return true
	}
	return false
}
