package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/utilink-app/dossier-api/workflow"
)

// StatusHistoryEntry is an immutable audit record of one status
// transition. PreviousStatus is null only on the entry written at dossier
// creation. Ordered by created_at, a dossier's entries reconstruct its
// path through the lifecycle, and the newest entry's status must equal
// the dossier's stored status.
type StatusHistoryEntry struct {
	ID             string           `gorm:"primaryKey;size:36" json:"id"`
	DossierID      string           `gorm:"size:36;not null;index" json:"dossier_id"`
	Status         workflow.Status  `gorm:"not null" json:"status"`
	PreviousStatus *workflow.Status `json:"previous_status"`
	Comment        *string          `gorm:"type:text" json:"comment"`
	UserID         string           `gorm:"size:36;not null" json:"user_id"`
	CreatedAt      time.Time        `json:"created_at"`
}

// TableName specifies the table name for the StatusHistoryEntry model
func (StatusHistoryEntry) TableName() string {
	return "status_history"
}

// BeforeCreate assigns a UUID primary key when none was provided
func (e *StatusHistoryEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = NewID()
	}
	return nil
}
