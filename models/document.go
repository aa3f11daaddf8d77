package models

import (
	"time"

	"gorm.io/gorm"
)

// Document types a dossier can carry
const (
	DocumentNationalID         = "national_id"
	DocumentContract           = "contract"
	DocumentQuotation          = "quotation"
	DocumentInstallationReport = "installation_report"
	DocumentOther              = "other"
)

// Document is an uploaded file attached to a dossier. The bytes live in
// the blob store under FilePath; this row only records metadata. The
// version counter is advertised for future re-uploads; incrementing it is
// a store concern, no versioning flow exists here.
type Document struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	DossierID  string    `gorm:"size:36;not null;index" json:"dossier_id"`
	Type       string    `gorm:"not null" json:"type"`
	Name       string    `gorm:"not null" json:"name"`
	FilePath   string    `gorm:"not null" json:"file_path"`
	FileSize   *int64    `json:"file_size"`
	MimeType   *string   `json:"mime_type"`
	Version    int       `gorm:"not null;default:1" json:"version"`
	UploadedAt time.Time `gorm:"autoCreateTime" json:"uploaded_at"`
	UploadedBy string    `gorm:"size:36;not null" json:"uploaded_by"`
}

// TableName specifies the table name for the Document model
func (Document) TableName() string {
	return "documents"
}

// BeforeCreate assigns a UUID primary key when none was provided
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = NewID()
	}
	return nil
}

// IsValidDocumentType checks the fixed document taxonomy
func IsValidDocumentType(t string) bool {
	switch t {
	case DocumentNationalID, DocumentContract, DocumentQuotation,
		DocumentInstallationReport, DocumentOther:
		return true
	}
	return false
}
