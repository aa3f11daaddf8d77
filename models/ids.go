package models

import "github.com/google/uuid"

// NewID returns a fresh dossier-store identifier. Identifiers are opaque
// UUID strings across all tables.
func NewID() string {
	return uuid.NewString()
}
