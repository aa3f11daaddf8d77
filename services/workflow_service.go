package services

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/utilink-app/dossier-api/models"
	"github.com/utilink-app/dossier-api/workflow"
)

// Workflow transition errors
var (
	ErrUnknownStatus   = errors.New("unknown dossier status")
	ErrDossierNotFound = errors.New("dossier not found")
)

// WorkflowService mediates dossier status transitions. Every transition,
// guided or direct, goes through RequestTransition: the status update and
// the history append happen in one database transaction so the stored
// status and the newest audit entry can never disagree.
type WorkflowService struct {
	db *gorm.DB
}

// NewWorkflowService creates a workflow service over the given database
func NewWorkflowService(db *gorm.DB) *WorkflowService {
	return &WorkflowService{db: db}
}

// ComputeNextStep returns the guided successor of current, or false when
// current is terminal, unknown, or the last linear status. This is the
// only transition the service proposes on its own; direct assignment to
// an arbitrary status bypasses it.
func (s *WorkflowService) ComputeNextStep(current workflow.Status) (workflow.Status, bool) {
	return workflow.NextOf(current)
}

// RequestTransition sets the dossier's status to target and appends the
// matching history entry. The entry's previous_status is the status the
// dossier held immediately before this call. Both writes commit together
// or not at all.
func (s *WorkflowService) RequestTransition(dossierID string, target workflow.Status, actingUserID string, comment *string) (*models.StatusHistoryEntry, error) {
	if !workflow.IsValid(target) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStatus, target)
	}

	var entry *models.StatusHistoryEntry
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var dossier models.Dossier
		if err := tx.First(&dossier, "id = ?", dossierID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDossierNotFound
			}
			return fmt.Errorf("load dossier: %w", err)
		}

		previous := dossier.Status
		if err := tx.Model(&models.Dossier{}).
			Where("id = ?", dossierID).
			Update("status", target).Error; err != nil {
			return fmt.Errorf("update status: %w", err)
		}

		entry = &models.StatusHistoryEntry{
			DossierID:      dossierID,
			Status:         target,
			PreviousStatus: &previous,
			Comment:        comment,
			UserID:         actingUserID,
		}
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("append history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"dossier_id": dossierID,
		"status":     target,
		"user_id":    actingUserID,
	}).Info("dossier status updated")
	return entry, nil
}

// AdvanceResult describes the outcome of a guided advance
type AdvanceResult struct {
	// NextStatus is the proposed or applied successor status
	NextStatus workflow.Status `json:"next_status"`
	// Applied is true only when the transition was confirmed and written
	Applied bool `json:"applied"`
	// Entry is the appended history record when Applied
	Entry *models.StatusHistoryEntry `json:"entry,omitempty"`
}

// ConfirmAndAdvance moves a dossier one lifecycle step forward. Without
// confirmation it only reports the proposed successor; declining is a
// no-op, not a failure. The second return value is false when the
// dossier has no next step (terminal or already active).
func (s *WorkflowService) ConfirmAndAdvance(dossierID string, actingUserID string, confirmed bool, comment *string) (*AdvanceResult, bool, error) {
	var dossier models.Dossier
	if err := s.db.First(&dossier, "id = ?", dossierID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrDossierNotFound
		}
		return nil, false, fmt.Errorf("load dossier: %w", err)
	}

	next, ok := workflow.NextOf(dossier.Status)
	if !ok {
		return nil, false, nil
	}
	if !confirmed {
		return &AdvanceResult{NextStatus: next}, true, nil
	}

	entry, err := s.RequestTransition(dossierID, next, actingUserID, comment)
	if err != nil {
		return nil, true, err
	}
	return &AdvanceResult{NextStatus: next, Applied: true, Entry: entry}, true, nil
}
