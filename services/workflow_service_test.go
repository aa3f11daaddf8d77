package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/utilink-app/dossier-api/models"
	"github.com/utilink-app/dossier-api/workflow"
)

func setupWorkflowTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Dossier{},
		&models.StatusHistoryEntry{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// seedDossier creates an agent, a customer and a dossier at the given
// status with its initial DRAFT history entry
func seedDossier(t *testing.T, db *gorm.DB, status workflow.Status) (*models.Dossier, *models.User) {
	t.Helper()

	agent := models.User{
		Auth0ID: "auth0|agent-" + models.NewID(),
		Name:    "Awa Diop",
		Email:   models.NewID() + "@utilink.test",
		Role:    models.RoleCommercial,
	}
	if err := db.Create(&agent).Error; err != nil {
		t.Fatalf("Failed to create agent: %v", err)
	}

	customer := models.Customer{
		FirstName:  "Moussa",
		LastName:   "Fall",
		Email:      "moussa.fall@example.com",
		Phone:      "+221770000000",
		NationalID: "1751999000123",
		Street:     "12 Rue de Thiong",
		City:       "Dakar",
		PostalCode: "10200",
		Region:     "Dakar",
		CreatedBy:  agent.ID,
	}
	if err := db.Create(&customer).Error; err != nil {
		t.Fatalf("Failed to create customer: %v", err)
	}

	dossier := models.Dossier{
		Reference:        "DOS-2026-" + models.NewID()[:6],
		CustomerID:       customer.ID,
		SubscriptionType: models.SubscriptionWater,
		Status:           status,
		CreatedBy:        agent.ID,
	}
	if err := db.Create(&dossier).Error; err != nil {
		t.Fatalf("Failed to create dossier: %v", err)
	}

	initial := models.StatusHistoryEntry{
		DossierID: dossier.ID,
		Status:    workflow.StatusDraft,
		UserID:    agent.ID,
	}
	if err := db.Create(&initial).Error; err != nil {
		t.Fatalf("Failed to create initial history entry: %v", err)
	}

	return &dossier, &agent
}

func historyCount(t *testing.T, db *gorm.DB, dossierID string) int64 {
	t.Helper()
	var count int64
	if err := db.Model(&models.StatusHistoryEntry{}).Where("dossier_id = ?", dossierID).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count history: %v", err)
	}
	return count
}

func TestRequestTransitionWritesStatusAndHistoryTogether(t *testing.T) {
	db := setupWorkflowTestDB(t)
	dossier, agent := seedDossier(t, db, workflow.StatusDraft)
	wf := NewWorkflowService(db)

	comment := "pièces complètes"
	entry, err := wf.RequestTransition(dossier.ID, workflow.StatusDossierComplete, agent.ID, &comment)
	assert.NoError(t, err)
	assert.NotNil(t, entry)
	assert.Equal(t, workflow.StatusDossierComplete, entry.Status)
	assert.NotNil(t, entry.PreviousStatus)
	assert.Equal(t, workflow.StatusDraft, *entry.PreviousStatus)
	assert.Equal(t, agent.ID, entry.UserID)
	assert.Equal(t, &comment, entry.Comment)

	// The stored status and the newest history entry agree
	var reloaded models.Dossier
	assert.NoError(t, db.First(&reloaded, "id = ?", dossier.ID).Error)
	assert.Equal(t, workflow.StatusDossierComplete, reloaded.Status)

	var latest models.StatusHistoryEntry
	assert.NoError(t, db.Where("dossier_id = ?", dossier.ID).Order("created_at DESC").First(&latest).Error)
	assert.Equal(t, reloaded.Status, latest.Status)
	assert.Equal(t, int64(2), historyCount(t, db, dossier.ID))
}

func TestRequestTransitionUnknownStatus(t *testing.T) {
	db := setupWorkflowTestDB(t)
	dossier, agent := seedDossier(t, db, workflow.StatusDraft)
	wf := NewWorkflowService(db)

	before := historyCount(t, db, dossier.ID)

	_, err := wf.RequestTransition(dossier.ID, workflow.Status("NOT_A_STATUS"), agent.ID, nil)
	assert.ErrorIs(t, err, ErrUnknownStatus)

	// Nothing committed: status and history count unchanged
	var reloaded models.Dossier
	assert.NoError(t, db.First(&reloaded, "id = ?", dossier.ID).Error)
	assert.Equal(t, workflow.StatusDraft, reloaded.Status)
	assert.Equal(t, before, historyCount(t, db, dossier.ID))
}

func TestRequestTransitionMissingDossier(t *testing.T) {
	db := setupWorkflowTestDB(t)
	_, agent := seedDossier(t, db, workflow.StatusDraft)
	wf := NewWorkflowService(db)

	_, err := wf.RequestTransition(models.NewID(), workflow.StatusDossierComplete, agent.ID, nil)
	assert.ErrorIs(t, err, ErrDossierNotFound)

	// No stray history rows were written for the unknown dossier
	var total int64
	assert.NoError(t, db.Model(&models.StatusHistoryEntry{}).Count(&total).Error)
	assert.Equal(t, int64(1), total)
}

func TestRequestTransitionRollsBackWhenHistoryAppendFails(t *testing.T) {
	db := setupWorkflowTestDB(t)
	dossier, agent := seedDossier(t, db, workflow.StatusDraft)
	wf := NewWorkflowService(db)

	// Dropping the history table makes the second write of the pair fail
	// after the status update succeeded inside the transaction
	assert.NoError(t, db.Migrator().DropTable(&models.StatusHistoryEntry{}))

	_, err := wf.RequestTransition(dossier.ID, workflow.StatusDossierComplete, agent.ID, nil)
	assert.Error(t, err)

	// The status update rolled back with the failed append
	var reloaded models.Dossier
	assert.NoError(t, db.First(&reloaded, "id = ?", dossier.ID).Error)
	assert.Equal(t, workflow.StatusDraft, reloaded.Status)
}

func TestConfirmAndAdvanceConfirmed(t *testing.T) {
	db := setupWorkflowTestDB(t)
	dossier, agent := seedDossier(t, db, workflow.StatusContractSigned)
	wf := NewWorkflowService(db)

	result, hasNext, err := wf.ConfirmAndAdvance(dossier.ID, agent.ID, true, nil)
	assert.NoError(t, err)
	assert.True(t, hasNext)
	assert.True(t, result.Applied)
	assert.Equal(t, workflow.StatusMeterScheduled, result.NextStatus)

	var reloaded models.Dossier
	assert.NoError(t, db.First(&reloaded, "id = ?", dossier.ID).Error)
	assert.Equal(t, workflow.StatusMeterScheduled, reloaded.Status)

	var latest models.StatusHistoryEntry
	assert.NoError(t, db.Where("dossier_id = ?", dossier.ID).Order("created_at DESC").First(&latest).Error)
	assert.Equal(t, workflow.StatusMeterScheduled, latest.Status)
	assert.Equal(t, workflow.StatusContractSigned, *latest.PreviousStatus)
}

func TestConfirmAndAdvanceDeclinedIsANoOp(t *testing.T) {
	db := setupWorkflowTestDB(t)
	dossier, agent := seedDossier(t, db, workflow.StatusContractSigned)
	wf := NewWorkflowService(db)

	before := historyCount(t, db, dossier.ID)

	result, hasNext, err := wf.ConfirmAndAdvance(dossier.ID, agent.ID, false, nil)
	assert.NoError(t, err)
	assert.True(t, hasNext)
	assert.False(t, result.Applied)
	assert.Equal(t, workflow.StatusMeterScheduled, result.NextStatus)

	var reloaded models.Dossier
	assert.NoError(t, db.First(&reloaded, "id = ?", dossier.ID).Error)
	assert.Equal(t, workflow.StatusContractSigned, reloaded.Status)
	assert.Equal(t, before, historyCount(t, db, dossier.ID))
}

func TestConfirmAndAdvanceNoNextStep(t *testing.T) {
	db := setupWorkflowTestDB(t)
	wf := NewWorkflowService(db)

	for _, status := range []workflow.Status{
		workflow.StatusSubscriptionActive,
		workflow.StatusRejected,
		workflow.StatusCancelled,
	} {
		dossier, agent := seedDossier(t, db, status)
		before := historyCount(t, db, dossier.ID)

		result, hasNext, err := wf.ConfirmAndAdvance(dossier.ID, agent.ID, true, nil)
		assert.NoError(t, err)
		assert.False(t, hasNext, "no next step from %s", status)
		assert.Nil(t, result)

		var reloaded models.Dossier
		assert.NoError(t, db.First(&reloaded, "id = ?", dossier.ID).Error)
		assert.Equal(t, status, reloaded.Status)
		assert.Equal(t, before, historyCount(t, db, dossier.ID))
	}
}

func TestDirectAssignmentToTerminal(t *testing.T) {
	db := setupWorkflowTestDB(t)
	dossier, agent := seedDossier(t, db, workflow.StatusDraft)
	wf := NewWorkflowService(db)

	// The guided sequence does not apply to direct assignment: DRAFT may
	// jump straight to REJECTED
	comment := "dossier irrecevable"
	entry, err := wf.RequestTransition(dossier.ID, workflow.StatusRejected, agent.ID, &comment)
	assert.NoError(t, err)
	assert.Equal(t, workflow.StatusRejected, entry.Status)
	assert.Equal(t, workflow.StatusDraft, *entry.PreviousStatus)

	var reloaded models.Dossier
	assert.NoError(t, db.First(&reloaded, "id = ?", dossier.ID).Error)
	assert.True(t, workflow.IsTerminal(reloaded.Status))

	_, hasNext := wf.ComputeNextStep(reloaded.Status)
	assert.False(t, hasNext)
}

func TestComputeNextStepMatchesLifecycle(t *testing.T) {
	wf := NewWorkflowService(nil)

	next, ok := wf.ComputeNextStep(workflow.StatusDraft)
	assert.True(t, ok)
	assert.Equal(t, workflow.StatusDossierComplete, next)

	_, ok = wf.ComputeNextStep(workflow.StatusSubscriptionActive)
	assert.False(t, ok)
}
