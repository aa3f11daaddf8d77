package controllers

import (
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/utilink-app/dossier-api/middleware"
	"github.com/utilink-app/dossier-api/models"
	"github.com/utilink-app/dossier-api/workflow"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Dossier{},
		&models.Document{},
		&models.StatusHistoryEntry{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

// mockAuthMiddleware simulates the Auth0 JWT middleware for testing.
// It sets up the context exactly as the real EnsureValidToken does.
func mockAuthMiddleware(auth0ID, role, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", accessToken)
		c.Set("validated_claims", &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{
				Issuer:  "https://test.auth0.com/",
				Subject: auth0ID,
			},
			CustomClaims: &middleware.CustomClaims{
				Role: role,
			},
		})
		c.Next()
	}
}

// createTestAgent inserts an agent with the given role
func createTestAgent(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()

	agent := models.User{
		Auth0ID: "auth0|" + models.NewID(),
		Name:    "Test Agent",
		Email:   models.NewID() + "@utilink.test",
		Role:    role,
	}
	if err := db.Create(&agent).Error; err != nil {
		t.Fatalf("Failed to create agent: %v", err)
	}
	return &agent
}

// createTestDossier inserts a customer and a dossier at the given status,
// with the initial DRAFT history entry
func createTestDossier(t *testing.T, db *gorm.DB, agent *models.User, status workflow.Status) *models.Dossier {
	t.Helper()

	customer := models.Customer{
		FirstName:  "Fatou",
		LastName:   "Ndiaye",
		Email:      "fatou.ndiaye@example.com",
		Phone:      "+221770000001",
		NationalID: "2751999000456",
		Street:     "5 Avenue Bourguiba",
		City:       "Dakar",
		PostalCode: "11500",
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

	return &dossier
}
