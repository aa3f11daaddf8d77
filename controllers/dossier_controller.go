package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/utilink-app/dossier-api/config"
	"github.com/utilink-app/dossier-api/models"
	"github.com/utilink-app/dossier-api/services"
	"github.com/utilink-app/dossier-api/workflow"
)

// CreateDossierRequest represents the request body for creating a dossier
// together with its customer
type CreateDossierRequest struct {
	SubscriptionType string  `json:"subscription_type" binding:"required"`
	Notes            *string `json:"notes"`
	Customer         struct {
		FirstName  string `json:"first_name" binding:"required"`
		LastName   string `json:"last_name" binding:"required"`
		Email      string `json:"email" binding:"required,email"`
		Phone      string `json:"phone" binding:"required"`
		NationalID string `json:"national_id" binding:"required"`
		Street     string `json:"street" binding:"required"`
		City       string `json:"city" binding:"required"`
		PostalCode string `json:"postal_code" binding:"required"`
		Region     string `json:"region" binding:"required"`
	} `json:"customer" binding:"required"`
}

// CreateDossier handles POST /api/v1/dossiers - creates the customer, the
// dossier in DRAFT and the initial history entry in one transaction
func CreateDossier(c *gin.Context) {
	user, ok := requireEditCapability(c)
	if !ok {
		return
	}

	var req CreateDossierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return
	}

	if !models.IsValidSubscriptionType(req.SubscriptionType) {
		errorResponse(c, http.StatusBadRequest, "INVALID_SUBSCRIPTION_TYPE", "Subscription type must be water, electricity or both")
		return
	}

	db := config.GetDB()
	var dossier models.Dossier

	err := db.Transaction(func(tx *gorm.DB) error {
		customer := models.Customer{
			FirstName:  req.Customer.FirstName,
			LastName:   req.Customer.LastName,
			Email:      req.Customer.Email,
			Phone:      req.Customer.Phone,
			NationalID: req.Customer.NationalID,
			Street:     req.Customer.Street,
			City:       req.Customer.City,
			PostalCode: req.Customer.PostalCode,
			Region:     req.Customer.Region,
			CreatedBy:  user.ID,
		}
		if err := tx.Create(&customer).Error; err != nil {
			return fmt.Errorf("create customer: %w", err)
		}

		// The dossier is inserted with a placeholder reference and gets
		// its final one before the transaction commits; readers must
		// tolerate the TEMP- shape in any payload captured in between.
		dossier = models.Dossier{
			Reference:        fmt.Sprintf("TEMP-%d", time.Now().UnixMilli()),
			CustomerID:       customer.ID,
			SubscriptionType: req.SubscriptionType,
			Status:           workflow.StatusDraft,
			Notes:            req.Notes,
			CreatedBy:        user.ID,
		}
		if err := tx.Create(&dossier).Error; err != nil {
			return fmt.Errorf("create dossier: %w", err)
		}

		reference, err := nextReference(tx)
		if err != nil {
			return err
		}
		if err := tx.Model(&dossier).Update("reference", reference).Error; err != nil {
			return fmt.Errorf("finalize reference: %w", err)
		}
		dossier.Reference = reference

		entry := models.StatusHistoryEntry{
			DossierID: dossier.ID,
			Status:    workflow.StatusDraft,
			UserID:    user.ID,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("create initial history entry: %w", err)
		}
		return nil
	})
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create dossier")
		return
	}

	services.GetStatsCache().Invalidate(c.Request.Context())

	if err := db.Preload("Customer").First(&dossier, "id = ?", dossier.ID).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load dossier details")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    dossier,
	})
}

// nextReference produces the final dossier reference: DOS-<year>-<seq>,
// sequential within the year
func nextReference(tx *gorm.DB) (string, error) {
	year := time.Now().Year()
	var count int64
	prefix := fmt.Sprintf("DOS-%d-%%", year)
	if err := tx.Model(&models.Dossier{}).Where("reference LIKE ?", prefix).Count(&count).Error; err != nil {
		return "", fmt.Errorf("count references: %w", err)
	}
	return fmt.Sprintf("DOS-%d-%06d", year, count+1), nil
}

// ListDossiers handles GET /api/v1/dossiers - lists dossiers with their
// customers, newest first. Optional query filters: status, type, q
// (substring match on reference or customer name).
func ListDossiers(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	db := config.GetDB()
	query := db.Model(&models.Dossier{}).Preload("Customer").Order("dossiers.created_at DESC")

	if status := c.Query("status"); status != "" {
		if !workflow.IsValid(workflow.Status(status)) {
			errorResponse(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown dossier status")
			return
		}
		query = query.Where("status = ?", status)
	}
	if subType := c.Query("type"); subType != "" {
		if !models.IsValidSubscriptionType(subType) {
			errorResponse(c, http.StatusBadRequest, "INVALID_SUBSCRIPTION_TYPE", "Unknown subscription type")
			return
		}
		query = query.Where("subscription_type = ?", subType)
	}
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.
			Joins("JOIN customers ON customers.id = dossiers.customer_id").
			Where("dossiers.reference LIKE ? OR customers.first_name LIKE ? OR customers.last_name LIKE ?", like, like, like)
	}

	var dossiers []models.Dossier
	if err := query.Find(&dossiers).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch dossiers")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dossiers,
	})
}

// GetDossier handles GET /api/v1/dossiers/:id - a missing dossier is a
// renderable 404, not a fault
func GetDossier(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	db := config.GetDB()
	var dossier models.Dossier
	if err := db.Preload("Customer").First(&dossier, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			errorResponse(c, http.StatusNotFound, "DOSSIER_NOT_FOUND", "Dossier not found")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch dossier")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"dossier":  dossier,
			"label":    workflow.Label(dossier.Status),
			"category": workflow.CategoryOf(dossier.Status),
			"progress": workflow.Progress(dossier.Status),
		},
	})
}

// UpdateDossierRequest represents the editable dossier fields. The
// subscription type and reference are fixed at creation.
type UpdateDossierRequest struct {
	AssignedTo       *string          `json:"assigned_to"`
	WorksRequired    *bool            `json:"works_required"`
	QuotationAmount  *decimal.Decimal `json:"quotation_amount"`
	InstallationDate *time.Time       `json:"installation_date"`
	MeterNumber      *string          `json:"meter_number"`
	Notes            *string          `json:"notes"`
}

// UpdateDossier handles PATCH /api/v1/dossiers/:id - field edits outside
// the status workflow
func UpdateDossier(c *gin.Context) {
	if _, ok := requireEditCapability(c); !ok {
		return
	}

	var req UpdateDossierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return
	}

	db := config.GetDB()
	var dossier models.Dossier
	if err := db.First(&dossier, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			errorResponse(c, http.StatusNotFound, "DOSSIER_NOT_FOUND", "Dossier not found")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch dossier")
		return
	}

	updates := map[string]interface{}{}
	if req.AssignedTo != nil {
		updates["assigned_to"] = *req.AssignedTo
	}
	if req.WorksRequired != nil {
		updates["works_required"] = *req.WorksRequired
	}
	if req.QuotationAmount != nil {
		updates["quotation_amount"] = *req.QuotationAmount
	}
	if req.InstallationDate != nil {
		updates["installation_date"] = *req.InstallationDate
	}
	if req.MeterNumber != nil {
		updates["meter_number"] = *req.MeterNumber
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	if len(updates) > 0 {
		if err := db.Model(&dossier).Updates(updates).Error; err != nil {
			errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update dossier")
			return
		}
	}

	if err := db.Preload("Customer").First(&dossier, "id = ?", dossier.ID).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load dossier details")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    dossier,
	})
}

// AdvanceDossierRequest represents the guided-advance confirmation body
type AdvanceDossierRequest struct {
	Confirm bool    `json:"confirm"`
	Comment *string `json:"comment"`
}

// AdvanceDossier handles POST /api/v1/dossiers/:id/advance - the guided
// path. Without confirm it only returns the proposed successor; declining
// mutates nothing. Terminal dossiers and active subscriptions have no
// next step and no action is taken.
func AdvanceDossier(c *gin.Context) {
	user, ok := requireEditCapability(c)
	if !ok {
		return
	}

	var req AdvanceDossierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return
	}

	db := config.GetDB()
	wf := services.NewWorkflowService(db)

	result, hasNext, err := wf.ConfirmAndAdvance(c.Param("id"), user.ID, req.Confirm, req.Comment)
	if err != nil {
		if errors.Is(err, services.ErrDossierNotFound) {
			errorResponse(c, http.StatusNotFound, "DOSSIER_NOT_FOUND", "Dossier not found")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to advance dossier")
		return
	}

	if !hasNext {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"next_status": nil,
				"applied":     false,
			},
		})
		return
	}

	if result.Applied {
		services.GetStatsCache().Invalidate(c.Request.Context())
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}

// SetDossierStatusRequest represents a direct status assignment
type SetDossierStatusRequest struct {
	Status  workflow.Status `json:"status" binding:"required"`
	Comment *string         `json:"comment"`
}

// SetDossierStatus handles PUT /api/v1/dossiers/:id/status - the direct
// assignment path. Any valid status may be written, including REJECTED
// and CANCELLED; the guided sequence is not enforced here.
func SetDossierStatus(c *gin.Context) {
	user, ok := requireEditCapability(c)
	if !ok {
		return
	}

	var req SetDossierStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request data: "+err.Error())
		return
	}

	db := config.GetDB()
	wf := services.NewWorkflowService(db)

	entry, err := wf.RequestTransition(c.Param("id"), req.Status, user.ID, req.Comment)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUnknownStatus):
			errorResponse(c, http.StatusBadRequest, "INVALID_STATUS", "Unknown dossier status")
		case errors.Is(err, services.ErrDossierNotFound):
			errorResponse(c, http.StatusNotFound, "DOSSIER_NOT_FOUND", "Dossier not found")
		default:
			errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update status")
		}
		return
	}

	services.GetStatsCache().Invalidate(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entry,
	})
}

// ListDossierHistory handles GET /api/v1/dossiers/:id/history - the audit
// trail, newest first
func ListDossierHistory(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	db := config.GetDB()
	var dossier models.Dossier
	if err := db.First(&dossier, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			errorResponse(c, http.StatusNotFound, "DOSSIER_NOT_FOUND", "Dossier not found")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch dossier")
		return
	}

	var entries []models.StatusHistoryEntry
	if err := db.Where("dossier_id = ?", dossier.ID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch status history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    entries,
	})
}
