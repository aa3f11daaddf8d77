package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/utilink-app/dossier-api/config"
	"github.com/utilink-app/dossier-api/models"
	"github.com/utilink-app/dossier-api/services"
	"github.com/utilink-app/dossier-api/workflow"
)

// DashboardStats aggregates dossier counts for the dashboard view
type DashboardStats struct {
	TotalDossiers      int64                     `json:"total_dossiers"`
	ActiveDossiers     int64                     `json:"active_dossiers"`
	PendingReview      int64                     `json:"pending_review"`
	CompletedThisMonth int64                     `json:"completed_this_month"`
	ByStatus           map[workflow.Status]int64 `json:"by_status"`
	ByType             map[string]int64          `json:"by_type"`
}

// GetDashboardStats handles GET /api/v1/dashboard/stats. Aggregates are
// cached for a minute; the cache fails open so Redis outages only cost
// the extra query.
func GetDashboardStats(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	cache := services.GetStatsCache()
	var cached DashboardStats
	if cache.Get(c.Request.Context(), &cached) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    cached,
		})
		return
	}

	db := config.GetDB()

	var rows []struct {
		Status           workflow.Status
		SubscriptionType string
	}
	if err := db.Model(&models.Dossier{}).
		Select("status", "subscription_type").
		Find(&rows).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to aggregate dossiers")
		return
	}

	stats := DashboardStats{
		ByStatus: make(map[workflow.Status]int64),
		ByType: map[string]int64{
			models.SubscriptionWater:       0,
			models.SubscriptionElectricity: 0,
			models.SubscriptionBoth:        0,
		},
	}

	for _, row := range rows {
		stats.TotalDossiers++
		stats.ByStatus[row.Status]++
		stats.ByType[row.SubscriptionType]++

		switch row.Status {
		case workflow.StatusSubscriptionActive, workflow.StatusRejected, workflow.StatusCancelled:
			// Settled one way or another; not active
		default:
			stats.ActiveDossiers++
		}
		if row.Status == workflow.StatusTechnicalReview || row.Status == workflow.StatusWorksRequired {
			stats.PendingReview++
		}
	}

	// Completions are counted from the audit trail rather than current
	// statuses, so dossiers that moved on past activation still count
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if err := db.Model(&models.StatusHistoryEntry{}).
		Where("status = ? AND created_at >= ?", workflow.StatusSubscriptionActive, monthStart).
		Count(&stats.CompletedThisMonth).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to aggregate completions")
		return
	}

	cache.Set(c.Request.Context(), stats)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}
