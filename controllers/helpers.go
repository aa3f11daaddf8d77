package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/utilink-app/dossier-api/config"
	"github.com/utilink-app/dossier-api/middleware"
	"github.com/utilink-app/dossier-api/models"
)

// errorResponse writes the standard error envelope
func errorResponse(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// currentUser resolves the acting agent from the validated JWT. It writes
// the error response itself and returns false when the caller should stop.
func currentUser(c *gin.Context) (*models.User, bool) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return nil, false
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		errorResponse(c, http.StatusNotFound, "USER_NOT_FOUND", "User profile not found. Please create a profile first.")
		return nil, false
	}

	return &user, true
}

// requireEditCapability resolves the acting agent and checks the dossier
// edit capability. Enforcement of finer-grained rules stays with the
// identity provider; this only gates the mutating endpoints.
func requireEditCapability(c *gin.Context) (*models.User, bool) {
	user, ok := currentUser(c)
	if !ok {
		return nil, false
	}

	if !user.CanEditDossiers() {
		errorResponse(c, http.StatusForbidden, "FORBIDDEN", "Your role does not allow editing dossiers")
		return nil, false
	}

	return user, true
}
