package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/utilink-app/dossier-api/config"
	"github.com/utilink-app/dossier-api/middleware"
	"github.com/utilink-app/dossier-api/models"
	"github.com/utilink-app/dossier-api/services"
)

// CreateUser handles POST /api/v1/users - creates an agent profile from
// Auth0 userinfo. Requires authentication; name and email come from the
// identity provider, the role from the token's custom claim.
func CreateUser(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user ID from token")
		return
	}

	accessToken, err := middleware.GetAccessToken(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, "MISSING_TOKEN", "Access token not found")
		return
	}

	cfg := config.GetConfig()
	auth0Service := services.NewAuth0Service(cfg)
	userInfo, err := auth0Service.GetUserInfo(accessToken)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "AUTH0_ERROR", "Failed to fetch user information from Auth0")
		return
	}

	if userInfo.Email == "" {
		errorResponse(c, http.StatusBadRequest, "MISSING_EMAIL", "Email not provided by Auth0")
		return
	}
	if userInfo.Name == "" {
		errorResponse(c, http.StatusBadRequest, "MISSING_NAME", "Name not provided by Auth0")
		return
	}

	role := models.RoleCommercial
	if claims, err := middleware.GetClaims(c); err == nil {
		if customClaims, ok := claims.CustomClaims.(*middleware.CustomClaims); ok && customClaims.Role != "" {
			role = customClaims.Role
		}
	}

	user := models.User{
		Auth0ID: auth0ID,
		Name:    userInfo.Name,
		Email:   userInfo.Email,
		Role:    role,
	}

	db := config.GetDB()
	if err := db.Create(&user).Error; err != nil {
		// Duplicate detection that works with both PostgreSQL and SQLite
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique") {
			errorResponse(c, http.StatusConflict, "USER_EXISTS", "A user with this Auth0 ID or email already exists")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create user")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    user,
	})
}

// GetMyProfile handles GET /api/v1/users/me - gets current user's profile
func GetMyProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}
