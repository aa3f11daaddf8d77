package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/utilink-app/dossier-api/config"
	"github.com/utilink-app/dossier-api/models"
	"github.com/utilink-app/dossier-api/services"
	"github.com/utilink-app/dossier-api/utils"
)

// UploadDocument handles POST /api/v1/dossiers/:id/documents - multipart
// upload of a supporting document. The bytes go to the blob store first,
// then the metadata row is written.
func UploadDocument(c *gin.Context) {
	user, ok := requireEditCapability(c)
	if !ok {
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

	docType := c.PostForm("type")
	if !models.IsValidDocumentType(docType) {
		errorResponse(c, http.StatusBadRequest, "INVALID_DOCUMENT_TYPE", "Document type must be one of: national_id, contract, quotation, installation_report, other")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "MISSING_FILE", "A file is required")
		return
	}

	if err := utils.ValidateDocumentFile(fileHeader); err != nil {
		var uploadErr *utils.FileUploadError
		code := "INVALID_FILE"
		if errors.As(err, &uploadErr) {
			code = uploadErr.Code
		}
		errorResponse(c, http.StatusBadRequest, code, err.Error())
		return
	}

	storage := services.GetStorageService()
	storagePath, err := storage.UploadDocument(dossier.ID, fileHeader)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to store document")
		return
	}

	size := fileHeader.Size
	mimeType := fileHeader.Header.Get("Content-Type")
	document := models.Document{
		DossierID:  dossier.ID,
		Type:       docType,
		Name:       utils.SafeFilename(fileHeader.Filename),
		FilePath:   storagePath,
		FileSize:   &size,
		UploadedBy: user.ID,
	}
	if mimeType != "" {
		document.MimeType = &mimeType
	}

	if err := db.Create(&document).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to record document")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    document,
	})
}

// ListDocuments handles GET /api/v1/dossiers/:id/documents - newest first
func ListDocuments(c *gin.Context) {
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

	var documents []models.Document
	if err := db.Where("dossier_id = ?", dossier.ID).
		Order("uploaded_at DESC").
		Find(&documents).Error; err != nil {
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch documents")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    documents,
	})
}

// GetDocumentURL handles GET /api/v1/documents/:id/url - returns a signed
// download URL valid for one hour
func GetDocumentURL(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	db := config.GetDB()
	var document models.Document
	if err := db.First(&document, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			errorResponse(c, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found")
			return
		}
		errorResponse(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to fetch document")
		return
	}

	url, err := services.GetStorageService().GetSignedURL(document.FilePath)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to generate download URL")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"url":           url,
			"expires_in":    int(services.SignedURLExpiry.Seconds()),
			"document_id":   document.ID,
			"document_name": document.Name,
		},
	})
}
