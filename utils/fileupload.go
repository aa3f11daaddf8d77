package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
)

const (
	// MaxDocumentSize is 10MB in bytes
	MaxDocumentSize = 10 * 1024 * 1024
)

// allowedExtensions are the file formats accepted as dossier documents
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateDocumentFile validates the uploaded file format and size
func ValidateDocumentFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxDocumentSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxDocumentSize/(1024*1024)),
		}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExtensions[ext] {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only PDF, PNG and JPEG files are allowed",
		}
	}

	return nil
}

// SafeFilename strips any path components from an uploaded filename
func SafeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "\\", "_")
	return name
}
