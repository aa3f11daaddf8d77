package utils

import (
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
)

func header(name string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{Filename: name, Size: size}
}

func TestValidateDocumentFile(t *testing.T) {
	tests := []struct {
		name         string
		fileHeader   *multipart.FileHeader
		expectedCode string
	}{
		{"Accept PDF", header("cni.pdf", 1024), ""},
		{"Accept PNG", header("photo.PNG", 2048), ""},
		{"Accept JPEG", header("scan.jpeg", 2048), ""},
		{"Accept JPG", header("scan.jpg", 2048), ""},
		{"Reject oversized file", header("contrat.pdf", MaxDocumentSize+1), "FILE_TOO_LARGE"},
		{"Reject executable", header("setup.exe", 1024), "INVALID_FILE_FORMAT"},
		{"Reject extensionless", header("document", 1024), "INVALID_FILE_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocumentFile(tt.fileHeader)
			if tt.expectedCode == "" {
				assert.NoError(t, err)
				return
			}

			assert.Error(t, err)
			uploadErr, ok := err.(*FileUploadError)
			assert.True(t, ok)
			assert.Equal(t, tt.expectedCode, uploadErr.Code)
		})
	}
}

func TestSafeFilename(t *testing.T) {
	assert.Equal(t, "cni.pdf", SafeFilename("cni.pdf"))
	assert.Equal(t, "cni.pdf", SafeFilename("../../etc/cni.pdf"))
	assert.NotContains(t, SafeFilename("..\\windows\\cni.pdf"), "\\")
}
