package services

import (
	"fmt"
	"mime/multipart"
	"sync"
)

// MockStorageService is an in-memory implementation of StorageInterface
// for testing
type MockStorageService struct {
	objects map[string][]byte // storage key -> file content
	mu      sync.RWMutex

	// FailUploads makes every upload return an error, for exercising the
	// store-rejection path
	FailUploads bool
}

// NewMockStorageService creates a new mock storage service
func NewMockStorageService() *MockStorageService {
	return &MockStorageService{
		objects: make(map[string][]byte),
	}
}

// SetAsMockForTesting sets this mock as the global storage service instance
func (m *MockStorageService) SetAsMockForTesting() {
	SetStorageService(m)
}

// UploadDocument simulates storing a document
func (m *MockStorageService) UploadDocument(dossierID string, fileHeader *multipart.FileHeader) (string, error) {
	if m.FailUploads {
		return "", fmt.Errorf("mock storage: uploads disabled")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	content := make([]byte, fileHeader.Size)
	if _, err := file.Read(content); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	storagePath := fmt.Sprintf("%s/mock_%s", dossierID, fileHeader.Filename)

	m.mu.Lock()
	m.objects[storagePath] = content
	m.mu.Unlock()

	return storagePath, nil
}

// GetSignedURL simulates generating a presigned URL
func (m *MockStorageService) GetSignedURL(storagePath string) (string, error) {
	if storagePath == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.objects[storagePath]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("object not found in mock storage: %s", storagePath)
	}

	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", storagePath), nil
}

// DeleteDocument simulates deleting a stored object
func (m *MockStorageService) DeleteDocument(storagePath string) error {
	if storagePath == "" {
		return nil
	}

	m.mu.Lock()
	delete(m.objects, storagePath)
	m.mu.Unlock()

	return nil
}

// ObjectExists checks if an object exists in mock storage
func (m *MockStorageService) ObjectExists(storagePath string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.objects[storagePath]
	return exists
}

// StoredObjects returns a copy of everything uploaded (for assertions)
func (m *MockStorageService) StoredObjects() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	objects := make(map[string][]byte, len(m.objects))
	for k, v := range m.objects {
		objects[k] = v
	}
	return objects
}

// Clear removes all objects from mock storage
func (m *MockStorageService) Clear() {
	m.mu.Lock()
	m.objects = make(map[string][]byte)
	m.mu.Unlock()
}
