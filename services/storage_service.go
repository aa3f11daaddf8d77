package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"

	appConfig "github.com/utilink-app/dossier-api/config"
)

// SignedURLExpiry is how long a generated download URL stays valid
const SignedURLExpiry = time.Hour

// StorageInterface defines the interface for document blob storage
type StorageInterface interface {
	// UploadDocument stores the file bytes under a key scoped to the
	// dossier and returns that key
	UploadDocument(dossierID string, fileHeader *multipart.FileHeader) (string, error)
	// GetSignedURL returns a time-limited download URL for a stored object
	GetSignedURL(storagePath string) (string, error)
	DeleteDocument(storagePath string) error
}

// StorageService handles all S3-related operations for dossier documents
type StorageService struct {
	client *s3.Client
	bucket string
}

var storageServiceInstance StorageInterface

// InitStorageService initializes the storage service with AWS credentials
func InitStorageService() (StorageInterface, error) {
	cfg := appConfig.GetConfig()

	awsConfig, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(cfg.AWSRegion),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig)

	storageServiceInstance = &StorageService{
		client: client,
		bucket: cfg.AWSS3Bucket,
	}

	return storageServiceInstance, nil
}

// GetStorageService returns the initialized storage service instance
func GetStorageService() StorageInterface {
	return storageServiceInstance
}

// SetStorageService sets the storage service instance (primarily for testing)
func SetStorageService(service StorageInterface) {
	storageServiceInstance = service
}

// UploadDocument uploads a file to S3 and returns the storage key.
// Keys are namespaced by dossier: {dossierID}/{millis}_{filename}
func (s *StorageService) UploadDocument(dossierID string, fileHeader *multipart.FileHeader) (string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			logrus.Warnf("failed to close file: %v", closeErr)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	filename := filepath.Base(fileHeader.Filename)
	storagePath := fmt.Sprintf("%s/%d_%s", dossierID, time.Now().UnixMilli(), filename)

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(storagePath),
		Body:        bytes.NewReader(content),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return storagePath, nil
}

// GetSignedURL generates a presigned URL for accessing a private document.
// The URL expires after one hour.
func (s *StorageService) GetSignedURL(storagePath string) (string, error) {
	if storagePath == "" {
		return "", nil
	}

	presignClient := s3.NewPresignClient(s.client)

	request, err := presignClient.PresignGetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storagePath),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = SignedURLExpiry
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	logrus.Debugf("Generated presigned URL for key %s", storagePath)
	return request.URL, nil
}

// DeleteDocument deletes a stored object
func (s *StorageService) DeleteDocument(storagePath string) error {
	if storagePath == "" {
		return nil
	}

	_, err := s.client.DeleteObject(context.TODO(), &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storagePath),
	})
	if err != nil {
		return fmt.Errorf("failed to delete document from S3: %w", err)
	}

	return nil
}
