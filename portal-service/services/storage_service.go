package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"dwellport-backend/shared/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageService stores portal attachments (application documents, service
// request photos) in a MinIO bucket.
type StorageService struct {
	client     *minio.Client
	bucketName string

	maxFileSize  int64
	allowedTypes map[string]bool
}

// NewStorageService connects to MinIO and ensures the attachment bucket
// exists.
func NewStorageService() (*StorageService, error) {
	cfg := config.GetConfig()

	// Parse endpoint URL to get host
	parsedURL, err := url.Parse(cfg.MinIOServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MinIO endpoint: %v", err)
	}

	endpoint := parsedURL.Host
	useSSL := cfg.MinIOUseSSL

	log.Printf("🔗 Connecting to MinIO: %s (SSL: %v)", endpoint, useSSL)

	minioClient, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIORootUser, cfg.MinIORootPassword, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %v", err)
	}

	allowedTypes := make(map[string]bool)
	for _, ext := range strings.Split(cfg.AttachmentAllowedTypes, ",") {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" {
			allowedTypes[ext] = true
		}
	}

	service := &StorageService{
		client:       minioClient,
		bucketName:   cfg.MinIOBucketName,
		maxFileSize:  parseFileSize(cfg.AttachmentMaxFileSize),
		allowedTypes: allowedTypes,
	}

	if err := service.initializeBucket(); err != nil {
		return nil, err
	}

	return service, nil
}

func (s *StorageService) initializeBucket() error {
	ctx := context.Background()

	log.Printf("🪣 Checking bucket: %s", s.bucketName)

	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %v", err)
	}

	if !exists {
		err = s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{})
		if err != nil {
			return fmt.Errorf("failed to create bucket: %v", err)
		}
		log.Printf("✅ MinIO bucket '%s' created successfully", s.bucketName)
	} else {
		log.Printf("✅ MinIO bucket '%s' already exists", s.bucketName)
	}

	return nil
}

// ValidateAttachment rejects files over the configured size limit or with a
// disallowed extension.
func (s *StorageService) ValidateAttachment(fileName string, fileSize int64) error {
	if s.maxFileSize > 0 && fileSize > s.maxFileSize {
		return fmt.Errorf("file exceeds the maximum allowed size of %d bytes", s.maxFileSize)
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" || !s.allowedTypes[ext] {
		return fmt.Errorf("file type %q is not allowed", ext)
	}

	return nil
}

// Upload stores an attachment under the given object key.
func (s *StorageService) Upload(ctx context.Context, file io.Reader, objectKey string, fileSize int64, contentType string) error {
	log.Printf("⬆️ Uploading attachment to: %s/%s (size: %d bytes)", s.bucketName, objectKey, fileSize)

	_, err := s.client.PutObject(ctx, s.bucketName, objectKey, file, fileSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload file: %v", err)
	}

	log.Printf("✅ Attachment '%s' uploaded successfully", objectKey)
	return nil
}

// Download streams an attachment back by object key.
func (s *StorageService) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	object, err := s.client.GetObject(ctx, s.bucketName, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %v", err)
	}

	return object, nil
}

// Remove deletes an attachment by object key.
func (s *StorageService) Remove(ctx context.Context, objectKey string) error {
	err := s.client.RemoveObject(ctx, s.bucketName, objectKey, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to remove file: %v", err)
	}

	log.Printf("🗑️ Attachment removed: %s", objectKey)
	return nil
}

// parseFileSize turns values like "25MB" or "512KB" into a byte count.
// Unparseable values disable the size limit.
func parseFileSize(value string) int64 {
	value = strings.ToUpper(strings.TrimSpace(value))

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(value, "GB"):
		multiplier = 1 << 30
		value = strings.TrimSuffix(value, "GB")
	case strings.HasSuffix(value, "MB"):
		multiplier = 1 << 20
		value = strings.TrimSuffix(value, "MB")
	case strings.HasSuffix(value, "KB"):
		multiplier = 1 << 10
		value = strings.TrimSuffix(value, "KB")
	case strings.HasSuffix(value, "B"):
		value = strings.TrimSuffix(value, "B")
	}

	size, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || size < 0 {
		return 0
	}

	return size * multiplier
}
