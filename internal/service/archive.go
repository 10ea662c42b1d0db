package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/snapcal/backend/config"
)

// archiveURLExpiry bounds how long an archived photo link stays fetchable.
const archiveURLExpiry = 7 * 24 * time.Hour

// ArchiveService copies entry photos to an S3 bucket so the full-resolution
// original survives the aggressive on-device image policy. It is optional:
// without a configured bucket every call reports disabled.
type ArchiveService struct {
	s3Config *config.S3Config
}

// Ensure ArchiveService implements IArchiveService
var _ IArchiveService = (*ArchiveService)(nil)

// NewArchiveService creates a new ArchiveService instance. A nil S3 config
// yields a disabled service.
func NewArchiveService(s3Config *config.S3Config) *ArchiveService {
	return &ArchiveService{s3Config: s3Config}
}

// Enabled reports whether a bucket is configured.
func (s *ArchiveService) Enabled() bool {
	return s != nil && s.s3Config != nil
}

// ArchiveImage uploads the photo behind the data URL under a fresh object key
// and returns a presigned link to it.
func (s *ArchiveService) ArchiveImage(ctx context.Context, imageDataURL string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("photo archive is not configured")
	}

	mime, raw, err := parseDataURL(imageDataURL)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("entries/%s%s", uuid.New().String(), extensionForMIME(mime))
	_, err = s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String(mime),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	log.Printf("[ArchiveService] archived photo to %s", key)

	url, err := s.s3Config.GeneratePresignedURL(ctx, key, archiveURLExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to presign archived photo: %w", err)
	}
	return url, nil
}

func extensionForMIME(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
