package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/foodgram/backend/config"
)

// ImageStorage persists decoded image bytes and returns a public URL.
type ImageStorage interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
}

// S3ImageStorage stores recipe images in an S3 bucket.
type S3ImageStorage struct {
	s3Config *config.S3Config
}

func NewS3ImageStorage(s3Config *config.S3Config) *S3ImageStorage {
	return &S3ImageStorage{s3Config: s3Config}
}

// Upload puts the image under a fresh key and returns its public URL.
func (s *S3ImageStorage) Upload(ctx context.Context, data []byte, contentType string) (string, error) {
	fileName := fmt.Sprintf("recipe-images/%s%s", uuid.New().String(), extensionFor(contentType))

	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(fileName),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, fileName), nil
}

// ParseDataURI decodes a base64 data URI of the form
// "data:image/png;base64,....". Returns ok=false for anything else.
func ParseDataURI(s string) (data []byte, contentType string, ok bool) {
	if !strings.HasPrefix(s, "data:") {
		return nil, "", false
	}
	meta, payload, found := strings.Cut(s[len("data:"):], ",")
	if !found || !strings.HasSuffix(meta, ";base64") {
		return nil, "", false
	}
	contentType = strings.TrimSuffix(meta, ";base64")

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", false
	}
	return decoded, contentType, true
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
