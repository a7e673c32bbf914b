package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var ErrStorageDisabled = errors.New("photo storage not configured")

// StorageService stores child avatars and goal images in S3. With no bucket
// configured the service starts disabled and uploads are rejected.
type StorageService struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	enabled   bool
}

// NewStorageService creates a new storage service
func NewStorageService(awsRegion, bucket string) (*StorageService, error) {
	if bucket == "" {
		log.Println("Storage service disabled: S3_BUCKET not configured")
		return &StorageService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	log.Printf("Storage service enabled: bucket=%s, region=%s", bucket, awsRegion)
	return &StorageService{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		enabled:   true,
	}, nil
}

// IsEnabled returns whether the storage service is enabled
func (s *StorageService) IsEnabled() bool {
	return s.enabled
}

// Upload stores an object under a generated key and returns it
func (s *StorageService) Upload(ctx context.Context, prefix, contentType string, body io.Reader, size int64) (string, error) {
	if !s.enabled {
		return "", ErrStorageDisabled
	}

	key := fmt.Sprintf("%s/%s", prefix, uuid.NewString())
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}
	return key, nil
}

// PresignGet returns a time-limited download URL for an object key
func (s *StorageService) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if !s.enabled {
		return "", ErrStorageDisabled
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign object: %w", err)
	}
	return req.URL, nil
}

// Delete removes an object
func (s *StorageService) Delete(ctx context.Context, key string) error {
	if !s.enabled || key == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
