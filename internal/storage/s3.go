package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	appconfig "github.com/spread-puzzle/puzzle-board-api/internal/config"
	"github.com/spread-puzzle/puzzle-board-api/internal/utils"
)

// ErrStorage wraps provider-side upload failures.
var ErrStorage = errors.New("object storage upload failed")

// ObjectStorage stores a binary file under a generated key and returns its
// public URL. Type and size limits are enforced by callers before invoking.
type ObjectStorage interface {
	Upload(ctx context.Context, data []byte, contentType, originalName string) (string, error)
}

// S3Storage is the AWS S3 implementation of ObjectStorage.
type S3Storage struct {
	client    *s3.Client
	bucket    string
	region    string
	keyPrefix string
}

// NewS3Storage creates an S3-backed ObjectStorage from configuration.
func NewS3Storage(ctx context.Context, cfg *appconfig.Config) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Storage{
		client:    s3.NewFromConfig(awsCfg),
		bucket:    cfg.S3Bucket,
		region:    cfg.AWSRegion,
		keyPrefix: cfg.S3KeyPrefix,
	}, nil
}

// Upload puts the object public-read and returns its public URL.
func (s *S3Storage) Upload(ctx context.Context, data []byte, contentType, originalName string) (string, error) {
	key := utils.GenerateObjectKey(s.keyPrefix, originalName, contentType)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             awsv2.String(s.bucket),
		Key:                awsv2.String(key),
		Body:               bytes.NewReader(data),
		ACL:                types.ObjectCannedACLPublicRead,
		ContentType:        awsv2.String(contentType),
		ContentDisposition: awsv2.String("inline"),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}
