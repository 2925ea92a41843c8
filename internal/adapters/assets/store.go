// Package assets stores event images in S3 (or a no-op store for
// development). The event row is the source of truth; callers treat delete
// failures as a tolerable leak, not a request failure.
package assets

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"eventlisting/internal/domain"
)

// S3Config holds configuration for the S3-backed asset store.
type S3Config struct {
	Bucket          string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	// PublicBaseURL is the URL prefix stored on event documents. Defaults to
	// the bucket's virtual-hosted S3 URL when empty.
	PublicBaseURL string
}

// StoreConfig holds configuration for creating an asset store.
type StoreConfig struct {
	Provider string
	S3       S3Config
}

// NewStore creates an asset store from config. Provider "s3" uses AWS S3;
// "noop" or unknown uses a no-op store.
func NewStore(config StoreConfig) (domain.AssetStore, error) {
	switch config.Provider {
	case "s3":
		s3Cfg := config.S3
		if s3Cfg.Bucket == "" {
			return nil, fmt.Errorf("s3 asset store requires a bucket")
		}
		awsCfg := aws.Config{
			Region: s3Cfg.Region,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(
					s3Cfg.AccessKeyID,
					s3Cfg.SecretAccessKey,
					"",
				),
			),
		}
		baseURL := strings.TrimSuffix(s3Cfg.PublicBaseURL, "/")
		if baseURL == "" {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", s3Cfg.Bucket, s3Cfg.Region)
		}
		return &s3Store{
			client:  s3.NewFromConfig(awsCfg),
			bucket:  s3Cfg.Bucket,
			baseURL: baseURL,
		}, nil
	case "noop":
		return &noopStore{}, nil
	default:
		log.Printf("[ASSETS] Unknown asset provider %q, using noop", config.Provider)
		return &noopStore{}, nil
	}
}

// extensions maps accepted image content types to object key suffixes.
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type s3Store struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func (s *s3Store) Store(ctx context.Context, data []byte, contentType string) (*domain.StoredAsset, error) {
	key := "event-images/" + uuid.NewString() + extensions[contentType]
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("put object: %w", err)
	}
	return &domain.StoredAsset{
		URL:     s.baseURL + "/" + key,
		AssetID: key,
	}, nil
}

func (s *s3Store) Delete(ctx context.Context, assetID string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(assetID),
	})
	if err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// noopStore returns placeholder URLs and discards the bytes. Useful for
// local development without AWS credentials.
type noopStore struct{}

func (n *noopStore) Store(_ context.Context, _ []byte, contentType string) (*domain.StoredAsset, error) {
	key := uuid.NewString() + extensions[contentType]
	return &domain.StoredAsset{
		URL:     "https://assets.invalid/" + key,
		AssetID: key,
	}, nil
}

func (n *noopStore) Delete(context.Context, string) error {
	return nil
}
