// Package storage provides the image hosts used by the admin upload pipeline.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/sari-store/storefront/internal/application/admin"
	infraconfig "github.com/sari-store/storefront/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ admin.ImageHost = (*S3ImageHost)(nil)

// S3ImageHost stores images in an S3-compatible bucket (AWS S3, MinIO,
// RustFS, R2) and serves them from PublicBaseURL.
type S3ImageHost struct {
	client    *s3.Client
	bucket    string
	folder    string
	publicURL string
	newKey    func() string
	logger    *zap.Logger
}

// S3Option is a functional option for configuring S3ImageHost
type S3Option func(*S3ImageHost)

// WithLogger sets a custom logger for S3ImageHost
func WithLogger(logger *zap.Logger) S3Option {
	return func(s *S3ImageHost) {
		s.logger = logger
	}
}

// NewS3ImageHost creates an S3ImageHost from configuration
func NewS3ImageHost(cfg *infraconfig.StorageConfig, opts ...S3Option) (*S3ImageHost, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKey == "" {
		return nil, errors.New("storage access key is required")
	}
	if cfg.SecretKey == "" {
		return nil, errors.New("storage secret key is required")
	}
	if cfg.PublicBaseURL == "" {
		return nil, errors.New("storage public base URL is required")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:9000"
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		if cfg.UseSSL {
			endpoint = "https://" + endpoint
		} else {
			endpoint = "http://" + endpoint
		}
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		o.BaseEndpoint = aws.String(endpoint)
		// S3-compatible backends reject the default trailing checksums
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	host := &S3ImageHost{
		client:    client,
		bucket:    cfg.Bucket,
		folder:    strings.Trim(cfg.Folder, "/"),
		publicURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		newKey:    func() string { return uuid.NewString() },
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(host)
	}
	return host, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *S3ImageHost) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if !errors.As(err, &notFound) && !errors.As(err, &noSuchBucket) {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	s.logger.Info("Creating image bucket", zap.String("bucket", s.bucket))
	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		var alreadyOwned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &alreadyOwned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Upload puts file under <folder>/<uuid><ext> and returns its public URL.
// The payload is sent unsigned so the body streams instead of being hashed
// up front.
func (s *S3ImageHost) Upload(ctx context.Context, file admin.ImageFile, onProgress func(int64)) (string, error) {
	key := s.newKey() + extensionFor(file.Name, file.ContentType)
	if s.folder != "" {
		key = s.folder + "/" + key
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        newProgressReader(file.Body, onProgress),
		ContentType: aws.String(file.ContentType),
	}
	if file.Size > 0 {
		input.ContentLength = aws.Int64(file.Size)
	}

	_, err := s.client.PutObject(ctx, input,
		s3.WithAPIOptions(v4.SwapComputePayloadSHA256ForUnsignedPayloadMiddleware),
	)
	if err != nil {
		return "", fmt.Errorf("failed to upload object: %w", err)
	}

	s.logger.Debug("Image stored", zap.String("bucket", s.bucket), zap.String("key", key))
	return s.publicURL + "/" + key, nil
}

// GetBucket returns the bucket name
func (s *S3ImageHost) GetBucket() string {
	return s.bucket
}
