package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	cldconfig "github.com/cloudinary/cloudinary-go/v2/config"
	"github.com/sari-store/storefront/internal/application/admin"
	"go.uber.org/zap"
)

var _ admin.ImageHost = (*CloudinaryHost)(nil)

const defaultCloudinaryPrefix = "https://api.cloudinary.com"

// CloudinaryHost uploads images with an unsigned upload preset through the
// Cloudinary upload API.
type CloudinaryHost struct {
	api    *uploader.API
	preset string
	folder string
	logger *zap.Logger
}

// CloudinaryOption configures a CloudinaryHost
type CloudinaryOption func(*CloudinaryHost)

// WithHTTPClient replaces the HTTP client used by the uploader
func WithHTTPClient(c *http.Client) CloudinaryOption {
	return func(h *CloudinaryHost) {
		if c != nil {
			h.api.Client = *c
		}
	}
}

// WithCloudinaryLogger sets the logger
func WithCloudinaryLogger(logger *zap.Logger) CloudinaryOption {
	return func(h *CloudinaryHost) {
		h.logger = logger
	}
}

// NewCloudinaryHost creates an unsigned uploader for cloudName. apiBase is
// the upload prefix; a trailing API version segment is accepted and dropped.
func NewCloudinaryHost(apiBase, cloudName, preset, folder string, opts ...CloudinaryOption) (*CloudinaryHost, error) {
	if cloudName == "" {
		return nil, errors.New("cloudinary cloud name is required")
	}
	if preset == "" {
		return nil, errors.New("cloudinary upload preset is required")
	}

	// Unsigned uploads need no API key or secret
	conf, err := cldconfig.NewFromParams(cloudName, "", "")
	if err != nil {
		return nil, fmt.Errorf("failed to configure cloudinary: %w", err)
	}
	conf.API.UploadPrefix = uploadPrefix(apiBase)

	api, err := uploader.NewWithConfiguration(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloudinary uploader: %w", err)
	}

	h := &CloudinaryHost{
		api:    api,
		preset: preset,
		folder: folder,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func uploadPrefix(apiBase string) string {
	prefix := strings.TrimSuffix(strings.TrimRight(apiBase, "/"), "/v1_1")
	if prefix == "" {
		return defaultCloudinaryPrefix
	}
	return prefix
}

// Upload streams file to <prefix>/v1_1/<cloud>/auto/upload and returns the
// secure URL. The SDK always posts reader uploads to the auto endpoint, where
// Cloudinary detects the image type itself.
func (h *CloudinaryHost) Upload(ctx context.Context, file admin.ImageFile, onProgress func(int64)) (string, error) {
	result, err := h.api.UnsignedUpload(ctx, newProgressReader(file.Body, onProgress), h.preset, uploader.UploadParams{
		Folder: h.folder,
	})
	if err != nil {
		return "", fmt.Errorf("image upload request failed: %w", err)
	}
	if msg := result.Error.Message; msg != "" {
		h.logger.Warn("Image host rejected upload",
			zap.String("file", file.Name),
			zap.String("message", msg),
		)
		return "", fmt.Errorf("image host rejected upload: %s", msg)
	}
	if result.SecureURL == "" {
		return "", errors.New("upload response has no secure_url")
	}

	h.logger.Debug("Image uploaded", zap.String("file", file.Name), zap.String("public_id", result.PublicID))
	return result.SecureURL, nil
}
