package storage

import (
	"fmt"

	"github.com/sari-store/storefront/internal/application/admin"
	"github.com/sari-store/storefront/internal/infrastructure/config"
	"go.uber.org/zap"
)

// New builds the image host selected by cfg.Provider
func New(cfg config.StorageConfig, logger *zap.Logger) (admin.ImageHost, error) {
	switch cfg.Provider {
	case "cloudinary":
		return NewCloudinaryHost(cfg.CloudinaryAPIBase, cfg.CloudinaryCloudName, cfg.CloudinaryPreset, cfg.Folder,
			WithCloudinaryLogger(logger))
	case "s3":
		return NewS3ImageHost(&cfg, WithLogger(logger))
	case "stub", "":
		logger.Warn("Using stub image host, uploaded images are not stored")
		return NewStubImageHost(""), nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}
