package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sari-store/storefront/internal/domain/catalog"
	"github.com/sari-store/storefront/internal/domain/shared"
	"github.com/sari-store/storefront/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/unicode/norm"
)

// ErrImagesRequired is returned when a new product has no images
var ErrImagesRequired = shared.NewDomainError("IMAGES_REQUIRED", "Please select at least one image")

// ProductInput holds the text fields of the product form. NewCategory, when
// set, takes precedence over Category.
type ProductInput struct {
	Title       string `form:"title"`
	Price       string `form:"price"`
	Category    string `form:"category"`
	NewCategory string `form:"newCategory"`
}

// normalized trims and NFC-normalizes the fields and resolves the category
func (in ProductInput) normalized() (title, price, category string) {
	title = normalizeText(in.Title)
	price = strings.TrimSpace(in.Price)
	category = normalizeText(in.NewCategory)
	if category == "" {
		category = normalizeText(in.Category)
	}
	return title, price, category
}

func normalizeText(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Metrics receives upload outcomes
type Metrics interface {
	RecordUpload(ctx context.Context, files int, d time.Duration, err error)
}

type nopMetrics struct{}

func (nopMetrics) RecordUpload(context.Context, int, time.Duration, error) {}

// UploadConfig limits uploads
type UploadConfig struct {
	MaxFileSize int64
	// Timeout bounds one whole image batch; zero means no limit
	Timeout time.Duration
}

// UploadService creates, edits and deletes products. A product is written
// only after every one of its images has been uploaded.
type UploadService struct {
	repo    catalog.ProductRepository
	host    ImageHost
	events  shared.EventPublisher
	config  UploadConfig
	metrics Metrics
	logger  *zap.Logger
}

// NewUploadService creates an upload service. events and metrics may be nil.
func NewUploadService(
	repo catalog.ProductRepository,
	host ImageHost,
	events shared.EventPublisher,
	cfg UploadConfig,
	metrics Metrics,
	logger *zap.Logger,
) *UploadService {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadService{
		repo:    repo,
		host:    host,
		events:  events,
		config:  cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// CreateProduct validates the form, uploads every file and stores the
// product. Nothing is stored if any upload fails.
func (s *UploadService) CreateProduct(ctx context.Context, files []ImageFile, in ProductInput, onProgress ProgressFunc) (*catalog.Product, error) {
	title, price, category := in.normalized()
	if err := catalog.ValidateDetails(title, price, category); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrImagesRequired
	}
	if err := s.validateFiles(files); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "admin_upload", "create_product",
		telemetry.SpanAttrFileCount, len(files),
		telemetry.SpanAttrCategory, category,
	)
	defer span.End()

	urls, err := s.uploadAll(ctx, files, onProgress)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	product, err := catalog.NewProduct(title, price, category, urls)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to store product", zap.String("title", title), zap.Error(err))
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrProductID, product.ID)

	s.logger.Info("Product created",
		zap.String("product_id", product.ID),
		zap.String("category", product.Category),
		zap.Int("images", len(urls)),
	)
	s.publish(ctx, catalog.NewProductCreatedEvent(product))
	return product, nil
}

// UpdateProduct edits a product. Images are replaced only when files are
// given; otherwise the stored images are kept.
func (s *UploadService) UpdateProduct(ctx context.Context, id string, files []ImageFile, in ProductInput, onProgress ProgressFunc) (*catalog.Product, error) {
	title, price, category := in.normalized()
	if err := catalog.ValidateDetails(title, price, category); err != nil {
		return nil, err
	}
	if err := s.validateFiles(files); err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "admin_upload", "update_product",
		telemetry.SpanAttrProductID, id,
		telemetry.SpanAttrFileCount, len(files),
	)
	defer span.End()

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	var urls []string
	if len(files) > 0 {
		if urls, err = s.uploadAll(ctx, files, onProgress); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	} else if onProgress != nil {
		onProgress(100)
	}

	if err := product.Update(title, price, category, urls); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to update product", zap.String("product_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("Product updated", zap.String("product_id", id), zap.Bool("images_replaced", urls != nil))
	s.publish(ctx, catalog.NewProductUpdatedEvent(product))
	return product, nil
}

// DeleteProduct removes the product record. Its images stay on the host.
func (s *UploadService) DeleteProduct(ctx context.Context, id string) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "admin_upload", "delete_product", telemetry.SpanAttrProductID, id)
	defer span.End()

	if err := s.repo.Delete(ctx, id); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	s.logger.Info("Product deleted", zap.String("product_id", id))
	s.publish(ctx, catalog.NewProductDeletedEvent(id))
	return nil
}

func (s *UploadService) validateFiles(files []ImageFile) error {
	for i := range files {
		if err := validateImage(&files[i], s.config.MaxFileSize); err != nil {
			return err
		}
	}
	return nil
}

// uploadAll uploads files concurrently and returns their URLs in input
// order. The first failure cancels the remaining uploads.
func (s *UploadService) uploadAll(ctx context.Context, files []ImageFile, onProgress ProgressFunc) ([]string, error) {
	start := time.Now()
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	progress := newBatchProgress(len(files), onProgress)
	urls := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	for i, file := range files {
		g.Go(func() error {
			url, err := s.host.Upload(gctx, file, func(sent int64) {
				progress.update(i, sent, file.Size)
			})
			if err != nil {
				return fmt.Errorf("upload %q: %w", file.Name, err)
			}
			if url == "" {
				return fmt.Errorf("upload %q: image host returned no URL", file.Name)
			}
			urls[i] = url
			progress.complete(i)
			return nil
		})
	}

	err := g.Wait()
	s.metrics.RecordUpload(ctx, len(files), time.Since(start), err)
	if err != nil {
		s.logger.Error("Image upload failed", zap.Int("files", len(files)), zap.Error(err))
		return nil, shared.WrapDomainError(shared.ErrUploadFailed.Code, shared.ErrUploadFailed.Message, err)
	}
	return urls, nil
}

func (s *UploadService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish product event", zap.String("event_type", event.EventType()), zap.Error(err))
	}
}
