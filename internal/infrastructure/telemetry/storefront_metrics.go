package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics constructor gets no meter
var ErrMeterNil = errors.New("telemetry: meter is nil")

// Metric names
const (
	MetricCartItemsAdded = "storefront.cart.items_added"
	MetricUploadFiles    = "storefront.upload.files"
	MetricUploadDuration = "storefront.upload.duration"
	MetricCheckoutLinks  = "storefront.checkout.links"
)

// StorefrontMetrics records the storefront business metrics. It satisfies
// the metrics interfaces of the cart, checkout and admin services.
type StorefrontMetrics struct {
	itemsAdded     *Counter
	uploadFiles    *Counter
	uploadDuration *Histogram
	checkoutLinks  *Counter
	provider       string
}

// StorefrontMetricsConfig configures NewStorefrontMetrics
type StorefrontMetricsConfig struct {
	Meter metric.Meter
	// Provider labels upload metrics with the image host in use
	Provider string
}

// NewStorefrontMetrics creates every storefront instrument on cfg.Meter
func NewStorefrontMetrics(cfg StorefrontMetricsConfig) (*StorefrontMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}
	m := &StorefrontMetrics{provider: cfg.Provider}
	var err error
	if m.itemsAdded, err = NewCounter(cfg.Meter, MetricCartItemsAdded, "Products added to carts", "{item}"); err != nil {
		return nil, err
	}
	if m.uploadFiles, err = NewCounter(cfg.Meter, MetricUploadFiles, "Image files sent to the image host", "{file}"); err != nil {
		return nil, err
	}
	if m.uploadDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        MetricUploadDuration,
		Description: "Duration of a product image upload batch",
		Unit:        "s",
		Boundaries:  UploadDurationBuckets,
	}); err != nil {
		return nil, err
	}
	if m.checkoutLinks, err = NewCounter(cfg.Meter, MetricCheckoutLinks, "Checkout deep links generated", "{link}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordItemAdded counts one product added to a cart
func (m *StorefrontMetrics) RecordItemAdded(ctx context.Context) {
	m.itemsAdded.Inc(ctx)
}

// RecordUpload records an upload batch of files that took d. A nil err
// counts as a success.
func (m *StorefrontMetrics) RecordUpload(ctx context.Context, files int, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	attrs := []attribute.KeyValue{AttrOutcome.String(outcome), AttrProvider.String(m.provider)}
	m.uploadFiles.Add(ctx, int64(files), attrs...)
	m.uploadDuration.RecordDuration(ctx, d, attrs...)
}

// RecordCheckoutLink counts a generated deep link of kind "product" or "cart"
func (m *StorefrontMetrics) RecordCheckoutLink(ctx context.Context, kind string) {
	m.checkoutLinks.Inc(ctx, AttrLinkKind.String(kind))
}
