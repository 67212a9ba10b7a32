package storage

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/sari-store/storefront/internal/application/admin"
)

var _ admin.ImageHost = (*StubImageHost)(nil)

// StubImageHost reads each image and hands back a numbered URL under BaseURL
// without storing anything. Use for local development and tests.
type StubImageHost struct {
	BaseURL string
	seq     atomic.Int64
}

// NewStubImageHost creates a stub host
func NewStubImageHost(baseURL string) *StubImageHost {
	if baseURL == "" {
		baseURL = "https://images.example.com"
	}
	return &StubImageHost{BaseURL: baseURL}
}

// Upload drains the body, reporting progress, and returns a fake URL
func (s *StubImageHost) Upload(ctx context.Context, file admin.ImageFile, onProgress func(int64)) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := io.Copy(io.Discard, newProgressReader(file.Body, onProgress)); err != nil {
		return "", err
	}
	n := s.seq.Add(1)
	return fmt.Sprintf("%s/%d%s", s.BaseURL, n, extensionFor(file.Name, file.ContentType)), nil
}
