// Package admin implements the catalog write path: validating product
// details, uploading their images and storing the record.
package admin

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sari-store/storefront/internal/domain/shared"
)

// allowedImageTypes lists the content types accepted for product images
var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
	"image/avif": {},
	"image/heic": {},
}

// ImageFile is one selected image. Body must be readable from the start;
// uploaders may seek it back to compute checksums or retry a request body.
type ImageFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

// ImageHost stores an image and returns its public URL. onProgress receives
// the cumulative bytes sent and may be called from any goroutine.
type ImageHost interface {
	Upload(ctx context.Context, file ImageFile, onProgress func(sent int64)) (string, error)
}

// validateImage fills in a missing content type by sniffing the body and
// checks type and size.
func validateImage(f *ImageFile, maxSize int64) error {
	if f.Body == nil {
		return shared.NewDomainError("IMAGES_REQUIRED", "Image file is empty")
	}
	if f.ContentType == "" || f.ContentType == "application/octet-stream" {
		sniffed, err := sniffContentType(f.Body)
		if err != nil {
			return shared.WrapDomainError("INVALID_IMAGE", "Image could not be read", err)
		}
		f.ContentType = sniffed
	}

	contentType := strings.ToLower(strings.TrimSpace(strings.SplitN(f.ContentType, ";", 2)[0]))
	if _, ok := allowedImageTypes[contentType]; !ok {
		return shared.NewDomainError("INVALID_IMAGE_TYPE", fmt.Sprintf("%s is not a supported image type", f.Name))
	}
	f.ContentType = contentType

	if maxSize > 0 && f.Size > maxSize {
		return shared.NewDomainError("IMAGE_TOO_LARGE", fmt.Sprintf("%s exceeds the %d MB limit", f.Name, maxSize>>20))
	}
	return nil
}

func sniffContentType(r io.ReadSeeker) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}
