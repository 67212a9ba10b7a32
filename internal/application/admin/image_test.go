package admin

import (
	"bytes"
	"io"
	"testing"

	"github.com/sari-store/storefront/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateImage(t *testing.T) {
	t.Run("sniffs octet-stream and rewinds body", func(t *testing.T) {
		f := imageFile("cover", 64)
		f.ContentType = "application/octet-stream"

		require.NoError(t, validateImage(&f, 0))
		assert.Equal(t, "image/png", f.ContentType)

		data, err := io.ReadAll(f.Body)
		require.NoError(t, err)
		assert.Len(t, data, 64)
	})

	t.Run("strips parameters from content type", func(t *testing.T) {
		f := imageFile("a.jpg", 16)
		f.ContentType = "Image/JPEG; charset=binary"

		require.NoError(t, validateImage(&f, 0))
		assert.Equal(t, "image/jpeg", f.ContentType)
	})

	t.Run("rejects sniffed non-image", func(t *testing.T) {
		f := ImageFile{Name: "notes", Size: 5, Body: bytes.NewReader([]byte("hello"))}

		err := validateImage(&f, 0)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_IMAGE_TYPE", de.Code)
		assert.Contains(t, de.Message, "notes")
	})

	t.Run("missing body", func(t *testing.T) {
		err := validateImage(&ImageFile{Name: "x.png", ContentType: "image/png"}, 0)
		assert.ErrorIs(t, err, ErrImagesRequired)
	})
}
