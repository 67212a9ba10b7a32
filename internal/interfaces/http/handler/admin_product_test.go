package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sari-store/storefront/internal/application/admin"
	catalogapp "github.com/sari-store/storefront/internal/application/catalog"
	"github.com/sari-store/storefront/internal/domain/catalog"
	"github.com/sari-store/storefront/internal/domain/shared"
	"github.com/sari-store/storefront/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingWriter captures what the handler passes to the upload service
type recordingWriter struct {
	files   []admin.ImageFile
	bodies  []string
	input   admin.ProductInput
	id      string
	err     error
	deleted []string
}

func (r *recordingWriter) capture(files []admin.ImageFile, in admin.ProductInput, onProgress admin.ProgressFunc) error {
	r.files = files
	r.input = in
	for _, f := range files {
		b, err := io.ReadAll(f.Body)
		if err != nil {
			return err
		}
		r.bodies = append(r.bodies, string(b))
	}
	onProgress(40)
	return r.err
}

func (r *recordingWriter) CreateProduct(_ context.Context, files []admin.ImageFile, in admin.ProductInput, onProgress admin.ProgressFunc) (*catalog.Product, error) {
	if err := r.capture(files, in, onProgress); err != nil {
		return nil, err
	}
	urls := make([]string, len(files))
	for i, f := range files {
		urls[i] = "https://img.test/" + f.Name
	}
	category := in.Category
	if in.NewCategory != "" {
		category = in.NewCategory
	}
	p, err := catalog.NewProduct(in.Title, in.Price, category, urls)
	if err != nil {
		return nil, err
	}
	p.ID = "new-id"
	return p, nil
}

func (r *recordingWriter) UpdateProduct(_ context.Context, id string, files []admin.ImageFile, in admin.ProductInput, onProgress admin.ProgressFunc) (*catalog.Product, error) {
	r.id = id
	if err := r.capture(files, in, onProgress); err != nil {
		return nil, err
	}
	return &catalog.Product{ID: id, Title: in.Title, Price: in.Price, ImageURLs: []string{"https://img.test/old.jpg"}}, nil
}

func (r *recordingWriter) DeleteProduct(_ context.Context, id string) error {
	if id == "missing" {
		return shared.ErrNotFound
	}
	r.deleted = append(r.deleted, id)
	return nil
}

type formFile struct {
	field, name, contentType, body string
}

func multipartBody(t *testing.T, fields map[string]string, files ...formFile) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.body))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func adminEngine(w ProductWriter, tracker *admin.ProgressTracker) *gin.Engine {
	h := NewAdminProductHandler(w, tracker, nil)
	e := newTestEngine()
	e.POST("/admin/products", h.CreateProduct)
	e.PUT("/admin/products/:id", h.UpdateProduct)
	e.DELETE("/admin/products/:id", h.DeleteProduct)
	e.GET("/admin/uploads/:uploadId", h.GetUploadProgress)
	return e
}

func sendForm(e *gin.Engine, method, path string, body io.Reader, contentType, uploadID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	if uploadID != "" {
		req.Header.Set(middleware.UploadIDHeader, uploadID)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestAdminProductHandler_CreateProduct(t *testing.T) {
	t.Run("passes files in selection order and tracks the upload", func(t *testing.T) {
		writer := &recordingWriter{}
		tracker := admin.NewProgressTracker(time.Minute)
		e := adminEngine(writer, tracker)

		body, ct := multipartBody(t,
			map[string]string{"title": "Banarasi", "price": "4100", "category": "Silk", "newCategory": ""},
			formFile{"images", "front.png", "image/png", "front-bytes"},
			formFile{"images", "back.jpg", "image/jpeg", "back"},
		)
		w := sendForm(e, http.MethodPost, "/admin/products", body, ct, "up-1")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "up-1", w.Header().Get(middleware.UploadIDHeader))

		require.Len(t, writer.files, 2)
		assert.Equal(t, "front.png", writer.files[0].Name)
		assert.Equal(t, "image/png", writer.files[0].ContentType)
		assert.Equal(t, int64(len("front-bytes")), writer.files[0].Size)
		assert.Equal(t, "back.jpg", writer.files[1].Name)
		assert.Equal(t, []string{"front-bytes", "back"}, writer.bodies)
		assert.Equal(t, admin.ProductInput{Title: "Banarasi", Price: "4100", Category: "Silk"}, writer.input)

		var got catalogapp.ProductResponse
		decodeData(t, w, &got)
		assert.Equal(t, "new-id", got.ID)
		assert.Equal(t, []string{"https://img.test/front.png", "https://img.test/back.jpg"}, got.ImageURLs)

		progress, ok := tracker.Get("up-1")
		require.True(t, ok)
		assert.Equal(t, 100, progress.Percent)
		assert.Equal(t, admin.UploadStatusDone, progress.Status)
	})

	t.Run("accepts the bracketed field name", func(t *testing.T) {
		writer := &recordingWriter{}
		e := adminEngine(writer, admin.NewProgressTracker(time.Minute))

		body, ct := multipartBody(t,
			map[string]string{"title": "Tant", "price": "900", "newCategory": "Cotton"},
			formFile{"images[]", "a.webp", "image/webp", "a"},
		)
		w := sendForm(e, http.MethodPost, "/admin/products", body, ct, "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Len(t, writer.files, 1)
		assert.Equal(t, "Cotton", writer.input.NewCategory)
		assert.NotEmpty(t, w.Header().Get(middleware.UploadIDHeader))
	})

	t.Run("upload failure marks the tracked upload failed", func(t *testing.T) {
		writer := &recordingWriter{err: shared.NewDomainError("UPLOAD_FAILED", "Image upload failed")}
		tracker := admin.NewProgressTracker(time.Minute)
		e := adminEngine(writer, tracker)

		body, ct := multipartBody(t,
			map[string]string{"title": "Banarasi", "price": "4100", "category": "Silk"},
			formFile{"images", "front.png", "image/png", "x"},
		)
		w := sendForm(e, http.MethodPost, "/admin/products", body, ct, "up-2")
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Equal(t, "UPLOAD_FAILED", decodeResponse(t, w).Error.Code)

		progress, ok := tracker.Get("up-2")
		require.True(t, ok)
		assert.Equal(t, admin.UploadStatusFailed, progress.Status)
		assert.Equal(t, 40, progress.Percent)
	})
}

func TestAdminProductHandler_UpdateProduct(t *testing.T) {
	writer := &recordingWriter{}
	e := adminEngine(writer, admin.NewProgressTracker(time.Minute))

	form := strings.NewReader("title=Renamed&price=99&category=Silk")
	w := sendForm(e, http.MethodPut, "/admin/products/p9", form, "application/x-www-form-urlencoded", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, "p9", writer.id)
	assert.Empty(t, writer.files)
	assert.Equal(t, "Renamed", writer.input.Title)

	var got catalogapp.ProductResponse
	decodeData(t, w, &got)
	assert.Equal(t, "https://img.test/old.jpg", got.ImageURL)
}

func TestAdminProductHandler_DeleteProduct(t *testing.T) {
	writer := &recordingWriter{}
	e := adminEngine(writer, admin.NewProgressTracker(time.Minute))

	w := sendForm(e, http.MethodDelete, "/admin/products/p1", nil, "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []string{"p1"}, writer.deleted)

	w = sendForm(e, http.MethodDelete, "/admin/products/missing", nil, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminProductHandler_GetUploadProgress(t *testing.T) {
	tracker := admin.NewProgressTracker(time.Minute)
	tracker.Start("up-7")
	tracker.Reporter("up-7")(55)
	e := adminEngine(&recordingWriter{}, tracker)

	w := sendForm(e, http.MethodGet, "/admin/uploads/up-7", nil, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var got admin.UploadProgress
	decodeData(t, w, &got)
	assert.Equal(t, admin.UploadProgress{ID: "up-7", Percent: 55, Status: admin.UploadStatusUploading}, got)

	w = sendForm(e, http.MethodGet, "/admin/uploads/unknown", nil, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "UPLOAD_NOT_FOUND", decodeResponse(t, w).Error.Code)
}
