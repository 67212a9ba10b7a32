package admin

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sari-store/storefront/internal/domain/catalog"
	"github.com/sari-store/storefront/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindAll(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// fakeHost reads each body in chunks, reporting progress as it goes. Files
// named in fail return an error; files named in block wait for cancellation.
type fakeHost struct {
	mu        sync.Mutex
	fail      map[string]bool
	block     map[string]bool
	uploaded  []string
	cancelled []string
}

func (h *fakeHost) Upload(ctx context.Context, f ImageFile, onProgress func(int64)) (string, error) {
	if h.block[f.Name] {
		<-ctx.Done()
		h.mu.Lock()
		h.cancelled = append(h.cancelled, f.Name)
		h.mu.Unlock()
		return "", ctx.Err()
	}
	if h.fail[f.Name] {
		return "", errors.New("host rejected " + f.Name)
	}

	buf := make([]byte, 4)
	var sent int64
	for {
		n, err := f.Body.Read(buf)
		sent += int64(n)
		if n > 0 {
			onProgress(sent)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}

	h.mu.Lock()
	h.uploaded = append(h.uploaded, f.Name)
	h.mu.Unlock()
	return "https://img.test/" + f.Name, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

type recordingMetrics struct {
	mu      sync.Mutex
	files   int
	failed  int
	batches int
}

func (m *recordingMetrics) RecordUpload(_ context.Context, files int, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++
	m.files += files
	if err != nil {
		m.failed++
	}
}

// pngHeader makes http.DetectContentType report image/png
var pngHeader = []byte("\x89PNG\r\n\x1a\n")

func imageFile(name string, size int) ImageFile {
	data := append([]byte{}, pngHeader...)
	for len(data) < size {
		data = append(data, 'x')
	}
	return ImageFile{Name: name, ContentType: "image/png", Size: int64(len(data)), Body: bytes.NewReader(data)}
}

func validInput() ProductInput {
	return ProductInput{Title: " Banarasi Silk ", Price: " 4100 ", Category: "Silk"}
}

func newService(repo *MockProductRepository, host ImageHost) (*UploadService, *recordingPublisher, *recordingMetrics) {
	pub := &recordingPublisher{}
	metrics := &recordingMetrics{}
	svc := NewUploadService(repo, host, pub, UploadConfig{MaxFileSize: 1 << 20, Timeout: 5 * time.Second}, metrics, nil)
	return svc, pub, metrics
}

func TestUploadService_CreateProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads all files and stores one product", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("Create", mock.Anything, mock.AnythingOfType("*catalog.Product")).
			Run(func(args mock.Arguments) {
				p := args.Get(1).(*catalog.Product)
				p.ID = "new-id"
				p.CreatedAt = time.Now()
			}).
			Return(nil)
		host := &fakeHost{}
		svc, pub, metrics := newService(repo, host)

		var mu sync.Mutex
		var reports []int
		product, err := svc.CreateProduct(ctx,
			[]ImageFile{imageFile("a.png", 40), imageFile("b.png", 20), imageFile("c.png", 30)},
			validInput(),
			func(p int) {
				mu.Lock()
				reports = append(reports, p)
				mu.Unlock()
			},
		)
		require.NoError(t, err)

		assert.Equal(t, "new-id", product.ID)
		assert.Equal(t, "Banarasi Silk", product.Title)
		assert.Equal(t, "4100", product.Price)
		assert.Equal(t, "Silk", product.Category)
		assert.Equal(t, []string{"https://img.test/a.png", "https://img.test/b.png", "https://img.test/c.png"}, product.ImageURLs)
		assert.Equal(t, "https://img.test/a.png", product.ImageURL)
		repo.AssertNumberOfCalls(t, "Create", 1)

		require.NotEmpty(t, reports)
		assert.Equal(t, 100, reports[len(reports)-1])
		for i := 1; i < len(reports); i++ {
			assert.GreaterOrEqual(t, reports[i], reports[i-1], "progress went backwards")
		}

		assert.Equal(t, []string{catalog.EventTypeProductCreated}, pub.types())
		assert.Equal(t, 1, metrics.batches)
		assert.Equal(t, 3, metrics.files)
		assert.Equal(t, 0, metrics.failed)
	})

	t.Run("new category takes precedence and is normalized", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		svc, _, _ := newService(repo, &fakeHost{})

		in := validInput()
		in.NewCategory = "  Café Silk "
		product, err := svc.CreateProduct(ctx, []ImageFile{imageFile("a.png", 16)}, in, nil)
		require.NoError(t, err)
		assert.Equal(t, "Caf\u00e9 Silk", product.Category)
	})

	t.Run("second upload failing writes nothing", func(t *testing.T) {
		repo := new(MockProductRepository)
		host := &fakeHost{fail: map[string]bool{"b.png": true}}
		svc, pub, metrics := newService(repo, host)

		_, err := svc.CreateProduct(ctx, []ImageFile{imageFile("a.png", 16), imageFile("b.png", 16)}, validInput(), nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrUploadFailed)
		assert.Contains(t, err.Error(), "b.png")

		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		assert.Empty(t, pub.types())
		assert.Equal(t, 1, metrics.failed)
	})

	t.Run("failure cancels uploads still running", func(t *testing.T) {
		repo := new(MockProductRepository)
		host := &fakeHost{
			fail:  map[string]bool{"bad.png": true},
			block: map[string]bool{"slow.png": true},
		}
		svc, _, _ := newService(repo, host)

		_, err := svc.CreateProduct(ctx, []ImageFile{imageFile("slow.png", 16), imageFile("bad.png", 16)}, validInput(), nil)
		assert.ErrorIs(t, err, shared.ErrUploadFailed)
		assert.Equal(t, []string{"slow.png"}, host.cancelled)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("validation runs before any upload", func(t *testing.T) {
		tests := []struct {
			name  string
			files []ImageFile
			in    ProductInput
			code  string
		}{
			{"missing title", []ImageFile{imageFile("a.png", 16)}, ProductInput{Title: "  ", Category: "Silk"}, "TITLE_REQUIRED"},
			{"missing category", []ImageFile{imageFile("a.png", 16)}, ProductInput{Title: "Saree", NewCategory: " "}, "CATEGORY_REQUIRED"},
			{"bad price", []ImageFile{imageFile("a.png", 16)}, ProductInput{Title: "Saree", Price: "abc", Category: "Silk"}, "INVALID_PRICE"},
			{"no files", nil, validInput(), "IMAGES_REQUIRED"},
			{"not an image", []ImageFile{{Name: "notes.txt", ContentType: "text/plain", Size: 4, Body: bytes.NewReader([]byte("text"))}}, validInput(), "INVALID_IMAGE_TYPE"},
			{"too large", []ImageFile{imageFile("huge.png", 2<<20)}, validInput(), "IMAGE_TOO_LARGE"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := new(MockProductRepository)
				host := &fakeHost{}
				svc, _, metrics := newService(repo, host)

				_, err := svc.CreateProduct(ctx, tt.files, tt.in, nil)
				var de *shared.DomainError
				require.ErrorAs(t, err, &de)
				assert.Equal(t, tt.code, de.Code)
				assert.Empty(t, host.uploaded)
				assert.Equal(t, 0, metrics.batches)
				repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("missing content type is sniffed", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		host := &fakeHost{}
		svc, _, _ := newService(repo, host)

		f := imageFile("a.png", 32)
		f.ContentType = ""
		_, err := svc.CreateProduct(ctx, []ImageFile{f}, validInput(), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.png"}, host.uploaded)
	})
}

func TestUploadService_UpdateProduct(t *testing.T) {
	ctx := context.Background()

	existing := func() *catalog.Product {
		return &catalog.Product{ID: "p1", Title: "Old", Price: "100", Category: "Cotton", ImageURL: "https://img.test/legacy.jpg"}
	}

	t.Run("without files keeps normalized images", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("FindByID", mock.Anything, "p1").Return(existing(), nil)
		repo.On("Update", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)
		host := &fakeHost{}
		svc, pub, _ := newService(repo, host)

		var last int
		product, err := svc.UpdateProduct(ctx, "p1", nil, validInput(), func(p int) { last = p })
		require.NoError(t, err)

		assert.Equal(t, "Banarasi Silk", product.Title)
		assert.Equal(t, []string{"https://img.test/legacy.jpg"}, product.ImageURLs)
		assert.Equal(t, "https://img.test/legacy.jpg", product.ImageURL)
		assert.Empty(t, host.uploaded)
		assert.Equal(t, 100, last)
		assert.Equal(t, []string{catalog.EventTypeProductUpdated}, pub.types())
	})

	t.Run("with files replaces images", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("FindByID", mock.Anything, "p1").Return(existing(), nil)
		repo.On("Update", mock.Anything, mock.Anything).Return(nil)
		svc, _, _ := newService(repo, &fakeHost{})

		product, err := svc.UpdateProduct(ctx, "p1", []ImageFile{imageFile("n1.png", 16), imageFile("n2.png", 16)}, validInput(), nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"https://img.test/n1.png", "https://img.test/n2.png"}, product.ImageURLs)
	})

	t.Run("unknown product", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("FindByID", mock.Anything, "missing").Return(nil, shared.ErrNotFound)
		host := &fakeHost{}
		svc, _, _ := newService(repo, host)

		_, err := svc.UpdateProduct(ctx, "missing", []ImageFile{imageFile("a.png", 16)}, validInput(), nil)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Empty(t, host.uploaded)
	})

	t.Run("invalid details are rejected before lookup", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc, _, _ := newService(repo, &fakeHost{})

		_, err := svc.UpdateProduct(ctx, "p1", nil, ProductInput{Title: "Saree"}, nil)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "CATEGORY_REQUIRED", de.Code)
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("failed upload leaves record untouched", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("FindByID", mock.Anything, "p1").Return(existing(), nil)
		svc, _, _ := newService(repo, &fakeHost{fail: map[string]bool{"a.png": true}})

		_, err := svc.UpdateProduct(ctx, "p1", []ImageFile{imageFile("a.png", 16)}, validInput(), nil)
		assert.ErrorIs(t, err, shared.ErrUploadFailed)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestUploadService_DeleteProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes and publishes", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("Delete", mock.Anything, "p1").Return(nil)
		svc, pub, _ := newService(repo, &fakeHost{})

		require.NoError(t, svc.DeleteProduct(ctx, "p1"))
		assert.Equal(t, []string{catalog.EventTypeProductDeleted}, pub.types())
	})

	t.Run("unknown product", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("Delete", mock.Anything, "nope").Return(shared.ErrNotFound)
		svc, pub, _ := newService(repo, &fakeHost{})

		assert.ErrorIs(t, svc.DeleteProduct(ctx, "nope"), shared.ErrNotFound)
		assert.Empty(t, pub.types())
	})
}
