package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/sari-store/storefront/internal/domain/catalog"
	"github.com/sari-store/storefront/internal/domain/shared"
	"github.com/sari-store/storefront/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	return db
}

func newProduct(t *testing.T, title, category string, createdAt time.Time) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(title, "1200", category, []string{"https://img/" + title + "-1.jpg", "https://img/" + title + "-2.jpg"})
	require.NoError(t, err)
	p.CreatedAt = createdAt
	return p
}

func TestGormProductRepository_CreateAndFind(t *testing.T) {
	repo := NewGormProductRepository(setupTestDB(t))
	ctx := context.Background()

	p := newProduct(t, "Kanjivaram", "Silk", time.Time{})
	require.NoError(t, repo.Create(ctx, p))
	require.NotEmpty(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kanjivaram", found.Title)
	assert.Equal(t, "1200", found.Price)
	assert.Equal(t, "Silk", found.Category)
	assert.Equal(t, []string{"https://img/Kanjivaram-1.jpg", "https://img/Kanjivaram-2.jpg"}, found.ImageURLs)
	assert.Equal(t, "https://img/Kanjivaram-1.jpg", found.ImageURL)
}

func TestGormProductRepository_FindAllNewestFirst(t *testing.T) {
	repo := NewGormProductRepository(setupTestDB(t))
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, newProduct(t, "oldest", "Cotton", base)))
	require.NoError(t, repo.Create(ctx, newProduct(t, "newest", "Silk", base.Add(2*time.Hour))))
	require.NoError(t, repo.Create(ctx, newProduct(t, "middle", "Zari", base.Add(time.Hour))))

	products, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	assert.Equal(t, "newest", products[0].Title)
	assert.Equal(t, "middle", products[1].Title)
	assert.Equal(t, "oldest", products[2].Title)
}

func TestGormProductRepository_FindAllEmpty(t *testing.T) {
	repo := NewGormProductRepository(setupTestDB(t))

	products, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestGormProductRepository_LegacyRowIsNormalized(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)

	id := uuid.New()
	require.NoError(t, db.Create(&models.ProductModel{
		BaseModel: models.BaseModel{ID: id, CreatedAt: time.Now(), UpdatedAt: time.Now()},
		Title:     "Legacy",
		ImageURL:  "https://img/legacy.jpg",
	}).Error)

	found, err := repo.FindByID(context.Background(), id.String())
	require.NoError(t, err)
	assert.Equal(t, []string{"https://img/legacy.jpg"}, found.ImageURLs)
}

func TestGormProductRepository_NotFound(t *testing.T) {
	repo := NewGormProductRepository(setupTestDB(t))
	ctx := context.Background()

	tests := []struct {
		name string
		id   string
	}{
		{"unknown uuid", uuid.NewString()},
		{"malformed id", "not-a-uuid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.FindByID(ctx, tt.id)
			assert.ErrorIs(t, err, shared.ErrNotFound)

			assert.ErrorIs(t, repo.Delete(ctx, tt.id), shared.ErrNotFound)

			p := newProduct(t, "ghost", "Silk", time.Now())
			p.ID = tt.id
			assert.ErrorIs(t, repo.Update(ctx, p), shared.ErrNotFound)
		})
	}
}

func TestGormProductRepository_Update(t *testing.T) {
	repo := NewGormProductRepository(setupTestDB(t))
	ctx := context.Background()

	p := newProduct(t, "Banarasi", "Silk", time.Now())
	require.NoError(t, repo.Create(ctx, p))

	require.NoError(t, p.Update("Banarasi Gold", "", "Festive", []string{"https://img/new.jpg"}))
	require.NoError(t, repo.Update(ctx, p))

	found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Banarasi Gold", found.Title)
	assert.Equal(t, "", found.Price)
	assert.Equal(t, "Festive", found.Category)
	assert.Equal(t, []string{"https://img/new.jpg"}, found.ImageURLs)
	assert.Equal(t, "https://img/new.jpg", found.ImageURL)
}

func TestGormProductRepository_Delete(t *testing.T) {
	repo := NewGormProductRepository(setupTestDB(t))
	ctx := context.Background()

	p := newProduct(t, "Chanderi", "Cotton", time.Now())
	require.NoError(t, repo.Create(ctx, p))
	require.NoError(t, repo.Delete(ctx, p.ID))

	_, err := repo.FindByID(ctx, p.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormProductRepository_DeleteSQL(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: mockDB, DriverName: "postgres"}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	id := uuid.New()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "products" WHERE id = $1`)).
		WithArgs(id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewGormProductRepository(db)
	require.NoError(t, repo.Delete(context.Background(), id.String()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
