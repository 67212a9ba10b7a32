package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sari-store/storefront/internal/domain/catalog"
	"github.com/sari-store/storefront/internal/domain/shared"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// productDocument is the stored shape of a product
type productDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Price     string             `bson:"price"`
	Category  string             `bson:"category"`
	ImageURLs []string           `bson:"imageURLs,omitempty"`
	ImageURL  string             `bson:"imageURL,omitempty"`
	CreatedAt time.Time          `bson:"createdAt"`
}

func (d *productDocument) toDomain() *catalog.Product {
	p := &catalog.Product{
		Title:     d.Title,
		Price:     d.Price,
		Category:  d.Category,
		ImageURLs: d.ImageURLs,
		ImageURL:  d.ImageURL,
		CreatedAt: d.CreatedAt,
	}
	if !d.ID.IsZero() {
		p.ID = d.ID.Hex()
	}
	p.Normalize()
	return p
}

func fromDomain(p *catalog.Product) productDocument {
	return productDocument{
		Title:     p.Title,
		Price:     p.Price,
		Category:  p.Category,
		ImageURLs: p.ImageURLs,
		ImageURL:  p.ImageURL,
		CreatedAt: p.CreatedAt,
	}
}

// ProductStore implements catalog.ProductRepository and catalog.ChangeFeed
type ProductStore struct {
	coll   *mongo.Collection
	logger *zap.Logger
	now    func() time.Time
}

// NewProductStore wraps a collection
func NewProductStore(coll *mongo.Collection, logger *zap.Logger) *ProductStore {
	return &ProductStore{coll: coll, logger: logger, now: time.Now}
}

// FindAll returns every product, newest first
func (s *ProductStore) FindAll(ctx context.Context) ([]catalog.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}

	products := make([]catalog.Product, len(docs))
	for i := range docs {
		products[i] = *docs[i].toDomain()
	}
	return products, nil
}

// FindByID finds a product by its hex object id
func (s *ProductStore) FindByID(ctx context.Context, id string) (*catalog.Product, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, shared.ErrNotFound
	}

	var doc productDocument
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load product %s: %w", id, err)
	}
	return doc.toDomain(), nil
}

// Create inserts p and assigns its ID and CreatedAt
func (s *ProductStore) Create(ctx context.Context, p *catalog.Product) error {
	doc := fromDomain(p)
	doc.ID = primitive.NewObjectID()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = s.now()
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	p.ID = doc.ID.Hex()
	p.CreatedAt = doc.CreatedAt
	return nil
}

// Update replaces the editable fields of an existing product
func (s *ProductStore) Update(ctx context.Context, p *catalog.Product) error {
	oid, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return shared.ErrNotFound
	}

	res, err := s.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"title":     p.Title,
		"price":     p.Price,
		"category":  p.Category,
		"imageURLs": p.ImageURLs,
		"imageURL":  p.ImageURL,
	}})
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", p.ID, err)
	}
	if res.MatchedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a product
func (s *ProductStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return shared.ErrNotFound
	}

	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete product %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Watch opens a change stream on the collection and calls onChange after
// every insert, update, replace or delete. It returns nil when ctx is done.
// Change streams require a replica set.
func (s *ProductStore) Watch(ctx context.Context, onChange func()) error {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"operationType": bson.M{"$in": bson.A{"insert", "update", "replace", "delete"}},
		}}},
	}
	stream, err := s.coll.Watch(ctx, pipeline)
	if err != nil {
		return fmt.Errorf("failed to open product change stream: %w", err)
	}
	defer stream.Close(context.Background())

	s.logger.Info("Watching product collection for changes",
		zap.String("collection", s.coll.Name()),
	)

	for stream.Next(ctx) {
		onChange()
	}
	if ctx.Err() != nil {
		return nil
	}
	if err := stream.Err(); err != nil {
		return fmt.Errorf("product change stream failed: %w", err)
	}
	return nil
}

var (
	_ catalog.ProductRepository = (*ProductStore)(nil)
	_ catalog.ChangeFeed        = (*ProductStore)(nil)
)
