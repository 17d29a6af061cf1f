package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	productserrors "vntrips/internal/products/errors"
	"vntrips/pkg/config"
	mongotx "vntrips/pkg/db/mongo"
	"vntrips/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Products"
)

// CatalogQuery is the resolved filter document source for catalog listings.
// CategoryIDs comes pre-resolved by the service for domain routes; CategoryID
// is an explicit single-category filter.
// Region is absent here on purpose: it lives on Category, so region
// filtering narrows CategoryIDs before the query is built.
type CatalogQuery struct {
	CategoryIDs []string
	CategoryID  string
	Active      *bool
	Featured    *bool
	MinPrice    *float64
	MaxPrice    *float64
	Search      string
	SortBy      string
	SortDir     string
}

var sortFields = map[string]string{
	"createdAt": "created_at",
	"title":     "title.en",
	"price":     "pricing.adult",
	"rating":    "rating.average",
	"duration":  "duration.days",
}

// ValidSortKey reports whether key is an accepted catalog sort field.
func ValidSortKey(key string) bool {
	_, ok := sortFields[key]
	return ok
}

type mongoProductRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	SlugTaken(ctx context.Context, slug string, excludeID string) (bool, error)
	Search(ctx context.Context, q CatalogQuery, limit int, offset int64) ([]*model.Product, error)
	Count(ctx context.Context, q CatalogQuery) (int64, error)
	CountByCategory(ctx context.Context, categoryID string) (int64, error)
	Update(ctx context.Context, id string, p *model.Product) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoProductRepository(cfg *config.Config) ProductRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoProductRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

func (r *mongoProductRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (q CatalogQuery) toBSON() bson.M {
	filter := bson.M{}

	if len(q.CategoryIDs) > 0 {
		filter["category"] = bson.M{"$in": q.CategoryIDs}
	} else if q.CategoryID != "" {
		filter["category"] = q.CategoryID
	}

	if q.Active != nil {
		filter["is_active"] = *q.Active
	}
	if q.Featured != nil {
		filter["is_featured"] = *q.Featured
	}

	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["pricing.adult"] = price
	}

	if q.Search != "" {
		filter["$text"] = bson.M{"$search": q.Search}
	}

	return filter
}

// sort builds the sort document. Text-match score ranks first when searching;
// the requested key breaks ties.
func (q CatalogQuery) sort() bson.D {
	field, ok := sortFields[q.SortBy]
	if !ok {
		field = "created_at"
	}
	dir := -1
	if q.SortDir == "asc" {
		dir = 1
	}

	if q.Search != "" {
		return bson.D{
			{Key: "score", Value: bson.M{"$meta": "textScore"}},
			{Key: field, Value: dir},
		}
	}
	return bson.D{{Key: field, Value: dir}}
}

func (r *mongoProductRepository) Create(ctx context.Context, p *model.Product) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	p.CreatedAt = now
	p.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		p.ID = oid.Hex()
	}

	return nil
}

func (r *mongoProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", productserrors.ErrInvalidID, id)
	}

	var p model.Product
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", productserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &p, nil
}

func (r *mongoProductRepository) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var p model.Product
	err := r.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: slug %s", productserrors.ErrNotFound, slug)
		}
		return nil, fmt.Errorf("failed to find product by slug: %w", err)
	}
	return &p, nil
}

func (r *mongoProductRepository) SlugTaken(ctx context.Context, slug string, excludeID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"slug": slug}
	if excludeID != "" {
		objectID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return false, fmt.Errorf("%w: %s", productserrors.ErrInvalidID, excludeID)
		}
		filter["_id"] = bson.M{"$ne": objectID}
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check slug availability: %w", err)
	}
	return count > 0, nil
}

func (r *mongoProductRepository) Search(ctx context.Context, q CatalogQuery, limit int, offset int64) ([]*model.Product, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(q.sort())

	if q.Search != "" {
		opts.SetProjection(bson.M{"score": bson.M{"$meta": "textScore"}})
	}

	cursor, err := r.collection.Find(ctx, q.toBSON(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	var products []*model.Product
	if err = cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}

func (r *mongoProductRepository) Count(ctx context.Context, q CatalogQuery) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, q.toBSON())
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

func (r *mongoProductRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"category": categoryID})
	if err != nil {
		return 0, fmt.Errorf("failed to count products for category %s: %w", categoryID, err)
	}
	return count, nil
}

func (r *mongoProductRepository) Update(ctx context.Context, id string, p *model.Product) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", productserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"slug":              p.Slug,
			"title":             p.Title,
			"description":       p.Description,
			"short_description": p.ShortDescription,
			"location":          p.Location,
			"category":          p.CategoryID,
			"pricing":           p.Pricing,
			"duration":          p.Duration,
			"transfer_service":  p.TransferService,
			"images":            p.Images,
			"highlights":        p.Highlights,
			"itinerary":         p.Itinerary,
			"included":          p.Included,
			"excluded":          p.Excluded,
			"is_active":         p.IsActive,
			"is_featured":       p.IsFeatured,
			"sort_order":        p.SortOrder,
			"updated_at":        time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: %s", productserrors.ErrNotFound, id)
	}

	return result, nil
}

func (r *mongoProductRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", productserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", productserrors.ErrNotFound, id)
	}

	return nil
}

func (r *mongoProductRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
