package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	categorieserrors "vntrips/internal/categories/errors"
	"vntrips/pkg/config"
	mongotx "vntrips/pkg/db/mongo"
	"vntrips/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Categories"
)

// CategoryFilter narrows category listings. Nil/zero fields are skipped.
type CategoryFilter struct {
	Type   model.CategoryType
	Active *bool
	Level  *int
	Parent string
	Region model.Region
}

type mongoCategoryRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type CategoryRepository interface {
	Create(ctx context.Context, c *model.Category) error
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)
	SlugTaken(ctx context.Context, slug string, excludeID string) (bool, error)
	Find(ctx context.Context, filter CategoryFilter, limit int, offset int64) ([]*model.Category, error)
	Count(ctx context.Context, filter CategoryFilter) (int64, error)
	FindRoots(ctx context.Context, categoryType model.CategoryType, activeOnly bool) ([]*model.Category, error)
	FindByParent(ctx context.Context, parentID string, activeOnly bool) ([]*model.Category, error)
	FindIDsByType(ctx context.Context, categoryType model.CategoryType, region model.Region) ([]string, error)
	FindRefs(ctx context.Context, ids []string) (map[string]*model.CategoryRef, error)
	CountChildren(ctx context.Context, parentID string) (int64, error)
	Update(ctx context.Context, id string, c *model.Category) (*mongo.UpdateResult, error)
	Delete(ctx context.Context, id string) error
	PushSubcategory(ctx context.Context, parentID, childID string) error
	PullSubcategory(ctx context.Context, parentID, childID string) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoCategoryRepository(cfg *config.Config) CategoryRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoCategoryRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction, where wrapping the SessionContext would break session
// semantics.
func (r *mongoCategoryRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (f CategoryFilter) toBSON() bson.M {
	filter := bson.M{}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Active != nil {
		filter["is_active"] = *f.Active
	}
	if f.Level != nil {
		filter["level"] = *f.Level
	}
	if f.Parent != "" {
		if objectID, err := primitive.ObjectIDFromHex(f.Parent); err == nil {
			filter["parent"] = objectID.Hex()
		} else {
			filter["parent"] = f.Parent
		}
	}
	if f.Region != "" && f.Region != model.RegionAll {
		filter["region"] = bson.M{"$in": []model.Region{f.Region, model.RegionAll}}
	}
	return filter
}

func (r *mongoCategoryRepository) Create(ctx context.Context, c *model.Category) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Subcategories == nil {
		c.Subcategories = []string{}
	}

	result, err := r.collection.InsertOne(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid.Hex()
	}

	return nil
}

func (r *mongoCategoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", categorieserrors.ErrInvalidID, id)
	}

	var c model.Category
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", categorieserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}
	return &c, nil
}

func (r *mongoCategoryRepository) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var c model.Category
	err := r.collection.FindOne(ctx, bson.M{"slug": slug}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: slug %s", categorieserrors.ErrNotFound, slug)
		}
		return nil, fmt.Errorf("failed to find category by slug: %w", err)
	}
	return &c, nil
}

// SlugTaken reports whether another category already owns the slug. The
// unique index is the authoritative guard; this check exists to produce a
// friendly SLUG_EXISTS error instead of a raw constraint violation.
func (r *mongoCategoryRepository) SlugTaken(ctx context.Context, slug string, excludeID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"slug": slug}
	if excludeID != "" {
		objectID, err := primitive.ObjectIDFromHex(excludeID)
		if err != nil {
			return false, fmt.Errorf("%w: %s", categorieserrors.ErrInvalidID, excludeID)
		}
		filter["_id"] = bson.M{"$ne": objectID}
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("failed to check slug availability: %w", err)
	}
	return count > 0, nil
}

func (r *mongoCategoryRepository) Find(ctx context.Context, filter CategoryFilter, limit int, offset int64) ([]*model.Category, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "sort_order", Value: 1}, {Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter.toBSON(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer cursor.Close(ctx)

	var categories []*model.Category
	if err = cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}

	return categories, nil
}

func (r *mongoCategoryRepository) Count(ctx context.Context, filter CategoryFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter.toBSON())
	if err != nil {
		return 0, fmt.Errorf("failed to count categories: %w", err)
	}
	return count, nil
}

func (r *mongoCategoryRepository) FindRoots(ctx context.Context, categoryType model.CategoryType, activeOnly bool) ([]*model.Category, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"type": categoryType, "level": 0}
	if activeOnly {
		filter["is_active"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query root categories: %w", err)
	}
	defer cursor.Close(ctx)

	var categories []*model.Category
	if err = cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode root categories: %w", err)
	}

	return categories, nil
}

func (r *mongoCategoryRepository) FindByParent(ctx context.Context, parentID string, activeOnly bool) ([]*model.Category, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"parent": parentID}
	if activeOnly {
		filter["is_active"] = true
	}

	opts := options.Find().SetSort(bson.D{{Key: "sort_order", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query subcategories of %s: %w", parentID, err)
	}
	defer cursor.Close(ctx)

	var categories []*model.Category
	if err = cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode subcategories: %w", err)
	}

	return categories, nil
}

// FindIDsByType returns the ids of every category of the given type. Region
// lives on the category, so catalog region filtering resolves through here:
// a non-"all" region narrows to categories tagged with it or with "all".
func (r *mongoCategoryRepository) FindIDsByType(ctx context.Context, categoryType model.CategoryType, region model.Region) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"type": categoryType}
	if region != "" && region != model.RegionAll {
		filter["region"] = bson.M{"$in": []model.Region{region, model.RegionAll}}
	}

	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query category ids for type %s: %w", categoryType, err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode category ids: %w", err)
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID.Hex())
	}
	return ids, nil
}

// FindRefs returns the minimal {name, slug, type} projection for the given
// ids, keyed by hex id. Used to populate catalog listings.
func (r *mongoCategoryRepository) FindRefs(ctx context.Context, ids []string) (map[string]*model.CategoryRef, error) {
	if len(ids) == 0 {
		return map[string]*model.CategoryRef{}, nil
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objectID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue
		}
		objectIDs = append(objectIDs, objectID)
	}

	opts := options.Find().SetProjection(bson.M{"name": 1, "slug": 1, "type": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": objectIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query category refs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ID   primitive.ObjectID  `bson:"_id"`
		Name model.LocalizedText `bson:"name"`
		Slug string              `bson:"slug"`
		Type model.CategoryType  `bson:"type"`
	}
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode category refs: %w", err)
	}

	refs := make(map[string]*model.CategoryRef, len(docs))
	for _, d := range docs {
		refs[d.ID.Hex()] = &model.CategoryRef{
			ID:   d.ID.Hex(),
			Name: d.Name,
			Slug: d.Slug,
			Type: d.Type,
		}
	}
	return refs, nil
}

func (r *mongoCategoryRepository) CountChildren(ctx context.Context, parentID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"parent": parentID})
	if err != nil {
		return 0, fmt.Errorf("failed to count subcategories of %s: %w", parentID, err)
	}
	return count, nil
}

func (r *mongoCategoryRepository) Update(ctx context.Context, id string, c *model.Category) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", categorieserrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"slug":        c.Slug,
			"name":        c.Name,
			"description": c.Description,
			"region":      c.Region,
			"is_active":   c.IsActive,
			"sort_order":  c.SortOrder,
			"images":      c.Images,
			"transfer":    c.Transfer,
			"updated_at":  time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: %s", categorieserrors.ErrNotFound, id)
	}

	return result, nil
}

func (r *mongoCategoryRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", categorieserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", categorieserrors.ErrNotFound, id)
	}

	return nil
}

func (r *mongoCategoryRepository) PushSubcategory(ctx context.Context, parentID, childID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(parentID)
	if err != nil {
		return fmt.Errorf("%w: %s", categorieserrors.ErrInvalidID, parentID)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$addToSet": bson.M{"subcategories": childID}},
	)
	if err != nil {
		return fmt.Errorf("failed to add subcategory reference: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", categorieserrors.ErrNotFound, parentID)
	}
	return nil
}

func (r *mongoCategoryRepository) PullSubcategory(ctx context.Context, parentID, childID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(parentID)
	if err != nil {
		return fmt.Errorf("%w: %s", categorieserrors.ErrInvalidID, parentID)
	}

	_, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$pull": bson.M{"subcategories": childID}},
	)
	if err != nil {
		return fmt.Errorf("failed to remove subcategory reference: %w", err)
	}
	return nil
}

func (r *mongoCategoryRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
