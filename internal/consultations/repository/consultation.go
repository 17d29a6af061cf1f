package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	consultationserrors "vntrips/internal/consultations/errors"
	"vntrips/pkg/config"
	"vntrips/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Consultations"
)

type ConsultationFilter struct {
	Status   model.ConsultationStatus
	Priority model.ConsultationPriority
	Email    string
}

func (f ConsultationFilter) toBSON() bson.M {
	filter := bson.M{}

	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.Email != "" {
		filter["customer_info.email"] = f.Email
	}

	return filter
}

type mongoConsultationRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type ConsultationRepository interface {
	Create(ctx context.Context, c *model.Consultation) error
	FindByID(ctx context.Context, id string) (*model.Consultation, error)
	Find(ctx context.Context, filter ConsultationFilter, limit int, offset int64) ([]*model.Consultation, error)
	Count(ctx context.Context, filter ConsultationFilter) (int64, error)
	UpdateStatus(ctx context.Context, id string, status model.ConsultationStatus, priority model.ConsultationPriority) (*model.Consultation, error)
	PushNote(ctx context.Context, id string, note model.AdminNote) (*model.Consultation, error)
	PushContact(ctx context.Context, id string, record model.ContactRecord) (*model.Consultation, error)
}

func NewMongoConsultationRepository(cfg *config.Config) ConsultationRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoConsultationRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoConsultationRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoConsultationRepository) Create(ctx context.Context, c *model.Consultation) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	c.CreatedAt = now
	c.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to create consultation: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		c.ID = oid.Hex()
	}

	return nil
}

func (r *mongoConsultationRepository) FindByID(ctx context.Context, id string) (*model.Consultation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", consultationserrors.ErrInvalidID, id)
	}

	var c model.Consultation
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", consultationserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find consultation: %w", err)
	}
	return &c, nil
}

func (r *mongoConsultationRepository) Find(ctx context.Context, filter ConsultationFilter, limit int, offset int64) ([]*model.Consultation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter.toBSON(), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query consultations: %w", err)
	}
	defer cursor.Close(ctx)

	var consultations []*model.Consultation
	if err = cursor.All(ctx, &consultations); err != nil {
		return nil, fmt.Errorf("failed to decode consultations: %w", err)
	}

	return consultations, nil
}

func (r *mongoConsultationRepository) Count(ctx context.Context, filter ConsultationFilter) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, filter.toBSON())
	if err != nil {
		return 0, fmt.Errorf("failed to count consultations: %w", err)
	}
	return count, nil
}

func (r *mongoConsultationRepository) UpdateStatus(ctx context.Context, id string, status model.ConsultationStatus, priority model.ConsultationPriority) (*model.Consultation, error) {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}
	if priority != "" {
		set["priority"] = priority
	}
	return r.findAndUpdate(ctx, id, bson.M{"$set": set})
}

func (r *mongoConsultationRepository) PushNote(ctx context.Context, id string, note model.AdminNote) (*model.Consultation, error) {
	return r.findAndUpdate(ctx, id, bson.M{
		"$push": bson.M{"admin_notes": note},
		"$set":  bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	})
}

func (r *mongoConsultationRepository) PushContact(ctx context.Context, id string, record model.ContactRecord) (*model.Consultation, error) {
	return r.findAndUpdate(ctx, id, bson.M{
		"$push": bson.M{"contact_history": record},
		"$set":  bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	})
}

func (r *mongoConsultationRepository) findAndUpdate(ctx context.Context, id string, update bson.M) (*model.Consultation, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", consultationserrors.ErrInvalidID, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c model.Consultation
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", consultationserrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to update consultation: %w", err)
	}
	return &c, nil
}
