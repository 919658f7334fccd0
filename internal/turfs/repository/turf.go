package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	turfserrors "turfbook/internal/turfs/errors"
	"turfbook/pkg/config"
	"turfbook/pkg/model"
)

const CollectionName = "Turfs"

type TurfRepository interface {
	Create(ctx context.Context, turf *model.Turf) (string, error)
	FindByID(ctx context.Context, id string) (*model.Turf, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Turf, int64, error)
	FindByLocation(ctx context.Context, location string, maxPrice int64) ([]*model.Turf, error)
	FindByOwner(ctx context.Context, ownerID string) ([]*model.Turf, error)
	DistinctLocations(ctx context.Context) ([]string, error)
	Update(ctx context.Context, id string, update *model.TurfUpdate) error
	Delete(ctx context.Context, id string) error
}

type mongoTurfRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTurfRepository(cfg *config.Config) TurfRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoTurfRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoTurfRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoTurfRepository) Create(ctx context.Context, turf *model.Turf) (string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	turf.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.InsertOne(ctx, turf)
	if err != nil {
		return "", fmt.Errorf("failed to insert turf: %w", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted ID type %T", result.InsertedID)
	}
	turf.ID = oid.Hex()
	return turf.ID, nil
}

func (r *mongoTurfRepository) FindByID(ctx context.Context, id string) (*model.Turf, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", turfserrors.ErrInvalidID, id)
	}

	var turf model.Turf
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&turf)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, turfserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find turf: %w", err)
	}

	return &turf, nil
}

func (r *mongoTurfRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Turf, int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count turfs: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find turfs: %w", err)
	}
	defer cursor.Close(ctx)

	var turfs []*model.Turf
	if err = cursor.All(ctx, &turfs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode turfs: %w", err)
	}

	return turfs, total, nil
}

// FindByLocation matches turfs whose location contains the given term, with
// an optional price ceiling. Locations are stored lowercased, so a
// case-insensitive regex over the normalized term is enough.
func (r *mongoTurfRepository) FindByLocation(ctx context.Context, location string, maxPrice int64) ([]*model.Turf, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	filter := bson.M{}
	if location != "" {
		filter["location"] = bson.M{"$regex": primitive.Regex{Pattern: regexp.QuoteMeta(location), Options: "i"}}
	}
	if maxPrice > 0 {
		filter["price"] = bson.M{"$lte": maxPrice}
	}

	opts := options.Find().SetSort(bson.D{{Key: "price", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find turfs by location: %w", err)
	}
	defer cursor.Close(ctx)

	var turfs []*model.Turf
	if err = cursor.All(ctx, &turfs); err != nil {
		return nil, fmt.Errorf("failed to decode turfs: %w", err)
	}

	return turfs, nil
}

func (r *mongoTurfRepository) FindByOwner(ctx context.Context, ownerID string) ([]*model.Turf, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find turfs by owner: %w", err)
	}
	defer cursor.Close(ctx)

	var turfs []*model.Turf
	if err = cursor.All(ctx, &turfs); err != nil {
		return nil, fmt.Errorf("failed to decode turfs: %w", err)
	}

	return turfs, nil
}

func (r *mongoTurfRepository) DistinctLocations(ctx context.Context) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	values, err := r.collection.Distinct(ctx, "location", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list turf locations: %w", err)
	}

	locations := make([]string, 0, len(values))
	for _, v := range values {
		if loc, ok := v.(string); ok && loc != "" {
			locations = append(locations, loc)
		}
	}
	return locations, nil
}

func (r *mongoTurfRepository) Update(ctx context.Context, id string, update *model.TurfUpdate) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", turfserrors.ErrInvalidID, id)
	}

	set := bson.M{}
	if update.Name != "" {
		set["name"] = update.Name
	}
	if update.Location != "" {
		set["location"] = update.Location
	}
	if update.Price != nil {
		set["price"] = *update.Price
	}
	if update.OpenTime != "" {
		set["open_time"] = update.OpenTime
	}
	if update.CloseTime != "" {
		set["close_time"] = update.CloseTime
	}
	if len(set) == 0 {
		return nil
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update turf: %w", err)
	}
	if result.MatchedCount == 0 {
		return turfserrors.ErrNotFound
	}
	return nil
}

func (r *mongoTurfRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", turfserrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete turf: %w", err)
	}
	if result.DeletedCount == 0 {
		return turfserrors.ErrNotFound
	}
	return nil
}
