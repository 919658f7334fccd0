package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingserrors "turfbook/internal/bookings/errors"
	"turfbook/pkg/config"
	mongotx "turfbook/pkg/db/mongo"
	"turfbook/pkg/model"
	"turfbook/pkg/timeslot"
)

const CollectionName = "Bookings"

// BookingRepository is the interval store: the conflict-authoritative record
// of committed reservations, keyed by turf and date.
type BookingRepository interface {
	// FindConflicts returns every booking for turfID on date whose half-open
	// interval overlaps [start, end). It observes all commits that completed
	// before the call began.
	FindConflicts(ctx context.Context, turfID, date, start, end string) ([]*model.Booking, error)

	// Commit atomically inserts the booking. It acquires the (turf, date)
	// slot lock, re-runs the conflict check under it, and only then inserts,
	// so no overlapping booking can slip in between a caller's pre-check and
	// the insert. Losing the re-check returns ErrTimeConflict.
	Commit(ctx context.Context, booking *model.Booking) error

	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByUser(ctx context.Context, userID string) ([]*model.Booking, error)
	BookedTimePoints(ctx context.Context, turfID, date string, granularityMin int) ([]string, error)
	DistinctBookedTurfs(ctx context.Context, date, timePoint string) ([]string, error)
	MarkPaid(ctx context.Context, id string) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	locks      SlotLockRepository
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config, locks SlotLockRepository) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		locks:      locks,
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout bounds a store call unless the context is a transaction
// session, which cannot be wrapped without breaking transaction semantics.
func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	deadline, hasDeadline := ctx.Deadline()
	if hasDeadline && time.Until(deadline) < timeout {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) FindConflicts(ctx context.Context, turfID, date, start, end string) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	return r.findConflictsWith(ctx, turfID, date, start, end)
}

func (r *mongoBookingRepository) findConflictsWith(ctx context.Context, turfID, date, start, end string) ([]*model.Booking, error) {
	// Zero-padded HH:MM compares correctly as strings, so the half-open
	// overlap test maps directly onto the index.
	filter := bson.M{
		"turf_id":    turfID,
		"date":       date,
		"start_time": bson.M{"$lt": end},
		"end_time":   bson.M{"$gt": start},
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find conflicting bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

func (r *mongoBookingRepository) Commit(ctx context.Context, booking *model.Booking) error {
	lockID, err := r.locks.Acquire(ctx, booking.TurfID, booking.Date)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := r.locks.Release(ctx, lockID); releaseErr != nil {
			r.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	// Under the lock, re-check and insert inside one transaction so the
	// insert only lands against the snapshot the re-check saw.
	return r.txManager.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		conflicts, err := r.findConflictsWith(sessCtx, booking.TurfID, booking.Date, booking.StartTime, booking.EndTime)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			first := conflicts[0]
			return fmt.Errorf("%w: %s-%s on %s", bookingserrors.ErrTimeConflict,
				first.StartTime, first.EndTime, first.Date)
		}

		booking.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
		result, err := r.collection.InsertOne(sessCtx, booking)
		if err != nil {
			return fmt.Errorf("failed to insert booking: %w", err)
		}

		if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
			booking.ID = oid.Hex()
		}
		return nil
	})
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	var booking model.Booking
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings for user: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

// BookedTimePoints renders the busy marks for an availability view: every
// aligned time point covered by a booking on the date, endpoints included.
// Conflict decisions never consult this grid.
func (r *mongoBookingRepository) BookedTimePoints(ctx context.Context, turfID, date string, granularityMin int) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"turf_id": turfID, "date": date})
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings for date: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	seen := make(map[string]struct{})
	for _, b := range bookings {
		points, err := timeslot.Points(b.StartTime, b.EndTime, granularityMin)
		if err != nil {
			return nil, fmt.Errorf("booking %s has malformed interval: %w", b.ID, err)
		}
		for _, p := range points {
			seen[p] = struct{}{}
		}
	}

	booked := make([]string, 0, len(seen))
	for p := range seen {
		booked = append(booked, p)
	}
	sort.Strings(booked)
	return booked, nil
}

// DistinctBookedTurfs lists turfs busy at the given time point on date, used
// to exclude them from availability search results.
func (r *mongoBookingRepository) DistinctBookedTurfs(ctx context.Context, date, timePoint string) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoReadTimeout)
	defer cancel()

	filter := bson.M{
		"date":       date,
		"start_time": bson.M{"$lte": timePoint},
		"end_time":   bson.M{"$gt": timePoint},
	}

	values, err := r.collection.Distinct(ctx, "turf_id", filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list booked turfs: %w", err)
	}

	turfIDs := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			turfIDs = append(turfIDs, id)
		}
	}
	return turfIDs, nil
}

// MarkPaid flips is_paid. Repeated calls for the same booking are no-ops, so
// duplicate payment webhooks are harmless.
func (r *mongoBookingRepository) MarkPaid(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.MongoWriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"is_paid": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark booking paid: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingserrors.ErrNotFound
	}
	return nil
}
