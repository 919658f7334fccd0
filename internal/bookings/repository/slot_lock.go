package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	bookingserrors "turfbook/internal/bookings/errors"
	"turfbook/pkg/config"
	"turfbook/pkg/model"
)

const LockCollectionName = "Slot_locks"

// SlotLockRepository serializes check-then-commit per (turf, date). Acquire
// blocks, polling until the lock is free or ctx expires, so two requests for
// disjoint intervals on the same day both get their turn instead of one
// failing spuriously.
type SlotLockRepository interface {
	Acquire(ctx context.Context, turfID, date string) (string, error)
	Release(ctx context.Context, lockID string) error
}

type mongoSlotLockRepository struct {
	collection *mongo.Collection
	ttl        time.Duration
	retryWait  time.Duration
}

func NewSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		collection: db.Collection(LockCollectionName),
		ttl:        cfg.SlotLockTTL,
		retryWait:  cfg.SlotLockRetryWait,
	}
}

func (r *mongoSlotLockRepository) Acquire(ctx context.Context, turfID, date string) (string, error) {
	lockID := fmt.Sprintf("slot_%s_%s", turfID, date)

	for {
		now := time.Now()
		_, err := r.collection.InsertOne(ctx, &model.SlotLock{
			ID:        lockID,
			ExpiresAt: now.Add(r.ttl),
			CreatedAt: now,
		})
		if err == nil {
			return lockID, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			return "", fmt.Errorf("failed to acquire slot lock: %w", err)
		}

		// Held by another request. Reap the lock if its holder crashed past
		// the TTL, then wait for our turn.
		_, _ = r.collection.DeleteOne(ctx, bson.M{
			"_id":        lockID,
			"expires_at": bson.M{"$lt": now},
		})

		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %w", bookingserrors.ErrLockUnavailable, ctx.Err())
		case <-time.After(r.retryWait):
		}
	}
}

func (r *mongoSlotLockRepository) Release(ctx context.Context, lockID string) error {
	// Release must succeed even when the request context was cancelled after
	// commit, otherwise the slot stays locked until the TTL reaper runs.
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
	}

	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to release slot lock: %w", err)
	}
	return nil
}
