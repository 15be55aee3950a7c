package repository

import (
	"context"
	"fmt"
	"time"

	bookingerrors "aurabook/internal/bookings/errors"
	"aurabook/pkg/config"
	"aurabook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const SlotLockCollectionName = "SlotLocks"

// SlotLockRepository implements the advisory lock over the unique _id of the
// SlotLocks collection. A booking locks every granularity-aligned bucket its
// range touches, so two overlapping ranges contend on at least one shared key
// even when their start times differ. The collection carries a TTL index on
// expires_at so abandoned locks evaporate on their own.
type SlotLockRepository interface {
	Acquire(ctx context.Context, tenantID, staffID string, rng model.TimeRange) ([]*model.SlotLock, error)
	Release(ctx context.Context, locks []*model.SlotLock) error
}

type mongoSlotLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotLockRepository(cfg *config.Config) SlotLockRepository {
	db := cfg.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoSlotLockRepository{
		cfg:        cfg,
		collection: db.Collection(SlotLockCollectionName),
	}
}

// LockIDs returns one key per granularity-aligned bucket intersecting
// [rng.Start, rng.End). The start is floored to the bucket grid, so any two
// overlapping ranges for the same tenant and staff share at least one key.
func LockIDs(tenantID, staffID string, rng model.TimeRange, granularity time.Duration) []string {
	var ids []string
	for t := rng.Start.UTC().Truncate(granularity); t.Before(rng.End); t = t.Add(granularity) {
		ids = append(ids, fmt.Sprintf("%s:%s:%d", tenantID, staffID, t.Unix()))
	}
	return ids
}

// Acquire takes all bucket locks for rng or none. On a conflict the locks
// taken so far are released before ErrLockTaken is returned.
func (r *mongoSlotLockRepository) Acquire(ctx context.Context, tenantID, staffID string, rng model.TimeRange) ([]*model.SlotLock, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	granularity := time.Duration(r.cfg.SlotGranularityMin) * time.Minute
	now := time.Now().UTC()

	var acquired []*model.SlotLock
	for _, id := range LockIDs(tenantID, staffID, rng, granularity) {
		lock := &model.SlotLock{
			ID:        id,
			ExpiresAt: now.Add(r.cfg.SlotLockTTL),
			CreatedAt: now,
		}

		if _, err := r.collection.InsertOne(ctx, lock); err != nil {
			if releaseErr := r.Release(context.WithoutCancel(ctx), acquired); releaseErr != nil {
				r.cfg.Log.Warn("Failed to release partial slot locks, TTL will reap them", "error", releaseErr)
			}
			if mongo.IsDuplicateKeyError(err) {
				return nil, bookingerrors.ErrLockTaken
			}
			return nil, fmt.Errorf("failed to acquire slot lock %s: %w", id, err)
		}
		acquired = append(acquired, lock)
	}
	return acquired, nil
}

func (r *mongoSlotLockRepository) Release(ctx context.Context, locks []*model.SlotLock) error {
	if len(locks) == 0 {
		return nil
	}

	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	ids := make([]string, 0, len(locks))
	for _, lock := range locks {
		ids = append(ids, lock.ID)
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("failed to release slot locks: %w", err)
	}
	return nil
}
