package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	giftcarderrors "aurabook/internal/giftcards/errors"
	"aurabook/pkg/config"
	dbmongo "aurabook/pkg/db/mongo"
	"aurabook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const GiftCardCollectionName = "GiftCards"

type GiftCardRepository interface {
	// Create inserts a card. The collection holds a unique index on
	// (tenant_id, code); a collision surfaces as ErrDuplicateCode so the
	// service can regenerate.
	Create(ctx context.Context, card *model.GiftCard) error
	FindByID(ctx context.Context, id string) (*model.GiftCard, error)
	FindByCode(ctx context.Context, tenantID, code string) (*model.GiftCard, error)
	FindByTenant(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.GiftCard, int64, error)

	// DecrementBalance atomically subtracts amount from an ACTIVE card with
	// sufficient balance, flipping the status to REDEEMED when the balance
	// reaches zero. ErrConditionFailed means the guard no longer held.
	DecrementBalance(ctx context.Context, id string, amount int64) (*model.GiftCard, error)

	UpdateStatus(ctx context.Context, id string, from, to model.GiftCardStatus) error

	ExecuteTransaction(ctx context.Context, fn dbmongo.TransactionFunc) error
}

type mongoGiftCardRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  dbmongo.TransactionManager
}

func NewMongoGiftCardRepository(cfg *config.Config) GiftCardRepository {
	db := cfg.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoGiftCardRepository{
		cfg:        cfg,
		collection: db.Collection(GiftCardCollectionName),
		txManager:  dbmongo.NewTransactionManager(cfg.Mongo.Client),
	}
}

func (r *mongoGiftCardRepository) Create(ctx context.Context, card *model.GiftCard) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	card.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, card)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return giftcarderrors.ErrDuplicateCode
		}
		return fmt.Errorf("failed to create gift card: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		card.ID = oid.Hex()
	}
	return nil
}

func (r *mongoGiftCardRepository) FindByID(ctx context.Context, id string) (*model.GiftCard, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", giftcarderrors.ErrInvalidID, id)
	}

	var card model.GiftCard
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&card)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, giftcarderrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find gift card: %w", err)
	}
	return &card, nil
}

func (r *mongoGiftCardRepository) FindByCode(ctx context.Context, tenantID, code string) (*model.GiftCard, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var card model.GiftCard
	err := r.collection.FindOne(ctx, bson.M{"tenant_id": tenantID, "code": code}).Decode(&card)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, giftcarderrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find gift card by code: %w", err)
	}
	return &card, nil
}

func (r *mongoGiftCardRepository) FindByTenant(ctx context.Context, tenantID string, limit int, offset int64) ([]*model.GiftCard, int64, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"tenant_id": tenantID}

	totalCount, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count gift cards: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find gift cards: %w", err)
	}
	defer cursor.Close(ctx)

	var cards []*model.GiftCard
	if err = cursor.All(ctx, &cards); err != nil {
		return nil, 0, fmt.Errorf("failed to decode gift cards: %w", err)
	}
	return cards, totalCount, nil
}

func (r *mongoGiftCardRepository) DecrementBalance(ctx context.Context, id string, amount int64) (*model.GiftCard, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", giftcarderrors.ErrInvalidID, id)
	}

	// Guard and mutation in one statement. The filter re-checks status and
	// balance so two concurrent redemptions cannot both succeed past the
	// remaining balance.
	filter := bson.M{
		"_id":                    objectID,
		"status":                 model.GiftCardActive,
		"current_balance.amount": bson.M{"$gte": amount},
	}
	update := bson.M{"$inc": bson.M{"current_balance.amount": -amount}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var card model.GiftCard
	err = r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&card)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, giftcarderrors.ErrConditionFailed
		}
		return nil, fmt.Errorf("failed to decrement balance: %w", err)
	}

	if card.Balance.Amount == 0 && card.Status == model.GiftCardActive {
		if err := r.UpdateStatus(ctx, id, model.GiftCardActive, model.GiftCardRedeemed); err != nil {
			return nil, err
		}
		card.Status = model.GiftCardRedeemed
	}
	return &card, nil
}

func (r *mongoGiftCardRepository) UpdateStatus(ctx context.Context, id string, from, to model.GiftCardStatus) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", giftcarderrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID, "status": from},
		bson.M{"$set": bson.M{"status": to}},
	)
	if err != nil {
		return fmt.Errorf("failed to update gift card status: %w", err)
	}
	if result.MatchedCount == 0 {
		return giftcarderrors.ErrConditionFailed
	}
	return nil
}

func (r *mongoGiftCardRepository) ExecuteTransaction(ctx context.Context, fn dbmongo.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

// withTimeout caps repository calls unless the context is already a
// transaction session, which must not be re-wrapped.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
