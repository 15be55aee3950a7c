package repository

import (
	"context"
	"fmt"
	"time"

	"aurabook/pkg/config"
	"aurabook/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const TransactionCollectionName = "GiftCardTransactions"

// TransactionRepository is the append-only ledger. There is no update or
// delete; corrections are new entries.
type TransactionRepository interface {
	Append(ctx context.Context, tx *model.GiftCardTransaction) error
	FindByCard(ctx context.Context, giftCardID string) ([]*model.GiftCardTransaction, error)
}

type mongoTransactionRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTransactionRepository(cfg *config.Config) TransactionRepository {
	db := cfg.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoTransactionRepository{
		cfg:        cfg,
		collection: db.Collection(TransactionCollectionName),
	}
}

func (r *mongoTransactionRepository) Append(ctx context.Context, tx *model.GiftCardTransaction) error {
	ctx, cancel := withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	tx.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	if _, err := r.collection.InsertOne(ctx, tx); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

func (r *mongoTransactionRepository) FindByCard(ctx context.Context, giftCardID string) ([]*model.GiftCardTransaction, error) {
	ctx, cancel := withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"gift_card_id": giftCardID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find ledger entries: %w", err)
	}
	defer cursor.Close(ctx)

	var txs []*model.GiftCardTransaction
	if err = cursor.All(ctx, &txs); err != nil {
		return nil, fmt.Errorf("failed to decode ledger entries: %w", err)
	}
	return txs, nil
}
