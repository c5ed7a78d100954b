package mongodb

import (
	"context"
	"errors"
	"fmt"

	"showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/auth/domain/repository"
	"showcase-platform/internal/auth/usecase"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDelegationRepository stores delegations in the "delegations" collection.
type MongoDelegationRepository struct {
	collection *mongo.Collection
}

func NewMongoDelegationRepository(db *mongo.Database) (*MongoDelegationRepository, error) {
	repo := &MongoDelegationRepository{collection: db.Collection("delegations")}
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "delegator_id", Value: 1}}},
		{Keys: bson.D{{Key: "delegatee_id", Value: 1}, {Key: "expires_at", Value: 1}}},
	}
	if _, err := repo.collection.Indexes().CreateMany(context.Background(), indexes); err != nil {
		return nil, fmt.Errorf("failed to create delegation indexes: %w", err)
	}
	return repo, nil
}

func (r *MongoDelegationRepository) Create(ctx context.Context, d *model.Delegation) error {
	_, err := r.collection.InsertOne(ctx, d)
	return err
}

func (r *MongoDelegationRepository) GetByID(ctx context.Context, id string) (*model.Delegation, error) {
	var d model.Delegation
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrDelegationNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (r *MongoDelegationRepository) Update(ctx context.Context, d *model.Delegation) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": d.ID}, d)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return usecase.ErrDelegationNotFound
	}
	return nil
}

func (r *MongoDelegationRepository) ListByDelegator(ctx context.Context, delegatorID string) ([]*model.Delegation, error) {
	return r.list(ctx, bson.M{"delegator_id": delegatorID})
}

func (r *MongoDelegationRepository) ListByDelegatee(ctx context.Context, delegateeID string) ([]*model.Delegation, error) {
	return r.list(ctx, bson.M{"delegatee_id": delegateeID})
}

func (r *MongoDelegationRepository) list(ctx context.Context, filter bson.M) ([]*model.Delegation, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]*model.Delegation, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var _ repository.DelegationRepository = (*MongoDelegationRepository)(nil)
