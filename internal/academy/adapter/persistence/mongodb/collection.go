package mongodb

import (
	"context"
	"errors"
	"fmt"

	"showcase-platform/internal/academy/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// collection wraps a Mongo collection whose documents are keyed by a string _id.
type collection[T any] struct {
	c *mongo.Collection
}

func newCollection[T any](db *mongo.Database, name string, indexes []mongo.IndexModel) (*collection[T], error) {
	col := &collection[T]{c: db.Collection(name)}
	if len(indexes) > 0 {
		if _, err := col.c.Indexes().CreateMany(context.Background(), indexes); err != nil {
			return nil, fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	return col, nil
}

func (col *collection[T]) insert(ctx context.Context, doc *T) error {
	if _, err := col.c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (col *collection[T]) findOne(ctx context.Context, filter bson.M) (*T, error) {
	var doc T
	if err := col.c.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &doc, nil
}

func (col *collection[T]) find(ctx context.Context, filter bson.M, sort bson.D) ([]*T, error) {
	opts := options.Find()
	if len(sort) > 0 {
		opts.SetSort(sort)
	}
	cursor, err := col.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]*T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (col *collection[T]) replace(ctx context.Context, id string, doc *T) error {
	res, err := col.c.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (col *collection[T]) delete(ctx context.Context, id string) error {
	res, err := col.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
