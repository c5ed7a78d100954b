package mongodb

import (
	"context"
	"errors"
	"fmt"

	"showcase-platform/internal/audit/domain/model"
	"showcase-platform/internal/audit/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "audit_logs"

// MongoAuditRepository stores audit entries in the audit_logs collection.
type MongoAuditRepository struct {
	collection *mongo.Collection
}

// NewMongoAuditRepository creates the repository and its query indexes.
func NewMongoAuditRepository(db *mongo.Database) (*MongoAuditRepository, error) {
	repo := &MongoAuditRepository{collection: db.Collection(collectionName)}

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "action_type", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "resource_type", Value: 1}, {Key: "resource_id", Value: 1}}},
	}
	if _, err := repo.collection.Indexes().CreateMany(context.Background(), indexes); err != nil {
		return nil, fmt.Errorf("failed to create audit indexes: %w", err)
	}
	return repo, nil
}

// Insert appends an entry.
func (r *MongoAuditRepository) Insert(ctx context.Context, entry *model.AuditLog) error {
	if entry == nil || entry.ID == "" {
		return errors.New("audit entry ID cannot be empty")
	}
	_, err := r.collection.InsertOne(ctx, entry)
	return err
}

func buildQuery(f model.Filter) bson.M {
	query := bson.M{}
	if f.UserID != "" {
		query["user_id"] = f.UserID
	}
	if f.ActionType != "" {
		query["action_type"] = f.ActionType
	}
	if f.ResourceType != "" {
		query["resource_type"] = f.ResourceType
	}
	if f.ResourceID != "" {
		query["resource_id"] = f.ResourceID
	}
	ts := bson.M{}
	if !f.From.IsZero() {
		ts["$gte"] = f.From
	}
	if !f.To.IsZero() {
		ts["$lte"] = f.To
	}
	if len(ts) > 0 {
		query["timestamp"] = ts
	}
	return query
}

// Find returns matching entries newest first.
func (r *MongoAuditRepository) Find(ctx context.Context, filter model.Filter) ([]*model.AuditLog, error) {
	filter = filter.Normalize()
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(filter.Limit)

	cursor, err := r.collection.Find(ctx, buildQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := make([]*model.AuditLog, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

var _ repository.AuditRepository = (*MongoAuditRepository)(nil)
