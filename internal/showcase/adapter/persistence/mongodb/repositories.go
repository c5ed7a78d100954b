package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"showcase-platform/internal/showcase/domain/model"
	"showcase-platform/internal/showcase/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	showcasesCollection = "showcases"
	analyticsCollection = "analytics_daily"
)

// ShowcaseRepository stores showcases in Mongo.
type ShowcaseRepository struct {
	collection *mongo.Collection
}

func NewShowcaseRepository(db *mongo.Database) (*ShowcaseRepository, error) {
	r := &ShowcaseRepository{collection: db.Collection(showcasesCollection)}
	_, err := r.collection.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "publication.status", Value: 1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create showcase indexes: %w", err)
	}
	return r, nil
}

func (r *ShowcaseRepository) Create(ctx context.Context, s *model.Showcase) error {
	if _, err := r.collection.InsertOne(ctx, s); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *ShowcaseRepository) findOne(ctx context.Context, filter bson.M) (*model.Showcase, error) {
	var s model.Showcase
	if err := r.collection.FindOne(ctx, filter).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *ShowcaseRepository) GetByID(ctx context.Context, id string) (*model.Showcase, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ShowcaseRepository) GetByUserID(ctx context.Context, userID string) (*model.Showcase, error) {
	return r.findOne(ctx, bson.M{"user_id": userID})
}

func (r *ShowcaseRepository) GetByUsername(ctx context.Context, username string) (*model.Showcase, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *ShowcaseRepository) List(ctx context.Context, publishedOnly bool) ([]*model.Showcase, error) {
	filter := bson.M{}
	if publishedOnly {
		filter["publication.status"] = model.PublicationPublished
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]*model.Showcase, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ShowcaseRepository) Update(ctx context.Context, s *model.Showcase) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": s.ID}, s)
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

func (r *ShowcaseRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ShowcaseRepository) IncrementViews(ctx context.Context, id string, unique bool, at time.Time) error {
	inc := bson.M{"analytics.total_views": 1}
	if unique {
		inc["analytics.unique_views"] = 1
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": inc,
		"$set": bson.M{"analytics.last_viewed_at": at.UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// AnalyticsRepository keeps one document per showcase and day. Counters are arrays
// of {key, count} so that keys such as referrer hosts never become field names.
type AnalyticsRepository struct {
	collection *mongo.Collection
}

func NewAnalyticsRepository(db *mongo.Database) (*AnalyticsRepository, error) {
	r := &AnalyticsRepository{collection: db.Collection(analyticsCollection)}
	_, err := r.collection.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys: bson.D{{Key: "showcase_id", Value: 1}, {Key: "date", Value: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics indexes: %w", err)
	}
	return r, nil
}

func (r *AnalyticsRepository) RecordView(ctx context.Context, v model.View) error {
	date := v.Day()
	id := model.DailyID(v.ShowcaseID, date)

	inc := bson.M{"views.total": 1}
	if v.Unique {
		inc["views.unique"] = 1
	}
	if v.IsProjectView() {
		inc = bson.M{"views.total": 0}
	}
	update := bson.M{
		"$setOnInsert": bson.M{
			"showcase_id":   v.ShowcaseID,
			"date":          date,
			"project_views": bson.A{},
			"referrers":     bson.A{},
			"locations":     bson.A{},
			"devices":       bson.A{},
		},
		"$inc": inc,
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		// Lost the race to create the day; the document exists now.
		_, err = r.collection.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	}
	if err != nil {
		return fmt.Errorf("failed to record view: %w", err)
	}

	counters := map[string]string{
		"referrers": v.Referrer,
		"locations": v.Country,
		"devices":   v.Device,
	}
	if v.IsProjectView() {
		counters = map[string]string{"project_views": v.ProjectID}
	}
	for field, key := range counters {
		if err := r.bump(ctx, id, field, key); err != nil {
			return err
		}
	}
	return nil
}

// bump increments the counter for key in field, pushing a new counter when the key is
// missing. A concurrent push of the same key makes the guarded push miss, in which
// case the increment is retried.
func (r *AnalyticsRepository) bump(ctx context.Context, id, field, key string) error {
	for attempt := 0; attempt < 3; attempt++ {
		res, err := r.collection.UpdateOne(ctx,
			bson.M{"_id": id, field + ".key": key},
			bson.M{"$inc": bson.M{field + ".$.count": 1}},
		)
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", field, err)
		}
		if res.MatchedCount > 0 {
			return nil
		}
		res, err = r.collection.UpdateOne(ctx,
			bson.M{"_id": id, field + ".key": bson.M{"$ne": key}},
			bson.M{"$push": bson.M{field: model.Counter{Key: key, Count: 1}}},
		)
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", field, err)
		}
		if res.MatchedCount > 0 {
			return nil
		}
	}
	return fmt.Errorf("failed to update %s: counter %q kept changing", field, key)
}

func (r *AnalyticsRepository) Range(ctx context.Context, showcaseID, from, to string) ([]*model.DailyAnalytics, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"showcase_id": showcaseID, "date": bson.M{"$gte": from, "$lte": to}},
		options.Find().SetSort(bson.D{{Key: "date", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]*model.DailyAnalytics, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AnalyticsRepository) DeleteShowcase(ctx context.Context, showcaseID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"showcase_id": showcaseID})
	return err
}
