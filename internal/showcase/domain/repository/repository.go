package repository

import (
	"context"
	"errors"
	"time"

	"showcase-platform/internal/showcase/domain/model"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

type ShowcaseRepository interface {
	Create(ctx context.Context, s *model.Showcase) error
	GetByID(ctx context.Context, id string) (*model.Showcase, error)
	GetByUserID(ctx context.Context, userID string) (*model.Showcase, error)
	GetByUsername(ctx context.Context, username string) (*model.Showcase, error)
	// List returns showcases ordered by username, optionally only published ones.
	List(ctx context.Context, publishedOnly bool) ([]*model.Showcase, error)
	Update(ctx context.Context, s *model.Showcase) error
	Delete(ctx context.Context, id string) error
	// IncrementViews bumps the counters kept on the showcase.
	IncrementViews(ctx context.Context, id string, unique bool, at time.Time) error
}

type AnalyticsRepository interface {
	// RecordView adds v to the daily document of its showcase, creating it on first use.
	RecordView(ctx context.Context, v model.View) error
	// Range returns the daily documents of a showcase between two day keys, inclusive,
	// ordered by date.
	Range(ctx context.Context, showcaseID, from, to string) ([]*model.DailyAnalytics, error)
	DeleteShowcase(ctx context.Context, showcaseID string) error
}
