package usecase

import (
	"context"
	"fmt"
	"time"

	"showcase-platform/internal/security"
	"showcase-platform/internal/showcase/config"
	"showcase-platform/internal/showcase/domain/model"
	"showcase-platform/internal/showcase/domain/repository"
	apperrors "showcase-platform/internal/shared/errors"
	"showcase-platform/internal/shared/logger"
)

// maxSummaryDays bounds a summary's date range.
const maxSummaryDays = 366

// ViewRequest describes one visit as seen by the HTTP layer.
type ViewRequest struct {
	Referrer  string `json:"referrer,omitempty"`
	Country   string `json:"country,omitempty"`
	UserAgent string `json:"-"`
	ProjectID string `json:"projectId,omitempty"`
	Unique    bool   `json:"-"`
	// SelfHost is the platform's own host, so internal navigation counts as direct.
	SelfHost string `json:"-"`
}

// AnalyticsUsecase records views of public showcases and summarizes them for owners.
type AnalyticsUsecase struct {
	deps
	cfg       *config.Config
	showcases repository.ShowcaseRepository
	analytics repository.AnalyticsRepository
}

func NewAnalyticsUsecase(cfg *config.Config, showcases repository.ShowcaseRepository, analytics repository.AnalyticsRepository, log logger.Logger) *AnalyticsUsecase {
	if cfg == nil {
		cfg = config.Default()
	}
	return &AnalyticsUsecase{
		deps:      newDeps(nil, log, "showcase-analytics"),
		cfg:       cfg,
		showcases: showcases,
		analytics: analytics,
	}
}

func (uc *AnalyticsUsecase) WithClock(c Clock) *AnalyticsUsecase {
	uc.now = c
	return uc
}

// RecordView counts a visit to a visible showcase, or a view of one of its projects
// when ProjectID is set.
func (uc *AnalyticsUsecase) RecordView(ctx context.Context, username string, req ViewRequest) error {
	sc, err := uc.showcases.GetByUsername(ctx, username)
	if err != nil {
		return notFound(err, ErrShowcaseNotFound)
	}
	if !sc.IsVisible() {
		return ErrShowcaseNotFound
	}

	now := uc.now()
	v := model.View{
		ShowcaseID: sc.ID,
		At:         now,
		Referrer:   model.NormalizeReferrer(req.Referrer, req.SelfHost),
		Country:    model.NormalizeCountry(req.Country),
		Device:     model.DeviceType(req.UserAgent),
		Unique:     req.Unique,
	}
	if req.ProjectID != "" {
		if !sc.HasProject(req.ProjectID) {
			return apperrors.NewValidationError("unknown project")
		}
		v.ProjectID = req.ProjectID
	}
	if err := uc.analytics.RecordView(ctx, v); err != nil {
		return err
	}
	if v.IsProjectView() {
		return nil
	}
	if err := uc.showcases.IncrementViews(ctx, sc.ID, v.Unique, now); err != nil {
		uc.log.WithContext(ctx).Warnf("failed to update view counters of %s: %v", sc.ID, err)
	}
	return nil
}

// Summary aggregates a showcase's views between from and to, inclusive. A zero to
// means today and a zero from covers the configured number of days before to.
func (uc *AnalyticsUsecase) Summary(ctx context.Context, actor security.Subject, id string, from, to time.Time) (*model.Summary, error) {
	sc, err := uc.showcases.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrShowcaseNotFound)
	}
	if !owns(actor, sc) && !isStaff(actor) {
		return nil, ErrShowcaseNotFound
	}

	if to.IsZero() {
		to = uc.now()
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -(uc.cfg.SummaryDays - 1))
	}
	if from.After(to) {
		return nil, apperrors.NewValidationError("from must not be after to")
	}
	if to.Sub(from) > maxSummaryDays*24*time.Hour {
		return nil, apperrors.NewValidationError(fmt.Sprintf("date range may span at most %d days", maxSummaryDays))
	}

	days, err := uc.analytics.Range(ctx, sc.ID, from.UTC().Format(model.DateLayout), to.UTC().Format(model.DateLayout))
	if err != nil {
		return nil, err
	}
	return model.Summarize(sc.ID, from, to, days), nil
}
