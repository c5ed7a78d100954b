package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"showcase-platform/internal/security"
	"showcase-platform/internal/showcase/config"
	"showcase-platform/internal/showcase/domain/model"
	"showcase-platform/internal/showcase/domain/repository"
	apperrors "showcase-platform/internal/shared/errors"
	"showcase-platform/internal/shared/eventbus"
	"showcase-platform/internal/shared/logger"
	"showcase-platform/internal/shared/storage"
	"showcase-platform/internal/shared/utils"
)

// Publisher writes rendered showcases to object storage, either as the live site
// or as an expiring preview.
type Publisher struct {
	deps
	cfg       *config.Config
	showcases repository.ShowcaseRepository
	store     storage.ObjectStore
	scheduler PreviewScheduler
}

func NewPublisher(cfg *config.Config, showcases repository.ShowcaseRepository, store storage.ObjectStore, scheduler PreviewScheduler, events eventbus.EventBusInterface, log logger.Logger) *Publisher {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Publisher{
		deps:      newDeps(events, log, "showcase-publisher"),
		cfg:       cfg,
		showcases: showcases,
		store:     store,
		scheduler: scheduler,
	}
}

func (p *Publisher) WithClock(c Clock) *Publisher {
	p.now = c
	return p
}

// SetScheduler replaces the preview expiry scheduler.
func (p *Publisher) SetScheduler(s PreviewScheduler) { p.scheduler = s }

func (p *Publisher) manageable(ctx context.Context, actor security.Subject, id string) (*model.Showcase, error) {
	sc, err := p.showcases.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrShowcaseNotFound)
	}
	if !canManage(actor, sc) {
		if isStaff(actor) {
			return nil, ErrForbidden
		}
		return nil, ErrShowcaseNotFound
	}
	return sc, nil
}

type bundleFile struct {
	name string
	data []byte
}

// files flattens a bundle into relative file names, checking the asset limits.
func (p *Publisher) files(b model.Bundle) ([]bundleFile, error) {
	if err := utils.ValidateStruct(b); err != nil {
		return nil, err
	}
	if len(b.Assets) > p.cfg.MaxAssets {
		return nil, apperrors.NewValidationError(fmt.Sprintf("at most %d assets may be uploaded", p.cfg.MaxAssets))
	}
	out := []bundleFile{{model.IndexFile, []byte(b.HTML)}}
	if b.CSS != "" {
		out = append(out, bundleFile{model.StyleFile, []byte(b.CSS)})
	}
	if b.JS != "" {
		out = append(out, bundleFile{model.ScriptFile, []byte(b.JS)})
	}

	names := make([]string, 0, len(b.Assets))
	for name := range b.Assets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		data := b.Assets[name]
		if err := storage.ValidateKey(name); err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid asset name %q", name))
		}
		if len(data) == 0 || len(data) > p.cfg.MaxAssetSize {
			return nil, apperrors.NewValidationError(fmt.Sprintf("asset %q must be between 1 and %d bytes", name, p.cfg.MaxAssetSize))
		}
		out = append(out, bundleFile{model.AssetDir + name, data})
	}
	return out, nil
}

func (p *Publisher) write(ctx context.Context, bucket, prefix string, files []bundleFile) ([]string, error) {
	names := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := p.store.Put(ctx, bucket, prefix+f.name, f.data, storage.DetectContentType(f.name, f.data)); err != nil {
			return nil, fmt.Errorf("failed to store %s: %w", f.name, err)
		}
		names = append(names, f.name)
	}
	return names, nil
}

// Publish replaces the live site of the showcase with b. Files of an earlier publish
// that b no longer contains are removed.
func (p *Publisher) Publish(ctx context.Context, actor security.Subject, id string, b model.Bundle) (*model.Showcase, error) {
	sc, err := p.manageable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	files, err := p.files(b)
	if err != nil {
		return nil, err
	}

	prefix := model.PublicPrefix(sc.Username)
	names, err := p.write(ctx, storage.BucketShowcase, prefix, files)
	if err != nil {
		return nil, err
	}
	p.prune(ctx, prefix, names)

	now := p.now()
	sc.Publication = model.Publication{
		Status:      model.PublicationPublished,
		PublishedAt: &now,
		URL:         p.cfg.PublicURL(sc.Username),
		Files:       names,
		Version:     sc.Publication.Version + 1,
	}
	sc.UpdatedAt = now
	if err := p.showcases.Update(ctx, sc); err != nil {
		return nil, notFound(err, ErrShowcaseNotFound)
	}
	p.emit(ctx, eventbus.EventTypeShowcasePublished, actor, sc.ID, "Showcase published", map[string]interface{}{
		"username": sc.Username,
		"url":      sc.Publication.URL,
		"version":  sc.Publication.Version,
		"files":    len(names),
	})
	return sc, nil
}

func (p *Publisher) prune(ctx context.Context, prefix string, keep []string) {
	wanted := make(map[string]bool, len(keep))
	for _, n := range keep {
		wanted[prefix+n] = true
	}
	existing, err := p.store.List(ctx, storage.BucketShowcase, prefix)
	if err != nil {
		p.log.WithContext(ctx).Warnf("failed to list published files under %s: %v", prefix, err)
		return
	}
	for _, obj := range existing {
		if wanted[obj.Key] {
			continue
		}
		if err := p.store.Delete(ctx, storage.BucketShowcase, obj.Key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			p.log.WithContext(ctx).Warnf("failed to remove stale file %s: %v", obj.Key, err)
		}
	}
}

// Unpublish takes the live site down and returns the showcase to draft.
func (p *Publisher) Unpublish(ctx context.Context, actor security.Subject, id string) (*model.Showcase, error) {
	sc, err := p.manageable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !sc.IsPublished() {
		return nil, ErrNotPublished
	}
	removed, err := p.store.DeletePrefix(ctx, storage.BucketShowcase, model.PublicPrefix(sc.Username))
	if err != nil {
		return nil, fmt.Errorf("failed to remove published files: %w", err)
	}
	sc.Publication.Status = model.PublicationDraft
	sc.Publication.URL = ""
	sc.Publication.Files = nil
	sc.UpdatedAt = p.now()
	if err := p.showcases.Update(ctx, sc); err != nil {
		return nil, notFound(err, ErrShowcaseNotFound)
	}
	p.emit(ctx, eventbus.EventTypeShowcaseUnpublished, actor, sc.ID, "Showcase unpublished", map[string]interface{}{
		"username": sc.Username,
		"removed":  removed,
	})
	return sc, nil
}

// Preview writes b under a fresh timestamped prefix, replacing the previous preview,
// and schedules its removal once the preview TTL has passed.
func (p *Publisher) Preview(ctx context.Context, actor security.Subject, id string, b model.Bundle) (*model.Preview, error) {
	sc, err := p.manageable(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	files, err := p.files(b)
	if err != nil {
		return nil, err
	}

	now := p.now()
	ts := now.UnixMilli()
	if sc.PreviewData != nil && sc.PreviewData.Timestamp >= ts {
		ts = sc.PreviewData.Timestamp + 1
	}
	names, err := p.write(ctx, storage.BucketPreviews, model.PreviewPrefix(sc.UserID, ts), files)
	if err != nil {
		return nil, err
	}
	if old := sc.PreviewData; old != nil {
		if _, err := p.store.DeletePrefix(ctx, storage.BucketPreviews, model.PreviewPrefix(sc.UserID, old.Timestamp)); err != nil {
			p.log.WithContext(ctx).Warnf("failed to remove previous preview of %s: %v", sc.UserID, err)
		}
	}

	preview := &model.Preview{
		Timestamp: ts,
		URL:       p.cfg.PreviewURL(sc.ID, ts),
		Files:     names,
		ExpiresAt: now.Add(p.cfg.PreviewTTL),
	}
	sc.PreviewData = preview
	sc.UpdatedAt = now
	if err := p.showcases.Update(ctx, sc); err != nil {
		return nil, notFound(err, ErrShowcaseNotFound)
	}
	if p.scheduler != nil {
		if err := p.scheduler.ScheduleExpiry(ctx, sc.UserID, ts, p.cfg.PreviewTTL); err != nil {
			p.log.WithContext(ctx).Errorf("failed to schedule expiry of preview %d for %s: %v", ts, sc.UserID, err)
		}
	}
	p.emit(ctx, eventbus.EventTypePreviewCreated, actor, sc.ID, "Preview created", map[string]interface{}{
		"timestamp": ts,
		"expiresAt": preview.ExpiresAt,
	})
	return preview, nil
}

// DeleteExpiredPreview removes every object of the preview and clears it from the
// owner's showcase when it is still the current one. It is safe to call repeatedly.
func (p *Publisher) DeleteExpiredPreview(ctx context.Context, userID string, timestamp int64) (int, error) {
	removed, err := p.store.DeletePrefix(ctx, storage.BucketPreviews, model.PreviewPrefix(userID, timestamp))
	if err != nil {
		return 0, fmt.Errorf("failed to remove preview %d of %s: %w", timestamp, userID, err)
	}
	sc, err := p.showcases.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return removed, nil
	}
	if err != nil {
		return removed, err
	}
	if sc.PreviewData != nil && sc.PreviewData.Timestamp == timestamp {
		sc.PreviewData = nil
		sc.UpdatedAt = p.now()
		if err := p.showcases.Update(ctx, sc); err != nil {
			return removed, err
		}
	}
	p.log.WithContext(ctx).Debugf("removed %d files of preview %d for %s", removed, timestamp, userID)
	return removed, nil
}

// PublicFile reads a file of a visible published showcase. An empty name is the index.
func (p *Publisher) PublicFile(ctx context.Context, username, name string) (*storage.Object, error) {
	sc, err := p.showcases.GetByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, ErrShowcaseNotFound)
	}
	if !sc.IsVisible() {
		return nil, ErrShowcaseNotFound
	}
	return p.read(ctx, storage.BucketShowcase, model.PublicPrefix(sc.Username), name)
}

// PreviewFile reads a file of the showcase's current, unexpired preview. Owners and
// staff may open previews.
func (p *Publisher) PreviewFile(ctx context.Context, actor security.Subject, id string, timestamp int64, name string) (*storage.Object, error) {
	sc, err := p.showcases.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrShowcaseNotFound)
	}
	if !owns(actor, sc) && !isStaff(actor) {
		return nil, ErrShowcaseNotFound
	}
	pv := sc.PreviewData
	if pv == nil || pv.Timestamp != timestamp || !p.now().Before(pv.ExpiresAt) {
		return nil, ErrPreviewNotFound
	}
	return p.read(ctx, storage.BucketPreviews, model.PreviewPrefix(sc.UserID, timestamp), name)
}

func (p *Publisher) read(ctx context.Context, bucket, prefix, name string) (*storage.Object, error) {
	name = strings.TrimPrefix(name, "/")
	if name == "" || strings.HasSuffix(name, "/") {
		name += model.IndexFile
	}
	if storage.ValidateKey(name) != nil {
		return nil, ErrFileNotFound
	}
	obj, err := p.store.Get(ctx, bucket, prefix+name)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, ErrFileNotFound
	}
	return obj, err
}
