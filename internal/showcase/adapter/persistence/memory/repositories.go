package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"showcase-platform/internal/showcase/domain/model"
	"showcase-platform/internal/showcase/domain/repository"
)

// ShowcaseRepository keeps showcases in memory. Username and user id are unique.
type ShowcaseRepository struct {
	mu    sync.RWMutex
	items map[string]model.Showcase
}

func NewShowcaseRepository() *ShowcaseRepository {
	return &ShowcaseRepository{items: make(map[string]model.Showcase)}
}

func (r *ShowcaseRepository) conflicts(s *model.Showcase) bool {
	for id, other := range r.items {
		if id != s.ID && (other.UserID == s.UserID || other.Username == s.Username) {
			return true
		}
	}
	return false
}

func (r *ShowcaseRepository) Create(ctx context.Context, s *model.Showcase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[s.ID]; ok || r.conflicts(s) {
		return repository.ErrDuplicate
	}
	r.items[s.ID] = clone(*s)
	return nil
}

func (r *ShowcaseRepository) GetByID(ctx context.Context, id string) (*model.Showcase, error) {
	return r.find(func(s *model.Showcase) bool { return s.ID == id })
}

func (r *ShowcaseRepository) GetByUserID(ctx context.Context, userID string) (*model.Showcase, error) {
	return r.find(func(s *model.Showcase) bool { return s.UserID == userID })
}

func (r *ShowcaseRepository) GetByUsername(ctx context.Context, username string) (*model.Showcase, error) {
	return r.find(func(s *model.Showcase) bool { return s.Username == username })
}

func (r *ShowcaseRepository) find(match func(*model.Showcase) bool) (*model.Showcase, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.items {
		if match(&s) {
			out := clone(s)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *ShowcaseRepository) List(ctx context.Context, publishedOnly bool) ([]*model.Showcase, error) {
	r.mu.RLock()
	out := make([]*model.Showcase, 0, len(r.items))
	for _, s := range r.items {
		if publishedOnly && !s.IsPublished() {
			continue
		}
		cp := clone(s)
		out = append(out, &cp)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *ShowcaseRepository) Update(ctx context.Context, s *model.Showcase) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[s.ID]; !ok {
		return repository.ErrNotFound
	}
	if r.conflicts(s) {
		return repository.ErrDuplicate
	}
	r.items[s.ID] = clone(*s)
	return nil
}

func (r *ShowcaseRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *ShowcaseRepository) IncrementViews(ctx context.Context, id string, unique bool, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.Analytics.TotalViews++
	if unique {
		s.Analytics.UniqueViews++
	}
	at = at.UTC()
	s.Analytics.LastViewedAt = &at
	r.items[id] = s
	return nil
}

// clone copies the slices a caller might mutate in place.
func clone(s model.Showcase) model.Showcase {
	s.Projects = append([]model.Project(nil), s.Projects...)
	s.Experience = append([]model.Experience(nil), s.Experience...)
	s.Blogs = append([]model.Blog(nil), s.Blogs...)
	s.Publication.Files = append([]string(nil), s.Publication.Files...)
	if s.PreviewData != nil {
		p := *s.PreviewData
		p.Files = append([]string(nil), p.Files...)
		s.PreviewData = &p
	}
	return s
}

// AnalyticsRepository keeps daily documents in memory.
type AnalyticsRepository struct {
	mu   sync.Mutex
	days map[string]*model.DailyAnalytics
}

func NewAnalyticsRepository() *AnalyticsRepository {
	return &AnalyticsRepository{days: make(map[string]*model.DailyAnalytics)}
}

func (r *AnalyticsRepository) RecordView(ctx context.Context, v model.View) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	date := v.Day()
	id := model.DailyID(v.ShowcaseID, date)
	d, ok := r.days[id]
	if !ok {
		d = &model.DailyAnalytics{ID: id, ShowcaseID: v.ShowcaseID, Date: date}
		r.days[id] = d
	}
	d.Apply(v)
	return nil
}

func (r *AnalyticsRepository) Range(ctx context.Context, showcaseID, from, to string) ([]*model.DailyAnalytics, error) {
	r.mu.Lock()
	out := make([]*model.DailyAnalytics, 0)
	for _, d := range r.days {
		if d.ShowcaseID == showcaseID && d.Date >= from && d.Date <= to {
			cp := *d
			cp.ProjectViews = append([]model.Counter(nil), d.ProjectViews...)
			cp.Referrers = append([]model.Counter(nil), d.Referrers...)
			cp.Locations = append([]model.Counter(nil), d.Locations...)
			cp.Devices = append([]model.Counter(nil), d.Devices...)
			out = append(out, &cp)
		}
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *AnalyticsRepository) DeleteShowcase(ctx context.Context, showcaseID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, d := range r.days {
		if d.ShowcaseID == showcaseID {
			delete(r.days, id)
		}
	}
	return nil
}
