package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"showcase-platform/internal/audit/domain/model"
	"showcase-platform/internal/audit/domain/repository"
)

// AuditRepository keeps entries in process memory.
type AuditRepository struct {
	mu      sync.RWMutex
	entries []*model.AuditLog
}

func NewAuditRepository() *AuditRepository {
	return &AuditRepository{}
}

func (r *AuditRepository) Insert(_ context.Context, entry *model.AuditLog) error {
	if entry == nil || entry.ID == "" {
		return errors.New("audit entry ID cannot be empty")
	}
	cp := *entry
	r.mu.Lock()
	r.entries = append(r.entries, &cp)
	r.mu.Unlock()
	return nil
}

func (r *AuditRepository) Find(_ context.Context, filter model.Filter) ([]*model.AuditLog, error) {
	filter = filter.Normalize()

	r.mu.RLock()
	out := make([]*model.AuditLog, 0)
	for _, e := range r.entries {
		if filter.Matches(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if int64(len(out)) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

var _ repository.AuditRepository = (*AuditRepository)(nil)
