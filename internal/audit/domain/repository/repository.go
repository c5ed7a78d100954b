package repository

import (
	"context"

	"showcase-platform/internal/audit/domain/model"
)

// AuditRepository persists and queries audit entries.
type AuditRepository interface {
	Insert(ctx context.Context, entry *model.AuditLog) error
	// Find returns matching entries newest first.
	Find(ctx context.Context, filter model.Filter) ([]*model.AuditLog, error)
}

// Sink receives a copy of every recorded entry.
type Sink interface {
	Write(ctx context.Context, entry *model.AuditLog) error
}
