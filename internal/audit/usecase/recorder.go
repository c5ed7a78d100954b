package usecase

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"showcase-platform/internal/audit/domain/model"
	"showcase-platform/internal/audit/domain/repository"
	"showcase-platform/internal/shared/logger"
	"showcase-platform/internal/shared/utils"

	"github.com/google/uuid"
)

// Actor identifies who performed an audited action.
type Actor struct {
	UserID    string
	Email     string
	IPAddress string
	UserAgent string
}

// ActorFromContext reads the authenticated caller and client placed on ctx by the
// HTTP middleware.
func ActorFromContext(ctx context.Context) Actor {
	email, _ := utils.GetUserEmailFromContext(ctx)
	ip, ua := utils.GetClientFromContext(ctx)
	return Actor{
		UserID:    utils.GetUserIDOrDefault(ctx, ""),
		Email:     email,
		IPAddress: ip,
		UserAgent: ua,
	}
}

// Recorder writes audit entries to the repository and every sink. Recording never
// fails the caller.
type Recorder struct {
	repo  repository.AuditRepository
	sinks []repository.Sink
	log   logger.Logger
	now   func() time.Time
}

// NewRecorder creates a recorder. repo may be nil when only sinks are wanted.
func NewRecorder(repo repository.AuditRepository, log logger.Logger, sinks ...repository.Sink) *Recorder {
	if log == nil {
		log = logger.NewNop()
	}
	return &Recorder{
		repo:  repo,
		sinks: sinks,
		log:   log.WithComponent("audit"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source.
func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	r.now = now
	return r
}

// Record stamps and stores entry. Missing details are filled from the action.
func (r *Recorder) Record(ctx context.Context, entry *model.AuditLog) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.now()
	}
	if entry.Details == "" {
		entry.Details = defaultDetails(entry)
	}

	if r.repo != nil {
		if err := r.repo.Insert(ctx, entry); err != nil {
			r.log.WithContext(ctx).WithFields(map[string]interface{}{
				"action":   entry.ActionType,
				"resource": entry.ResourceType,
			}).Errorf("failed to store audit entry: %v", err)
		}
	}
	for _, s := range r.sinks {
		if err := s.Write(ctx, entry); err != nil {
			r.log.WithContext(ctx).Warnf("audit sink failed: %v", err)
		}
	}
}

// EntryOption adjusts an entry built by one of the Log helpers.
type EntryOption func(*model.AuditLog)

// At stamps the entry with the time the action happened instead of now.
func At(t time.Time) EntryOption {
	return func(e *model.AuditLog) {
		if !t.IsZero() {
			e.Timestamp = t
		}
	}
}

// WithMetadata adds keys the helper did not set itself.
func WithMetadata(meta map[string]interface{}) EntryOption {
	return func(e *model.AuditLog) {
		if len(meta) == 0 {
			return
		}
		if e.Metadata == nil {
			e.Metadata = make(map[string]interface{}, len(meta))
		}
		for k, v := range meta {
			if _, ok := e.Metadata[k]; !ok {
				e.Metadata[k] = v
			}
		}
	}
}

// OnResource overrides the resource type and id. Empty values keep the helper's.
func OnResource(rt model.ResourceType, id string) EntryOption {
	return func(e *model.AuditLog) {
		if rt != "" {
			e.ResourceType = rt
		}
		if id != "" {
			e.ResourceID = id
		}
	}
}

func (r *Recorder) write(ctx context.Context, actor Actor, action model.ActionType, rt model.ResourceType, id, details string, meta map[string]interface{}, opts []EntryOption) {
	e := &model.AuditLog{
		UserID:       actor.UserID,
		UserEmail:    actor.Email,
		ActionType:   action,
		ResourceType: rt,
		ResourceID:   id,
		IPAddress:    actor.IPAddress,
		UserAgent:    actor.UserAgent,
		Details:      details,
		Metadata:     meta,
	}
	for _, opt := range opts {
		opt(e)
	}
	r.Record(ctx, e)
}

func (r *Recorder) stampID(prefix string) string {
	return prefix + "-" + strconv.FormatInt(r.now().UnixMilli(), 10)
}

// LogLogin records a login attempt.
func (r *Recorder) LogLogin(ctx context.Context, actor Actor, success bool, details string, opts ...EntryOption) {
	r.write(ctx, actor, model.ActionLogin, model.ResourceSession, r.stampID("session"), details,
		map[string]interface{}{"success": success}, opts)
}

// LogLogout records the end of a session.
func (r *Recorder) LogLogout(ctx context.Context, actor Actor, sessionID, details string, opts ...EntryOption) {
	r.write(ctx, actor, model.ActionLogout, model.ResourceSession, sessionID, details, nil, opts)
}

func (r *Recorder) LogCreate(ctx context.Context, actor Actor, rt model.ResourceType, id, details string, opts ...EntryOption) {
	r.write(ctx, actor, model.ActionCreate, rt, id, details, nil, opts)
}

// LogUpdate records an update along with the changed fields.
func (r *Recorder) LogUpdate(ctx context.Context, actor Actor, rt model.ResourceType, id string, changes map[string]interface{}, details string, opts ...EntryOption) {
	var meta map[string]interface{}
	if changes != nil {
		meta = map[string]interface{}{"changes": changes}
	}
	r.write(ctx, actor, model.ActionUpdate, rt, id, details, meta, opts)
}

func (r *Recorder) LogDelete(ctx context.Context, actor Actor, rt model.ResourceType, id, details string, opts ...EntryOption) {
	r.write(ctx, actor, model.ActionDelete, rt, id, details, nil, opts)
}

// LogPublish records a showcase publication.
func (r *Recorder) LogPublish(ctx context.Context, actor Actor, showcaseID string, version int, details string, opts ...EntryOption) {
	r.write(ctx, actor, model.ActionPublish, model.ResourceShowcase, showcaseID, details,
		map[string]interface{}{"version": version}, opts)
}

// LogGrade records grading of a submission.
func (r *Recorder) LogGrade(ctx context.Context, actor Actor, submissionID string, grade interface{}, passing bool, details string, opts ...EntryOption) {
	r.write(ctx, actor, model.ActionGrade, model.ResourceSubmission, submissionID, details,
		map[string]interface{}{"grade": grade, "passing": passing}, opts)
}

// LogDelegate records a permission delegation.
func (r *Recorder) LogDelegate(ctx context.Context, actor Actor, delegationID, delegateeID, delegateeEmail string, permissions []string, expiresAt time.Time, details string, opts ...EntryOption) {
	r.write(ctx, actor, model.ActionDelegate, model.ResourceDelegation, delegationID, details,
		map[string]interface{}{
			"delegateeId":    delegateeID,
			"delegateeEmail": delegateeEmail,
			"permissions":    permissions,
			"expiresAt":      expiresAt,
		}, opts)
}

// LogRevoke records revocation of a delegation.
func (r *Recorder) LogRevoke(ctx context.Context, actor Actor, delegationID, delegateeID, delegateeEmail, details string, opts ...EntryOption) {
	r.write(ctx, actor, model.ActionRevoke, model.ResourceDelegation, delegationID, details,
		map[string]interface{}{"delegateeId": delegateeID, "delegateeEmail": delegateeEmail}, opts)
}

// LogSystemChange records a change to platform settings.
func (r *Recorder) LogSystemChange(ctx context.Context, actor Actor, changes map[string]interface{}, details string, opts ...EntryOption) {
	r.write(ctx, actor, model.ActionSystemChange, model.ResourceSystemSettings, "system-settings", details,
		map[string]interface{}{"changes": changes}, opts)
}

// LogImport records a bulk import, such as the admin seed command.
func (r *Recorder) LogImport(ctx context.Context, actor Actor, provider string, dataTypes []string, counts map[string]int, details string, opts ...EntryOption) {
	r.write(ctx, actor, model.ActionImport, model.ResourceLMSIntegration, r.stampID("import"), details,
		map[string]interface{}{"lmsProvider": provider, "dataTypes": dataTypes, "recordCounts": counts}, opts)
}

// Query returns entries matching filter, newest first.
func (r *Recorder) Query(ctx context.Context, filter model.Filter) ([]*model.AuditLog, error) {
	if r.repo == nil {
		return []*model.AuditLog{}, nil
	}
	return r.repo.Find(ctx, filter.Normalize())
}

func defaultDetails(e *model.AuditLog) string {
	meta := e.Metadata
	switch e.ActionType {
	case model.ActionLogin:
		if ok, _ := meta["success"].(bool); ok {
			return "Successful login"
		}
		return "Failed login attempt"
	case model.ActionLogout:
		return "User logged out"
	case model.ActionCreate:
		return fmt.Sprintf("Created %s with ID %s", e.ResourceType, e.ResourceID)
	case model.ActionUpdate:
		return fmt.Sprintf("Updated %s with ID %s", e.ResourceType, e.ResourceID)
	case model.ActionDelete:
		return fmt.Sprintf("Deleted %s with ID %s", e.ResourceType, e.ResourceID)
	case model.ActionPublish:
		return fmt.Sprintf("Published showcase with ID %s (version %v)", e.ResourceID, meta["version"])
	case model.ActionGrade:
		return fmt.Sprintf("Graded submission with ID %s", e.ResourceID)
	case model.ActionDelegate:
		return fmt.Sprintf("Delegated permissions to %s", delegatee(meta))
	case model.ActionRevoke:
		return fmt.Sprintf("Revoked delegation from %s", delegatee(meta))
	case model.ActionSystemChange:
		return "Updated system settings"
	case model.ActionImport:
		return fmt.Sprintf("Imported data from %v", meta["lmsProvider"])
	}
	return fmt.Sprintf("%s %s %s", e.ActionType, e.ResourceType, e.ResourceID)
}

func delegatee(meta map[string]interface{}) string {
	if email, _ := meta["delegateeEmail"].(string); email != "" {
		return email
	}
	id, _ := meta["delegateeId"].(string)
	return id
}
