package usecase

import (
	"context"
	"time"

	"showcase-platform/internal/audit/domain/model"
	"showcase-platform/internal/shared/eventbus"
)

type eventMapping struct {
	action   model.ActionType
	resource model.ResourceType
}

var eventMappings = map[string]eventMapping{
	eventbus.EventTypeUserLoggedIn:        {model.ActionLogin, model.ResourceSession},
	eventbus.EventTypeLoginFailed:         {model.ActionLogin, model.ResourceUser},
	eventbus.EventTypeAccountLocked:       {model.ActionLogin, model.ResourceUser},
	eventbus.EventTypeUserLoggedOut:       {model.ActionLogout, model.ResourceSession},
	eventbus.EventTypeSubmissionCreated:   {model.ActionCreate, model.ResourceSubmission},
	eventbus.EventTypeSubmissionSubmitted: {model.ActionUpdate, model.ResourceSubmission},
	eventbus.EventTypeSubmissionGraded:    {model.ActionGrade, model.ResourceSubmission},
	eventbus.EventTypeShowcasePublished:   {model.ActionPublish, model.ResourceShowcase},
	eventbus.EventTypeShowcaseUnpublished: {model.ActionUpdate, model.ResourceShowcase},
	eventbus.EventTypePreviewCreated:      {model.ActionCreate, model.ResourceShowcase},
	eventbus.EventTypeDelegationCreated:   {model.ActionDelegate, model.ResourceDelegation},
	eventbus.EventTypeDelegationRevoked:   {model.ActionRevoke, model.ResourceDelegation},
	eventbus.EventTypeResourceCreated:     {model.ActionCreate, ""},
	eventbus.EventTypeResourceUpdated:     {model.ActionUpdate, ""},
	eventbus.EventTypeResourceDeleted:     {model.ActionDelete, ""},
}

// Subscribe records every activity event published on bus.
func (r *Recorder) Subscribe(bus eventbus.EventBusInterface) {
	for eventType := range eventMappings {
		bus.Subscribe(eventType, r.HandleEvent)
	}
}

// HandleEvent converts an activity event into an audit entry. Unknown events and
// payloads are ignored.
func (r *Recorder) HandleEvent(ctx context.Context, event eventbus.Event) error {
	m, ok := eventMappings[event.Type()]
	if !ok {
		return nil
	}
	var p eventbus.ActivityPayload
	switch data := event.Data().(type) {
	case eventbus.ActivityPayload:
		p = data
	case *eventbus.ActivityPayload:
		if data == nil {
			return nil
		}
		p = *data
	default:
		r.log.WithContext(ctx).Debugf("ignoring %s event with payload %T", event.Type(), event.Data())
		return nil
	}

	rt := m.resource
	if p.ResourceType != "" {
		rt = model.ResourceType(p.ResourceType)
	}
	actor := Actor{UserID: p.ActorID, Email: p.ActorEmail, IPAddress: p.IPAddress, UserAgent: p.UserAgent}
	meta := p.Metadata
	opts := []EntryOption{At(event.Timestamp().UTC()), WithMetadata(meta)}

	switch m.action {
	case model.ActionLogin:
		success, _ := meta["success"].(bool)
		r.LogLogin(ctx, actor, success, p.Details, append(opts, OnResource(rt, p.ResourceID))...)
	case model.ActionLogout:
		r.LogLogout(ctx, actor, p.ResourceID, p.Details, opts...)
	case model.ActionCreate:
		r.LogCreate(ctx, actor, rt, p.ResourceID, p.Details, opts...)
	case model.ActionUpdate:
		changes, _ := meta["changes"].(map[string]interface{})
		r.LogUpdate(ctx, actor, rt, p.ResourceID, changes, p.Details, opts...)
	case model.ActionDelete:
		r.LogDelete(ctx, actor, rt, p.ResourceID, p.Details, opts...)
	case model.ActionPublish:
		version, _ := meta["version"].(int)
		r.LogPublish(ctx, actor, p.ResourceID, version, p.Details, opts...)
	case model.ActionGrade:
		passing, _ := meta["passing"].(bool)
		r.LogGrade(ctx, actor, p.ResourceID, meta["grade"], passing, p.Details, opts...)
	case model.ActionDelegate:
		id, email := delegateeOf(meta)
		perms, _ := meta["permissions"].([]string)
		expiresAt, _ := meta["expiresAt"].(time.Time)
		r.LogDelegate(ctx, actor, p.ResourceID, id, email, perms, expiresAt, p.Details, opts...)
	case model.ActionRevoke:
		id, email := delegateeOf(meta)
		r.LogRevoke(ctx, actor, p.ResourceID, id, email, p.Details, opts...)
	}
	return nil
}

func delegateeOf(meta map[string]interface{}) (id, email string) {
	id, _ = meta["delegateeId"].(string)
	email, _ = meta["delegateeEmail"].(string)
	return id, email
}
