package eventbus

import (
	"context"

	"showcase-platform/internal/shared/logger"
)

// Emit publishes an activity event synchronously. Handler failures are logged and
// never returned: callers treat the audit trail as best effort.
func Emit(ctx context.Context, bus EventBusInterface, log logger.Logger, eventType, source string, payload ActivityPayload) {
	if bus == nil {
		return
	}
	if err := bus.Publish(ctx, NewBasicEventWithSource(eventType, payload, source)); err != nil && log != nil {
		log.WithContext(ctx).Warnf("event %s from %s not fully handled: %v", eventType, source, err)
	}
}
