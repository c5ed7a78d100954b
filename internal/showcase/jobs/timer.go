package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"showcase-platform/internal/shared/logger"
)

// TimerScheduler expires previews with in-process timers. Pending expiries are lost
// on restart, so it only backs deployments without Redis.
type TimerScheduler struct {
	mu      sync.Mutex
	expirer PreviewExpirer
	timers  map[string]*time.Timer
	log     logger.Logger
	timeout time.Duration
}

func NewTimerScheduler(expirer PreviewExpirer, log logger.Logger) *TimerScheduler {
	if log == nil {
		log = logger.NewNop()
	}
	return &TimerScheduler{
		expirer: expirer,
		timers:  make(map[string]*time.Timer),
		log:     log.WithComponent("preview-timer"),
		timeout: 30 * time.Second,
	}
}

// SetExpirer sets the target once it exists.
func (s *TimerScheduler) SetExpirer(e PreviewExpirer) {
	s.mu.Lock()
	s.expirer = e
	s.mu.Unlock()
}

func (s *TimerScheduler) ScheduleExpiry(ctx context.Context, userID string, timestamp int64, after time.Duration) error {
	key := fmt.Sprintf("%s/%d", userID, timestamp)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.timers[key]; ok {
		return nil
	}
	s.timers[key] = time.AfterFunc(after, func() { s.fire(key, userID, timestamp) })
	return nil
}

func (s *TimerScheduler) fire(key, userID string, timestamp int64) {
	s.mu.Lock()
	delete(s.timers, key)
	expirer := s.expirer
	s.mu.Unlock()
	if expirer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if _, err := expirer.DeleteExpiredPreview(ctx, userID, timestamp); err != nil {
		s.log.Errorf("failed to expire preview %s: %v", key, err)
	}
}

// Pending returns the number of scheduled expiries.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every pending expiry.
func (s *TimerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}
