package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"showcase-platform/internal/shared/logger"

	"github.com/hibiken/asynq"
)

// TypePreviewExpire removes an expired preview.
const TypePreviewExpire = "showcase:preview:expire"

// PreviewExpiryPayload identifies the preview to remove.
type PreviewExpiryPayload struct {
	UserID    string `json:"userId"`
	Timestamp int64  `json:"timestamp"`
}

// PreviewExpirer deletes the objects of a preview.
type PreviewExpirer interface {
	DeleteExpiredPreview(ctx context.Context, userID string, timestamp int64) (int, error)
}

// NewPreviewExpiryTask builds the task for one preview.
func NewPreviewExpiryTask(userID string, timestamp int64, queue string) (*asynq.Task, error) {
	body, err := json.Marshal(PreviewExpiryPayload{UserID: userID, Timestamp: timestamp})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypePreviewExpire, body, asynq.Queue(queue)), nil
}

// ExpiryHandler runs preview expiry tasks against expirer.
func ExpiryHandler(expirer PreviewExpirer, log logger.Logger) asynq.HandlerFunc {
	if log == nil {
		log = logger.NewNop()
	}
	return func(ctx context.Context, task *asynq.Task) error {
		var p PreviewExpiryPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			return fmt.Errorf("invalid preview expiry payload: %v: %w", err, asynq.SkipRetry)
		}
		if p.UserID == "" || p.Timestamp <= 0 {
			return fmt.Errorf("incomplete preview expiry payload: %w", asynq.SkipRetry)
		}
		removed, err := expirer.DeleteExpiredPreview(ctx, p.UserID, p.Timestamp)
		if err != nil {
			return err
		}
		log.WithFields(map[string]interface{}{
			"user_id":   p.UserID,
			"timestamp": p.Timestamp,
			"removed":   removed,
		}).Info("Preview expired")
		return nil
	}
}

// Manager enqueues preview expiry tasks and runs the worker that processes them.
type Manager struct {
	client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
	queue  string
	log    logger.Logger
}

// NewManager connects to the Redis at redisURL. Nothing runs until Start.
func NewManager(redisURL, queue string, concurrency int, log logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if queue == "" {
		return nil, errors.New("queue name is required")
	}
	opt, err := asynq.ParseRedisURI(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{queue: 1},
		Logger:      asynqLogger{log},
	})
	return &Manager{
		client: asynq.NewClient(opt),
		server: server,
		mux:    asynq.NewServeMux(),
		queue:  queue,
		log:    log.WithComponent("showcase-jobs"),
	}, nil
}

// Register routes preview expiry tasks to expirer.
func (m *Manager) Register(expirer PreviewExpirer) {
	m.mux.HandleFunc(TypePreviewExpire, ExpiryHandler(expirer, m.log))
}

// ScheduleExpiry enqueues removal of the preview once after has passed.
func (m *Manager) ScheduleExpiry(ctx context.Context, userID string, timestamp int64, after time.Duration) error {
	task, err := NewPreviewExpiryTask(userID, timestamp, m.queue)
	if err != nil {
		return err
	}
	info, err := m.client.EnqueueContext(ctx, task,
		asynq.ProcessIn(after),
		asynq.MaxRetry(3),
		asynq.TaskID(fmt.Sprintf("preview-%s-%d", userID, timestamp)),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("failed to enqueue preview expiry: %w", err)
	}
	m.log.WithContext(ctx).Debugf("scheduled preview expiry %s for %s", info.ID, info.NextProcessAt.Format(time.RFC3339))
	return nil
}

// Start runs the worker in the background.
func (m *Manager) Start() {
	go func() {
		if err := m.server.Run(m.mux); err != nil && !errors.Is(err, asynq.ErrServerClosed) {
			m.log.Errorf("asynq server stopped with error: %v", err)
		}
	}()
}

// Shutdown stops the worker and closes the client.
func (m *Manager) Shutdown() error {
	m.server.Shutdown()
	return m.client.Close()
}

// asynqLogger forwards asynq's own logging to the platform logger.
type asynqLogger struct{ log logger.Logger }

func (l asynqLogger) Debug(args ...interface{}) { l.log.Debug(args...) }
func (l asynqLogger) Info(args ...interface{})  { l.log.Info(args...) }
func (l asynqLogger) Warn(args ...interface{})  { l.log.Warn(args...) }
func (l asynqLogger) Error(args ...interface{}) { l.log.Error(args...) }
func (l asynqLogger) Fatal(args ...interface{}) { l.log.Fatal(args...) }
