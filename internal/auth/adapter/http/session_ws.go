package http

import (
	"context"
	"errors"
	"sync"
	"time"

	"showcase-platform/internal/auth/usecase"
	"showcase-platform/internal/shared/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// Session monitor message types.
const (
	MsgWarning  = "warning"
	MsgTimeout  = "timeout"
	MsgExtended = "extended"
	MsgActivity = "activity"
	MsgExtend   = "extend"
	MsgError    = "error"
)

// SessionMessage is exchanged with the browser over the session monitor socket.
type SessionMessage struct {
	Type             string `json:"type"`
	RemainingSeconds int64  `json:"remainingSeconds,omitempty"`
	Message          string `json:"message,omitempty"`
}

// SessionMonitor pushes timeout warnings to the browser. The client reports activity
// and may ask to extend the session.
type SessionMonitor struct {
	usecase  usecase.AuthUsecaseInterface
	interval time.Duration
	warning  time.Duration
	log      logger.Logger
}

func NewSessionMonitor(uc usecase.AuthUsecaseInterface, interval, warning time.Duration, log logger.Logger) *SessionMonitor {
	if log == nil {
		log = logger.NewNop()
	}
	return &SessionMonitor{
		usecase:  uc,
		interval: interval,
		warning:  warning,
		log:      log.WithComponent("session-monitor"),
	}
}

// RegisterRoutes mounts GET /session/ws. The router must already authenticate.
func (m *SessionMonitor) RegisterRoutes(router fiber.Router) {
	router.Use("/session/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	router.Get("/session/ws", websocket.New(m.handle))
}

type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) send(msg SessionMessage) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.conn.WriteJSON(msg)
}

func (m *SessionMonitor) handle(conn *websocket.Conn) {
	sessionID, _ := conn.Locals(LocalSessionID).(string)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &wsWriter{conn: conn}
	if sessionID == "" {
		_ = out.send(SessionMessage{Type: MsgTimeout})
		return
	}

	go m.readLoop(ctx, cancel, conn, out, sessionID)

	// Report the current state right away, then on every tick.
	if !m.check(ctx, out, sessionID) {
		return
	}
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !m.check(ctx, out, sessionID) {
				return
			}
		}
	}
}

// check sends a warning or timeout as needed and reports whether to keep going.
func (m *SessionMonitor) check(ctx context.Context, out *wsWriter, sessionID string) bool {
	status, err := m.usecase.SessionStatus(ctx, sessionID)
	if err != nil {
		if errors.Is(err, usecase.ErrSessionExpired) || errors.Is(err, usecase.ErrSessionNotFound) {
			m.timeout(ctx, out, sessionID, err)
			return false
		}
		m.log.WithContext(ctx).Warnf("session status check failed: %v", err)
		return true
	}
	if time.Duration(status.RemainingSeconds)*time.Second <= m.warning {
		if err := out.send(SessionMessage{Type: MsgWarning, RemainingSeconds: status.RemainingSeconds}); err != nil {
			return false
		}
	}
	return true
}

// timeout ends an expired session before telling the browser. A session that is
// already gone needs no cleanup.
func (m *SessionMonitor) timeout(ctx context.Context, out *wsWriter, sessionID string, cause error) {
	if errors.Is(cause, usecase.ErrSessionExpired) {
		if err := m.usecase.ExpireSession(ctx, sessionID); err != nil {
			m.log.WithContext(ctx).Warnf("failed to end expired session %s: %v", sessionID, err)
		}
	}
	_ = out.send(SessionMessage{Type: MsgTimeout, Message: "Your session has expired. Please log in again."})
}

func (m *SessionMonitor) readLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, out *wsWriter, sessionID string) {
	defer cancel()
	for {
		var msg SessionMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.log.WithContext(ctx).Debugf("session monitor closed: %v", err)
			}
			return
		}

		switch msg.Type {
		case MsgActivity:
			if err := m.usecase.TouchSession(ctx, sessionID); err != nil {
				m.timeout(ctx, out, sessionID, err)
				return
			}
		case MsgExtend:
			status, err := m.usecase.ExtendSession(ctx, sessionID)
			if err != nil {
				m.timeout(ctx, out, sessionID, err)
				return
			}
			_ = out.send(SessionMessage{Type: MsgExtended, RemainingSeconds: status.RemainingSeconds})
		default:
			_ = out.send(SessionMessage{Type: MsgError, Message: "unknown message type: " + msg.Type})
		}
	}
}
