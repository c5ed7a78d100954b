package sink

import (
	"context"
	"io"
	"os"

	"showcase-platform/internal/audit/domain/model"
	"showcase-platform/internal/audit/domain/repository"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileConfig points the JSON sink at a rotated file. An empty Path writes to stdout.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// ZapSink writes each audit entry as one JSON line.
type ZapSink struct {
	logger *zap.Logger
}

// NewZapSink builds a sink writing JSON lines to w.
func NewZapSink(w io.Writer) *ZapSink {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "recordedAt"
	encCfg.MessageKey = "msg"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.CallerKey = ""
	encCfg.StacktraceKey = ""

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), zap.InfoLevel)
	return &ZapSink{logger: zap.New(core).Named("audit")}
}

// NewFileSink opens the sink described by cfg.
func NewFileSink(cfg FileConfig) *ZapSink {
	if cfg.Path == "" {
		return NewZapSink(os.Stdout)
	}
	if cfg.MaxSizeMB <= 0 {
		cfg.MaxSizeMB = 100
	}
	return NewZapSink(&lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})
}

func (s *ZapSink) Write(_ context.Context, entry *model.AuditLog) error {
	fields := []zap.Field{
		zap.String("id", entry.ID),
		zap.String("userId", entry.UserID),
		zap.String("userEmail", entry.UserEmail),
		zap.String("actionType", string(entry.ActionType)),
		zap.String("resourceType", string(entry.ResourceType)),
		zap.String("resourceId", entry.ResourceID),
		zap.Time("timestamp", entry.Timestamp),
		zap.String("ipAddress", entry.IPAddress),
		zap.String("userAgent", entry.UserAgent),
		zap.String("details", entry.Details),
	}
	if len(entry.Metadata) > 0 {
		fields = append(fields, zap.Any("metadata", entry.Metadata))
	}
	s.logger.Info("audit", fields...)
	return nil
}

// Sync flushes buffered output.
func (s *ZapSink) Sync() error {
	return s.logger.Sync()
}

var _ repository.Sink = (*ZapSink)(nil)
