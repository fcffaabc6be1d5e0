package streamvamana

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with engine-specific context. It provides
// structured logging with field names that match this domain's
// vocabulary: slots, tags, beam width.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithTag adds a tag field to the logger.
func (l *Logger) WithTag(tag Tag) *Logger {
	return &Logger{Logger: l.Logger.With("tag", uint32(tag))}
}

// WithSlot adds a slot field to the logger.
func (l *Logger) WithSlot(slot uint32) *Logger {
	return &Logger{Logger: l.Logger.With("slot", slot)}
}

// WithBeamWidth adds a beam_width field to the logger.
func (l *Logger) WithBeamWidth(beamWidth int) *Logger {
	return &Logger{Logger: l.Logger.With("beam_width", beamWidth)}
}

// LogInsertPoint logs an insert_point operation.
func (l *Logger) LogInsertPoint(ctx context.Context, tag Tag, err error) {
	if err != nil {
		l.ErrorContext(ctx, "insert_point failed",
			"tag", uint32(tag),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "insert_point completed",
			"tag", uint32(tag),
		)
	}
}

// LogBatchInsert logs an insert_batch operation.
func (l *Logger) LogBatchInsert(ctx context.Context, count, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "insert_batch completed with failures",
			"total", count,
			"failed", failed,
			"success", count-failed,
		)
	} else {
		l.InfoContext(ctx, "insert_batch completed",
			"count", count,
		)
	}
}

// LogSearch logs a search operation.
func (l *Logger) LogSearch(ctx context.Context, k, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "search completed",
			"k", k,
			"results", resultsFound,
		)
	}
}

// LogLazyDelete logs a lazy_delete operation.
func (l *Logger) LogLazyDelete(ctx context.Context, tag Tag, err error) {
	if err != nil {
		l.ErrorContext(ctx, "lazy_delete failed",
			"tag", uint32(tag),
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "lazy_delete completed",
			"tag", uint32(tag),
		)
	}
}

// LogConsolidate logs a consolidate_deletes pass.
func (l *Logger) LogConsolidate(ctx context.Context, report ConsolidateReport, err error) {
	if err != nil {
		l.ErrorContext(ctx, "consolidate_deletes failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "consolidate_deletes completed",
			"status", report.Status.String(),
			"active_points", report.ActivePoints,
			"slots_released", report.SlotsReleased,
			"delete_set_size", report.DeleteSetSize,
			"time", report.Time,
		)
	}
}

// LogNormClamp logs a MIPS augmentation norm clamp: a vector's raw norm
// exceeded the fixed max M computed at init time, so its effective norm
// was clamped to M for the augmented-dimension lift.
func (l *Logger) LogNormClamp(ctx context.Context, tag Tag, norm, max float64) {
	l.WarnContext(ctx, "vector norm exceeds MIPS augmentation max, clamping",
		"tag", uint32(tag),
		"norm", norm,
		"max", max,
	)
}

// LogSnapshot logs a save operation.
func (l *Logger) LogSnapshot(ctx context.Context, path string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "save completed",
			"path", path,
		)
	}
}

// LogLoad logs a load operation.
func (l *Logger) LogLoad(ctx context.Context, path string, pointsLoaded int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "load completed",
			"path", path,
			"points_loaded", pointsLoaded,
		)
	}
}
