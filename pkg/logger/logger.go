// Package logger provides a structured, levelled logger built on log/slog.
//
// The key extension over plain slog is WithCtx: it returns the logger the
// Logger middleware stored for the request, with the request ID already
// attached, so every log line from a handler or service is correlated:
//
//	log := logger.WithCtx(ctx)
//	log.Info("order placed", "order_id", o.ID.Hex())
//	// → time=... level=INFO msg="order placed" request_id=5f0c... order_id=65a1...
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// L is the process-wide base logger. It is usable before Setup runs.
var L = slog.Default()

// Options selects the handler built by Setup.
type Options struct {
	// JSON selects the JSON handler (production); otherwise text.
	JSON  bool
	Level string
	// Extra handlers receive every record alongside stdout (e.g. MongoHandler).
	Extra []slog.Handler
}

// Setup builds the base logger and installs it as slog's default.
func Setup(opts Options) *slog.Logger {
	return setup(os.Stdout, opts)
}

func setup(w io.Writer, opts Options) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, hopts) // structured JSON for log aggregators
	} else {
		handler = slog.NewTextHandler(w, hopts) // human-readable for dev
	}
	if len(opts.Extra) > 0 {
		handler = NewMultiHandler(append([]slog.Handler{handler}, opts.Extra...)...)
	}

	L = slog.New(handler)
	slog.SetDefault(L)
	return L
}

// ParseLevel maps debug|info|warn|error to a slog level. Unknown values
// fall back to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ctxKey is the unexported key used to store a per-request *slog.Logger.
type ctxKey struct{}

// WithCtx returns the request logger stored in ctx by InjectLogger, or the
// base logger when there is none.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
			return log
		}
	}
	return L
}

// InjectLogger stores a *slog.Logger (pre-tagged with request_id) into ctx.
// Called by the Logger middleware; not usually needed in application code.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

// Debug logs at DEBUG level.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs at INFO level.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs at WARN level.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs at ERROR level.
func Error(msg string, args ...any) { L.Error(msg, args...) }
