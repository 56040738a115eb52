package log

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// Options configures the zerolog backed Logger.
type Options struct {
	Level  string    // debug, info, warn, error; defaults to info
	Format string    // console or json; defaults to console
	Out    io.Writer // defaults to os.Stderr
}

// zerologAdapter wraps a zerolog.Logger to implement Logger.
type zerologAdapter struct {
	logger zerolog.Logger
}

// New creates a Logger from opts.
func New(opts Options) Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	level := ParseLevel(opts.Level)

	var zlog zerolog.Logger
	if strings.EqualFold(opts.Format, "json") {
		zlog = zerolog.New(out)
	} else {
		zlog = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339})
	}
	return &zerologAdapter{logger: zlog.Level(level).With().Timestamp().Logger()}
}

// NewZerologAdapter creates a console or JSON Logger on stderr at level.
func NewZerologAdapter(level zerolog.Level, pretty bool) Logger {
	format := "json"
	if pretty {
		format = "console"
	}
	return New(Options{Level: level.String(), Format: format})
}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return &zerologAdapter{logger: zerolog.Nop()}
}

// ParseLevel maps a level name to a zerolog level, falling back to info.
func ParseLevel(s string) zerolog.Level {
	if s == "" {
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// addTraceInfo adds trace_id and span_id when ctx carries a valid span.
func addTraceInfo(ctx context.Context, event *zerolog.Event) *zerolog.Event {
	if ctx == nil {
		return event
	}
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		event = event.Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String())
	}
	return event
}

func send(ctx context.Context, event *zerolog.Event, msg string, fields []map[string]interface{}) {
	event = addTraceInfo(ctx, event)
	for _, f := range fields {
		event = event.Fields(f)
	}
	event.Msg(msg)
}

func (z *zerologAdapter) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {
	send(ctx, z.logger.Debug(), msg, fields)
}

func (z *zerologAdapter) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	send(ctx, z.logger.Info(), msg, fields)
}

func (z *zerologAdapter) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	send(ctx, z.logger.Warn(), msg, fields)
}

func (z *zerologAdapter) Error(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	send(ctx, z.logger.Error().Err(err), msg, fields)
}

func (z *zerologAdapter) Fatal(ctx context.Context, msg string, err error, fields ...map[string]interface{}) {
	send(ctx, z.logger.Fatal().Err(err), msg, fields)
}

// With returns a child logger carrying fields. Trace information is still
// added per call so it reflects the span active at that moment.
func (z *zerologAdapter) With(fields map[string]interface{}) Logger {
	return &zerologAdapter{logger: z.logger.With().Fields(fields).Logger()}
}
