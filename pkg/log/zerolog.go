package log

import (
	"context"
	"io"

	"github.com/rs/zerolog"

	"github.com/YuminosukeSato/debias/pkg/errors"
)

// zerologLogger adapts zerolog.Logger to Logger.
type zerologLogger struct {
	zl zerolog.Logger
}

// NewZerologLogger wraps zl.
func NewZerologLogger(zl zerolog.Logger) Logger {
	return &zerologLogger{zl: zl}
}

// NewZerologJSON builds a timestamped zerolog JSON logger writing to w.
func NewZerologJSON(w io.Writer, level Level) Logger {
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return NewZerologLogger(zl)
}

func (z *zerologLogger) Debug(msg string, fields ...any) { z.emit(z.zl.Debug(), msg, fields) }
func (z *zerologLogger) Info(msg string, fields ...any)  { z.emit(z.zl.Info(), msg, fields) }
func (z *zerologLogger) Warn(msg string, fields ...any)  { z.emit(z.zl.Warn(), msg, fields) }
func (z *zerologLogger) Error(msg string, fields ...any) { z.emit(z.zl.Error(), msg, fields) }

func (z *zerologLogger) emit(ev *zerolog.Event, msg string, fields []any) {
	if ev == nil {
		return
	}
	if len(fields) > 0 {
		ev = ev.Fields(fields)
	}
	ev.Msg(msg)
}

func (z *zerologLogger) With(fields ...any) Logger {
	if len(fields) == 0 {
		return z
	}
	return &zerologLogger{zl: z.zl.With().Fields(fields).Logger()}
}

func (z *zerologLogger) Enabled(_ context.Context, level Level) bool {
	return toZerologLevel(level) >= z.zl.GetLevel()
}

func toZerologLevel(level Level) zerolog.Level {
	switch {
	case level <= LevelDebug:
		return zerolog.DebugLevel
	case level <= LevelInfo:
		return zerolog.InfoLevel
	case level <= LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// InstallZerologWarnings routes errors.Warn through zl. Warnings implementing
// zerolog.LogObjectMarshaler are embedded as structured fields.
func InstallZerologWarnings(zl zerolog.Logger) {
	errors.SetZerologWarnFunc(func(w error) {
		ev := zl.Warn()
		if m, ok := w.(zerolog.LogObjectMarshaler); ok {
			ev = ev.EmbedObject(m)
		}
		ev.Msg(w.Error())
	})
}
