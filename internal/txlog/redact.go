// Copyright (C) 2025, txconsensus Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package txlog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/luxfi/log"
	"go.uber.org/zap"
)

// sensitiveKeys are the structured-log field names spec.md §9 requires to
// never reach a sink: private keys, LLM provider credentials/plugin config,
// and contract code. Matching is case-insensitive on the key alone; callers
// should not rely on nesting to hide a sensitive value under a different key.
var sensitiveKeys = map[string]struct{}{
	"private_key":    {},
	"privatekey":     {},
	"config":         {},
	"plugin_config":  {},
	"contract_code":  {},
	"code":           {},
	"api_key":        {},
	"provider_key":   {},
}

// maxFieldBytes bounds any single field value logged. Calldata and contract
// state can run to megabytes; spec.md §9 asks that these be summarized
// rather than dumped into consensus_history or the structured log sink.
const maxFieldBytes = 2048

const redactedPlaceholder = "[redacted]"

// redactor wraps a log.Logger and scrubs its variadic key-value context
// before delegating to inner.
type redactor struct {
	inner log.Logger
}

// NewRedactingLogger wraps inner so that Info/Warn/Error/Debug/Trace/Crit
// calls have their key-value context scrubbed per spec.md §9 before being
// passed through. With/New/WithFields carry the wrapping forward so a
// logger derived from a redacting logger stays redacting.
func NewRedactingLogger(inner log.Logger) log.Logger {
	if inner == nil {
		return NewNoOpLogger()
	}
	return &redactor{inner: inner}
}

func (r *redactor) With(ctx ...interface{}) log.Logger {
	return &redactor{inner: r.inner.With(scrubPairs(ctx)...)}
}

func (r *redactor) New(ctx ...interface{}) log.Logger {
	return &redactor{inner: r.inner.New(scrubPairs(ctx)...)}
}

func (r *redactor) Log(level slog.Level, msg string, ctx ...interface{}) {
	r.inner.Log(level, msg, scrubPairs(ctx)...)
}

func (r *redactor) Trace(msg string, ctx ...interface{}) { r.inner.Trace(msg, scrubPairs(ctx)...) }
func (r *redactor) Debug(msg string, ctx ...interface{}) { r.inner.Debug(msg, scrubPairs(ctx)...) }
func (r *redactor) Info(msg string, ctx ...interface{})  { r.inner.Info(msg, scrubPairs(ctx)...) }
func (r *redactor) Warn(msg string, ctx ...interface{})  { r.inner.Warn(msg, scrubPairs(ctx)...) }
func (r *redactor) Error(msg string, ctx ...interface{}) { r.inner.Error(msg, scrubPairs(ctx)...) }
func (r *redactor) Crit(msg string, ctx ...interface{})  { r.inner.Crit(msg, scrubPairs(ctx)...) }

func (r *redactor) WriteLog(level slog.Level, msg string, attrs ...any) {
	r.inner.WriteLog(level, msg, scrubPairs(attrs)...)
}

func (r *redactor) Enabled(ctx context.Context, level slog.Level) bool {
	return r.inner.Enabled(ctx, level)
}

func (r *redactor) Handler() slog.Handler { return r.inner.Handler() }

func (r *redactor) Fatal(msg string, fields ...zap.Field) { r.inner.Fatal(msg, fields...) }
func (r *redactor) Verbo(msg string, fields ...zap.Field) { r.inner.Verbo(msg, fields...) }

func (r *redactor) WithFields(fields ...zap.Field) log.Logger {
	return &redactor{inner: r.inner.WithFields(fields...)}
}

func (r *redactor) WithOptions(opts ...zap.Option) log.Logger {
	return &redactor{inner: r.inner.WithOptions(opts...)}
}

func (r *redactor) SetLevel(level slog.Level)          { r.inner.SetLevel(level) }
func (r *redactor) GetLevel() slog.Level               { return r.inner.GetLevel() }
func (r *redactor) EnabledLevel(lvl slog.Level) bool   { return r.inner.EnabledLevel(lvl) }
func (r *redactor) StopOnPanic()                       { r.inner.StopOnPanic() }
func (r *redactor) RecoverAndPanic(f func())           { r.inner.RecoverAndPanic(f) }
func (r *redactor) RecoverAndExit(f, exit func())      { r.inner.RecoverAndExit(f, exit) }
func (r *redactor) Stop()                              { r.inner.Stop() }
func (r *redactor) Write(p []byte) (int, error)        { return r.inner.Write(p) }

// scrubPairs walks a geth-style key, value, key, value... slice and
// replaces the value of any sensitive key, and truncates any oversized
// value regardless of key.
func scrubPairs(ctx []interface{}) []interface{} {
	if len(ctx) == 0 {
		return ctx
	}
	out := make([]interface{}, len(ctx))
	copy(out, ctx)
	for i := 0; i+1 < len(out); i += 2 {
		key, ok := out[i].(string)
		if !ok {
			continue
		}
		if _, sensitive := sensitiveKeys[strings.ToLower(key)]; sensitive {
			out[i+1] = redactedPlaceholder
			continue
		}
		out[i+1] = truncate(out[i+1])
	}
	return out
}

func truncate(v interface{}) interface{} {
	switch s := v.(type) {
	case string:
		if len(s) > maxFieldBytes {
			return s[:maxFieldBytes] + "...(truncated)"
		}
	case []byte:
		if len(s) > maxFieldBytes {
			return string(s[:maxFieldBytes]) + "...(truncated)"
		}
	}
	return v
}

// NoLog is a no-op logger implementation that implements the luxfi/log.Logger interface
type NoLog struct{}

// NewNoOpLogger returns a new no-op logger
func NewNoOpLogger() log.Logger {
	return &NoLog{}
}

// Geth-style methods

// With adds context fields (variadic key-value pairs)
func (n NoLog) With(ctx ...interface{}) log.Logger {
	return n
}

// New is an alias for With
func (n NoLog) New(ctx ...interface{}) log.Logger {
	return n
}

// Log logs at the specified level
func (NoLog) Log(level slog.Level, msg string, ctx ...interface{}) {}

// Trace logs at trace level
func (NoLog) Trace(msg string, ctx ...interface{}) {}

// Debug logs at debug level
func (NoLog) Debug(msg string, ctx ...interface{}) {}

// Info logs at info level
func (NoLog) Info(msg string, ctx ...interface{}) {}

// Warn logs at warn level
func (NoLog) Warn(msg string, ctx ...interface{}) {}

// Error logs at error level
func (NoLog) Error(msg string, ctx ...interface{}) {}

// Crit logs at critical level
func (NoLog) Crit(msg string, ctx ...interface{}) {}

// WriteLog logs a message at the specified level
func (NoLog) WriteLog(level slog.Level, msg string, attrs ...any) {}

// Enabled checks if a level is enabled
func (NoLog) Enabled(ctx context.Context, level slog.Level) bool {
	return false
}

// Handler returns the slog handler
func (NoLog) Handler() slog.Handler {
	return nil
}

// Node compatibility methods

// Fatal logs at fatal level
func (NoLog) Fatal(msg string, fields ...zap.Field) {}

// Verbo logs at verbose level
func (NoLog) Verbo(msg string, fields ...zap.Field) {}

// WithFields adds structured context
func (n NoLog) WithFields(fields ...zap.Field) log.Logger {
	return n
}

// WithOptions adds options
func (n NoLog) WithOptions(opts ...zap.Option) log.Logger {
	return n
}

// Additional methods

// SetLevel sets the logging level
func (NoLog) SetLevel(level slog.Level) {}

// GetLevel returns the current logging level
func (NoLog) GetLevel() slog.Level {
	return slog.Level(0)
}

// EnabledLevel checks if a level is enabled
func (NoLog) EnabledLevel(lvl slog.Level) bool {
	return false
}

// StopOnPanic stops on panic
func (NoLog) StopOnPanic() {}

// RecoverAndPanic recovers and panics
func (NoLog) RecoverAndPanic(f func()) {
	f()
}

// RecoverAndExit recovers and exits
func (NoLog) RecoverAndExit(f, exit func()) {
	f()
}

// Stop stops the logger
func (NoLog) Stop() {}

// Write implements io.Writer
func (NoLog) Write(p []byte) (n int, err error) {
	return len(p), nil
}
