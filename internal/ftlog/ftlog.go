// Package ftlog is this repository's structured-logging façade, used by
// the root fpta package to report schema transitions, transaction
// lifecycle events, and handle-cache eviction — the events
// original_source/'s build logs through its own diagnostic channel.
// Built on github.com/erigontech/erigon-lib/log/v3, the log15-shaped
// leveled logger the teacher repo itself imports directly (see
// tests/state_test_util.go and turbo/snapshotsync/snapshotsync.go in the
// retrieval pack: log.Root(), log.New(), log.Info/Warn/Error with a
// message plus trailing key-value context) rather than go-kit/log, which
// never appears as a direct import anywhere in the teacher's source (see
// DESIGN.md).
package ftlog

import (
	log "github.com/erigontech/erigon-lib/log/v3"
)

// Logger is the erigon-lib/log/v3 leveled-logger interface this package's
// callers use directly; kept as an alias so callers never need to import
// erigon-lib/log/v3 themselves for ordinary use.
type Logger = log.Logger

// New returns the root logger, the same "package-level Info/Warn/Error
// operate on log.Root()" entry point the teacher's own source reaches
// for (snapshotsync.go's bare log.Info/log.Warn/log.Error calls).
func New() Logger { return log.Root() }

// Nop returns a logger with its handler replaced by a no-op sink; tests
// and embedders that don't want output use this instead of New().
func Nop() Logger {
	l := log.New()
	l.SetHandler(log.DiscardHandler())
	return l
}

// WithComponent tags every subsequent line from logger with component,
// e.g. "schema", "cursor", "handlecache" — log15's "New(ctx...) binds a
// child logger's context" idiom.
func WithComponent(logger Logger, component string) Logger {
	return logger.New("component", component)
}

// Debug/Info/Warn/Error log one event with msg as the human-readable
// summary and ctx as alternating key/value pairs, mirroring
// erigon-lib/log/v3's Logger method signatures directly (no flat-keyvals
// translation needed, unlike go-kit/log's Log(keyvals...) shape).
func Debug(logger Logger, msg string, ctx ...interface{}) { logger.Debug(msg, ctx...) }
func Info(logger Logger, msg string, ctx ...interface{})  { logger.Info(msg, ctx...) }
func Warn(logger Logger, msg string, ctx ...interface{})  { logger.Warn(msg, ctx...) }
func Error(logger Logger, msg string, ctx ...interface{}) { logger.Error(msg, ctx...) }
