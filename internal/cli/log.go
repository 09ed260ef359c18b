// Package cli implements the bee command-line interface.
//
// The commands collect the dependencies of a project (bee.toml or
// bee.yaml in the working directory) or of a single artifact given as a
// coordinate, and print them in different shapes:
//   - resolve: the flattened library set for a scope, as a table, a list,
//     JSON or an interactive browser
//   - tree: the resolved dependency tree, conflict losers included
//   - graph: a Graphviz rendering of the tree (DOT, SVG, PDF, PNG) or JSON
//   - cache: manage the repository response cache
//
// # Settings
//
// Every persistent flag can also be set through the environment with the
// BEE_ prefix (BEE_THREADS, BEE_REDIS_URL) or in the config file
// $XDG_CONFIG_HOME/bee/config.yaml.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w at level, with timestamps such as
// "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the completion of an operation with its elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Resolved 42 libraries (1.234s)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached to ctx, or log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
