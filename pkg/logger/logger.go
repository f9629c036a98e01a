// Package logger builds the process logger.
//
// Every component receives a log.Logger through its constructor and tags
// its lines with a "component" key, e.g.
//
//	level.Warn(l).Log("msg", "token rejected", "kind", "ExpiredToken")
//
// renders as
//
//	level=warn ts=... caller=auth.go:97 component=auth msg="token rejected" kind=ExpiredToken
package logger

import (
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// New returns a logfmt logger writing to w, stamped with a UTC timestamp and
// the caller, filtered to lvl ("debug", "info", "warn", "error"; anything
// else means "info").
func New(w io.Writer, lvl string) log.Logger {
	l := log.NewLogfmtLogger(log.NewSyncWriter(w))
	l = level.NewFilter(l, allow(lvl))
	// The caller valuer must sit in the outermost context: With and level
	// prefixes then merge into it and Caller(3) lands on the call site.
	return log.With(l, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
}

// Component returns l tagged with the component name.
func Component(l log.Logger, name string) log.Logger {
	if l == nil {
		l = log.NewNopLogger()
	}
	return log.With(l, "component", name)
}

func allow(lvl string) level.Option {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		return level.AllowDebug()
	case "warn", "warning":
		return level.AllowWarn()
	case "error":
		return level.AllowError()
	default:
		return level.AllowInfo()
	}
}
