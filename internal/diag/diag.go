// Package diag provides the injected diagnostic sink used across the module.
// Diagnostics are advisory notices, never errors; every consumer tolerates a
// nil sink so the default behavior is a no-op.
package diag

import "log"

// Sink receives diagnostic-only notices.
type Sink interface {
	Notice(format string, args ...any)
}

// Notice forwards to the sink when it is configured.
func Notice(s Sink, format string, args ...any) {
	if s == nil {
		return
	}
	s.Notice(format, args...)
}

type logSink struct {
	channel string
}

// Log returns a sink writing notices to the standard logger under a named
// channel.
func Log(channel string) Sink {
	return logSink{channel: channel}
}

func (s logSink) Notice(format string, args ...any) {
	log.Printf("["+s.channel+"] "+format, args...)
}
