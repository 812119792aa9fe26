// Package notify delivers player-facing messages.
package notify

import (
	"git.lost.host/meutraa/eotw/internal/session"
	"github.com/rs/zerolog"
)

// Log writes notifications to a zerolog logger.
type Log struct {
	log zerolog.Logger
}

func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log.With().Str("component", "notify").Logger()}
}

func (l *Log) Notify(level session.Level, message string) {
	var ev *zerolog.Event
	switch level {
	case session.Warning:
		ev = l.log.Warn()
	case session.Error:
		ev = l.log.Error()
	default:
		ev = l.log.Info()
	}
	ev.Stringer("kind", level).Msg(message)
}

// Fanout sends every notification to each of its notifiers in order.
type Fanout []session.Notifier

func (f Fanout) Notify(level session.Level, message string) {
	for _, n := range f {
		if nil != n {
			n.Notify(level, message)
		}
	}
}
