package session

import "git.lost.host/meutraa/eotw/internal/game"

// Judge is the scoring subsystem's view of the play.
type Judge interface {
	// Failed is true when health is depleted and failing is allowed.
	Failed() bool
	// Complete is true when every object has been judged.
	Complete() bool
}

// Capturer receives the song time and the held lanes every tick.
type Capturer interface {
	Capture(time float64, lanes uint32)
}

type OffsetStore interface {
	SaveOffset(chart string, offset int) error
}

type Level int

const (
	Info Level = iota
	Success
	Warning
	Error
)

func (l Level) String() string {
	switch l {
	case Info:
		return "info"
	case Success:
		return "success"
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

type Notifier interface {
	Notify(level Level, message string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Level, string) {}

// Playtest is a preview of a section of a chart started from an editor.
type Playtest struct {
	Base  *game.Chart // the untrimmed chart
	Start float64     // ms
}
