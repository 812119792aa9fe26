// Package timing keeps the authoritative song time of a gameplay session.
//
// Before the track starts, time is accumulated from frame deltas. Once the
// audio clock reports playing, its position overwrites the accumulated value
// every tick.
package timing

import "git.lost.host/meutraa/eotw/internal/audio"

type Effect int

const (
	NoAction Effect = iota
	// RequestPlay asks the caller to start the audio and mark the session
	// as started. It is returned at most once per Engine.
	RequestPlay
)

func (e Effect) String() string {
	switch e {
	case NoAction:
		return "none"
	case RequestPlay:
		return "request-play"
	default:
		return "unknown"
	}
}

type Engine struct {
	Time       float64 // ms, negative during the lead-in
	StartDelay float64 // ms
	Rate       float64

	playRequested bool
}

// New creates an engine positioned at the start of the lead-in, or at seekTo
// when previewing a section of a chart.
func New(startDelay, rate float64, seekTo *float64) *Engine {
	e := &Engine{
		StartDelay: startDelay,
		Rate:       rate,
		Time:       -startDelay * rate,
	}
	if nil != seekTo {
		e.Time = *seekTo
	}
	return e
}

// Update advances the time by dt ms of wall clock. clock may be nil when the
// chart has no audio, in which case time is always accumulated.
func (e *Engine) Update(dt float64, clock audio.Clock, hasStarted bool) Effect {
	if e.Time < 0 {
		e.Time += dt * e.Rate
		return NoAction
	}

	if !hasStarted && !e.playRequested {
		e.playRequested = true
		return RequestPlay
	}

	if nil != clock && clock.IsPlaying() {
		e.Time = clock.Position()
		return NoAction
	}

	e.Time += dt * e.Rate
	return NoAction
}

// PlayRequested reports whether RequestPlay has been handed out.
func (e *Engine) PlayRequested() bool {
	return e.playRequested
}
