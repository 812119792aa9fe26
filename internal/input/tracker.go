package input

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Terminals only report key presses and their auto-repeats, never releases.
// A key that is not repeating counts as down for TapWindow after its press,
// a repeating key stays down until no repeat has arrived for RepeatWindow.
type Timing struct {
	TapWindow    time.Duration
	RepeatDelay  time.Duration // longest gap between a press and its first repeat
	RepeatWindow time.Duration
}

func DefaultTiming() Timing {
	return Timing{
		TapWindow:    50 * time.Millisecond,
		RepeatDelay:  600 * time.Millisecond,
		RepeatWindow: 100 * time.Millisecond,
	}
}

type key struct {
	last      time.Time
	repeating bool
	presses   int // unique presses since the last frame
}

// Tracker turns press events into held and unique press state per action.
type Tracker struct {
	clock    clockwork.Clock
	timing   Timing
	keys     map[Action]*key
	discrete map[Action]bool
}

// NewTracker tracks every action. Events of the discrete actions are always
// unique presses, never repeats, so quick double taps count twice.
func NewTracker(clock clockwork.Clock, timing Timing, discrete ...Action) *Tracker {
	if nil == clock {
		clock = clockwork.NewRealClock()
	}
	t := &Tracker{clock: clock, timing: timing, keys: map[Action]*key{}, discrete: map[Action]bool{}}
	for _, a := range discrete {
		t.discrete[a] = true
	}
	return t
}

func (t *Tracker) Press(a Action) {
	now := t.clock.Now()
	k, ok := t.keys[a]
	if !ok {
		k = &key{}
		t.keys[a] = k
	}

	if !t.discrete[a] && !k.last.IsZero() && t.continues(k, now) {
		k.repeating = true
	} else {
		k.repeating = false
		k.presses++
	}
	k.last = now
}

// continues reports whether a press at now is an auto-repeat of the previous
// one. Two taps closer than RepeatDelay look the same as a repeat.
func (t *Tracker) continues(k *key, now time.Time) bool {
	gap := now.Sub(k.last)
	if k.repeating {
		return gap <= t.timing.RepeatWindow
	}
	return gap <= t.timing.RepeatDelay
}

func (t *Tracker) isDown(k *key, now time.Time) bool {
	gap := now.Sub(k.last)
	if k.repeating {
		return gap <= t.timing.RepeatWindow
	}
	return gap <= t.timing.TapWindow
}

func (t *Tracker) Down(a Action) bool {
	k, ok := t.keys[a]
	if !ok || k.last.IsZero() {
		return false
	}
	return t.isDown(k, t.clock.Now())
}

// Pressed returns the unique presses of a since the last call and resets
// them.
func (t *Tracker) Pressed(a Action) int {
	k, ok := t.keys[a]
	if !ok {
		return 0
	}
	n := k.presses
	k.presses = 0
	return n
}
