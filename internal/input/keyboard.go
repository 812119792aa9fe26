package input

import (
	"fmt"

	"git.lost.host/meutraa/eotw/internal/session"
	"github.com/eiannone/keyboard"
	"github.com/jonboulle/clockwork"
)

type Action int

const (
	Pause Action = iota
	Restart
	Quit
	Skip
	OffsetUp
	OffsetDown
	// Lane actions start here, Lane + i is lane i.
	Lane
)

// Bindings map keys to actions. Pause is always escape.
type Bindings struct {
	Lanes      []rune
	Restart    rune
	Quit       rune
	Skip       rune
	OffsetUp   rune
	OffsetDown rune
}

func DefaultBindings() Bindings {
	return Bindings{
		Lanes:      []rune("dfjk"),
		Restart:    '`',
		Quit:       'q',
		Skip:       ' ',
		OffsetUp:   '+',
		OffsetDown: '-',
	}
}

// Frame is everything read from the keyboard since the previous frame.
type Frame struct {
	Input session.Input
	Skip  bool
	Abort bool // ctrl-c
}

type Keyboard struct {
	events   <-chan keyboard.KeyEvent
	bindings Bindings
	tracker  *Tracker
	abort    bool
}

// OpenKeyboard puts the terminal in raw mode and starts reading keys.
func OpenKeyboard(bindings Bindings, clock clockwork.Clock, timing Timing) (*Keyboard, error) {
	events, err := keyboard.GetKeys(128)
	if nil != err {
		return nil, fmt.Errorf("unable to open keyboard: %w", err)
	}
	return newKeyboard(events, bindings, clock, timing), nil
}

func newKeyboard(events <-chan keyboard.KeyEvent, bindings Bindings, clock clockwork.Clock, timing Timing) *Keyboard {
	return &Keyboard{
		events:   events,
		bindings: bindings,
		tracker:  NewTracker(clock, timing, Quit),
	}
}

func (k *Keyboard) Close() error {
	return keyboard.Close()
}

func (k *Keyboard) handle(ev keyboard.KeyEvent) {
	if nil != ev.Err {
		return
	}
	switch ev.Key {
	case keyboard.KeyEsc:
		k.tracker.Press(Pause)
		return
	case keyboard.KeyCtrlC:
		k.abort = true
		return
	case keyboard.KeySpace:
		ev.Rune = ' '
	}

	b := k.bindings
	switch ev.Rune {
	case 0:
	case b.Restart:
		k.tracker.Press(Restart)
	case b.Quit:
		k.tracker.Press(Quit)
	case b.Skip:
		k.tracker.Press(Skip)
	case b.OffsetUp:
		k.tracker.Press(OffsetUp)
	case b.OffsetDown:
		k.tracker.Press(OffsetDown)
	default:
		for i, r := range b.Lanes {
			if r == ev.Rune {
				k.tracker.Press(Lane + Action(i))
				break
			}
		}
	}
}

// Poll drains the pending key events without blocking.
func (k *Keyboard) Poll() Frame {
	for {
		select {
		case ev, ok := <-k.events:
			if !ok {
				return k.frame()
			}
			k.handle(ev)
		default:
			return k.frame()
		}
	}
}

func (k *Keyboard) frame() Frame {
	t := k.tracker
	f := Frame{
		Input: session.Input{
			PauseDown:    t.Down(Pause),
			PausePressed: t.Pressed(Pause) > 0,
			RestartDown:  t.Down(Restart),
			QuitPressed:  t.Pressed(Quit) > 0,
			OffsetDelta:  t.Pressed(OffsetUp) - t.Pressed(OffsetDown),
		},
		Skip:  t.Pressed(Skip) > 0,
		Abort: k.abort,
	}
	for i := range k.bindings.Lanes {
		t.Pressed(Lane + Action(i))
		if t.Down(Lane + Action(i)) {
			f.Input.Lanes |= 1 << i
		}
	}
	return f
}
