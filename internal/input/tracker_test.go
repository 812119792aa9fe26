package input

import (
	"testing"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/jonboulle/clockwork"
)

func TestTapIsBrief(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tr := NewTracker(clock, DefaultTiming())

	if tr.Down(Pause) {
		t.Error("down before any press")
	}
	tr.Press(Pause)
	if !tr.Down(Pause) || tr.Pressed(Pause) != 1 {
		t.Error("press not registered")
	}
	if tr.Pressed(Pause) != 0 {
		t.Error("unique press reported twice")
	}
	clock.Advance(51 * time.Millisecond)
	if tr.Down(Pause) {
		t.Error("tap still down after the tap window")
	}
}

func TestRepeatsHold(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tr := NewTracker(clock, DefaultTiming())

	tr.Press(Pause)
	clock.Advance(500 * time.Millisecond)
	tr.Press(Pause)
	for i := 0; i < 20; i++ {
		clock.Advance(33 * time.Millisecond)
		tr.Press(Pause)
		if !tr.Down(Pause) {
			t.Fatalf("repeat %v not held", i)
		}
	}
	if n := tr.Pressed(Pause); n != 1 {
		t.Errorf("repeats counted as %v presses", n)
	}

	clock.Advance(90 * time.Millisecond)
	if !tr.Down(Pause) {
		t.Error("released between repeats")
	}
	clock.Advance(20 * time.Millisecond)
	if tr.Down(Pause) {
		t.Error("still held after repeats stopped")
	}

	clock.Advance(time.Second)
	tr.Press(Pause)
	if tr.Pressed(Pause) != 1 {
		t.Error("new press after release not unique")
	}
}

func testKeyboard(clock clockwork.Clock) (*Keyboard, chan keyboard.KeyEvent) {
	events := make(chan keyboard.KeyEvent, 16)
	return newKeyboard(events, DefaultBindings(), clock, DefaultTiming()), events
}

func TestPollFrame(t *testing.T) {
	clock := clockwork.NewFakeClock()
	k, events := testKeyboard(clock)

	events <- keyboard.KeyEvent{Key: keyboard.KeyEsc}
	events <- keyboard.KeyEvent{Rune: 'd'}
	events <- keyboard.KeyEvent{Rune: 'k'}
	events <- keyboard.KeyEvent{Rune: '+'}
	events <- keyboard.KeyEvent{Rune: '+'}
	events <- keyboard.KeyEvent{Key: keyboard.KeySpace}
	events <- keyboard.KeyEvent{Rune: 'q'}

	f := k.Poll()
	in := f.Input
	if !in.PauseDown || !in.PausePressed || !in.QuitPressed {
		t.Errorf("input %+v", in)
	}
	// the second + is a repeat of the first
	if in.OffsetDelta != 1 {
		t.Errorf("offset delta %v", in.OffsetDelta)
	}
	if in.Lanes != 0b1001 {
		t.Errorf("lanes %b", in.Lanes)
	}
	if !f.Skip || f.Abort {
		t.Errorf("skip %v abort %v", f.Skip, f.Abort)
	}

	clock.Advance(time.Second)
	f = k.Poll()
	if f.Input.PauseDown || f.Input.PausePressed || f.Skip || f.Input.Lanes != 0 {
		t.Errorf("empty frame %+v", f)
	}
}

func TestPollAbort(t *testing.T) {
	k, events := testKeyboard(clockwork.NewFakeClock())
	events <- keyboard.KeyEvent{Key: keyboard.KeyCtrlC}
	if !k.Poll().Abort {
		t.Error("ctrl-c did not abort")
	}
}

func TestDiscreteCountsEveryPress(t *testing.T) {
	clock := clockwork.NewFakeClock()
	tr := NewTracker(clock, DefaultTiming(), Quit)

	tr.Press(Quit)
	clock.Advance(150 * time.Millisecond)
	tr.Press(Quit)
	if n := tr.Pressed(Quit); n != 2 {
		t.Errorf("quick double tap counted as %v presses", n)
	}
}

func TestQuitDoubleTap(t *testing.T) {
	clock := clockwork.NewFakeClock()
	k, events := testKeyboard(clock)

	events <- keyboard.KeyEvent{Rune: 'q'}
	if !k.Poll().Input.QuitPressed {
		t.Fatal("first quit missed")
	}
	clock.Advance(150 * time.Millisecond)
	events <- keyboard.KeyEvent{Rune: 'q'}
	if !k.Poll().Input.QuitPressed {
		t.Error("second quit of a double tap missed")
	}
}
