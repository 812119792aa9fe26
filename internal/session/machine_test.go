package session

import (
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func newTestMachine(settings Settings) (*Machine, clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	return NewMachine(settings, clock, false), clock
}

func kinds(effects []Effect) []EffectKind {
	out := []EffectKind{}
	for _, e := range effects {
		out = append(out, e.Kind)
	}
	return out
}

func hasEffect(effects []Effect, kind EffectKind) bool {
	for _, e := range effects {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func step(m *Machine, dt float64, in Input) []Effect {
	return m.Step(&Tick{Dt: dt, Input: in, HasStarted: true})
}

func TestStartingToPlaying(t *testing.T) {
	m, _ := newTestMachine(DefaultSettings())
	if m.Phase() != Starting {
		t.Fatalf("initial phase %v", m.Phase())
	}
	if effects := step(m, 16, Input{}); len(effects) != 0 {
		t.Errorf("unexpected effects %v", kinds(effects))
	}
	if m.Phase() != Playing {
		t.Errorf("phase %v after first tick", m.Phase())
	}
}

func TestPauseHoldThreshold(t *testing.T) {
	m, _ := newTestMachine(DefaultSettings())
	held := Input{PauseDown: true}

	step(m, 200, held)
	step(m, 200, held)
	if m.Phase() != Playing {
		t.Fatalf("paused after 400ms hold")
	}
	if p := m.PauseHoldProgress(); p != 0.8 {
		t.Errorf("hold progress %v, expected 0.8", p)
	}

	effects := step(m, 150, held)
	if m.Phase() != Paused {
		t.Fatalf("phase %v after 550ms hold", m.Phase())
	}
	if len(effects) != 1 || effects[0].Kind != PauseRequested || effects[0].Count != 1 {
		t.Errorf("effects %+v, expected one PauseRequested(1)", effects)
	}
	if m.PauseCount() != 1 {
		t.Errorf("pause count %v", m.PauseCount())
	}
	if m.PauseHoldProgress() != 0 {
		t.Errorf("hold progress not reset on pause")
	}
}

func TestPauseHoldResetsOnRelease(t *testing.T) {
	m, _ := newTestMachine(DefaultSettings())
	step(m, 300, Input{PauseDown: true})
	step(m, 16, Input{})
	if m.PauseHoldProgress() != 0 {
		t.Errorf("hold progress %v after release", m.PauseHoldProgress())
	}
	step(m, 300, Input{PauseDown: true})
	if m.Phase() != Playing {
		t.Errorf("released hold still counted, phase %v", m.Phase())
	}
}

func TestTapToPause(t *testing.T) {
	settings := DefaultSettings()
	settings.TapToPause = true
	m, _ := newTestMachine(settings)

	step(m, 16, Input{PauseDown: true})
	if m.Phase() != Playing {
		t.Errorf("held key paused without a press")
	}
	effects := step(m, 1, Input{PauseDown: true, PausePressed: true})
	if m.Phase() != Paused || !hasEffect(effects, PauseRequested) {
		t.Errorf("tap did not pause: %v %v", m.Phase(), kinds(effects))
	}
}

func TestExternalPauseRequest(t *testing.T) {
	m, _ := newTestMachine(DefaultSettings())
	step(m, 16, Input{})
	effects := m.Step(&Tick{Dt: 16, PauseRequested: true})
	if m.Phase() != Paused || !hasEffect(effects, PauseRequested) {
		t.Errorf("pause request ignored: %v %v", m.Phase(), kinds(effects))
	}
}

func TestPauseOutsideTickPanics(t *testing.T) {
	m, _ := newTestMachine(DefaultSettings())
	step(m, 16, Input{})
	defer func() {
		if recover() == nil {
			t.Error("expected a panic")
		}
	}()
	m.Pause(nil)
}

func pauseMachine(t *testing.T, m *Machine) {
	t.Helper()
	for i := 0; i < 10 && m.Phase() != Paused; i++ {
		step(m, 100, Input{PauseDown: true})
	}
	if m.Phase() != Paused {
		t.Fatalf("unable to pause, phase %v", m.Phase())
	}
	step(m, 16, Input{})
}

func TestResumeGrace(t *testing.T) {
	m, clock := newTestMachine(DefaultSettings())
	pauseMachine(t, m)

	effects := step(m, 16, Input{PauseDown: true, PausePressed: true})
	if m.Phase() != Resuming || !hasEffect(effects, ResumeRequested) {
		t.Fatalf("phase %v effects %v", m.Phase(), kinds(effects))
	}
	if !m.IsPaused() {
		t.Error("resuming should still count as paused")
	}
	if r := m.ResumeRemaining(); r != 800*time.Millisecond {
		t.Errorf("remaining %v", r)
	}

	clock.Advance(799 * time.Millisecond)
	if effects := step(m, 16, Input{}); m.Phase() != Resuming || len(effects) != 0 {
		t.Fatalf("resumed before the grace ran out: %v %v", m.Phase(), kinds(effects))
	}

	clock.Advance(time.Millisecond)
	effects = step(m, 16, Input{})
	if m.Phase() != Playing {
		t.Fatalf("phase %v after grace", m.Phase())
	}
	if len(effects) != 1 || effects[0].Kind != ResumePlayback {
		t.Errorf("effects %v, expected ResumePlayback", kinds(effects))
	}
	if m.PauseCount() != 1 {
		t.Errorf("pause count %v", m.PauseCount())
	}
}

func TestResumeBeforeStartDoesNotTouchAudio(t *testing.T) {
	m, clock := newTestMachine(DefaultSettings())
	pauseMachine(t, m)
	m.Step(&Tick{Dt: 16, Input: Input{PausePressed: true}})
	clock.Advance(time.Second)
	effects := m.Step(&Tick{Dt: 16})
	if m.Phase() != Playing {
		t.Fatalf("phase %v", m.Phase())
	}
	if hasEffect(effects, ResumePlayback) {
		t.Error("resumed playback that never started")
	}
}

func TestResumeBlockedByChat(t *testing.T) {
	m, _ := newTestMachine(DefaultSettings())
	pauseMachine(t, m)
	step(m, 16, Input{PausePressed: true, ChatActive: true})
	if m.Phase() != Paused {
		t.Errorf("resumed with chat open: %v", m.Phase())
	}
}

func TestRestartHold(t *testing.T) {
	m, _ := newTestMachine(DefaultSettings())
	step(m, 16, Input{})
	held := Input{RestartDown: true}

	effects := step(m, 100, held)
	if len(effects) != 1 || effects[0].Kind != RestartFadeIn {
		t.Errorf("effects %v, expected fade in", kinds(effects))
	}
	if effects := step(m, 50, held); len(effects) != 0 {
		t.Errorf("fade in retriggered: %v", kinds(effects))
	}
	effects = step(m, 50, held)
	if m.Phase() != Restarting || len(effects) != 1 || effects[0].Kind != RestartRequested {
		t.Fatalf("phase %v effects %v", m.Phase(), kinds(effects))
	}
	for i := 0; i < 5; i++ {
		if effects := step(m, 50, held); len(effects) != 0 {
			t.Errorf("restart refired: %v", kinds(effects))
		}
	}
}

func TestRestartReleasedEarly(t *testing.T) {
	m, _ := newTestMachine(DefaultSettings())
	step(m, 100, Input{RestartDown: true})

	effects := step(m, 16, Input{})
	if len(effects) != 1 || effects[0].Kind != RestartFadeOut {
		t.Errorf("effects %v, expected fade out", kinds(effects))
	}
	if effects := step(m, 16, Input{}); len(effects) != 0 {
		t.Errorf("fade out retriggered: %v", kinds(effects))
	}
	if in, out := m.RestartFading(); in || !out {
		t.Errorf("fading in %v out %v", in, out)
	}

	// a fresh hold starts from zero
	step(m, 150, Input{RestartDown: true})
	if m.Phase() != Playing {
		t.Errorf("hold time carried over, phase %v", m.Phase())
	}
}

func TestQuitTwoStage(t *testing.T) {
	m, _ := newTestMachine(DefaultSettings())
	step(m, 16, Input{})

	effects := step(m, 16, Input{QuitPressed: true})
	if m.Phase() != Playing || m.QuitRequests() != 1 {
		t.Fatalf("phase %v quits %v", m.Phase(), m.QuitRequests())
	}
	if len(effects) != 1 || effects[0].Kind != QuitWarning {
		t.Errorf("effects %v, expected warning", kinds(effects))
	}

	// the warning never decays
	for i := 0; i < 1000; i++ {
		step(m, 16, Input{})
	}

	effects = step(m, 16, Input{QuitPressed: true})
	if m.Phase() != Failed || !m.HasFailed() || !m.ForcedFail() {
		t.Errorf("phase %v failed %v forced %v", m.Phase(), m.HasFailed(), m.ForcedFail())
	}
	if !hasEffect(effects, ForcedQuit) {
		t.Errorf("effects %v, expected forced quit", kinds(effects))
	}
}

func TestQuitWhilePaused(t *testing.T) {
	m, _ := newTestMachine(DefaultSettings())
	pauseMachine(t, m)
	step(m, 16, Input{QuitPressed: true})
	step(m, 16, Input{QuitPressed: true})
	if m.Phase() != Failed {
		t.Errorf("phase %v", m.Phase())
	}
}

func TestQuitIgnoredWhileWatching(t *testing.T) {
	m := NewMachine(DefaultSettings(), clockwork.NewFakeClock(), true)
	step(m, 16, Input{})
	for i := 0; i < 3; i++ {
		if effects := step(m, 16, Input{QuitPressed: true}); len(effects) != 0 {
			t.Errorf("effects %v while watching", kinds(effects))
		}
	}
	if m.Phase() != Playing || m.QuitRequests() != 0 {
		t.Errorf("phase %v quits %v", m.Phase(), m.QuitRequests())
	}
}

func TestFailureIsSticky(t *testing.T) {
	m, clock := newTestMachine(DefaultSettings())
	step(m, 16, Input{})

	effects := m.Step(&Tick{Dt: 16, Failed: true})
	if m.Phase() != Failed || len(effects) != 1 || effects[0].Kind != FailureTriggered {
		t.Fatalf("phase %v effects %v", m.Phase(), kinds(effects))
	}

	inputs := []Input{
		{PauseDown: true, PausePressed: true},
		{RestartDown: true},
		{QuitPressed: true},
		{OffsetDelta: 1},
		{},
	}
	for i := 0; i < 50; i++ {
		clock.Advance(time.Second)
		effects := m.Step(&Tick{Dt: 100, Input: inputs[i%len(inputs)], Complete: true, HasStarted: true, PauseRequested: true})
		if len(effects) != 0 {
			t.Errorf("tick %v: effects %v after failing", i, kinds(effects))
		}
		if m.Phase() != Failed {
			t.Fatalf("tick %v: phase %v", i, m.Phase())
		}
	}

	if !m.Exit() || m.Phase() != Exiting {
		t.Errorf("exit from failed: %v", m.Phase())
	}
	if !m.HasFailed() {
		t.Error("failure forgotten after exit")
	}
}

func TestComplete(t *testing.T) {
	m, _ := newTestMachine(DefaultSettings())
	effects := m.Step(&Tick{Dt: 16, Complete: true})
	if m.Phase() != Complete || !m.IsComplete() || !hasEffect(effects, Completed) {
		t.Errorf("phase %v effects %v", m.Phase(), kinds(effects))
	}
	m.Step(&Tick{Dt: 16, Failed: true})
	if m.Phase() != Complete || m.HasFailed() {
		t.Errorf("completed session failed afterwards")
	}
}

func TestFailureBeatsCompletion(t *testing.T) {
	m, _ := newTestMachine(DefaultSettings())
	m.Step(&Tick{Dt: 16, Failed: true, Complete: true})
	if m.Phase() != Failed {
		t.Errorf("phase %v", m.Phase())
	}
}

func TestExitRequiresTerminal(t *testing.T) {
	m, _ := newTestMachine(DefaultSettings())
	step(m, 16, Input{})
	if m.Exit() {
		t.Error("exited a session in progress")
	}
	if m.Phase() != Playing {
		t.Errorf("phase %v", m.Phase())
	}
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		phase    Phase
		watching bool
		expected Status
	}{
		{Starting, false, StatusPlaying},
		{Playing, false, StatusPlaying},
		{Paused, false, StatusPaused},
		{Resuming, false, StatusPaused},
		{Failed, false, StatusIdle},
		{Playing, true, StatusWatching},
		{Paused, true, StatusWatching},
	}
	for _, test := range tests {
		if s := StatusOf(test.phase, test.watching); s != test.expected {
			t.Errorf("StatusOf(%v, %v) = %v, expected %v", test.phase, test.watching, s, test.expected)
		}
	}
}

func TestHoldProgressWithoutThreshold(t *testing.T) {
	settings := DefaultSettings()
	settings.PauseThreshold = 0
	m, _ := newTestMachine(settings)
	m.Step(&Tick{Dt: 16})
	if p := m.PauseHoldProgress(); p != 0 {
		t.Errorf("progress %v when not holding", p)
	}

	tests := map[float64]float64{
		math.NaN():  0,
		-1:          0,
		0.5:         0.5,
		math.Inf(1): 1,
	}
	for v, expected := range tests {
		if c := clamp01(v); c != expected {
			t.Errorf("clamp01(%v) = %v, expected %v", v, c, expected)
		}
	}
}
