package session

import (
	"math"
	"time"

	"github.com/jonboulle/clockwork"
)

// Tick carries everything the machine needs to decide one update.
type Tick struct {
	Dt    float64 // ms
	Input Input

	// Predicates evaluated by the scoring collaborator for this tick.
	Failed   bool
	Complete bool

	HasStarted bool

	// PauseRequested pauses immediately, without a hold, when Playing.
	PauseRequested bool
}

// Machine is the lifecycle of a single play session. Transitions only happen
// in Step, Pause and Exit.
type Machine struct {
	settings Settings
	clock    clockwork.Clock
	watching bool

	phase Phase

	// sticky, survive the move to Exiting
	failed     bool
	complete   bool
	forcedFail bool
	reported   bool

	pauseHoldElapsed float64
	pauseCount       uint32
	resumeStartedAt  time.Time

	restartHoldElapsed float64
	restartFadingIn    bool
	restartFadingOut   bool
	restartFired       bool

	quitRequests uint32

	effects []Effect
}

// NewMachine creates a machine in Starting. watching marks a spectated
// replay, which ignores quit requests.
func NewMachine(settings Settings, clock clockwork.Clock, watching bool) *Machine {
	if nil == clock {
		clock = clockwork.NewRealClock()
	}
	return &Machine{
		settings: settings,
		clock:    clock,
		watching: watching,
		phase:    Starting,
	}
}

// Step runs one tick and returns the effects it decided on, in order.
func (m *Machine) Step(t *Tick) []Effect {
	m.effects = nil

	if m.phase == Starting {
		m.phase = Playing
	}

	m.evaluateOutcome(t)
	if !m.phase.Interactive() {
		m.pauseHoldElapsed = 0
		m.restartHoldElapsed = 0
		return m.effects
	}

	m.handleQuit(t)
	m.handlePause(t)
	m.handleResume(t)
	m.handleRestart(t)

	return m.effects
}

func (m *Machine) emit(kind EffectKind, count uint32) {
	m.effects = append(m.effects, Effect{Kind: kind, Count: count})
}

func (m *Machine) evaluateOutcome(t *Tick) {
	if m.phase != Playing {
		return
	}
	if t.Failed {
		m.fail()
	} else if t.Complete {
		m.phase = Complete
		m.complete = true
		m.emit(Completed, 0)
	}
}

func (m *Machine) fail() {
	m.phase = Failed
	m.failed = true
	if !m.reported {
		m.reported = true
		m.emit(FailureTriggered, 0)
	}
}

// The first quit only warns. The counter never decays, so any later press
// fails the session.
func (m *Machine) handleQuit(t *Tick) {
	if !t.Input.QuitPressed || !m.phase.Interactive() {
		return
	}
	if m.watching {
		return
	}

	m.quitRequests++
	if m.quitRequests == 1 {
		m.emit(QuitWarning, m.quitRequests)
		return
	}

	m.forcedFail = true
	m.phase = Failed
	m.failed = true
	m.reported = true
	m.emit(ForcedQuit, m.quitRequests)
}

func (m *Machine) handlePause(t *Tick) {
	switch m.phase {
	case Playing:
		if t.PauseRequested {
			m.Pause(t)
			return
		}
		if m.settings.TapToPause {
			m.pauseHoldElapsed = 0
			if t.Input.PausePressed {
				m.Pause(t)
			}
			return
		}
		if !t.Input.PauseDown {
			m.pauseHoldElapsed = 0
			return
		}
		m.pauseHoldElapsed += t.Dt
		if m.pauseHoldElapsed >= ms(m.settings.PauseThreshold) {
			m.Pause(t)
		}
	case Paused:
		m.pauseHoldElapsed = 0
		if t.Input.PausePressed && !t.Input.ChatActive {
			m.phase = Resuming
			m.resumeStartedAt = m.clock.Now()
			m.emit(ResumeRequested, m.pauseCount)
		}
	default:
		m.pauseHoldElapsed = 0
	}
}

// Pause moves a Playing session to Paused. It must only be called while a
// tick is being processed, a nil tick is a caller bug.
func (m *Machine) Pause(t *Tick) {
	if nil == t {
		panic("session: pause outside of an update tick")
	}
	if m.phase != Playing {
		return
	}
	m.phase = Paused
	m.pauseCount++
	m.pauseHoldElapsed = 0
	m.emit(PauseRequested, m.pauseCount)
}

func (m *Machine) handleResume(t *Tick) {
	if m.phase != Resuming {
		return
	}
	if m.clock.Since(m.resumeStartedAt) < m.settings.ResumeGrace {
		return
	}
	m.phase = Playing
	m.resumeStartedAt = time.Time{}
	if t.HasStarted {
		m.emit(ResumePlayback, m.pauseCount)
	}
}

func (m *Machine) handleRestart(t *Tick) {
	if m.phase == Playing && t.Input.RestartDown {
		if !m.restartFadingIn {
			m.restartFadingIn = true
			m.restartFadingOut = false
			m.emit(RestartFadeIn, 0)
		}
		m.restartHoldElapsed += t.Dt
		if m.restartHoldElapsed >= ms(m.settings.RestartHold) && !m.restartFired {
			m.restartFired = true
			m.phase = Restarting
			m.emit(RestartRequested, 0)
		}
		return
	}

	// released, or no longer playing, before the hold completed
	if m.restartFadingIn {
		m.restartFadingIn = false
		if !m.restartFadingOut {
			m.restartFadingOut = true
			m.emit(RestartFadeOut, 0)
		}
	}
	m.restartHoldElapsed = 0
}

// Exit leaves a finished session. It reports false if the session has not
// failed or completed.
func (m *Machine) Exit() bool {
	if !m.phase.Terminal() {
		return false
	}
	m.phase = Exiting
	return true
}

func (m *Machine) Phase() Phase {
	return m.phase
}

// IsPaused is true from the moment the pause is entered until the resume
// grace has run out.
func (m *Machine) IsPaused() bool {
	return m.phase == Paused || m.phase == Resuming
}

func (m *Machine) HasFailed() bool {
	return m.failed
}

func (m *Machine) IsComplete() bool {
	return m.complete
}

func (m *Machine) ForcedFail() bool {
	return m.forcedFail
}

func (m *Machine) PauseCount() uint32 {
	return m.pauseCount
}

func (m *Machine) QuitRequests() uint32 {
	return m.quitRequests
}

// PauseHoldProgress drives the pause fade, 0 when not holding and 1 when the
// pause is about to be entered.
func (m *Machine) PauseHoldProgress() float64 {
	return clamp01(m.pauseHoldElapsed / ms(m.settings.PauseThreshold))
}

func (m *Machine) RestartHoldProgress() float64 {
	return clamp01(m.restartHoldElapsed / ms(m.settings.RestartHold))
}

// ResumeRemaining is the grace left before audio resumes, 0 when not
// resuming.
func (m *Machine) ResumeRemaining() time.Duration {
	if m.phase != Resuming {
		return 0
	}
	remaining := m.settings.ResumeGrace - m.clock.Since(m.resumeStartedAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (m *Machine) RestartFading() (in, out bool) {
	return m.restartFadingIn, m.restartFadingOut
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
