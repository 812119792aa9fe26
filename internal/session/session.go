// Package session drives a single play of a chart: it owns the song time and
// the play/pause/fail lifecycle, and is the one place the rest of the game
// asks what time it is and whether the player is still playing.
package session

import (
	"fmt"

	"git.lost.host/meutraa/eotw/internal/audio"
	"git.lost.host/meutraa/eotw/internal/game"
	"git.lost.host/meutraa/eotw/internal/replay"
	"git.lost.host/meutraa/eotw/internal/score"
	"git.lost.host/meutraa/eotw/internal/timing"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

type Options struct {
	Chart    *game.Chart
	Playtest *Playtest     // nil unless previewing from an editor
	Replay   *replay.Replay // nil unless watching a replay
	Scores   []score.Record // local scores for the chart

	Settings     Settings
	LocalOffset  float64 // ms
	GlobalOffset float64 // ms

	// Audio is nil when the chart has no audio file.
	Audio    audio.Clock
	Clock    clockwork.Clock
	Notifier Notifier
	Offsets  OffsetStore

	// Built fresh for every session, including retries.
	NewJudge    func(chart *game.Chart) Judge
	NewCapturer func(chart *game.Chart) Capturer

	// OnEffect sees every effect after the session has handled it.
	OnEffect func(Effect)

	Log zerolog.Logger
}

type Session struct {
	opts Options

	engine   *timing.Engine
	machine  *Machine
	judge    Judge
	capturer Capturer

	hasStarted   bool
	localOffset  float64
	pendingPause bool

	log zerolog.Logger
}

func New(opts Options) *Session {
	if nil == opts.Clock {
		opts.Clock = clockwork.NewRealClock()
	}
	if nil == opts.Notifier {
		opts.Notifier = nopNotifier{}
	}
	if opts.Settings.Rate <= 0 {
		opts.Settings.Rate = 1.0
	}

	var seekTo *float64
	if nil != opts.Playtest {
		start := opts.Playtest.Start
		seekTo = &start
	}

	s := &Session{
		opts:        opts,
		engine:      timing.New(ms(opts.Settings.StartDelay), opts.Settings.Rate, seekTo),
		machine:     NewMachine(opts.Settings, opts.Clock, nil != opts.Replay),
		localOffset: opts.LocalOffset,
		log:         opts.Log.With().Str("component", "session").Logger(),
	}
	if nil != opts.NewJudge {
		s.judge = opts.NewJudge(opts.Chart)
	}
	// Replays are watched, not recorded.
	if nil != opts.NewCapturer && nil == opts.Replay {
		s.capturer = opts.NewCapturer(opts.Chart)
	}
	return s
}

// Update is the per-frame entry point. dt is the wall-clock time since the
// previous frame in ms.
func (s *Session) Update(dt float64, in Input) []Effect {
	// in.Lanes were held when the tick began, so they are recorded at the
	// hit time from before the update.
	at := s.HitTime()

	failed, complete := false, false
	if nil != s.judge {
		failed = s.judge.Failed()
		complete = s.judge.Complete()
	}

	tick := &Tick{
		Dt:             dt,
		Input:          in,
		Failed:         failed,
		Complete:       complete,
		HasStarted:     s.hasStarted,
		PauseRequested: s.pendingPause,
	}
	s.pendingPause = false

	effects := s.machine.Step(tick)

	// Audio control happens before the engine reads the clock, so a resumed
	// track is already the time source on the tick it resumes.
	for _, effect := range effects {
		s.dispatch(effect)
	}

	if s.machine.Phase() == Playing {
		if s.engine.Update(dt, s.opts.Audio, s.hasStarted) == timing.RequestPlay {
			s.start()
		}
	}

	if in.OffsetDelta != 0 && s.machine.Phase().Interactive() {
		s.adjustOffset(in.OffsetDelta)
	}

	if nil != s.capturer {
		s.capturer.Capture(at, in.Lanes)
	}

	return effects
}

func (s *Session) start() {
	s.hasStarted = true
	if nil == s.opts.Audio {
		s.log.Debug().Msg("no audio, time runs from frame deltas")
		return
	}

	at := s.engine.Time
	if at < 0 {
		at = 0
	}
	if err := s.opts.Audio.Seek(at); nil != err {
		s.log.Debug().Err(err).Float64("at", at).Msg("unable to seek audio before start")
	}
	if err := s.opts.Audio.Play(); nil != err {
		s.log.Debug().Err(err).Msg("unable to start audio")
	}
	s.log.Info().Float64("time", s.engine.Time).Msg("started audio")
}

func (s *Session) dispatch(effect Effect) {
	switch effect.Kind {
	case PauseRequested:
		s.pauseAudio()
		s.opts.Notifier.Notify(Info, fmt.Sprintf("Paused (%d)", effect.Count))
	case ResumePlayback:
		if nil != s.opts.Audio {
			if err := s.opts.Audio.Play(); nil != err {
				s.log.Debug().Err(err).Msg("unable to resume audio")
			}
		}
	case QuitWarning:
		s.opts.Notifier.Notify(Warning, "Press quit again to leave the map")
	case ForcedQuit, RestartRequested:
		s.pauseAudio()
	case FailureTriggered:
		s.log.Info().Float64("time", s.engine.Time).Msg("failed")
	case Completed:
		s.log.Info().Float64("time", s.engine.Time).Msg("completed")
	}

	s.log.Debug().Stringer("effect", effect.Kind).Uint32("count", effect.Count).Msg("dispatched")
	if nil != s.opts.OnEffect {
		s.opts.OnEffect(effect)
	}
}

func (s *Session) pauseAudio() {
	if nil == s.opts.Audio {
		return
	}
	if err := s.opts.Audio.Pause(); nil != err {
		s.log.Debug().Err(err).Msg("unable to pause audio")
	}
}

func (s *Session) adjustOffset(steps int) {
	s.localOffset += float64(steps) * ms(s.opts.Settings.OffsetStep)
	offset := int(s.localOffset)
	s.opts.Notifier.Notify(Info, fmt.Sprintf("Local offset set to %d ms", offset))

	if nil == s.opts.Offsets || nil == s.opts.Chart {
		return
	}
	if err := s.opts.Offsets.SaveOffset(s.opts.Chart.Hash(), offset); nil != err {
		s.log.Error().Err(err).Msg("unable to save local offset")
	}
}

// RequestPause pauses at the next update without waiting for a key hold,
// e.g. when the window loses focus.
func (s *Session) RequestPause() {
	s.pendingPause = true
}

// Seek moves the song to target ms. Without a usable audio clock the time
// is set directly and the player is told.
func (s *Session) Seek(target float64) {
	if nil == s.opts.Audio {
		s.opts.Notifier.Notify(Warning, "Trying to skip with no audio file loaded. Still continuing..")
		s.engine.Time = target
		return
	}
	if err := s.opts.Audio.Seek(target); nil != err {
		s.log.Debug().Err(err).Float64("target", target).Msg("unable to seek audio")
		s.opts.Notifier.Notify(Warning, "Unable to seek the audio. Still continuing..")
		s.engine.Time = target
		return
	}
	s.engine.Time = s.opts.Audio.Position()
}

// EligibleToSkip reports whether the next object is far enough away to offer
// a skip.
func (s *Session) EligibleToSkip(nextObject float64) bool {
	return nextObject-s.engine.Time > ms(s.opts.Settings.StartDelay)+SkipMargin
}

// Exit leaves a failed or completed session.
func (s *Session) Exit() bool {
	return s.machine.Exit()
}

// Retry builds a new session for the same chart. The receiver is left
// untouched.
func (s *Session) Retry() *Session {
	opts := s.opts
	opts.LocalOffset = s.localOffset
	opts.Scores = append([]score.Record(nil), s.opts.Scores...)
	return New(opts)
}

func (s *Session) Time() float64 {
	return s.engine.Time
}

func (s *Session) Phase() Phase {
	return s.machine.Phase()
}

func (s *Session) IsPaused() bool {
	return s.machine.IsPaused()
}

func (s *Session) HasFailed() bool {
	return s.machine.HasFailed()
}

func (s *Session) IsComplete() bool {
	return s.machine.IsComplete()
}

func (s *Session) PauseCount() uint32 {
	return s.machine.PauseCount()
}

func (s *Session) HasStarted() bool {
	return s.hasStarted
}

func (s *Session) Machine() *Machine {
	return s.machine
}

func (s *Session) Status() Status {
	return StatusOf(s.machine.Phase(), s.Watching())
}

func (s *Session) Watching() bool {
	return nil != s.opts.Replay
}

func (s *Session) Chart() *game.Chart {
	return s.opts.Chart
}

func (s *Session) Playtest() *Playtest {
	return s.opts.Playtest
}

func (s *Session) Replay() *replay.Replay {
	return s.opts.Replay
}

func (s *Session) Scores() []score.Record {
	return s.opts.Scores
}

func (s *Session) Judge() Judge {
	return s.judge
}

func (s *Session) Capturer() Capturer {
	return s.capturer
}

// HitTime is the song time presses are judged and recorded at, the time
// shifted back by the local and global offsets.
func (s *Session) HitTime() float64 {
	return s.engine.Time - s.localOffset - s.opts.GlobalOffset
}

func (s *Session) LocalOffset() float64 {
	return s.localOffset
}

func (s *Session) Rate() float64 {
	return s.opts.Settings.Rate
}

// StartDelay of the lead-in in ms, before the rate is applied.
func (s *Session) StartDelay() float64 {
	return ms(s.opts.Settings.StartDelay)
}

func (s *Session) HasAudio() bool {
	return nil != s.opts.Audio
}
