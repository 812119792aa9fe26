package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"git.lost.host/meutraa/eotw/internal/audio"
	"git.lost.host/meutraa/eotw/internal/config"
	"git.lost.host/meutraa/eotw/internal/game"
	"git.lost.host/meutraa/eotw/internal/input"
	"git.lost.host/meutraa/eotw/internal/notify"
	"git.lost.host/meutraa/eotw/internal/parser"
	"git.lost.host/meutraa/eotw/internal/render"
	"git.lost.host/meutraa/eotw/internal/replay"
	"git.lost.host/meutraa/eotw/internal/score"
	"git.lost.host/meutraa/eotw/internal/session"
	"git.lost.host/meutraa/eotw/internal/skip"
	"git.lost.host/meutraa/eotw/internal/theme"
	"github.com/eiannone/keyboard"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

type Program struct {
	Config *config.Config
	Log    zerolog.Logger

	Parser   parser.Parser
	Renderer *render.DefaultRenderer
	Theme    theme.Theme
	Store    *score.Store

	clock    clockwork.Clock
	keyboard *input.Keyboard
	track    *audio.Track

	audioFile, chartFile string
	chart                *game.Chart
	hud                  *render.Hud

	// watched replay, nil when playing
	replay *replay.Replay
	rate   float64

	// Rebuilt by the session for every attempt.
	processor *score.Processor
	recorder  *replay.Recorder
}

// findFiles returns the last .sm file and the last audio file under dir.
// The audio file is empty when the chart has none.
func findFiles(dir string) (chartFile, audioFile string, err error) {
	if err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if nil != err {
			return err
		}
		switch strings.ToLower(path.Ext(info.Name())) {
		case ".ogg", ".mp3", ".wav":
			audioFile = p
		case ".sm":
			chartFile = p
		}
		return nil
	}); nil != err {
		return "", "", fmt.Errorf("unable to walk song directory: %w", err)
	}
	if chartFile == "" {
		return "", "", errors.New("unable to find a .sm file in given directory")
	}
	return chartFile, audioFile, nil
}

// selectChart picks the chart at index, asking with read when index is
// negative.
func selectChart(charts []*game.Chart, index int, read func() (rune, error)) (*game.Chart, error) {
	if len(charts) == 0 {
		return nil, errors.New("no playable charts")
	}
	if index < 0 {
		for i, c := range charts {
			fmt.Printf("%2v) %3v  %5v  %v\n", i, c.Difficulty.Msd, c.NoteCount, c.Difficulty.Name)
		}
		r, err := read()
		if nil != err {
			return nil, err
		}
		i, err := strconv.Atoi(string(r))
		if nil != err {
			return nil, fmt.Errorf("not a chart index: %q", r)
		}
		index = i
	}
	if index >= len(charts) {
		return nil, fmt.Errorf("chart %v does not exist, there are %v", index, len(charts))
	}
	return charts[index], nil
}

func readRune() (rune, error) {
	r, _, err := keyboard.GetSingleKey()
	return r, err
}

func (p *Program) Init() error {
	// Ensure our Default implementations are used as interfaces
	p.Parser = &parser.DefaultParser{}
	p.Theme = &theme.DefaultTheme{}
	p.clock = clockwork.NewRealClock()

	var err error
	p.chartFile, p.audioFile, err = findFiles(p.Config.Directory)
	if nil != err {
		return err
	}

	charts, err := p.Parser.Parse(p.chartFile)
	if nil != err {
		return err
	}
	p.chart, err = selectChart(charts, p.Config.Difficulty, readRune)
	if nil != err {
		return err
	}
	p.Log.Info().Str("chart", p.chartFile).Str("audio", p.audioFile).
		Str("difficulty", p.chart.Difficulty.Name).Msg("opening")

	p.Store, err = score.Open(p.Config.Database, p.Log)
	if nil != err {
		return err
	}

	// A replay plays back at the rate it was recorded at.
	p.rate = p.Config.Rate
	if p.Config.Replay != 0 {
		p.replay, err = p.Store.Replay(p.Config.Replay)
		if nil != err {
			return err
		}
		if p.replay.Rate > 0 {
			p.rate = p.replay.Rate
		}
	}

	if p.audioFile != "" {
		p.track, err = audio.Open(p.audioFile, p.rate, p.Log)
		if nil == err {
			err = p.track.Init()
		}
		if nil != err {
			p.Log.Warn().Err(err).Msg("playing without audio")
			p.track = nil
		}
	}

	p.keyboard, err = input.OpenKeyboard(p.Config.Bindings(), p.clock, input.DefaultTiming())
	if nil != err {
		return err
	}

	p.Renderer = render.New(os.Stdout, p.clock)
	return p.Renderer.Init()
}

func (p *Program) Deinit() {
	if nil != p.Renderer {
		if err := p.Renderer.Deinit(); nil != err {
			p.Log.Error().Err(err).Msg("unable to restore terminal")
		}
	}
	if nil != p.keyboard {
		if err := p.keyboard.Close(); nil != err {
			p.Log.Error().Err(err).Msg("unable to close keyboard")
		}
	}
	if nil != p.track {
		p.track.Close()
	}
	if nil != p.Store {
		p.Store.Close()
	}
}

func (p *Program) options() (session.Options, error) {
	hash := p.chart.Hash()
	records, err := p.Store.Scores(hash)
	if nil != err {
		return session.Options{}, err
	}
	localOffset, err := p.Store.Offset(hash)
	if nil != err {
		return session.Options{}, err
	}

	settings := p.Config.Settings()
	settings.Rate = p.rate
	opts := session.Options{
		Chart:        p.chart,
		Replay:       p.replay,
		Scores:       records,
		Settings:     settings,
		LocalOffset:  float64(localOffset),
		GlobalOffset: float64(p.Config.Offset) / float64(time.Millisecond),
		Clock:        p.clock,
		Offsets:      p.Store,
		NewJudge: func(chart *game.Chart) session.Judge {
			p.processor = score.NewProcessor(chart, score.DefaultJudgements, p.Config.NoFail)
			return p.processor
		},
		NewCapturer: func(chart *game.Chart) session.Capturer {
			p.recorder = replay.NewRecorder(chart.Hash(), p.rate)
			return p.recorder
		},
		OnEffect: func(e session.Effect) {
			if e.Kind == session.FailureTriggered {
				p.hud.Notify(session.Error, "Failed")
			}
		},
		Log: p.Log,
	}
	if nil != p.track {
		opts.Audio = p.track
	}
	if p.Config.Playtest >= 0 {
		opts.Playtest = &session.Playtest{Base: p.chart, Start: p.Config.Playtest}
		opts.Chart = p.chart.Trim(p.Config.Playtest)
	}
	return opts, nil
}

// Run plays the chart until it is failed, completed or abandoned, and returns
// a summary to print once the terminal is restored.
func (p *Program) Run() (string, error) {
	columns, rows, err := p.Renderer.Size()
	if nil != err {
		return "", fmt.Errorf("unable to get terminal size: %w", err)
	}
	opts, err := p.options()
	if nil != err {
		return "", err
	}
	p.hud = render.NewHud(p.Renderer, p.Theme, opts.Chart, columns, rows, p.Config.ScrollSpeed)
	if nil != p.track {
		p.hud.SetLength(p.track.Length())
	}
	opts.Notifier = notify.Fanout{notify.NewLog(p.Log), p.hud}

	s := session.New(opts)
	skipper := skip.New(s.Chart(), p.Log)
	started := p.clock.Now()
	var held uint32
	lastAt := math.Inf(-1)
	var runErr error

	p.Renderer.RenderLoop(p.Config.FramePeriod, func(dt float64) bool {
		frame := p.keyboard.Poll()
		if frame.Abort {
			p.Log.Info().Msg("aborted")
			return false
		}

		in := frame.Input
		at := s.HitTime()
		presses := pressesAt(s.Replay(), held, &in, lastAt, at)
		held, lastAt = in.Lanes, at
		if s.Phase() == session.Playing && s.HasStarted() {
			for _, press := range presses {
				if j := p.processor.Hit(press.Lane, press.Time); nil != j {
					p.Log.Debug().Str("judgement", j.Name).Uint8("lane", press.Lane).Msg("hit")
				}
			}
		}

		s.Update(dt, in)

		if frame.Skip {
			skipper.Skip(s)
		}
		if s.Phase() == session.Playing {
			p.processor.Expire(s.HitTime())
		}

		switch s.Phase() {
		case session.Restarting:
			p.Log.Info().Msg("retrying")
			s = s.Retry()
			held, lastAt = 0, math.Inf(-1)
		case session.Failed, session.Complete:
			runErr = p.finish(s)
			s.Exit()
			return false
		}

		p.hud.Draw(s, p.processor, s.HitTime(), skipper.Available(s))
		return true
	})

	return render.Summary(s, p.processor, p.clock.Since(started)), runErr
}

// pressesAt returns the presses to judge this frame. Playing, they are the
// lanes that became held since the previous frame, judged at the hit time the
// recorder stamps them with. Watching, the held lanes come from the replay and
// every press is judged at the time it was recorded.
func pressesAt(watched *replay.Replay, held uint32, in *session.Input, lastAt, at float64) []replay.Press {
	if nil == watched {
		return replay.Edges(held, in.Lanes, at)
	}
	in.Lanes = watched.Held(at)
	return watched.Presses(lastAt, at)
}

// finish saves the score and its replay. Watched replays are not saved again.
func (p *Program) finish(s *session.Session) error {
	if s.Watching() {
		return nil
	}
	var replayID int64
	if nil != p.recorder {
		id, err := p.Store.SaveReplay(p.recorder.Replay())
		if nil != err {
			return err
		}
		replayID = id
	}
	record := p.processor.Record(s.Chart().Hash(), s.Rate(), s.HasFailed(), s.PauseCount())
	record.ReplayID = replayID
	id, err := p.Store.SaveScore(record)
	if nil != err {
		return err
	}
	p.Log.Info().Int64("id", id).Bool("failed", record.Failed).Int("hits", record.Hits).Msg("saved score")
	return nil
}
