package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"git.lost.host/meutraa/eotw/internal/input"
	"git.lost.host/meutraa/eotw/internal/session"
	"github.com/BurntSushi/toml"
	"gopkg.in/alecthomas/kingpin.v2"
)

const Version = "0.3.0"

// Config is read from an optional TOML file, then from flags, which win.
type Config struct {
	Directory string `toml:"-"`

	Rate           float64       `toml:"rate"`
	StartDelay     time.Duration `toml:"start_delay"`
	Offset         time.Duration `toml:"offset"`
	PauseThreshold time.Duration `toml:"pause_threshold"`
	TapToPause     bool          `toml:"tap_to_pause"`
	ResumeGrace    time.Duration `toml:"resume_grace"`
	RestartHold    time.Duration `toml:"restart_hold"`
	OffsetStep     time.Duration `toml:"offset_step"`
	NoFail         bool          `toml:"no_fail"`
	FramePeriod    time.Duration `toml:"frame_period"`
	ScrollSpeed    float64       `toml:"scroll_speed"` // rows per second

	Keys       string `toml:"keys"`
	Restart    string `toml:"restart_key"`
	Quit       string `toml:"quit_key"`
	OffsetUp   string `toml:"offset_up_key"`
	OffsetDown string `toml:"offset_down_key"`

	Database string `toml:"database"`
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`

	Difficulty int     `toml:"-"`
	Playtest   float64 `toml:"-"` // ms, negative when not playtesting
	Replay     int64   `toml:"-"` // replay id to watch, 0 to play
}

func Defaults() Config {
	s := session.DefaultSettings()
	b := input.DefaultBindings()
	return Config{
		Rate:           s.Rate,
		StartDelay:     s.StartDelay,
		PauseThreshold: s.PauseThreshold,
		ResumeGrace:    s.ResumeGrace,
		RestartHold:    s.RestartHold,
		OffsetStep:     s.OffsetStep,
		FramePeriod:    time.Second / 120,
		ScrollSpeed:    20,
		Keys:           string(b.Lanes),
		Restart:        string(b.Restart),
		Quit:           string(b.Quit),
		OffsetUp:       string(b.OffsetUp),
		OffsetDown:     string(b.OffsetDown),
		Database:       "./scores.db",
		LogLevel:       "info",
		LogFile:        "./eotw.log",
		Playtest:       -1,
	}
}

// Load reads the config file, if any, and then the command line.
func Load(args []string) (*Config, error) {
	cfg := Defaults()
	if path := findConfigFile(); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); nil != err {
			return nil, fmt.Errorf("unable to read %v: %w", path, err)
		}
	}

	app := kingpin.New("eotw", "Rhythm game for the terminal")
	app.Version(Version)
	app.Arg("directory", "Song/chart directory").Required().ExistingDirVar(&cfg.Directory)
	app.Flag("rate", "Playback speed").Short('r').Default(ftoa(cfg.Rate)).Float64Var(&cfg.Rate)
	app.Flag("delay", "Start delay").Short('d').Default(cfg.StartDelay.String()).DurationVar(&cfg.StartDelay)
	app.Flag("offset", "Global offset").Short('o').Default(cfg.Offset.String()).DurationVar(&cfg.Offset)
	app.Flag("pause-threshold", "How long pause has to be held").Default(cfg.PauseThreshold.String()).DurationVar(&cfg.PauseThreshold)
	app.Flag("tap-to-pause", "Pause on a single press").Default(strconv.FormatBool(cfg.TapToPause)).BoolVar(&cfg.TapToPause)
	app.Flag("resume-grace", "Time between resuming and the audio playing").Default(cfg.ResumeGrace.String()).DurationVar(&cfg.ResumeGrace)
	app.Flag("restart-hold", "How long restart has to be held").Default(cfg.RestartHold.String()).DurationVar(&cfg.RestartHold)
	app.Flag("offset-step", "Local offset change per key press").Default(cfg.OffsetStep.String()).DurationVar(&cfg.OffsetStep)
	app.Flag("no-fail", "Never fail").Default(strconv.FormatBool(cfg.NoFail)).BoolVar(&cfg.NoFail)
	app.Flag("frame-period", "Render frame period").Short('p').Default(cfg.FramePeriod.String()).DurationVar(&cfg.FramePeriod)
	app.Flag("scroll-speed", "Rows scrolled per second").Short('s').Default(ftoa(cfg.ScrollSpeed)).Float64Var(&cfg.ScrollSpeed)
	app.Flag("keys", "Lane keys").Short('k').Default(cfg.Keys).StringVar(&cfg.Keys)
	app.Flag("restart-key", "Hold to restart").Default(cfg.Restart).StringVar(&cfg.Restart)
	app.Flag("quit-key", "Press twice to quit").Default(cfg.Quit).StringVar(&cfg.Quit)
	app.Flag("offset-up-key", "Increase local offset").Default(cfg.OffsetUp).StringVar(&cfg.OffsetUp)
	app.Flag("offset-down-key", "Decrease local offset").Default(cfg.OffsetDown).StringVar(&cfg.OffsetDown)
	app.Flag("database", "Score database").Default(cfg.Database).StringVar(&cfg.Database)
	app.Flag("log-level", "Log level").Default(cfg.LogLevel).EnumVar(&cfg.LogLevel, "debug", "info", "warn", "error")
	app.Flag("log-file", "Log file, the terminal is used for the game").Default(cfg.LogFile).StringVar(&cfg.LogFile)
	app.Flag("difficulty", "Chart index, asked for when not given").Default("-1").IntVar(&cfg.Difficulty)
	playtestAt := app.Flag("playtest", "Preview the chart from this time").Default("-1ms").Duration()
	app.Flag("replay", "Watch a saved replay").Default("0").Int64Var(&cfg.Replay)

	if _, err := app.Parse(args); nil != err {
		return nil, err
	}
	if *playtestAt >= 0 {
		cfg.Playtest = float64(*playtestAt) / float64(time.Millisecond)
	}

	return &cfg, cfg.Validate()
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// findConfigFile returns the first existing config file path.
// Search order: $EOTW_CONFIG, $XDG_CONFIG_HOME/eotw/config.toml, ~/.config/eotw/config.toml
func findConfigFile() string {
	if p := os.Getenv("EOTW_CONFIG"); p != "" {
		return p
	}
	paths := []string{}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, "eotw", "config.toml"))
	}
	if home, err := os.UserHomeDir(); nil == err {
		paths = append(paths, filepath.Join(home, ".config", "eotw", "config.toml"))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); nil == err {
			return p
		}
	}
	return ""
}

func (c *Config) Validate() error {
	var errs []error
	if c.Rate <= 0 {
		errs = append(errs, errors.New("rate must be positive"))
	}
	for name, d := range map[string]time.Duration{
		"delay":           c.StartDelay,
		"pause-threshold": c.PauseThreshold,
		"resume-grace":    c.ResumeGrace,
		"restart-hold":    c.RestartHold,
		"offset-step":     c.OffsetStep,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%v must not be negative", name))
		}
	}
	if c.FramePeriod <= 0 {
		errs = append(errs, errors.New("frame-period must be positive"))
	}
	if c.ScrollSpeed <= 0 {
		errs = append(errs, errors.New("scroll-speed must be positive"))
	}

	// skip is always space
	seen := map[rune]string{' ': "skip"}
	check := func(name, keys string, single bool) {
		rs := []rune(keys)
		if len(rs) == 0 || (single && len(rs) != 1) {
			errs = append(errs, fmt.Errorf("%v must be a single key", name))
			return
		}
		for _, r := range rs {
			if other, ok := seen[r]; ok {
				errs = append(errs, fmt.Errorf("%q is bound to both %v and %v", r, other, name))
			}
			seen[r] = name
		}
	}
	if len([]rune(c.Keys)) == 0 {
		errs = append(errs, errors.New("keys must not be empty"))
	} else {
		check("keys", c.Keys, false)
	}
	check("restart-key", c.Restart, true)
	check("quit-key", c.Quit, true)
	check("offset-up-key", c.OffsetUp, true)
	check("offset-down-key", c.OffsetDown, true)

	return errors.Join(errs...)
}

func (c *Config) Settings() session.Settings {
	return session.Settings{
		StartDelay:     c.StartDelay,
		Rate:           c.Rate,
		PauseThreshold: c.PauseThreshold,
		TapToPause:     c.TapToPause,
		ResumeGrace:    c.ResumeGrace,
		RestartHold:    c.RestartHold,
		OffsetStep:     c.OffsetStep,
	}
}

func (c *Config) Bindings() input.Bindings {
	b := input.DefaultBindings()
	b.Lanes = []rune(c.Keys)
	b.Restart = []rune(c.Restart)[0]
	b.Quit = []rune(c.Quit)[0]
	b.OffsetUp = []rune(c.OffsetUp)[0]
	b.OffsetDown = []rune(c.OffsetDown)[0]
	return b
}
