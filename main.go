package main

import (
	"fmt"
	"os"
	"time"

	"git.lost.host/meutraa/eotw/internal/config"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); nil != err {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Args[1:])
	if nil != err {
		return err
	}

	log, closeLog, err := newLogger(cfg)
	if nil != err {
		return err
	}
	defer closeLog()

	p := &Program{Config: cfg, Log: log}
	if err := p.Init(); nil != err {
		log.Error().Err(err).Msg("unable to start")
		return err
	}
	defer p.Deinit()

	summary, err := p.Run()
	if nil != err {
		log.Error().Err(err).Msg("play ended with an error")
		return err
	}
	fmt.Print(summary)
	return nil
}

// The terminal belongs to the game, so logs go to a file.
func newLogger(cfg *config.Config) (zerolog.Logger, func(), error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if nil != err {
		return zerolog.Nop(), nil, fmt.Errorf("invalid log level: %w", err)
	}
	if cfg.LogFile == "" || cfg.LogFile == "-" {
		log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
			Level(level).With().Timestamp().Logger()
		return log, func() {}, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if nil != err {
		return zerolog.Nop(), nil, fmt.Errorf("unable to open log file: %w", err)
	}
	log := zerolog.New(f).Level(level).With().Timestamp().Logger()
	return log, func() { f.Close() }, nil
}
