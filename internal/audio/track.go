package audio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
	"github.com/rs/zerolog"
)

var (
	ErrUnsupported = errors.New("unsupported audio format")
	ErrEnded       = errors.New("track has ended")
	ErrSeekRange   = errors.New("seek outside of track")
)

// Track is a Clock backed by a decoded beep stream played through the
// speaker. The rate is applied with a resampler, so Position always reports
// time in the source track.
type Track struct {
	streamer  beep.StreamSeekCloser
	format    beep.Format
	ctrl      *beep.Ctrl
	resampler *beep.Resampler
	rate      float64

	// attached is only touched with the speaker locked
	attached bool

	play   func(s ...beep.Streamer)
	lock   func()
	unlock func()

	log zerolog.Logger
}

// Open decodes the audio file at path. The speaker is not touched until
// Init or Play is called.
func Open(path string, rate float64, log zerolog.Logger) (*Track, error) {
	f, err := os.Open(path)
	if nil != err {
		return nil, fmt.Errorf("unable to open audio file: %w", err)
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, filepath.Ext(path))
	}
	if nil != err {
		f.Close()
		return nil, fmt.Errorf("unable to decode %v: %w", path, err)
	}

	return newTrack(streamer, format, rate, speaker.Play, speaker.Lock, speaker.Unlock, log), nil
}

func newTrack(
	streamer beep.StreamSeekCloser,
	format beep.Format,
	rate float64,
	play func(s ...beep.Streamer),
	lock, unlock func(),
	log zerolog.Logger,
) *Track {
	ctrl := &beep.Ctrl{Streamer: streamer, Paused: true}
	return &Track{
		streamer:  streamer,
		format:    format,
		ctrl:      ctrl,
		resampler: beep.ResampleRatio(4, rate, ctrl),
		rate:      rate,
		play:      play,
		lock:      lock,
		unlock:    unlock,
		log:       log,
	}
}

// Init starts the speaker at the track's sample rate with a buffer of
// roughly one frame at 60Hz.
func (t *Track) Init() error {
	return speaker.Init(t.format.SampleRate, t.format.SampleRate.N(time.Second/60))
}

// Length of the track in ms.
func (t *Track) Length() float64 {
	return durationToMs(t.format.SampleRate.D(t.streamer.Len()))
}

func (t *Track) IsPlaying() bool {
	t.lock()
	defer t.unlock()
	return t.attached && !t.ctrl.Paused && t.streamer.Position() < t.streamer.Len()
}

func (t *Track) Position() float64 {
	t.lock()
	pos := t.streamer.Position()
	t.unlock()
	return durationToMs(t.format.SampleRate.D(pos))
}

func (t *Track) Rate() float64 {
	return t.rate
}

func (t *Track) Play() error {
	t.lock()
	if t.streamer.Position() >= t.streamer.Len() {
		t.unlock()
		return ErrEnded
	}
	t.ctrl.Paused = false
	attach := !t.attached
	t.attached = true
	t.unlock()

	if attach {
		// The callback runs on the speaker goroutine with the speaker locked.
		t.play(beep.Seq(t.resampler, beep.Callback(func() {
			t.attached = false
		})))
		t.log.Debug().Msg("track attached to speaker")
	}
	return nil
}

func (t *Track) Pause() error {
	t.lock()
	t.ctrl.Paused = true
	t.unlock()
	return nil
}

// Seek moves the playback position. Positions outside the track are clamped
// and reported with ErrSeekRange, the clamped seek still happens.
func (t *Track) Seek(ms float64) error {
	p := t.format.SampleRate.N(msToDuration(ms))

	t.lock()
	defer t.unlock()

	var rangeErr error
	if p < 0 {
		p = 0
		rangeErr = fmt.Errorf("%w: %.0fms", ErrSeekRange, ms)
	} else if l := t.streamer.Len(); p > l {
		p = l
		rangeErr = fmt.Errorf("%w: %.0fms", ErrSeekRange, ms)
	}
	if err := t.streamer.Seek(p); nil != err {
		return fmt.Errorf("unable to seek to %.0fms: %w", ms, err)
	}
	return rangeErr
}

func (t *Track) Close() error {
	t.lock()
	t.ctrl.Paused = true
	t.unlock()
	return t.streamer.Close()
}

func durationToMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func msToDuration(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}
