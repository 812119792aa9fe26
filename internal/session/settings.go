package session

import "time"

// SkipMargin is how much further than the start delay the next object must
// be before skipping is offered.
const SkipMargin = 5000.0 // ms

type Settings struct {
	StartDelay     time.Duration
	Rate           float64
	PauseThreshold time.Duration
	TapToPause     bool
	ResumeGrace    time.Duration
	RestartHold    time.Duration
	OffsetStep     time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		StartDelay:     3000 * time.Millisecond,
		Rate:           1.0,
		PauseThreshold: 500 * time.Millisecond,
		ResumeGrace:    800 * time.Millisecond,
		RestartHold:    200 * time.Millisecond,
		OffsetStep:     5 * time.Millisecond,
	}
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
