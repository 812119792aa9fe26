package session

// Status is the coarse state reported to the online presence.
type Status int

const (
	StatusIdle Status = iota
	StatusPlaying
	StatusPaused
	StatusWatching
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusWatching:
		return "watching"
	default:
		return "unknown"
	}
}

func StatusOf(phase Phase, watching bool) Status {
	if watching {
		return StatusWatching
	}
	switch phase {
	case Starting, Playing:
		return StatusPlaying
	case Paused, Resuming:
		return StatusPaused
	}
	return StatusIdle
}
