package session

// Phase of a gameplay session. Exactly one is current at a time.
type Phase int

const (
	Starting Phase = iota
	Playing
	Paused
	// Resuming means the pause overlay is dismissing and the audio has not
	// been told to play yet.
	Resuming
	Failed
	Complete
	Restarting
	Exiting
)

func (p Phase) String() string {
	switch p {
	case Starting:
		return "starting"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Resuming:
		return "resuming"
	case Failed:
		return "failed"
	case Complete:
		return "complete"
	case Restarting:
		return "restarting"
	case Exiting:
		return "exiting"
	default:
		return "unknown"
	}
}

// Terminal phases are never left by input or updates.
func (p Phase) Terminal() bool {
	return p == Failed || p == Complete
}

// Interactive phases accept player input.
func (p Phase) Interactive() bool {
	switch p {
	case Starting, Playing, Paused, Resuming:
		return true
	}
	return false
}
