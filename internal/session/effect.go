package session

type EffectKind int

const (
	PauseRequested EffectKind = iota
	ResumeRequested
	ResumePlayback
	FailureTriggered
	Completed
	QuitWarning
	ForcedQuit
	RestartFadeIn
	RestartFadeOut
	RestartRequested
)

func (k EffectKind) String() string {
	switch k {
	case PauseRequested:
		return "pause-requested"
	case ResumeRequested:
		return "resume-requested"
	case ResumePlayback:
		return "resume-playback"
	case FailureTriggered:
		return "failure-triggered"
	case Completed:
		return "completed"
	case QuitWarning:
		return "quit-warning"
	case ForcedQuit:
		return "forced-quit"
	case RestartFadeIn:
		return "restart-fade-in"
	case RestartFadeOut:
		return "restart-fade-out"
	case RestartRequested:
		return "restart-requested"
	default:
		return "unknown"
	}
}

// Effect is a side effect decided by the state machine. The machine only
// reports them, the session and the host carry them out.
type Effect struct {
	Kind EffectKind
	// Count is the pause count for PauseRequested and the number of quit
	// requests for QuitWarning and ForcedQuit.
	Count uint32
}
