package session

// Input is the player's input for one update tick, already reduced to the
// decisions the session cares about.
type Input struct {
	PauseDown    bool // pause key is held
	PausePressed bool // pause key went down this tick
	RestartDown  bool
	QuitPressed  bool
	ChatActive   bool // an overlay owns the keyboard

	// OffsetDelta is the number of offset steps requested this tick,
	// negative for earlier.
	OffsetDelta int

	// Lanes is a bitmask of the lanes currently held, handed to the replay
	// capturer.
	Lanes uint32
}
