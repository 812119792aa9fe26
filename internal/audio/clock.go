package audio

// Clock is the audio playback device as seen by the gameplay session.
// Position and Rate are in song time, so a Position read while playing at a
// rate of 1.5 advances 1.5ms per wall-clock millisecond.
//
// Reads are snapshots; two consecutive reads may disagree because playback
// runs on the speaker goroutine.
type Clock interface {
	IsPlaying() bool
	Position() float64 // ms
	Rate() float64
	Play() error
	Pause() error
	Seek(ms float64) error
}
