package game

import "time"

type Note struct {
	Index   uint8 // The chart column
	Denom   int   // The beat length, as a denominator, 4 = 1/4 beat
	IsMine  bool
	Time    time.Duration // The time the note should be hit
	TimeEnd time.Duration // The time a hold should be released, 0 for taps
}

func (n *Note) Ms() float64 {
	return float64(n.Time) / float64(time.Millisecond)
}

// EndMs is the last moment the note is relevant, the tail of a hold or the
// note itself.
func (n *Note) EndMs() float64 {
	if n.TimeEnd > n.Time {
		return float64(n.TimeEnd) / float64(time.Millisecond)
	}
	return n.Ms()
}

func (n *Note) IsHold() bool {
	return n.TimeEnd != 0
}
