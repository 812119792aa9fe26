package replay

// Recorder captures a frame every time the held lanes change.
type Recorder struct {
	replay  Replay
	started bool
}

func NewRecorder(chart string, rate float64) *Recorder {
	return &Recorder{replay: Replay{Chart: chart, Rate: rate}}
}

func (r *Recorder) Capture(time float64, lanes uint32) {
	n := len(r.replay.Frames)
	if n > 0 && r.replay.Frames[n-1].Lanes == lanes {
		return
	}
	if n == 0 && lanes == 0 {
		return
	}
	r.replay.Frames = append(r.replay.Frames, Frame{Time: time, Lanes: lanes})
}

// Replay returns a copy of what has been captured so far.
func (r *Recorder) Replay() *Replay {
	frames := make([]Frame, len(r.replay.Frames))
	copy(frames, r.replay.Frames)
	return &Replay{Chart: r.replay.Chart, Rate: r.replay.Rate, Frames: frames}
}
