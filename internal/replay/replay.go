package replay

import (
	"encoding/json"
	"fmt"
	"math/bits"
	"sort"
)

// Frame is the held lanes from Time until the next frame.
type Frame struct {
	Time  float64 // ms
	Lanes uint32
}

type Replay struct {
	Chart  string // chart hash
	Rate   float64
	Frames []Frame
}

// Held returns the lanes held at the given time.
func (r *Replay) Held(time float64) uint32 {
	i := sort.Search(len(r.Frames), func(i int) bool { return r.Frames[i].Time > time })
	if i == 0 {
		return 0
	}
	return r.Frames[i-1].Lanes
}

// Press is a lane becoming held.
type Press struct {
	Time float64
	Lane uint8
}

// Presses returns the lanes that became held in (from, to], in order.
func (r *Replay) Presses(from, to float64) []Press {
	presses := []Press{}
	i := sort.Search(len(r.Frames), func(i int) bool { return r.Frames[i].Time > from })
	previous := r.Held(from)
	for ; i < len(r.Frames) && r.Frames[i].Time <= to; i++ {
		f := r.Frames[i]
		presses = append(presses, Edges(previous, f.Lanes, f.Time)...)
		previous = f.Lanes
	}
	return presses
}

// Edges returns the lanes held in lanes but not in previous as presses at
// time.
func Edges(previous, lanes uint32, time float64) []Press {
	pressed := lanes &^ previous
	if pressed == 0 {
		return nil
	}
	presses := []Press{}
	for lane := uint8(0); lane < 32; lane++ {
		if pressed&(1<<lane) != 0 {
			presses = append(presses, Press{Time: time, Lane: lane})
		}
	}
	return presses
}

// LanesCompact is every toggle of one lane, presses and releases alternating
// starting with a press.
type LanesCompact struct {
	Index int
	Times []float64
}

type compactReplay struct {
	Chart string
	Rate  float64
	Lanes []LanesCompact
}

func compactFrames(frames []Frame) []LanesCompact {
	var all uint32
	for _, f := range frames {
		all |= f.Lanes
	}
	lanes := make([]LanesCompact, bits.Len32(all))
	for i := range lanes {
		lanes[i].Index = i
		lanes[i].Times = []float64{}
	}

	var previous uint32
	for _, f := range frames {
		changed := f.Lanes ^ previous
		for i := range lanes {
			if changed&(1<<i) != 0 {
				lanes[i].Times = append(lanes[i].Times, f.Time)
			}
		}
		previous = f.Lanes
	}
	return lanes
}

func uncompactFrames(lanes []LanesCompact) []Frame {
	type toggle struct {
		time float64
		lane int
	}
	toggles := []toggle{}
	for _, l := range lanes {
		for _, t := range l.Times {
			toggles = append(toggles, toggle{time: t, lane: l.Index})
		}
	}
	sort.SliceStable(toggles, func(i, j int) bool { return toggles[i].time < toggles[j].time })

	frames := []Frame{}
	var held uint32
	for _, t := range toggles {
		held ^= 1 << t.lane
		if n := len(frames); n > 0 && frames[n-1].Time == t.time {
			frames[n-1].Lanes = held
			continue
		}
		frames = append(frames, Frame{Time: t.time, Lanes: held})
	}
	return frames
}

// Marshal encodes the replay in its compact per-lane form.
func Marshal(r *Replay) ([]byte, error) {
	data, err := json.Marshal(compactReplay{
		Chart: r.Chart,
		Rate:  r.Rate,
		Lanes: compactFrames(r.Frames),
	})
	if nil != err {
		return nil, fmt.Errorf("unable to marshal replay: %w", err)
	}
	return data, nil
}

func Unmarshal(data []byte) (*Replay, error) {
	var c compactReplay
	if err := json.Unmarshal(data, &c); nil != err {
		return nil, fmt.Errorf("unable to unmarshal replay: %w", err)
	}
	for _, l := range c.Lanes {
		if l.Index < 0 || l.Index > 31 {
			return nil, fmt.Errorf("replay lane %v out of range", l.Index)
		}
	}
	return &Replay{
		Chart:  c.Chart,
		Rate:   c.Rate,
		Frames: uncompactFrames(c.Lanes),
	}, nil
}
