package game

import (
	"crypto/sha256"
	"encoding/base64"
	"time"
)

// Chart is immutable once parsed, per-play state lives with the scorer so the
// same chart can be retried.
type Chart struct {
	Title      string
	Notes      []*Note // sorted by Time
	NoteCount  int64
	HoldCount  int64
	MineCount  int64
	Difficulty Difficulty
}

// Hash identifies the chart in the score database.
func (c *Chart) Hash() string {
	sum := sha256.Sum256([]byte(c.Difficulty.Section))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Playable returns the notes that need to be hit, mines excluded.
func (c *Chart) Playable() []*Note {
	notes := make([]*Note, 0, len(c.Notes))
	for _, n := range c.Notes {
		if !n.IsMine {
			notes = append(notes, n)
		}
	}
	return notes
}

// FirstObjectTime is the time of the first playable note in ms.
func (c *Chart) FirstObjectTime() (float64, bool) {
	return c.NextObjectTime(-1 << 62)
}

// NextObjectTime is the time of the first playable note strictly after the
// given ms.
func (c *Chart) NextObjectTime(after float64) (float64, bool) {
	for _, n := range c.Notes {
		if n.IsMine {
			continue
		}
		if t := n.Ms(); t > after {
			return t, true
		}
	}
	return 0, false
}

// LastObjectTime is when the last note, or hold tail, ends.
func (c *Chart) LastObjectTime() float64 {
	last := 0.0
	for _, n := range c.Notes {
		if e := n.EndMs(); e > last {
			last = e
		}
	}
	return last
}

// Trim returns a copy of the chart without the notes before from ms, for
// previewing a section.
func (c *Chart) Trim(from float64) *Chart {
	at := time.Duration(from * float64(time.Millisecond))
	trimmed := &Chart{
		Title:      c.Title,
		Difficulty: c.Difficulty,
	}
	for _, n := range c.Notes {
		if n.Time < at {
			continue
		}
		nn := *n
		trimmed.Notes = append(trimmed.Notes, &nn)
		switch {
		case nn.IsMine:
			trimmed.MineCount++
		case nn.IsHold():
			trimmed.HoldCount++
			trimmed.NoteCount++
		default:
			trimmed.NoteCount++
		}
	}
	return trimmed
}
