package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"git.lost.host/meutraa/eotw/internal/game"
	"git.lost.host/meutraa/eotw/internal/score"
	"git.lost.host/meutraa/eotw/internal/session"
	"git.lost.host/meutraa/eotw/internal/theme"
)

const (
	columnSpacing     = 2
	barOffset         = 3 // rows above the bottom
	notificationLimit = 4
	notificationLife  = 240 // frames
	panelWidth        = 32
)

type cell struct {
	row, col uint16
}

type notification struct {
	level   session.Level
	message string
	frames  int
}

// Hud draws the playfield and the side panel for one chart. It is also the
// on-screen Notifier.
type Hud struct {
	r     Renderer
	theme theme.Theme
	chart *game.Chart

	rows    int
	length  float64 // ms, 0 when unknown
	barRow  int
	lanes   []int
	sideCol int
	scroll  float64 // rows per wall ms

	drawn         []cell
	notifications []notification
}

// NewHud lays out the playfield for a terminal of the given size. scrollSpeed
// is in rows per second.
func NewHud(r Renderer, th theme.Theme, chart *game.Chart, columns, rows int, scrollSpeed float64) *Hud {
	keys := int(chart.Difficulty.NKeys)
	if keys == 0 {
		keys = 4
	}
	mid := columns >> 1
	lanes := make([]int, keys)
	for i := range lanes {
		lanes[i] = mid + (2*i-keys+1)*columnSpacing
	}
	sideCol := lanes[0] - panelWidth - 4
	if sideCol < 2 {
		sideCol = 2
	}
	return &Hud{
		r:       r,
		theme:   th,
		chart:   chart,
		rows:    rows,
		barRow:  rows - barOffset,
		lanes:   lanes,
		sideCol: sideCol,
		scroll:  scrollSpeed / 1000,
	}
}

// SetLength sets the song length shown next to the time.
func (h *Hud) SetLength(ms float64) {
	h.length = ms
}

func (h *Hud) Notify(level session.Level, message string) {
	h.notifications = append(h.notifications, notification{level, message, notificationLife})
	if len(h.notifications) > notificationLimit {
		h.notifications = h.notifications[len(h.notifications)-notificationLimit:]
	}
}

// Row of an object at the song time at, given the current song time and rate.
func (h *Hud) row(object, at, rate float64) int {
	return h.barRow - int(math.Round((object-at)/rate*h.scroll))
}

func (h *Hud) inField(row int) bool {
	return row > 0 && row < h.rows
}

func (h *Hud) fill(row, col int, s string) {
	h.r.Fill(uint16(row), uint16(col), s)
	h.drawn = append(h.drawn, cell{uint16(row), uint16(col)})
}

func (h *Hud) line(row int, format string, args ...interface{}) {
	h.r.Fill(uint16(row), uint16(h.sideCol), fmt.Sprintf("%-*v", panelWidth, fmt.Sprintf(format, args...)))
}

// Draw renders one frame of the session's chart at the song time at. p may
// be nil.
func (h *Hud) Draw(s *session.Session, p *score.Processor, at float64, skip bool) {
	for _, c := range h.drawn {
		h.r.Fill(c.row, c.col, " ")
	}
	h.drawn = h.drawn[:0]

	for i, col := range h.lanes {
		h.r.Fill(uint16(h.barRow), uint16(col), h.theme.RenderHitField(uint8(i)))
	}

	rate := s.Rate()
	for _, n := range s.Chart().Notes {
		if int(n.Index) >= len(h.lanes) {
			continue
		}
		if nil != p && p.Judged(n) {
			continue
		}
		col := h.lanes[n.Index]
		head := h.row(n.Ms(), at, rate)
		if n.IsHold() {
			tail := h.row(n.EndMs(), at, rate)
			for row := tail; row < head; row++ {
				if h.inField(row) && row != h.barRow {
					h.fill(row, col, h.theme.RenderHold(n.Index))
				}
			}
		}
		if !h.inField(head) {
			if head < 0 {
				// sorted, every later note is above the screen too
				break
			}
			continue
		}
		if n.IsMine {
			h.fill(head, col, h.theme.RenderMine(n.Index))
		} else {
			h.fill(head, col, h.theme.RenderNote(n.Index, n.Denom))
		}
	}

	h.panel(s, p, at, skip)
}

func (h *Hud) panel(s *session.Session, p *score.Processor, at float64, skip bool) {
	m := s.Machine()
	h.line(2, "%v", h.chart.Title)
	h.line(3, "%v  %v", h.chart.Difficulty.Name, h.chart.Difficulty.Msd)
	if h.length > 0 {
		h.line(5, "       Time:  %8.0f / %.0f", at, h.length)
	} else {
		h.line(5, "       Time:  %8.0f", at)
	}
	h.line(6, "      Phase:  %8v", s.Phase())
	h.line(7, "     Status:  %8v", s.Status())
	h.line(8, "     Pauses:  %8v", s.PauseCount())
	h.line(9, "     Offset:  %6.0fms", s.LocalOffset())

	row := 11
	if nil != p {
		h.line(row, "     Health:  %v", bar(p.Health(), 16))
		h.line(row+1, " Mean error:  %8.2f", p.MeanError())
		row += 3
		for i, j := range score.DefaultJudgements {
			h.line(row+i, "%11v:  %8v", j.Name, p.Counts()[i])
		}
		row += len(score.DefaultJudgements) + 1
	}

	switch {
	case s.Phase() == session.Resuming:
		h.line(row, "Resuming in %.1fs", m.ResumeRemaining().Seconds())
	case m.PauseHoldProgress() > 0:
		h.line(row, "      Pause:  %v", bar(m.PauseHoldProgress(), 16))
	case m.RestartHoldProgress() > 0:
		h.line(row, "    Restart:  %v", bar(m.RestartHoldProgress(), 16))
	case s.Phase() == session.Paused:
		h.line(row, "Paused, press escape to resume")
	case skip:
		h.line(row, "Press space to skip")
	default:
		h.line(row, "")
	}

	row += 2
	kept := h.notifications[:0]
	for i := 0; i < notificationLimit; i++ {
		if i >= len(h.notifications) {
			h.line(row+i, "")
			continue
		}
		n := h.notifications[i]
		h.r.FillColor(uint16(row+i), uint16(h.sideCol), h.theme.NotificationColor(n.level),
			fmt.Sprintf("%-*v", panelWidth, n.message))
		n.frames--
		if n.frames > 0 {
			kept = append(kept, n)
		}
	}
	h.notifications = kept
}

func bar(progress float64, width int) string {
	filled := int(math.Round(math.Max(0, math.Min(1, progress)) * float64(width)))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Summary is printed after the terminal has been restored.
func Summary(s *session.Session, p *score.Processor, elapsed time.Duration) string {
	var b strings.Builder
	outcome := "Complete"
	if s.HasFailed() {
		outcome = "Failed"
	} else if !s.IsComplete() {
		outcome = "Exited"
	}
	fmt.Fprintf(&b, "%v  %v after %v\n", s.Chart().Title, outcome, elapsed.Round(time.Second))
	if nil != p {
		for i, j := range score.DefaultJudgements {
			fmt.Fprintf(&b, "%11v: %v\n", j.Name, p.Counts()[i])
		}
		fmt.Fprintf(&b, " Mean error: %.2fms\n", p.MeanError())
	}
	fmt.Fprintf(&b, "     Pauses: %v\n", s.PauseCount())
	return b.String()
}
