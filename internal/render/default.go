package render

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/term"
)

type DefaultRenderer struct {
	out          io.Writer
	fd           int
	clock        clockwork.Clock
	buffer       strings.Builder
	restoreState *term.State
	decorations  []*decoration
}

type decoration struct {
	X, Y    uint16
	Content string
	Frames  int // remaining frames until removed
}

func New(out *os.File, clock clockwork.Clock) *DefaultRenderer {
	return &DefaultRenderer{out: out, fd: int(out.Fd()), clock: clock}
}

func newRenderer(out io.Writer, clock clockwork.Clock) *DefaultRenderer {
	return &DefaultRenderer{out: out, fd: -1, clock: clock}
}

func (r *DefaultRenderer) Init() error {
	if r.fd >= 0 && term.IsTerminal(r.fd) {
		state, err := term.MakeRaw(r.fd)
		if nil != err {
			return fmt.Errorf("unable to make terminal raw: %w", err)
		}
		r.restoreState = state
	}

	fmt.Fprintf(r.out, "%s%s%s",
		"\033[?1049h", // Enable alternate buffer
		"\033[?25l",   // Make the cursor invisible
		"\033[J",      // Clear the screen
	)
	return nil
}

func (r *DefaultRenderer) Deinit() error {
	fmt.Fprintf(r.out, "%s%s",
		"\033[?1049l", // Disable alternate buffer
		"\033[?25h",   // Make the cursor visible
	)
	if nil == r.restoreState {
		return nil
	}
	return term.Restore(r.fd, r.restoreState)
}

func (r *DefaultRenderer) Size() (int, int, error) {
	if r.fd < 0 {
		return 80, 24, nil
	}
	return term.GetSize(r.fd)
}

func (r *DefaultRenderer) AddDecoration(col, row uint16, content string, frames int) {
	r.decorations = append(r.decorations, &decoration{
		X:       col,
		Y:       row,
		Content: content,
		Frames:  frames,
	})
	r.Fill(row, col, content)
}

func (r *DefaultRenderer) tickDecorations() {
	nd := make([]*decoration, 0, len(r.decorations))
	for _, d := range r.decorations {
		if d.Frames == 0 {
			r.Fill(d.Y, d.X, " ")
			continue
		}
		nd = append(nd, d)
		d.Frames--
	}
	r.decorations = nd
}

// RenderLoop calls render once per period with the time since the previous
// call in ms, until render returns false.
func (r *DefaultRenderer) RenderLoop(period time.Duration, render func(dt float64) bool) {
	cont := true
	last := r.clock.Now()
	for cont {
		now := r.clock.Now()
		dt := float64(now.Sub(last)) / float64(time.Millisecond)
		last = now
		deadline := now.Add(period)

		cont = render(dt)

		r.tickDecorations()
		r.flush()

		if remaining := deadline.Sub(r.clock.Now()); remaining > 0 {
			r.clock.Sleep(remaining)
		}
	}
}

func (r *DefaultRenderer) Fill(row, column uint16, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.FormatInt(int64(row), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(column), 10))
	r.buffer.WriteString("H")
	r.buffer.WriteString(message)
}

func (r *DefaultRenderer) FillColor(row, column uint16, c color.RGBA, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.FormatInt(int64(row), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(column), 10))
	r.buffer.WriteString("H\033[38;2;")
	r.buffer.WriteString(strconv.FormatInt(int64(c.R), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(c.G), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(c.B), 10))
	r.buffer.WriteString("m")
	r.buffer.WriteString(message)
	r.buffer.WriteString("\033[0m")
}

func (r *DefaultRenderer) flush() {
	io.WriteString(r.out, r.buffer.String())
	r.buffer.Reset()
}
