package theme

import (
	"fmt"
	"image/color"

	"git.lost.host/meutraa/eotw/internal/session"
)

type DefaultTheme struct {
}

func (t *DefaultTheme) RenderMine(lane uint8) string {
	return paint(getNoteColor(1), mineSym)
}

func (t *DefaultTheme) RenderNote(lane uint8, denom int) string {
	return paint(getNoteColor(denom), noteSym)
}

func (t *DefaultTheme) RenderHold(lane uint8) string {
	return paint(holdColor, holdSym)
}

func (t *DefaultTheme) RenderHitField(lane uint8) string {
	return barSym
}

func (t *DefaultTheme) NotificationColor(level session.Level) color.RGBA {
	switch level {
	case session.Success:
		return color.RGBA{0, 236, 128, 255}
	case session.Warning:
		return color.RGBA{236, 195, 0, 255}
	case session.Error:
		return color.RGBA{236, 30, 0, 255}
	default:
		return color.RGBA{255, 255, 255, 255}
	}
}

func paint(c color.RGBA, s string) string {
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, s)
}

const (
	mineSym = "⨯"
	noteSym = "⬤"
	holdSym = "│"
	barSym  = "-"
)

var (
	holdColor  = color.RGBA{106, 106, 106, 255}
	noteColors = map[int]color.RGBA{
		1:  {236, 30, 0, 255},    // 1/4 red
		2:  {0, 118, 236, 255},   // 1/8 blue
		3:  {106, 0, 236, 255},   // 1/12 purple
		4:  {236, 195, 0, 255},   // 1/16 yellow
		6:  {236, 0, 106, 255},   // 1/24 pink
		8:  {236, 128, 0, 255},   // 1/32 orange
		12: {173, 236, 236, 255}, // 1/48 light blue
		16: {0, 236, 128, 255},   // 1/64 green
		48: {110, 147, 89, 255},  // 1/192 olive
		-1: {106, 106, 106, 255}, // other grey
	}
)

func getNoteColor(d int) color.RGBA {
	col, ok := noteColors[d]
	if !ok {
		return noteColors[-1]
	}
	return col
}
