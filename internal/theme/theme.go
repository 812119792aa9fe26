package theme

import (
	"image/color"

	"git.lost.host/meutraa/eotw/internal/session"
)

type Theme interface {
	RenderMine(lane uint8) string
	RenderNote(lane uint8, denom int) string
	RenderHold(lane uint8) string
	RenderHitField(lane uint8) string
	NotificationColor(level session.Level) color.RGBA
}
