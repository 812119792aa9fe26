// Package skip fast-forwards through long gaps before the next object.
package skip

import (
	"git.lost.host/meutraa/eotw/internal/session"
	"github.com/rs/zerolog"
)

// Objects is anything that knows when the next playable object is.
type Objects interface {
	NextObjectTime(after float64) (float64, bool)
}

type Controller struct {
	objects Objects
	log     zerolog.Logger
}

func New(objects Objects, log zerolog.Logger) *Controller {
	return &Controller{objects: objects, log: log.With().Str("component", "skip").Logger()}
}

// TrySkip returns the time to skip to, or false when skipping is not allowed
// right now.
func TrySkip(s *session.Session, nextObject float64) (float64, bool) {
	switch s.Phase() {
	case session.Paused, session.Resuming:
		return 0, false
	}
	if !s.Phase().Interactive() || !s.EligibleToSkip(nextObject) {
		return 0, false
	}
	return nextObject - s.StartDelay()*s.Rate(), true
}

// Skip moves the session to just before the next object if allowed.
func (c *Controller) Skip(s *session.Session) (float64, bool) {
	next, ok := c.objects.NextObjectTime(s.Time())
	if !ok {
		return 0, false
	}
	target, ok := TrySkip(s, next)
	if !ok {
		return 0, false
	}
	s.Seek(target)
	c.log.Info().Float64("target", target).Float64("time", s.Time()).Msg("skipped")
	return target, true
}

// Available reports whether Skip would currently do anything, for showing a
// prompt.
func (c *Controller) Available(s *session.Session) bool {
	next, ok := c.objects.NextObjectTime(s.Time())
	if !ok {
		return false
	}
	_, ok = TrySkip(s, next)
	return ok
}
