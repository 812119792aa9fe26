package game

import "time"

// Judgement is a timing window. Notes hit within Time of their target get
// this judgement and change health by Health.
type Judgement struct {
	Time   time.Duration
	Name   string
	Health float64
}
