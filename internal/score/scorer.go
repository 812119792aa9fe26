package score

import (
	"time"

	"git.lost.host/meutraa/eotw/internal/game"
)

// Record is one finished, failed or abandoned play of a chart.
type Record struct {
	ID        int64
	Chart     string // chart hash
	Rate      float64
	Hits      int
	Misses    int
	MeanError float64 // ms, negative is early
	Failed    bool
	Pauses    uint32
	PlayedAt  time.Time
	ReplayID  int64 // 0 when no replay was saved
}

// DefaultJudgements are ordered tightest first, the last one is the miss.
var DefaultJudgements = []game.Judgement{
	{Time: 22 * time.Millisecond, Name: "Marvelous", Health: 0.01},
	{Time: 45 * time.Millisecond, Name: "Perfect", Health: 0.008},
	{Time: 90 * time.Millisecond, Name: "Great", Health: 0.004},
	{Time: 135 * time.Millisecond, Name: "Good", Health: 0},
	{Time: 180 * time.Millisecond, Name: "Bad", Health: -0.04},
	{Name: "Miss", Health: -0.08},
}
