package score

import (
	"math"
	"time"

	"git.lost.host/meutraa/eotw/internal/game"
)

// Processor judges hits against a chart and tracks health. It answers the
// session's fail and completion questions.
type Processor struct {
	notes      []*game.Note
	judged     []bool
	index      map[*game.Note]int
	count      int
	judgements []game.Judgement
	noFail     bool

	health     float64
	hits       int
	misses     int
	sumOfError float64
	counts     []int
}

func NewProcessor(chart *game.Chart, judgements []game.Judgement, noFail bool) *Processor {
	if len(judgements) < 2 {
		judgements = DefaultJudgements
	}
	notes := []*game.Note{}
	if nil != chart {
		notes = chart.Playable()
	}
	index := make(map[*game.Note]int, len(notes))
	for i, n := range notes {
		index[n] = i
	}
	return &Processor{
		notes:      notes,
		index:      index,
		judged:     make([]bool, len(notes)),
		judgements: judgements,
		noFail:     noFail,
		health:     1,
		counts:     make([]int, len(judgements)),
	}
}

func (p *Processor) missWindow() float64 {
	return float64(p.judgements[len(p.judgements)-2].Time) / float64(time.Millisecond)
}

func (p *Processor) judge(absDistance float64) int {
	for i := 0; i < len(p.judgements)-1; i++ {
		if absDistance <= float64(p.judgements[i].Time)/float64(time.Millisecond) {
			return i
		}
	}
	return len(p.judgements) - 1
}

func (p *Processor) apply(index int) {
	p.counts[index]++
	p.health = math.Max(0, math.Min(1, p.health+p.judgements[index].Health))
}

// Hit judges a press of lane at the song time against the closest unjudged
// note in that lane. It returns nil when nothing was in range.
func (p *Processor) Hit(lane uint8, at float64) *game.Judgement {
	closest := -1
	distance := 0.0
	for i, n := range p.notes {
		if p.judged[i] || n.Index != lane {
			continue
		}
		d := at - n.Ms()
		if closest == -1 || math.Abs(d) < math.Abs(distance) {
			closest = i
			distance = d
		} else {
			// notes are sorted, everything after is further away
			break
		}
	}
	if closest == -1 || math.Abs(distance) > p.missWindow() {
		return nil
	}

	p.judged[closest] = true
	p.count++
	p.hits++
	p.sumOfError += distance
	index := p.judge(math.Abs(distance))
	p.apply(index)
	return &p.judgements[index]
}

// Expire misses every unjudged note that can no longer be hit at the song
// time, returning how many were missed.
func (p *Processor) Expire(at float64) int {
	window := p.missWindow()
	missed := 0
	for i, n := range p.notes {
		if n.Ms() > at {
			break
		}
		if p.judged[i] || at-n.Ms() <= window {
			continue
		}
		p.judged[i] = true
		p.count++
		p.misses++
		missed++
		p.apply(len(p.judgements) - 1)
	}
	return missed
}

// Judged is true once n has been hit or missed. Mines are never judged.
func (p *Processor) Judged(n *game.Note) bool {
	i, ok := p.index[n]
	return ok && p.judged[i]
}

func (p *Processor) Failed() bool {
	return !p.noFail && p.health <= 0
}

func (p *Processor) Complete() bool {
	return p.count == len(p.notes)
}

func (p *Processor) Health() float64 {
	return p.health
}

// Counts per judgement, in the order of the judgements.
func (p *Processor) Counts() []int {
	return p.counts
}

func (p *Processor) MeanError() float64 {
	if p.hits == 0 {
		return 0
	}
	return p.sumOfError / float64(p.hits)
}

func (p *Processor) Record(chart string, rate float64, failed bool, pauses uint32) Record {
	return Record{
		Chart:     chart,
		Rate:      rate,
		Hits:      p.hits,
		Misses:    p.misses,
		MeanError: p.MeanError(),
		Failed:    failed,
		Pauses:    pauses,
		PlayedAt:  time.Now(),
	}
}
