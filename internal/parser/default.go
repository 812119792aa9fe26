package parser

import (
	"errors"
	"fmt"
	"math/big"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"git.lost.host/meutraa/eotw/internal/game"
)

var ErrNoBPM = errors.New("chart has no bpms")

// DefaultParser reads StepMania .sm files.
type DefaultParser struct{}

type bpm struct {
	beat  float64
	value float64
}

// secondsAt converts a beat into seconds from the first beat, walking the bpm
// changes before it.
func secondsAt(bpms []bpm, beat float64) float64 {
	seconds := 0.0
	for i, b := range bpms {
		if beat <= b.beat {
			break
		}
		end := beat
		if i+1 < len(bpms) && bpms[i+1].beat < beat {
			end = bpms[i+1].beat
		}
		seconds += (end - b.beat) * 60 / b.value
	}
	return seconds
}

// 0 – No note
// 1 – Normal note
// 2 – Hold head
// 3 – Hold/Roll tail
// 4 – Roll head
// M – Mine (or other negative note)
// K – Automatic keysound
// L – Lift note
// F – Fake note
func isNote(c byte) bool {
	return c == '1' || c == '2' || c == '4' || c == 'M'
}

func stripComments(data string) string {
	lines := strings.Split(strings.ReplaceAll(data, "\r", ""), "\n")
	for i, l := range lines {
		if idx := strings.Index(l, "//"); idx >= 0 {
			lines[i] = l[:idx]
		}
	}
	return strings.Join(lines, "\n")
}

func (p *DefaultParser) Parse(file string) ([]*game.Chart, error) {
	data, err := os.ReadFile(file)
	if nil != err {
		return nil, err
	}
	return p.parse(string(data))
}

func (p *DefaultParser) parse(data string) ([]*game.Chart, error) {
	sections := strings.Split(stripComments(data), "#NOTES:")

	title := ""
	offset := 0.0
	bpms := []bpm{}
	for _, tag := range strings.Split(sections[0], "#") {
		tag = strings.TrimSpace(tag)
		tag = strings.TrimSuffix(tag, ";")
		name, value, ok := strings.Cut(tag, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToUpper(name) {
		case "TITLE":
			title = value
		case "OFFSET":
			o, err := strconv.ParseFloat(value, 64)
			if nil != err {
				return nil, fmt.Errorf("invalid offset %q: %w", value, err)
			}
			offset = -o
		case "BPMS":
			for _, pair := range strings.Split(strings.ReplaceAll(value, "\n", ""), ",") {
				if strings.TrimSpace(pair) == "" {
					continue
				}
				beat, val, ok := strings.Cut(pair, "=")
				if !ok {
					return nil, fmt.Errorf("invalid bpm %q", pair)
				}
				b, err := strconv.ParseFloat(strings.TrimSpace(beat), 64)
				if nil != err {
					return nil, fmt.Errorf("invalid bpm beat %q: %w", beat, err)
				}
				v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
				if nil != err || v <= 0 {
					return nil, fmt.Errorf("invalid bpm value %q", val)
				}
				bpms = append(bpms, bpm{beat: b, value: v})
			}
		}
	}
	if len(bpms) == 0 {
		return nil, ErrNoBPM
	}
	sort.Slice(bpms, func(i, j int) bool { return bpms[i].beat < bpms[j].beat })

	charts := []*game.Chart{}
	for _, section := range sections[1:] {
		fields := strings.SplitN(section, ":", 6)
		if len(fields) < 6 {
			continue
		}
		nKeys, ok := game.NKeyMap[strings.TrimSpace(fields[0])]
		if !ok {
			continue
		}
		body, _, _ := strings.Cut(fields[5], ";")
		difficulty := game.Difficulty{
			Name:    strings.TrimSpace(fields[2]),
			Msd:     strings.TrimSpace(fields[3]),
			Section: body,
			NKeys:   nKeys,
		}
		chart := p.notes(difficulty, bpms, offset)
		chart.Title = title
		charts = append(charts, chart)
	}

	return charts, nil
}

func (p *DefaultParser) notes(difficulty game.Difficulty, bpms []bpm, offset float64) *game.Chart {
	chart := &game.Chart{Difficulty: difficulty}
	at := func(beat float64) time.Duration {
		return time.Duration((offset + secondsAt(bpms, beat)) * float64(time.Second))
	}

	for m, measure := range strings.Split(difficulty.Section, ",") {
		rows := []string{}
		for _, l := range strings.Split(measure, "\n") {
			l = strings.TrimSpace(l)
			if len(l) == int(difficulty.NKeys) {
				rows = append(rows, l)
			}
		}

		for i, row := range rows {
			// Beat count is 4 per measure
			beat := float64(4*m) + 4*float64(i)/float64(len(rows))
			denom := int(big.NewRat(int64(i*4), int64(len(rows))).Denom().Int64())
			t := at(beat)

			for col := 0; col < len(row); col++ {
				c := row[col]
				if isNote(c) {
					chart.Notes = append(chart.Notes, &game.Note{
						Index:  uint8(col),
						Denom:  denom,
						IsMine: c == 'M',
						Time:   t,
					})
					switch c {
					case 'M':
						chart.MineCount++
					case '2', '4':
						chart.HoldCount++
						chart.NoteCount++
					default:
						chart.NoteCount++
					}
				} else if c == '3' {
					// Tail of the last head in this column
					for j := len(chart.Notes) - 1; j >= 0; j-- {
						if n := chart.Notes[j]; int(n.Index) == col && !n.IsMine {
							n.TimeEnd = t
							break
						}
					}
				}
			}
		}
	}

	sort.SliceStable(chart.Notes, func(i, j int) bool { return chart.Notes[i].Time < chart.Notes[j].Time })
	return chart
}
