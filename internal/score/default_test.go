package score

import (
	"path/filepath"
	"testing"
	"time"

	"git.lost.host/meutraa/eotw/internal/replay"
	"github.com/rs/zerolog"
)

func openTestStore(t *testing.T) *Store {
	s, err := Open(filepath.Join(t.TempDir(), "scores.db"), zerolog.Nop())
	if nil != err {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestScores(t *testing.T) {
	s := openTestStore(t)

	first := Record{Chart: "a", Rate: 1, Hits: 10, Misses: 2, MeanError: -3.5, Pauses: 1, PlayedAt: time.Unix(1000, 0)}
	second := Record{Chart: "a", Rate: 1.5, Hits: 3, Failed: true, PlayedAt: time.Unix(2000, 0), ReplayID: 7}
	other := Record{Chart: "b", PlayedAt: time.Unix(3000, 0)}
	for _, r := range []Record{first, second, other} {
		if _, err := s.SaveScore(r); nil != err {
			t.Fatal(err)
		}
	}

	records, err := s.Scores("a")
	if nil != err {
		t.Fatal(err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 scores, got %v", len(records))
	}
	got := records[0]
	if got.Rate != 1.5 || !got.Failed || got.ReplayID != 7 || !got.PlayedAt.Equal(second.PlayedAt) {
		t.Errorf("newest score %+v", got)
	}
	got = records[1]
	if got.Hits != 10 || got.Misses != 2 || got.MeanError != -3.5 || got.Pauses != 1 || got.Failed {
		t.Errorf("oldest score %+v", got)
	}
}

func TestReplays(t *testing.T) {
	s := openTestStore(t)
	r := &replay.Replay{Chart: "a", Rate: 1, Frames: []replay.Frame{{Time: 10, Lanes: 1}, {Time: 20, Lanes: 0}}}

	id, err := s.SaveReplay(r)
	if nil != err {
		t.Fatal(err)
	}
	loaded, err := s.Replay(id)
	if nil != err {
		t.Fatal(err)
	}
	if len(loaded.Frames) != 2 || loaded.Frames[0] != r.Frames[0] || loaded.Chart != "a" {
		t.Errorf("loaded replay %+v", loaded)
	}

	if _, err := s.Replay(id + 1); nil == err {
		t.Error("expected missing replay to fail")
	}
}

func TestOffsets(t *testing.T) {
	s := openTestStore(t)
	if o, err := s.Offset("a"); nil != err || o != 0 {
		t.Errorf("unsaved offset %v %v", o, err)
	}
	if err := s.SaveOffset("a", 15); nil != err {
		t.Fatal(err)
	}
	if err := s.SaveOffset("a", -5); nil != err {
		t.Fatal(err)
	}
	if o, err := s.Offset("a"); nil != err || o != -5 {
		t.Errorf("offset %v %v, expected -5", o, err)
	}
}
