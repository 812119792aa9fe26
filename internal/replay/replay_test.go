package replay

import "testing"

var compactTests = map[string]struct {
	frames  []Frame
	compact []LanesCompact
}{
	"empty": {
		frames:  []Frame{},
		compact: []LanesCompact{},
	},
	"two lanes": {
		frames: []Frame{{100, 0b0001}, {150, 0b1001}, {200, 0b1000}, {260, 0}},
		compact: []LanesCompact{
			{Index: 0, Times: []float64{100, 200}},
			{Index: 1, Times: []float64{}},
			{Index: 2, Times: []float64{}},
			{Index: 3, Times: []float64{150, 260}},
		},
	},
	"chord": {
		frames: []Frame{{10, 0b11}, {20, 0}},
		compact: []LanesCompact{
			{Index: 0, Times: []float64{10, 20}},
			{Index: 1, Times: []float64{10, 20}},
		},
	},
}

func equalCompact(p, q []LanesCompact) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i].Index != q[i].Index || len(p[i].Times) != len(q[i].Times) {
			return false
		}
		for j := range p[i].Times {
			if p[i].Times[j] != q[i].Times[j] {
				return false
			}
		}
	}
	return true
}

func equalFrames(p, q []Frame) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

func TestCompactFrames(t *testing.T) {
	for name, test := range compactTests {
		out := compactFrames(test.frames)
		if !equalCompact(out, test.compact) {
			t.Log("out     ", out)
			t.Log("expected", test.compact)
			t.Errorf("%v: compact mismatch", name)
		}
	}
}

func TestUncompactFrames(t *testing.T) {
	for name, test := range compactTests {
		out := uncompactFrames(test.compact)
		if !equalFrames(out, test.frames) {
			t.Log("out     ", out)
			t.Log("expected", test.frames)
			t.Errorf("%v: uncompact mismatch", name)
		}
	}
}

func TestMarshal(t *testing.T) {
	r := &Replay{Chart: "abc", Rate: 1.25, Frames: compactTests["two lanes"].frames}
	data, err := Marshal(r)
	if nil != err {
		t.Fatal(err)
	}
	out, err := Unmarshal(data)
	if nil != err {
		t.Fatal(err)
	}
	if out.Chart != "abc" || out.Rate != 1.25 || !equalFrames(out.Frames, r.Frames) {
		t.Errorf("unexpected replay %+v", out)
	}
}

func TestUnmarshalRejectsLane(t *testing.T) {
	if _, err := Unmarshal([]byte(`{"Lanes":[{"Index":40,"Times":[1]}]}`)); nil == err {
		t.Error("expected out of range lane to fail")
	}
}

func TestHeld(t *testing.T) {
	r := &Replay{Frames: compactTests["two lanes"].frames}
	tests := map[float64]uint32{
		0:   0,
		100: 0b0001,
		149: 0b0001,
		150: 0b1001,
		300: 0,
	}
	for time, expected := range tests {
		if held := r.Held(time); held != expected {
			t.Errorf("Held(%v) = %b, expected %b", time, held, expected)
		}
	}
}

func TestRecorderOnlyRecordsChanges(t *testing.T) {
	rec := NewRecorder("abc", 1.0)
	rec.Capture(-100, 0)
	rec.Capture(0, 1)
	rec.Capture(16, 1)
	rec.Capture(32, 0)
	rec.Capture(48, 0)

	expected := []Frame{{0, 1}, {32, 0}}
	r := rec.Replay()
	if !equalFrames(r.Frames, expected) {
		t.Errorf("frames %v, expected %v", r.Frames, expected)
	}

	r.Frames[0].Lanes = 7
	if rec.Replay().Frames[0].Lanes != 1 {
		t.Error("Replay should return a copy")
	}
}

// Presses recorded at the time they were judged come back at that time, no
// matter how the frames of the watching session line up.
func TestPressesKeepRecordedTime(t *testing.T) {
	rec := NewRecorder("abc", 1.5)
	rec.Capture(1890, 0)
	rec.Capture(1900, 0b01)
	rec.Capture(1910, 0b11)
	rec.Capture(1920, 0b10)
	rec.Capture(1930, 0b11)
	r := rec.Replay()

	presses := []Press{}
	for from, to := 1880.0, 1887.0; from < 1950; from, to = to, to+7 {
		presses = append(presses, r.Presses(from, to)...)
	}
	expected := []Press{{1900, 0}, {1910, 1}, {1930, 0}}
	if len(presses) != len(expected) {
		t.Fatalf("presses %v, expected %v", presses, expected)
	}
	for i := range expected {
		if presses[i] != expected[i] {
			t.Errorf("press %v: %v, expected %v", i, presses[i], expected[i])
		}
	}
	if r.Rate != 1.5 {
		t.Errorf("rate %v", r.Rate)
	}
}

func TestEdges(t *testing.T) {
	presses := Edges(0b0101, 0b1110, 40)
	expected := []Press{{40, 1}, {40, 3}}
	if len(presses) != len(expected) || presses[0] != expected[0] || presses[1] != expected[1] {
		t.Errorf("edges %v, expected %v", presses, expected)
	}
	if Edges(0b11, 0b01, 50) != nil {
		t.Error("releases are not presses")
	}
}
