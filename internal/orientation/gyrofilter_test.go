package orientation

import "testing"

func TestGyroNoiseFilter_SmoothsSpike(t *testing.T) {
	f := NewGyroNoiseFilter(0.01)
	seq := [][3]float64{
		{0, 0, 0},
		{0, 0, 0},
		{5, 0, 0}, // spike, should be suppressed by the median stage
		{0, 0, 0},
		{0, 0, 0},
	}
	var last [3]float64
	for _, s := range seq {
		last, _ = f.Filter(s)
	}
	if last[0] > 1 {
		t.Fatalf("spike leaked through median+average chain: got %v", last[0])
	}
}

func TestGyroNoiseFilter_RestInstant(t *testing.T) {
	f := NewGyroNoiseFilter(0.05)
	for i := 0; i < 8; i++ {
		_, rest := f.Filter([3]float64{0.001, 0.001, 0.001})
		if i >= 4 && !rest {
			t.Fatalf("expected rest subfilter to fire once averaged below threshold, iter %d", i)
		}
	}
	var rest bool
	for i := 0; i < 8; i++ {
		_, rest = f.Filter([3]float64{2, 2, 2})
	}
	if rest {
		t.Fatalf("expected rest subfilter to clear once sustained large motion outlasts the median+average window")
	}
}
