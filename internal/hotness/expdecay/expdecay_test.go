package expdecay

import (
	"math"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Add(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTrackerForTest(hl time.Duration) (*Tracker, *fakeClock) {
	fc := &fakeClock{now: time.Unix(0, 0).UTC()}
	tr := New(hl)
	tr.now = fc.Now
	return tr, fc
}

func almostEq(t *testing.T, got, want, eps float64) {
	t.Helper()
	if math.Abs(got-want) > eps {
		t.Fatalf("got=%g want=%g (eps=%g)", got, want, eps)
	}
}

func TestIncAndScore_AccumulatesImmediately(t *testing.T) {
	tr, _ := newTrackerForTest(time.Minute)

	cell := "g:4:2"
	tr.Inc(cell)
	almostEq(t, tr.Score(cell), 1.0, 1e-9)

	tr.Inc(cell)
	almostEq(t, tr.Score(cell), 2.0, 1e-9)

	tr.Inc(cell)
	almostEq(t, tr.Score(cell), 3.0, 1e-9)
}

func TestHalfLife_DecaysByHalf(t *testing.T) {
	hl := 2 * time.Second
	tr, fc := newTrackerForTest(hl)

	cell := "g:4:2"
	tr.Inc(cell)
	almostEq(t, tr.Score(cell), 1.0, 1e-9)

	fc.Add(hl)
	almostEq(t, tr.Score(cell), 0.5, 1e-6)

	fc.Add(hl)
	almostEq(t, tr.Score(cell), 0.25, 1e-6)
}

func TestConcurrency_ManyIncSameCell(t *testing.T) {
	tr, _ := newTrackerForTest(time.Minute)

	cell := "g:0:0"
	const N = 256

	var wg sync.WaitGroup
	wg.Add(N)
	for range N {
		go func() {
			tr.Inc(cell)
			wg.Done()
		}()
	}
	wg.Wait()

	almostEq(t, tr.Score(cell), N, 1e-9)
}

func TestReset_OnlySelectedCells(t *testing.T) {
	tr, _ := newTrackerForTest(30 * time.Second)

	a := "g:1:1"
	b := "g:2:1"

	tr.Inc(a)
	tr.Inc(b)
	if tr.Score(a) <= 0 || tr.Score(b) <= 0 {
		t.Fatalf("precondition failed: scores must be > 0")
	}

	tr.Reset(a)

	if got := tr.Score(a); got != 0 {
		t.Fatalf("reset failed for %s: got %g want 0", a, got)
	}
	if got := tr.Score(b); got <= 0 {
		t.Fatalf("unexpected reset of %s: got %g want >0", b, got)
	}
}

func TestEmptyCellIgnored(t *testing.T) {
	tr, _ := newTrackerForTest(time.Minute)
	tr.Inc("")
	if got := tr.Score(""); got != 0 {
		t.Fatalf("empty cell must score 0, got %g", got)
	}
	if got := tr.Size(); got != 0 {
		t.Fatalf("empty cell must not be tracked, size=%d", got)
	}
}

func TestDecayHelper_Edges(t *testing.T) {
	if got := decay(0, 10, 60); got != 0 {
		t.Fatalf("expected 0, got %g", got)
	}
	if got := decay(5, 0, 60); got != 5 {
		t.Fatalf("expected 5, got %g", got)
	}
	if got := decay(5, 10, 0); got != 5 {
		t.Fatalf("expected 5, got %g", got)
	}
}
