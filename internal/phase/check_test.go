package phase

import (
	"testing"
	"time"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time                   { return c.now }
func (c *fakeClock) Since(t time.Time) time.Duration { return c.now.Sub(t) }
func (c *fakeClock) Advance(d time.Duration)         { c.now = c.now.Add(d) }

func TestIterationCompletionCheck_RejectsNegativeDuration(t *testing.T) {
	_, err := NewIterationCompletionCheck(-time.Second, true, 0, false)
	if err == nil {
		t.Fatal("expected error for negative duration, got nil")
	}
}

func TestIterationCompletionCheck_Blocks(t *testing.T) {
	cases := []struct {
		name          string
		hasDuration   bool
		hasIterations bool
		want          bool
	}{
		{"neither", false, false, false},
		{"durationOnly", true, false, true},
		{"iterationsOnly", false, true, true},
		{"both", true, true, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			check, err := NewIterationCompletionCheck(time.Millisecond, c.hasDuration, 1, c.hasIterations)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := check.Blocks(); got != c.want {
				t.Errorf("Blocks() = %v, expected %v", got, c.want)
			}
		})
	}
}

func TestIterationCompletionCheck_IterationsOnly(t *testing.T) {
	check, err := NewIterationCompletionCheck(0, false, 3, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clock := &fakeClock{now: time.Unix(0, 0)}
	start := check.ReferenceStart(clock)

	for i := uint32(0); i < 3; i++ {
		if check.IsDone(clock, start, i) {
			t.Fatalf("IsDone(%d) = true, expected false before 3 iterations", i)
		}
	}
	if !check.IsDone(clock, start, 3) {
		t.Fatal("IsDone(3) = false, expected true")
	}
}

func TestIterationCompletionCheck_DurationOnly(t *testing.T) {
	check, err := NewIterationCompletionCheck(50*time.Millisecond, true, 0, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clock := &fakeClock{now: time.Unix(0, 0)}
	start := check.ReferenceStart(clock)

	if check.IsDone(clock, start, 0) {
		t.Fatal("IsDone at t=0 = true, expected false")
	}
	clock.Advance(49 * time.Millisecond)
	if check.IsDone(clock, start, 100) {
		t.Fatal("IsDone at t=49ms = true, expected false")
	}
	clock.Advance(1 * time.Millisecond)
	if !check.IsDone(clock, start, 0) {
		t.Fatal("IsDone at t=50ms = false, expected true")
	}
}

func TestIterationCompletionCheck_BothBoundsRequired(t *testing.T) {
	check, err := NewIterationCompletionCheck(50*time.Millisecond, true, 2, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clock := &fakeClock{now: time.Unix(0, 0)}
	start := check.ReferenceStart(clock)

	clock.Advance(100 * time.Millisecond)
	// Duration satisfied but not iteration count.
	if check.IsDone(clock, start, 1) {
		t.Fatal("IsDone = true with only 1 of 2 required iterations")
	}
	if !check.IsDone(clock, start, 2) {
		t.Fatal("IsDone = false once both bounds are satisfied")
	}
}

func TestIterationCompletionCheck_NonBlockingNeverReadsClock(t *testing.T) {
	check := NonBlockingCheck()
	if check.Blocks() {
		t.Fatal("NonBlockingCheck().Blocks() = true, expected false")
	}
	// ReferenceStart must not call clock.Now() when no duration is
	// configured -- pass a clock that panics on Now() to prove it.
	check.ReferenceStart(panicClock{})
}

type panicClock struct{}

func (panicClock) Now() time.Time                   { panic("Now() should not be called") }
func (panicClock) Since(time.Time) time.Duration { panic("Since() should not be called") }

func TestIterationCompletionCheck_Monotonic(t *testing.T) {
	check, err := NewIterationCompletionCheck(20*time.Millisecond, true, 2, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clock := &fakeClock{now: time.Unix(0, 0)}
	start := check.ReferenceStart(clock)

	var prev bool
	for i := uint32(0); i < 5; i++ {
		clock.Advance(10 * time.Millisecond)
		done := check.IsDone(clock, start, i)
		if prev && !done {
			t.Fatalf("IsDone regressed from true to false at iteration %d", i)
		}
		prev = done
	}
}
