package phase

import (
	"errors"
	"time"
)

// IterationCompletionCheck is a small immutable value describing how a
// single actor's inner loop for one phase terminates: after at least
// MinIterations, after at least MinDuration has elapsed, both, or
// neither ("non-blocking: follow the phase").
type IterationCompletionCheck struct {
	minDuration   time.Duration
	hasDuration   bool
	minIterations uint32
	hasIterations bool
	blocks        bool
}

// NewIterationCompletionCheck builds a check from optional bounds.
// Pass hasDuration/hasIterations false to leave that bound unset. A
// negative duration (with hasDuration set) is rejected as invalid
// configuration; every other combination is accepted.
func NewIterationCompletionCheck(minDuration time.Duration, hasDuration bool, minIterations uint32, hasIterations bool) (IterationCompletionCheck, error) {
	if hasDuration && minDuration < 0 {
		return IterationCompletionCheck{}, errors.New("phase: Duration must be non-negative")
	}
	return IterationCompletionCheck{
		minDuration:   minDuration,
		hasDuration:   hasDuration,
		minIterations: minIterations,
		hasIterations: hasIterations,
		blocks:        hasDuration || hasIterations,
	}, nil
}

// NonBlockingCheck is the degenerate "unbounded loop" shape: its
// termination is driven solely by the orchestrator advancing past the
// actor's phase, never by iteration count or elapsed time.
func NonBlockingCheck() IterationCompletionCheck {
	return IterationCompletionCheck{}
}

// Blocks is true iff at least one of MinDuration/MinIterations is set.
// A blocking check holds its phase open until IsDone; a non-blocking
// one never does.
func (c IterationCompletionCheck) Blocks() bool {
	return c.blocks
}

// ReferenceStart returns the instant iteration counting should be
// measured from. When no duration bound is configured it returns the
// zero time rather than reading the clock, since IsDone never needs a
// duration comparison in that case — this keeps the un-configured case
// off the hot path's one unavoidable clock read.
func (c IterationCompletionCheck) ReferenceStart(clock Clock) time.Time {
	if !c.hasDuration {
		return time.Time{}
	}
	return clock.Now()
}

// IsDone reports whether iteration should stop, given the instant
// iterating started and the number of iterations completed so far. The
// iteration-count test runs first so the clock is read only when the
// count already permits termination — on the hot path, an unmet
// MinIterations bound short-circuits before any call to Clock.Now.
func (c IterationCompletionCheck) IsDone(clock Clock, startedAt time.Time, currentIteration uint32) bool {
	if c.hasIterations && currentIteration < c.minIterations {
		return false
	}
	if !c.hasDuration {
		return true
	}
	return clock.Since(startedAt) >= c.minDuration
}

// Clock is the subset of core.Clock IsDone needs. Declared locally to
// keep this package free of a dependency on internal/core for a single
// two-method interface; internal/core.RealClock and FakeClock both
// satisfy it structurally.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}
