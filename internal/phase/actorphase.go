package phase

import "time"

// ActorPhase is one actor's unit of work for one phase: the check that
// decides when its inner loop finishes, the phase number it belongs to,
// and a user-supplied configuration value constructed once at setup.
//
// Value is exposed directly (not through an iterator sentinel, per the
// "don't encode loop termination in an iterator's equality operator"
// redesign) — callers read and mutate it freely inside RunIterations'
// body.
type ActorPhase[T any] struct {
	check       IterationCompletionCheck
	phaseNum    Number
	orchestrator *Orchestrator
	clock       Clock

	Value T
}

// NewActorPhase builds an ActorPhase for phaseNum, owned by orchestrator,
// with value constructed once by the caller and held for the phase's
// lifetime.
func NewActorPhase[T any](orchestrator *Orchestrator, check IterationCompletionCheck, phaseNum Number, value T) *ActorPhase[T] {
	return &ActorPhase[T]{
		check:        check,
		phaseNum:     phaseNum,
		orchestrator: orchestrator,
		clock:        defaultClock{},
		Value:        value,
	}
}

// WithClock overrides the clock used to evaluate duration bounds. Used
// by tests to avoid sleeping real time for Duration-bounded phases.
func (a *ActorPhase[T]) WithClock(clock Clock) *ActorPhase[T] {
	a.clock = clock
	return a
}

// Blocks reports whether this actor holds its phase open (per
// IterationCompletionCheck.Blocks).
func (a *ActorPhase[T]) Blocks() bool {
	return a.check.Blocks()
}

// RunIterations runs body in a loop, once per iteration, until this
// ActorPhase's termination condition is met:
//
//   - if it Blocks(), until check.IsDone(startedAt, iteration) or abort
//   - otherwise, until the orchestrator's current phase moves past
//     phaseNum, or abort
//
// This replaces the "iterator whose == is the loop body" idiom with a
// direct predicate checked at the top of each step, per the redesign
// note: no sentinel object, no null-ish end marker.
//
// body receives the 0-indexed iteration number. A non-nil error from
// body stops the loop immediately and is returned to the caller.
func (a *ActorPhase[T]) RunIterations(body func(iteration uint32) error) error {
	startedAt := a.check.ReferenceStart(a.clock)
	var iteration uint32

	for !a.done(startedAt, iteration) {
		if err := body(iteration); err != nil {
			return err
		}
		iteration++
	}
	return nil
}

func (a *ActorPhase[T]) done(startedAt time.Time, iteration uint32) bool {
	if a.orchestrator.Aborted() {
		return true
	}
	if a.check.Blocks() {
		return a.check.IsDone(a.clock, startedAt, iteration)
	}
	return a.orchestrator.CurrentPhase() != a.phaseNum
}

type defaultClock struct{}

func (defaultClock) Now() time.Time                   { return time.Now() }
func (defaultClock) Since(t time.Time) time.Duration { return time.Since(t) }
