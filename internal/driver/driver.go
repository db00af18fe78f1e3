// Package driver runs a parsed workload to completion: it produces one
// Actor per ActorContext from a Cast, spawns each on its own goroutine,
// waits for all of them to finish (an actor that fails aborts the
// orchestrator so the others stop too), and flushes metrics once every
// actor has stopped.
package driver

import (
	"context"
	"fmt"
	"sync"

	"workloadgen/internal/metrics"
	"workloadgen/internal/workload"
)

// Actor is the minimal interface driver needs from a produced actor —
// deliberately identical in shape to actors.Actor, duplicated here
// rather than imported to avoid a workload<->actors import cycle
// (actors.Cast already depends on workload.ActorContext).
type Actor interface {
	Run(ctx context.Context) error
}

// Producer builds one Actor for an ActorContext. Callers pass
// actors.DefaultCast().Produce (or any Cast's Produce method) wrapped
// in a closure — not the Cast itself, since actors.Cast.Produce
// returns actors.Actor, a distinct named interface type from Actor
// above, and Go requires identical method signatures for interface
// satisfaction even when the two interfaces are structurally the same.
type Producer func(actorCtx *workload.ActorContext) (Actor, error)

// Result is what Run reports once every actor has stopped.
type Result struct {
	// Errs holds one entry per actor that returned a non-nil error or
	// panicked, in no particular order. Empty on a clean run.
	Errs []ActorError

	// Report is the final metrics snapshot, taken after every actor has
	// stopped and before the registry is closed.
	Report *metrics.Report
}

// ActorError pairs an actor's id and name with the error or panic value
// that stopped it.
type ActorError struct {
	ActorID   int
	ActorName string
	Err       error
}

func (e ActorError) Error() string {
	return fmt.Sprintf("actor %s (id %d): %v", e.ActorName, e.ActorID, e.Err)
}

// Run produces and starts one goroutine per wc.Actors(), waits for all
// of them to return, and closes the metrics registry. Any actor
// returning a non-nil error, or panicking, calls
// wc.Orchestrator().Abort() so every other actor's next barrier wait
// unblocks instead of hanging — one failed actor ends the whole run.
//
// Run blocks until every actor goroutine has returned. Cancelling ctx
// does not itself stop actors — actors are expected to check ctx
// themselves (typically via ActorPhase.RunIterations' body, or a
// blocking store.Client.Execute call) — but Run always waits for them
// to actually exit before returning.
func Run(ctx context.Context, wc *workload.WorkloadContext, produce Producer) *Result {
	actorCtxs := wc.Actors()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		actErrs []ActorError
	)

	record := func(ac *workload.ActorContext, err error) {
		mu.Lock()
		actErrs = append(actErrs, ActorError{ActorID: ac.ID(), ActorName: ac.Config.Name, Err: err})
		mu.Unlock()
		wc.Orchestrator().Abort()
	}

	for _, ac := range actorCtxs {
		wg.Add(1)
		go func(ac *workload.ActorContext) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					record(ac, fmt.Errorf("panic: %v", r))
				}
			}()

			actor, err := produce(ac)
			if err != nil {
				record(ac, err)
				return
			}
			if err := actor.Run(ctx); err != nil {
				record(ac, err)
			}
		}(ac)
	}

	wg.Wait()

	report := wc.Registry().Report()
	wc.Registry().Close()

	return &Result{Errs: actErrs, Report: report}
}
