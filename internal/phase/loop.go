package phase

// PhaseLoop is one actor's map from phase number to the ActorPhase it
// runs in that phase. Its driver method, ForEachPhase, interleaves the
// orchestrator's start/end barrier calls around the caller's body —
// this replaces the source's "iterator that secretly calls
// awaitPhaseStart on dereference and awaitPhaseEnd on increment" idiom
// with an explicit control structure, per the redesign note in the
// spec: conflating a coordination protocol with an iterator contract
// makes misuse (calling operator* twice without operator++) easy and
// silent. A plain function call can't be misused that way.
type PhaseLoop[T any] struct {
	orchestrator *Orchestrator
	phaseMap     map[Number]*ActorPhase[T]
}

// NewPhaseLoop builds a PhaseLoop over phaseMap, owned exclusively by
// the calling actor's goroutine. As a setup side effect it raises
// orchestrator's phase-count bound to cover every phase number present
// in phaseMap, so MaxPhase ends up the union of every actor's phase
// sets.
func NewPhaseLoop[T any](orchestrator *Orchestrator, phaseMap map[Number]*ActorPhase[T]) *PhaseLoop[T] {
	for num := range phaseMap {
		orchestrator.PhasesAtLeastTo(num)
	}
	return &PhaseLoop[T]{orchestrator: orchestrator, phaseMap: phaseMap}
}

// ForEachPhase runs body once per phase, in the order the orchestrator
// advances, until the orchestrator reports no more phases (including
// after an abort). For each phase:
//
//   - it awaits the start barrier;
//   - if this actor has no ActorPhase registered for the phase, or its
//     registered ActorPhase doesn't block, it immediately releases the
//     end barrier non-blocking and, if registered, still invokes body
//     (an unregistered phase is skipped entirely — an "inert" yield
//     would be observably identical, so there's nothing to construct);
//   - otherwise it invokes body and only then releases the end barrier,
//     blocking.
//
// A non-nil error from body still releases the end barrier (so other
// actors don't deadlock on this one) before propagating.
func (p *PhaseLoop[T]) ForEachPhase(body func(num Number, ap *ActorPhase[T]) error) error {
	for p.orchestrator.MorePhases() {
		current := p.orchestrator.AwaitPhaseStartN(p.blocksOn(p.orchestrator.CurrentPhase()), 1)

		ap, ok := p.phaseMap[current]
		if !ok {
			p.orchestrator.AwaitPhaseEndN(false, 1)
			continue
		}

		blocks := ap.Blocks()
		if !blocks {
			p.orchestrator.AwaitPhaseEndN(false, 1)
		}

		err := body(current, ap)

		if blocks {
			p.orchestrator.AwaitPhaseEndN(true, 1)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *PhaseLoop[T]) blocksOn(num Number) bool {
	ap, ok := p.phaseMap[num]
	return ok && ap.Blocks()
}
