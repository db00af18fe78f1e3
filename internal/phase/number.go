// Package phase implements the multi-party barrier coordinator
// ("Orchestrator") and the per-actor phase-loop iteration machinery
// ("ActorPhase" / "PhaseLoop") that every actor in a workload runs
// through. This is the coordination core of the harness: phase
// start/end are barriers, some actors hold a phase open and some don't,
// and an abort must wake every waiter without deadlock.
package phase

// Number identifies one globally-numbered segment of workload execution,
// bounded on both sides by the Orchestrator's barriers. Phase 0 is the
// first phase every actor participates in.
type Number int64

// NoPhase is an Orchestrator's MaxPhase before any phase number has been
// registered via PhasesAtLeastTo. It never collides with a real phase
// number.
const NoPhase Number = -1
