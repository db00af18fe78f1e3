// Package workload implements the WorkloadContext/ActorContext/
// PhaseContext trio that hands out configuration, metrics, RNGs, and
// orchestrator access during actor construction. The driver that runs
// the actors lives in internal/driver.
package workload

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"workloadgen/internal/config"
	"workloadgen/internal/core"
	"workloadgen/internal/data"
	"workloadgen/internal/metrics"
	"workloadgen/internal/phase"
	"workloadgen/internal/ratelimit"
	"workloadgen/internal/store"
)

// ErrSetupComplete is returned by CreateRNG once WorkloadContext
// construction has finished — using an RNG seeded off the single
// setup-time seed after actors are already running would make runs
// non-reproducible.
var ErrSetupComplete = errors.New("workload: CreateRNG called after setup completed")

// WorkloadContext is the top-level context shared by every actor in a
// run: the parsed config, the metrics registry, the phase orchestrator,
// the store pool, and one seeded RNG used only during actor
// construction.
type WorkloadContext struct {
	cfg          *config.Config
	registry     *metrics.Registry
	orchestrator *phase.Orchestrator
	pool         store.Pool

	rng  *rand.Rand
	done bool

	actorContexts []*ActorContext
}

// NewWorkloadContext builds the context trio for cfg: one ActorContext
// per configured actor block (Threads > 1 multiplies a block into that
// many ActorContexts, each with a distinct actor id), and raises
// orchestrator's required-token count and phase bound to match. cfg
// must already be validated (config.LoadConfig does this).
func NewWorkloadContext(cfg *config.Config, registry *metrics.Registry, orchestrator *phase.Orchestrator, pool store.Pool) (*WorkloadContext, error) {
	wc := &WorkloadContext{
		cfg:          cfg,
		registry:     registry,
		orchestrator: orchestrator,
		pool:         pool,
		rng:          rand.New(rand.NewSource(cfg.RandomSeed)),
	}

	nextID := 0
	for _, actorCfg := range cfg.Actors {
		threads := actorCfg.Threads
		if threads <= 0 {
			threads = 1
		}
		for i := 0; i < threads; i++ {
			ac, err := newActorContext(actorCfg, wc, nextID)
			if err != nil {
				return nil, fmt.Errorf("actor %q: %w", actorCfg.Name, err)
			}
			nextID++
			wc.actorContexts = append(wc.actorContexts, ac)
			orchestrator.AddRequiredTokens(1)
			for num := range ac.phases {
				orchestrator.PhasesAtLeastTo(num)
			}
		}
	}

	wc.done = true
	return wc, nil
}

// Config returns the parsed workload configuration.
func (wc *WorkloadContext) Config() *config.Config { return wc.cfg }

// Actors returns every ActorContext constructed for this run, in
// declaration order (Threads-expanded blocks stay contiguous).
func (wc *WorkloadContext) Actors() []*ActorContext { return wc.actorContexts }

// Orchestrator returns the shared phase orchestrator.
func (wc *WorkloadContext) Orchestrator() *phase.Orchestrator { return wc.orchestrator }

// Registry returns the shared metrics registry.
func (wc *WorkloadContext) Registry() *metrics.Registry { return wc.registry }

// CreateRNG returns a new RNG seeded deterministically from the
// workload's single setup-time seed. Must only be called while actors
// are being constructed — calling it after NewWorkloadContext returns
// is an error, since two calls at different wall-clock times would
// otherwise silently stop being reproducible.
func (wc *WorkloadContext) CreateRNG() (*rand.Rand, error) {
	if wc.done {
		return nil, ErrSetupComplete
	}
	return rand.New(rand.NewSource(wc.rng.Int63())), nil
}

// ActorContext represents one `Actors:` block (or one Threads-expanded
// instance of one). It forwards to the owning WorkloadContext's
// orchestrator, registry, and store pool, and applies the
// "Name.id-N.operation" metrics naming convention.
type ActorContext struct {
	Config config.ActorConfig

	id        int
	workload  *WorkloadContext
	phases    map[phase.Number]*PhaseContext
	variables *core.MapVariables
	sources   data.Sources
}

func newActorContext(cfg config.ActorConfig, wc *WorkloadContext, id int) (*ActorContext, error) {
	ac := &ActorContext{
		Config:    cfg,
		id:        id,
		workload:  wc,
		phases:    make(map[phase.Number]*PhaseContext, len(cfg.Phases)),
		variables: core.NewVariables(),
		sources:   make(data.Sources, len(cfg.Data)),
	}
	for i, phaseCfg := range cfg.Phases {
		num := phase.Number(i)
		if phaseCfg.Phase != nil {
			num = phase.Number(*phaseCfg.Phase)
		}
		pc := &PhaseContext{Config: phaseCfg, actor: ac}
		if phaseCfg.RPS > 0 {
			pc.limiter = ratelimit.NewRateLimiter(phaseCfg.RPS)
		}
		ac.phases[num] = pc
	}
	for _, dsCfg := range cfg.Data {
		mode := data.Mode(dsCfg.Mode)
		source, err := data.LoadFile(dsCfg.Name, dsCfg.File, mode, wc.cfg.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("loading data source %q: %w", dsCfg.Name, err)
		}
		ac.sources[dsCfg.Name] = source
	}
	return ac, nil
}

// ID returns this actor's 0-indexed id, unique among every actor
// constructed for this run (including Threads-expanded instances).
func (ac *ActorContext) ID() int { return ac.id }

// Workload returns the owning WorkloadContext.
func (ac *ActorContext) Workload() *WorkloadContext { return ac.workload }

// Phases returns this actor's phase number to PhaseContext map, built
// from its `Phases:` block with index-defaulted phase numbers. Empty if
// the actor declared no Phases block.
func (ac *ActorContext) Phases() map[phase.Number]*PhaseContext { return ac.phases }

// Client acquires a store.Client from the workload's pool.
func (ac *ActorContext) Client(ctx context.Context) (store.Client, error) {
	return ac.workload.pool.Acquire(ctx)
}

// Timer returns a metrics.Timer named per the
// "Name.id-N.operation" convention.
func (ac *ActorContext) Timer(operation string) *metrics.Timer {
	return ac.workload.registry.Timer(ac.metricsName(operation))
}

// Counter returns a metrics.Counter named per the same convention.
func (ac *ActorContext) Counter(operation string) *metrics.Counter {
	return ac.workload.registry.Counter(ac.metricsName(operation))
}

// Gauge returns a metrics.Gauge named per the same convention.
func (ac *ActorContext) Gauge(operation string) *metrics.Gauge {
	return ac.workload.registry.Gauge(ac.metricsName(operation))
}

// Variables returns this actor's private variable store: values read
// back from store.Client.Execute results or extracted from them via
// gjson get written here, and document templates read them back via
// "${name}" placeholders. Never shared across actors.
func (ac *ActorContext) Variables() core.Variables { return ac.variables }

// RefreshDataRows draws the next row from every configured Data
// source and writes it into Variables under "data.<source>.<field>".
// Call once per iteration, before generating that iteration's document.
func (ac *ActorContext) RefreshDataRows() {
	ac.sources.InjectVariables(ac.variables)
}

func (ac *ActorContext) metricsName(operation string) string {
	return fmt.Sprintf("%s.id-%d.%s", ac.Config.Name, ac.id, operation)
}

// <Forwarding to the orchestrator>

func (ac *ActorContext) MorePhases() bool           { return ac.workload.orchestrator.MorePhases() }
func (ac *ActorContext) CurrentPhase() phase.Number { return ac.workload.orchestrator.CurrentPhase() }
func (ac *ActorContext) Abort()                     { ac.workload.orchestrator.Abort() }

// PhaseContext is one `Phases:` entry within an ActorContext. Key
// lookups fall back to the owning actor's block, implementing the same
// inheritance rule as config.PhaseConfig.Get. If the block sets RPS > 0,
// a shared rate limiter is built once at construction time and handed
// to every caller of RPSLimiter.
type PhaseContext struct {
	Config config.PhaseConfig

	actor   *ActorContext
	limiter *ratelimit.RateLimiter
}

// Get looks up key in this phase's config, falling back to the owning
// actor's.
func (pc *PhaseContext) Get(key string) (interface{}, bool) {
	return pc.Config.Get(pc.actor.Config, key)
}

// RPSLimiter returns the shared per-phase rate limiter, or nil if this
// phase's block didn't set RPS. Blocking actors call Wait(ctx) on it
// once per iteration.
func (pc *PhaseContext) RPSLimiter() *ratelimit.RateLimiter {
	return pc.limiter
}

// Check builds the IterationCompletionCheck this phase's Repeat/
// Duration fields describe.
func (pc *PhaseContext) Check() (phase.IterationCompletionCheck, error) {
	var minDuration time.Duration
	hasDuration := pc.Config.Duration != nil
	if hasDuration {
		minDuration = *pc.Config.Duration
	}

	var minIterations uint32
	hasIterations := pc.Config.Repeat != nil
	if hasIterations {
		minIterations = *pc.Config.Repeat
	}

	return phase.NewIterationCompletionCheck(minDuration, hasDuration, minIterations, hasIterations)
}
