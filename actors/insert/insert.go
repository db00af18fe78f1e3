// Package insert implements the Insert actor: once per iteration it
// generates a document from its phase's Document template and executes
// an insert Operation against the configured collection. Each phase's
// collection name and document template are resolved once, at
// construction time; only the generated document itself is fresh
// per iteration.
package insert

import (
	"context"
	"fmt"
	"time"

	"workloadgen/actors"
	"workloadgen/internal/phase"
	"workloadgen/internal/store"
	"workloadgen/internal/template"
	"workloadgen/internal/workload"
)

const typeName = "Insert"

func init() {
	actors.DefaultCast().Register(typeName, produce)
}

// phaseValue is this phase's construction-time state: the collection
// name and document template, looked up once from this phase's (or
// its actor's) config, not re-read on every iteration.
type phaseValue struct {
	collection string
	document   map[string]any
}

// Actor inserts a generated document once per iteration of every
// blocking phase it's configured for.
type Actor struct {
	actorCtx *workload.ActorContext
	loop     *phase.PhaseLoop[*phaseValue]
}

func produce(actorCtx *workload.ActorContext) (actors.Actor, error) {
	phaseMap := make(map[phase.Number]*phase.ActorPhase[*phaseValue])

	for num, pc := range actorCtx.Phases() {
		collection, ok := pc.Get("Collection")
		collectionName, _ := collection.(string)
		if !ok || collectionName == "" {
			return nil, fmt.Errorf("insert: actor %q phase %d missing Collection", actorCtx.Config.Name, num)
		}

		docSpec, ok := pc.Get("Document")
		docMap, _ := docSpec.(map[string]any)
		if !ok || docMap == nil {
			return nil, fmt.Errorf("insert: actor %q phase %d missing Document", actorCtx.Config.Name, num)
		}

		check, err := pc.Check()
		if err != nil {
			return nil, fmt.Errorf("insert: actor %q phase %d: %w", actorCtx.Config.Name, num, err)
		}

		value := &phaseValue{collection: collectionName, document: docMap}
		phaseMap[num] = phase.NewActorPhase(actorCtx.Workload().Orchestrator(), check, num, value)
	}

	loop := phase.NewPhaseLoop(actorCtx.Workload().Orchestrator(), phaseMap)
	return &Actor{actorCtx: actorCtx, loop: loop}, nil
}

// Run executes this actor's PhaseLoop to completion.
func (a *Actor) Run(ctx context.Context) error {
	timer := a.actorCtx.Timer("insert")
	counter := a.actorCtx.Counter("insert")

	return a.loop.ForEachPhase(func(num phase.Number, ap *phase.ActorPhase[*phaseValue]) error {
		return ap.RunIterations(func(iteration uint32) error {
			if limiter := a.actorCtx.Phases()[num].RPSLimiter(); limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return err
				}
			}

			a.actorCtx.RefreshDataRows()
			doc, err := template.GenerateDocument(ap.Value.document, a.actorCtx.Variables())
			if err != nil {
				return fmt.Errorf("insert: generating document: %w", err)
			}

			client, err := a.actorCtx.Client(ctx)
			if err != nil {
				return fmt.Errorf("insert: acquiring client: %w", err)
			}
			defer client.Release()

			start := time.Now()
			_, err = client.Execute(ctx, store.Operation{Name: "insert:" + ap.Value.collection, Document: doc})
			timer.Time(start)
			if err != nil {
				return fmt.Errorf("insert: %w", err)
			}
			counter.Inc()
			return nil
		})
	})
}
