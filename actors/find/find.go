// Package find implements the Find actor: once per iteration it runs a
// query Operation and extracts named fields out of the result via
// gjson-backed JSONPath rules (internal/template.Extract), writing them
// into the actor's Variables for later phases to read. Unlike Insert,
// a Find actor commonly declares a mix of blocking phases (actively
// querying) and non-blocking ones (idle, just following the barrier),
// exercising PhaseLoop's non-blocking path.
package find

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"workloadgen/actors"
	"workloadgen/internal/phase"
	"workloadgen/internal/store"
	"workloadgen/internal/template"
	"workloadgen/internal/workload"
)

const typeName = "Find"

func init() {
	actors.DefaultCast().Register(typeName, produce)
}

// phaseValue is this phase's construction-time state: the collection to
// query, the query document template, and the extraction rules applied
// to whatever comes back.
type phaseValue struct {
	collection string
	query      map[string]any
	extract    map[string]string
}

// Actor runs a query and extracts fields from the result once per
// iteration of every phase it's configured for.
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
			return nil, fmt.Errorf("find: actor %q phase %d missing Collection", actorCtx.Config.Name, num)
		}

		var query map[string]any
		if raw, ok := pc.Get("Query"); ok {
			query, _ = raw.(map[string]any)
		}
		if query == nil {
			query = map[string]any{}
		}

		var extract map[string]string
		if raw, ok := pc.Get("Extract"); ok {
			if rules, ok := raw.(map[string]any); ok {
				extract = make(map[string]string, len(rules))
				for k, v := range rules {
					if s, ok := v.(string); ok {
						extract[k] = s
					}
				}
			}
		}

		check, err := pc.Check()
		if err != nil {
			return nil, fmt.Errorf("find: actor %q phase %d: %w", actorCtx.Config.Name, num, err)
		}

		value := &phaseValue{collection: collectionName, query: query, extract: extract}
		phaseMap[num] = phase.NewActorPhase(actorCtx.Workload().Orchestrator(), check, num, value)
	}

	loop := phase.NewPhaseLoop(actorCtx.Workload().Orchestrator(), phaseMap)
	return &Actor{actorCtx: actorCtx, loop: loop}, nil
}

// Run executes this actor's PhaseLoop to completion.
func (a *Actor) Run(ctx context.Context) error {
	timer := a.actorCtx.Timer("find")
	counter := a.actorCtx.Counter("find")

	return a.loop.ForEachPhase(func(num phase.Number, ap *phase.ActorPhase[*phaseValue]) error {
		return ap.RunIterations(func(iteration uint32) error {
			if !ap.Blocks() {
				// Non-blocking phase: nothing to actively do but follow
				// the barrier until it advances past this phase.
				return nil
			}

			if limiter := a.actorCtx.Phases()[num].RPSLimiter(); limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return err
				}
			}

			a.actorCtx.RefreshDataRows()
			query, err := template.GenerateDocument(ap.Value.query, a.actorCtx.Variables())
			if err != nil {
				return fmt.Errorf("find: generating query: %w", err)
			}

			client, err := a.actorCtx.Client(ctx)
			if err != nil {
				return fmt.Errorf("find: acquiring client: %w", err)
			}
			defer client.Release()

			start := time.Now()
			result, err := client.Execute(ctx, store.Operation{Name: "find:" + ap.Value.collection, Document: query})
			timer.Time(start)
			if err != nil {
				return fmt.Errorf("find: %w", err)
			}
			counter.Inc()

			if len(ap.Value.extract) == 0 {
				return nil
			}
			body, err := json.Marshal(result)
			if err != nil {
				return fmt.Errorf("find: marshaling result for extraction: %w", err)
			}
			extracted, err := template.Extract(body, ap.Value.extract)
			if err != nil {
				return fmt.Errorf("find: %w", err)
			}
			for name, value := range extracted {
				a.actorCtx.Variables().Set(name, value)
			}
			return nil
		})
	})
}
