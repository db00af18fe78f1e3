package insert

import (
	"context"
	"testing"

	"workloadgen/internal/config"
	"workloadgen/internal/metrics"
	"workloadgen/internal/phase"
	"workloadgen/internal/store"
	"workloadgen/internal/workload"
)

func newTestActorContext(t *testing.T, extra, phaseExtra map[string]interface{}, repeat uint32) (*workload.ActorContext, *store.FakePool) {
	t.Helper()
	cfg := &config.Config{
		SchemaVersion: "2018-07-01",
		Actors: []config.ActorConfig{{
			Name:  "InsertActor",
			Type:  typeName,
			Extra: extra,
			Phases: []config.PhaseConfig{{
				Repeat: &repeat,
				Extra:  phaseExtra,
			}},
		}},
	}
	orch := phase.NewOrchestrator()
	pool := store.NewFakePool()
	wc, err := workload.NewWorkloadContext(cfg, metrics.NewRegistry(), orch, pool)
	if err != nil {
		t.Fatalf("NewWorkloadContext: %v", err)
	}
	return wc.Actors()[0], pool
}

func TestInsert_ProduceRejectsMissingCollection(t *testing.T) {
	ac, _ := newTestActorContext(t, nil, map[string]interface{}{
		"Document": map[string]any{"name": "alice"},
	}, 1)
	if _, err := produce(ac); err == nil {
		t.Fatal("expected an error for a phase missing Collection")
	}
}

func TestInsert_ProduceRejectsMissingDocument(t *testing.T) {
	ac, _ := newTestActorContext(t, nil, map[string]interface{}{
		"Collection": "people",
	}, 1)
	if _, err := produce(ac); err == nil {
		t.Fatal("expected an error for a phase missing Document")
	}
}

func TestInsert_RunInsertsConfiguredRepeatCount(t *testing.T) {
	ac, pool := newTestActorContext(t, nil, map[string]interface{}{
		"Collection": "people",
		"Document":   map[string]any{"name": "alice", "id": "${uuid()}"},
	}, 5)

	actor, err := produce(ac)
	if err != nil {
		t.Fatalf("produce: %v", err)
	}
	if err := actor.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	executions := pool.Executions()
	if len(executions) != 5 {
		t.Fatalf("expected 5 insert executions, got %d", len(executions))
	}
	for _, op := range executions {
		if op.Document["name"] != "alice" {
			t.Errorf("expected document name=alice, got %v", op.Document["name"])
		}
		if _, ok := op.Document["id"].(string); !ok {
			t.Errorf("expected a generated uuid string for id, got %v", op.Document["id"])
		}
	}
}

func TestInsert_CollectionInheritedFromActorBlock(t *testing.T) {
	ac, pool := newTestActorContext(t,
		map[string]interface{}{"Collection": "inherited"},
		map[string]interface{}{"Document": map[string]any{"x": 1}},
		1,
	)
	actor, err := produce(ac)
	if err != nil {
		t.Fatalf("produce: %v", err)
	}
	if err := actor.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	executions := pool.Executions()
	if len(executions) != 1 || executions[0].Name != "insert:inherited" {
		t.Fatalf("expected one insert against 'inherited', got %+v", executions)
	}
}
