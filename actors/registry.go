// Package actors defines the Actor interface every producer builds and
// the Cast registry actors self-register into: a `Type:` config value
// names a producer, and the registry's sorted name list is what makes
// --list-actors possible.
package actors

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"workloadgen/internal/workload"
)

// Actor is one running unit of work: one ActorContext's worth of
// PhaseLoop iteration. Run blocks until the actor's PhaseLoop reports no
// more phases, or ctx is cancelled, or the orchestrator aborts.
type Actor interface {
	Run(ctx context.Context) error
}

// Producer builds one Actor from an ActorContext. Registered under the
// `Type:` name that selects it in a workload file.
type Producer func(actorCtx *workload.ActorContext) (Actor, error)

// Cast is the registry of every known actor Producer, keyed by the
// `Type:` string a workload file's `Actors:` block uses to select one.
type Cast struct {
	mu        sync.RWMutex
	producers map[string]Producer
}

// defaultCast is populated by each actors/* subpackage's init().
var defaultCast = NewCast()

// NewCast returns an empty Cast. Most callers want DefaultCast instead.
func NewCast() *Cast {
	return &Cast{producers: make(map[string]Producer)}
}

// DefaultCast returns the process-wide Cast that actors/insert,
// actors/find, and any other actor package register themselves into
// via init().
func DefaultCast() *Cast { return defaultCast }

// Register adds producer under name. Calling Register twice for the
// same name is a programmer error — panics, the same way Go's
// database/sql drivers panic on duplicate driver registration.
func (c *Cast) Register(name string, producer Producer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.producers[name]; exists {
		panic(fmt.Sprintf("actors: Register called twice for %q", name))
	}
	c.producers[name] = producer
}

// Produce builds the Actor named by actorCtx.Config.Type.
func (c *Cast) Produce(actorCtx *workload.ActorContext) (Actor, error) {
	c.mu.RLock()
	producer, ok := c.producers[actorCtx.Config.Type]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("actors: no producer registered for Type %q", actorCtx.Config.Type)
	}
	return producer(actorCtx)
}

// Names returns every registered Type name, sorted, for --list-actors.
func (c *Cast) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.producers))
	for name := range c.producers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
