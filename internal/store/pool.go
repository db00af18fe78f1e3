// Package store defines the connection-pool seam between the
// coordination core and a real database driver. The driver itself is
// an external collaborator — no concrete backing implementation ships
// here, only the interface actors are written against and a fake for
// tests.
package store

import "context"

// Pool acquires and releases Clients. A real implementation wraps
// whatever driver a production deployment picks (a MongoDB driver, in
// the system this spec distills); workloadgen itself never imports one.
type Pool interface {
	Acquire(ctx context.Context) (Client, error)
}

// Client is a single borrowed connection (or connection-equivalent)
// returned to its Pool via Release once an actor is done with it.
type Client interface {
	// Execute runs op against whatever document op describes and
	// returns the operation's result, or an error. The shape of op and
	// its result are left to the concrete driver; workloadgen's core
	// never interprets either.
	Execute(ctx context.Context, op Operation) (any, error)
	Release()
}

// Operation is an opaque, driver-defined unit of work: a query, an
// insert, a command. Actors build one from a document template each
// iteration; only a concrete Client implementation knows how to run it.
type Operation struct {
	Name     string
	Document map[string]any
}
