package engine

import "context"

// StorageProvider is the extension point for an external fact source
// (spec §6). The core consults a provider at fact-lookup time; the
// provider returns a synchronous sequence of candidate Facts for a given
// goal and never sees the caller's Environment — the core does the
// unifying. Implementations (e.g. internal/providers/pgfacts) live outside
// the core.
type StorageProvider interface {
	// Handles declares whether this provider offers facts for the goal's
	// predicate/shape. Called before FactsFor so a provider can decline
	// cheaply.
	Handles(goal Fact) bool

	// FactsFor returns candidate facts for goal. Results need not be
	// unified against goal; the core unifies them. A context is threaded
	// through so a provider backed by network/disk I/O can respect
	// cancellation — the core itself never cancels a query mid-flight
	// (spec §5).
	FactsFor(ctx context.Context, goal Fact) ([]Fact, error)
}
