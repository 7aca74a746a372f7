package engine

import (
	"context"
	"strings"

	"logicdb/pkg/compiler"
)

// Binding is one projected answer to a query: a subset of the query's
// variables mapped to their fully-resolved terms, in the order the
// variables first appeared in the query text (spec §4.5).
type Binding struct {
	order  []string
	values map[string]Term
}

// Vars returns the bound variable names, in query order.
func (b Binding) Vars() []string { return append([]string(nil), b.order...) }

// Get returns the term bound to name, if the projection recorded one.
func (b Binding) Get(name string) (Term, bool) {
	t, ok := b.values[name]
	return t, ok
}

// Empty reports whether this binding records no variables — the "true"
// answer to a ground, provable query (spec §7).
func (b Binding) Empty() bool { return len(b.order) == 0 }

func (b Binding) String() string {
	if b.Empty() {
		return "true"
	}
	var parts []string
	for _, v := range b.order {
		parts = append(parts, v+"="+b.values[v].String())
	}
	return strings.Join(parts, ", ")
}

// Query parses text as a single goal in query mode, runs it against
// resolver, and projects each resulting environment onto the goal's own
// variables (spec §4.5). A malformed query returns a non-nil error; a
// well-formed but unprovable query returns a nil error and an empty,
// non-nil slice.
func Query(ctx context.Context, resolver *Resolver, text string) ([]Binding, error) {
	goal, err := ParseGoal(compiler.ModeQuery, text)
	if err != nil {
		return nil, err
	}

	queryVars := goal.AsTerm().Vars()

	envs, err := resolver.EvaluateGoal(ctx, goal, EmptyEnvironment())
	if err != nil {
		return nil, err
	}

	bindings := make([]Binding, 0, len(envs))
	for _, env := range envs {
		b := Binding{values: make(map[string]Term)}
		for _, name := range queryVars {
			resolved := env.FullResolve(NewVariable(name))
			if resolved.IsVariable() && resolved.Name() == name {
				continue
			}
			b.order = append(b.order, name)
			b.values[name] = resolved
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}
