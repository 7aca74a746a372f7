package engine

import (
	"context"
	"fmt"
)

// Resolver implements SLD resolution over a Store plus zero or more
// StorageProviders (spec §4.4, §6).
type Resolver struct {
	store     *Store
	providers []StorageProvider
}

// NewResolver builds a Resolver over store, consulting providers (in the
// given order) in addition to store's in-memory facts.
func NewResolver(store *Store, providers ...StorageProvider) *Resolver {
	return &Resolver{store: store, providers: providers}
}

// evalState is the per-top-level-query scratch space: the recursion-guard
// set and the rule-renaming counter. Both are thread-local to one
// evaluation and must never be shared across queries (spec §4.4, §5).
type evalState struct {
	ctx     context.Context
	counter int
	visited map[string]bool
}

func newEvalState(ctx context.Context) *evalState {
	return &evalState{ctx: ctx, visited: make(map[string]bool)}
}

func (st *evalState) nextSuffix() int {
	st.counter++
	return st.counter
}

// EvaluateGoal proves goal under env, as a fresh top-level evaluation with
// its own recursion guard and renaming counter (spec §4.4).
func (r *Resolver) EvaluateGoal(ctx context.Context, goal Fact, env Environment) ([]Environment, error) {
	return r.evaluateGoal(newEvalState(ctx), goal, env)
}

// EvaluateConjunction proves goals left to right under env, as a fresh
// top-level evaluation (spec §4.4). An empty conjunction yields [env].
func (r *Resolver) EvaluateConjunction(ctx context.Context, goals []Fact, env Environment) ([]Environment, error) {
	return r.evaluateConjunction(newEvalState(ctx), goals, env)
}

func (r *Resolver) evaluateGoal(st *evalState, goal Fact, env Environment) ([]Environment, error) {
	key := env.FullResolve(goal.AsTerm()).String()
	if st.visited[key] {
		return nil, nil
	}
	st.visited[key] = true
	defer delete(st.visited, key)

	var results []Environment

	for _, fact := range r.store.Facts(goal.Predicate) {
		if next, ok := UnifyFacts(goal, fact, env); ok {
			results = append(results, next)
		}
	}

	for _, provider := range r.providers {
		if !provider.Handles(goal) {
			continue
		}
		facts, err := provider.FactsFor(st.ctx, goal)
		if err != nil {
			return nil, fmt.Errorf("storage provider: %w", err)
		}
		for _, fact := range facts {
			if next, ok := UnifyFacts(goal, fact, env); ok {
				results = append(results, next)
			}
		}
	}

	for _, rule := range r.store.rules {
		if rule.Head.Predicate != goal.Predicate {
			continue
		}
		renamed := renameRule(rule, st.nextSuffix())
		headEnv, ok := Unify(goal.AsTerm(), renamed.Head.AsTerm(), env)
		if !ok {
			continue
		}
		bodyResults, err := r.evaluateConjunction(st, renamed.Body, headEnv)
		if err != nil {
			return nil, err
		}
		results = append(results, bodyResults...)
	}

	return results, nil
}

func (r *Resolver) evaluateConjunction(st *evalState, goals []Fact, env Environment) ([]Environment, error) {
	if len(goals) == 0 {
		return []Environment{env}, nil
	}
	first, err := r.evaluateGoal(st, goals[0], env)
	if err != nil {
		return nil, err
	}
	var out []Environment
	for _, next := range first {
		rest, err := r.evaluateConjunction(st, goals[1:], next)
		if err != nil {
			return nil, err
		}
		out = append(out, rest...)
	}
	return out, nil
}

// renameRule produces a fresh copy of rule with every variable renamed to
// a uniquely suffixed name, consistently within the copy, so a variable
// shared between head and body stays linked and a recursive rule
// application never captures an outer variable (spec §4.4).
func renameRule(rule Rule, suffix int) Rule {
	mapping := make(map[string]string)
	return Rule{
		Head: Fact{Predicate: rule.Head.Predicate, Args: renameArgs(rule.Head.Args, suffix, mapping)},
		Body: renameFacts(rule.Body, suffix, mapping),
	}
}

func renameFacts(facts []Fact, suffix int, mapping map[string]string) []Fact {
	out := make([]Fact, len(facts))
	for i, f := range facts {
		out[i] = Fact{Predicate: f.Predicate, Args: renameArgs(f.Args, suffix, mapping)}
	}
	return out
}

func renameArgs(args []Term, suffix int, mapping map[string]string) []Term {
	out := make([]Term, len(args))
	for i, a := range args {
		out[i] = renameTerm(a, suffix, mapping)
	}
	return out
}

func renameTerm(t Term, suffix int, mapping map[string]string) Term {
	switch t.Kind() {
	case KindVariable:
		old := t.Name()
		fresh, ok := mapping[old]
		if !ok {
			fresh = fmt.Sprintf("%s_%d", old, suffix)
			mapping[old] = fresh
		}
		return NewVariable(fresh)
	case KindCompound:
		return NewCompound(t.Functor(), renameArgs(t.Args(), suffix, mapping)...)
	case KindList:
		if t.IsEmptyList() {
			return t
		}
		return Cons(renameTerm(t.Head(), suffix, mapping), renameTerm(t.Tail(), suffix, mapping))
	default:
		return t
	}
}
