package engine

import (
	"context"
	"strings"
	"testing"

	"logicdb/pkg/compiler"
)

func newTestStore(t *testing.T, clauses string) *Store {
	t.Helper()
	s := NewStore()
	if err := s.Load(strings.NewReader(clauses)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s
}

// Scenario 1: a direct fact lookup succeeds with one ground answer.
func TestResolveDirectFact(t *testing.T) {
	s := newTestStore(t, `parent(tom, bob).`)
	r := NewResolver(s)
	goal := NewFact("parent", NewConstant("tom"), NewConstant("bob"))
	envs, err := r.EvaluateGoal(context.Background(), goal, EmptyEnvironment())
	if err != nil {
		t.Fatalf("EvaluateGoal: %v", err)
	}
	if len(envs) != 1 {
		t.Fatalf("got %d results, want 1", len(envs))
	}
}

// Scenario 2: a multi-argument match with one ground argument binds the
// remaining variable to every matching fact.
func TestResolveMultiArgMatch(t *testing.T) {
	s := newTestStore(t, `
parent(bob, ann).
parent(bob, pat).
parent(tom, bob).
`)
	r := NewResolver(s)
	goal := NewFact("parent", NewConstant("bob"), NewVariable("X"))
	envs, err := r.EvaluateGoal(context.Background(), goal, EmptyEnvironment())
	if err != nil {
		t.Fatalf("EvaluateGoal: %v", err)
	}
	if len(envs) != 2 {
		t.Fatalf("got %d results, want 2", len(envs))
	}
	var names []string
	for _, e := range envs {
		names = append(names, e.FullResolve(NewVariable("X")).String())
	}
	if names[0] != "ann" || names[1] != "pat" {
		t.Fatalf("got %v, want [ann pat] in insertion order", names)
	}
}

// Scenario 3: a two-hop rule (grandparent) derives from two parent facts.
func TestResolveTwoHopRule(t *testing.T) {
	s := newTestStore(t, `
parent(tom, bob).
parent(bob, ann).
grandparent(X, Z) :- parent(X, Y), parent(Y, Z).
`)
	r := NewResolver(s)
	goal := NewFact("grandparent", NewConstant("tom"), NewVariable("W"))
	envs, err := r.EvaluateGoal(context.Background(), goal, EmptyEnvironment())
	if err != nil {
		t.Fatalf("EvaluateGoal: %v", err)
	}
	if len(envs) != 1 {
		t.Fatalf("got %d results, want 1", len(envs))
	}
	if got := envs[0].FullResolve(NewVariable("W")).String(); got != "ann" {
		t.Fatalf("got W=%s, want ann", got)
	}
}

// Scenario 4: transitive closure via a recursive rule, guarded against
// infinite recursion by the visited-goal set.
func TestResolveTransitiveAncestor(t *testing.T) {
	s := newTestStore(t, `
parent(tom, bob).
parent(bob, ann).
parent(ann, liz).
ancestor(X, Y) :- parent(X, Y).
ancestor(X, Z) :- parent(X, Y), ancestor(Y, Z).
`)
	r := NewResolver(s)
	goal := NewFact("ancestor", NewConstant("tom"), NewVariable("D"))
	envs, err := r.EvaluateGoal(context.Background(), goal, EmptyEnvironment())
	if err != nil {
		t.Fatalf("EvaluateGoal: %v", err)
	}
	want := map[string]bool{"bob": true, "ann": true, "liz": true}
	if len(envs) != len(want) {
		t.Fatalf("got %d results, want %d", len(envs), len(want))
	}
	for _, e := range envs {
		name := e.FullResolve(NewVariable("D")).String()
		if !want[name] {
			t.Fatalf("unexpected descendant %s", name)
		}
		delete(want, name)
	}
}

// Scenario 5: list append run forward, all arguments ground, proves once.
func TestResolveAppendForward(t *testing.T) {
	s := newTestStore(t, `
append([], L, L).
append([H | T], L, [H | R]) :- append(T, L, R).
`)
	r := NewResolver(s)
	goal := ParseGoalOrFatal(t, `append([a, b], [c, d], [a, b, c, d])`)
	envs, err := r.EvaluateGoal(context.Background(), goal, EmptyEnvironment())
	if err != nil {
		t.Fatalf("EvaluateGoal: %v", err)
	}
	if len(envs) != 1 {
		t.Fatalf("got %d results, want 1", len(envs))
	}
}

// Scenario 6: list append run in "split" mode, enumerating every way to
// split the third list into a prefix and suffix.
func TestResolveAppendSplitEnumeration(t *testing.T) {
	s := newTestStore(t, `
append([], L, L).
append([H | T], L, [H | R]) :- append(T, L, R).
`)
	r := NewResolver(s)
	goal := ParseGoalOrFatal(t, `append(?X, ?Y, [a, b, c])`)
	envs, err := r.EvaluateGoal(context.Background(), goal, EmptyEnvironment())
	if err != nil {
		t.Fatalf("EvaluateGoal: %v", err)
	}
	if len(envs) != 4 {
		t.Fatalf("got %d splits, want 4", len(envs))
	}
	if got := envs[0].FullResolve(NewVariable("X")).String(); got != "[]" {
		t.Fatalf("first split X = %s, want []", got)
	}
	if got := envs[3].FullResolve(NewVariable("X")).String(); got != "[a, b, c]" {
		t.Fatalf("last split X = %s, want [a, b, c]", got)
	}
}

// Scenario 7: member query against an element absent from the list fails
// with zero results, not an error.
func TestResolveMemberNotFound(t *testing.T) {
	s := newTestStore(t, `
member(X, [X | _T]).
member(X, [_H | T]) :- member(X, T).
`)
	r := NewResolver(s)
	goal := ParseGoalOrFatal(t, `member(z, [a, b, c])`)
	envs, err := r.EvaluateGoal(context.Background(), goal, EmptyEnvironment())
	if err != nil {
		t.Fatalf("EvaluateGoal: %v", err)
	}
	if len(envs) != 0 {
		t.Fatalf("got %d results, want 0", len(envs))
	}
}

// Scenario 8: a fully ground, provable query yields exactly one empty
// binding (the "true" answer).
func TestResolveGroundProvableQuery(t *testing.T) {
	s := newTestStore(t, `parent(tom, bob).`)
	r := NewResolver(s)
	bindings, err := Query(context.Background(), r, "parent(tom, bob)")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(bindings) != 1 || !bindings[0].Empty() {
		t.Fatalf("got %v, want one empty binding", bindings)
	}
}

func TestResolveRecursionGuardStopsCycle(t *testing.T) {
	s := newTestStore(t, `
loop(X) :- loop(X).
`)
	r := NewResolver(s)
	goal := NewFact("loop", NewConstant("a"))
	envs, err := r.EvaluateGoal(context.Background(), goal, EmptyEnvironment())
	if err != nil {
		t.Fatalf("EvaluateGoal: %v", err)
	}
	if len(envs) != 0 {
		t.Fatalf("got %d results, want 0 (cycle should not loop forever or succeed)", len(envs))
	}
}

func ParseGoalOrFatal(t *testing.T, text string) Fact {
	t.Helper()
	f, err := ParseGoal(compiler.ModeQuery, text)
	if err != nil {
		t.Fatalf("ParseGoal(%q): %v", text, err)
	}
	return f
}

// fakeProvider supplies facts for a single predicate, ignoring the goal's
// bindings (spec §6: a provider is consulted with the unbound goal shape
// only, never the caller's environment).
type fakeProvider struct {
	predicate string
	facts     []Fact
}

func (p *fakeProvider) Handles(goal Fact) bool { return goal.Predicate == p.predicate }

func (p *fakeProvider) FactsFor(ctx context.Context, goal Fact) ([]Fact, error) {
	return p.facts, nil
}

func TestResolveConsultsProviderAfterInMemoryFacts(t *testing.T) {
	s := newTestStore(t, `sensor(local, 10).`)
	provider := &fakeProvider{
		predicate: "sensor",
		facts:     []Fact{NewFact("sensor", NewConstant("remote"), NewNumber("20"))},
	}
	r := NewResolver(s, provider)
	envs, err := r.EvaluateGoal(context.Background(), NewFact("sensor", NewVariable("Who"), NewVariable("Reading")), EmptyEnvironment())
	if err != nil {
		t.Fatalf("EvaluateGoal: %v", err)
	}
	if len(envs) != 2 {
		t.Fatalf("got %d results, want 2", len(envs))
	}
	if got := envs[0].FullResolve(NewVariable("Who")).String(); got != "local" {
		t.Fatalf("first result Who=%s, want local (in-memory facts before providers)", got)
	}
	if got := envs[1].FullResolve(NewVariable("Who")).String(); got != "remote" {
		t.Fatalf("second result Who=%s, want remote", got)
	}
}

func TestResolveSkipsProviderThatDoesNotHandleGoal(t *testing.T) {
	s := newTestStore(t, `weather(oslo, rain).`)
	provider := &fakeProvider{predicate: "sensor", facts: []Fact{NewFact("sensor", NewConstant("x"))}}
	r := NewResolver(s, provider)
	envs, err := r.EvaluateGoal(context.Background(), NewFact("weather", NewConstant("oslo"), NewVariable("W")), EmptyEnvironment())
	if err != nil {
		t.Fatalf("EvaluateGoal: %v", err)
	}
	if len(envs) != 1 {
		t.Fatalf("got %d results, want 1", len(envs))
	}
}
