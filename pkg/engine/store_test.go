package engine

import (
	"strings"
	"testing"
)

func TestStoreAddFactRejectsEmptyPredicate(t *testing.T) {
	s := NewStore()
	err := s.AddFact(Fact{})
	if err == nil {
		t.Fatalf("expected an error for an empty-predicate fact")
	}
	var ice *InvalidClauseError
	if _, ok := err.(*InvalidClauseError); !ok {
		_ = ice
		t.Fatalf("got %T, want *InvalidClauseError", err)
	}
}

func TestStoreAddRuleRejectsEmptyBody(t *testing.T) {
	s := NewStore()
	err := s.AddRule(Rule{Head: NewFact("p", NewConstant("x"))})
	if err == nil {
		t.Fatalf("expected an error for a bodyless rule")
	}
}

func TestStoreFactsUnknownPredicateIsEmptyNotNil(t *testing.T) {
	s := NewStore()
	facts := s.Facts("nope")
	if facts == nil {
		t.Fatalf("expected a non-nil empty slice")
	}
	if len(facts) != 0 {
		t.Fatalf("got %v", facts)
	}
}

const sampleClauseFile = `
% family facts
parent(tom, bob).
parent(bob, ann).
parent(bob, pat).

grandparent(X, Z) :- parent(X, Y), parent(Y, Z).
`

func TestStoreLoad(t *testing.T) {
	s := NewStore()
	if err := s.Load(strings.NewReader(sampleClauseFile)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := len(s.Facts("parent")); got != 3 {
		t.Fatalf("got %d parent facts, want 3", got)
	}
	if got := len(s.Rules()); got != 1 {
		t.Fatalf("got %d rules, want 1", got)
	}
	rule := s.Rules()[0]
	if rule.Head.Predicate != "grandparent" || len(rule.Body) != 2 {
		t.Fatalf("got %+v", rule)
	}
}

func TestStoreLoadReportsLineNumber(t *testing.T) {
	s := NewStore()
	err := s.Load(strings.NewReader("parent(tom, bob).\nparent(\n"))
	if err == nil {
		t.Fatalf("expected an error for the malformed second line")
	}
	le, ok := err.(*LoadError)
	if !ok {
		t.Fatalf("got %T, want *LoadError", err)
	}
	if le.Line != 2 {
		t.Fatalf("got line %d, want 2", le.Line)
	}
}

func TestStoreLoadSkipsBlankAndCommentLines(t *testing.T) {
	s := NewStore()
	err := s.Load(strings.NewReader("\n% just a comment\n\nfact(a).\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := len(s.Facts("fact")); got != 1 {
		t.Fatalf("got %d facts, want 1", got)
	}
}
