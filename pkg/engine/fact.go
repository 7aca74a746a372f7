package engine

import "strings"

// Fact is a predicate applied to an ordered sequence of argument terms,
// asserted true (or, inside the resolver, treated as a goal to be proved).
// Identity is structural: predicate, arity and argument terms (spec §3).
type Fact struct {
	Predicate string
	Args      []Term

	// Source names the origin of this fact for diagnostics only — "" for
	// an in-memory fact, otherwise the name of the StorageProvider that
	// produced it. Never consulted by Unify or the resolver (SPEC_FULL §4).
	Source string
}

// NewFact builds a Fact. Arity is len(args).
func NewFact(predicate string, args ...Term) Fact {
	return Fact{Predicate: predicate, Args: args}
}

func (f Fact) Arity() int { return len(f.Args) }

// Valid reports whether f has a non-empty predicate (spec §3, §7).
func (f Fact) Valid() bool {
	return strings.TrimSpace(f.Predicate) != ""
}

func (f Fact) String() string {
	return Term{kind: KindCompound, functor: f.Predicate, args: f.Args}.String()
}

// AsTerm views f as a Compound term, for use with Unify/Walk/FullResolve.
func (f Fact) AsTerm() Term {
	return NewCompound(f.Predicate, f.Args...)
}

// FactFromTerm recovers a Fact from a Compound term — the inverse of
// AsTerm, used after parsing a goal/head/body line.
func FactFromTerm(t Term) Fact {
	if !t.IsCompound() {
		panic("engine: FactFromTerm on non-compound term")
	}
	return Fact{Predicate: t.Functor(), Args: t.Args()}
}

// UnifyFacts unifies two Facts: predicates must be equal, arities must
// match, argument lists unify pairwise left to right (spec §4.2).
func UnifyFacts(goal, fact Fact, env Environment) (Environment, bool) {
	if goal.Predicate != fact.Predicate || len(goal.Args) != len(fact.Args) {
		return env, false
	}
	return unifyArgs(goal.Args, fact.Args, env)
}

// Rule is a Horn clause: a head Fact plus a non-empty ordered list of body
// goals. A Rule is valid only when its head's predicate is non-empty and
// its body is non-empty; a clause with no body is a Fact, never a Rule
// (spec §3).
type Rule struct {
	Head Fact
	Body []Fact
}

func (r Rule) Valid() bool {
	return r.Head.Valid() && len(r.Body) > 0
}

func (r Rule) String() string {
	var b strings.Builder
	b.WriteString(r.Head.String())
	b.WriteString(" :- ")
	for i, g := range r.Body {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(g.String())
	}
	b.WriteByte('.')
	return b.String()
}
