package engine

import (
	"bufio"
	"io"
	"sort"
	"strings"

	"logicdb/pkg/compiler"
)

// Store holds an append-only per-predicate fact index and a single
// append-only ordered rule list (spec §3, §4.3). The zero value is ready
// to use.
type Store struct {
	facts map[string][]Fact
	rules []Rule
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{facts: make(map[string][]Fact)}
}

// AddFact appends fact to the store. Declines (returning an
// *InvalidClauseError) a fact whose predicate is empty.
func (s *Store) AddFact(fact Fact) error {
	if !fact.Valid() {
		return &InvalidClauseError{Reason: "fact has an empty predicate"}
	}
	if s.facts == nil {
		s.facts = make(map[string][]Fact)
	}
	s.facts[fact.Predicate] = append(s.facts[fact.Predicate], fact)
	return nil
}

// AddRule appends rule to the store. Declines a rule whose head predicate
// or body is empty.
func (s *Store) AddRule(rule Rule) error {
	if !rule.Valid() {
		return &InvalidClauseError{Reason: "rule has an empty head predicate or empty body"}
	}
	s.rules = append(s.rules, rule)
	return nil
}

// Facts returns the facts stored under predicate, in insertion order. An
// unknown predicate yields an empty, non-nil slice.
func (s *Store) Facts(predicate string) []Fact {
	facts := s.facts[predicate]
	out := make([]Fact, len(facts))
	copy(out, facts)
	return out
}

// Rules returns every rule in the store, in insertion order.
func (s *Store) Rules() []Rule {
	return append([]Rule(nil), s.rules...)
}

// Predicates returns every predicate that has at least one fact, sorted
// alphabetically. Rule heads are not included — callers
// that want every predicate a goal could resolve against should also scan
// Rules().
func (s *Store) Predicates() []string {
	predicates := make([]string, 0, len(s.facts))
	for predicate := range s.facts {
		predicates = append(predicates, predicate)
	}
	sort.Strings(predicates)
	return predicates
}

// Load reads clause-file text (spec §6 grammar) line by line, adding facts
// and rules to s. Comments ("%" after leading whitespace) and blank lines
// are skipped; a trailing "." is stripped; a line containing ":-" is a rule
// (head before, comma-separated body after, split only at paren/bracket
// depth zero); any other line is a fact. Head and body goals are parsed in
// rule/fact-file mode (spec §4.3).
func (s *Store) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		line = strings.TrimSuffix(line, ".")
		if err := s.loadLine(line); err != nil {
			return &LoadError{Line: lineNo, Err: err}
		}
	}
	if err := scanner.Err(); err != nil {
		return &LoadError{Err: err}
	}
	return nil
}

func (s *Store) loadLine(line string) error {
	if idx := strings.Index(line, ":-"); idx >= 0 {
		head := strings.TrimSpace(line[:idx])
		body := strings.TrimSpace(line[idx+2:])

		headFact, err := ParseGoal(compiler.ModeRuleFile, head)
		if err != nil {
			return err
		}

		goalTexts := compiler.SplitGoals(body)
		bodyFacts := make([]Fact, len(goalTexts))
		for i, g := range goalTexts {
			bf, err := ParseGoal(compiler.ModeRuleFile, g)
			if err != nil {
				return err
			}
			bodyFacts[i] = bf
		}
		return s.AddRule(Rule{Head: headFact, Body: bodyFacts})
	}

	fact, err := ParseGoal(compiler.ModeRuleFile, line)
	if err != nil {
		return err
	}
	return s.AddFact(fact)
}
