// Package replsvc implements the line-based REPL surface over the core
// engine (spec §6): "assert ", "rule ", "?- ", bare "facts", "rules",
// "load <path>", "help", "quit". Grounded on the teacher's own
// resolver/repl/repl.go loop, generalized from a yacc-generated grammar to
// the engine's compiler.Parser since the REPL now drives the new core
// directly rather than through a separate goyacc grammar.
package replsvc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"logicdb/pkg/compiler"
	"logicdb/pkg/engine"
)

type session struct {
	store    *engine.Store
	resolver *engine.Resolver
	logger   *zap.Logger
}

// Repl runs an interactive read-eval-print loop over store, reading lines
// from in and writing to out, until "quit" or EOF.
func Repl(ctx context.Context, store *engine.Store, in io.Reader, out io.Writer, logger *zap.Logger) error {
	s := &session{store: store, resolver: engine.NewResolver(store), logger: logger}
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "?- ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch {
		case line == "quit" || line == "exit":
			return nil
		case line == "help":
			printHelp(out)
		case line == "facts":
			s.printFacts(out)
		case line == "rules":
			s.printRules(out)
		case strings.HasPrefix(line, "load "):
			s.loadFile(strings.TrimSpace(line[len("load "):]), out)
		case strings.HasPrefix(line, "assert "):
			s.assertFact(strings.TrimSpace(line[len("assert "):]), out)
		case strings.HasPrefix(line, "rule "):
			s.assertRule(strings.TrimSpace(line[len("rule "):]), out)
		case strings.HasPrefix(line, "?- "):
			s.runQuery(ctx, strings.TrimSpace(line[len("?- "):]), out)
		default:
			s.runQuery(ctx, line, out)
		}
	}
}

func printHelp(out io.Writer) {
	fmt.Fprintln(out, "assert <fact>.          add a fact, e.g. assert parent(tom, bob).")
	fmt.Fprintln(out, "rule <head> :- <body>.  add a rule")
	fmt.Fprintln(out, "?- <goal>               run a query, e.g. ?- parent(tom, ?X)")
	fmt.Fprintln(out, "facts                   list every stored fact")
	fmt.Fprintln(out, "rules                   list every stored rule")
	fmt.Fprintln(out, "load <path>             load a clause file")
	fmt.Fprintln(out, "quit                    leave the REPL")
}

func (s *session) printFacts(out io.Writer) {
	for _, predicate := range s.store.Predicates() {
		for _, f := range s.store.Facts(predicate) {
			fmt.Fprintln(out, f.String()+".")
		}
	}
}

func (s *session) printRules(out io.Writer) {
	for _, r := range s.store.Rules() {
		fmt.Fprintln(out, r.String())
	}
}

func (s *session) loadFile(path string, out io.Writer) {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(out, "error:", err)
		return
	}
	defer f.Close()
	if err := s.store.Load(f); err != nil {
		fmt.Fprintln(out, "error:", err)
		return
	}
	s.logger.Info("loaded clause file", zap.String("path", path))
	fmt.Fprintln(out, "ok")
}

func (s *session) assertFact(text string, out io.Writer) {
	text = strings.TrimSuffix(text, ".")
	fact, err := engine.ParseGoal(compiler.ModeRuleFile, text)
	if err != nil {
		fmt.Fprintln(out, "error:", err)
		return
	}
	if err := s.store.AddFact(fact); err != nil {
		fmt.Fprintln(out, "error:", err)
		return
	}
	s.logger.Debug("asserted fact", zap.String("fact", fact.String()))
	fmt.Fprintln(out, "ok")
}

func (s *session) assertRule(text string, out io.Writer) {
	text = strings.TrimSuffix(text, ".")
	idx := strings.Index(text, ":-")
	if idx < 0 {
		fmt.Fprintln(out, "error: rule is missing \":-\"")
		return
	}
	head, err := engine.ParseGoal(compiler.ModeRuleFile, strings.TrimSpace(text[:idx]))
	if err != nil {
		fmt.Fprintln(out, "error:", err)
		return
	}
	var body []engine.Fact
	for _, g := range compiler.SplitGoals(strings.TrimSpace(text[idx+2:])) {
		goal, err := engine.ParseGoal(compiler.ModeRuleFile, g)
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			return
		}
		body = append(body, goal)
	}
	if err := s.store.AddRule(engine.Rule{Head: head, Body: body}); err != nil {
		fmt.Fprintln(out, "error:", err)
		return
	}
	s.logger.Debug("asserted rule", zap.String("head", head.String()))
	fmt.Fprintln(out, "ok")
}

func (s *session) runQuery(ctx context.Context, text string, out io.Writer) {
	bindings, err := engine.Query(ctx, s.resolver, text)
	if err != nil {
		fmt.Fprintln(out, "error:", err)
		return
	}
	if len(bindings) == 0 {
		fmt.Fprintln(out, "no")
		return
	}
	for _, b := range bindings {
		fmt.Fprintln(out, b.String())
	}
	fmt.Fprintln(out, "yes")
	s.logger.Debug("query answered", zap.String("query", text), zap.Int("solutions", len(bindings)))
}
