package replsvc

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"logicdb/pkg/engine"
)

func runSession(t *testing.T, script string) string {
	t.Helper()
	store := engine.NewStore()
	var out bytes.Buffer
	err := Repl(context.Background(), store, strings.NewReader(script), &out, zap.NewNop())
	require.NoError(t, err)
	return out.String()
}

func TestReplAssertThenQuery(t *testing.T) {
	out := runSession(t, "assert parent(tom, bob).\n?- parent(tom, bob)\nquit\n")
	assert.Contains(t, out, "ok")
	assert.Contains(t, out, "yes")
}

func TestReplQueryWithNoSolutionsPrintsNo(t *testing.T) {
	out := runSession(t, "assert parent(tom, bob).\n?- parent(bob, tom)\nquit\n")
	assert.Contains(t, out, "no")
}

func TestReplRuleThenDerivedQuery(t *testing.T) {
	script := strings.Join([]string{
		"assert parent(tom, bob).",
		"assert parent(bob, ann).",
		"rule grandparent(X, Z) :- parent(X, Y), parent(Y, Z).",
		"?- grandparent(tom, ann)",
		"quit",
	}, "\n") + "\n"
	out := runSession(t, script)
	assert.Contains(t, out, "yes")
}

func TestReplFactsListsAssertedFacts(t *testing.T) {
	out := runSession(t, "assert color(sky, blue).\nfacts\nquit\n")
	assert.Contains(t, out, "color(sky, blue).")
}

func TestReplMalformedAssertReportsError(t *testing.T) {
	out := runSession(t, "assert parent(tom, .\nquit\n")
	assert.Contains(t, out, "error:")
}

func TestReplHelpListsCommands(t *testing.T) {
	out := runSession(t, "help\nquit\n")
	assert.Contains(t, out, "quit")
	assert.Contains(t, out, "?- <goal>")
}
