// Package tui is a read-only terminal browser over a Store's facts and
// rules, grounded on the teacher's own snake/snake3/main.go
// (github.com/gdamore/tcell/v2 screen setup, a PollEvent loop dispatching
// on *tcell.EventKey/*tcell.EventResize, hjkl-style navigation). The
// browser never mutates the store, consistent with spec §5's read-only-
// during-a-query model. Like the other internal/* packages apart from
// config, Browse takes a *zap.Logger and logs pane switches and filter changes at Debug.
package tui

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"logicdb/pkg/engine"
)

type pane int

const (
	paneFacts pane = iota
	paneRules
)

// Browse opens a full-screen terminal view of store's facts (grouped by
// predicate, in the order of predicates) and rules. j/k move, tab switches panes, / filters
// by predicate substring, q quits.
func Browse(store *engine.Store, predicates []string, logger *zap.Logger) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	style := tcell.StyleDefault.Background(tcell.ColorDefault).Foreground(tcell.ColorDefault)
	screen.SetStyle(style)

	b := &browser{screen: screen, style: style, store: store, predicates: predicates, logger: logger}
	b.render()

	for {
		ev := screen.PollEvent()
		switch ev := ev.(type) {
		case *tcell.EventResize:
			screen.Sync()
			b.render()
		case *tcell.EventKey:
			if b.filtering {
				b.handleFilterKey(ev)
				b.render()
				continue
			}
			switch ev.Rune() {
			case 'q':
				return nil
			case 'j':
				b.move(1)
			case 'k':
				b.move(-1)
			case '/':
				b.filtering = true
				b.filter = ""
			}
			if ev.Key() == tcell.KeyTab {
				b.toggle()
			}
			b.render()
		}
	}
}

type browser struct {
	screen     tcell.Screen
	style      tcell.Style
	store      *engine.Store
	predicates []string
	active     pane
	cursor     int
	logger     *zap.Logger

	filtering bool
	filter    string
}

func (b *browser) toggle() {
	if b.active == paneFacts {
		b.active = paneRules
	} else {
		b.active = paneFacts
	}
	b.cursor = 0
	b.logger.Debug("switched pane", zap.String("pane", b.paneName()))
}

func (b *browser) paneName() string {
	if b.active == paneRules {
		return "rules"
	}
	return "facts"
}

// handleFilterKey updates the predicate-substring filter while "/" input
// capture is active. Enter commits the filter, Escape cancels and clears
// it (no filter applied), Backspace edits the buffer.
func (b *browser) handleFilterKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEnter:
		b.filtering = false
		b.cursor = 0
		b.logger.Debug("applied predicate filter", zap.String("filter", b.filter))
	case tcell.KeyEscape:
		b.filtering = false
		b.filter = ""
		b.cursor = 0
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(b.filter) > 0 {
			b.filter = b.filter[:len(b.filter)-1]
		}
	default:
		if r := ev.Rune(); r != 0 {
			b.filter += string(r)
		}
	}
}

// filteredPredicates returns predicates (in their original order) whose
// name contains the active filter substring. An empty filter matches all.
func (b *browser) filteredPredicates() []string {
	if b.filter == "" {
		return b.predicates
	}
	var out []string
	for _, p := range b.predicates {
		if strings.Contains(p, b.filter) {
			out = append(out, p)
		}
	}
	return out
}

func (b *browser) move(delta int) {
	n := len(b.lines())
	if n == 0 {
		return
	}
	b.cursor = (b.cursor + delta + n) % n
}

func (b *browser) lines() []string {
	if b.active == paneRules {
		rules := b.store.Rules()
		lines := make([]string, len(rules))
		for i, r := range rules {
			lines[i] = r.String()
		}
		return lines
	}
	var lines []string
	for _, predicate := range b.filteredPredicates() {
		for _, f := range b.store.Facts(predicate) {
			lines = append(lines, f.String())
		}
	}
	return lines
}

func (b *browser) render() {
	b.screen.Clear()
	title := b.paneName()
	status := fmt.Sprintf("%s  (tab: switch pane, j/k: move, /: filter, q: quit)", title)
	if b.filtering {
		status = fmt.Sprintf("filter: %s_  (enter: apply, esc: cancel)", b.filter)
	} else if b.filter != "" {
		status = fmt.Sprintf("%s  (filter: %q, /: change, q: quit)", title, b.filter)
	}
	b.drawText(0, 0, status)

	for i, line := range b.lines() {
		style := b.style
		if i == b.cursor {
			style = style.Reverse(true)
		}
		b.drawTextStyled(0, i+2, line, style)
	}
	b.screen.Show()
}

func (b *browser) drawText(x, y int, s string) {
	b.drawTextStyled(x, y, s, b.style)
}

func (b *browser) drawTextStyled(x, y int, s string, style tcell.Style) {
	for i, r := range s {
		b.screen.SetContent(x+i, y, r, nil, style)
	}
}
