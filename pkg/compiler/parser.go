package compiler

import "strings"

// NodeKind mirrors engine.Kind without importing package engine.
type NodeKind int

const (
	NodeVariable NodeKind = iota
	NodeConstant
	NodeNumber
	NodeCompound
	NodeList
)

// Node is the parser's term tree: a mode-independent mirror of
// engine.Term. engine's convert.go turns a Node into a Term.
type Node struct {
	Kind NodeKind

	Name string // Variable, Constant, Number

	Functor string // Compound
	Args    []Node // Compound

	Head *Node // List cons cell (nil Head means the empty list)
	Tail *Node
}

func emptyListNode() Node { return Node{Kind: NodeList} }

func consNode(head, tail Node) Node {
	return Node{Kind: NodeList, Head: &head, Tail: &tail}
}

// Parser is a single-token-lookahead recursive-descent parser for one
// fact/goal per call (spec §4.1). It does not parse ":-": Store.Load splits
// a clause line into head and body goals (see SplitGoals) before parsing
// each one.
type Parser struct {
	mode Mode
	tok  *tokenizer
}

// NewParser builds a Parser over src in the given naming mode.
func NewParser(mode Mode, src string) *Parser {
	return &Parser{mode: mode, tok: newTokenizer(mode, src)}
}

// ParseGoal parses a single top-level fact/goal and fails if any tokens
// remain afterward (spec §4.1: "tokens remain after a complete top-level
// fact").
func (p *Parser) ParseGoal() (Node, error) {
	n, err := p.parseTerm()
	if err != nil {
		return Node{}, err
	}
	if tail := p.tok.peek(); tail.kind != tokEOF {
		return Node{}, parseErrf(tail.text, "unexpected tokens after complete term")
	}
	return n, nil
}

// ParseTerm parses a single term without requiring the input to be
// exhausted afterward — used for nested arguments and for tests.
func (p *Parser) ParseTerm() (Node, error) {
	return p.parseTerm()
}

func (p *Parser) parseTerm() (Node, error) {
	t := p.tok.get()
	switch t.kind {
	case tokNumber:
		return Node{Kind: NodeNumber, Name: t.text}, nil
	case tokVariable:
		return Node{Kind: NodeVariable, Name: t.text}, nil
	case tokIdentifier:
		if p.tok.peek().kind == tokLParen {
			p.tok.get()
			args, err := p.parseTermList(tokRParen)
			if err != nil {
				return Node{}, err
			}
			return Node{Kind: NodeCompound, Functor: t.text, Args: args}, nil
		}
		return Node{Kind: NodeConstant, Name: t.text}, nil
	case tokLBracket:
		return p.parseList()
	case tokEOF:
		return Node{}, parseErrf("", "unexpected end of input, expected a term")
	default:
		return Node{}, parseErrf(t.text, "unexpected token, expected a term")
	}
}

// parseTermList parses a comma-separated, non-empty list of terms followed
// by close (already expected to be the next token once terms are
// exhausted).
func (p *Parser) parseTermList(close tokenKind) ([]Node, error) {
	var terms []Node
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	terms = append(terms, first)
	for p.tok.peek().kind == tokComma {
		p.tok.get()
		next, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		terms = append(terms, next)
	}
	if err := p.expect(close); err != nil {
		return nil, err
	}
	return terms, nil
}

// parseList parses the body of a list after the opening '[' has been
// consumed: an empty list, or comma-separated terms optionally followed by
// "| tail", closed by ']' (spec §4.1).
func (p *Parser) parseList() (Node, error) {
	if p.tok.peek().kind == tokRBracket {
		p.tok.get()
		return emptyListNode(), nil
	}
	var elems []Node
	first, err := p.parseTerm()
	if err != nil {
		return Node{}, err
	}
	elems = append(elems, first)
	for p.tok.peek().kind == tokComma {
		p.tok.get()
		next, err := p.parseTerm()
		if err != nil {
			return Node{}, err
		}
		elems = append(elems, next)
	}
	tail := emptyListNode()
	if p.tok.peek().kind == tokPipe {
		p.tok.get()
		t, err := p.parseTerm()
		if err != nil {
			return Node{}, err
		}
		tail = t
	}
	if err := p.expect(tokRBracket); err != nil {
		return Node{}, err
	}
	out := tail
	for i := len(elems) - 1; i >= 0; i-- {
		out = consNode(elems[i], out)
	}
	return out, nil
}

func (p *Parser) expect(kind tokenKind) error {
	t := p.tok.get()
	if t.kind != kind {
		return parseErrf(t.text, "missing expected delimiter")
	}
	return nil
}

// SplitGoals splits body on top-level commas only — commas nested inside
// balanced parentheses or brackets do not split goals (spec §4.3, grounded
// on original_source's knowledge_base.cpp paren-counting loader).
func SplitGoals(body string) []string {
	var goals []string
	var cur strings.Builder
	depth := 0
	for _, r := range body {
		switch r {
		case '(', '[':
			depth++
			cur.WriteRune(r)
		case ')', ']':
			depth--
			cur.WriteRune(r)
		case ',':
			if depth == 0 {
				goals = append(goals, strings.TrimSpace(cur.String()))
				cur.Reset()
				continue
			}
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		goals = append(goals, s)
	}
	return goals
}
