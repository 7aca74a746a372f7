// Package compiler tokenizes and parses clause-file and query text into a
// mode-independent term tree (spec §4.1). It has no dependency on package
// engine; engine converts the resulting Node tree into its own Term values
// (see engine's convert.go), mirroring the teacher's split between a
// compiler-local AST and the engine's runtime term representation.
package compiler

import (
	"fmt"
	"strings"
)

// Mode selects how a bare identifier token is classified as a variable
// (spec §4.1).
type Mode int

const (
	// ModeQuery treats identifiers prefixed with '?' as variables; the
	// prefix is stripped when stored.
	ModeQuery Mode = iota
	// ModeRuleFile treats identifiers starting with an uppercase letter
	// or underscore as variables.
	ModeRuleFile
)

type tokenKind int

const (
	tokInvalid tokenKind = iota
	tokIdentifier
	tokVariable
	tokNumber
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokPipe
	tokComma
	tokEOF
)

type token struct {
	kind tokenKind
	text string
}

// ParseError reports a malformed token stream: an unbalanced delimiter, an
// unexpected end of input, a missing comma-separated term, or leftover
// tokens after a complete top-level fact (spec §4.1, §7).
type ParseError struct {
	Fragment string
	Msg      string
}

func (e *ParseError) Error() string {
	if e.Fragment == "" {
		return "parse error: " + e.Msg
	}
	return fmt.Sprintf("parse error: %s (at %q)", e.Msg, e.Fragment)
}

func parseErrf(fragment, format string, args ...any) *ParseError {
	return &ParseError{Fragment: fragment, Msg: fmt.Sprintf(format, args...)}
}

// tokenizer turns source text into a token stream with one token of
// lookahead. An identifier's first character determines its token class
// before the variable-naming mode is applied.
type tokenizer struct {
	mode  Mode
	input []rune
	pos   int
	next  *token
}

func newTokenizer(mode Mode, input string) *tokenizer {
	return &tokenizer{mode: mode, input: []rune(input)}
}

func (t *tokenizer) peek() token {
	if t.next == nil {
		tok := t.scan()
		t.next = &tok
	}
	return *t.next
}

func (t *tokenizer) get() token {
	tok := t.peek()
	t.next = nil
	return tok
}

func (t *tokenizer) peekRune() rune {
	if t.pos >= len(t.input) {
		return -1
	}
	return t.input[t.pos]
}

func (t *tokenizer) getRune() rune {
	r := t.peekRune()
	if r != -1 {
		t.pos++
	}
	return r
}

func (t *tokenizer) scan() token {
	for {
		r := t.peekRune()
		if r == -1 {
			return token{kind: tokEOF}
		}
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			t.getRune()
			continue
		}
		break
	}
	r := t.getRune()
	switch r {
	case '(':
		return token{kind: tokLParen}
	case ')':
		return token{kind: tokRParen}
	case '[':
		return token{kind: tokLBracket}
	case ']':
		return token{kind: tokRBracket}
	case '|':
		return token{kind: tokPipe}
	case ',':
		return token{kind: tokComma}
	case '\'':
		return t.scanQuotedAtom()
	case '?':
		name := t.scanWhile(isIdentChar)
		return token{kind: tokVariable, text: name}
	}
	if r == '-' && isDigit(t.peekRune()) {
		return token{kind: tokNumber, text: "-" + t.scanWhile(isDigit)}
	}
	if isDigit(r) {
		return token{kind: tokNumber, text: string(r) + t.scanWhile(isDigit)}
	}
	if isIdentStart(r) {
		name := string(r) + t.scanWhile(isIdentChar)
		if t.mode == ModeRuleFile && (isUpper(r) || r == '_') {
			return token{kind: tokVariable, text: name}
		}
		return token{kind: tokIdentifier, text: name}
	}
	return token{kind: tokInvalid, text: string(r)}
}

// scanQuotedAtom consumes a single-quoted run of characters as an atom
// token, letting atoms contain spaces or uppercase letters — grounded on
// original_source's query_parser.cpp and the teacher's own tokenizer
// (SPEC_FULL §4).
func (t *tokenizer) scanQuotedAtom() token {
	var b strings.Builder
	for {
		r := t.getRune()
		if r == -1 || r == '\n' {
			return token{kind: tokInvalid, text: "'" + b.String()}
		}
		if r == '\'' {
			return token{kind: tokIdentifier, text: b.String()}
		}
		b.WriteRune(r)
	}
}

func (t *tokenizer) scanWhile(pred func(rune) bool) string {
	var b strings.Builder
	for pred(t.peekRune()) {
		b.WriteRune(t.getRune())
	}
	return b.String()
}

func isDigit(r rune) bool      { return r >= '0' && r <= '9' }
func isUpper(r rune) bool      { return r >= 'A' && r <= 'Z' }
func isLower(r rune) bool      { return r >= 'a' && r <= 'z' }
func isIdentStart(r rune) bool { return isLower(r) || isUpper(r) || r == '_' }
func isIdentChar(r rune) bool  { return isIdentStart(r) || isDigit(r) }
