package engine

import (
	"fmt"

	"logicdb/pkg/compiler"
)

// FromNode converts a parser Node into a Term.
func FromNode(n compiler.Node) Term {
	switch n.Kind {
	case compiler.NodeVariable:
		return NewVariable(n.Name)
	case compiler.NodeConstant:
		return NewConstant(n.Name)
	case compiler.NodeNumber:
		return NewNumber(n.Name)
	case compiler.NodeCompound:
		args := make([]Term, len(n.Args))
		for i, a := range n.Args {
			args[i] = FromNode(a)
		}
		return NewCompound(n.Functor, args...)
	case compiler.NodeList:
		if n.Head == nil {
			return EmptyList()
		}
		return Cons(FromNode(*n.Head), FromNode(*n.Tail))
	default:
		panic(fmt.Sprintf("engine: unknown node kind %v", n.Kind))
	}
}

// FactFromNode converts a parsed Node into a Fact. A bare Constant is
// accepted as a zero-arity predicate; any other non-Compound shape (a
// Variable, Number or List at the top level of a fact/goal) is not a
// legal predicate application.
func FactFromNode(n compiler.Node) (Fact, error) {
	switch n.Kind {
	case compiler.NodeCompound:
		return FactFromTerm(FromNode(n)), nil
	case compiler.NodeConstant:
		return NewFact(n.Name), nil
	default:
		return Fact{}, &compiler.ParseError{Fragment: FromNode(n).String(), Msg: "not a valid predicate application"}
	}
}

// ParseGoal parses text as a single fact/goal in the given mode and
// converts it to a Fact (spec §4.1, §4.5).
func ParseGoal(mode compiler.Mode, text string) (Fact, error) {
	n, err := compiler.NewParser(mode, text).ParseGoal()
	if err != nil {
		return Fact{}, err
	}
	return FactFromNode(n)
}
