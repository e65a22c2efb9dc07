package compiler

import (
	"github.com/soren-lang/soren/types"
)

// SymKind classifies declared entities. The middle end creates Temp and
// Flag symbols; everything else comes from the checker.
type SymKind int

const (
	Local SymKind = iota
	Param
	SinkParam
	Result
	Temp
	Flag
	Routine
)

func (k SymKind) String() string {
	switch k {
	case Local:
		return "local"
	case Param:
		return "param"
	case SinkParam:
		return "sink param"
	case Result:
		return "result"
	case Temp:
		return "temp"
	case Flag:
		return "flag"
	case Routine:
		return "routine"
	default:
		return "symbol"
	}
}

// Symbol is a declared entity. Symbols are allocated once and referenced
// by identity; the middle end never mutates an existing symbol.
type Symbol struct {
	Name string
	Kind SymKind
	Type types.Type
}

// Movable reports whether the symbol's kind allows treating a last read as
// a consuming move. Parameters are caller-owned, so only plain locals,
// temporaries and the result variable qualify.
func (s *Symbol) Movable() bool {
	return s.Kind == Local || s.Kind == Temp || s.Kind == Result
}
