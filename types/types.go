package types

import (
	"fmt"
	"strings"
)

type Kind int

const (
	UnresolvedKind Kind = iota
	IntKind
	BoolKind
	StrKind
	NamedKind
	AliasKind
	RefKind
	SinkKind
	InstanceKind
	StructKind
	FuncKind
)

// Type is the interface for all types in our language.
type Type interface {
	String() string
	Kind() Kind
}

// Common concrete types (aliases) for readability.
// Int and Bool are comparable by value so they are safe as map keys.
var (
	I64  Type = Int{Width: 64}
	Bool Type = BoolType{}
)

type Unresolved struct{}

func (u Unresolved) Kind() Kind     { return UnresolvedKind }
func (u Unresolved) String() string { return "?" }

// Int represents an integer type with a given bit width.
type Int struct {
	Width uint32 // e.g. 8, 16, 32, 64
}

func (i Int) String() string {
	return fmt.Sprintf("I%d", i.Width)
}

func (i Int) Kind() Kind {
	return IntKind
}

type BoolType struct{}

func (b BoolType) String() string { return "Bool" }
func (b BoolType) Kind() Kind     { return BoolKind }

// Str represents a string type.
type Str struct{}

func (s Str) String() string { return "Str" }
func (s Str) Kind() Kind     { return StrKind }

// OpName identifies one of the three lifecycle operations a type may carry.
type OpName int

const (
	OpCopy OpName = iota
	OpSink
	OpDestroy
)

func (o OpName) String() string {
	switch o {
	case OpCopy:
		return "copy"
	case OpSink:
		return "sink"
	case OpDestroy:
		return "destroy"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Operator is one attached lifecycle operation. An operator stored on a
// generic instantiation may itself be a specialization: Impl then points at
// the operator actually used inside the instantiated template body, and the
// call must be redirected there. Generic marks a still-unspecialized
// template operator; reaching one with no Impl is a compile error.
type Operator struct {
	Name    string // qualified routine name, e.g. "File.destroy"
	Generic bool
	Impl    *Operator
}

// Lifecycle is the optional triple of lifecycle operations attached to a
// named type. A type owns a resource iff Destroy is non-nil.
type Lifecycle struct {
	Copy    *Operator
	Sink    *Operator
	Destroy *Operator
}

func (l *Lifecycle) Op(name OpName) *Operator {
	if l == nil {
		return nil
	}
	switch name {
	case OpCopy:
		return l.Copy
	case OpSink:
		return l.Sink
	default:
		return l.Destroy
	}
}

// Named is a declared nominal type, the only layer lifecycle operations
// attach to directly.
type Named struct {
	Name string
	Ops  *Lifecycle
}

func (n *Named) String() string { return n.Name }
func (n *Named) Kind() Kind     { return NamedKind }

// Alias is a transparent name for another type.
type Alias struct {
	Name string
	Elem Type
}

func (a *Alias) String() string { return a.Name }
func (a *Alias) Kind() Kind     { return AliasKind }

// Ref is a by-reference view of Elem. A Ref never owns the resource.
type Ref struct {
	Elem Type
}

func (r *Ref) String() string { return "ref " + r.Elem.String() }
func (r *Ref) Kind() Kind     { return RefKind }

// SinkOf wraps the type of a sink parameter. The wrapper marks the calling
// convention; ownership semantics come from the element type.
type SinkOf struct {
	Elem Type
}

func (s *SinkOf) String() string { return "sink " + s.Elem.String() }
func (s *SinkOf) Kind() Kind     { return SinkKind }

// Instance is a generic instantiation, e.g. Box[File]. Ops, when set, holds
// the specialized lifecycle operators for this instantiation; when nil the
// generic's own operators apply.
type Instance struct {
	Generic *Named
	Args    []Type
	Ops     *Lifecycle
}

func (i *Instance) String() string {
	args := make([]string, len(i.Args))
	for k, a := range i.Args {
		args[k] = a.String()
	}
	return fmt.Sprintf("%s[%s]", i.Generic.Name, strings.Join(args, ", "))
}

func (i *Instance) Kind() Kind { return InstanceKind }

// Field is one named slot of a Struct.
type Field struct {
	Name string
	Type Type
}

// Struct is a product type with named, append-only fields. The middle end
// uses it for the synthetic per-procedure temporary frame.
type Struct struct {
	Name   string
	Fields []Field
}

func (s *Struct) String() string { return s.Name }
func (s *Struct) Kind() Kind     { return StructKind }

// AddField appends a slot and returns it. Fields are never removed or
// reused; slot identity is stable for the life of the struct.
func (s *Struct) AddField(name string, t Type) Field {
	f := Field{Name: name, Type: t}
	s.Fields = append(s.Fields, f)
	return f
}

// PassMode is how a routine parameter receives its argument.
type PassMode int

const (
	ByValue PassMode = iota
	BySink           // callee takes ownership
	ByMut            // by-reference, callee may write through
)

// Param is one parameter of a routine signature.
type Param struct {
	Name string
	Type Type
	Mode PassMode
}

// Func is a routine signature. Result is nil for routines returning nothing.
type Func struct {
	Name   string
	Params []Param
	Result Type
}

func (f *Func) String() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		mode := ""
		switch p.Mode {
		case BySink:
			mode = "sink "
		case ByMut:
			mode = "mut "
		}
		params[i] = fmt.Sprintf("%s%s: %s", mode, p.Name, p.Type.String())
	}
	sig := fmt.Sprintf("%s(%s)", f.Name, strings.Join(params, ", "))
	if f.Result != nil {
		sig += ": " + f.Result.String()
	}
	return sig
}

func (f *Func) Kind() Kind { return FuncKind }

// StripWrappers peels alias, reference, sink and generic-instantiation
// layers until it reaches the layer lifecycle lookups operate on.
func StripWrappers(t Type) Type {
	for {
		switch w := t.(type) {
		case *Alias:
			t = w.Elem
		case *Ref:
			t = w.Elem
		case *SinkOf:
			t = w.Elem
		case *Instance:
			if w.Ops != nil {
				return w
			}
			t = w.Generic
		default:
			return t
		}
	}
}

// OwnsResource reports whether values of t need a destructor call when
// their lifetime ends.
func OwnsResource(t Type) bool {
	if t == nil {
		return false
	}
	switch s := StripWrappers(t).(type) {
	case *Named:
		return s.Ops != nil && s.Ops.Destroy != nil
	case *Instance:
		return s.Ops != nil && s.Ops.Destroy != nil
	default:
		return false
	}
}

// LifecycleOf returns the lifecycle triple reachable from t, or nil.
func LifecycleOf(t Type) *Lifecycle {
	switch s := StripWrappers(t).(type) {
	case *Named:
		return s.Ops
	case *Instance:
		return s.Ops
	default:
		return nil
	}
}
