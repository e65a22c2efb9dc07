package compiler

import (
	"fmt"

	"github.com/soren-lang/soren/ast"
	"github.com/soren-lang/soren/token"
	"github.com/soren-lang/soren/types"
)

// EventKind labels one entry of the flattened dataflow stream.
type EventKind int

const (
	DefEvent     EventKind = iota // definition of a symbol
	UseEvent                      // plain read of a symbol
	UseCallEvent                  // read captured by a call (by-reference argument)
	GotoEvent                     // unconditional jump to Dest
	ForkEvent                     // conditional jump to Dest
)

func (k EventKind) String() string {
	switch k {
	case DefEvent:
		return "def"
	case UseEvent:
		return "use"
	case UseCallEvent:
		return "usecall"
	case GotoEvent:
		return "goto"
	case ForkEvent:
		return "fork"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is one entry of the stream: a def/use of Name, or a jump to the
// event index Dest.
type Event struct {
	Kind  EventKind
	Name  string
	Dest  int
	Token token.Token
}

func (e Event) String() string {
	if e.Kind == GotoEvent || e.Kind == ForkEvent {
		return fmt.Sprintf("%s %d", e.Kind, e.Dest)
	}
	return fmt.Sprintf("%s %s", e.Kind, e.Name)
}

// CFG is the control-flow input of the destructor pass: an ordered event
// stream for one procedure body. The pass treats it as read-only.
type CFG struct {
	Events []Event

	targets map[int]bool
}

// JumpTargets derives, once, the set of event indices that are the
// destination of some jump or fork. These mark basic-block boundaries.
func (cfg *CFG) JumpTargets() map[int]bool {
	if cfg.targets != nil {
		return cfg.targets
	}
	cfg.targets = make(map[int]bool)
	for _, ev := range cfg.Events {
		if ev.Kind == GotoEvent || ev.Kind == ForkEvent {
			cfg.targets[ev.Dest] = true
		}
	}
	return cfg.targets
}

type cfgBuilder struct {
	info   *ProcInfo
	events []Event
	exits  []int // indices of gotos that jump to the procedure exit
}

// BuildCFG flattens a procedure body into the event stream. Parameters
// count as defined at entry.
func BuildCFG(info *ProcInfo, body *ast.BlockStatement) *CFG {
	b := &cfgBuilder{info: info}
	for _, p := range info.Params {
		b.emit(Event{Kind: DefEvent, Name: p.Name})
	}
	b.block(body)

	// Returns jump past the last event.
	for _, i := range b.exits {
		b.events[i].Dest = len(b.events)
	}
	return &CFG{Events: b.events}
}

func (b *cfgBuilder) emit(ev Event) int {
	b.events = append(b.events, ev)
	return len(b.events) - 1
}

func (b *cfgBuilder) block(block *ast.BlockStatement) {
	for _, stmt := range block.Statements {
		b.stmt(stmt)
	}
}

func (b *cfgBuilder) stmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VarStatement:
		// Reads of every initializer first, then the writes.
		for _, v := range s.Values {
			b.expr(v)
		}
		for _, n := range s.Names {
			b.emit(Event{Kind: DefEvent, Name: n.Value, Token: n.Token})
		}

	case *ast.AssignStatement:
		b.expr(s.Value)
		if target, ok := s.Target.(*ast.Identifier); ok {
			b.emit(Event{Kind: DefEvent, Name: target.Value, Token: target.Token})
		}

	case *ast.ExpressionStatement:
		b.expr(s.Expression)

	case *ast.ReturnStatement:
		if s.Value != nil {
			b.expr(s.Value)
		}
		b.exits = append(b.exits, b.emit(Event{Kind: GotoEvent, Token: s.Token}))

	case *ast.IfStatement:
		b.expr(s.Cond)
		fork := b.emit(Event{Kind: ForkEvent, Token: s.Token})
		b.block(s.Then)
		if s.Else == nil {
			b.events[fork].Dest = len(b.events)
			return
		}
		exit := b.emit(Event{Kind: GotoEvent, Token: s.Token})
		b.events[fork].Dest = len(b.events)
		b.block(s.Else)
		b.events[exit].Dest = len(b.events)

	case *ast.WhileStatement:
		top := len(b.events)
		b.expr(s.Cond)
		fork := b.emit(Event{Kind: ForkEvent, Token: s.Token})
		b.block(s.Body)
		b.emit(Event{Kind: GotoEvent, Dest: top, Token: s.Token})
		b.events[fork].Dest = len(b.events)

	case *ast.BlockStatement:
		b.block(s)

	case *ast.AssertStatement:
		b.expr(s.Cond)

	case *ast.EnsureStatement:
		b.block(s.Body)
		b.block(s.Cleanup)

	case *ast.TypeStatement, *ast.FnStatement, *ast.ProcStatement:
		// Static declarations produce no runtime events.

	default:
		panic(fmt.Sprintf("unhandled statement type: %T", s))
	}
}

// expr walks an expression left to right, emitting a use for every
// variable read. Arguments bound to by-reference parameters are captures:
// their last-read status cannot be decided locally.
func (b *cfgBuilder) expr(e ast.Expression) {
	switch e := e.(type) {
	case *ast.IntegerLiteral, *ast.BoolLiteral, *ast.StringLiteral:

	case *ast.Identifier:
		b.emit(Event{Kind: UseEvent, Name: e.Value, Token: e.Token})

	case *ast.PrefixExpression:
		b.expr(e.Right)

	case *ast.InfixExpression:
		b.expr(e.Left)
		b.expr(e.Right)

	case *ast.MoveExpression:
		b.expr(e.X)

	case *ast.FieldExpression:
		b.expr(e.X)

	case *ast.SeqExpression:
		for _, s := range e.Stmts {
			b.stmt(s)
		}
		b.expr(e.Value)

	case *ast.CallExpression:
		sig, _ := b.info.Sig(e.Function.Value)
		for i, arg := range e.Arguments {
			ident, isIdent := arg.(*ast.Identifier)
			if isIdent && sig != nil && i < len(sig.Params) && sig.Params[i].Mode == types.ByMut {
				b.emit(Event{Kind: UseCallEvent, Name: ident.Value, Token: ident.Token})
				continue
			}
			b.expr(arg)
		}

	default:
		panic(fmt.Sprintf("unhandled expression type: %T", e))
	}
}
