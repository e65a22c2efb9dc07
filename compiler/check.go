package compiler

import (
	"fmt"

	"github.com/soren-lang/soren/ast"
	"github.com/soren-lang/soren/token"
	"github.com/soren-lang/soren/types"
)

// ProcInfo is everything the middle end needs to know about one procedure:
// its routine symbol, parameter and result symbols, and every named symbol
// visible in the body. The destructor pass appends the Temp and Flag
// symbols it creates, so Locals only ever grows.
type ProcInfo struct {
	Sym    *Symbol
	Decl   *ast.ProcStatement
	Params []*Symbol
	Result *Symbol // nil when the proc returns nothing
	Locals map[string]*Symbol

	ck *Checker
}

// Lookup resolves a name visible in this procedure body.
func (pi *ProcInfo) Lookup(name string) (*Symbol, bool) {
	s, ok := pi.Locals[name]
	return s, ok
}

// Define registers a symbol created after checking (temporaries, alive
// flags). Existing symbols are never replaced.
func (pi *ProcInfo) Define(s *Symbol) {
	if _, ok := pi.Locals[s.Name]; !ok {
		pi.Locals[s.Name] = s
	}
}

// Sig returns the routine signature the checker built for this proc.
func (pi *ProcInfo) Sig(name string) (*types.Func, bool) {
	f, ok := pi.ck.Funcs[name]
	return f, ok
}

// TypeOf computes an expression's resolved type. The input tree is already
// checked, so unknown names only occur for generated nodes and resolve to
// Unresolved.
func (pi *ProcInfo) TypeOf(e ast.Expression) types.Type {
	switch e := e.(type) {
	case *ast.Identifier:
		if s, ok := pi.Locals[e.Value]; ok {
			return s.Type
		}
		return types.Unresolved{}
	case *ast.IntegerLiteral:
		return types.I64
	case *ast.BoolLiteral:
		return types.Bool
	case *ast.StringLiteral:
		return types.Str{}
	case *ast.PrefixExpression:
		if e.Operator == "!" {
			return types.Bool
		}
		return pi.TypeOf(e.Right)
	case *ast.InfixExpression:
		if e.Token.IsComparison() {
			return types.Bool
		}
		return pi.TypeOf(e.Left)
	case *ast.CallExpression:
		if f, ok := pi.ck.Funcs[e.Function.Value]; ok && f.Result != nil {
			return f.Result
		}
		return types.Unresolved{}
	case *ast.MoveExpression:
		return pi.TypeOf(e.X)
	case *ast.SeqExpression:
		return pi.TypeOf(e.Value)
	case *ast.FieldExpression:
		if st, ok := types.StripWrappers(pi.TypeOf(e.X)).(*types.Struct); ok {
			for _, f := range st.Fields {
				if f.Name == e.Field.Value {
					return f.Type
				}
			}
		}
		return types.Unresolved{}
	default:
		return types.Unresolved{}
	}
}

// Checker performs name and type resolution over a parsed program and
// collects the per-procedure information the middle end consumes.
type Checker struct {
	Types  map[string]types.Type
	Funcs  map[string]*types.Func
	Procs  []*ProcInfo
	errors []*token.CompileError
}

func NewChecker() *Checker {
	return &Checker{
		Types: map[string]types.Type{
			"Int":  types.I64,
			"Bool": types.Bool,
			"Str":  types.Str{},
		},
		Funcs: make(map[string]*types.Func),
	}
}

func (c *Checker) Errors() []*token.CompileError {
	return c.errors
}

func (c *Checker) addError(tok token.Token, msg string) {
	c.errors = append(c.errors, &token.CompileError{Token: tok, Msg: msg})
}

// Check resolves the whole program: declarations first so routines may
// refer to each other, then every proc body.
func (c *Checker) Check(program *ast.Program) []*token.CompileError {
	for _, stmt := range program.Statements {
		switch s := stmt.(type) {
		case *ast.TypeStatement:
			c.declareType(s)
		case *ast.FnStatement:
			c.declareFunc(s.Name, s.Params, s.Result)
		case *ast.ProcStatement:
			sig := c.declareFunc(s.Name, s.Params, s.Result)
			if sig == nil {
				continue
			}
			c.Procs = append(c.Procs, &ProcInfo{
				Sym:  &Symbol{Name: s.Name.Value, Kind: Routine, Type: sig},
				Decl: s,
				ck:   c,
			})
		default:
			c.addError(stmt.Tok(), "only type, fn and proc declarations are allowed at top level")
		}
	}

	for _, info := range c.Procs {
		c.checkProc(info)
	}
	return c.errors
}

func (c *Checker) declareType(s *ast.TypeStatement) {
	name := s.Name.Value
	if _, ok := c.Types[name]; ok {
		c.addError(s.Name.Token, fmt.Sprintf("type %q redeclared", name))
		return
	}

	named := &types.Named{Name: name}
	if len(s.Ops) > 0 {
		lc := &types.Lifecycle{}
		for _, op := range s.Ops {
			operator := &types.Operator{Name: name + "." + op}
			switch op {
			case "copy":
				lc.Copy = operator
			case "sink":
				lc.Sink = operator
			case "destroy":
				lc.Destroy = operator
			}
		}
		named.Ops = lc
	}
	c.Types[name] = named
}

func (c *Checker) declareFunc(name *ast.Identifier, params []*ast.ParamDecl, result *ast.TypeRef) *types.Func {
	if _, ok := c.Funcs[name.Value]; ok {
		c.addError(name.Token, fmt.Sprintf("routine %q redeclared", name.Value))
		return nil
	}

	sig := &types.Func{Name: name.Value}
	for _, p := range params {
		t := c.resolveTypeRef(p.Type)
		mode := types.ByValue
		if p.Sink {
			mode = types.BySink
			t = &types.SinkOf{Elem: t}
		} else if p.Mut {
			mode = types.ByMut
			t = &types.Ref{Elem: t}
		}
		sig.Params = append(sig.Params, types.Param{Name: p.Name.Value, Type: t, Mode: mode})
	}
	if result != nil {
		sig.Result = c.resolveTypeRef(result)
	}
	c.Funcs[name.Value] = sig
	return sig
}

// resolveTypeRef maps a source type annotation to a resolved type. A
// reference with arguments instantiates a generic nominal type.
func (c *Checker) resolveTypeRef(tr *ast.TypeRef) types.Type {
	t, ok := c.Types[tr.Name]
	if !ok {
		c.addError(tr.Token, fmt.Sprintf("type %q has not been defined", tr.Name))
		return types.Unresolved{}
	}
	if len(tr.Args) == 0 {
		return t
	}

	generic, ok := t.(*types.Named)
	if !ok {
		c.addError(tr.Token, fmt.Sprintf("type %q cannot be instantiated", tr.Name))
		return types.Unresolved{}
	}
	inst := &types.Instance{Generic: generic}
	for _, arg := range tr.Args {
		inst.Args = append(inst.Args, c.resolveTypeRef(arg))
	}
	return inst
}

func (c *Checker) checkProc(info *ProcInfo) {
	info.Locals = make(map[string]*Symbol)
	scopes := []Scope[*Symbol]{NewScope[*Symbol](ProcScope)}

	sig := c.Funcs[info.Decl.Name.Value]
	for i, p := range info.Decl.Params {
		kind := Param
		if p.Sink {
			kind = SinkParam
		}
		sym := &Symbol{Name: p.Name.Value, Kind: kind, Type: sig.Params[i].Type}
		if _, ok := Get(scopes, sym.Name); ok {
			c.addError(p.Name.Token, fmt.Sprintf("parameter %q redeclared", sym.Name))
			continue
		}
		Put(scopes, sym.Name, sym)
		info.Locals[sym.Name] = sym
		info.Params = append(info.Params, sym)
	}

	if info.Decl.Result != nil {
		sym := &Symbol{Name: "result", Kind: Result, Type: c.resolveTypeRef(info.Decl.Result)}
		Put(scopes, sym.Name, sym)
		info.Locals[sym.Name] = sym
		info.Result = sym
	}

	c.checkBlock(info, &scopes, info.Decl.Body)
}

func (c *Checker) checkBlock(info *ProcInfo, scopes *[]Scope[*Symbol], block *ast.BlockStatement) {
	PushScope(scopes, BlockScope)
	for _, stmt := range block.Statements {
		c.checkStmt(info, scopes, stmt)
	}
	PopScope(scopes)
}

func (c *Checker) checkStmt(info *ProcInfo, scopes *[]Scope[*Symbol], stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VarStatement:
		c.checkVar(info, scopes, s)
	case *ast.AssignStatement:
		target, ok := s.Target.(*ast.Identifier)
		if !ok {
			c.addError(s.Tok(), fmt.Sprintf("cannot assign to %q", s.Target.String()))
			return
		}
		if _, defined := Get(*scopes, target.Value); !defined {
			c.addError(target.Token, fmt.Sprintf("variable %q has not been defined", target.Value))
		}
		c.checkExpr(info, scopes, s.Value)
	case *ast.ExpressionStatement:
		c.checkExpr(info, scopes, s.Expression)
	case *ast.ReturnStatement:
		if s.Value != nil {
			if info.Result == nil {
				c.addError(s.Tok(), fmt.Sprintf("proc %q returns nothing", info.Decl.Name.Value))
			}
			c.checkExpr(info, scopes, s.Value)
		}
	case *ast.IfStatement:
		c.checkExpr(info, scopes, s.Cond)
		c.checkBlock(info, scopes, s.Then)
		if s.Else != nil {
			c.checkBlock(info, scopes, s.Else)
		}
	case *ast.WhileStatement:
		c.checkExpr(info, scopes, s.Cond)
		c.checkBlock(info, scopes, s.Body)
	case *ast.BlockStatement:
		c.checkBlock(info, scopes, s)
	case *ast.TypeStatement, *ast.FnStatement, *ast.ProcStatement:
		// Static declarations inside a body are opaque here; a nested
		// proc body is checked by its own invocation.
	default:
		c.addError(stmt.Tok(), fmt.Sprintf("unexpected statement %q", stmt.String()))
	}
}

func (c *Checker) checkVar(info *ProcInfo, scopes *[]Scope[*Symbol], s *ast.VarStatement) {
	for i, name := range s.Names {
		var t types.Type = types.Unresolved{}
		if i < len(s.Types) && s.Types[i] != nil {
			t = c.resolveTypeRef(s.Types[i])
		}
		if i < len(s.Values) && s.Values[i] != nil {
			c.checkExpr(info, scopes, s.Values[i])
			if t.Kind() == types.UnresolvedKind {
				t = info.TypeOf(s.Values[i])
			}
		}

		// Names are unique per proc. Shadowing would make the flat
		// symbol table the dataflow events key on ambiguous.
		if _, ok := info.Locals[name.Value]; ok {
			c.addError(name.Token, fmt.Sprintf("variable %q redeclared", name.Value))
			continue
		}
		sym := &Symbol{Name: name.Value, Kind: Local, Type: t}
		Put(*scopes, sym.Name, sym)
		info.Locals[sym.Name] = sym
	}
}

func (c *Checker) checkExpr(info *ProcInfo, scopes *[]Scope[*Symbol], e ast.Expression) {
	switch e := e.(type) {
	case *ast.Identifier:
		if _, ok := Get(*scopes, e.Value); !ok {
			c.addError(e.Token, fmt.Sprintf("variable %q has not been defined", e.Value))
		}
	case *ast.IntegerLiteral, *ast.BoolLiteral, *ast.StringLiteral:
	case *ast.PrefixExpression:
		c.checkExpr(info, scopes, e.Right)
	case *ast.InfixExpression:
		c.checkExpr(info, scopes, e.Left)
		c.checkExpr(info, scopes, e.Right)
	case *ast.MoveExpression:
		if _, ok := e.X.(*ast.Identifier); !ok {
			c.addError(e.Tok(), fmt.Sprintf("cannot move %q: not a variable", e.X.String()))
			return
		}
		c.checkExpr(info, scopes, e.X)
	case *ast.CallExpression:
		sig, ok := c.Funcs[e.Function.Value]
		if !ok {
			c.addError(e.Function.Token, fmt.Sprintf("routine %q has not been defined", e.Function.Value))
		} else if len(e.Arguments) != len(sig.Params) {
			c.addError(e.Tok(), fmt.Sprintf("routine %q takes %d arguments, got %d", sig.Name, len(sig.Params), len(e.Arguments)))
		}
		for _, arg := range e.Arguments {
			c.checkExpr(info, scopes, arg)
		}
	default:
		c.addError(e.Tok(), fmt.Sprintf("unexpected expression %q", e.String()))
	}
}
