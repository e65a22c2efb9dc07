package compiler

import (
	"fmt"

	"github.com/soren-lang/soren/ast"
	"github.com/soren-lang/soren/config"
	"github.com/soren-lang/soren/token"
	"github.com/soren-lang/soren/types"
)

// destroyCtx is the per-procedure state of the destructor-injection pass.
// It is created at pass entry, grows monotonically during the single
// top-to-bottom rewrite, and is consumed once to build the wrapped body.
type destroyCtx struct {
	info *ProcInfo
	cfg  *CFG
	opts *config.Options

	frame    *types.Struct // synthetic aggregate holding all temporaries
	frameSym *Symbol       // its single instance

	hoisted  []ast.Statement // declarations lifted to the top of the proc
	epilogue []ast.Statement // destroy statements, in accumulation order

	alive     map[string]*Symbol // sink parameter name -> alive flag
	destroyed map[string]bool    // destinations with a recorded destroy

	errs  []*token.CompileError
	fatal bool
}

// InjectDestructors rewrites one type-checked procedure body so that every
// resource-owning value receives explicit lifecycle operations: moves where
// provably safe, copies otherwise, and a destroy on every exit path. The
// CFG is the read-only dataflow input for last-use classification.
//
// On a fatal resolution failure the body is abandoned and only the
// diagnostics are returned.
func InjectDestructors(info *ProcInfo, body *ast.BlockStatement, cfg *CFG, opts *config.Options) (*ast.BlockStatement, []*token.CompileError) {
	// A body whose top level already carries the cleanup wrapper was
	// produced by a previous run; every decision below has been made.
	for _, stmt := range body.Statements {
		if _, ok := stmt.(*ast.EnsureStatement); ok {
			return body, nil
		}
	}

	c := &destroyCtx{
		info:      info,
		cfg:       cfg,
		opts:      opts,
		alive:     make(map[string]*Symbol),
		destroyed: make(map[string]bool),
	}
	c.frame = &types.Struct{Name: info.Decl.Name.Value + "Frame"}
	// The $ prefix keeps generated names out of the source identifier
	// space; the lexer never produces one.
	c.frameSym = &Symbol{Name: "$frame", Kind: Temp, Type: c.frame}
	info.Define(c.frameSym)

	// Sink parameters own their argument until some call consumes it, so
	// their conditional destruction is set up before the body is visited.
	// A previous run's flag still registered on the proc means the body is
	// already instrumented.
	for i, p := range info.Params {
		if p.Kind != SinkParam || !types.OwnsResource(p.Type) {
			continue
		}
		if _, ok := info.Lookup(p.Name + "$alive"); ok {
			continue
		}
		c.aliveFlagFor(p, info.Decl.Params[i].Name.Token)
	}

	out := c.rewriteBlock(body)
	if c.fatal {
		return nil, c.errs
	}
	return c.consolidate(out), c.errs
}

func (c *destroyCtx) fail(cerr *token.CompileError) {
	c.errs = append(c.errs, cerr)
	c.fatal = true
}

func (c *destroyCtx) hint(tok token.Token, msg string) {
	if !c.opts.Hints {
		return
	}
	c.errs = append(c.errs, &token.CompileError{Token: tok, Sev: token.Hint, Msg: msg})
}

func ident(tok token.Token, name string) *ast.Identifier {
	return &ast.Identifier{Token: token.Token{Type: token.IDENT, Literal: name, Line: tok.Line, Column: tok.Column}, Value: name}
}

// rewriteBlock rewrites every statement of a block. The block is reused
// unchanged when no child changed; otherwise a fresh node is built, never
// mutating one that may be shared.
func (c *destroyCtx) rewriteBlock(block *ast.BlockStatement) *ast.BlockStatement {
	changed := false
	stmts := make([]ast.Statement, 0, len(block.Statements))
	for _, stmt := range block.Statements {
		out := c.rewriteStmt(stmt)
		if len(out) != 1 || out[0] != stmt {
			changed = true
		}
		stmts = append(stmts, out...)
	}
	if !changed {
		return block
	}
	return &ast.BlockStatement{Token: block.Token, Statements: stmts}
}

// rewriteStmt handles one statement. A binding of an owning value may
// expand into several statements or vanish entirely (the declaration moves
// to the hoisted list, only its initialization remains in place).
func (c *destroyCtx) rewriteStmt(stmt ast.Statement) []ast.Statement {
	switch s := stmt.(type) {
	case *ast.VarStatement:
		if s.Hoisted {
			// Already processed by a previous run of this pass.
			return []ast.Statement{s}
		}
		if len(s.Names) > 1 && c.ownsAny(s.Names) {
			return c.rewriteVars(lowerDestructuring(s))
		}
		return c.rewriteVar(s)

	case *ast.AssignStatement:
		if target, ok := s.Target.(*ast.Identifier); ok {
			if sym, found := c.info.Lookup(target.Value); found && types.OwnsResource(sym.Type) {
				// The destination's own destroy was recorded at its
				// declaration; reassignment only decides move vs copy.
				return []ast.Statement{c.moveOrCopy(s.Target, s.Value, s.Token)}
			}
		}
		value := c.rewriteExpr(s.Value)
		if value == s.Value {
			return []ast.Statement{s}
		}
		return []ast.Statement{&ast.AssignStatement{Token: s.Token, Target: s.Target, Value: value}}

	case *ast.ExpressionStatement:
		e := c.rewriteExpr(s.Expression)
		if e == s.Expression {
			return []ast.Statement{s}
		}
		return []ast.Statement{&ast.ExpressionStatement{Token: s.Token, Expression: e}}

	case *ast.ReturnStatement:
		return c.rewriteReturn(s)

	case *ast.IfStatement:
		cond := c.rewriteExpr(s.Cond)
		then := c.rewriteBlock(s.Then)
		els := s.Else
		if els != nil {
			els = c.rewriteBlock(els)
		}
		if cond == s.Cond && then == s.Then && els == s.Else {
			return []ast.Statement{s}
		}
		return []ast.Statement{&ast.IfStatement{Token: s.Token, Cond: cond, Then: then, Else: els}}

	case *ast.WhileStatement:
		cond := c.rewriteExpr(s.Cond)
		body := c.rewriteBlock(s.Body)
		if cond == s.Cond && body == s.Body {
			return []ast.Statement{s}
		}
		return []ast.Statement{&ast.WhileStatement{Token: s.Token, Cond: cond, Body: body}}

	case *ast.BlockStatement:
		return []ast.Statement{c.rewriteBlock(s)}

	case *ast.TypeStatement, *ast.FnStatement, *ast.ProcStatement:
		// Static declarations introduce no runtime value. A nested proc
		// body belongs to its own pass invocation; do not recurse.
		return []ast.Statement{stmt}

	case *ast.AssertStatement:
		return []ast.Statement{s}

	case *ast.EnsureStatement:
		body := c.rewriteBlock(s.Body)
		cleanup := c.rewriteBlock(s.Cleanup)
		if body == s.Body && cleanup == s.Cleanup {
			return []ast.Statement{s}
		}
		return []ast.Statement{&ast.EnsureStatement{Token: s.Token, Body: body, Cleanup: cleanup}}

	default:
		panic(fmt.Sprintf("unhandled statement type: %T", s))
	}
}

// lowerDestructuring splits var a, b = x, y into individual bindings.
func lowerDestructuring(s *ast.VarStatement) []*ast.VarStatement {
	out := make([]*ast.VarStatement, len(s.Names))
	for i, name := range s.Names {
		single := &ast.VarStatement{Token: s.Token, Names: []*ast.Identifier{name}}
		if i < len(s.Types) {
			single.Types = []*ast.TypeRef{s.Types[i]}
		}
		if i < len(s.Values) {
			single.Values = []ast.Expression{s.Values[i]}
		}
		out[i] = single
	}
	return out
}

func (c *destroyCtx) rewriteVars(decls []*ast.VarStatement) []ast.Statement {
	var out []ast.Statement
	for _, d := range decls {
		out = append(out, c.rewriteVar(d)...)
	}
	return out
}

// ownsAny reports whether any of the declared names has a resource-owning
// type. A destructuring where none does keeps its multi-name form.
func (c *destroyCtx) ownsAny(names []*ast.Identifier) bool {
	for _, n := range names {
		if sym, ok := c.info.Lookup(n.Value); ok && types.OwnsResource(sym.Type) {
			return true
		}
	}
	return false
}

// rewriteVar handles a binding with no owning name, or a single owning
// binding. An owning declaration is hoisted to the top of the procedure
// with an unconditional epilogue destroy; only the initialization
// statement stays in place. Non-owning declarations keep their position
// and shape.
func (c *destroyCtx) rewriteVar(s *ast.VarStatement) []ast.Statement {
	name := s.Names[0]
	sym, found := c.info.Lookup(name.Value)
	if len(s.Names) > 1 || !found || !types.OwnsResource(sym.Type) {
		changed := false
		values := make([]ast.Expression, len(s.Values))
		for i, v := range s.Values {
			values[i] = c.rewriteExpr(v)
			if values[i] != v {
				changed = true
			}
		}
		if !changed {
			return []ast.Statement{s}
		}
		return []ast.Statement{&ast.VarStatement{Token: s.Token, Names: s.Names, Types: s.Types, Values: values}}
	}

	c.hoistDecl(s.Token, name, sym.Type)
	c.recordDestroy(ident(name.Token, name.Value), sym.Type, name.Value, name.Token)

	if len(s.Values) == 0 {
		return nil
	}
	return []ast.Statement{c.moveOrCopy(ident(name.Token, name.Value), s.Values[0], s.Token)}
}

// rewriteReturn routes an owning return value through the result variable
// so the decision engine applies; the result itself is never destroyed.
func (c *destroyCtx) rewriteReturn(s *ast.ReturnStatement) []ast.Statement {
	if s.Value == nil || c.info.Result == nil || !types.OwnsResource(c.info.TypeOf(s.Value)) {
		if s.Value == nil {
			return []ast.Statement{s}
		}
		value := c.rewriteExpr(s.Value)
		if value == s.Value {
			return []ast.Statement{s}
		}
		return []ast.Statement{&ast.ReturnStatement{Token: s.Token, Value: value}}
	}

	if id, ok := s.Value.(*ast.Identifier); ok && id.Value == c.info.Result.Name {
		return []ast.Statement{s}
	}
	assign := c.moveOrCopy(ident(s.Token, c.info.Result.Name), s.Value, s.Token)
	ret := &ast.ReturnStatement{Token: s.Token, Value: ident(s.Token, c.info.Result.Name)}
	return []ast.Statement{assign, ret}
}

// rewriteExpr rewrites an expression bottom-up. Unchanged subtrees are
// reused as-is; any change builds a fresh parent node.
func (c *destroyCtx) rewriteExpr(e ast.Expression) ast.Expression {
	switch e := e.(type) {
	case *ast.Identifier, *ast.IntegerLiteral, *ast.BoolLiteral, *ast.StringLiteral:
		return e

	case *ast.PrefixExpression:
		right := c.rewriteExpr(e.Right)
		if right == e.Right {
			return e
		}
		return &ast.PrefixExpression{Token: e.Token, Operator: e.Operator, Right: right}

	case *ast.InfixExpression:
		left := c.rewriteExpr(e.Left)
		right := c.rewriteExpr(e.Right)
		if left == e.Left && right == e.Right {
			return e
		}
		return &ast.InfixExpression{Token: e.Token, Operator: e.Operator, Left: left, Right: right}

	case *ast.MoveExpression:
		x := c.rewriteExpr(e.X)
		if x == e.X {
			return e
		}
		return &ast.MoveExpression{Token: e.Token, X: x}

	case *ast.FieldExpression:
		x := c.rewriteExpr(e.X)
		if x == e.X {
			return e
		}
		return &ast.FieldExpression{Token: e.Token, X: x, Field: e.Field}

	case *ast.SeqExpression:
		changed := false
		var stmts []ast.Statement
		for _, s := range e.Stmts {
			out := c.rewriteStmt(s)
			if len(out) != 1 || out[0] != s {
				changed = true
			}
			stmts = append(stmts, out...)
		}
		value := c.rewriteExpr(e.Value)
		if !changed && value == e.Value {
			return e
		}
		return &ast.SeqExpression{Token: e.Token, Stmts: stmts, Value: value}

	case *ast.CallExpression:
		return c.rewriteCall(e)

	default:
		panic(fmt.Sprintf("unhandled expression type: %T", e))
	}
}

// rewriteCall devirtualizes lifecycle calls, applies the sink-argument
// protocol, and gives every owning intermediate result a slot in the
// temporary frame so it is destroyed when the procedure's epilogue runs.
func (c *destroyCtx) rewriteCall(call *ast.CallExpression) ast.Expression {
	patched := c.devirtualize(call)
	sig, _ := c.info.Sig(patched.Function.Value)

	changed := patched != call
	args := make([]ast.Expression, len(patched.Arguments))
	for i, arg := range patched.Arguments {
		if sig != nil && i < len(sig.Params) && sig.Params[i].Mode == types.BySink && types.OwnsResource(sig.Params[i].Type) {
			args[i] = c.bindSinkArg(arg, sig.Params[i])
		} else {
			args[i] = c.rewriteExpr(arg)
		}
		if args[i] != arg {
			changed = true
		}
	}
	if changed {
		patched = &ast.CallExpression{Token: patched.Token, Function: patched.Function, Arguments: args, Sunk: patched.Sunk}
	}

	if sig == nil || sig.Result == nil || !types.OwnsResource(sig.Result) || patched.Sunk {
		return patched
	}

	// The call produces an owning intermediate value and nothing upstream
	// installed a destructor for it: move it into a fresh frame slot that
	// the epilogue destroys after the full expression completes.
	tmp := c.newTemp(sig.Result, call.Tok())
	inner := &ast.CallExpression{Token: patched.Token, Function: patched.Function, Arguments: patched.Arguments, Sunk: true}
	sinkStmt := c.opCall(types.OpSink, tmp, sig.Result, inner, call.Tok())
	c.recordDestroy(tmp, sig.Result, tmp.String(), call.Tok())
	return &ast.SeqExpression{Token: call.Tok(), Stmts: []ast.Statement{sinkStmt}, Value: tmp}
}

// opCall builds a statement invoking the resolved lifecycle operation of t
// with dst and src as arguments.
func (c *destroyCtx) opCall(name types.OpName, dst ast.Expression, t types.Type, src ast.Expression, tok token.Token) ast.Statement {
	op, cerr := ResolveOp(t, name, tok)
	if cerr != nil {
		c.fail(cerr)
		return &ast.ExpressionStatement{Token: tok, Expression: dst}
	}
	call := &ast.CallExpression{
		Token:     tok,
		Function:  ident(tok, op.Name),
		Arguments: []ast.Expression{dst, src},
	}
	return &ast.ExpressionStatement{Token: tok, Expression: call}
}

// hoistDecl lifts an owning declaration to the procedure's top-level
// variable list.
func (c *destroyCtx) hoistDecl(tok token.Token, name *ast.Identifier, t types.Type) {
	c.hoisted = append(c.hoisted, &ast.VarStatement{
		Token:   tok,
		Names:   []*ast.Identifier{ident(name.Token, name.Value)},
		Types:   []*ast.TypeRef{{Token: name.Token, Name: t.String()}},
		Hoisted: true,
	})
}

// recordDestroy appends exactly one epilogue destroy for the given
// destination. The procedure's result variable is never destroyed.
func (c *destroyCtx) recordDestroy(target ast.Expression, t types.Type, key string, tok token.Token) {
	if c.destroyed[key] {
		return
	}
	if c.info.Result != nil && key == c.info.Result.Name {
		return
	}
	op, cerr := ResolveOp(t, types.OpDestroy, tok)
	if cerr != nil {
		c.fail(cerr)
		return
	}
	c.destroyed[key] = true
	call := &ast.CallExpression{Token: tok, Function: ident(tok, op.Name), Arguments: []ast.Expression{target}}
	c.epilogue = append(c.epilogue, &ast.ExpressionStatement{Token: tok, Expression: call})
}
