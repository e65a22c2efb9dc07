package compiler

import (
	"fmt"

	"github.com/soren-lang/soren/ast"
	"github.com/soren-lang/soren/token"
	"github.com/soren-lang/soren/types"
)

// moveOrCopy produces the assignment of src into dst, whose type owns a
// resource. Rules in priority order:
//
//  1. a fresh construction is never read again, so it is always sunk;
//  2. a harmless variable's single block-local read is its last, so its
//     value moves;
//  3. a sink parameter transfers ownership through its destructive-read
//     sequence, clearing the alive flag;
//  4. anything else is copied.
//
// An explicit move annotation forces the sink path. Reassignment goes
// through the same rules; the destination's destroy was recorded once at
// its declaration and is not re-recorded.
func (c *destroyCtx) moveOrCopy(dst ast.Expression, src ast.Expression, tok token.Token) ast.Statement {
	t := c.info.TypeOf(dst)

	if call, ok := src.(*ast.CallExpression); ok {
		sunk := &ast.CallExpression{Token: call.Token, Function: call.Function, Arguments: call.Arguments, Sunk: true}
		return c.opCall(types.OpSink, dst, t, c.rewriteExpr(sunk), tok)
	}

	if mv, ok := src.(*ast.MoveExpression); ok {
		return c.opCall(types.OpSink, dst, t, c.consume(mv.X), tok)
	}

	if id, ok := src.(*ast.Identifier); ok {
		if sym, found := c.info.Lookup(id.Value); found {
			if sym.Movable() && c.cfg.IsHarmless(sym.Name) {
				return c.opCall(types.OpSink, dst, t, id, tok)
			}
			if sym.Kind == SinkParam {
				return c.opCall(types.OpSink, dst, t, c.destructiveRead(sym, id.Token), tok)
			}
		}
	}

	return c.opCall(types.OpCopy, dst, t, c.rewriteExpr(src), tok)
}

// bindSinkArg prepares an argument for a sink-parameter position: the
// callee takes ownership, so the argument must either be a value the
// caller provably gives up, or a copy made on the spot.
func (c *destroyCtx) bindSinkArg(arg ast.Expression, param types.Param) ast.Expression {
	switch a := arg.(type) {
	case *ast.CallExpression:
		// Fresh construction: the callee consumes it directly; no
		// temporary, no epilogue destroy.
		sunk := &ast.CallExpression{Token: a.Token, Function: a.Function, Arguments: a.Arguments, Sunk: true}
		return c.rewriteExpr(sunk)

	case *ast.MoveExpression:
		return c.consume(a.X)

	case *ast.Identifier:
		if sym, found := c.info.Lookup(a.Value); found {
			if sym.Kind == SinkParam && c.cfg.IsHarmless(sym.Name) {
				return c.destructiveRead(sym, a.Token)
			}
			if sym.Movable() && c.cfg.IsHarmless(sym.Name) {
				return a
			}
		}
	}

	return c.copyToSink(arg, param)
}

// consume is the forced-move path behind an explicit move annotation. A
// sink parameter still goes through its destructive read so the alive flag
// stays accurate.
func (c *destroyCtx) consume(x ast.Expression) ast.Expression {
	if id, ok := x.(*ast.Identifier); ok {
		if sym, found := c.info.Lookup(id.Value); found && sym.Kind == SinkParam {
			return c.destructiveRead(sym, id.Token)
		}
	}
	return c.rewriteExpr(x)
}

// copyToSink inserts the implicit copy a non-movable sink argument needs:
// copy into a fresh frame slot, pass the slot, destroy it in the epilogue.
// When the source is a parameter the copy is worth a hint, since the
// caller may have wanted an explicit move.
func (c *destroyCtx) copyToSink(arg ast.Expression, param types.Param) ast.Expression {
	t := param.Type
	if s, ok := t.(*types.SinkOf); ok {
		t = s.Elem
	}

	tmp := c.newTemp(t, arg.Tok())
	copyStmt := c.opCall(types.OpCopy, tmp, t, c.rewriteExpr(arg), arg.Tok())
	c.recordDestroy(tmp, t, tmp.String(), arg.Tok())

	if id, ok := arg.(*ast.Identifier); ok {
		if sym, found := c.info.Lookup(id.Value); found && (sym.Kind == Param || sym.Kind == SinkParam) {
			c.hint(id.Token, fmt.Sprintf("passing %q to a sink parameter copies it; use move(%s) to transfer ownership", id.Value, id.Value))
		}
	}

	return &ast.SeqExpression{Token: arg.Tok(), Stmts: []ast.Statement{copyStmt}, Value: tmp}
}
