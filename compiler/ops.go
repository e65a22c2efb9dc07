package compiler

import (
	"fmt"

	"github.com/soren-lang/soren/ast"
	"github.com/soren-lang/soren/token"
	"github.com/soren-lang/soren/types"
)

// ResolveOp returns the operator implementing the requested lifecycle
// operation for t, stripping alias, reference, sink and instantiation
// layers first. A sink request falls back to the copy operator when the
// type defines no sink of its own. An operator stored as a generic
// specialization is followed through its Impl chain to the routine
// actually used inside the instantiated body.
//
// A missing operation, or an unspecialized generic operator, is an
// invariant violation by an earlier pass: compilation of the enclosing
// procedure cannot continue.
func ResolveOp(t types.Type, name types.OpName, tok token.Token) (*types.Operator, *token.CompileError) {
	lc := types.LifecycleOf(t)
	if lc == nil {
		return nil, &token.CompileError{
			Token: tok,
			Msg:   fmt.Sprintf("type %q has no %s operation", t.String(), name),
		}
	}

	op := lc.Op(name)
	if op == nil && name == types.OpSink {
		op = lc.Op(types.OpCopy)
	}
	if op == nil {
		return nil, &token.CompileError{
			Token: tok,
			Msg:   fmt.Sprintf("type %q has no %s operation", t.String(), name),
		}
	}

	for op.Impl != nil {
		op = op.Impl
	}
	if op.Generic {
		return nil, &token.CompileError{
			Token: tok,
			Msg:   fmt.Sprintf("%s operation %q of type %q has not been specialized", name, op.Name, t.String()),
		}
	}
	return op, nil
}

// lifecycleOpName maps a bare callee name to the lifecycle operation it
// requests, if any. Calls written against the bare names are devirtualized
// to the statically resolved implementation during the rewrite.
func lifecycleOpName(callee string) (types.OpName, bool) {
	switch callee {
	case "copy":
		return types.OpCopy, true
	case "sink":
		return types.OpSink, true
	case "destroy":
		return types.OpDestroy, true
	default:
		return 0, false
	}
}

// devirtualize redirects a call to a bare lifecycle operation name to the
// resolved implementation for its first argument's type. Other calls pass
// through untouched. Nested calls are handled by the rewrite engine's
// descent: every reachable call node goes through here exactly once.
func (c *destroyCtx) devirtualize(call *ast.CallExpression) *ast.CallExpression {
	name, ok := lifecycleOpName(call.Function.Value)
	if !ok || len(call.Arguments) == 0 {
		return call
	}

	t := c.info.TypeOf(call.Arguments[0])
	op, cerr := ResolveOp(t, name, call.Function.Token)
	if cerr != nil {
		c.fail(cerr)
		return call
	}

	patched := *call
	patched.Function = &ast.Identifier{Token: call.Function.Token, Value: op.Name}
	return &patched
}
