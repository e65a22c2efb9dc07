package compiler

import (
	"github.com/soren-lang/soren/ast"
	"github.com/soren-lang/soren/token"
	"github.com/soren-lang/soren/types"
)

// aliveFlagFor returns the alive flag guarding a sink parameter's
// resource. On first request the flag is created, hoisted with an
// initializer of true, and the parameter's conditional epilogue destroy is
// recorded, exactly once no matter how many sites consume the parameter.
func (c *destroyCtx) aliveFlagFor(p *Symbol, tok token.Token) *Symbol {
	if flag, ok := c.alive[p.Name]; ok {
		return flag
	}

	flag := &Symbol{Name: p.Name + "$alive", Kind: Flag, Type: types.Bool}
	c.alive[p.Name] = flag
	c.info.Define(flag)

	c.hoisted = append(c.hoisted, &ast.VarStatement{
		Token:   tok,
		Names:   []*ast.Identifier{ident(tok, flag.Name)},
		Types:   []*ast.TypeRef{{Token: tok, Name: "Bool"}},
		Values:  []ast.Expression{&ast.BoolLiteral{Token: token.Token{Type: token.TRUE, Literal: "true", Line: tok.Line, Column: tok.Column}, Value: true}},
		Hoisted: true,
	})

	// Still alive at exit means no call consumed the parameter; the
	// procedure owes it a destroy.
	op, cerr := ResolveOp(p.Type, types.OpDestroy, tok)
	if cerr != nil {
		c.fail(cerr)
		return flag
	}
	destroyCall := &ast.CallExpression{Token: tok, Function: ident(tok, op.Name), Arguments: []ast.Expression{ident(tok, p.Name)}}
	c.epilogue = append(c.epilogue, &ast.IfStatement{
		Token: tok,
		Cond:  ident(tok, flag.Name),
		Then: &ast.BlockStatement{Token: tok, Statements: []ast.Statement{
			&ast.ExpressionStatement{Token: tok, Expression: destroyCall},
		}},
	})
	return flag
}

// destructiveRead consumes a sink parameter: assert it is still alive when
// runtime sink checks are on, clear the flag, then yield the value. This
// keeps destruction at-most-once however many places reference the
// parameter.
func (c *destroyCtx) destructiveRead(p *Symbol, tok token.Token) ast.Expression {
	flag := c.aliveFlagFor(p, tok)

	var stmts []ast.Statement
	if c.opts.SinkChecks {
		stmts = append(stmts, &ast.AssertStatement{Token: tok, Cond: ident(tok, flag.Name)})
	}
	stmts = append(stmts, &ast.AssignStatement{
		Token:  tok,
		Target: ident(tok, flag.Name),
		Value:  &ast.BoolLiteral{Token: token.Token{Type: token.FALSE, Literal: "false", Line: tok.Line, Column: tok.Column}, Value: false},
	})

	return &ast.SeqExpression{Token: tok, Stmts: stmts, Value: ident(tok, p.Name)}
}
