package compiler

import (
	"fmt"

	"github.com/soren-lang/soren/ast"
	"github.com/soren-lang/soren/token"
	"github.com/soren-lang/soren/types"
)

// newTemp allocates the next slot of the procedure's temporary frame and
// returns a reference to it. Slots accumulate monotonically and are never
// reused across temporaries, even when live ranges do not overlap;
// simplicity over compactness.
func (c *destroyCtx) newTemp(t types.Type, tok token.Token) *ast.FieldExpression {
	field := c.frame.AddField(fmt.Sprintf("tmp%d", len(c.frame.Fields)), t)
	return &ast.FieldExpression{
		Token: tok,
		X:     ident(tok, c.frameSym.Name),
		Field: ident(tok, field.Name),
	}
}

// consolidate builds the final wrapped body: hoisted declarations first,
// then the rewritten body inside a scoped-cleanup construct whose cleanup
// runs the epilogue destroys in accumulation order on every exit path. A
// procedure that accumulated nothing comes back untouched, with no empty
// scaffolding.
func (c *destroyCtx) consolidate(body *ast.BlockStatement) *ast.BlockStatement {
	if len(c.epilogue) == 0 {
		return body
	}

	if len(c.frame.Fields) > 0 {
		c.hoisted = append(c.hoisted, &ast.VarStatement{
			Token:   body.Token,
			Names:   []*ast.Identifier{ident(body.Token, c.frameSym.Name)},
			Types:   []*ast.TypeRef{{Token: body.Token, Name: c.frame.Name}},
			Hoisted: true,
		})
	}

	stmts := make([]ast.Statement, 0, len(c.hoisted)+1)
	stmts = append(stmts, c.hoisted...)
	stmts = append(stmts, &ast.EnsureStatement{
		Token:   body.Token,
		Body:    body,
		Cleanup: &ast.BlockStatement{Token: body.Token, Statements: c.epilogue},
	})
	return &ast.BlockStatement{Token: body.Token, Statements: stmts}
}
