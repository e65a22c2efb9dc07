package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookupIdent(t *testing.T) {
	assert.Equal(t, PROC, LookupIdent("proc"))
	assert.Equal(t, SINK, LookupIdent("sink"))
	assert.Equal(t, MOVE, LookupIdent("move"))
	assert.Equal(t, IDENT, LookupIdent("copy"))
	assert.Equal(t, IDENT, LookupIdent("destroy"))
	assert.Equal(t, IDENT, LookupIdent("file"))
}

func TestIsComparison(t *testing.T) {
	assert.True(t, Token{Type: EQL}.IsComparison())
	assert.True(t, Token{Type: GEQ}.IsComparison())
	assert.False(t, Token{Type: ASSIGN}.IsComparison())
	assert.False(t, Token{Type: ADD}.IsComparison())
}

func TestCompileError(t *testing.T) {
	e := &CompileError{
		Token: Token{Type: IDENT, Literal: "x", Line: 3, Column: 7},
		Msg:   "variable \"x\" has not been defined",
	}
	assert.Equal(t, `3:7: error: variable "x" has not been defined`, e.Error())

	h := &CompileError{Token: Token{Line: 1, Column: 2}, Sev: Hint, Msg: "use move(x)"}
	assert.Equal(t, "1:2: hint: use move(x)", h.Error())
}
