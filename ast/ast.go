package ast

import (
	"bytes"
	"strings"

	"github.com/soren-lang/soren/token"
)

// The base Node interface
type Node interface {
	Tok() token.Token
	String() string
}

// All statement nodes implement this
type Statement interface {
	Node
	statementNode()
}

// All expression nodes implement this
type Expression interface {
	Node
	expressionNode()
}

type Program struct {
	Statements []Statement
}

func (p *Program) Tok() token.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].Tok()
	}
	return token.Token{Type: token.EOF, Literal: ""}
}

func (p *Program) String() string {
	var out bytes.Buffer

	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}

	return out.String()
}

func printVec(a []Expression) string {
	parts := make([]string, len(a))
	for i, e := range a {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

// TypeRef is a source type annotation: a name plus optional generic
// arguments, e.g. File or Box[File].
type TypeRef struct {
	Token token.Token // the type name token
	Name  string
	Args  []*TypeRef
}

func (tr *TypeRef) Tok() token.Token { return tr.Token }
func (tr *TypeRef) String() string {
	if len(tr.Args) == 0 {
		return tr.Name
	}
	args := make([]string, len(tr.Args))
	for i, a := range tr.Args {
		args[i] = a.String()
	}
	return tr.Name + "[" + strings.Join(args, ", ") + "]"
}

// ParamDecl is one parameter of a fn or proc declaration.
type ParamDecl struct {
	Name *Identifier
	Type *TypeRef
	Sink bool
	Mut  bool
}

func (pd *ParamDecl) String() string {
	mode := ""
	if pd.Sink {
		mode = "sink "
	} else if pd.Mut {
		mode = "mut "
	}
	return mode + pd.Name.String() + ": " + pd.Type.String()
}

// Statements

// TypeStatement declares a nominal type, optionally attaching lifecycle
// operations: type File has copy, sink, destroy
type TypeStatement struct {
	Token token.Token // the token.TYPE token
	Name  *Identifier
	Ops   []string // subset of copy, sink, destroy
}

func (ts *TypeStatement) statementNode()   {}
func (ts *TypeStatement) Tok() token.Token { return ts.Token }
func (ts *TypeStatement) String() string {
	var out bytes.Buffer

	out.WriteString("type ")
	out.WriteString(ts.Name.String())
	if len(ts.Ops) > 0 {
		out.WriteString(" has ")
		out.WriteString(strings.Join(ts.Ops, ", "))
	}

	return out.String()
}

// FnStatement declares an external routine signature with no body.
type FnStatement struct {
	Token  token.Token // the token.FN token
	Name   *Identifier
	Params []*ParamDecl
	Result *TypeRef
}

func (fs *FnStatement) statementNode()   {}
func (fs *FnStatement) Tok() token.Token { return fs.Token }
func (fs *FnStatement) String() string {
	var out bytes.Buffer

	params := make([]string, len(fs.Params))
	for i, p := range fs.Params {
		params[i] = p.String()
	}

	out.WriteString("fn ")
	out.WriteString(fs.Name.String())
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(")")
	if fs.Result != nil {
		out.WriteString(": ")
		out.WriteString(fs.Result.String())
	}

	return out.String()
}

// ProcStatement declares a routine with a body. Its body is the unit the
// middle end rewrites, one pass invocation per proc.
type ProcStatement struct {
	Token  token.Token // the token.PROC token
	Name   *Identifier
	Params []*ParamDecl
	Result *TypeRef
	Body   *BlockStatement
}

func (ps *ProcStatement) statementNode()   {}
func (ps *ProcStatement) Tok() token.Token { return ps.Token }
func (ps *ProcStatement) String() string {
	var out bytes.Buffer

	params := make([]string, len(ps.Params))
	for i, p := range ps.Params {
		params[i] = p.String()
	}

	out.WriteString("proc ")
	out.WriteString(ps.Name.String())
	out.WriteString("(")
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(")")
	if ps.Result != nil {
		out.WriteString(": ")
		out.WriteString(ps.Result.String())
	}
	out.WriteString(" ")
	out.WriteString(ps.Body.String())

	return out.String()
}

// VarStatement declares one or more variables. The multi-name form
// destructures pairwise: var a, b = x, y. Hoisted marks declarations the
// middle end has already lifted to the top of the procedure; the rewrite
// pass leaves them alone on a revisit.
type VarStatement struct {
	Token   token.Token // the token.VAR token
	Names   []*Identifier
	Types   []*TypeRef // parallel to Names; entries may be nil
	Values  []Expression
	Hoisted bool
}

func (vs *VarStatement) statementNode()   {}
func (vs *VarStatement) Tok() token.Token { return vs.Token }
func (vs *VarStatement) String() string {
	var out bytes.Buffer

	out.WriteString("var ")
	for i, n := range vs.Names {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(n.String())
		if i < len(vs.Types) && vs.Types[i] != nil {
			out.WriteString(": ")
			out.WriteString(vs.Types[i].String())
		}
	}
	if len(vs.Values) > 0 {
		out.WriteString(" = ")
		out.WriteString(printVec(vs.Values))
	}

	return out.String()
}

// AssignStatement writes Value into an already-declared Target.
type AssignStatement struct {
	Token  token.Token // the token.ASSIGN token
	Target Expression
	Value  Expression
}

func (as *AssignStatement) statementNode()   {}
func (as *AssignStatement) Tok() token.Token { return as.Token }
func (as *AssignStatement) String() string {
	return as.Target.String() + " = " + as.Value.String()
}

type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) statementNode()   {}
func (es *ExpressionStatement) Tok() token.Token { return es.Token }
func (es *ExpressionStatement) String() string {
	return es.Expression.String()
}

type ReturnStatement struct {
	Token token.Token // the token.RETURN token
	Value Expression  // may be nil
}

func (rs *ReturnStatement) statementNode()   {}
func (rs *ReturnStatement) Tok() token.Token { return rs.Token }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "return"
	}
	return "return " + rs.Value.String()
}

type IfStatement struct {
	Token token.Token // the token.IF token
	Cond  Expression
	Then  *BlockStatement
	Else  *BlockStatement // may be nil
}

func (is *IfStatement) statementNode()   {}
func (is *IfStatement) Tok() token.Token { return is.Token }
func (is *IfStatement) String() string {
	var out bytes.Buffer

	out.WriteString("if ")
	out.WriteString(is.Cond.String())
	out.WriteString(" ")
	out.WriteString(is.Then.String())
	if is.Else != nil {
		out.WriteString(" else ")
		out.WriteString(is.Else.String())
	}

	return out.String()
}

type WhileStatement struct {
	Token token.Token // the token.WHILE token
	Cond  Expression
	Body  *BlockStatement
}

func (ws *WhileStatement) statementNode()   {}
func (ws *WhileStatement) Tok() token.Token { return ws.Token }
func (ws *WhileStatement) String() string {
	return "while " + ws.Cond.String() + " " + ws.Body.String()
}

type BlockStatement struct {
	Token      token.Token // the { token
	Statements []Statement
}

func (bs *BlockStatement) statementNode()   {}
func (bs *BlockStatement) Tok() token.Token { return bs.Token }
func (bs *BlockStatement) String() string {
	var out bytes.Buffer

	out.WriteString("{\n")
	for _, s := range bs.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	out.WriteString("}")

	return out.String()
}

// AssertStatement is generated by the middle end when runtime sink checks
// are enabled; it has no surface syntax.
type AssertStatement struct {
	Token token.Token
	Cond  Expression
}

func (as *AssertStatement) statementNode()   {}
func (as *AssertStatement) Tok() token.Token { return as.Token }
func (as *AssertStatement) String() string {
	return "assert " + as.Cond.String()
}

// EnsureStatement runs Body, then Cleanup on every exit path out of Body:
// normal completion, early return, or unwinding. Generated by the middle
// end to anchor the destruction epilogue.
type EnsureStatement struct {
	Token   token.Token
	Body    *BlockStatement
	Cleanup *BlockStatement
}

func (es *EnsureStatement) statementNode()   {}
func (es *EnsureStatement) Tok() token.Token { return es.Token }
func (es *EnsureStatement) String() string {
	return es.Body.String() + " ensure " + es.Cleanup.String()
}

// Expressions

type Identifier struct {
	Token token.Token // the token.IDENT token
	Value string
}

func (i *Identifier) expressionNode()  {}
func (i *Identifier) Tok() token.Token { return i.Token }
func (i *Identifier) String() string   { return i.Value }

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) expressionNode()  {}
func (il *IntegerLiteral) Tok() token.Token { return il.Token }
func (il *IntegerLiteral) String() string   { return il.Token.Literal }

type BoolLiteral struct {
	Token token.Token
	Value bool
}

func (bl *BoolLiteral) expressionNode()  {}
func (bl *BoolLiteral) Tok() token.Token { return bl.Token }
func (bl *BoolLiteral) String() string {
	if bl.Value {
		return "true"
	}
	return "false"
}

type StringLiteral struct {
	Token token.Token
	Value string
}

func (sl *StringLiteral) expressionNode()  {}
func (sl *StringLiteral) Tok() token.Token { return sl.Token }
func (sl *StringLiteral) String() string   { return `"` + sl.Value + `"` }

type PrefixExpression struct {
	Token    token.Token // The prefix token, e.g. !
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) expressionNode()  {}
func (pe *PrefixExpression) Tok() token.Token { return pe.Token }
func (pe *PrefixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(pe.Operator)
	out.WriteString(pe.Right.String())
	out.WriteString(")")

	return out.String()
}

type InfixExpression struct {
	Token    token.Token // The operator token, e.g. +
	Left     Expression
	Operator string
	Right    Expression
}

func (ie *InfixExpression) expressionNode()  {}
func (ie *InfixExpression) Tok() token.Token { return ie.Token }
func (ie *InfixExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	out.WriteString(ie.Left.String())
	out.WriteString(" " + ie.Operator + " ")
	out.WriteString(ie.Right.String())
	out.WriteString(")")

	return out.String()
}

// CallExpression invokes a routine. Sunk marks a call whose result is
// consumed by a sink operation installed upstream, so the rewrite pass must
// not give it a temporary of its own.
type CallExpression struct {
	Token     token.Token // The '(' token
	Function  *Identifier
	Arguments []Expression
	Sunk      bool
}

func (ce *CallExpression) expressionNode()  {}
func (ce *CallExpression) Tok() token.Token { return ce.Token }
func (ce *CallExpression) String() string {
	var out bytes.Buffer

	out.WriteString(ce.Function.String())
	out.WriteString("(")
	out.WriteString(printVec(ce.Arguments))
	out.WriteString(")")

	return out.String()
}

// MoveExpression is an explicit ownership-transfer annotation: move x.
type MoveExpression struct {
	Token token.Token // the token.MOVE token
	X     Expression
}

func (me *MoveExpression) expressionNode()  {}
func (me *MoveExpression) Tok() token.Token { return me.Token }
func (me *MoveExpression) String() string   { return "move " + me.X.String() }

// FieldExpression selects a named field: frame.tmp0. Generated by the
// middle end for temporary-frame slots; there is no surface syntax yet.
type FieldExpression struct {
	Token token.Token // the '.' token
	X     Expression
	Field *Identifier
}

func (fe *FieldExpression) expressionNode()  {}
func (fe *FieldExpression) Tok() token.Token { return fe.Token }
func (fe *FieldExpression) String() string {
	return fe.X.String() + "." + fe.Field.String()
}

// SeqExpression runs Stmts in order, then yields Value. Generated by the
// middle end for destructive sink-parameter reads and call-result
// temporaries.
type SeqExpression struct {
	Token token.Token
	Stmts []Statement
	Value Expression
}

func (se *SeqExpression) expressionNode()  {}
func (se *SeqExpression) Tok() token.Token { return se.Token }
func (se *SeqExpression) String() string {
	var out bytes.Buffer

	out.WriteString("(")
	for _, s := range se.Stmts {
		out.WriteString(s.String())
		out.WriteString("; ")
	}
	out.WriteString(se.Value.String())
	out.WriteString(")")

	return out.String()
}
