package token

import (
	"fmt"
	"strconv"
)

type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF
	COMMENT

	literal_beg
	// Identifiers + literals
	IDENT  // open, file, x, y, ...
	INT    // 1343456
	STRING // "abc"
	literal_end

	operator_beg
	// Operators and delimiters
	ASSIGN // =
	NOT    // !

	ADD // +
	SUB // -
	MUL // *
	QUO // /

	LPAREN // (
	LBRACK // [
	LBRACE // {
	COMMA  // ,
	PERIOD // .
	COLON  // :

	RPAREN // )
	RBRACK // ]
	RBRACE // }
	operator_end

	comparison_beg
	EQL // ==
	LSS // <
	GTR // >

	NEQ // !=
	LEQ // <=
	GEQ // >=
	comparison_end

	keyword_beg
	TYPE
	FN
	PROC
	VAR
	IF
	ELSE
	WHILE
	RETURN
	HAS
	SINK
	MUT
	MOVE
	TRUE
	FALSE
	keyword_end

	NEWLINE
)

var tokens = [...]string{
	ILLEGAL: "ILLEGAL",

	EOF:     "EOF",
	COMMENT: "COMMENT",

	IDENT:  "IDENT",
	INT:    "INT",
	STRING: "STRING",

	ASSIGN: "=",
	NOT:    "!",

	ADD: "+",
	SUB: "-",
	MUL: "*",
	QUO: "/",

	LPAREN: "(",
	LBRACK: "[",
	LBRACE: "{",
	COMMA:  ",",
	PERIOD: ".",
	COLON:  ":",

	RPAREN: ")",
	RBRACK: "]",
	RBRACE: "}",

	EQL: "==",
	LSS: "<",
	GTR: ">",

	NEQ: "!=",
	LEQ: "<=",
	GEQ: ">=",

	TYPE:   "type",
	FN:     "fn",
	PROC:   "proc",
	VAR:    "var",
	IF:     "if",
	ELSE:   "else",
	WHILE:  "while",
	RETURN: "return",
	HAS:    "has",
	SINK:   "sink",
	MUT:    "mut",
	MOVE:   "move",
	TRUE:   "true",
	FALSE:  "false",

	NEWLINE: "\n",
}

var keywords map[string]TokenType

func init() {
	keywords = make(map[string]TokenType)
	for tt := keyword_beg + 1; tt < keyword_end; tt++ {
		keywords[tokens[tt]] = tt
	}
}

// LookupIdent maps an identifier string to its keyword token type,
// or IDENT when it is not a keyword.
func LookupIdent(ident string) TokenType {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return IDENT
}

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

func (t Token) IsComparison() bool {
	return comparison_beg < t.Type && t.Type < comparison_end
}

func (t Token) String() string {
	return t.Type.String()
}

func (tokenType TokenType) String() string {
	s := ""
	if 0 <= tokenType && tokenType < TokenType(len(tokens)) {
		s = tokens[tokenType]
	}

	if s == "" {
		s = "token(" + strconv.Itoa(int(tokenType)) + ")"
	}

	return s
}

// Severity splits diagnostics into the fatal error channel and the
// informational hint channel.
type Severity int

const (
	Error Severity = iota
	Hint
)

func (s Severity) String() string {
	if s == Hint {
		return "hint"
	}
	return "error"
}

// CompileError carries one diagnostic with its source position.
type CompileError struct {
	Token Token
	Sev   Severity
	Msg   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%d:%d: %s: %s", e.Token.Line, e.Token.Column, e.Sev, e.Msg)
}
