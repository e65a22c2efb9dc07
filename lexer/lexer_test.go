package lexer

import (
	"testing"

	"github.com/soren-lang/soren/token"
)

type Test struct {
	expectedType    token.TokenType
	expectedLiteral string
}

func checkInput(t *testing.T, input string, tests []Test) {
	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestNextToken(t *testing.T) {
	input := `type File has copy, sink, destroy
# a comment line
fn open(): File
fn consume(sink f: File)
proc main() {
    var x: File = open()  # trailing comment
    consume(move x)
    if 5 <= 10 {
        return
    }
}
x != y
x == y
`

	tests := []Test{
		{token.TYPE, "type"},
		{token.IDENT, "File"},
		{token.HAS, "has"},
		{token.IDENT, "copy"},
		{token.COMMA, ","},
		{token.SINK, "sink"},
		{token.COMMA, ","},
		{token.IDENT, "destroy"},
		{token.NEWLINE, "\n"},
		{token.NEWLINE, "\n"},
		{token.FN, "fn"},
		{token.IDENT, "open"},
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.COLON, ":"},
		{token.IDENT, "File"},
		{token.NEWLINE, "\n"},
		{token.FN, "fn"},
		{token.IDENT, "consume"},
		{token.LPAREN, "("},
		{token.SINK, "sink"},
		{token.IDENT, "f"},
		{token.COLON, ":"},
		{token.IDENT, "File"},
		{token.RPAREN, ")"},
		{token.NEWLINE, "\n"},
		{token.PROC, "proc"},
		{token.IDENT, "main"},
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.NEWLINE, "\n"},
		{token.VAR, "var"},
		{token.IDENT, "x"},
		{token.COLON, ":"},
		{token.IDENT, "File"},
		{token.ASSIGN, "="},
		{token.IDENT, "open"},
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "consume"},
		{token.LPAREN, "("},
		{token.MOVE, "move"},
		{token.IDENT, "x"},
		{token.RPAREN, ")"},
		{token.NEWLINE, "\n"},
		{token.IF, "if"},
		{token.INT, "5"},
		{token.LEQ, "<="},
		{token.INT, "10"},
		{token.LBRACE, "{"},
		{token.NEWLINE, "\n"},
		{token.RETURN, "return"},
		{token.NEWLINE, "\n"},
		{token.RBRACE, "}"},
		{token.NEWLINE, "\n"},
		{token.RBRACE, "}"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "x"},
		{token.NEQ, "!="},
		{token.IDENT, "y"},
		{token.NEWLINE, "\n"},
		{token.IDENT, "x"},
		{token.EQL, "=="},
		{token.IDENT, "y"},
		{token.NEWLINE, "\n"},
		{token.EOF, ""},
	}

	checkInput(t, input, tests)
}

func TestString(t *testing.T) {
	input := `x = "hello world"`

	tests := []Test{
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.STRING, "hello world"},
		{token.EOF, ""},
	}

	checkInput(t, input, tests)
}

func TestIllegal(t *testing.T) {
	input := `x = $`

	tests := []Test{
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.ILLEGAL, "$"},
	}

	checkInput(t, input, tests)
}

func TestPositions(t *testing.T) {
	input := "var x = 1\na <= b\n"

	type posTest struct {
		expectedType token.TokenType
		line         int
		column       int
	}

	tests := []posTest{
		{token.VAR, 1, 1},
		{token.IDENT, 1, 5},
		{token.ASSIGN, 1, 7},
		{token.INT, 1, 9},
		{token.NEWLINE, 1, 10},
		{token.IDENT, 2, 1},
		{token.LEQ, 2, 3},
		{token.IDENT, 2, 6},
		{token.NEWLINE, 2, 7},
		{token.EOF, 3, 1},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}
		if tok.Line != tt.line || tok.Column != tt.column {
			t.Fatalf("tests[%d] - position wrong for %q. expected=%d:%d, got=%d:%d",
				i, tok.Literal, tt.line, tt.column, tok.Line, tok.Column)
		}
	}
}
