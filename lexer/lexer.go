package lexer

import "github.com/soren-lang/soren/token"

type Lexer struct {
	input        []rune
	position     int  // current position in input (points to current rune)
	readPosition int  // current reading position in input (after current rune)
	curr         rune // current rune under examination
	line         int
	column       int
	tokLine      int // position of the token being scanned
	tokColumn    int
}

func New(input string) *Lexer {
	l := &Lexer{input: []rune(input), line: 1, column: 0}
	l.readRune()
	return l
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()
	l.skipComment()

	line, column := l.line, l.column
	l.tokLine, l.tokColumn = line, column

	switch l.curr {
	case '=':
		if l.peekRune() == '=' {
			curr := l.curr
			l.readRune()
			tok = l.newToken(token.EQL, string(curr)+string(l.curr))
		} else {
			tok = l.newToken(token.ASSIGN, string(l.curr))
		}
	case '!':
		if l.peekRune() == '=' {
			curr := l.curr
			l.readRune()
			tok = l.newToken(token.NEQ, string(curr)+string(l.curr))
		} else {
			tok = l.newToken(token.NOT, string(l.curr))
		}
	case '<':
		if l.peekRune() == '=' {
			curr := l.curr
			l.readRune()
			tok = l.newToken(token.LEQ, string(curr)+string(l.curr))
		} else {
			tok = l.newToken(token.LSS, string(l.curr))
		}
	case '>':
		if l.peekRune() == '=' {
			curr := l.curr
			l.readRune()
			tok = l.newToken(token.GEQ, string(curr)+string(l.curr))
		} else {
			tok = l.newToken(token.GTR, string(l.curr))
		}
	case '+':
		tok = l.newToken(token.ADD, string(l.curr))
	case '-':
		tok = l.newToken(token.SUB, string(l.curr))
	case '*':
		tok = l.newToken(token.MUL, string(l.curr))
	case '/':
		tok = l.newToken(token.QUO, string(l.curr))
	case ',':
		tok = l.newToken(token.COMMA, string(l.curr))
	case '.':
		tok = l.newToken(token.PERIOD, string(l.curr))
	case ':':
		tok = l.newToken(token.COLON, string(l.curr))
	case '(':
		tok = l.newToken(token.LPAREN, string(l.curr))
	case ')':
		tok = l.newToken(token.RPAREN, string(l.curr))
	case '[':
		tok = l.newToken(token.LBRACK, string(l.curr))
	case ']':
		tok = l.newToken(token.RBRACK, string(l.curr))
	case '{':
		tok = l.newToken(token.LBRACE, string(l.curr))
	case '}':
		tok = l.newToken(token.RBRACE, string(l.curr))
	case '\n':
		tok = l.newToken(token.NEWLINE, "\n")
	case '"':
		tok = l.newToken(token.STRING, l.readString())
	case 0:
		tok = token.Token{Type: token.EOF, Literal: "", Line: line, Column: column}
	default:
		if isLetter(l.curr) {
			tok.Literal = l.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			tok.Line, tok.Column = line, column
			return tok
		} else if isDigit(l.curr) {
			tok.Type = token.INT
			tok.Literal = l.readNumber()
			tok.Line, tok.Column = line, column
			return tok
		} else {
			tok = l.newToken(token.ILLEGAL, string(l.curr))
		}
	}

	l.readRune()
	return tok
}

func (l *Lexer) newToken(tokenType token.TokenType, literal string) token.Token {
	return token.Token{Type: tokenType, Literal: literal, Line: l.tokLine, Column: l.tokColumn}
}

func (l *Lexer) skipWhitespace() {
	for l.curr == ' ' || l.curr == '\t' || l.curr == '\r' {
		l.readRune()
	}
}

// skipComment consumes a '#' comment up to, but not including, the newline.
func (l *Lexer) skipComment() {
	for l.curr == '#' {
		for l.curr != '\n' && l.curr != 0 {
			l.readRune()
		}
	}
}

func (l *Lexer) readRune() {
	if l.curr == '\n' {
		l.line++
		l.column = 0
	}
	if l.readPosition >= len(l.input) {
		l.curr = 0
	} else {
		l.curr = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peekRune() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.curr) || isDigit(l.curr) {
		l.readRune()
	}
	return string(l.input[position:l.position])
}

func (l *Lexer) readNumber() string {
	position := l.position
	for isDigit(l.curr) {
		l.readRune()
	}
	return string(l.input[position:l.position])
}

// readString consumes a double-quoted string and returns its contents
// without the quotes. No escape sequences.
func (l *Lexer) readString() string {
	position := l.position + 1
	for {
		l.readRune()
		if l.curr == '"' || l.curr == 0 {
			break
		}
	}
	return string(l.input[position:l.position])
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}
