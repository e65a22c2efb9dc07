package parser

import (
	"fmt"
	"strconv"

	"github.com/soren-lang/soren/ast"
	"github.com/soren-lang/soren/lexer"
	"github.com/soren-lang/soren/token"
)

const (
	_ int = iota
	LOWEST
	LESSGREATER // > or <
	SUM         // +
	PRODUCT     // *
	PREFIX      // -X or !X
	CALL        // open(X)
)

var precedences = map[token.TokenType]int{
	token.EQL:    LESSGREATER,
	token.NEQ:    LESSGREATER,
	token.LSS:    LESSGREATER,
	token.GTR:    LESSGREATER,
	token.LEQ:    LESSGREATER,
	token.GEQ:    LESSGREATER,
	token.ADD:    SUM,
	token.SUB:    SUM,
	token.QUO:    PRODUCT,
	token.MUL:    PRODUCT,
	token.LPAREN: CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	l      *lexer.Lexer
	errors []*token.CompileError

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		errors: []*token.CompileError{},
	}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBoolLiteral)
	p.registerPrefix(token.FALSE, p.parseBoolLiteral)
	p.registerPrefix(token.NOT, p.parsePrefixExpression)
	p.registerPrefix(token.SUB, p.parsePrefixExpression)
	p.registerPrefix(token.MOVE, p.parseMoveExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	p.registerInfix(token.ADD, p.parseInfixExpression)
	p.registerInfix(token.SUB, p.parseInfixExpression)
	p.registerInfix(token.QUO, p.parseInfixExpression)
	p.registerInfix(token.MUL, p.parseInfixExpression)
	p.registerInfix(token.EQL, p.parseInfixExpression)
	p.registerInfix(token.NEQ, p.parseInfixExpression)
	p.registerInfix(token.LSS, p.parseInfixExpression)
	p.registerInfix(token.GTR, p.parseInfixExpression)
	p.registerInfix(token.LEQ, p.parseInfixExpression)
	p.registerInfix(token.GEQ, p.parseInfixExpression)

	p.registerInfix(token.LPAREN, p.parseCallExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekToken.Type == t
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) Errors() []*token.CompileError {
	return p.errors
}

func (p *Parser) addError(tok token.Token, msg string) {
	p.errors = append(p.errors, &token.CompileError{Token: tok, Msg: msg})
}

func (p *Parser) peekError(t token.TokenType) {
	p.addError(p.peekToken, fmt.Sprintf("expected next token to be %s, got %s instead", t, p.peekToken))
}

func (p *Parser) noPrefixParseFnError(t token.TokenType) {
	p.addError(p.curToken, fmt.Sprintf("no prefix parse function for %s found", t))
}

func (p *Parser) skipNewlines() {
	for p.curTokenIs(token.NEWLINE) {
		p.nextToken()
	}
}

func (p *Parser) Parse() *ast.Program {
	program := &ast.Program{}
	program.Statements = []ast.Statement{}

	p.skipNewlines()
	for !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		p.nextToken()
		p.skipNewlines()
	}

	return program
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.TYPE:
		return p.parseTypeStatement()
	case token.FN:
		return p.parseFnStatement()
	case token.PROC:
		return p.parseProcStatement()
	case token.VAR:
		return p.parseVarStatement()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	default:
		return p.parseSimpleStatement()
	}
}

// parseSimpleStatement parses either an assignment or a bare expression
// statement.
func (p *Parser) parseSimpleStatement() ast.Statement {
	firstToken := p.curToken
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}

	if !p.peekTokenIs(token.ASSIGN) {
		return &ast.ExpressionStatement{Token: firstToken, Expression: expr}
	}

	if _, ok := expr.(*ast.Identifier); !ok {
		p.addError(firstToken, fmt.Sprintf("cannot assign to %q", expr.String()))
		return nil
	}
	p.nextToken()
	stmt := &ast.AssignStatement{Token: p.curToken, Target: expr}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	return stmt
}

// parseTypeStatement: type File has copy, sink, destroy
func (p *Parser) parseTypeStatement() ast.Statement {
	stmt := &ast.TypeStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	if !p.peekTokenIs(token.HAS) {
		return stmt
	}
	p.nextToken()

	for {
		// sink lexes as a keyword, not an identifier.
		if !p.peekTokenIs(token.IDENT) && !p.peekTokenIs(token.SINK) {
			p.peekError(token.IDENT)
			return nil
		}
		p.nextToken()
		op := p.curToken.Literal
		switch op {
		case "copy", "sink", "destroy":
			stmt.Ops = append(stmt.Ops, op)
		default:
			p.addError(p.curToken, fmt.Sprintf("unknown lifecycle operation %q", op))
			return nil
		}
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	return stmt
}

func (p *Parser) parseFnStatement() ast.Statement {
	stmt := &ast.FnStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	var ok bool
	if stmt.Params, ok = p.parseParamDecls(); !ok {
		return nil
	}
	stmt.Result = p.parseResult()

	return stmt
}

func (p *Parser) parseProcStatement() ast.Statement {
	stmt := &ast.ProcStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}

	var ok bool
	if stmt.Params, ok = p.parseParamDecls(); !ok {
		return nil
	}
	stmt.Result = p.parseResult()

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()

	return stmt
}

func (p *Parser) parseParamDecls() ([]*ast.ParamDecl, bool) {
	params := []*ast.ParamDecl{}

	if !p.expectPeek(token.LPAREN) {
		return nil, false
	}
	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params, true
	}

	for {
		p.nextToken()
		param := &ast.ParamDecl{}
		if p.curTokenIs(token.SINK) {
			param.Sink = true
			p.nextToken()
		} else if p.curTokenIs(token.MUT) {
			param.Mut = true
			p.nextToken()
		}
		if !p.curTokenIs(token.IDENT) {
			p.addError(p.curToken, fmt.Sprintf("expected parameter name, got %s", p.curToken))
			return nil, false
		}
		param.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
		if !p.expectPeek(token.COLON) {
			return nil, false
		}
		param.Type = p.parseTypeRef()
		if param.Type == nil {
			return nil, false
		}
		params = append(params, param)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}
	return params, true
}

func (p *Parser) parseResult() *ast.TypeRef {
	if !p.peekTokenIs(token.COLON) {
		return nil
	}
	p.nextToken()
	return p.parseTypeRef()
}

// parseTypeRef parses IDENT or IDENT[TypeRef, ...]. It expects the type
// name in the peek position.
func (p *Parser) parseTypeRef() *ast.TypeRef {
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	ref := &ast.TypeRef{Token: p.curToken, Name: p.curToken.Literal}

	if !p.peekTokenIs(token.LBRACK) {
		return ref
	}
	p.nextToken()
	for {
		arg := p.parseTypeRef()
		if arg == nil {
			return nil
		}
		ref.Args = append(ref.Args, arg)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.RBRACK) {
		return nil
	}
	return ref
}

func (p *Parser) parseVarStatement() ast.Statement {
	stmt := &ast.VarStatement{Token: p.curToken}

	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Names = append(stmt.Names, &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal})
		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			tr := p.parseTypeRef()
			if tr == nil {
				return nil
			}
			stmt.Types = append(stmt.Types, tr)
		} else {
			stmt.Types = append(stmt.Types, nil)
		}
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.peekTokenIs(token.ASSIGN) {
		return stmt
	}
	p.nextToken()
	p.nextToken()
	stmt.Values = p.parseExpList()

	if len(stmt.Values) != len(stmt.Names) {
		p.addError(stmt.Token, fmt.Sprintf("%d variables but %d initializers", len(stmt.Names), len(stmt.Values)))
		return nil
	}
	return stmt
}

func (p *Parser) parseIfStatement() ast.Statement {
	stmt := &ast.IfStatement{Token: p.curToken}

	p.nextToken()
	stmt.Cond = p.parseExpression(LOWEST)

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Then = p.parseBlockStatement()

	if !p.peekTokenIs(token.ELSE) {
		return stmt
	}
	p.nextToken()
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Else = p.parseBlockStatement()

	return stmt
}

func (p *Parser) parseWhileStatement() ast.Statement {
	stmt := &ast.WhileStatement{Token: p.curToken}

	p.nextToken()
	stmt.Cond = p.parseExpression(LOWEST)

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	stmt.Body = p.parseBlockStatement()

	return stmt
}

func (p *Parser) parseReturnStatement() ast.Statement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.peekTokenIs(token.NEWLINE) || p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.EOF) {
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)

	return stmt
}

// parseBlockStatement parses statements up to the closing brace. The
// opening brace is the current token.
func (p *Parser) parseBlockStatement() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.curToken}
	block.Statements = []ast.Statement{}

	p.nextToken()
	p.skipNewlines()

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.nextToken()
		p.skipNewlines()
	}

	if !p.curTokenIs(token.RBRACE) {
		p.addError(block.Token, "unterminated block")
	}
	return block
}

func (p *Parser) parseExpList() []ast.Expression {
	expList := []ast.Expression{p.parseExpression(LOWEST)}
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		expList = append(expList, p.parseExpression(LOWEST))
	}
	return expList
}

func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken.Type)
		return nil
	}
	leftExp := prefix()

	for precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}

	return leftExp
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) parseIdentifier() ast.Expression {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseIntegerLiteral() ast.Expression {
	lit := &ast.IntegerLiteral{Token: p.curToken}

	value, err := strconv.ParseInt(p.curToken.Literal, 0, 64)
	if err != nil {
		p.addError(p.curToken, fmt.Sprintf("could not parse %q as integer", p.curToken.Literal))
		return nil
	}
	lit.Value = value

	return lit
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.StringLiteral{Token: p.curToken, Value: p.curToken.Literal}
}

func (p *Parser) parseBoolLiteral() ast.Expression {
	return &ast.BoolLiteral{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
}

func (p *Parser) parsePrefixExpression() ast.Expression {
	expression := &ast.PrefixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
	}

	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)

	return expression
}

func (p *Parser) parseMoveExpression() ast.Expression {
	expression := &ast.MoveExpression{Token: p.curToken}

	p.nextToken()
	expression.X = p.parseExpression(PREFIX)

	return expression
}

func (p *Parser) parseInfixExpression(left ast.Expression) ast.Expression {
	expression := &ast.InfixExpression{
		Token:    p.curToken,
		Operator: p.curToken.Literal,
		Left:     left,
	}

	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)

	return expression
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()

	exp := p.parseExpression(LOWEST)

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return exp
}

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	ident, ok := function.(*ast.Identifier)
	if !ok {
		p.addError(p.curToken, fmt.Sprintf("cannot call %q", function.String()))
		return nil
	}
	exp := &ast.CallExpression{Token: p.curToken, Function: ident}
	exp.Arguments = p.parseCallArguments()
	return exp
}

func (p *Parser) parseCallArguments() []ast.Expression {
	args := []ast.Expression{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return args
	}

	p.nextToken()
	args = append(args, p.parseExpression(LOWEST))

	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		args = append(args, p.parseExpression(LOWEST))
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	return args
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}
