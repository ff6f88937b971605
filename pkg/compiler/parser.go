package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// Parser consumes the flat token slice produced by the Lexer and builds an AST.
//
// Grammar:
//
//	program    = line* EOF
//	line       = NUMBER? (IDENTIFIER ":")? statement? (NEWLINE | EOF)
//	statement  = print | let | if | goto | gosub | "RETURN" | for | next
//	           | while | input | "END"
//	print      = "PRINT" (expression (("," | ";") expression?)*)?
//	let        = "LET"? variable "=" expression
//	if         = "IF" expression "THEN" branch ("ELSE" branch)?
//	branch     = NUMBER | statement
//	goto       = "GOTO" target
//	gosub      = "GOSUB" target
//	target     = IDENTIFIER | NUMBER
//	for        = "FOR" variable "=" expression "TO" expression ("STEP" expression)?
//	next       = "NEXT" (variable ("," variable)*)?
//	while      = "WHILE" expression NEWLINE line* "WEND"
//	input      = "INPUT" (STRING (";" | ","))? variable ("," variable)*
//	expression = additive (("=" | "<>" | "<" | ">" | "<=" | ">=") additive)?
//	additive   = term (("+" | "-") term)*
//	term       = unary (("*" | "/") unary)*
//	unary      = ("-" | "+") unary | primary
//	primary    = NUMBER | STRING | variable | "(" expression ")"
type Parser struct {
	tokens      []Token
	pos         int
	sourceLines []string
}

func NewParser(tokens []Token, rawSource string) *Parser {
	return &Parser{tokens: tokens, sourceLines: strings.Split(rawSource, "\n")}
}

// fmtError wraps an error message with the source line where the token appears.
func (p *Parser) fmtError(tok Token, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	lineIdx := tok.Line - 1 // Lines are 1-based

	snippet := "<source unavailable>"
	if lineIdx >= 0 && lineIdx < len(p.sourceLines) {
		snippet = strings.TrimSpace(p.sourceLines[lineIdx])
	}

	return fmt.Errorf("line %d: %s\n  |> %s", tok.Line, msg, snippet)
}

// peek returns the current token without consuming it.
func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos]
}

// peekNext returns the token immediately after the current one.
func (p *Parser) peekNext() Token {
	if p.pos+1 >= len(p.tokens) {
		return Token{Type: EOF}
	}
	return p.tokens[p.pos+1]
}

// advance consumes and returns the current token.
func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

// expect consumes the current token if it matches tt, otherwise returns an error.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.advance()
	if tok.Type != tt {
		return tok, p.fmtError(tok, "expected %s, got %s (%q)", tt, tok.Type, tok.Lexeme)
	}
	return tok, nil
}

// atStatementEnd reports whether the current statement has no more tokens.
// ELSE ends the THEN branch of a single-line IF.
func (p *Parser) atStatementEnd() bool {
	switch p.peek().Type {
	case NEWLINE, EOF, ELSE:
		return true
	}
	return false
}

// parseLines collects statements until stop. It is EOF for the program and
// WEND for a WHILE body; the stop token is left unconsumed.
func (p *Parser) parseLines(stop TokenType) ([]Stmt, error) {
	var stmts []Stmt
	for {
		tok := p.peek()
		if tok.Type == stop {
			return stmts, nil
		}
		switch tok.Type {
		case EOF:
			return nil, p.fmtError(tok, "missing %s", stop)
		case WEND:
			return nil, p.fmtError(tok, "WEND without WHILE")
		}
		line, err := p.parseLine()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, line...)
	}
}

// parseLine reads one source line. A leading line number and a NAME: prefix
// both become labels ahead of the statement.
func (p *Parser) parseLine() ([]Stmt, error) {
	var stmts []Stmt

	if tok := p.peek(); tok.Type == NUMBER {
		p.advance()
		if strings.Contains(tok.Lexeme, ".") {
			return nil, p.fmtError(tok, "line number %s is not an integer", tok.Lexeme)
		}
		stmts = append(stmts, &LabelStmt{Name: tok.Lexeme})
	}
	if tok := p.peek(); tok.Type == IDENTIFIER && p.peekNext().Type == COLON {
		if v := ParseVariable(tok.Lexeme); v.Suffix != SuffixNone {
			return nil, p.fmtError(tok, "label %q cannot carry a type suffix", tok.Lexeme)
		}
		p.advance()
		p.advance()
		stmts = append(stmts, &LabelStmt{Name: tok.Lexeme})
	}

	switch p.peek().Type {
	case NEWLINE:
		p.advance()
		return stmts, nil
	case EOF, WEND:
		return stmts, nil
	}

	stmt, err := p.parseStatement()
	if err != nil {
		return nil, err
	}
	stmts = append(stmts, stmt)

	switch tok := p.peek(); tok.Type {
	case NEWLINE:
		p.advance()
	case EOF:
	default:
		return nil, p.fmtError(tok, "unexpected %s (%q) after statement", tok.Type, tok.Lexeme)
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (Stmt, error) {
	tok := p.peek()
	switch tok.Type {
	case PRINT:
		return p.parsePrint()
	case LET:
		p.advance()
		return p.parseLet()
	case IDENTIFIER:
		return p.parseLet()
	case IF:
		return p.parseIf()
	case GOTO:
		p.advance()
		ref, err := p.parseTarget()
		if err != nil {
			return nil, err
		}
		return &GotoStmt{Target: ref}, nil
	case GOSUB:
		p.advance()
		ref, err := p.parseTarget()
		if err != nil {
			return nil, err
		}
		return &GosubStmt{Target: ref}, nil
	case RETURN:
		p.advance()
		return &ReturnStmt{}, nil
	case END:
		p.advance()
		return &EndStmt{}, nil
	case FOR:
		return p.parseFor()
	case NEXT:
		return p.parseNext()
	case WHILE:
		return p.parseWhile()
	case INPUT:
		return p.parseInput()
	default:
		return nil, p.fmtError(tok, "expected statement, got %s (%q)", tok.Type, tok.Lexeme)
	}
}

// parsePrint handles PRINT "A"; X, Y;
func (p *Parser) parsePrint() (Stmt, error) {
	p.advance() // PRINT
	stmt := &PrintStmt{}
	for !p.atStatementEnd() {
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		item := PrintItem{Expr: expr}
		switch p.peek().Type {
		case COMMA:
			item.Sep = ','
			p.advance()
		case SEMICOLON:
			item.Sep = ';'
			p.advance()
		}
		stmt.Items = append(stmt.Items, item)
		if item.Sep == 0 {
			break
		}
	}
	return stmt, nil
}

// parseLet handles [LET] X = expr. The LET keyword is already consumed.
func (p *Parser) parseLet() (Stmt, error) {
	v, err := p.parseVariable()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(EQUALS); err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	return &LetStmt{Var: v, Value: value}, nil
}

func (p *Parser) parseIf() (Stmt, error) {
	p.advance() // IF
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(THEN); err != nil {
		return nil, err
	}
	then, err := p.parseBranch()
	if err != nil {
		return nil, err
	}
	stmt := &IfStmt{Cond: cond, Then: then}
	if p.peek().Type == ELSE {
		p.advance()
		if stmt.Else, err = p.parseBranch(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

// parseBranch reads the statement after THEN or ELSE. A bare line number is
// shorthand for GOTO.
func (p *Parser) parseBranch() (Stmt, error) {
	if tok := p.peek(); tok.Type == NUMBER {
		ref, err := p.parseTarget()
		if err != nil {
			return nil, err
		}
		return &GotoStmt{Target: ref}, nil
	}
	return p.parseStatement()
}

func (p *Parser) parseTarget() (*LabelRef, error) {
	tok := p.advance()
	switch tok.Type {
	case IDENTIFIER:
		if v := ParseVariable(tok.Lexeme); v.Suffix != SuffixNone {
			return nil, p.fmtError(tok, "label %q cannot carry a type suffix", tok.Lexeme)
		}
		return &LabelRef{Name: tok.Lexeme}, nil
	case NUMBER:
		if strings.Contains(tok.Lexeme, ".") {
			return nil, p.fmtError(tok, "line number %s is not an integer", tok.Lexeme)
		}
		return &LabelRef{Name: tok.Lexeme}, nil
	}
	return nil, p.fmtError(tok, "expected label or line number, got %s (%q)", tok.Type, tok.Lexeme)
}

// parseFor handles FOR I = start TO end [STEP step].
func (p *Parser) parseFor() (Stmt, error) {
	p.advance() // FOR
	v, err := p.parseVariable()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(EQUALS); err != nil {
		return nil, err
	}
	start, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(TO); err != nil {
		return nil, err
	}
	end, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	stmt := &ForStmt{Var: v, Start: start, End: end}
	if p.peek().Type == STEP {
		p.advance()
		if stmt.Step, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) parseNext() (Stmt, error) {
	p.advance() // NEXT
	stmt := &NextStmt{}
	if p.atStatementEnd() {
		return stmt, nil
	}
	for {
		v, err := p.parseVariable()
		if err != nil {
			return nil, err
		}
		stmt.Vars = append(stmt.Vars, v)
		if p.peek().Type != COMMA {
			return stmt, nil
		}
		p.advance()
	}
}

// parseWhile reads the condition, the body lines and the closing WEND.
func (p *Parser) parseWhile() (Stmt, error) {
	p.advance() // WHILE
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(NEWLINE); err != nil {
		return nil, err
	}
	body, err := p.parseLines(WEND)
	if err != nil {
		return nil, err
	}
	p.advance() // WEND
	return &WhileStmt{Cond: cond, Body: body}, nil
}

// parseInput handles INPUT ["prompt";] A, B$.
func (p *Parser) parseInput() (Stmt, error) {
	p.advance() // INPUT
	stmt := &InputStmt{}
	if tok := p.peek(); tok.Type == STRING {
		p.advance()
		stmt.Prompt = &StringLit{Value: tok.Lexeme}
		if sep := p.advance(); sep.Type != SEMICOLON && sep.Type != COMMA {
			return nil, p.fmtError(sep, "expected ; or , after INPUT prompt, got %s (%q)", sep.Type, sep.Lexeme)
		}
	}
	for {
		v, err := p.parseVariable()
		if err != nil {
			return nil, err
		}
		stmt.Vars = append(stmt.Vars, v)
		if p.peek().Type != COMMA {
			return stmt, nil
		}
		p.advance()
	}
}

func (p *Parser) parseVariable() (Variable, error) {
	tok, err := p.expect(IDENTIFIER)
	if err != nil {
		return Variable{}, err
	}
	return ParseVariable(tok.Lexeme), nil
}

// parseExpression is the entry point for expression parsing. Comparisons do
// not chain.
func (p *Parser) parseExpression() (Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	if op := p.peek().Type; op.IsComparison() {
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: op, Left: left, Right: right}, nil
	}
	return left, nil
}

// parseAdditive handles + and -
func (p *Parser) parseAdditive() (Expr, error) {
	expr, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == PLUS || p.peek().Type == MINUS {
		op := p.advance().Type
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

// parseTerm handles * and /
func (p *Parser) parseTerm() (Expr, error) {
	expr, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == STAR || p.peek().Type == SLASH {
		op := p.advance().Type
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		expr = &BinaryExpr{Op: op, Left: expr, Right: right}
	}
	return expr, nil
}

func (p *Parser) parseUnary() (Expr, error) {
	switch p.peek().Type {
	case MINUS:
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: MINUS, Operand: operand}, nil
	case PLUS:
		p.advance()
		return p.parseUnary()
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case NUMBER:
		p.advance()
		val, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.fmtError(tok, "bad number %q", tok.Lexeme)
		}
		return &NumberLit{Value: val}, nil

	case STRING:
		p.advance()
		return &StringLit{Value: tok.Lexeme}, nil

	case IDENTIFIER:
		p.advance()
		return &VarRef{Var: ParseVariable(tok.Lexeme)}, nil

	case LPAREN:
		p.advance()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, p.fmtError(tok, "expected expression, got %s (%q)", tok.Type, tok.Lexeme)
	}
}

// Parse builds a Program from the token stream of rawSource.
func Parse(tokens []Token, rawSource string) (*Program, error) {
	p := NewParser(tokens, rawSource)
	stmts, err := p.parseLines(EOF)
	if err != nil {
		return nil, err
	}
	return &Program{Stmts: stmts}, nil
}
