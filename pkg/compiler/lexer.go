package compiler

import (
	"fmt"
	"strings"
	"unicode"
)

// keywords maps upper-cased source text to its keyword TokenType.
// REM is handled by the lexer itself and never reaches the parser.
var keywords = map[string]TokenType{
	"PRINT":  PRINT,
	"LET":    LET,
	"IF":     IF,
	"THEN":   THEN,
	"ELSE":   ELSE,
	"GOTO":   GOTO,
	"GOSUB":  GOSUB,
	"RETURN": RETURN,
	"FOR":    FOR,
	"TO":     TO,
	"STEP":   STEP,
	"NEXT":   NEXT,
	"WHILE":  WHILE,
	"WEND":   WEND,
	"INPUT":  INPUT,
	"END":    END,
}

// Lexer holds all mutable state for a single scanning pass over src.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // current 1-based source line
}

func newLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), pos: 0, line: 1}
}

// peek returns the rune at the current position without advancing.
func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

// peek2 returns the rune one position ahead of the current position.
func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

// advance consumes one rune and returns it.
func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
	}
	return r
}

// skipBlanks skips spaces and tabs but stops at '\n', which is a token here.
func (l *Lexer) skipBlanks() {
	for l.pos < len(l.src) {
		r := l.peek()
		if r == '\n' || !unicode.IsSpace(r) {
			return
		}
		l.advance()
	}
}

// skipComment discards everything up to, but not including, the next newline.
func (l *Lexer) skipComment() {
	for l.pos < len(l.src) && l.peek() != '\n' {
		l.advance()
	}
}

// scanIdent collects an identifier or keyword, plus a trailing $ or % type
// suffix. Suffixed names are never keywords.
func (l *Lexer) scanIdent() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	if r := l.peek(); r == '$' || r == '%' {
		l.advance()
		return Token{Type: IDENTIFIER, Lexeme: string(l.src[start:l.pos]), Line: line}
	}
	lexeme := string(l.src[start:l.pos])
	if kw, ok := keywords[strings.ToUpper(lexeme)]; ok {
		return Token{Type: kw, Lexeme: lexeme, Line: line}
	}
	return Token{Type: IDENTIFIER, Lexeme: lexeme, Line: line}
}

// scanNumber collects 12, 1.5 or .5. The first digit or '.' must still be
// at l.peek().
func (l *Lexer) scanNumber() Token {
	line := l.line
	start := l.pos
	for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' && unicode.IsDigit(l.peek2()) {
		l.advance()
		for l.pos < len(l.src) && unicode.IsDigit(l.peek()) {
			l.advance()
		}
	}
	return Token{Type: NUMBER, Lexeme: string(l.src[start:l.pos]), Line: line}
}

// scanString collects a string literal "...". A doubled quote inside the
// literal stands for one quote character.
func (l *Lexer) scanString() (Token, error) {
	line := l.line
	l.advance() // consume opening "
	var val []rune

	for l.pos < len(l.src) {
		r := l.peek()
		if r == '\n' {
			break
		}
		if r == '"' {
			if l.peek2() == '"' {
				l.advance()
				l.advance()
				val = append(val, '"')
				continue
			}
			l.advance() // consume closing "
			return Token{Type: STRING, Lexeme: string(val), Line: line}, nil
		}
		val = append(val, r)
		l.advance()
	}
	return Token{}, fmt.Errorf("unterminated string literal on line %d", line)
}

// nextToken skips blanks and comments and returns the next Token.
func (l *Lexer) nextToken() (Token, error) {
	for {
		l.skipBlanks()
		if l.peek() == '\'' {
			l.skipComment()
			continue
		}
		break
	}
	if l.pos >= len(l.src) {
		return Token{Type: EOF, Lexeme: "", Line: l.line}, nil
	}

	ch := l.peek()
	line := l.line

	if unicode.IsLetter(ch) || ch == '_' {
		tok := l.scanIdent()
		if tok.Type == IDENTIFIER && strings.EqualFold(tok.Lexeme, "REM") {
			l.skipComment()
			return l.nextToken()
		}
		return tok, nil
	}
	if unicode.IsDigit(ch) || (ch == '.' && unicode.IsDigit(l.peek2())) {
		return l.scanNumber(), nil
	}
	if ch == '"' {
		return l.scanString()
	}

	l.advance() // consume the character before the switch
	switch ch {
	case '\n':
		return Token{NEWLINE, "\n", line}, nil
	case '(':
		return Token{LPAREN, "(", line}, nil
	case ')':
		return Token{RPAREN, ")", line}, nil
	case ',':
		return Token{COMMA, ",", line}, nil
	case ';':
		return Token{SEMICOLON, ";", line}, nil
	case ':':
		return Token{COLON, ":", line}, nil
	case '+':
		return Token{PLUS, "+", line}, nil
	case '-':
		return Token{MINUS, "-", line}, nil
	case '*':
		return Token{STAR, "*", line}, nil
	case '/':
		return Token{SLASH, "/", line}, nil
	case '=':
		return Token{EQUALS, "=", line}, nil
	case '<':
		if l.peek() == '>' {
			l.advance()
			return Token{NOT_EQ, "<>", line}, nil
		}
		if l.peek() == '=' {
			l.advance()
			return Token{LESS_EQ, "<=", line}, nil
		}
		return Token{LESS, "<", line}, nil
	case '>':
		if l.peek() == '=' {
			l.advance()
			return Token{GREATER_EQ, ">=", line}, nil
		}
		return Token{GREATER, ">", line}, nil
	default:
		return Token{}, fmt.Errorf("unexpected character %q on line %d", ch, line)
	}
}

// Lex tokenises src and returns all tokens including the final EOF token.
// It returns a non-nil error on the first illegal character or unterminated
// string.
func Lex(src string) ([]Token, error) {
	l := newLexer(src)
	var tokens []Token
	for {
		tok, err := l.nextToken()
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
		if tok.Type == EOF {
			return tokens, nil
		}
	}
}
