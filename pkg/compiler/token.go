package compiler

import "fmt"

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENTIFIER // variable or label name, including any $ or % suffix
	NUMBER     // decimal literal, 10 or 3.25
	STRING     // string literal "..."
	NEWLINE    // end of a source line

	// Keywords
	PRINT
	LET
	IF
	THEN
	ELSE
	GOTO
	GOSUB
	RETURN
	FOR
	TO
	STEP
	NEXT
	WHILE
	WEND
	INPUT
	END

	// Punctuation
	LPAREN    // (
	RPAREN    // )
	COMMA     // ,
	SEMICOLON // ;
	COLON     // :

	// Arithmetic operators
	PLUS  // +
	MINUS // -
	STAR  // *
	SLASH // /

	// Comparison. "=" doubles as the assignment token in LET and FOR.
	EQUALS     // =
	NOT_EQ     // <>
	LESS       // <
	GREATER    // >
	LESS_EQ    // <=
	GREATER_EQ // >=
)

// tokenNames is indexed by TokenType.
var tokenNames = [...]string{
	EOF:        "EOF",
	IDENTIFIER: "IDENTIFIER",
	NUMBER:     "NUMBER",
	STRING:     "STRING",
	NEWLINE:    "NEWLINE",
	PRINT:      "PRINT",
	LET:        "LET",
	IF:         "IF",
	THEN:       "THEN",
	ELSE:       "ELSE",
	GOTO:       "GOTO",
	GOSUB:      "GOSUB",
	RETURN:     "RETURN",
	FOR:        "FOR",
	TO:         "TO",
	STEP:       "STEP",
	NEXT:       "NEXT",
	WHILE:      "WHILE",
	WEND:       "WEND",
	INPUT:      "INPUT",
	END:        "END",
	LPAREN:     "LPAREN",
	RPAREN:     "RPAREN",
	COMMA:      "COMMA",
	SEMICOLON:  "SEMICOLON",
	COLON:      "COLON",
	PLUS:       "PLUS",
	MINUS:      "MINUS",
	STAR:       "STAR",
	SLASH:      "SLASH",
	EQUALS:     "EQUALS",
	NOT_EQ:     "NOT_EQ",
	LESS:       "LESS",
	GREATER:    "GREATER",
	LESS_EQ:    "LESS_EQ",
	GREATER_EQ: "GREATER_EQ",
}

func (tt TokenType) String() string {
	if int(tt) >= 0 && int(tt) < len(tokenNames) {
		return tokenNames[tt]
	}
	return fmt.Sprintf("TokenType(%d)", int(tt))
}

// opSymbols is the source spelling of every operator token, used when an
// expression is printed back.
var opSymbols = map[TokenType]string{
	PLUS:       "+",
	MINUS:      "-",
	STAR:       "*",
	SLASH:      "/",
	EQUALS:     "=",
	NOT_EQ:     "<>",
	LESS:       "<",
	GREATER:    ">",
	LESS_EQ:    "<=",
	GREATER_EQ: ">=",
}

// Symbol returns the source spelling of an operator token, or its name for
// anything else.
func (tt TokenType) Symbol() string {
	if s, ok := opSymbols[tt]; ok {
		return s
	}
	return tt.String()
}

// IsComparison reports whether tt is one of = <> < > <= >=.
func (tt TokenType) IsComparison() bool {
	switch tt {
	case EQUALS, NOT_EQ, LESS, GREATER, LESS_EQ, GREATER_EQ:
		return true
	}
	return false
}

// Token is a single lexical unit produced by the Lexer.
type Token struct {
	Type   TokenType
	Lexeme string // the exact source text that was matched
	Line   int    // 1-based source line
}

func (t Token) String() string {
	return fmt.Sprintf("%-10s %-14q  line %d", t.Type, t.Lexeme, t.Line)
}
