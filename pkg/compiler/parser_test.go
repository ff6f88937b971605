package compiler

import (
	"reflect"
	"strings"
	"testing"
)

func parseSource(t *testing.T, src string) *Program {
	t.Helper()
	tokens, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex failed: %v", err)
	}
	prog, err := Parse(tokens, src)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return prog
}

func num(v float64) *NumberLit { return &NumberLit{Value: v} }
func str(s string) *StringLit  { return &StringLit{Value: s} }
func ref(lexeme string) *VarRef {
	return &VarRef{Var: ParseVariable(lexeme)}
}
func bin(op TokenType, l, r Expr) *BinaryExpr {
	return &BinaryExpr{Op: op, Left: l, Right: r}
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []Stmt
	}{
		{
			name:  "Let With Precedence",
			input: "LET X = 2 + 3 * 4",
			expected: []Stmt{
				&LetStmt{Var: Variable{Name: "X"}, Value: bin(PLUS, num(2), bin(STAR, num(3), num(4)))},
			},
		},
		{
			name:  "Implicit Let",
			input: "N$ = \"bob\"",
			expected: []Stmt{
				&LetStmt{Var: Variable{Name: "N", Suffix: SuffixString}, Value: str("bob")},
			},
		},
		{
			name:  "Print Separators",
			input: `PRINT "A"; X, Y;`,
			expected: []Stmt{
				&PrintStmt{Items: []PrintItem{
					{Expr: str("A"), Sep: ';'},
					{Expr: ref("X"), Sep: ','},
					{Expr: ref("Y"), Sep: ';'},
				}},
			},
		},
		{
			name:     "Empty Print",
			input:    "PRINT",
			expected: []Stmt{&PrintStmt{}},
		},
		{
			name:  "If Then Else",
			input: "IF X > 1 THEN PRINT X ELSE GOTO DONE",
			expected: []Stmt{
				&IfStmt{
					Cond: bin(GREATER, ref("X"), num(1)),
					Then: &PrintStmt{Items: []PrintItem{{Expr: ref("X")}}},
					Else: &GotoStmt{Target: &LabelRef{Name: "DONE"}},
				},
			},
		},
		{
			name:  "If Then Line Number",
			input: "IF A% = 0 THEN 100",
			expected: []Stmt{
				&IfStmt{
					Cond: bin(EQUALS, ref("A%"), num(0)),
					Then: &GotoStmt{Target: &LabelRef{Name: "100"}},
				},
			},
		},
		{
			name:  "For With Step",
			input: "FOR I = 1 TO 5 STEP -2",
			expected: []Stmt{
				&ForStmt{Var: Variable{Name: "I"}, Start: num(1), End: num(5), Step: &UnaryExpr{Op: MINUS, Operand: num(2)}},
			},
		},
		{
			name:     "Next List",
			input:    "NEXT J, I",
			expected: []Stmt{&NextStmt{Vars: []Variable{{Name: "J"}, {Name: "I"}}}},
		},
		{
			name:     "Bare Next",
			input:    "NEXT",
			expected: []Stmt{&NextStmt{}},
		},
		{
			name:  "Input With Prompt",
			input: `INPUT "Name"; N$, AGE%`,
			expected: []Stmt{
				&InputStmt{Prompt: str("Name"), Vars: []Variable{{Name: "N", Suffix: SuffixString}, {Name: "AGE", Suffix: SuffixInteger}}},
			},
		},
		{
			name:  "Labels",
			input: "10 PRINT 1\nLOOP: GOSUB 10\nRETURN\nEND",
			expected: []Stmt{
				&LabelStmt{Name: "10"},
				&PrintStmt{Items: []PrintItem{{Expr: num(1)}}},
				&LabelStmt{Name: "LOOP"},
				&GosubStmt{Target: &LabelRef{Name: "10"}},
				&ReturnStmt{},
				&EndStmt{},
			},
		},
		{
			name:  "While Body",
			input: "WHILE X < 3\nX = X + 1\nINNER:\nWEND\nEND",
			expected: []Stmt{
				&WhileStmt{Cond: bin(LESS, ref("X"), num(3)), Body: []Stmt{
					&LetStmt{Var: Variable{Name: "X"}, Value: bin(PLUS, ref("X"), num(1))},
					&LabelStmt{Name: "INNER"},
				}},
				&EndStmt{},
			},
		},
		{
			name:  "Blank Lines And Comments",
			input: "\n\nREM nothing here\n' nor here\nEND\n",
			expected: []Stmt{
				&EndStmt{},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := parseSource(t, tt.input)
			if !reflect.DeepEqual(prog.Stmts, tt.expected) {
				t.Errorf("Parse() =\n%s\nwant\n%s", prog, &Program{Stmts: tt.expected})
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"Missing Then", "IF X PRINT X", "expected THEN"},
		{"Missing Wend", "WHILE 1\nPRINT 1", "missing WEND"},
		{"Stray Wend", "WEND", "WEND without WHILE"},
		{"Fractional Line Number", "1.5 END", "not an integer"},
		{"Suffixed Label", "GOTO A$", "cannot carry a type suffix"},
		{"Trailing Tokens", "END END", "after statement"},
		{"Bad Expression", "LET X = *", "expected expression"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Lex(tt.input)
			if err != nil {
				t.Fatalf("Lex failed: %v", err)
			}
			_, err = Parse(tokens, tt.input)
			if err == nil {
				t.Fatalf("expected parse error containing %q", tt.want)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err, tt.want)
			}
			if !strings.Contains(err.Error(), "|>") {
				t.Errorf("error %q does not quote the source line", err)
			}
		})
	}
}
