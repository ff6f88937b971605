package compiler

import (
	"fmt"
	"strconv"
	"strings"
)

// Suffix is the type marker on a variable name. It is the whole of a
// variable's static type.
type Suffix int

const (
	SuffixNone    Suffix = iota // A   double precision
	SuffixString                // A$  string
	SuffixInteger               // A%  integer
)

func (s Suffix) String() string {
	switch s {
	case SuffixString:
		return "$"
	case SuffixInteger:
		return "%"
	}
	return ""
}

// TypeName is the human name used in diagnostics.
func (s Suffix) TypeName() string {
	switch s {
	case SuffixString:
		return "string"
	case SuffixInteger:
		return "integer"
	}
	return "numeric"
}

// Variable is a (name, suffix) identity. A, A$ and A% are three different
// variables.
type Variable struct {
	Name   string
	Suffix Suffix
}

func (v Variable) String() string { return v.Name + v.Suffix.String() }

// ParseVariable splits a lexeme such as "N$" into its identity.
func ParseVariable(lexeme string) Variable {
	switch {
	case strings.HasSuffix(lexeme, "$"):
		return Variable{Name: strings.TrimSuffix(lexeme, "$"), Suffix: SuffixString}
	case strings.HasSuffix(lexeme, "%"):
		return Variable{Name: strings.TrimSuffix(lexeme, "%"), Suffix: SuffixInteger}
	}
	return Variable{Name: lexeme}
}

//  Expression nodes

// Expr is implemented by every node that produces a value.
type Expr interface {
	exprNode()
	String() string
}

// NumberLit is a numeric constant. All numbers are doubles at this level;
// the analyzer types whole values as integer.
//
//	LET X = 10
//	        ^^  NumberLit{Value: 10}
type NumberLit struct {
	Value float64
}

func (*NumberLit) exprNode() {}
func (n *NumberLit) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

// StringLit is a string constant "...".
type StringLit struct {
	Value string
}

func (*StringLit) exprNode()        {}
func (s *StringLit) String() string { return strconv.Quote(s.Value) }

// VarRef is a read of a variable.
//
//	PRINT N$
//	      ^^  VarRef{Var: Variable{Name: "N", Suffix: SuffixString}}
type VarRef struct {
	Var Variable
}

func (*VarRef) exprNode()        {}
func (v *VarRef) String() string { return v.Var.String() }

// BinaryExpr represents Left Op Right for arithmetic and comparison.
//
//	X + 1
//	^ ^ ^
//	| | |
//	| | Right
//	| Op
//	Left
type BinaryExpr struct {
	Op    TokenType
	Left  Expr
	Right Expr
}

func (*BinaryExpr) exprNode() {}
func (b *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op.Symbol(), b.Right)
}

// UnaryExpr is a prefix operator. The parser only builds MINUS; unary plus
// is dropped while parsing.
type UnaryExpr struct {
	Op      TokenType
	Operand Expr
}

func (*UnaryExpr) exprNode() {}
func (u *UnaryExpr) String() string {
	return fmt.Sprintf("(%s%s)", u.Op.Symbol(), u.Operand)
}

//  Statement nodes

// Stmt is implemented by every statement node.
type Stmt interface {
	stmtNode()
	String() string
}

// Program is the root of compilation.
type Program struct {
	Stmts []Stmt
}

func (p *Program) String() string {
	var sb strings.Builder
	for _, s := range p.Stmts {
		sb.WriteString(s.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// PrintItem is one expression of a PRINT list and the separator written
// after it: ',' ';' or 0 when none followed.
type PrintItem struct {
	Expr Expr
	Sep  rune
}

// PrintStmt writes its items. A separator on the last item suppresses the
// newline.
//
//	PRINT "A"; X, Y;
//	      ^^^^ ^^^ ^^  Items{{"A", ';'}, {X, ','}, {Y, ';'}}
type PrintStmt struct {
	Items []PrintItem
}

func (*PrintStmt) stmtNode() {}
func (p *PrintStmt) String() string {
	var sb strings.Builder
	sb.WriteString("PRINT")
	for _, it := range p.Items {
		sb.WriteByte(' ')
		sb.WriteString(it.Expr.String())
		if it.Sep != 0 {
			sb.WriteRune(it.Sep)
		}
	}
	return sb.String()
}

// LetStmt assigns Value to Var.
type LetStmt struct {
	Var   Variable
	Value Expr
}

func (*LetStmt) stmtNode() {}
func (l *LetStmt) String() string {
	return fmt.Sprintf("LET %s = %s", l.Var, l.Value)
}

// IfStmt runs Then when Cond is nonzero, otherwise Else if present.
// Each branch is a single statement.
type IfStmt struct {
	Cond Expr
	Then Stmt
	Else Stmt // nil when there is no ELSE
}

func (*IfStmt) stmtNode() {}
func (i *IfStmt) String() string {
	s := fmt.Sprintf("IF %s THEN %s", i.Cond, stmtString(i.Then))
	if i.Else != nil {
		s += " ELSE " + i.Else.String()
	}
	return s
}

// LabelRef is a pending jump target. The label resolver fills in Target.
type LabelRef struct {
	Name   string
	Target *LabelStmt // nil until resolved
}

// Resolved reports whether the resolver found a matching label.
func (r *LabelRef) Resolved() bool { return r != nil && r.Target != nil }

// GotoStmt transfers control to a label.
type GotoStmt struct {
	Target *LabelRef
}

func (*GotoStmt) stmtNode()        {}
func (g *GotoStmt) String() string { return "GOTO " + g.Target.Name }

// GosubStmt pushes a return point and transfers control to a label.
type GosubStmt struct {
	Target *LabelRef
}

func (*GosubStmt) stmtNode()        {}
func (g *GosubStmt) String() string { return "GOSUB " + g.Target.Name }

// ReturnStmt resumes after the most recent GOSUB.
type ReturnStmt struct{}

func (*ReturnStmt) stmtNode()      {}
func (*ReturnStmt) String() string { return "RETURN" }

// ForStmt opens a counted loop closed by a matching NEXT.
//
//	FOR I = 1 TO 10 STEP 2
//	    ^   ^    ^^      ^  Var Start End Step
type ForStmt struct {
	Var   Variable
	Start Expr
	End   Expr
	Step  Expr // nil means 1
}

func (*ForStmt) stmtNode() {}
func (f *ForStmt) String() string {
	s := fmt.Sprintf("FOR %s = %s TO %s", f.Var, f.Start, f.End)
	if f.Step != nil {
		s += " STEP " + f.Step.String()
	}
	return s
}

// NextStmt closes FOR loops, innermost first. An empty Vars closes whichever
// loop is innermost.
type NextStmt struct {
	Vars []Variable
}

func (*NextStmt) stmtNode() {}
func (n *NextStmt) String() string {
	if len(n.Vars) == 0 {
		return "NEXT"
	}
	names := make([]string, len(n.Vars))
	for i, v := range n.Vars {
		names[i] = v.String()
	}
	return "NEXT " + strings.Join(names, ", ")
}

// WhileStmt repeats Body while Cond is nonzero. The body is nested, not
// flattened into the enclosing sequence.
type WhileStmt struct {
	Cond Expr
	Body []Stmt
}

func (*WhileStmt) stmtNode() {}
func (w *WhileStmt) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "WHILE %s\n", w.Cond)
	for _, s := range w.Body {
		for _, line := range strings.Split(s.String(), "\n") {
			sb.WriteString("  " + line + "\n")
		}
	}
	sb.WriteString("WEND")
	return sb.String()
}

// InputStmt reads one host line into Vars. Prompt may be nil.
type InputStmt struct {
	Prompt Expr
	Vars   []Variable
}

func (*InputStmt) stmtNode() {}
func (in *InputStmt) String() string {
	names := make([]string, len(in.Vars))
	for i, v := range in.Vars {
		names[i] = v.String()
	}
	if in.Prompt != nil {
		return fmt.Sprintf("INPUT %s; %s", in.Prompt, strings.Join(names, ", "))
	}
	return "INPUT " + strings.Join(names, ", ")
}

// EndStmt stops the program.
type EndStmt struct{}

func (*EndStmt) stmtNode()      {}
func (*EndStmt) String() string { return "END" }

// LabelStmt names a program point. Numeric line numbers are labels too,
// named by their digits.
type LabelStmt struct {
	Name string
}

func (*LabelStmt) stmtNode()        {}
func (l *LabelStmt) String() string { return l.Name + ":" }

func stmtString(s Stmt) string {
	if s == nil {
		return "<nothing>"
	}
	return s.String()
}
