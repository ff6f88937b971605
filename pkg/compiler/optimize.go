package compiler

import "math"

// Pipeline runs the tree rewrites in their fixed order: constant folding,
// dead code elimination, unused label elimination. Every pass returns a new
// Program and leaves its input alone.
//
// Dropping a label can strand the code after it, so the last two passes
// repeat until the program stops shrinking. Running a Pipeline on its own
// output changes nothing.
type Pipeline struct {
	ConstantFolding bool
	DeadCode        bool
	UnusedLabels    bool
}

// DefaultPipeline has every pass enabled.
func DefaultPipeline() Pipeline {
	return Pipeline{ConstantFolding: true, DeadCode: true, UnusedLabels: true}
}

// Optimize runs the default pipeline.
func Optimize(prog *Program) *Program {
	return DefaultPipeline().Run(prog)
}

func (pl Pipeline) Run(prog *Program) *Program {
	if pl.ConstantFolding {
		prog = FoldConstants(prog)
	}
	for {
		before := countStmts(prog.Stmts)
		if pl.DeadCode {
			prog = EliminateDeadCode(prog)
		}
		if pl.UnusedLabels {
			prog = EliminateUnusedLabels(prog)
		}
		if countStmts(prog.Stmts) == before {
			return prog
		}
	}
}

func countStmts(stmts []Stmt) int {
	n := 0
	walkStmts(stmts, func(Stmt) { n++ })
	return n
}

//  Constant folding

// FoldConstants evaluates literal arithmetic and comparisons bottom-up,
// applies the x+0, x-0, x*1 identities and collapses IF and WHILE statements
// whose condition became a literal.
func FoldConstants(prog *Program) *Program {
	return &Program{Stmts: foldStmts(prog.Stmts)}
}

func foldStmts(stmts []Stmt) []Stmt {
	out := make([]Stmt, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, foldStmt(s)...)
	}
	return out
}

// foldStmt returns zero statements when s folds away entirely, and one
// otherwise.
func foldStmt(s Stmt) []Stmt {
	switch n := s.(type) {
	case *PrintStmt:
		items := make([]PrintItem, len(n.Items))
		for i, it := range n.Items {
			items[i] = PrintItem{Expr: foldExpr(it.Expr), Sep: it.Sep}
		}
		return []Stmt{&PrintStmt{Items: items}}

	case *LetStmt:
		return []Stmt{&LetStmt{Var: n.Var, Value: foldExpr(n.Value)}}

	case *IfStmt:
		cond := foldExpr(n.Cond)
		then := foldBranch(n.Then)
		els := foldBranch(n.Else)
		if lit, ok := cond.(*NumberLit); ok {
			taken := els
			if lit.Value != 0 {
				taken = then
			}
			if taken == nil {
				return nil
			}
			return []Stmt{taken}
		}
		return []Stmt{&IfStmt{Cond: cond, Then: then, Else: els}}

	case *ForStmt:
		f := &ForStmt{Var: n.Var, Start: foldExpr(n.Start), End: foldExpr(n.End)}
		if n.Step != nil {
			f.Step = foldExpr(n.Step)
		}
		return []Stmt{f}

	case *WhileStmt:
		cond := foldExpr(n.Cond)
		// A GOTO can still land on a label inside a loop that never runs.
		if isLit(cond, 0) && !definesLabel(n.Body) {
			return nil
		}
		return []Stmt{&WhileStmt{Cond: cond, Body: foldStmts(n.Body)}}

	case *InputStmt:
		in := &InputStmt{Vars: n.Vars}
		if n.Prompt != nil {
			in.Prompt = foldExpr(n.Prompt)
		}
		return []Stmt{in}
	}
	return []Stmt{s}
}

// foldBranch folds an IF branch, which may fold away to nil.
func foldBranch(s Stmt) Stmt {
	if s == nil {
		return nil
	}
	folded := foldStmt(s)
	if len(folded) == 0 {
		return nil
	}
	return folded[0]
}

func foldExpr(e Expr) Expr {
	switch n := e.(type) {
	case *BinaryExpr:
		left := foldExpr(n.Left)
		right := foldExpr(n.Right)
		l, lok := left.(*NumberLit)
		r, rok := right.(*NumberLit)
		if lok && rok {
			if v, ok := evalBinary(n.Op, l.Value, r.Value); ok {
				return &NumberLit{Value: v}
			}
		}
		if id := identity(n.Op, left, right); id != nil {
			return id
		}
		return &BinaryExpr{Op: n.Op, Left: left, Right: right}

	case *UnaryExpr:
		operand := foldExpr(n.Operand)
		if lit, ok := operand.(*NumberLit); ok && n.Op == MINUS {
			return &NumberLit{Value: -lit.Value}
		}
		return &UnaryExpr{Op: n.Op, Operand: operand}
	}
	return e
}

// evalBinary computes a literal operation. Division by zero is left for the
// program to trap at run time.
func evalBinary(op TokenType, l, r float64) (float64, bool) {
	switch op {
	case PLUS:
		return l + r, true
	case MINUS:
		return l - r, true
	case STAR:
		return l * r, true
	case SLASH:
		if r == 0 {
			return 0, false
		}
		return l / r, true
	case EQUALS:
		return boolNum(l == r), true
	case NOT_EQ:
		return boolNum(l != r), true
	case LESS:
		return boolNum(l < r), true
	case GREATER:
		return boolNum(l > r), true
	case LESS_EQ:
		return boolNum(l <= r), true
	case GREATER_EQ:
		return boolNum(l >= r), true
	}
	return math.NaN(), false
}

func boolNum(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// identity simplifies x+0, 0+x, x-0, x*1 and 1*x, returning nil when no
// rule applies. Dropping the 0 from "A"+0 would change the concatenated
// text, so string operands are left alone.
func identity(op TokenType, left, right Expr) Expr {
	if isStringExpr(left) || isStringExpr(right) {
		return nil
	}
	switch op {
	case PLUS:
		if isLit(right, 0) {
			return left
		}
		if isLit(left, 0) {
			return right
		}
	case MINUS:
		if isLit(right, 0) {
			return left
		}
	case STAR:
		if isLit(right, 1) {
			return left
		}
		if isLit(left, 1) {
			return right
		}
	}
	return nil
}

func isLit(e Expr, v float64) bool {
	lit, ok := e.(*NumberLit)
	return ok && lit.Value == v
}

// isStringExpr reports whether e is a string by its shape alone.
func isStringExpr(e Expr) bool {
	switch n := e.(type) {
	case *StringLit:
		return true
	case *VarRef:
		return n.Var.Suffix == SuffixString
	case *BinaryExpr:
		return n.Op == PLUS && (isStringExpr(n.Left) || isStringExpr(n.Right))
	}
	return false
}

//  Dead code elimination

// EliminateDeadCode drops statements that follow an END or an unconditional
// GOTO, up to the next label. WHILE bodies are scanned the same way. A
// statement that defines a label survives even when unreachable, since a
// jump may enter it there.
func EliminateDeadCode(prog *Program) *Program {
	return &Program{Stmts: dropUnreachable(prog.Stmts, true)}
}

func dropUnreachable(stmts []Stmt, reachable bool) []Stmt {
	out := make([]Stmt, 0, len(stmts))
	for _, s := range stmts {
		if _, ok := s.(*LabelStmt); ok {
			reachable = true
		}
		kept := trimStmt(s, reachable)
		if kept == nil {
			continue
		}
		out = append(out, kept)
		switch kept.(type) {
		case *EndStmt, *GotoStmt:
			reachable = false
		default:
			// Either already reachable, or entered through a label inside
			// and left through the bottom.
			reachable = true
		}
	}
	return out
}

// trimStmt returns what is left of s, or nil when none of it can run.
func trimStmt(s Stmt, reachable bool) Stmt {
	switch n := s.(type) {
	case *WhileStmt:
		hasLabel := definesLabel(n.Body)
		// Once a label inside the body is reached the loop test is too, so
		// the whole body runs unless the test is a literal false.
		entered := (reachable || hasLabel) && !isLit(n.Cond, 0)
		if !entered && !hasLabel {
			return nil
		}
		return &WhileStmt{Cond: n.Cond, Body: dropUnreachable(n.Body, entered)}

	case *IfStmt:
		if reachable {
			return s
		}
		if !definesLabel([]Stmt{s}) {
			return nil
		}
		out := &IfStmt{Cond: n.Cond, Then: n.Then, Else: n.Else}
		if definesLabel([]Stmt{n.Then}) {
			out.Then = trimStmt(n.Then, false)
		}
		if definesLabel([]Stmt{n.Else}) {
			out.Else = trimStmt(n.Else, false)
		}
		return out
	}
	if reachable {
		return s
	}
	return nil
}

// definesLabel reports whether a label appears anywhere in stmts.
func definesLabel(stmts []Stmt) bool {
	found := false
	walkStmts(stmts, func(s Stmt) {
		if _, ok := s.(*LabelStmt); ok {
			found = true
		}
	})
	return found
}

//  Unused label elimination

// EliminateUnusedLabels removes every label no surviving GOTO or GOSUB
// names.
func EliminateUnusedLabels(prog *Program) *Program {
	used := referencedLabels(prog.Stmts)
	return &Program{Stmts: dropLabels(prog.Stmts, used)}
}

func referencedLabels(stmts []Stmt) map[string]bool {
	used := make(map[string]bool)
	walkStmts(stmts, func(s Stmt) {
		switch n := s.(type) {
		case *GotoStmt:
			used[n.Target.Name] = true
		case *GosubStmt:
			used[n.Target.Name] = true
		}
	})
	return used
}

func dropLabels(stmts []Stmt, used map[string]bool) []Stmt {
	out := make([]Stmt, 0, len(stmts))
	for _, s := range stmts {
		switch n := s.(type) {
		case *LabelStmt:
			if !used[n.Name] {
				continue
			}
		case *WhileStmt:
			s = &WhileStmt{Cond: n.Cond, Body: dropLabels(n.Body, used)}
		}
		out = append(out, s)
	}
	return out
}
