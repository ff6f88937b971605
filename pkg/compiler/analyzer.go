package compiler

import "math"

// Analyzer walks a resolved Program once, in document order, checking types
// and the FOR/NEXT and GOSUB/RETURN stack discipline. It never stops early.
type Analyzer struct {
	syms   *SymbolTable
	fors   []Variable  // open FOR loops, innermost last
	gosubs []*LabelRef // pending GOSUB targets
	diags  Diagnostics
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{syms: NewSymbolTable()}
}

// Analyze checks prog and returns the symbol table it built together with
// every problem found.
func Analyze(prog *Program) (*SymbolTable, Diagnostics) {
	a := NewAnalyzer()
	a.stmts(prog.Stmts)
	return a.syms, a.diags
}

func (a *Analyzer) report(kind ErrorKind, format string, args ...any) {
	a.diags = append(a.diags, diagf(kind, format, args...))
}

func (a *Analyzer) stmts(list []Stmt) {
	for _, s := range list {
		a.stmt(s)
	}
}

func (a *Analyzer) stmt(s Stmt) {
	switch n := s.(type) {
	case nil:
		return

	case *PrintStmt:
		for _, it := range n.Items {
			a.typeOf(it.Expr)
		}

	case *LetStmt:
		t, ok := a.typeOf(n.Value)
		if ok {
			a.checkAssign(n.Var, t)
		}
		a.syms.Assign(n.Var)

	case *IfStmt:
		a.typeOf(n.Cond)
		a.stmt(n.Then)
		a.stmt(n.Else)

	case *GotoStmt:
		if !n.Target.Resolved() {
			a.report(ControlFlowError, "GOTO %s: label was never resolved", refName(n.Target))
		}

	case *GosubStmt:
		if !n.Target.Resolved() {
			a.report(ControlFlowError, "GOSUB %s: label was never resolved", refName(n.Target))
		}
		a.gosubs = append(a.gosubs, n.Target)

	case *ReturnStmt:
		if len(a.gosubs) == 0 {
			a.report(ControlFlowError, "RETURN without GOSUB")
			return
		}
		a.gosubs = a.gosubs[:len(a.gosubs)-1]

	case *ForStmt:
		if t, ok := a.typeOf(n.Start); ok {
			a.checkAssign(n.Var, t)
		}
		if t, ok := a.typeOf(n.End); ok && t == SuffixString {
			a.report(TypeError, "FOR %s: limit must be numeric", n.Var)
		}
		if n.Step != nil {
			if t, ok := a.typeOf(n.Step); ok && t == SuffixString {
				a.report(TypeError, "FOR %s: step must be numeric", n.Var)
			}
		}
		a.syms.Assign(n.Var)
		a.fors = append(a.fors, n.Var)

	case *NextStmt:
		if len(n.Vars) == 0 {
			if len(a.fors) == 0 {
				a.report(ControlFlowError, "NEXT without FOR")
				return
			}
			a.fors = a.fors[:len(a.fors)-1]
			return
		}
		for _, v := range n.Vars {
			a.next(v)
		}

	case *WhileStmt:
		a.typeOf(n.Cond)
		a.stmts(n.Body)

	case *InputStmt:
		if n.Prompt != nil {
			if t, ok := a.typeOf(n.Prompt); ok && t != SuffixString {
				a.report(TypeError, "INPUT prompt must be a string, got %s", t.TypeName())
			}
		}
		for _, v := range n.Vars {
			a.syms.Assign(v)
		}

	case *LabelStmt:
		a.syms.DefineLabel(n)

	case *EndStmt:
	}
}

// next closes the innermost FOR if it belongs to v. A mismatch leaves the
// stack alone.
func (a *Analyzer) next(v Variable) {
	if len(a.fors) == 0 {
		a.report(ControlFlowError, "NEXT %s without FOR", v)
		return
	}
	top := a.fors[len(a.fors)-1]
	if top != v {
		a.report(ControlFlowError, "NEXT %s does not match FOR %s", v, top)
		return
	}
	a.fors = a.fors[:len(a.fors)-1]
}

// checkAssign reports storing a value of type t into v.
func (a *Analyzer) checkAssign(v Variable, t Suffix) {
	switch {
	case v.Suffix == SuffixString && t != SuffixString:
		a.report(TypeError, "cannot assign %s value to string variable %s", t.TypeName(), v)
	case v.Suffix == SuffixInteger && t == SuffixString:
		a.report(TypeError, "cannot assign string value to integer variable %s", v)
	}
}

// typeOf infers the type of e. ok is false when e contains an error that has
// already been reported, so callers skip follow-on checks.
func (a *Analyzer) typeOf(e Expr) (Suffix, bool) {
	switch n := e.(type) {
	case *NumberLit:
		if n.Value == math.Trunc(n.Value) && !math.IsInf(n.Value, 0) {
			return SuffixInteger, true
		}
		return SuffixNone, true

	case *StringLit:
		return SuffixString, true

	case *VarRef:
		sym, ok := a.syms.Lookup(n.Var)
		if !ok || !sym.Initialized {
			a.report(TypeError, "variable %s is used before it is assigned", n.Var)
			return n.Var.Suffix, false
		}
		return sym.Type(), true

	case *BinaryExpr:
		lt, lok := a.typeOf(n.Left)
		rt, rok := a.typeOf(n.Right)
		if !lok || !rok {
			return SuffixNone, false
		}
		if lt == SuffixString || rt == SuffixString {
			if n.Op != PLUS {
				a.report(TypeError, "operator %s cannot be applied to a string", n.Op.Symbol())
				return SuffixNone, false
			}
			return SuffixString, true
		}
		if n.Op.IsComparison() {
			return SuffixInteger, true
		}
		if lt == SuffixInteger && rt == SuffixInteger {
			return SuffixInteger, true
		}
		return SuffixNone, true

	case *UnaryExpr:
		t, ok := a.typeOf(n.Operand)
		if !ok {
			return SuffixNone, false
		}
		if t == SuffixString {
			a.report(TypeError, "unary %s cannot be applied to a string", n.Op.Symbol())
			return SuffixNone, false
		}
		return t, true
	}
	return SuffixNone, false
}

func refName(r *LabelRef) string {
	if r == nil {
		return "<missing>"
	}
	return r.Name
}
