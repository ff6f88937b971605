package compiler

// LabelTable maps a label name to the statement that defines it.
type LabelTable map[string]*LabelStmt

// ResolveLabels links every GOTO and GOSUB to its label.
//
// The first pass records every label, so forward references work. When a
// name is defined twice the first definition wins and one LabelError is
// reported. The second pass fills in each LabelRef; a reference with no
// matching label is left unresolved and reported.
func ResolveLabels(prog *Program) (LabelTable, Diagnostics) {
	labels := LabelTable{}
	var diags Diagnostics

	walkStmts(prog.Stmts, func(s Stmt) {
		l, ok := s.(*LabelStmt)
		if !ok {
			return
		}
		if _, dup := labels[l.Name]; dup {
			diags = append(diags, diagf(LabelError, "duplicate label %q", l.Name))
			return
		}
		labels[l.Name] = l
	})

	walkStmts(prog.Stmts, func(s Stmt) {
		var ref *LabelRef
		switch n := s.(type) {
		case *GotoStmt:
			ref = n.Target
		case *GosubStmt:
			ref = n.Target
		default:
			return
		}
		if ref == nil {
			return
		}
		if target, ok := labels[ref.Name]; ok {
			ref.Target = target
			return
		}
		ref.Target = nil
		diags = append(diags, diagf(LabelError, "undefined label %q", ref.Name))
	})

	return labels, diags
}

// walkStmts calls fn for every statement in document order, descending into
// IF branches and WHILE bodies.
func walkStmts(stmts []Stmt, fn func(Stmt)) {
	for _, s := range stmts {
		walkStmt(s, fn)
	}
}

func walkStmt(s Stmt, fn func(Stmt)) {
	if s == nil {
		return
	}
	fn(s)
	switch n := s.(type) {
	case *IfStmt:
		walkStmt(n.Then, fn)
		walkStmt(n.Else, fn)
	case *WhileStmt:
		walkStmts(n.Body, fn)
	}
}

// walkExprs calls fn for every expression owned directly by s, not
// including those of nested statements.
func walkExprs(s Stmt, fn func(Expr)) {
	switch n := s.(type) {
	case *PrintStmt:
		for _, it := range n.Items {
			fn(it.Expr)
		}
	case *LetStmt:
		fn(n.Value)
	case *IfStmt:
		fn(n.Cond)
	case *ForStmt:
		fn(n.Start)
		fn(n.End)
		if n.Step != nil {
			fn(n.Step)
		}
	case *WhileStmt:
		fn(n.Cond)
	case *InputStmt:
		if n.Prompt != nil {
			fn(n.Prompt)
		}
	}
}
