package compiler

import "testing"

func TestResolveLabels(t *testing.T) {
	t.Run("ForwardReference", func(t *testing.T) {
		target := &LabelStmt{Name: "SKIP"}
		jump := &GotoStmt{Target: &LabelRef{Name: "SKIP"}}
		prog := &Program{Stmts: []Stmt{
			jump,
			&PrintStmt{Items: []PrintItem{{Expr: str("never")}}},
			target,
			&EndStmt{},
		}}

		labels, diags := ResolveLabels(prog)
		if len(diags) != 0 {
			t.Fatalf("unexpected diagnostics: %v", diags)
		}
		if jump.Target.Target != target {
			t.Errorf("GOTO SKIP resolved to %v, want the SKIP label", jump.Target.Target)
		}
		if labels["SKIP"] != target {
			t.Errorf("label table does not hold SKIP")
		}
	})

	t.Run("DuplicateKeepsFirst", func(t *testing.T) {
		first := &LabelStmt{Name: "A"}
		second := &LabelStmt{Name: "A"}
		jump := &GosubStmt{Target: &LabelRef{Name: "A"}}
		prog := &Program{Stmts: []Stmt{first, second, jump}}

		_, diags := ResolveLabels(prog)
		if got := diags.Count(LabelError); got != 1 {
			t.Fatalf("expected exactly 1 LabelError, got %d: %v", got, diags)
		}
		if jump.Target.Target != first {
			t.Errorf("GOSUB A resolved to the second definition")
		}
	})

	t.Run("Undefined", func(t *testing.T) {
		jump := &GotoStmt{Target: &LabelRef{Name: "NOWHERE"}}
		_, diags := ResolveLabels(&Program{Stmts: []Stmt{jump}})
		if diags.Count(LabelError) != 1 {
			t.Fatalf("expected 1 LabelError, got %v", diags)
		}
		if jump.Target.Resolved() {
			t.Errorf("undefined reference should stay unresolved")
		}
	})

	t.Run("NestedStatements", func(t *testing.T) {
		inner := &LabelStmt{Name: "IN"}
		jump := &GotoStmt{Target: &LabelRef{Name: "IN"}}
		prog := &Program{Stmts: []Stmt{
			&IfStmt{Cond: num(1), Then: jump},
			&WhileStmt{Cond: num(1), Body: []Stmt{inner}},
		}}
		_, diags := ResolveLabels(prog)
		if len(diags) != 0 {
			t.Fatalf("unexpected diagnostics: %v", diags)
		}
		if jump.Target.Target != inner {
			t.Errorf("jump inside IF did not resolve to label inside WHILE")
		}
	})
}
