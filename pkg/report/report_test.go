package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"gobasic/pkg/compiler"
)

func TestDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf)

	p.Diagnostics("prog.bas", compiler.Diagnostics{
		{Kind: compiler.LabelError, Msg: `undefined label "X"`},
		{Kind: compiler.TypeError, Msg: "variable A is used before it is assigned"},
		{Kind: compiler.LabelError, Msg: `duplicate label "L"`},
	})

	want := []string{
		`prog.bas: label error: undefined label "X"`,
		"prog.bas: type error: variable A is used before it is assigned",
		`prog.bas: label error: duplicate label "L"`,
		"prog.bas: 3 problems (2 label, 1 type)",
	}
	got := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(got) != len(want) {
		t.Fatalf("got %d lines, want %d:\n%s", len(got), len(want), buf.String())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSummary(t *testing.T) {
	p := New(&bytes.Buffer{})
	tests := []struct {
		name string
		ds   compiler.Diagnostics
		want string
	}{
		{"Clean", nil, "a.bas: ok"},
		{"One", compiler.Diagnostics{{Kind: compiler.ControlFlowError, Msg: "RETURN without GOSUB"}}, "a.bas: 1 problem (1 control flow)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Summary("a.bas", tt.ds); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestError(t *testing.T) {
	var buf bytes.Buffer
	New(&buf).Error("a.bas", errors.New("parse error: line 1: expected expression"))
	if got := buf.String(); got != "a.bas: parse error: line 1: expected expression\n" {
		t.Errorf("got %q", got)
	}
}
