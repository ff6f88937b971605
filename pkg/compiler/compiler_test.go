package compiler

import (
	"errors"
	"strings"
	"testing"
)

func TestCompile_ReportsAllDiagnostics(t *testing.T) {
	src := `A: PRINT 1
A: PRINT 2
LET S$ = 5
NEXT I
RETURN
GOTO NOWHERE`
	res, err := Compile(src, DefaultOptions())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	want := map[ErrorKind]int{
		LabelError:       2, // duplicate A, undefined NOWHERE
		TypeError:        1, // number into S$
		ControlFlowError: 3, // NEXT I, RETURN, unresolved GOTO
	}
	for kind, n := range want {
		if got := res.Diagnostics.Count(kind); got != n {
			t.Errorf("%s: got %d, want %d\n%v", kind, got, n, res.Diagnostics)
		}
	}
	if res.JS != "" {
		t.Errorf("a program with an unresolved jump should not produce JS")
	}
	if err := res.Diagnostics.Err(); err == nil || !strings.Contains(err.Error(), "undefined label \"NOWHERE\"") {
		t.Errorf("Err() = %v", err)
	}
}

func TestCompile_GeneratesDespiteDiagnostics(t *testing.T) {
	res, err := Compile("PRINT X\nRETURN", DefaultOptions())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if len(res.Diagnostics) != 2 {
		t.Errorf("expected 2 diagnostics, got %v", res.Diagnostics)
	}
	if res.JS == "" {
		t.Errorf("expected JS even with diagnostics")
	}
}

func TestCompile_SyntaxError(t *testing.T) {
	_, err := Compile("PRINT (1", DefaultOptions())
	if err == nil || !strings.HasPrefix(err.Error(), "parse error:") {
		t.Fatalf("expected parse error, got %v", err)
	}
	_, err = Compile("PRINT @", DefaultOptions())
	if err == nil || !strings.HasPrefix(err.Error(), "lex error:") {
		t.Fatalf("expected lex error, got %v", err)
	}
}

func TestCompileProgram_Nil(t *testing.T) {
	_, err := CompileProgram(nil, DefaultOptions())
	var ie *InternalError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *InternalError, got %v", err)
	}
}

func TestCompile_OptimizedProgram(t *testing.T) {
	res, err := Compile("LET X = 1 + 2\nGOTO DONE\nPRINT \"dead\"\nDONE: PRINT X", DefaultOptions())
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	want := "LET X = 3\nGOTO DONE\nDONE:\nPRINT X\n"
	if got := res.Program.String(); got != want {
		t.Errorf("optimized program =\n%s\nwant\n%s", got, want)
	}
	if _, ok := res.Labels["DONE"]; !ok {
		t.Errorf("label table missing DONE")
	}
}
