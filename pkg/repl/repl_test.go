package repl

import (
	"bytes"
	"context"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"

	"gobasic/pkg/compiler"
	"gobasic/pkg/jsrun"
)

func newTestSession(input string) (*Session, *bytes.Buffer) {
	var buf bytes.Buffer
	opts := Options{Compiler: compiler.DefaultOptions(), Timeout: 5 * time.Second}
	return NewSession(&buf, jsrun.LineReader(strings.NewReader(input)), opts), &buf
}

func TestSession_StoreAndList(t *testing.T) {
	s, buf := newTestSession("")
	ctx := context.Background()

	for _, in := range []string{"20 PRINT \"b\"", "10 PRINT \"a\"", "30 PRINT \"c\"", "30", "  "} {
		if s.Exec(ctx, in) {
			t.Fatalf("%q ended the session", in)
		}
	}
	want := []string{`10 PRINT "a"`, `20 PRINT "b"`}
	if got := s.Listing(); !reflect.DeepEqual(got, want) {
		t.Errorf("Listing() = %v, want %v", got, want)
	}

	s.Exec(ctx, "list")
	if buf.String() != strings.Join(want, "\n")+"\n" {
		t.Errorf("LIST printed %q", buf.String())
	}
}

func TestSession_Run(t *testing.T) {
	s, buf := newTestSession("")
	ctx := context.Background()
	s.Exec(ctx, "10 FOR I = 1 TO 3")
	s.Exec(ctx, "20 PRINT I;")
	s.Exec(ctx, "30 NEXT I")
	s.Exec(ctx, "RUN")

	// The unterminated line is closed before the prompt returns.
	if got := buf.String(); got != "123\n" {
		t.Errorf("RUN printed %q", got)
	}
}

func TestSession_RunReadsInput(t *testing.T) {
	s, buf := newTestSession("21\n")
	s.Exec(context.Background(), `INPUT "Age? "; A%`)
	if got := buf.String(); got != "Age? \n" {
		t.Errorf("got %q", got)
	}

	s, buf = newTestSession("21\n")
	s.Exec(context.Background(), "10 INPUT \"Age? \"; A%")
	s.Exec(context.Background(), "20 PRINT A% * 2")
	s.Exec(context.Background(), "RUN")
	if got := buf.String(); got != "Age? 42\n" {
		t.Errorf("got %q", got)
	}
}

func TestSession_DiagnosticsBlockRun(t *testing.T) {
	s, buf := newTestSession("")
	s.Exec(context.Background(), `PRINT X`)
	out := buf.String()
	if !strings.Contains(out, "variable X is used before it is assigned") {
		t.Errorf("expected a diagnostic, got %q", out)
	}
	if strings.Contains(out, "\n0\n") {
		t.Errorf("program should not have run: %q", out)
	}

	s, buf = newTestSession("")
	s.opts.Force = true
	s.Exec(context.Background(), `PRINT X`)
	if !strings.HasSuffix(buf.String(), "0\n") {
		t.Errorf("forced run should print 0, got %q", buf.String())
	}
}

func TestSession_CommandsAndErrors(t *testing.T) {
	s, buf := newTestSession("")
	ctx := context.Background()

	s.Exec(ctx, "10 PRINT 1 +")
	s.Exec(ctx, "RUN")
	if !strings.Contains(buf.String(), "parse error") {
		t.Errorf("expected a parse error, got %q", buf.String())
	}

	buf.Reset()
	s.Exec(ctx, "NEW")
	s.Exec(ctx, "10 PRINT 1")
	s.Exec(ctx, "JS")
	if !strings.Contains(buf.String(), "function k_start()") {
		t.Errorf("JS did not print the program: %q", buf.String())
	}

	buf.Reset()
	s.Exec(ctx, "CHECK")
	if got := buf.String(); got != "program: ok\n" {
		t.Errorf("CHECK printed %q", got)
	}

	buf.Reset()
	s.Exec(ctx, "PRINT 1 / 0")
	if !strings.Contains(buf.String(), "division by zero") {
		t.Errorf("expected the runtime error, got %q", buf.String())
	}

	if !s.Exec(ctx, "quit") {
		t.Error("QUIT should end the session")
	}
}

func TestSession_Timeout(t *testing.T) {
	s, buf := newTestSession("")
	s.opts.Timeout = 50 * time.Millisecond
	s.Exec(context.Background(), "L: GOTO L")
	if !strings.Contains(buf.String(), jsrun.ErrInterrupted.Error()) {
		t.Errorf("expected an interruption, got %q", buf.String())
	}
}

func TestSplitLineNumber(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		rest string
		ok   bool
	}{
		{"10 PRINT X", 10, "PRINT X", true},
		{"10", 10, "", true},
		{"10\tEND", 10, "END", true},
		{"PRINT 10", 0, "", false},
		{"10X", 0, "", false},
	}
	for _, tt := range tests {
		n, rest, ok := splitLineNumber(tt.in)
		if n != tt.n || rest != tt.rest || ok != tt.ok {
			t.Errorf("splitLineNumber(%q) = %d, %q, %v", tt.in, n, rest, ok)
		}
	}
}

func TestTailWriter(t *testing.T) {
	tw := &tailWriter{w: io.Discard}
	io.WriteString(tw, "abc\nde")
	io.WriteString(tw, "f")
	if tw.tail != "def" {
		t.Errorf("tail = %q", tw.tail)
	}
	io.WriteString(tw, "\n")
	if tw.tail != "" {
		t.Errorf("tail = %q", tw.tail)
	}
}

func TestFilterCompletions(t *testing.T) {
	if got := filterCompletions("10 go"); !reflect.DeepEqual(got, []string{"10 GOTO", "10 GOSUB"}) {
		t.Errorf("got %v", got)
	}
	if got := filterCompletions("PRINT "); got != nil {
		t.Errorf("expected nothing after a space, got %v", got)
	}
}
