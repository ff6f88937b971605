package main

import (
	"context"
	"testing"
	"time"

	"gobasic/pkg/compiler"
)

func compileForTest(t *testing.T, src string) string {
	t.Helper()
	res, err := compiler.Compile(src, compiler.DefaultOptions())
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if res.Diagnostics.HasErrors() {
		t.Fatalf("diagnostics: %v", res.Diagnostics)
	}
	return res.JS
}

func waitDone(t *testing.T, g *Game) {
	t.Helper()
	select {
	case <-g.done:
	case <-time.After(5 * time.Second):
		t.Fatal("program did not finish")
	}
}

func TestMainWiringIntegration(t *testing.T) {
	g := newGame()
	g.start(context.Background(), compileForTest(t, `INPUT "Name? "; N$
PRINT "Hi "; N$`))

	deadline := time.Now().Add(5 * time.Second)
	for g.screen.Lines()[0] != "Name?" {
		if time.Now().After(deadline) {
			t.Fatal("prompt never appeared")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Typing happens on the UI side; the program sees the line on Enter.
	for _, r := range "Bobx" {
		g.typeRune(r)
	}
	g.backspace()
	g.submit()
	waitDone(t, g)

	lines := g.screen.Lines()
	if lines[0] != "Name? Bob" {
		t.Errorf("row 0 = %q", lines[0])
	}
	if lines[1] != "Hi Bob" {
		t.Errorf("row 1 = %q", lines[1])
	}
	if lines[3] != "[program finished]" {
		t.Errorf("row 3 = %q", lines[3])
	}
}

func TestRuntimeErrorIsShown(t *testing.T) {
	g := newGame()
	g.start(context.Background(), compileForTest(t, "LET Z = 0\nPRINT 1 / Z"))
	waitDone(t, g)

	if got := g.screen.Lines()[1]; got != "runtime error: Error: division by zero" {
		t.Errorf("row 1 = %q", got)
	}
}

func TestCancelStopsWaitingProgram(t *testing.T) {
	g := newGame()
	ctx, cancel := context.WithCancel(context.Background())
	g.start(ctx, compileForTest(t, "INPUT X\nL: GOTO L"))
	cancel()
	waitDone(t, g)
	if !g.finished() {
		t.Error("expected finished after cancel")
	}
}
