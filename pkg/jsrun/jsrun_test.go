package jsrun

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestRun_WritesThroughHost(t *testing.T) {
	out, err := RunString(context.Background(), `$host.write("a"); $host.write("b\n");`, "")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "ab\n" {
		t.Errorf("got %q", out)
	}
}

func TestRun_ReadLine(t *testing.T) {
	js := `$host.write($host.readLine() + "|" + $host.readLine() + "|" + $host.readLine());`
	out, err := RunString(context.Background(), js, "one\r\ntwo")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if out != "one|two|" {
		t.Errorf("got %q", out)
	}
}

func TestRun_NilHostFields(t *testing.T) {
	if err := Run(context.Background(), `$host.write($host.readLine());`, Host{}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
}

func TestRun_ThrownError(t *testing.T) {
	_, err := RunString(context.Background(), `throw new Error("boom");`, "")
	if err == nil || !strings.Contains(err.Error(), "runtime error: Error: boom") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRun_SyntaxError(t *testing.T) {
	if _, err := RunString(context.Background(), `function (`, ""); err == nil {
		t.Fatalf("expected a syntax error")
	}
}

func TestRun_InterruptedByContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, `while (true) {}`, Host{})
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrInterrupted) {
			t.Fatalf("expected ErrInterrupted, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not stop after the context expired")
	}
}

func TestLineReader(t *testing.T) {
	read := LineReader(strings.NewReader("a\nb"))
	for _, want := range []string{"a", "b"} {
		got, err := read()
		if err != nil || got != want {
			t.Fatalf("read() = %q, %v; want %q", got, err, want)
		}
	}
	if _, err := read(); err != io.EOF {
		t.Errorf("expected io.EOF at the end, got %v", err)
	}
}
