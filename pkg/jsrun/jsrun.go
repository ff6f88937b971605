// Package jsrun executes compiled programs inside the Go process on the goja
// JavaScript engine.
package jsrun

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dop251/goja"
)

// ErrInterrupted is returned when the context ends before the program does.
var ErrInterrupted = errors.New("program interrupted")

// Host is what a running program sees as $host.
type Host struct {
	Out io.Writer
	// ReadLine returns the next input line without its terminator. io.EOF
	// makes INPUT read an empty line.
	ReadLine func() (string, error)
}

// LineReader adapts r to Host.ReadLine.
func LineReader(r io.Reader) func() (string, error) {
	br := bufio.NewReader(r)
	return func() (string, error) {
		line, err := br.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if err == io.EOF && line != "" {
			return line, nil
		}
		return line, err
	}
}

// Run executes js until it finishes, throws, or ctx is done. A thrown
// JavaScript error such as division by zero comes back as an error carrying
// the script's message.
func Run(ctx context.Context, js string, host Host) error {
	vm := goja.New()

	out := host.Out
	if out == nil {
		out = io.Discard
	}
	readLine := host.ReadLine
	if readLine == nil {
		readLine = func() (string, error) { return "", io.EOF }
	}

	h := vm.NewObject()
	if err := h.Set("write", func(s string) {
		_, _ = io.WriteString(out, s)
	}); err != nil {
		return err
	}
	if err := h.Set("readLine", func() string {
		line, err := readLine()
		if err != nil {
			return ""
		}
		return line
	}); err != nil {
		return err
	}
	if err := vm.Set("$host", h); err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() {
		vm.Interrupt(ErrInterrupted)
	})
	defer stop()

	_, err := vm.RunString(js)
	if err == nil {
		return nil
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return fmt.Errorf("%w: %v", ErrInterrupted, ctx.Err())
	}
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return fmt.Errorf("runtime error: %s", ex.Value().String())
	}
	return err
}

// RunString is Run with a fixed input and the output returned as text.
func RunString(ctx context.Context, js, input string) (string, error) {
	var sb strings.Builder
	err := Run(ctx, js, Host{Out: &sb, ReadLine: LineReader(strings.NewReader(input))})
	return sb.String(), err
}
