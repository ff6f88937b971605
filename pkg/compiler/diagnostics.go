package compiler

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a user-facing diagnostic.
type ErrorKind int

const (
	LabelError       ErrorKind = iota // duplicate or undefined label
	TypeError                         // operator or assignment mismatch, unassigned variable
	ControlFlowError                  // NEXT/RETURN discipline, unresolved jump
)

func (k ErrorKind) String() string {
	switch k {
	case LabelError:
		return "label error"
	case TypeError:
		return "type error"
	case ControlFlowError:
		return "control flow error"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Diagnostic is one problem found in a program. Analysis collects them and
// carries on.
type Diagnostic struct {
	Kind ErrorKind
	Msg  string
}

func (d Diagnostic) Error() string { return d.Kind.String() + ": " + d.Msg }

func diagf(kind ErrorKind, format string, args ...any) Diagnostic {
	return Diagnostic{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Diagnostics is an ordered batch of problems.
type Diagnostics []Diagnostic

func (ds Diagnostics) HasErrors() bool { return len(ds) > 0 }

// Count returns how many diagnostics are of the given kind.
func (ds Diagnostics) Count(kind ErrorKind) int {
	n := 0
	for _, d := range ds {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// Err joins the batch into a single error, or returns nil when it is empty.
func (ds Diagnostics) Err() error {
	if len(ds) == 0 {
		return nil
	}
	errs := make([]error, len(ds))
	for i, d := range ds {
		errs[i] = d
	}
	return errors.Join(errs...)
}

// InternalError means the generator was handed a tree it cannot lower.
// It is a compiler bug, never a user mistake, and it aborts generation.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string { return "internal error: " + e.Msg }

func internalf(format string, args ...any) *InternalError {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}
