package compiler

import (
	"fmt"
	"sort"
	"strings"
)

// Symbol is what the analyzer knows about one variable identity.
type Symbol struct {
	Var         Variable
	Initialized bool
}

// Type is fixed by the variable's suffix and never changes.
func (s Symbol) Type() Suffix { return s.Var.Suffix }

// SymbolTable maps variable identities and label names to what analysis has
// learned about them. It is filled in statement by statement.
type SymbolTable struct {
	vars   map[Variable]*Symbol
	labels LabelTable
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		vars:   make(map[Variable]*Symbol),
		labels: make(LabelTable),
	}
}

// Assign records that v now holds a value, creating the symbol if needed.
func (s *SymbolTable) Assign(v Variable) Symbol {
	sym, ok := s.vars[v]
	if !ok {
		sym = &Symbol{Var: v}
		s.vars[v] = sym
	}
	sym.Initialized = true
	return *sym
}

// Lookup returns the symbol for v.
func (s *SymbolTable) Lookup(v Variable) (Symbol, bool) {
	sym, ok := s.vars[v]
	if !ok {
		return Symbol{}, false
	}
	return *sym, true
}

// DefineLabel records the first definition of name. It returns false when
// name was already defined.
func (s *SymbolTable) DefineLabel(l *LabelStmt) bool {
	if _, ok := s.labels[l.Name]; ok {
		return false
	}
	s.labels[l.Name] = l
	return true
}

func (s *SymbolTable) LookupLabel(name string) (*LabelStmt, bool) {
	l, ok := s.labels[name]
	return l, ok
}

// Variables lists every known identity sorted by name, then suffix.
func (s *SymbolTable) Variables() []Variable {
	vars := make([]Variable, 0, len(s.vars))
	for v := range s.vars {
		vars = append(vars, v)
	}
	sortVariables(vars)
	return vars
}

func sortVariables(vars []Variable) {
	sort.Slice(vars, func(i, j int) bool {
		if vars[i].Name != vars[j].Name {
			return vars[i].Name < vars[j].Name
		}
		return vars[i].Suffix < vars[j].Suffix
	})
}

// String prints a deterministic dump of the table.
func (s *SymbolTable) String() string {
	var sb strings.Builder
	if len(s.vars) > 0 {
		sb.WriteString("Variables:\n")
		for _, v := range s.Variables() {
			sym := s.vars[v]
			fmt.Fprintf(&sb, "  %-20s  Type: %s (Initialized: %t)\n", v, v.Suffix.TypeName(), sym.Initialized)
		}
	} else {
		sb.WriteString("Variables: (empty)\n")
	}

	if len(s.labels) > 0 {
		sb.WriteString("Labels:\n")
		names := make([]string, 0, len(s.labels))
		for name := range s.labels {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "  %s\n", name)
		}
	} else {
		sb.WriteString("Labels: (empty)\n")
	}
	return sb.String()
}
