// Package grid is a fixed-size character screen that scrolls like a
// terminal. It is written to by a running program and read by a renderer,
// possibly from different goroutines.
package grid

import (
	"strings"
	"sync"
)

// TabWidth is the distance between print zones.
const TabWidth = 8

// GetGridCoords converts a linear cell index into a column and row.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// Grid is a Cols x Rows text buffer with a cursor. Output that runs past the
// bottom row scrolls everything up by one row.
type Grid struct {
	Cols, Rows int

	mu     sync.Mutex
	cells  []rune
	cx, cy int
}

func New(cols, rows int) *Grid {
	g := &Grid{Cols: cols, Rows: rows}
	g.cells = make([]rune, cols*rows)
	return g
}

// Write implements io.Writer, so a Grid can be a program's output.
func (g *Grid) Write(p []byte) (int, error) {
	g.WriteString(string(p))
	return len(p), nil
}

func (g *Grid) WriteString(s string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, r := range s {
		g.put(r)
	}
}

func (g *Grid) put(r rune) {
	switch r {
	case '\n':
		g.newline()
	case '\r':
		g.cx = 0
	case '\t':
		next := (g.cx/TabWidth + 1) * TabWidth
		if next >= g.Cols {
			g.newline()
			return
		}
		g.cx = next
	case '\b':
		if g.cx > 0 {
			g.cx--
			g.cells[g.cy*g.Cols+g.cx] = 0
		}
	default:
		if g.cx >= g.Cols {
			g.newline()
		}
		g.cells[g.cy*g.Cols+g.cx] = r
		g.cx++
	}
}

func (g *Grid) newline() {
	g.cx = 0
	if g.cy < g.Rows-1 {
		g.cy++
		return
	}
	copy(g.cells, g.cells[g.Cols:])
	clear(g.cells[(g.Rows-1)*g.Cols:])
}

// Cursor returns the cursor position.
func (g *Grid) Cursor() (x, y int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cx, g.cy
}

// Cells returns a copy of the buffer in row-major order. Empty cells are 0.
func (g *Grid) Cells() []rune {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]rune(nil), g.cells...)
}

// Lines returns each row with trailing blanks removed.
func (g *Grid) Lines() []string {
	rows := make([][]rune, g.Rows)
	for i, r := range g.Cells() {
		if r == 0 {
			r = ' '
		}
		_, y := GetGridCoords(i, g.Cols)
		rows[y] = append(rows[y], r)
	}
	lines := make([]string, g.Rows)
	for y, row := range rows {
		lines[y] = strings.TrimRight(string(row), " ")
	}
	return lines
}
