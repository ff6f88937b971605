package grid

import "testing"

func TestGetGridCoords(t *testing.T) {
	tests := []struct {
		name         string
		index, cols  int
		wantX, wantY int
	}{
		{"Origin", 0, 64, 0, 0},
		{"EndOfFirstRow", 63, 64, 63, 0},
		{"StartOfSecondRow", 64, 64, 0, 1},
		{"LastCellOfConsole", 64*24 - 1, 64, 63, 23},
		{"NarrowGrid", 7, 5, 2, 1},
		{"SingleColumn", 3, 1, 0, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotX, gotY := GetGridCoords(tc.index, tc.cols)
			if gotX != tc.wantX || gotY != tc.wantY {
				t.Errorf("GetGridCoords(%d, %d) = (%d, %d); want (%d, %d)", tc.index, tc.cols, gotX, gotY, tc.wantX, tc.wantY)
			}
		})
	}
}

func TestGrid_LinesMatchCells(t *testing.T) {
	g := New(5, 3)
	g.WriteString("abcdefg")
	cells := g.Cells()
	lines := g.Lines()
	for i, r := range cells {
		if r == 0 {
			continue
		}
		x, y := GetGridCoords(i, g.Cols)
		if got := []rune(lines[y])[x]; got != r {
			t.Errorf("cell %d at (%d, %d) = %q in Lines, %q in Cells", i, x, y, got, r)
		}
	}
	if lines[0] != "abcde" || lines[1] != "fg" || lines[2] != "" {
		t.Errorf("Lines() = %q", lines)
	}
}

func TestGrid_WriteAndScroll(t *testing.T) {
	g := New(10, 3)
	g.WriteString("one\ntwo\nthree\nfour")

	want := []string{"two", "three", "four"}
	got := g.Lines()
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d = %q, want %q", i, got[i], want[i])
		}
	}
	if x, y := g.Cursor(); x != 4 || y != 2 {
		t.Errorf("cursor = (%d, %d), want (4, 2)", x, y)
	}
}

func TestGrid_ControlCharacters(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Tab", "a\tb", "a       b"},
		{"Backspace", "abc\b\bx", "ax"},
		{"BackspaceAtStart", "\bz", "z"},
		{"CarriageReturn", "abc\rX", "Xbc"},
		{"Wrap", "0123456789AB", "0123456789"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(10, 2)
			if _, err := g.Write([]byte(tt.in)); err != nil {
				t.Fatal(err)
			}
			if got := g.Lines()[0]; got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	g := New(10, 2)
	g.WriteString("0123456789AB")
	if got := g.Lines()[1]; got != "AB" {
		t.Errorf("wrapped row = %q", got)
	}
}

func TestGrid_TabPastEdgeWraps(t *testing.T) {
	g := New(10, 2)
	g.WriteString("abcdefghi\tX")
	if got := g.Lines(); got[0] != "abcdefghi" || got[1] != "X" {
		t.Errorf("got %q", got)
	}
}
