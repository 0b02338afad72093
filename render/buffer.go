package render

// Cell is one terminal character cell
type Cell struct {
	Rune rune
	Fg   RGB
	Bg   RGB
}

var blank = Cell{Rune: ' ', Fg: RgbBackground, Bg: RgbBackground}

// Buffer is a width×height cell array the viewer flushes to the terminal
type Buffer struct {
	cells  []Cell
	width  int
	height int
}

func NewBuffer(width, height int) *Buffer {
	b := &Buffer{}
	b.Resize(width, height)
	return b
}

// Resize adjusts buffer dimensions, reallocates only if capacity insufficient
func (b *Buffer) Resize(width, height int) {
	width, height = max(width, 0), max(height, 0)
	size := width * height
	if cap(b.cells) < size {
		b.cells = make([]Cell, size)
	} else {
		b.cells = b.cells[:size]
	}
	b.width = width
	b.height = height
	b.Clear()
}

// Clear resets all cells to blank using exponential copy
func (b *Buffer) Clear() {
	if len(b.cells) == 0 {
		return
	}
	b.cells[0] = blank
	for filled := 1; filled < len(b.cells); filled *= 2 {
		copy(b.cells[filled:], b.cells[:filled])
	}
}

func (b *Buffer) Bounds() (int, int) {
	return b.width, b.height
}

func (b *Buffer) inBounds(x, y int) bool {
	return x >= 0 && x < b.width && y >= 0 && y < b.height
}

// Set writes an opaque cell; out of bounds writes are dropped
func (b *Buffer) Set(x, y int, r rune, fg, bg RGB) {
	if !b.inBounds(x, y) {
		return
	}
	b.cells[y*b.width+x] = Cell{Rune: r, Fg: fg, Bg: bg}
}

func (b *Buffer) Get(x, y int) Cell {
	if !b.inBounds(x, y) {
		return blank
	}
	return b.cells[y*b.width+x]
}

// DrawStrips paints one strip per column starting at row top
func (b *Buffer) DrawStrips(strips []Strip, top int) {
	for x, s := range strips {
		if x >= b.width {
			break
		}
		for y := 0; y < s.Top; y++ {
			b.Set(x, top+y, ' ', s.Ceiling, s.Ceiling)
		}
		for y := s.Top; y < s.Bottom; y++ {
			b.Set(x, top+y, s.Glyph, s.Fg, RgbBackground)
		}
		for y := s.Bottom; y < b.height-top; y++ {
			b.Set(x, top+y, ' ', s.Floor, s.Floor)
		}
	}
}

// DrawText writes s from (x, y), clipped at the right edge
func (b *Buffer) DrawText(x, y int, s string, fg, bg RGB) {
	for _, r := range s {
		if x >= b.width {
			return
		}
		b.Set(x, y, r, fg, bg)
		x++
	}
}

// Range visits every cell in row-major order
func (b *Buffer) Range(fn func(x, y int, c Cell)) {
	for i, c := range b.cells {
		fn(i%b.width, i/b.width, c)
	}
}
