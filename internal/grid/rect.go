package grid

// Rect is an inclusive axis-aligned cell rectangle. A Rect with Max < Min on
// either axis is empty.
type Rect struct {
	Min Coord
	Max Coord
}

// NewRect creates a rectangle spanning both corners regardless of order.
func NewRect(a, b Coord) Rect {
	if a.X > b.X {
		a.X, b.X = b.X, a.X
	}
	if a.Y > b.Y {
		a.Y, b.Y = b.Y, a.Y
	}
	return Rect{Min: a, Max: b}
}

// BoundsOf returns the smallest rectangle covering all given cells.
// The second return value is false for an empty list.
func BoundsOf(cells []Coord) (Rect, bool) {
	if len(cells) == 0 {
		return Rect{}, false
	}
	r := Rect{Min: cells[0], Max: cells[0]}
	for _, c := range cells[1:] {
		if c.X < r.Min.X {
			r.Min.X = c.X
		}
		if c.Y < r.Min.Y {
			r.Min.Y = c.Y
		}
		if c.X > r.Max.X {
			r.Max.X = c.X
		}
		if c.Y > r.Max.Y {
			r.Max.Y = c.Y
		}
	}
	return r, true
}

// Empty returns true if the rectangle covers no cells.
func (r Rect) Empty() bool {
	return r.Max.X < r.Min.X || r.Max.Y < r.Min.Y
}

// W returns the width in cells.
func (r Rect) W() int {
	if r.Empty() {
		return 0
	}
	return r.Max.X - r.Min.X + 1
}

// H returns the height in cells.
func (r Rect) H() int {
	if r.Empty() {
		return 0
	}
	return r.Max.Y - r.Min.Y + 1
}

// Contains returns true if the cell lies inside the rectangle.
func (r Rect) Contains(c Coord) bool {
	return c.X >= r.Min.X && c.X <= r.Max.X && c.Y >= r.Min.Y && c.Y <= r.Max.Y
}

// Cells returns every cell in the rectangle, row by row.
func (r Rect) Cells() []Coord {
	if r.Empty() {
		return nil
	}
	out := make([]Coord, 0, r.W()*r.H())
	for y := r.Min.Y; y <= r.Max.Y; y++ {
		for x := r.Min.X; x <= r.Max.X; x++ {
			out = append(out, C(x, y))
		}
	}
	return out
}
