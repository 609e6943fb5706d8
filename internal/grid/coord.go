package grid

import "fmt"

// Coord identifies a cell by integer grid coordinates.
// X increases eastward, Y increases northward (toward world +Z).
type Coord struct {
	X int
	Y int
}

// C is a convenience constructor for Coord.
func C(x, y int) Coord {
	return Coord{X: x, Y: y}
}

// String returns a string representation of the coordinate.
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Add returns a new Coord offset by (dx, dy).
func (c Coord) Add(dx, dy int) Coord {
	return Coord{X: c.X + dx, Y: c.Y + dy}
}

// Step returns a new Coord one step in the given direction.
func (c Coord) Step(d Dir) Coord {
	dx, dy := d.Delta()
	return c.Add(dx, dy)
}

// Neighbors4 returns the four edge-adjacent coordinates.
func (c Coord) Neighbors4() [4]Coord {
	return [4]Coord{
		c.Step(North),
		c.Step(East),
		c.Step(South),
		c.Step(West),
	}
}

// Diagonals returns the four corner-adjacent coordinates.
func (c Coord) Diagonals() [4]Coord {
	return [4]Coord{
		c.Add(1, 1),
		c.Add(1, -1),
		c.Add(-1, 1),
		c.Add(-1, -1),
	}
}

// Dir is one of the four cardinal directions.
type Dir uint8

const (
	North Dir = iota // +Y / world +Z
	East             // +X
	South            // -Y / world -Z
	West             // -X
)

// String returns the direction name.
func (d Dir) String() string {
	switch d {
	case North:
		return "North"
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	default:
		return "Unknown"
	}
}

// Delta returns the (dx, dy) grid offset for one step in this direction.
func (d Dir) Delta() (dx, dy int) {
	switch d {
	case North:
		return 0, 1
	case East:
		return 1, 0
	case South:
		return 0, -1
	case West:
		return -1, 0
	default:
		return 0, 0
	}
}

// Opposite returns the opposite direction.
func (d Dir) Opposite() Dir {
	switch d {
	case North:
		return South
	case East:
		return West
	case South:
		return North
	default:
		return East
	}
}

// Rotated returns the direction after rotating by steps*90 degrees
// counter-clockwise in the XZ plane, matching RotateLocal.
func (d Dir) Rotated(steps int) Dir {
	steps = ((steps % 4) + 4) % 4
	for i := 0; i < steps; i++ {
		switch d {
		case North:
			d = West
		case West:
			d = South
		case South:
			d = East
		case East:
			d = North
		}
	}
	return d
}

// Vector returns the unit world-space vector (x, z) pointing in d.
func (d Dir) Vector() (x, z float64) {
	dx, dy := d.Delta()
	return float64(dx), float64(dy)
}

// RotateLocal rotates a local-space point (x, z) by steps*90 degrees
// counter-clockwise about the origin. One step maps (x, z) to (-z, x).
func RotateLocal(x, z float64, steps int) (float64, float64) {
	steps = ((steps % 4) + 4) % 4
	for i := 0; i < steps; i++ {
		x, z = -z, x
	}
	return x, z
}
