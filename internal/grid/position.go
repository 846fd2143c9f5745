package grid

import "fmt"

// Position is an integer cell coordinate. X and Z are planar cell
// indices; Y is a discrete stacking level, not a world height.
//
// Position is a value type and is used directly as a map key. The
// string form exists for display and serialization only; equality and
// hashing always go through the struct itself.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d,%d,%d", p.X, p.Y, p.Z)
}

func (p Position) ToArray() [3]int { return [3]int{p.X, p.Y, p.Z} }

// Add returns p translated by (dx,dy,dz).
func (p Position) Add(dx, dy, dz int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy, Z: p.Z + dz}
}

// Below returns the cell directly underneath p.
func (p Position) Below() Position {
	return Position{X: p.X, Y: p.Y - 1, Z: p.Z}
}

// Manhattan returns the L1 distance between a and b.
func Manhattan(a, b Position) int {
	return absInt(a.X-b.X) + absInt(a.Y-b.Y) + absInt(a.Z-b.Z)
}

// Less orders positions lexicographically by (Y, X, Z). Used wherever
// deterministic iteration over cell sets is required.
func Less(a, b Position) bool {
	if a.Y != b.Y {
		return a.Y < b.Y
	}
	if a.X != b.X {
		return a.X < b.X
	}
	return a.Z < b.Z
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
