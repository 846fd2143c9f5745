package grid

import "fmt"

// Rotation is a quarter-turn orientation around the Y axis.
type Rotation int

const (
	RotationNorth Rotation = 0
	RotationEast  Rotation = 1
	RotationSouth Rotation = 2
	RotationWest  Rotation = 3
)

func (r Rotation) String() string {
	switch r & 3 {
	case RotationNorth:
		return "NORTH"
	case RotationEast:
		return "EAST"
	case RotationSouth:
		return "SOUTH"
	default:
		return "WEST"
	}
}

// ParseRotation maps a rotation name back to its quarter-turn value.
func ParseRotation(s string) (Rotation, error) {
	switch s {
	case "NORTH":
		return RotationNorth, nil
	case "EAST":
		return RotationEast, nil
	case "SOUTH":
		return RotationSouth, nil
	case "WEST":
		return RotationWest, nil
	}
	return 0, fmt.Errorf("unknown rotation %q", s)
}

// NormalizeRotation converts a caller-provided rotation value into a
// stable quarter-turn count in [0,3].
//
// We accept either quarter-turns (0..3) or degrees (multiples of 90).
func NormalizeRotation(r int) Rotation {
	if r%90 == 0 && (r > 3 || r < -3) {
		r = r / 90
	}
	r %= 4
	if r < 0 {
		r += 4
	}
	return Rotation(r)
}

// SwapsExtents reports whether the rotation exchanges the X and Z
// extents of a footprint. EAST and WEST do; NORTH and SOUTH do not.
func (r Rotation) SwapsExtents() bool {
	return r&1 == 1
}

// unrotateCorner maps a corner of the placed (rotated) footprint lattice
// back to the corner of the unrotated base lattice, where the base
// footprint spans w0 x d0 cells (so its corner lattice is (w0+1)x(d0+1)).
// cx,cz are corner offsets relative to the placed anchor.
func unrotateCorner(cx, cz, w0, d0 int, rot Rotation) (bx, bz int) {
	switch rot & 3 {
	case RotationNorth:
		return cx, cz
	case RotationEast:
		return w0 - cz, cx
	case RotationSouth:
		return w0 - cx, d0 - cz
	default: // WEST
		return cz, d0 - cx
	}
}
