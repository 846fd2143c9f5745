package grid

import (
	"fmt"

	"github.com/google/uuid"

	"pontoongrid.app/internal/catalogs"
)

// PontoonType is the closed set of placeable pontoon models. Footprint
// and physical size come from the catalog entry keyed by the enum; the
// engine never infers a type from geometry.
type PontoonType int

const (
	TypeSingle PontoonType = iota
	TypeDouble
)

func (t PontoonType) String() string {
	switch t {
	case TypeSingle:
		return "SINGLE"
	case TypeDouble:
		return "DOUBLE"
	}
	return fmt.Sprintf("PontoonType(%d)", int(t))
}

func ParsePontoonType(s string) (PontoonType, error) {
	switch s {
	case "SINGLE":
		return TypeSingle, nil
	case "DOUBLE":
		return TypeDouble, nil
	}
	return 0, fmt.Errorf("unknown pontoon type %q", s)
}

// Color is cosmetic only and never participates in placement rules.
type Color int

const (
	ColorBlue Color = iota
	ColorGray
	ColorSand
	ColorOrange
)

func (c Color) String() string {
	switch c {
	case ColorBlue:
		return "BLUE"
	case ColorGray:
		return "GRAY"
	case ColorSand:
		return "SAND"
	case ColorOrange:
		return "ORANGE"
	}
	return fmt.Sprintf("Color(%d)", int(c))
}

func ParseColor(s string) (Color, error) {
	switch s {
	case "BLUE":
		return ColorBlue, nil
	case "GRAY":
		return ColorGray, nil
	case "SAND":
		return ColorSand, nil
	case "ORANGE":
		return ColorOrange, nil
	}
	return 0, fmt.Errorf("unknown color %q", s)
}

// Pontoon is a placed unit. It is immutable: move/rotate/recolor go
// through Grid operations that return a fresh value.
//
// Anchor is the minimum-corner cell of the footprint; the placed
// extents are derived from the catalog footprint and the rotation at
// construction time and carried so occupancy queries need no catalog.
type Pontoon struct {
	ID       string
	Anchor   Position
	Type     PontoonType
	Rotation Rotation
	Color    Color

	baseW, baseD int // unrotated footprint in cells
}

// NewPontoon builds a pontoon with a fresh id. The type must exist in
// the catalog.
func NewPontoon(cats *catalogs.Catalogs, typ PontoonType, anchor Position, rot Rotation, color Color) (Pontoon, error) {
	return newPontoonWithID(cats, uuid.NewString(), typ, anchor, rot, color)
}

func newPontoonWithID(cats *catalogs.Catalogs, id string, typ PontoonType, anchor Position, rot Rotation, color Color) (Pontoon, error) {
	def, ok := cats.Pontoons.Def(typ.String())
	if !ok {
		return Pontoon{}, fmt.Errorf("pontoon type %s not in catalog", typ)
	}
	return Pontoon{
		ID:       id,
		Anchor:   anchor,
		Type:     typ,
		Rotation: rot & 3,
		Color:    color,
		baseW:    def.Cells[0],
		baseD:    def.Cells[1],
	}, nil
}

// Footprint returns the placed extents in cells, rotation applied.
func (p Pontoon) Footprint() (w, d int) {
	if p.Rotation.SwapsExtents() {
		return p.baseD, p.baseW
	}
	return p.baseW, p.baseD
}

// OccupiedPositions returns every cell the footprint covers, in
// deterministic (X then Z) order.
func (p Pontoon) OccupiedPositions() []Position {
	w, d := p.Footprint()
	out := make([]Position, 0, w*d)
	for dx := 0; dx < w; dx++ {
		for dz := 0; dz < d; dz++ {
			out = append(out, p.Anchor.Add(dx, 0, dz))
		}
	}
	return out
}

// LugLayerAt returns the lug layer this pontoon presents at the global
// corner-lattice point (cx,cz), correcting for rotation before the
// catalog table lookup. False when the corner is outside the pontoon's
// lattice or carries no lug.
func (p Pontoon) LugLayerAt(def *catalogs.PontoonDef, cx, cz int) (int, bool) {
	w, d := p.Footprint()
	lx := cx - p.Anchor.X
	lz := cz - p.Anchor.Z
	if lx < 0 || lx > w || lz < 0 || lz > d {
		return 0, false
	}
	bx, bz := unrotateCorner(lx, lz, p.baseW, p.baseD, p.Rotation)
	return def.LugLayerAt(bx, bz)
}

func (p Pontoon) withAnchor(anchor Position) Pontoon {
	p.Anchor = anchor
	return p
}

func (p Pontoon) withRotation(rot Rotation) Pontoon {
	p.Rotation = rot & 3
	return p
}

func (p Pontoon) withColor(c Color) Pontoon {
	p.Color = c
	return p
}
