package plan

import (
	"fmt"
	"sort"

	"pontoongrid.app/internal/grid"
)

// Direction is a planar outward direction from a boundary cell.
type Direction string

const (
	DirNorth Direction = "N" // -Z
	DirEast  Direction = "E" // +X
	DirSouth Direction = "S" // +Z
	DirWest  Direction = "W" // -X
)

var directions = []Direction{DirNorth, DirEast, DirSouth, DirWest}

func (d Direction) offset() (dx, dz int) {
	switch d {
	case DirNorth:
		return 0, -1
	case DirEast:
		return 1, 0
	case DirSouth:
		return 0, 1
	default:
		return -1, 0
	}
}

type AccessoryKind string

const (
	AccessoryFender       AccessoryKind = "FENDER"
	AccessoryCornerFender AccessoryKind = "CORNER_FENDER"
	AccessoryLadder       AccessoryKind = "LADDER"
)

// AccessoryPlacement is one derived boundary accessory. The ID is a
// pure function of where the accessory sits, so recomputing the plan
// after an unrelated edit yields the same ids and the UI can diff
// candidate against confirmed placements without churn.
type AccessoryPlacement struct {
	ID   string        `json:"id"`
	Kind AccessoryKind `json:"kind"`

	AccessoryID string `json:"accessory_id"`

	Level      int       `json:"level"`
	Direction  Direction `json:"direction"`
	LineIndex  int       `json:"line_index"`
	StartIndex int       `json:"start_index"`
	SpanCells  int       `json:"span_cells"`

	Outward [2]int          `json:"outward"`
	World   grid.WorldPoint `json:"world"`
}

// edgeSegment is one exposed cell face on the platform boundary.
type edgeSegment struct {
	level int
	dir   Direction
	// line is the grid-line index the face lies on; index is the
	// position along that line. Together with dir they identify the
	// face uniquely.
	line  int
	index int
	cell  grid.Position
}

// ComputeAccessoryPlacements derives every candidate accessory for the
// grid's waterline boundary, sorted by id.
func ComputeAccessoryPlacements(g *grid.Grid, calc grid.CoordinateCalculator) []AccessoryPlacement {
	segments := collectEdgeSegments(g)

	var out []AccessoryPlacement
	out = append(out, createSideBarPlacements(g, calc, segments)...)
	out = append(out, createLadderPlacements(g, calc, segments)...)
	out = append(out, createCornerPlacements(g, calc)...)

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// collectEdgeSegments scans every level-0 occupied cell and emits one
// segment per face whose planar neighbor is unoccupied — the true
// platform boundary. Accessories are waterline hardware; upper levels
// have no water to fend against.
func collectEdgeSegments(g *grid.Grid) []edgeSegment {
	var out []edgeSegment
	for _, cell := range g.OccupiedCells() {
		if cell.Y != 0 {
			continue
		}
		for _, dir := range directions {
			dx, dz := dir.offset()
			if g.IsOccupied(cell.Add(dx, 0, dz)) {
				continue
			}
			seg := edgeSegment{level: cell.Y, dir: dir, cell: cell}
			switch dir {
			case DirNorth:
				seg.line, seg.index = cell.Z, cell.X
			case DirSouth:
				seg.line, seg.index = cell.Z+1, cell.X
			case DirWest:
				seg.line, seg.index = cell.X, cell.Z
			case DirEast:
				seg.line, seg.index = cell.X+1, cell.Z
			}
			out = append(out, seg)
		}
	}
	return out
}

type edgeGroupKey struct {
	level int
	dir   Direction
	line  int
}

func groupSegments(segments []edgeSegment) (map[edgeGroupKey][]edgeSegment, []edgeGroupKey) {
	groups := map[edgeGroupKey][]edgeSegment{}
	for _, s := range segments {
		k := edgeGroupKey{level: s.level, dir: s.dir, line: s.line}
		groups[k] = append(groups[k], s)
	}
	keys := make([]edgeGroupKey, 0, len(groups))
	for k := range groups {
		segs := groups[k]
		sort.Slice(segs, func(i, j int) bool { return segs[i].index < segs[j].index })
		groups[k] = segs
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.level != b.level {
			return a.level < b.level
		}
		if a.dir != b.dir {
			return a.dir < b.dir
		}
		return a.line < b.line
	})
	return groups, keys
}

// createSideBarPlacements greedily merges index-adjacent boundary
// segments into two-cell fenders. A lone segment never gets a fender:
// the minimum span is a hard catalog constraint, not a preference.
func createSideBarPlacements(g *grid.Grid, calc grid.CoordinateCalculator, segments []edgeSegment) []AccessoryPlacement {
	def, ok := g.Catalogs().Accessories.Def("side_fender")
	if !ok {
		return nil
	}
	groups, keys := groupSegments(segments)

	var out []AccessoryPlacement
	for _, k := range keys {
		segs := groups[k]
		for i := 0; i+1 < len(segs); {
			if segs[i+1].index != segs[i].index+1 {
				i++
				continue
			}
			out = append(out, AccessoryPlacement{
				ID:          accessoryID("fender", k.level, k.dir, k.line, segs[i].index),
				Kind:        AccessoryFender,
				AccessoryID: def.ID,
				Level:       k.level,
				Direction:   k.dir,
				LineIndex:   k.line,
				StartIndex:  segs[i].index,
				SpanCells:   def.SpanCells,
				Outward:     outwardVector(k.dir),
				World:       spanCenterWorld(calc, segs[i], segs[i+1]),
			})
			i += 2
		}
	}
	return out
}

// createLadderPlacements emits one candidate per two-segment window of
// every contiguous boundary run. Long edges produce overlapping
// candidates on purpose: the user picks one, the rest stay candidates.
func createLadderPlacements(g *grid.Grid, calc grid.CoordinateCalculator, segments []edgeSegment) []AccessoryPlacement {
	def, ok := g.Catalogs().Accessories.Def("ladder")
	if !ok {
		return nil
	}
	span := def.SpanCells
	if span < 2 {
		span = 2
	}
	groups, keys := groupSegments(segments)

	var out []AccessoryPlacement
	for _, k := range keys {
		segs := groups[k]
		for _, run := range contiguousRuns(segs) {
			for s := 0; s+span <= len(run); s++ {
				out = append(out, AccessoryPlacement{
					ID:          accessoryID("ladder", k.level, k.dir, k.line, run[s].index),
					Kind:        AccessoryLadder,
					AccessoryID: def.ID,
					Level:       k.level,
					Direction:   k.dir,
					LineIndex:   k.line,
					StartIndex:  run[s].index,
					SpanCells:   span,
					Outward:     outwardVector(k.dir),
					World:       spanCenterWorld(calc, run[s], run[s+span-1]),
				})
			}
		}
	}
	return out
}

type diagQuadrant struct {
	name   string
	dx, dz int
	// corner lattice offsets relative to the cell anchor
	cx, cz int
}

var diagQuadrants = []diagQuadrant{
	{name: "NE", dx: 1, dz: -1, cx: 1, cz: 0},
	{name: "NW", dx: -1, dz: -1, cx: 0, cz: 0},
	{name: "SE", dx: 1, dz: 1, cx: 1, cz: 1},
	{name: "SW", dx: -1, dz: 1, cx: 0, cz: 1},
}

// createCornerPlacements finds true outside corners: a quadrant of a
// boundary cell qualifies only when BOTH straight neighbors forming
// that corner are absent. A notch (one straight neighbor present) is
// not an outside corner and gets nothing.
func createCornerPlacements(g *grid.Grid, calc grid.CoordinateCalculator) []AccessoryPlacement {
	def, ok := g.Catalogs().Accessories.Def("corner_fender")
	if !ok {
		return nil
	}

	var out []AccessoryPlacement
	for _, cell := range g.OccupiedCells() {
		if cell.Y != 0 {
			continue
		}
		for _, q := range diagQuadrants {
			if g.IsOccupied(cell.Add(q.dx, 0, 0)) || g.IsOccupied(cell.Add(0, 0, q.dz)) {
				continue
			}
			out = append(out, AccessoryPlacement{
				ID:          fmt.Sprintf("corner:%d:%s:%d:%d", cell.Y, q.name, cell.X, cell.Z),
				Kind:        AccessoryCornerFender,
				AccessoryID: def.ID,
				Level:       cell.Y,
				Direction:   Direction(q.name),
				LineIndex:   cell.X + q.cx,
				StartIndex:  cell.Z + q.cz,
				SpanCells:   def.SpanCells,
				Outward:     [2]int{q.dx, q.dz},
				World:       calc.CornerWorld(cell.Y, cell.X+q.cx, cell.Z+q.cz),
			})
		}
	}
	return out
}

func contiguousRuns(segs []edgeSegment) [][]edgeSegment {
	var runs [][]edgeSegment
	for i := 0; i < len(segs); {
		j := i + 1
		for j < len(segs) && segs[j].index == segs[j-1].index+1 {
			j++
		}
		runs = append(runs, segs[i:j])
		i = j
	}
	return runs
}

func accessoryID(kind string, level int, dir Direction, line, start int) string {
	return fmt.Sprintf("%s:%d:%s:%d:%d", kind, level, dir, line, start)
}

func outwardVector(d Direction) [2]int {
	dx, dz := d.offset()
	return [2]int{dx, dz}
}

// spanCenterWorld returns the world midpoint of the exposed faces of
// the first and last spanned segments.
func spanCenterWorld(calc grid.CoordinateCalculator, first, last edgeSegment) grid.WorldPoint {
	a := faceCenterWorld(calc, first)
	b := faceCenterWorld(calc, last)
	return grid.WorldPoint{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2, Z: (a.Z + b.Z) / 2}
}

// faceCenterWorld is the world center of a segment's exposed face: the
// cell center pushed half a cell outward.
func faceCenterWorld(calc grid.CoordinateCalculator, s edgeSegment) grid.WorldPoint {
	center := calc.CellCenterWorld(s.cell)
	dx, dz := s.dir.offset()
	half := calc.CellSizeM() / 2
	center.X += float64(dx) * half
	center.Z += float64(dz) * half
	return center
}
