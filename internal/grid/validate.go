package grid

import (
	"fmt"
	"sort"
)

// Placement rule engine. All checks run against the receiver snapshot
// and report every violation they find; nothing short-circuits, so the
// caller always sees the complete error set for one intent.

// CanPlace checks whether a pontoon of the given type and rotation fits
// at pos. excludeID ignores one pontoon's own cells, which is how moves
// and rotations validate against "everyone but me".
func (g *Grid) CanPlace(pos Position, typ PontoonType, rot Rotation, excludeID string) ValidationResult {
	def, ok := g.cats.Pontoons.Def(typ.String())
	if !ok {
		return validationFailure([]ValidationError{{
			Code:     ErrInvalidPosition,
			Position: pos,
			Message:  fmt.Sprintf("pontoon type %s not in catalog", typ),
		}})
	}

	w, d := def.Cells[0], def.Cells[1]
	if rot.SwapsExtents() {
		w, d = d, w
	}

	var errs []ValidationError
	for _, cell := range footprintCells(pos, w, d) {
		if !g.inBounds(cell) {
			errs = append(errs, ValidationError{
				Code:     ErrOutOfBounds,
				Position: cell,
				Message:  fmt.Sprintf("cell outside %dx%dx%d grid", g.cfg.Width, g.cfg.Height, g.cfg.Levels),
			})
			continue
		}
		if g.occupiedExcluding(cell, excludeID) {
			errs = append(errs, ValidationError{
				Code:     ErrCellOccupied,
				Position: cell,
				Message:  "cell already occupied",
			})
		}
		if !g.hasSupportExcluding(cell, excludeID) {
			errs = append(errs, ValidationError{
				Code:     ErrNoSupport,
				Position: cell,
				Message:  "no pontoon directly beneath",
			})
		}
	}
	return validationFailure(errs)
}

// HasSupport reports whether a single cell at pos is supported: level 0
// always is, higher levels need an occupied cell directly beneath.
//
// This is the one support primitive in the engine. Hover previews and
// commit-time validation both end up here; there is deliberately no
// second implementation to drift from.
func (g *Grid) HasSupport(pos Position) bool {
	return g.hasSupportExcluding(pos, "")
}

func (g *Grid) hasSupportExcluding(pos Position, excludeID string) bool {
	if pos.Y <= 0 {
		return true
	}
	return g.occupiedExcluding(pos.Below(), excludeID)
}

func (g *Grid) occupiedExcluding(pos Position, excludeID string) bool {
	for _, id := range g.index.IDsAt(pos) {
		if id != excludeID {
			return true
		}
	}
	return false
}

// CanMove revalidates an existing pontoon at a new anchor, ignoring its
// current cells. An unknown id reports INVALID_POSITION.
func (g *Grid) CanMove(id string, to Position) ValidationResult {
	p, ok := g.pontoons[id]
	if !ok {
		return validationFailure([]ValidationError{unknownID(id, to)})
	}
	return g.CanPlace(to, p.Type, p.Rotation, id)
}

// ValidateConnectivity checks that each level forms a single
// edge-connected platform. Diagonal contact does not connect. Every
// disconnected cluster beyond the first reports one INVALID_POSITION at
// its lexicographically smallest cell; an empty grid is valid.
//
// Levels are judged independently: a lone pontoon on level 1 is its own
// one-cluster platform, connected to the structure only vertically.
func (g *Grid) ValidateConnectivity() ValidationResult {
	byLevel := map[int][]Position{}
	for _, cell := range g.OccupiedCells() {
		byLevel[cell.Y] = append(byLevel[cell.Y], cell)
	}

	levels := make([]int, 0, len(byLevel))
	for level := range byLevel {
		levels = append(levels, level)
	}
	sort.Ints(levels)

	var errs []ValidationError
	for _, level := range levels {
		cells := byLevel[level] // already sorted by OccupiedCells
		occupied := make(map[Position]struct{}, len(cells))
		for _, c := range cells {
			occupied[c] = struct{}{}
		}

		visited := make(map[Position]struct{}, len(cells))
		first := true
		for _, start := range cells {
			if _, seen := visited[start]; seen {
				continue
			}
			floodFill(start, occupied, visited)
			if first {
				first = false
				continue
			}
			// start is the smallest cell of this cluster: cells are
			// scanned in sorted order.
			errs = append(errs, ValidationError{
				Code:     ErrInvalidPosition,
				Position: start,
				Message:  fmt.Sprintf("disconnected platform cluster on level %d", level),
			})
		}
	}
	return validationFailure(errs)
}

var planarNeighbors = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}

func floodFill(start Position, occupied, visited map[Position]struct{}) {
	queue := []Position{start}
	visited[start] = struct{}{}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, n := range planarNeighbors {
			next := cur.Add(n[0], 0, n[1])
			if _, ok := occupied[next]; !ok {
				continue
			}
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			queue = append(queue, next)
		}
	}
}

// FindNearbyValidPositions searches outward from target on the target's
// level and returns every anchor within radius where CanPlace passes,
// ordered by ascending planar Manhattan distance, then lexicographically.
// The ordering is part of the contract: identical grids give identical
// suggestion lists.
func (g *Grid) FindNearbyValidPositions(target Position, typ PontoonType, rot Rotation, radius int) []Position {
	if radius < 0 {
		return nil
	}
	var out []Position
	for r := 0; r <= radius; r++ {
		ring := ringPositions(target, r)
		sort.Slice(ring, func(i, j int) bool { return Less(ring[i], ring[j]) })
		for _, pos := range ring {
			if res := g.CanPlace(pos, typ, rot, ""); res.Valid {
				out = append(out, pos)
			}
		}
	}
	return out
}

// ringPositions returns the cells at exact planar Manhattan distance r
// from center, on center's level.
func ringPositions(center Position, r int) []Position {
	if r == 0 {
		return []Position{center}
	}
	out := make([]Position, 0, 4*r)
	for dx := -r; dx <= r; dx++ {
		dz := r - absInt(dx)
		out = append(out, center.Add(dx, 0, dz))
		if dz != 0 {
			out = append(out, center.Add(dx, 0, -dz))
		}
	}
	return out
}

func (g *Grid) inBounds(pos Position) bool {
	return pos.X >= 0 && pos.X < g.cfg.Width &&
		pos.Z >= 0 && pos.Z < g.cfg.Height &&
		pos.Y >= 0 && pos.Y < g.cfg.Levels
}
