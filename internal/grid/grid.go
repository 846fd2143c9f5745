package grid

import (
	"fmt"
	"sort"

	"pontoongrid.app/internal/catalogs"
)

// Config sizes the grid. Width and Height are planar cell counts (X and
// Z); Levels is the number of stacking tiers.
type Config struct {
	Width  int
	Height int
	Levels int
}

// Grid is the aggregate root: the pontoon map plus the spatial index
// that mirrors it. The two are only ever mutated together, inside one
// state-transition helper, so they cannot drift apart.
//
// Grid is immutable from the caller's point of view: every transition
// returns a new Grid and leaves the receiver untouched. Retaining old
// snapshots is how the application layer gets undo/redo for free.
type Grid struct {
	cfg  Config
	cats *catalogs.Catalogs

	pontoons map[string]Pontoon
	index    *SpatialHashGrid
}

// New returns an empty grid. The catalog must contain a definition for
// every PontoonType; a partial catalog fails here, not mid-placement.
func New(cfg Config, cats *catalogs.Catalogs) (*Grid, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Levels <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%dx%d",
			cfg.Width, cfg.Height, cfg.Levels)
	}
	if cats == nil {
		return nil, fmt.Errorf("nil catalogs")
	}
	for _, typ := range []PontoonType{TypeSingle, TypeDouble} {
		if _, ok := cats.Pontoons.Def(typ.String()); !ok {
			return nil, fmt.Errorf("catalog missing pontoon type %s", typ)
		}
	}
	return &Grid{
		cfg:      cfg,
		cats:     cats,
		pontoons: map[string]Pontoon{},
		index:    NewSpatialHashGrid(),
	}, nil
}

func (g *Grid) Width() int  { return g.cfg.Width }
func (g *Grid) Height() int { return g.cfg.Height }
func (g *Grid) Levels() int { return g.cfg.Levels }
func (g *Grid) Len() int    { return len(g.pontoons) }

func (g *Grid) Catalogs() *catalogs.Catalogs { return g.cats }

// Pontoon returns the pontoon with the given id.
func (g *Grid) Pontoon(id string) (Pontoon, bool) {
	p, ok := g.pontoons[id]
	return p, ok
}

// Pontoons returns every pontoon, sorted by id for deterministic
// iteration.
func (g *Grid) Pontoons() []Pontoon {
	out := make([]Pontoon, 0, len(g.pontoons))
	for _, p := range g.pontoons {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PontoonAt returns the pontoon covering pos, if any.
func (g *Grid) PontoonAt(pos Position) (Pontoon, bool) {
	ids := g.index.IDsAt(pos)
	if len(ids) == 0 {
		return Pontoon{}, false
	}
	// Occupancy invariant: at most one occupant per cell.
	return g.pontoons[ids[0]], true
}

// IsOccupied reports whether any pontoon covers pos.
func (g *Grid) IsOccupied(pos Position) bool {
	return g.index.Occupied(pos)
}

// OccupiedCells returns every occupied cell, sorted.
func (g *Grid) OccupiedCells() []Position {
	out := make([]Position, 0, g.index.CellCount())
	for pos := range g.index.cells {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool { return Less(out[i], out[j]) })
	return out
}

// Place validates and commits a new pontoon. On success it returns the
// next grid snapshot and the created pontoon; on failure the complete
// violation set and no new snapshot.
func (g *Grid) Place(pos Position, typ PontoonType, rot Rotation, color Color) (*Grid, Pontoon, []ValidationError) {
	rot = rot & 3
	if res := g.CanPlace(pos, typ, rot, ""); !res.Valid {
		return nil, Pontoon{}, res.Errors
	}
	p, err := NewPontoon(g.cats, typ, pos, rot, color)
	if err != nil {
		return nil, Pontoon{}, []ValidationError{{
			Code: ErrInvalidPosition, Position: pos, Message: err.Error(),
		}}
	}
	return g.withPlaced(p), p, nil
}

// Remove deletes a pontoon. The second return is false when the id is
// unknown, in which case the receiver itself comes back unchanged.
//
// Support is checked at placement time only: pontoons stacked on top
// of the removed one stay where they are.
func (g *Grid) Remove(id string) (*Grid, bool) {
	if _, ok := g.pontoons[id]; !ok {
		return g, false
	}
	ng := g.clone()
	delete(ng.pontoons, id)
	ng.index.Remove(id)
	return ng, true
}

// Move re-places an existing pontoon at a new anchor, revalidating the
// full rule set with the pontoon's own cells ignored.
func (g *Grid) Move(id string, to Position) (*Grid, []ValidationError) {
	p, ok := g.pontoons[id]
	if !ok {
		return nil, []ValidationError{unknownID(id, to)}
	}
	if res := g.CanPlace(to, p.Type, p.Rotation, id); !res.Valid {
		return nil, res.Errors
	}
	return g.withPlaced(p.withAnchor(to)), nil
}

// Rotate turns a pontoon in place. The rotated footprint is revalidated
// because EAST/WEST swap the extents.
func (g *Grid) Rotate(id string, rot Rotation) (*Grid, []ValidationError) {
	p, ok := g.pontoons[id]
	if !ok {
		return nil, []ValidationError{unknownID(id, Position{})}
	}
	rot = rot & 3
	if res := g.CanPlace(p.Anchor, p.Type, rot, id); !res.Valid {
		return nil, res.Errors
	}
	return g.withPlaced(p.withRotation(rot)), nil
}

// Recolor changes a pontoon's color. Cosmetic only; no validation.
func (g *Grid) Recolor(id string, c Color) (*Grid, bool) {
	p, ok := g.pontoons[id]
	if !ok {
		return g, false
	}
	ng := g.clone()
	ng.pontoons[id] = p.withColor(c)
	// Footprint unchanged; the index needs no touch.
	return ng, true
}

// PlacedRecord is the plain-data shape of one pontoon, used by layered
// persistence collaborators. The grid owns no storage format beyond it.
type PlacedRecord struct {
	ID       string
	Position Position
	Type     PontoonType
	Rotation Rotation
	Color    Color
}

// Record returns the plain-data form of every pontoon, ordered by level
// then id so replaying the slice always places supports first.
func (g *Grid) Record() []PlacedRecord {
	out := make([]PlacedRecord, 0, len(g.pontoons))
	for _, p := range g.pontoons {
		out = append(out, PlacedRecord{
			ID: p.ID, Position: p.Anchor, Type: p.Type, Rotation: p.Rotation, Color: p.Color,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position.Y != out[j].Position.Y {
			return out[i].Position.Y < out[j].Position.Y
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Restore rebuilds a grid from recorded pontoons, re-running the full
// rule set on each. Records are applied lowest level first so stacked
// layouts restore in a supportable order regardless of input order.
func Restore(cfg Config, cats *catalogs.Catalogs, records []PlacedRecord) (*Grid, error) {
	g, err := New(cfg, cats)
	if err != nil {
		return nil, err
	}
	sorted := make([]PlacedRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Position.Y != sorted[j].Position.Y {
			return sorted[i].Position.Y < sorted[j].Position.Y
		}
		return sorted[i].ID < sorted[j].ID
	})
	for _, r := range sorted {
		if r.ID == "" {
			return nil, fmt.Errorf("restore: empty pontoon id")
		}
		if res := g.CanPlace(r.Position, r.Type, r.Rotation, ""); !res.Valid {
			return nil, fmt.Errorf("restore %s: %v", r.ID, res.Errors[0])
		}
		p, err := newPontoonWithID(cats, r.ID, r.Type, r.Position, r.Rotation, r.Color)
		if err != nil {
			return nil, fmt.Errorf("restore %s: %w", r.ID, err)
		}
		g = g.withPlaced(p)
	}
	return g, nil
}

// withPlaced is the single construction step that commits a pontoon to
// both the map and the index. Inserting an already-known id re-indexes
// it, which is what Move and Rotate rely on.
func (g *Grid) withPlaced(p Pontoon) *Grid {
	ng := g.clone()
	ng.pontoons[p.ID] = p
	w, d := p.Footprint()
	ng.index.Insert(p.ID, p.Anchor, w, d)
	return ng
}

func (g *Grid) clone() *Grid {
	np := make(map[string]Pontoon, len(g.pontoons)+1)
	for id, p := range g.pontoons {
		np[id] = p
	}
	return &Grid{
		cfg:      g.cfg,
		cats:     g.cats,
		pontoons: np,
		index:    g.index.Clone(),
	}
}

func unknownID(id string, pos Position) ValidationError {
	return ValidationError{
		Code:     ErrInvalidPosition,
		Position: pos,
		Message:  fmt.Sprintf("unknown pontoon id %q", id),
	}
}
