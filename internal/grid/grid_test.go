package grid

import (
	"testing"

	"pontoongrid.app/internal/catalogs"
)

func testGrid(t *testing.T) *Grid {
	t.Helper()
	cats, err := catalogs.Load("../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	g, err := New(Config{Width: 30, Height: 30, Levels: 3}, cats)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	return g
}

func mustPlace(t *testing.T, g *Grid, pos Position, typ PontoonType, rot Rotation) (*Grid, Pontoon) {
	t.Helper()
	ng, p, errs := g.Place(pos, typ, rot, ColorBlue)
	if len(errs) > 0 {
		t.Fatalf("place %s at %s: %v", typ, pos, errs)
	}
	return ng, p
}

func TestGrid_PlaceAndQuery(t *testing.T) {
	g := testGrid(t)
	g, p := mustPlace(t, g, Position{X: 10, Y: 0, Z: 10}, TypeDouble, RotationNorth)

	for _, pos := range []Position{{X: 10, Y: 0, Z: 10}, {X: 11, Y: 0, Z: 10}} {
		got, ok := g.PontoonAt(pos)
		if !ok || got.ID != p.ID {
			t.Fatalf("PontoonAt(%v): ok=%v id=%q want %q", pos, ok, got.ID, p.ID)
		}
	}
	if g.IsOccupied(Position{X: 12, Y: 0, Z: 10}) {
		t.Fatalf("cell beyond footprint occupied")
	}
	if g.Len() != 1 {
		t.Fatalf("Len()=%d want 1", g.Len())
	}
}

func TestGrid_PlaceLeavesReceiverUntouched(t *testing.T) {
	g0 := testGrid(t)
	g1, _ := mustPlace(t, g0, Position{X: 5, Y: 0, Z: 5}, TypeSingle, RotationNorth)

	if g0.Len() != 0 || g0.IsOccupied(Position{X: 5, Y: 0, Z: 5}) {
		t.Fatalf("placement mutated the old snapshot")
	}
	if g1.Len() != 1 {
		t.Fatalf("new snapshot missing pontoon")
	}
}

func TestGrid_PlaceRemoveRoundTrip(t *testing.T) {
	g := testGrid(t)
	before := g.Len()

	g1, p := mustPlace(t, g, Position{X: 3, Y: 0, Z: 3}, TypeSingle, RotationNorth)
	g2, removed := g1.Remove(p.ID)
	if !removed {
		t.Fatalf("remove reported unknown id")
	}
	if g2.Len() != before {
		t.Fatalf("Len()=%d want %d after round trip", g2.Len(), before)
	}
	if g2.IsOccupied(Position{X: 3, Y: 0, Z: 3}) {
		t.Fatalf("cell still occupied after remove")
	}
}

func TestGrid_RemoveUnknownID(t *testing.T) {
	g := testGrid(t)
	same, removed := g.Remove("nope")
	if removed {
		t.Fatalf("removed a pontoon that does not exist")
	}
	if same != g {
		t.Fatalf("unknown-id remove should return the receiver")
	}
}

func TestGrid_DoubleAtEastBoundaryFailsOutOfBounds(t *testing.T) {
	g := testGrid(t)
	_, _, errs := g.Place(Position{X: 29, Y: 0, Z: 10}, TypeDouble, RotationNorth, ColorBlue)
	if len(errs) != 1 {
		t.Fatalf("errors=%v want exactly one", errs)
	}
	if errs[0].Code != ErrOutOfBounds {
		t.Fatalf("code=%s want %s", errs[0].Code, ErrOutOfBounds)
	}
	if (errs[0].Position != Position{X: 30, Y: 0, Z: 10}) {
		t.Fatalf("offending position=%v", errs[0].Position)
	}
}

func TestGrid_RotatedDoubleOccupiesSwappedExtents(t *testing.T) {
	g := testGrid(t)
	g, _ = mustPlace(t, g, Position{X: 10, Y: 0, Z: 10}, TypeDouble, RotationEast)

	if !g.IsOccupied(Position{X: 10, Y: 0, Z: 11}) {
		t.Fatalf("east rotation should extend along Z")
	}
	if g.IsOccupied(Position{X: 11, Y: 0, Z: 10}) {
		t.Fatalf("east rotation should not extend along X")
	}
}

func TestGrid_MoveRevalidates(t *testing.T) {
	g := testGrid(t)
	g, a := mustPlace(t, g, Position{X: 1, Y: 0, Z: 1}, TypeSingle, RotationNorth)
	g, _ = mustPlace(t, g, Position{X: 5, Y: 0, Z: 5}, TypeSingle, RotationNorth)

	// Moving onto the other pontoon must fail.
	if _, errs := g.Move(a.ID, Position{X: 5, Y: 0, Z: 5}); len(errs) == 0 {
		t.Fatalf("move onto occupied cell passed")
	}

	// Moving onto its own footprint is a no-op placement and passes.
	ng, errs := g.Move(a.ID, Position{X: 1, Y: 0, Z: 1})
	if len(errs) > 0 {
		t.Fatalf("move onto own cell: %v", errs)
	}
	if !ng.IsOccupied(Position{X: 1, Y: 0, Z: 1}) {
		t.Fatalf("pontoon vanished after self-move")
	}

	ng, errs = g.Move(a.ID, Position{X: 2, Y: 0, Z: 1})
	if len(errs) > 0 {
		t.Fatalf("legal move: %v", errs)
	}
	if ng.IsOccupied(Position{X: 1, Y: 0, Z: 1}) || !ng.IsOccupied(Position{X: 2, Y: 0, Z: 1}) {
		t.Fatalf("index not updated with move")
	}
}

func TestGrid_MoveUnknownIDReportsInvalidPosition(t *testing.T) {
	g := testGrid(t)
	_, errs := g.Move("ghost", Position{X: 1, Y: 0, Z: 1})
	if len(errs) != 1 || errs[0].Code != ErrInvalidPosition {
		t.Fatalf("errors=%v want one %s", errs, ErrInvalidPosition)
	}
}

func TestGrid_RotateDoubleNeedsRoom(t *testing.T) {
	g := testGrid(t)
	g, d := mustPlace(t, g, Position{X: 10, Y: 0, Z: 10}, TypeDouble, RotationNorth)
	// Block the cell the east-rotated footprint would need.
	g, _ = mustPlace(t, g, Position{X: 10, Y: 0, Z: 11}, TypeSingle, RotationNorth)

	if _, errs := g.Rotate(d.ID, RotationEast); len(errs) == 0 {
		t.Fatalf("rotation into occupied cell passed")
	}

	ng, errs := g.Rotate(d.ID, RotationSouth)
	if len(errs) > 0 {
		t.Fatalf("in-place half turn: %v", errs)
	}
	p, _ := ng.Pontoon(d.ID)
	if p.Rotation != RotationSouth {
		t.Fatalf("rotation=%v want SOUTH", p.Rotation)
	}
}

func TestGrid_RecolorIsCosmetic(t *testing.T) {
	g := testGrid(t)
	g, p := mustPlace(t, g, Position{X: 4, Y: 0, Z: 4}, TypeSingle, RotationNorth)

	ng, ok := g.Recolor(p.ID, ColorOrange)
	if !ok {
		t.Fatalf("recolor failed")
	}
	np, _ := ng.Pontoon(p.ID)
	if np.Color != ColorOrange {
		t.Fatalf("color=%v want ORANGE", np.Color)
	}
	if np.Anchor != p.Anchor || np.Rotation != p.Rotation {
		t.Fatalf("recolor disturbed placement")
	}
	old, _ := g.Pontoon(p.ID)
	if old.Color != ColorBlue {
		t.Fatalf("recolor mutated old snapshot")
	}
}

func TestGrid_NoTwoPontoonsShareACell(t *testing.T) {
	g := testGrid(t)
	g, _ = mustPlace(t, g, Position{X: 10, Y: 0, Z: 10}, TypeDouble, RotationNorth)
	g, _ = mustPlace(t, g, Position{X: 12, Y: 0, Z: 10}, TypeSingle, RotationNorth)
	g, _ = mustPlace(t, g, Position{X: 10, Y: 0, Z: 11}, TypeDouble, RotationNorth)

	seen := map[Position]string{}
	for _, p := range g.Pontoons() {
		for _, cell := range p.OccupiedPositions() {
			if other, dup := seen[cell]; dup {
				t.Fatalf("cell %v occupied by %s and %s", cell, other, p.ID)
			}
			seen[cell] = p.ID
		}
	}
}

func TestGrid_RecordAndRestoreRoundTrip(t *testing.T) {
	g := testGrid(t)
	g, _ = mustPlace(t, g, Position{X: 10, Y: 0, Z: 10}, TypeSingle, RotationNorth)
	g, _ = mustPlace(t, g, Position{X: 11, Y: 0, Z: 10}, TypeDouble, RotationEast)
	g, _ = mustPlace(t, g, Position{X: 10, Y: 1, Z: 10}, TypeSingle, RotationNorth)

	records := g.Record()
	restored, err := Restore(Config{Width: 30, Height: 30, Levels: 3}, g.Catalogs(), records)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Len() != g.Len() {
		t.Fatalf("restored %d pontoons, want %d", restored.Len(), g.Len())
	}
	for _, r := range records {
		p, ok := restored.Pontoon(r.ID)
		if !ok {
			t.Fatalf("pontoon %s missing after restore", r.ID)
		}
		if p.Anchor != r.Position || p.Type != r.Type || p.Rotation != r.Rotation || p.Color != r.Color {
			t.Fatalf("pontoon %s changed in restore: %+v vs %+v", r.ID, p, r)
		}
	}
}

func TestGrid_RestoreRejectsInvalidRecords(t *testing.T) {
	g := testGrid(t)
	records := []PlacedRecord{
		{ID: "a", Position: Position{X: 50, Y: 0, Z: 0}, Type: TypeSingle},
	}
	if _, err := Restore(Config{Width: 30, Height: 30, Levels: 3}, g.Catalogs(), records); err == nil {
		t.Fatalf("restore accepted out-of-bounds record")
	}
}
