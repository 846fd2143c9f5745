package plan

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"pontoongrid.app/internal/catalogs"
	"pontoongrid.app/internal/grid"
)

func testGrid(t *testing.T) *grid.Grid {
	t.Helper()
	cats, err := catalogs.Load("../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	g, err := grid.New(grid.Config{Width: 30, Height: 30, Levels: 3}, cats)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	return g
}

func place(t *testing.T, g *grid.Grid, pos grid.Position, typ grid.PontoonType, rot grid.Rotation) *grid.Grid {
	t.Helper()
	ng, _, errs := g.Place(pos, typ, rot, grid.ColorBlue)
	if len(errs) > 0 {
		t.Fatalf("place %s at %s: %v", typ, pos, errs)
	}
	return ng
}

func testCalc() grid.CoordinateCalculator {
	return grid.NewCoordinateCalculator(500, 400)
}

func connectorAt(placements []ConnectorPlacement, level, cx, cz int) (ConnectorPlacement, bool) {
	for _, c := range placements {
		if c.Level == level && c.CornerX == cx && c.CornerZ == cz {
			return c, true
		}
	}
	return ConnectorPlacement{}, false
}

func TestComputeConnectorPlacements_EmptyGrid(t *testing.T) {
	g := testGrid(t)
	if got := ComputeConnectorPlacements(g, testCalc()); len(got) != 0 {
		t.Fatalf("empty grid produced %d connectors", len(got))
	}
}

func TestComputeConnectorPlacements_SinglePontoonYieldsNothing(t *testing.T) {
	g := testGrid(t)
	g = place(t, g, grid.Position{X: 10, Y: 0, Z: 10}, grid.TypeDouble, grid.RotationNorth)

	// A pontoon's own corners, internal mid-edge ones included, never
	// yield hardware without a second pontoon.
	if got := ComputeConnectorPlacements(g, testCalc()); len(got) != 0 {
		t.Fatalf("lone pontoon produced connectors: %+v", got)
	}
}

// Scenario: two adjacent singles. Each shared corner carries exactly
// one edge connector with two lugs from two distinct pontoons.
func TestComputeConnectorPlacements_AdjacentSingles(t *testing.T) {
	g := testGrid(t)
	g = place(t, g, grid.Position{X: 10, Y: 0, Z: 10}, grid.TypeSingle, grid.RotationNorth)
	g = place(t, g, grid.Position{X: 11, Y: 0, Z: 10}, grid.TypeSingle, grid.RotationNorth)

	got := ComputeConnectorPlacements(g, testCalc())
	if len(got) != 2 {
		t.Fatalf("placements=%d want 2 (one per shared corner)", len(got))
	}

	south, ok := connectorAt(got, 0, 11, 10)
	if !ok {
		t.Fatalf("no connector at shared corner (11,10)")
	}
	if south.Kind != ConnectorEdge || south.LugCount != 2 {
		t.Fatalf("south corner: kind=%s lugCount=%d", south.Kind, south.LugCount)
	}
	if len(south.PontoonIDs) != 2 || south.PontoonIDs[0] == south.PontoonIDs[1] {
		t.Fatalf("pontoon ids=%v want 2 distinct", south.PontoonIDs)
	}
	if diff := cmp.Diff([]int{1, 2}, south.OccupiedLayers); diff != "" {
		t.Fatalf("south occupied layers (-want +got):\n%s", diff)
	}
	// Layers 1 and 2 mate directly; the two missing upper layers are
	// consecutive and take one double spacer.
	if len(south.Spacers) != 1 || south.Spacers[0].Kind != "double" {
		t.Fatalf("south spacers=%+v want one double", south.Spacers)
	}
	if diff := cmp.Diff([]int{3, 4}, south.Spacers[0].Layers); diff != "" {
		t.Fatalf("south spacer layers (-want +got):\n%s", diff)
	}

	north, ok := connectorAt(got, 0, 11, 11)
	if !ok {
		t.Fatalf("no connector at shared corner (11,11)")
	}
	if diff := cmp.Diff([]int{3, 4}, north.OccupiedLayers); diff != "" {
		t.Fatalf("north occupied layers (-want +got):\n%s", diff)
	}
	if len(north.Spacers) != 1 || north.Spacers[0].Kind != "double" {
		t.Fatalf("north spacers=%+v want one double", north.Spacers)
	}
}

// Scenario: an L of three singles has exactly one three-lug corner.
func TestComputeConnectorPlacements_LShapeThreeLugCorner(t *testing.T) {
	g := testGrid(t)
	g = place(t, g, grid.Position{X: 10, Y: 0, Z: 10}, grid.TypeSingle, grid.RotationNorth)
	g = place(t, g, grid.Position{X: 11, Y: 0, Z: 10}, grid.TypeSingle, grid.RotationNorth)
	g = place(t, g, grid.Position{X: 10, Y: 0, Z: 11}, grid.TypeSingle, grid.RotationNorth)

	got := ComputeConnectorPlacements(g, testCalc())

	var threes []ConnectorPlacement
	for _, c := range got {
		if c.LugCount == 3 {
			threes = append(threes, c)
		}
	}
	if len(threes) != 1 {
		t.Fatalf("three-lug corners=%d want 1", len(threes))
	}
	c := threes[0]
	if c.CornerX != 11 || c.CornerZ != 11 {
		t.Fatalf("three-lug corner at (%d,%d) want (11,11)", c.CornerX, c.CornerZ)
	}
	if c.Kind != ConnectorEdge {
		t.Fatalf("kind=%s want edge", c.Kind)
	}
	if diff := cmp.Diff([]int{2, 3, 4}, c.OccupiedLayers); diff != "" {
		t.Fatalf("occupied layers (-want +got):\n%s", diff)
	}
	// Only layer 1 is empty: one single spacer.
	if len(c.Spacers) != 1 || c.Spacers[0].Kind != "single" {
		t.Fatalf("spacers=%+v want one single", c.Spacers)
	}
}

func TestComputeConnectorPlacements_FourWayStandard(t *testing.T) {
	g := testGrid(t)
	for _, pos := range []grid.Position{
		{X: 10, Y: 0, Z: 10}, {X: 11, Y: 0, Z: 10},
		{X: 10, Y: 0, Z: 11}, {X: 11, Y: 0, Z: 11},
	} {
		g = place(t, g, pos, grid.TypeSingle, grid.RotationNorth)
	}

	got := ComputeConnectorPlacements(g, testCalc())
	center, ok := connectorAt(got, 0, 11, 11)
	if !ok {
		t.Fatalf("no connector at the four-way corner")
	}
	if center.Kind != ConnectorStandard || center.LugCount != 4 {
		t.Fatalf("center: kind=%s lugCount=%d want standard/4", center.Kind, center.LugCount)
	}
	if diff := cmp.Diff([]int{1, 2, 3, 4}, center.OccupiedLayers); diff != "" {
		t.Fatalf("center layers (-want +got):\n%s", diff)
	}
	if len(center.Spacers) != 0 {
		t.Fatalf("full stack needs no spacers, got %+v", center.Spacers)
	}
	if len(center.PontoonIDs) != 4 {
		t.Fatalf("contributors=%d want 4", len(center.PontoonIDs))
	}
}

func TestComputeConnectorPlacements_LongConnectorOverLowerCorner(t *testing.T) {
	g := testGrid(t)
	cells := []grid.Position{
		{X: 10, Y: 0, Z: 10}, {X: 11, Y: 0, Z: 10},
		{X: 10, Y: 0, Z: 11}, {X: 11, Y: 0, Z: 11},
	}
	for _, pos := range cells {
		g = place(t, g, pos, grid.TypeSingle, grid.RotationNorth)
	}
	for _, pos := range cells {
		g = place(t, g, grid.Position{X: pos.X, Y: 1, Z: pos.Z}, grid.TypeSingle, grid.RotationNorth)
	}

	got := ComputeConnectorPlacements(g, testCalc())

	upper, ok := connectorAt(got, 1, 11, 11)
	if !ok {
		t.Fatalf("no connector at upper four-way corner")
	}
	if upper.Kind != ConnectorLong || !upper.HasLowerSupport {
		t.Fatalf("upper: kind=%s hasLower=%v want long/true", upper.Kind, upper.HasLowerSupport)
	}

	lower, ok := connectorAt(got, 0, 11, 11)
	if !ok {
		t.Fatalf("no connector at lower four-way corner")
	}
	if lower.Kind != ConnectorStandard || lower.HasLowerSupport {
		t.Fatalf("lower: kind=%s hasLower=%v want standard/false", lower.Kind, lower.HasLowerSupport)
	}
}

func TestComputeConnectorPlacements_RotationCorrectsLugLookup(t *testing.T) {
	g := testGrid(t)
	// A half turn relabels the single's corners; the meeting corner
	// must still collect two distinct layers.
	g = place(t, g, grid.Position{X: 10, Y: 0, Z: 10}, grid.TypeSingle, grid.RotationSouth)
	g = place(t, g, grid.Position{X: 11, Y: 0, Z: 10}, grid.TypeSingle, grid.RotationNorth)

	got := ComputeConnectorPlacements(g, testCalc())
	c, ok := connectorAt(got, 0, 11, 10)
	if !ok {
		t.Fatalf("no connector at shared corner")
	}
	if len(c.OccupiedLayers) != 2 {
		t.Fatalf("occupied layers=%v want two distinct", c.OccupiedLayers)
	}
}

func TestComputeConnectorPlacements_PinAndNutFromLayerExtremes(t *testing.T) {
	g := testGrid(t)
	g = place(t, g, grid.Position{X: 10, Y: 0, Z: 10}, grid.TypeSingle, grid.RotationNorth)
	g = place(t, g, grid.Position{X: 11, Y: 0, Z: 10}, grid.TypeSingle, grid.RotationNorth)

	got := ComputeConnectorPlacements(g, testCalc())
	south, ok := connectorAt(got, 0, 11, 10)
	if !ok {
		t.Fatalf("no connector at shared corner")
	}
	// Shipped catalog: layer 1 at 90mm, layer 2 at 170mm, nut 30mm.
	if south.PinMM != 170 {
		t.Fatalf("pin=%d want 170", south.PinMM)
	}
	if south.NutMM != 60 {
		t.Fatalf("nut=%d want 60", south.NutMM)
	}
}

func TestComputeConnectorPlacements_Idempotent(t *testing.T) {
	g := testGrid(t)
	g = place(t, g, grid.Position{X: 10, Y: 0, Z: 10}, grid.TypeDouble, grid.RotationNorth)
	g = place(t, g, grid.Position{X: 10, Y: 0, Z: 11}, grid.TypeDouble, grid.RotationNorth)
	g = place(t, g, grid.Position{X: 12, Y: 0, Z: 10}, grid.TypeSingle, grid.RotationNorth)

	a := ComputeConnectorPlacements(g, testCalc())
	b := ComputeConnectorPlacements(g, testCalc())
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("recompute diverged (-first +second):\n%s", diff)
	}
}

func TestComputeConnectorPlacements_WorldPoseOnGridLines(t *testing.T) {
	g := testGrid(t)
	g = place(t, g, grid.Position{X: 10, Y: 0, Z: 10}, grid.TypeSingle, grid.RotationNorth)
	g = place(t, g, grid.Position{X: 11, Y: 0, Z: 10}, grid.TypeSingle, grid.RotationNorth)

	got := ComputeConnectorPlacements(g, testCalc())
	south, _ := connectorAt(got, 0, 11, 10)
	want := grid.WorldPoint{X: 5.5, Y: 0, Z: 5.0}
	if south.World != want {
		t.Fatalf("world=%v want %v (corner, not cell center)", south.World, want)
	}
}
