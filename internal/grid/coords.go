package grid

// Coordinate math between the integer cell grid and world-space meters.
// All internal arithmetic is integer millimeters; values are divided by
// precisionFactor exactly once, at the world-unit boundary, so repeated
// conversions cannot accumulate float drift.

const (
	// precisionFactor converts internal millimeters to world meters.
	precisionFactor = 1000

	defaultCellSizeMM      = 500
	defaultPontoonHeightMM = 400
)

// WorldPoint is a position in world space, in meters.
type WorldPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// CoordinateCalculator converts between grid and world coordinates. It
// is stateless; two instances with equal parameters are interchangeable.
//
// Two distinct conversions exist: cell centers (where pontoons sit) and
// grid-line intersections (where connector hardware sits). They differ
// by half a cell and must never be mixed up.
type CoordinateCalculator struct {
	cellSizeMM      int
	pontoonHeightMM int
}

func NewCoordinateCalculator(cellSizeMM, pontoonHeightMM int) CoordinateCalculator {
	if cellSizeMM <= 0 {
		cellSizeMM = defaultCellSizeMM
	}
	if pontoonHeightMM <= 0 {
		pontoonHeightMM = defaultPontoonHeightMM
	}
	return CoordinateCalculator{cellSizeMM: cellSizeMM, pontoonHeightMM: pontoonHeightMM}
}

// CellSizeM returns the cell pitch in meters.
func (c CoordinateCalculator) CellSizeM() float64 {
	return float64(c.cellSizeMM) / precisionFactor
}

// PontoonHeightM returns one stacking level's height in meters.
func (c CoordinateCalculator) PontoonHeightM() float64 {
	return float64(c.pontoonHeightMM) / precisionFactor
}

// LevelY returns the world Y of a level's base plane. Levels stack with
// no gap: level N starts exactly N pontoon heights up.
func (c CoordinateCalculator) LevelY(level int) float64 {
	return float64(level*c.pontoonHeightMM) / precisionFactor
}

// CellCenterWorld returns the world-space center of a cell's base
// plane. This is the pontoon placement conversion.
func (c CoordinateCalculator) CellCenterWorld(pos Position) WorldPoint {
	return WorldPoint{
		X: float64(pos.X*c.cellSizeMM+c.cellSizeMM/2) / precisionFactor,
		Y: float64(pos.Y*c.pontoonHeightMM) / precisionFactor,
		Z: float64(pos.Z*c.cellSizeMM+c.cellSizeMM/2) / precisionFactor,
	}
}

// CornerWorld returns the world-space point of a grid-line intersection
// at a level's base plane. This is the hardware conversion: connectors
// sit on cell corners, not cell centers.
func (c CoordinateCalculator) CornerWorld(level, cx, cz int) WorldPoint {
	return WorldPoint{
		X: float64(cx*c.cellSizeMM) / precisionFactor,
		Y: float64(level*c.pontoonHeightMM) / precisionFactor,
		Z: float64(cz*c.cellSizeMM) / precisionFactor,
	}
}

// FootprintCenterWorld returns the world-space center of a w x d
// footprint anchored at anchor.
func (c CoordinateCalculator) FootprintCenterWorld(anchor Position, w, d int) WorldPoint {
	return WorldPoint{
		X: float64(anchor.X*c.cellSizeMM+w*c.cellSizeMM/2) / precisionFactor,
		Y: float64(anchor.Y*c.pontoonHeightMM) / precisionFactor,
		Z: float64(anchor.Z*c.cellSizeMM+d*c.cellSizeMM/2) / precisionFactor,
	}
}

// WorldToCell maps a world point back to the cell containing it.
func (c CoordinateCalculator) WorldToCell(p WorldPoint) Position {
	xMM := int(p.X * precisionFactor)
	yMM := int(p.Y * precisionFactor)
	zMM := int(p.Z * precisionFactor)
	return Position{
		X: floorDiv(xMM, c.cellSizeMM),
		Y: floorDiv(yMM, c.pontoonHeightMM),
		Z: floorDiv(zMM, c.cellSizeMM),
	}
}

func floorDiv(a, b int) int {
	// b > 0
	q := a / b
	r := a % b
	if r < 0 {
		q--
	}
	return q
}
