package grid

// SpatialHashGrid is the occupancy index backing O(cells-touched)
// collision and lookup queries. Cells map to the set of occupant ids;
// a reverse entry per id remembers its last-inserted cells so removal
// never scans the whole index.
//
// The index is single-threaded by design, like everything in this
// package: it is only ever touched inside a Grid state transition.
type SpatialHashGrid struct {
	cells   map[Position]map[string]struct{}
	entries map[string][]Position
}

func NewSpatialHashGrid() *SpatialHashGrid {
	return &SpatialHashGrid{
		cells:   make(map[Position]map[string]struct{}),
		entries: make(map[string][]Position),
	}
}

// Insert marks every cell of the footprint's bounding box as occupied
// by id. Inserting an id that is already present re-indexes it.
func (s *SpatialHashGrid) Insert(id string, anchor Position, w, d int) {
	if _, ok := s.entries[id]; ok {
		s.Remove(id)
	}
	cells := footprintCells(anchor, w, d)
	for _, c := range cells {
		bucket := s.cells[c]
		if bucket == nil {
			bucket = make(map[string]struct{}, 1)
			s.cells[c] = bucket
		}
		bucket[id] = struct{}{}
	}
	s.entries[id] = cells
}

// Remove clears id from every cell it was last inserted into.
func (s *SpatialHashGrid) Remove(id string) {
	cells, ok := s.entries[id]
	if !ok {
		return
	}
	for _, c := range cells {
		if bucket, ok := s.cells[c]; ok {
			delete(bucket, id)
			if len(bucket) == 0 {
				delete(s.cells, c)
			}
		}
	}
	delete(s.entries, id)
}

// IDsAt returns the occupant ids of a single cell.
func (s *SpatialHashGrid) IDsAt(pos Position) []string {
	bucket := s.cells[pos]
	if len(bucket) == 0 {
		return nil
	}
	out := make([]string, 0, len(bucket))
	for id := range bucket {
		out = append(out, id)
	}
	return out
}

// Occupied reports whether any occupant covers pos.
func (s *SpatialHashGrid) Occupied(pos Position) bool {
	return len(s.cells[pos]) > 0
}

// CheckCollision reports whether placing a w x d footprint at anchor
// would overlap an existing occupant, ignoring excludeID ("" excludes
// nothing).
func (s *SpatialHashGrid) CheckCollision(anchor Position, w, d int, excludeID string) bool {
	for _, c := range footprintCells(anchor, w, d) {
		for id := range s.cells[c] {
			if id != excludeID {
				return true
			}
		}
	}
	return false
}

// Query returns the distinct occupant ids under a w x d footprint at
// anchor, ignoring excludeID.
func (s *SpatialHashGrid) Query(anchor Position, w, d int, excludeID string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, c := range footprintCells(anchor, w, d) {
		for id := range s.cells[c] {
			if id == excludeID {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// EntryCount returns the number of indexed occupants.
func (s *SpatialHashGrid) EntryCount() int { return len(s.entries) }

// CellCount returns the number of occupied cells.
func (s *SpatialHashGrid) CellCount() int { return len(s.cells) }

// Clone returns a deep copy. Grid state transitions clone the index and
// apply the same mutation to the copy, inside one construction step.
func (s *SpatialHashGrid) Clone() *SpatialHashGrid {
	out := &SpatialHashGrid{
		cells:   make(map[Position]map[string]struct{}, len(s.cells)),
		entries: make(map[string][]Position, len(s.entries)),
	}
	for pos, bucket := range s.cells {
		nb := make(map[string]struct{}, len(bucket))
		for id := range bucket {
			nb[id] = struct{}{}
		}
		out.cells[pos] = nb
	}
	for id, cells := range s.entries {
		nc := make([]Position, len(cells))
		copy(nc, cells)
		out.entries[id] = nc
	}
	return out
}

func footprintCells(anchor Position, w, d int) []Position {
	out := make([]Position, 0, w*d)
	for dx := 0; dx < w; dx++ {
		for dz := 0; dz < d; dz++ {
			out = append(out, anchor.Add(dx, 0, dz))
		}
	}
	return out
}
