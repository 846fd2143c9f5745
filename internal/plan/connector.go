// Package plan derives hardware placements from a grid snapshot.
//
// Planners are pure functions: they hold no state, never mutate the
// grid, and recompute the whole answer on every call. At the target
// grid sizes a full recompute is well under a frame, and it keeps the
// contract trivial — a content-keyed cache can be layered on top later
// without touching these functions.
package plan

import (
	"fmt"
	"sort"

	"pontoongrid.app/internal/catalogs"
	"pontoongrid.app/internal/grid"
)

type ConnectorKind string

const (
	// ConnectorStandard joins four lugs meeting at an interior corner.
	ConnectorStandard ConnectorKind = "standard"
	// ConnectorLong is a standard connector spanning two stacked
	// pontoon heights.
	ConnectorLong ConnectorKind = "long"
	// ConnectorEdge joins two or three lugs at a platform edge.
	ConnectorEdge ConnectorKind = "edge"
)

// SpacerPlacement fills empty lug-layer slots inside a connector stack.
type SpacerPlacement struct {
	Kind     string `json:"kind"`
	Layers   []int  `json:"layers"`
	HeightMM int    `json:"height_mm"`
}

// ConnectorPlacement is one piece of derived hardware at a grid-line
// intersection. It has no stored identity: identical grids yield
// identical placements, key-sorted.
type ConnectorPlacement struct {
	Key     string        `json:"key"`
	Level   int           `json:"level"`
	CornerX int           `json:"corner_x"`
	CornerZ int           `json:"corner_z"`
	Kind    ConnectorKind `json:"kind"`

	// LugCount is the number of distinct cells touching the corner.
	LugCount int `json:"lug_count"`

	PontoonIDs      []string `json:"pontoon_ids"`
	OccupiedLayers  []int    `json:"occupied_layers"`
	HasLowerSupport bool     `json:"has_lower_support"`

	Spacers []SpacerPlacement `json:"spacers,omitempty"`

	World grid.WorldPoint `json:"world"`
	// Pin and nut vertical centers, mm above the level's base plane,
	// derived from the layer-height table and the occupied extremes.
	PinMM int `json:"pin_mm"`
	NutMM int `json:"nut_mm"`
}

type cornerKey struct {
	level int
	cx    int
	cz    int
}

type cornerAcc struct {
	pontoons map[string]struct{}
	cells    map[grid.Position]struct{}
	layers   map[int]struct{}
}

// ComputeConnectorPlacements derives every connector for the grid.
// A corner qualifies when at least two distinct cells AND two distinct
// pontoons touch it; a pontoon's own internal corner never yields
// hardware on its own.
func ComputeConnectorPlacements(g *grid.Grid, calc grid.CoordinateCalculator) []ConnectorPlacement {
	cats := g.Catalogs()

	corners := map[cornerKey]*cornerAcc{}
	for _, p := range g.Pontoons() {
		def, ok := cats.Pontoons.Def(p.Type.String())
		if !ok {
			continue
		}
		for _, cell := range p.OccupiedPositions() {
			for _, off := range cellCornerOffsets {
				key := cornerKey{level: cell.Y, cx: cell.X + off[0], cz: cell.Z + off[1]}
				acc := corners[key]
				if acc == nil {
					acc = &cornerAcc{
						pontoons: map[string]struct{}{},
						cells:    map[grid.Position]struct{}{},
						layers:   map[int]struct{}{},
					}
					corners[key] = acc
				}
				acc.pontoons[p.ID] = struct{}{}
				acc.cells[cell] = struct{}{}
				if layer, ok := p.LugLayerAt(&def, key.cx, key.cz); ok {
					acc.layers[layer] = struct{}{}
				}
			}
		}
	}

	keys := make([]cornerKey, 0, len(corners))
	for k := range corners {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.level != b.level {
			return a.level < b.level
		}
		if a.cx != b.cx {
			return a.cx < b.cx
		}
		return a.cz < b.cz
	})

	layerCount := cats.Connectors.LayerCount()
	var out []ConnectorPlacement
	for _, k := range keys {
		acc := corners[k]
		if len(acc.cells) < 2 || len(acc.pontoons) < 2 {
			continue
		}

		lugCount := len(acc.cells)
		_, lower := corners[cornerKey{level: k.level - 1, cx: k.cx, cz: k.cz}]
		hasLower := k.level > 0 && lower

		kind := ConnectorEdge
		if lugCount == 4 {
			kind = ConnectorStandard
			if hasLower {
				kind = ConnectorLong
			}
		}

		ids := make([]string, 0, len(acc.pontoons))
		for id := range acc.pontoons {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		occupied := make([]int, 0, len(acc.layers))
		for layer := range acc.layers {
			occupied = append(occupied, layer)
		}
		sort.Ints(occupied)

		cp := ConnectorPlacement{
			Key:             fmt.Sprintf("%d:%d:%d", k.level, k.cx, k.cz),
			Level:           k.level,
			CornerX:         k.cx,
			CornerZ:         k.cz,
			Kind:            kind,
			LugCount:        lugCount,
			PontoonIDs:      ids,
			OccupiedLayers:  occupied,
			HasLowerSupport: hasLower,
			Spacers:         deriveSpacers(occupied, layerCount, &cats.Connectors),
			World:           calc.CornerWorld(k.level, k.cx, k.cz),
		}
		if len(occupied) > 0 {
			cp.PinMM = cats.Connectors.LayerHeightsMM[occupied[len(occupied)-1]]
			cp.NutMM = cats.Connectors.LayerHeightsMM[occupied[0]] - cats.Connectors.NutHeightMM
		}
		out = append(out, cp)
	}
	return out
}

var cellCornerOffsets = [4][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}

// deriveSpacers fills the lug layers nobody occupies. Adjacent occupied
// layers mate directly and leave no gap, so the fill set is simply the
// missing layers: scanned bottom to top, strictly consecutive missing
// pairs become one double spacer, leftovers a single each.
func deriveSpacers(occupied []int, layerCount int, cat *catalogs.ConnectorCatalog) []SpacerPlacement {
	present := make(map[int]struct{}, len(occupied))
	for _, l := range occupied {
		present[l] = struct{}{}
	}
	var missing []int
	for layer := 1; layer <= layerCount; layer++ {
		if _, ok := present[layer]; !ok {
			missing = append(missing, layer)
		}
	}

	var out []SpacerPlacement
	for i := 0; i < len(missing); {
		if i+1 < len(missing) && missing[i+1] == missing[i]+1 {
			if def, ok := cat.SpacerFor(2); ok {
				out = append(out, SpacerPlacement{
					Kind:     def.Kind,
					Layers:   []int{missing[i], missing[i] + 1},
					HeightMM: def.HeightMM,
				})
				i += 2
				continue
			}
		}
		if def, ok := cat.SpacerFor(1); ok {
			out = append(out, SpacerPlacement{
				Kind:     def.Kind,
				Layers:   []int{missing[i]},
				HeightMM: def.HeightMM,
			})
		}
		i++
	}
	return out
}
