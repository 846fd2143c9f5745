package catalogs

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// Catalogs holds the fixed hardware configuration the placement engine
// runs against: pontoon footprints and lug tables, the connector layer
// catalog, and accessory definitions. All of it is external data; the
// engine never hardcodes a footprint or a layer height.
type Catalogs struct {
	Pontoons    PontoonCatalog
	Connectors  ConnectorCatalog
	Accessories AccessoryCatalog
}

type PontoonCatalog struct {
	Defs   map[string]PontoonDef
	Order  []string
	Digest string
}

// PontoonDef describes one pontoon model in its unrotated orientation:
// footprint in cells (X by Z), physical size, and the lug table keyed by
// corner-lattice offsets. A footprint of w x d cells has a (w+1) x (d+1)
// corner lattice; corners absent from the table carry no lug.
type PontoonDef struct {
	ID     string   `json:"id"`
	Cells  [2]int   `json:"cells"`
	SizeMM [3]int   `json:"size_mm"`
	Lugs   []LugDef `json:"lugs"`

	lugAt map[[2]int]int
}

type LugDef struct {
	Corner [2]int `json:"corner"`
	Layer  int    `json:"layer"`
}

// LugLayerAt returns the lug layer (1..4) at base-lattice corner
// (cx,cz), or false when that corner carries no lug.
func (d *PontoonDef) LugLayerAt(cx, cz int) (int, bool) {
	layer, ok := d.lugAt[[2]int{cx, cz}]
	return layer, ok
}

func (c *PontoonCatalog) Def(id string) (PontoonDef, bool) {
	d, ok := c.Defs[id]
	return d, ok
}

// ConnectorCatalog models the 4-layer lug hardware family. Layer
// heights and spacer sizes live here so a catalog change never touches
// planner logic.
type ConnectorCatalog struct {
	LayerHeightsMM map[int]int
	PinLengthMM    int
	NutHeightMM    int
	Spacers        []SpacerDef
	Digest         string
}

// LayerCount is the number of lug layers in the hardware family.
func (c *ConnectorCatalog) LayerCount() int { return len(c.LayerHeightsMM) }

// SpacerFor returns the spacer definition filling exactly n consecutive
// empty layers.
func (c *ConnectorCatalog) SpacerFor(fills int) (SpacerDef, bool) {
	for _, s := range c.Spacers {
		if s.Fills == fills {
			return s, true
		}
	}
	return SpacerDef{}, false
}

type SpacerDef struct {
	Kind     string `json:"kind"`
	Fills    int    `json:"fills"`
	HeightMM int    `json:"height_mm"`
}

type AccessoryCatalog struct {
	Defs   map[string]AccessoryDef
	Order  []string
	Digest string
}

type AccessoryDef struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	SpanCells int    `json:"span_cells"`
	SizeMM    [3]int `json:"size_mm"`
}

func (c *AccessoryCatalog) Def(id string) (AccessoryDef, bool) {
	d, ok := c.Defs[id]
	return d, ok
}

// Load reads and validates every catalog file under configDir. Each
// file is checked against its embedded JSON Schema before decoding, so
// a malformed catalog fails loudly at startup rather than as a silent
// planner misbehavior later.
func Load(configDir string) (*Catalogs, error) {
	var c Catalogs

	if err := loadPontoons(filepath.Join(configDir, "pontoons.json"), &c.Pontoons); err != nil {
		return nil, err
	}
	if err := loadConnectors(filepath.Join(configDir, "connectors.json"), &c.Connectors); err != nil {
		return nil, err
	}
	if err := loadAccessories(filepath.Join(configDir, "accessories.json"), &c.Accessories); err != nil {
		return nil, err
	}

	return &c, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func validateAgainstSchema(schemaName string, raw []byte) error {
	schemaRaw, err := schemaFS.ReadFile("schemas/" + schemaName)
	if err != nil {
		return fmt.Errorf("embedded schema %s: %w", schemaName, err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaName, bytes.NewReader(schemaRaw)); err != nil {
		return fmt.Errorf("schema %s: %w", schemaName, err)
	}
	schema, err := compiler.Compile(schemaName)
	if err != nil {
		return fmt.Errorf("schema %s: %w", schemaName, err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%s: %w", schemaName, err)
	}
	return nil
}

func loadPontoons(path string, out *PontoonCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := validateAgainstSchema("pontoons.schema.json", raw); err != nil {
		return fmt.Errorf("pontoons.json: %w", err)
	}
	out.Digest = sha256Hex(raw)

	var defs []PontoonDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("pontoons.json: %w", err)
	}
	out.Defs = map[string]PontoonDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("pontoons.json: empty id")
		}
		if d.Cells[0] <= 0 || d.Cells[1] <= 0 {
			return fmt.Errorf("pontoons.json: %s: footprint must be positive, got %v", d.ID, d.Cells)
		}
		d.lugAt = make(map[[2]int]int, len(d.Lugs))
		for _, l := range d.Lugs {
			if l.Corner[0] < 0 || l.Corner[0] > d.Cells[0] || l.Corner[1] < 0 || l.Corner[1] > d.Cells[1] {
				return fmt.Errorf("pontoons.json: %s: lug corner %v outside corner lattice", d.ID, l.Corner)
			}
			if _, dup := d.lugAt[l.Corner]; dup {
				return fmt.Errorf("pontoons.json: %s: duplicate lug corner %v", d.ID, l.Corner)
			}
			d.lugAt[l.Corner] = l.Layer
		}
		out.Defs[d.ID] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out.Order = ids
	return nil
}

func loadConnectors(path string, out *ConnectorCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := validateAgainstSchema("connectors.schema.json", raw); err != nil {
		return fmt.Errorf("connectors.json: %w", err)
	}
	out.Digest = sha256Hex(raw)

	var doc struct {
		LayerHeightsMM map[string]int `json:"layer_heights_mm"`
		PinLengthMM    int            `json:"pin_length_mm"`
		NutHeightMM    int            `json:"nut_height_mm"`
		Spacers        []SpacerDef    `json:"spacers"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("connectors.json: %w", err)
	}

	out.LayerHeightsMM = make(map[int]int, len(doc.LayerHeightsMM))
	for k, mm := range doc.LayerHeightsMM {
		var layer int
		if _, err := fmt.Sscanf(k, "%d", &layer); err != nil || layer < 1 {
			return fmt.Errorf("connectors.json: bad layer key %q", k)
		}
		out.LayerHeightsMM[layer] = mm
	}
	// Layers must form 1..N with no holes; the spacer pairing rule
	// depends on consecutive numbering.
	for layer := 1; layer <= len(out.LayerHeightsMM); layer++ {
		if _, ok := out.LayerHeightsMM[layer]; !ok {
			return fmt.Errorf("connectors.json: layer heights not contiguous, missing %d", layer)
		}
	}
	out.PinLengthMM = doc.PinLengthMM
	out.NutHeightMM = doc.NutHeightMM
	out.Spacers = doc.Spacers
	return nil
}

func loadAccessories(path string, out *AccessoryCatalog) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := validateAgainstSchema("accessories.schema.json", raw); err != nil {
		return fmt.Errorf("accessories.json: %w", err)
	}
	out.Digest = sha256Hex(raw)

	var defs []AccessoryDef
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("accessories.json: %w", err)
	}
	out.Defs = map[string]AccessoryDef{}
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("accessories.json: empty id")
		}
		out.Defs[d.ID] = d
	}

	ids := make([]string, 0, len(out.Defs))
	for id := range out.Defs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out.Order = ids
	return nil
}
