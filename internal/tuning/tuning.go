package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning carries the engine parameters that are deployment
// configuration rather than hardware catalog data.
type Tuning struct {
	Grid GridSize `yaml:"grid"`

	CellSizeMM      int `yaml:"cell_size_mm"`
	PontoonHeightMM int `yaml:"pontoon_height_mm"`

	Search SearchLimits `yaml:"search"`
}

type GridSize struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Levels int `yaml:"levels"`
}

type SearchLimits struct {
	MaxRadius int `yaml:"max_radius"`
}

// Default returns the values used when no tuning file is supplied:
// a 30x30 grid with 3 levels on the standard 500mm cell pitch.
func Default() Tuning {
	return Tuning{
		Grid:            GridSize{Width: 30, Height: 30, Levels: 3},
		CellSizeMM:      500,
		PontoonHeightMM: 400,
		Search:          SearchLimits{MaxRadius: 10},
	}
}

func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

func (t Tuning) Validate() error {
	if t.Grid.Width <= 0 || t.Grid.Height <= 0 || t.Grid.Levels <= 0 {
		return fmt.Errorf("grid dimensions must be positive, got %dx%dx%d",
			t.Grid.Width, t.Grid.Height, t.Grid.Levels)
	}
	if t.CellSizeMM <= 0 {
		return fmt.Errorf("cell_size_mm must be positive, got %d", t.CellSizeMM)
	}
	if t.PontoonHeightMM <= 0 {
		return fmt.Errorf("pontoon_height_mm must be positive, got %d", t.PontoonHeightMM)
	}
	if t.Search.MaxRadius < 0 {
		return fmt.Errorf("search.max_radius must be non-negative, got %d", t.Search.MaxRadius)
	}
	return nil
}
