// layoutctl is a developer harness for the placement engine: it loads
// the catalogs and tuning, seeds or loads a layout, runs validation and
// both hardware planners, and prints the results as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"pontoongrid.app/internal/catalogs"
	"pontoongrid.app/internal/grid"
	"pontoongrid.app/internal/persistence/layoutdb"
	auditlog "pontoongrid.app/internal/persistence/log"
	"pontoongrid.app/internal/plan"
	"pontoongrid.app/internal/tuning"
)

func main() {
	var (
		configDir  = flag.String("configs", "./configs", "config directory")
		tuningPath = flag.String("tuning", "./configs/tuning.yaml", "tuning file")
		dbPath     = flag.String("db", "./data/layouts.db", "layout database")
		dataDir    = flag.String("data", "./data", "data directory for audit logs")
		layout     = flag.String("layout", "", "layout name to load (empty: seed a demo layout)")
		saveAs     = flag.String("save", "", "save the resulting layout under this name")
	)
	flag.Parse()

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load catalogs:", err)
		os.Exit(1)
	}
	tun, err := tuning.Load(*tuningPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load tuning:", err)
		os.Exit(1)
	}

	store, err := layoutdb.Open(*dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open layout db:", err)
		os.Exit(1)
	}
	defer store.Close()

	ctx := context.Background()

	audit := auditlog.NewAuditLogger(*dataDir)
	defer audit.Close()

	var g *grid.Grid
	if *layout != "" {
		g, err = store.Load(ctx, *layout, cats)
		if err != nil {
			fmt.Fprintln(os.Stderr, "load layout:", err)
			os.Exit(1)
		}
	} else {
		g, err = seedDemo(tun, cats, audit)
		if err != nil {
			fmt.Fprintln(os.Stderr, "seed demo:", err)
			os.Exit(1)
		}
	}

	if *saveAs != "" {
		if err := store.Save(ctx, *saveAs, g); err != nil {
			fmt.Fprintln(os.Stderr, "save layout:", err)
			os.Exit(1)
		}
	}

	calc := grid.NewCoordinateCalculator(tun.CellSizeMM, tun.PontoonHeightMM)

	report := struct {
		Pontoons     []grid.PlacedRecord       `json:"pontoons"`
		Connectivity grid.ValidationResult     `json:"connectivity"`
		Connectors   []plan.ConnectorPlacement `json:"connectors"`
		Accessories  []plan.AccessoryPlacement `json:"accessories"`
	}{
		Pontoons:     g.Record(),
		Connectivity: g.ValidateConnectivity(),
		Connectors:   plan.ComputeConnectorPlacements(g, calc),
		Accessories:  plan.ComputeAccessoryPlacements(g, calc),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Fprintln(os.Stderr, "encode:", err)
		os.Exit(1)
	}
}

// seedDemo builds a small two-level platform exercising every planner
// path: an L of singles, a double, and one stacked unit.
func seedDemo(tun tuning.Tuning, cats *catalogs.Catalogs, audit *auditlog.AuditLogger) (*grid.Grid, error) {
	g, err := grid.New(grid.Config{
		Width:  tun.Grid.Width,
		Height: tun.Grid.Height,
		Levels: tun.Grid.Levels,
	}, cats)
	if err != nil {
		return nil, err
	}

	steps := []struct {
		pos   grid.Position
		typ   grid.PontoonType
		rot   grid.Rotation
		color grid.Color
	}{
		{grid.Position{X: 10, Y: 0, Z: 10}, grid.TypeSingle, grid.RotationNorth, grid.ColorBlue},
		{grid.Position{X: 11, Y: 0, Z: 10}, grid.TypeSingle, grid.RotationNorth, grid.ColorBlue},
		{grid.Position{X: 10, Y: 0, Z: 11}, grid.TypeSingle, grid.RotationNorth, grid.ColorGray},
		{grid.Position{X: 11, Y: 0, Z: 11}, grid.TypeSingle, grid.RotationNorth, grid.ColorGray},
		{grid.Position{X: 12, Y: 0, Z: 10}, grid.TypeDouble, grid.RotationNorth, grid.ColorSand},
		{grid.Position{X: 10, Y: 1, Z: 10}, grid.TypeSingle, grid.RotationNorth, grid.ColorOrange},
	}
	for _, s := range steps {
		next, p, errs := g.Place(s.pos, s.typ, s.rot, s.color)
		entry := auditlog.AuditEntry{
			Op:       "place",
			Position: &s.pos,
			Type:     s.typ.String(),
			Rotation: s.rot.String(),
			Color:    s.color.String(),
			Errors:   errs,
		}
		if len(errs) == 0 {
			entry.PontoonID = p.ID
		}
		if err := audit.WriteAudit(entry); err != nil {
			return nil, fmt.Errorf("audit: %w", err)
		}
		if len(errs) > 0 {
			return nil, fmt.Errorf("seed %s at %s: %v", s.typ, s.pos, errs[0])
		}
		g = next
	}
	return g, nil
}
