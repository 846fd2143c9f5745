package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ShippedFile(t *testing.T) {
	got, err := Load("../../configs/tuning.yaml")
	if err != nil {
		t.Fatalf("load shipped tuning: %v", err)
	}
	if got != Default() {
		t.Fatalf("shipped tuning %+v drifted from defaults %+v", got, Default())
	}
}

func TestLoad_PartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	body := "grid:\n  width: 12\n  height: 8\n  levels: 2\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Grid != (GridSize{Width: 12, Height: 8, Levels: 2}) {
		t.Fatalf("grid=%+v", got.Grid)
	}
	// Keys absent from the file keep their defaults.
	if got.CellSizeMM != 500 || got.Search.MaxRadius != 10 {
		t.Fatalf("defaults lost: %+v", got)
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero width", "grid:\n  width: 0\n  height: 8\n  levels: 2\n"},
		{"negative cell size", "cell_size_mm: -1\n"},
		{"negative radius", "search:\n  max_radius: -3\n"},
		{"not yaml", "{{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tuning.yaml")
			if err := os.WriteFile(path, []byte(tt.body), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := Load(path); err == nil {
				t.Fatalf("bad tuning loaded without error")
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("missing file loaded without error")
	}
}
