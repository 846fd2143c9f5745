// Package layoutdb persists named pontoon layouts. It is a layered
// collaborator: it stores the grid's plain-data record shape and owns
// nothing the placement engine depends on.
package layoutdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"pontoongrid.app/internal/catalogs"
	"pontoongrid.app/internal/grid"
)

type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS layouts (
	name       TEXT PRIMARY KEY,
	width      INTEGER NOT NULL,
	height     INTEGER NOT NULL,
	levels     INTEGER NOT NULL,
	saved_at   TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS pontoons (
	layout_name TEXT NOT NULL REFERENCES layouts(name) ON DELETE CASCADE,
	id          TEXT NOT NULL,
	x           INTEGER NOT NULL,
	y           INTEGER NOT NULL,
	z           INTEGER NOT NULL,
	type        TEXT NOT NULL,
	rotation    TEXT NOT NULL,
	color       TEXT NOT NULL,
	PRIMARY KEY (layout_name, id)
);
`

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("layoutdb schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save writes the grid's record under name, replacing any previous
// layout with that name.
func (s *Store) Save(ctx context.Context, name string, g *grid.Grid) error {
	if name == "" {
		return fmt.Errorf("empty layout name")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM pontoons WHERE layout_name = ?`, name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO layouts (name, width, height, levels, saved_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   width = excluded.width, height = excluded.height,
		   levels = excluded.levels, saved_at = excluded.saved_at`,
		name, g.Width(), g.Height(), g.Levels(),
		time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	for _, r := range g.Record() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pontoons (layout_name, id, x, y, z, type, rotation, color)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			name, r.ID, r.Position.X, r.Position.Y, r.Position.Z,
			r.Type.String(), r.Rotation.String(), r.Color.String()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Load rebuilds a layout through the full placement rule set, so a
// hand-edited or stale database row cannot smuggle in an invalid grid.
func (s *Store) Load(ctx context.Context, name string, cats *catalogs.Catalogs) (*grid.Grid, error) {
	var cfg grid.Config
	err := s.db.QueryRowContext(ctx,
		`SELECT width, height, levels FROM layouts WHERE name = ?`, name).
		Scan(&cfg.Width, &cfg.Height, &cfg.Levels)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("layout %q not found", name)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, x, y, z, type, rotation, color
		 FROM pontoons WHERE layout_name = ? ORDER BY y, id`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []grid.PlacedRecord
	for rows.Next() {
		var r grid.PlacedRecord
		var typ, rot, color string
		if err := rows.Scan(&r.ID, &r.Position.X, &r.Position.Y, &r.Position.Z,
			&typ, &rot, &color); err != nil {
			return nil, err
		}
		if r.Type, err = grid.ParsePontoonType(typ); err != nil {
			return nil, fmt.Errorf("layout %q pontoon %s: %w", name, r.ID, err)
		}
		if r.Rotation, err = grid.ParseRotation(rot); err != nil {
			return nil, fmt.Errorf("layout %q pontoon %s: %w", name, r.ID, err)
		}
		if r.Color, err = grid.ParseColor(color); err != nil {
			return nil, fmt.Errorf("layout %q pontoon %s: %w", name, r.ID, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	g, err := grid.Restore(cfg, cats, records)
	if err != nil {
		return nil, fmt.Errorf("layout %q: %w", name, err)
	}
	return g, nil
}

// List returns the stored layout names, newest first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM layouts ORDER BY saved_at DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Delete removes a stored layout. Missing names are not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM pontoons WHERE layout_name = ?`, name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM layouts WHERE name = ?`, name); err != nil {
		return err
	}
	return tx.Commit()
}
