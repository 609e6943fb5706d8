// Package storage provides SQLite-based persistence for saved board layouts.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// Store manages the SQLite database connection for layout persistence.
type Store struct {
	db *sql.DB
}

// Layout is one saved board: its grid dimensions and every placed platform.
type Layout struct {
	ID        int64
	Name      string
	GridW     int
	GridH     int
	CellSize  float64
	Platforms []PlatformRecord
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlatformRecord is the persisted transform of one placed platform.
type PlatformRecord struct {
	Kind string
	X    float64
	Z    float64
	Yaw  float64
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS layouts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			grid_w INTEGER NOT NULL,
			grid_h INTEGER NOT NULL,
			cell_size REAL NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_layouts_name ON layouts(name);

		CREATE TABLE IF NOT EXISTS layout_platforms (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			layout_id INTEGER NOT NULL REFERENCES layouts(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			x REAL NOT NULL,
			z REAL NOT NULL,
			yaw REAL NOT NULL,
			position INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_layout_platforms_layout ON layout_platforms(layout_id, position);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveLayout stores the layout under its name, replacing any layout already
// saved under that name. The whole write is one transaction, so a failed
// save never leaves a half-replaced layout. Returns the layout's ID.
func (s *Store) SaveLayout(l Layout) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	var id int64
	err = tx.QueryRow("SELECT id FROM layouts WHERE name = ?", l.Name).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		result, err := tx.Exec(
			"INSERT INTO layouts (name, grid_w, grid_h, cell_size) VALUES (?, ?, ?, ?)",
			l.Name, l.GridW, l.GridH, l.CellSize,
		)
		if err != nil {
			return 0, fmt.Errorf("storage: cannot insert layout: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
		}
	case err != nil:
		return 0, fmt.Errorf("storage: cannot look up layout: %w", err)
	default:
		_, err = tx.Exec(
			"UPDATE layouts SET grid_w = ?, grid_h = ?, cell_size = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
			l.GridW, l.GridH, l.CellSize, id,
		)
		if err != nil {
			return 0, fmt.Errorf("storage: cannot update layout: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM layout_platforms WHERE layout_id = ?", id); err != nil {
			return 0, fmt.Errorf("storage: cannot clear old platforms: %w", err)
		}
	}

	for i, p := range l.Platforms {
		_, err := tx.Exec(
			"INSERT INTO layout_platforms (layout_id, kind, x, z, yaw, position) VALUES (?, ?, ?, ?, ?, ?)",
			id, p.Kind, p.X, p.Z, p.Yaw, i,
		)
		if err != nil {
			return 0, fmt.Errorf("storage: cannot insert platform: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("storage: cannot commit layout: %w", err)
	}
	return id, nil
}

// LoadLayout retrieves a layout by name, platforms in saved order.
func (s *Store) LoadLayout(name string) (Layout, error) {
	var l Layout
	var createdAt, updatedAt any
	err := s.db.QueryRow(
		"SELECT id, name, grid_w, grid_h, cell_size, created_at, updated_at FROM layouts WHERE name = ?",
		name,
	).Scan(&l.ID, &l.Name, &l.GridW, &l.GridH, &l.CellSize, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return l, fmt.Errorf("storage: layout %q not found", name)
	}
	if err != nil {
		return l, fmt.Errorf("storage: cannot load layout: %w", err)
	}
	l.CreatedAt = parseTimestamp(createdAt)
	l.UpdatedAt = parseTimestamp(updatedAt)

	rows, err := s.db.Query(
		"SELECT kind, x, z, yaw FROM layout_platforms WHERE layout_id = ? ORDER BY position",
		l.ID,
	)
	if err != nil {
		return l, fmt.Errorf("storage: cannot query platforms: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p PlatformRecord
		if err := rows.Scan(&p.Kind, &p.X, &p.Z, &p.Yaw); err != nil {
			return l, fmt.Errorf("storage: cannot scan platform: %w", err)
		}
		l.Platforms = append(l.Platforms, p)
	}
	if err := rows.Err(); err != nil {
		return l, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return l, nil
}

// ListLayouts returns all saved layouts without their platforms, most
// recently updated first.
func (s *Store) ListLayouts() ([]Layout, error) {
	rows, err := s.db.Query(
		"SELECT id, name, grid_w, grid_h, cell_size, created_at, updated_at FROM layouts ORDER BY updated_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query layouts: %w", err)
	}
	defer rows.Close()

	var layouts []Layout
	for rows.Next() {
		var l Layout
		var createdAt, updatedAt any
		if err := rows.Scan(&l.ID, &l.Name, &l.GridW, &l.GridH, &l.CellSize, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		l.CreatedAt = parseTimestamp(createdAt)
		l.UpdatedAt = parseTimestamp(updatedAt)
		layouts = append(layouts, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return layouts, nil
}

// DeleteLayout removes a layout and its platforms by name.
func (s *Store) DeleteLayout(name string) error {
	var id int64
	err := s.db.QueryRow("SELECT id FROM layouts WHERE name = ?", name).Scan(&id)
	if err == sql.ErrNoRows {
		return fmt.Errorf("storage: layout %q not found", name)
	}
	if err != nil {
		return fmt.Errorf("storage: cannot look up layout: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The cascade only fires with foreign keys enabled, so delete explicitly.
	if _, err := tx.Exec("DELETE FROM layout_platforms WHERE layout_id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete platforms: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM layouts WHERE id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete layout: %w", err)
	}

	return tx.Commit()
}

// parseTimestamp handles both time.Time and string datetime values from the
// driver.
func parseTimestamp(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
