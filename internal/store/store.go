// Package store persists generated textures in a single SQLite file so that
// volumes can be rehydrated without re-encoding them as images.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/MeKo-Tech/procnoise/internal/texture"

	_ "modernc.org/sqlite" // SQLite driver
)

// DefaultBatchSize is the number of assets buffered before flushing to the database.
const DefaultBatchSize = 16

// ErrNotFound is returned when no asset has the requested name.
var ErrNotFound = errors.New("asset not found")

// Info describes a stored asset without its texel data.
type Info struct {
	Name   string
	Kind   string
	Width  int
	Height int
	Depth  int
	Is3D   bool
}

type entry struct {
	info Info
	pix  []float32
}

// Store reads and writes texture assets.
type Store struct {
	db        *sql.DB
	path      string
	readOnly  bool
	batch     []entry
	batchSize int
	mu        sync.Mutex
}

// Open opens the store at path for reading and writing. The database is
// created if it doesn't exist, and the schema is initialized.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{
		db:        db,
		path:      path,
		batch:     make([]entry, 0, DefaultBatchSize),
		batchSize: DefaultBatchSize,
	}, nil
}

// OpenReader opens an existing store read-only.
func OpenReader(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='assets'").Scan(&count)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify schema: %w", err)
	}
	if count == 0 {
		db.Close()
		return nil, fmt.Errorf("database does not contain assets table")
	}

	return &Store{db: db, path: path, readOnly: true}, nil
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS assets (
			name TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			depth INTEGER NOT NULL,
			is_3d INTEGER NOT NULL,
			data BLOB NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Put queues buf under name, replacing any asset with the same name on flush.
// The texels are copied, so buf may be reused after Put returns.
func (s *Store) Put(name, kind string, buf *texture.Buffer) error {
	if s.readOnly {
		return fmt.Errorf("store %s is read-only", s.path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pix := make([]float32, len(buf.Pix))
	copy(pix, buf.Pix)
	s.batch = append(s.batch, entry{
		info: Info{
			Name:   name,
			Kind:   kind,
			Width:  buf.Width,
			Height: buf.Height,
			Depth:  buf.Depth,
			Is3D:   buf.Is3D(),
		},
		pix: pix,
	})

	if len(s.batch) >= s.batchSize {
		return s.flushLocked()
	}
	return nil
}

// Flush writes any buffered assets to the database.
func (s *Store) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *Store) flushLocked() error {
	if len(s.batch) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO assets
		(name, kind, width, height, depth, is_3d, data) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range s.batch {
		data, err := encodePix(e.pix)
		if err != nil {
			return fmt.Errorf("failed to encode asset %q: %w", e.info.Name, err)
		}
		_, err = stmt.Exec(e.info.Name, e.info.Kind, e.info.Width, e.info.Height, e.info.Depth, e.info.Is3D, data)
		if err != nil {
			return fmt.Errorf("failed to insert asset %q: %w", e.info.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.batch = s.batch[:0]
	return nil
}

// Get loads the asset stored under name. Pending writes are flushed first.
func (s *Store) Get(name string) (*texture.Buffer, Info, error) {
	if !s.readOnly {
		if err := s.Flush(); err != nil {
			return nil, Info{}, err
		}
	}

	var (
		info Info
		data []byte
	)
	err := s.db.QueryRow(
		"SELECT name, kind, width, height, depth, is_3d, data FROM assets WHERE name=?", name,
	).Scan(&info.Name, &info.Kind, &info.Width, &info.Height, &info.Depth, &info.Is3D, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, Info{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, Info{}, fmt.Errorf("failed to query asset: %w", err)
	}

	buf := texture.New(info.Width, info.Height, info.Depth, info.Is3D)
	if err := decodePix(data, buf.Pix); err != nil {
		return nil, Info{}, fmt.Errorf("failed to decode asset %q: %w", name, err)
	}
	return buf, info, nil
}

// List returns every stored asset ordered by name.
func (s *Store) List() ([]Info, error) {
	if !s.readOnly {
		if err := s.Flush(); err != nil {
			return nil, err
		}
	}

	rows, err := s.db.Query("SELECT name, kind, width, height, depth, is_3d FROM assets ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var info Info
		if err := rows.Scan(&info.Name, &info.Kind, &info.Width, &info.Height, &info.Depth, &info.Is3D); err != nil {
			return nil, fmt.Errorf("failed to scan asset row: %w", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating assets: %w", err)
	}
	return out, nil
}

// Close flushes any remaining assets and closes the database.
func (s *Store) Close() error {
	if !s.readOnly {
		if err := s.Flush(); err != nil {
			s.db.Close()
			return err
		}
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
