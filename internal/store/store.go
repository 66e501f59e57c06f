package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// renderLogVersion is the render log layout this build writes, stored in
// PRAGMA user_version.
//
//	0  renders and triggers tables
//	1  (render_id, type) index for CountTriggers
const renderLogVersion = 1

// ErrNewerRenderLog is returned by Open when the database was written by a
// build with a newer render log layout.
var ErrNewerRenderLog = errors.New("render log written by a newer version")

// migration upgrades a render log from version-1 to version.
type migration struct {
	version int
	stmt    string
}

var migrations = []migration{
	{1, `CREATE INDEX IF NOT EXISTS idx_triggers_render_type ON triggers(render_id, type)`},
}

// pragmas are applied on every connection. want is the value read back
// for a file-backed database.
var pragmas = []struct {
	name, set, want string
}{
	{"journal_mode", "WAL", "wal"},
	{"synchronous", "NORMAL", "1"},
	{"busy_timeout", "5000", "5000"},
	{"foreign_keys", "ON", "1"},
}

// Store is the render log: one row per render plus its trigger list.
type Store struct {
	db *sql.DB
}

// Open creates or opens the render log at path, applies the connection
// pragmas and upgrades the layout to renderLogVersion. Opening an existing
// log leaves its renders untouched.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open render log: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open render log %s: %w", path, err)
	}

	// One connection: renders are written by a single process and an
	// in-memory log only exists on its own connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.set)); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %s: %w", p.name, err)
		}
	}

	if err := upgrade(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the render log. Safe on a zero Store.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the connection for ad hoc inspection of the log.
func (s *Store) DB() *sql.DB {
	return s.db
}

// upgrade creates the renders and triggers tables and runs every migration
// past the stored version.
func upgrade(db *sql.DB) error {
	version, err := userVersion(db)
	if err != nil {
		return err
	}
	if version > renderLogVersion {
		return fmt.Errorf("%w: layout %d, this build reads up to %d", ErrNewerRenderLog, version, renderLogVersion)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create render log tables: %w", err)
	}
	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		if _, err := db.Exec(m.stmt); err != nil {
			return fmt.Errorf("upgrade render log to %d: %w", m.version, err)
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", renderLogVersion)); err != nil {
		return fmt.Errorf("record render log version: %w", err)
	}
	return nil
}

func userVersion(db *sql.DB) (int, error) {
	var v int
	if err := db.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read render log version: %w", err)
	}
	return v, nil
}

// verifyPragma compares a pragma against want. Tests only.
func (s *Store) verifyPragma(name, want string) error {
	var got string
	if err := s.db.QueryRow("PRAGMA " + name).Scan(&got); err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if got != want {
		return fmt.Errorf("%s = %q, want %q", name, got, want)
	}
	return nil
}
