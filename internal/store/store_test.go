package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "renders.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_ReopenExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "renders.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	writeTestRender(t, s1, "r-1", 0xCAFEBABE, 1)
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	var count int
	if err := s2.db.QueryRow("SELECT COUNT(*) FROM renders").Scan(&count); err != nil {
		t.Fatalf("count renders: %v", err)
	}
	if count != 1 {
		t.Errorf("renders after reopen = %d, want 1", count)
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/renders.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestDB_ReturnsUnderlyingConnection(t *testing.T) {
	s := createTestStore(t)

	db := s.DB()
	if db == nil {
		t.Fatal("DB() returned nil")
	}
	if err := db.Ping(); err != nil {
		t.Errorf("DB() connection not usable: %v", err)
	}
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	for _, p := range pragmas {
		t.Run(p.name, func(t *testing.T) {
			if err := s.verifyPragma(p.name, p.want); err != nil {
				t.Error(err)
			}
		})
	}
	if err := s.verifyPragma("user_version", fmt.Sprint(renderLogVersion)); err != nil {
		t.Error(err)
	}
}

func TestSchema_Tables(t *testing.T) {
	s := createTestStore(t)

	renderCols := getTableColumns(t, s.db, "renders")
	for _, col := range []string{"id", "seq", "seed", "bpm", "doc_hash", "document", "meta", "truncated"} {
		if !contains(renderCols, col) {
			t.Errorf("renders missing column %q, have %v", col, renderCols)
		}
	}

	triggerCols := getTableColumns(t, s.db, "triggers")
	for _, col := range []string{"render_id", "idx", "frame", "step", "type", "kind", "frequency", "style"} {
		if !contains(triggerCols, col) {
			t.Errorf("triggers missing column %q, have %v", col, triggerCols)
		}
	}
}

func TestMigration_SchemaVersion(t *testing.T) {
	s := createTestStore(t)

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("failed to get user_version: %v", err)
	}
	if version != renderLogVersion {
		t.Errorf("user_version = %d, want %d", version, renderLogVersion)
	}
}

func TestMigration_TriggerTypeIndexExists(t *testing.T) {
	s := createTestStore(t)

	indexes := getTableIndexes(t, s.db, "triggers")
	if !contains(indexes, "idx_triggers_render_type") {
		t.Errorf("triggers missing idx_triggers_render_type, indexes: %v", indexes)
	}
}

func TestMigration_IdempotentUpgrade(t *testing.T) {
	path := filepath.Join(t.TempDir(), "renders.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}

		var version int
		if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
			t.Fatalf("failed to get user_version: %v", err)
		}
		if version != renderLogVersion {
			t.Errorf("iteration %d: user_version = %d, want %d", i, version, renderLogVersion)
		}
		s.Close()
	}
}

func TestMigration_UpgradeFromV0(t *testing.T) {
	path := filepath.Join(t.TempDir(), "renders.db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 0"); err != nil {
		t.Fatalf("failed to set user_version: %v", err)
	}
	db.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	var version int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("failed to get user_version: %v", err)
	}
	if version != renderLogVersion {
		t.Errorf("user_version = %d, want %d after migration", version, renderLogVersion)
	}
	if !contains(getTableIndexes(t, s.db, "triggers"), "idx_triggers_render_type") {
		t.Error("migration did not create idx_triggers_render_type")
	}
}

func TestMigration_UpgradeKeepsRenders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "renders.db")

	s1, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	writeTestRender(t, s1, "r-1", 0xCAFEBABE, 1)
	if _, err := s1.db.Exec("DROP INDEX idx_triggers_render_type"); err != nil {
		t.Fatalf("drop index: %v", err)
	}
	if _, err := s1.db.Exec("PRAGMA user_version = 0"); err != nil {
		t.Fatalf("failed to set user_version: %v", err)
	}
	s1.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("Open() after downgrade failed: %v", err)
	}
	defer s2.Close()

	if !contains(getTableIndexes(t, s2.db, "triggers"), "idx_triggers_render_type") {
		t.Error("upgrade did not recreate idx_triggers_render_type")
	}
	r, err := s2.GetRender(context.Background(), "r-1")
	if err != nil {
		t.Fatalf("GetRender() after upgrade: %v", err)
	}
	if r.Seed != 0xCAFEBABE {
		t.Errorf("seed = %#x, want 0xcafebabe", r.Seed)
	}
}

func TestOpen_RejectsNewerRenderLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "renders.db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", renderLogVersion+1)); err != nil {
		t.Fatalf("failed to set user_version: %v", err)
	}
	db.Close()

	s, err := Open(path)
	if err == nil {
		s.Close()
		t.Fatal("expected Open() to reject a newer render log")
	}
	if !errors.Is(err, ErrNewerRenderLog) {
		t.Errorf("Open() error = %v, want ErrNewerRenderLog", err)
	}
}

func TestForeignKeys_RejectOrphanTrigger(t *testing.T) {
	s := createTestStore(t)

	_, err := s.db.Exec(`
		INSERT INTO triggers (render_id, idx, frame, step, type, kind, aux, frequency, duration)
		VALUES ('missing', 0, 0, 0, 'kick', 'kick', 127, 0, 0)
	`)
	if err == nil {
		t.Error("expected foreign key violation for orphan trigger")
	}
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue any
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("failed to get indexes for %q: %v", table, err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index name: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
