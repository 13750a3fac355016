package store

import (
	"strings"
	"testing"
	"time"
)

// newTestStore creates an initialized store in a temp dir with a fixed clock.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Initialize(t.TempDir())
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return base }
	return s
}

// setClock pins the store's clock to a specific instant.
func setClock(s *Store, at time.Time) {
	s.now = func() time.Time { return at }
}

func TestOpenMissingDatabase(t *testing.T) {
	_, err := Open(t.TempDir())
	if err == nil {
		t.Fatal("expected error opening missing database")
	}
	if !strings.Contains(err.Error(), "fieldsync init") {
		t.Errorf("error should point at init, got: %v", err)
	}
}

func TestInitializeThenOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Initialize(dir)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if s.BaseDir() != dir {
		t.Errorf("BaseDir = %q, want %q", s.BaseDir(), dir)
	}
	s.Close()

	s, err = Open(dir)
	if err != nil {
		t.Fatalf("Open after Initialize: %v", err)
	}
	defer s.Close()

	version, err := s.GetSchemaVersion()
	if err != nil {
		t.Fatalf("GetSchemaVersion: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("schema version = %d, want %d", version, SchemaVersion)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	s := newTestStore(t)

	ran, err := s.RunMigrations()
	if err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	if ran != 0 {
		t.Errorf("second RunMigrations ran %d migrations, want 0", ran)
	}
}
