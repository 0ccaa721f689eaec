package daemon

import (
	"testing"
)

func TestNewWithConfig_Wiring(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DOSEWATCH_HOME", dir)

	cfg := DefaultConfig()
	cfg.Storage.Dir = dir

	d, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	defer d.Close()

	if d.DB == nil || d.Estimator == nil || d.Server == nil || d.Health == nil {
		t.Fatal("daemon services not fully wired")
	}
}

func TestNewWithConfig_SeedsReferences(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DOSEWATCH_HOME", dir)

	cfg := DefaultConfig()
	cfg.Storage.Dir = dir

	d, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("NewWithConfig() error: %v", err)
	}
	defer d.Close()

	entries, err := d.DB.ListReferenceEntries()
	if err != nil {
		t.Fatalf("ListReferenceEntries() error: %v", err)
	}
	if len(entries) < len(builtinReferences) {
		t.Errorf("entries = %d, want at least %d seeded", len(entries), len(builtinReferences))
	}

	// Seeding is idempotent: a second daemon over the same store must not
	// duplicate or fail.
	d2, err := NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("second NewWithConfig() error: %v", err)
	}
	defer d2.Close()

	again, err := d2.DB.ListReferenceEntries()
	if err != nil {
		t.Fatalf("ListReferenceEntries() error: %v", err)
	}
	if len(again) != len(entries) {
		t.Errorf("entries after reseed = %d, want %d", len(again), len(entries))
	}
}
